package ai

// PresetCatalog returns a built-in curated catalog for a known provider.
// The catalog can be merged or used to replace the in-memory catalog.
func PresetCatalog(provider string) (map[string]ModelInfo, bool) {
	switch provider {
	case "groq":
		// Curated minimal set; values illustrative and aligned with models.go defaults
		return map[string]ModelInfo{
			"llama-3.3-70b-versatile": {
				Name:          "llama-3.3-70b-versatile",
				ContextTokens: 131072,
				InputPerK:     0.00059,
				OutputPerK:    0.00079,
			},
			"llama-3.1-8b-instant": {
				Name:          "llama-3.1-8b-instant",
				ContextTokens: 131072,
				InputPerK:     0.00005,
				OutputPerK:    0.00008,
			},
			"openai/gpt-oss-120b": {
				Name:          "openai/gpt-oss-120b",
				ContextTokens: 131072,
				InputPerK:     0.00015,
				OutputPerK:    0.00075,
			},
			"meta-llama/llama-4-scout-17b-16e-instruct": {
				Name:          "meta-llama/llama-4-scout-17b-16e-instruct",
				ContextTokens: 131072,
				InputPerK:     0.00011,
				OutputPerK:    0.00034,
			},
			"deepseek-r1-distill-llama-70b": {
				Name:          "deepseek-r1-distill-llama-70b",
				ContextTokens: 131072,
				InputPerK:     0.00075,
				OutputPerK:    0.00099,
			},
			"qwen/qwen3-32b": {
				Name:          "qwen/qwen3-32b",
				ContextTokens: 131072,
				InputPerK:     0.00029,
				OutputPerK:    0.00059,
			},
			"gemma2-9b-it": {
				Name:          "gemma2-9b-it",
				ContextTokens: 8192,
				InputPerK:     0.0002,
				OutputPerK:    0.0002,
			},
		}, true
	case "ollama", "local":
		// Local-friendly defaults that commonly exist in Ollama registries
		return map[string]ModelInfo{
			"llama3:latest": {
				Name:          "llama3:latest",
				ContextTokens: 8192,
				InputPerK:     0.0,
				OutputPerK:    0.0,
			},
			"llama3.1:8b-instruct": {
				Name:          "llama3.1:8b-instruct",
				ContextTokens: 8192,
				InputPerK:     0.0,
				OutputPerK:    0.0,
			},
			"llama3.1:70b-instruct": {
				Name:          "llama3.1:70b-instruct",
				ContextTokens: 8192,
				InputPerK:     0.0,
				OutputPerK:    0.0,
			},
			"mistral:7b-instruct": {
				Name:          "mistral:7b-instruct",
				ContextTokens: 8192,
				InputPerK:     0.0,
				OutputPerK:    0.0,
			},
			"qwen2.5:7b-instruct": {
				Name:          "qwen2.5:7b-instruct",
				ContextTokens: 32768,
				InputPerK:     0.0,
				OutputPerK:    0.0,
			},
			"phi3:mini-4k-instruct": {
				Name:          "phi3:mini-4k-instruct",
				ContextTokens: 4096,
				InputPerK:     0.0,
				OutputPerK:    0.0,
			},
		}, true
	default:
		return nil, false
	}
}

// RecommendModel returns a recommended model name for a given tier and provider.
// If provider is empty, defaults to "groq". Tiers: cheap|balanced|high-context.
func RecommendModel(provider, tier string) (string, bool) {
	if provider == "" {
		provider = "groq"
	}
	switch tier {
	case "cheap":
		switch provider {
		case "groq":
			return "llama-3.1-8b-instant", true
		case "ollama", "local":
			return "llama3.1:8b-instruct", true
		}
	case "balanced":
		switch provider {
		case "groq":
			return "llama-3.3-70b-versatile", true
		case "ollama", "local":
			return "llama3.1:70b-instruct", true
		}
	case "high-context":
		switch provider {
		case "groq":
			return "meta-llama/llama-4-scout-17b-16e-instruct", true
		case "ollama", "local":
			return "qwen2.5:7b-instruct", true // 32k context, runs on modest hardware
		}
	}
	return "", false
}
