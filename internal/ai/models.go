package ai

import (
	"encoding/json"
	"os"
)

// Model metadata and simple pricing helpers for UX warnings.
// Prices are illustrative and should be verified against Groq docs.

type ModelInfo struct {
	Name          string
	ContextTokens int     // approximate context window
	InputPerK     float64 // USD per 1K input tokens
	OutputPerK    float64 // USD per 1K output tokens
}

var models = map[string]ModelInfo{
	// Groq-hosted models
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
	"openai/gpt-oss-20b": {
		Name:          "openai/gpt-oss-20b",
		ContextTokens: 131072,
		InputPerK:     0.0001,
		OutputPerK:    0.0005,
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
	// Common local (Ollama) tags
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
}

// LookupModel returns ModelInfo and ok flag.
func LookupModel(name string) (ModelInfo, bool) {
	mi, ok := models[name]
	return mi, ok
}

// EstimateCostUSD estimates total cost in USD for given tokens using model pricing.
// If the model is unknown, returns 0 and ok=false.
func EstimateCostUSD(model string, promptTokens, completionTokens int) (float64, bool) {
	mi, ok := LookupModel(model)
	if !ok {
		return 0, false
	}
	inCost := (float64(promptTokens) / 1000.0) * mi.InputPerK
	outCost := (float64(completionTokens) / 1000.0) * mi.OutputPerK
	return inCost + outCost, true
}

// ---- Sync/override helpers ----

// LoadCatalogFromJSON loads a JSON object map[string]ModelInfo from a file path.
// Example JSON entry:
// { "llama-3.3-70b-versatile": {"Name":"llama-3.3-70b-versatile","ContextTokens":131072,"InputPerK":0.00059,"OutputPerK":0.00079} }
func LoadCatalogFromJSON(path string) (map[string]ModelInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	var m map[string]ModelInfo
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}

// OverrideCatalog replaces the in-memory catalog entirely.
func OverrideCatalog(m map[string]ModelInfo) {
	if m == nil {
		return
	}
	models = m
}

// MergeCatalog merges/overrides entries in the in-memory catalog.
func MergeCatalog(m map[string]ModelInfo) {
	if m == nil {
		return
	}
	for k, v := range m {
		models[k] = v
	}
}

// Catalog returns a shallow copy of the current model catalog.
func Catalog() map[string]ModelInfo {
	out := make(map[string]ModelInfo, len(models))
	for k, v := range models {
		out[k] = v
	}
	return out
}
