package ai

import "testing"

func TestPresetCatalogGroq(t *testing.T) {
	m, ok := PresetCatalog("groq")
	if !ok || len(m) == 0 {
		t.Fatalf("expected groq preset to be available")
	}
	if _, exists := m["llama-3.3-70b-versatile"]; !exists {
		t.Fatalf("expected llama-3.3-70b-versatile in groq preset")
	}
	if _, exists := m["llama-3.1-8b-instant"]; !exists {
		t.Fatalf("expected llama-3.1-8b-instant in groq preset")
	}
}

func TestPresetCatalogLocalAlias(t *testing.T) {
	m, ok := PresetCatalog("local")
	if !ok || len(m) == 0 {
		t.Fatalf("expected local preset to be available")
	}
	if _, exists := m["llama3.1:8b-instruct"]; !exists {
		t.Fatalf("expected llama3.1:8b-instruct in local preset")
	}
	if _, ok := PresetCatalog("nosuch"); ok {
		t.Fatalf("expected unknown provider to be false")
	}
}

func TestRecommendModel(t *testing.T) {
	if name, ok := RecommendModel("groq", "cheap"); !ok || name != "llama-3.1-8b-instant" {
		t.Fatalf("unexpected recommendation for groq/cheap: %s", name)
	}
	if name, ok := RecommendModel("", "balanced"); !ok || name != "llama-3.3-70b-versatile" {
		t.Fatalf("unexpected recommendation for default/balanced: %s", name)
	}
	if name, ok := RecommendModel("ollama", "cheap"); !ok || name != "llama3.1:8b-instruct" {
		t.Fatalf("unexpected recommendation for ollama/cheap: %s", name)
	}
	if name, ok := RecommendModel("groq", "high-context"); !ok || name != "meta-llama/llama-4-scout-17b-16e-instruct" {
		t.Fatalf("unexpected recommendation for groq/high-context: %s", name)
	}
	if _, ok := RecommendModel("", "unknown"); ok {
		t.Fatalf("expected unknown tier to be false")
	}
}
