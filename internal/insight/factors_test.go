package insight_test

import (
	"math"
	"testing"

	"github.com/KaramelBytes/bizlens-cli/internal/analysis"
	"github.com/KaramelBytes/bizlens-cli/internal/insight"
)

func TestFactorsFromJSONArray(t *testing.T) {
	data := []byte(`[
  {"factor": "Pricing", "description": "Price pressure", "impact_score": 50},
  {"name": "Churn", "impact_score": "30%"}
]`)
	factors, err := insight.FactorsFromJSON(data)
	if err != nil {
		t.Fatalf("FactorsFromJSON: %v", err)
	}
	if len(factors) != 2 {
		t.Fatalf("expected 2 factors, got %#v", factors)
	}
	if factors[0].Name != "Pricing" || factors[0].ImpactScore != 50 || factors[0].Description != "Price pressure" {
		t.Fatalf("unexpected first factor %+v", factors[0])
	}
	if factors[1].Name != "Churn" || factors[1].ImpactScore != 30 {
		t.Fatalf("name fallback or percent score not handled: %+v", factors[1])
	}
}

func TestFactorsFromJSONObject(t *testing.T) {
	data := []byte(`{"summary": "ignored", "factors": [{"factor": "A", "impact_score": 10}]}`)
	factors, err := insight.FactorsFromJSON(data)
	if err != nil {
		t.Fatalf("FactorsFromJSON: %v", err)
	}
	if len(factors) != 1 || factors[0].Name != "A" {
		t.Fatalf("object wrapper not unwrapped: %#v", factors)
	}
}

func TestFactorsFromJSONErrors(t *testing.T) {
	for _, data := range []string{`[]`, `{"summary": "no factors here"}`, `not json`} {
		if _, err := insight.FactorsFromJSON([]byte(data)); err == nil {
			t.Errorf("FactorsFromJSON(%q): expected error", data)
		}
	}
}

func TestFactorsFromJSONUnparsableScore(t *testing.T) {
	factors, err := insight.FactorsFromJSON([]byte(`[{"factor": "X", "impact_score": "high"}]`))
	if err != nil {
		t.Fatalf("FactorsFromJSON: %v", err)
	}
	if !math.IsNaN(factors[0].ImpactScore) {
		t.Fatalf("expected NaN score, got %v", factors[0].ImpactScore)
	}
}

func TestFactorsFromMarkdown(t *testing.T) {
	text := `Here are the drivers we identified:

| Factor | Impact | Description |
|--------|--------|-------------|
| Pricing | 50 | Price pressure |
| Churn | 30% | Customer loss |

Let me know if you need more detail.`
	factors, err := insight.FactorsFromMarkdown(text)
	if err != nil {
		t.Fatalf("FactorsFromMarkdown: %v", err)
	}
	if len(factors) != 2 {
		t.Fatalf("expected 2 factors, got %#v", factors)
	}
	if factors[0].Name != "Pricing" || factors[0].ImpactScore != 50 || factors[0].Description != "Price pressure" {
		t.Fatalf("unexpected first factor %+v", factors[0])
	}
	if factors[1].ImpactScore != 30 {
		t.Fatalf("percent score not stripped: %+v", factors[1])
	}
}

func TestFactorsFromMarkdownNoTable(t *testing.T) {
	if _, err := insight.FactorsFromMarkdown("just prose, no tables"); err == nil {
		t.Fatal("expected error for text without a factor table")
	}
	// A table without factor/impact columns should not match either.
	if _, err := insight.FactorsFromMarkdown("| a | b |\n|---|---|\n| 1 | 2 |"); err == nil {
		t.Fatal("expected error for unrelated table")
	}
}

func TestFactorsFromTable(t *testing.T) {
	tbl := analysis.ParseCSV("driver,impact_score,description\nPricing,50,price pressure\nChurn,30,customer loss\nSeasonality,20,holiday dip\n")
	factors, err := insight.FactorsFromTable(tbl)
	if err != nil {
		t.Fatalf("FactorsFromTable: %v", err)
	}
	if len(factors) != 3 {
		t.Fatalf("expected 3 factors, got %#v", factors)
	}
	if factors[0].Name != "Pricing" || factors[0].ImpactScore != 50 || factors[0].Description != "price pressure" {
		t.Fatalf("unexpected first factor %+v", factors[0])
	}
}

func TestFactorsFromTableTextScore(t *testing.T) {
	tbl := analysis.ParseCSV("factor,score\nA,40%\nB,tbd\n")
	factors, err := insight.FactorsFromTable(tbl)
	if err != nil {
		t.Fatalf("FactorsFromTable: %v", err)
	}
	if factors[0].ImpactScore != 40 {
		t.Fatalf("percent text score not coerced: %+v", factors[0])
	}
	if !math.IsNaN(factors[1].ImpactScore) {
		t.Fatalf("expected NaN for unparsable score, got %v", factors[1].ImpactScore)
	}
}

func TestFactorsFromTableMissingColumns(t *testing.T) {
	tbl := analysis.ParseCSV("region,revenue\nnorth,100\n")
	if _, err := insight.FactorsFromTable(tbl); err == nil {
		t.Fatal("expected error when no factor/impact columns exist")
	}
}
