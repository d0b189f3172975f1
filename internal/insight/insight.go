package insight

import (
	"github.com/KaramelBytes/bizlens-cli/internal/analysis"
)

// Report is the structured result of an insight generation run.
// Factors carry the model's impact estimates; Ranked is filled in by
// Rank() after parsing and validation.
type Report struct {
	Summary          string            `json:"summary"`
	KeyFindings      []string          `json:"key_findings"`
	Factors          []analysis.Factor `json:"factors"`
	Recommendations  []Recommendation  `json:"recommendations"`
	DataQualityNotes []string          `json:"data_quality_notes,omitempty"`

	Ranked []analysis.RankedFactor `json:"ranked_factors,omitempty"`

	// Diagnostics accumulated while parsing/validating the raw response.
	ParseNotes []string `json:"-"`
}

// Recommendation is one suggested action from the model.
type Recommendation struct {
	Title          string `json:"title"`
	Description    string `json:"description,omitempty"`
	ExpectedImpact string `json:"expected_impact,omitempty"`
	Timeframe      string `json:"timeframe,omitempty"`
}

// Rank applies the 80/20 classification to the report's factors.
// Factors whose scores never parsed (NaN) are excluded by the ranking
// itself, so a partially garbled response still produces a usable list.
func (r *Report) Rank(threshold float64) {
	r.Ranked = analysis.RankFactors(r.Factors, threshold)
}
