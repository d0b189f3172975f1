package insight

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/KaramelBytes/bizlens-cli/internal/analysis"
)

// Parse interprets a raw model response as a Report. Strict JSON is
// tried first; responses that ignored the contract fall back to
// markdown-table extraction so a ranking can still be produced.
func Parse(content string) (*Report, error) {
	cleaned := cleanJSONContent(content)
	if obj := outermostObject(cleaned); obj != "" {
		if r, ok := parseJSONReport(obj); ok {
			r.validate()
			return r, nil
		}
	}
	return parseMarkdownReport(content)
}

// looseFactor tolerates the drift real models produce: "name" instead
// of "factor", quoted numbers, missing scores.
type looseFactor struct {
	Factor      string          `json:"factor"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	ImpactScore json.RawMessage `json:"impact_score"`
}

type looseReport struct {
	Summary          string            `json:"summary"`
	KeyFindings      []string          `json:"key_findings"`
	Factors          []looseFactor     `json:"factors"`
	Recommendations  []json.RawMessage `json:"recommendations"`
	DataQualityNotes []string          `json:"data_quality_notes"`
}

func parseJSONReport(obj string) (*Report, bool) {
	var lr looseReport
	if err := json.Unmarshal([]byte(obj), &lr); err != nil {
		return nil, false
	}
	if lr.Summary == "" && len(lr.Factors) == 0 && len(lr.KeyFindings) == 0 {
		// Parsed, but clearly not our contract (e.g. an error object).
		return nil, false
	}
	r := &Report{
		Summary:          strings.TrimSpace(lr.Summary),
		KeyFindings:      lr.KeyFindings,
		DataQualityNotes: lr.DataQualityNotes,
	}
	for _, raw := range lr.Recommendations {
		if rec, ok := decodeRecommendation(raw); ok {
			r.Recommendations = append(r.Recommendations, rec)
		}
	}
	for _, f := range lr.Factors {
		name := f.Factor
		if name == "" {
			name = f.Name
		}
		r.Factors = append(r.Factors, analysis.Factor{
			Name:        name,
			Description: strings.TrimSpace(f.Description),
			ImpactScore: scoreFromRaw(f.ImpactScore),
		})
	}
	return r, true
}

// decodeRecommendation accepts the contract's object form or a bare
// string, which some models still return.
func decodeRecommendation(raw json.RawMessage) (Recommendation, bool) {
	var rec Recommendation
	if err := json.Unmarshal(raw, &rec); err == nil {
		if rec.Title == "" {
			rec.Title = rec.Description
			rec.Description = ""
		}
		rec.Title = strings.TrimSpace(rec.Title)
		if rec.Title != "" {
			return rec, true
		}
		return Recommendation{}, false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && strings.TrimSpace(s) != "" {
		return Recommendation{Title: strings.TrimSpace(s)}, true
	}
	return Recommendation{}, false
}

// scoreFromRaw accepts a JSON number or a numeric string; anything else
// becomes NaN so the ranking filter excludes it.
func scoreFromRaw(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return math.NaN()
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return parseScore(s)
	}
	return math.NaN()
}

// parseScore turns a table cell like "85", "85%", or "85.5 " into a
// float; unparsable cells become NaN.
func parseScore(s string) float64 {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// outermostObject returns the substring from the first '{' to the last
// '}', or "" when no object brackets are present.
func outermostObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

// cleanJSONContent removes markdown code fences and conversational
// chatter models wrap around JSON despite instructions.
func cleanJSONContent(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") && strings.HasSuffix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	} else if strings.HasPrefix(content, "```") && strings.HasSuffix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}

	lines := strings.Split(content, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(trimmed)
		if trimmed == "" ||
			strings.HasPrefix(lower, "here is") ||
			strings.HasPrefix(lower, "the json") ||
			strings.HasPrefix(lower, "output:") ||
			strings.HasPrefix(lower, "response:") ||
			strings.HasPrefix(trimmed, "##") {
			continue
		}
		cleaned = append(cleaned, line)
	}
	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}

func parseMarkdownReport(content string) (*Report, error) {
	factors, err := FactorsFromMarkdown(content)
	if err != nil {
		return nil, errors.New("response contained neither a JSON object nor a factor table")
	}
	r := &Report{Factors: factors}
	r.KeyFindings, r.Recommendations = bulletsFromMarkdown(content)
	r.ParseNotes = append(r.ParseNotes, "response was not valid JSON; factors recovered from a markdown table")
	r.validate()
	return r, nil
}

// bulletsFromMarkdown salvages findings and recommendations from bullet
// lists in a non-JSON response. Bullets under a heading mentioning
// recommendations become actions; other bullets become findings.
func bulletsFromMarkdown(text string) ([]string, []Recommendation) {
	const maxBullets = 10
	var findings []string
	var recs []Recommendation
	inRecs := false
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			inRecs = strings.Contains(strings.ToLower(trimmed), "recommend")
			continue
		}
		bullet, ok := cutBullet(trimmed)
		if !ok || strings.Contains(bullet, "|") {
			continue
		}
		if inRecs {
			recs = append(recs, Recommendation{Title: bullet})
		} else {
			findings = append(findings, bullet)
		}
	}
	if len(findings) > maxBullets {
		findings = findings[:maxBullets]
	}
	if len(recs) > maxBullets {
		recs = recs[:maxBullets]
	}
	return findings, recs
}

// cutBullet strips "- ", "* ", or "1. " style list markers.
func cutBullet(s string) (string, bool) {
	for _, p := range []string{"- ", "* "} {
		if rest, ok := strings.CutPrefix(s, p); ok {
			rest = strings.TrimSpace(rest)
			return rest, rest != ""
		}
	}
	if len(s) > 2 && s[0] >= '1' && s[0] <= '9' && s[1] == '.' && s[2] == ' ' {
		rest := strings.TrimSpace(s[3:])
		return rest, rest != ""
	}
	return "", false
}

// factorColumns picks the header cells naming the factor and its score.
func factorColumns(header []string) (name, score string) {
	name = matchHeader(header, "", "factor", "driver", "cause", "name")
	score = matchHeader(header, name, "impact", "score", "weight")
	return name, score
}

// matchHeader returns the first header cell containing any key, skipping
// the given cell so one column is never used twice.
func matchHeader(header []string, skip string, keys ...string) string {
	for _, h := range header {
		if h == skip {
			continue
		}
		lower := strings.ToLower(h)
		for _, k := range keys {
			if strings.Contains(lower, k) {
				return h
			}
		}
	}
	return ""
}

// validate trims factor names, drops unnamed entries, and clamps scores
// to the 0-100 contract. NaN scores are kept: the ranking filter
// excludes them and the note explains why.
func (r *Report) validate() {
	kept := r.Factors[:0]
	for _, f := range r.Factors {
		f.Name = strings.TrimSpace(f.Name)
		if f.Name == "" {
			r.ParseNotes = append(r.ParseNotes, "dropped a factor with no name")
			continue
		}
		switch {
		case math.IsNaN(f.ImpactScore) || math.IsInf(f.ImpactScore, 0):
			r.ParseNotes = append(r.ParseNotes, fmt.Sprintf("impact score for %q is not numeric; excluded from ranking", f.Name))
		case f.ImpactScore < 0:
			r.ParseNotes = append(r.ParseNotes, fmt.Sprintf("impact score for %q raised to 0", f.Name))
			f.ImpactScore = 0
		case f.ImpactScore > 100:
			r.ParseNotes = append(r.ParseNotes, fmt.Sprintf("impact score for %q clamped to 100", f.Name))
			f.ImpactScore = 100
		}
		kept = append(kept, f)
	}
	r.Factors = kept
}
