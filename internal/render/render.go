package render

import (
	"fmt"
	"math"
	"time"

	"github.com/KaramelBytes/bizlens-cli/internal/analysis"
	"github.com/KaramelBytes/bizlens-cli/internal/insight"
	"github.com/KaramelBytes/bizlens-cli/internal/utils"
)

// Format selects the output representation of a Document.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatHTML     Format = "html"
)

// ParseFormat normalizes a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "md", "markdown":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "html":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("unknown format %q (expected markdown, json, or html)", s)
}

// Ext returns the file extension for the format.
func (f Format) Ext() string {
	switch f {
	case FormatJSON:
		return ".json"
	case FormatHTML:
		return ".html"
	default:
		return ".md"
	}
}

// Document is everything one run produces: the descriptive report for
// each dataset, plus the model insights when they were requested.
type Document struct {
	Title       string             `json:"title"`
	GeneratedAt time.Time          `json:"generated_at"`
	Datasets    []*analysis.Report `json:"datasets,omitempty"`
	Insights    *insight.Report    `json:"insights,omitempty"`
	Meta        *Meta              `json:"meta,omitempty"`
}

// Meta records which model produced the insights in a document.
type Meta struct {
	Model        string `json:"model,omitempty"`
	Provider     string `json:"provider,omitempty"`
	PromptTokens int    `json:"prompt_tokens,omitempty"`
	RequestID    string `json:"request_id,omitempty"`
}

// NewDocument stamps a document with the current time.
func NewDocument(title string, reports ...*analysis.Report) *Document {
	return &Document{Title: title, GeneratedAt: time.Now(), Datasets: reports}
}

// Render serializes the document in the requested format.
func (d *Document) Render(f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		d.sanitize()
		return utils.PrettyJSON(d)
	case FormatHTML:
		d.sanitize()
		return d.renderHTML()
	case FormatMarkdown:
		return []byte(d.Markdown()), nil
	}
	return nil, fmt.Errorf("unknown format %q", f)
}

// sanitize makes the document safe to marshal: JSON has no encoding for
// NaN or infinities, which can reach us through unscored insight
// factors or data containing literal infinities.
func (d *Document) sanitize() {
	for _, rep := range d.Datasets {
		for i := range rep.Numerical {
			ns := &rep.Numerical[i]
			fixed := false
			for _, p := range []*float64{&ns.Mean, &ns.Median, &ns.StdDev, &ns.Min, &ns.Max, &ns.Q1, &ns.Q3, &ns.IQR} {
				if !isFinite(*p) {
					*p = 0
					fixed = true
				}
			}
			if fixed {
				rep.Notes = append(rep.Notes, fmt.Sprintf("column %q contained non-finite values; affected statistics were zeroed for serialization", ns.Variable))
			}
		}
		for i := range rep.Visualizations {
			viz := &rep.Visualizations[i]
			kept := viz.Values[:0]
			for _, v := range viz.Values {
				if isFinite(v) {
					kept = append(kept, v)
				}
			}
			viz.Values = kept
		}
	}
	if d.Insights == nil {
		return
	}
	kept := d.Insights.Factors[:0]
	for _, f := range d.Insights.Factors {
		if !isFinite(f.ImpactScore) {
			d.Insights.DataQualityNotes = append(d.Insights.DataQualityNotes,
				fmt.Sprintf("factor %q had no numeric impact score and was omitted", f.Name))
			continue
		}
		kept = append(kept, f)
	}
	d.Insights.Factors = kept
	// Ranked entries keep their position even unscored: when no factor
	// had a finite score the ranking preserves the original order, so
	// zero the score instead of dropping the row.
	for i := range d.Insights.Ranked {
		rf := &d.Insights.Ranked[i]
		if !isFinite(rf.ImpactScore) {
			d.Insights.DataQualityNotes = append(d.Insights.DataQualityNotes,
				fmt.Sprintf("ranked factor %q had no numeric impact score; its score was zeroed", rf.Name))
			rf.ImpactScore = 0
		}
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
