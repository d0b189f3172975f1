package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/KaramelBytes/bizlens-cli/internal/insight"
)

// Markdown renders the full report document: one descriptive section
// per dataset, then the insights when present.
func (d *Document) Markdown() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", d.Title)
	fmt.Fprintf(&sb, "_Generated %s_\n\n", d.GeneratedAt.Format(time.RFC3339))
	if d.Meta != nil && d.Meta.Model != "" {
		fmt.Fprintf(&sb, "_Model: %s (%s)_\n\n", d.Meta.Model, d.Meta.Provider)
	}
	for _, rep := range d.Datasets {
		fmt.Fprintf(&sb, "## Dataset: %s\n\n", rep.Name)
		sb.WriteString(rep.Markdown())
		sb.WriteString("\n")
	}
	if d.Insights != nil {
		sb.WriteString(d.insightsMarkdown())
	}
	return sb.String()
}

func (d *Document) insightsMarkdown() string {
	ins := d.Insights
	var sb strings.Builder
	sb.WriteString("## Insights\n\n")
	if ins.Summary != "" {
		sb.WriteString(ins.Summary)
		sb.WriteString("\n\n")
	}
	if len(ins.KeyFindings) > 0 {
		sb.WriteString("### Key findings\n\n")
		for _, kf := range ins.KeyFindings {
			fmt.Fprintf(&sb, "- %s\n", kf)
		}
		sb.WriteString("\n")
	}
	if len(ins.Ranked) > 0 {
		sb.WriteString("### Factor ranking (80/20)\n\n")
		sb.WriteString("| Rank | Factor | Impact | Cumulative % | Priority |\n")
		sb.WriteString("|---|---|---|---|---|\n")
		for _, rf := range ins.Ranked {
			fmt.Fprintf(&sb, "| %d | %s | %.4g | %.1f | %s |\n",
				rf.Rank, tableCell(rf.Name), rf.ImpactScore, rf.CumulativePercentage, rf.Priority)
		}
		sb.WriteString("\n")
		for _, rf := range ins.Ranked {
			if rf.Description != "" {
				fmt.Fprintf(&sb, "- %s: %s\n", rf.Name, rf.Description)
			}
		}
		sb.WriteString("\n")
	} else if len(ins.Factors) > 0 {
		sb.WriteString("### Factors\n\n")
		for _, f := range ins.Factors {
			fmt.Fprintf(&sb, "- %s (impact %.4g)\n", f.Name, f.ImpactScore)
		}
		sb.WriteString("\n")
	}
	if len(ins.Recommendations) > 0 {
		sb.WriteString("### Recommendations\n\n")
		for _, rec := range ins.Recommendations {
			sb.WriteString(recommendationLine(rec))
		}
		sb.WriteString("\n")
	}
	if len(ins.DataQualityNotes) > 0 {
		sb.WriteString("### Data quality notes\n\n")
		for _, n := range ins.DataQualityNotes {
			fmt.Fprintf(&sb, "- %s\n", n)
		}
		sb.WriteString("\n")
	}
	if len(ins.ParseNotes) > 0 {
		sb.WriteString("### Response handling\n\n")
		for _, n := range ins.ParseNotes {
			fmt.Fprintf(&sb, "- %s\n", n)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// recommendationLine renders one suggested action as a markdown bullet.
func recommendationLine(rec insight.Recommendation) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "- **%s**", rec.Title)
	if rec.Timeframe != "" {
		fmt.Fprintf(&sb, " (%s)", rec.Timeframe)
	}
	if rec.Description != "" {
		fmt.Fprintf(&sb, ": %s", rec.Description)
	}
	if rec.ExpectedImpact != "" {
		fmt.Fprintf(&sb, " (expected impact: %s)", rec.ExpectedImpact)
	}
	sb.WriteString("\n")
	return sb.String()
}

// tableCell keeps a value from breaking markdown table geometry.
func tableCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", "/")
}
