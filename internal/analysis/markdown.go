package analysis

import (
	"fmt"
	"strings"
)

// topValuesShown caps how many frequency entries the markdown schema
// line lists per categorical column.
const topValuesShown = 8

// Markdown renders the report as the prompt block sent to the model:
// bracketed sections, compact schema lines, markdown tables where the
// data is genuinely tabular.
func (r *Report) Markdown() string {
	var b strings.Builder

	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Overview.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d (%d numerical, %d categorical)\n",
		r.Overview.Columns, r.Overview.NumericalVars, r.Overview.CategoricalVars))
	if r.Overview.Description != "" {
		b.WriteString(r.Overview.Description + "\n")
	}

	if len(r.Numerical) > 0 {
		b.WriteString("\n[NUMERICAL SUMMARY]\n")
		b.WriteString("| Variable | Count | Mean | Median | Std Dev | Min | Max | Q1 | Q3 | IQR |\n")
		b.WriteString("|---|---|---|---|---|---|---|---|---|---|\n")
		for _, n := range r.Numerical {
			b.WriteString(fmt.Sprintf("| %s | %d | %.4g | %.4g | %.4g | %.4g | %.4g | %.4g | %.4g | %.4g |\n",
				safeName(n.Variable), n.Count, n.Mean, n.Median, n.StdDev, n.Min, n.Max, n.Q1, n.Q3, n.IQR))
		}
	}

	if len(r.Categorical) > 0 {
		b.WriteString("\n[CATEGORICAL SUMMARY]\n")
		for _, c := range r.Categorical {
			b.WriteString(fmt.Sprintf("- %s: n=%d, unique=%d, mode=%s; top: ",
				safeName(c.Variable), c.Count, c.UniqueCategories, safeVal(c.Mode)))
			shown := c.Frequencies
			if len(shown) > topValuesShown {
				shown = shown[:topValuesShown]
			}
			for i, f := range shown {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(fmt.Sprintf("%s(%d, %.1f%%)", safeVal(f.Category), f.Count, f.Percentage))
			}
			if len(c.Frequencies) > len(shown) {
				b.WriteString(fmt.Sprintf(" (+%d more)", len(c.Frequencies)-len(shown)))
			}
			b.WriteString("\n")
		}
	}

	if len(r.Extended) > 0 {
		b.WriteString("\n[EXTENDED METRICS]\n")
		b.WriteString("| Variable | CV | Skewness | Kurtosis |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, e := range r.Extended {
			b.WriteString(fmt.Sprintf("| %s | %.3f | %.3f | %.3f |\n",
				safeName(e.Variable), e.CoefficientOfVariation, e.Skewness, e.Kurtosis))
		}
	}
	if len(r.Balance) > 0 {
		b.WriteString("\n[CATEGORY BALANCE]\n")
		for _, bc := range r.Balance {
			verdict := "roughly uniform"
			if bc.Skewed {
				verdict = "skewed"
			}
			b.WriteString(fmt.Sprintf("- %s: chi2=%.2f, p=%.3f (%s)\n",
				safeName(bc.Variable), bc.ChiSquare, bc.PValue, verdict))
		}
	}

	if len(r.Correlations) > 0 {
		b.WriteString("\n[CORRELATIONS]\n")
		for _, p := range r.Correlations {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", safeName(p.A), safeName(p.B), p.R))
		}
	}

	if len(r.Samples) > 0 && len(r.SampleHeader) > 0 {
		b.WriteString("\n[SAMPLE ROWS]\n")
		b.WriteString("| " + strings.Join(mapStrings(r.SampleHeader, safeName), " | ") + " |\n")
		b.WriteString("|" + strings.Repeat("---|", len(r.SampleHeader)) + "\n")
		for _, row := range r.Samples {
			b.WriteString("| " + strings.Join(mapStrings(row, safeVal), " | ") + " |\n")
		}
	}

	if len(r.Notes) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, n := range r.Notes {
			b.WriteString("- " + n + "\n")
		}
	}

	return b.String()
}

func mapStrings(in []string, f func(string) string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = f(s)
	}
	return out
}

func safeName(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", "/")
}

func safeVal(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/")
}
