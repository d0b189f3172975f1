package render

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/KaramelBytes/bizlens-cli/internal/analysis"
	"github.com/KaramelBytes/bizlens-cli/internal/insight"
)

//go:embed templates/report.html
var htmlReportTemplate string

const histogramBins = 10

type htmlChart struct {
	ID     string
	Title  string
	Labels template.JS
	Counts template.JS
}

type htmlDataset struct {
	Name         string
	Overview     analysis.Overview
	Numerical    []analysis.NumericSummary
	Categorical  []analysis.CategoricalSummary
	Extended     []analysis.ExtendedStats
	Correlations []analysis.PairCorrelation
	Balance      []analysis.BalanceCheck
	Notes        []string
	Charts       []htmlChart
}

type htmlInsights struct {
	NarrativeHTML  template.HTML
	Ranked         []analysis.RankedFactor
	HasRanking     bool
	FactorLabels   template.JS
	ImpactData     template.JS
	CumulativeData template.JS
	ParseNotes     []string
}

type htmlData struct {
	Title       string
	GeneratedAt string
	Model       string
	Datasets    []htmlDataset
	Insights    *htmlInsights
}

func (d *Document) renderHTML() ([]byte, error) {
	funcMap := template.FuncMap{
		"num": func(f float64) string { return fmt.Sprintf("%.4g", f) },
		"pct": func(f float64) string { return fmt.Sprintf("%.1f%%", f) },
	}
	tmpl, err := template.New("report").Funcs(funcMap).Parse(htmlReportTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse report template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, d.prepareHTMLData()); err != nil {
		return nil, fmt.Errorf("execute report template: %w", err)
	}
	return buf.Bytes(), nil
}

func (d *Document) prepareHTMLData() htmlData {
	data := htmlData{
		Title:       d.Title,
		GeneratedAt: d.GeneratedAt.Format("2006-01-02 15:04 MST"),
	}
	if d.Meta != nil && d.Meta.Model != "" {
		data.Model = fmt.Sprintf("%s (%s)", d.Meta.Model, d.Meta.Provider)
	}
	chartID := 0
	for _, rep := range d.Datasets {
		ds := htmlDataset{
			Name:         rep.Name,
			Overview:     rep.Overview,
			Numerical:    rep.Numerical,
			Categorical:  rep.Categorical,
			Extended:     rep.Extended,
			Correlations: rep.Correlations,
			Balance:      rep.Balance,
			Notes:        rep.Notes,
		}
		for _, viz := range rep.Visualizations {
			chartID++
			ch := htmlChart{ID: fmt.Sprintf("chart%d", chartID), Title: viz.Title}
			switch viz.Type {
			case "histogram":
				labels, counts := binValues(viz.Values, histogramBins)
				ch.Labels = toJSArray(labels)
				ch.Counts = toJSArray(counts)
			case "bar":
				ch.Labels = toJSArray(viz.Labels)
				ch.Counts = toJSArray(viz.Counts)
			default:
				continue
			}
			ds.Charts = append(ds.Charts, ch)
		}
		data.Datasets = append(data.Datasets, ds)
	}
	if ins := d.Insights; ins != nil {
		h := &htmlInsights{Ranked: ins.Ranked, ParseNotes: ins.ParseNotes}
		h.NarrativeHTML = mdToHTML(insightNarrative(ins))
		if len(ins.Ranked) > 0 {
			h.HasRanking = true
			var labels []string
			var impact, cum []float64
			for _, rf := range ins.Ranked {
				labels = append(labels, rf.Name)
				impact = append(impact, rf.ImpactScore)
				cum = append(cum, rf.CumulativePercentage)
			}
			h.FactorLabels = toJSArray(labels)
			h.ImpactData = toJSArray(impact)
			h.CumulativeData = toJSArray(cum)
		}
		data.Insights = h
	}
	return data
}

// insightNarrative collapses the insight prose into one markdown block
// for the HTML body; the ranking table is rendered separately.
func insightNarrative(ins *insight.Report) string {
	var sb strings.Builder
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
	}
	return sb.String()
}

func mdToHTML(src string) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(src))
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	return template.HTML(markdown.Render(doc, renderer))
}

// binValues buckets raw values into equal-width histogram bins.
func binValues(values []float64, bins int) ([]string, []int) {
	if len(values) == 0 {
		return nil, nil
	}
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if min == max {
		return []string{fmt.Sprintf("%.4g", min)}, []int{len(values)}
	}
	if bins < 1 {
		bins = 1
	}
	width := (max - min) / float64(bins)
	counts := make([]int, bins)
	for _, v := range values {
		i := int((v - min) / width)
		if i >= bins {
			i = bins - 1
		}
		counts[i]++
	}
	labels := make([]string, bins)
	for i := range labels {
		lo := min + float64(i)*width
		labels[i] = fmt.Sprintf("%.4g to %.4g", lo, lo+width)
	}
	return labels, counts
}

func toJSArray(v interface{}) template.JS {
	b, err := json.Marshal(v)
	if err != nil {
		// An empty payload would be a script syntax error in the page.
		return template.JS("[]")
	}
	return template.JS(b)
}
