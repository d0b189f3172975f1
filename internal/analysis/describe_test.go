package analysis

import (
	"fmt"
	"math"
	"strings"
	"testing"
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func numericByName(t *testing.T, rep *Report, name string) NumericSummary {
	t.Helper()
	for _, n := range rep.Numerical {
		if n.Variable == name {
			return n
		}
	}
	t.Fatalf("numeric summary %q not found in %#v", name, rep.Numerical)
	return NumericSummary{}
}

func categoricalByName(t *testing.T, rep *Report, name string) CategoricalSummary {
	t.Helper()
	for _, c := range rep.Categorical {
		if c.Variable == name {
			return c
		}
	}
	t.Fatalf("categorical summary %q not found in %#v", name, rep.Categorical)
	return CategoricalSummary{}
}

func TestDescribeNumericColumn(t *testing.T) {
	rep := Describe(ParseCSV("v\n1\n2\n3\n4\n5\n"))
	n := numericByName(t, rep, "v")
	if n.Count != 5 {
		t.Fatalf("count = %d, want 5", n.Count)
	}
	if !almostEqual(n.Mean, 3) {
		t.Fatalf("mean = %v, want 3", n.Mean)
	}
	if !almostEqual(n.Median, 3) {
		t.Fatalf("median = %v, want 3", n.Median)
	}
	if !almostEqual(n.StdDev, math.Sqrt(2.5)) {
		t.Fatalf("std = %v, want sqrt(2.5)", n.StdDev)
	}
	if !almostEqual(n.Min, 1) || !almostEqual(n.Max, 5) {
		t.Fatalf("min/max = %v/%v, want 1/5", n.Min, n.Max)
	}
	// n=5: floor(6*0.25)-1 = 0, floor(6*0.75)-1 = 3
	if !almostEqual(n.Q1, 1) || !almostEqual(n.Q3, 4) || !almostEqual(n.IQR, 3) {
		t.Fatalf("q1/q3/iqr = %v/%v/%v, want 1/4/3", n.Q1, n.Q3, n.IQR)
	}
}

func TestDescribeEvenCountMedianAndQuartiles(t *testing.T) {
	rep := Describe(ParseCSV("v\n4\n1\n3\n2\n"))
	n := numericByName(t, rep, "v")
	if !almostEqual(n.Median, 2.5) {
		t.Fatalf("median = %v, want 2.5", n.Median)
	}
	// n=4: floor(5*0.25)-1 = 0, floor(5*0.75)-1 = 2
	if !almostEqual(n.Q1, 1) || !almostEqual(n.Q3, 3) || !almostEqual(n.IQR, 2) {
		t.Fatalf("q1/q3/iqr = %v/%v/%v, want 1/3/2", n.Q1, n.Q3, n.IQR)
	}
}

func TestDescribeClassificationBoundary(t *testing.T) {
	// 2 numeric of 3 collected = 66% ≤ 80%: categorical despite having
	// more than one numeric value.
	rep := Describe(ParseCSV("v\n1\n2\nabc\n"))
	if len(rep.Numerical) != 0 {
		t.Fatalf("expected no numeric summaries, got %#v", rep.Numerical)
	}
	c := categoricalByName(t, rep, "v")
	if c.Count != 3 || c.UniqueCategories != 3 {
		t.Fatalf("unexpected categorical summary: %#v", c)
	}

	// 5 of 6 numeric = 83% > 80% with >1 numeric values: numeric.
	rep = Describe(ParseCSV("v\n1\n2\n3\n4\n5\nabc\n"))
	n := numericByName(t, rep, "v")
	if n.Count != 5 {
		t.Fatalf("count = %d, want 5 (non-numeric value discarded)", n.Count)
	}
}

func TestDescribeSingleNumericValueIsCategorical(t *testing.T) {
	// 100% parseable but only one numeric value: stays categorical.
	rep := Describe(ParseCSV("v\n7\n"))
	if len(rep.Numerical) != 0 {
		t.Fatalf("expected categorical, got numeric %#v", rep.Numerical)
	}
	c := categoricalByName(t, rep, "v")
	if c.Mode != "7" {
		t.Fatalf("mode = %q, want %q", c.Mode, "7")
	}
}

func TestDescribeNumericCoercionStripsCurrency(t *testing.T) {
	rep := Describe(ParseCSV("amount\n$1200.50\n$950.25\n$410.00\n"))
	n := numericByName(t, rep, "amount")
	if n.Count != 3 {
		t.Fatalf("count = %d, want 3", n.Count)
	}
	if !almostEqual(n.Max, 1200.50) {
		t.Fatalf("max = %v, want 1200.50", n.Max)
	}

	// Thousands separators survive only when the value never went
	// through the comma-splitting parser.
	tb := &Table{
		Header: []string{"amount"},
		Rows: []Row{
			{"amount": Text("$1,200.50")},
			{"amount": Text("$950.25")},
		},
	}
	n = numericByName(t, Describe(tb), "amount")
	if !almostEqual(n.Max, 1200.50) {
		t.Fatalf("max = %v, want 1200.50 after stripping", n.Max)
	}
}

func TestDescribeCategoricalFrequencies(t *testing.T) {
	rep := Describe(ParseCSV("grade\nA\nA\nA\nA\nB\n"))
	c := categoricalByName(t, rep, "grade")
	if c.Mode != "A" {
		t.Fatalf("mode = %q, want A", c.Mode)
	}
	if len(c.Frequencies) != 2 {
		t.Fatalf("frequencies = %#v", c.Frequencies)
	}
	if !almostEqual(c.Frequencies[0].Percentage, 80) || !almostEqual(c.Frequencies[1].Percentage, 20) {
		t.Fatalf("percentages = %v/%v, want 80/20", c.Frequencies[0].Percentage, c.Frequencies[1].Percentage)
	}
	sum := 0.0
	for _, f := range c.Frequencies {
		sum += f.Percentage
	}
	if !almostEqual(sum, 100) {
		t.Fatalf("percentage sum = %v, want 100", sum)
	}
}

func TestDescribeModeTieBreakFirstSeen(t *testing.T) {
	// "red" and "blue" both appear twice; "red" was seen first.
	rep := Describe(ParseCSV("color\nred\nblue\nred\nblue\ngreen\n"))
	c := categoricalByName(t, rep, "color")
	if c.Mode != "red" {
		t.Fatalf("mode = %q, want first-seen %q among tied", c.Mode, "red")
	}
	if c.Frequencies[0].Category != "red" || c.Frequencies[1].Category != "blue" {
		t.Fatalf("tie order not preserved: %#v", c.Frequencies)
	}
}

func TestDescribeBarVisualizationTruncation(t *testing.T) {
	// Letter-only labels so the digit-stripping coercion cannot turn
	// them numeric; distinct counts keep the ordering deterministic.
	var sb strings.Builder
	sb.WriteString("city\n")
	for i := 0; i < 16; i++ {
		for j := 0; j <= i; j++ {
			fmt.Fprintf(&sb, "area%c\n", 'a'+i)
		}
	}
	rep := Describe(ParseCSV(sb.String()))
	if len(rep.Visualizations) != 1 {
		t.Fatalf("visualizations = %#v", rep.Visualizations)
	}
	viz := rep.Visualizations[0]
	if viz.Type != "bar" {
		t.Fatalf("viz type = %q, want bar", viz.Type)
	}
	if len(viz.Labels) != 15 {
		t.Fatalf("labels = %d, want 15", len(viz.Labels))
	}
	if !viz.Truncated || !strings.HasSuffix(viz.Title, "(Truncated)") {
		t.Fatalf("expected truncated title, got %q", viz.Title)
	}
	if viz.Labels[0] != "areap" {
		t.Fatalf("labels[0] = %q, want most frequent areap", viz.Labels[0])
	}

	c := categoricalByName(t, rep, "city")
	if c.UniqueCategories != 16 || len(c.Frequencies) != 16 {
		t.Fatalf("frequency table must stay complete: %#v", c)
	}
}

func TestDescribeHistogramCarriesRawValues(t *testing.T) {
	rep := Describe(ParseCSV("v\n3\n1\n2\n"))
	viz := rep.Visualizations[0]
	if viz.Type != "histogram" {
		t.Fatalf("viz type = %q, want histogram", viz.Type)
	}
	want := []float64{3, 1, 2}
	if len(viz.Values) != 3 {
		t.Fatalf("values = %#v", viz.Values)
	}
	for i := range want {
		if !almostEqual(viz.Values[i], want[i]) {
			t.Fatalf("values[%d] = %v, want %v (raw order)", i, viz.Values[i], want[i])
		}
	}
}

func TestDescribeSkipsEmptyColumnWithNote(t *testing.T) {
	rep := Describe(ParseCSV("a,b\n1,\n2,\n3,\n"))
	if len(rep.Numerical) != 1 {
		t.Fatalf("numerical = %#v", rep.Numerical)
	}
	if len(rep.Categorical) != 0 {
		t.Fatalf("categorical = %#v", rep.Categorical)
	}
	if len(rep.Notes) != 1 || !strings.Contains(rep.Notes[0], `"b"`) {
		t.Fatalf("expected skip note for column b, got %#v", rep.Notes)
	}
	if rep.Overview.Columns != 2 {
		t.Fatalf("overview.columns = %d, want 2", rep.Overview.Columns)
	}
}

func TestDescribeRoundTripRowCount(t *testing.T) {
	raw := "a,b\n1,x\n2,y\nbroken\n3,z\n"
	tb := ParseCSV(raw)
	rep := Describe(tb)
	if rep.Overview.Rows != 3 {
		t.Fatalf("overview.rows = %d, want 3 (malformed row dropped upstream)", rep.Overview.Rows)
	}
	if rep.Overview.NumericalVars != 1 || rep.Overview.CategoricalVars != 1 {
		t.Fatalf("overview composition = %#v", rep.Overview)
	}
}

func TestDescribeEmptyTableIsNotAnError(t *testing.T) {
	rep := Describe(ParseCSV(""))
	if len(rep.Numerical) != 0 || len(rep.Categorical) != 0 {
		t.Fatalf("expected empty report, got %#v", rep)
	}
	if rep.Overview.Rows != 0 {
		t.Fatalf("overview.rows = %d, want 0", rep.Overview.Rows)
	}
}

func TestAttachSamples(t *testing.T) {
	tb := ParseCSV("a,b\n1,x\n2,y\n3,z\n")
	rep := Describe(tb)
	rep.AttachSamples(tb, 2)
	if len(rep.Samples) != 2 {
		t.Fatalf("samples = %#v", rep.Samples)
	}
	if rep.Samples[0][0] != "1" || rep.Samples[0][1] != "x" {
		t.Fatalf("first sample = %#v", rep.Samples[0])
	}
	rep.AttachSamples(tb, 0)
	if rep.Samples != nil {
		t.Fatalf("samples should be suppressed, got %#v", rep.Samples)
	}
}

func TestReportMarkdownSections(t *testing.T) {
	tb := ParseCSV("amount,region\n100,North\n200,South\n300,North\n")
	rep := Describe(tb)
	rep.Name = "sales.csv"
	rep.AttachSamples(tb, 2)
	md := rep.Markdown()
	for _, want := range []string{
		"[DATASET SUMMARY]",
		"File: sales.csv",
		"[NUMERICAL SUMMARY]",
		"| amount |",
		"[CATEGORICAL SUMMARY]",
		"mode=North",
		"[SAMPLE ROWS]",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
	rep.AttachSamples(tb, 0)
	if strings.Contains(rep.Markdown(), "[SAMPLE ROWS]") {
		t.Fatalf("sample section should be suppressed when n=0")
	}
}
