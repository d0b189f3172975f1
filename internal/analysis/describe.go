package analysis

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
)

// topBarCategories caps how many categories a bar visualization keeps.
const topBarCategories = 15

// numericShare is the parseable fraction above which a column counts
// as numeric (strictly greater, and more than one numeric value).
const numericShare = 0.8

// NumericSummary holds descriptive statistics for one numeric column.
// Std dev is the sample form (n−1 denominator, 0 when count ≤ 1);
// quartiles use the nearest-rank indices on (n+1)·p, clamped to the
// sorted array bounds.
type NumericSummary struct {
	Variable string  `json:"variable"`
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	Median   float64 `json:"median"`
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Q1       float64 `json:"q1"`
	Q3       float64 `json:"q3"`
	IQR      float64 `json:"iqr"`
}

// CategoryFrequency is one row of a frequency table.
type CategoryFrequency struct {
	Category   string  `json:"category"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// CategoricalSummary holds the frequency profile of one categorical
// column. Frequencies are sorted by count descending; ties keep
// first-seen order, and Mode is the first entry.
type CategoricalSummary struct {
	Variable         string              `json:"variable"`
	Count            int                 `json:"count"`
	UniqueCategories int                 `json:"unique_categories"`
	Mode             string              `json:"mode"`
	Frequencies      []CategoryFrequency `json:"frequencies"`
}

// Visualization is chart-ready data for one column: a histogram spec
// carrying the raw numeric array, or a bar spec carrying the top
// categories by count.
type Visualization struct {
	Type      string    `json:"type"` // histogram|bar
	Column    string    `json:"column"`
	Title     string    `json:"title"`
	Values    []float64 `json:"values,omitempty"`
	Labels    []string  `json:"labels,omitempty"`
	Counts    []int     `json:"counts,omitempty"`
	Truncated bool      `json:"truncated,omitempty"`
}

// Overview summarizes the dataset's composition.
type Overview struct {
	Rows            int    `json:"rows"`
	Columns         int    `json:"columns"`
	NumericalVars   int    `json:"numerical_vars"`
	CategoricalVars int    `json:"categorical_vars"`
	Description     string `json:"description"`
}

// Report is the full descriptive analysis of one Table.
type Report struct {
	Name           string               `json:"name,omitempty"`
	Overview       Overview             `json:"overview"`
	Numerical      []NumericSummary     `json:"numerical_summary"`
	Categorical    []CategoricalSummary `json:"categorical_summary"`
	Visualizations []Visualization      `json:"visualizations"`
	SampleHeader   []string             `json:"-"`
	Samples        [][]string           `json:"-"`
	Extended       []ExtendedStats      `json:"extended,omitempty"`
	Correlations   []PairCorrelation    `json:"correlations,omitempty"`
	Balance        []BalanceCheck       `json:"category_balance,omitempty"`
	Notes          []string             `json:"notes,omitempty"`
}

// Describe classifies every column as numeric or categorical and
// computes its summary plus a visualization spec.
//
// A column is numeric when more than 80% of its non-empty values
// coerce to numbers and there are at least two of them. Columns with
// no usable values are skipped with a note, never an error; the same
// goes for an entirely empty table. Deciding whether an empty result
// is fatal is the caller's business.
func Describe(t *Table) *Report {
	rep := &Report{}
	for _, name := range t.Header {
		values := collectColumn(t, name)
		if len(values) == 0 {
			rep.Notes = append(rep.Notes, fmt.Sprintf("column %q skipped: no usable values", name))
			continue
		}
		nums := coerceNumbers(values)
		if float64(len(nums))/float64(len(values)) > numericShare && len(nums) > 1 {
			rep.Numerical = append(rep.Numerical, summarizeNumeric(name, nums))
			rep.Visualizations = append(rep.Visualizations, Visualization{
				Type:   "histogram",
				Column: name,
				Title:  "Distribution of " + name,
				Values: nums,
			})
			continue
		}
		sum, viz := summarizeCategorical(name, values)
		rep.Categorical = append(rep.Categorical, sum)
		rep.Visualizations = append(rep.Visualizations, viz)
	}
	rep.Overview = Overview{
		Rows:            len(t.Rows),
		Columns:         len(t.Header),
		NumericalVars:   len(rep.Numerical),
		CategoricalVars: len(rep.Categorical),
	}
	rep.Overview.Description = fmt.Sprintf(
		"The dataset has %d rows and %d columns: %d numerical and %d categorical variables.",
		rep.Overview.Rows, rep.Overview.Columns, rep.Overview.NumericalVars, rep.Overview.CategoricalVars)
	return rep
}

// AttachSamples records the first n rows (stringified, header order)
// for report rendering. n <= 0 suppresses the section.
func (r *Report) AttachSamples(t *Table, n int) {
	r.SampleHeader = nil
	r.Samples = nil
	if n <= 0 {
		return
	}
	r.SampleHeader = t.Header
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	for _, row := range t.Rows[:n] {
		cells := make([]string, 0, len(t.Header))
		for _, name := range t.Header {
			cells = append(cells, row[name].String())
		}
		r.Samples = append(r.Samples, cells)
	}
}

// collectColumn gathers the column's present, non-empty values.
func collectColumn(t *Table, name string) []Value {
	var out []Value
	for _, row := range t.Rows {
		v, ok := row[name]
		if !ok || v.IsEmpty() {
			continue
		}
		out = append(out, v)
	}
	return out
}

var nonNumericRe = regexp.MustCompile(`[^0-9.\-]+`)

// numericValue applies the engine's coercion to a single cell:
// numerics pass through, text is stripped down to digits, '.' and '-'
// before a full parse.
func numericValue(v Value) (float64, bool) {
	if v.Numeric {
		return v.Num, true
	}
	cleaned := nonNumericRe.ReplaceAllString(v.Text, "")
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// coerceNumbers extracts the numeric view of a value list; values that
// fail to coerce are discarded.
func coerceNumbers(values []Value) []float64 {
	nums := make([]float64, 0, len(values))
	for _, v := range values {
		if f, ok := numericValue(v); ok {
			nums = append(nums, f)
		}
	}
	return nums
}

func summarizeNumeric(name string, nums []float64) NumericSummary {
	count := len(nums)
	var sum float64
	for _, x := range nums {
		sum += x
	}
	mean := sum / float64(count)

	sorted := append([]float64(nil), nums...)
	sort.Float64s(sorted)

	var median float64
	mid := count / 2
	if count%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		median = sorted[mid]
	}

	var m2 float64
	for _, x := range sorted {
		d := x - mean
		m2 += d * d
	}
	denom := float64(count - 1)
	if count <= 1 {
		denom = 1
	}
	std := math.Sqrt(m2 / denom)
	if count <= 1 {
		std = 0
	}

	q1Index := int(math.Floor(float64(count+1)*0.25)) - 1
	if q1Index < 0 {
		q1Index = 0
	}
	q3Index := int(math.Floor(float64(count+1)*0.75)) - 1
	if q3Index > count-1 {
		q3Index = count - 1
	}
	q1 := sorted[q1Index]
	q3 := sorted[q3Index]

	return NumericSummary{
		Variable: name,
		Count:    count,
		Mean:     mean,
		Median:   median,
		StdDev:   std,
		Min:      sorted[0],
		Max:      sorted[count-1],
		Q1:       q1,
		Q3:       q3,
		IQR:      q3 - q1,
	}
}

func summarizeCategorical(name string, values []Value) (CategoricalSummary, Visualization) {
	counts := make(map[string]int, len(values))
	var order []string // first-seen key order, the tie-breaker
	for _, v := range values {
		k := v.String()
		if _, seen := counts[k]; !seen {
			order = append(order, k)
		}
		counts[k]++
	}

	total := len(values)
	freqs := make([]CategoryFrequency, 0, len(order))
	for _, k := range order {
		freqs = append(freqs, CategoryFrequency{
			Category:   k,
			Count:      counts[k],
			Percentage: float64(counts[k]) / float64(total) * 100,
		})
	}
	sort.SliceStable(freqs, func(i, j int) bool { return freqs[i].Count > freqs[j].Count })

	top := freqs
	truncated := false
	if len(freqs) > topBarCategories {
		top = freqs[:topBarCategories]
		truncated = true
	}
	labels := make([]string, 0, len(top))
	barCounts := make([]int, 0, len(top))
	for _, f := range top {
		labels = append(labels, f.Category)
		barCounts = append(barCounts, f.Count)
	}
	title := "Distribution of " + name
	if truncated {
		title += " (Truncated)"
	}

	return CategoricalSummary{
			Variable:         name,
			Count:            total,
			UniqueCategories: len(freqs),
			Mode:             freqs[0].Category,
			Frequencies:      freqs,
		}, Visualization{
			Type:      "bar",
			Column:    name,
			Title:     title,
			Labels:    labels,
			Counts:    barCounts,
			Truncated: truncated,
		}
}
