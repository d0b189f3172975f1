package analysis

import (
	"math"
	"sort"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// corrReportFloor keeps only meaningful pairs in the report.
const corrReportFloor = 0.3

// ExtendedStats carries distribution metrics beyond the pinned summary
// fields. These are additive: nothing here feeds back into
// NumericSummary, whose formulas stay fixed.
type ExtendedStats struct {
	Variable               string  `json:"variable"`
	CoefficientOfVariation float64 `json:"coefficient_of_variation"`
	Skewness               float64 `json:"skewness"`
	Kurtosis               float64 `json:"kurtosis"`
}

// PairCorrelation is a Pearson correlation between two numeric columns.
type PairCorrelation struct {
	A string  `json:"a"`
	B string  `json:"b"`
	R float64 `json:"r"`
}

// BalanceCheck is a chi-square test of a categorical column against
// the uniform distribution; a small p-value means the categories are
// far from evenly spread.
type BalanceCheck struct {
	Variable  string  `json:"variable"`
	ChiSquare float64 `json:"chi_square"`
	PValue    float64 `json:"p_value"`
	Skewed    bool    `json:"skewed"`
}

// AddExtended fills the report's supplementary sections: variation and
// shape metrics per numeric column, pairwise correlations, and
// category-balance checks. Degenerate columns get zero metrics rather
// than NaNs so the report stays JSON-safe.
func (r *Report) AddExtended(t *Table) {
	for _, ns := range r.Numerical {
		nums := coerceNumbers(collectColumn(t, ns.Variable))
		ex := ExtendedStats{Variable: ns.Variable}
		if m, err := mstats.Mean(nums); err == nil && m != 0 {
			if sd, err := mstats.StandardDeviationSample(nums); err == nil {
				ex.CoefficientOfVariation = sd / math.Abs(m)
			}
		}
		if len(nums) >= 3 && ns.StdDev > 0 {
			if sk := stat.Skew(nums, nil); !math.IsNaN(sk) {
				ex.Skewness = sk
			}
			if ku := stat.ExKurtosis(nums, nil); !math.IsNaN(ku) {
				ex.Kurtosis = ku
			}
		}
		r.Extended = append(r.Extended, ex)
	}

	r.Correlations = numericCorrelations(t, r.Numerical)

	for _, cs := range r.Categorical {
		if bc, ok := balanceCheck(cs); ok {
			r.Balance = append(r.Balance, bc)
		}
	}
}

// numericCorrelations computes Pearson r for every numeric column pair
// over the rows where both cells coerce, keeping pairs at or above the
// reporting floor, strongest first.
func numericCorrelations(t *Table, numeric []NumericSummary) []PairCorrelation {
	var pairs []PairCorrelation
	for i := 0; i < len(numeric); i++ {
		for j := i + 1; j < len(numeric); j++ {
			a, b := numeric[i].Variable, numeric[j].Variable
			xs, ys := pairedNumbers(t, a, b)
			if len(xs) < 3 {
				continue
			}
			r := stat.Correlation(xs, ys, nil)
			if math.IsNaN(r) || math.Abs(r) < corrReportFloor {
				continue
			}
			pairs = append(pairs, PairCorrelation{A: a, B: b, R: r})
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return math.Abs(pairs[i].R) > math.Abs(pairs[j].R)
	})
	return pairs
}

func pairedNumbers(t *Table, a, b string) (xs, ys []float64) {
	for _, row := range t.Rows {
		x, okx := numericValue(row[a])
		y, oky := numericValue(row[b])
		if okx && oky {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	return xs, ys
}

func balanceCheck(cs CategoricalSummary) (BalanceCheck, bool) {
	k := cs.UniqueCategories
	if k < 2 || cs.Count == 0 {
		return BalanceCheck{}, false
	}
	expected := float64(cs.Count) / float64(k)
	var chi2 float64
	for _, f := range cs.Frequencies {
		d := float64(f.Count) - expected
		chi2 += d * d / expected
	}
	dist := distuv.ChiSquared{K: float64(k - 1)}
	p := 1 - dist.CDF(chi2)
	return BalanceCheck{
		Variable:  cs.Variable,
		ChiSquare: chi2,
		PValue:    p,
		Skewed:    p < 0.05,
	}, true
}
