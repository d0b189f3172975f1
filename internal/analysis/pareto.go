package analysis

import (
	"math"
	"sort"
)

// DefaultParetoThreshold is the cumulative-percentage cutoff of the
// classic 80/20 rule.
const DefaultParetoThreshold = 80.0

// Priority labels assigned by RankFactors.
const (
	PriorityHigh = "High"
	PriorityLow  = "Low"
)

// Factor is a scored improvement lever, typically extracted from an AI
// insight response or loaded from a factors file.
type Factor struct {
	Name        string  `json:"factor"`
	Description string  `json:"description,omitempty"`
	ImpactScore float64 `json:"impact_score"`
}

// RankedFactor augments a Factor with its Pareto position.
type RankedFactor struct {
	Factor
	CumulativePercentage float64 `json:"cumulative_percentage"`
	Priority             string  `json:"priority"`
	Rank                 int     `json:"rank"`
}

// RankFactors applies the vital-few/useful-many split: sort by impact
// descending, accumulate each factor's share of total impact, and mark
// factors High priority while the running share stays at or below the
// threshold (≤ 0 means DefaultParetoThreshold).
//
// Degenerate inputs degrade instead of failing. Factors without a
// finite score are excluded from ranking; if none have one, the
// original order comes back with zero cumulative share, Low priority
// and original-position ranks. An all-zero total likewise yields Low
// priority throughout, avoiding a divide by zero.
//
// With positive scores the cumulative share is non-decreasing, so
// priorities flip from High to Low at most once down the ranking.
func RankFactors(factors []Factor, threshold float64) []RankedFactor {
	if threshold <= 0 {
		threshold = DefaultParetoThreshold
	}

	valid := make([]Factor, 0, len(factors))
	for _, f := range factors {
		if !math.IsNaN(f.ImpactScore) && !math.IsInf(f.ImpactScore, 0) {
			valid = append(valid, f)
		}
	}
	if len(valid) == 0 {
		out := make([]RankedFactor, 0, len(factors))
		for i, f := range factors {
			out = append(out, RankedFactor{Factor: f, Priority: PriorityLow, Rank: i + 1})
		}
		return out
	}

	sort.SliceStable(valid, func(i, j int) bool { return valid[i].ImpactScore > valid[j].ImpactScore })

	var total float64
	for _, f := range valid {
		total += f.ImpactScore
	}
	out := make([]RankedFactor, 0, len(valid))
	if total == 0 {
		for i, f := range valid {
			out = append(out, RankedFactor{Factor: f, Priority: PriorityLow, Rank: i + 1})
		}
		return out
	}

	var cum float64
	for i, f := range valid {
		cum += f.ImpactScore
		pct := round1(cum / total * 100)
		priority := PriorityLow
		if pct <= threshold {
			priority = PriorityHigh
		}
		out = append(out, RankedFactor{
			Factor:               f,
			CumulativePercentage: pct,
			Priority:             priority,
			Rank:                 i + 1,
		})
	}
	return out
}

// round1 rounds to one decimal place.
func round1(x float64) float64 { return math.Round(x*10) / 10 }
