package analysis

import (
	"math"
	"testing"
)

func TestRankFactorsEightyTwenty(t *testing.T) {
	ranked := RankFactors([]Factor{
		{Name: "pricing", ImpactScore: 50},
		{Name: "churn", ImpactScore: 30},
		{Name: "support", ImpactScore: 20},
	}, 0)
	if len(ranked) != 3 {
		t.Fatalf("ranked = %#v", ranked)
	}
	wantCum := []float64{50, 80, 100}
	wantPriority := []string{PriorityHigh, PriorityHigh, PriorityLow}
	for i, r := range ranked {
		if !almostEqual(r.CumulativePercentage, wantCum[i]) {
			t.Fatalf("cum[%d] = %v, want %v", i, r.CumulativePercentage, wantCum[i])
		}
		if r.Priority != wantPriority[i] {
			t.Fatalf("priority[%d] = %q, want %q", i, r.Priority, wantPriority[i])
		}
		if r.Rank != i+1 {
			t.Fatalf("rank[%d] = %d, want %d", i, r.Rank, i+1)
		}
	}
}

func TestRankFactorsSortsDescending(t *testing.T) {
	ranked := RankFactors([]Factor{
		{Name: "low", ImpactScore: 5},
		{Name: "high", ImpactScore: 90},
		{Name: "mid", ImpactScore: 40},
	}, 0)
	if ranked[0].Name != "high" || ranked[1].Name != "mid" || ranked[2].Name != "low" {
		t.Fatalf("sort order wrong: %#v", ranked)
	}
}

func TestRankFactorsSingleTransition(t *testing.T) {
	factors := []Factor{
		{Name: "a", ImpactScore: 37},
		{Name: "b", ImpactScore: 12},
		{Name: "c", ImpactScore: 25},
		{Name: "d", ImpactScore: 8},
		{Name: "e", ImpactScore: 18},
	}
	ranked := RankFactors(factors, 0)
	sawLow := false
	for _, r := range ranked {
		switch r.Priority {
		case PriorityLow:
			sawLow = true
		case PriorityHigh:
			if sawLow {
				t.Fatalf("High after Low at rank %d: %#v", r.Rank, ranked)
			}
		}
	}
	prev := -1.0
	for _, r := range ranked {
		if r.CumulativePercentage < prev {
			t.Fatalf("cumulative percentage decreased: %#v", ranked)
		}
		prev = r.CumulativePercentage
	}
}

func TestRankFactorsIdempotent(t *testing.T) {
	first := RankFactors([]Factor{
		{Name: "a", ImpactScore: 45},
		{Name: "b", ImpactScore: 35},
		{Name: "c", ImpactScore: 15},
		{Name: "d", ImpactScore: 5},
	}, 0)
	again := make([]Factor, 0, len(first))
	for _, r := range first {
		again = append(again, r.Factor)
	}
	second := RankFactors(again, 0)
	if len(first) != len(second) {
		t.Fatalf("length changed: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Rank != second[i].Rank || first[i].Priority != second[i].Priority {
			t.Fatalf("not idempotent at %d: %#v vs %#v", i, first[i], second[i])
		}
		if !almostEqual(first[i].CumulativePercentage, second[i].CumulativePercentage) {
			t.Fatalf("cumulative changed at %d", i)
		}
	}
}

func TestRankFactorsEmptyInput(t *testing.T) {
	ranked := RankFactors(nil, 0)
	if len(ranked) != 0 {
		t.Fatalf("expected empty result, got %#v", ranked)
	}
}

func TestRankFactorsNoFiniteScores(t *testing.T) {
	factors := []Factor{
		{Name: "first", ImpactScore: math.NaN()},
		{Name: "second", ImpactScore: math.Inf(1)},
	}
	ranked := RankFactors(factors, 0)
	if len(ranked) != 2 {
		t.Fatalf("ranked = %#v", ranked)
	}
	for i, r := range ranked {
		if r.Name != factors[i].Name {
			t.Fatalf("original order not preserved: %#v", ranked)
		}
		if r.CumulativePercentage != 0 || r.Priority != PriorityLow || r.Rank != i+1 {
			t.Fatalf("degraded entry wrong: %#v", r)
		}
	}
}

func TestRankFactorsZeroTotal(t *testing.T) {
	ranked := RankFactors([]Factor{
		{Name: "a", ImpactScore: 0},
		{Name: "b", ImpactScore: 0},
	}, 0)
	for _, r := range ranked {
		if r.CumulativePercentage != 0 || r.Priority != PriorityLow {
			t.Fatalf("zero-total entry wrong: %#v", r)
		}
	}
}

func TestRankFactorsMixedFinite(t *testing.T) {
	ranked := RankFactors([]Factor{
		{Name: "keep", ImpactScore: 10},
		{Name: "drop", ImpactScore: math.NaN()},
	}, 0)
	if len(ranked) != 1 || ranked[0].Name != "keep" {
		t.Fatalf("expected only the finite factor, got %#v", ranked)
	}
	if !almostEqual(ranked[0].CumulativePercentage, 100) {
		t.Fatalf("cum = %v, want 100", ranked[0].CumulativePercentage)
	}
}

func TestRankFactorsCustomThreshold(t *testing.T) {
	ranked := RankFactors([]Factor{
		{Name: "a", ImpactScore: 50},
		{Name: "b", ImpactScore: 30},
		{Name: "c", ImpactScore: 20},
	}, 50)
	want := []string{PriorityHigh, PriorityLow, PriorityLow}
	for i, r := range ranked {
		if r.Priority != want[i] {
			t.Fatalf("priority[%d] = %q, want %q at threshold 50", i, r.Priority, want[i])
		}
	}
}

func TestRankFactorsRoundsToOneDecimal(t *testing.T) {
	ranked := RankFactors([]Factor{
		{Name: "a", ImpactScore: 1},
		{Name: "b", ImpactScore: 1},
		{Name: "c", ImpactScore: 1},
	}, 0)
	if !almostEqual(ranked[0].CumulativePercentage, 33.3) {
		t.Fatalf("cum[0] = %v, want 33.3", ranked[0].CumulativePercentage)
	}
	if !almostEqual(ranked[1].CumulativePercentage, 66.7) {
		t.Fatalf("cum[1] = %v, want 66.7", ranked[1].CumulativePercentage)
	}
	if !almostEqual(ranked[2].CumulativePercentage, 100) {
		t.Fatalf("cum[2] = %v, want 100", ranked[2].CumulativePercentage)
	}
}
