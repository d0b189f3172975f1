package sample

import (
	"strings"
	"testing"

	"github.com/KaramelBytes/bizlens-cli/internal/analysis"
)

func TestListIsSortedAndDescribed(t *testing.T) {
	names := List()
	if len(names) != 3 {
		t.Fatalf("expected 3 bundled datasets, got %v", names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("names not sorted: %v", names)
		}
	}
	for _, n := range names {
		if Describe(n) == "" {
			t.Fatalf("no description for %q", n)
		}
	}
}

func TestLoadUnknown(t *testing.T) {
	if _, err := Load("nope.csv"); err == nil {
		t.Fatal("expected error for unknown sample")
	}
	if _, err := Load("../sample.go"); err == nil {
		t.Fatal("path traversal should not resolve")
	}
}

func TestSamplesParseCleanly(t *testing.T) {
	for _, name := range List() {
		raw, err := Load(name)
		if err != nil {
			t.Fatalf("load %s: %v", name, err)
		}
		table := analysis.ParseCSV(string(raw))
		if len(table.Rows) == 0 {
			t.Fatalf("%s parsed to zero rows", name)
		}
		rep := analysis.Describe(table)
		if rep.Overview.NumericalVars == 0 || rep.Overview.CategoricalVars == 0 {
			t.Fatalf("%s should mix numeric and categorical columns: %+v", name, rep.Overview)
		}
	}
}

func TestChurnSampleExercisesMessyRows(t *testing.T) {
	raw, err := Load("customer_churn.csv")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Count(strings.TrimSpace(string(raw)), "\n") // header + data - 1
	table := analysis.ParseCSV(string(raw))
	if len(table.Rows) != lines-1 {
		t.Fatalf("expected exactly one dropped row: %d lines, %d rows", lines+1, len(table.Rows))
	}

	rep := analysis.Describe(table)
	var spend *analysis.NumericSummary
	for i := range rep.Numerical {
		if rep.Numerical[i].Variable == "monthly_spend" {
			spend = &rep.Numerical[i]
		}
	}
	if spend == nil {
		t.Fatal("monthly_spend should classify numeric despite N/A noise")
	}
	if spend.Count != len(table.Rows)-2 {
		t.Fatalf("two N/A cells should be excluded: count=%d rows=%d", spend.Count, len(table.Rows))
	}

	var accounts *analysis.Visualization
	for i := range rep.Visualizations {
		if rep.Visualizations[i].Column == "account" {
			accounts = &rep.Visualizations[i]
		}
	}
	if accounts == nil {
		t.Fatal("account column should produce a bar visualization")
	}
	if !accounts.Truncated || len(accounts.Labels) != 15 {
		t.Fatalf("account bar should truncate to top 15: truncated=%v labels=%d",
			accounts.Truncated, len(accounts.Labels))
	}
}
