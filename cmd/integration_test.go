package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// runCmd is a helper to execute the root command with args.
func runCmd(t *testing.T, args ...string) {
	t.Helper()
	// Reset sticky flags that may persist Changed state across invocations
	if f := insightsCmd.Flags(); f != nil {
		if fl := f.Lookup("budget-limit"); fl != nil {
			_ = fl.Value.Set("0")
			fl.Changed = false
		}
		if fl := f.Lookup("prompt-limit"); fl != nil {
			_ = fl.Value.Set("0")
			fl.Changed = false
		}
		if fl := f.Lookup("print-prompt"); fl != nil {
			_ = fl.Value.Set("false")
			fl.Changed = false
		}
	}
	// Reset bound variables
	insBudgetLimit = 0
	insPromptLimit = 0
	insPrintPrompt = false
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
}

func withTempHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	oldHome := os.Getenv("HOME")
	t.Cleanup(func() { os.Setenv("HOME", oldHome) })
	os.Setenv("HOME", home)
	return home
}

func writeCSV(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestCLI_BudgetLimitBlocksInsights(t *testing.T) {
	home := withTempHome(t)

	csvPath := filepath.Join(home, "sales.csv")
	writeCSV(t, csvPath, "region,revenue\nNorth,100\nSouth,200\nEast,150\nWest,50\n")

	runCmd(t, "init", "budget", "-d", "budget test")
	runCmd(t, "add", "-w", "budget", csvPath)
	runCmd(t, "objective", "-w", "budget", "Find revenue drivers")

	// Expect insights to fail due to very small budget
	rootCmd.SetArgs([]string{"insights", "-w", "budget", "--dry-run", "--budget-limit", "0.0000001"})
	if err := rootCmd.Execute(); err == nil {
		t.Fatalf("expected error due to budget limit, got nil")
	}
}

func TestCLI_Init_Add_Objective_InsightsDryRun(t *testing.T) {
	// Use a temp HOME to isolate config and workspaces
	home := withTempHome(t)

	csvPath := filepath.Join(home, "churn.csv")
	writeCSV(t, csvPath, "plan,monthly_spend,churned\nbasic,10,yes\npro,45,no\npro,50,no\nbasic,12,yes\n")

	// init workspace
	runCmd(t, "init", "itest", "-d", "integration test")
	// add dataset
	runCmd(t, "add", "-w", "itest", csvPath, "--desc", "subscription accounts")
	// set objective
	runCmd(t, "objective", "-w", "itest", "Explain churn drivers")
	// insights dry-run with prompt limit for speed
	runCmd(t, "insights", "-w", "itest", "--dry-run", "--prompt-limit", "2000")
}

func TestCLI_InitRefusesOverwrite(t *testing.T) {
	withTempHome(t)

	runCmd(t, "init", "dupe", "-d", "first")
	rootCmd.SetArgs([]string{"init", "dupe", "-d", "second"})
	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected error when workspace already exists")
	}
}

func TestCLI_AnalyzeWritesReport(t *testing.T) {
	home := withTempHome(t)

	csvPath := filepath.Join(home, "orders.csv")
	writeCSV(t, csvPath, "sku,units,price\nA1,3,9.99\nB2,5,14.50\nC3,2,4.25\n")
	outPath := filepath.Join(home, "orders.report.md")

	runCmd(t, "analyze", csvPath, "-o", outPath)

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	body := string(data)
	if !strings.Contains(body, "[DATASET SUMMARY]") {
		t.Fatalf("expected dataset summary section, got:\n%s", body)
	}
	if !strings.Contains(body, "[NUMERICAL SUMMARY]") {
		t.Fatalf("expected numerical summary section, got:\n%s", body)
	}
}

func TestCLI_ParetoFromCSV(t *testing.T) {
	home := withTempHome(t)

	csvPath := filepath.Join(home, "factors.csv")
	writeCSV(t, csvPath, "factor,impact_score\nPricing,50\nChurn,30\nLogistics,20\n")
	outPath := filepath.Join(home, "pareto.md")

	runCmd(t, "pareto", csvPath, "-o", outPath)

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read ranking: %v", err)
	}
	body := string(data)
	if !strings.Contains(body, "| 1 | Pricing | 50 | 50.0 | High |") {
		t.Fatalf("expected Pricing ranked first as High, got:\n%s", body)
	}
	if !strings.Contains(body, "| 2 | Churn | 30 | 80.0 | High |") {
		t.Fatalf("expected Churn at the 80%% boundary as High, got:\n%s", body)
	}
	if !strings.Contains(body, "| 3 | Logistics | 20 | 100.0 | Low |") {
		t.Fatalf("expected Logistics ranked last as Low, got:\n%s", body)
	}
}

func TestCLI_ParetoQualitativeScoresJSON(t *testing.T) {
	home := withTempHome(t)
	defer func() { parFormat = "markdown" }() // sticky across invocations

	// Impact cells that never parse as numbers must still produce a
	// serializable ranking.
	csvPath := filepath.Join(home, "factors.csv")
	writeCSV(t, csvPath, "factor,impact_score\nSupport quality,high\nOnboarding,medium\n")
	outPath := filepath.Join(home, "pareto.json")

	runCmd(t, "pareto", csvPath, "--format", "json", "-o", outPath)

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read ranking: %v", err)
	}
	var decoded struct {
		Insights struct {
			Ranked []struct {
				Factor      string  `json:"factor"`
				ImpactScore float64 `json:"impact_score"`
				Priority    string  `json:"priority"`
				Rank        int     `json:"rank"`
			} `json:"ranked_factors"`
		} `json:"insights"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("ranking is not valid JSON: %v", err)
	}
	ranked := decoded.Insights.Ranked
	if len(ranked) != 2 {
		t.Fatalf("expected both factors ranked, got %+v", ranked)
	}
	if ranked[0].Factor != "Support quality" || ranked[1].Factor != "Onboarding" {
		t.Fatalf("qualitative ranking should keep file order: %+v", ranked)
	}
	for i, rf := range ranked {
		if rf.ImpactScore != 0 || rf.Priority != "Low" || rf.Rank != i+1 {
			t.Fatalf("ranked[%d] = %+v", i, rf)
		}
	}
}
