package cmd

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/KaramelBytes/bizlens-cli/internal/workspace"
)

func TestAnalyzeBatch_CollisionSuffixAndWorkspaceAttach(t *testing.T) {
	home := withTempHome(t)

	// Prepare two CSV files with the same basename in different directories
	d1 := filepath.Join(home, "d1")
	d2 := filepath.Join(home, "d2")
	if err := os.MkdirAll(d1, 0o755); err != nil {
		t.Fatalf("mkdir d1: %v", err)
	}
	if err := os.MkdirAll(d2, 0o755); err != nil {
		t.Fatalf("mkdir d2: %v", err)
	}
	csv := "col1,col2\nA,1\nB,2\nC,3\n"
	writeCSV(t, filepath.Join(d1, "metrics.csv"), csv)
	writeCSV(t, filepath.Join(d2, "metrics.csv"), csv)

	outDir := filepath.Join(home, "reports")

	// Init a workspace, then analyze both files with attachment and reports
	runCmd(t, "init", "batchws", "-d", "batch workspace")
	runCmd(t, "analyze-batch", filepath.Join(home, "d*", "metrics.csv"),
		"-w", "batchws", "--output-dir", outDir, "--quiet")

	// Verify reports written with collision suffix
	b1 := filepath.Join(outDir, "metrics.report.md")
	b2 := filepath.Join(outDir, "metrics__2.report.md")
	if _, err := os.Stat(b1); err != nil {
		t.Fatalf("missing first report: %v", err)
	}
	if _, err := os.Stat(b2); err != nil {
		t.Fatalf("missing second report: %v", err)
	}

	// Verify both datasets attached with a deduplicated name
	wsDir, err := resolveWorkspaceDirByName("batchws")
	if err != nil {
		t.Fatalf("resolve workspace: %v", err)
	}
	ws, err := workspace.Load(wsDir)
	if err != nil {
		t.Fatalf("load workspace: %v", err)
	}
	if len(ws.Datasets) != 2 {
		t.Fatalf("expected 2 datasets, got %d", len(ws.Datasets))
	}
	names := make([]string, 0, 2)
	for _, d := range ws.Datasets {
		names = append(names, d.Name)
	}
	sort.Strings(names)
	if names[0] != "metrics.csv" || names[1] != "metrics.csv (2)" {
		t.Fatalf("unexpected dataset names: %v", names)
	}
}

func TestAnalyzeBatch_NoMatches(t *testing.T) {
	home := withTempHome(t)
	abWorkspace = "" // sticky from earlier invocations

	rootCmd.SetArgs([]string{"analyze-batch", filepath.Join(home, "nothing-*.csv"), "--quiet"})
	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected error when no input files match")
	}
}

func TestAnalyzeBatch_PartialFailure(t *testing.T) {
	home := withTempHome(t)
	abWorkspace = "" // sticky from earlier invocations

	good := filepath.Join(home, "good.csv")
	writeCSV(t, good, "a,b\n1,2\n3,4\n")
	empty := filepath.Join(home, "empty.csv")
	writeCSV(t, empty, "")

	outDir := filepath.Join(home, "reports")
	rootCmd.SetArgs([]string{"analyze-batch", good, empty, "--output-dir", outDir, "--quiet"})
	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected aggregate error when one file fails")
	}

	// The good file's report is still written
	if _, err := os.Stat(filepath.Join(outDir, "good.report.md")); err != nil {
		t.Fatalf("missing report for good file: %v", err)
	}
}
