package dataset

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeFile(t, "sales.csv", "region,revenue\nnorth,1200\nsouth,900\n")
	tab, err := Load(path, Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(tab.Header) != 2 || tab.Header[0] != "region" {
		t.Fatalf("unexpected header %#v", tab.Header)
	}
	if len(tab.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(tab.Rows))
	}
	v := tab.Rows[0]["revenue"]
	if !v.Numeric || v.Num != 1200 {
		t.Fatalf("revenue not typed as number: %#v", v)
	}
}

func TestLoadTSVByExtension(t *testing.T) {
	path := writeFile(t, "sales.tsv", "region\trevenue\nnorth\t1200\n")
	tab, err := Load(path, Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(tab.Rows) != 1 || tab.Rows[0]["region"].Text != "north" {
		t.Fatalf("tab-delimited parse failed: %#v", tab.Rows)
	}
}

func TestLoadDelimiterOverride(t *testing.T) {
	path := writeFile(t, "euro.csv", "region;revenue\nnorth;1200\n")
	tab, err := Load(path, Options{Delimiter: ';'})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(tab.Header) != 2 || len(tab.Rows) != 1 {
		t.Fatalf("semicolon override not applied: header %#v rows %#v", tab.Header, tab.Rows)
	}
}

func TestLoadMaxRows(t *testing.T) {
	path := writeFile(t, "big.csv", "n\n1\n2\n3\n4\n5\n")
	tab, err := Load(path, Options{MaxRows: 3})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(tab.Rows) != 3 {
		t.Fatalf("expected 3 rows after cap, got %d", len(tab.Rows))
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := writeFile(t, "notes.pdf", "not a dataset")
	if _, err := Load(path, Options{}); err == nil || !strings.Contains(err.Error(), "unsupported file type") {
		t.Fatalf("expected unsupported-type error, got %v", err)
	}
}

func TestSummarizeNamesReportAfterFile(t *testing.T) {
	path := writeFile(t, "churn.csv", "plan,active\nbasic,yes\npro,no\n")
	rep, err := Summarize(path, DefaultOptions())
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if rep.Name != "churn.csv" {
		t.Fatalf("expected report named after file, got %q", rep.Name)
	}
	if rep.Overview.Rows != 2 || rep.Overview.Columns != 2 {
		t.Fatalf("unexpected overview %#v", rep.Overview)
	}
}

func TestSummarizeEmptyFile(t *testing.T) {
	path := writeFile(t, "header_only.csv", "a,b,c\n")
	if _, err := Summarize(path, DefaultOptions()); err == nil || !strings.Contains(err.Error(), "appears to be empty") {
		t.Fatalf("expected empty-file error, got %v", err)
	}
}

func TestSummarizeSampleRows(t *testing.T) {
	path := writeFile(t, "s.csv", "n\n1\n2\n3\n4\n5\n6\n7\n")
	rep, err := Summarize(path, Options{SampleRows: 2})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if len(rep.Samples) != 2 {
		t.Fatalf("expected 2 sample rows, got %d", len(rep.Samples))
	}
	if len(rep.SampleHeader) != 1 || rep.SampleHeader[0] != "n" {
		t.Fatalf("unexpected sample header %#v", rep.SampleHeader)
	}

	rep, err = Summarize(path, Options{})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if len(rep.Samples) != 0 {
		t.Fatalf("zero SampleRows should suppress samples, got %d", len(rep.Samples))
	}
}

func TestSummarizeExtendedMetrics(t *testing.T) {
	path := writeFile(t, "xy.csv", "x,y\n1,2\n2,4\n3,6\n4,8\n5,10\n")
	rep, err := Summarize(path, Options{Extended: true})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if len(rep.Extended) != 2 {
		t.Fatalf("expected extended stats for both columns, got %#v", rep.Extended)
	}
	if len(rep.Correlations) != 1 {
		t.Fatalf("expected one correlated pair, got %#v", rep.Correlations)
	}
	if r := rep.Correlations[0].R; math.Abs(r-1) > 1e-9 {
		t.Fatalf("expected r=1 for y=2x, got %v", r)
	}

	rep, err = Summarize(path, Options{})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if len(rep.Extended) != 0 || len(rep.Correlations) != 0 {
		t.Fatalf("extended metrics should be opt-in, got %#v / %#v", rep.Extended, rep.Correlations)
	}
}
