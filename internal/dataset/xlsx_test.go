package dataset

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

type sheetData struct {
	name string
	rows [][]any
}

// writeWorkbook builds an .xlsx fixture. The first sheet keeps the
// excelize default name "Sheet1"; extras are appended in order.
func writeWorkbook(t *testing.T, path string, sheets []sheetData, active string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, s := range sheets {
		if i > 0 {
			if _, err := f.NewSheet(s.name); err != nil {
				t.Fatalf("NewSheet %s: %v", s.name, err)
			}
		}
		for r, cells := range s.rows {
			for c, v := range cells {
				cell, err := excelize.CoordinatesToCellName(c+1, r+1)
				if err != nil {
					t.Fatalf("cell name: %v", err)
				}
				if err := f.SetCellValue(s.name, cell, v); err != nil {
					t.Fatalf("SetCellValue %s!%s: %v", s.name, cell, err)
				}
			}
		}
	}
	if active != "" {
		idx, err := f.GetSheetIndex(active)
		if err != nil || idx < 0 {
			t.Fatalf("active sheet %s: idx=%d err=%v", active, idx, err)
		}
		f.SetActiveSheet(idx)
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
}

func TestLoadXLSXTypesCells(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.xlsx")
	writeWorkbook(t, path, []sheetData{{
		name: "Sheet1",
		rows: [][]any{
			{"region", "revenue"},
			{"north", 1200},
			{"south", 950.5},
		},
	}}, "")

	tab, err := Load(path, Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(tab.Header) != 2 || tab.Header[1] != "revenue" {
		t.Fatalf("unexpected header %#v", tab.Header)
	}
	if len(tab.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(tab.Rows))
	}
	if v := tab.Rows[1]["revenue"]; !v.Numeric || v.Num != 950.5 {
		t.Fatalf("revenue not typed as number: %#v", v)
	}
	if v := tab.Rows[0]["region"]; v.Numeric || v.Text != "north" {
		t.Fatalf("region not typed as text: %#v", v)
	}
}

func TestLoadXLSXPadsShortRows(t *testing.T) {
	// excelize drops trailing empty cells from GetRows, so a row with a
	// blank last column comes back short. It must still be kept, padded
	// with empties, unlike a malformed CSV line.
	path := filepath.Join(t.TempDir(), "ragged.xlsx")
	writeWorkbook(t, path, []sheetData{{
		name: "Sheet1",
		rows: [][]any{
			{"a", "b", "c"},
			{1, 2, 3},
			{4, 5},
		},
	}}, "")

	tab, err := Load(path, Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(tab.Rows) != 2 {
		t.Fatalf("short row was dropped: %#v", tab.Rows)
	}
	if v := tab.Rows[1]["c"]; !v.IsEmpty() {
		t.Fatalf("expected padded empty cell, got %#v", v)
	}
}

func TestLoadXLSXSheetByName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "multi.xlsx")
	writeWorkbook(t, path, []sheetData{
		{name: "Sheet1", rows: [][]any{{"x"}, {1}}},
		{name: "Costs", rows: [][]any{{"item", "cost"}, {"rent", 2000}}},
	}, "")

	tab, err := Load(path, Options{SheetName: "Costs"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(tab.Header) != 2 || tab.Header[0] != "item" {
		t.Fatalf("wrong sheet loaded: header %#v", tab.Header)
	}

	if _, err := Load(path, Options{SheetName: "Nope"}); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected missing-sheet error, got %v", err)
	}
}

func TestLoadXLSXSheetByIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "multi.xlsx")
	writeWorkbook(t, path, []sheetData{
		{name: "Sheet1", rows: [][]any{{"x"}, {1}}},
		{name: "Costs", rows: [][]any{{"item"}, {"rent"}}},
	}, "")

	tab, err := Load(path, Options{SheetIndex: 1})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(tab.Header) != 1 || tab.Header[0] != "item" {
		t.Fatalf("wrong sheet loaded: header %#v", tab.Header)
	}

	if _, err := Load(path, Options{SheetIndex: 5}); err == nil || !strings.Contains(err.Error(), "out of range") {
		t.Fatalf("expected out-of-range error, got %v", err)
	}
}

func TestLoadXLSXDefaultsToActiveSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "active.xlsx")
	writeWorkbook(t, path, []sheetData{
		{name: "Sheet1", rows: [][]any{{"x"}, {1}}},
		{name: "Later", rows: [][]any{{"picked"}, {"yes"}}},
	}, "Later")

	tab, err := Load(path, Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(tab.Header) != 1 || tab.Header[0] != "picked" {
		t.Fatalf("active sheet not used: header %#v", tab.Header)
	}
}

func TestLoadXLSXMaxRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cap.xlsx")
	writeWorkbook(t, path, []sheetData{{
		name: "Sheet1",
		rows: [][]any{{"n"}, {1}, {2}, {3}, {4}},
	}}, "")

	tab, err := Load(path, Options{MaxRows: 2})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(tab.Rows) != 2 {
		t.Fatalf("expected 2 rows after cap, got %d", len(tab.Rows))
	}
}

func TestSummarizeXLSXNamesSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.xlsx")
	writeWorkbook(t, path, []sheetData{
		{name: "Sheet1", rows: [][]any{{"x"}, {1}}},
		{name: "Costs", rows: [][]any{{"item", "cost"}, {"rent", 2000}, {"power", 300}}},
	}, "")

	rep, err := Summarize(path, Options{SheetName: "Costs"})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if rep.Name != "book.xlsx (sheet: Costs)" {
		t.Fatalf("unexpected report name %q", rep.Name)
	}
}
