package dataset

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/bizlens-cli/internal/analysis"
)

type xlsxLoader struct{}

func (xlsxLoader) CanLoad(filename string) bool {
	return strings.HasSuffix(filename, ".xlsx")
}

func (xlsxLoader) Load(path string, opt Options) (*analysis.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet, err := pickSheet(f, opt)
	if err != nil {
		return nil, err
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return &analysis.Table{Header: []string{""}}, nil
	}

	header := make([]string, len(rows[0]))
	for i, cell := range rows[0] {
		header[i] = strings.TrimSpace(cell)
	}
	t := &analysis.Table{Header: header}
	for _, cells := range rows[1:] {
		// GetRows omits trailing empty cells, so short rows are a
		// format artifact here, not corrupt data: pad instead of drop.
		row := make(analysis.Row, len(header))
		for i, name := range header {
			if i < len(cells) {
				row[name] = analysis.FieldValue(cells[i])
			} else {
				row[name] = analysis.Text("")
			}
		}
		t.Rows = append(t.Rows, row)
		if opt.MaxRows > 0 && len(t.Rows) >= opt.MaxRows {
			break
		}
	}
	return t, nil
}

func pickSheet(f *excelize.File, opt Options) (string, error) {
	list := f.GetSheetList()
	if len(list) == 0 {
		return "", errors.New("workbook has no sheets")
	}
	if opt.SheetName != "" {
		idx, err := f.GetSheetIndex(opt.SheetName)
		if err != nil {
			return "", fmt.Errorf("sheet %q: %w", opt.SheetName, err)
		}
		if idx < 0 {
			return "", fmt.Errorf("sheet %q not found (available: %s)", opt.SheetName, strings.Join(list, ", "))
		}
		return opt.SheetName, nil
	}
	if opt.SheetIndex > 0 {
		if opt.SheetIndex >= len(list) {
			return "", fmt.Errorf("sheet index %d out of range (workbook has %d sheets)", opt.SheetIndex, len(list))
		}
		return list[opt.SheetIndex], nil
	}
	if name := f.GetSheetName(f.GetActiveSheetIndex()); name != "" {
		return name, nil
	}
	return list[0], nil
}
