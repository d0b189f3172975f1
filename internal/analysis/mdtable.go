package analysis

import (
	"regexp"
	"strings"
)

// MarkdownTable is one pipe-delimited table lifted out of free text.
type MarkdownTable struct {
	Header []string
	Rows   [][]string
}

// Records maps each row onto the header names; missing cells become
// empty strings, surplus cells are ignored.
func (t MarkdownTable) Records() []map[string]string {
	recs := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		m := make(map[string]string, len(t.Header))
		for i, h := range t.Header {
			if i < len(row) {
				m[h] = row[i]
			} else {
				m[h] = ""
			}
		}
		recs = append(recs, m)
	}
	return recs
}

var alignCellRe = regexp.MustCompile(`^:?-+:?$`)

// ParseMarkdownTables extracts every |-delimited table from text, in
// order of appearance. A table is a maximal run of consecutive lines
// that start with '|' after trimming; its first non-separator row is
// the header and alignment rows (---, :---:) are skipped wherever they
// appear. Unlike the CSV path, rows keep mismatched cell counts; LLM
// output is ragged and Records pads it.
func ParseMarkdownTables(text string) []MarkdownTable {
	var tables []MarkdownTable
	var cur *MarkdownTable
	flush := func() {
		if cur != nil && len(cur.Header) > 0 {
			tables = append(tables, *cur)
		}
		cur = nil
	}
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "|") {
			flush()
			continue
		}
		cells := splitTableRow(trimmed)
		if isSeparatorRow(cells) {
			continue
		}
		if cur == nil {
			cur = &MarkdownTable{Header: cells}
			continue
		}
		cur.Rows = append(cur.Rows, cells)
	}
	flush()
	return tables
}

func splitTableRow(line string) []string {
	line = strings.TrimPrefix(line, "|")
	line = strings.TrimSuffix(line, "|")
	cells := strings.Split(line, "|")
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	return cells
}

// isSeparatorRow reports whether every non-empty cell is a markdown
// alignment marker.
func isSeparatorRow(cells []string) bool {
	sawMarker := false
	for _, c := range cells {
		if c == "" {
			continue
		}
		if !alignCellRe.MatchString(c) {
			return false
		}
		sawMarker = true
	}
	return sawMarker
}
