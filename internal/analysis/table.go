package analysis

import (
	"math"
	"strconv"
	"strings"
)

// Value is a single table cell. The number-or-text ambiguity of raw
// delimited input is resolved once, at parse time: a field that parses
// as a float in full becomes numeric, anything else stays text.
type Value struct {
	Num     float64
	Text    string
	Numeric bool
}

// Num builds a numeric Value.
func Num(f float64) Value { return Value{Num: f, Numeric: true} }

// Text builds a text Value.
func Text(s string) Value { return Value{Text: s} }

// IsEmpty reports whether the cell holds no usable data.
func (v Value) IsEmpty() bool { return !v.Numeric && v.Text == "" }

// String renders the cell the way frequency tables key it: numerics in
// plain decimal notation (no exponent), text as-is.
func (v Value) String() string {
	if v.Numeric {
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	}
	return v.Text
}

// Row maps column name to cell value. Every row of a parsed Table has
// exactly one entry per header column.
type Row map[string]Value

// Table is parsed delimited text: an ordered header plus row records.
type Table struct {
	Header []string
	Rows   []Row
}

// Column returns the column's values in row order, including empties.
func (t *Table) Column(name string) []Value {
	out := make([]Value, 0, len(t.Rows))
	for _, r := range t.Rows {
		out = append(out, r[name])
	}
	return out
}

// ParseCSV parses raw comma-delimited text into a typed Table.
//
// There is no quoting or escaping support: a field containing a comma
// splits into extra fields, the row fails the length check and is
// dropped. Known limitation, kept deliberately.
func ParseCSV(raw string) *Table { return ParseDelimited(raw, ',') }

// ParseDelimited is ParseCSV with a caller-chosen delimiter (tab for
// TSV exports, semicolon for some locales).
//
// Rules:
//   - the whole input is trimmed, then split on newlines; the first
//     line is the header, fields trimmed;
//   - data rows whose field count differs from the header's are
//     dropped silently;
//   - each field is typed opportunistically (see Value).
//
// Empty input yields a header with a single empty name and no rows;
// zero rows is not an error at this layer.
func ParseDelimited(raw string, delim rune) *Table {
	lines := strings.Split(strings.TrimSpace(raw), "\n")
	header := splitFields(lines[0], delim)
	t := &Table{Header: header}
	for _, line := range lines[1:] {
		fields := splitFields(line, delim)
		if len(fields) != len(header) {
			continue
		}
		row := make(Row, len(header))
		for i, name := range header {
			row[name] = typedValue(fields[i])
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func splitFields(line string, delim rune) []string {
	fields := strings.Split(line, string(delim))
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

// typedValue converts one trimmed field: a full-string float parse
// wins (NaN rejected), everything else stays text.
func typedValue(s string) Value {
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) {
		return Value{Num: f, Numeric: true}
	}
	return Value{Text: s}
}

// FieldValue applies the parser's opportunistic typing to a single raw
// field. Loaders for formats that don't go through ParseDelimited
// (spreadsheet cells) use it so every source yields the same Table
// shape.
func FieldValue(s string) Value { return typedValue(strings.TrimSpace(s)) }
