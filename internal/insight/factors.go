package insight

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/KaramelBytes/bizlens-cli/internal/analysis"
)

// FactorsFromJSON reads factors from raw JSON: a bare array or an
// object carrying a "factors" field. String scores are coerced;
// unparsable ones come back NaN so ranking degrades instead of
// failing.
func FactorsFromJSON(data []byte) ([]analysis.Factor, error) {
	trimmed := strings.TrimSpace(string(data))
	var loose []looseFactor
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal([]byte(trimmed), &loose); err != nil {
			return nil, fmt.Errorf("parse factor array: %w", err)
		}
	} else {
		var obj struct {
			Factors []looseFactor `json:"factors"`
		}
		if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
			return nil, fmt.Errorf("parse factors: %w", err)
		}
		loose = obj.Factors
	}
	factors := make([]analysis.Factor, 0, len(loose))
	for _, lf := range loose {
		name := lf.Factor
		if name == "" {
			name = lf.Name
		}
		factors = append(factors, analysis.Factor{
			Name:        strings.TrimSpace(name),
			Description: strings.TrimSpace(lf.Description),
			ImpactScore: scoreFromRaw(lf.ImpactScore),
		})
	}
	if len(factors) == 0 {
		return nil, errors.New("no factors found in JSON input")
	}
	return factors, nil
}

// FactorsFromMarkdown pulls factors out of the first markdown table
// with recognizable factor/impact columns.
func FactorsFromMarkdown(text string) ([]analysis.Factor, error) {
	for _, tbl := range analysis.ParseMarkdownTables(text) {
		nameCol, scoreCol := factorColumns(tbl.Header)
		if nameCol == "" || scoreCol == "" {
			continue
		}
		descCol := matchHeader(tbl.Header, nameCol, "description", "detail", "reason")
		var factors []analysis.Factor
		for _, rec := range tbl.Records() {
			name := strings.TrimSpace(rec[nameCol])
			if name == "" {
				continue
			}
			f := analysis.Factor{Name: name, ImpactScore: parseScore(rec[scoreCol])}
			if descCol != "" {
				f.Description = strings.TrimSpace(rec[descCol])
			}
			factors = append(factors, f)
		}
		if len(factors) > 0 {
			return factors, nil
		}
	}
	return nil, errors.New("no factor table found")
}

// FactorsFromTable extracts factors from a parsed data table whose
// header carries factor and impact columns.
func FactorsFromTable(t *analysis.Table) ([]analysis.Factor, error) {
	nameCol, scoreCol := factorColumns(t.Header)
	if nameCol == "" || scoreCol == "" {
		return nil, fmt.Errorf("no factor/impact columns in header %v", t.Header)
	}
	descCol := matchHeader(t.Header, nameCol, "description", "detail", "reason")
	var factors []analysis.Factor
	for _, row := range t.Rows {
		name := strings.TrimSpace(row[nameCol].String())
		if name == "" {
			continue
		}
		f := analysis.Factor{Name: name, ImpactScore: cellScore(row[scoreCol])}
		if descCol != "" {
			f.Description = strings.TrimSpace(row[descCol].String())
		}
		factors = append(factors, f)
	}
	if len(factors) == 0 {
		return nil, errors.New("no factor rows found")
	}
	return factors, nil
}

func cellScore(v analysis.Value) float64 {
	if v.Numeric {
		return v.Num
	}
	return parseScore(v.Text)
}
