package dataset

import (
	"fmt"
	"os"
	"strings"

	"github.com/KaramelBytes/bizlens-cli/internal/analysis"
)

type csvLoader struct{}

func (csvLoader) CanLoad(filename string) bool {
	return strings.HasSuffix(filename, ".csv") || strings.HasSuffix(filename, ".tsv")
}

func (csvLoader) Load(path string, opt Options) (*analysis.Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	delim := opt.Delimiter
	if delim == 0 {
		delim = ','
		if strings.HasSuffix(strings.ToLower(path), ".tsv") {
			delim = '\t'
		}
	}
	t := analysis.ParseDelimited(string(raw), delim)
	if opt.MaxRows > 0 && len(t.Rows) > opt.MaxRows {
		t.Rows = t.Rows[:opt.MaxRows]
	}
	return t, nil
}
