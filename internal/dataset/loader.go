package dataset

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/bizlens-cli/internal/analysis"
)

// Options controls how a dataset file is read.
type Options struct {
	// Delimiter for delimited text. 0 picks by extension: tab for
	// .tsv, comma otherwise.
	Delimiter rune
	// MaxRows caps parsed rows; 0 means unlimited.
	MaxRows int
	// SheetName selects a worksheet by name (xlsx only).
	SheetName string
	// SheetIndex selects a worksheet by position when SheetName is
	// empty (xlsx only).
	SheetIndex int
	// SampleRows controls how many example rows Summarize attaches;
	// 0 suppresses them.
	SampleRows int
	// Extended adds variation/correlation/balance metrics to the
	// Summarize report.
	Extended bool
}

// DefaultOptions returns the defaults used by the CLI commands.
func DefaultOptions() Options {
	return Options{SampleRows: 5}
}

// Loader turns one file format into a typed analysis.Table.
type Loader interface {
	CanLoad(filename string) bool
	Load(path string, opt Options) (*analysis.Table, error)
}

var loaders []Loader

func register(l Loader) { loaders = append(loaders, l) }

func init() {
	register(csvLoader{})
	register(xlsxLoader{})
}

// Load parses path with the first loader that recognizes its name.
func Load(path string, opt Options) (*analysis.Table, error) {
	name := strings.ToLower(filepath.Base(path))
	for _, l := range loaders {
		if l.CanLoad(name) {
			return l.Load(path, opt)
		}
	}
	return nil, fmt.Errorf("unsupported file type %q (supported: .csv, .tsv, .xlsx)", filepath.Ext(path))
}

// Summarize loads a dataset and runs the descriptive analysis in one
// step: parse, describe, attach sample rows, and (optionally) the
// extended metrics. The report is named after the file, with the
// worksheet appended when one was chosen explicitly.
func Summarize(path string, opt Options) (*analysis.Report, error) {
	t, err := Load(path, opt)
	if err != nil {
		return nil, err
	}
	if len(t.Rows) == 0 {
		return nil, fmt.Errorf("%s appears to be empty (no data rows)", filepath.Base(path))
	}
	rep := analysis.Describe(t)
	rep.Name = filepath.Base(path)
	if opt.SheetName != "" {
		rep.Name = fmt.Sprintf("%s (sheet: %s)", rep.Name, opt.SheetName)
	}
	rep.AttachSamples(t, opt.SampleRows)
	if opt.Extended {
		rep.AddExtended(t)
	}
	return rep, nil
}
