package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/bizlens-cli/internal/dataset"
	"github.com/KaramelBytes/bizlens-cli/internal/render"
	"github.com/KaramelBytes/bizlens-cli/internal/workspace"
	"github.com/spf13/cobra"
)

var (
	anaWorkspace   string
	anaOutputPath  string
	anaDescription string
	anaFormat      string
	anaDelimiter   string
	anaSampleRows  int
	anaMaxRows     int
	anaSheetName   string
	anaSheetIndex  int
	anaExtended    bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Profile a CSV/TSV/XLSX dataset and produce a summary report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		opt, err := analyzeOptions(cmd)
		if err != nil {
			return err
		}
		format, err := render.ParseFormat(anaFormat)
		if err != nil {
			return err
		}
		rep, err := dataset.Summarize(path, opt)
		if err != nil {
			return err
		}
		doc := render.NewDocument("Dataset analysis: "+rep.Name, rep)
		out, err := doc.Render(format)
		if err != nil {
			return err
		}

		// Decide where to write: --output path, or attach to workspace, or stdout
		written := false
		if anaOutputPath != "" {
			if err := os.WriteFile(anaOutputPath, out, 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Printf("✓ Wrote analysis to %s\n", anaOutputPath)
			written = true
		}
		if anaWorkspace != "" {
			wsDir, err := resolveWorkspaceDirByName(anaWorkspace)
			if err != nil {
				return err
			}
			ws, err := workspace.Load(wsDir)
			if err != nil {
				return err
			}
			if err := ws.AddDataset(path, anaDescription, opt); err != nil {
				return err
			}
			if err := ws.Save(); err != nil {
				return err
			}
			fmt.Printf("✓ Added %s to workspace '%s'\n", filepath.Base(path), ws.Name)
			written = true
		}
		if !written {
			os.Stdout.Write(out)
			if len(out) > 0 && out[len(out)-1] != '\n' {
				fmt.Println()
			}
		}
		return nil
	},
}

// analyzeOptions folds the analyze flags and config defaults into
// dataset options.
func analyzeOptions(cmd *cobra.Command) (dataset.Options, error) {
	opt := dataset.DefaultOptions()
	if cfg != nil && cfg.SampleRows > 0 {
		opt.SampleRows = cfg.SampleRows
	}
	if cmd.Flags().Changed("sample-rows") && anaSampleRows >= 0 {
		opt.SampleRows = anaSampleRows
	}
	if anaMaxRows > 0 {
		opt.MaxRows = anaMaxRows
	}
	d, err := parseDelimiter(anaDelimiter)
	if err != nil {
		return opt, err
	}
	opt.Delimiter = d
	opt.SheetName = anaSheetName
	opt.SheetIndex = anaSheetIndex
	opt.Extended = anaExtended
	return opt, nil
}

// parseDelimiter maps the --delimiter flag value to a rune. Empty
// means pick by file extension.
func parseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case ",":
		return ',', nil
	case "\t", "tab":
		return '\t', nil
	case ";":
		return ';', nil
	default:
		return 0, fmt.Errorf("unsupported --delimiter: %s", s)
	}
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaWorkspace, "workspace", "w", "", "workspace name to attach the summary to")
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the report")
	analyzeCmd.Flags().StringVarP(&anaFormat, "format", "f", "markdown", "output format: markdown | json | html")
	analyzeCmd.Flags().StringVar(&anaDescription, "desc", "", "description when attaching to a workspace")
	analyzeCmd.Flags().StringVar(&anaDelimiter, "delimiter", "", "field delimiter: ',' | ';' | 'tab' (default by extension)")
	analyzeCmd.Flags().IntVar(&anaSampleRows, "sample-rows", 5, "number of sample rows to include (0 = none)")
	analyzeCmd.Flags().IntVar(&anaMaxRows, "max-rows", 0, "maximum rows to process (0 = unlimited)")
	analyzeCmd.Flags().StringVar(&anaSheetName, "sheet-name", "", "XLSX: sheet name to analyze")
	analyzeCmd.Flags().IntVar(&anaSheetIndex, "sheet-index", 0, "XLSX: worksheet position (0-based; 0 uses the active sheet)")
	analyzeCmd.Flags().BoolVar(&anaExtended, "extended", false, "add variation, correlation, and balance metrics")
}
