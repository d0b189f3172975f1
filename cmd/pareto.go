package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/bizlens-cli/internal/analysis"
	"github.com/KaramelBytes/bizlens-cli/internal/dataset"
	"github.com/KaramelBytes/bizlens-cli/internal/insight"
	"github.com/KaramelBytes/bizlens-cli/internal/render"
	"github.com/spf13/cobra"
)

var (
	parThreshold  float64
	parFormat     string
	parOutputPath string
	parDelimiter  string
	parSheetName  string
	parSheetIndex int
)

var paretoCmd = &cobra.Command{
	Use:   "pareto <file>",
	Short: "Rank factors 80/20 from a CSV/TSV/XLSX, JSON, or markdown factor list",
	Long: `Reads factors with impact scores from a file and ranks them by the
Pareto principle: factors are sorted by impact and marked High priority
while their cumulative share of total impact stays within the threshold.

The file format is picked by extension: .json expects a factor array or
an object with a "factors" field; .csv/.tsv/.xlsx expect factor and
impact columns (fuzzy matched); anything else is scanned for a markdown
table.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if cmd.Flags().Changed("threshold") && (parThreshold <= 0 || parThreshold > 100) {
			return fmt.Errorf("threshold must be in (0, 100], got %v", parThreshold)
		}
		format, err := render.ParseFormat(parFormat)
		if err != nil {
			return err
		}

		var factors []analysis.Factor
		switch strings.ToLower(filepath.Ext(path)) {
		case ".json":
			raw, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			factors, err = insight.FactorsFromJSON(raw)
			if err != nil {
				return err
			}
		case ".csv", ".tsv", ".xlsx":
			opt := dataset.Options{SheetName: parSheetName, SheetIndex: parSheetIndex}
			opt.Delimiter, err = parseDelimiter(parDelimiter)
			if err != nil {
				return err
			}
			t, err := dataset.Load(path, opt)
			if err != nil {
				return err
			}
			factors, err = insight.FactorsFromTable(t)
			if err != nil {
				return err
			}
		default:
			raw, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			factors, err = insight.FactorsFromMarkdown(string(raw))
			if err != nil {
				return err
			}
		}

		threshold := parThreshold
		if !cmd.Flags().Changed("threshold") && cfg != nil {
			threshold = cfg.ParetoThreshold
		}
		rep := &insight.Report{Factors: factors}
		rep.Rank(threshold)

		doc := render.NewDocument("Pareto analysis: "+filepath.Base(path))
		doc.Insights = rep
		out, err := doc.Render(format)
		if err != nil {
			return err
		}
		if parOutputPath != "" {
			if err := os.WriteFile(parOutputPath, out, 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Printf("✓ Wrote ranking to %s\n", parOutputPath)
			return nil
		}
		os.Stdout.Write(out)
		if len(out) > 0 && out[len(out)-1] != '\n' {
			fmt.Println()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(paretoCmd)
	paretoCmd.Flags().Float64VarP(&parThreshold, "threshold", "t", 0, "cumulative-percentage cutoff for High priority (default from config, 80)")
	paretoCmd.Flags().StringVarP(&parFormat, "format", "f", "markdown", "output format: markdown | json | html")
	paretoCmd.Flags().StringVarP(&parOutputPath, "output", "o", "", "optional path to write the ranking")
	paretoCmd.Flags().StringVar(&parDelimiter, "delimiter", "", "field delimiter: ',' | ';' | 'tab' (default by extension)")
	paretoCmd.Flags().StringVar(&parSheetName, "sheet-name", "", "XLSX: sheet name to read factors from")
	paretoCmd.Flags().IntVar(&parSheetIndex, "sheet-index", 0, "XLSX: worksheet position (0-based; 0 uses the active sheet)")
}
