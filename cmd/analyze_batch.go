package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/bizlens-cli/internal/analysis"
	"github.com/KaramelBytes/bizlens-cli/internal/dataset"
	"github.com/KaramelBytes/bizlens-cli/internal/render"
	"github.com/KaramelBytes/bizlens-cli/internal/workspace"
	"github.com/spf13/cobra"
)

var (
	abWorkspace   string
	abDescription string
	abFormat      string
	abOutputDir   string
	abDelimiter   string
	abSampleRows  int
	abMaxRows     int
	abSheetName   string
	abSheetIndex  int
	abExtended    bool
	abConcurrency int
	abQuiet       bool
)

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Analyze multiple data files, with optional workspace attachment",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var files []string
		seen := map[string]struct{}{}
		for _, arg := range args {
			matches, _ := filepath.Glob(arg)
			if len(matches) == 0 {
				// treat as literal path if exists
				if _, err := os.Stat(arg); err == nil {
					matches = []string{arg}
				}
			}
			for _, m := range matches {
				if _, ok := seen[m]; ok {
					continue
				}
				seen[m] = struct{}{}
				files = append(files, m)
			}
		}
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		sort.Strings(files)

		opt := dataset.DefaultOptions()
		if cfg != nil && cfg.SampleRows > 0 {
			opt.SampleRows = cfg.SampleRows
		}
		if cmd.Flags().Changed("sample-rows") && abSampleRows >= 0 {
			opt.SampleRows = abSampleRows
		}
		if abMaxRows > 0 {
			opt.MaxRows = abMaxRows
		}
		d, err := parseDelimiter(abDelimiter)
		if err != nil {
			return err
		}
		opt.Delimiter = d
		opt.SheetName = abSheetName
		opt.SheetIndex = abSheetIndex
		opt.Extended = abExtended

		format, err := render.ParseFormat(abFormat)
		if err != nil {
			return err
		}

		var ws *workspace.Workspace
		if abWorkspace != "" {
			wsDir, err := resolveWorkspaceDirByName(abWorkspace)
			if err != nil {
				return err
			}
			ws, err = workspace.Load(wsDir)
			if err != nil {
				return err
			}
		}
		if abOutputDir != "" {
			if err := os.MkdirAll(abOutputDir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
		}

		// Phase 1: analyze in parallel. Results and failures land in
		// per-file slots so output order stays stable.
		reports := make([]*analysis.Report, len(files))
		failures := make([]error, len(files))
		limit := abConcurrency
		if limit < 1 {
			limit = 1
		}
		var g errgroup.Group
		g.SetLimit(limit)
		for i, path := range files {
			i, path := i, path
			g.Go(func() error {
				rep, err := dataset.Summarize(path, opt)
				if err != nil {
					failures[i] = err
					return nil
				}
				reports[i] = rep
				return nil
			})
		}
		_ = g.Wait()

		// Phase 2: write and attach sequentially so collision suffixes
		// are deterministic.
		total := len(files)
		failed := 0
		for i, path := range files {
			if !abQuiet {
				fmt.Printf("[%d/%d] %s\n", i+1, total, filepath.Base(path))
			}
			if failures[i] != nil {
				failed++
				fmt.Fprintf(os.Stderr, "✗ %s: %v\n", filepath.Base(path), failures[i])
				continue
			}
			rep := reports[i]
			written := false
			if abOutputDir != "" {
				out, err := render.NewDocument("Dataset analysis: "+rep.Name, rep).Render(format)
				if err != nil {
					failed++
					fmt.Fprintf(os.Stderr, "✗ %s: %v\n", filepath.Base(path), err)
					continue
				}
				outFile := reportFileName(abOutputDir, path, abSheetName, format, abQuiet)
				if err := os.WriteFile(outFile, out, 0o644); err != nil {
					failed++
					fmt.Fprintf(os.Stderr, "✗ %s: %v\n", filepath.Base(path), err)
					continue
				}
				if !abQuiet {
					fmt.Printf("✓ Wrote %s\n", outFile)
				}
				written = true
			}
			if ws != nil {
				d, err := ws.AddReport(rep, path, abDescription)
				if err != nil {
					failed++
					fmt.Fprintf(os.Stderr, "✗ %s: %v\n", filepath.Base(path), err)
					continue
				}
				if !abQuiet {
					fmt.Printf("✓ Added analysis to workspace '%s' as %s\n", ws.Name, d.Name)
				}
				written = true
			}
			if !written && !abQuiet {
				out, err := render.NewDocument("Dataset analysis: "+rep.Name, rep).Render(format)
				if err != nil {
					failed++
					fmt.Fprintf(os.Stderr, "✗ %s: %v\n", filepath.Base(path), err)
					continue
				}
				os.Stdout.Write(out)
				if len(out) > 0 && out[len(out)-1] != '\n' {
					fmt.Println()
				}
			}
		}
		if ws != nil {
			if err := ws.Save(); err != nil {
				return err
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed", failed, total)
		}
		return nil
	},
}

// reportFileName picks a non-colliding output path for a batch report.
// The base name carries a sheet slug when one sheet was requested, the
// same way single-file output does.
func reportFileName(dir, dataPath, sheetName string, format render.Format, quiet bool) string {
	base := filepath.Base(dataPath)
	safe := strings.TrimSuffix(base, filepath.Ext(base))
	if sheetName != "" {
		safe = safe + "__sheet-" + slugify(sheetName)
	}
	outFile := filepath.Join(dir, safe+".report"+format.Ext())
	if _, statErr := os.Stat(outFile); statErr == nil {
		idx := 2
		for {
			cand := filepath.Join(dir, fmt.Sprintf("%s__%d.report%s", safe, idx, format.Ext()))
			if _, err := os.Stat(cand); os.IsNotExist(err) {
				if !quiet {
					fmt.Printf("⚠ Detected existing report, writing to %s to avoid overwrite.\n", filepath.Base(cand))
				}
				outFile = cand
				break
			}
			idx++
		}
	}
	return outFile
}

// slugify reduces a sheet name to filename-safe characters.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else if r == ' ' || r == '-' || r == '_' {
			b.WriteRune('-')
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		out = "sheet"
	}
	return out
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	analyzeBatchCmd.Flags().StringVarP(&abWorkspace, "workspace", "w", "", "workspace name to attach summaries to")
	analyzeBatchCmd.Flags().StringVar(&abDescription, "desc", "", "description when attaching to a workspace")
	analyzeBatchCmd.Flags().StringVarP(&abFormat, "format", "f", "markdown", "output format: markdown | json | html")
	analyzeBatchCmd.Flags().StringVar(&abOutputDir, "output-dir", "", "directory to write one report file per input")
	analyzeBatchCmd.Flags().StringVar(&abDelimiter, "delimiter", "", "field delimiter: ',' | ';' | 'tab' (default by extension)")
	analyzeBatchCmd.Flags().IntVar(&abSampleRows, "sample-rows", 5, "number of sample rows to include (0 = none)")
	analyzeBatchCmd.Flags().IntVar(&abMaxRows, "max-rows", 0, "maximum rows to process (0 = unlimited)")
	analyzeBatchCmd.Flags().StringVar(&abSheetName, "sheet-name", "", "XLSX: sheet name to analyze")
	analyzeBatchCmd.Flags().IntVar(&abSheetIndex, "sheet-index", 0, "XLSX: worksheet position (0-based; 0 uses the active sheet)")
	analyzeBatchCmd.Flags().BoolVar(&abExtended, "extended", false, "add variation, correlation, and balance metrics")
	analyzeBatchCmd.Flags().IntVar(&abConcurrency, "concurrency", 4, "number of files analyzed in parallel")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
}
