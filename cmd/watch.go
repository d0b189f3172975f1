package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/KaramelBytes/bizlens-cli/internal/dataset"
	"github.com/KaramelBytes/bizlens-cli/internal/render"
	"github.com/KaramelBytes/bizlens-cli/internal/watch"
	"github.com/spf13/cobra"
)

var (
	watchFormat     string
	watchOutputDir  string
	watchSampleRows int
	watchExtended   bool
)

var watchCmd = &cobra.Command{
	Use:   "watch <directory>",
	Short: "Re-analyze data files in a directory whenever they change",
	Long: `Watch a directory and regenerate the analysis report for any CSV, TSV,
or XLSX file that is created or saved there. Reports are written next to
the data file (or under --output-dir) and overwritten on each change.

Stop with Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	Example: `  bizlens watch ./data
  bizlens watch ./data --output-dir ./reports --format html`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("watch directory: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("watch target %s is not a directory", dir)
		}
		format, err := render.ParseFormat(watchFormat)
		if err != nil {
			return err
		}
		if watchOutputDir != "" {
			if err := os.MkdirAll(watchOutputDir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
		}

		w, err := watch.New(dir)
		if err != nil {
			return fmt.Errorf("start watcher: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		fmt.Printf("⚙ Watching %s for data file changes (Ctrl+C to stop)\n", dir)
		err = w.Run(ctx, func(path string) {
			if rerr := renderReportFor(path, format); rerr != nil {
				fmt.Fprintf(os.Stderr, "✗ %s: %v\n", filepath.Base(path), rerr)
			}
		})
		if errors.Is(err, context.Canceled) {
			fmt.Println("✓ Watch stopped")
			return nil
		}
		return err
	},
}

// renderReportFor summarizes one data file and writes its report next to
// the file, or under --output-dir when set.
func renderReportFor(path string, format render.Format) error {
	opt := dataset.DefaultOptions()
	if watchSampleRows >= 0 {
		opt.SampleRows = watchSampleRows
	}
	opt.Extended = watchExtended
	rep, err := dataset.Summarize(path, opt)
	if err != nil {
		return err
	}
	doc := render.NewDocument("Dataset analysis: "+rep.Name, rep)
	out, err := doc.Render(format)
	if err != nil {
		return err
	}
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + ".report" + format.Ext()
	destDir := filepath.Dir(path)
	if watchOutputDir != "" {
		destDir = watchOutputDir
	}
	dest := filepath.Join(destDir, name)
	if err := os.WriteFile(dest, out, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Printf("✓ Wrote %s\n", dest)
	return nil
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVarP(&watchFormat, "format", "f", "markdown", "report format: markdown | html | json")
	watchCmd.Flags().StringVar(&watchOutputDir, "output-dir", "", "directory to write reports into (default: next to each data file)")
	watchCmd.Flags().IntVar(&watchSampleRows, "sample-rows", 5, "number of sample rows to include (0 to omit)")
	watchCmd.Flags().BoolVar(&watchExtended, "extended", false, "include extended distribution statistics")
}
