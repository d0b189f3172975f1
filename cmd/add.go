package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/bizlens-cli/internal/dataset"
	"github.com/KaramelBytes/bizlens-cli/internal/workspace"
	"github.com/spf13/cobra"
)

var (
	addWorkspace  string
	addDesc       string
	addDelimiter  string
	addSampleRows int
	addMaxRows    int
	addSheetName  string
	addSheetIndex int
)

var addCmd = &cobra.Command{
	Use:   "add <path...>",
	Short: "Add datasets or context notes to a workspace",
	Long: `Adds files to a workspace. Data files (.csv, .tsv, .xlsx) are analyzed
and stored as summaries; text files (.txt, .md) become business context
notes included in the insights prompt.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if addWorkspace == "" {
			return fmt.Errorf("--workspace is required")
		}
		wsDir, err := resolveWorkspaceDirByName(addWorkspace)
		if err != nil {
			return err
		}
		ws, err := workspace.Load(wsDir)
		if err != nil {
			return err
		}

		opt := dataset.DefaultOptions()
		if cfg != nil && cfg.SampleRows > 0 {
			opt.SampleRows = cfg.SampleRows
		}
		if cmd.Flags().Changed("sample-rows") && addSampleRows >= 0 {
			opt.SampleRows = addSampleRows
		}
		if addMaxRows > 0 {
			opt.MaxRows = addMaxRows
		}
		opt.Delimiter, err = parseDelimiter(addDelimiter)
		if err != nil {
			return err
		}
		opt.SheetName = addSheetName
		opt.SheetIndex = addSheetIndex

		for _, path := range args {
			switch {
			case workspace.IsNoteFile(path):
				if err := ws.AddNote(path, addDesc); err != nil {
					return err
				}
				fmt.Printf("✓ Note added: %s\n", filepath.Base(path))
			case isDatasetFile(path):
				if err := ws.AddDataset(path, addDesc, opt); err != nil {
					return err
				}
				fmt.Printf("✓ Dataset added: %s\n", filepath.Base(path))
			default:
				return fmt.Errorf("unsupported file type %q (data: .csv, .tsv, .xlsx; notes: .txt, .md)", filepath.Ext(path))
			}
		}
		return ws.Save()
	},
}

func isDatasetFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".xlsx":
		return true
	}
	return false
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVarP(&addWorkspace, "workspace", "w", "", "workspace name")
	addCmd.Flags().StringVar(&addDesc, "desc", "", "description for the added file(s)")
	addCmd.Flags().StringVar(&addDelimiter, "delimiter", "", "field delimiter: ',' | ';' | 'tab' (default by extension)")
	addCmd.Flags().IntVar(&addSampleRows, "sample-rows", 5, "number of sample rows in the stored summary (0 = none)")
	addCmd.Flags().IntVar(&addMaxRows, "max-rows", 0, "maximum rows to process (0 = unlimited)")
	addCmd.Flags().StringVar(&addSheetName, "sheet-name", "", "XLSX: sheet name to analyze")
	addCmd.Flags().IntVar(&addSheetIndex, "sheet-index", 0, "XLSX: worksheet position (0-based; 0 uses the active sheet)")
}
