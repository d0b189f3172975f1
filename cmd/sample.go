package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/bizlens-cli/internal/sample"
	"github.com/spf13/cobra"
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "List or extract bundled sample datasets",
	Example: `  bizlens sample list
  bizlens sample load retail_sales.csv
  bizlens analyze retail_sales.csv`,
}

var sampleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List bundled sample datasets",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range sample.List() {
			if desc := sample.Describe(name); desc != "" {
				fmt.Printf("- %s: %s\n", name, desc)
			} else {
				fmt.Printf("- %s\n", name)
			}
		}
		return nil
	},
}

var sampleLoadOutput string

var sampleLoadCmd = &cobra.Command{
	Use:   "load <name>",
	Short: "Write a bundled sample dataset to disk",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		data, err := sample.Load(name)
		if err != nil {
			return err
		}
		out := sampleLoadOutput
		if out == "" {
			out = filepath.Base(name)
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("write sample: %w", err)
		}
		fmt.Printf("💾 Saved sample to %s\n", out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sampleCmd)
	sampleCmd.AddCommand(sampleListCmd)
	sampleCmd.AddCommand(sampleLoadCmd)

	sampleLoadCmd.Flags().StringVarP(&sampleLoadOutput, "output", "o", "", "destination path (default: ./<name>)")
}
