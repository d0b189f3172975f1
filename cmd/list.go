package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/KaramelBytes/bizlens-cli/internal/workspace"
	"github.com/spf13/cobra"
)

var (
	listWorkspaces bool
	listDatasets   bool
	listWsName     string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List workspaces or the datasets in one",
	RunE: func(cmd *cobra.Command, args []string) error {
		if listWorkspaces == listDatasets { // either both true or both false
			return fmt.Errorf("specify exactly one of --workspaces or --datasets")
		}
		if listWorkspaces {
			return listAllWorkspaces()
		}
		// list datasets
		if listWsName == "" {
			return fmt.Errorf("--workspace is required when using --datasets")
		}
		wsDir, err := resolveWorkspaceDirByName(listWsName)
		if err != nil {
			return err
		}
		ws, err := workspace.Load(wsDir)
		if err != nil {
			return err
		}
		if len(ws.Datasets) == 0 {
			fmt.Println("(no datasets)")
			return nil
		}
		ids := make([]string, 0, len(ws.Datasets))
		for id := range ws.Datasets {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			d := ws.Datasets[id]
			line := fmt.Sprintf("- %s: %d×%d, ≈%d tokens", d.Name, d.Rows, d.Columns, d.Tokens)
			if d.Description != "" {
				line += " (" + d.Description + ")"
			}
			fmt.Println(line)
		}
		return nil
	},
}

func listAllWorkspaces() error {
	root, err := defaultWorkspacesDir()
	if err != nil {
		return err
	}
	dirs, err := os.ReadDir(root)
	if err != nil {
		return err
	}
	found := false
	for _, e := range dirs {
		if !e.IsDir() {
			continue
		}
		wj := filepath.Join(root, e.Name(), "workspace.json")
		if _, err := os.Stat(wj); err == nil {
			fmt.Printf("- %s\n", e.Name())
			found = true
		}
	}
	if !found {
		fmt.Println("(no workspaces)")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listWorkspaces, "workspaces", false, "list workspaces")
	listCmd.Flags().BoolVar(&listDatasets, "datasets", false, "list datasets in a workspace")
	listCmd.Flags().StringVarP(&listWsName, "workspace", "w", "", "workspace name for --datasets")
}
