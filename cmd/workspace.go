package cmd

import (
	"fmt"
	"sort"

	"github.com/KaramelBytes/bizlens-cli/internal/workspace"
	"github.com/spf13/cobra"
)

var (
	wmWorkspace string
	wmClear     bool
)

var workspaceCmd = &cobra.Command{
	Use:   "workspace",
	Short: "Manage per-workspace settings",
}

var workspaceSetModelCmd = &cobra.Command{
	Use:   "set-model <model>",
	Short: "Set or clear a workspace's default model",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if wmWorkspace == "" {
			return fmt.Errorf("--workspace is required")
		}
		dir, err := resolveWorkspaceDirByName(wmWorkspace)
		if err != nil {
			return err
		}
		ws, err := workspace.Load(dir)
		if err != nil {
			return err
		}
		if ws.Config == nil {
			ws.Config = &workspace.WorkspaceConfig{}
		}
		if wmClear {
			ws.Config.Model = ""
		} else {
			if len(args) == 0 || args[0] == "" {
				return fmt.Errorf("model is required unless --clear is set")
			}
			ws.Config.Model = args[0]
		}
		if err := ws.Save(); err != nil {
			return err
		}
		if wmClear {
			fmt.Printf("✓ Cleared workspace model for %s\n", wmWorkspace)
		} else {
			fmt.Printf("✓ Set workspace model for %s: %s\n", wmWorkspace, ws.Config.Model)
		}
		return nil
	},
}

var workspaceShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a workspace's contents and settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		if wmWorkspace == "" {
			return fmt.Errorf("--workspace is required")
		}
		dir, err := resolveWorkspaceDirByName(wmWorkspace)
		if err != nil {
			return err
		}
		ws, err := workspace.Load(dir)
		if err != nil {
			return err
		}
		fmt.Printf("Workspace: %s\n", ws.Name)
		if ws.Description != "" {
			fmt.Printf("Description: %s\n", ws.Description)
		}
		if ws.Objective != "" {
			fmt.Printf("Objective: %s\n", ws.Objective)
		}
		if ws.Config != nil && (ws.Config.Model != "" || ws.Config.Provider != "") {
			fmt.Printf("Model: %s", ws.Config.Model)
			if ws.Config.Provider != "" {
				fmt.Printf(" (%s)", ws.Config.Provider)
			}
			fmt.Println()
		}
		fmt.Printf("Datasets: %d\n", len(ws.Datasets))
		ids := make([]string, 0, len(ws.Datasets))
		for id := range ws.Datasets {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			d := ws.Datasets[id]
			fmt.Printf("  - %s: %d×%d, ≈%d tokens\n", d.Name, d.Rows, d.Columns, d.Tokens)
		}
		fmt.Printf("Notes: %d\n", len(ws.Notes))
		nids := make([]string, 0, len(ws.Notes))
		for id := range ws.Notes {
			nids = append(nids, id)
		}
		sort.Strings(nids)
		for _, id := range nids {
			n := ws.Notes[id]
			fmt.Printf("  - %s: ≈%d tokens\n", n.Name, n.Tokens)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(workspaceCmd)
	workspaceCmd.AddCommand(workspaceSetModelCmd)
	workspaceCmd.AddCommand(workspaceShowCmd)

	workspaceCmd.PersistentFlags().StringVarP(&wmWorkspace, "workspace", "w", "", "workspace name")
	workspaceSetModelCmd.Flags().BoolVar(&wmClear, "clear", false, "clear the workspace's model override")
}
