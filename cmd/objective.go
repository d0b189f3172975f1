package cmd

import (
	"fmt"

	"github.com/KaramelBytes/bizlens-cli/internal/workspace"
	"github.com/spf13/cobra"
)

var (
	objWorkspace string
)

var objectiveCmd = &cobra.Command{
	Use:   "objective <text>",
	Short: "Set or update the workspace analysis objective",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := args[0]
		if objWorkspace == "" {
			return fmt.Errorf("--workspace is required")
		}
		wsDir, err := resolveWorkspaceDirByName(objWorkspace)
		if err != nil {
			return err
		}
		ws, err := workspace.Load(wsDir)
		if err != nil {
			return err
		}
		ws.SetObjective(text)
		if err := ws.Save(); err != nil {
			return err
		}
		fmt.Println("✓ Objective updated")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(objectiveCmd)
	objectiveCmd.Flags().StringVarP(&objWorkspace, "workspace", "w", "", "workspace name")
}
