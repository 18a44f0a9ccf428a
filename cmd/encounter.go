/*
Copyright © 2026 Paulo Suderio
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// encounterCmd represents the encounter command
var encounterCmd = &cobra.Command{
	Use:   "encounter",
	Short: "Manage saved combat encounters",
	Long: `The encounter command groups the lifecycle operations of saved
combat encounters.

Use subcommands 'create', 'load' and 'list' to manipulate the snapshot
database and the per-encounter JSONL journals under the data directory.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("encounter called")
	},
}

func init() {
	rootCmd.AddCommand(encounterCmd)
}
