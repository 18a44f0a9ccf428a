/*
Copyright © 2026 Paulo Suderio
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/suderio/roundkeeper/internal/session"

	"github.com/spf13/cobra"
)

// createCmd represents the create command
var createCmd = &cobra.Command{
	Use:   "create [encounter_name]",
	Short: "Create a new encounter workspace in the data directory",
	Long: `Bootstraps a fresh append-only journal log.jsonl and the roster
directory under the configured data directory to track the history of an
isolated encounter.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := args[0]

		manager := session.NewEncounterManager(resolveDataDir())
		logPath, err := manager.Create(name)
		if err != nil {
			fmt.Printf("Error creating encounter: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Successfully created encounter!\n")
		fmt.Printf("Journal stored at: %s\n", logPath)
		fmt.Printf("Place roster files under: %s\n", filepath.Join(manager.DataDir, "rosters"))
	},
}

func init() {
	encounterCmd.AddCommand(createCmd)
}
