/*
Copyright © 2026 Paulo Suderio
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/suderio/roundkeeper/internal/persistence"
	"github.com/suderio/roundkeeper/internal/session"

	"github.com/spf13/cobra"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the saved encounters",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		manager := session.NewEncounterManager(resolveDataDir())
		store, err := persistence.Open(ctx, manager.GetDatabasePath())
		if err != nil {
			fmt.Printf("Error opening encounter database: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()

		infos, err := store.ListEncounters(ctx)
		if err != nil {
			fmt.Printf("Error listing encounters: %v\n", err)
			os.Exit(1)
		}

		if len(infos) == 0 {
			fmt.Println("No saved encounters.")
			return
		}

		for _, info := range infos {
			status := "active"
			if info.Ended {
				status = "ended"
			}
			fmt.Printf("%-24s round %-3d %-7s saved %s\n", info.Name, info.Round, status, info.SavedAt.Format("2006-01-02 15:04"))
		}
	},
}

func init() {
	encounterCmd.AddCommand(listCmd)
}
