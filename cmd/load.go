/*
Copyright © 2026 Paulo Suderio
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/suderio/roundkeeper/internal/engine"
	"github.com/suderio/roundkeeper/internal/persistence"
	"github.com/suderio/roundkeeper/internal/session"

	"github.com/spf13/cobra"
)

// loadCmd represents the load command
var loadCmd = &cobra.Command{
	Use:   "load [encounter_name]",
	Short: "Load an encounter and print its current state",
	Long: `Reads the latest snapshot of a saved encounter from the database
and prints the round, initiative order, and active effects.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := args[0]
		ctx := cmd.Context()

		manager := session.NewEncounterManager(resolveDataDir())
		store, err := persistence.Open(ctx, manager.GetDatabasePath())
		if err != nil {
			fmt.Printf("Error opening encounter database: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()

		snap, err := store.LoadSnapshot(ctx, name)
		if err != nil {
			fmt.Printf("Error finding encounter: %v\n", err)
			os.Exit(1)
		}

		combat, err := engine.Restore(snap)
		if err != nil {
			fmt.Printf("Error restoring encounter: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Successfully loaded encounter!\n")
		fmt.Printf("State: %s, round %d\n", combat.State(), combat.CurrentRound())
		for _, entry := range combat.InitiativeOrder() {
			marker := " "
			if entry.IsActive {
				marker = ">"
			}
			fmt.Printf("%s %s (%d)\n", marker, entry.ParticipantID, entry.Initiative)
			for _, eff := range combat.ActiveEffects(entry.ParticipantID) {
				fmt.Printf("    %s (%s)\n", eff.Name, eff.Remaining)
			}
		}
	},
}

func init() {
	encounterCmd.AddCommand(loadCmd)
}
