/*
Copyright © 2026 Paulo Suderio
*/
package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/suderio/roundkeeper/internal/persistence"
	"github.com/suderio/roundkeeper/internal/roster"
	"github.com/suderio/roundkeeper/internal/session"

	"github.com/spf13/cobra"
)

var replCmd = &cobra.Command{
	Use:   "repl [encounter_name] [roster_name]",
	Short: "Start the interactive REPL shell",
	Long: `Starts the read-eval-print loop for running a combat encounter.
Usage:
	> start with: pc1=18 and: dragon=15
	> effect on: dragon name: Poisoned rounds: 3
	> next

If the encounter already has a saved snapshot it is resumed; otherwise the
roster is loaded and a fresh session begins. The roster name defaults to the
encounter name.`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		encounterName := args[0]
		rosterName := encounterName
		if len(args) >= 2 {
			rosterName = args[1]
		}

		ctx := cmd.Context()
		manager := session.NewEncounterManager(resolveDataDir())

		journalPath, err := manager.Create(encounterName)
		if err != nil {
			fmt.Printf("Failed to prepare encounter workspace: %v\n", err)
			os.Exit(1)
		}

		store, err := persistence.Open(ctx, manager.GetDatabasePath())
		if err != nil {
			fmt.Printf("Failed to open encounter database: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()

		journal, err := persistence.NewJournal(journalPath)
		if err != nil {
			fmt.Printf("Failed to open encounter journal: %v\n", err)
			os.Exit(1)
		}
		defer journal.Close()

		app, err := session.Resume(ctx, encounterName, store, journal)
		if errors.Is(err, persistence.ErrNotFound) {
			app, err = bootstrapFresh(encounterName, rosterName, manager, store, journal)
		}
		if err != nil {
			fmt.Printf("Failed to bootstrap encounter session: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Starting REPL for '%s'...\nType 'exit' or 'quit' to leave.\n\n", encounterName)

		if err := RunTUI(app); err != nil {
			fmt.Printf("Fatal TUI Error: %v\n", err)
			os.Exit(1)
		}
	},
}

// bootstrapFresh loads the roster and opens a brand-new session for it.
func bootstrapFresh(encounterName, rosterName string, manager *session.EncounterManager, store persistence.Store, journal *persistence.Journal) (*session.Manager, error) {
	dataDirs := []string{
		manager.DataDir,
		filepath.Join(manager.DataDir, "data"),
	}
	party, err := roster.NewLoader(dataDirs).LoadRoster(rosterName)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster %s: %w", rosterName, err)
	}
	return session.NewManager(encounterName, party, store, journal)
}

func init() {
	rootCmd.AddCommand(replCmd)
}
