/*
Copyright © 2026 Paulo Suderio
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/suderio/roundkeeper/internal/persistence"
	"github.com/suderio/roundkeeper/internal/session"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// replayCmd represents the replay command
var replayCmd = &cobra.Command{
	Use:   "replay [encounter_name]",
	Short: "Replay the journal of an encounter event by event",
	Long: `Reads the log.jsonl of a saved encounter and prints every recorded
event in order. Useful to recap a session or to verify that the journal and
the snapshot agree on what happened.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := args[0]

		manager := session.NewEncounterManager(resolveDataDir())
		journalPath, err := manager.Load(name)
		if err != nil {
			fmt.Printf("Error finding encounter: %v\n", err)
			os.Exit(1)
		}

		journal, err := persistence.NewJournal(journalPath)
		if err != nil {
			fmt.Printf("Error opening journal: %v\n", err)
			os.Exit(1)
		}
		defer journal.Close()

		events, err := journal.Load()
		if err != nil {
			fmt.Printf("Error reading journal: %v\n", err)
			os.Exit(1)
		}

		if len(events) == 0 {
			fmt.Println("The journal is empty.")
			return
		}

		bar := progressbar.Default(int64(len(events)), "Replaying")
		for _, evt := range events {
			fmt.Printf("\n[%s] %s\n", evt.Type(), evt.Message())
			bar.Add(1)
		}

		fmt.Printf("\nReplayed %d events.\n", len(events))
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)
}
