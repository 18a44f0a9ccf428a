package persistence_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suderio/roundkeeper/internal/engine"
	"github.com/suderio/roundkeeper/internal/persistence"
)

func mustRounds(t *testing.T, n int) engine.Duration {
	t.Helper()
	d, err := engine.Rounds(n)
	require.NoError(t, err)
	return d
}

func TestJournalRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "combat.jsonl")

	j, err := persistence.NewJournal(path)
	require.NoError(t, err)

	require.NoError(t, j.Append(&engine.CombatStartedEvent{
		Order: []engine.InitiativeEntry{
			{ParticipantID: "pc1", Initiative: 18, IsActive: true},
			{ParticipantID: "dragon", Initiative: 15},
		},
	}))
	require.NoError(t, j.Append(&engine.TurnAdvancedEvent{ParticipantID: "dragon", Round: 1, Turn: 1}))
	require.NoError(t, j.Append(&engine.EffectAppliedEvent{Effect: engine.Effect{
		ID:             "eff-1",
		ParticipantID:  "dragon",
		Name:           "Poisoned",
		Remaining:      mustRounds(t, 3),
		AppliedAtRound: 1,
	}}))
	require.NoError(t, j.Append(&engine.CombatEndedEvent{Rounds: 1}))
	require.NoError(t, j.Close())

	j, err = persistence.NewJournal(path)
	require.NoError(t, err)
	defer j.Close()

	events, err := j.Load()
	require.NoError(t, err)
	require.Len(t, events, 4)

	started, ok := events[0].(*engine.CombatStartedEvent)
	require.True(t, ok)
	assert.Len(t, started.Order, 2)
	assert.True(t, started.Order[0].IsActive)

	applied, ok := events[2].(*engine.EffectAppliedEvent)
	require.True(t, ok)
	assert.Equal(t, "Poisoned", applied.Effect.Name)
	assert.Equal(t, 3, applied.Effect.Remaining.Remaining())

	ended, ok := events[3].(*engine.CombatEndedEvent)
	require.True(t, ok)
	assert.Equal(t, 1, ended.Rounds)
}

func TestJournalAppendsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "combat.jsonl")

	j, err := persistence.NewJournal(path)
	require.NoError(t, err)
	require.NoError(t, j.Append(&engine.TurnAdvancedEvent{ParticipantID: "pc1", Round: 1, Turn: 0}))
	require.NoError(t, j.Close())

	j, err = persistence.NewJournal(path)
	require.NoError(t, err)
	require.NoError(t, j.Append(&engine.TurnAdvancedEvent{ParticipantID: "dragon", Round: 1, Turn: 1}))

	events, err := j.Load()
	require.NoError(t, err)
	assert.Len(t, events, 2)
	require.NoError(t, j.Close())
}

func TestJournalMessagesSurviveReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "combat.jsonl")

	j, err := persistence.NewJournal(path)
	require.NoError(t, err)
	defer j.Close()

	original := &engine.RoundAdvancedEvent{
		Round:         2,
		ParticipantID: "pc1",
		Expired: []engine.Effect{
			{ID: "eff-1", ParticipantID: "dragon", Name: "Stunned", AppliedAtRound: 1},
		},
	}
	require.NoError(t, j.Append(original))

	events, err := j.Load()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, original.Message(), events[0].Message())
}
