package persistence_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suderio/roundkeeper/internal/engine"
	"github.com/suderio/roundkeeper/internal/persistence"
)

func openTestStore(t *testing.T) *persistence.SQLiteStore {
	t.Helper()
	store, err := persistence.Open(context.Background(), filepath.Join(t.TempDir(), "encounters.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleSnapshot(t *testing.T) engine.Snapshot {
	t.Helper()
	return engine.Snapshot{
		IsActive:     true,
		CurrentRound: 2,
		CurrentTurn:  1,
		InitiativeOrder: []engine.InitiativeEntry{
			{ParticipantID: "pc1", Initiative: 18, HasActed: true},
			{ParticipantID: "dragon", Initiative: 15, IsActive: true},
		},
		Participants: []engine.Participant{
			{ID: "pc1", Name: "Aria", IsPlayer: true, HP: 42, MaxHP: 42},
			{ID: "dragon", Name: "Dragon", HP: 160, MaxHP: 178},
		},
		Effects: []engine.Effect{
			{ID: "eff-1", ParticipantID: "dragon", Name: "Poisoned", Remaining: mustRounds(t, 2), AppliedAtRound: 1},
		},
		LastResolvedRound: 2,
		LastTickedRound:   2,
		History: []engine.HistoryEntry{
			{Round: 1, Events: []engine.HistoryEvent{{Text: "Combat started."}}},
			{Round: 2, Events: []engine.HistoryEvent{{Text: "Round 2 begins. pc1 acts first."}}},
		},
	}
}

func TestSQLiteSaveAndLoadSnapshot(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	snap := sampleSnapshot(t)
	require.NoError(t, store.SaveSnapshot(ctx, "dragon-lair", snap))

	loaded, err := store.LoadSnapshot(ctx, "dragon-lair")
	require.NoError(t, err)
	assert.Equal(t, snap, loaded)

	// A reload must restore a working session.
	sess, err := engine.Restore(loaded)
	require.NoError(t, err)
	assert.Equal(t, 2, sess.CurrentRound())
}

func TestSQLiteSaveOverwritesByName(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	snap := sampleSnapshot(t)
	require.NoError(t, store.SaveSnapshot(ctx, "dragon-lair", snap))

	snap.CurrentRound = 5
	require.NoError(t, store.SaveSnapshot(ctx, "dragon-lair", snap))

	loaded, err := store.LoadSnapshot(ctx, "dragon-lair")
	require.NoError(t, err)
	assert.Equal(t, 5, loaded.CurrentRound)

	infos, err := store.ListEncounters(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, 5, infos[0].Round)
	assert.False(t, infos[0].Ended)
}

func TestSQLiteLoadMissing(t *testing.T) {
	store := openTestStore(t)

	_, err := store.LoadSnapshot(context.Background(), "nowhere")
	require.ErrorIs(t, err, persistence.ErrNotFound)
}

func TestSQLiteListAndDelete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	snap := sampleSnapshot(t)
	require.NoError(t, store.SaveSnapshot(ctx, "first", snap))

	ended := sampleSnapshot(t)
	ended.IsActive = false
	ended.Ended = true
	ended.InitiativeOrder[1].IsActive = false
	require.NoError(t, store.SaveSnapshot(ctx, "second", ended))

	infos, err := store.ListEncounters(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)

	require.NoError(t, store.DeleteEncounter(ctx, "first"))

	infos, err = store.ListEncounters(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "second", infos[0].Name)
	assert.True(t, infos[0].Ended)

	require.ErrorIs(t, store.DeleteEncounter(ctx, "first"), persistence.ErrNotFound)
}

func TestSQLiteReopenKeepsRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "encounters.db")
	ctx := context.Background()

	store, err := persistence.Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, store.SaveSnapshot(ctx, "dragon-lair", sampleSnapshot(t)))
	require.NoError(t, store.Close())

	store, err = persistence.Open(ctx, path)
	require.NoError(t, err)
	defer store.Close()

	loaded, err := store.LoadSnapshot(ctx, "dragon-lair")
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.CurrentRound)
}
