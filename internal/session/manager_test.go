package session_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suderio/roundkeeper/internal/persistence"
	"github.com/suderio/roundkeeper/internal/roster"
	"github.com/suderio/roundkeeper/internal/session"
)

func testParty() *roster.Roster {
	return &roster.Roster{
		Name: "Dragon Lair",
		Members: []roster.Member{
			{ID: "pc1", Name: "Aria", Player: true, HitPoints: 42, ArmorClass: 17},
			{ID: "dragon", Name: "Young Red Dragon", HitPoints: 178, ArmorClass: 18},
			{ID: "pc2", Name: "Borin", Player: true, HitPoints: 38, ArmorClass: 16},
		},
	}
}

func newTestManager(t *testing.T) (*session.Manager, *persistence.SQLiteStore) {
	t.Helper()
	dir := t.TempDir()

	store, err := persistence.Open(context.Background(), filepath.Join(dir, "encounters.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	journal, err := persistence.NewJournal(filepath.Join(dir, "log.jsonl"))
	require.NoError(t, err)
	t.Cleanup(func() { journal.Close() })

	m, err := session.NewManager("dragon-lair", testParty(), store, journal,
		session.WithRoll(func() int { return 10 }))
	require.NoError(t, err)
	return m, store
}

func TestExecuteStartWithExplicitRolls(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	out, err := m.Execute(ctx, "start with: pc1=18 and: dragon=15 and: pc2=18")
	require.NoError(t, err)
	assert.Contains(t, out, "Combat started")
	assert.Contains(t, out, "pc1 (18)")

	active, ok := m.Combat().ActiveParticipant()
	require.True(t, ok)
	assert.Equal(t, "pc1", active.ID)
}

func TestExecuteStartRollsForSilentMembers(t *testing.T) {
	m, _ := newTestManager(t)

	// Only the dragon gets an explicit score; the rest take the injected 10.
	_, err := m.Execute(context.Background(), "start with: dragon=15")
	require.NoError(t, err)

	active, ok := m.Combat().ActiveParticipant()
	require.True(t, ok)
	assert.Equal(t, "dragon", active.ID)
}

func TestExecuteStartRejectsUnknownMember(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Execute(context.Background(), "start with: ghost=20")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
}

func TestExecuteFullEncounterFlow(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.Execute(ctx, "start with: pc1=18 and: dragon=15 and: pc2=18")
	require.NoError(t, err)

	out, err := m.Execute(ctx, "effect on: dragon name: Poisoned rounds: 2")
	require.NoError(t, err)
	assert.Contains(t, out, "Poisoned")

	_, err = m.Execute(ctx, "trigger name: Rockfall round: 2")
	require.NoError(t, err)

	// Three turns wrap into round 2; the rockfall fires at the boundary.
	_, err = m.Execute(ctx, "next")
	require.NoError(t, err)
	_, err = m.Execute(ctx, "next")
	require.NoError(t, err)
	out, err = m.Execute(ctx, "next")
	require.NoError(t, err)
	assert.Contains(t, out, "Round 2 begins")
	assert.Contains(t, out, "Rockfall")

	assert.Equal(t, 2, m.Combat().CurrentRound())
	require.Len(t, m.Combat().ActiveEffects("dragon"), 1)

	out, err = m.Execute(ctx, "log")
	require.NoError(t, err)
	assert.Contains(t, out, "Round 1:")
	assert.Contains(t, out, "Round 2:")

	out, err = m.Execute(ctx, "search Rockfall")
	require.NoError(t, err)
	assert.Contains(t, out, "Rockfall")
	assert.NotContains(t, out, "Poisoned")

	out, err = m.Execute(ctx, "end")
	require.NoError(t, err)
	assert.Contains(t, out, "Combat ended after 2 rounds")

	out, err = m.Execute(ctx, "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "Rounds fought: 2")
}

func TestExecuteLogLastShowsMostRecentRounds(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.Execute(ctx, "start with: pc1=18 and: dragon=15 and: pc2=18")
	require.NoError(t, err)

	// Two full passes put the encounter in round 3.
	for i := 0; i < 6; i++ {
		_, err = m.Execute(ctx, "next")
		require.NoError(t, err)
	}
	require.Equal(t, 3, m.Combat().CurrentRound())

	out, err := m.Execute(ctx, "log last: 2")
	require.NoError(t, err)
	assert.NotContains(t, out, "Round 1:")
	assert.Contains(t, out, "Round 2:")
	assert.Contains(t, out, "Round 3:")

	out, err = m.Execute(ctx, "log last: 1")
	require.NoError(t, err)
	assert.NotContains(t, out, "Round 2:")
	assert.Contains(t, out, "Round 3:")
}

func TestExecutePermanentEffectAndClear(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.Execute(ctx, "start with: pc1=18 and: dragon=15 and: pc2=18")
	require.NoError(t, err)

	out, err := m.Execute(ctx, `effect on: dragon name: "Legendary Resistance" permanent`)
	require.NoError(t, err)
	assert.Contains(t, out, "permanent")

	effects := m.Combat().ActiveEffects("dragon")
	require.Len(t, effects, 1)

	_, err = m.Execute(ctx, `clear on: dragon id: "`+effects[0].ID+`"`)
	require.NoError(t, err)
	assert.Empty(t, m.Combat().ActiveEffects("dragon"))
}

func TestExecuteUnparsableInputMapsToGuidance(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Execute(context.Background(), "effect dragon Poisoned")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "effect on: Target")
}

func TestExecuteHint(t *testing.T) {
	m, _ := newTestManager(t)

	out, err := m.Execute(context.Background(), "hint")
	require.NoError(t, err)
	assert.Contains(t, out, "start [with:")
	assert.Contains(t, out, "trigger name:")
}

func TestResumeContinuesWhereCheckpointLeft(t *testing.T) {
	m, store := newTestManager(t)
	ctx := context.Background()

	_, err := m.Execute(ctx, "start with: pc1=18 and: dragon=15 and: pc2=18")
	require.NoError(t, err)
	_, err = m.Execute(ctx, "effect on: dragon name: Poisoned rounds: 3")
	require.NoError(t, err)
	_, err = m.Execute(ctx, "next")
	require.NoError(t, err)

	resumed, err := session.Resume(ctx, "dragon-lair", store, nil)
	require.NoError(t, err)

	assert.Equal(t, m.Combat().CurrentRound(), resumed.Combat().CurrentRound())
	require.Len(t, resumed.Combat().ActiveEffects("dragon"), 1)

	active, ok := resumed.Combat().ActiveParticipant()
	require.True(t, ok)
	assert.Equal(t, "dragon", active.ID)

	// The resumed session keeps taking commands and checkpointing.
	_, err = resumed.Execute(ctx, "next")
	require.NoError(t, err)
}

func TestResumeUnknownEncounter(t *testing.T) {
	_, store := newTestManager(t)

	_, err := session.Resume(context.Background(), "nowhere", store, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, persistence.ErrNotFound)
}

func TestEncounterManagerPaths(t *testing.T) {
	dir := t.TempDir()
	em := session.NewEncounterManager(dir)

	logPath, err := em.Create("dragon-lair")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(logPath, filepath.Join("dragon-lair", "log.jsonl")))

	stat, err := os.Stat(em.GetEncounterPath("dragon-lair"))
	require.NoError(t, err)
	assert.True(t, stat.IsDir())

	loaded, err := em.Load("dragon-lair")
	require.NoError(t, err)
	assert.Equal(t, logPath, loaded)

	_, err = em.Load("missing")
	require.Error(t, err)
}
