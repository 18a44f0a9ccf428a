package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTripsThroughJSON(t *testing.T) {
	s := startedSession(t)
	_, err := s.ApplyEffect("pc1", Effect{Name: "Blessed", Remaining: mustRounds(t, 3)})
	require.NoError(t, err)
	_, err = s.ScheduleTrigger(Trigger{Name: "Lair Action", Round: 2, Recurring: true, IntervalRounds: 1})
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		_, err := s.NextTurn()
		require.NoError(t, err)
	}

	snap := s.Snapshot()
	data, err := json.Marshal(snap)
	require.NoError(t, err)

	var decoded Snapshot
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, snap, decoded)
}

func TestRestoreReconstructsIdenticalState(t *testing.T) {
	s := startedSession(t)
	_, err := s.ApplyEffect("pc2", Effect{Name: "Poisoned", Remaining: mustRounds(t, 4)})
	require.NoError(t, err)
	_, err = s.ScheduleTrigger(Trigger{Name: "Rockfall", Round: 3})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := s.NextTurn()
		require.NoError(t, err)
	}

	restored, err := Restore(s.Snapshot(), WithoutTimestamps())
	require.NoError(t, err)

	// The persisted order alone reproduces the tie-break result and the
	// journal order.
	assert.Equal(t, s.InitiativeOrder(), restored.InitiativeOrder())
	assert.Equal(t, s.History(), restored.History())
	assert.Equal(t, s.CurrentRound(), restored.CurrentRound())
	assert.Equal(t, s.ActiveEffects("pc2"), restored.ActiveEffects("pc2"))
	assert.Equal(t, s.Triggers(), restored.Triggers())

	// Both sessions advance identically from here.
	origEvt, err := s.NextTurn()
	require.NoError(t, err)
	restEvt, err := restored.NextTurn()
	require.NoError(t, err)
	assert.Equal(t, origEvt.Message(), restEvt.Message())
	assert.Equal(t, s.Snapshot(), restored.Snapshot())
}

func TestRestoreKeepsTriggerIdempotenceAcrossReload(t *testing.T) {
	s := startedSession(t)
	_, err := s.ScheduleTrigger(Trigger{Name: "Rockfall", Round: 2})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := s.NextTurn()
		require.NoError(t, err)
	}

	restored, err := Restore(s.Snapshot(), WithoutTimestamps())
	require.NoError(t, err)

	evt, err := restored.ResolveTriggers()
	require.NoError(t, err)
	assert.Empty(t, evt.(*TriggersResolvedEvent).Fired, "round 2 was already resolved before the reload")
}

func TestRestoreEndedSessionStaysTerminal(t *testing.T) {
	s := startedSession(t)
	_, err := s.EndCombat()
	require.NoError(t, err)

	restored, err := Restore(s.Snapshot(), WithoutTimestamps())
	require.NoError(t, err)
	assert.Equal(t, StateEnded, restored.State())
	assert.Equal(t, s.Summarize(), restored.Summarize())

	var serr *InvalidStateError
	_, err = restored.NextTurn()
	require.ErrorAs(t, err, &serr)
}

func TestRestoreRejectsContradictorySnapshots(t *testing.T) {
	var verr *ValidationError

	_, err := Restore(Snapshot{IsActive: true, Ended: true})
	require.ErrorAs(t, err, &verr)

	_, err = Restore(Snapshot{IsActive: true, CurrentRound: 1})
	require.ErrorAs(t, err, &verr, "active snapshot without an order")
}

func TestRestoreNotStartedSnapshot(t *testing.T) {
	s := newTestSession()
	restored, err := Restore(s.Snapshot(), WithoutTimestamps())
	require.NoError(t, err)
	assert.Equal(t, StateNotStarted, restored.State())

	_, err = restored.StartCombat(testParty(), testRolls())
	require.NoError(t, err)
}
