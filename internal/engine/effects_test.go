package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func poisoned(t *testing.T, id string, rounds int) Effect {
	t.Helper()
	return Effect{
		ID:             id,
		ParticipantID:  "pc1",
		Name:           "Poisoned",
		Remaining:      mustRounds(t, rounds),
		AppliedAtRound: 1,
	}
}

func TestApplyRejectsDuplicateEffectID(t *testing.T) {
	tracker := NewEffectTracker()
	require.NoError(t, tracker.Apply(poisoned(t, "eff-1", 3)))

	err := tracker.Apply(poisoned(t, "eff-1", 5))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	// Removal followed by reapplication is the supported refresh path.
	_, err = tracker.Remove("pc1", "eff-1")
	require.NoError(t, err)
	require.NoError(t, tracker.Apply(poisoned(t, "eff-1", 5)))
}

func TestTickExpiresEffectsAtZero(t *testing.T) {
	tracker := NewEffectTracker()
	require.NoError(t, tracker.Apply(poisoned(t, "eff-1", 2)))

	expired := tracker.Tick("pc1")
	assert.Empty(t, expired)
	require.Len(t, tracker.Active("pc1"), 1)
	assert.Equal(t, 1, tracker.Active("pc1")[0].Remaining.Remaining())

	expired = tracker.Tick("pc1")
	require.Len(t, expired, 1)
	assert.Equal(t, "eff-1", expired[0].ID)
	// Never held at 0: removal happens the instant the duration runs out.
	assert.Empty(t, tracker.Active("pc1"))
}

func TestPermanentEffectSurvivesTicks(t *testing.T) {
	tracker := NewEffectTracker()
	require.NoError(t, tracker.Apply(Effect{
		ID:             "eff-perm",
		ParticipantID:  "pc1",
		Name:           "Cursed",
		Remaining:      Permanent(),
		AppliedAtRound: 1,
	}))

	for i := 0; i < 50; i++ {
		assert.Empty(t, tracker.Tick("pc1"))
	}
	require.Len(t, tracker.Active("pc1"), 1)
	assert.True(t, tracker.Active("pc1")[0].Remaining.IsPermanent())
}

func TestActiveOrderIsDeterministic(t *testing.T) {
	tracker := NewEffectTracker()
	b := poisoned(t, "eff-b", 4)
	b.AppliedAtRound = 2
	a := poisoned(t, "eff-a", 4)
	a.AppliedAtRound = 2
	early := poisoned(t, "eff-z", 4)
	early.AppliedAtRound = 1

	require.NoError(t, tracker.Apply(b))
	require.NoError(t, tracker.Apply(a))
	require.NoError(t, tracker.Apply(early))

	active := tracker.Active("pc1")
	require.Len(t, active, 3)
	// Applied round ascending, then effect ID.
	assert.Equal(t, []string{"eff-z", "eff-a", "eff-b"}, []string{active[0].ID, active[1].ID, active[2].ID})
}

func TestRemoveUnknownEffect(t *testing.T) {
	tracker := NewEffectTracker()
	_, err := tracker.Remove("pc1", "nope")
	var nferr *NotFoundError
	require.ErrorAs(t, err, &nferr)
}

func TestDropClearsParticipant(t *testing.T) {
	tracker := NewEffectTracker()
	require.NoError(t, tracker.Apply(poisoned(t, "eff-1", 3)))
	require.NoError(t, tracker.Apply(poisoned(t, "eff-2", 3)))

	dropped := tracker.Drop("pc1")
	assert.Len(t, dropped, 2)
	assert.Empty(t, tracker.Active("pc1"))
}
