package engine

import (
	"sort"
)

// Effect is a timed status modifier attached to a participant.
type Effect struct {
	ID             string   `json:"id"`
	ParticipantID  string   `json:"participant_id"`
	Name           string   `json:"name"`
	Remaining      Duration `json:"remaining"`
	AppliedAtRound int      `json:"applied_at_round"`
}

// EffectTracker holds the active effects for every participant in a session.
type EffectTracker struct {
	byParticipant map[string][]Effect
}

// NewEffectTracker returns an empty tracker.
func NewEffectTracker() *EffectTracker {
	return &EffectTracker{byParticipant: make(map[string][]Effect)}
}

// Apply inserts an effect. A duplicate effect ID is rejected: refreshing a
// running effect in place would be indistinguishable from stacking, so
// callers must remove and reapply instead.
func (t *EffectTracker) Apply(e Effect) error {
	for _, existing := range t.byParticipant[e.ParticipantID] {
		if existing.ID == e.ID {
			return validationf("effect %s is already applied to %s", e.ID, e.ParticipantID)
		}
	}
	t.byParticipant[e.ParticipantID] = append(t.byParticipant[e.ParticipantID], e)
	return nil
}

// Remove drops an effect from a participant and returns it.
func (t *EffectTracker) Remove(participantID, effectID string) (Effect, error) {
	effects := t.byParticipant[participantID]
	for i, e := range effects {
		if e.ID == effectID {
			t.byParticipant[participantID] = append(effects[:i], effects[i+1:]...)
			return e, nil
		}
	}
	return Effect{}, &NotFoundError{Kind: "effect", ID: effectID}
}

// Tick counts down every non-permanent effect on a participant by one round.
// Effects reaching 0 are removed immediately and returned so the caller can
// record their expiry; an effect is never held at 0.
func (t *EffectTracker) Tick(participantID string) []Effect {
	effects := t.byParticipant[participantID]
	if len(effects) == 0 {
		return nil
	}

	var expired []Effect
	kept := effects[:0]
	for _, e := range effects {
		e.Remaining = e.Remaining.Decrement()
		if e.Remaining.Expired() {
			expired = append(expired, e)
			continue
		}
		kept = append(kept, e)
	}
	t.byParticipant[participantID] = kept
	return expired
}

// Drop removes every effect a participant still carries, for participants
// leaving combat.
func (t *EffectTracker) Drop(participantID string) []Effect {
	dropped := t.byParticipant[participantID]
	delete(t.byParticipant, participantID)
	return dropped
}

// Active returns a participant's effects ordered by applied round, then by
// effect ID, so repeated reads are deterministic.
func (t *EffectTracker) Active(participantID string) []Effect {
	effects := t.byParticipant[participantID]
	out := make([]Effect, len(effects))
	copy(out, effects)
	sortEffects(out)
	return out
}

// All returns every active effect across participants in deterministic
// order, for snapshots.
func (t *EffectTracker) All() []Effect {
	var out []Effect
	for _, effects := range t.byParticipant {
		out = append(out, effects...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ParticipantID != out[j].ParticipantID {
			return out[i].ParticipantID < out[j].ParticipantID
		}
		if out[i].AppliedAtRound != out[j].AppliedAtRound {
			return out[i].AppliedAtRound < out[j].AppliedAtRound
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func sortEffects(effects []Effect) {
	sort.SliceStable(effects, func(i, j int) bool {
		if effects[i].AppliedAtRound != effects[j].AppliedAtRound {
			return effects[i].AppliedAtRound < effects[j].AppliedAtRound
		}
		return effects[i].ID < effects[j].ID
	})
}
