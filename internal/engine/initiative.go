package engine

import (
	"sort"
)

// InitiativeEntry is one participant's slot in the turn order.
type InitiativeEntry struct {
	ParticipantID string `json:"participant_id"`
	Initiative    int    `json:"initiative"`
	IsActive      bool   `json:"is_active"`
	HasActed      bool   `json:"has_acted"`
}

// Order holds the initiative sequence and the active turn pointer. Entries
// are kept sorted by initiative descending, ties broken by registration
// order, so the same participants and rolls always produce the same order.
type Order struct {
	entries []InitiativeEntry
	active  int
}

// BuildOrder constructs the turn order for the given participants. Rolls maps
// participant IDs to initiative scores; missing rolls default to 0. The
// participants slice fixes the tie-break sequence: first registered wins.
func BuildOrder(participants []Participant, rolls map[string]int) (*Order, error) {
	if len(participants) == 0 {
		return nil, validationf("initiative order requires at least one participant")
	}

	seen := make(map[string]struct{}, len(participants))
	entries := make([]InitiativeEntry, 0, len(participants))
	for _, p := range participants {
		if _, dup := seen[p.ID]; dup {
			return nil, validationf("duplicate participant id %s", p.ID)
		}
		seen[p.ID] = struct{}{}
		entries = append(entries, InitiativeEntry{
			ParticipantID: p.ID,
			Initiative:    rolls[p.ID],
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Initiative > entries[j].Initiative
	})

	entries[0].IsActive = true
	return &Order{entries: entries}, nil
}

// RestoreOrder rebuilds an order from persisted entries, trusting their
// stored sequence as the tie-break result.
func RestoreOrder(entries []InitiativeEntry) (*Order, error) {
	if len(entries) == 0 {
		return nil, validationf("initiative order requires at least one entry")
	}

	active := -1
	seen := make(map[string]struct{}, len(entries))
	for i, e := range entries {
		if _, dup := seen[e.ParticipantID]; dup {
			return nil, validationf("duplicate participant id %s", e.ParticipantID)
		}
		seen[e.ParticipantID] = struct{}{}
		if e.IsActive {
			if active != -1 {
				return nil, validationf("more than one active initiative entry")
			}
			active = i
		}
	}
	if active == -1 {
		return nil, validationf("no active initiative entry")
	}

	copied := make([]InitiativeEntry, len(entries))
	copy(copied, entries)
	return &Order{entries: copied, active: active}, nil
}

// Advance moves the active pointer to the next entry, marking the current
// one as having acted. It reports whether the pointer wrapped back to the
// top, which is the round boundary the caller owns.
func (o *Order) Advance() (wrapped bool) {
	o.entries[o.active].IsActive = false
	o.entries[o.active].HasActed = true

	o.active = (o.active + 1) % len(o.entries)
	o.entries[o.active].IsActive = true
	return o.active == 0
}

// Retreat is the inverse of Advance. It reports whether the pointer wrapped
// past the top, signalling a round regression to the caller. The caller is
// responsible for refusing a retreat below round 1.
func (o *Order) Retreat() (regressed bool) {
	o.entries[o.active].IsActive = false

	regressed = o.active == 0
	o.active = (o.active - 1 + len(o.entries)) % len(o.entries)
	if regressed {
		// Back in the previous round everyone before the restored turn has
		// acted again.
		for i := range o.entries {
			o.entries[i].HasActed = true
		}
	}
	o.entries[o.active].IsActive = true
	o.entries[o.active].HasActed = false
	return regressed
}

// Deactivate clears the active flag on every entry. While combat is
// inactive no entry may be marked active.
func (o *Order) Deactivate() {
	for i := range o.entries {
		o.entries[i].IsActive = false
	}
}

// ResetActed clears the acted flag on every entry at a round boundary.
func (o *Order) ResetActed() {
	for i := range o.entries {
		o.entries[i].HasActed = false
	}
}

// Remove drops a participant's entry. If the active entry is removed, the
// next entry in order becomes active without otherwise moving the pointer.
// The empty result tells the caller the session can no longer continue.
func (o *Order) Remove(participantID string) (removed InitiativeEntry, empty bool, err error) {
	idx := -1
	for i, e := range o.entries {
		if e.ParticipantID == participantID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return InitiativeEntry{}, false, &NotFoundError{Kind: "participant", ID: participantID}
	}

	removed = o.entries[idx]
	o.entries = append(o.entries[:idx], o.entries[idx+1:]...)
	if len(o.entries) == 0 {
		return removed, true, nil
	}

	switch {
	case idx < o.active:
		o.active--
	case idx == o.active:
		// Hand the turn to whatever now occupies the slot, wrapping if the
		// removed entry was last.
		if o.active >= len(o.entries) {
			o.active = 0
		}
		o.entries[o.active].IsActive = true
	}
	return removed, false, nil
}

// Active returns the active entry and its index.
func (o *Order) Active() (InitiativeEntry, int) {
	return o.entries[o.active], o.active
}

// Len returns the number of entries.
func (o *Order) Len() int {
	return len(o.entries)
}

// Entries returns a copy of the order for read-only inspection.
func (o *Order) Entries() []InitiativeEntry {
	out := make([]InitiativeEntry, len(o.entries))
	copy(out, o.entries)
	return out
}
