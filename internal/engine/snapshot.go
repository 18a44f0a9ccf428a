package engine

// Snapshot is the full serialized session state handed to the persistence
// gateway after every command. Reloading a snapshot reconstructs the exact
// initiative tie-break result and history order from persisted data alone:
// initiative entries are stored already ordered, and the trigger watermark
// keeps resolution idempotent across a reload.
type Snapshot struct {
	IsActive          bool              `json:"is_active"`
	Ended             bool              `json:"ended"`
	Halted            bool              `json:"halted,omitempty"`
	CurrentRound      int               `json:"current_round"`
	CurrentTurn       int               `json:"current_turn"`
	InitiativeOrder   []InitiativeEntry `json:"initiative_order"`
	Participants      []Participant     `json:"participants"`
	Effects           []Effect          `json:"effects"`
	Triggers          []Trigger         `json:"triggers"`
	LastResolvedRound int               `json:"last_resolved_round"`
	LastTickedRound   int               `json:"last_ticked_round"`
	History           []HistoryEntry    `json:"history"`
}

// Snapshot captures the session under the read lock, so it never observes a
// half-applied command.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		IsActive:          s.state == StateActive,
		Ended:             s.state == StateEnded,
		Halted:            s.halted,
		CurrentRound:      s.currentRound,
		LastResolvedRound: s.scheduler.LastResolved(),
		LastTickedRound:   s.lastTicked,
		Effects:           s.effects.All(),
		Triggers:          s.scheduler.Triggers(),
		History:           s.history.Entries(),
	}

	snap.Participants = make([]Participant, len(s.participants))
	copy(snap.Participants, s.participants)

	if s.order != nil {
		snap.InitiativeOrder = s.order.Entries()
		if s.order.Len() > 0 {
			_, snap.CurrentTurn = s.order.Active()
		}
	}
	return snap
}

// Restore rebuilds a session from a snapshot. History entries are replayed
// verbatim as a backfill; they bypass the append-ordering check but keep
// their persisted order.
func Restore(snap Snapshot, opts ...Option) (*Session, error) {
	if snap.IsActive && snap.Ended {
		return nil, validationf("snapshot cannot be both active and ended")
	}

	s := NewSession(opts...)
	s.history = RestoreHistoryLog(snap.History, s.clock)
	s.scheduler = RestoreTriggerScheduler(snap.Triggers, snap.LastResolvedRound)
	s.halted = snap.Halted
	s.currentRound = snap.CurrentRound
	s.lastTicked = snap.LastTickedRound

	s.participants = make([]Participant, len(snap.Participants))
	copy(s.participants, snap.Participants)

	switch {
	case snap.IsActive:
		s.state = StateActive
	case snap.Ended:
		s.state = StateEnded
	default:
		return s, nil
	}

	switch {
	case snap.IsActive && len(snap.InitiativeOrder) > 0:
		order, err := RestoreOrder(snap.InitiativeOrder)
		if err != nil {
			return nil, err
		}
		s.order = order
	case snap.IsActive && !snap.Halted:
		return nil, validationf("active snapshot has no initiative order")
	case snap.Ended && len(snap.InitiativeOrder) > 0:
		// Ended sessions keep their final order for display; no entry is
		// active anymore, so the rebuild skips the active-pointer check.
		entries := make([]InitiativeEntry, len(snap.InitiativeOrder))
		copy(entries, snap.InitiativeOrder)
		s.order = &Order{entries: entries}
	}

	for _, e := range snap.Effects {
		if e.Remaining.Expired() {
			return nil, validationf("snapshot holds expired effect %s", e.ID)
		}
		if err := s.effects.Apply(e); err != nil {
			return nil, err
		}
	}
	return s, nil
}
