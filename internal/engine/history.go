package engine

import (
	"strings"
	"time"
)

// HistoryEvent is one recorded line of combat history. The timestamp is
// optional and fixed at append time.
type HistoryEvent struct {
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp,omitzero"`
}

// HistoryEntry collects the events recorded during one round.
type HistoryEntry struct {
	Round  int            `json:"round"`
	Events []HistoryEvent `json:"events"`
}

// Summary aggregates the whole log. Duration is zero unless wall-clock
// timestamps were recorded on events.
type Summary struct {
	TotalRounds  int           `json:"total_rounds"`
	TotalActions int           `json:"total_actions"`
	Duration     time.Duration `json:"duration,omitzero"`
}

// HistoryLog is the append-only journal of a combat session. Entries are
// never removed or reordered, and rounds are monotonically non-decreasing in
// append order.
type HistoryLog struct {
	entries []HistoryEntry
	clock   func() time.Time
}

// NewHistoryLog returns an empty log stamping events with the given clock.
// A nil clock records no timestamps.
func NewHistoryLog(clock func() time.Time) *HistoryLog {
	return &HistoryLog{clock: clock}
}

// RestoreHistoryLog rebuilds a log from persisted entries, replaying them
// verbatim without the ordering check.
func RestoreHistoryLog(entries []HistoryEntry, clock func() time.Time) *HistoryLog {
	copied := make([]HistoryEntry, len(entries))
	for i, e := range entries {
		events := make([]HistoryEvent, len(e.Events))
		copy(events, e.Events)
		copied[i] = HistoryEntry{Round: e.Round, Events: events}
	}
	return &HistoryLog{entries: copied, clock: clock}
}

// Append records an event for a round, creating the round entry if absent.
// Appending below the highest recorded round breaks the journal's ordering
// guarantee and is rejected.
func (l *HistoryLog) Append(round int, text string) error {
	if round < 1 {
		return validationf("history round must be at least 1, got %d", round)
	}
	if last := l.lastRound(); round < last {
		return validationf("history entry for round %d would precede round %d", round, last)
	}

	evt := HistoryEvent{Text: text}
	if l.clock != nil {
		evt.Timestamp = l.clock().UTC()
	}

	if n := len(l.entries); n > 0 && l.entries[n-1].Round == round {
		l.entries[n-1].Events = append(l.entries[n-1].Events, evt)
		return nil
	}
	l.entries = append(l.entries, HistoryEntry{Round: round, Events: []HistoryEvent{evt}})
	return nil
}

// Search returns the entries whose events match the query, case-insensitive
// substring over event text. An empty query returns the full log in order.
// The scan is plain substring matching: the log is user-searchable, and a
// hostile query must still resolve in linear time.
func (l *HistoryLog) Search(query string) []HistoryEntry {
	if query == "" {
		return l.Entries()
	}

	needle := strings.ToLower(query)
	var out []HistoryEntry
	for _, entry := range l.entries {
		var matched []HistoryEvent
		for _, evt := range entry.Events {
			if strings.Contains(strings.ToLower(evt.Text), needle) {
				matched = append(matched, evt)
			}
		}
		if len(matched) > 0 {
			out = append(out, HistoryEntry{Round: entry.Round, Events: matched})
		}
	}
	return out
}

// Virtualize returns a read-only view bounded to the first maxVisibleRounds
// distinct rounds. The underlying log is never truncated.
func (l *HistoryLog) Virtualize(maxVisibleRounds int) []HistoryEntry {
	if maxVisibleRounds <= 0 {
		return nil
	}

	var out []HistoryEntry
	seen := 0
	lastRound := 0
	for _, entry := range l.entries {
		if entry.Round != lastRound {
			if seen == maxVisibleRounds {
				break
			}
			seen++
			lastRound = entry.Round
		}
		out = append(out, copyEntry(entry))
	}
	return out
}

// Summarize folds the whole log into aggregate statistics.
func (l *HistoryLog) Summarize() Summary {
	s := Summary{}
	var first, last time.Time
	rounds := make(map[int]struct{})
	for _, entry := range l.entries {
		rounds[entry.Round] = struct{}{}
		s.TotalActions += len(entry.Events)
		for _, evt := range entry.Events {
			if evt.Timestamp.IsZero() {
				continue
			}
			if first.IsZero() || evt.Timestamp.Before(first) {
				first = evt.Timestamp
			}
			if evt.Timestamp.After(last) {
				last = evt.Timestamp
			}
		}
	}
	s.TotalRounds = len(rounds)
	if !first.IsZero() {
		s.Duration = last.Sub(first)
	}
	return s
}

// Entries returns a copy of the full log in append order.
func (l *HistoryLog) Entries() []HistoryEntry {
	out := make([]HistoryEntry, len(l.entries))
	for i, entry := range l.entries {
		out[i] = copyEntry(entry)
	}
	return out
}

func (l *HistoryLog) lastRound() int {
	if len(l.entries) == 0 {
		return 0
	}
	return l.entries[len(l.entries)-1].Round
}

func copyEntry(entry HistoryEntry) HistoryEntry {
	events := make([]HistoryEvent, len(entry.Events))
	copy(events, entry.Events)
	return HistoryEntry{Round: entry.Round, Events: events}
}
