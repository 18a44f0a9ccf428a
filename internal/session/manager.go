package session

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/suderio/roundkeeper/internal/engine"
	"github.com/suderio/roundkeeper/internal/parser"
	"github.com/suderio/roundkeeper/internal/persistence"
	"github.com/suderio/roundkeeper/internal/roster"
	"github.com/suderio/roundkeeper/internal/rules"
)

// Manager coordinates the cohesive loop of taking commands, executing them
// against the combat session, journaling the resulting events, and
// checkpointing a snapshot after every mutation.
type Manager struct {
	name    string
	party   *roster.Roster
	combat  *engine.Session
	store   persistence.Store
	journal *persistence.Journal
	roll    func() int
}

// Option customizes a Manager.
type Option func(*Manager)

// WithRoll replaces the d20 used when the start command omits initiative
// scores. Tests inject a deterministic roll here.
func WithRoll(roll func() int) Option {
	return func(m *Manager) {
		m.roll = roll
	}
}

// NewManager bootstraps a session pipeline for a fresh encounter relying on
// injected persistence gateways. Either gateway may be nil; the manager then
// skips that side of persistence.
func NewManager(name string, party *roster.Roster, store persistence.Store, journal *persistence.Journal, opts ...Option) (*Manager, error) {
	reg, err := rules.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize rules registry: %w", err)
	}

	m := &Manager{
		name:    name,
		party:   party,
		store:   store,
		journal: journal,
		roll:    func() int { return rand.Intn(20) + 1 },
	}
	for _, opt := range opts {
		opt(m)
	}

	m.combat = engine.NewSession(engine.WithConditionEvaluator(rules.NewConditionEvaluator(reg)))
	return m, nil
}

// Resume rebuilds a Manager from the latest snapshot saved under name.
func Resume(ctx context.Context, name string, store persistence.Store, journal *persistence.Journal, opts ...Option) (*Manager, error) {
	snap, err := store.LoadSnapshot(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load encounter %s: %w", name, err)
	}

	reg, err := rules.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize rules registry: %w", err)
	}

	combat, err := engine.Restore(snap, engine.WithConditionEvaluator(rules.NewConditionEvaluator(reg)))
	if err != nil {
		return nil, fmt.Errorf("failed to restore encounter %s: %w", name, err)
	}

	m := &Manager{
		name:    name,
		combat:  combat,
		store:   store,
		journal: journal,
		roll:    func() int { return rand.Intn(20) + 1 },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Combat exposes the underlying session for read-only views.
func (m *Manager) Combat() *engine.Session {
	return m.combat
}

// Name returns the encounter name used as the persistence key.
func (m *Manager) Name() string {
	return m.name
}

// Execute takes a raw command string from a UI client, coordinates execution,
// persists the result, and returns the printable outcome.
func (m *Manager) Execute(ctx context.Context, input string) (string, error) {
	langParser := parser.Build()

	astCmd, err := langParser.ParseString("", input)
	if err != nil {
		return "", parser.MapError(input, err)
	}

	switch {
	case astCmd.Start != nil:
		return m.executeStart(ctx, astCmd.Start)

	case astCmd.Next != nil:
		evt, err := m.combat.NextTurn()
		if err != nil {
			return "", err
		}
		return m.persist(ctx, evt)

	case astCmd.Prev != nil:
		evt, err := m.combat.PreviousTurn()
		if err != nil {
			return "", err
		}
		return m.persist(ctx, evt)

	case astCmd.Effect != nil:
		return m.executeEffect(ctx, astCmd.Effect)

	case astCmd.Clear != nil:
		evt, err := m.combat.RemoveEffect(astCmd.Clear.On, astCmd.Clear.ID)
		if err != nil {
			return "", err
		}
		return m.persist(ctx, evt)

	case astCmd.Trigger != nil:
		return m.executeTrigger(ctx, astCmd.Trigger)

	case astCmd.Remove != nil:
		evt, err := m.combat.RemoveParticipant(astCmd.Remove.Who)
		if err != nil {
			return "", err
		}
		return m.persist(ctx, evt)

	case astCmd.Resolve != nil:
		evt, err := m.combat.ResolveTriggers()
		if err != nil {
			return "", err
		}
		return m.persist(ctx, evt)

	case astCmd.End != nil:
		evt, err := m.combat.EndCombat()
		if err != nil {
			return "", err
		}
		return m.persist(ctx, evt)

	case astCmd.Log != nil:
		entries := m.combat.History()
		if astCmd.Log.Last != nil {
			entries = lastRounds(entries, *astCmd.Log.Last)
		}
		return renderHistory(entries), nil

	case astCmd.Search != nil:
		query := ""
		if astCmd.Search.Query != nil {
			query = *astCmd.Search.Query
		}
		return renderHistory(m.combat.SearchHistory(query)), nil

	case astCmd.Summary != nil:
		return renderSummary(m.combat.Summarize()), nil

	case astCmd.Hint != nil:
		return parser.Hint(), nil
	}

	return "", parser.MapError(input, nil)
}

func (m *Manager) executeStart(ctx context.Context, cmd *parser.StartCmd) (string, error) {
	if m.party == nil {
		return "", fmt.Errorf("no roster loaded for encounter %s", m.name)
	}

	participants := m.party.ToParticipants()

	rolls := make(map[string]int, len(participants))
	for _, p := range participants {
		rolls[p.ID] = m.roll()
	}
	for _, r := range cmd.Rolls {
		if _, ok := rolls[r.Name]; !ok {
			return "", fmt.Errorf("roll for unknown roster member %s", r.Name)
		}
		rolls[r.Name] = r.Score
	}

	evt, err := m.combat.StartCombat(participants, rolls)
	if err != nil {
		return "", err
	}
	return m.persist(ctx, evt)
}

func (m *Manager) executeEffect(ctx context.Context, cmd *parser.EffectCmd) (string, error) {
	var dur engine.Duration
	if cmd.Permanent {
		dur = engine.Permanent()
	} else {
		var err error
		dur, err = engine.Rounds(*cmd.Rounds)
		if err != nil {
			return "", err
		}
	}

	evt, err := m.combat.ApplyEffect(cmd.On, engine.Effect{
		Name:      cmd.Name,
		Remaining: dur,
	})
	if err != nil {
		return "", err
	}
	return m.persist(ctx, evt)
}

func (m *Manager) executeTrigger(ctx context.Context, cmd *parser.TriggerCmd) (string, error) {
	t := engine.Trigger{
		Name:  cmd.Name,
		Round: cmd.Round,
	}
	if cmd.Every != nil {
		t.Recurring = true
		t.IntervalRounds = *cmd.Every
	}
	if cmd.When != nil {
		t.Condition = *cmd.When
	}

	evt, err := m.combat.ScheduleTrigger(t)
	if err != nil {
		return "", err
	}
	return m.persist(ctx, evt)
}

// persist journals the event and checkpoints a snapshot, then returns the
// event's printable message. Persistence failures surface to the caller; the
// in-memory session has already applied the command.
func (m *Manager) persist(ctx context.Context, evt engine.Event) (string, error) {
	if m.journal != nil {
		if err := m.journal.Append(evt); err != nil {
			return "", fmt.Errorf("failed to journal event: %w", err)
		}
	}
	if m.store != nil {
		if err := m.store.SaveSnapshot(ctx, m.name, m.combat.Snapshot()); err != nil {
			return "", fmt.Errorf("failed to checkpoint encounter: %w", err)
		}
	}
	return evt.Message(), nil
}

// lastRounds bounds the view to the final n distinct rounds of the log,
// mirroring the engine's bounded prefix view from the other end.
func lastRounds(entries []engine.HistoryEntry, n int) []engine.HistoryEntry {
	if n <= 0 {
		return nil
	}
	seen := 0
	lastRound := 0
	start := len(entries)
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Round != lastRound {
			if seen == n {
				break
			}
			seen++
			lastRound = entries[i].Round
		}
		start = i
	}
	return entries[start:]
}

func renderHistory(entries []engine.HistoryEntry) string {
	if len(entries) == 0 {
		return "The log is empty."
	}
	var sb strings.Builder
	for i, entry := range entries {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("Round %d:", entry.Round))
		for _, evt := range entry.Events {
			for _, line := range strings.Split(evt.Text, "\n") {
				sb.WriteString("\n  ")
				sb.WriteString(line)
			}
		}
	}
	return sb.String()
}

func renderSummary(sum engine.Summary) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Rounds fought: %d", sum.TotalRounds))
	sb.WriteString(fmt.Sprintf("\nActions logged: %d", sum.TotalActions))
	if sum.Duration > 0 {
		sb.WriteString(fmt.Sprintf("\nTime elapsed: %s", sum.Duration))
	}
	return sb.String()
}
