package engine

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNoParticipants blocks turn advancement once the initiative order has
// been emptied by removals. The only legal command left is EndCombat.
var ErrNoParticipants = errors.New("no participants remain in the initiative order; combat must end")

// State is the session lifecycle position.
type State int

const (
	StateNotStarted State = iota
	StateActive
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateActive:
		return "active"
	case StateEnded:
		return "ended"
	}
	return "unknown"
}

// Session is the combat-round state machine. Every public command completes
// synchronously and atomically; mutating commands serialize on the session
// lock while derived views share read access. The session holds no durable
// storage: the caller snapshots after each command.
type Session struct {
	mu sync.RWMutex

	state        State
	halted       bool
	currentRound int
	lastTicked   int
	participants []Participant
	order        *Order
	effects      *EffectTracker
	scheduler    *TriggerScheduler
	history      *HistoryLog

	clock    func() time.Time
	newID    func() string
	condEval ConditionFunc
}

// Option configures a Session.
type Option func(*Session)

// WithClock overrides the wall clock used to stamp history events.
func WithClock(clock func() time.Time) Option {
	return func(s *Session) { s.clock = clock }
}

// WithoutTimestamps disables wall-clock stamps on history events; summaries
// then report no duration.
func WithoutTimestamps() Option {
	return func(s *Session) { s.clock = nil }
}

// WithIDGenerator overrides the generator used when effects or triggers are
// scheduled without an ID.
func WithIDGenerator(newID func() string) Option {
	return func(s *Session) { s.newID = newID }
}

// WithConditionEvaluator wires the evaluator for conditional triggers.
func WithConditionEvaluator(eval ConditionFunc) Option {
	return func(s *Session) { s.condEval = eval }
}

// NewSession returns a session in the NotStarted state.
func NewSession(opts ...Option) *Session {
	s := &Session{
		state: StateNotStarted,
		clock: time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.effects = NewEffectTracker()
	s.scheduler = NewTriggerScheduler()
	s.history = NewHistoryLog(s.clock)
	return s
}

// StartCombat transitions NotStarted to Active: builds the initiative order
// from the participants and their rolls, seeds round 1, and records the
// opening history entry.
func (s *Session) StartCombat(participants []Participant, rolls map[string]int) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateNotStarted {
		return nil, &InvalidStateError{Command: "startCombat", Current: s.state, Required: StateNotStarted}
	}
	for _, p := range participants {
		if p.ID == "" {
			return nil, validationf("participant with empty id")
		}
	}

	order, err := BuildOrder(participants, rolls)
	if err != nil {
		return nil, err
	}

	s.participants = make([]Participant, len(participants))
	copy(s.participants, participants)
	s.order = order
	s.currentRound = 1
	s.state = StateActive

	evt := &CombatStartedEvent{Order: order.Entries()}
	s.mustAppend(s.currentRound, evt.Message())
	return evt, nil
}

// NextTurn advances the active turn. On wrap it owns the round boundary:
// increments the round, ticks every participant's effects once, resolves
// triggers for the new round, and records a single deterministic history
// entry covering the transition, expirations, and firings in that order.
func (s *Session) NextTurn() (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireActive("nextTurn"); err != nil {
		return nil, err
	}

	wrapped := s.order.Advance()
	active, turn := s.order.Active()

	if !wrapped {
		evt := &TurnAdvancedEvent{ParticipantID: active.ParticipantID, Round: s.currentRound, Turn: turn}
		s.mustAppend(s.logRound(), evt.Message())
		return evt, nil
	}

	s.currentRound++
	s.order.ResetActed()

	// A boundary crossed once is spent: re-advancing over a rewound round
	// must not count durations down a second time. The same watermark
	// discipline the trigger scheduler uses applies here.
	var expired []Effect
	if s.currentRound > s.lastTicked {
		for _, entry := range s.order.Entries() {
			expired = append(expired, s.effects.Tick(entry.ParticipantID)...)
		}
		s.lastTicked = s.currentRound
	}

	fired, err := s.scheduler.Resolve(s.currentRound, s.triggerContext(), s.condEval)
	if err != nil {
		return nil, err
	}

	evt := &RoundAdvancedEvent{
		Round:         s.currentRound,
		ParticipantID: active.ParticipantID,
		Expired:       expired,
		Fired:         fired,
	}
	// Advancing over rewound ground may still sit below the journal's last
	// round; the append round follows the same monotone rule as rewinds.
	s.mustAppend(s.logRound(), evt.Message())
	return evt, nil
}

// PreviousTurn steps the active turn backwards as a display correction.
// It never re-ticks effect durations and never re-resolves triggers: the
// forward pass already spent those, and rewinding them here would
// double-count when the turn advances again. Retreating from round 1,
// turn 1 is reported with ErrAtCombatStart instead of being clamped.
func (s *Session) PreviousTurn() (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireActive("previousTurn"); err != nil {
		return nil, err
	}

	if _, idx := s.order.Active(); s.currentRound == 1 && idx == 0 {
		return nil, ErrAtCombatStart
	}

	if regressed := s.order.Retreat(); regressed {
		s.currentRound--
	}

	active, turn := s.order.Active()
	evt := &TurnRewoundEvent{ParticipantID: active.ParticipantID, Round: s.currentRound, Turn: turn}
	// The journal stays monotone: a rewind is recorded at the highest round
	// already logged, not at the round rewound to.
	s.mustAppend(s.logRound(), evt.Message())
	return evt, nil
}

// ApplyEffect attaches an effect to a known participant. An empty effect ID
// is generated; an empty applied-round defaults to the current round.
func (s *Session) ApplyEffect(participantID string, effect Effect) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireActive("applyEffect"); err != nil {
		return nil, err
	}
	if !s.inOrder(participantID) {
		return nil, validationf("unknown participant %s", participantID)
	}

	effect.ParticipantID = participantID
	if effect.ID == "" {
		effect.ID = s.newID()
	}
	if effect.AppliedAtRound == 0 {
		effect.AppliedAtRound = s.currentRound
	}
	if effect.Remaining.Expired() {
		return nil, validationf("effect %s would expire immediately", effect.Name)
	}

	if err := s.effects.Apply(effect); err != nil {
		return nil, err
	}

	evt := &EffectAppliedEvent{Effect: effect}
	s.mustAppend(s.logRound(), evt.Message())
	return evt, nil
}

// RemoveEffect detaches an effect before its duration runs out.
func (s *Session) RemoveEffect(participantID, effectID string) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireActive("removeEffect"); err != nil {
		return nil, err
	}

	effect, err := s.effects.Remove(participantID, effectID)
	if err != nil {
		return nil, err
	}

	evt := &EffectRemovedEvent{Effect: effect}
	s.mustAppend(s.logRound(), evt.Message())
	return evt, nil
}

// RemoveParticipant drops a combatant from the initiative order. If the
// participant had not yet completed the current round its effects are ticked
// at removal, so durations stay consistent with elapsed rounds. Emptying the
// order halts the session until the caller ends combat.
func (s *Session) RemoveParticipant(participantID string) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireActive("removeParticipant"); err != nil {
		return nil, err
	}

	removed, empty, err := s.order.Remove(participantID)
	if err != nil {
		return nil, err
	}

	var expired []Effect
	if !removed.HasActed {
		expired = s.effects.Tick(participantID)
	}
	s.effects.Drop(participantID)

	if empty {
		s.halted = true
	}

	evt := &ParticipantRemovedEvent{ParticipantID: participantID, Expired: expired, OrderEmpty: empty}
	s.mustAppend(s.logRound(), evt.Message())
	return evt, nil
}

// ScheduleTrigger registers a round-keyed trigger. Fresh triggers are armed;
// an empty ID is generated.
func (s *Session) ScheduleTrigger(t Trigger) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireActive("scheduleTrigger"); err != nil {
		return nil, err
	}
	if t.Condition != "" && s.condEval == nil {
		return nil, validationf("trigger %s has a condition but no evaluator is configured", t.Name)
	}

	if t.ID == "" {
		t.ID = s.newID()
	}
	t.IsActive = true

	if err := s.scheduler.Schedule(t); err != nil {
		return nil, err
	}

	evt := &TriggerScheduledEvent{Trigger: t}
	s.mustAppend(s.logRound(), evt.Message())
	return evt, nil
}

// ResolveTriggers fires the triggers due in the current round. Resolution is
// idempotent per round; a second call without an intervening round change
// fires nothing and records nothing.
func (s *Session) ResolveTriggers() (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireActive("resolveTriggers"); err != nil {
		return nil, err
	}

	fired, err := s.scheduler.Resolve(s.currentRound, s.triggerContext(), s.condEval)
	if err != nil {
		return nil, err
	}

	evt := &TriggersResolvedEvent{Round: s.currentRound, Fired: fired}
	if len(fired) > 0 {
		s.mustAppend(s.logRound(), evt.Message())
	}
	return evt, nil
}

// EndCombat transitions Active to Ended. The history survives for summaries
// and export; every further mutating command fails with InvalidStateError.
func (s *Session) EndCombat() (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return nil, &InvalidStateError{Command: "endCombat", Current: s.state, Required: StateActive}
	}

	evt := &CombatEndedEvent{Rounds: s.currentRound}
	s.mustAppend(s.logRound(), evt.Message())
	if s.order != nil {
		s.order.Deactivate()
	}
	s.state = StateEnded
	return evt, nil
}

// State returns the lifecycle position.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Halted reports whether removals emptied the initiative order.
func (s *Session) Halted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.halted
}

// CurrentRound returns the round counter; 0 before combat starts.
func (s *Session) CurrentRound() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentRound
}

// ActiveParticipant returns the participant whose turn it is.
func (s *Session) ActiveParticipant() (Participant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state != StateActive || s.halted {
		return Participant{}, false
	}
	entry, _ := s.order.Active()
	p, ok := s.participant(entry.ParticipantID)
	return p, ok
}

// InitiativeOrder returns a copy of the turn order.
func (s *Session) InitiativeOrder() []InitiativeEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.order == nil {
		return nil
	}
	return s.order.Entries()
}

// Participants returns the session's participant references.
func (s *Session) Participants() []Participant {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Participant, len(s.participants))
	copy(out, s.participants)
	return out
}

// ActiveEffects returns a consistent snapshot of a participant's effects.
func (s *Session) ActiveEffects(participantID string) []Effect {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.effects.Active(participantID)
}

// Triggers returns a copy of the scheduled triggers.
func (s *Session) Triggers() []Trigger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scheduler.Triggers()
}

// History returns the full round journal in append order.
func (s *Session) History() []HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.Entries()
}

// SearchHistory filters the journal by case-insensitive substring.
func (s *Session) SearchHistory(query string) []HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.Search(query)
}

// VirtualizeHistory returns a bounded view of the journal for display.
func (s *Session) VirtualizeHistory(maxVisibleRounds int) []HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.Virtualize(maxVisibleRounds)
}

// Summarize folds the journal into aggregate statistics. After EndCombat the
// output is frozen.
func (s *Session) Summarize() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.Summarize()
}

func (s *Session) requireActive(command string) error {
	if s.state != StateActive {
		return &InvalidStateError{Command: command, Current: s.state, Required: StateActive}
	}
	if s.halted && command != "endCombat" {
		return ErrNoParticipants
	}
	return nil
}

func (s *Session) inOrder(participantID string) bool {
	for _, e := range s.order.Entries() {
		if e.ParticipantID == participantID {
			return true
		}
	}
	return false
}

func (s *Session) participant(id string) (Participant, bool) {
	for _, p := range s.participants {
		if p.ID == id {
			return p, true
		}
	}
	return Participant{}, false
}

// logRound is the round history appends land on: the current round, or the
// highest round already journaled when a rewind pulled the counter back.
func (s *Session) logRound() int {
	if last := s.history.lastRound(); last > s.currentRound {
		return last
	}
	return s.currentRound
}

func (s *Session) triggerContext() TriggerContext {
	ctx := TriggerContext{Round: s.currentRound}
	if s.order != nil && s.order.Len() > 0 && !s.halted {
		entry, idx := s.order.Active()
		ctx.Turn = idx
		if p, ok := s.participant(entry.ParticipantID); ok {
			ctx.Actor = p
		}
		ctx.ActorEffects = s.effects.Active(entry.ParticipantID)
	}
	ctx.Participants = make([]Participant, len(s.participants))
	copy(ctx.Participants, s.participants)
	return ctx
}

// mustAppend journals a command's message. Append can only fail on rounds
// the session never produces, so a failure here is a programming error.
func (s *Session) mustAppend(round int, text string) {
	if err := s.history.Append(round, text); err != nil {
		panic(err)
	}
}
