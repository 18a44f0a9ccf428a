package engine

// Trigger is a scheduled event keyed to a round number. One-shot triggers
// fire once and deactivate; recurring triggers re-arm themselves by their
// interval. A trigger may carry a condition expression that must evaluate
// true in the session context for the trigger to fire.
type Trigger struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Round          int    `json:"round"`
	IsActive       bool   `json:"is_active"`
	Recurring      bool   `json:"recurring"`
	IntervalRounds int    `json:"interval_rounds,omitempty"`
	Condition      string `json:"condition,omitempty"`
}

// TriggerContext is the session snapshot a condition expression is evaluated
// against.
type TriggerContext struct {
	Round        int
	Turn         int
	Actor        Participant
	ActorEffects []Effect
	Participants []Participant
}

// ConditionFunc evaluates a trigger condition expression against the current
// session context.
type ConditionFunc func(expr string, ctx TriggerContext) (bool, error)

// TriggerScheduler owns the round-keyed trigger set. Resolution is
// idempotent per round through the lastResolved watermark, which lives on
// the scheduler rather than on individual triggers.
type TriggerScheduler struct {
	triggers     []Trigger
	lastResolved int
}

// NewTriggerScheduler returns an empty scheduler.
func NewTriggerScheduler() *TriggerScheduler {
	return &TriggerScheduler{}
}

// RestoreTriggerScheduler rebuilds a scheduler from persisted triggers and
// the persisted resolution watermark.
func RestoreTriggerScheduler(triggers []Trigger, lastResolved int) *TriggerScheduler {
	copied := make([]Trigger, len(triggers))
	copy(copied, triggers)
	return &TriggerScheduler{triggers: copied, lastResolved: lastResolved}
}

// Schedule registers a trigger. Round numbers start at 1 and recurring
// triggers need a positive interval.
func (s *TriggerScheduler) Schedule(t Trigger) error {
	if t.Round < 1 {
		return validationf("trigger round must be at least 1, got %d", t.Round)
	}
	if t.Recurring && t.IntervalRounds < 1 {
		return validationf("recurring trigger %s needs a positive interval", t.Name)
	}
	for _, existing := range s.triggers {
		if existing.ID == t.ID {
			return validationf("trigger %s is already scheduled", t.ID)
		}
	}
	s.triggers = append(s.triggers, t)
	return nil
}

// Remove unschedules a trigger.
func (s *TriggerScheduler) Remove(triggerID string) (Trigger, error) {
	for i, t := range s.triggers {
		if t.ID == triggerID {
			s.triggers = append(s.triggers[:i], s.triggers[i+1:]...)
			return t, nil
		}
	}
	return Trigger{}, &NotFoundError{Kind: "trigger", ID: triggerID}
}

// Resolve fires every active trigger due at the given round. Calling Resolve
// again without an intervening round change fires nothing. A condition gates
// only the firing, never the schedule: a due trigger is consumed either way,
// so a recurring trigger whose condition came up false (or that has no
// evaluator) still re-arms to round+interval, and a one-shot that missed its
// condition deactivates with its window. An evaluation error aborts
// resolution before any trigger state changes.
func (s *TriggerScheduler) Resolve(round int, ctx TriggerContext, eval ConditionFunc) ([]Trigger, error) {
	if round <= s.lastResolved {
		return nil, nil
	}

	type resolution struct {
		idx  int
		fire bool
	}
	due := make([]resolution, 0, len(s.triggers))
	for i, t := range s.triggers {
		if !t.IsActive || t.Round != round {
			continue
		}
		fire := true
		if t.Condition != "" {
			if eval == nil {
				fire = false
			} else {
				ok, err := eval(t.Condition, ctx)
				if err != nil {
					return nil, validationf("trigger %s condition: %v", t.Name, err)
				}
				fire = ok
			}
		}
		due = append(due, resolution{idx: i, fire: fire})
	}

	fired := make([]Trigger, 0, len(due))
	for _, d := range due {
		if d.fire {
			fired = append(fired, s.triggers[d.idx])
		}
		if s.triggers[d.idx].Recurring {
			s.triggers[d.idx].Round += s.triggers[d.idx].IntervalRounds
		} else {
			s.triggers[d.idx].IsActive = false
		}
	}
	s.lastResolved = round
	return fired, nil
}

// LastResolved returns the resolution watermark for snapshots.
func (s *TriggerScheduler) LastResolved() int {
	return s.lastResolved
}

// Triggers returns a copy of the scheduled triggers in registration order.
func (s *TriggerScheduler) Triggers() []Trigger {
	out := make([]Trigger, len(s.triggers))
	copy(out, s.triggers)
	return out
}
