package engine

import (
	"fmt"
	"strings"
)

type EventType string

const (
	EventCombatStarted      EventType = "CombatStarted"
	EventTurnAdvanced       EventType = "TurnAdvanced"
	EventRoundAdvanced      EventType = "RoundAdvanced"
	EventTurnRewound        EventType = "TurnRewound"
	EventEffectApplied      EventType = "EffectApplied"
	EventEffectRemoved      EventType = "EffectRemoved"
	EventTriggerScheduled   EventType = "TriggerScheduled"
	EventTriggersResolved   EventType = "TriggersResolved"
	EventParticipantRemoved EventType = "ParticipantRemoved"
	EventCombatEnded        EventType = "CombatEnded"
)

// Event is the typed result of a state-changing session command. Message
// renders the line the session appends to the round history, so the journal
// and the caller always agree on what happened.
type Event interface {
	Type() EventType
	Message() string
}

// CombatStartedEvent opens a session with a resolved initiative order.
type CombatStartedEvent struct {
	Order []InitiativeEntry
}

func (e *CombatStartedEvent) Type() EventType { return EventCombatStarted }
func (e *CombatStartedEvent) Message() string {
	names := make([]string, len(e.Order))
	for i, entry := range e.Order {
		names[i] = fmt.Sprintf("%s (%d)", entry.ParticipantID, entry.Initiative)
	}
	return fmt.Sprintf("Combat started. Initiative: %s", strings.Join(names, ", "))
}

// TurnAdvancedEvent moves the active turn within the same round.
type TurnAdvancedEvent struct {
	ParticipantID string
	Round         int
	Turn          int
}

func (e *TurnAdvancedEvent) Type() EventType { return EventTurnAdvanced }
func (e *TurnAdvancedEvent) Message() string {
	return fmt.Sprintf("%s begins its turn.", e.ParticipantID)
}

// RoundAdvancedEvent records a round boundary. Its message lists the
// transition, expired effects, and fired triggers in that fixed order so
// downstream consumers get a deterministic textual diff per round.
type RoundAdvancedEvent struct {
	Round         int
	ParticipantID string
	Expired       []Effect
	Fired         []Trigger
}

func (e *RoundAdvancedEvent) Type() EventType { return EventRoundAdvanced }
func (e *RoundAdvancedEvent) Message() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Round %d begins. %s acts first.", e.Round, e.ParticipantID))
	for _, eff := range e.Expired {
		sb.WriteString(fmt.Sprintf("\n├─ %s expired on %s.", eff.Name, eff.ParticipantID))
	}
	for _, t := range e.Fired {
		sb.WriteString(fmt.Sprintf("\n├─ Trigger fired: %s.", t.Name))
	}
	return sb.String()
}

// TurnRewoundEvent steps the active turn backwards. Rewinding is a display
// correction: effect durations and trigger resolutions are not reversed.
type TurnRewoundEvent struct {
	ParticipantID string
	Round         int
	Turn          int
}

func (e *TurnRewoundEvent) Type() EventType { return EventTurnRewound }
func (e *TurnRewoundEvent) Message() string {
	return fmt.Sprintf("Rewound to round %d. %s is active again.", e.Round, e.ParticipantID)
}

// EffectAppliedEvent attaches a status effect to a participant.
type EffectAppliedEvent struct {
	Effect Effect
}

func (e *EffectAppliedEvent) Type() EventType { return EventEffectApplied }
func (e *EffectAppliedEvent) Message() string {
	if e.Effect.Remaining.IsPermanent() {
		return fmt.Sprintf("%s is now %s (permanent).", e.Effect.ParticipantID, e.Effect.Name)
	}
	return fmt.Sprintf("%s is now %s (%s rounds).", e.Effect.ParticipantID, e.Effect.Name, e.Effect.Remaining)
}

// EffectRemovedEvent detaches a status effect before it expires.
type EffectRemovedEvent struct {
	Effect Effect
}

func (e *EffectRemovedEvent) Type() EventType { return EventEffectRemoved }
func (e *EffectRemovedEvent) Message() string {
	return fmt.Sprintf("%s is no longer %s.", e.Effect.ParticipantID, e.Effect.Name)
}

// TriggerScheduledEvent registers a round-keyed trigger.
type TriggerScheduledEvent struct {
	Trigger Trigger
}

func (e *TriggerScheduledEvent) Type() EventType { return EventTriggerScheduled }
func (e *TriggerScheduledEvent) Message() string {
	if e.Trigger.Recurring {
		return fmt.Sprintf("Trigger %s scheduled for round %d, every %d rounds.", e.Trigger.Name, e.Trigger.Round, e.Trigger.IntervalRounds)
	}
	return fmt.Sprintf("Trigger %s scheduled for round %d.", e.Trigger.Name, e.Trigger.Round)
}

// TriggersResolvedEvent fires the triggers due in the current round.
type TriggersResolvedEvent struct {
	Round int
	Fired []Trigger
}

func (e *TriggersResolvedEvent) Type() EventType { return EventTriggersResolved }
func (e *TriggersResolvedEvent) Message() string {
	if len(e.Fired) == 0 {
		return fmt.Sprintf("No triggers fired in round %d.", e.Round)
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Round %d triggers:", e.Round))
	for _, t := range e.Fired {
		sb.WriteString(fmt.Sprintf("\n├─ %s fired.", t.Name))
	}
	return sb.String()
}

// ParticipantRemovedEvent drops a combatant mid-fight. Effects the
// participant had not finished ticking this round expire with it.
type ParticipantRemovedEvent struct {
	ParticipantID string
	Expired       []Effect
	OrderEmpty    bool
}

func (e *ParticipantRemovedEvent) Type() EventType { return EventParticipantRemoved }
func (e *ParticipantRemovedEvent) Message() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s leaves combat.", e.ParticipantID))
	for _, eff := range e.Expired {
		sb.WriteString(fmt.Sprintf("\n├─ %s expired on %s.", eff.Name, eff.ParticipantID))
	}
	if e.OrderEmpty {
		sb.WriteString("\n├─ No participants remain; combat must end.")
	}
	return sb.String()
}

// CombatEndedEvent closes the session. History survives for summaries.
type CombatEndedEvent struct {
	Rounds int
}

func (e *CombatEndedEvent) Type() EventType { return EventCombatEnded }
func (e *CombatEndedEvent) Message() string {
	return fmt.Sprintf("Combat ended after %d rounds.", e.Rounds)
}
