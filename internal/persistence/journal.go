package persistence

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/suderio/roundkeeper/internal/engine"
)

// EventWrapper facilitates serialization of polyphormic events
type EventWrapper struct {
	Type  engine.EventType `json:"type"`
	Event json.RawMessage  `json:"data"`
}

// Journal handles append-only storing of the combat event log.
type Journal struct {
	file *os.File
}

// NewJournal opens or creates the file at path for appending lines
func NewJournal(path string) (*Journal, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal file: %w", err)
	}
	return &Journal{file: file}, nil
}

// Append takes an Event interface and marshals it to the jsonl log.
func (j *Journal) Append(evt engine.Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	wrapper := EventWrapper{
		Type:  evt.Type(),
		Event: data,
	}

	wrapperData, err := json.Marshal(wrapper)
	if err != nil {
		return err
	}

	if _, err := j.file.Write(append(wrapperData, '\n')); err != nil {
		return err
	}
	return j.file.Sync()
}

// Load replays all jsonl strings and unpacks them to an Event slice.
func (j *Journal) Load() ([]engine.Event, error) {
	var events []engine.Event

	// Reset file pointer to beginning
	if _, err := j.file.Seek(0, 0); err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(j.file)
	for scanner.Scan() {
		var wrapper EventWrapper
		if err := json.Unmarshal(scanner.Bytes(), &wrapper); err != nil {
			return nil, fmt.Errorf("failed to decode wrapper: %w", err)
		}

		var evt engine.Event
		switch wrapper.Type {
		case engine.EventCombatStarted:
			evt = &engine.CombatStartedEvent{}
		case engine.EventTurnAdvanced:
			evt = &engine.TurnAdvancedEvent{}
		case engine.EventRoundAdvanced:
			evt = &engine.RoundAdvancedEvent{}
		case engine.EventTurnRewound:
			evt = &engine.TurnRewoundEvent{}
		case engine.EventEffectApplied:
			evt = &engine.EffectAppliedEvent{}
		case engine.EventEffectRemoved:
			evt = &engine.EffectRemovedEvent{}
		case engine.EventTriggerScheduled:
			evt = &engine.TriggerScheduledEvent{}
		case engine.EventTriggersResolved:
			evt = &engine.TriggersResolvedEvent{}
		case engine.EventParticipantRemoved:
			evt = &engine.ParticipantRemovedEvent{}
		case engine.EventCombatEnded:
			evt = &engine.CombatEndedEvent{}
		default:
			return nil, fmt.Errorf("unknown event type in log: %s", wrapper.Type)
		}

		if err := json.Unmarshal(wrapper.Event, evt); err != nil {
			return nil, fmt.Errorf("failed to parse event data into specific type: %w", err)
		}

		events = append(events, evt)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// Close handles safe shutdown.
func (j *Journal) Close() error {
	return j.file.Close()
}
