package engine

import (
	"errors"
	"fmt"
)

// ErrAtCombatStart alerts the caller that a retreat was requested at round 1,
// turn 1, where there is nothing to rewind. The request is a reported no-op.
var ErrAtCombatStart = errors.New("already at round 1, turn 1")

// ValidationError indicates malformed or contradictory input: empty or
// duplicate participants, unknown IDs, duplicate effect IDs.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s", e.Reason)
}

// InvalidStateError indicates a command issued against the wrong session
// state. Required names the state the command needs.
type InvalidStateError struct {
	Command  string
	Current  State
	Required State
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s requires session state %s, session is %s", e.Command, e.Required, e.Current)
}

// NotFoundError indicates a reference to a participant, effect, or trigger
// that is no longer present.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}
