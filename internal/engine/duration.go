package engine

import (
	"encoding/json"
	"fmt"
	"strconv"
)

const permanentLiteral = "permanent"

// Duration counts the rounds an effect has left, or marks it permanent.
// The zero value is an expired duration.
type Duration struct {
	rounds    int
	permanent bool
}

// Permanent returns the absorbing duration that never decrements.
func Permanent() Duration {
	return Duration{permanent: true}
}

// Rounds builds a numeric duration. Negative counts are a caller bug and are
// rejected instead of being normalized silently.
func Rounds(n int) (Duration, error) {
	if n < 0 {
		return Duration{}, validationf("duration must not be negative, got %d", n)
	}
	return Duration{rounds: n}, nil
}

// Decrement counts down one round. Permanent durations absorb the call and
// numeric durations floor at 0.
func (d Duration) Decrement() Duration {
	if d.permanent || d.rounds == 0 {
		return d
	}
	return Duration{rounds: d.rounds - 1}
}

// Expired is true only for the numeric 0; permanent durations never expire.
func (d Duration) Expired() bool {
	return !d.permanent && d.rounds == 0
}

// IsPermanent reports whether the duration is the absorbing sentinel.
func (d Duration) IsPermanent() bool {
	return d.permanent
}

// Remaining returns the numeric round count; 0 for permanent durations.
func (d Duration) Remaining() int {
	if d.permanent {
		return 0
	}
	return d.rounds
}

func (d Duration) String() string {
	if d.permanent {
		return permanentLiteral
	}
	return strconv.Itoa(d.rounds)
}

// MarshalJSON writes the duration as the string "permanent" or a plain
// integer, so snapshots round-trip without a type tag.
func (d Duration) MarshalJSON() ([]byte, error) {
	if d.permanent {
		return json.Marshal(permanentLiteral)
	}
	return json.Marshal(d.rounds)
}

// UnmarshalJSON accepts either the "permanent" literal or an integer.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != permanentLiteral {
			return fmt.Errorf("unknown duration literal %q", s)
		}
		*d = Permanent()
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("duration must be %q or an integer: %w", permanentLiteral, err)
	}
	dur, err := Rounds(n)
	if err != nil {
		return err
	}
	*d = dur
	return nil
}
