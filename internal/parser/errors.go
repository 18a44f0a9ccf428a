package parser

import (
	"fmt"
	"strings"
)

// MapError takes a raw input and a participle error, and returns a human-friendly guidance message.
func MapError(input string, err error) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return fmt.Errorf("I wasn't able to understand your command")
	}

	parts := strings.Fields(strings.ToLower(input))
	cmd := parts[0]

	switch cmd {
	case "start":
		return fmt.Errorf("The command start must be: start [with: Name=Score [and: Name=Score]*]")
	case "next":
		return fmt.Errorf("The command next must be: next")
	case "prev":
		return fmt.Errorf("The command prev must be: prev")
	case "effect":
		return fmt.Errorf("The command effect must be: effect on: Target name: Effect <rounds: N | permanent>")
	case "clear":
		return fmt.Errorf("The command clear must be: clear on: Target id: EffectID")
	case "trigger":
		return fmt.Errorf("The command trigger must be: trigger name: Name round: N [every: N] [when: \"expression\"]")
	case "remove":
		return fmt.Errorf("The command remove must be: remove Target")
	case "resolve":
		return fmt.Errorf("The command resolve must be: resolve")
	case "end":
		return fmt.Errorf("The command end must be: end")
	case "log":
		return fmt.Errorf("The command log must be: log [last: N]")
	case "search":
		return fmt.Errorf("The command search must be: search [query]")
	case "summary":
		return fmt.Errorf("The command summary must be: summary")
	case "hint":
		return fmt.Errorf("The command hint must be: hint")
	}

	return fmt.Errorf("I wasn't able to understand your command")
}

// Hint returns the grammar cheat sheet shown by the hint command.
func Hint() string {
	return strings.Join([]string{
		"start [with: Name=Score [and: Name=Score]*]",
		"next",
		"prev",
		"effect on: Target name: Effect <rounds: N | permanent>",
		"clear on: Target id: EffectID",
		"trigger name: Name round: N [every: N] [when: \"expression\"]",
		"remove Target",
		"resolve",
		"end",
		"log [last: N]",
		"search [query]",
		"summary",
	}, "\n")
}
