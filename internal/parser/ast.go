package parser

// Command is the root rule of the REPL grammar. Exactly one branch is set
// after a successful parse.
type Command struct {
	Start   *StartCmd   `parser:"( @@"`
	Next    *NextCmd    `parser:"| @@"`
	Prev    *PrevCmd    `parser:"| @@"`
	Effect  *EffectCmd  `parser:"| @@"`
	Clear   *ClearCmd   `parser:"| @@"`
	Trigger *TriggerCmd `parser:"| @@"`
	Remove  *RemoveCmd  `parser:"| @@"`
	Resolve *ResolveCmd `parser:"| @@"`
	End     *EndCmd     `parser:"| @@"`
	Log     *LogCmd     `parser:"| @@"`
	Search  *SearchCmd  `parser:"| @@"`
	Summary *SummaryCmd `parser:"| @@"`
	Hint    *HintCmd    `parser:"| @@ )"`
}

// RollExpr assigns an initiative score to a roster member by id, e.g. `pc1=18`.
type RollExpr struct {
	Name  string `parser:"@Ident"`
	Score int    `parser:"'=' @Int"`
}

// StartCmd opens combat: `start with: pc1=18 and: dragon=15`. Rolls are
// optional; without them the host rolls for the whole roster.
type StartCmd struct {
	Keyword string      `parser:"@'start'"`
	Rolls   []*RollExpr `parser:"( 'with' ':' @@ ( 'and' ':' @@ )* )?"`
}

// NextCmd advances to the next turn.
type NextCmd struct {
	Keyword string `parser:"@'next'"`
}

// PrevCmd steps the display back one turn.
type PrevCmd struct {
	Keyword string `parser:"@'prev'"`
}

// EffectCmd applies a condition to a participant:
// `effect on: goblin name: Poisoned rounds: 3` or
// `effect on: dragon name: "Legendary Resistance" permanent`.
type EffectCmd struct {
	Keyword   string `parser:"@'effect'"`
	On        string `parser:"'on' ':' @Ident"`
	Name      string `parser:"'name' ':' @(Ident | String)"`
	Rounds    *int   `parser:"( 'rounds' ':' @Int"`
	Permanent bool   `parser:"| @'permanent' )"`
}

// ClearCmd removes an effect before it expires:
// `clear on: goblin id: "3d7c..."`.
type ClearCmd struct {
	Keyword string `parser:"@'clear'"`
	On      string `parser:"'on' ':' @Ident"`
	ID      string `parser:"'id' ':' @(Ident | String)"`
}

// TriggerCmd schedules an environmental event:
// `trigger name: Rockfall round: 3 every: 2 when: "round % 2 == 0"`.
// `every` and `when` are optional.
type TriggerCmd struct {
	Keyword string  `parser:"@'trigger'"`
	Name    string  `parser:"'name' ':' @(Ident | String)"`
	Round   int     `parser:"'round' ':' @Int"`
	Every   *int    `parser:"( 'every' ':' @Int )?"`
	When    *string `parser:"( 'when' ':' @String )?"`
}

// RemoveCmd takes a participant out of the initiative order mid-combat.
type RemoveCmd struct {
	Keyword string `parser:"@'remove'"`
	Who     string `parser:"@Ident"`
}

// ResolveCmd fires any triggers due in the current round.
type ResolveCmd struct {
	Keyword string `parser:"@'resolve'"`
}

// EndCmd closes the combat session.
type EndCmd struct {
	Keyword string `parser:"@'end'"`
}

// LogCmd prints the round journal, optionally only the first N rounds:
// `log last: 3`.
type LogCmd struct {
	Keyword string `parser:"@'log'"`
	Last    *int   `parser:"( 'last' ':' @Int )?"`
}

// SearchCmd scans the journal for a substring. An empty query returns the
// whole log.
type SearchCmd struct {
	Keyword string  `parser:"@'search'"`
	Query   *string `parser:"@(Ident | String)?"`
}

// SummaryCmd prints encounter statistics.
type SummaryCmd struct {
	Keyword string `parser:"@'summary'"`
}

// HintCmd prints the grammar cheat sheet.
type HintCmd struct {
	Keyword string `parser:"@'hint'"`
}
