package parser

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Lexer maps the raw string tokens out for our AST definitions.
// Basic whitespace elision is enough for our grammar.
var Lexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Keyword", Pattern: `\b(?:start|next|prev|effect|clear|trigger|remove|resolve|end|log|search|summary|hint|with|and|on|name|rounds|permanent|round|every|when|last|id)\b`},
	{Name: "String", Pattern: `"[^"]*"`},
	{Name: "Ident", Pattern: `[a-zA-Z_]\w*`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Punct", Pattern: `[:=]`},
	{Name: "Whitespace", Pattern: `[ \t]+`},
})

// Build creates our parser based on the struct tags in `ast.go`
func Build() *participle.Parser[Command] {
	return participle.MustBuild[Command](
		participle.Lexer(Lexer),
		participle.Elide("Whitespace"),
		participle.Unquote("String"),
	)
}
