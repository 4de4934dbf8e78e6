package rulenotation

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// Lexer tokenizes the textual rule notation spec.md's prose uses throughout,
// e.g. "(q0,1) -> (q0,KEEP,+1)". Order matters: Arrow and Punct must be
// tried before Field, or Field's broad charclass would swallow them.
var Lexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `#[^\n]*`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
		{"Arrow", `->`, nil},
		{"Punct", `[(),]`, nil},
		{"Field", `[^\s(),]+`, nil},
	},
})
