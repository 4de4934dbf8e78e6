package rulenotation

import "github.com/alecthomas/participle/v2/lexer"

// Read is a rule line's left-hand read side: either the literal ANY marker
// or a concrete symbol.
type Read struct {
	Pos   lexer.Position
	Any   bool   `@"ANY"`
	Value string `| @Field`
}

// Write is a rule line's write side: either the literal KEEP marker or a
// concrete symbol.
type Write struct {
	Pos   lexer.Position
	Keep  bool   `@"KEEP"`
	Value string `| @Field`
}

// RuleLine is one parsed "(state,read) -> (nextState,write,delta)" line.
type RuleLine struct {
	Pos       lexer.Position
	FromState string `"(" @Field`
	Read      Read   `"," @@ ")"`
	ToState   string `"->" "(" @Field`
	Write     Write  `"," @@`
	Delta     string `"," @Field ")"`
}

// Document is a full parsed rule notation source: zero or more rule lines.
type Document struct {
	Pos   lexer.Position
	Rules []*RuleLine `@@*`
}
