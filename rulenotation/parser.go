// Package rulenotation parses the textual "(state,read) -> (nextState,write,delta)"
// rule notation spec.md's prose uses throughout (e.g. "(b,_) -> (c,0,+1)") into a
// turing.Rules table. The arrow must be written "->"; the "→" character is
// not accepted. It supersedes filereader's bespoke .tur line scanner
// with a grammar-driven parser, adapting kanso-lang-kanso's
// participle-based lexer/parser/error-reporting pattern to this module's
// rule-table domain.
package rulenotation

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/fatih/color"

	"github.com/turingkit/turing"
)

// ErrInvalidDelta is returned when a rule line's delta field is not one of
// "-1", "0", "+1" (or "1").
var ErrInvalidDelta = errors.New("invalid delta")

var parser = participle.MustBuild[Document](
	participle.Lexer(Lexer),
	participle.Elide("Whitespace", "Comment"),
)

// ParseString parses source into a Document, reporting a friendly
// caret-style error on failure.
func ParseString(name, source string) (*Document, error) {
	doc, err := parser.ParseString(name, source)
	if err != nil {
		reportParseError(source, err)
		return nil, err
	}
	return doc, nil
}

// Parse reads and parses rule notation source from r.
func Parse(name string, r io.Reader) (*Document, error) {
	source, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read rule notation: %w", err)
	}
	return ParseString(name, string(source))
}

// ParseFile reads and parses a rule notation file from disk.
func ParseFile(path string) (*Document, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %q: %w", path, err)
	}
	return ParseString(path, string(source))
}

// ParseRulesFile reads, parses, and builds path's rule lines directly into a
// turing.Rules table.
func ParseRulesFile(path string) (turing.Rules[string, string], error) {
	doc, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	return Build(doc)
}

// Build converts a parsed Document into a turing.Rules table. A symbol's
// later rule line occupying a key already produced by an earlier one wins,
// matching turing.Rules' own map-assignment semantics.
func Build(doc *Document) (turing.Rules[string, string], error) {
	out := make(turing.Rules[string, string], len(doc.Rules))
	for _, line := range doc.Rules {
		delta, err := parseDelta(line.Delta)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", line.Pos, err)
		}

		read := turing.ReadSymbol(line.Read.Value)
		if line.Read.Any {
			read = turing.ReadAny[string]()
		}

		write := turing.WriteSymbol(line.Write.Value)
		if line.Write.Keep {
			write = turing.WriteKeep[string]()
		}

		out[turing.RuleKey[string, string]{State: line.FromState, Read: read}] = turing.RuleValue[string, string]{
			NextState: line.ToState,
			Write:     write,
			Delta:     delta,
		}
	}
	return out, nil
}

func parseDelta(s string) (turing.Delta, error) {
	n, err := strconv.Atoi(s)
	if err != nil || (n != -1 && n != 0 && n != 1) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDelta, s)
	}
	return turing.Delta(n), nil
}

// reportParseError prints a friendly caret-style parse error message.
func reportParseError(src string, err error) {
	pe, ok := err.(participle.Error)
	if !ok {
		color.Red("unexpected error: %s", err)
		return
	}

	pos := pe.Position()
	lines := strings.Split(src, "\n")
	if pos.Line <= 0 || pos.Line > len(lines) {
		color.Red("syntax error at unknown location: %s", err)
		return
	}

	line := lines[pos.Line-1]
	caret := strings.Repeat(" ", pos.Column-1) + "^"

	color.Red("syntax error in %s at line %d, column %d:", pos.Filename, pos.Line, pos.Column)
	fmt.Println(line)
	color.HiRed(caret)
	fmt.Printf("-> %s\n", pe.Message())
}
