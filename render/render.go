// Package render pretty-prints tapes and multi-tape snapshots for manual
// debugging. It is never on the hot path of any compiler or interpreter —
// grounded on original_source/turing_machine/common.py's PrettyTape (each
// cell centered, the head cell bracketed) and planetlambert-turing's
// TapeString/square-printing style, rendered with github.com/fatih/color
// instead of plain ASCII so the head cell stands out in a terminal.
package render

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// headColor highlights the cell under the head; cellColor renders every
// other cell. Both honour color.NoColor, which turns their output into
// plain text.
var (
	headColor = color.New(color.FgBlack, color.BgYellow, color.Bold)
	cellColor = color.New(color.FgWhite)
)

// Tape formats a single-tape snapshot as "@head: |cell|cell|[cell]|cell|",
// bracketing and highlighting the cell under head.
func Tape[SYM any](tape []SYM, head int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "@%d: |", head)
	for i, s := range tape {
		b.WriteString(cellString(fmt.Sprintf("%v", s), i == head))
		b.WriteByte('|')
	}
	return b.String()
}

// MultiTape formats a k-tape snapshot, one Tape line per tape, prefixed by
// its tape index.
func MultiTape[SYM any](tapes [][]SYM, heads []int) string {
	var b strings.Builder
	for i, tape := range tapes {
		head := -1
		if i < len(heads) {
			head = heads[i]
		}
		fmt.Fprintf(&b, "tape %d %s\n", i, Tape(tape, head))
	}
	return strings.TrimRight(b.String(), "\n")
}

// Step is one entry in a Trace: the state the machine was in and a snapshot
// of the tape before the transition at that state fired.
type Step[ST any, SYM any] struct {
	State ST
	Tape  []SYM
	Head  int
}

// Trace formats a sequence of Steps, one line per step, e.g.
// "0: state=q0 @0: |[1]| 0 |".
func Trace[ST any, SYM any](steps []Step[ST, SYM]) string {
	var b strings.Builder
	for i, st := range steps {
		fmt.Fprintf(&b, "%d: state=%v %s\n", i, st.State, Tape(st.Tape, st.Head))
	}
	return strings.TrimRight(b.String(), "\n")
}

func cellString(s string, underHead bool) string {
	if underHead {
		return headColor.Sprintf("[%s]", s)
	}
	return cellColor.Sprintf(" %s ", s)
}
