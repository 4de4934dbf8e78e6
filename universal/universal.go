// Package universal builds the fixed 3-tape Universal Turing Machine: one
// rule table, built once, that simulates any binary single-tape machine fed
// to it as data on tape 0. Grounded on
// original_source/turing_machine/universal.py's UniversalMachineWrapper: the
// state catalogue, the _switch rule-construction helper, and the
// MAIN_INIT/LOOKUP/APPLY/RETURN control loop are all ported from there.
//
// Two divergences from that source, both needed to get a working machine
// out of turing.MultiMachine's semantics: first, _switch's "unconditional"
// calls (symbol=None) install a rule keyed on a literal None tuple, which
// the reference engine's exact-tuple lookup could never match — here they
// become a genuine ANY rule via MultiRead.Wildcard. Second, a write slot
// left as None is treated as KEEP rather than a literal overwrite with
// Python's None, since turing.Write has real Keep support the original
// multitape engine lacked.
package universal

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/turingkit/turing"
)

// The UTM's fixed 7-symbol tape alphabet.
const (
	Blank = "_"
	Zero  = "0"
	One   = "1"
	Dash  = "-"
	Start = ">"
	Slash = "/"
	Hash  = "#"
)

var fullAlphabet = []string{Blank, Zero, One, Dash, Start, Slash, Hash}

// stateTapeAlphabet is the admissible range for a wildcard slot on tape 1
// or tape 2: those tapes only ever hold a state index or simulated-tape
// content, never the program-only symbols '-', '/', '#'.
var stateTapeAlphabet = []string{Start, Zero, One, Blank}

var zeroDelta = [3]turing.Delta{turing.Stay, turing.Stay, turing.Stay}

// State is the UTM's closed ~20-member state catalogue. Halt has no
// outgoing rules, so reaching it halts the machine immediately.
type State int

const (
	MainInit State = iota
	MainLookup
	MainApply
	MainReturn

	LookupSearch
	LookupCheck
	LookupFoundState

	ApplyWrite
	ApplyMove
	ApplyChangeState

	Return0
	Return1

	Halt

	FindNext

	CompareGoLeft
	CompareCheck

	Move

	ChangeStateGoRight
	ChangeStateErase
	ChangeStateCopy
)

var stateNames = map[State]string{
	MainInit: "MAIN_INIT", MainLookup: "MAIN_LOOKUP", MainApply: "MAIN_APPLY", MainReturn: "MAIN_RETURN",
	LookupSearch: "LOOKUP_SEARCH", LookupCheck: "LOOKUP_CHECK", LookupFoundState: "LOOKUP_FOUND_STATE",
	ApplyWrite: "APPLY_WRITE", ApplyMove: "APPLY_MOVE", ApplyChangeState: "APPLY_CHANGE_STATE",
	Return0: "RETURN_0", Return1: "RETURN_1",
	Halt:     "HALT",
	FindNext: "FIND_NEXT",

	CompareGoLeft: "COMPARE_GO_LEFT", CompareCheck: "COMPARE_CHECK",
	Move:               "MOVE",
	ChangeStateGoRight: "CHANGE_STATE_GO_RIGHT", ChangeStateErase: "CHANGE_STATE_ERASE", ChangeStateCopy: "CHANGE_STATE_COPY",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// readSlot/writeSlot: nil means "don't care" — a read slot expands over its
// tape's admissible alphabet, a write slot means KEEP.
type readSlot = *string
type writeSlot = *string

func sp(s string) *string { return &s }

type builder struct {
	rules *turing.MultiRules[State, string]
}

func newBuilder() *builder {
	return &builder{rules: turing.NewMultiRules[State, string](3)}
}

func writesOf(write [3]writeSlot) []turing.Write[string] {
	out := make([]turing.Write[string], 3)
	for i, w := range write {
		if w != nil {
			out[i] = turing.WriteSymbol(*w)
		} else {
			out[i] = turing.WriteKeep[string]()
		}
	}
	return out
}

// any installs a true wildcard rule: it fires regardless of what is under
// any of the three heads.
func (b *builder) any(state, next State, write [3]writeSlot, delta [3]turing.Delta) {
	_ = b.rules.Set(state, turing.MultiRead[string]{Wildcard: true}, turing.MultiTransition[State, string]{
		NextState: next,
		Writes:    writesOf(write),
		Deltas:    delta[:],
	})
}

// switchRule is the ported _switch helper for a constrained read tuple: any
// nil read slot is expanded over its tape's admissible local alphabet, one
// concrete rule per combination.
func (b *builder) switchRule(state, next State, read [3]readSlot, write [3]writeSlot, delta [3]turing.Delta) {
	variants := [3][]string{}
	for i, r := range read {
		switch {
		case r != nil:
			variants[i] = []string{*r}
		case i == 0:
			variants[i] = fullAlphabet
		default:
			variants[i] = stateTapeAlphabet
		}
	}
	writes := writesOf(write)
	for _, a := range variants[0] {
		for _, c := range variants[1] {
			for _, d := range variants[2] {
				_ = b.rules.Set(state, turing.MultiRead[string]{Symbols: []string{a, c, d}}, turing.MultiTransition[State, string]{
					NextState: next,
					Writes:    writes,
					Deltas:    delta[:],
				})
			}
		}
	}
}

// Build constructs the UTM's fixed rule table and wraps it in a
// MultiMachine, ready to run against an Encode-produced 3-tape input.
func Build() *turing.MultiMachine[State, string] {
	b := newBuilder()

	b.any(MainInit, MainLookup, [3]writeSlot{}, [3]turing.Delta{turing.Right, turing.Right, turing.Right})

	// Loop invariant entering MAIN_LOOKUP: tape 0's head is on the current
	// rule's start, tape 2's head is on the simulated machine's head.
	b.doLookup(MainLookup, MainApply, Halt)
	b.doApply(MainApply, MainReturn, Halt)
	b.doReturn(MainReturn, MainLookup)

	m, err := turing.NewMultiMachine[State, string](3, b.rules, MainInit, Blank)
	if err != nil {
		panic(fmt.Sprintf("universal: internal rule table malformed: %v", err))
	}
	return m
}

func (b *builder) doLookup(enter, exitFound, exitNotFound State) {
	b.any(enter, LookupCheck, [3]writeSlot{}, zeroDelta) // already at the rule start the first time
	b.doFindNextRule(LookupSearch, LookupCheck, exitNotFound)
	b.doCompareStates(LookupCheck, LookupFoundState, LookupSearch)
	b.doCompareSymbols(LookupFoundState, exitFound, LookupSearch)
}

func (b *builder) doFindNextRule(enter, exitFound, exitNotFound State) {
	b.any(enter, FindNext, [3]writeSlot{}, zeroDelta)
	b.switchRule(FindNext, exitNotFound, [3]readSlot{sp(Hash), nil, nil}, [3]writeSlot{}, zeroDelta)
	b.switchRule(FindNext, exitFound, [3]readSlot{sp(Slash), nil, nil}, [3]writeSlot{}, [3]turing.Delta{turing.Right, turing.Stay, turing.Stay})
	b.any(FindNext, FindNext, [3]writeSlot{}, [3]turing.Delta{turing.Right, turing.Stay, turing.Stay})
}

func (b *builder) doCompareStates(enter, exitEqual, exitNotEqual State) {
	// pre: tape 0's head is on the start of state1's bits.
	// post: tape 0's head is just past the "_" delimiter after state1.
	b.any(enter, CompareGoLeft, [3]writeSlot{}, zeroDelta) // reset tape 1's head to position 1
	b.switchRule(CompareGoLeft, CompareCheck, [3]readSlot{nil, sp(Start), nil}, [3]writeSlot{}, [3]turing.Delta{turing.Stay, turing.Right, turing.Stay})
	b.any(CompareGoLeft, CompareGoLeft, [3]writeSlot{}, [3]turing.Delta{turing.Stay, turing.Left, turing.Stay})

	for _, bit := range []string{Zero, One} {
		b.switchRule(CompareCheck, CompareCheck, [3]readSlot{sp(bit), sp(bit), nil}, [3]writeSlot{}, [3]turing.Delta{turing.Right, turing.Right, turing.Stay})
	}
	b.switchRule(CompareCheck, exitEqual, [3]readSlot{sp(Blank), sp(Blank), nil}, [3]writeSlot{}, [3]turing.Delta{turing.Right, turing.Stay, turing.Stay})
	b.any(CompareCheck, exitNotEqual, [3]writeSlot{}, zeroDelta)
}

func (b *builder) doCompareSymbols(enter, exitEqual, exitNotEqual State) {
	// pre: tape 0's head is on the rule's read bit r.
	for _, bit := range []string{Zero, One} {
		b.switchRule(enter, exitEqual, [3]readSlot{sp(bit), nil, sp(bit)}, [3]writeSlot{}, [3]turing.Delta{turing.Right, turing.Stay, turing.Stay})
	}
	b.switchRule(enter, exitEqual, [3]readSlot{sp(Dash), nil, nil}, [3]writeSlot{}, [3]turing.Delta{turing.Right, turing.Stay, turing.Stay})
	b.any(enter, exitNotEqual, [3]writeSlot{}, zeroDelta)
}

func (b *builder) doApply(enter, exit, exitOutOfTape State) {
	// pre: tape 0's head is on the rule's write bit s.
	b.any(enter, ApplyWrite, [3]writeSlot{}, zeroDelta)
	b.doWrite(ApplyWrite, ApplyMove)
	b.doMove(ApplyMove, ApplyChangeState, exitOutOfTape)
	b.doChangeState(ApplyChangeState, exit)
}

func (b *builder) doWrite(enter, exit State) {
	for _, bit := range []string{Zero, One} {
		b.switchRule(enter, exit, [3]readSlot{sp(bit), nil, nil}, [3]writeSlot{nil, nil, sp(bit)}, [3]turing.Delta{turing.Right, turing.Stay, turing.Stay})
	}
	b.switchRule(enter, exit, [3]readSlot{sp(Dash), nil, nil}, [3]writeSlot{}, [3]turing.Delta{turing.Right, turing.Stay, turing.Stay})
}

func (b *builder) doMove(enter, exit, exitOutOfTape State) {
	// pre: tape 0's head is on the rule's delta digit.
	b.switchRule(enter, Move, [3]readSlot{sp(One), nil, nil}, [3]writeSlot{}, [3]turing.Delta{turing.Right, turing.Stay, turing.Right})
	b.switchRule(enter, Move, [3]readSlot{sp(Dash), nil, nil}, [3]writeSlot{}, [3]turing.Delta{turing.Right, turing.Stay, turing.Left})
	b.switchRule(enter, Move, [3]readSlot{sp(Zero), nil, nil}, [3]writeSlot{}, [3]turing.Delta{turing.Right, turing.Stay, turing.Stay})

	b.switchRule(Move, exit, [3]readSlot{nil, nil, sp(Blank)}, [3]writeSlot{nil, nil, sp(Zero)}, zeroDelta)
	b.switchRule(Move, exitOutOfTape, [3]readSlot{nil, nil, sp(Start)}, [3]writeSlot{}, zeroDelta)
	b.any(Move, exit, [3]writeSlot{}, zeroDelta)
}

func (b *builder) doChangeState(enter, exit State) {
	// pre: tape 0's head is on state2's first bit.
	b.any(enter, ChangeStateGoRight, [3]writeSlot{}, zeroDelta)
	b.switchRule(ChangeStateGoRight, ChangeStateErase, [3]readSlot{nil, sp(Blank), nil}, [3]writeSlot{}, [3]turing.Delta{turing.Stay, turing.Left, turing.Stay})
	b.any(ChangeStateGoRight, ChangeStateGoRight, [3]writeSlot{}, [3]turing.Delta{turing.Stay, turing.Right, turing.Stay})

	b.switchRule(ChangeStateErase, ChangeStateCopy, [3]readSlot{nil, sp(Start), nil}, [3]writeSlot{}, [3]turing.Delta{turing.Stay, turing.Right, turing.Stay})
	b.any(ChangeStateErase, ChangeStateErase, [3]writeSlot{nil, sp(Blank), nil}, [3]turing.Delta{turing.Stay, turing.Left, turing.Stay})

	b.switchRule(ChangeStateCopy, exit, [3]readSlot{sp(Blank), nil, nil}, [3]writeSlot{}, zeroDelta)
	for _, bit := range []string{Zero, One} {
		b.switchRule(ChangeStateCopy, ChangeStateCopy, [3]readSlot{sp(bit), nil, nil}, [3]writeSlot{nil, sp(bit), nil}, [3]turing.Delta{turing.Right, turing.Right, turing.Stay})
	}
}

func (b *builder) doReturn(enter, exit State) {
	b.any(enter, Return0, [3]writeSlot{}, zeroDelta)
	b.switchRule(Return0, Return1, [3]readSlot{sp(Start), nil, nil}, [3]writeSlot{}, zeroDelta)
	b.any(Return0, Return0, [3]writeSlot{}, [3]turing.Delta{turing.Left, turing.Stay, turing.Stay})

	b.switchRule(Return1, exit, [3]readSlot{sp(Start), sp(Start), nil}, [3]writeSlot{}, [3]turing.Delta{turing.Right, turing.Right, turing.Stay})
	b.any(Return1, Return1, [3]writeSlot{}, [3]turing.Delta{turing.Stay, turing.Left, turing.Stay})
}

// Sentinel errors for Encode.
var (
	ErrEmptySymbolNotZero = errors.New("universal: source machine's empty symbol must be \"0\"")
	ErrNotABit            = errors.New("universal: tape symbol must be \"0\" or \"1\"")
)

// Encode compiles a binary single-tape machine and its input into the
// UTM's 3-tape starting configuration: tape 0 is the program, tape 1 is
// the encoded INIT state (always "0"), tape 2 is the input prefixed by the
// start sentinel.
func Encode[ST comparable](m *turing.Machine[ST, string], tape []string) ([][]string, error) {
	if m.EmptySymbol() != Zero {
		return nil, ErrEmptySymbolNotZero
	}
	program, err := encodeProgram(m)
	if err != nil {
		return nil, err
	}
	input, err := encodeInput(tape)
	if err != nil {
		return nil, err
	}
	return [][]string{
		append([]string{Start}, program...),
		{Start, Zero},
		append([]string{Start}, input...),
	}, nil
}

func encodeInput(tape []string) ([]string, error) {
	out := make([]string, len(tape))
	for i, s := range tape {
		if s != Zero && s != One {
			return nil, fmt.Errorf("%w: %q", ErrNotABit, s)
		}
		out[i] = s
	}
	return out, nil
}

// encodeProgram assigns each distinct state a minimal-width binary index
// (the source machine's INIT at index 0), then emits one textual rule per
// entry, concrete-read rules before ANY-read rules so the UTM's linear
// LOOKUP scan reproduces the source machine's lookup precedence. An empty
// rule table still emits a bare "#": without it the program tape's
// auto-extension fills with the UTM's own empty symbol "_", which FIND_NEXT
// cannot distinguish from "keep scanning".
func encodeProgram[ST comparable](m *turing.Machine[ST, string]) ([]string, error) {
	entries := m.Rules().Entries()

	stateIndex := map[string]int{}
	nextIndex := 0
	indexOf := func(st ST) int {
		key := fmt.Sprintf("%v", st)
		if idx, ok := stateIndex[key]; ok {
			return idx
		}
		idx := nextIndex
		stateIndex[key] = idx
		nextIndex++
		return idx
	}
	indexOf(m.InitState())

	var regular, fallback []turing.RuleEntry[ST, string]
	for _, e := range entries {
		indexOf(e.Key.State)
		indexOf(e.Value.NextState)
		if e.Key.Read.Wildcard {
			fallback = append(fallback, e)
		} else {
			regular = append(regular, e)
		}
	}
	ordered := make([]turing.RuleEntry[ST, string], 0, len(regular)+len(fallback))
	ordered = append(ordered, regular...)
	ordered = append(ordered, fallback...)

	var out []string
	for i, e := range ordered {
		out = append(out, stateBits(stateIndex[fmt.Sprintf("%v", e.Key.State)])...)
		out = append(out, Blank)

		if e.Key.Read.Wildcard {
			out = append(out, Dash)
		} else {
			if e.Key.Read.Symbol != Zero && e.Key.Read.Symbol != One {
				return nil, fmt.Errorf("%w: %q", ErrNotABit, e.Key.Read.Symbol)
			}
			out = append(out, e.Key.Read.Symbol)
		}

		if e.Value.Write.Keep {
			out = append(out, Dash)
		} else {
			if e.Value.Write.Symbol != Zero && e.Value.Write.Symbol != One {
				return nil, fmt.Errorf("%w: %q", ErrNotABit, e.Value.Write.Symbol)
			}
			out = append(out, e.Value.Write.Symbol)
		}

		out = append(out, deltaSymbol(e.Value.Delta))
		out = append(out, stateBits(stateIndex[fmt.Sprintf("%v", e.Value.NextState)])...)
		out = append(out, Blank)

		if i == len(ordered)-1 {
			out = append(out, Hash)
		} else {
			out = append(out, Slash)
		}
	}
	if len(ordered) == 0 {
		out = append(out, Hash)
	}
	return out, nil
}

func deltaSymbol(d turing.Delta) string {
	switch d {
	case turing.Left:
		return Dash
	case turing.Right:
		return One
	default:
		return Zero
	}
}

// stateBits returns n's minimal binary form, one bit per tape cell.
func stateBits(n int) []string {
	return strings.Split(strconv.FormatInt(int64(n), 2), "")
}

// Decode extracts the simulated machine's output tape from the UTM's final
// 3-tape configuration: tape 2 with the leading start sentinel stripped,
// tolerant of one trailing UTM-level empty symbol.
func Decode(tapes [][]string) []string {
	sim := tapes[2]
	out := make([]string, 0, len(sim))
	if len(sim) > 0 {
		out = append(out, sim[1:]...)
	}
	if len(out) > 0 && out[len(out)-1] == Blank {
		out = out[:len(out)-1]
	}
	return out
}
