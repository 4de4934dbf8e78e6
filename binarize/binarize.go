// Package binarize compiles an arbitrary-alphabet single-tape machine into
// a behaviorally equivalent {0,1}-alphabet machine, per
// original_source/turing_machine/binarize.py: every Σ-symbol becomes a
// fixed-width bit block, and every Σ-state's one step is simulated as a
// READ/WRITE/MOVE macro-step over that block.
package binarize

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/turingkit/turing"
)

var (
	// ErrEmptyAlphabet is returned when NewBinEncoder is given an empty
	// alphabet.
	ErrEmptyAlphabet = errors.New("binarize: alphabet must be non-empty")
	// ErrUnknownSymbol is returned by EncodeInput when a tape symbol is not
	// part of the encoder's alphabet.
	ErrUnknownSymbol = errors.New("binarize: symbol not in alphabet")
	// ErrMalformedBit is returned by DecodeOutput when a tape cell is
	// neither "0" nor "1".
	ErrMalformedBit = errors.New("binarize: tape cell is not a bit")
)

// Phase tags a compiled state's role within one macro-step.
type Phase int

const (
	Regular Phase = iota
	Read
	Write
	Move
)

// State is one state of a binarized machine: a phase tag, the original
// state Q being simulated, and a phase-specific payload. Bits holds the
// READ phase's prefix-so-far or the WRITE phase's remaining bits to write
// (front of the string is written next); PendingDelta holds, during WRITE,
// the original Δ to apply once the block has been fully rewritten; during
// MOVE it holds the signed number of cells left to travel. Collapsing the
// payload into string/int fields (rather than a slice) keeps State
// comparable, a requirement of turing.Rules' map-keyed representation.
type State[ST comparable] struct {
	Phase        Phase
	Q            ST
	Bits         string
	PendingDelta int
}

func regular[ST comparable](q ST) State[ST] { return State[ST]{Phase: Regular, Q: q} }

// BinEncoder fixes an alphabet enumeration (empty symbol at index 0) and
// the resulting block width B = ceil(log2(|alphabet|)), B >= 1.
type BinEncoder[SYM comparable] struct {
	alphabet []SYM
	index    map[SYM]int
	width    int
}

// NewBinEncoder builds a BinEncoder. alphabet must contain empty; empty is
// moved to index 0 if it is not already there, so the all-zero block
// decodes to it.
func NewBinEncoder[SYM comparable](alphabet []SYM, empty SYM) (*BinEncoder[SYM], error) {
	if len(alphabet) == 0 {
		return nil, ErrEmptyAlphabet
	}

	ordered := make([]SYM, 0, len(alphabet))
	ordered = append(ordered, empty)
	seen := map[SYM]bool{empty: true}
	for _, s := range alphabet {
		if seen[s] {
			continue
		}
		seen[s] = true
		ordered = append(ordered, s)
	}

	width := bits.Len(uint(len(ordered) - 1))
	if width == 0 {
		width = 1
	}

	index := make(map[SYM]int, len(ordered))
	for i, s := range ordered {
		index[s] = i
	}

	return &BinEncoder[SYM]{alphabet: ordered, index: index, width: width}, nil
}

// Width returns B, the fixed bit-block width.
func (e *BinEncoder[SYM]) Width() int { return e.width }

func (e *BinEncoder[SYM]) bitsOf(code int) string {
	out := make([]byte, e.width)
	for i := e.width - 1; i >= 0; i-- {
		if code&1 == 1 {
			out[i] = '1'
		} else {
			out[i] = '0'
		}
		code >>= 1
	}
	return string(out)
}

// EncodeInput converts a Σ-tape into its binary tape: each symbol becomes a
// fixed-width B-bit block, MSB first, in tape order.
func (e *BinEncoder[SYM]) EncodeInput(w []SYM) ([]string, error) {
	out := make([]string, 0, len(w)*e.width)
	for _, sym := range w {
		code, ok := e.index[sym]
		if !ok {
			return nil, fmt.Errorf("%w: %v", ErrUnknownSymbol, sym)
		}
		for _, b := range e.bitsOf(code) {
			out = append(out, string(b))
		}
	}
	return out, nil
}

// DecodeOutput is the inverse of EncodeInput, tolerant of a trailing
// partial block (padded with "0" so it decodes as empty-filled).
func (e *BinEncoder[SYM]) DecodeOutput(tape []string) ([]SYM, error) {
	out := make([]SYM, 0, (len(tape)+e.width-1)/e.width)
	for i := 0; i < len(tape); i += e.width {
		code := 0
		for j := 0; j < e.width; j++ {
			code <<= 1
			if i+j < len(tape) {
				switch tape[i+j] {
				case "1":
					code |= 1
				case "0":
					// no-op
				default:
					return nil, fmt.Errorf("%w: %q", ErrMalformedBit, tape[i+j])
				}
			}
		}
		if code >= len(e.alphabet) {
			return nil, fmt.Errorf("binarize: decoded code %d has no symbol (alphabet size %d)", code, len(e.alphabet))
		}
		out = append(out, e.alphabet[code])
	}
	return out, nil
}

// EncodeMachine compiles m into a {0,1}-alphabet machine whose states are
// State[ST] and whose empty symbol is "0". It is a package-level function
// rather than a BinEncoder method because it introduces the extra type
// parameter ST that BinEncoder itself does not carry.
func EncodeMachine[ST, SYM comparable](e *BinEncoder[SYM], m *turing.Machine[ST, SYM]) (*turing.Machine[State[ST], string], error) {
	entries := m.Rules().Entries()

	type target struct {
		next  ST
		write turing.Write[SYM]
		delta turing.Delta
	}
	exact := make(map[ST]map[SYM]target)
	anyRule := make(map[ST]target)
	states := make(map[ST]bool)

	for _, entry := range entries {
		states[entry.Key.State] = true
		t := target{next: entry.Value.NextState, write: entry.Value.Write, delta: entry.Value.Delta}
		if entry.Key.Read.Wildcard {
			anyRule[entry.Key.State] = t
			continue
		}
		if exact[entry.Key.State] == nil {
			exact[entry.Key.State] = make(map[SYM]target)
		}
		exact[entry.Key.State][entry.Key.Read.Symbol] = t
	}
	resolve := func(q ST, sym SYM) (target, bool) {
		if t, ok := exact[q][sym]; ok {
			return t, true
		}
		if t, ok := anyRule[q]; ok {
			return t, true
		}
		return target{}, false
	}

	rules := make(turing.Rules[State[ST], string])
	width := e.width

	for q := range states {
		for prefixLen := 0; prefixLen < width-1; prefixLen++ {
			for _, prefix := range binaryStrings(prefixLen) {
				src := State[ST]{Phase: Read, Q: q, Bits: prefix}
				if prefixLen == 0 {
					src = regular(q)
				}
				for _, c := range "01" {
					rules[turing.RuleKey[State[ST], string]{State: src, Read: turing.ReadSymbol(string(c))}] = turing.RuleValue[State[ST], string]{
						NextState: State[ST]{Phase: Read, Q: q, Bits: prefix + string(c)},
						Write:     turing.WriteKeep[string](),
						Delta:     turing.Right,
					}
				}
			}
		}

		// The final READ step: decode the completed B-bit prefix and
		// dispatch into the WRITE phase, or halt if M has no rule.
		for _, prefix := range binaryStrings(width - 1) {
			src := State[ST]{Phase: Read, Q: q, Bits: prefix}
			if width == 1 {
				src = regular(q)
			}
			for _, c := range "01" {
				code := decodeBinary(prefix + string(c))
				if code >= len(e.alphabet) {
					continue
				}
				sym := e.alphabet[code]
				t, ok := resolve(q, sym)
				if !ok {
					continue // no M-rule: halt here, matching the Σ-level soft halt
				}

				var writeBits string
				if t.write.Keep {
					writeBits = repeatRune('K', width)
				} else {
					wc, wok := e.index[t.write.Symbol]
					if !wok {
						continue
					}
					writeBits = reverseString(e.bitsOf(wc))
				}

				rules[turing.RuleKey[State[ST], string]{State: src, Read: turing.ReadSymbol(string(c))}] = turing.RuleValue[State[ST], string]{
					NextState: State[ST]{Phase: Write, Q: t.next, Bits: writeBits, PendingDelta: int(t.delta)},
					Write:     turing.WriteKeep[string](),
					Delta:     turing.Stay,
				}
			}
		}
	}

	// WRITE and MOVE phases: state-driven, so keyed on ANY regardless of
	// the symbol currently under the head.
	addWriteAndMoveRules(rules, rules, width)

	return turing.NewMachine[State[ST], string](rules, regular(m.InitState()), "0"), nil
}

// addWriteAndMoveRules discovers every WRITE/MOVE state reachable from the
// rules already installed (by READ-phase dispatch) and fills in their
// transitions. It is a closure-free fixed-point expansion: new WRITE/MOVE
// targets only ever point to states of the same two phases or to REGULAR,
// so one pass over the currently-known WRITE states suffices, followed by
// the MOVE states they can reach.
func addWriteAndMoveRules[ST comparable](rules turing.Rules[State[ST], string], seed turing.Rules[State[ST], string], width int) {
	writeStates := map[State[ST]]bool{}
	for _, v := range seed {
		if v.NextState.Phase == Write {
			writeStates[v.NextState] = true
		}
	}

	moveStates := map[State[ST]]bool{}
	for ws := range writeStates {
		cur := ws
		for len(cur.Bits) > 0 {
			b := cur.Bits[0]
			rest := cur.Bits[1:]
			var write turing.Write[string]
			if b == 'K' {
				write = turing.WriteKeep[string]()
			} else {
				write = turing.WriteSymbol(string(b))
			}

			var next State[ST]
			if len(rest) > 0 {
				next = State[ST]{Phase: Write, Q: cur.Q, Bits: rest, PendingDelta: cur.PendingDelta}
			} else if cur.PendingDelta == 0 {
				next = regular(cur.Q)
			} else {
				next = State[ST]{Phase: Move, Q: cur.Q, PendingDelta: width * cur.PendingDelta}
				moveStates[next] = true
			}

			// The last bit lands on the block's first cell; staying there
			// leaves the head on a block start for MOVE or REGULAR.
			delta := turing.Left
			if len(rest) == 0 {
				delta = turing.Stay
			}
			rules[turing.RuleKey[State[ST], string]{State: cur, Read: turing.ReadAny[string]()}] = turing.RuleValue[State[ST], string]{
				NextState: next,
				Write:     write,
				Delta:     delta,
			}

			cur = next
			if cur.Phase != Write {
				break
			}
		}
	}

	for ms := range moveStates {
		cur := ms
		for cur.PendingDelta != 0 {
			var delta turing.Delta
			var remaining int
			if cur.PendingDelta > 0 {
				delta = turing.Right
				remaining = cur.PendingDelta - 1
			} else {
				delta = turing.Left
				remaining = cur.PendingDelta + 1
			}

			var next State[ST]
			if remaining == 0 {
				next = regular(cur.Q)
			} else {
				next = State[ST]{Phase: Move, Q: cur.Q, PendingDelta: remaining}
			}

			rules[turing.RuleKey[State[ST], string]{State: cur, Read: turing.ReadAny[string]()}] = turing.RuleValue[State[ST], string]{
				NextState: next,
				Write:     turing.WriteKeep[string](),
				Delta:     delta,
			}

			cur = next
			if cur.Phase != Move {
				break
			}
		}
	}
}

func binaryStrings(n int) []string {
	if n == 0 {
		return []string{""}
	}
	if n < 0 {
		return nil
	}
	rest := binaryStrings(n - 1)
	out := make([]string, 0, len(rest)*2)
	for _, c := range "01" {
		for _, r := range rest {
			out = append(out, string(c)+r)
		}
	}
	return out
}

func decodeBinary(s string) int {
	v := 0
	for _, c := range s {
		v <<= 1
		if c == '1' {
			v |= 1
		}
	}
	return v
}

func reverseString(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}

func repeatRune(r byte, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = r
	}
	return string(b)
}
