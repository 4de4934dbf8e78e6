package turing

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// MultiRead is a multi-tape rule key's read side: either an exact tuple of
// per-tape symbols or the ANY wildcard, which matches any full tuple.
type MultiRead[SYM comparable] struct {
	Wildcard bool
	Symbols  []SYM
}

// MultiTransition is the right-hand side of a multi-tape rule: one Write
// and one Delta per tape.
type MultiTransition[ST, SYM comparable] struct {
	NextState ST
	Writes    []Write[SYM]
	Deltas    []Delta
}

type multiKey[ST comparable] struct {
	State ST
	hash  string
}

// wildcardHash can never collide with an encoded tuple: encodeTuple never
// produces a string starting with a NUL byte.
const wildcardHash = "\x00any"

func encodeTuple[SYM comparable](symbols []SYM) string {
	parts := make([]string, len(symbols))
	for i, s := range symbols {
		parts[i] = fmt.Sprintf("%v", s)
	}
	return strings.Join(parts, "\x1f")
}

type multiEntry[ST, SYM comparable] struct {
	read  MultiRead[SYM]
	trans MultiTransition[ST, SYM]
}

// MultiRules is a k-tape transition table: at most one entry per (state,
// read) key, validated for tuple arity as rules are added.
type MultiRules[ST, SYM comparable] struct {
	tapesCount int
	table      map[multiKey[ST]]multiEntry[ST, SYM]
}

// NewMultiRules constructs an empty rule table for a tapesCount-tape
// machine.
func NewMultiRules[ST, SYM comparable](tapesCount int) *MultiRules[ST, SYM] {
	return &MultiRules[ST, SYM]{
		tapesCount: tapesCount,
		table:      make(map[multiKey[ST]]multiEntry[ST, SYM]),
	}
}

// TapesCount returns the number of tapes this table was built for.
func (r *MultiRules[ST, SYM]) TapesCount() int { return r.tapesCount }

// Set installs a rule. trans.Writes and trans.Deltas, and read.Symbols
// when read is not the wildcard, must each have exactly TapesCount()
// entries, or ErrRuleArityMismatch is returned.
func (r *MultiRules[ST, SYM]) Set(state ST, read MultiRead[SYM], trans MultiTransition[ST, SYM]) error {
	if !read.Wildcard && len(read.Symbols) != r.tapesCount {
		return fmt.Errorf("%w: read has %d symbols, want %d", ErrRuleArityMismatch, len(read.Symbols), r.tapesCount)
	}
	if len(trans.Writes) != r.tapesCount {
		return fmt.Errorf("%w: write has %d entries, want %d", ErrRuleArityMismatch, len(trans.Writes), r.tapesCount)
	}
	if len(trans.Deltas) != r.tapesCount {
		return fmt.Errorf("%w: delta has %d entries, want %d", ErrRuleArityMismatch, len(trans.Deltas), r.tapesCount)
	}

	hash := wildcardHash
	if !read.Wildcard {
		hash = encodeTuple(read.Symbols)
	}
	r.table[multiKey[ST]{State: state, hash: hash}] = multiEntry[ST, SYM]{read: read, trans: trans}
	return nil
}

func (r *MultiRules[ST, SYM]) lookup(state ST, symbols []SYM) (MultiTransition[ST, SYM], bool) {
	if v, ok := r.table[multiKey[ST]{State: state, hash: encodeTuple(symbols)}]; ok {
		return v.trans, true
	}
	if v, ok := r.table[multiKey[ST]{State: state, hash: wildcardHash}]; ok {
		return v.trans, true
	}
	return MultiTransition[ST, SYM]{}, false
}

func (r *MultiRules[ST, SYM]) clone() *MultiRules[ST, SYM] {
	out := NewMultiRules[ST, SYM](r.tapesCount)
	for k, v := range r.table {
		out.table[k] = v
	}
	return out
}

// MultiRuleEntry pairs a multi-tape rule's state, read side, and transition,
// returned by Entries in a deterministic order.
type MultiRuleEntry[ST, SYM comparable] struct {
	State ST
	Read  MultiRead[SYM]
	Trans MultiTransition[ST, SYM]
}

// Entries returns every rule in r, ordered deterministically by the
// (state, read) key's textual form. See Rules.Entries for why this is
// needed instead of ranging over the table directly.
func (r *MultiRules[ST, SYM]) Entries() []MultiRuleEntry[ST, SYM] {
	out := make([]MultiRuleEntry[ST, SYM], 0, len(r.table))
	for k, v := range r.table {
		out = append(out, MultiRuleEntry[ST, SYM]{State: k.State, Read: v.read, Trans: v.trans})
	}
	sort.Slice(out, func(i, j int) bool {
		return multiRuleKeyString(out[i].State, out[i].Read) < multiRuleKeyString(out[j].State, out[j].Read)
	})
	return out
}

func multiRuleKeyString[ST, SYM comparable](state ST, read MultiRead[SYM]) string {
	if read.Wildcard {
		return fmt.Sprintf("%v\x1fANY", state)
	}
	return fmt.Sprintf("%v\x1f%s", state, encodeTuple(read.Symbols))
}

// MultiMachine generalizes Machine to k synchronized tapes and heads.
type MultiMachine[ST, SYM comparable] struct {
	tapesCount  int
	rules       *MultiRules[ST, SYM]
	initState   ST
	emptySymbol SYM
}

// NewMultiMachine constructs a MultiMachine. rules must have been built
// for exactly tapesCount tapes; it is cloned, so later mutation of rules
// does not affect subsequent runs.
func NewMultiMachine[ST, SYM comparable](tapesCount int, rules *MultiRules[ST, SYM], initState ST, emptySymbol SYM) (*MultiMachine[ST, SYM], error) {
	if rules.tapesCount != tapesCount {
		return nil, fmt.Errorf("%w: rules built for %d, machine has %d", ErrTapeCountMismatch, rules.tapesCount, tapesCount)
	}
	return &MultiMachine[ST, SYM]{
		tapesCount:  tapesCount,
		rules:       rules.clone(),
		initState:   initState,
		emptySymbol: emptySymbol,
	}, nil
}

// TapesCount returns k.
func (m *MultiMachine[ST, SYM]) TapesCount() int { return m.tapesCount }

// InitState returns the machine's initial state.
func (m *MultiMachine[ST, SYM]) InitState() ST { return m.initState }

// EmptySymbol returns the machine's empty symbol.
func (m *MultiMachine[ST, SYM]) EmptySymbol() SYM { return m.emptySymbol }

// Rules returns a clone of the machine's rule table.
func (m *MultiMachine[ST, SYM]) Rules() *MultiRules[ST, SYM] { return m.rules.clone() }

// Run executes the machine against k input tapes, with heads defaulting
// to 0 on every tape when nil. See Machine.Run for the maxSteps
// convention.
func (m *MultiMachine[ST, SYM]) Run(tapes [][]SYM, heads []int, maxSteps *int) ([][]SYM, bool, error) {
	return m.RunContext(context.Background(), tapes, heads, maxSteps)
}

// RunContext is Run with a context.Context polled once per step.
func (m *MultiMachine[ST, SYM]) RunContext(ctx context.Context, tapes [][]SYM, heads []int, maxSteps *int) ([][]SYM, bool, error) {
	if len(tapes) != m.tapesCount {
		return nil, false, fmt.Errorf("%w: expected %d input tapes, got %d", ErrTapeCountMismatch, m.tapesCount, len(tapes))
	}
	if heads == nil {
		heads = make([]int, m.tapesCount)
	}
	if len(heads) != m.tapesCount {
		return nil, false, fmt.Errorf("%w: expected %d heads, got %d", ErrHeadCountMismatch, m.tapesCount, len(heads))
	}

	ts := make([][]SYM, m.tapesCount)
	hs := make([]int, m.tapesCount)
	for i := range tapes {
		if heads[i] < 0 {
			return nil, false, fmt.Errorf("%w: tape %d head %d", ErrNegativeHead, i, heads[i])
		}
		t := make([]SYM, len(tapes[i]))
		copy(t, tapes[i])
		for heads[i] >= len(t) {
			t = append(t, m.emptySymbol)
		}
		ts[i] = t
		hs[i] = heads[i]
	}

	state := m.initState
	steps := 0
	read := make([]SYM, m.tapesCount)

	for {
		if err := ctx.Err(); err != nil {
			return nil, false, err //nolint:wrapcheck
		}
		if maxSteps != nil && steps >= *maxSteps {
			return ts, false, nil
		}

		for i := range ts {
			read[i] = ts[i][hs[i]]
		}

		trans, ok := m.rules.lookup(state, read)
		if !ok {
			return ts, true, nil // soft halt
		}

		// Writes happen in full before any head moves, so a halting move
		// never leaves a write half-applied.
		for i, w := range trans.Writes {
			if !w.Keep {
				ts[i][hs[i]] = w.Symbol
			}
		}
		state = trans.NextState
		steps++

		halted := false
		for i, delta := range trans.Deltas {
			if delta == Stay {
				continue
			}
			newHead := hs[i] + int(delta)
			if newHead < 0 {
				halted = true
				break
			}
			if newHead == len(ts[i]) {
				ts[i] = append(ts[i], m.emptySymbol)
			}
			hs[i] = newHead
		}
		if halted {
			return ts, true, nil
		}
	}
}
