package turing

import (
	"context"
	"fmt"
)

// Machine is a deterministic single-tape Turing machine: an immutable rule
// table, an initial state, and the symbol that fills newly materialized
// tape cells.
type Machine[ST, SYM comparable] struct {
	rules       Rules[ST, SYM]
	initState   ST
	emptySymbol SYM
}

// NewMachine constructs a Machine. rules is cloned, so mutating the
// caller's map afterwards does not alter subsequent runs.
func NewMachine[ST, SYM comparable](rules Rules[ST, SYM], initState ST, emptySymbol SYM) *Machine[ST, SYM] {
	return &Machine[ST, SYM]{
		rules:       rules.clone(),
		initState:   initState,
		emptySymbol: emptySymbol,
	}
}

// InitState returns the machine's initial state.
func (m *Machine[ST, SYM]) InitState() ST { return m.initState }

// EmptySymbol returns the machine's empty symbol.
func (m *Machine[ST, SYM]) EmptySymbol() SYM { return m.emptySymbol }

// Rules returns a clone of the machine's rule table, for compilers
// (binarize, emulate, universal) that need to enumerate a source machine's
// transitions. Mutating the returned map does not affect m.
func (m *Machine[ST, SYM]) Rules() Rules[ST, SYM] { return m.rules.clone() }

// Steps builds a max_steps bound of n for Run/RunContext. A nil *int means
// unbounded; a pointer to 0 means "don't take a single step".
func Steps(n int) *int { return &n }

// Run executes the machine to completion, or until maxSteps (when non-nil)
// is exhausted, starting with the given tape and head. It returns the
// final tape and whether the machine halted on its own (as opposed to
// exiting because maxSteps ran out). The only error is a negative head.
func (m *Machine[ST, SYM]) Run(tape []SYM, head int, maxSteps *int) ([]SYM, bool, error) {
	return m.RunContext(context.Background(), tape, head, maxSteps)
}

// RunContext is Run with a context.Context that is polled once per step;
// a canceled context returns ctx.Err().
func (m *Machine[ST, SYM]) RunContext(ctx context.Context, tape []SYM, head int, maxSteps *int) ([]SYM, bool, error) {
	if head < 0 {
		return nil, false, fmt.Errorf("%w: %d", ErrNegativeHead, head)
	}

	t := make([]SYM, len(tape))
	copy(t, tape)
	for head >= len(t) {
		t = append(t, m.emptySymbol)
	}

	state := m.initState
	steps := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, false, err //nolint:wrapcheck
		}
		if maxSteps != nil && steps >= *maxSteps {
			return t, false, nil
		}

		trans, ok := m.rules.lookup(state, t[head])
		if !ok {
			return t, true, nil // soft halt: no rule matched
		}

		if !trans.Write.Keep {
			t[head] = trans.Write.Symbol
		}
		state = trans.NextState
		steps++

		if trans.Delta != Stay {
			newHead := head + int(trans.Delta)
			if newHead < 0 {
				return t, true, nil // hard halt: head would go negative
			}
			if newHead == len(t) {
				t = append(t, m.emptySymbol)
			}
			head = newHead
		}
	}
}
