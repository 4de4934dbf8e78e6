// Package emulate compiles a k-tape machine into a behaviorally equivalent
// single-tape machine using the interleaved encoding of
// original_source/turing_machine/multitape.py's single-tape simulation:
// cell j of tape t lands at position j*k+t, and each cell carries a
// head-flag bit marking where a virtual head currently sits.
package emulate

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/turingkit/turing"
)

var (
	// ErrUnknownSymbol names a symbol outside the compiler's alphabet.
	// EncodeTapes takes no alphabet and does not check symbols, so no
	// function in this package returns it.
	ErrUnknownSymbol = errors.New("emulate: symbol not in alphabet")
	// ErrTapeCountMismatch is returned by EncodeTapes when heads does not
	// have one entry per tape.
	ErrTapeCountMismatch = errors.New("emulate: wrong number of tapes")
)

// Cell is the emulator's tape alphabet: an original-machine symbol plus the
// head-flag bit. The distinguished empty cell is Cell[SYM]{Sym: emptySym}.
type Cell[SYM comparable] struct {
	Sym  SYM
	Flag bool
}

// Phase tags a compiled state's role within one macro-step.
type Phase int

const (
	Regular Phase = iota
	Reading
	Write
	MoveOut
	MoveArrive
	MoveReturn
	MoveContinue
)

// State is one state of the emulated single-tape machine. Fields are
// reused across phases rather than carried as a tagged union with distinct
// payload types, so State stays a single comparable struct (turing.Rules
// keys must be comparable): Accum/SeenCount are meaningful only during
// Reading; Plan/TapeSlot/MoveRemaining/Dir only from Write onward.
type State[ST comparable] struct {
	Phase         Phase
	Q             ST
	TapeIndex     int
	Accum         string
	SeenCount     int
	Plan          string
	TapeSlot      int
	MoveRemaining int
	Dir           int
}

func regularState[ST comparable](q ST) State[ST] { return State[ST]{Phase: Regular, Q: q} }

// EncodeTapes interleaves k tapes (with initial heads, defaulting to 0 when
// heads is nil) into one Cell-alphabet tape: cell j of tape t lands at
// position j*k+t, flagged exactly at the k head positions.
func EncodeTapes[SYM comparable](tapes [][]SYM, heads []int, emptySym SYM) ([]Cell[SYM], error) {
	k := len(tapes)
	if heads == nil {
		heads = make([]int, k)
	}
	if len(heads) != k {
		return nil, fmt.Errorf("%w: %d heads for %d tapes", ErrTapeCountMismatch, len(heads), k)
	}

	maxLen := 0
	for i, t := range tapes {
		n := len(t)
		if heads[i]+1 > n {
			n = heads[i] + 1
		}
		if n > maxLen {
			maxLen = n
		}
	}
	if maxLen == 0 {
		maxLen = 1
	}

	out := make([]Cell[SYM], maxLen*k)
	for j := 0; j < maxLen; j++ {
		for t := 0; t < k; t++ {
			sym := emptySym
			if j < len(tapes[t]) {
				sym = tapes[t][j]
			}
			out[j*k+t] = Cell[SYM]{Sym: sym, Flag: j == heads[t]}
		}
	}
	return out, nil
}

// DecodeTapes is the inverse of EncodeTapes: it de-interleaves a Cell tape
// back into k plain tapes and reports the current head positions (the
// column index of each tape's flagged cell, or -1 if not found, which only
// happens for a malformed input).
func DecodeTapes[SYM comparable](single []Cell[SYM], k int) ([][]SYM, []int) {
	tapes := make([][]SYM, k)
	heads := make([]int, k)
	for t := range heads {
		heads[t] = -1
	}
	cols := (len(single) + k - 1) / k
	for t := 0; t < k; t++ {
		tapes[t] = make([]SYM, cols)
	}
	for pos, cell := range single {
		j, t := pos/k, pos%k
		tapes[t][j] = cell.Sym
		if cell.Flag {
			heads[t] = j
		}
	}
	return tapes, heads
}

func tupleKey[SYM comparable](vals []SYM) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = fmt.Sprintf("%v", v)
	}
	return strings.Join(parts, "\x1f")
}

func encodeAssignment[SYM comparable](k int, assignment map[int]SYM) string {
	parts := make([]string, k)
	for i := 0; i < k; i++ {
		if v, ok := assignment[i]; ok {
			parts[i] = "1:" + fmt.Sprintf("%v", v)
		} else {
			parts[i] = "0"
		}
	}
	return strings.Join(parts, "\x1f")
}

// partialAssignments enumerates every partial function from {0,...,k-1} to
// alphabet, i.e. (|alphabet|+1)^k possibilities. This is the combinatorial
// explosion the specification explicitly expects of this compiler; it is
// only tractable for the small alphabets and tape counts exercised here.
func partialAssignments[SYM comparable](k int, alphabet []SYM) []map[int]SYM {
	if k == 0 {
		return []map[int]SYM{{}}
	}
	rest := partialAssignments[SYM](k-1, alphabet)
	out := make([]map[int]SYM, 0, len(rest)*(len(alphabet)+1))
	for _, r := range rest {
		unset := map[int]SYM{}
		for i, v := range r {
			unset[i+1] = v
		}
		out = append(out, unset)
		for _, s := range alphabet {
			withSet := map[int]SYM{0: s}
			for i, v := range r {
				withSet[i+1] = v
			}
			out = append(out, withSet)
		}
	}
	return out
}

// CompileMultiMachine compiles m (a k-tape machine whose symbols are all
// drawn from alphabet) into a single-tape Cell[SYM]-alphabet machine.
func CompileMultiMachine[ST, SYM comparable](alphabet []SYM, emptySym SYM, m *turing.MultiMachine[ST, SYM]) *turing.Machine[State[ST], Cell[SYM]] {
	k := m.TapesCount()
	entries := m.Rules().Entries()

	exact := make(map[ST]map[string]turing.MultiRuleEntry[ST, SYM])
	anyByState := make(map[ST]turing.MultiRuleEntry[ST, SYM])
	states := make(map[ST]bool)
	for _, e := range entries {
		states[e.State] = true
		if e.Read.Wildcard {
			anyByState[e.State] = e
			continue
		}
		if exact[e.State] == nil {
			exact[e.State] = make(map[string]turing.MultiRuleEntry[ST, SYM])
		}
		exact[e.State][tupleKey(e.Read.Symbols)] = e
	}
	resolve := func(q ST, tuple []SYM) (turing.MultiTransition[ST, SYM], bool) {
		if e, ok := exact[q][tupleKey(tuple)]; ok {
			return e.Trans, true
		}
		if e, ok := anyByState[q]; ok {
			return e.Trans, true
		}
		return turing.MultiTransition[ST, SYM]{}, false
	}

	rules := make(turing.Rules[State[ST], Cell[SYM]])
	type plan struct {
		dest   ST
		writes []turing.Write[SYM]
		deltas []turing.Delta
	}
	plans := make(map[string]plan)

	qs := make([]ST, 0, len(states))
	for q := range states {
		qs = append(qs, q)
	}
	sort.Slice(qs, func(i, j int) bool { return fmt.Sprintf("%v", qs[i]) < fmt.Sprintf("%v", qs[j]) })

	// READING phase: accumulate the full k-symbol read vector, regardless
	// of which M-rule (if any) will eventually match it.
	for _, q := range qs {
		assignments := partialAssignments[SYM](k, alphabet)
		for _, assignment := range assignments {
			for ti := 0; ti < k; ti++ {
				src := State[ST]{
					Phase: Reading, Q: q, TapeIndex: ti,
					Accum: encodeAssignment(k, assignment), SeenCount: len(assignment),
				}
				if len(assignment) == 0 && ti == 0 {
					src = regularState(q)
				}

				for _, s := range alphabet {
					// unflagged: pass straight through
					rules[turing.RuleKey[State[ST], Cell[SYM]]{
						State: src, Read: turing.ReadSymbol(Cell[SYM]{Sym: s, Flag: false}),
					}] = turing.RuleValue[State[ST], Cell[SYM]]{
						NextState: State[ST]{
							Phase: Reading, Q: q, TapeIndex: (ti + 1) % k,
							Accum: encodeAssignment(k, assignment), SeenCount: len(assignment),
						},
						Write: turing.WriteKeep[Cell[SYM]](),
						Delta: turing.Right,
					}

					if _, already := assignment[ti]; already {
						// Invariant violation (a tape's head seen twice in
						// one sweep); fold back to a pass-through rather
						// than corrupt the accumulated vector.
						rules[turing.RuleKey[State[ST], Cell[SYM]]{
							State: src, Read: turing.ReadSymbol(Cell[SYM]{Sym: s, Flag: true}),
						}] = turing.RuleValue[State[ST], Cell[SYM]]{
							NextState: State[ST]{
								Phase: Reading, Q: q, TapeIndex: (ti + 1) % k,
								Accum: encodeAssignment(k, assignment), SeenCount: len(assignment),
							},
							Write: turing.WriteKeep[Cell[SYM]](),
							Delta: turing.Right,
						}
						continue
					}

					next := map[int]SYM{ti: s}
					for idx, v := range assignment {
						next[idx] = v
					}

					if len(next) < k {
						rules[turing.RuleKey[State[ST], Cell[SYM]]{
							State: src, Read: turing.ReadSymbol(Cell[SYM]{Sym: s, Flag: true}),
						}] = turing.RuleValue[State[ST], Cell[SYM]]{
							NextState: State[ST]{
								Phase: Reading, Q: q, TapeIndex: (ti + 1) % k,
								Accum: encodeAssignment(k, next), SeenCount: len(next),
							},
							Write: turing.WriteKeep[Cell[SYM]](),
							Delta: turing.Right,
						}
						continue
					}

					tuple := make([]SYM, k)
					for idx := 0; idx < k; idx++ {
						tuple[idx] = next[idx]
					}
					trans, ok := resolve(q, tuple)
					if !ok {
						continue // no M-rule matches: halt
					}

					planKey := fmt.Sprintf("%v\x1f%s", q, tupleKey(tuple))
					plans[planKey] = plan{dest: trans.NextState, writes: trans.Writes, deltas: trans.Deltas}

					rules[turing.RuleKey[State[ST], Cell[SYM]]{
						State: src, Read: turing.ReadSymbol(Cell[SYM]{Sym: s, Flag: true}),
					}] = turing.RuleValue[State[ST], Cell[SYM]]{
						NextState: State[ST]{Phase: Write, Plan: planKey, TapeSlot: k - 1, TapeIndex: ti},
						Write:     turing.WriteKeep[Cell[SYM]](),
						Delta:     turing.Stay,
					}
				}
			}
		}
	}

	// WRITE + per-head MOVE phase: one generated chain per plan.
	for planKey, p := range plans {
		for t := k - 1; t >= 0; t-- {
			write := p.writes[t]
			delta := p.deltas[t]

			for ti := 0; ti < k; ti++ {
				src := State[ST]{Phase: Write, Plan: planKey, TapeSlot: t, TapeIndex: ti}

				if ti != t {
					rules[turing.RuleKey[State[ST], Cell[SYM]]{State: src, Read: turing.ReadAny[Cell[SYM]]()}] = turing.RuleValue[State[ST], Cell[SYM]]{
						NextState: State[ST]{Phase: Write, Plan: planKey, TapeSlot: t, TapeIndex: (ti - 1 + k) % k},
						Write:     turing.WriteKeep[Cell[SYM]](),
						Delta:     turing.Left,
					}
					continue
				}

				for _, s := range alphabet {
					// not yet the flagged cell for this slot: keep scanning left
					rules[turing.RuleKey[State[ST], Cell[SYM]]{
						State: src, Read: turing.ReadSymbol(Cell[SYM]{Sym: s, Flag: false}),
					}] = turing.RuleValue[State[ST], Cell[SYM]]{
						NextState: State[ST]{Phase: Write, Plan: planKey, TapeSlot: t, TapeIndex: (ti - 1 + k) % k},
						Write:     turing.WriteKeep[Cell[SYM]](),
						Delta:     turing.Left,
					}

					newSym := s
					if !write.Keep {
						newSym = write.Symbol
					}

					if delta == turing.Stay {
						var next State[ST]
						if t > 0 {
							next = State[ST]{Phase: Write, Plan: planKey, TapeSlot: t - 1, TapeIndex: (ti - 1 + k) % k}
						} else {
							next = regularState(p.dest)
						}
						moveDelta := turing.Left
						if t == 0 {
							moveDelta = turing.Stay
						}
						rules[turing.RuleKey[State[ST], Cell[SYM]]{
							State: src, Read: turing.ReadSymbol(Cell[SYM]{Sym: s, Flag: true}),
						}] = turing.RuleValue[State[ST], Cell[SYM]]{
							NextState: next,
							Write:     turing.WriteSymbol(Cell[SYM]{Sym: newSym, Flag: true}),
							Delta:     moveDelta,
						}
						continue
					}

					dir := turing.Right
					if delta == turing.Left {
						dir = turing.Left
					}
					rules[turing.RuleKey[State[ST], Cell[SYM]]{
						State: src, Read: turing.ReadSymbol(Cell[SYM]{Sym: s, Flag: true}),
					}] = turing.RuleValue[State[ST], Cell[SYM]]{
						NextState: State[ST]{Phase: MoveOut, Plan: planKey, TapeSlot: t, MoveRemaining: k - 1, Dir: int(dir)},
						Write:     turing.WriteSymbol(Cell[SYM]{Sym: newSym, Flag: false}),
						Delta:     dir,
					}
				}
			}
		}

		// MOVE sub-machine: shared by every tape-slot whose delta is
		// nonzero, parameterized only by plan/slot/direction.
		for t := 0; t < k; t++ {
			delta := p.deltas[t]
			if delta == turing.Stay {
				continue
			}
			dir := turing.Right
			if delta == turing.Left {
				dir = turing.Left
			}
			back := turing.Left
			if dir == turing.Left {
				back = turing.Right
			}

			for remaining := k - 1; remaining >= 1; remaining-- {
				src := State[ST]{Phase: MoveOut, Plan: planKey, TapeSlot: t, MoveRemaining: remaining, Dir: int(dir)}
				var next State[ST]
				nextDelta := dir
				if remaining > 1 {
					next = State[ST]{Phase: MoveOut, Plan: planKey, TapeSlot: t, MoveRemaining: remaining - 1, Dir: int(dir)}
				} else {
					next = State[ST]{Phase: MoveArrive, Plan: planKey, TapeSlot: t, Dir: int(dir)}
				}
				rules[turing.RuleKey[State[ST], Cell[SYM]]{State: src, Read: turing.ReadAny[Cell[SYM]]()}] = turing.RuleValue[State[ST], Cell[SYM]]{
					NextState: next, Write: turing.WriteKeep[Cell[SYM]](), Delta: nextDelta,
				}
			}

			arrive := State[ST]{Phase: MoveArrive, Plan: planKey, TapeSlot: t, Dir: int(dir)}
			for _, s := range alphabet {
				rules[turing.RuleKey[State[ST], Cell[SYM]]{
					State: arrive, Read: turing.ReadSymbol(Cell[SYM]{Sym: s, Flag: false}),
				}] = turing.RuleValue[State[ST], Cell[SYM]]{
					NextState: State[ST]{Phase: MoveReturn, Plan: planKey, TapeSlot: t, MoveRemaining: k - 1, Dir: int(back)},
					Write:     turing.WriteSymbol(Cell[SYM]{Sym: s, Flag: true}),
					Delta:     back,
				}
			}

			for remaining := k - 1; remaining >= 1; remaining-- {
				src := State[ST]{Phase: MoveReturn, Plan: planKey, TapeSlot: t, MoveRemaining: remaining, Dir: int(back)}
				var next State[ST]
				if remaining > 1 {
					next = State[ST]{Phase: MoveReturn, Plan: planKey, TapeSlot: t, MoveRemaining: remaining - 1, Dir: int(back)}
				} else {
					next = State[ST]{Phase: MoveContinue, Plan: planKey, TapeSlot: t}
				}
				rules[turing.RuleKey[State[ST], Cell[SYM]]{State: src, Read: turing.ReadAny[Cell[SYM]]()}] = turing.RuleValue[State[ST], Cell[SYM]]{
					NextState: next, Write: turing.WriteKeep[Cell[SYM]](), Delta: back,
				}
			}

			cont := State[ST]{Phase: MoveContinue, Plan: planKey, TapeSlot: t}
			var next State[ST]
			contDelta := turing.Left
			if t > 0 {
				next = State[ST]{Phase: Write, Plan: planKey, TapeSlot: t - 1, TapeIndex: (t - 1 + k) % k}
			} else {
				next = regularState(p.dest)
				contDelta = turing.Stay
			}
			rules[turing.RuleKey[State[ST], Cell[SYM]]{State: cont, Read: turing.ReadAny[Cell[SYM]]()}] = turing.RuleValue[State[ST], Cell[SYM]]{
				NextState: next, Write: turing.WriteKeep[Cell[SYM]](), Delta: contDelta,
			}
		}
	}

	return turing.NewMachine[State[ST], Cell[SYM]](rules, regularState(m.InitState()), Cell[SYM]{Sym: emptySym})
}
