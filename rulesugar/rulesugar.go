// Package rulesugar expands the shorthand rule forms spec.md §4.C leaves as
// convenience sugar (grouped keys, partial multi-tape specs, shortcut
// values) into the normalized tables turing.Rules and turing.MultiRules
// consume. It is grounded on original_source/turing_machine/patches.py and
// multitape.py's patch_partial.
package rulesugar

import (
	"sort"

	"github.com/turingkit/turing"
)

// RawTarget is the shorthand right-hand side of a single-tape rule before
// shortcut expansion. A nil NextState means "keep the current state" (the
// Python original's None-in-new-state-slot convention).
type RawTarget[ST, SYM comparable] struct {
	NextState *ST
	Write     turing.Write[SYM]
	Delta     turing.Delta
}

// GroupedRule is one flattened-but-not-yet-expanded single-tape rule. A nil
// or empty ReadGroup means the state's ANY rule; a ReadGroup with more than
// one symbol duplicates Target across every symbol in the group
// (expand_symbol_set).
type GroupedRule[ST, SYM comparable] struct {
	State     ST
	ReadGroup []SYM
	Target    RawTarget[ST, SYM]
}

// Expand runs flatten, expand_symbol_set, and expand_shortcut over rules in
// one pass, producing a normalized turing.Rules table. Rules are applied in
// slice order; a later rule occupying a key already produced by an earlier
// group-expansion wins (last-writer-wins), matching a Python dict's
// assignment semantics for the same collision.
func Expand[ST, SYM comparable](rules []GroupedRule[ST, SYM]) turing.Rules[ST, SYM] {
	out := make(turing.Rules[ST, SYM], len(rules))
	for _, gr := range rules {
		next := gr.State
		if gr.Target.NextState != nil {
			next = *gr.Target.NextState
		}
		value := turing.RuleValue[ST, SYM]{
			NextState: next,
			Write:     gr.Target.Write,
			Delta:     gr.Target.Delta,
		}

		if len(gr.ReadGroup) == 0 {
			out[turing.RuleKey[ST, SYM]{State: gr.State, Read: turing.ReadAny[SYM]()}] = value
			continue
		}
		for _, sym := range gr.ReadGroup {
			out[turing.RuleKey[ST, SYM]{State: gr.State, Read: turing.ReadSymbol(sym)}] = value
		}
	}
	return out
}

// PartialRule is one entry of a partial_multitape spec: ReadPartial and
// WritePartial map tape index to symbol for only the tapes the author cares
// to pin down; DeltaPartial maps tape index to a non-zero Delta. A nil
// ReadPartial means "the state's whole-tuple ANY rule" (spec.md §4.C's "a
// None read-partial emits a single ANY rule").
type PartialRule[ST, SYM comparable] struct {
	State        ST
	ReadPartial  map[int]SYM
	NextState    *ST
	WritePartial map[int]SYM
	DeltaPartial map[int]turing.Delta
}

// PartialMultitape Cartesian-fills each PartialRule's unspecified tape
// indices over alphabet, producing concrete k-tuple rules installed into a
// fresh turing.MultiRules for tapesCount tapes. Indices absent from
// WritePartial default to KEEP (for both the tapes pinned in ReadPartial and
// the tapes filled in by the Cartesian expansion); indices absent from
// DeltaPartial default to Stay.
func PartialMultitape[ST, SYM comparable](tapesCount int, alphabet []SYM, rules []PartialRule[ST, SYM]) (*turing.MultiRules[ST, SYM], error) {
	mr := turing.NewMultiRules[ST, SYM](tapesCount)

	for _, pr := range rules {
		next := pr.State
		if pr.NextState != nil {
			next = *pr.NextState
		}

		if pr.ReadPartial == nil {
			writes := make([]turing.Write[SYM], tapesCount)
			deltas := make([]turing.Delta, tapesCount)
			for i := 0; i < tapesCount; i++ {
				if s, ok := pr.WritePartial[i]; ok {
					writes[i] = turing.WriteSymbol(s)
				} else {
					writes[i] = turing.WriteKeep[SYM]()
				}
				deltas[i] = pr.DeltaPartial[i] // zero value is Stay
			}
			if err := mr.Set(pr.State, turing.MultiRead[SYM]{Wildcard: true}, turing.MultiTransition[ST, SYM]{
				NextState: next, Writes: writes, Deltas: deltas,
			}); err != nil {
				return nil, err
			}
			continue
		}

		missing := make([]int, 0, tapesCount)
		for i := 0; i < tapesCount; i++ {
			if _, ok := pr.ReadPartial[i]; !ok {
				missing = append(missing, i)
			}
		}
		sort.Ints(missing)

		for _, combo := range cartesian(alphabet, len(missing)) {
			read := make([]SYM, tapesCount)
			for i := 0; i < tapesCount; i++ {
				if s, ok := pr.ReadPartial[i]; ok {
					read[i] = s
				}
			}
			for j, idx := range missing {
				read[idx] = combo[j]
			}

			writes := make([]turing.Write[SYM], tapesCount)
			deltas := make([]turing.Delta, tapesCount)
			for i := 0; i < tapesCount; i++ {
				if s, ok := pr.WritePartial[i]; ok {
					writes[i] = turing.WriteSymbol(s)
				} else {
					writes[i] = turing.WriteKeep[SYM]()
				}
				deltas[i] = pr.DeltaPartial[i]
			}

			if err := mr.Set(pr.State, turing.MultiRead[SYM]{Symbols: read}, turing.MultiTransition[ST, SYM]{
				NextState: next, Writes: writes, Deltas: deltas,
			}); err != nil {
				return nil, err
			}
		}
	}

	return mr, nil
}

// cartesian returns every length-n tuple drawn from alphabet, in
// lexicographic order over alphabet's given order. n == 0 yields a single
// empty tuple.
func cartesian[SYM comparable](alphabet []SYM, n int) [][]SYM {
	if n == 0 {
		return [][]SYM{{}}
	}
	rest := cartesian(alphabet, n-1)
	out := make([][]SYM, 0, len(alphabet)*len(rest))
	for _, s := range alphabet {
		for _, tail := range rest {
			combo := make([]SYM, 0, n)
			combo = append(combo, s)
			combo = append(combo, tail...)
			out = append(out, combo)
		}
	}
	return out
}
