package turing_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turingkit/turing"
)

func repeatRules() turing.Rules[string, string] {
	return turing.Rules[string, string]{
		{State: "b", Read: turing.ReadSymbol("_")}: {NextState: "c", Write: turing.WriteSymbol("0"), Delta: turing.Right},
		{State: "c", Read: turing.ReadSymbol("_")}: {NextState: "e", Write: turing.WriteKeep[string](), Delta: turing.Right},
		{State: "e", Read: turing.ReadSymbol("_")}: {NextState: "f", Write: turing.WriteSymbol("1"), Delta: turing.Right},
		{State: "f", Read: turing.ReadSymbol("_")}: {NextState: "b", Write: turing.WriteKeep[string](), Delta: turing.Right},
	}
}

func TestMachineRunProducesAlternatingPattern(t *testing.T) {
	t.Parallel()

	m := turing.NewMachine(repeatRules(), "b", "_")
	tape, halted, err := m.Run(nil, 0, turing.Steps(8))
	require.NoError(t, err)
	assert.False(t, halted)
	assert.Equal(t, []string{"0", "_", "1", "_", "0", "_", "1", "_"}, tape[:8])
}

func TestMachineRunHaltsWhenNoRuleMatches(t *testing.T) {
	t.Parallel()

	rules := turing.Rules[string, string]{
		{State: "q0", Read: turing.ReadSymbol("1")}: {NextState: "q1", Write: turing.WriteSymbol("0"), Delta: turing.Stay},
	}
	m := turing.NewMachine(rules, "q0", "_")

	tape, halted, err := m.Run([]string{"1"}, 0, nil)
	require.NoError(t, err)
	assert.True(t, halted)
	assert.Equal(t, []string{"0"}, tape)
}

func TestMachineRunStopsAtMaxSteps(t *testing.T) {
	t.Parallel()

	rules := turing.Rules[string, string]{
		{State: "loop", Read: turing.ReadSymbol("_")}: {NextState: "loop", Write: turing.WriteKeep[string](), Delta: turing.Right},
	}
	m := turing.NewMachine(rules, "loop", "_")

	tape, halted, err := m.Run(nil, 0, turing.Steps(5))
	require.NoError(t, err)
	assert.False(t, halted)
	assert.Equal(t, 6, len(tape)) // the starting cell plus one appended per rightward move
}

func TestMachineRunAnyRuleFallsBackWhenNoExactMatch(t *testing.T) {
	t.Parallel()

	rules := turing.Rules[string, string]{
		{State: "q0", Read: turing.ReadSymbol("1")}: {NextState: "halt", Write: turing.WriteSymbol("x"), Delta: turing.Stay},
		{State: "q0", Read: turing.ReadAny[string]()}: {NextState: "q0", Write: turing.WriteKeep[string](), Delta: turing.Right},
	}
	m := turing.NewMachine(rules, "q0", "_")

	tape, halted, err := m.Run([]string{"_", "_", "1"}, 0, turing.Steps(10))
	require.NoError(t, err)
	assert.True(t, halted)
	assert.Equal(t, []string{"_", "_", "x"}, tape)
}

func TestMachineRunRejectsNegativeHead(t *testing.T) {
	t.Parallel()

	m := turing.NewMachine(turing.Rules[string, string]{}, "q0", "_")
	tape, _, err := m.Run(nil, -1, nil)
	require.ErrorIs(t, err, turing.ErrNegativeHead)
	assert.Nil(t, tape)
}

func TestMachineRunHaltsWhenHeadWouldGoNegative(t *testing.T) {
	t.Parallel()

	rules := turing.Rules[string, string]{
		{State: "q0", Read: turing.ReadSymbol("_")}: {NextState: "q0", Write: turing.WriteKeep[string](), Delta: turing.Left},
	}
	m := turing.NewMachine(rules, "q0", "_")

	tape, halted, err := m.Run(nil, 0, turing.Steps(100))
	require.NoError(t, err)
	assert.True(t, halted)
	assert.Equal(t, []string{"_"}, tape)
}

func TestMachineRunContextCanceled(t *testing.T) {
	t.Parallel()

	rules := turing.Rules[string, string]{
		{State: "loop", Read: turing.ReadSymbol("_")}: {NextState: "loop", Write: turing.WriteKeep[string](), Delta: turing.Right},
	}
	m := turing.NewMachine(rules, "loop", "_")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := m.RunContext(ctx, nil, 0, nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestMachineRulesIsClonedAndImmutable(t *testing.T) {
	t.Parallel()

	rules := repeatRules()
	m := turing.NewMachine(rules, "b", "_")
	rules[turing.RuleKey[string, string]{State: "b", Read: turing.ReadSymbol("_")}] = turing.RuleValue[string, string]{
		NextState: "b", Write: turing.WriteSymbol("9"), Delta: turing.Stay,
	}

	tape, _, err := m.Run(nil, 0, turing.Steps(1))
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "_"}, tape) // mutating the caller's map after NewMachine must not change m

	got := m.Rules()
	got[turing.RuleKey[string, string]{State: "b", Read: turing.ReadSymbol("_")}] = turing.RuleValue[string, string]{}
	tape2, _, err := m.Run(nil, 0, turing.Steps(1))
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "_"}, tape2) // mutating a Rules() snapshot must not change m either
}

func incrementMachine() *turing.Machine[string, string] {
	return turing.NewMachine(turing.Rules[string, string]{
		{State: "scan", Read: turing.ReadSymbol("0")}: {NextState: "scan", Write: turing.WriteKeep[string](), Delta: turing.Right},
		{State: "scan", Read: turing.ReadSymbol("1")}: {NextState: "scan", Write: turing.WriteKeep[string](), Delta: turing.Right},
		{State: "scan", Read: turing.ReadSymbol("_")}: {NextState: "carry", Write: turing.WriteKeep[string](), Delta: turing.Left},
		{State: "carry", Read: turing.ReadSymbol("0")}: {NextState: "done", Write: turing.WriteSymbol("1"), Delta: turing.Stay},
		{State: "carry", Read: turing.ReadSymbol("1")}: {NextState: "carry", Write: turing.WriteSymbol("0"), Delta: turing.Left},
		{State: "carry", Read: turing.ReadSymbol("_")}: {NextState: "done", Write: turing.WriteSymbol("1"), Delta: turing.Stay},
	}, "scan", "_")
}

func TestMachineRunIncrementsBinaryTape(t *testing.T) {
	t.Parallel()

	m := incrementMachine()
	tape, halted, err := m.Run([]string{"1", "0", "1"}, 0, nil)
	require.NoError(t, err)
	assert.True(t, halted)
	assert.Equal(t, []string{"1", "1", "0", "_"}, tape) // scanning past the end appended one empty cell
}

func multiRepeatRules(t *testing.T) *turing.MultiRules[string, string] {
	t.Helper()

	mr := turing.NewMultiRules[string, string](2)
	require.NoError(t, mr.Set("copy", turing.MultiRead[string]{Symbols: []string{"1", "_"}}, turing.MultiTransition[string, string]{
		NextState: "copy",
		Writes:    []turing.Write[string]{turing.WriteKeep[string](), turing.WriteSymbol("1")},
		Deltas:    []turing.Delta{turing.Right, turing.Right},
	}))
	require.NoError(t, mr.Set("copy", turing.MultiRead[string]{Symbols: []string{"_", "_"}}, turing.MultiTransition[string, string]{
		NextState: "done",
		Writes:    []turing.Write[string]{turing.WriteKeep[string](), turing.WriteKeep[string]()},
		Deltas:    []turing.Delta{turing.Stay, turing.Stay},
	}))
	return mr
}

func TestMultiMachineRunCopiesTapeZeroOntoTapeOne(t *testing.T) {
	t.Parallel()

	mr := multiRepeatRules(t)
	m, err := turing.NewMultiMachine[string, string](2, mr, "copy", "_")
	require.NoError(t, err)

	tapes, halted, err := m.Run([][]string{{"1", "1", "1"}, {}}, nil, turing.Steps(10))
	require.NoError(t, err)
	assert.True(t, halted)
	assert.Equal(t, []string{"1", "1", "1"}, tapes[1][:3])
}

func TestMultiMachineRunRejectsWrongTapeCount(t *testing.T) {
	t.Parallel()

	mr := multiRepeatRules(t)
	m, err := turing.NewMultiMachine[string, string](2, mr, "copy", "_")
	require.NoError(t, err)

	_, _, err = m.Run([][]string{{"1"}}, nil, nil)
	require.ErrorIs(t, err, turing.ErrTapeCountMismatch)
}

func TestMultiMachineRunRejectsWrongHeadCount(t *testing.T) {
	t.Parallel()

	mr := multiRepeatRules(t)
	m, err := turing.NewMultiMachine[string, string](2, mr, "copy", "_")
	require.NoError(t, err)

	_, _, err = m.Run([][]string{{"1"}, {"1"}}, []int{0}, nil)
	require.ErrorIs(t, err, turing.ErrHeadCountMismatch)
}

func TestMultiMachineRunRejectsNegativeHead(t *testing.T) {
	t.Parallel()

	mr := multiRepeatRules(t)
	m, err := turing.NewMultiMachine[string, string](2, mr, "copy", "_")
	require.NoError(t, err)

	_, _, err = m.Run([][]string{{"1"}, {"1"}}, []int{0, -1}, nil)
	require.ErrorIs(t, err, turing.ErrNegativeHead)
}

func TestNewMultiMachineRejectsTapeCountMismatch(t *testing.T) {
	t.Parallel()

	mr := turing.NewMultiRules[string, string](2)
	_, err := turing.NewMultiMachine[string, string](3, mr, "copy", "_")
	require.ErrorIs(t, err, turing.ErrTapeCountMismatch)
}

func TestMultiRulesSetRejectsArityMismatch(t *testing.T) {
	t.Parallel()

	mr := turing.NewMultiRules[string, string](2)
	err := mr.Set("s", turing.MultiRead[string]{Symbols: []string{"1"}}, turing.MultiTransition[string, string]{
		NextState: "s",
		Writes:    []turing.Write[string]{turing.WriteKeep[string](), turing.WriteKeep[string]()},
		Deltas:    []turing.Delta{turing.Stay, turing.Stay},
	})
	require.ErrorIs(t, err, turing.ErrRuleArityMismatch)
}

func TestMultiMachineWildcardRuleMatchesAnyTuple(t *testing.T) {
	t.Parallel()

	mr := turing.NewMultiRules[string, string](2)
	require.NoError(t, mr.Set("s", turing.MultiRead[string]{Wildcard: true}, turing.MultiTransition[string, string]{
		NextState: "halt",
		Writes:    []turing.Write[string]{turing.WriteSymbol("x"), turing.WriteSymbol("y")},
		Deltas:    []turing.Delta{turing.Stay, turing.Stay},
	}))
	m, err := turing.NewMultiMachine[string, string](2, mr, "s", "_")
	require.NoError(t, err)

	for _, in := range [][]string{{"0", "1"}, {"1", "0"}, {"_", "_"}} {
		tapes, halted, err := m.Run([][]string{{in[0]}, {in[1]}}, nil, turing.Steps(1))
		require.NoError(t, err)
		assert.False(t, halted) // the one-step bound runs out before "halt" is looked up
		assert.Equal(t, "x", tapes[0][0])
		assert.Equal(t, "y", tapes[1][0])
	}
}

func TestRulesEntriesIsSortedAndDeterministic(t *testing.T) {
	t.Parallel()

	entries := repeatRules().Entries()
	require.Len(t, entries, 4)
	for i := 1; i < len(entries); i++ {
		assert.Less(t, entries[i-1].Key.State, entries[i].Key.State)
	}
}

func TestMultiRulesEntriesIsSortedAndDeterministic(t *testing.T) {
	t.Parallel()

	mr := turing.NewMultiRules[string, string](2)
	require.NoError(t, mr.Set("b", turing.MultiRead[string]{Symbols: []string{"1", "1"}}, turing.MultiTransition[string, string]{
		NextState: "b", Writes: []turing.Write[string]{turing.WriteKeep[string](), turing.WriteKeep[string]()}, Deltas: []turing.Delta{turing.Stay, turing.Stay},
	}))
	require.NoError(t, mr.Set("a", turing.MultiRead[string]{Wildcard: true}, turing.MultiTransition[string, string]{
		NextState: "a", Writes: []turing.Write[string]{turing.WriteKeep[string](), turing.WriteKeep[string]()}, Deltas: []turing.Delta{turing.Stay, turing.Stay},
	}))

	entries := mr.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].State)
	assert.Equal(t, "b", entries[1].State)
}
