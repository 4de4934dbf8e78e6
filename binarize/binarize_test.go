package binarize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turingkit/turing"
	"github.com/turingkit/turing/binarize"
)

func threeSymbolEncoder(t *testing.T) *binarize.BinEncoder[string] {
	t.Helper()
	enc, err := binarize.NewBinEncoder([]string{"_", "0", "1"}, "_")
	require.NoError(t, err)
	return enc
}

func TestNewBinEncoderWidth(t *testing.T) {
	enc := threeSymbolEncoder(t)
	assert.Equal(t, 2, enc.Width()) // ceil(log2(3)) == 2

	single, err := binarize.NewBinEncoder([]string{"_"}, "_")
	require.NoError(t, err)
	assert.Equal(t, 1, single.Width())
}

func TestEncodeInputDecodeOutputRoundTrip(t *testing.T) {
	enc := threeSymbolEncoder(t)

	bits, err := enc.EncodeInput([]string{"0", "1", "_"})
	require.NoError(t, err)
	assert.Len(t, bits, 6) // 3 symbols * 2-bit blocks

	decoded, err := enc.DecodeOutput(bits)
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "1", "_"}, decoded)
}

func TestEncodeInputRejectsUnknownSymbol(t *testing.T) {
	enc := threeSymbolEncoder(t)
	_, err := enc.EncodeInput([]string{"Z"})
	assert.ErrorIs(t, err, binarize.ErrUnknownSymbol)
}

// writeOneMachine is a minimal Σ={_,0,1} machine: from its only live state
// it writes "1" under the head regardless of what it reads, then halts.
func writeOneMachine(t *testing.T) *turing.Machine[string, string] {
	t.Helper()
	rules := turing.Rules[string, string]{
		{State: "q0", Read: turing.ReadAny[string]()}: {
			NextState: "halt",
			Write:     turing.WriteSymbol("1"),
			Delta:     turing.Right,
		},
	}
	return turing.NewMachine(rules, "q0", "_")
}

func TestRoundTripBinarizeWriteOne(t *testing.T) {
	enc := threeSymbolEncoder(t)
	src := writeOneMachine(t)

	input := []string{"_", "_", "_"}
	wantTape, wantHalted, err := src.Run(input, 0, nil)
	require.NoError(t, err)
	require.True(t, wantHalted)

	compiled, err := binarize.EncodeMachine[string, string](enc, src)
	require.NoError(t, err)

	binTape, err := enc.EncodeInput(input)
	require.NoError(t, err)

	outTape, _, err := compiled.Run(binTape, 0, turing.Steps(200))
	require.NoError(t, err)

	decoded, err := enc.DecodeOutput(outTape)
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(decoded), 1)
	require.GreaterOrEqual(t, len(wantTape), 1)
	assert.Equal(t, wantTape[0], decoded[0])
}
