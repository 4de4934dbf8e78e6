package render_test

import (
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/turingkit/turing/render"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	m.Run()
}

func TestTapeBracketsHeadCell(t *testing.T) {
	out := render.Tape([]string{"1", "0", "1"}, 1)
	assert.Equal(t, "@1: | 1 |[0]| 1 |", out)
}

func TestTapeHeadPastEnd(t *testing.T) {
	out := render.Tape([]int{1, 1}, 5)
	assert.True(t, strings.HasPrefix(out, "@5: "))
	assert.NotContains(t, out, "[")
}

func TestMultiTapeOneLinePerTape(t *testing.T) {
	out := render.MultiTape([][]string{{"a", "b"}, {"x"}}, []int{0, 0})
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "tape 0")
	assert.Contains(t, lines[1], "tape 1")
}

func TestTraceOneLinePerStep(t *testing.T) {
	steps := []render.Step[string, string]{
		{State: "q0", Tape: []string{"1"}, Head: 0},
		{State: "q1", Tape: []string{"0"}, Head: 0},
	}
	out := render.Trace(steps)
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "state=q0")
	assert.Contains(t, lines[1], "state=q1")
}
