package main

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qdeck/circuit"
)

func TestLayerCells(t *testing.T) {
	c, err := circuit.Build(4, []circuit.GateSpec{
		{Kind: circuit.CNOT, Qubits: []int{3, 0}},
		{Kind: circuit.CCNOT, Qubits: []int{0, 1, 2}},
		{Kind: circuit.SWAP, Qubits: []int{1, 3}},
		{Kind: circuit.Ry, Qubits: []int{0}, Angle: circuit.Angle(math.Pi / 2)},
	})
	require.NoError(t, err)
	layers := c.Layers()
	require.Len(t, layers, 3)

	first := layerCells(c, layers[0])
	assert.Equal(t, roleTarget, first[0].role)
	assert.Equal(t, rolePass, first[1].role)
	assert.Equal(t, rolePass, first[2].role)
	assert.Equal(t, roleControl, first[3].role)
	assert.False(t, first[0].vertAbove)
	assert.True(t, first[0].vertBelow)
	assert.True(t, first[3].vertAbove)
	assert.False(t, first[3].vertBelow)

	second := layerCells(c, layers[1])
	assert.Equal(t, roleControl, second[0].role)
	assert.Equal(t, roleControl, second[1].role)
	assert.Equal(t, roleTarget, second[2].role)
	assert.Equal(t, roleWire, second[3].role)

	third := layerCells(c, layers[2])
	assert.Equal(t, roleBox, third[0].role)
	assert.Equal(t, "RY", third[0].name)
	assert.Equal(t, "π/2", third[0].angle)
	assert.Equal(t, roleSwap, third[1].role)
	assert.Equal(t, roleSwap, third[3].role)
}

func TestRenderDiagram(t *testing.T) {
	c, err := circuit.Build(2, []circuit.GateSpec{
		{Kind: circuit.H, Qubits: []int{0}},
		{Kind: circuit.CNOT, Qubits: []int{0, 1}},
		{Kind: circuit.Tdg, Qubits: []int{1}},
	})
	require.NoError(t, err)

	out := renderDiagram(c)
	lines := strings.Split(out, "\n")
	// header, 3 lines per qubit, classical wire
	require.Len(t, lines, 1+3*2+1)

	assert.Contains(t, out, "q[0]")
	assert.Contains(t, out, "q[1]")
	assert.Contains(t, out, "┤  H  ├")
	assert.Contains(t, out, "┤ T†  ├")
	assert.Contains(t, out, "●")
	assert.Contains(t, out, "⊕")
	assert.Contains(t, out, "┤  M  ├")
	assert.Contains(t, lines[len(lines)-1], "╩2")
}

func TestPadCenter(t *testing.T) {
	assert.Equal(t, "  H  ", padCenter("H", 5, " "))
	assert.Equal(t, "─π/2─", padCenter("π/2", 5, "─"))
	assert.Equal(t, "toolong", padCenter("toolong", 5, " "))
}
