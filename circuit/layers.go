package circuit

// Layer is a set of gates that touch disjoint qubits and can be drawn in the
// same column. Indices refer to positions in the circuit's gate sequence.
type Layer []int

// Layers groups gates into moments: each gate is placed one step after the
// latest gate sharing any of its qubits, so the gate-to-gate dependency order
// is preserved.
func (c *Circuit) Layers() []Layer {
	// Track the next free step on each qubit
	nextFree := make([]int, c.numQubits)
	var layers []Layer

	for i, g := range c.gates {
		step := 0
		for _, q := range spanOf(g) {
			step = max(step, nextFree[q])
		}
		for _, q := range spanOf(g) {
			nextFree[q] = step + 1
		}
		for len(layers) <= step {
			layers = append(layers, nil)
		}
		layers[step] = append(layers[step], i)
	}
	return layers
}

// Depth returns the number of layers.
func (c *Circuit) Depth() int { return len(c.Layers()) }

// spanOf returns every wire between the lowest and highest operand, since a
// drawn multi-qubit gate occupies the wires it crosses.
func spanOf(g GateSpec) []int {
	lo, hi := g.Qubits[0], g.Qubits[0]
	for _, q := range g.Qubits[1:] {
		lo, hi = min(lo, q), max(hi, q)
	}
	span := make([]int, 0, hi-lo+1)
	for q := lo; q <= hi; q++ {
		span = append(span, q)
	}
	return span
}
