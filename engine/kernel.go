package engine

import (
	"slices"

	"qdeck/circuit"
)

// kernel applies one gate to a statevector by index-group partition. For a
// gate on k qubits the 2^n indices split into 2^(n-k) groups that differ only
// in the operand bits; each group's 2^k amplitudes are multiplied by the gate
// matrix independently of every other group.
type kernel struct {
	u       []complex128 // row-major dim×dim
	dim     int
	offsets []int // index delta of local basis state l from the group base
	sorted  []int // operand bit positions, ascending
}

func newKernel(g circuit.GateSpec) *kernel {
	m := g.Unitary()
	k := len(g.Qubits)
	dim := 1 << k

	u := make([]complex128, 0, dim*dim)
	for _, row := range m {
		u = append(u, row...)
	}

	// The first operand is the most significant local bit
	offsets := make([]int, dim)
	for l := range dim {
		for j, q := range g.Qubits {
			if l>>(k-1-j)&1 == 1 {
				offsets[l] |= 1 << q
			}
		}
	}

	sorted := slices.Clone(g.Qubits)
	slices.Sort(sorted)

	return &kernel{u: u, dim: dim, offsets: offsets, sorted: sorted}
}

// groups returns how many independent groups a statevector of n qubits has.
func (k *kernel) groups(numQubits int) int {
	return 1 << (numQubits - len(k.sorted))
}

// base expands group counter g into the smallest index of its group by
// inserting a zero at every operand bit position.
func (k *kernel) base(g int) int {
	for _, q := range k.sorted {
		low := g & (1<<q - 1)
		g = (g>>q)<<(q+1) | low
	}
	return g
}

// run updates groups [from, to). Distinct group ranges touch disjoint
// indices, so ranges may run concurrently.
func (k *kernel) run(amps []complex128, from, to int) {
	in := make([]complex128, k.dim)
	for g := from; g < to; g++ {
		b := k.base(g)
		for l, off := range k.offsets {
			in[l] = amps[b+off]
		}
		for r := range k.dim {
			row := k.u[r*k.dim : (r+1)*k.dim]
			var acc complex128
			for c, v := range row {
				if v != 0 {
					acc += v * in[c]
				}
			}
			amps[b+k.offsets[r]] = acc
		}
	}
}
