package engine

import (
	"math"
	"math/cmplx"
)

// QubitProbability is the marginal measurement distribution of one qubit.
type QubitProbability struct {
	Prob0 float64
	Prob1 float64
}

// QubitProbabilities returns every qubit's marginal distribution.
func (s *Statevector) QubitProbabilities() []QubitProbability {
	probs := make([]QubitProbability, s.numQubits)
	for i, a := range s.amplitudes {
		p := abs2(a)
		for q := range s.numQubits {
			if i&(1<<q) != 0 {
				probs[q].Prob1 += p
			} else {
				probs[q].Prob0 += p
			}
		}
	}
	return probs
}

// DensityMatrix is a single-qubit reduced density matrix.
type DensityMatrix [2][2]complex128

// ReducedDensity traces out every qubit except q. It walks the amplitude
// pairs that differ in bit q, so the full 2^n×2^n density matrix is never
// formed.
func (s *Statevector) ReducedDensity(q int) DensityMatrix {
	var rho DensityMatrix
	bit := 1 << q
	for i, a := range s.amplitudes {
		if i&bit != 0 {
			continue
		}
		b := s.amplitudes[i|bit]
		rho[0][0] += a * cmplx.Conj(a)
		rho[1][1] += b * cmplx.Conj(b)
		rho[0][1] += a * cmplx.Conj(b)
	}
	rho[1][0] = cmplx.Conj(rho[0][1])
	return rho
}

// BlochVector is the (x, y, z) point of a qubit's reduced state.
type BlochVector struct {
	X, Y, Z float64
}

// Length is 1 for a pure single-qubit state and shrinks with entanglement.
func (b BlochVector) Length() float64 {
	return math.Sqrt(b.X*b.X + b.Y*b.Y + b.Z*b.Z)
}

// Bloch returns the Bloch vector of qubit q. From ρ = (I + xX + yY + zZ)/2,
// ρ01 = (x - iy)/2.
func (s *Statevector) Bloch(q int) BlochVector {
	rho := s.ReducedDensity(q)
	return BlochVector{
		X: 2 * real(rho[0][1]),
		Y: -2 * imag(rho[0][1]),
		Z: real(rho[0][0]) - real(rho[1][1]),
	}
}

// Purity returns Tr(ρ²) of qubit q, between 0.5 and 1.
func (s *Statevector) Purity(q int) float64 {
	r := s.Bloch(q).Length()
	return (1 + r*r) / 2
}

// Entropy returns the von Neumann entropy (bits) of qubit q.
func (s *Statevector) Entropy(q int) float64 {
	r := min(s.Bloch(q).Length(), 1)
	var h float64
	for _, lambda := range []float64{(1 + r) / 2, (1 - r) / 2} {
		if lambda > 0 {
			h -= lambda * math.Log2(lambda)
		}
	}
	return h
}

// BasisAmplitude describes one basis state with non-negligible weight.
type BasisAmplitude struct {
	Index       int
	Bits        string
	Amplitude   complex128
	Probability float64
	Phase       float64
}

// NonZero lists basis states whose probability exceeds threshold, in index
// order.
func (s *Statevector) NonZero(threshold float64) []BasisAmplitude {
	var out []BasisAmplitude
	for i, a := range s.amplitudes {
		p := abs2(a)
		if p <= threshold {
			continue
		}
		out = append(out, BasisAmplitude{
			Index:       i,
			Bits:        Bitstring(i, s.numQubits),
			Amplitude:   a,
			Probability: p,
			Phase:       cmplx.Phase(a),
		})
	}
	return out
}
