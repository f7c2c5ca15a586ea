package engine

import (
	"math/bits"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Statevector holds the 2^n amplitudes of an n-qubit pure state. Bit b of an
// index (0 = least significant) is qubit b's value.
type Statevector struct {
	amplitudes []complex128
	numQubits  int
}

// newStatevector returns |0…0⟩.
func newStatevector(numQubits int) *Statevector {
	amps := make([]complex128, 1<<numQubits)
	amps[0] = 1
	return &Statevector{amplitudes: amps, numQubits: numQubits}
}

// NewStatevector wraps a copy of amps. The length must be a power of two;
// the norm is not checked.
func NewStatevector(amps []complex128) (*Statevector, error) {
	if len(amps) == 0 || len(amps)&(len(amps)-1) != 0 {
		return nil, errors.Errorf("amplitude count %d is not a power of two", len(amps))
	}
	cp := make([]complex128, len(amps))
	copy(cp, amps)
	return &Statevector{amplitudes: cp, numQubits: bits.TrailingZeros(uint(len(amps)))}, nil
}

// NumQubits returns n.
func (s *Statevector) NumQubits() int { return s.numQubits }

// Len returns 2^n.
func (s *Statevector) Len() int { return len(s.amplitudes) }

// Amplitude returns the amplitude of basis state i.
func (s *Statevector) Amplitude(i int) complex128 { return s.amplitudes[i] }

// Amplitudes returns a copy of the amplitude array.
func (s *Statevector) Amplitudes() []complex128 {
	out := make([]complex128, len(s.amplitudes))
	copy(out, s.amplitudes)
	return out
}

// Probabilities returns |a_i|² for every basis state.
func (s *Statevector) Probabilities() []float64 {
	probs := make([]float64, len(s.amplitudes))
	for i, a := range s.amplitudes {
		probs[i] = abs2(a)
	}
	return probs
}

// Norm returns the sum of squared magnitudes.
func (s *Statevector) Norm() float64 {
	var sum float64
	for _, a := range s.amplitudes {
		sum += abs2(a)
	}
	return sum
}

func abs2(a complex128) float64 {
	return real(a)*real(a) + imag(a)*imag(a)
}

// Bitstring renders a basis index as an outcome string, qubit n-1 first.
func Bitstring(index, numQubits int) string {
	s := strconv.FormatUint(uint64(index), 2)
	if len(s) >= numQubits {
		return s
	}
	return strings.Repeat("0", numQubits-len(s)) + s
}
