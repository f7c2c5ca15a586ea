package circuit

import (
	"math"
	"math/cmplx"
	"strconv"
	"strings"
)

// Kind identifies a supported gate. The set is closed; every Kind has an
// entry in gateTable.
type Kind int

const (
	X Kind = iota
	Y
	Z
	H
	S
	Sdg
	T
	Tdg
	Rx
	Ry
	Rz
	Phase
	CNOT
	CZ
	SWAP
	CCNOT

	numKinds
)

// Matrix is a dense 2^k × 2^k unitary in the gate's operand order. The first
// operand is the most significant bit of the local row/column index, so CNOT
// reads as the textbook [[1,0,0,0],[0,1,0,0],[0,0,0,1],[0,0,1,0]].
type Matrix [][]complex128

// Dim returns the number of rows.
func (m Matrix) Dim() int { return len(m) }

// gateInfo is one row of the gate table.
type gateInfo struct {
	name     string // canonical request name
	mnemonic string // OpenQASM 2.0 qelib1 name
	category string
	arity    int
	angled   bool
	unitary  func(theta float64) Matrix
}

var invSqrt2 = complex(1/math.Sqrt2, 0)

// gateTable is indexed by Kind and never mutated after init.
var gateTable = [numKinds]gateInfo{
	X: {name: "X", mnemonic: "x", category: "Pauli", arity: 1, unitary: func(float64) Matrix {
		return Matrix{{0, 1}, {1, 0}}
	}},
	Y: {name: "Y", mnemonic: "y", category: "Pauli", arity: 1, unitary: func(float64) Matrix {
		return Matrix{{0, -1i}, {1i, 0}}
	}},
	Z: {name: "Z", mnemonic: "z", category: "Pauli", arity: 1, unitary: func(float64) Matrix {
		return Matrix{{1, 0}, {0, -1}}
	}},
	H: {name: "H", mnemonic: "h", category: "Clifford", arity: 1, unitary: func(float64) Matrix {
		return Matrix{{invSqrt2, invSqrt2}, {invSqrt2, -invSqrt2}}
	}},
	S: {name: "S", mnemonic: "s", category: "Clifford", arity: 1, unitary: func(float64) Matrix {
		return diag(1, 1i)
	}},
	Sdg: {name: "Sdg", mnemonic: "sdg", category: "Clifford", arity: 1, unitary: func(float64) Matrix {
		return diag(1, -1i)
	}},
	T: {name: "T", mnemonic: "t", category: "Phase", arity: 1, unitary: func(float64) Matrix {
		return diag(1, cmplx.Exp(complex(0, math.Pi/4)))
	}},
	Tdg: {name: "Tdg", mnemonic: "tdg", category: "Phase", arity: 1, unitary: func(float64) Matrix {
		return diag(1, cmplx.Exp(complex(0, -math.Pi/4)))
	}},
	Rx: {name: "Rx", mnemonic: "rx", category: "Rotation", arity: 1, angled: true, unitary: func(theta float64) Matrix {
		c, s := math.Cos(theta/2), math.Sin(theta/2)
		return Matrix{
			{complex(c, 0), complex(0, -s)},
			{complex(0, -s), complex(c, 0)},
		}
	}},
	Ry: {name: "Ry", mnemonic: "ry", category: "Rotation", arity: 1, angled: true, unitary: func(theta float64) Matrix {
		c, s := math.Cos(theta/2), math.Sin(theta/2)
		return Matrix{
			{complex(c, 0), complex(-s, 0)},
			{complex(s, 0), complex(c, 0)},
		}
	}},
	Rz: {name: "Rz", mnemonic: "rz", category: "Rotation", arity: 1, angled: true, unitary: func(theta float64) Matrix {
		return diag(cmplx.Exp(complex(0, -theta/2)), cmplx.Exp(complex(0, theta/2)))
	}},
	Phase: {name: "Phase", mnemonic: "p", category: "Phase", arity: 1, angled: true, unitary: func(theta float64) Matrix {
		return diag(1, cmplx.Exp(complex(0, theta)))
	}},
	CNOT: {name: "CNOT", mnemonic: "cx", category: "Multi Qubit", arity: 2, unitary: func(float64) Matrix {
		return permutation(4, map[int]int{2: 3, 3: 2})
	}},
	CZ: {name: "CZ", mnemonic: "cz", category: "Multi Qubit", arity: 2, unitary: func(float64) Matrix {
		return diag(1, 1, 1, -1)
	}},
	SWAP: {name: "SWAP", mnemonic: "swap", category: "Multi Qubit", arity: 2, unitary: func(float64) Matrix {
		return permutation(4, map[int]int{1: 2, 2: 1})
	}},
	CCNOT: {name: "CCNOT", mnemonic: "ccx", category: "Multi Qubit", arity: 3, unitary: func(float64) Matrix {
		return permutation(8, map[int]int{6: 7, 7: 6})
	}},
}

// diag builds a diagonal matrix.
func diag(entries ...complex128) Matrix {
	m := identity(len(entries))
	for i, e := range entries {
		m[i][i] = e
	}
	return m
}

func identity(dim int) Matrix {
	m := make(Matrix, dim)
	for i := range m {
		m[i] = make([]complex128, dim)
		m[i][i] = 1
	}
	return m
}

// permutation builds the identity with the listed rows remapped: column c
// moves to row swaps[c].
func permutation(dim int, swaps map[int]int) Matrix {
	m := make(Matrix, dim)
	for i := range m {
		m[i] = make([]complex128, dim)
	}
	for col := range dim {
		row := col
		if to, ok := swaps[col]; ok {
			row = to
		}
		m[row][col] = 1
	}
	return m
}

// Kinds returns every supported gate kind in table order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, numKinds)
	for k := range numKinds {
		kinds = append(kinds, k)
	}
	return kinds
}

// Valid reports whether k names a row of the gate table.
func (k Kind) Valid() bool { return k >= 0 && k < numKinds }

func (k Kind) String() string {
	if !k.Valid() {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return gateTable[k].name
}

// Arity returns the number of operand qubits the gate acts on.
func (k Kind) Arity() int { return gateTable[k].arity }

// RequiresAngle reports whether the gate is parameterized by a rotation angle.
func (k Kind) RequiresAngle() bool { return gateTable[k].angled }

// Mnemonic returns the qelib1.inc gate name.
func (k Kind) Mnemonic() string { return gateTable[k].mnemonic }

// Category groups gates for display.
func (k Kind) Category() string { return gateTable[k].category }

// Unitary returns a freshly allocated matrix for the gate. theta is ignored
// by gates without an angle.
func (k Kind) Unitary(theta float64) Matrix { return gateTable[k].unitary(theta) }

// ParseKind resolves a request gate name. Canonical names ("CNOT", "Sdg") are
// matched exactly; QASM mnemonics ("cx", "sdg") are accepted as well.
func ParseKind(name string) (Kind, bool) {
	for k := range numKinds {
		if gateTable[k].name == name {
			return k, true
		}
	}
	lower := strings.ToLower(name)
	for k := range numKinds {
		if gateTable[k].mnemonic == lower {
			return k, true
		}
	}
	return 0, false
}
