// Package qasm converts circuits to and from OpenQASM 2.0 text.
package qasm

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"qdeck/circuit"
)

const header = "OPENQASM 2.0;\ninclude \"qelib1.inc\";\n"

// Serialize renders c as OpenQASM 2.0. The output depends only on c: gates
// appear in circuit order and the implicit full measurement closes the
// program.
func Serialize(c *circuit.Circuit) string {
	var sb strings.Builder
	sb.WriteString(header)
	fmt.Fprintf(&sb, "qreg q[%d];\n", c.NumQubits())
	fmt.Fprintf(&sb, "creg c[%d];\n", c.NumQubits())

	for _, g := range c.Gates() {
		writeGate(&sb, g)
	}
	for _, m := range c.Measurements() {
		fmt.Fprintf(&sb, "measure q[%d] -> c[%d];\n", m.Qubit, m.Bit)
	}
	return sb.String()
}

func writeGate(sb *strings.Builder, g circuit.GateSpec) {
	sb.WriteString(g.Kind.Mnemonic())
	if g.Angle != nil {
		fmt.Fprintf(sb, "(%s)", FormatAngle(*g.Angle))
	}
	for i, q := range g.Qubits {
		if i == 0 {
			sb.WriteByte(' ')
		} else {
			sb.WriteByte(',')
		}
		fmt.Fprintf(sb, "q[%d]", q)
	}
	sb.WriteString(";\n")
}

// FormatAngle renders theta as the shortest decimal literal that parses back
// to the same float64, without an exponent.
func FormatAngle(theta float64) string {
	return decimal.NewFromFloat(theta).String()
}
