package circuit

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ValidationError reports a malformed circuit description. It is always
// returned before any simulation state exists.
type ValidationError struct {
	Gate   int // position in the request, -1 for circuit-level problems
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Gate < 0 {
		return "invalid circuit: " + e.Reason
	}
	return fmt.Sprintf("invalid gate %d: %s", e.Gate, e.Reason)
}

func invalid(gate int, format string, args ...any) error {
	return errors.WithStack(&ValidationError{Gate: gate, Reason: fmt.Sprintf(format, args...)})
}

// GateSpec is one validated (or to-be-validated) gate application.
type GateSpec struct {
	Kind   Kind
	Qubits []int    // operands in gate order, e.g. control then target
	Angle  *float64 // radians; set only for angled kinds
}

// Theta returns the gate angle, or 0 for gates without one.
func (g GateSpec) Theta() float64 {
	if g.Angle == nil {
		return 0
	}
	return *g.Angle
}

// Unitary returns the gate's matrix in operand order.
func (g GateSpec) Unitary() Matrix { return g.Kind.Unitary(g.Theta()) }

func (g GateSpec) clone() GateSpec {
	out := GateSpec{Kind: g.Kind, Qubits: append([]int(nil), g.Qubits...)}
	if g.Angle != nil {
		a := *g.Angle
		out.Angle = &a
	}
	return out
}

// Angle is a convenience for building angled GateSpecs in code.
func Angle(theta float64) *float64 { return &theta }

// RawGate is the wire form of a request gate: {type, params, angle}, where
// params lists operand qubit indices.
type RawGate struct {
	Type   string   `json:"type" yaml:"type"`
	Params []int    `json:"params" yaml:"params"`
	Angle  *float64 `json:"angle,omitempty" yaml:"angle,omitempty"`
}

// Measurement maps a measured qubit onto a classical bit.
type Measurement struct {
	Qubit int
	Bit   int
}

// Circuit is an immutable, validated gate sequence over NumQubits qubits.
// Every circuit ends with an implicit measurement of all qubits.
type Circuit struct {
	numQubits int
	gates     []GateSpec
}

// Build validates specs against the gate table and numQubits.
func Build(numQubits int, specs []GateSpec) (*Circuit, error) {
	if numQubits <= 0 {
		return nil, invalid(-1, "numQubits must be positive, got %d", numQubits)
	}

	gates := make([]GateSpec, 0, len(specs))
	for i, spec := range specs {
		if err := validate(i, numQubits, spec); err != nil {
			return nil, err
		}
		gates = append(gates, spec.clone())
	}

	return &Circuit{numQubits: numQubits, gates: gates}, nil
}

// BuildRaw resolves gate names and then validates like Build.
func BuildRaw(numQubits int, raw []RawGate) (*Circuit, error) {
	if numQubits <= 0 {
		return nil, invalid(-1, "numQubits must be positive, got %d", numQubits)
	}

	specs := make([]GateSpec, len(raw))
	for i, r := range raw {
		kind, ok := ParseKind(r.Type)
		if !ok {
			return nil, invalid(i, "unknown gate kind %q", r.Type)
		}
		specs[i] = GateSpec{Kind: kind, Qubits: r.Params, Angle: r.Angle}
	}
	return Build(numQubits, specs)
}

func validate(i, numQubits int, spec GateSpec) error {
	if !spec.Kind.Valid() {
		return invalid(i, "unknown gate kind %s", spec.Kind)
	}
	k := spec.Kind

	if len(spec.Qubits) != k.Arity() {
		return invalid(i, "%s takes %d operand(s), got %d", k, k.Arity(), len(spec.Qubits))
	}

	for j, q := range spec.Qubits {
		if q < 0 || q >= numQubits {
			return invalid(i, "%s operand %d: qubit %d out of range [0,%d)", k, j, q, numQubits)
		}
		for _, prev := range spec.Qubits[:j] {
			if prev == q {
				return invalid(i, "%s uses qubit %d more than once", k, q)
			}
		}
	}

	switch {
	case k.RequiresAngle() && spec.Angle == nil:
		return invalid(i, "%s requires an angle", k)
	case !k.RequiresAngle() && spec.Angle != nil:
		return invalid(i, "%s does not take an angle", k)
	case spec.Angle != nil && (math.IsNaN(*spec.Angle) || math.IsInf(*spec.Angle, 0)):
		return invalid(i, "%s angle must be finite", k)
	}
	return nil
}

// NumQubits returns the register width.
func (c *Circuit) NumQubits() int { return c.numQubits }

// Len returns the number of gates, excluding the trailing measurement.
func (c *Circuit) Len() int { return len(c.gates) }

// Gate returns a copy of the i-th gate.
func (c *Circuit) Gate(i int) GateSpec { return c.gates[i].clone() }

// Gates returns a copy of the gate sequence.
func (c *Circuit) Gates() []GateSpec {
	out := make([]GateSpec, len(c.gates))
	for i, g := range c.gates {
		out[i] = g.clone()
	}
	return out
}

// Measurements returns the fixed terminal measurement: qubit i into bit i,
// ascending.
func (c *Circuit) Measurements() []Measurement {
	ms := make([]Measurement, c.numQubits)
	for q := range c.numQubits {
		ms[q] = Measurement{Qubit: q, Bit: q}
	}
	return ms
}

// Key returns a string that is identical for structurally identical
// circuits. Angles are keyed by their exact bit pattern.
func (c *Circuit) Key() string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(c.numQubits))
	for _, g := range c.gates {
		sb.WriteByte('|')
		sb.WriteString(g.Kind.Mnemonic())
		for _, q := range g.Qubits {
			sb.WriteByte(',')
			sb.WriteString(strconv.Itoa(q))
		}
		if g.Angle != nil {
			sb.WriteByte('@')
			sb.WriteString(strconv.FormatUint(math.Float64bits(*g.Angle), 16))
		}
	}
	return sb.String()
}
