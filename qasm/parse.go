package qasm

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"qdeck/circuit"
)

var (
	gateRegex    = regexp.MustCompile(`^(\w+)(?:\s*\(\s*(` + anglePattern + `)\s*\))?\s+(q\[\d+\](?:\s*,\s*q\[\d+\])*)\s*;?$`)
	operandRegex = regexp.MustCompile(`q\[(\d+)\]`)
	measureRegex = regexp.MustCompile(`^measure\s+q\[(\d+)\]\s*->\s*c\[(\d+)\]\s*;?$`)
	qregRegex    = regexp.MustCompile(`^qreg\s+q\[(\d+)\]\s*;?$`)
	cregRegex    = regexp.MustCompile(`^creg\s+c\[(\d+)\]\s*;?$`)
)

// ParseError reports the first line Parse could not accept.
type ParseError struct {
	Line   int // 1-based
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("qasm line %d: %s", e.Line, e.Reason)
}

func parseErr(line int, format string, args ...any) error {
	return errors.WithStack(&ParseError{Line: line, Reason: fmt.Sprintf(format, args...)})
}

// Parse reads the subset Serialize produces: one qreg named q, an optional
// creg c of the same size, gates from the gate table, and optionally the full
// measurement q[i] -> c[i] after the last gate. Angles may be pi expressions.
// Operand ranges are left to circuit.Build.
func Parse(text string) (int, []circuit.GateSpec, error) {
	numQubits := -1
	var specs []circuit.GateSpec
	measured := make(map[int]bool)

	for i, line := range strings.Split(text, "\n") {
		lineNo := i + 1
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "OPENQASM") || strings.HasPrefix(line, "include") {
			continue
		}

		if m := qregRegex.FindStringSubmatch(line); m != nil {
			if numQubits >= 0 {
				return 0, nil, parseErr(lineNo, "more than one qreg")
			}
			numQubits, _ = strconv.Atoi(m[1])
			continue
		}
		if numQubits < 0 {
			return 0, nil, parseErr(lineNo, "statement before qreg")
		}

		if m := cregRegex.FindStringSubmatch(line); m != nil {
			if n, _ := strconv.Atoi(m[1]); n != numQubits {
				return 0, nil, parseErr(lineNo, "creg size %d does not match qreg size %d", n, numQubits)
			}
			continue
		}

		if m := measureRegex.FindStringSubmatch(line); m != nil {
			q, _ := strconv.Atoi(m[1])
			b, _ := strconv.Atoi(m[2])
			if q != b {
				return 0, nil, parseErr(lineNo, "measure q[%d] into c[%d]: only q[i] -> c[i] is supported", q, b)
			}
			measured[q] = true
			continue
		}

		m := gateRegex.FindStringSubmatch(line)
		if m == nil {
			return 0, nil, parseErr(lineNo, "unsupported statement %q", line)
		}
		if len(measured) > 0 {
			return 0, nil, parseErr(lineNo, "gate after measurement")
		}
		spec, err := parseGate(lineNo, m)
		if err != nil {
			return 0, nil, err
		}
		specs = append(specs, spec)
	}

	if numQubits < 0 {
		return 0, nil, errors.WithStack(&ParseError{Reason: "missing qreg"})
	}
	if len(measured) > 0 {
		for q := range numQubits {
			if !measured[q] {
				return 0, nil, errors.WithStack(&ParseError{Reason: fmt.Sprintf("partial measurement: q[%d] not measured", q)})
			}
		}
	}
	return numQubits, specs, nil
}

func parseGate(lineNo int, m []string) (circuit.GateSpec, error) {
	kind, ok := circuit.ParseKind(m[1])
	if !ok {
		return circuit.GateSpec{}, parseErr(lineNo, "unknown gate %q", m[1])
	}

	spec := circuit.GateSpec{Kind: kind}
	if m[2] != "" {
		theta, ok := ParseAngle(m[2])
		if !ok {
			return circuit.GateSpec{}, parseErr(lineNo, "bad angle %q", m[2])
		}
		spec.Angle = circuit.Angle(theta)
	}
	for _, op := range operandRegex.FindAllStringSubmatch(m[3], -1) {
		q, err := strconv.Atoi(op[1])
		if err != nil {
			return circuit.GateSpec{}, parseErr(lineNo, "bad qubit index %q", op[1])
		}
		spec.Qubits = append(spec.Qubits, q)
	}
	return spec, nil
}

// ParseCircuit parses text and validates the result into a Circuit.
func ParseCircuit(text string) (*circuit.Circuit, error) {
	n, specs, err := Parse(text)
	if err != nil {
		return nil, err
	}
	c, err := circuit.Build(n, specs)
	if err != nil {
		return nil, errors.Wrap(err, "qasm describes an invalid circuit")
	}
	return c, nil
}
