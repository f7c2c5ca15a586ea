package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"qdeck/circuit"
	"qdeck/qasm"
	"qdeck/runner"
)

// loadRequest reads a request file. JSON and YAML carry the full request
// schema; a .qasm file supplies only the circuit.
func loadRequest(path string) (runner.Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return runner.Request{}, errors.Wrap(err, "read request")
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".qasm":
		return requestFromQASM(string(data))
	case ".json", ".yaml", ".yml":
		return decodeRequest(data)
	default:
		return runner.Request{}, errors.Errorf("unsupported request file type %q", ext)
	}
}

// decodeRequest parses JSON or YAML; YAML 1.2 accepts JSON documents as is.
func decodeRequest(data []byte) (runner.Request, error) {
	var req runner.Request
	if err := yaml.Unmarshal(data, &req); err != nil {
		return runner.Request{}, errors.Wrap(err, "decode request")
	}
	return req, nil
}

func requestFromQASM(text string) (runner.Request, error) {
	n, specs, err := qasm.Parse(text)
	if err != nil {
		return runner.Request{}, err
	}
	return runner.Request{NumQubits: n, Gates: rawGates(specs)}, nil
}

func rawGates(specs []circuit.GateSpec) []circuit.RawGate {
	raw := make([]circuit.RawGate, len(specs))
	for i, s := range specs {
		raw[i] = circuit.RawGate{Type: s.Kind.String(), Params: s.Qubits, Angle: s.Angle}
	}
	return raw
}
