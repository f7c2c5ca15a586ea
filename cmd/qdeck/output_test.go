package main

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qdeck/circuit"
	"qdeck/internal/config"
	"qdeck/runner"
	"qdeck/sampler"
)

func testConfig() *config.Config {
	return &config.Config{
		MaxQubits:         8,
		ParallelThreshold: 14,
		Workers:           2,
		DefaultShots:      100,
		NormTolerance:     1e-9,
		ShotChunk:         64,
		QASMCacheSize:     4,
		Log:               config.LogConfig{Level: "info"},
	}
}

func seed(v uint64) *uint64 { return &v }

func runBell(t *testing.T, keepState bool) (*runner.Runner, runner.Request, *runner.Result) {
	t.Helper()
	r, err := runner.New(testConfig())
	require.NoError(t, err)
	req := runner.Request{
		NumQubits: 2,
		Gates: []circuit.RawGate{
			{Type: "H", Params: []int{0}},
			{Type: "CNOT", Params: []int{0, 1}},
		},
		Shots:     200,
		Seed:      seed(11),
		KeepState: keepState,
	}
	res, err := r.Run(context.Background(), req)
	require.NoError(t, err)
	return r, req, res
}

func TestHistogram(t *testing.T) {
	rows := histogram(sampler.Counts{"11": 30, "00": 10, "01": 60})
	require.Len(t, rows, 3)
	assert.Equal(t, "00", rows[0].outcome)
	assert.Equal(t, "01", rows[1].outcome)
	assert.Equal(t, "11", rows[2].outcome)
	assert.InDelta(t, 0.6, rows[1].prob, 1e-12)
}

func TestBar(t *testing.T) {
	assert.Equal(t, "██░░", bar(0.5, 4))
	assert.Equal(t, "░░░░", bar(0, 4))
	assert.Equal(t, "████", bar(1, 4))
}

func TestWriteJSON(t *testing.T) {
	_, _, res := runBell(t, false)

	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, res))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Len(t, decoded, 2)
	assert.Equal(t, res.QASM, decoded["qasm"])

	counts := decoded["counts"].(map[string]any)
	var total float64
	for outcome, n := range counts {
		assert.Contains(t, []string{"00", "11"}, outcome)
		total += n.(float64)
	}
	assert.Equal(t, 200.0, total)
}

func TestWriteText(t *testing.T) {
	_, _, res := runBell(t, true)

	var buf bytes.Buffer
	require.NoError(t, writeText(&buf, res, true))
	out := buf.String()

	assert.Contains(t, out, "Counts (200 shots)")
	assert.Contains(t, out, "cx q[0],q[1];")
	assert.Contains(t, out, "Final State")
	assert.Contains(t, out, "q[1]")
	assert.Contains(t, out, res.RunID.String())
}

func TestRenderStateLimitsRows(t *testing.T) {
	gates := make([]circuit.RawGate, 6)
	for q := range gates {
		gates[q] = circuit.RawGate{Type: "H", Params: []int{q}}
	}
	r, err := runner.New(testConfig())
	require.NoError(t, err)
	res, err := r.Run(context.Background(), runner.Request{NumQubits: 6, Gates: gates, KeepState: true})
	require.NoError(t, err)

	out := renderState(res.State)
	assert.Contains(t, out, "… 32 more")
	assert.InDelta(t, 1/math.Sqrt(64), real(res.State.Amplitude(5)), 1e-12)
}
