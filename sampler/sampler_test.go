package sampler

import (
	"context"
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qdeck/engine"
)

func state(t *testing.T, amps ...complex128) *engine.Statevector {
	t.Helper()
	sv, err := engine.NewStatevector(amps)
	require.NoError(t, err)
	return sv
}

func seed(v uint64) *uint64 { return &v }

var r2 = complex(1/math.Sqrt2, 0)

func TestDeterministicOutcome(t *testing.T) {
	counts, err := New(Config{}).Sample(context.Background(), state(t, 0, 1), 100, nil)
	require.NoError(t, err)
	assert.Equal(t, Counts{"1": 100}, counts)

	// Qubit 0 set, qubit 2 set: index 5 prints qubit 2 first
	amps := make([]complex128, 8)
	amps[5] = 1
	counts, err = New(Config{}).Sample(context.Background(), state(t, amps...), 7, seed(1))
	require.NoError(t, err)
	assert.Equal(t, Counts{"101": 7}, counts)
}

func TestUniformSuperposition(t *testing.T) {
	counts, err := New(Config{}).Sample(context.Background(), state(t, r2, r2), 10000, seed(42))
	require.NoError(t, err)

	assert.Equal(t, 10000, counts.Total())
	assert.Len(t, counts, 2)
	assert.GreaterOrEqual(t, counts["0"], 4000)
	assert.LessOrEqual(t, counts["0"], 6000)
}

func TestBellOnlyCorrelatedOutcomes(t *testing.T) {
	counts, err := New(Config{ChunkSize: 100}).Sample(context.Background(), state(t, r2, 0, 0, r2), 5000, seed(7))
	require.NoError(t, err)

	for outcome := range counts {
		assert.Contains(t, []string{"00", "11"}, outcome)
	}
	assert.Equal(t, 5000, counts["00"]+counts["11"])
	assert.Positive(t, counts["00"])
	assert.Positive(t, counts["11"])
}

func TestSeedReproducibleAcrossWorkers(t *testing.T) {
	amps := []complex128{0.5, 0.5i, -0.5, complex(0, -0.5)}
	sv := state(t, amps...)

	var results []Counts
	for _, workers := range []int{1, 2, 8} {
		counts, err := New(Config{ChunkSize: 64, Workers: workers}).Sample(context.Background(), sv, 1000, seed(99))
		require.NoError(t, err)
		results = append(results, counts)
	}
	assert.Equal(t, results[0], results[1])
	assert.Equal(t, results[0], results[2])

	other, err := New(Config{ChunkSize: 64}).Sample(context.Background(), sv, 1000, seed(100))
	require.NoError(t, err)
	assert.Equal(t, 1000, other.Total())
}

func TestRenormalizesWithinTolerance(t *testing.T) {
	scale := complex(math.Sqrt(1+1e-11), 0)
	counts, err := New(Config{}).Sample(context.Background(), state(t, 0, scale), 10, seed(3))
	require.NoError(t, err)
	assert.Equal(t, Counts{"1": 10}, counts)
}

func TestRejectsUnnormalizedState(t *testing.T) {
	_, err := New(Config{}).Sample(context.Background(), state(t, 0.5, 0.5), 10, seed(3))
	require.Error(t, err)

	var nerr *engine.NumericalError
	require.True(t, errors.As(err, &nerr))
	assert.Equal(t, -1, nerr.Gate)
	assert.InDelta(t, 0.5, nerr.Norm, 1e-12)
}

func TestInvalidShots(t *testing.T) {
	for _, shots := range []int{0, -5} {
		_, err := New(Config{}).Sample(context.Background(), state(t, 1, 0), shots, nil)
		assert.True(t, errors.Is(err, ErrInvalidShots))
	}
}

func TestDoesNotMutateState(t *testing.T) {
	amps := []complex128{r2, 0, 0, r2 * 1i}
	sv := state(t, amps...)
	_, err := New(Config{}).Sample(context.Background(), sv, 500, seed(5))
	require.NoError(t, err)
	assert.Equal(t, amps, sv.Amplitudes())
}

func TestCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(Config{}).Sample(ctx, state(t, r2, r2), 100, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestDrawSkipsZeroMass(t *testing.T) {
	cdf := []float64{0, 0.5, 0.5, 1}
	assert.Equal(t, 1, draw(cdf, 0))
	assert.Equal(t, 1, draw(cdf, 0.49))
	assert.Equal(t, 3, draw(cdf, 0.5))
	assert.Equal(t, 3, draw(cdf, 0.999))
}
