// Package sampler draws measurement outcomes from a final statevector.
package sampler

import (
	"context"
	"math"
	"math/rand/v2"
	"runtime"
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"qdeck/engine"
)

// DefaultChunkSize is the number of shots drawn from one PRNG stream.
const DefaultChunkSize = 4096

// ErrInvalidShots is returned when the shot count is not positive.
var ErrInvalidShots = errors.New("shots must be positive")

// Counts maps outcome bitstrings (qubit n-1 first) to how often they were
// observed. Only observed outcomes appear.
type Counts map[string]int

// Total returns the number of shots recorded.
func (c Counts) Total() int {
	var n int
	for _, v := range c {
		n += v
	}
	return n
}

// Config tunes sampling. Zero fields take their defaults.
type Config struct {
	ChunkSize     int
	Workers       int
	NormTolerance float64
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithLogger sets the sampler logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Sampler) { s.log = l }
}

// Sampler is stateless between calls and safe for concurrent use.
type Sampler struct {
	cfg Config
	log *zap.Logger
}

func New(cfg Config, opts ...Option) *Sampler {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.NormTolerance <= 0 {
		cfg.NormTolerance = engine.DefaultNormTolerance
	}

	s := &Sampler{cfg: cfg, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sample performs shots independent projective measurements of every qubit.
// A nil seed draws a fresh one. For a given seed the result does not depend
// on the worker count. sv is only read.
func (s *Sampler) Sample(ctx context.Context, sv *engine.Statevector, shots int, seed *uint64) (Counts, error) {
	if shots <= 0 {
		return nil, errors.Wrapf(ErrInvalidShots, "got %d", shots)
	}

	cdf, err := s.cumulative(sv)
	if err != nil {
		return nil, err
	}

	var base uint64
	if seed != nil {
		base = *seed
	} else {
		base = rand.Uint64()
	}

	chunks := (shots + s.cfg.ChunkSize - 1) / s.cfg.ChunkSize
	partial := make([]map[int]int, chunks)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(s.cfg.Workers)
	for j := range chunks {
		n := min(s.cfg.ChunkSize, shots-j*s.cfg.ChunkSize)
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return errors.Wrapf(err, "sampling aborted at chunk %d", j)
			}
			r := rand.New(rand.NewPCG(base, uint64(j)))
			counts := make(map[int]int)
			for range n {
				counts[draw(cdf, r.Float64())]++
			}
			partial[j] = counts
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	out := make(Counts)
	for _, counts := range partial {
		for idx, c := range counts {
			out[engine.Bitstring(idx, sv.NumQubits())] += c
		}
	}

	s.log.Debug("sampled",
		zap.Int("shots", shots),
		zap.Int("chunks", chunks),
		zap.Int("outcomes", len(out)),
	)
	return out, nil
}

// cumulative builds the renormalized cumulative distribution of sv.
func (s *Sampler) cumulative(sv *engine.Statevector) ([]float64, error) {
	probs := sv.Probabilities()
	var total float64
	for _, p := range probs {
		total += p
	}
	if math.Abs(total-1) > s.cfg.NormTolerance {
		return nil, errors.WithStack(&engine.NumericalError{Gate: -1, Norm: total})
	}

	last := len(probs) - 1
	for last > 0 && probs[last] == 0 {
		last--
	}

	cdf := make([]float64, len(probs))
	var acc float64
	for i, p := range probs {
		acc += p
		cdf[i] = acc / total
	}
	// Rounding must not leave mass for the zero-probability tail
	for i := last; i < len(cdf); i++ {
		cdf[i] = 1
	}
	return cdf, nil
}

// draw returns the first index whose cumulative mass exceeds u. Zero
// probability states share their predecessor's cumulative value and are
// never selected.
func draw(cdf []float64, u float64) int {
	return sort.Search(len(cdf), func(i int) bool { return cdf[i] > u })
}
