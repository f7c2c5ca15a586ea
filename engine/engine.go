package engine

import (
	"context"
	"math"
	"runtime"

	"github.com/pbnjay/memory"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"qdeck/circuit"
)

const (
	// DefaultNormTolerance bounds |norm-1| after every gate.
	DefaultNormTolerance = 1e-9

	// DefaultParallelThreshold is the width from which a gate's groups are
	// split across workers.
	DefaultParallelThreshold = 14

	// HardMaxQubits caps the memory-derived limit.
	HardMaxQubits = 30

	amplitudeBytes = 16
)

// Config bounds and tunes simulation.
type Config struct {
	MaxQubits         int
	ParallelThreshold int
	Workers           int
	NormTolerance     float64
}

// DefaultConfig derives MaxQubits from physical memory.
func DefaultConfig() Config {
	return Config{
		MaxQubits:         MaxQubitsForMemory(memory.TotalMemory()),
		ParallelThreshold: DefaultParallelThreshold,
		Workers:           runtime.GOMAXPROCS(0),
		NormTolerance:     DefaultNormTolerance,
	}
}

// MaxQubitsForMemory returns the widest register whose amplitudes fit in a
// quarter of total bytes, clamped to [1, HardMaxQubits]. A zero total (unknown)
// yields a conservative 20.
func MaxQubitsForMemory(total uint64) int {
	if total == 0 {
		return 20
	}
	budget := total / 4
	n := 0
	for n < HardMaxQubits && uint64(amplitudeBytes)<<(n+1) <= budget {
		n++
	}
	return max(n, 1)
}

// Observer is called after each gate with the post-gate norm.
type Observer func(step int, gate circuit.GateSpec, norm float64)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithObserver registers a per-gate callback.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observers = append(e.observers, o) }
}

// Engine evolves statevectors. It holds no per-run state and may be shared;
// every Simulate call owns its Statevector.
type Engine struct {
	cfg       Config
	log       *zap.Logger
	observers []Observer
}

// New returns an Engine. Zero-valued Config fields take their defaults.
func New(cfg Config, opts ...Option) *Engine {
	def := DefaultConfig()
	if cfg.MaxQubits <= 0 {
		cfg.MaxQubits = def.MaxQubits
	}
	cfg.MaxQubits = min(cfg.MaxQubits, HardMaxQubits)
	if cfg.ParallelThreshold <= 0 {
		cfg.ParallelThreshold = def.ParallelThreshold
	}
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.NormTolerance <= 0 {
		cfg.NormTolerance = def.NormTolerance
	}

	e := &Engine{cfg: cfg, log: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the effective configuration.
func (e *Engine) Config() Config { return e.cfg }

// Admit reports whether a register of numQubits fits under the cap. Callers
// that do work proportional to the register width check it first.
func (e *Engine) Admit(numQubits int) error {
	if numQubits > e.cfg.MaxQubits {
		return errors.WithStack(&ResourceError{Requested: numQubits, Limit: e.cfg.MaxQubits})
	}
	return nil
}

// Simulate applies c's gates in order to |0…0⟩ and returns the final state.
// The trailing measurement does not touch amplitudes. ctx is consulted
// before the first gate and between gates.
func (e *Engine) Simulate(ctx context.Context, c *circuit.Circuit) (*Statevector, error) {
	n := c.NumQubits()
	if err := e.Admit(n); err != nil {
		return nil, err
	}

	sv := newStatevector(n)
	for i := range c.Len() {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "simulation aborted before gate %d", i)
		}

		g := c.Gate(i)
		if err := e.apply(sv, g); err != nil {
			return nil, err
		}

		norm := sv.Norm()
		for _, o := range e.observers {
			o(i, g, norm)
		}
		if math.Abs(norm-1) > e.cfg.NormTolerance {
			e.log.Error("norm drift", zap.Int("gate", i), zap.Stringer("kind", g.Kind), zap.Float64("norm", norm))
			return nil, errors.WithStack(&NumericalError{Gate: i, Norm: norm})
		}
	}

	e.log.Debug("simulation complete", zap.Int("qubits", n), zap.Int("gates", c.Len()))
	return sv, nil
}

// apply runs one gate. Below the parallel threshold it stays on the calling
// goroutine; above, contiguous group ranges go to separate workers and the
// call returns once all of them finish.
func (e *Engine) apply(sv *Statevector, g circuit.GateSpec) error {
	k := newKernel(g)
	groups := k.groups(sv.numQubits)

	workers := e.cfg.Workers
	if sv.numQubits < e.cfg.ParallelThreshold || workers <= 1 || groups < 2 {
		k.run(sv.amplitudes, 0, groups)
		return nil
	}
	workers = min(workers, groups)

	// The gate is atomic: workers ignore cancellation once started
	var eg errgroup.Group
	chunk := (groups + workers - 1) / workers
	for from := 0; from < groups; from += chunk {
		to := min(from+chunk, groups)
		eg.Go(func() error {
			k.run(sv.amplitudes, from, to)
			return nil
		})
	}
	return eg.Wait()
}
