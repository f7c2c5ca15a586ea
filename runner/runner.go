// Package runner executes circuit requests end to end: build, then simulate
// and sample alongside serialization.
package runner

import (
	"context"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"qdeck/circuit"
	"qdeck/engine"
	"qdeck/internal/config"
	"qdeck/internal/metrics"
	"qdeck/qasm"
	"qdeck/sampler"
)

// Request is one simulation job in the wire schema.
type Request struct {
	NumQubits int               `json:"numQubits" yaml:"numQubits"`
	Gates     []circuit.RawGate `json:"gates" yaml:"gates"`
	Shots     int               `json:"shots,omitempty" yaml:"shots,omitempty"` // 0 takes the configured default
	Seed      *uint64           `json:"seed,omitempty" yaml:"seed,omitempty"`

	// KeepState returns the final statevector in Result.State.
	KeepState bool `json:"-" yaml:"-"`
}

// Result is what a successful run produces. Only Counts and QASM are part of
// the wire schema.
type Result struct {
	RunID    uuid.UUID      `json:"-"`
	Counts   sampler.Counts `json:"counts"`
	QASM     string         `json:"qasm"`
	Depth    int            `json:"-"`
	Shots    int            `json:"-"`
	Duration time.Duration  `json:"-"`

	Circuit *circuit.Circuit    `json:"-"`
	State   *engine.Statevector `json:"-"`
}

// Option configures a Runner.
type Option func(*Runner)

func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) { r.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// Runner is safe for concurrent use; each Run owns its circuit and state.
type Runner struct {
	engine       *engine.Engine
	sampler      *sampler.Sampler
	cache        *lru.Cache[string, string]
	log          *zap.Logger
	metrics      *metrics.Metrics
	defaultShots int
	timeout      time.Duration
}

// New wires a Runner from cfg.
func New(cfg *config.Config, opts ...Option) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Runner{
		log:          zap.NewNop(),
		defaultShots: cfg.DefaultShots,
		timeout:      cfg.Timeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.metrics == nil {
		r.metrics = metrics.New(nil)
	}

	if cfg.QASMCacheSize > 0 {
		cache, err := lru.New[string, string](cfg.QASMCacheSize)
		if err != nil {
			return nil, errors.Wrap(err, "qasm cache")
		}
		r.cache = cache
	}

	r.engine = engine.New(cfg.Engine(),
		engine.WithLogger(r.log.Named("engine")),
		engine.WithObserver(func(int, circuit.GateSpec, float64) { r.metrics.GatesApplied.Inc() }),
	)
	r.sampler = sampler.New(cfg.Sampler(), sampler.WithLogger(r.log.Named("sampler")))
	return r, nil
}

// Engine returns the configured simulation engine.
func (r *Runner) Engine() *engine.Engine { return r.engine }

// Run validates req, then simulates and samples it while serializing it to
// QASM. Either branch failing fails the run.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	id := uuid.New()
	log := r.log.With(zap.Stringer("run", id))

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	res, err := r.run(ctx, req)
	if err != nil {
		r.fail(log, err)
		return nil, err
	}

	res.RunID = id
	res.Duration = time.Since(start)
	r.metrics.Runs.WithLabelValues(metrics.OutcomeOK).Inc()
	log.Info("run complete",
		zap.Int("qubits", res.Circuit.NumQubits()),
		zap.Int("gates", res.Circuit.Len()),
		zap.Int("depth", res.Depth),
		zap.Int("shots", res.Shots),
		zap.Int("outcomes", len(res.Counts)),
		zap.Duration("took", res.Duration),
	)
	return res, nil
}

func (r *Runner) run(ctx context.Context, req Request) (*Result, error) {
	shots := req.Shots
	if shots == 0 {
		shots = r.defaultShots
	}
	if shots < 0 {
		return nil, errors.Wrapf(sampler.ErrInvalidShots, "got %d", shots)
	}

	c, err := timed(r, metrics.StageBuild, func() (*circuit.Circuit, error) {
		return circuit.BuildRaw(req.NumQubits, req.Gates)
	})
	if err != nil {
		return nil, err
	}
	if err := r.engine.Admit(c.NumQubits()); err != nil {
		return nil, err
	}
	r.metrics.Qubits.Observe(float64(c.NumQubits()))

	res := &Result{Circuit: c, Depth: c.Depth(), Shots: shots}
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		sv, err := timed(r, metrics.StageSimulate, func() (*engine.Statevector, error) {
			return r.engine.Simulate(ctx, c)
		})
		if err != nil {
			return err
		}
		counts, err := timed(r, metrics.StageSample, func() (sampler.Counts, error) {
			return r.sampler.Sample(ctx, sv, shots, req.Seed)
		})
		if err != nil {
			return err
		}
		r.metrics.ShotsSampled.Add(float64(shots))
		res.Counts = counts
		if req.KeepState {
			res.State = sv
		}
		return nil
	})
	eg.Go(func() error {
		res.QASM, _ = timed(r, metrics.StageSerialize, func() (string, error) {
			return r.serialize(c), nil
		})
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

// serialize consults the QASM cache. Serialization depends only on the
// circuit, so equal keys always map to equal text.
func (r *Runner) serialize(c *circuit.Circuit) string {
	if r.cache == nil {
		return qasm.Serialize(c)
	}
	key := c.Key()
	if text, ok := r.cache.Get(key); ok {
		r.metrics.CacheLookups.WithLabelValues("hit").Inc()
		return text
	}
	r.metrics.CacheLookups.WithLabelValues("miss").Inc()
	text := qasm.Serialize(c)
	r.cache.Add(key, text)
	return text
}

func timed[T any](r *Runner, stage string, fn func() (T, error)) (T, error) {
	start := time.Now()
	v, err := fn()
	r.metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	return v, err
}

// fail records a failed run. Invalid input is routine; a norm violation is
// a defect.
func (r *Runner) fail(log *zap.Logger, err error) {
	outcome := Outcome(err)
	r.metrics.Runs.WithLabelValues(outcome).Inc()
	switch outcome {
	case metrics.OutcomeNumerical, metrics.OutcomeFailed:
		log.Error("run failed", zap.String("outcome", outcome), zap.Error(err))
	default:
		log.Info("run rejected", zap.String("outcome", outcome), zap.Error(err))
	}
}

// Outcome classifies a Run error into its metrics label.
func Outcome(err error) string {
	var (
		verr *circuit.ValidationError
		rerr *engine.ResourceError
		nerr *engine.NumericalError
	)
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.As(err, &verr), errors.Is(err, sampler.ErrInvalidShots):
		return metrics.OutcomeInvalid
	case errors.As(err, &rerr):
		return metrics.OutcomeResource
	case errors.As(err, &nerr):
		return metrics.OutcomeNumerical
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.OutcomeCancelled
	default:
		return metrics.OutcomeFailed
	}
}
