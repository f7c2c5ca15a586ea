package runner

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"qdeck/circuit"
	"qdeck/engine"
	"qdeck/internal/config"
	"qdeck/internal/metrics"
	"qdeck/sampler"
)

func testConfig() *config.Config {
	return &config.Config{
		MaxQubits:         10,
		ParallelThreshold: 14,
		Workers:           2,
		DefaultShots:      1024,
		NormTolerance:     1e-9,
		Timeout:           5 * time.Second,
		ShotChunk:         256,
		QASMCacheSize:     8,
		Log:               config.LogConfig{Level: "info"},
	}
}

func seed(v uint64) *uint64 { return &v }

func bell() Request {
	return Request{
		NumQubits: 2,
		Gates: []circuit.RawGate{
			{Type: "H", Params: []int{0}},
			{Type: "CNOT", Params: []int{0, 1}},
		},
	}
}

func TestRunner(t *testing.T) {
	Convey("Given a runner with its own registry", t, func() {
		reg := prometheus.NewRegistry()
		m := metrics.New(reg)
		core, logs := observer.New(zapcore.InfoLevel)
		r, err := New(testConfig(), WithMetrics(m), WithLogger(zap.New(core)))
		So(err, ShouldBeNil)
		ctx := context.Background()

		Convey("A Bell circuit yields only correlated outcomes", func() {
			res, err := r.Run(ctx, bell())
			So(err, ShouldBeNil)
			So(res.RunID, ShouldNotEqual, uuid.Nil)
			So(res.Shots, ShouldEqual, 1024)
			So(res.Counts.Total(), ShouldEqual, 1024)
			So(res.Counts["00"]+res.Counts["11"], ShouldEqual, 1024)
			So(res.Depth, ShouldEqual, 2)
			So(res.State, ShouldBeNil)
			So(res.QASM, ShouldEqual, "OPENQASM 2.0;\n"+
				"include \"qelib1.inc\";\n"+
				"qreg q[2];\n"+
				"creg c[2];\n"+
				"h q[0];\n"+
				"cx q[0],q[1];\n"+
				"measure q[0] -> c[0];\n"+
				"measure q[1] -> c[1];\n")

			So(testutil.ToFloat64(m.Runs.WithLabelValues(metrics.OutcomeOK)), ShouldEqual, 1)
			So(testutil.ToFloat64(m.GatesApplied), ShouldEqual, 2)
			So(testutil.ToFloat64(m.ShotsSampled), ShouldEqual, 1024)
			So(logs.FilterMessage("run complete").Len(), ShouldEqual, 1)
		})

		Convey("A deterministic circuit puts every shot on one outcome", func() {
			res, err := r.Run(ctx, Request{
				NumQubits: 1,
				Gates:     []circuit.RawGate{{Type: "X", Params: []int{0}}},
				Shots:     100,
			})
			So(err, ShouldBeNil)
			So(res.Counts, ShouldResemble, sampler.Counts{"1": 100})
		})

		Convey("The same seed reproduces the counts", func() {
			req := Request{
				NumQubits: 3,
				Gates: []circuit.RawGate{
					{Type: "H", Params: []int{0}},
					{Type: "Ry", Params: []int{1}, Angle: circuit.Angle(1.1)},
					{Type: "CCNOT", Params: []int{0, 1, 2}},
				},
				Shots: 3000,
				Seed:  seed(2024),
			}
			first, err := r.Run(ctx, req)
			So(err, ShouldBeNil)
			second, err := r.Run(ctx, req)
			So(err, ShouldBeNil)
			So(second.Counts, ShouldResemble, first.Counts)
			So(second.RunID, ShouldNotEqual, first.RunID)
		})

		Convey("Repeated circuits hit the QASM cache", func() {
			_, err := r.Run(ctx, bell())
			So(err, ShouldBeNil)
			_, err = r.Run(ctx, bell())
			So(err, ShouldBeNil)
			So(testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")), ShouldEqual, 1)
			So(testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")), ShouldEqual, 1)
		})

		Convey("KeepState returns the final statevector", func() {
			req := bell()
			req.KeepState = true
			res, err := r.Run(ctx, req)
			So(err, ShouldBeNil)
			So(res.State, ShouldNotBeNil)
			So(res.State.Entropy(0), ShouldAlmostEqual, 1, 1e-9)
		})

		Convey("An unknown gate is a validation error", func() {
			res, err := r.Run(ctx, Request{
				NumQubits: 1,
				Gates:     []circuit.RawGate{{Type: "FOO", Params: []int{0}}},
			})
			So(res, ShouldBeNil)
			var verr *circuit.ValidationError
			So(errors.As(err, &verr), ShouldBeTrue)
			So(verr.Gate, ShouldEqual, 0)
			So(Outcome(err), ShouldEqual, metrics.OutcomeInvalid)
			So(testutil.ToFloat64(m.Runs.WithLabelValues(metrics.OutcomeInvalid)), ShouldEqual, 1)
			So(testutil.ToFloat64(m.GatesApplied), ShouldEqual, 0)

			rejected := logs.FilterMessage("run rejected").All()
			So(rejected, ShouldHaveLength, 1)
			So(rejected[0].Level, ShouldEqual, zapcore.InfoLevel)
		})

		Convey("A negative shot count is rejected before simulation", func() {
			req := bell()
			req.Shots = -1
			_, err := r.Run(ctx, req)
			So(errors.Is(err, sampler.ErrInvalidShots), ShouldBeTrue)
			So(testutil.ToFloat64(m.GatesApplied), ShouldEqual, 0)
		})

		Convey("A register above the cap is a resource error", func() {
			_, err := r.Run(ctx, Request{
				NumQubits: 12,
				Gates:     []circuit.RawGate{{Type: "H", Params: []int{11}}},
			})
			var rerr *engine.ResourceError
			So(errors.As(err, &rerr), ShouldBeTrue)
			So(rerr.Limit, ShouldEqual, 10)
			So(testutil.ToFloat64(m.Runs.WithLabelValues(metrics.OutcomeResource)), ShouldEqual, 1)
		})

		Convey("A huge register is refused before any per-qubit work", func() {
			_, err := r.Run(ctx, Request{NumQubits: 1 << 62})
			var rerr *engine.ResourceError
			So(errors.As(err, &rerr), ShouldBeTrue)
			So(rerr.Requested, ShouldEqual, 1<<62)
			So(testutil.ToFloat64(m.Runs.WithLabelValues(metrics.OutcomeResource)), ShouldEqual, 1)
			So(testutil.CollectAndCount(m.StageDuration), ShouldEqual, 1)
		})

		Convey("A cancelled context aborts the run", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := r.Run(cctx, bell())
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
			So(testutil.ToFloat64(m.Runs.WithLabelValues(metrics.OutcomeCancelled)), ShouldEqual, 1)
		})
	})
}

func TestNewRejectsBadConfig(t *testing.T) {
	Convey("Given an invalid configuration", t, func() {
		cfg := testConfig()
		cfg.DefaultShots = 0

		Convey("New refuses it", func() {
			r, err := New(cfg)
			So(r, ShouldBeNil)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestRunnerWithoutCache(t *testing.T) {
	Convey("Given a runner with caching disabled", t, func() {
		cfg := testConfig()
		cfg.QASMCacheSize = 0
		m := metrics.New(nil)
		r, err := New(cfg, WithMetrics(m))
		So(err, ShouldBeNil)

		Convey("Serialization still happens on every run", func() {
			res, err := r.Run(context.Background(), bell())
			So(err, ShouldBeNil)
			So(res.QASM, ShouldContainSubstring, "cx q[0],q[1];")
			So(testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")), ShouldEqual, 0)
		})
	})
}

func TestOutcome(t *testing.T) {
	Convey("Outcome classifies errors", t, func() {
		So(Outcome(nil), ShouldEqual, metrics.OutcomeOK)
		So(Outcome(errors.Wrap(&engine.NumericalError{Gate: 2, Norm: 1.1}, "x")), ShouldEqual, metrics.OutcomeNumerical)
		So(Outcome(context.DeadlineExceeded), ShouldEqual, metrics.OutcomeCancelled)
		So(Outcome(errors.New("boom")), ShouldEqual, metrics.OutcomeFailed)
	})
}
