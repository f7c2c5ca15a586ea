// Package metrics defines the prometheus collectors of a qdeck process.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "qdeck"
	subsystem        = "runner"
)

// Run outcomes.
const (
	OutcomeOK        = "ok"
	OutcomeInvalid   = "invalid"
	OutcomeResource  = "resource"
	OutcomeNumerical = "numerical"
	OutcomeCancelled = "cancelled"
	OutcomeFailed    = "failed"
)

// Pipeline stages.
const (
	StageBuild     = "build"
	StageSimulate  = "simulate"
	StageSample    = "sample"
	StageSerialize = "serialize"
)

// Metrics holds the runner collectors. The zero value is not usable; build
// one with New.
type Metrics struct {
	Runs          *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec
	Qubits        prometheus.Histogram
	GatesApplied  prometheus.Counter
	ShotsSampled  prometheus.Counter
	CacheLookups  *prometheus.CounterVec
}

// New registers the collectors on reg. Passing nil leaves them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Runs: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: subsystem,
				Name:      "runs_total",
				Help:      "Total number of circuit runs by outcome",
			},
			[]string{"outcome"},
		),
		StageDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: subsystem,
				Name:      "stage_duration_seconds",
				Help:      "Time spent in each pipeline stage",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
			[]string{"stage"},
		),
		Qubits: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: subsystem,
				Name:      "qubits",
				Help:      "Register width of simulated circuits",
				Buckets:   prometheus.LinearBuckets(2, 2, 15),
			},
		),
		GatesApplied: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: subsystem,
				Name:      "gates_applied_total",
				Help:      "Total number of gates applied to statevectors",
			},
		),
		ShotsSampled: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: subsystem,
				Name:      "shots_sampled_total",
				Help:      "Total number of measurement shots drawn",
			},
		),
		CacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: subsystem,
				Name:      "qasm_cache_lookups_total",
				Help:      "QASM cache lookups by result",
			},
			[]string{"result"},
		),
	}
}
