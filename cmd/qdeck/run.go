package main

import (
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"qdeck/internal/metrics"
	"qdeck/runner"
)

type runOptions struct {
	file   string
	shots  int
	seed   uint64
	output string
	tui    bool
	state  bool
}

func newRunCmd(a *app) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run -f FILE",
		Short: "Simulate a circuit and sample measurement outcomes",
		Long: `Run loads a request (.json, .yaml) or a circuit (.qasm), simulates it and
prints the outcome counts with the circuit's OpenQASM 2.0 serialization.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch opts.output {
			case "text", "json":
			default:
				return errors.Errorf("unknown output format %q", opts.output)
			}

			req, err := loadRequest(opts.file)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("shots") {
				req.Shots = opts.shots
			}
			if cmd.Flags().Changed("seed") {
				req.Seed = &opts.seed
			}
			req.KeepState = opts.state || opts.tui

			reg := prometheus.NewRegistry()
			r, err := runner.New(a.cfg, runner.WithLogger(a.log), runner.WithMetrics(metrics.New(reg)))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			res, err := r.Run(ctx, req)
			if err != nil {
				return err
			}
			logMetrics(a.log, reg)

			if opts.tui {
				m := newModel(ctx, res, req, r.Run)
				_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
				return errors.Wrap(err, "viewer")
			}
			if opts.output == "json" {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			return writeText(cmd.OutOrStdout(), res, opts.state)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.file, "file", "f", "", "request (.json, .yaml) or circuit (.qasm) file")
	flags.IntVar(&opts.shots, "shots", 0, "number of shots (overrides the request and default_shots)")
	flags.Uint64Var(&opts.seed, "seed", 0, "sampler seed for reproducible counts")
	flags.StringVarP(&opts.output, "output", "o", "text", "output format: text or json")
	flags.BoolVar(&opts.tui, "tui", false, "browse the result in an interactive viewer")
	flags.BoolVar(&opts.state, "state", false, "show per-qubit Bloch vectors and basis amplitudes")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// logMetrics writes the run's collected series at debug level.
func logMetrics(log *zap.Logger, g prometheus.Gatherer) {
	if !log.Core().Enabled(zap.DebugLevel) {
		return
	}
	families, err := g.Gather()
	if err != nil {
		log.Warn("gather metrics", zap.Error(err))
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			fields := []zap.Field{zap.String("metric", mf.GetName())}
			for _, lp := range m.GetLabel() {
				fields = append(fields, zap.String(lp.GetName(), lp.GetValue()))
			}
			switch {
			case m.GetCounter() != nil:
				fields = append(fields, zap.Float64("value", m.GetCounter().GetValue()))
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				fields = append(fields, zap.Uint64("count", h.GetSampleCount()), zap.Float64("sum", h.GetSampleSum()))
			}
			log.Debug("metric", fields...)
		}
	}
}
