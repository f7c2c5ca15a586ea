package main

import (
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"qdeck/internal/config"
	"qdeck/internal/logging"
)

// app carries what PersistentPreRunE builds for the subcommands.
type app struct {
	configFile string
	v          *viper.Viper
	cfg        *config.Config
	log        *zap.Logger
	logCloser  io.Closer
}

func newRootCmd() *cobra.Command {
	a := &app{log: zap.NewNop(), logCloser: io.NopCloser(nil)}

	cmd := &cobra.Command{
		Use:   "qdeck",
		Short: "Simulate quantum circuits",
		Long: `qdeck builds a circuit from a request file, evolves its statevector,
samples measurement outcomes and prints the OpenQASM 2.0 form.

Settings come from defaults, an optional --config file and QDECK_*
environment variables, in increasing precedence; flags override all.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.log.Sync()
			_ = a.logCloser.Close()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (yaml, json or toml)")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("log-file", "", "write logs to a rotating file instead of stderr")

	cmd.AddCommand(newRunCmd(a), newQASMCmd(a), newGatesCmd())
	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	v, err := config.NewViper(a.configFile)
	if err != nil {
		return err
	}
	root := cmd.Root().PersistentFlags()
	if err := v.BindPFlag(config.KeyLogLevel, root.Lookup("log-level")); err != nil {
		return errors.Wrap(err, "bind log-level")
	}
	if err := v.BindPFlag(config.KeyLogFile, root.Lookup("log-file")); err != nil {
		return errors.Wrap(err, "bind log-file")
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	log, closer, err := logging.New(logging.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		return err
	}

	a.v, a.cfg, a.log, a.logCloser = v, cfg, log, closer
	a.log.Debug("configuration loaded",
		zap.String("file", v.ConfigFileUsed()),
		zap.Int("maxQubits", cfg.Engine().MaxQubits),
		zap.Int("workers", cfg.Workers),
	)
	return nil
}
