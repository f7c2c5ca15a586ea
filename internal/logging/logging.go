// Package logging builds the process logger.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects the level and sink.
type Options struct {
	Level string // debug, info, warn, error
	File  string // empty logs to stderr
}

// New returns a console-encoded logger. When opts.File is set the output
// goes to a rotating file and the returned Closer closes it.
func New(opts Options) (*zap.Logger, io.Closer, error) {
	level, err := zapcore.ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "log level %q", opts.Level)
	}

	encCfg := zap.NewProductionEncoderConfig()
	if level == zapcore.DebugLevel {
		encCfg = zap.NewDevelopmentEncoderConfig()
	}
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(time.RFC3339)
	enc := zapcore.NewConsoleEncoder(encCfg)

	var (
		ws     zapcore.WriteSyncer
		closer io.Closer = io.NopCloser(nil)
	)
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, nil, errors.Wrap(err, "create log dir")
		}
		rot := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    50,   // megabytes per file before rotation
			MaxBackups: 5,    // number of old files to keep
			MaxAge:     14,   // days
			Compress:   true, // gzip old files
		}
		ws = zapcore.AddSync(rot)
		closer = rot
	} else {
		ws = zapcore.Lock(os.Stderr)
	}

	core := zapcore.NewCore(enc, ws, level)
	return zap.New(core, zap.AddCaller()), closer, nil
}
