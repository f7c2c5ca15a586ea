// Package config loads qdeck settings from defaults, an optional file and
// QDECK_ environment variables, in increasing precedence.
package config

import (
	"runtime"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"qdeck/engine"
	"qdeck/sampler"
)

const envPrefix = "QDECK"

// Keys shared with CLI flag bindings.
const (
	KeyMaxQubits         = "max_qubits"
	KeyParallelThreshold = "parallel_threshold"
	KeyWorkers           = "workers"
	KeyDefaultShots      = "default_shots"
	KeyNormTolerance     = "norm_tolerance"
	KeyTimeout           = "timeout"
	KeyShotChunk         = "shot_chunk"
	KeyQASMCacheSize     = "qasm_cache_size"
	KeyLogLevel          = "log.level"
	KeyLogFile           = "log.file"
)

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type Config struct {
	// MaxQubits of 0 derives the cap from physical memory.
	MaxQubits         int           `mapstructure:"max_qubits"`
	ParallelThreshold int           `mapstructure:"parallel_threshold"`
	Workers           int           `mapstructure:"workers"`
	DefaultShots      int           `mapstructure:"default_shots"`
	NormTolerance     float64       `mapstructure:"norm_tolerance"`
	Timeout           time.Duration `mapstructure:"timeout"`
	ShotChunk         int           `mapstructure:"shot_chunk"`
	QASMCacheSize     int           `mapstructure:"qasm_cache_size"`
	Log               LogConfig     `mapstructure:"log"`
}

// SetDefaults registers every key's default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyMaxQubits, 0)
	v.SetDefault(KeyParallelThreshold, engine.DefaultParallelThreshold)
	v.SetDefault(KeyWorkers, runtime.GOMAXPROCS(0))
	v.SetDefault(KeyDefaultShots, 1024)
	v.SetDefault(KeyNormTolerance, engine.DefaultNormTolerance)
	v.SetDefault(KeyTimeout, 30*time.Second)
	v.SetDefault(KeyShotChunk, sampler.DefaultChunkSize)
	v.SetDefault(KeyQASMCacheSize, 256)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFile, "")
}

// NewViper returns a viper instance with defaults and environment binding.
// file may be empty.
func NewViper(file string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", file)
		}
	}
	return v, nil
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects settings no run could use.
func (c *Config) Validate() error {
	switch {
	case c.MaxQubits < 0 || c.MaxQubits > engine.HardMaxQubits:
		return errors.Errorf("%s must be in [0, %d], got %d", KeyMaxQubits, engine.HardMaxQubits, c.MaxQubits)
	case c.ParallelThreshold < 1:
		return errors.Errorf("%s must be positive, got %d", KeyParallelThreshold, c.ParallelThreshold)
	case c.Workers < 1:
		return errors.Errorf("%s must be positive, got %d", KeyWorkers, c.Workers)
	case c.DefaultShots < 1:
		return errors.Errorf("%s must be positive, got %d", KeyDefaultShots, c.DefaultShots)
	case c.NormTolerance <= 0 || c.NormTolerance >= 1:
		return errors.Errorf("%s must be in (0, 1), got %g", KeyNormTolerance, c.NormTolerance)
	case c.Timeout < 0:
		return errors.Errorf("%s must not be negative, got %s", KeyTimeout, c.Timeout)
	case c.ShotChunk < 1:
		return errors.Errorf("%s must be positive, got %d", KeyShotChunk, c.ShotChunk)
	case c.QASMCacheSize < 0:
		return errors.Errorf("%s must not be negative, got %d", KeyQASMCacheSize, c.QASMCacheSize)
	}
	return nil
}

// Engine returns the engine settings. A zero MaxQubits is resolved from
// physical memory.
func (c *Config) Engine() engine.Config {
	cfg := engine.Config{
		MaxQubits:         c.MaxQubits,
		ParallelThreshold: c.ParallelThreshold,
		Workers:           c.Workers,
		NormTolerance:     c.NormTolerance,
	}
	if cfg.MaxQubits == 0 {
		cfg.MaxQubits = engine.DefaultConfig().MaxQubits
	}
	return cfg
}

func (c *Config) Sampler() sampler.Config {
	return sampler.Config{
		ChunkSize:     c.ShotChunk,
		Workers:       c.Workers,
		NormTolerance: c.NormTolerance,
	}
}
