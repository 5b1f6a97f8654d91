// Package config loads runtime settings for the bb command from the
// environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Coding-Sunday-Sofia/AdsBobBall/pkg/engine"
)

// Config is read from BOBBALL_* variables. Engine fields left at zero use
// engine.DefaultParams.
type Config struct {
	DB          string        `env:"BOBBALL_DB" envDefault:".bobball/bobball.db"`
	Origin      string        `env:"BOBBALL_ORIGIN"`
	Seed        int64         `env:"BOBBALL_SEED"`
	Frame       time.Duration `env:"BOBBALL_FRAME" envDefault:"16ms"`
	LogLevel    string        `env:"BOBBALL_LOG_LEVEL" envDefault:"info"`
	LogFormat   string        `env:"BOBBALL_LOG_FORMAT" envDefault:"console"`
	MetricsAddr string        `env:"BOBBALL_METRICS_ADDR"`
	SentryDSN   string        `env:"BOBBALL_SENTRY_DSN"`

	Rows                int     `env:"BOBBALL_ROWS"`
	Columns             int     `env:"BOBBALL_COLUMNS"`
	LevelDuration       int     `env:"BOBBALL_LEVEL_DURATION"`
	BallSpeed           float32 `env:"BOBBALL_BALL_SPEED"`
	BarSpeed            float32 `env:"BOBBALL_BAR_SPEED"`
	RetainedCheckpoints int     `env:"BOBBALL_RETAINED_CHECKPOINTS"`
	CheckpointFreq      int     `env:"BOBBALL_CHECKPOINT_FREQ"`
	PercentCompleted    int     `env:"BOBBALL_PERCENT_COMPLETED"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings that can be checked without opening anything.
func (c Config) Validate() error {
	if c.Frame <= 0 {
		return fmt.Errorf("BOBBALL_FRAME must be positive, got %s", c.Frame)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("BOBBALL_LOG_LEVEL: %w", err)
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("BOBBALL_LOG_FORMAT must be console or json, got %q", c.LogFormat)
	}
	if _, err := c.EngineParams(); err != nil {
		return err
	}
	return nil
}

// EngineParams overlays the configured constants on the defaults.
func (c Config) EngineParams() (engine.Params, error) {
	p := engine.DefaultParams()
	setInt := func(dst *int, v int) {
		if v != 0 {
			*dst = v
		}
	}
	setInt(&p.Rows, c.Rows)
	setInt(&p.Columns, c.Columns)
	setInt(&p.LevelDuration, c.LevelDuration)
	setInt(&p.RetainedCheckpoints, c.RetainedCheckpoints)
	setInt(&p.CheckpointFreq, c.CheckpointFreq)
	setInt(&p.PercentCompleted, c.PercentCompleted)
	if c.BallSpeed != 0 {
		p.BallSpeed = c.BallSpeed
	}
	if c.BarSpeed != 0 {
		p.BarSpeed = c.BarSpeed
	}
	if err := p.Validate(); err != nil {
		return engine.Params{}, fmt.Errorf("engine params: %w", err)
	}
	return p, nil
}

// Logger builds the process logger. Output goes to stderr so command output
// on stdout stays machine readable.
func (c Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	var zc zap.Config
	if c.LogFormat == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.DisableStacktrace = true
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc.Build()
}
