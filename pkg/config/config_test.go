package config

import (
	"testing"
	"time"

	"github.com/Coding-Sunday-Sofia/AdsBobBall/pkg/engine"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DB != ".bobball/bobball.db" {
		t.Errorf("DB = %q", cfg.DB)
	}
	if cfg.Frame != 16*time.Millisecond {
		t.Errorf("Frame = %s", cfg.Frame)
	}
	p, err := cfg.EngineParams()
	if err != nil {
		t.Fatal(err)
	}
	if p != engine.DefaultParams() {
		t.Errorf("params = %+v, want defaults", p)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("BOBBALL_DB", "/tmp/x.db")
	t.Setenv("BOBBALL_SEED", "42")
	t.Setenv("BOBBALL_FRAME", "5ms")
	t.Setenv("BOBBALL_ROWS", "10")
	t.Setenv("BOBBALL_BALL_SPEED", "0.5")
	t.Setenv("BOBBALL_CHECKPOINT_FREQ", "8")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DB != "/tmp/x.db" || cfg.Seed != 42 || cfg.Frame != 5*time.Millisecond {
		t.Fatalf("cfg = %+v", cfg)
	}
	p, err := cfg.EngineParams()
	if err != nil {
		t.Fatal(err)
	}
	if p.Rows != 10 || p.BallSpeed != 0.5 || p.CheckpointFreq != 8 {
		t.Fatalf("params = %+v", p)
	}
	if p.Columns != engine.DefaultParams().Columns {
		t.Fatalf("columns = %d, want default", p.Columns)
	}
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"bad seed", "BOBBALL_SEED", "nope"},
		{"bad frame", "BOBBALL_FRAME", "-1s"},
		{"bad level", "BOBBALL_LOG_LEVEL", "loud"},
		{"bad format", "BOBBALL_LOG_FORMAT", "xml"},
		{"tiny grid", "BOBBALL_ROWS", "2"},
		{"one checkpoint", "BOBBALL_RETAINED_CHECKPOINTS", "1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Fatalf("%s=%s accepted", tt.key, tt.value)
			}
		})
	}
}

func TestLogger(t *testing.T) {
	for _, format := range []string{"console", "json"} {
		cfg := Config{LogLevel: "debug", LogFormat: format}
		log, err := cfg.Logger()
		if err != nil {
			t.Fatalf("%s: %v", format, err)
		}
		if !log.Core().Enabled(-1) {
			t.Errorf("%s: debug not enabled", format)
		}
		_ = log.Sync()
	}
}
