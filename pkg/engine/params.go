package engine

import (
	"fmt"

	"github.com/Coding-Sunday-Sofia/AdsBobBall/pkg/game"
)

// Params are the simulation constants. Peers must agree on them.
type Params struct {
	Rows                int     `msgpack:"rows"`
	Columns             int     `msgpack:"columns"`
	LevelDuration       int     `msgpack:"level_duration"` // ticks; one tick is 1 ms of game time
	BallSpeed           float32 `msgpack:"ball_speed"`     // cells per tick
	BarSpeed            float32 `msgpack:"bar_speed"`      // cells per tick, per section
	RetainedCheckpoints int     `msgpack:"retained_checkpoints"`
	CheckpointFreq      int     `msgpack:"checkpoint_freq"`
	PercentCompleted    int     `msgpack:"percent_completed"`
}

// DefaultParams returns the standard game constants.
func DefaultParams() Params {
	return Params{
		Rows:                28,
		Columns:             20,
		LevelDuration:       20000,
		BallSpeed:           0.025,
		BarSpeed:            0.025,
		RetainedCheckpoints: 16,
		CheckpointFreq:      32,
		PercentCompleted:    75,
	}
}

// withDefaults fills zero fields from DefaultParams.
func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.Rows == 0 {
		p.Rows = d.Rows
	}
	if p.Columns == 0 {
		p.Columns = d.Columns
	}
	if p.LevelDuration == 0 {
		p.LevelDuration = d.LevelDuration
	}
	if p.BallSpeed == 0 {
		p.BallSpeed = d.BallSpeed
	}
	if p.BarSpeed == 0 {
		p.BarSpeed = d.BarSpeed
	}
	if p.RetainedCheckpoints == 0 {
		p.RetainedCheckpoints = d.RetainedCheckpoints
	}
	if p.CheckpointFreq == 0 {
		p.CheckpointFreq = d.CheckpointFreq
	}
	if p.PercentCompleted == 0 {
		p.PercentCompleted = d.PercentCompleted
	}
	return p
}

// Validate rejects parameters the simulation cannot run with.
func (p Params) Validate() error {
	switch {
	case p.Rows < 3 || p.Columns < 3:
		return fmt.Errorf("grid %dx%d too small", p.Columns, p.Rows)
	case p.Rows > game.MaxGridSide || p.Columns > game.MaxGridSide:
		return fmt.Errorf("grid %dx%d too large, max side %d", p.Columns, p.Rows, game.MaxGridSide)
	case p.LevelDuration < 1:
		return fmt.Errorf("level duration %d", p.LevelDuration)
	case p.BallSpeed < 0 || p.BarSpeed <= 0:
		return fmt.Errorf("speeds ball=%v bar=%v", p.BallSpeed, p.BarSpeed)
	case p.RetainedCheckpoints < 2:
		return fmt.Errorf("retained checkpoints %d, need at least 2", p.RetainedCheckpoints)
	case p.CheckpointFreq < 1:
		return fmt.Errorf("checkpoint frequency %d", p.CheckpointFreq)
	case p.PercentCompleted < 1 || p.PercentCompleted > 100:
		return fmt.Errorf("percent completed %d", p.PercentCompleted)
	}
	return nil
}
