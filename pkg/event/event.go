// Package event defines the timestamped instructions folded into the
// simulation, their deterministic ordering, and their wire encoding.
//
// An Event is immutable once created. Exactly one payload variant is set.
// Events are ordered by (Tick, Origin, Seq); see clock.TotalOrderLess.
package event

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Coding-Sunday-Sofia/AdsBobBall/pkg/clock"
	"github.com/Coding-Sunday-Sofia/AdsBobBall/pkg/game"
)

// ErrInvalid is returned for events that fail validation.
var ErrInvalid = errors.New("invalid event")

// Kind names a payload variant.
type Kind string

const (
	KindNewGame   Kind = "new_game"
	KindStartBar  Kind = "start_bar"
	KindSpawnBall Kind = "spawn_ball"
)

// NewGame rebuilds the level from a seed.
type NewGame struct {
	Level     int     `msgpack:"level"`
	Seed      int64   `msgpack:"seed"`
	Rows      int     `msgpack:"rows"`
	Columns   int     `msgpack:"columns"`
	BarSpeed  float32 `msgpack:"bar_speed"`
	BallSpeed float32 `msgpack:"ball_speed"`
}

// Setup converts the payload to the game's level setup.
func (n NewGame) Setup() game.Setup {
	return game.Setup{
		Level:     n.Level,
		Seed:      n.Seed,
		Rows:      n.Rows,
		Columns:   n.Columns,
		BarSpeed:  n.BarSpeed,
		BallSpeed: n.BallSpeed,
	}
}

// StartBar starts a bar for Player at Point.
type StartBar struct {
	Point     mgl32.Vec2     `msgpack:"point"`
	Direction game.Direction `msgpack:"direction"`
	Player    int            `msgpack:"player"`
}

// SpawnBall inserts a ball.
type SpawnBall struct {
	Position mgl32.Vec2 `msgpack:"position"`
	Velocity mgl32.Vec2 `msgpack:"velocity"`
}

// Event is one instruction applied at Tick. Origin and Seq identify the
// creating peer and its sequence number; together they are unique.
type Event struct {
	Tick   int    `msgpack:"tick"`
	Origin string `msgpack:"origin"`
	Seq    uint64 `msgpack:"seq"`

	NewGame   *NewGame   `msgpack:"new_game,omitempty"`
	StartBar  *StartBar  `msgpack:"start_bar,omitempty"`
	SpawnBall *SpawnBall `msgpack:"spawn_ball,omitempty"`
}

// Key identifies an event independently of its tick.
type Key struct {
	Origin string
	Seq    uint64
}

// Key returns the event's identity.
func (e Event) Key() Key { return Key{Origin: e.Origin, Seq: e.Seq} }

// Less reports whether e sorts before o in the total event order.
func (e Event) Less(o Event) bool {
	return clock.TotalOrderLess(int64(e.Tick), e.Origin, e.Seq, int64(o.Tick), o.Origin, o.Seq)
}

// Kind returns the payload variant, or "" when none is set.
func (e Event) Kind() Kind {
	switch {
	case e.NewGame != nil:
		return KindNewGame
	case e.StartBar != nil:
		return KindStartBar
	case e.SpawnBall != nil:
		return KindSpawnBall
	}
	return ""
}

// Validate checks the payload. It does not check Origin, which is stamped by
// the engine for local events.
func (e Event) Validate() error {
	n := 0
	for _, set := range []bool{e.NewGame != nil, e.StartBar != nil, e.SpawnBall != nil} {
		if set {
			n++
		}
	}
	if n != 1 {
		return fmt.Errorf("%w: %d payloads set, want 1", ErrInvalid, n)
	}
	if e.Tick < 0 {
		return fmt.Errorf("%w: negative tick %d", ErrInvalid, e.Tick)
	}

	switch {
	case e.NewGame != nil:
		g := e.NewGame
		if g.Level < 1 || g.Level > game.MaxLevel {
			return fmt.Errorf("%w: level %d", ErrInvalid, g.Level)
		}
		if g.Rows < 3 || g.Columns < 3 || g.Rows > game.MaxGridSide || g.Columns > game.MaxGridSide {
			return fmt.Errorf("%w: grid %dx%d", ErrInvalid, g.Columns, g.Rows)
		}
		if !finite(g.BarSpeed) || !finite(g.BallSpeed) || g.BarSpeed <= 0 || g.BallSpeed < 0 {
			return fmt.Errorf("%w: speeds bar=%v ball=%v", ErrInvalid, g.BarSpeed, g.BallSpeed)
		}
	case e.StartBar != nil:
		b := e.StartBar
		if b.Player < 1 || b.Player > game.MaxPlayers {
			return fmt.Errorf("%w: player %d", ErrInvalid, b.Player)
		}
		if b.Direction != game.Horizontal && b.Direction != game.Vertical {
			return fmt.Errorf("%w: direction %d", ErrInvalid, b.Direction)
		}
		if !finiteVec(b.Point) {
			return fmt.Errorf("%w: point %v", ErrInvalid, b.Point)
		}
	case e.SpawnBall != nil:
		if !finiteVec(e.SpawnBall.Position) || !finiteVec(e.SpawnBall.Velocity) {
			return fmt.Errorf("%w: ball %v %v", ErrInvalid, e.SpawnBall.Position, e.SpawnBall.Velocity)
		}
	}
	return nil
}

// Apply mutates s. It reports whether the event changed anything; an
// ignored StartBar returns false.
func (e Event) Apply(s *game.State) bool {
	switch {
	case e.NewGame != nil:
		s.Setup(e.NewGame.Setup())
		return true
	case e.StartBar != nil:
		return s.StartBar(e.StartBar.Point, e.StartBar.Direction, e.StartBar.Player)
	case e.SpawnBall != nil:
		s.SpawnBall(e.SpawnBall.Position, e.SpawnBall.Velocity)
		return true
	}
	return false
}

func (e Event) String() string {
	return fmt.Sprintf("%s@%d(%s#%d)", e.Kind(), e.Tick, e.Origin, e.Seq)
}

func finite(f float32) bool { return !math32.IsNaN(f) && !math32.IsInf(f, 0) }

func finiteVec(v mgl32.Vec2) bool { return finite(v[0]) && finite(v[1]) }
