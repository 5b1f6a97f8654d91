package game

import (
	"encoding/binary"
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/zeebo/xxh3"
)

// Player is one participant. ScoredLevel is the last level whose completion
// bonus has been credited, so a level is never scored twice.
type Player struct {
	ID          int `msgpack:"id"`
	Lives       int `msgpack:"lives"`
	Score       int `msgpack:"score"`
	ScoredLevel int `msgpack:"scored_level"`
	Bar         Bar `msgpack:"bar"`
}

// State is a full snapshot of one simulation tick.
type State struct {
	Tick     int      `msgpack:"tick"`
	Level    int      `msgpack:"level"`
	BarSpeed float32  `msgpack:"bar_speed"`
	Players  []Player `msgpack:"players"`
	Grid     Grid     `msgpack:"grid"`
	Balls    []Ball   `msgpack:"balls"`
}

// NewState returns an uninitialised state at tick 0 with players numbered
// 1..n, n capped at MaxPlayers. Apply a NewGame setup before stepping it.
func NewState(players int) *State {
	s := &State{Level: 1}
	for id := 1; id <= players && id <= MaxPlayers; id++ {
		s.Players = append(s.Players, Player{ID: id})
	}
	return s
}

// Carry returns a fresh tick-0 state for the next level that keeps the
// players (ids, lives, scores) but drops grid, balls and bars.
func (s *State) Carry() *State {
	next := &State{Level: s.Level}
	for _, p := range s.Players {
		p.Bar = Bar{}
		next.Players = append(next.Players, p)
	}
	return next
}

// Clone returns a deep copy sharing no mutable memory with s.
func (s *State) Clone() *State {
	c := *s
	c.Players = append([]Player(nil), s.Players...)
	c.Balls = append([]Ball(nil), s.Balls...)
	c.Grid = s.Grid.Clone()
	return &c
}

// Player returns the player with id, or nil.
func (s *State) Player(id int) *Player {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i]
		}
	}
	return nil
}

// Setup describes a level start.
type Setup struct {
	Level     int
	Seed      int64
	Rows      int
	Columns   int
	BarSpeed  float32
	BallSpeed float32
}

// Setup rebuilds the level: a fresh grid, level+1 balls at seeded random
// cells, every bar cleared and every player's lives set to level+1.
func (s *State) Setup(setup Setup) {
	s.Level = setup.Level
	s.BarSpeed = setup.BarSpeed
	s.Grid = NewGrid(setup.Rows, setup.Columns)
	for i := range s.Players {
		s.Players[i].Lives = setup.Level + 1
		s.Players[i].Bar = Bar{}
	}

	rng := rand.New(rand.NewPCG(uint64(setup.Seed), uint64(setup.Level)))
	s.Balls = nil
	innerCols, innerRows := setup.Columns-2, setup.Rows-2
	if innerCols <= 0 || innerRows <= 0 {
		return
	}
	for n := 0; n < setup.Level+1; n++ {
		var b Ball
		for tries := 0; tries < 64; tries++ {
			col := 1 + rng.IntN(innerCols)
			row := 1 + rng.IntN(innerRows)
			b.Pos = mgl32.Vec2{float32(col) + 0.5, float32(row) + 0.5}
			if !s.overlapsBall(b) {
				break
			}
		}
		vx, vy := setup.BallSpeed, setup.BallSpeed
		if rng.IntN(2) == 0 {
			vx = -vx
		}
		if rng.IntN(2) == 0 {
			vy = -vy
		}
		b.Vel = mgl32.Vec2{vx, vy}
		s.Balls = append(s.Balls, b)
	}
}

func (s *State) overlapsBall(b Ball) bool {
	for _, o := range s.Balls {
		if b.Collide(o) {
			return true
		}
	}
	return false
}

// StartBar starts a bar for player at p. It is ignored when the player is
// unknown, out of lives, already building, or p is not on a clear cell.
func (s *State) StartBar(p mgl32.Vec2, dir Direction, player int) bool {
	pl := s.Player(player)
	if pl == nil || pl.Lives < 1 || pl.Bar.Active {
		return false
	}
	if s.Grid.SquareAt(p) != CellClear {
		return false
	}
	pl.Bar = NewBar(p, dir, s.BarSpeed)
	return true
}

// SpawnBall adds a ball.
func (s *State) SpawnBall(pos, vel mgl32.Vec2) {
	s.Balls = append(s.Balls, Ball{Pos: pos, Vel: vel})
}

// Checksum hashes every field that influences future ticks. Equal states
// have equal checksums on every platform.
func (s *State) Checksum() uint64 {
	buf := make([]byte, 0, 64+len(s.Grid.Cells)+len(s.Players)*48+len(s.Balls)*16)
	putInt := func(v int) { buf = binary.LittleEndian.AppendUint64(buf, uint64(int64(v))) }
	putFloat := func(f float32) { buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f)) }
	putBool := func(b bool) {
		if b {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
	}

	putInt(s.Tick)
	putInt(s.Level)
	putFloat(s.BarSpeed)
	putInt(len(s.Players))
	for _, p := range s.Players {
		putInt(p.ID)
		putInt(p.Lives)
		putInt(p.Score)
		putInt(p.ScoredLevel)
		putBool(p.Bar.Active)
		buf = append(buf, byte(p.Bar.Direction))
		putFloat(p.Bar.Origin[0])
		putFloat(p.Bar.Origin[1])
		putFloat(p.Bar.Speed)
		putBool(p.Bar.One.Active)
		putFloat(p.Bar.One.Length)
		putBool(p.Bar.Two.Active)
		putFloat(p.Bar.Two.Length)
	}
	putInt(s.Grid.Rows)
	putInt(s.Grid.Columns)
	for _, c := range s.Grid.Cells {
		buf = append(buf, byte(c))
	}
	putInt(len(s.Balls))
	for _, b := range s.Balls {
		putFloat(b.Pos[0])
		putFloat(b.Pos[1])
		putFloat(b.Vel[0])
		putFloat(b.Vel[1])
	}
	return xxh3.Hash(buf)
}
