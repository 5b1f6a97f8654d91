package actor

import (
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Coding-Sunday-Sofia/AdsBobBall/pkg/event"
	"github.com/Coding-Sunday-Sofia/AdsBobBall/pkg/game"
)

// Scripted opponent defaults.
const (
	DefaultAIInterval = 128
	DefaultAITries    = 20
)

// AI is a scripted opponent. At every game time that is a positive multiple
// of Interval it tries up to Tries random points in the middle half of the
// grid and starts a bar at the first one that is clear and not covered by a
// ball. It keeps no state of its own: the schedule and the random stream are
// derived from game time and player id, so an AI built for a restored engine
// makes the same moves as one that ran from the start.
type AI struct {
	eng      Engine
	player   int
	interval int
	tries    int
	log      *zap.Logger
}

var _ Actor = (*AI)(nil)

// NewAI returns a scripted opponent for player. Zero interval or tries
// select the defaults.
func NewAI(eng Engine, player, interval, tries int, log *zap.Logger) *AI {
	if interval <= 0 {
		interval = DefaultAIInterval
	}
	if tries <= 0 {
		tries = DefaultAITries
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AI{
		eng:      eng,
		player:   player,
		interval: interval,
		tries:    tries,
		log:      log.With(zap.Int("player", player)),
	}
}

func (a *AI) OnTick(gameTime int) {
	if gameTime <= 0 || gameTime%a.interval != 0 {
		return
	}
	rng := rand.New(rand.NewPCG(uint64(gameTime), uint64(a.player)))

	s := a.eng.CurrentState()
	if s == nil {
		return
	}
	p := s.Player(a.player)
	if p == nil || p.Lives < 1 || p.Bar.Active {
		return
	}
	dir := game.Horizontal
	if rng.IntN(2) == 1 {
		dir = game.Vertical
	}
	point, ok := pickPoint(s, rng, a.tries)
	if !ok {
		a.log.Debug("no free point", zap.Int("game_time", gameTime))
		return
	}
	ev := event.Event{
		Tick:     gameTime + 1,
		StartBar: &event.StartBar{Point: point, Direction: dir, Player: a.player},
	}
	if _, err := a.eng.Submit(ev); err != nil {
		a.log.Warn("submit failed", zap.Error(err))
	}
}

// Reset is a no-op; see AI.
func (a *AI) Reset() {}

// pickPoint samples points in the middle half of the grid.
func pickPoint(s *game.State, rng *rand.Rand, tries int) (mgl32.Vec2, bool) {
	w, h := s.Grid.Width(), s.Grid.Height()
	for i := 0; i < tries; i++ {
		p := mgl32.Vec2{w/4 + rng.Float32()*w/2, h/4 + rng.Float32()*h/2}
		if s.Grid.SquareAt(p) != game.CellClear {
			continue
		}
		col, row := s.Grid.CellOf(p)
		cell := s.Grid.CellRect(col, row)
		covered := false
		for _, b := range s.Balls {
			if b.Frame().Intersects(cell) {
				covered = true
				break
			}
		}
		if !covered {
			return p, true
		}
	}
	return mgl32.Vec2{}, false
}
