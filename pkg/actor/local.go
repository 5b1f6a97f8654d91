package actor

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Coding-Sunday-Sofia/AdsBobBall/pkg/event"
	"github.com/Coding-Sunday-Sofia/AdsBobBall/pkg/game"
)

type touch struct {
	point mgl32.Vec2
	dir   game.Direction
}

// Local turns player input into StartBar events. Touch may be called from
// any goroutine; queued touches are submitted on the next OnTick.
type Local struct {
	eng    Engine
	player int
	log    *zap.Logger

	mu      sync.Mutex
	touches []touch
}

var _ Actor = (*Local)(nil)

// NewLocal returns an input actor for player.
func NewLocal(eng Engine, player int, log *zap.Logger) *Local {
	if log == nil {
		log = zap.NewNop()
	}
	return &Local{eng: eng, player: player, log: log.With(zap.Int("player", player))}
}

// Touch queues a bar start at p, in grid coordinates.
func (l *Local) Touch(p mgl32.Vec2, dir game.Direction) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.touches = append(l.touches, touch{point: p, dir: dir})
}

func (l *Local) OnTick(gameTime int) {
	l.mu.Lock()
	touches := l.touches
	l.touches = nil
	l.mu.Unlock()

	for _, t := range touches {
		ev := event.Event{
			Tick:     gameTime,
			StartBar: &event.StartBar{Point: t.point, Direction: t.dir, Player: l.player},
		}
		if _, err := l.eng.Submit(ev); err != nil {
			l.log.Warn("touch dropped", zap.Error(err))
		}
	}
}

func (l *Local) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.touches = nil
}
