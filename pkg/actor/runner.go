package actor

import (
	"context"
	"time"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Coding-Sunday-Sofia/AdsBobBall/pkg/game"
)

// RunnerOptions configure the real-time loop.
type RunnerOptions struct {
	// Frame is the wake-up interval of the loop. Default 16ms.
	Frame time.Duration
	// Tick is the wall time one game tick represents. Default 1ms.
	Tick time.Duration
	// MaxCatchUp caps the ticks run in one frame after a stall. Default 250.
	MaxCatchUp int
	// Until stops the loop when it returns true. It is checked after every
	// tick. By default the loop stops when the level is decided.
	Until func(gameTime int, outcome game.Outcome) bool
}

func (o RunnerOptions) withDefaults() RunnerOptions {
	if o.Frame <= 0 {
		o.Frame = 16 * time.Millisecond
	}
	if o.Tick <= 0 {
		o.Tick = time.Millisecond
	}
	if o.MaxCatchUp <= 0 {
		o.MaxCatchUp = 250
	}
	if o.Until == nil {
		o.Until = func(_ int, outcome game.Outcome) bool { return outcome != game.Running }
	}
	return o
}

// Runner ticks an engine and its actors. Actors are called in the order they
// were added, every tick, before the engine advances.
type Runner struct {
	eng    Ticker
	opts   RunnerOptions
	log    *zap.Logger
	actors *orderedmap.OrderedMap[string, Actor]
}

// NewRunner returns a runner for eng.
func NewRunner(eng Ticker, opts RunnerOptions, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		eng:    eng,
		opts:   opts.withDefaults(),
		log:    log,
		actors: orderedmap.NewOrderedMap[string, Actor](),
	}
}

// Add registers a under name, replacing any actor with that name in place.
func (r *Runner) Add(name string, a Actor) {
	r.actors.Set(name, a)
}

// Remove unregisters the actor with name.
func (r *Runner) Remove(name string) bool {
	return r.actors.Delete(name)
}

// Actor returns the actor registered under name.
func (r *Runner) Actor(name string) (Actor, bool) {
	return r.actors.Get(name)
}

// Names returns the registered names in call order.
func (r *Runner) Names() []string {
	names := make([]string, 0, r.actors.Len())
	for el := r.actors.Front(); el != nil; el = el.Next() {
		names = append(names, el.Key)
	}
	return names
}

// Reset resets every actor.
func (r *Runner) Reset() {
	for el := r.actors.Front(); el != nil; el = el.Next() {
		el.Value.Reset()
	}
}

// Step runs one tick: every actor's OnTick, then AdvanceOneTick. It reports
// whether the stop condition now holds.
func (r *Runner) Step() bool {
	now := r.eng.GameTime()
	for el := r.actors.Front(); el != nil; el = el.Next() {
		el.Value.OnTick(now)
	}
	r.eng.AdvanceOneTick()
	return r.opts.Until(r.eng.GameTime(), r.eng.Outcome())
}

// StepN runs up to n ticks as fast as possible, stopping early when the stop
// condition holds. It returns the number of ticks run.
func (r *Runner) StepN(n int) int {
	for i := 0; i < n; i++ {
		if r.Step() {
			return i + 1
		}
	}
	return n
}

// Run drives the engine in real time until the stop condition holds or ctx
// is cancelled. Each frame runs as many ticks as wall time has elapsed.
// Runnable actors run alongside and are cancelled when the loop ends.
func (r *Runner) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	for el := r.actors.Front(); el != nil; el = el.Next() {
		if rn, ok := el.Value.(Runnable); ok {
			name := el.Key
			g.Go(func() error {
				defer sentry.Recover()
				if err := rn.Run(gctx); err != nil {
					r.log.Error("actor stopped", zap.String("actor", name), zap.Error(err))
					return err
				}
				return nil
			})
		}
	}

	g.Go(func() error {
		defer sentry.Recover()
		defer cancel()
		return r.loop(gctx)
	})
	return g.Wait()
}

func (r *Runner) loop(ctx context.Context) error {
	ticker := time.NewTicker(r.opts.Frame)
	defer ticker.Stop()
	start := time.Now()
	done := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		due := int(time.Since(start) / r.opts.Tick)
		if behind := due - done; behind > r.opts.MaxCatchUp {
			r.log.Debug("runner behind; skipping ticks", zap.Int("behind", behind))
			done = due - r.opts.MaxCatchUp
		}
		for done < due {
			done++
			if r.Step() {
				r.log.Info("runner finished",
					zap.Int("game_time", r.eng.GameTime()),
					zap.Stringer("outcome", r.eng.Outcome()))
				return nil
			}
		}
	}
}
