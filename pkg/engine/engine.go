// Package engine folds independently timestamped events from several actors
// into one canonical simulation history.
//
// The engine owns the pending ledger, the processed ledger, the checkpoint
// history and the game clock. Every exported method runs inside a single
// critical section, so the four are always observed and mutated together.
//
// When an event arrives for a tick the live state has already passed, the
// engine rolls back: it restores the newest checkpoint at or before that
// tick, moves every processed event from the checkpoint onward back to
// pending, and replays up to the current game time. Same-tick events apply
// in (Origin, Seq) order, so peers holding the same events converge on the
// same state whatever order the events arrived in.
package engine

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Coding-Sunday-Sofia/AdsBobBall/pkg/checkpoint"
	"github.com/Coding-Sunday-Sofia/AdsBobBall/pkg/clock"
	"github.com/Coding-Sunday-Sofia/AdsBobBall/pkg/event"
	"github.com/Coding-Sunday-Sofia/AdsBobBall/pkg/game"
	"github.com/Coding-Sunday-Sofia/AdsBobBall/pkg/ledger"
)

var (
	// ErrNotStarted is returned before the first ResetForNewGame.
	ErrNotStarted = errors.New("simulation not started")
	// ErrInvalidEvent is returned for events that fail validation.
	ErrInvalidEvent = errors.New("invalid event")
	// ErrDuplicateEvent is returned when an event's (Origin, Seq) is already held.
	ErrDuplicateEvent = errors.New("duplicate event")
	// ErrPlayers is returned by ResetForNewGame for a player count outside
	// 1..game.MaxPlayers.
	ErrPlayers = errors.New("invalid player count")
)

// Options configure a new Engine. Zero values select defaults.
type Options struct {
	Params Params
	// Origin identifies this peer in event keys. Defaults to a random UUID.
	Origin string
	// Seed fixes the level layout seed. Zero picks a random seed per game.
	Seed int64
	// Tracked lists the players whose death loses the level. Defaults to [1].
	Tracked []int
	Logger  *zap.Logger
}

// Stats are cumulative engine counters.
type Stats struct {
	Ticks           int `msgpack:"ticks" json:"ticks"`
	Rollbacks       int `msgpack:"rollbacks" json:"rollbacks"`
	DeepestRollback int `msgpack:"deepest_rollback" json:"deepest_rollback"`
	Desyncs         int `msgpack:"desyncs" json:"desyncs"`
	Submitted       int `msgpack:"submitted" json:"submitted"`
	Received        int `msgpack:"received" json:"received"`
	EventsApplied   int `msgpack:"events_applied" json:"events_applied"`
	EventsPurged    int `msgpack:"events_purged" json:"events_purged"`
	Pending         int `msgpack:"pending" json:"pending"`
	Processed       int `msgpack:"processed" json:"processed"`
	Checkpoints     int `msgpack:"checkpoints" json:"checkpoints"`
}

// Engine is the simulation orchestrator. It is safe for concurrent use.
type Engine struct {
	mu sync.Mutex

	params Params
	rules  game.Rules
	origin string
	seed   int64
	fixed  bool
	base   *zap.Logger
	log    *zap.Logger

	started   bool
	players   int
	pending   *ledger.Ledger
	processed *ledger.Ledger
	history   *checkpoint.History
	gameTime  clock.Clock
	seq       clock.Clock
	stats     Stats

	subID int
	subs  []subscriber
}

type subscriber struct {
	id int
	fn func(event.Event)
}

// New returns an engine that has not started; call ResetForNewGame first.
func New(opts Options) (*Engine, error) {
	p := opts.Params.withDefaults()
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("engine params: %w", err)
	}
	origin := opts.Origin
	if origin == "" {
		origin = uuid.NewString()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	tracked := append([]int(nil), opts.Tracked...)
	if len(tracked) == 0 {
		tracked = []int{1}
	}
	return &Engine{
		params: p,
		rules: game.Rules{
			LevelDuration:    p.LevelDuration,
			PercentCompleted: p.PercentCompleted,
			Tracked:          tracked,
		},
		origin:    origin,
		seed:      opts.Seed,
		fixed:     opts.Seed != 0,
		base:      log,
		log:       log.With(zap.String("origin", origin)),
		pending:   ledger.New(),
		processed: ledger.New(),
		history:   checkpoint.New(p.RetainedCheckpoints),
	}, nil
}

// Origin returns the identity stamped on locally created events.
func (e *Engine) Origin() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.origin
}

// Params returns the engine's constants.
func (e *Engine) Params() Params {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params
}

// Seed returns the seed of the current game.
func (e *Engine) Seed() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.seed
}

// Subscribe registers fn to receive every event created by Submit. fn runs
// on the submitting goroutine, outside the engine lock. The returned func
// unregisters it.
func (e *Engine) Subscribe(fn func(event.Event)) (cancel func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subID++
	id := e.subID
	e.subs = append(e.subs, subscriber{id: id, fn: fn})
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, s := range e.subs {
			if s.id == id {
				e.subs = append(e.subs[:i], e.subs[i+1:]...)
				return
			}
		}
	}
}

// ResetForNewGame discards all history and events and starts level 1 with
// players players. The level setup is applied directly at tick 0. An
// invalid player count leaves the engine untouched.
func (e *Engine) ResetForNewGame(players int) error {
	if players < 1 || players > game.MaxPlayers {
		return fmt.Errorf("%w: %d, want 1..%d", ErrPlayers, players, game.MaxPlayers)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.fixed {
		e.seed = rand.Int64()
	}
	e.players = players
	e.resetLocked(game.NewState(players), 1)
	e.log.Info("new game", zap.Int("players", players), zap.Int64("seed", e.seed))
	return nil
}

// ResetForNextLevel credits the level bonus to every surviving player and
// starts the next level with the same players.
func (e *Engine) ResetForNextLevel() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.started {
		return ErrNotStarted
	}
	head := e.history.Head()
	e.rules.ScoreLevel(head)
	next := head.Carry()
	e.resetLocked(next, head.Level+1)
	e.log.Info("next level", zap.Int("level", next.Level))
	return nil
}

func (e *Engine) resetLocked(s *game.State, level int) {
	setup := event.Event{
		Origin: e.origin,
		Seq:    uint64(e.seq.Tick()),
		NewGame: &event.NewGame{
			Level:     level,
			Seed:      e.seed,
			Rows:      e.params.Rows,
			Columns:   e.params.Columns,
			BarSpeed:  e.params.BarSpeed,
			BallSpeed: e.params.BallSpeed,
		},
	}
	setup.Apply(s)
	e.pending.Clear()
	e.processed.Clear()
	e.history.Reset(s)
	e.gameTime.Set(0)
	e.started = true
}

// Submit stamps a locally created event with this engine's origin and the
// next sequence number, queues it, and notifies subscribers. The stamped
// event is returned.
func (e *Engine) Submit(ev event.Event) (event.Event, error) {
	e.mu.Lock()
	if !e.started {
		e.mu.Unlock()
		return ev, ErrNotStarted
	}
	if err := ev.Validate(); err != nil {
		e.mu.Unlock()
		return ev, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	ev.Origin = e.origin
	ev.Seq = uint64(e.seq.Tick())
	if err := e.pending.Insert(ev); err != nil {
		e.mu.Unlock()
		return ev, fmt.Errorf("%w: %v", ErrDuplicateEvent, err)
	}
	e.stats.Submitted++
	eventsTotal.WithLabelValues(string(ev.Kind()), "local").Inc()
	subs := make([]func(event.Event), len(e.subs))
	for i, s := range e.subs {
		subs[i] = s.fn
	}
	e.mu.Unlock()

	for _, fn := range subs {
		fn(ev)
	}
	return ev, nil
}

// Receive queues an event created by a peer. Subscribers are not notified.
func (e *Engine) Receive(ev event.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.started {
		return ErrNotStarted
	}
	if ev.Origin == "" || ev.Origin == e.origin {
		return fmt.Errorf("%w: remote event with origin %q", ErrInvalidEvent, ev.Origin)
	}
	if err := ev.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if e.processed.Has(ev.Key()) {
		return fmt.Errorf("receive %s: %w", ev, ErrDuplicateEvent)
	}
	if err := e.pending.Insert(ev); err != nil {
		return fmt.Errorf("receive %s: %w", ev, ErrDuplicateEvent)
	}
	e.seq.Observe(int64(ev.Seq))
	e.stats.Received++
	eventsTotal.WithLabelValues(string(ev.Kind()), "remote").Inc()
	return nil
}

// AdvanceOneTick brings the live state up to the current game time, rolling
// back first if a pending event is older than the live state, then advances
// the game time by one. It is a no-op before the game starts and once the
// level is won or lost.
func (e *Engine) AdvanceOneTick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.started || e.rules.Outcome(e.history.Head()) != game.Running {
		return
	}
	timer := prometheus.NewTimer(advanceDuration)
	defer timer.ObserveDuration()

	if earliest := e.pending.EarliestTime(); earliest < e.history.Head().Tick {
		e.rollback(earliest)
	}

	now := int(e.gameTime.Value())
	for e.history.Head().Tick <= now {
		head := e.history.Head()
		if head.Tick%e.params.CheckpointFreq == 0 {
			e.history.Checkpoint()
		}
		for {
			ev, ok := e.pending.PopAt(head.Tick)
			if !ok {
				break
			}
			ev.Apply(head)
			// Keys are unique across both ledgers, so this cannot fail.
			_ = e.processed.Insert(ev)
			e.stats.EventsApplied++
		}
		head.Step()
		if e.rules.Outcome(head) != game.Running {
			break
		}
	}
	e.gameTime.Tick()
	e.stats.Ticks++
	ticksTotal.Inc()

	oldest := e.history.OldestTick()
	e.stats.EventsPurged += e.pending.PurgeOlderThan(oldest) + e.processed.PurgeOlderThan(oldest)
}

// rollback restores the newest checkpoint at or before earliest and returns
// every processed event from that checkpoint onward to pending. Checkpoints
// are taken before the events of their tick apply, so events at the
// checkpoint's own tick are replayed too.
func (e *Engine) rollback(earliest int) {
	from := e.history.Head().Tick
	target, fallback, ok := e.history.Revert(earliest)
	if !ok {
		e.stats.Desyncs++
		desyncsTotal.Inc()
		e.log.Warn("rollback without checkpoint; late events dropped",
			zap.Int("from", from),
			zap.Int("to", earliest))
		return
	}
	for {
		ev, ok := e.processed.PopOldestNewerThan(target - 1)
		if !ok {
			break
		}
		_ = e.pending.Insert(ev)
	}

	depth := from - target
	e.stats.Rollbacks++
	if depth > e.stats.DeepestRollback {
		e.stats.DeepestRollback = depth
	}
	rollbacksTotal.Inc()
	rollbackDepth.Observe(float64(depth))
	e.log.Debug("rollback",
		zap.Int("from", from),
		zap.Int("to", earliest),
		zap.Int("checkpoint", target))

	if fallback {
		e.stats.Desyncs++
		desyncsTotal.Inc()
		e.log.Warn("rollback target older than retained history",
			zap.Int("requested", earliest),
			zap.Int("checkpoint", target),
			zap.Int("lost_ticks", target-earliest))
	}
}

// CurrentState returns a copy of the live state, or nil before the game
// starts.
func (e *Engine) CurrentState() *game.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.started {
		return nil
	}
	return e.history.Head().Clone()
}

// Outcome evaluates the live state.
func (e *Engine) Outcome() game.Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.started {
		return game.Running
	}
	return e.rules.Outcome(e.history.Head())
}

// IsWon reports whether the level is won.
func (e *Engine) IsWon() bool { return e.Outcome() == game.Won }

// IsLost reports whether the level is lost.
func (e *Engine) IsLost() bool { return e.Outcome() == game.Lost }

// TimeRemaining returns the level duration minus the live tick.
func (e *Engine) TimeRemaining() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.started {
		return e.params.LevelDuration
	}
	return e.rules.TimeLeft(e.history.Head())
}

// GameTime returns the engine's logical now. Locally created events should
// target this tick or later.
func (e *Engine) GameTime() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return int(e.gameTime.Value())
}

// Started reports whether ResetForNewGame has been called.
func (e *Engine) Started() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.started
}

// Stats returns a copy of the counters with current ledger sizes.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.statsLocked()
}

func (e *Engine) statsLocked() Stats {
	s := e.stats
	s.Pending = e.pending.Len()
	s.Processed = e.processed.Len()
	s.Checkpoints = e.history.Len()
	return s
}

// Events returns copies of the pending and processed ledgers.
func (e *Engine) Events() (pending, processed []event.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending.Events(), e.processed.Events()
}

// Frame is a convenience for drivers: it returns the live tick and checksum
// without copying the state.
func (e *Engine) Frame() (tick int, checksum uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.started {
		return 0, 0
	}
	head := e.history.Head()
	return head.Tick, head.Checksum()
}

