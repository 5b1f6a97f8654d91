package engine

import (
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"github.com/Coding-Sunday-Sofia/AdsBobBall/pkg/checkpoint"
	"github.com/Coding-Sunday-Sofia/AdsBobBall/pkg/event"
	"github.com/Coding-Sunday-Sofia/AdsBobBall/pkg/game"
	"github.com/Coding-Sunday-Sofia/AdsBobBall/pkg/ledger"
)

// snapshotVersion is bumped whenever the encoding changes incompatibly.
const snapshotVersion = 1

// Snapshot is everything needed to resume an engine: given the same future
// events, a restored engine produces the same future ticks.
type Snapshot struct {
	Version   int           `msgpack:"version"`
	Origin    string        `msgpack:"origin"`
	Seed      int64         `msgpack:"seed"`
	Players   int           `msgpack:"players"`
	GameTime  int64         `msgpack:"game_time"`
	Seq       int64         `msgpack:"seq"`
	Params    Params        `msgpack:"params"`
	Tracked   []int         `msgpack:"tracked"`
	History   []*game.State `msgpack:"history"` // newest first; History[0] is the live head
	Processed []event.Event `msgpack:"processed"`
	Pending   []event.Event `msgpack:"pending"`
	Stats     Stats         `msgpack:"stats"`
}

// Head returns the live state of the snapshot, or nil.
func (s *Snapshot) Head() *game.State {
	if len(s.History) == 0 {
		return nil
	}
	return s.History[0]
}

// Snapshot captures the engine. The returned value shares no memory with it.
func (e *Engine) Snapshot() (*Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.started {
		return nil, ErrNotStarted
	}
	history := []*game.State{e.history.Head().Clone()}
	for _, s := range e.history.Frozen() {
		history = append(history, s.Clone())
	}
	return &Snapshot{
		Version:   snapshotVersion,
		Origin:    e.origin,
		Seed:      e.seed,
		Players:   e.players,
		GameTime:  e.gameTime.Value(),
		Seq:       e.seq.Value(),
		Params:    e.params,
		Tracked:   append([]int(nil), e.rules.Tracked...),
		History:   history,
		Processed: e.processed.Events(),
		Pending:   e.pending.Events(),
		Stats:     e.statsLocked(),
	}, nil
}

// Restore replaces the engine's state with snap, including its origin and
// params. The engine is left unchanged when snap is invalid.
func (e *Engine) Restore(snap *Snapshot) error {
	if snap == nil || len(snap.History) == 0 {
		return errors.New("restore: snapshot has no history")
	}
	if snap.Version != snapshotVersion {
		return fmt.Errorf("restore: snapshot version %d, want %d", snap.Version, snapshotVersion)
	}
	if err := snap.Params.Validate(); err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	if snap.Origin == "" {
		return errors.New("restore: snapshot has no origin")
	}
	if snap.Players < 1 || snap.Players > game.MaxPlayers {
		return fmt.Errorf("restore: %w: %d", ErrPlayers, snap.Players)
	}
	for i, s := range snap.History {
		if s == nil {
			return fmt.Errorf("restore: history entry %d is empty", i)
		}
		if i > 0 && s.Tick > snap.History[i-1].Tick {
			return fmt.Errorf("restore: history not newest-first at entry %d", i)
		}
	}

	pending, processed := ledger.New(), ledger.New()
	for _, ev := range snap.Processed {
		if err := processed.Insert(ev); err != nil {
			return fmt.Errorf("restore processed: %w", err)
		}
	}
	for _, ev := range snap.Pending {
		if processed.Has(ev.Key()) {
			return fmt.Errorf("restore pending %s: %w", ev, ErrDuplicateEvent)
		}
		if err := pending.Insert(ev); err != nil {
			return fmt.Errorf("restore pending: %w", err)
		}
	}

	head := snap.History[0].Clone()
	frozen := make([]*game.State, 0, len(snap.History)-1)
	for _, s := range snap.History[1:] {
		frozen = append(frozen, s.Clone())
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.params = snap.Params
	e.origin = snap.Origin
	e.log = e.base.With(zap.String("origin", snap.Origin))
	e.seed = snap.Seed
	e.players = snap.Players
	e.rules.LevelDuration = snap.Params.LevelDuration
	e.rules.PercentCompleted = snap.Params.PercentCompleted
	if len(snap.Tracked) > 0 {
		e.rules.Tracked = append([]int(nil), snap.Tracked...)
	}
	e.pending = pending
	e.processed = processed
	if e.history.Capacity() != snap.Params.RetainedCheckpoints {
		e.history = checkpoint.New(snap.Params.RetainedCheckpoints)
	}
	e.history.Restore(head, frozen)
	e.gameTime.Set(snap.GameTime)
	e.seq.Set(snap.Seq)
	e.stats = snap.Stats
	e.started = true
	e.log.Info("restored",
		zap.Int("tick", head.Tick),
		zap.Int64("game_time", snap.GameTime),
		zap.Int("checkpoints", e.history.Len()))
	return nil
}

// Resume builds an engine from a snapshot. opts supplies the logger; its
// params and origin are replaced by the snapshot's.
func Resume(snap *Snapshot, opts Options) (*Engine, error) {
	if snap != nil {
		opts.Params = snap.Params
		opts.Origin = snap.Origin
	}
	e, err := New(opts)
	if err != nil {
		return nil, err
	}
	if err := e.Restore(snap); err != nil {
		return nil, err
	}
	return e, nil
}

// EncodeSnapshot serializes snap with msgpack.
func EncodeSnapshot(snap *Snapshot) ([]byte, error) {
	b, err := msgpack.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return b, nil
}

// DecodeSnapshot parses a snapshot produced by EncodeSnapshot.
func DecodeSnapshot(b []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := msgpack.Unmarshal(b, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}
