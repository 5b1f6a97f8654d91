// Package actor holds the event producers that drive an engine: local
// input, a scripted opponent, and a network bridge to a remote peer, plus a
// Runner that ticks them at a fixed real-time rate.
//
// Actors talk to the engine only through its public operations.
package actor

import (
	"context"

	"github.com/Coding-Sunday-Sofia/AdsBobBall/pkg/engine"
	"github.com/Coding-Sunday-Sofia/AdsBobBall/pkg/event"
	"github.com/Coding-Sunday-Sofia/AdsBobBall/pkg/game"
)

// Actor is anything that reacts to the passage of game time.
type Actor interface {
	// OnTick is called once per tick, before the engine advances, with the
	// engine's game time. It may submit events.
	OnTick(gameTime int)
	// Reset drops any per-game state.
	Reset()
}

// Runnable actors also have work that runs outside the tick loop. The
// Runner starts Run in its own goroutine and cancels ctx on shutdown.
type Runnable interface {
	Run(ctx context.Context) error
}

// Engine is the part of *engine.Engine actors use.
type Engine interface {
	Submit(event.Event) (event.Event, error)
	Receive(event.Event) error
	Subscribe(func(event.Event)) (cancel func())
	GameTime() int
	CurrentState() *game.State
}

// Ticker is the part of *engine.Engine the Runner drives.
type Ticker interface {
	AdvanceOneTick()
	GameTime() int
	Outcome() game.Outcome
}

var (
	_ Engine = (*engine.Engine)(nil)
	_ Ticker = (*engine.Engine)(nil)
)
