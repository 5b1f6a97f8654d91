package actor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/getsentry/sentry-go"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/Coding-Sunday-Sofia/AdsBobBall/pkg/engine"
	"github.com/Coding-Sunday-Sofia/AdsBobBall/pkg/event"
	"github.com/Coding-Sunday-Sofia/AdsBobBall/pkg/transport"
)

// DefaultSeenSize bounds the re-delivery filter.
const DefaultSeenSize = 8192

// Network bridges an engine to one peer. Every locally submitted event is
// encoded and sent; every inbound payload is decoded and handed to
// Engine.Receive, where rollback reconciles it with local history.
//
// Inbound payloads are delivered by OnTick, or continuously while Run is
// active. Malformed payloads are logged and dropped.
//
// Outbound payloads the channel refuses with transport.ErrFull are queued
// in order and retried on every OnTick. Any other send error means the peer
// can no longer see local events; those events are counted as lost.
type Network struct {
	eng  Engine
	ch   transport.Channel
	log  *zap.Logger
	seen *lru.Cache[event.Key, struct{}]

	outMu  sync.Mutex
	outbox [][]byte

	unsubscribe func()
	async       atomic.Bool
	closed      atomic.Bool

	sent, delivered, dropped, lost atomic.Int64
}

var (
	_ Actor    = (*Network)(nil)
	_ Runnable = (*Network)(nil)
)

// NewNetwork subscribes to eng's local events and forwards them over ch.
func NewNetwork(eng Engine, ch transport.Channel, log *zap.Logger) (*Network, error) {
	seen, err := lru.New[event.Key, struct{}](DefaultSeenSize)
	if err != nil {
		return nil, fmt.Errorf("network dedupe cache: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	n := &Network{eng: eng, ch: ch, log: log, seen: seen}
	n.unsubscribe = eng.Subscribe(n.forward)
	return n, nil
}

func (n *Network) forward(ev event.Event) {
	b, err := event.Encode(ev)
	if err != nil {
		n.log.Error("encode local event", zap.Stringer("event", ev), zap.Error(err))
		return
	}
	n.outMu.Lock()
	defer n.outMu.Unlock()
	if len(n.outbox) > 0 {
		n.outbox = append(n.outbox, b)
		return
	}
	err = n.ch.Send(b)
	switch {
	case err == nil:
		n.sent.Add(1)
	case errors.Is(err, transport.ErrFull):
		n.outbox = append(n.outbox, b)
		n.log.Debug("peer channel full, queued", zap.Stringer("event", ev))
	default:
		n.lost.Add(1)
		n.log.Warn("send to peer failed; event lost", zap.Stringer("event", ev), zap.Error(err))
	}
}

// flush retries queued payloads in order and stops at the first one the
// channel still refuses.
func (n *Network) flush() {
	n.outMu.Lock()
	defer n.outMu.Unlock()
	for len(n.outbox) > 0 {
		err := n.ch.Send(n.outbox[0])
		if errors.Is(err, transport.ErrFull) {
			return
		}
		if err != nil {
			n.lost.Add(int64(len(n.outbox)))
			n.log.Warn("send to peer failed; queued events lost",
				zap.Int("events", len(n.outbox)), zap.Error(err))
			n.outbox = nil
			return
		}
		n.outbox[0] = nil
		n.outbox = n.outbox[1:]
		n.sent.Add(1)
	}
}

// Deliver decodes one peer payload and queues it on the engine. Events
// already seen are ignored.
func (n *Network) Deliver(payload []byte) error {
	ev, err := event.Decode(payload)
	if err != nil {
		n.dropped.Add(1)
		n.log.Warn("malformed peer payload dropped", zap.Int("bytes", len(payload)), zap.Error(err))
		return err
	}
	if n.seen.Contains(ev.Key()) {
		return nil
	}
	if err := n.eng.Receive(ev); err != nil {
		if errors.Is(err, engine.ErrDuplicateEvent) {
			n.seen.Add(ev.Key(), struct{}{})
			return nil
		}
		n.dropped.Add(1)
		n.log.Warn("peer event rejected", zap.Stringer("event", ev), zap.Error(err))
		return err
	}
	n.seen.Add(ev.Key(), struct{}{})
	n.delivered.Add(1)
	return nil
}

// Pump delivers every payload already waiting on the channel without
// blocking and returns how many were read.
func (n *Network) Pump() int {
	count := 0
	for {
		select {
		case b, ok := <-n.ch.Recv():
			if !ok {
				return count
			}
			count++
			_ = n.Deliver(b)
		default:
			return count
		}
	}
}

// OnTick retries queued sends, advances frame-paced channels and, unless
// Run is active, pumps inbound payloads.
func (n *Network) OnTick(int) {
	n.flush()
	if a, ok := n.ch.(transport.Advancer); ok {
		a.Advance()
	}
	if !n.async.Load() {
		n.Pump()
	}
}

// Run delivers payloads as they arrive until ctx is done or the peer
// disconnects.
func (n *Network) Run(ctx context.Context) error {
	defer sentry.Recover()
	n.async.Store(true)
	defer n.async.Store(false)
	for {
		select {
		case <-ctx.Done():
			return nil
		case b, ok := <-n.ch.Recv():
			if !ok {
				n.log.Info("peer disconnected")
				return nil
			}
			_ = n.Deliver(b)
		}
	}
}

// Reset forgets seen events.
func (n *Network) Reset() { n.seen.Purge() }

// Stats returns counts of sent, delivered and dropped events.
func (n *Network) Stats() (sent, delivered, dropped int64) {
	return n.sent.Load(), n.delivered.Load(), n.dropped.Load()
}

// Outbox returns the number of local events waiting for channel space and
// the number that could not be sent at all. A non-zero lost count means the
// peer will diverge.
func (n *Network) Outbox() (queued int, lost int64) {
	n.outMu.Lock()
	defer n.outMu.Unlock()
	return len(n.outbox), n.lost.Load()
}

// Close stops forwarding and closes the channel.
func (n *Network) Close() error {
	if !n.closed.CompareAndSwap(false, true) {
		return nil
	}
	n.unsubscribe()
	return n.ch.Close()
}
