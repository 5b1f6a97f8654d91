// Package transport provides message channels between peers: an in-memory
// pipe, a wrapper that delays delivery by a number of frames, and a
// websocket adapter.
//
// A Channel carries opaque binary messages. It is reliable and ordered;
// delay is allowed, loss is not.
package transport

import (
	"errors"
	"sync"
)

var (
	// ErrClosed is returned by Send after either end is closed.
	ErrClosed = errors.New("channel closed")
	// ErrFull is returned by Send when the receiver is too far behind.
	ErrFull = errors.New("channel full")
)

// Channel is a bidirectional message stream to one peer.
type Channel interface {
	// Send queues b for the peer. b may be reused after Send returns.
	Send(b []byte) error
	// Recv yields inbound messages and is closed when the channel ends.
	Recv() <-chan []byte
	// Close ends the channel for both sides.
	Close() error
}

// Advancer is implemented by channels whose delivery is paced by frames.
type Advancer interface {
	Advance()
}

// PipeBuffer is the number of messages each direction of a Pipe buffers.
const PipeBuffer = 4096

type pipe struct {
	mu     sync.Mutex
	closed bool
	ab, ba chan []byte
}

type pipeEnd struct {
	p       *pipe
	in, out chan []byte
}

// Pipe returns two connected in-memory channels.
func Pipe() (Channel, Channel) {
	p := &pipe{ab: make(chan []byte, PipeBuffer), ba: make(chan []byte, PipeBuffer)}
	return &pipeEnd{p: p, in: p.ba, out: p.ab}, &pipeEnd{p: p, in: p.ab, out: p.ba}
}

func (e *pipeEnd) Send(b []byte) error {
	e.p.mu.Lock()
	defer e.p.mu.Unlock()
	if e.p.closed {
		return ErrClosed
	}
	select {
	case e.out <- append([]byte(nil), b...):
		return nil
	default:
		return ErrFull
	}
}

func (e *pipeEnd) Recv() <-chan []byte { return e.in }

func (e *pipeEnd) Close() error {
	e.p.mu.Lock()
	defer e.p.mu.Unlock()
	if e.p.closed {
		return nil
	}
	e.p.closed = true
	close(e.p.ab)
	close(e.p.ba)
	return nil
}
