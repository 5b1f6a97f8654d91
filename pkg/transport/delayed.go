package transport

import "sync"

// Delayed holds every outbound message for a fixed number of frames before
// passing it to the wrapped channel. Inbound messages are not delayed.
// Call Advance once per frame.
type Delayed struct {
	inner  Channel
	frames int

	mu     sync.Mutex
	frame  int
	held   []heldMessage
	closed bool
}

type heldMessage struct {
	due int
	b   []byte
}

var _ Advancer = (*Delayed)(nil)

// NewDelayed wraps ch. frames <= 0 delivers on the next Advance.
func NewDelayed(ch Channel, frames int) *Delayed {
	return &Delayed{inner: ch, frames: frames}
}

func (d *Delayed) Send(b []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	d.held = append(d.held, heldMessage{due: d.frame + d.frames, b: append([]byte(nil), b...)})
	return nil
}

// Advance moves to the next frame and forwards every message now due, in
// the order they were sent. It stops at the first send error and keeps the
// remaining messages.
func (d *Delayed) Advance() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.frame++
	n := 0
	for _, m := range d.held {
		if m.due > d.frame {
			break
		}
		if err := d.inner.Send(m.b); err != nil {
			break
		}
		n++
	}
	d.held = append(d.held[:0], d.held[n:]...)
}

// Held returns the number of messages not yet forwarded.
func (d *Delayed) Held() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.held)
}

func (d *Delayed) Recv() <-chan []byte { return d.inner.Recv() }

// Close drops held messages and closes the wrapped channel.
func (d *Delayed) Close() error {
	d.mu.Lock()
	d.closed = true
	d.held = nil
	d.mu.Unlock()
	return d.inner.Close()
}
