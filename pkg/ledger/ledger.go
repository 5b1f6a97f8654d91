// Package ledger holds an ordered multiset of events.
//
// The engine keeps two ledgers, pending and processed. Events are kept
// sorted by the total order (Tick, Origin, Seq), so every peer holding the
// same events iterates them identically whatever order they arrived in.
// Each (Origin, Seq) key is held at most once.
//
// A Ledger is not goroutine-safe; the engine serializes all access.
package ledger

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/Coding-Sunday-Sofia/AdsBobBall/pkg/event"
)

// ErrDuplicate is returned when an event with the same key is already held.
var ErrDuplicate = errors.New("duplicate event")

// Never is returned by EarliestTime for an empty ledger.
const Never = math.MaxInt

// Ledger is a sorted event multiset.
type Ledger struct {
	events []event.Event
	keys   map[event.Key]struct{}
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{keys: make(map[event.Key]struct{})}
}

// Len returns the number of events held.
func (l *Ledger) Len() int { return len(l.events) }

// Has reports whether an event with key k is held.
func (l *Ledger) Has(k event.Key) bool {
	_, ok := l.keys[k]
	return ok
}

// Insert adds e in order.
func (l *Ledger) Insert(e event.Event) error {
	k := e.Key()
	if _, ok := l.keys[k]; ok {
		return fmt.Errorf("insert %s: %w", e, ErrDuplicate)
	}
	i := sort.Search(len(l.events), func(i int) bool { return e.Less(l.events[i]) })
	l.events = append(l.events, event.Event{})
	copy(l.events[i+1:], l.events[i:])
	l.events[i] = e
	l.keys[k] = struct{}{}
	return nil
}

// EarliestTime returns the smallest tick held, or Never.
func (l *Ledger) EarliestTime() int {
	if len(l.events) == 0 {
		return Never
	}
	return l.events[0].Tick
}

// PopAt removes and returns the first event due exactly at tick.
func (l *Ledger) PopAt(tick int) (event.Event, bool) {
	i := l.firstAtOrAfter(tick)
	if i == len(l.events) || l.events[i].Tick != tick {
		return event.Event{}, false
	}
	return l.removeAt(i), true
}

// PopOldestNewerThan removes and returns the first event with Tick > tick.
func (l *Ledger) PopOldestNewerThan(tick int) (event.Event, bool) {
	i := l.firstAtOrAfter(tick + 1)
	if i == len(l.events) {
		return event.Event{}, false
	}
	return l.removeAt(i), true
}

// PurgeOlderThan drops every event with Tick < tick and returns how many
// were dropped.
func (l *Ledger) PurgeOlderThan(tick int) int {
	n := l.firstAtOrAfter(tick)
	for _, e := range l.events[:n] {
		delete(l.keys, e.Key())
	}
	l.events = append(l.events[:0], l.events[n:]...)
	return n
}

// Events returns a copy of the held events in order.
func (l *Ledger) Events() []event.Event {
	return append([]event.Event(nil), l.events...)
}

// Clear drops every event.
func (l *Ledger) Clear() {
	l.events = nil
	clear(l.keys)
}

func (l *Ledger) firstAtOrAfter(tick int) int {
	return sort.Search(len(l.events), func(i int) bool { return l.events[i].Tick >= tick })
}

func (l *Ledger) removeAt(i int) event.Event {
	e := l.events[i]
	copy(l.events[i:], l.events[i+1:])
	l.events[len(l.events)-1] = event.Event{}
	l.events = l.events[:len(l.events)-1]
	delete(l.keys, e.Key())
	return e
}
