// Package checkpoint keeps the bounded rollback history of a simulation: a
// live head that the engine mutates tick by tick, followed by frozen
// snapshots ordered newest-first.
//
// The history length, head included, never exceeds its capacity. When a new
// checkpoint would overflow it, the oldest snapshot is evicted; the oldest
// retained tick is therefore the furthest a rollback can reach.
package checkpoint

import "github.com/Coding-Sunday-Sofia/AdsBobBall/pkg/game"

// MinCapacity is the smallest usable capacity: the head plus one snapshot.
const MinCapacity = 2

// History is a bounded checkpoint history. Not goroutine-safe.
type History struct {
	capacity int
	head     *game.State
	frozen   []*game.State // newest first
}

// New returns an empty history holding at most capacity states.
func New(capacity int) *History {
	if capacity < MinCapacity {
		capacity = MinCapacity
	}
	return &History{capacity: capacity}
}

// Capacity returns the configured bound.
func (h *History) Capacity() int { return h.capacity }

// Reset makes s the only entry.
func (h *History) Reset(s *game.State) {
	h.head = s
	h.frozen = nil
}

// Head returns the live state, or nil before the first Reset.
func (h *History) Head() *game.State { return h.head }

// Len returns the number of entries, head included.
func (h *History) Len() int {
	if h.head == nil {
		return 0
	}
	return 1 + len(h.frozen)
}

// Frozen returns the snapshots newest-first. Callers must not mutate them.
func (h *History) Frozen() []*game.State {
	return append([]*game.State(nil), h.frozen...)
}

// Checkpoint freezes a copy of the head, evicting the oldest snapshot when
// the history is full. It is a no-op without a head, and when a snapshot at
// the head's tick already exists.
func (h *History) Checkpoint() bool {
	if h.head == nil {
		return false
	}
	if len(h.frozen) > 0 && h.frozen[0].Tick >= h.head.Tick {
		return false
	}
	h.frozen = append([]*game.State{h.head.Clone()}, h.frozen...)
	if limit := h.capacity - 1; len(h.frozen) > limit {
		h.frozen[len(h.frozen)-1] = nil
		h.frozen = h.frozen[:limit]
	}
	return true
}

// NewestTick returns the tick of the newest snapshot.
func (h *History) NewestTick() (int, bool) {
	if len(h.frozen) == 0 {
		return 0, false
	}
	return h.frozen[0].Tick, true
}

// OldestTick returns the oldest retained tick: the oldest snapshot's, or
// the head's when there is none.
func (h *History) OldestTick() int {
	if n := len(h.frozen); n > 0 {
		return h.frozen[n-1].Tick
	}
	if h.head != nil {
		return h.head.Tick
	}
	return 0
}

// Revert replaces the head with a copy of the newest snapshot at or before
// tick and discards every newer snapshot. When every snapshot is newer than
// tick it falls back to the oldest one and reports fallback. ok is false when
// there is no snapshot at all; the head is then left untouched.
func (h *History) Revert(tick int) (target int, fallback, ok bool) {
	if len(h.frozen) == 0 {
		return 0, false, false
	}
	i := len(h.frozen) - 1
	fallback = true
	for j, s := range h.frozen {
		if s.Tick <= tick {
			i, fallback = j, false
			break
		}
	}
	for j := 0; j < i; j++ {
		h.frozen[j] = nil
	}
	h.frozen = h.frozen[i:]
	h.head = h.frozen[0].Clone()
	return h.head.Tick, fallback, true
}

// Restore installs a head and newest-first snapshots, trimming to capacity.
func (h *History) Restore(head *game.State, frozen []*game.State) {
	h.head = head
	h.frozen = append([]*game.State(nil), frozen...)
	if limit := h.capacity - 1; len(h.frozen) > limit {
		h.frozen = h.frozen[:limit]
	}
}
