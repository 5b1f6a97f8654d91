// Package clock implements the logical clocks used by the simulation engine.
//
// Two counters drive the engine, and both follow Lamport's first
// implementation rule (increment before an internal event):
//
//	game clock:   the engine's notion of "now", advanced once per
//	              AdvanceOneTick. The live simulation state is always
//	              caught up to it before the call returns.
//	origin clock: issues the per-origin sequence number stamped on every
//	              locally created event.
//
// TotalOrderLess breaks ties between events that apply at the same tick
// using (origin, seq), giving every peer the same iteration order for the
// same event set without coordination.
//
// Note: Clock is not goroutine-safe. Every Clock in this module is owned by
// an engine and only touched inside the engine's critical section.
package clock

// Clock is a monotonic logical counter. Not goroutine-safe; see package doc.
type Clock struct {
	ts int64
}

// Tick increments the clock and returns the new value.
func (c *Clock) Tick() int64 {
	c.ts++
	return c.ts
}

// Observe applies Lamport's receive rule: the clock becomes
// max(own, received). Unlike a message-passing Lamport clock it does not add
// one, because observing a peer's sequence number is not itself an event.
// Returns the new value.
func (c *Clock) Observe(received int64) int64 {
	if received > c.ts {
		c.ts = received
	}
	return c.ts
}

// Value returns the current clock value without advancing it.
func (c *Clock) Value() int64 { return c.ts }

// Set initializes the clock to a specific value. Used when restoring a
// suspended engine and when a game is reset.
func (c *Clock) Set(v int64) { c.ts = v }

// TotalOrderLess defines the deterministic total order over events.
// Event A sorts before event B if:
//
//	tickA < tickB, or
//	tickA == tickB and originA < originB (lexicographic), or
//	tickA == tickB and originA == originB and seqA < seqB
//
// Arrival order never participates, so two peers that hold the same events
// apply same-tick events in the same order.
func TotalOrderLess(tickA int64, originA string, seqA uint64, tickB int64, originB string, seqB uint64) bool {
	if tickA != tickB {
		return tickA < tickB
	}
	if originA != originB {
		return originA < originB
	}
	return seqA < seqB
}
