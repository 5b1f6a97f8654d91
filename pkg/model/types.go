// Package model defines the persisted records of bobball.
//
// Two kinds of rows outlive a process:
//
//   - Save: a suspended engine, stored by name. The snapshot blob is the
//     msgpack encoding produced by engine.EncodeSnapshot; the other columns
//     are copied out of it so listings need not decode every blob.
//
//   - Result: one finished (or abandoned) level, recorded when a match
//     driver stops. Scores are per player, in player id order.
package model

import (
	"fmt"
	"time"
)

// Save describes a stored engine snapshot. Data is only populated by
// LoadSnapshot; listings leave it nil.
type Save struct {
	Name     string    `json:"name"`
	Origin   string    `json:"origin"`
	GameTime int       `json:"game_time"`
	Tick     int       `json:"tick"`
	Level    int       `json:"level"`
	Checksum uint64    `json:"checksum"`
	Size     int       `json:"size"`
	SavedAt  time.Time `json:"saved_at"`
	Data     []byte    `json:"-"`
}

// Outcome is how a recorded level ended.
type Outcome string

const (
	OutcomeWon     Outcome = "won"
	OutcomeLost    Outcome = "lost"
	OutcomeStopped Outcome = "stopped"
)

// Valid reports whether o is a known outcome.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeWon, OutcomeLost, OutcomeStopped:
		return true
	}
	return false
}

// Result is one recorded level.
type Result struct {
	ID         int64     `json:"id"`
	Origin     string    `json:"origin"`
	Seed       int64     `json:"seed"`
	Level      int       `json:"level"`
	Tick       int       `json:"tick"`
	Outcome    Outcome   `json:"outcome"`
	Percent    int       `json:"percent"`
	Scores     []int     `json:"scores"`
	Checksum   uint64    `json:"checksum"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Validate checks the fields the store relies on.
func (r Result) Validate() error {
	switch {
	case r.Origin == "":
		return fmt.Errorf("result: empty origin")
	case r.Level < 1:
		return fmt.Errorf("result: level %d", r.Level)
	case r.Tick < 0:
		return fmt.Errorf("result: tick %d", r.Tick)
	case !r.Outcome.Valid():
		return fmt.Errorf("result: outcome %q", r.Outcome)
	}
	return nil
}

// Best returns the highest score, or 0 with no players.
func (r Result) Best() int {
	best := 0
	for _, s := range r.Scores {
		if s > best {
			best = s
		}
	}
	return best
}
