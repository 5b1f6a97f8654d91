package event

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Encode serializes e for the wire.
func Encode(e Event) ([]byte, error) {
	b, err := msgpack.Marshal(&e)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", e, err)
	}
	return b, nil
}

// Decode parses a wire payload and validates it. Remote events must carry an
// origin.
func Decode(b []byte) (Event, error) {
	var e Event
	if err := msgpack.Unmarshal(b, &e); err != nil {
		return Event{}, fmt.Errorf("%w: decode: %v", ErrInvalid, err)
	}
	if e.Origin == "" {
		return Event{}, fmt.Errorf("%w: missing origin", ErrInvalid)
	}
	if err := e.Validate(); err != nil {
		return Event{}, err
	}
	return e, nil
}
