package ledger

import (
	"errors"
	"testing"

	"github.com/Coding-Sunday-Sofia/AdsBobBall/pkg/event"
)

func ev(tick int, origin string, seq uint64) event.Event {
	return event.Event{Tick: tick, Origin: origin, Seq: seq, SpawnBall: &event.SpawnBall{}}
}

func ticks(l *Ledger) []int {
	var out []int
	for _, e := range l.Events() {
		out = append(out, e.Tick)
	}
	return out
}

func TestLedger_Empty(t *testing.T) {
	l := New()
	if got := l.EarliestTime(); got != Never {
		t.Fatalf("EarliestTime: got %d, want Never", got)
	}
	if _, ok := l.PopAt(0); ok {
		t.Fatal("PopAt on empty ledger returned an event")
	}
	if _, ok := l.PopOldestNewerThan(-1); ok {
		t.Fatal("PopOldestNewerThan on empty ledger returned an event")
	}
	if got := l.PurgeOlderThan(100); got != 0 {
		t.Fatalf("PurgeOlderThan: got %d, want 0", got)
	}
}

func TestLedger_InsertKeepsOrder(t *testing.T) {
	l := New()
	for _, e := range []event.Event{ev(9, "a", 1), ev(2, "a", 2), ev(5, "b", 1), ev(5, "a", 3), ev(0, "c", 1)} {
		if err := l.Insert(e); err != nil {
			t.Fatalf("Insert %s: %v", e, err)
		}
	}
	want := []int{0, 2, 5, 5, 9}
	got := ticks(l)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ticks: got %v, want %v", got, want)
		}
	}
	if e := l.Events()[2]; e.Origin != "a" {
		t.Fatalf("same-tick order: got origin %q first, want a", e.Origin)
	}
	if got := l.EarliestTime(); got != 0 {
		t.Fatalf("EarliestTime: got %d, want 0", got)
	}
}

func TestLedger_InsertRejectsDuplicateKey(t *testing.T) {
	l := New()
	if err := l.Insert(ev(3, "a", 1)); err != nil {
		t.Fatal(err)
	}
	err := l.Insert(ev(8, "a", 1))
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("got %v, want ErrDuplicate", err)
	}
	if l.Len() != 1 {
		t.Fatalf("Len: got %d, want 1", l.Len())
	}
	// A popped key may be inserted again.
	l.PopAt(3)
	if err := l.Insert(ev(3, "a", 1)); err != nil {
		t.Fatalf("re-insert after pop: %v", err)
	}
}

func TestLedger_PopAt(t *testing.T) {
	l := New()
	l.Insert(ev(4, "b", 1))
	l.Insert(ev(4, "a", 1))
	l.Insert(ev(7, "a", 2))

	if _, ok := l.PopAt(5); ok {
		t.Fatal("PopAt(5) returned an event")
	}
	e, ok := l.PopAt(4)
	if !ok || e.Origin != "a" {
		t.Fatalf("first PopAt(4): got %v %v, want origin a", e, ok)
	}
	e, ok = l.PopAt(4)
	if !ok || e.Origin != "b" {
		t.Fatalf("second PopAt(4): got %v %v, want origin b", e, ok)
	}
	if _, ok := l.PopAt(4); ok {
		t.Fatal("third PopAt(4) returned an event")
	}
	if l.Has(event.Key{Origin: "a", Seq: 1}) {
		t.Fatal("popped key still held")
	}
	if l.Len() != 1 {
		t.Fatalf("Len: got %d, want 1", l.Len())
	}
}

func TestLedger_PopOldestNewerThan(t *testing.T) {
	l := New()
	l.Insert(ev(3, "a", 1))
	l.Insert(ev(6, "a", 2))
	l.Insert(ev(6, "a", 3))
	l.Insert(ev(9, "a", 4))

	var got []uint64
	for {
		e, ok := l.PopOldestNewerThan(3)
		if !ok {
			break
		}
		got = append(got, e.Seq)
	}
	if len(got) != 3 || got[0] != 2 || got[1] != 3 || got[2] != 4 {
		t.Fatalf("popped seqs: got %v, want [2 3 4]", got)
	}
	if l.Len() != 1 || l.EarliestTime() != 3 {
		t.Fatalf("remaining: got %v, want [3]", ticks(l))
	}
}

func TestLedger_PurgeOlderThan(t *testing.T) {
	l := New()
	for i, tick := range []int{1, 2, 2, 5, 8} {
		l.Insert(ev(tick, "a", uint64(i)))
	}
	if got := l.PurgeOlderThan(5); got != 3 {
		t.Fatalf("purged: got %d, want 3", got)
	}
	if got := ticks(l); len(got) != 2 || got[0] != 5 {
		t.Fatalf("remaining: got %v, want [5 8]", got)
	}
	if l.Has(event.Key{Origin: "a", Seq: 0}) {
		t.Fatal("purged key still held")
	}
}

func TestLedger_EventsIsCopy(t *testing.T) {
	l := New()
	l.Insert(ev(1, "a", 1))
	evs := l.Events()
	evs[0].Tick = 99
	if l.EarliestTime() != 1 {
		t.Fatal("Events exposed internal storage")
	}
}

func TestLedger_Clear(t *testing.T) {
	l := New()
	l.Insert(ev(1, "a", 1))
	l.Clear()
	if l.Len() != 0 || l.Has(event.Key{Origin: "a", Seq: 1}) {
		t.Fatal("Clear left events behind")
	}
	if err := l.Insert(ev(1, "a", 1)); err != nil {
		t.Fatalf("insert after Clear: %v", err)
	}
}
