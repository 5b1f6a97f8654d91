package clock

import "testing"

func TestTickMonotonicallyIncreases(t *testing.T) {
	var c Clock
	prev := c.Value()
	for i := 0; i < 100; i++ {
		ts := c.Tick()
		if ts <= prev {
			t.Fatalf("Tick %d: got %d, want > %d", i, ts, prev)
		}
		prev = ts
	}
}

func TestTickStartsFromZero(t *testing.T) {
	var c Clock
	if v := c.Value(); v != 0 {
		t.Fatalf("new clock: got %d, want 0", v)
	}
	if ts := c.Tick(); ts != 1 {
		t.Fatalf("first Tick: got %d, want 1", ts)
	}
}

func TestObserveTakesMax(t *testing.T) {
	var c Clock
	c.Set(5)

	if ts := c.Observe(10); ts != 10 {
		t.Fatalf("Observe(10) from 5: got %d, want 10", ts)
	}
	if ts := c.Observe(3); ts != 10 {
		t.Fatalf("Observe(3) from 10: got %d, want 10", ts)
	}
	if ts := c.Tick(); ts != 11 {
		t.Fatalf("Tick after Observe: got %d, want 11", ts)
	}
}

func TestSetAndValue(t *testing.T) {
	var c Clock
	c.Set(42)
	if v := c.Value(); v != 42 {
		t.Fatalf("after Set(42): got %d, want 42", v)
	}
	c.Set(0)
	if ts := c.Tick(); ts != 1 {
		t.Fatalf("Tick after Set(0): got %d, want 1", ts)
	}
}

type key struct {
	tick   int64
	origin string
	seq    uint64
}

func TestTotalOrderLess(t *testing.T) {
	cases := []struct {
		name string
		a, b key
		want bool
	}{
		{"earlier tick wins", key{1, "zed", 0}, key{2, "amy", 0}, true},
		{"later tick loses", key{3, "", 0}, key{2, "", 0}, false},
		{"same tick, origin breaks tie", key{5, "alice", 9}, key{5, "bob", 1}, true},
		{"same tick and origin, seq breaks tie", key{5, "alice", 1}, key{5, "alice", 2}, true},
		{"identical is not less", key{5, "alice", 1}, key{5, "alice", 1}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := TotalOrderLess(tc.a.tick, tc.a.origin, tc.a.seq, tc.b.tick, tc.b.origin, tc.b.seq)
			if got != tc.want {
				t.Fatalf("TotalOrderLess(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestTotalOrderLess_Antisymmetric(t *testing.T) {
	if TotalOrderLess(4, "a", 1, 4, "b", 1) == TotalOrderLess(4, "b", 1, 4, "a", 1) {
		t.Fatal("swapping operands must flip the result for distinct keys")
	}
}
