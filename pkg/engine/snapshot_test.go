package engine

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Coding-Sunday-Sofia/AdsBobBall/pkg/game"
)

func TestSnapshot_ResumeProducesSameFuture(t *testing.T) {
	a := startedEngine(t, 1)
	p := farPoint(t, a.CurrentState())
	submit(t, a, startBar(4, p))
	submit(t, a, spawnBall(150, mgl32.Vec2{5.5, 5.5}))
	advance(a, 100)

	snap, err := a.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	raw, err := EncodeSnapshot(snap)
	if err != nil {
		t.Fatalf("EncodeSnapshot: %v", err)
	}
	decoded, err := DecodeSnapshot(raw)
	if err != nil {
		t.Fatalf("DecodeSnapshot: %v", err)
	}
	b, err := Resume(decoded, Options{})
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}

	if b.Origin() != a.Origin() || b.GameTime() != a.GameTime() {
		t.Fatalf("resumed identity: origin %q time %d, want %q %d", b.Origin(), b.GameTime(), a.Origin(), a.GameTime())
	}
	sameState(t, "after resume", a, b)
	if len(decoded.Pending) != 1 {
		t.Fatalf("pending in snapshot: got %d, want 1", len(decoded.Pending))
	}

	// The same future, including a late event that needs the restored
	// checkpoints.
	for _, e := range []*Engine{a, b} {
		advance(e, 20)
		submit(t, e, spawnBall(90, p.Add(mgl32.Vec2{0, 4})))
		advance(e, 60)
	}
	sameState(t, "after resumed run", a, b)
	if a.Stats().Rollbacks != b.Stats().Rollbacks {
		t.Fatalf("rollbacks: got %d and %d", a.Stats().Rollbacks, b.Stats().Rollbacks)
	}
}

func TestSnapshot_IsIndependent(t *testing.T) {
	e := startedEngine(t, 1)
	advance(e, 10)
	snap, err := e.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	sum := snap.Head().Checksum()
	advance(e, 10)
	if snap.Head().Checksum() != sum {
		t.Fatal("snapshot changed as the engine advanced")
	}
}

func TestRestore_Rejects(t *testing.T) {
	e := startedEngine(t, 1)
	good, err := e.Snapshot()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		snap *Snapshot
	}{
		{"nil", nil},
		{"no history", &Snapshot{Version: snapshotVersion, Origin: "x", Params: DefaultParams()}},
		{"wrong version", func() *Snapshot { s := *good; s.Version = 99; return &s }()},
		{"bad params", func() *Snapshot { s := *good; s.Params.CheckpointFreq = 0; return &s }()},
		{"no origin", func() *Snapshot { s := *good; s.Origin = ""; return &s }()},
		{"too many players", func() *Snapshot { s := *good; s.Players = game.MaxPlayers + 1; return &s }()},
		{"nil state", func() *Snapshot { s := *good; s.History = []*game.State{nil}; return &s }()},
		{"duplicate events", func() *Snapshot {
			s := *good
			ev := spawnBall(3, mgl32.Vec2{3, 3})
			ev.Origin, ev.Seq = "p", 1
			s.Pending = append(s.Pending, ev)
			s.Processed = append(s.Processed, ev)
			return &s
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := startedEngine(t, 2)
			before := target.CurrentState()
			if err := target.Restore(tt.snap); err == nil {
				t.Fatal("Restore accepted an invalid snapshot")
			}
			if target.CurrentState().Checksum() != before.Checksum() {
				t.Fatal("failed Restore modified the engine")
			}
		})
	}
}

func TestDecodeSnapshot_Garbage(t *testing.T) {
	if _, err := DecodeSnapshot([]byte("not msgpack")); err == nil {
		t.Fatal("expected error")
	}
}
