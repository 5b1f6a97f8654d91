package store

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Coding-Sunday-Sofia/AdsBobBall/pkg/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("New(%q): %v", dbPath, err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testSave(name string, tick int) *model.Save {
	return &model.Save{
		Name:     name,
		Origin:   "peer-a",
		GameTime: tick + 1,
		Tick:     tick,
		Level:    2,
		Checksum: 0xfeedfacecafebeef,
		Data:     []byte(fmt.Sprintf("snapshot-%s-%d", name, tick)),
	}
}

// --- Save tests ---

func TestSaveSnapshot_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	in := testSave("slot1", 500)
	if err := s.SaveSnapshot(in); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	if in.SavedAt.IsZero() || in.Size != len(in.Data) {
		t.Fatalf("SaveSnapshot did not fill SavedAt/Size: %+v", in)
	}

	got, err := s.LoadSnapshot("slot1")
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if got.Origin != "peer-a" || got.GameTime != 501 || got.Tick != 500 || got.Level != 2 {
		t.Fatalf("got %+v", got)
	}
	if got.Checksum != 0xfeedfacecafebeef {
		t.Fatalf("checksum = %x, high bit lost", got.Checksum)
	}
	if !bytes.Equal(got.Data, in.Data) || got.Size != len(in.Data) {
		t.Fatalf("data = %q (size %d)", got.Data, got.Size)
	}
	if !got.SavedAt.Equal(in.SavedAt) {
		t.Fatalf("saved_at = %v, want %v", got.SavedAt, in.SavedAt)
	}
}

func TestSaveSnapshot_Overwrites(t *testing.T) {
	s := newTestStore(t)
	if err := s.SaveSnapshot(testSave("slot", 1)); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveSnapshot(testSave("slot", 2)); err != nil {
		t.Fatal(err)
	}
	got, err := s.LoadSnapshot("slot")
	if err != nil {
		t.Fatal(err)
	}
	if got.Tick != 2 || string(got.Data) != "snapshot-slot-2" {
		t.Fatalf("got tick %d data %q", got.Tick, got.Data)
	}
	saves, err := s.ListSaves()
	if err != nil {
		t.Fatal(err)
	}
	if len(saves) != 1 {
		t.Fatalf("got %d saves, want 1", len(saves))
	}
}

func TestSaveSnapshot_Rejects(t *testing.T) {
	s := newTestStore(t)
	if err := s.SaveSnapshot(&model.Save{Data: []byte("x")}); err == nil {
		t.Fatal("empty name accepted")
	}
	if err := s.SaveSnapshot(&model.Save{Name: "x"}); err == nil {
		t.Fatal("empty data accepted")
	}
}

func TestLoadSnapshot_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.LoadSnapshot("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListSaves_NewestFirstWithoutData(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for i, name := range []string{"old", "mid", "new"} {
		sv := testSave(name, i)
		sv.SavedAt = base.Add(time.Duration(i) * time.Minute)
		if err := s.SaveSnapshot(sv); err != nil {
			t.Fatal(err)
		}
	}
	saves, err := s.ListSaves()
	if err != nil {
		t.Fatalf("ListSaves: %v", err)
	}
	if len(saves) != 3 {
		t.Fatalf("got %d saves, want 3", len(saves))
	}
	for i, want := range []string{"new", "mid", "old"} {
		if saves[i].Name != want {
			t.Errorf("saves[%d] = %q, want %q", i, saves[i].Name, want)
		}
		if saves[i].Data != nil {
			t.Errorf("saves[%d] carries data", i)
		}
		if saves[i].Size == 0 {
			t.Errorf("saves[%d] size not set", i)
		}
	}
}

func TestDeleteSave(t *testing.T) {
	s := newTestStore(t)
	if err := s.SaveSnapshot(testSave("gone", 1)); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteSave("gone"); err != nil {
		t.Fatalf("DeleteSave: %v", err)
	}
	if _, err := s.LoadSnapshot("gone"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("load after delete: %v", err)
	}
	if err := s.DeleteSave("gone"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}

// --- Result tests ---

func TestRecordResult(t *testing.T) {
	s := newTestStore(t)
	r := &model.Result{
		Origin:   "peer-a",
		Seed:     -99,
		Level:    3,
		Tick:     12000,
		Outcome:  model.OutcomeWon,
		Percent:  81,
		Scores:   []int{4200, 0},
		Checksum: 1 << 63,
	}
	id, err := s.RecordResult(r)
	if err != nil {
		t.Fatalf("RecordResult: %v", err)
	}
	if id <= 0 || r.ID != id {
		t.Fatalf("id = %d, r.ID = %d", id, r.ID)
	}

	results, err := s.ListResults(10)
	if err != nil {
		t.Fatalf("ListResults: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results", len(results))
	}
	got := results[0]
	if got.Origin != "peer-a" || got.Seed != -99 || got.Level != 3 || got.Tick != 12000 ||
		got.Outcome != model.OutcomeWon || got.Percent != 81 || got.Checksum != 1<<63 {
		t.Fatalf("got %+v", got)
	}
	if len(got.Scores) != 2 || got.Scores[0] != 4200 || got.Scores[1] != 0 {
		t.Fatalf("scores = %v", got.Scores)
	}
	if got.RecordedAt.IsZero() {
		t.Fatal("recorded_at not set")
	}
}

func TestRecordResult_Rejects(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.RecordResult(&model.Result{Origin: "a", Level: 1, Outcome: "draw"}); err == nil {
		t.Fatal("invalid outcome accepted")
	}
	if n := s.CountResults(); n != 0 {
		t.Fatalf("count = %d after rejected insert", n)
	}
}

func TestRecordResult_NilScores(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.RecordResult(&model.Result{Origin: "a", Level: 1, Outcome: model.OutcomeStopped}); err != nil {
		t.Fatal(err)
	}
	results, err := s.ListResults(0)
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Scores == nil || len(results[0].Scores) != 0 {
		t.Fatalf("scores = %#v, want empty", results[0].Scores)
	}
}

func TestListResults_NewestFirstWithLimit(t *testing.T) {
	s := newTestStore(t)
	for level := 1; level <= 5; level++ {
		if _, err := s.RecordResult(&model.Result{Origin: "a", Level: level, Outcome: model.OutcomeLost}); err != nil {
			t.Fatal(err)
		}
	}
	results, err := s.ListResults(3)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d, want 3", len(results))
	}
	for i, want := range []int{5, 4, 3} {
		if results[i].Level != want {
			t.Errorf("results[%d].Level = %d, want %d", i, results[i].Level, want)
		}
	}
	if n := s.CountResults(); n != 5 {
		t.Fatalf("count = %d, want 5", n)
	}
}

// --- Persistence and concurrency ---

func TestStore_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "reopen.db")
	s, err := New(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SaveSnapshot(testSave("keep", 7)); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s2, err := New(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	got, err := s2.LoadSnapshot("keep")
	if err != nil {
		t.Fatalf("LoadSnapshot after reopen: %v", err)
	}
	if got.Tick != 7 {
		t.Fatalf("tick = %d", got.Tick)
	}
}

func TestStore_ConcurrentWriters(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "concurrent.db")
	stores := make([]*Store, 4)
	for i := range stores {
		s, err := New(dbPath)
		if err != nil {
			t.Fatal(err)
		}
		stores[i] = s
		defer s.Close()
	}

	var wg sync.WaitGroup
	errs := make(chan error, 4*10)
	for i, s := range stores {
		wg.Add(1)
		go func(i int, s *Store) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				if _, err := s.RecordResult(&model.Result{
					Origin: fmt.Sprintf("w%d", i), Level: 1, Tick: j, Outcome: model.OutcomeStopped,
				}); err != nil {
					errs <- err
				}
				if err := s.SaveSnapshot(testSave(fmt.Sprintf("w%d", i), j)); err != nil {
					errs <- err
				}
			}
		}(i, s)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("writer: %v", err)
	}
	if n := stores[0].CountResults(); n != 40 {
		t.Fatalf("count = %d, want 40", n)
	}
	saves, err := stores[0].ListSaves()
	if err != nil {
		t.Fatal(err)
	}
	if len(saves) != 4 {
		t.Fatalf("got %d saves, want 4", len(saves))
	}
}
