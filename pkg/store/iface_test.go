package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/Coding-Sunday-Sofia/AdsBobBall/pkg/model"
)

// TestStoreImplementsInterface verifies at runtime that *Store satisfies
// StoreInterface by calling every method on a real store.
func TestStoreImplementsInterface(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var iface StoreInterface = s
	defer iface.Close()

	// Saves
	if err := iface.SaveSnapshot(&model.Save{Name: "a", Origin: "o", Level: 1, Data: []byte{1, 2, 3}}); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	sv, err := iface.LoadSnapshot("a")
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if sv.Size != 3 {
		t.Errorf("size = %d, want 3", sv.Size)
	}
	saves, err := iface.ListSaves()
	if err != nil {
		t.Fatalf("ListSaves: %v", err)
	}
	if len(saves) != 1 {
		t.Errorf("expected 1 save, got %d", len(saves))
	}
	if err := iface.DeleteSave("a"); err != nil {
		t.Fatalf("DeleteSave: %v", err)
	}
	if err := iface.DeleteSave("a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteSave missing: %v", err)
	}

	// Results
	id, err := iface.RecordResult(&model.Result{Origin: "o", Level: 1, Outcome: model.OutcomeLost})
	if err != nil {
		t.Fatalf("RecordResult: %v", err)
	}
	if id != 1 {
		t.Errorf("first result id = %d", id)
	}
	results, err := iface.ListResults(5)
	if err != nil {
		t.Fatalf("ListResults: %v", err)
	}
	if len(results) != 1 || results[0].ID != id {
		t.Errorf("results = %+v", results)
	}
	if n := iface.CountResults(); n != 1 {
		t.Errorf("CountResults = %d", n)
	}
}
