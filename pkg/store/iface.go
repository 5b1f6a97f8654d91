// iface.go defines the StoreInterface for dependency injection and testing.
//
// The concrete *Store type satisfies this interface. The cmd layer accepts
// StoreInterface so tests can swap in a fake.
package store

import "github.com/Coding-Sunday-Sofia/AdsBobBall/pkg/model"

// StoreInterface defines the full set of store operations.
type StoreInterface interface {
	// Close closes the database connection.
	Close() error

	// --- Saves ---

	// SaveSnapshot stores a snapshot by name, replacing an existing one.
	SaveSnapshot(sv *model.Save) error

	// LoadSnapshot returns a save with its data, or ErrNotFound.
	LoadSnapshot(name string) (*model.Save, error)

	// ListSaves returns every save without data, newest first.
	ListSaves() ([]model.Save, error)

	// DeleteSave removes a save, or returns ErrNotFound.
	DeleteSave(name string) error

	// --- Results ---

	// RecordResult appends a level result. Returns the row ID.
	RecordResult(r *model.Result) (int64, error)

	// ListResults returns up to limit results, newest first.
	ListResults(limit int) ([]model.Result, error)

	// CountResults returns the number of recorded results.
	CountResults() int64
}

// Compile-time check that *Store implements StoreInterface.
var _ StoreInterface = (*Store)(nil)
