// Package storagetest provides store fixtures for tests.
package storagetest

import (
	"path/filepath"
	"testing"

	"github.com/julianstephens/habitual/internal/storage/sqlite"
)

// NewSQLiteStore returns an initialized SQLite store in a temp directory.
// The store is closed when the test ends.
func NewSQLiteStore(t *testing.T) *sqlite.Store {
	t.Helper()

	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})
	return store
}
