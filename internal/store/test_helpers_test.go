package store

import (
	"context"
	"path/filepath"
	"testing"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// beginTestRun starts a run with minimal required fields.
func beginTestRun(t *testing.T, s *Store, id string) Run {
	t.Helper()
	run, err := s.BeginRun(context.Background(), Run{
		ID:          id,
		Profile:     "v1",
		ProfileHash: "test-hash",
		ScenesDir:   "/scenes",
	})
	if err != nil {
		t.Fatalf("BeginRun() failed: %v", err)
	}
	return run
}
