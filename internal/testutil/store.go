package testutil

import (
	"testing"

	"clinic-go/internal/clinic"
	"clinic-go/internal/database"
)

// NewTestStore creates a new in-memory SQLite store with migrations applied.
// The store is automatically closed when the test completes.
func NewTestStore(t *testing.T) *database.SQLiteStore {
	t.Helper()

	store, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

// StaticProvider hands out a pre-built store. Use in tests that don't
// exercise lazy initialization.
type StaticProvider struct {
	Store clinic.Store
}

func (p *StaticProvider) Acquire() (clinic.Store, error) {
	return p.Store, nil
}

// NewTestProvider wraps an in-memory test store in a StaticProvider.
func NewTestProvider(t *testing.T) *StaticProvider {
	t.Helper()
	return &StaticProvider{Store: NewTestStore(t)}
}
