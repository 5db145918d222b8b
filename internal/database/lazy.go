package database

import (
	"fmt"
	"sync"

	"clinic-go/internal/clinic"
)

// Lazy is the record store adapter: it hands out one shared store handle,
// constructing and initializing it on first Acquire. The mutex is held for
// the whole initialization, so concurrent first callers serialize and
// exactly one initialization runs. A failed initialization is not cached;
// the next Acquire retries.
type Lazy struct {
	mu    sync.Mutex
	open  func() (clinic.Store, error)
	store clinic.Store
}

// NewLazy creates a Lazy provider around the given open function.
func NewLazy(open func() (clinic.Store, error)) *Lazy {
	return &Lazy{open: open}
}

// Acquire returns the shared store handle, initializing it on first call.
func (l *Lazy) Acquire() (clinic.Store, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.store != nil {
		return l.store, nil
	}

	store, err := l.open()
	if err != nil {
		return nil, fmt.Errorf("store unavailable: %w", err)
	}
	l.store = store
	return store, nil
}

// Close closes the underlying store if it was ever initialized.
// A later Acquire re-initializes.
func (l *Lazy) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.store == nil {
		return nil
	}
	err := l.store.Close()
	l.store = nil
	return err
}

// Compile-time check that Lazy implements the clinic.StoreProvider interface
var _ clinic.StoreProvider = (*Lazy)(nil)
