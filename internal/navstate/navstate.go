// Package navstate carries search criteria across a detail-view round trip.
package navstate

import (
	"sync"

	"github.com/abelbrown/bookscout/internal/book"
)

// Bridge is a single slot: the last Save wins. Goroutine-safe.
type Bridge struct {
	mu    sync.Mutex
	saved book.Criteria
	ok    bool
}

// New returns an empty bridge.
func New() *Bridge {
	return &Bridge{}
}

// Save stores c, replacing anything saved before.
func (b *Bridge) Save(c book.Criteria) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.saved = c
	b.ok = true
}

// Restore returns the saved criteria. It does not clear the slot.
func (b *Bridge) Restore() (book.Criteria, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saved, b.ok
}

// Clear empties the slot.
func (b *Bridge) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.saved = book.Criteria{}
	b.ok = false
}
