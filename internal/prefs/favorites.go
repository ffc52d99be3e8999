package prefs

import (
	"slices"
	"sync"

	"github.com/abelbrown/bookscout/internal/book"
	"github.com/abelbrown/bookscout/internal/otel"
)

// Favorites is an ordered set of books keyed by ID.
type Favorites struct {
	mu     sync.Mutex
	list   []book.Summary
	index  map[string]struct{}
	p      Persistence
	events otel.Emitter
	subs   listeners[[]book.Summary]
}

// NewFavorites loads stored favorites from p. p and events may be nil.
func NewFavorites(p Persistence, events otel.Emitter) *Favorites {
	f := &Favorites{index: make(map[string]struct{}), p: p, events: events}
	if p == nil {
		return f
	}
	list, err := p.LoadFavorites()
	if err != nil {
		storeFailed(events, "load favorites", err)
		return f
	}
	for _, b := range list {
		if _, dup := f.index[b.ID]; dup || b.ID == "" {
			continue
		}
		f.index[b.ID] = struct{}{}
		f.list = append(f.list, b)
	}
	return f
}

// Has reports whether id is a favorite.
func (f *Favorites) Has(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.index[id]
	return ok
}

// Len returns the number of favorites.
func (f *Favorites) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.list)
}

// List returns a copy of the favorites, oldest first.
func (f *Favorites) List() []book.Summary {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.copyLocked()
}

// Add appends b unless it is already present. Reports whether it was added.
func (f *Favorites) Add(b book.Summary) bool {
	f.mu.Lock()
	if _, ok := f.index[b.ID]; ok || b.ID == "" {
		f.mu.Unlock()
		return false
	}
	f.index[b.ID] = struct{}{}
	f.list = append(f.list, b.Clone())
	f.mu.Unlock()

	f.changed()
	return true
}

// Remove drops id. Reports whether it was present.
func (f *Favorites) Remove(id string) bool {
	f.mu.Lock()
	if _, ok := f.index[id]; !ok {
		f.mu.Unlock()
		return false
	}
	delete(f.index, id)
	f.list = slices.DeleteFunc(f.list, func(b book.Summary) bool { return b.ID == id })
	f.mu.Unlock()

	f.changed()
	return true
}

// Toggle adds b if absent, removes it otherwise. Returns the new membership.
func (f *Favorites) Toggle(b book.Summary) bool {
	if f.Has(b.ID) {
		f.Remove(b.ID)
		return false
	}
	return f.Add(b)
}

// Subscribe calls fn with the new list after every change.
func (f *Favorites) Subscribe(fn func([]book.Summary)) (unsubscribe func()) {
	return f.subs.add(fn)
}

func (f *Favorites) copyLocked() []book.Summary {
	out := make([]book.Summary, len(f.list))
	for i, b := range f.list {
		out[i] = b.Clone()
	}
	return out
}

func (f *Favorites) changed() {
	f.mu.Lock()
	snapshot := f.copyLocked()
	f.mu.Unlock()

	if f.p != nil {
		if err := f.p.SaveFavorites(snapshot); err != nil {
			storeFailed(f.events, "save favorites", err)
		}
	}
	f.subs.notify(snapshot)
}
