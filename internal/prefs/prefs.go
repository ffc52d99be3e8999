// Package prefs holds the user's local preferences: the color theme and the
// favorites list. Both load once at construction, persist on every change,
// and never surface storage failures to callers.
package prefs

import (
	"slices"
	"sync"

	"github.com/abelbrown/bookscout/internal/book"
	"github.com/abelbrown/bookscout/internal/logging"
	"github.com/abelbrown/bookscout/internal/otel"
)

// Persistence is the storage the stores write through. *store.Store
// implements it.
type Persistence interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	LoadFavorites() ([]book.Summary, error)
	SaveFavorites(list []book.Summary) error
}

const (
	themeKey   = "theme"
	themeDark  = "dark"
	themeLight = "light"
)

// listeners is a small ordered subscriber set shared by both stores.
type listeners[T any] struct {
	mu   sync.Mutex
	next int
	subs []listener[T]
}

type listener[T any] struct {
	id int
	fn func(T)
}

func (l *listeners[T]) add(fn func(T)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.next++
	id := l.next
	l.subs = append(l.subs, listener[T]{id: id, fn: fn})
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.subs = slices.DeleteFunc(l.subs, func(s listener[T]) bool { return s.id == id })
	}
}

func (l *listeners[T]) notify(v T) {
	l.mu.Lock()
	subs := slices.Clone(l.subs)
	l.mu.Unlock()
	for _, s := range subs {
		s.fn(v)
	}
}

func storeFailed(events otel.Emitter, op string, err error) {
	logging.Warn("preference storage failed", "op", op, "err", err)
	otel.Emit(events, otel.Event{
		Level: otel.LevelWarn, Kind: otel.KindStoreError, Comp: "prefs", Msg: op, Err: err.Error(),
	})
}
