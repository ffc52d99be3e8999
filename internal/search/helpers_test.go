package search

import (
	"sync"

	"github.com/abelbrown/bookscout/internal/otel"
)

type recorder struct {
	mu     sync.Mutex
	events []otel.Event
}

func (r *recorder) Emit(e otel.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) kinds() []otel.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]otel.EventKind, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Kind)
	}
	return out
}

func (r *recorder) last(kind otel.EventKind) otel.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Kind == kind {
			return r.events[i]
		}
	}
	return otel.Event{}
}
