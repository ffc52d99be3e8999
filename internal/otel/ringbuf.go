package otel

import (
	"maps"
	"sync"
)

// DefaultRingSize is the default ring buffer capacity.
const DefaultRingSize = 512

// RingBuffer is a fixed-size circular buffer of Events for the debug overlay.
// Goroutine-safe.
type RingBuffer struct {
	mu    sync.Mutex
	buf   []Event
	head  int // next write position
	count int
}

// NewRingBuffer creates a ring buffer with the given capacity.
func NewRingBuffer(size int) *RingBuffer {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &RingBuffer{buf: make([]Event, size)}
}

// Push adds an event, overwriting the oldest if full. Extra is copied so the
// caller may keep mutating its map.
func (r *RingBuffer) Push(e Event) {
	if e.Extra != nil {
		e.Extra = maps.Clone(e.Extra)
	}
	r.mu.Lock()
	r.buf[r.head] = e
	r.head = (r.head + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
	r.mu.Unlock()
}

// at returns the i-th oldest event. Caller holds r.mu.
func (r *RingBuffer) at(i int) Event {
	start := 0
	if r.count == len(r.buf) {
		start = r.head
	}
	return r.buf[(start+i)%len(r.buf)]
}

// Snapshot returns all events oldest first.
func (r *RingBuffer) Snapshot() []Event {
	return r.Last(r.Cap())
}

// Last returns the n most recent events, oldest first.
func (r *RingBuffer) Last(n int) []Event {
	if n <= 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.count == 0 {
		return nil
	}
	if n > r.count {
		n = r.count
	}
	out := make([]Event, 0, n)
	for i := r.count - n; i < r.count; i++ {
		out = append(out, r.at(i))
	}
	return out
}

// ByQueryID returns buffered events carrying qid, oldest first.
func (r *RingBuffer) ByQueryID(qid string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Event
	for i := 0; i < r.count; i++ {
		if e := r.at(i); e.QueryID == qid {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of buffered events.
func (r *RingBuffer) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Cap returns the buffer capacity.
func (r *RingBuffer) Cap() int {
	return len(r.buf)
}

// Stats counts buffered events by kind.
func (r *RingBuffer) Stats() map[EventKind]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := make(map[EventKind]int)
	for i := 0; i < r.count; i++ {
		counts[r.at(i).Kind]++
	}
	return counts
}
