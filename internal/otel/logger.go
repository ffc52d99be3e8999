package otel

// Goroutine safety:
// The drain goroutine is the sole reader of l.ch and the sole writer to l.w.
// Logger.mu protects only the l.ring pointer (read by drain, written by Attach).
// The ring buffer's own mu handles concurrent Push/Snapshot/Last/Stats calls.

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// queueSize is the capacity of the async write channel.
const queueSize = 2048

type logEntry struct {
	data []byte
	ev   Event
}

// Logger serializes events as JSONL via an async background writer.
// Goroutine-safe. A nil *Logger discards everything.
type Logger struct {
	mu        sync.Mutex
	ring      *RingBuffer
	sessionID string
	ch        chan logEntry
	w         io.Writer
	dropped   atomic.Uint64
	closed    atomic.Bool
	done      chan struct{}
	closeOnce sync.Once
}

// NewLogger creates a Logger writing JSONL to w asynchronously.
// Call Close() to flush and stop the drain goroutine.
func NewLogger(w io.Writer) *Logger {
	l := &Logger{
		sessionID: uuid.NewString(),
		ch:        make(chan logEntry, queueSize),
		w:         w,
		done:      make(chan struct{}),
	}
	go l.drain()
	return l
}

// NewNullLogger creates a Logger that discards output.
func NewNullLogger() *Logger {
	return NewLogger(io.Discard)
}

func (l *Logger) drain() {
	defer close(l.done)
	for entry := range l.ch {
		if _, err := l.w.Write(entry.data); err != nil {
			l.dropped.Add(1)
		}

		l.mu.Lock()
		rb := l.ring
		l.mu.Unlock()

		if rb != nil {
			rb.Push(entry.ev)
		}
	}
}

// Emit writes an event to the JSONL log (and ring buffer if attached).
// Sets Time (if zero) and SessionID. Non-blocking: if the channel is full or
// the logger is closed, the event is dropped and counted.
func (l *Logger) Emit(e Event) {
	if l == nil {
		return
	}
	defer func() {
		// Close can race the closed-flag check below.
		if recover() != nil {
			l.dropped.Add(1)
		}
	}()

	if l.closed.Load() {
		l.dropped.Add(1)
		return
	}

	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	e.SessionID = l.sessionID

	data, err := json.Marshal(e)
	if err != nil {
		l.dropped.Add(1)
		return
	}
	data = append(data, '\n')

	select {
	case l.ch <- logEntry{data: data, ev: e}:
	default:
		l.dropped.Add(1)
	}
}

// Info emits an info-level event.
func (l *Logger) Info(kind EventKind, comp string, msg string) {
	l.Emit(Event{Level: LevelInfo, Kind: kind, Comp: comp, Msg: msg})
}

// Warn emits a warn-level event.
func (l *Logger) Warn(kind EventKind, comp string, msg string) {
	l.Emit(Event{Level: LevelWarn, Kind: kind, Comp: comp, Msg: msg})
}

// Error emits an error-level event. Nil err is logged as an empty string.
func (l *Logger) Error(kind EventKind, comp string, err error) {
	errStr := ""
	if err != nil {
		errStr = err.Error()
	}
	l.Emit(Event{Level: LevelError, Kind: kind, Comp: comp, Err: errStr})
}

// Attach sets the ring buffer that receives every drained event.
func (l *Logger) Attach(ring *RingBuffer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ring = ring
}

// SessionID returns the id stamped on every event of this run.
func (l *Logger) SessionID() string {
	return l.sessionID
}

// Dropped returns the number of events dropped since creation.
func (l *Logger) Dropped() uint64 {
	return l.dropped.Load()
}

// Close flushes pending events, stops the drain goroutine, and reports any
// dropped events to stderr. Concurrent Emit calls after Close are dropped.
func (l *Logger) Close() {
	if l == nil {
		return
	}
	l.closeOnce.Do(func() {
		l.closed.Store(true)
		close(l.ch)
		<-l.done

		if d := l.dropped.Load(); d > 0 {
			fmt.Fprintf(os.Stderr, "bookscout: %d events dropped during session %s\n", d, l.sessionID)
		}
	})
}
