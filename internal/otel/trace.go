package otel

import (
	"os"
	"sync/atomic"
)

// traceEnabled gates high-volume debug events (one per keystroke).
var traceEnabled atomic.Bool

func init() {
	traceEnabled.Store(os.Getenv("BOOKSCOUT_TRACE") != "")
}

// TraceEnabled reports whether BOOKSCOUT_TRACE is set.
func TraceEnabled() bool {
	return traceEnabled.Load()
}

func setTraceEnabled(v bool) {
	traceEnabled.Store(v)
}
