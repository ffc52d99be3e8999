// Package ui provides the Bubble Tea TUI for bookscout.
package ui

import (
	"github.com/abelbrown/bookscout/internal/book"
	"github.com/abelbrown/bookscout/internal/search"
)

// QuietElapsed is sent when a debounce timer fires. Gen identifies the
// criteria change that armed it within its session.
type QuietElapsed struct {
	Gen     uint64
	session *searchSession
}

// PageLoaded is sent when a dispatched search fetch returns. The ticket is
// checked by the pipeline; stale pages are dropped there.
type PageLoaded struct {
	Ticket search.Ticket
	Page   book.ResultPage
}
