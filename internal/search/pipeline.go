// Package search holds the reactive search pipeline: query state, the
// per-view session, and the state machine that debounces criteria changes,
// drops duplicates, and discards stale settlements.
//
// The Pipeline never sleeps or performs I/O. Every operation returns the
// Effects the host loop must perform; timer expiry and fetch results are fed
// back in through QuietElapsed and Settle.
package search

import (
	"time"

	"github.com/google/uuid"

	"github.com/abelbrown/bookscout/internal/book"
	"github.com/abelbrown/bookscout/internal/otel"
)

// DefaultQuietPeriod is how long criteria must stay unchanged before dispatch.
const DefaultQuietPeriod = 300 * time.Millisecond

// Phase is the pipeline's position in its state machine.
type Phase int

const (
	Idle Phase = iota
	FetchingFirstPage
	Ready
	FetchingNextPage
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case FetchingFirstPage:
		return "fetching-first-page"
	case Ready:
		return "ready"
	case FetchingNextPage:
		return "fetching-next-page"
	default:
		return "unknown"
	}
}

// Ticket identifies one dispatched fetch. Only the in-flight ticket may settle.
// Seq orders tickets within one pipeline; QueryID is unique across pipelines.
type Ticket struct {
	Seq     uint64
	QueryID string
	Request book.PageRequest
}

// Effect is work the host loop performs on the pipeline's behalf.
type Effect interface {
	effect()
}

// StartQuietTimer asks the host to call QuietElapsed(Gen) after After.
type StartQuietTimer struct {
	Gen   uint64
	After time.Duration
}

// Dispatch asks the host to fetch Ticket.Request and call Settle with the
// result.
type Dispatch struct {
	Ticket Ticket
}

// Cancel tells the host that Ticket is superseded and its request may be
// aborted. Correctness does not depend on it: a late Settle is discarded.
type Cancel struct {
	Ticket Ticket
}

func (StartQuietTimer) effect() {}
func (Dispatch) effect()        {}
func (Cancel) effect()          {}

// Pipeline is the search state machine. Not goroutine-safe: it is owned by
// the single update loop.
type Pipeline struct {
	quiet  time.Duration
	events otel.Emitter

	phase   Phase
	session Session

	// debounce
	pending book.Criteria
	gen     uint64
	armed   bool

	// dedupe
	last       book.Criteria
	dispatched bool

	seq      uint64
	inflight *Ticket
	// request cancelled by a raw change, re-issued if the criteria return
	resume *book.PageRequest
}

// NewPipeline creates an idle pipeline. quiet <= 0 uses DefaultQuietPeriod.
// events may be nil.
func NewPipeline(quiet time.Duration, events otel.Emitter) *Pipeline {
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	return &Pipeline{quiet: quiet, events: events}
}

// Phase returns the current phase.
func (p *Pipeline) Phase() Phase { return p.phase }

// Pending reports whether a quiet timer is armed and has not yet fired.
func (p *Pipeline) Pending() bool { return p.armed }

// Criteria returns the most recently observed criteria, dispatched or not.
func (p *Pipeline) Criteria() book.Criteria { return p.pending }

// InFlight returns the ticket currently awaiting settlement.
func (p *Pipeline) InFlight() (Ticket, bool) {
	if p.inflight == nil {
		return Ticket{}, false
	}
	return *p.inflight, true
}

// Snapshot returns a deep copy of the session for rendering.
func (p *Pipeline) Snapshot() Session {
	return p.session.Clone()
}

// CriteriaChanged records a raw criteria change and re-arms the quiet timer.
// Any earlier armed timer is superseded. A fetch in flight for different
// criteria is cancelled at once and can no longer settle.
func (p *Pipeline) CriteriaChanged(c book.Criteria) []Effect {
	p.gen++
	p.pending = c
	p.armed = true
	if otel.TraceEnabled() {
		otel.Emit(p.events, otel.Event{
			Level: otel.LevelDebug, Kind: otel.KindSearchChange, Comp: "search",
			Query: c.Query, Extra: map[string]any{"gen": p.gen},
		})
	}

	var effects []Effect
	if p.inflight != nil && !c.Equal(p.inflight.Request.Criteria) {
		req := p.inflight.Request
		p.resume = &req
		effects = append(effects, Cancel{Ticket: *p.inflight})
		p.inflight = nil
	}
	return append(effects, StartQuietTimer{Gen: p.gen, After: p.quiet})
}

// QuietElapsed is called when the timer for gen fires. Superseded
// generations produce nothing. Criteria equal to the last dispatch produce
// nothing either, unless a raw change cancelled that dispatch's fetch.
func (p *Pipeline) QuietElapsed(gen uint64) []Effect {
	if !p.armed || gen != p.gen {
		return nil
	}
	p.armed = false

	c := p.pending
	if p.dispatched && c.Equal(p.last) {
		if p.resume != nil {
			// Back to the dispatched criteria after a cancel: re-issue
			// the same page into the existing session.
			req := *p.resume
			p.resume = nil
			return []Effect{p.dispatch(req)}
		}
		otel.Emit(p.events, otel.Event{
			Level: otel.LevelDebug, Kind: otel.KindSearchSuppress, Comp: "search",
			Query: c.Query, Msg: "criteria unchanged",
		})
		return nil
	}

	var effects []Effect
	if p.inflight != nil {
		effects = append(effects, Cancel{Ticket: *p.inflight})
	}

	p.resume = nil
	p.last = c
	p.dispatched = true
	p.session = Session{
		Criteria:       c,
		CurrentPage:    1,
		InitialLoading: true,
		HasMore:        true,
	}
	p.phase = FetchingFirstPage
	return append(effects, p.dispatch(book.PageRequest{Criteria: c, Page: 1}))
}

// CanLoadMore reports whether LoadNextPage would dispatch. Nothing loads
// while a criteria change is still waiting out its quiet period.
func (p *Pipeline) CanLoadMore() bool {
	return !p.armed && p.phase == Ready && p.session.HasMore && !p.session.Loading()
}

// LoadNextPage requests the page after CurrentPage. It is a no-op unless
// CanLoadMore.
func (p *Pipeline) LoadNextPage() []Effect {
	if !p.CanLoadMore() {
		return nil
	}
	p.session.CurrentPage++
	p.session.LoadingMore = true
	p.phase = FetchingNextPage
	otel.Emit(p.events, otel.Event{
		Level: otel.LevelInfo, Kind: otel.KindLoadMore, Comp: "search",
		Query: p.session.Criteria.Query, Page: p.session.CurrentPage,
	})
	return []Effect{p.dispatch(book.PageRequest{Criteria: p.session.Criteria, Page: p.session.CurrentPage})}
}

// Settle merges page if t is the in-flight ticket and reports whether it did.
// Anything else is stale and leaves the session untouched.
func (p *Pipeline) Settle(t Ticket, page book.ResultPage) bool {
	if p.inflight == nil || p.inflight.Seq != t.Seq || p.inflight.QueryID != t.QueryID {
		otel.Emit(p.events, otel.Event{
			Level: otel.LevelDebug, Kind: otel.KindSearchDiscard, Comp: "search",
			QueryID: t.QueryID, Query: t.Request.Criteria.Query, Page: t.Request.Page,
			Count: len(page.Items),
		})
		return false
	}
	p.inflight = nil

	switch p.phase {
	case FetchingFirstPage:
		p.session.merge(page, true)
	case FetchingNextPage:
		p.session.merge(page, false)
	default:
		return false
	}
	p.phase = Ready

	otel.Emit(p.events, otel.Event{
		Level: otel.LevelInfo, Kind: otel.KindSearchSettle, Comp: "search",
		QueryID: t.QueryID, Query: t.Request.Criteria.Query, Page: t.Request.Page,
		Count: len(p.session.Items), Total: p.session.TotalAvailable,
	})
	return true
}

// Reset ends the session: pending timers are superseded, the in-flight
// ticket is cancelled, and the dedupe memory is cleared.
func (p *Pipeline) Reset() []Effect {
	var effects []Effect
	if p.inflight != nil {
		effects = append(effects, Cancel{Ticket: *p.inflight})
	}
	p.gen++
	p.armed = false
	p.pending = book.Criteria{}
	p.last = book.Criteria{}
	p.dispatched = false
	p.inflight = nil
	p.resume = nil
	p.session = Session{}
	p.phase = Idle
	return effects
}

func (p *Pipeline) dispatch(req book.PageRequest) Dispatch {
	p.seq++
	t := Ticket{Seq: p.seq, QueryID: uuid.NewString(), Request: req}
	p.inflight = &t
	otel.Emit(p.events, otel.Event{
		Level: otel.LevelInfo, Kind: otel.KindSearchDispatch, Comp: "search",
		QueryID: t.QueryID, Query: req.Criteria.Query, Page: req.Page,
	})
	return Dispatch{Ticket: t}
}
