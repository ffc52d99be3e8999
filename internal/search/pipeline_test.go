package search

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abelbrown/bookscout/internal/book"
	"github.com/abelbrown/bookscout/internal/otel"
)

func items(prefix string, n int) []book.Summary {
	out := make([]book.Summary, n)
	for i := range out {
		out[i] = book.Summary{ID: fmt.Sprintf("%s%d", prefix, i), Title: prefix}
	}
	return out
}

func timers(effs []Effect) []StartQuietTimer {
	var out []StartQuietTimer
	for _, e := range effs {
		if t, ok := e.(StartQuietTimer); ok {
			out = append(out, t)
		}
	}
	return out
}

func dispatches(effs []Effect) []Dispatch {
	var out []Dispatch
	for _, e := range effs {
		if d, ok := e.(Dispatch); ok {
			out = append(out, d)
		}
	}
	return out
}

func cancels(effs []Effect) []Cancel {
	var out []Cancel
	for _, e := range effs {
		if c, ok := e.(Cancel); ok {
			out = append(out, c)
		}
	}
	return out
}

// change feeds c and fires its quiet timer immediately. The effects of both
// steps are returned.
func change(t *testing.T, p *Pipeline, c book.Criteria) []Effect {
	t.Helper()
	effs := p.CriteriaChanged(c)
	ts := timers(effs)
	require.Len(t, ts, 1)
	return append(effs, p.QuietElapsed(ts[0].Gen)...)
}

func firstDispatch(t *testing.T, effs []Effect) Ticket {
	t.Helper()
	ds := dispatches(effs)
	require.Len(t, ds, 1)
	return ds[0].Ticket
}

func assertInvariants(t *testing.T, p *Pipeline) {
	t.Helper()
	s := p.Snapshot()
	assert.False(t, s.InitialLoading && s.LoadingMore, "both loading flags set")
	if p.Phase() == Ready || p.Phase() == Idle {
		assert.False(t, s.Loading(), "loading flag set while %s", p.Phase())
	}
	if p.Phase() == Ready {
		assert.LessOrEqual(t, len(s.Items), s.TotalAvailable)
		assert.Equal(t, len(s.Items) < s.TotalAvailable, s.HasMore)
	}
}

func TestCriteriaChangedArmsTimer(t *testing.T) {
	p := NewPipeline(0, nil)

	effs := p.CriteriaChanged(book.Criteria{Query: "dune"})
	require.Len(t, effs, 1)
	tm := effs[0].(StartQuietTimer)
	assert.Equal(t, DefaultQuietPeriod, tm.After)
	assert.True(t, p.Pending())
	assert.Equal(t, Idle, p.Phase())
	assert.Equal(t, "dune", p.Criteria().Query)
}

func TestOnlyLastCriteriaWithinQuietPeriodDispatches(t *testing.T) {
	p := NewPipeline(300*time.Millisecond, nil)

	var gens []uint64
	for _, q := range []string{"d", "du", "dun", "dune"} {
		gens = append(gens, timers(p.CriteriaChanged(book.Criteria{Query: q}))[0].Gen)
	}

	for _, g := range gens[:3] {
		assert.Empty(t, p.QuietElapsed(g), "superseded gen %d dispatched", g)
	}
	assert.Equal(t, Idle, p.Phase())

	tk := firstDispatch(t, p.QuietElapsed(gens[3]))
	assert.Equal(t, book.PageRequest{Criteria: book.Criteria{Query: "dune"}, Page: 1}, tk.Request)
	assert.NotEmpty(t, tk.QueryID)
	assert.False(t, p.Pending())

	// A timer never fires twice.
	assert.Empty(t, p.QuietElapsed(gens[3]))
}

func TestRapidFilterChangesDispatchOnce(t *testing.T) {
	p := NewPipeline(0, nil)
	q := NewQueryState(book.Criteria{Query: "dune"})

	var gens []uint64
	unsub := q.Subscribe(func(c book.Criteria) {
		gens = append(gens, timers(p.CriteriaChanged(c))[0].Gen)
	})
	defer unsub()

	q.SetAuthor("Herbert")
	q.SetYear(1965)
	q.SetSubject("science fiction")

	var all []Dispatch
	for _, g := range gens {
		all = append(all, dispatches(p.QuietElapsed(g))...)
	}
	require.Len(t, all, 1)
	assert.Equal(t, book.Criteria{Query: "dune", Author: "Herbert", Year: 1965, Subject: "science fiction"},
		all[0].Ticket.Request.Criteria)
}

func TestDuplicateCriteriaSuppressed(t *testing.T) {
	rec := &recorder{}
	p := NewPipeline(0, rec)
	c := book.Criteria{Query: "dune"}

	tk := firstDispatch(t, change(t, p, c))
	require.True(t, p.Settle(tk, book.ResultPage{Items: items("a", 20), TotalAvailable: 137, Page: 1}))
	before := p.Snapshot()

	assert.Empty(t, change(t, p, c))
	assert.Equal(t, before, p.Snapshot())
	assert.Equal(t, Ready, p.Phase())
	assert.Contains(t, rec.kinds(), otel.KindSearchSuppress)

	// Typing away and back within one quiet period is still a duplicate.
	p.CriteriaChanged(book.Criteria{Query: "dun"})
	g := timers(p.CriteriaChanged(c))[0].Gen
	assert.Empty(t, p.QuietElapsed(g))
}

func TestNewCriteriaResetsSession(t *testing.T) {
	p := NewPipeline(0, nil)

	tk := firstDispatch(t, change(t, p, book.Criteria{Query: "dune"}))
	p.Settle(tk, book.ResultPage{Items: items("a", 20), TotalAvailable: 137, Page: 1})

	effs := change(t, p, book.Criteria{Query: "dune", Year: 1965})
	firstDispatch(t, effs)
	s := p.Snapshot()
	assert.Empty(t, s.Items)
	assert.Equal(t, 1, s.CurrentPage)
	assert.True(t, s.InitialLoading)
	assert.False(t, s.LoadingMore)
	assert.True(t, s.HasMore)
	assert.Equal(t, FetchingFirstPage, p.Phase())
	assertInvariants(t, p)
}

func TestDuneScenario(t *testing.T) {
	p := NewPipeline(0, nil)

	tk := firstDispatch(t, change(t, p, book.Criteria{Query: "dune"}))
	require.True(t, p.Settle(tk, book.ResultPage{Items: items("a", 20), TotalAvailable: 137, Page: 1}))

	s := p.Snapshot()
	assert.Len(t, s.Items, 20)
	assert.Equal(t, 137, s.TotalAvailable)
	assert.True(t, s.HasMore)
	assert.Equal(t, 1, s.CurrentPage)
	assert.Equal(t, Ready, p.Phase())
	assertInvariants(t, p)

	require.True(t, p.CanLoadMore())
	tk2 := firstDispatch(t, p.LoadNextPage())
	assert.Equal(t, 2, tk2.Request.Page)
	assert.Equal(t, "dune", tk2.Request.Criteria.Query)
	assert.True(t, p.Snapshot().LoadingMore)
	assert.Equal(t, FetchingNextPage, p.Phase())

	require.True(t, p.Settle(tk2, book.ResultPage{Items: items("b", 20), TotalAvailable: 137, Page: 2}))
	s = p.Snapshot()
	require.Len(t, s.Items, 40)
	assert.Equal(t, "a0", s.Items[0].ID)
	assert.Equal(t, "b0", s.Items[20].ID)
	assert.True(t, s.HasMore)
	assert.Equal(t, 2, s.CurrentPage)
	assert.False(t, s.LoadingMore)
	assertInvariants(t, p)
}

func TestLoadNextPageNoOps(t *testing.T) {
	p := NewPipeline(0, nil)

	// Idle.
	assert.Empty(t, p.LoadNextPage())

	// While the first page is loading.
	tk := firstDispatch(t, change(t, p, book.Criteria{Query: "dune"}))
	assert.Empty(t, p.LoadNextPage())

	p.Settle(tk, book.ResultPage{Items: items("a", 20), TotalAvailable: 40, Page: 1})
	firstDispatch(t, p.LoadNextPage())

	// While LoadingMore.
	assert.False(t, p.CanLoadMore())
	assert.Empty(t, p.LoadNextPage())
	assert.Equal(t, 2, p.Snapshot().CurrentPage)
}

func TestLoadNextPageWhenExhausted(t *testing.T) {
	p := NewPipeline(0, nil)

	tk := firstDispatch(t, change(t, p, book.Criteria{Query: "fox"}))
	p.Settle(tk, book.ResultPage{Items: items("a", 3), TotalAvailable: 3, Page: 1})

	assert.False(t, p.Snapshot().HasMore)
	assert.False(t, p.CanLoadMore())
	assert.Empty(t, p.LoadNextPage())
	assert.Equal(t, 1, p.Snapshot().CurrentPage)
}

func TestStaleSettlementDiscarded(t *testing.T) {
	rec := &recorder{}
	p := NewPipeline(0, rec)

	old := firstDispatch(t, change(t, p, book.Criteria{Query: "dune"}))
	effs := change(t, p, book.Criteria{Query: "foundation"})
	cur := firstDispatch(t, effs)

	cs := cancels(effs)
	require.Len(t, cs, 1)
	assert.Equal(t, old.Seq, cs[0].Ticket.Seq)

	assert.False(t, p.Settle(old, book.ResultPage{Items: items("dune", 20), TotalAvailable: 137, Page: 1}))
	s := p.Snapshot()
	assert.Empty(t, s.Items)
	assert.Zero(t, s.TotalAvailable)
	assert.True(t, s.InitialLoading)

	require.True(t, p.Settle(cur, book.ResultPage{Items: items("f", 5), TotalAvailable: 5, Page: 1}))
	assert.Len(t, p.Snapshot().Items, 5)

	// Settling the same ticket twice is also stale.
	assert.False(t, p.Settle(cur, book.ResultPage{Items: items("f", 5), TotalAvailable: 5, Page: 1}))
	assert.Len(t, p.Snapshot().Items, 5)
	assert.Contains(t, rec.kinds(), otel.KindSearchDiscard)
}

func TestStaleNextPageDiscardedAfterCriteriaChange(t *testing.T) {
	p := NewPipeline(0, nil)

	tk := firstDispatch(t, change(t, p, book.Criteria{Query: "dune"}))
	p.Settle(tk, book.ResultPage{Items: items("a", 20), TotalAvailable: 137, Page: 1})
	next := firstDispatch(t, p.LoadNextPage())

	cur := firstDispatch(t, change(t, p, book.Criteria{Query: "emma"}))
	assert.False(t, p.Settle(next, book.ResultPage{Items: items("b", 20), TotalAvailable: 137, Page: 2}))
	assert.Empty(t, p.Snapshot().Items)
	assert.False(t, p.Snapshot().LoadingMore)

	p.Settle(cur, book.ResultPage{Items: items("e", 2), TotalAvailable: 2, Page: 1})
	assertInvariants(t, p)
}

func TestRawChangeCancelsInFlightFetch(t *testing.T) {
	rec := &recorder{}
	p := NewPipeline(0, rec)

	old := firstDispatch(t, change(t, p, book.Criteria{Query: "dune"}))

	// The timer for the new criteria has not fired yet.
	effs := p.CriteriaChanged(book.Criteria{Query: "foundation"})
	require.Len(t, cancels(effs), 1)
	assert.Equal(t, old.Seq, cancels(effs)[0].Ticket.Seq)
	require.Len(t, timers(effs), 1)
	_, ok := p.InFlight()
	assert.False(t, ok)

	assert.False(t, p.Settle(old, book.ResultPage{Items: items("dune", 20), TotalAvailable: 137, Page: 1}))
	assert.Empty(t, p.Snapshot().Items)
	assert.Equal(t, otel.KindSearchDiscard, rec.last(otel.KindSearchDiscard).Kind)

	cur := firstDispatch(t, p.QuietElapsed(timers(effs)[0].Gen))
	assert.Equal(t, "foundation", cur.Request.Criteria.Query)
	require.True(t, p.Settle(cur, book.ResultPage{Items: items("f", 5), TotalAvailable: 5, Page: 1}))
	assert.Len(t, p.Snapshot().Items, 5)
	assertInvariants(t, p)
}

func TestRawChangeToSameCriteriaKeepsFetch(t *testing.T) {
	p := NewPipeline(0, nil)
	c := book.Criteria{Query: "dune"}

	tk := firstDispatch(t, change(t, p, c))
	effs := p.CriteriaChanged(c)
	assert.Empty(t, cancels(effs))

	assert.Empty(t, p.QuietElapsed(timers(effs)[0].Gen))
	require.True(t, p.Settle(tk, book.ResultPage{Items: items("a", 20), TotalAvailable: 137, Page: 1}))
	assert.Len(t, p.Snapshot().Items, 20)
}

func TestStaleNextPageDuringQuietPeriod(t *testing.T) {
	p := NewPipeline(0, nil)

	tk := firstDispatch(t, change(t, p, book.Criteria{Query: "dune"}))
	p.Settle(tk, book.ResultPage{Items: items("a", 20), TotalAvailable: 137, Page: 1})
	next := firstDispatch(t, p.LoadNextPage())

	effs := p.CriteriaChanged(book.Criteria{Query: "emma"})
	require.Len(t, cancels(effs), 1)
	assert.Equal(t, next.Seq, cancels(effs)[0].Ticket.Seq)

	assert.False(t, p.Settle(next, book.ResultPage{Items: items("b", 20), TotalAvailable: 137, Page: 2}))
	assert.Len(t, p.Snapshot().Items, 20)
}

func TestNoLoadMoreWhileDebouncing(t *testing.T) {
	p := NewPipeline(0, nil)
	dune := book.Criteria{Query: "dune"}

	tk := firstDispatch(t, change(t, p, dune))
	p.Settle(tk, book.ResultPage{Items: items("a", 20), TotalAvailable: 137, Page: 1})
	require.True(t, p.CanLoadMore())

	p.CriteriaChanged(book.Criteria{Query: "foundation"})
	assert.False(t, p.CanLoadMore())
	assert.Empty(t, p.LoadNextPage())
	assert.Equal(t, 1, p.Snapshot().CurrentPage)

	// Back to the dispatched criteria: the session is kept and paging resumes.
	gen := timers(p.CriteriaChanged(dune))[0].Gen
	assert.Empty(t, p.QuietElapsed(gen))
	assert.Len(t, p.Snapshot().Items, 20)
	require.True(t, p.CanLoadMore())
	next := firstDispatch(t, p.LoadNextPage())
	assert.Equal(t, book.PageRequest{Criteria: dune, Page: 2}, next.Request)
}

func TestChangeAndBackReissuesCancelledPage(t *testing.T) {
	p := NewPipeline(0, nil)
	dune := book.Criteria{Query: "dune"}

	tk := firstDispatch(t, change(t, p, dune))
	p.Settle(tk, book.ResultPage{Items: items("a", 20), TotalAvailable: 137, Page: 1})
	next := firstDispatch(t, p.LoadNextPage())

	require.Len(t, cancels(p.CriteriaChanged(book.Criteria{Query: "dunes"})), 1)
	gen := timers(p.CriteriaChanged(dune))[0].Gen

	again := firstDispatch(t, p.QuietElapsed(gen))
	assert.Equal(t, next.Request, again.Request)
	assert.NotEqual(t, next.QueryID, again.QueryID)
	assert.False(t, p.Settle(next, book.ResultPage{Items: items("b", 20), TotalAvailable: 137, Page: 2}))

	require.True(t, p.Settle(again, book.ResultPage{Items: items("b", 20), TotalAvailable: 137, Page: 2}))
	s := p.Snapshot()
	assert.Len(t, s.Items, 40)
	assert.Equal(t, 2, s.CurrentPage)
	assertInvariants(t, p)
}

func TestUnderReportedTotalIsClamped(t *testing.T) {
	p := NewPipeline(0, nil)

	tk := firstDispatch(t, change(t, p, book.Criteria{Query: "dune"}))
	p.Settle(tk, book.ResultPage{Items: items("a", 20), TotalAvailable: 7, Page: 1})

	s := p.Snapshot()
	assert.Equal(t, 20, s.TotalAvailable)
	assert.False(t, s.HasMore)
	assertInvariants(t, p)
}

func TestEmptyNextPageDoesNotRefetch(t *testing.T) {
	p := NewPipeline(0, nil)

	tk := firstDispatch(t, change(t, p, book.Criteria{Query: "dune"}))
	p.Settle(tk, book.ResultPage{Items: items("a", 20), TotalAvailable: 137, Page: 1})
	next := firstDispatch(t, p.LoadNextPage())

	// API claims more but returns nothing: HasMore follows the length rule.
	require.True(t, p.Settle(next, book.ResultPage{Items: nil, TotalAvailable: 137, Page: 2}))
	s := p.Snapshot()
	assert.Len(t, s.Items, 20)
	assert.True(t, s.HasMore)
	assert.Equal(t, Ready, p.Phase())
	assertInvariants(t, p)
}

func TestSoftFailureEndsSessionAsExhausted(t *testing.T) {
	p := NewPipeline(0, nil)

	tk := firstDispatch(t, change(t, p, book.Criteria{Query: "dune"}))
	p.Settle(tk, book.ResultPage{Items: items("a", 20), TotalAvailable: 137, Page: 1})
	next := firstDispatch(t, p.LoadNextPage())

	p.Settle(next, book.EmptyPage(2))
	s := p.Snapshot()
	assert.Len(t, s.Items, 20)
	assert.False(t, s.HasMore)
	assert.False(t, p.CanLoadMore())
}

func TestItemsNonDecreasingWithinSession(t *testing.T) {
	p := NewPipeline(0, nil)

	tk := firstDispatch(t, change(t, p, book.Criteria{Query: "dune"}))
	p.Settle(tk, book.ResultPage{Items: items("p1-", 20), TotalAvailable: 95, Page: 1})

	prev := len(p.Snapshot().Items)
	for page := 2; p.CanLoadMore(); page++ {
		next := firstDispatch(t, p.LoadNextPage())
		assert.Equal(t, page, next.Request.Page)
		n := min(20, 95-prev)
		p.Settle(next, book.ResultPage{Items: items(fmt.Sprintf("p%d-", page), n), TotalAvailable: 95, Page: page})

		cur := len(p.Snapshot().Items)
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
		assertInvariants(t, p)
	}
	assert.Equal(t, 95, prev)
	assert.Equal(t, 5, p.Snapshot().CurrentPage)
}

func TestBlankQueryStillSettles(t *testing.T) {
	p := NewPipeline(0, nil)

	tk := firstDispatch(t, change(t, p, book.Criteria{Author: "Herbert"}))
	require.True(t, p.Settle(tk, book.EmptyPage(1)))

	s := p.Snapshot()
	assert.Empty(t, s.Items)
	assert.False(t, s.HasMore)
	assert.Equal(t, Ready, p.Phase())
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	p := NewPipeline(0, nil)

	tk := firstDispatch(t, change(t, p, book.Criteria{Query: "dune"}))
	page := book.ResultPage{Items: []book.Summary{{ID: "x", AuthorNames: []string{"Frank"}}}, TotalAvailable: 1}
	p.Settle(tk, page)

	page.Items[0].AuthorNames[0] = "mutated"
	snap := p.Snapshot()
	snap.Items[0].Title = "mutated"

	again := p.Snapshot()
	assert.Equal(t, "Frank", again.Items[0].AuthorNames[0])
	assert.Empty(t, again.Items[0].Title)
}

func TestReset(t *testing.T) {
	p := NewPipeline(0, nil)
	c := book.Criteria{Query: "dune"}

	tk := firstDispatch(t, change(t, p, c))
	pending := timers(p.CriteriaChanged(c))[0].Gen

	effs := p.Reset()
	require.Len(t, cancels(effs), 1)
	assert.Equal(t, tk.Seq, cancels(effs)[0].Ticket.Seq)
	assert.Equal(t, Idle, p.Phase())
	assert.False(t, p.Pending())
	_, ok := p.InFlight()
	assert.False(t, ok)

	assert.Empty(t, p.QuietElapsed(pending))
	assert.False(t, p.Settle(tk, book.ResultPage{Items: items("a", 1), TotalAvailable: 1}))

	// Dedupe memory is cleared, so the same criteria dispatches again.
	firstDispatch(t, change(t, p, c))
}

func TestEventsEmitted(t *testing.T) {
	rec := &recorder{}
	p := NewPipeline(0, rec)

	tk := firstDispatch(t, change(t, p, book.Criteria{Query: "dune"}))
	p.Settle(tk, book.ResultPage{Items: items("a", 20), TotalAvailable: 137, Page: 1})
	next := firstDispatch(t, p.LoadNextPage())
	p.Settle(next, book.ResultPage{Items: items("b", 20), TotalAvailable: 137, Page: 2})

	var kinds []otel.EventKind
	for _, k := range rec.kinds() {
		if k != otel.KindSearchChange {
			kinds = append(kinds, k)
		}
	}
	assert.Equal(t, []otel.EventKind{
		otel.KindSearchDispatch,
		otel.KindSearchSettle,
		otel.KindLoadMore,
		otel.KindSearchDispatch,
		otel.KindSearchSettle,
	}, kinds)

	settle := rec.last(otel.KindSearchSettle)
	assert.Equal(t, next.QueryID, settle.QueryID)
	assert.Equal(t, 40, settle.Count)
	assert.Equal(t, 137, settle.Total)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "fetching-first-page", FetchingFirstPage.String())
	assert.Equal(t, "ready", Ready.String())
	assert.Equal(t, "fetching-next-page", FetchingNextPage.String())
	assert.Equal(t, "unknown", Phase(42).String())
}

func TestTicketFromOtherPipelineDiscarded(t *testing.T) {
	old := NewPipeline(0, nil)
	oldTicket := firstDispatch(t, change(t, old, book.Criteria{Query: "dune"}))

	p := NewPipeline(0, nil)
	cur := firstDispatch(t, change(t, p, book.Criteria{Query: "emma"}))
	require.Equal(t, oldTicket.Seq, cur.Seq)

	assert.False(t, p.Settle(oldTicket, book.ResultPage{Items: items("d", 20), TotalAvailable: 137, Page: 1}))
	assert.True(t, p.Snapshot().InitialLoading)
	assert.True(t, p.Settle(cur, book.ResultPage{Items: items("e", 1), TotalAvailable: 1, Page: 1}))
}
