package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/bookscout/internal/book"
	"github.com/abelbrown/bookscout/internal/otel"
	"github.com/abelbrown/bookscout/internal/search"
)

// searchSession is one search view-session: the observable criteria, the
// pipeline it feeds, and the contexts of dispatched fetches. It lives behind
// a pointer so every copy of App sees the same session.
type searchSession struct {
	query    *search.QueryState
	pipe     *search.Pipeline
	unsub    func()
	search   func(ctx context.Context, c book.Criteria, page int) book.ResultPage
	cancels  map[string]context.CancelFunc
	effects  []search.Effect
	rendered int // item count at the last Rearm
}

func newSearchSession(cfg AppConfig) *searchSession {
	s := &searchSession{
		query:   search.NewQueryState(book.Criteria{}),
		pipe:    search.NewPipeline(cfg.QuietPeriod, cfg.Events),
		search:  cfg.Catalog.Search,
		cancels: make(map[string]context.CancelFunc),
	}
	s.unsub = s.query.Subscribe(func(c book.Criteria) {
		s.effects = append(s.effects, s.pipe.CriteriaChanged(c)...)
	})
	return s
}

// CanLoadMore implements scroll.Pager.
func (s *searchSession) CanLoadMore() bool {
	return s.pipe.CanLoadMore()
}

// LoadNextPage implements scroll.Pager. The dispatch is queued and turned
// into a command by flush.
func (s *searchSession) LoadNextPage() bool {
	effs := s.pipe.LoadNextPage()
	s.effects = append(s.effects, effs...)
	return len(effs) > 0
}

// quietElapsed forwards a timer expiry to the pipeline.
func (s *searchSession) quietElapsed(gen uint64) {
	s.effects = append(s.effects, s.pipe.QuietElapsed(gen)...)
}

// settle forwards a fetch result and releases its context.
func (s *searchSession) settle(msg PageLoaded) bool {
	if cancel, ok := s.cancels[msg.Ticket.QueryID]; ok {
		cancel()
		delete(s.cancels, msg.Ticket.QueryID)
	}
	return s.pipe.Settle(msg.Ticket, msg.Page)
}

// end stops the session: subscriptions are removed and every outstanding
// fetch is cancelled.
func (s *searchSession) end() {
	if s.unsub != nil {
		s.unsub()
		s.unsub = nil
	}
	s.pipe.Reset()
	for qid, cancel := range s.cancels {
		cancel()
		delete(s.cancels, qid)
	}
	s.effects = nil
}

// flush converts queued effects into commands.
func (s *searchSession) flush() tea.Cmd {
	if len(s.effects) == 0 {
		return nil
	}
	effs := s.effects
	s.effects = nil

	var cmds []tea.Cmd
	for _, e := range effs {
		switch e := e.(type) {
		case search.StartQuietTimer:
			gen := e.Gen
			cmds = append(cmds, tea.Tick(e.After, func(time.Time) tea.Msg {
				return QuietElapsed{Gen: gen, session: s}
			}))
		case search.Dispatch:
			cmds = append(cmds, s.dispatch(e.Ticket))
		case search.Cancel:
			if cancel, ok := s.cancels[e.Ticket.QueryID]; ok {
				cancel()
				delete(s.cancels, e.Ticket.QueryID)
			}
		}
	}
	return tea.Batch(cmds...)
}

func (s *searchSession) dispatch(t search.Ticket) tea.Cmd {
	ctx, cancel := context.WithCancel(otel.WithQueryID(context.Background(), t.QueryID))
	s.cancels[t.QueryID] = cancel
	fetch := s.search
	return func() tea.Msg {
		page := fetch(ctx, t.Request.Criteria, t.Request.Page)
		return PageLoaded{Ticket: t, Page: page}
	}
}
