package search

import (
	"github.com/abelbrown/bookscout/internal/book"
)

// Session is the state of one search view-session. Items only grow while
// the criteria stays the same.
type Session struct {
	Criteria       book.Criteria
	Items          []book.Summary
	TotalAvailable int
	CurrentPage    int
	InitialLoading bool
	LoadingMore    bool
	HasMore        bool
}

// Loading reports whether any fetch is outstanding.
func (s Session) Loading() bool {
	return s.InitialLoading || s.LoadingMore
}

// Clone returns a deep copy.
func (s Session) Clone() Session {
	if s.Items != nil {
		items := make([]book.Summary, len(s.Items))
		for i, it := range s.Items {
			items[i] = it.Clone()
		}
		s.Items = items
	}
	return s
}

// merge folds a settled page into the session. first replaces the items,
// otherwise the page is appended in order.
func (s *Session) merge(page book.ResultPage, first bool) {
	if first {
		s.Items = make([]book.Summary, 0, len(page.Items))
	}
	for _, it := range page.Items {
		s.Items = append(s.Items, it.Clone())
	}
	// The API occasionally under-reports numFound.
	s.TotalAvailable = max(page.TotalAvailable, len(s.Items))
	s.HasMore = len(s.Items) < s.TotalAvailable
	s.InitialLoading = false
	s.LoadingMore = false
}
