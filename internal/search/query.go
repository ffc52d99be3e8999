package search

import (
	"sync"

	"github.com/abelbrown/bookscout/internal/book"
)

// QueryState holds the current criteria and notifies subscribers on every
// set, including sets that do not change the value. Deduplication happens
// later, in the Pipeline.
type QueryState struct {
	mu   sync.Mutex
	cur  book.Criteria
	subs []subscriber
	next int
}

type subscriber struct {
	id int
	fn func(book.Criteria)
}

// NewQueryState creates a state holding initial.
func NewQueryState(initial book.Criteria) *QueryState {
	return &QueryState{cur: initial}
}

// Current returns the current criteria.
func (q *QueryState) Current() book.Criteria {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.cur
}

// Set replaces the criteria and emits it.
func (q *QueryState) Set(c book.Criteria) {
	q.mu.Lock()
	q.cur = c
	subs := make([]subscriber, len(q.subs))
	copy(subs, q.subs)
	q.mu.Unlock()

	for _, s := range subs {
		s.fn(c)
	}
}

func (q *QueryState) SetQuery(s string)   { q.Set(q.Current().WithQuery(s)) }
func (q *QueryState) SetAuthor(s string)  { q.Set(q.Current().WithAuthor(s)) }
func (q *QueryState) SetYear(y int)       { q.Set(q.Current().WithYear(y)) }
func (q *QueryState) SetSubject(s string) { q.Set(q.Current().WithSubject(s)) }

// Subscribe registers fn for every future set. The returned func removes it.
func (q *QueryState) Subscribe(fn func(book.Criteria)) (unsubscribe func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.next++
	id := q.next
	q.subs = append(q.subs, subscriber{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			q.mu.Lock()
			defer q.mu.Unlock()
			for i, s := range q.subs {
				if s.id == id {
					q.subs = append(q.subs[:i:i], q.subs[i+1:]...)
					return
				}
			}
		})
	}
}
