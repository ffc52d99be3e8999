// Package book defines the records bookscout passes between the Open Library
// client, the search pipeline and the views.
package book

import (
	"slices"
	"strings"
)

// Summary is one search hit. ID is the bare work id ("OL45804W") and is the
// unique key used for favorites and detail lookups.
type Summary struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	AuthorNames []string `json:"author_names,omitempty"`
	PublishYear int      `json:"publish_year,omitempty"` // 0 = unknown
	CoverID     int      `json:"cover_id,omitempty"`     // 0 = no cover
	Subjects    []string `json:"subjects,omitempty"`
}

// Authors joins author names for display.
func (s Summary) Authors() string {
	if len(s.AuthorNames) == 0 {
		return "Unknown author"
	}
	return strings.Join(s.AuthorNames, ", ")
}

// Detail is the larger record shown on a book's own page. It is fetched per
// view and never shares state with a search session.
type Detail struct {
	ID            string
	Title         string
	Description   string
	AuthorKeys    []string
	AuthorNames   []string // resolved from AuthorKeys, best effort
	Subjects      []string
	CoverIDs      []int
	NumberOfPages int
}

// CoverID returns the first cover id, or 0.
func (d Detail) CoverID() int {
	if len(d.CoverIDs) == 0 {
		return 0
	}
	return d.CoverIDs[0]
}

// Criteria is the combined free-text query and filters identifying one
// logical search. It is a value type: every change produces a new Criteria.
type Criteria struct {
	Query   string
	Author  string
	Year    int // 0 = no year filter
	Subject string
}

// Equal compares all four fields.
func (c Criteria) Equal(o Criteria) bool {
	return c == o
}

// WithQuery returns a copy with the query replaced.
func (c Criteria) WithQuery(q string) Criteria {
	c.Query = q
	return c
}

// WithAuthor returns a copy with the author filter replaced.
func (c Criteria) WithAuthor(a string) Criteria {
	c.Author = a
	return c
}

// WithYear returns a copy with the year filter replaced.
func (c Criteria) WithYear(y int) Criteria {
	if y < 0 {
		y = 0
	}
	c.Year = y
	return c
}

// WithSubject returns a copy with the subject filter replaced.
func (c Criteria) WithSubject(s string) Criteria {
	c.Subject = s
	return c
}

// Blank reports whether the free-text query is empty after trimming.
func (c Criteria) Blank() bool {
	return strings.TrimSpace(c.Query) == ""
}

// PageRequest identifies exactly one fetch. Page starts at 1.
type PageRequest struct {
	Criteria Criteria
	Page     int
}

// ResultPage is one page of search results.
type ResultPage struct {
	Items          []Summary
	TotalAvailable int
	Page           int
}

// EmptyPage is what a blank query or a failed search yields.
func EmptyPage(page int) ResultPage {
	return ResultPage{Items: nil, TotalAvailable: 0, Page: page}
}

// Clone returns a deep copy of s so callers cannot alias slices held by a
// session.
func (s Summary) Clone() Summary {
	s.AuthorNames = slices.Clone(s.AuthorNames)
	s.Subjects = slices.Clone(s.Subjects)
	return s
}
