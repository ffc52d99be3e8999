package ui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/abelbrown/bookscout/internal/book"
	"github.com/abelbrown/bookscout/internal/search"
)

var printer = message.NewPrinter(language.English)

// countLine describes the session's result count, e.g. "40 of 1,234 results".
func countLine(s search.Session) string {
	switch {
	case s.InitialLoading:
		return "searching…"
	case s.Criteria.Blank() && len(s.Items) == 0:
		return "type to search"
	case s.TotalAvailable == 0:
		return "no results"
	case s.LoadingMore:
		return printer.Sprintf("%d of %d results, loading more…", len(s.Items), s.TotalAvailable)
	case !s.HasMore:
		return printer.Sprintf("all %d results", len(s.Items))
	default:
		return printer.Sprintf("%d of %d results", len(s.Items), s.TotalAvailable)
	}
}

// bookLine renders "Title · Author, Author · 1965".
func bookLine(b book.Summary) string {
	parts := []string{b.Title, b.Authors()}
	if b.PublishYear > 0 {
		parts = append(parts, fmt.Sprint(b.PublishYear))
	}
	return strings.Join(parts, " · ")
}

// truncateRunes truncates s to at most max runes, appending "…" when cut.
func truncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	if max == 1 {
		return "…"
	}
	return string(runes[:max-1]) + "…"
}
