package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/bookscout/internal/book"
)

// listWindow is the slice of rows a list shows: [Offset, Bottom).
type listWindow struct {
	Offset int
	Bottom int
}

// calcWindow keeps cursor visible in a list of n rows with height rows of
// space. Bottom is one past the last visible row and may exceed n when the
// list is short.
func calcWindow(n, cursor, height int) listWindow {
	if height < 1 {
		height = 1
	}
	if cursor >= n {
		cursor = n - 1
	}
	offset := 0
	if cursor >= height {
		offset = cursor - height + 1
	}
	return listWindow{Offset: offset, Bottom: offset + height}
}

// renderList renders rows [w.Offset, w.Bottom) of items. isFav marks
// favorites; it may be nil.
func renderList(s Styles, items []book.Summary, cursor int, w listWindow, width int, isFav func(string) bool) string {
	var b strings.Builder
	for i := w.Offset; i < w.Bottom && i < len(items); i++ {
		b.WriteString(renderItemLine(s, items[i], i == cursor, width, isFav != nil && isFav(items[i].ID)))
		b.WriteString("\n")
	}
	return b.String()
}

func renderItemLine(s Styles, it book.Summary, selected bool, width int, fav bool) string {
	mark := "  "
	if fav {
		mark = s.FavoriteMark.Render("★ ")
	}

	avail := width - 4 - lipgloss.Width(mark)
	if avail < 10 {
		avail = 10
	}
	text := truncateRunes(bookLine(it), avail)

	if selected {
		return mark + s.SelectedItem.Render(text)
	}
	return mark + s.NormalItem.Render(text)
}
