// Package detail is the book detail view. Each view fetches its own record
// and shares nothing with the search session it was opened from.
package detail

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/bookscout/internal/book"
)

// Palette styles the view.
type Palette struct {
	Title  lipgloss.Style
	Label  lipgloss.Style
	Text   lipgloss.Style
	Muted  lipgloss.Style
	Error  lipgloss.Style
	Status lipgloss.Style
}

// Fetcher loads a work and resolves its author names.
type Fetcher interface {
	FetchDetail(ctx context.Context, id string) (book.Detail, error)
	ResolveAuthors(ctx context.Context, keys []string) []string
}

// Loaded is sent when a detail fetch finishes.
type Loaded struct {
	ID   string
	Book book.Detail
	Err  error
}

// Fetch returns a command that loads id. Author names are resolved best
// effort after the work itself succeeds.
func Fetch(ctx context.Context, f Fetcher, id string) tea.Cmd {
	return func() tea.Msg {
		d, err := f.FetchDetail(ctx, id)
		if err != nil {
			return Loaded{ID: id, Err: err}
		}
		if len(d.AuthorKeys) > 0 {
			d.AuthorNames = f.ResolveAuthors(ctx, d.AuthorKeys)
		}
		return Loaded{ID: id, Book: d}
	}
}

// Model is one detail view.
type Model struct {
	ID       string
	Title    string // known from the search hit while loading
	Loading  bool
	Err      error
	Book     book.Detail
	CoverURL func(coverID int) string

	palette  Palette
	viewport viewport.Model
	width    int
	height   int
}

// New returns a loading view for id.
func New(id, title string, coverURL func(int) string, p Palette) Model {
	m := Model{
		ID:       id,
		Title:    title,
		Loading:  true,
		CoverURL: coverURL,
		palette:  p,
		viewport: viewport.New(0, 0),
	}
	m.refresh()
	return m
}

// Update handles Loaded, window size and scrolling.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case Loaded:
		if msg.ID != m.ID {
			return m, nil
		}
		m.Loading = false
		if msg.Err != nil {
			m.Err = msg.Err
		} else {
			m.Err = nil
			m.Book = msg.Book
			if m.Book.Title != "" {
				m.Title = m.Book.Title
			}
		}
		m.refresh()
		return m, nil

	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// SetSize sizes the scrollable body. One line is reserved for the status bar.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = max(height-1, 1)
	m.refresh()
}

// SetPalette switches styles, e.g. after a theme toggle.
func (m *Model) SetPalette(p Palette) {
	m.palette = p
	m.refresh()
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.body())
}

// View renders the current state.
func (m Model) View() string {
	status := m.palette.Status.Width(max(m.width, 1)).Render("esc:back  f:fav  j/k:scroll")
	return m.viewport.View() + "\n" + status
}

func (m Model) body() string {
	p := m.palette
	var b strings.Builder
	title := m.Title
	if title == "" {
		title = m.ID
	}
	b.WriteString(p.Title.Render(title))
	b.WriteString("\n\n")

	switch {
	case m.Loading:
		b.WriteString(p.Muted.Render("Loading…"))
		return b.String()
	case m.Err != nil:
		b.WriteString(p.Error.Render("Could not load this book."))
		b.WriteString("\n")
		b.WriteString(p.Muted.Render(m.Err.Error()))
		return b.String()
	}

	d := m.Book
	field := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(p.Label.Render(label))
		b.WriteString(" ")
		b.WriteString(p.Text.Render(value))
		b.WriteString("\n")
	}
	field("Authors:", strings.Join(d.AuthorNames, ", "))
	if d.NumberOfPages > 0 {
		field("Pages:", fmt.Sprint(d.NumberOfPages))
	}
	if len(d.Subjects) > 0 {
		subjects := d.Subjects
		if len(subjects) > 12 {
			subjects = subjects[:12]
		}
		field("Subjects:", strings.Join(subjects, ", "))
	}
	if m.CoverURL != nil {
		field("Cover:", m.CoverURL(d.CoverID()))
	}
	field("Work:", d.ID)

	b.WriteString("\n")
	if d.Description == "" {
		b.WriteString(p.Muted.Render("No description available."))
	} else {
		width := m.width - 2
		if width < 20 {
			width = 20
		}
		b.WriteString(p.Text.Width(width).Render(d.Description))
	}
	return b.String()
}
