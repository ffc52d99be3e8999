package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/bookscout/internal/ui/detail"
)

// palette is one color scheme.
type palette struct {
	fg, bg, primary, secondary, muted, highlight, success, danger, bar lipgloss.Color
}

var (
	darkPalette = palette{
		fg:        lipgloss.Color("255"),
		bg:        lipgloss.Color("0"),
		primary:   lipgloss.Color("62"),  // Purple
		secondary: lipgloss.Color("245"), // Gray
		muted:     lipgloss.Color("240"), // Darker gray
		highlight: lipgloss.Color("212"), // Pink
		success:   lipgloss.Color("78"),  // Green
		danger:    lipgloss.Color("196"),
		bar:       lipgloss.Color("236"),
	}
	lightPalette = palette{
		fg:        lipgloss.Color("232"),
		bg:        lipgloss.Color("255"),
		primary:   lipgloss.Color("25"),
		secondary: lipgloss.Color("242"),
		muted:     lipgloss.Color("247"),
		highlight: lipgloss.Color("161"),
		success:   lipgloss.Color("28"),
		danger:    lipgloss.Color("160"),
		bar:       lipgloss.Color("253"),
	}
)

// Styles is the full set of styles for one theme.
type Styles struct {
	Dark bool

	SelectedItem lipgloss.Style
	NormalItem   lipgloss.Style
	Meta         lipgloss.Style
	FavoriteMark lipgloss.Style

	InputLabel        lipgloss.Style
	InputLabelFocused lipgloss.Style
	InputBar          lipgloss.Style

	StatusBar  lipgloss.Style
	StatusKey  lipgloss.Style
	StatusText lipgloss.Style
	Count      lipgloss.Style

	Spinner lipgloss.Style
	Error   lipgloss.Style
	Help    lipgloss.Style
	Header  lipgloss.Style

	DebugPanel  lipgloss.Style
	DebugHeader lipgloss.Style

	Detail detail.Palette
}

// NewStyles builds the styles for the dark or light theme.
func NewStyles(dark bool) Styles {
	p := lightPalette
	if dark {
		p = darkPalette
	}
	return Styles{
		Dark: dark,

		SelectedItem: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255")).Background(p.primary).Padding(0, 1),
		NormalItem:   lipgloss.NewStyle().Foreground(p.fg).Padding(0, 1),
		Meta:         lipgloss.NewStyle().Foreground(p.secondary),
		FavoriteMark: lipgloss.NewStyle().Foreground(p.highlight).Bold(true),

		InputLabel:        lipgloss.NewStyle().Foreground(p.secondary),
		InputLabelFocused: lipgloss.NewStyle().Foreground(p.highlight).Bold(true),
		InputBar:          lipgloss.NewStyle().Foreground(p.fg).Background(p.bar).Padding(0, 1),

		StatusBar:  lipgloss.NewStyle().Foreground(p.fg).Background(p.bar).Padding(0, 1),
		StatusKey:  lipgloss.NewStyle().Foreground(p.highlight).Bold(true),
		StatusText: lipgloss.NewStyle().Foreground(p.secondary),
		Count:      lipgloss.NewStyle().Foreground(p.success),

		Spinner: lipgloss.NewStyle().Foreground(p.highlight),
		Error:   lipgloss.NewStyle().Foreground(p.danger).Bold(true).Padding(0, 1),
		Help:    lipgloss.NewStyle().Foreground(p.muted).Padding(1, 2),
		Header:  lipgloss.NewStyle().Bold(true).Foreground(p.highlight).Padding(0, 1),

		DebugPanel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.primary).
			Padding(1, 2),
		DebugHeader: lipgloss.NewStyle().Bold(true).Foreground(p.highlight),

		Detail: detail.Palette{
			Title:  lipgloss.NewStyle().Bold(true).Foreground(p.highlight),
			Label:  lipgloss.NewStyle().Foreground(p.primary).Bold(true),
			Text:   lipgloss.NewStyle().Foreground(p.fg),
			Muted:  lipgloss.NewStyle().Foreground(p.muted),
			Error:  lipgloss.NewStyle().Foreground(p.danger).Bold(true),
			Status: lipgloss.NewStyle().Foreground(p.fg).Background(p.bar).Padding(0, 1),
		},
	}
}
