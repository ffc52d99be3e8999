package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the bindings for list mode. While a text input is focused only
// Edit-mode keys (tab, esc, enter, ctrl+n, ctrl+c) are interpreted.
type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Top       key.Binding
	Bottom    key.Binding
	Open      key.Binding
	Favorite  key.Binding
	Favorites key.Binding
	Theme     key.Binding
	NewSearch key.Binding
	Edit      key.Binding
	NextField key.Binding
	PrevField key.Binding
	Debug     key.Binding
	Back      key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k", "up")),
		Down:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j", "down")),
		Top:       key.NewBinding(key.WithKeys("g", "home")),
		Bottom:    key.NewBinding(key.WithKeys("G", "end")),
		Open:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Favorite:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "fav")),
		Favorites: key.NewBinding(key.WithKeys("F"), key.WithHelp("F", "favorites")),
		Theme:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		NewSearch: key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("^n", "new")),
		Edit:      key.NewBinding(key.WithKeys("/", "i"), key.WithHelp("/", "search")),
		NextField: key.NewBinding(key.WithKeys("tab")),
		PrevField: key.NewBinding(key.WithKeys("shift+tab")),
		Debug:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "debug")),
		Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQuit: key.NewBinding(key.WithKeys("ctrl+c")),
	}
}

// hints renders bindings as "k:up j:down ..." for the status bar.
func hints(s Styles, bindings ...key.Binding) string {
	out := ""
	for i, b := range bindings {
		h := b.Help()
		if h.Key == "" {
			continue
		}
		if i > 0 {
			out += " "
		}
		out += s.StatusKey.Render(h.Key) + s.StatusText.Render(":"+h.Desc)
	}
	return out
}
