package prefs

import (
	"sync"

	"github.com/abelbrown/bookscout/internal/otel"
)

// Theme is the dark/light preference. Dark is the default.
type Theme struct {
	mu     sync.Mutex
	dark   bool
	p      Persistence
	events otel.Emitter
	subs   listeners[bool]
}

// NewTheme loads the stored theme from p, falling back to def when nothing
// valid is stored. p and events may be nil.
func NewTheme(p Persistence, events otel.Emitter, def bool) *Theme {
	t := &Theme{dark: def, p: p, events: events}
	if p == nil {
		return t
	}
	v, ok, err := p.Get(themeKey)
	switch {
	case err != nil:
		storeFailed(events, "load theme", err)
	case ok && v == themeDark:
		t.dark = true
	case ok && v == themeLight:
		t.dark = false
	}
	return t
}

// Dark reports whether the dark theme is active.
func (t *Theme) Dark() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dark
}

// Name returns "dark" or "light".
func (t *Theme) Name() string {
	if t.Dark() {
		return themeDark
	}
	return themeLight
}

// SetDark sets the theme, persists it and notifies subscribers.
func (t *Theme) SetDark(dark bool) {
	t.mu.Lock()
	t.dark = dark
	t.mu.Unlock()

	if t.p != nil {
		v := themeLight
		if dark {
			v = themeDark
		}
		if err := t.p.Set(themeKey, v); err != nil {
			storeFailed(t.events, "save theme", err)
		}
	}
	t.subs.notify(dark)
}

// Toggle flips the theme and returns the new value.
func (t *Theme) Toggle() bool {
	dark := !t.Dark()
	t.SetDark(dark)
	return dark
}

// Subscribe calls fn after every change.
func (t *Theme) Subscribe(fn func(dark bool)) (unsubscribe func()) {
	return t.subs.add(fn)
}
