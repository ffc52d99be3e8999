package ui

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/bookscout/internal/book"
	"github.com/abelbrown/bookscout/internal/navstate"
	"github.com/abelbrown/bookscout/internal/openlibrary"
	"github.com/abelbrown/bookscout/internal/otel"
	"github.com/abelbrown/bookscout/internal/prefs"
	"github.com/abelbrown/bookscout/internal/scroll"
	"github.com/abelbrown/bookscout/internal/search"
	"github.com/abelbrown/bookscout/internal/ui/detail"
)

// Catalog is the book source. *openlibrary.Client implements it.
type Catalog interface {
	Search(ctx context.Context, c book.Criteria, page int) book.ResultPage
	FetchDetail(ctx context.Context, id string) (book.Detail, error)
	ResolveAuthors(ctx context.Context, keys []string) []string
	CoverURL(coverID int, size openlibrary.CoverSize) string
}

// AppConfig wires the App. Only Catalog is required.
type AppConfig struct {
	Catalog      Catalog
	Bridge       *navstate.Bridge
	Theme        *prefs.Theme
	Favorites    *prefs.Favorites
	Ring         *otel.RingBuffer
	Events       otel.Emitter
	QuietPeriod  time.Duration
	ScrollMargin int
}

type screen int

const (
	screenSearch screen = iota
	screenDetail
	screenFavorites
)

// Input field indices.
const (
	fieldQuery = iota
	fieldAuthor
	fieldYear
	fieldSubject
	numFields
)

var fieldLabels = [numFields]string{"Search", "Author", "Year", "Subject"}

// chromeLines is everything on the search screen that is not a result row:
// two input lines, the count line and the status bar.
const chromeLines = 4

// App is the root Bubble Tea model.
// App does NOT fetch anything itself: fetches run as commands and come back
// as messages.
type App struct {
	cfg    AppConfig
	keys   keyMap
	styles *Styles

	session *searchSession
	scroll  *scroll.Controller

	inputs    []textinput.Model
	focus     int // focused input, -1 in list mode
	cursor    int
	favCursor int

	screen       screen
	detail       detail.Model
	detailCancel context.CancelFunc

	spinner   spinner.Model
	spinning  bool
	showDebug bool

	width  int
	height int
	ready  bool
}

// NewApp creates the App and starts a search session, restored from the
// navigation bridge if it holds criteria.
func NewApp(cfg AppConfig) App {
	if cfg.Bridge == nil {
		cfg.Bridge = navstate.New()
	}
	if cfg.Theme == nil {
		cfg.Theme = prefs.NewTheme(nil, nil, true)
	}
	if cfg.Favorites == nil {
		cfg.Favorites = prefs.NewFavorites(nil, nil)
	}
	if cfg.ScrollMargin <= 0 {
		cfg.ScrollMargin = scroll.DefaultMargin
	}

	styles := NewStyles(cfg.Theme.Dark())
	a := App{
		cfg:     cfg,
		keys:    defaultKeys(),
		styles:  &styles,
		scroll:  scroll.New(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	cfg.Theme.Subscribe(func(dark bool) {
		*a.styles = NewStyles(dark)
	})

	a.inputs = make([]textinput.Model, numFields)
	for i := range a.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 128
		a.inputs[i] = ti
	}
	a.inputs[fieldQuery].Placeholder = "title, author, anything"
	a.inputs[fieldAuthor].Placeholder = "any"
	a.inputs[fieldYear].Placeholder = "any"
	a.inputs[fieldYear].CharLimit = 4
	a.inputs[fieldSubject].Placeholder = "any"

	a.startSession()
	a.setFocus(fieldQuery)
	return a
}

// Init flushes the restored session's first debounce, if any.
func (a App) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, a.pipelineCmd())
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		for i := range a.inputs {
			a.inputs[i].Width = max(a.width/4-10, 4)
		}
		a.inputs[fieldQuery].Width = max(a.width-12, 10)
		a.detail.SetSize(a.width, a.height)
		return a, a.observe()

	case QuietElapsed:
		if msg.session != a.session {
			return a, nil
		}
		a.session.quietElapsed(msg.Gen)
		switch a.session.pipe.Phase() {
		case search.FetchingFirstPage:
			a.cursor = 0
		case search.Ready:
			// Loads held back while the timer was armed may go now.
			a.scroll.Rearm()
			if cmd := a.observe(); cmd != nil {
				return a, cmd
			}
		}
		return a, a.pipelineCmd()

	case PageLoaded:
		if !a.session.settle(msg) {
			return a, nil
		}
		n := len(a.session.pipe.Snapshot().Items)
		if msg.Ticket.Request.Page == 1 || n > a.session.rendered {
			a.scroll.Rearm()
		}
		a.session.rendered = n
		if a.cursor >= n {
			a.cursor = max(n-1, 0)
		}
		return a, a.observe()

	case detail.Loaded:
		if a.screen != screenDetail {
			return a, nil
		}
		var cmd tea.Cmd
		a.detail, cmd = a.detail.Update(msg)
		return a, cmd

	case spinner.TickMsg:
		if !a.loading() {
			a.spinning = false
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	if a.screen == screenSearch && a.focus >= 0 {
		var cmd tea.Cmd
		a.inputs[a.focus], cmd = a.inputs[a.focus].Update(msg)
		return a, cmd
	}
	return a, nil
}

// handleKeyMsg processes keyboard input for the active screen.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.ForceQuit) {
		return a, tea.Quit
	}

	if a.showDebug {
		if key.Matches(msg, a.keys.Debug, a.keys.Back) {
			a.showDebug = false
		}
		return a, nil
	}

	switch a.screen {
	case screenDetail:
		return a.handleDetailKey(msg)
	case screenFavorites:
		return a.handleFavoritesKey(msg)
	}
	if a.focus >= 0 {
		return a.handleEditKey(msg)
	}
	return a.handleListKey(msg)
}

func (a App) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Back), key.Matches(msg, a.keys.Open):
		a.setFocus(-1)
		return a, nil
	case key.Matches(msg, a.keys.NextField):
		a.setFocus((a.focus + 1) % numFields)
		return a, nil
	case key.Matches(msg, a.keys.PrevField):
		a.setFocus((a.focus + numFields - 1) % numFields)
		return a, nil
	case key.Matches(msg, a.keys.NewSearch):
		return a, a.newSearch()
	case msg.Type == tea.KeyUp, msg.Type == tea.KeyDown:
		return a.handleListKey(msg)
	}

	before := a.inputs[a.focus].Value()
	var cmd tea.Cmd
	a.inputs[a.focus], cmd = a.inputs[a.focus].Update(msg)
	if a.inputs[a.focus].Value() == before {
		return a, cmd
	}
	a.session.query.Set(a.criteriaFromInputs())
	return a, tea.Batch(cmd, a.pipelineCmd())
}

func (a App) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := a.session.pipe.Snapshot().Items

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Down):
		if a.cursor < len(items)-1 {
			a.cursor++
		}
		return a, a.observe()

	case key.Matches(msg, a.keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}
		return a, a.observe()

	case key.Matches(msg, a.keys.Top):
		a.cursor = 0
		return a, a.observe()

	case key.Matches(msg, a.keys.Bottom):
		a.cursor = max(len(items)-1, 0)
		return a, a.observe()

	case key.Matches(msg, a.keys.Open):
		if a.cursor < len(items) {
			return a, a.openDetail(items[a.cursor])
		}
		return a, nil

	case key.Matches(msg, a.keys.Favorite):
		if a.cursor < len(items) {
			a.cfg.Favorites.Toggle(items[a.cursor])
		}
		return a, nil

	case key.Matches(msg, a.keys.Favorites):
		a.screen = screenFavorites
		a.favCursor = 0
		return a, nil

	case key.Matches(msg, a.keys.Theme):
		a.toggleTheme()
		return a, nil

	case key.Matches(msg, a.keys.NewSearch):
		return a, a.newSearch()

	case key.Matches(msg, a.keys.Edit), key.Matches(msg, a.keys.NextField):
		a.setFocus(fieldQuery)
		return a, textinput.Blink

	case key.Matches(msg, a.keys.Debug):
		a.showDebug = true
		return a, nil
	}
	return a, nil
}

func (a App) handleFavoritesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	favs := a.cfg.Favorites.List()

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, a.keys.Back), key.Matches(msg, a.keys.Favorites):
		a.screen = screenSearch
		return a, a.observe()
	case key.Matches(msg, a.keys.Down):
		if a.favCursor < len(favs)-1 {
			a.favCursor++
		}
	case key.Matches(msg, a.keys.Up):
		if a.favCursor > 0 {
			a.favCursor--
		}
	case key.Matches(msg, a.keys.Favorite):
		if a.favCursor < len(favs) {
			a.cfg.Favorites.Remove(favs[a.favCursor].ID)
			if a.favCursor >= len(favs)-1 {
				a.favCursor = max(len(favs)-2, 0)
			}
		}
	case key.Matches(msg, a.keys.Open):
		if a.favCursor < len(favs) {
			return a, a.openDetail(favs[a.favCursor])
		}
	case key.Matches(msg, a.keys.Theme):
		a.toggleTheme()
	case key.Matches(msg, a.keys.Debug):
		a.showDebug = true
	}
	return a, nil
}

func (a App) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, a.keys.Back):
		return a, a.closeDetail()
	case key.Matches(msg, a.keys.Favorite):
		if !a.detail.Loading && a.detail.Err == nil {
			a.cfg.Favorites.Toggle(summaryOf(a.detail.Book))
		}
		return a, nil
	case key.Matches(msg, a.keys.Theme):
		a.toggleTheme()
		return a, nil
	case key.Matches(msg, a.keys.Debug):
		a.showDebug = true
		return a, nil
	}
	var cmd tea.Cmd
	a.detail, cmd = a.detail.Update(msg)
	return a, cmd
}

// startSession begins a search view-session, restoring criteria from the
// bridge when present. The restored criteria goes through the debounce like
// any other change.
func (a *App) startSession() {
	a.session = newSearchSession(a.cfg)
	a.scroll.Attach(a.session)
	a.cursor = 0
	if c, ok := a.cfg.Bridge.Restore(); ok {
		a.setInputs(c)
		a.session.query.Set(c)
	}
}

// newSearch clears the bridge and every input and starts over.
func (a *App) newSearch() tea.Cmd {
	a.cfg.Bridge.Clear()
	a.session.end()
	a.setInputs(book.Criteria{})
	a.startSession()
	a.setFocus(fieldQuery)
	return textinput.Blink
}

// openDetail ends the search session, remembering its criteria, and starts
// loading b's detail page.
func (a *App) openDetail(b book.Summary) tea.Cmd {
	a.cfg.Bridge.Save(a.session.query.Current())
	a.session.end()
	a.scroll.Detach()
	a.setFocus(-1)

	ctx, cancel := context.WithCancel(context.Background())
	a.detailCancel = cancel
	a.screen = screenDetail
	a.detail = detail.New(b.ID, b.Title, a.coverURL, a.styles.Detail)
	a.detail.SetSize(a.width, a.height)
	return detail.Fetch(ctx, a.cfg.Catalog, b.ID)
}

// closeDetail returns to a new search session restored from the bridge.
func (a *App) closeDetail() tea.Cmd {
	if a.detailCancel != nil {
		a.detailCancel()
		a.detailCancel = nil
	}
	a.screen = screenSearch
	a.startSession()
	return a.pipelineCmd()
}

func (a *App) toggleTheme() {
	a.cfg.Theme.Toggle()
	a.detail.SetPalette(a.styles.Detail)
}

func (a App) coverURL(id int) string {
	return a.cfg.Catalog.CoverURL(id, openlibrary.CoverMedium)
}

// observe reports the sentinel's visibility to the scroll controller and
// returns the commands for any page it requested.
func (a *App) observe() tea.Cmd {
	if a.screen != screenSearch || !a.ready || !a.scroll.Attached() {
		return nil
	}
	n := len(a.session.pipe.Snapshot().Items)
	w := calcWindow(n, a.cursor, a.listHeight())
	a.scroll.Observe(scroll.SentinelVisible(w.Bottom, n, a.cfg.ScrollMargin))
	return a.pipelineCmd()
}

// pipelineCmd flushes queued pipeline effects and starts the spinner when a
// fetch is outstanding.
func (a *App) pipelineCmd() tea.Cmd {
	cmd := a.session.flush()
	if a.loading() && !a.spinning {
		a.spinning = true
		return tea.Batch(cmd, a.spinner.Tick)
	}
	return cmd
}

func (a App) loading() bool {
	return a.session.pipe.Snapshot().Loading()
}

func (a App) listHeight() int {
	return max(a.height-chromeLines, 1)
}

func (a *App) setFocus(i int) {
	a.focus = i
	for j := range a.inputs {
		if j == i {
			a.inputs[j].Focus()
		} else {
			a.inputs[j].Blur()
		}
	}
}

func (a *App) setInputs(c book.Criteria) {
	a.inputs[fieldQuery].SetValue(c.Query)
	a.inputs[fieldAuthor].SetValue(c.Author)
	year := ""
	if c.Year > 0 {
		year = strconv.Itoa(c.Year)
	}
	a.inputs[fieldYear].SetValue(year)
	a.inputs[fieldSubject].SetValue(c.Subject)
}

func (a App) criteriaFromInputs() book.Criteria {
	year, err := strconv.Atoi(strings.TrimSpace(a.inputs[fieldYear].Value()))
	if err != nil {
		year = 0
	}
	return book.Criteria{}.
		WithQuery(a.inputs[fieldQuery].Value()).
		WithAuthor(a.inputs[fieldAuthor].Value()).
		WithYear(year).
		WithSubject(a.inputs[fieldSubject].Value())
}

func summaryOf(d book.Detail) book.Summary {
	return book.Summary{
		ID:          d.ID,
		Title:       d.Title,
		AuthorNames: d.AuthorNames,
		CoverID:     d.CoverID(),
		Subjects:    d.Subjects,
	}
}

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}
	s := *a.styles

	if a.showDebug {
		var inflight string
		if t, ok := a.session.pipe.InFlight(); ok {
			inflight = t.QueryID
		}
		overlay := debugOverlay(s, a.cfg.Ring, a.session.pipe.Phase(), inflight, a.session.pipe.Snapshot(), a.width, a.height-1)
		if overlay == "" {
			overlay = s.Help.Render("No event buffer attached.")
		}
		return lipgloss.JoinVertical(lipgloss.Left, overlay, a.statusBar(s, "[DEBUG]", a.keys.Debug))
	}

	switch a.screen {
	case screenDetail:
		return a.detail.View()
	case screenFavorites:
		return a.favoritesView(s)
	}
	return a.searchView(s)
}

func (a App) searchView(s Styles) string {
	snap := a.session.pipe.Snapshot()

	var b strings.Builder
	b.WriteString(a.inputLine(s, fieldQuery))
	b.WriteString("\n")
	b.WriteString(a.inputLine(s, fieldAuthor) + "  " + a.inputLine(s, fieldYear) + "  " + a.inputLine(s, fieldSubject))
	b.WriteString("\n")

	count := s.Count.Render(countLine(snap))
	if snap.Loading() || a.session.pipe.Pending() {
		count = s.Spinner.Render(a.spinner.View()) + " " + count
	}
	b.WriteString(" " + count + "\n")

	height := a.listHeight()
	if len(snap.Items) == 0 {
		b.WriteString(s.Help.Render(emptyHint(snap)))
		b.WriteString(strings.Repeat("\n", max(height-3, 0)))
	} else {
		w := calcWindow(len(snap.Items), a.cursor, height)
		list := renderList(s, snap.Items, a.cursor, w, a.width, a.cfg.Favorites.Has)
		b.WriteString(list)
		if rows := strings.Count(list, "\n"); rows < height {
			b.WriteString(strings.Repeat("\n", height-rows))
		}
	}

	mode := "[LIST]"
	if a.focus >= 0 {
		mode = "[EDIT]"
	}
	b.WriteString(a.statusBar(s, mode,
		a.keys.Edit, a.keys.Down, a.keys.Up, a.keys.Open, a.keys.Favorite,
		a.keys.Favorites, a.keys.Theme, a.keys.NewSearch, a.keys.Debug, a.keys.Quit))
	return b.String()
}

func emptyHint(s search.Session) string {
	switch {
	case s.InitialLoading:
		return "Searching Open Library…"
	case s.Criteria.Blank():
		return "Type a title, author or topic. Tab moves between filters."
	default:
		return "No books match. Try fewer filters."
	}
}

func (a App) inputLine(s Styles, field int) string {
	label := s.InputLabel
	if a.focus == field {
		label = s.InputLabelFocused
	}
	return label.Render(fieldLabels[field]+":") + " " + a.inputs[field].View()
}

func (a App) favoritesView(s Styles) string {
	favs := a.cfg.Favorites.List()

	var b strings.Builder
	b.WriteString(s.Header.Render(printer.Sprintf("Favorites (%d)", len(favs))))
	b.WriteString("\n")

	height := max(a.height-2, 1)
	if len(favs) == 0 {
		b.WriteString(s.Help.Render("No favorites yet. Press f on a result to add one."))
	} else {
		w := calcWindow(len(favs), a.favCursor, height)
		b.WriteString(renderList(s, favs, a.favCursor, w, a.width, nil))
	}
	b.WriteString("\n")
	b.WriteString(a.statusBar(s, "[FAVORITES]", a.keys.Open, a.keys.Favorite, a.keys.Back, a.keys.Quit))
	return b.String()
}

func (a App) statusBar(s Styles, mode string, bindings ...key.Binding) string {
	theme := "dark"
	if !s.Dark {
		theme = "light"
	}
	left := s.StatusText.Render(mode+" ") + hints(s, bindings...)
	right := s.StatusText.Render(printer.Sprintf("★ %d  %s", a.cfg.Favorites.Len(), theme))
	gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	return s.StatusBar.Width(a.width).Render(left + strings.Repeat(" ", gap) + right)
}

// Screen names the active screen (for testing).
func (a App) Screen() string {
	switch a.screen {
	case screenDetail:
		return "detail"
	case screenFavorites:
		return "favorites"
	default:
		return "search"
	}
}

// Cursor returns the current cursor position (for testing).
func (a App) Cursor() int {
	return a.cursor
}

// Session returns a copy of the current search session (for testing).
func (a App) Session() search.Session {
	return a.session.pipe.Snapshot()
}

// Detail returns the detail view (for testing).
func (a App) Detail() detail.Model {
	return a.detail
}
