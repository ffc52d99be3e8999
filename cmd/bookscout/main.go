// Command bookscout is a terminal client for searching Open Library.
package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/bookscout/internal/book"
	"github.com/abelbrown/bookscout/internal/config"
	"github.com/abelbrown/bookscout/internal/logging"
	"github.com/abelbrown/bookscout/internal/navstate"
	"github.com/abelbrown/bookscout/internal/openlibrary"
	"github.com/abelbrown/bookscout/internal/otel"
	"github.com/abelbrown/bookscout/internal/prefs"
	"github.com/abelbrown/bookscout/internal/store"
	"github.com/abelbrown/bookscout/internal/ui"
)

func main() {
	configPath := flag.String("config", "", "Config file (default ~/.bookscout/config.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal("Failed to load config: %v", err)
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		fatal("Failed to create data directory: %v", err)
	}

	if err := logging.Init(cfg.DataDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}
	defer logging.Close()

	// Event log: JSONL on disk plus an in-memory ring for the debug overlay
	ring := otel.NewRingBuffer(otel.DefaultRingSize)
	var events *otel.Logger
	eventFile, err := os.OpenFile(cfg.EventsPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		logging.Warn("Event log unavailable", "path", cfg.EventsPath(), "error", err)
		events = otel.NewNullLogger()
	} else {
		defer eventFile.Close()
		events = otel.NewLogger(eventFile)
	}
	events.Attach(ring)
	defer events.Close()

	logging.Info("bookscout starting", "version", logging.Version, "session", events.SessionID())
	events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindStartup, Comp: "main", Msg: logging.Version})

	st, closeStore := openPersistence(cfg.DBPath(), events)
	defer closeStore()

	theme := prefs.NewTheme(st, events, cfg.Dark())
	theme.Subscribe(func(dark bool) {
		logging.Debug("Theme changed", "theme", theme.Name())
	})
	favorites := prefs.NewFavorites(st, events)
	favorites.Subscribe(func(list []book.Summary) {
		logging.Debug("Favorites changed", "count", len(list))
	})

	client := openlibrary.NewClient(openlibrary.Options{
		SearchURL:  cfg.API.SearchURL,
		WorksURL:   cfg.API.WorksURL,
		AuthorsURL: cfg.API.AuthorsURL,
		CoversURL:  cfg.API.CoversURL,
		UserAgent:  cfg.API.UserAgent,
		RPS:        cfg.API.RPS,
		Timeout:    cfg.API.HTTPTimeout,
		Events:     events,
	})

	app := ui.NewApp(ui.AppConfig{
		Catalog:      client,
		Bridge:       navstate.New(),
		Theme:        theme,
		Favorites:    favorites,
		Ring:         ring,
		Events:       events,
		QuietPeriod:  cfg.Search.QuietPeriod,
		ScrollMargin: cfg.Search.ScrollMargin,
	})

	p := tea.NewProgram(app, tea.WithAltScreen())

	logging.Info("Starting UI")
	if _, err := p.Run(); err != nil {
		logging.Error("Application error", "error", err)
		events.Error(otel.KindError, "main", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}

	events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindShutdown, Comp: "main", Count: favorites.Len()})
	logging.Info("bookscout exiting normally", "dropped_events", events.Dropped())
}

// openPersistence opens the preferences database. When it cannot be opened
// the failure is logged and reported, and the returned Persistence is nil:
// theme and favorites then start from defaults and live in memory only.
func openPersistence(path string, events otel.Emitter) (prefs.Persistence, func()) {
	st, err := store.Open(path)
	if err != nil {
		logging.Warn("Store unavailable, preferences will not persist", "path", path, "error", err)
		otel.Emit(events, otel.Event{
			Level: otel.LevelWarn, Kind: otel.KindStoreError, Comp: "store", Msg: "open", Err: err.Error(),
		})
		return nil, func() {}
	}
	logging.Info("Store initialized", "path", path)
	return st, func() { st.Close() }
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
