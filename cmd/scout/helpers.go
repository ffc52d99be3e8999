package main

import (
	"log"
	"os"

	"github.com/abelbrown/bookscout/internal/config"
	"github.com/abelbrown/bookscout/internal/openlibrary"
	"github.com/abelbrown/bookscout/internal/store"
)

// loadConfig loads the config or fatals.
func loadConfig() *config.Config {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatalf("failed to create data directory: %v", err)
	}
	return cfg
}

// openDB opens the store or fatals.
func openDB(cfg *config.Config) *store.Store {
	st, err := store.Open(cfg.DBPath())
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	return st
}

// newClient builds an Open Library client from cfg.
func newClient(cfg *config.Config) *openlibrary.Client {
	return openlibrary.NewClient(openlibrary.Options{
		SearchURL:  cfg.API.SearchURL,
		WorksURL:   cfg.API.WorksURL,
		AuthorsURL: cfg.API.AuthorsURL,
		CoversURL:  cfg.API.CoversURL,
		UserAgent:  cfg.API.UserAgent,
		RPS:        cfg.API.RPS,
		Timeout:    cfg.API.HTTPTimeout,
	})
}

// truncate shortens a string to max runes, appending "..." if truncated.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
