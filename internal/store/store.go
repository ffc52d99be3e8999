// Package store provides SQLite persistence for bookscout's local
// preferences: a key/value table and the ordered favorites list.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	_ "modernc.org/sqlite"

	"github.com/abelbrown/bookscout/internal/book"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Store handles SQLite persistence. NOT an interface - concrete type.
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open creates a new Store with the given database path.
// Creates tables if they don't exist.
// Uses WAL mode for file-based DBs.
func Open(dbPath string) (*Store, error) {
	connStr := dbPath
	if dbPath == ":memory:" {
		// Each in-memory store gets its own named database.
		connStr = "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return s, nil
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS favorites (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		payload TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_favorites_position ON favorites(position);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Get returns the value stored under key. ok is false when the key is absent.
func (s *Store) Get(key string) (value string, ok bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	err = s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// LoadFavorites returns the favorites in stored order. Rows whose payload no
// longer decodes are skipped.
func (s *Store) LoadFavorites() ([]book.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT id, payload FROM favorites ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("query favorites: %w", err)
	}
	defer rows.Close()

	var out []book.Summary
	for rows.Next() {
		var id, payload string
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		var b book.Summary
		if err := json.Unmarshal([]byte(payload), &b); err != nil {
			continue
		}
		b.ID = id
		out = append(out, b)
	}
	return out, rows.Err()
}

// SaveFavorites replaces the stored favorites with list, keeping its order.
func (s *Store) SaveFavorites(list []book.Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM favorites`); err != nil {
		return fmt.Errorf("clear favorites: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO favorites (id, position, payload) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for i, b := range list {
		payload, err := json.Marshal(b)
		if err != nil {
			return fmt.Errorf("encode favorite %s: %w", b.ID, err)
		}
		if _, err := stmt.Exec(b.ID, i, string(payload)); err != nil {
			return fmt.Errorf("insert favorite %s: %w", b.ID, err)
		}
	}
	return tx.Commit()
}
