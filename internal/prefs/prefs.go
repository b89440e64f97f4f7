// Package prefs persists the per-device viewer state: the favorite verse IDs
// and the theme choice. Backed by a single-table SQLite database.
package prefs

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS prefs (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

const (
	keyFavorites = "favorites"
	keyTheme     = "theme"
)

// Store is the persistent key-value store behind the catalog's favorite set
// and the theme preference.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the preference database. Use ":memory:"
// in tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open prefs db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init prefs schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Favorites returns the stored favorite IDs, sorted. A missing key is the
// explicit default: no favorites.
func (s *Store) Favorites() ([]int, error) {
	raw, ok, err := s.get(keyFavorites)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var ids []int
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("stored favorites unreadable: %w", err)
	}
	sort.Ints(ids)
	return ids, nil
}

// SaveFavorites replaces the stored favorite set.
func (s *Store) SaveFavorites(ids []int) error {
	sorted := append([]int(nil), ids...)
	sort.Ints(sorted)
	if sorted == nil {
		sorted = []int{} // store [] rather than null
	}
	raw, err := json.Marshal(sorted)
	if err != nil {
		return err
	}
	return s.put(keyFavorites, string(raw))
}

// Theme returns the stored theme. Empty string means no explicit choice:
// follow the platform's ambient preference.
func (s *Store) Theme() (string, error) {
	raw, ok, err := s.get(keyTheme)
	if err != nil || !ok {
		return "", err
	}
	return raw, nil
}

func (s *Store) SaveTheme(theme string) error {
	return s.put(keyTheme, theme)
}

func (s *Store) get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM prefs WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read pref %q: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) put(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO prefs (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("write pref %q: %w", key, err)
	}
	return nil
}
