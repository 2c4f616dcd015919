// Package store provides SQLite persistence for MySearch: the local search
// history and the set of result URLs the user has opened.
package store

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Store handles SQLite persistence. Safe for concurrent use.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Entry is one remembered query. A query repeated against the same source
// updates its entry instead of adding a new one.
type Entry struct {
	Query      string
	Source     string
	Hits       int // total hits of the latest run
	Count      int // times searched
	SearchedAt time.Time
}

// Open creates a Store at dbPath, creating tables if needed.
// File databases use WAL mode.
func Open(dbPath string) (*Store, error) {
	connStr := dbPath
	if dbPath == ":memory:" {
		// shared cache so every pooled connection sees the same database
		connStr = "file::memory:?cache=shared"
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
	CREATE TABLE IF NOT EXISTS history (
		query TEXT NOT NULL,
		source TEXT NOT NULL,
		hits INTEGER DEFAULT 0,
		count INTEGER DEFAULT 1,
		searched_at DATETIME NOT NULL,
		PRIMARY KEY (query, source)
	);

	CREATE INDEX IF NOT EXISTS idx_history_searched ON history(searched_at DESC);

	CREATE TABLE IF NOT EXISTS visits (
		url TEXT PRIMARY KEY,
		query TEXT,
		visited_at DATETIME NOT NULL
	);
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

// RecordSearch remembers a submitted query. Blank queries are ignored.
func (s *Store) RecordSearch(query, source string, hits int, at time.Time) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO history (query, source, hits, count, searched_at)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT(query, source) DO UPDATE SET
			hits = excluded.hits,
			count = history.count + 1,
			searched_at = excluded.searched_at
	`, query, source, hits, at.UTC())
	if err != nil {
		return fmt.Errorf("record search: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryEntries(`
		SELECT query, source, hits, count, searched_at
		FROM history
		ORDER BY searched_at DESC, query
		LIMIT ?
	`, limit)
}

// Matching returns up to limit entries whose query starts with prefix,
// most searched first. Matching is case-insensitive.
func (s *Store) Matching(prefix string, limit int) ([]Entry, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" || limit <= 0 {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryEntries(`
		SELECT query, source, hits, count, searched_at
		FROM history
		WHERE lower(query) LIKE ? ESCAPE '\'
		ORDER BY count DESC, searched_at DESC
		LIMIT ?
	`, escapeLike(strings.ToLower(prefix))+"%", limit)
}

// Clear deletes the whole history and all visits.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM history; DELETE FROM visits;"); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// MarkVisited records that url was opened from a search for query.
func (s *Store) MarkVisited(url, query string, at time.Time) error {
	if url == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO visits (url, query, visited_at) VALUES (?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET query = excluded.query, visited_at = excluded.visited_at
	`, url, query, at.UTC())
	if err != nil {
		return fmt.Errorf("mark visited: %w", err)
	}
	return nil
}

// Visited reports which of urls have been opened before.
func (s *Store) Visited(urls []string) (map[string]bool, error) {
	out := make(map[string]bool)
	if len(urls) == 0 {
		return out, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	args := make([]any, len(urls))
	for i, u := range urls {
		args[i] = u
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(urls)), ",")
	rows, err := s.db.Query("SELECT url FROM visits WHERE url IN ("+placeholders+")", args...)
	if err != nil {
		return nil, fmt.Errorf("query visits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		out[u] = true
	}
	return out, rows.Err()
}

// queryEntries executes query and scans the rows. Caller holds s.mu.
func (s *Store) queryEntries(query string, args ...any) ([]Entry, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Query, &e.Source, &e.Hits, &e.Count, &e.SearchedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
