// Package store provides SQLite persistence for the species knowledge base.
package store

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/abelbrown/eses/internal/dataset"
)

// Store holds an imported copy of the dataset. NOT an interface - concrete type.
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.RWMutex
	now  func() time.Time
}

// Meta describes the dataset currently held by the store.
type Meta struct {
	Source     string
	ImportedAt time.Time
	Rows       int
}

// Open creates a new Store with the given database path.
// Creates tables if they don't exist.
// Uses WAL mode for file-based DBs.
func Open(dbPath string) (*Store, error) {
	connStr := dbPath
	if dbPath == ":memory:" {
		// Shared cache so every pooled connection sees the same database.
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

	s := &Store{db: db, path: dbPath, now: time.Now}

	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return s, nil
}

// createTables creates the species and meta tables if they don't exist.
// The ord column preserves the dataset's natural order.
func (s *Store) createTables() error {
	var cols strings.Builder
	for _, f := range dataset.Columns {
		fmt.Fprintf(&cols, ",\n\t\t%s TEXT NOT NULL DEFAULT ''", f)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS species (
		ord INTEGER PRIMARY KEY` + cols.String() + `
	);

	CREATE INDEX IF NOT EXISTS idx_species_name ON species(name);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Path returns the path the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
// Thread-safe: acquires write lock to prevent closing during in-flight operations.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// ReplaceSpecies swaps the stored dataset for records in a single
// transaction and records source as its origin. Returns rows written.
// Thread-safe: acquires write lock.
func (s *Store) ReplaceSpecies(source string, records []dataset.Record) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM species"); err != nil {
		return 0, fmt.Errorf("clear species: %w", err)
	}

	names := make([]string, 0, len(dataset.Columns)+1)
	names = append(names, "ord")
	for _, f := range dataset.Columns {
		names = append(names, string(f))
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")

	stmt, err := tx.Prepare("INSERT INTO species (" + strings.Join(names, ", ") + ") VALUES (" + placeholders + ")")
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(names))
	for i, rec := range records {
		args[0] = i
		for j, f := range dataset.Columns {
			args[j+1] = rec.Value(f)
		}
		if _, err := stmt.Exec(args...); err != nil {
			return 0, fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	meta := map[string]string{
		"source":      source,
		"imported_at": s.now().UTC().Format(time.RFC3339Nano),
	}
	for k, v := range meta {
		if _, err := tx.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)", k, v); err != nil {
			return 0, fmt.Errorf("write meta %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(records), nil
}

// LoadTable reads the stored dataset back in import order.
// An empty store yields dataset.ErrEmpty.
// Thread-safe: acquires read lock.
func (s *Store) LoadTable() (*dataset.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, len(dataset.Columns))
	for i, f := range dataset.Columns {
		names[i] = string(f)
	}

	rows, err := s.db.Query("SELECT " + strings.Join(names, ", ") + " FROM species ORDER BY ord")
	if err != nil {
		return nil, fmt.Errorf("query species: %w", err)
	}
	defer rows.Close()

	var records []dataset.Record
	vals := make([]string, len(names))
	ptrs := make([]any, len(names))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan species: %w", err)
		}
		m := make(map[dataset.Field]string, len(names))
		for i, f := range dataset.Columns {
			m[f] = vals[i]
		}
		records = append(records, dataset.NewRecord(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate species: %w", err)
	}

	if len(records) == 0 {
		return nil, &dataset.LoadError{Source: s.path, Err: dataset.ErrEmpty}
	}
	return dataset.NewTable(s.path, records), nil
}

// Meta reports the origin and size of the stored dataset. ImportedAt is
// zero when nothing has been imported.
// Thread-safe: acquires read lock.
func (s *Store) Meta() (Meta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var m Meta
	if err := s.db.QueryRow("SELECT COUNT(*) FROM species").Scan(&m.Rows); err != nil {
		return m, fmt.Errorf("count species: %w", err)
	}

	rows, err := s.db.Query("SELECT key, value FROM meta")
	if err != nil {
		return m, fmt.Errorf("query meta: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return m, fmt.Errorf("scan meta: %w", err)
		}
		switch k {
		case "source":
			m.Source = v
		case "imported_at":
			t, err := time.Parse(time.RFC3339Nano, v)
			if err != nil {
				return m, fmt.Errorf("parse imported_at: %w", err)
			}
			m.ImportedAt = t
		}
	}
	if err := rows.Err(); err != nil {
		return m, fmt.Errorf("iterate meta: %w", err)
	}
	return m, nil
}
