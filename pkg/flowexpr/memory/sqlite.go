package memory

import (
	"database/sql"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/randalmurphal/flowexpr/pkg/flowexpr/value"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteMemory persists top-level variables to SQLite as JSON documents.
// Each root name (the first path segment) is one row; nested paths are
// resolved by loading the root document and walking it.
//
// It is suitable for single-process use, e.g. conversation state that must
// survive restarts.
type SQLiteMemory struct {
	db      *sql.DB
	mu      sync.RWMutex
	closed  bool
	version int
}

// Compile-time interface check.
var _ Memory = (*SQLiteMemory)(nil)

// NewSQLiteMemory opens (or creates) a SQLite-backed memory.
// The path should be a file path (e.g., "./state.db") or ":memory:" for testing.
func NewSQLiteMemory(path string) (*SQLiteMemory, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A single connection keeps ":memory:" databases coherent across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS variables (
			name TEXT NOT NULL PRIMARY KEY,
			data BLOB NOT NULL,
			updated TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	return &SQLiteMemory{db: db}, nil
}

// GetValue implements Memory.
func (s *SQLiteMemory) GetValue(path string) (value.Value, error) {
	segs, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	if segs[0].IsIndex {
		return value.Null, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrMemoryClosed
	}

	root, err := s.load(segs[0].Key)
	if err != nil {
		return nil, err
	}
	return Walk(root, segs[1:]), nil
}

// SetValue implements Memory.
func (s *SQLiteMemory) SetValue(path string, v value.Value) error {
	segs, err := ParsePath(path)
	if err != nil {
		return err
	}
	if segs[0].IsIndex {
		return fmt.Errorf("%w: root of %q must be a name", ErrInvalidPath, path)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrMemoryClosed
	}

	name := segs[0].Key
	root, err := s.load(name)
	if err != nil {
		return err
	}
	updated, err := SetPath(root, segs[1:], value.OrMissing(v))
	if err != nil {
		return err
	}
	data, err := value.ToJSON(updated)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	_, err = s.db.Exec(`
		INSERT INTO variables (name, data, updated)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			data = excluded.data,
			updated = excluded.updated
	`, name, data, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save variable: %w", err)
	}
	s.version++
	return nil
}

// load reads the root document for name. Callers hold s.mu.
func (s *SQLiteMemory) load(name string) (value.Value, error) {
	var data []byte
	err := s.db.QueryRow(`SELECT data FROM variables WHERE name = ?`, name).Scan(&data)
	if err == sql.ErrNoRows {
		return value.Null, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load variable: %w", err)
	}
	v, err := value.FromJSON(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return v, nil
}

// Delete removes a root variable. Returns nil if it doesn't exist.
func (s *SQLiteMemory) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrMemoryClosed
	}

	if _, err := s.db.Exec(`DELETE FROM variables WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete variable: %w", err)
	}
	s.version++
	return nil
}

// Names returns the stored root variable names in sorted order.
func (s *SQLiteMemory) Names() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrMemoryClosed
	}

	rows, err := s.db.Query(`SELECT name FROM variables ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list variables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan variable name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate variables: %w", err)
	}
	return names, nil
}

// Version implements Memory. It counts writes made through this instance.
func (s *SQLiteMemory) Version() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return strconv.Itoa(s.version)
}

// Close releases the database. Safe to call more than once.
func (s *SQLiteMemory) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
