package prefs

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

const memoryDSN = ":memory:"

const sqliteSchema = `CREATE TABLE IF NOT EXISTS prefs (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// SQLiteSlot keeps one row per key in a SQLite database.
type SQLiteSlot struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens or creates the database at path. ":memory:" opens a
// private in-memory database.
func OpenSQLite(path string) (*SQLiteSlot, error) {
	resolved := memoryDSN
	if strings.TrimSpace(path) != memoryDSN {
		var err error
		resolved, err = resolvePath(path)
		if err != nil {
			return nil, fmt.Errorf("resolve path: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
			return nil, fmt.Errorf("create prefs dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", resolved)
	if err != nil {
		return nil, fmt.Errorf("open prefs db: %w", err)
	}
	if resolved == memoryDSN {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create prefs table: %w", err)
	}
	return &SQLiteSlot{db: db, path: resolved}, nil
}

// Path returns the database path.
func (s *SQLiteSlot) Path() string {
	return s.path
}

// Get returns the value stored under key.
func (s *SQLiteSlot) Get(key string) (string, bool, error) {
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

// Set overwrites the value stored under key.
func (s *SQLiteSlot) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO prefs (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("write pref %q: %w", key, err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteSlot) Close() error {
	return s.db.Close()
}
