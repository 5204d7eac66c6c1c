package server

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// ErrScriptNotFound indicates the requested script doesn't exist.
var ErrScriptNotFound = errors.New("script not found")

// Store persists named scripts and their bundles in SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// OpenStore opens (creating if needed) the script database at path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Busy timeout for concurrent access.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS scripts (
		name TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		bundle BLOB,
		updated_at TEXT NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (st *Store) Close() error {
	if st.db != nil {
		return st.db.Close()
	}
	return nil
}

// Save upserts a script and its bundle blob under name.
func (st *Store) Save(name, source string, bundle []byte) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	_, err := st.db.Exec(
		"INSERT OR REPLACE INTO scripts (name, source, bundle, updated_at) VALUES (?, ?, ?, ?)",
		name, source, bundle, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving script %s: %w", name, err)
	}
	return nil
}

// Load retrieves a script's source and bundle by name.
func (st *Store) Load(name string) (string, []byte, error) {
	var source string
	var bundle []byte
	err := st.db.QueryRow("SELECT source, bundle FROM scripts WHERE name = ?", name).
		Scan(&source, &bundle)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, ErrScriptNotFound
		}
		return "", nil, fmt.Errorf("querying script %s: %w", name, err)
	}
	return source, bundle, nil
}

// Names returns all stored script names, ordered.
func (st *Store) Names() ([]string, error) {
	rows, err := st.db.Query("SELECT name FROM scripts ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("querying names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Delete removes a script. Deleting a missing name is not an error.
func (st *Store) Delete(name string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, err := st.db.Exec("DELETE FROM scripts WHERE name = ?", name); err != nil {
		return fmt.Errorf("deleting script %s: %w", name, err)
	}
	return nil
}
