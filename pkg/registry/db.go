// Package registry is the durable record of packages aurorus has installed
// or imported from the system, and of which installed packages each one
// depends on.
//
// The registry is a SQLite database. Writers hold the exclusive lock
// returned by [Registry.Lock] for the whole of an install or removal run.
package registry

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory registry (useful for testing).
const MemoryPath = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS packages (
    name TEXT PRIMARY KEY,
    version TEXT NOT NULL,
    origin TEXT NOT NULL,
    explicit BOOLEAN NOT NULL DEFAULT 0,
    installed_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS dependencies (
    package TEXT NOT NULL,
    depends_on TEXT NOT NULL,
    PRIMARY KEY (package, depends_on),
    FOREIGN KEY (package) REFERENCES packages(name) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS provides (
    package TEXT NOT NULL,
    expr TEXT NOT NULL,
    name TEXT NOT NULL,
    PRIMARY KEY (package, expr),
    FOREIGN KEY (package) REFERENCES packages(name) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_deps_depends ON dependencies(depends_on);
CREATE INDEX IF NOT EXISTS idx_provides_name ON provides(name);
`

// Registry provides the installed-package database operations.
type Registry struct {
	db       *sql.DB
	path     string
	lockPath string
	sem      chan struct{}
}

// Open opens (creating if needed) the registry at path and ensures the
// schema exists. Use [MemoryPath] for a throwaway database.
func Open(path string) (*Registry, error) {
	lockPath := ""
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create registry directory: %w", err)
		}
		lockPath = path + ".lock"
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry: %w", err)
	}

	// SQLite only allows one writer at a time; in-memory databases are
	// also per-connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if path != MemoryPath {
		if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Registry{
		db:       db,
		path:     path,
		lockPath: lockPath,
		sem:      make(chan struct{}, 1),
	}, nil
}

// Path returns the database location.
func (r *Registry) Path() string { return r.path }

// Close closes the database connection.
func (r *Registry) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
