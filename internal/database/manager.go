// Package database manages netopscore's single system SQLite database.
// Every entity is project-scoped in one schema, so Manager is a thin,
// eagerly-opened wrapper that applies WAL pragmas and runs migrations.
package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // pure-Go sqlite driver for database/sql
)

// Manager owns the single *sql.DB handle used by every store in
// internal/store.
type Manager struct {
	db *sql.DB
}

// Open opens the database at dsn, applies pragmas, and runs migrations.
func Open(ctx context.Context, dsn string) (*Manager, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("database: open %s: %w", dsn, err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite + WAL: serialize writers, avoid SQLITE_BUSY

	m := &Manager{db: db}
	if err := m.applyPragmas(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := m.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return m, nil
}

// DB returns the underlying *sql.DB for use by internal/store.
func (m *Manager) DB() *sql.DB { return m.db }

// Close releases the database handle.
func (m *Manager) Close() error { return m.db.Close() }

func (m *Manager) applyPragmas(ctx context.Context) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := m.db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("database: apply pragma %q: %w", p, err)
		}
	}
	return nil
}
