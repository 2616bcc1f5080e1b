// Package sqlite stores arena matches in a local SQLite file, for runs
// without a Postgres server.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Open opens (creating if needed) the database at path and ensures the
// schema exists.
func Open(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS matches (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			map_name TEXT NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			seats INTEGER NOT NULL,
			status TEXT NOT NULL,
			winner INTEGER NOT NULL,
			turns INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			finished_at TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_matches_created_at ON matches(created_at);`,
		`CREATE TABLE IF NOT EXISTS seat_results (
			match_id TEXT NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
			seat INTEGER NOT NULL,
			policy TEXT NOT NULL,
			banked INTEGER NOT NULL,
			ships INTEGER NOT NULL,
			spawned INTEGER NOT NULL,
			self_collisions INTEGER NOT NULL,
			collisions INTEGER NOT NULL,
			PRIMARY KEY (match_id, seat)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}
