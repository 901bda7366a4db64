package store

import (
	"database/sql"
	"fmt"
	"log"
	"time"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "Initial schema",
		SQL: `
CREATE TABLE IF NOT EXISTS state_stats (
    state TEXT NOT NULL,
    year INTEGER NOT NULL,
    geographical_area REAL,
    forest_area REAL NOT NULL,
    reserved REAL,
    protected REAL,
    unclassed REAL,
    tree_cover REAL,
    mangrove REAL,
    rainfall REAL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (state, year)
);

CREATE TABLE IF NOT EXISTS national_stats (
    year INTEGER PRIMARY KEY,
    reporting_states INTEGER NOT NULL,
    geographical_area REAL,
    forest_area REAL NOT NULL,
    tree_cover REAL,
    mangrove REAL,
    rainfall_avg REAL
);

CREATE TABLE IF NOT EXISTS etl_runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    started_at DATETIME NOT NULL,
    finished_at DATETIME,
    rows_parsed INTEGER,
    rows_stored INTEGER,
    rows_skipped INTEGER,
    unmatched_keys INTEGER,
    success BOOLEAN NOT NULL DEFAULT FALSE,
    error_message TEXT
);

CREATE INDEX IF NOT EXISTS idx_state_stats_year ON state_stats(year);
`,
	},
}

func (s *Store) Migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			description TEXT,
			applied_at DATETIME NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	var current int
	err = s.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		log.Printf("store: applying migration %d: %s", m.Version, m.Description)
		if _, err := s.db.Exec(m.SQL); err != nil {
			return fmt.Errorf("migration %d: %w", m.Version, err)
		}
		if _, err := s.db.Exec(`INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, ?, ?)`,
			m.Version, m.Description, time.Now().UTC()); err != nil {
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}
	}
	return nil
}
