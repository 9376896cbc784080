// Package store provides SQLite persistence for applet definitions, global
// plugin settings, and the append-only run record log.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS applets (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	enabled    INTEGER NOT NULL DEFAULT 1,
	definition BLOB NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS global_settings (
	plugin     TEXT NOT NULL,
	field      TEXT NOT NULL,
	value      TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	PRIMARY KEY (plugin, field)
);

CREATE TABLE IF NOT EXISTS run_records (
	id         TEXT PRIMARY KEY,
	applet_id  TEXT NOT NULL,
	state      TEXT NOT NULL,
	started_at TIMESTAMP NOT NULL,
	ended_at   TIMESTAMP NOT NULL,
	detail     BLOB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_run_records_applet
	ON run_records (applet_id, started_at DESC);
`

// Store owns the database connection and hands out repositories that share it.
type Store struct {
	db *sql.DB

	applets *AppletRepository
	globals *GlobalSettingsRepository
	records *RunRecordRepository
}

// Open connects to the SQLite database at path and applies the schema. The
// path ":memory:" yields an in-memory database, used by tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// SQLite serializes writers; a single connection avoids SQLITE_BUSY
	// under the engine's concurrent record appends.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{
		db:      db,
		applets: &AppletRepository{db: db},
		globals: &GlobalSettingsRepository{db: db},
		records: &RunRecordRepository{db: db},
	}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Applets returns the applet definition repository.
func (s *Store) Applets() *AppletRepository { return s.applets }

// Globals returns the global settings repository.
func (s *Store) Globals() *GlobalSettingsRepository { return s.globals }

// Records returns the run record repository.
func (s *Store) Records() *RunRecordRepository { return s.records }
