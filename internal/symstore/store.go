// Package symstore persists a bound compilation in SQLite so it can be
// validated again without the binder that produced it.
package symstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SchemaVersion is bumped whenever the table layout or the payload encoding
// changes. Stores written with another version are rejected.
const SchemaVersion = 1

var (
	// ErrSchema is returned for a store written by another schema version.
	ErrSchema = errors.New("symstore: schema version mismatch")
	// ErrCorrupt is returned when stored rows do not rebuild the compilation
	// they were saved from.
	ErrCorrupt = errors.New("symstore: corrupt store")
)

// Store is the SQLite data access layer.
type Store struct {
	db *sql.DB
}

// Open opens (creating as needed) the store at path with WAL mode enabled
// and the schema migrated.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates all tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	if _, err := s.db.Exec(schemaDDL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Summary counts what a store holds.
type Summary struct {
	Assembly string
	Files    int
	Modules  int
	Symbols  int
	Forwards int
}

// Summary reads the row counts of the main tables.
func (s *Store) Summary(ctx context.Context) (Summary, error) {
	var out Summary
	if err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'assembly'`).Scan(&out.Assembly); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return out, nil
		}
		return out, fmt.Errorf("summary: %w", err)
	}
	counts := []struct {
		table string
		dst   *int
	}{
		{"files", &out.Files},
		{"modules", &out.Modules},
		{"symbols", &out.Symbols},
		{"forwards", &out.Forwards},
	}
	for _, c := range counts {
		// #nosec G202 -- table names are constants above
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+c.table).Scan(c.dst); err != nil {
			return out, fmt.Errorf("summary %s: %w", c.table, err)
		}
	}
	return out, nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS meta (
  key             TEXT PRIMARY KEY,
  value           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS files (
  id              INTEGER PRIMARY KEY,
  path            TEXT NOT NULL,
  flags           INTEGER NOT NULL DEFAULT 0,
  content         BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS modules (
  id              INTEGER PRIMARY KEY,
  kind            TEXT NOT NULL,
  name            TEXT NOT NULL,
  assembly        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS symbols (
  id              INTEGER PRIMARY KEY,
  kind            TEXT NOT NULL,
  name            TEXT NOT NULL,
  container       INTEGER NOT NULL,
  module          INTEGER NOT NULL,
  span_file       INTEGER,
  span_start      INTEGER NOT NULL DEFAULT 0,
  span_end        INTEGER NOT NULL DEFAULT 0,
  modifiers       TEXT NOT NULL DEFAULT '[]',
  flags           INTEGER NOT NULL DEFAULT 0,
  indexer_name    TEXT NOT NULL DEFAULT '',
  payload         BLOB
);

CREATE TABLE IF NOT EXISTS forwards (
  module          INTEGER NOT NULL REFERENCES modules(id),
  seq             INTEGER NOT NULL,
  name            TEXT NOT NULL,
  target          TEXT NOT NULL,
  container       TEXT NOT NULL DEFAULT '',
  ignore_arity    BOOLEAN NOT NULL DEFAULT FALSE,
  PRIMARY KEY (module, seq)
);

CREATE TABLE IF NOT EXISTS assembly_refs (
  seq             INTEGER PRIMARY KEY,
  identity        TEXT NOT NULL,
  forwards        BLOB,
  defines         BLOB
);

CREATE INDEX IF NOT EXISTS idx_symbols_container ON symbols(container);
CREATE INDEX IF NOT EXISTS idx_symbols_module ON symbols(module);
`
