package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"crywolf/internal/measure"
)

// nowUTC returns the current UTC time as an ISO 8601 string.
func nowUTC() string { return time.Now().UTC().Format(time.RFC3339) }

// nullStr converts a sql.NullString to a plain string (empty if null).
func nullStr(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// nullValue converts a nullable REAL column to a measure.
func nullValue(nf sql.NullFloat64) measure.Value {
	if nf.Valid {
		return measure.Of(nf.Float64)
	}
	return measure.NA
}

// valueArg binds a measure as REAL or NULL.
func valueArg(v measure.Value) any {
	if f, ok := v.Get(); ok {
		return f
	}
	return nil
}

func timeArg(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func timePtrArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return timeArg(*t)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", s, err)
	}
	return t, nil
}

func parseNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func boolArg(b bool) int {
	if b {
		return 1
	}
	return 0
}

// currentSchemaVersion is the target schema version for this build.
const currentSchemaVersion = schemaVersionV2

// SqlStore implements Store with SQLite.
type SqlStore struct {
	db *sql.DB
}

var _ Store = (*SqlStore)(nil)

// Open opens or creates a SQLite DB at path and runs migrations.
// Creates the parent directory (e.g. .crywolf) if it does not exist.
func Open(path string) (*SqlStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	s := &SqlStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SqlStore) migrate() error {
	var tableCount int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableCount)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableCount == 0 {
		return s.freshInstall()
	}

	var v int
	err = s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&v)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("read schema version: %w", err)
	}
	if errors.Is(err, sql.ErrNoRows) {
		// schema_version exists but is empty: a v1 import-only database.
		v = schemaVersionV1
		if _, err := s.db.Exec("INSERT INTO schema_version(version) VALUES(?)", v); err != nil {
			return fmt.Errorf("set schema version: %w", err)
		}
	}

	switch v {
	case currentSchemaVersion:
		return nil
	case schemaVersionV1:
		return s.migrateV1ToV2()
	default:
		return fmt.Errorf("unknown schema version %d", v)
	}
}

func (s *SqlStore) freshInstall() error {
	if _, err := s.db.Exec(schemaV2); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := s.db.Exec("INSERT INTO schema_version(version) VALUES(?)", currentSchemaVersion); err != nil {
		return fmt.Errorf("set schema version: %w", err)
	}
	return nil
}

// migrateV1ToV2 adds the run tables in one transaction.
func (s *SqlStore) migrateV1ToV2() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin migration tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(schemaRunsV2); err != nil {
		return fmt.Errorf("v1→v2 migration: %w", err)
	}
	if _, err := tx.Exec("UPDATE schema_version SET version = ?", schemaVersionV2); err != nil {
		return fmt.Errorf("bump schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration tx: %w", err)
	}
	return nil
}

// SchemaVersion returns the stored schema version.
func (s *SqlStore) SchemaVersion() (int, error) {
	var v int
	if err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

// Close closes the database connection.
func (s *SqlStore) Close() error {
	return s.db.Close()
}
