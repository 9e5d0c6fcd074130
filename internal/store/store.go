package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - incidents table only (databases from the original tooling)
// 1 - optional incident columns guaranteed present
// 2 - mining_runs and run_rules tables
const currentSchemaVersion = 2

// ErrNotFound is returned by updates that match no row.
var ErrNotFound = errors.New("not found")

// optionalColumns were added to incidents after the first release. Older
// databases may lack any of them.
var optionalColumns = []string{
	"phone",
	"websiteType",
	"incidentFrequency",
	"serviceAffected",
	"rootCauseCategory",
	"tags",
}

// Store provides durable storage for incidents and mining runs.
// Uses SQLite with WAL mode for concurrent read access.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically.
//
// This function is idempotent - safe to call multiple times.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Store methods when available.
func (s *Store) DB() *sql.DB {
	return s.db
}

// SchemaVersion reports the database's PRAGMA user_version.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("get user_version: %w", err)
	}
	return version, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
	}
	if version < 2 {
		if err := migrateToV2(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// migrateToV1 adds any optional incident column an older database lacks.
// CREATE TABLE IF NOT EXISTS leaves an existing table untouched, so the
// columns have to be checked one by one.
func migrateToV1(db *sql.DB) error {
	have, err := tableColumns(db, "incidents")
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	for _, col := range optionalColumns {
		if have[col] {
			continue
		}
		if _, err := db.Exec(fmt.Sprintf("ALTER TABLE incidents ADD COLUMN %s TEXT", col)); err != nil {
			return fmt.Errorf("migrate to v1: add column %s: %w", col, err)
		}
	}
	return nil
}

// migrateToV2 creates the tables that record mining runs.
func migrateToV2(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS mining_runs (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			min_support REAL NOT NULL,
			min_confidence REAL NOT NULL,
			min_lift REAL NOT NULL,
			top_n INTEGER NOT NULL,
			transactions INTEGER NOT NULL,
			itemset_count INTEGER NOT NULL,
			rule_count INTEGER NOT NULL,
			fingerprint TEXT NOT NULL,
			engine_version TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS run_rules (
			run_id TEXT NOT NULL REFERENCES mining_runs(id) ON DELETE CASCADE,
			rank INTEGER NOT NULL,
			antecedents TEXT NOT NULL,
			consequents TEXT NOT NULL,
			antecedent_support REAL NOT NULL,
			consequent_support REAL NOT NULL,
			support REAL NOT NULL,
			count INTEGER NOT NULL,
			confidence REAL NOT NULL,
			lift REAL NOT NULL,
			leverage REAL NOT NULL,
			conviction REAL,
			zhangs_metric REAL NOT NULL,
			PRIMARY KEY (run_id, rank)
		);
	`)
	if err != nil {
		return fmt.Errorf("migrate to v2: %w", err)
	}
	return nil
}

func tableColumns(db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("table info %s: %w", table, err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("scan table info: %w", err)
		}
		cols[name] = true
	}
	return cols, rows.Err()
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
