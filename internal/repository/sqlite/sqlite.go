// Package sqlite is the embedded persistence backend. It implements the same
// repository contracts as the postgres package on a single-file (or
// in-memory) database, and is what the test suites and local development run
// against.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"specforge/internal/domain/repositories"
)

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

// TableNames holds prefixed table names
type TableNames struct {
	SpecFiles    string
	SpecVersions string
	Workspaces   string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		SpecFiles:    prefix + "spec_files",
		SpecVersions: prefix + "spec_versions",
		Workspaces:   prefix + "workspaces",
	}
}

// DB wraps the database handle shared by the repositories
type DB struct {
	db     *sql.DB
	tables *TableNames
	logger *slog.Logger
}

// Open opens (creating if needed) the database at path and ensures the schema.
//
// A single connection is used. SQLite serializes writers anyway, and an
// in-memory database only lives as long as its connection. Repositories
// called inside ExecTx must receive the transaction's ctx or they will wait
// on the connection the transaction holds.
func Open(ctx context.Context, path, tablePrefix string, logger *slog.Logger) (*repositories.Store, error) {
	d, err := openDB(ctx, path, tablePrefix, logger)
	if err != nil {
		return nil, err
	}

	return &repositories.Store{
		SpecFiles:    &SpecFileRepository{d},
		SpecVersions: &SpecVersionRepository{d},
		Workspaces:   &WorkspaceRepository{d},
		TxManager:    &TransactionManager{d},
		Closer:       d.db,
	}, nil
}

func openDB(ctx context.Context, path, tablePrefix string, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite %q: %w", pragma, err)
		}
	}

	d := &DB{db: db, tables: NewTableNames(tablePrefix), logger: logger}
	if err := d.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return d, nil
}

func (d *DB) ensureSchema(ctx context.Context) error {
	t := d.tables
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id         TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			file_type  TEXT NOT NULL,
			content    TEXT NOT NULL DEFAULT '',
			version    INTEGER NOT NULL DEFAULT 1 CHECK (version >= 1),
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			UNIQUE (project_id, file_type)
		)`, t.SpecFiles),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id              TEXT PRIMARY KEY,
			spec_file_id    TEXT NOT NULL REFERENCES %s(id),
			version         INTEGER NOT NULL CHECK (version >= 1),
			content         TEXT NOT NULL,
			changes_summary TEXT NOT NULL DEFAULT '',
			created_by      TEXT NOT NULL DEFAULT '',
			created_at      TEXT NOT NULL,
			UNIQUE (spec_file_id, version)
		)`, t.SpecVersions, t.SpecFiles),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			project_id TEXT PRIMARY KEY,
			tree       TEXT NOT NULL,
			revision   INTEGER NOT NULL DEFAULT 1 CHECK (revision >= 1),
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`, t.Workspaces),
	}
	for _, stmt := range stmts {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure sqlite schema: %w", err)
		}
	}
	return nil
}

// dbtx is implemented by both *sql.DB and *sql.Tx
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txContextKey struct{}

func (d *DB) executor(ctx context.Context) dbtx {
	if tx, ok := ctx.Value(txContextKey{}).(*sql.Tx); ok {
		return tx
	}
	return d.db
}

// Timestamps are stored as RFC 3339 text so they sort lexically.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
