package postgres

import (
	"context"
	"fmt"
)

// schemaStatements returns the DDL for all tables with the configured prefix.
// The workspace tree is stored as json rather than jsonb: jsonb reorders
// object keys and directory children must keep insertion order.
func schemaStatements(t *TableNames) []string {
	return []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id         UUID PRIMARY KEY,
				project_id TEXT NOT NULL,
				file_type  TEXT NOT NULL,
				content    TEXT NOT NULL DEFAULT '',
				version    INTEGER NOT NULL DEFAULT 1 CHECK (version >= 1),
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				UNIQUE (project_id, file_type)
			)`, t.SpecFiles),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id              UUID PRIMARY KEY,
				spec_file_id    UUID NOT NULL REFERENCES %s(id),
				version         INTEGER NOT NULL CHECK (version >= 1),
				content         TEXT NOT NULL,
				changes_summary TEXT NOT NULL DEFAULT '',
				created_by      TEXT NOT NULL DEFAULT '',
				created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				UNIQUE (spec_file_id, version)
			)`, t.SpecVersions, t.SpecFiles),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				project_id TEXT PRIMARY KEY,
				tree       JSON NOT NULL,
				revision   BIGINT NOT NULL DEFAULT 1 CHECK (revision >= 1),
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`, t.Workspaces),
	}
}

// EnsureSchema creates any missing tables. It is idempotent.
func EnsureSchema(ctx context.Context, db DBTX, t *TableNames) error {
	for _, stmt := range schemaStatements(t) {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// DropSchema drops all tables for the prefix
func DropSchema(ctx context.Context, db DBTX, t *TableNames) error {
	stmt := fmt.Sprintf(`DROP TABLE IF EXISTS %s, %s, %s CASCADE`, t.SpecVersions, t.SpecFiles, t.Workspaces)
	if _, err := db.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("drop schema: %w", err)
	}
	return nil
}
