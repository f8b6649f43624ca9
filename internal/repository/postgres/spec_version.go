package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"specforge/internal/domain"
	"specforge/internal/domain/models/spec"
	"specforge/internal/domain/repositories"
)

// PostgresSpecVersionRepository implements repositories.SpecVersionRepository
type PostgresSpecVersionRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewSpecVersionRepository creates a new spec version repository
func NewSpecVersionRepository(config *RepositoryConfig) repositories.SpecVersionRepository {
	return &PostgresSpecVersionRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create appends a snapshot
func (r *PostgresSpecVersionRepository) Create(ctx context.Context, v *spec.SpecVersion) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, spec_file_id, version, content, changes_summary, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, r.tables.SpecVersions)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		v.ID,
		v.SpecFileID,
		v.Version,
		v.Content,
		v.ChangesSummary,
		v.CreatedBy,
		v.CreatedAt,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			// Another writer already snapshotted this version.
			return &domain.ConflictError{
				ResourceType: "spec_file",
				ResourceID:   v.SpecFileID,
				Expected:     int64(v.Version),
				Current:      int64(v.Version + 1),
			}
		}
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("spec file %s: %w", v.SpecFileID, domain.ErrNotFound)
		}
		return fmt.Errorf("create spec version: %w", err)
	}

	return nil
}

// GetByID retrieves a snapshot by id
func (r *PostgresSpecVersionRepository) GetByID(ctx context.Context, id string) (*spec.SpecVersion, error) {
	query := fmt.Sprintf(`
		SELECT id, spec_file_id, version, content, changes_summary, created_by, created_at
		FROM %s
		WHERE id = $1
	`, r.tables.SpecVersions)

	var v spec.SpecVersion
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&v.ID,
		&v.SpecFileID,
		&v.Version,
		&v.Content,
		&v.ChangesSummary,
		&v.CreatedBy,
		&v.CreatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) || IsPgInvalidTextError(err) {
			return nil, fmt.Errorf("spec version %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get spec version: %w", err)
	}

	return &v, nil
}

// ListBySpecFile lists snapshots newest first
func (r *PostgresSpecVersionRepository) ListBySpecFile(ctx context.Context, specFileID string) ([]spec.SpecVersion, error) {
	query := fmt.Sprintf(`
		SELECT id, spec_file_id, version, content, changes_summary, created_by, created_at
		FROM %s
		WHERE spec_file_id = $1
		ORDER BY version DESC
	`, r.tables.SpecVersions)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, specFileID)
	if err != nil {
		return nil, fmt.Errorf("list spec versions: %w", err)
	}
	defer rows.Close()

	versions := make([]spec.SpecVersion, 0)
	for rows.Next() {
		var v spec.SpecVersion
		if err := rows.Scan(
			&v.ID,
			&v.SpecFileID,
			&v.Version,
			&v.Content,
			&v.ChangesSummary,
			&v.CreatedBy,
			&v.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan spec version: %w", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate spec versions: %w", err)
	}

	return versions, nil
}
