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

// PostgresSpecFileRepository implements repositories.SpecFileRepository
type PostgresSpecFileRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewSpecFileRepository creates a new spec file repository
func NewSpecFileRepository(config *RepositoryConfig) repositories.SpecFileRepository {
	return &PostgresSpecFileRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// GetByProjectAndType retrieves the head of one document type
func (r *PostgresSpecFileRepository) GetByProjectAndType(ctx context.Context, projectID, fileType string) (*spec.SpecFile, error) {
	query := fmt.Sprintf(`
		SELECT id, project_id, file_type, content, version, created_at, updated_at
		FROM %s
		WHERE project_id = $1 AND file_type = $2
	`, r.tables.SpecFiles)

	var f spec.SpecFile
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, projectID, fileType).Scan(
		&f.ID,
		&f.ProjectID,
		&f.FileType,
		&f.Content,
		&f.Version,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("spec file %s/%s: %w", projectID, fileType, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get spec file: %w", err)
	}

	return &f, nil
}

// Create inserts a new spec file head
func (r *PostgresSpecFileRepository) Create(ctx context.Context, f *spec.SpecFile) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, project_id, file_type, content, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, r.tables.SpecFiles)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		f.ID,
		f.ProjectID,
		f.FileType,
		f.Content,
		f.Version,
		f.CreatedAt,
		f.UpdatedAt,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("spec file %s/%s: %w", f.ProjectID, f.FileType, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("create spec file: %w", err)
	}

	return nil
}

// UpdateContent performs the version-predicated update
func (r *PostgresSpecFileRepository) UpdateContent(ctx context.Context, f *spec.SpecFile, expectedVersion int) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET content = $1, version = $2, updated_at = $3
		WHERE id = $4 AND version = $5
	`, r.tables.SpecFiles)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, f.Content, f.Version, f.UpdatedAt, f.ID, expectedVersion)
	if err != nil {
		return fmt.Errorf("update spec file: %w", err)
	}

	if result.RowsAffected() == 0 {
		return r.conflictOrMissing(ctx, f.ID, expectedVersion)
	}

	return nil
}

// conflictOrMissing explains a zero-row conditional update
func (r *PostgresSpecFileRepository) conflictOrMissing(ctx context.Context, id string, expectedVersion int) error {
	query := fmt.Sprintf(`SELECT version FROM %s WHERE id = $1`, r.tables.SpecFiles)

	var current int
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, id).Scan(&current); err != nil {
		if IsPgNoRowsError(err) {
			return fmt.Errorf("spec file %s: %w", id, domain.ErrNotFound)
		}
		return fmt.Errorf("check spec file version: %w", err)
	}

	return &domain.ConflictError{
		ResourceType: "spec_file",
		ResourceID:   id,
		Expected:     int64(expectedVersion),
		Current:      int64(current),
	}
}

// ListByProject lists every spec file head of a project
func (r *PostgresSpecFileRepository) ListByProject(ctx context.Context, projectID string) ([]spec.SpecFile, error) {
	query := fmt.Sprintf(`
		SELECT id, project_id, file_type, content, version, created_at, updated_at
		FROM %s
		WHERE project_id = $1
		ORDER BY file_type ASC
	`, r.tables.SpecFiles)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list spec files: %w", err)
	}
	defer rows.Close()

	files := make([]spec.SpecFile, 0)
	for rows.Next() {
		var f spec.SpecFile
		if err := rows.Scan(
			&f.ID,
			&f.ProjectID,
			&f.FileType,
			&f.Content,
			&f.Version,
			&f.CreatedAt,
			&f.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan spec file: %w", err)
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate spec files: %w", err)
	}

	return files, nil
}
