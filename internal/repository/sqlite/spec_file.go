package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"specforge/internal/domain"
	"specforge/internal/domain/models/spec"
)

// SpecFileRepository implements repositories.SpecFileRepository
type SpecFileRepository struct {
	*DB
}

const specFileColumns = `id, project_id, file_type, content, version, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSpecFile(row rowScanner) (*spec.SpecFile, error) {
	var (
		f                    spec.SpecFile
		createdAt, updatedAt string
		err                  error
	)
	if err := row.Scan(&f.ID, &f.ProjectID, &f.FileType, &f.Content, &f.Version, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if f.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if f.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *SpecFileRepository) GetByProjectAndType(ctx context.Context, projectID, fileType string) (*spec.SpecFile, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE project_id = ? AND file_type = ?`, specFileColumns, r.tables.SpecFiles)

	f, err := scanSpecFile(r.executor(ctx).QueryRowContext(ctx, query, projectID, fileType))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("spec file %s/%s: %w", projectID, fileType, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get spec file: %w", err)
	}
	return f, nil
}

func (r *SpecFileRepository) Create(ctx context.Context, f *spec.SpecFile) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?)`, r.tables.SpecFiles, specFileColumns)

	_, err := r.executor(ctx).ExecContext(ctx, query,
		f.ID, f.ProjectID, f.FileType, f.Content, f.Version,
		formatTime(f.CreatedAt), formatTime(f.UpdatedAt),
	)
	if err != nil {
		if isDuplicateError(err) {
			return fmt.Errorf("spec file %s/%s: %w", f.ProjectID, f.FileType, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("create spec file: %w", err)
	}
	return nil
}

func (r *SpecFileRepository) UpdateContent(ctx context.Context, f *spec.SpecFile, expectedVersion int) error {
	query := fmt.Sprintf(`UPDATE %s SET content = ?, version = ?, updated_at = ? WHERE id = ? AND version = ?`, r.tables.SpecFiles)

	exec := r.executor(ctx)
	result, err := exec.ExecContext(ctx, query, f.Content, f.Version, formatTime(f.UpdatedAt), f.ID, expectedVersion)
	if err != nil {
		return fmt.Errorf("update spec file: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update spec file: %w", err)
	}
	if n > 0 {
		return nil
	}

	var current int
	err = exec.QueryRowContext(ctx, fmt.Sprintf(`SELECT version FROM %s WHERE id = ?`, r.tables.SpecFiles), f.ID).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("spec file %s: %w", f.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("check spec file version: %w", err)
	}
	return &domain.ConflictError{
		ResourceType: "spec_file",
		ResourceID:   f.ID,
		Expected:     int64(expectedVersion),
		Current:      int64(current),
	}
}

func (r *SpecFileRepository) ListByProject(ctx context.Context, projectID string) ([]spec.SpecFile, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE project_id = ? ORDER BY file_type ASC`, specFileColumns, r.tables.SpecFiles)

	rows, err := r.executor(ctx).QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list spec files: %w", err)
	}
	defer rows.Close()

	files := make([]spec.SpecFile, 0)
	for rows.Next() {
		f, err := scanSpecFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan spec file: %w", err)
		}
		files = append(files, *f)
	}
	return files, rows.Err()
}
