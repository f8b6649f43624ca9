package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"specforge/internal/domain"
	"specforge/internal/domain/models/spec"
)

// SpecVersionRepository implements repositories.SpecVersionRepository
type SpecVersionRepository struct {
	*DB
}

const specVersionColumns = `id, spec_file_id, version, content, changes_summary, created_by, created_at`

func scanSpecVersion(row rowScanner) (*spec.SpecVersion, error) {
	var (
		v         spec.SpecVersion
		createdAt string
		err       error
	)
	if err := row.Scan(&v.ID, &v.SpecFileID, &v.Version, &v.Content, &v.ChangesSummary, &v.CreatedBy, &createdAt); err != nil {
		return nil, err
	}
	if v.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *SpecVersionRepository) Create(ctx context.Context, v *spec.SpecVersion) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?)`, r.tables.SpecVersions, specVersionColumns)

	_, err := r.executor(ctx).ExecContext(ctx, query,
		v.ID, v.SpecFileID, v.Version, v.Content, v.ChangesSummary, v.CreatedBy, formatTime(v.CreatedAt),
	)
	if err != nil {
		if isDuplicateError(err) {
			return &domain.ConflictError{
				ResourceType: "spec_file",
				ResourceID:   v.SpecFileID,
				Expected:     int64(v.Version),
				Current:      int64(v.Version + 1),
			}
		}
		if isForeignKeyError(err) {
			return fmt.Errorf("spec file %s: %w", v.SpecFileID, domain.ErrNotFound)
		}
		return fmt.Errorf("create spec version: %w", err)
	}
	return nil
}

func (r *SpecVersionRepository) GetByID(ctx context.Context, id string) (*spec.SpecVersion, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ?`, specVersionColumns, r.tables.SpecVersions)

	v, err := scanSpecVersion(r.executor(ctx).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("spec version %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get spec version: %w", err)
	}
	return v, nil
}

func (r *SpecVersionRepository) ListBySpecFile(ctx context.Context, specFileID string) ([]spec.SpecVersion, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE spec_file_id = ? ORDER BY version DESC`, specVersionColumns, r.tables.SpecVersions)

	rows, err := r.executor(ctx).QueryContext(ctx, query, specFileID)
	if err != nil {
		return nil, fmt.Errorf("list spec versions: %w", err)
	}
	defer rows.Close()

	versions := make([]spec.SpecVersion, 0)
	for rows.Next() {
		v, err := scanSpecVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan spec version: %w", err)
		}
		versions = append(versions, *v)
	}
	return versions, rows.Err()
}
