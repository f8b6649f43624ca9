package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"specforge/internal/domain"
	"specforge/internal/domain/models/workspace"
)

// WorkspaceRepository implements repositories.WorkspaceRepository
type WorkspaceRepository struct {
	*DB
}

func (r *WorkspaceRepository) Get(ctx context.Context, projectID string) (*workspace.Workspace, error) {
	query := fmt.Sprintf(`SELECT project_id, tree, revision, created_at, updated_at FROM %s WHERE project_id = ?`, r.tables.Workspaces)

	var (
		ws                         workspace.Workspace
		tree, createdAt, updatedAt string
	)
	err := r.executor(ctx).QueryRowContext(ctx, query, projectID).Scan(&ws.ProjectID, &tree, &ws.Revision, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("workspace %s: %w", projectID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get workspace: %w", err)
	}
	if ws.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if ws.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	root := workspace.NewDirectory()
	if err := json.Unmarshal([]byte(tree), root); err != nil {
		return nil, fmt.Errorf("decode workspace %s: %w", projectID, err)
	}
	ws.Root = root
	return &ws, nil
}

func (r *WorkspaceRepository) Create(ctx context.Context, ws *workspace.Workspace) error {
	tree, err := json.Marshal(ws.Root)
	if err != nil {
		return fmt.Errorf("encode workspace: %w", err)
	}

	query := fmt.Sprintf(`INSERT INTO %s (project_id, tree, revision, created_at, updated_at) VALUES (?, ?, 1, ?, ?)`, r.tables.Workspaces)
	_, err = r.executor(ctx).ExecContext(ctx, query, ws.ProjectID, string(tree), formatTime(ws.CreatedAt), formatTime(ws.UpdatedAt))
	if err != nil {
		if isDuplicateError(err) {
			return fmt.Errorf("workspace %s: %w", ws.ProjectID, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("create workspace: %w", err)
	}

	ws.Revision = 1
	return nil
}

func (r *WorkspaceRepository) Save(ctx context.Context, ws *workspace.Workspace, expectedRevision int64) error {
	tree, err := json.Marshal(ws.Root)
	if err != nil {
		return fmt.Errorf("encode workspace: %w", err)
	}

	exec := r.executor(ctx)
	query := fmt.Sprintf(`UPDATE %s SET tree = ?, revision = revision + 1, updated_at = ? WHERE project_id = ? AND revision = ?`, r.tables.Workspaces)
	result, err := exec.ExecContext(ctx, query, string(tree), formatTime(ws.UpdatedAt), ws.ProjectID, expectedRevision)
	if err != nil {
		return fmt.Errorf("save workspace: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("save workspace: %w", err)
	}
	if n > 0 {
		ws.Revision = expectedRevision + 1
		return nil
	}

	var current int64
	err = exec.QueryRowContext(ctx, fmt.Sprintf(`SELECT revision FROM %s WHERE project_id = ?`, r.tables.Workspaces), ws.ProjectID).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("workspace %s: %w", ws.ProjectID, domain.ErrNotFound)
		}
		return fmt.Errorf("check workspace revision: %w", err)
	}
	return &domain.ConflictError{
		ResourceType: "workspace",
		ResourceID:   ws.ProjectID,
		Expected:     expectedRevision,
		Current:      current,
	}
}
