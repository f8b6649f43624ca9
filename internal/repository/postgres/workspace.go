package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"specforge/internal/domain"
	"specforge/internal/domain/models/workspace"
	"specforge/internal/domain/repositories"
)

// PostgresWorkspaceRepository implements repositories.WorkspaceRepository
type PostgresWorkspaceRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewWorkspaceRepository creates a new workspace repository
func NewWorkspaceRepository(config *RepositoryConfig) repositories.WorkspaceRepository {
	return &PostgresWorkspaceRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Get loads and decodes a project's tree
func (r *PostgresWorkspaceRepository) Get(ctx context.Context, projectID string) (*workspace.Workspace, error) {
	query := fmt.Sprintf(`
		SELECT project_id, tree::text, revision, created_at, updated_at
		FROM %s
		WHERE project_id = $1
	`, r.tables.Workspaces)

	var (
		ws   workspace.Workspace
		tree string
	)
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, projectID).Scan(
		&ws.ProjectID,
		&tree,
		&ws.Revision,
		&ws.CreatedAt,
		&ws.UpdatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("workspace %s: %w", projectID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get workspace: %w", err)
	}

	root := workspace.NewDirectory()
	if err := json.Unmarshal([]byte(tree), root); err != nil {
		return nil, fmt.Errorf("decode workspace %s: %w", projectID, err)
	}
	ws.Root = root

	return &ws, nil
}

// Create stores a new workspace at revision 1
func (r *PostgresWorkspaceRepository) Create(ctx context.Context, ws *workspace.Workspace) error {
	tree, err := json.Marshal(ws.Root)
	if err != nil {
		return fmt.Errorf("encode workspace: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (project_id, tree, revision, created_at, updated_at)
		VALUES ($1, $2::json, 1, $3, $4)
	`, r.tables.Workspaces)

	executor := GetExecutor(ctx, r.pool)
	_, err = executor.Exec(ctx, query, ws.ProjectID, string(tree), ws.CreatedAt, ws.UpdatedAt)
	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("workspace %s: %w", ws.ProjectID, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("create workspace: %w", err)
	}

	ws.Revision = 1
	return nil
}

// Save replaces the tree when the stored revision still matches
func (r *PostgresWorkspaceRepository) Save(ctx context.Context, ws *workspace.Workspace, expectedRevision int64) error {
	tree, err := json.Marshal(ws.Root)
	if err != nil {
		return fmt.Errorf("encode workspace: %w", err)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET tree = $1::json, revision = revision + 1, updated_at = $2
		WHERE project_id = $3 AND revision = $4
	`, r.tables.Workspaces)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, string(tree), ws.UpdatedAt, ws.ProjectID, expectedRevision)
	if err != nil {
		return fmt.Errorf("save workspace: %w", err)
	}

	if result.RowsAffected() == 0 {
		return r.conflictOrMissing(ctx, ws.ProjectID, expectedRevision)
	}

	ws.Revision = expectedRevision + 1
	return nil
}

func (r *PostgresWorkspaceRepository) conflictOrMissing(ctx context.Context, projectID string, expected int64) error {
	query := fmt.Sprintf(`SELECT revision FROM %s WHERE project_id = $1`, r.tables.Workspaces)

	var current int64
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, projectID).Scan(&current); err != nil {
		if IsPgNoRowsError(err) {
			return fmt.Errorf("workspace %s: %w", projectID, domain.ErrNotFound)
		}
		return fmt.Errorf("check workspace revision: %w", err)
	}

	return &domain.ConflictError{
		ResourceType: "workspace",
		ResourceID:   projectID,
		Expected:     expected,
		Current:      current,
	}
}
