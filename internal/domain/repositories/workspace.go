package repositories

import (
	"context"

	"specforge/internal/domain/models/workspace"
)

// WorkspaceRepository persists one serialized tree document per project
type WorkspaceRepository interface {
	// Get returns the project's workspace or domain.ErrNotFound
	Get(ctx context.Context, projectID string) (*workspace.Workspace, error)

	// Create stores a new workspace at revision 1.
	// Returns domain.ErrAlreadyExists if the project already has one.
	Create(ctx context.Context, ws *workspace.Workspace) error

	// Save replaces the tree if the stored revision equals expectedRevision,
	// then sets ws.Revision to expectedRevision+1. A stale revision returns
	// a *domain.ConflictError.
	Save(ctx context.Context, ws *workspace.Workspace, expectedRevision int64) error
}
