package services

import (
	"context"

	"specforge/internal/domain/models/spec"
	"specforge/internal/domain/models/workspace"
)

// Coordinator is the single entry point used by HTTP handlers and agent tools.
//
// UpdateSpec and RollbackSpec commit first and project second: when
// projection fails they return the committed file together with a
// *domain.ProjectionError.
type Coordinator interface {
	GetLatestSpec(ctx context.Context, projectID, fileType string) (*spec.SpecFile, error)
	UpdateSpec(ctx context.Context, req *UpdateSpecRequest) (*spec.SpecFile, error)
	ListSpecVersions(ctx context.Context, projectID, fileType string) ([]spec.SpecVersion, error)
	RollbackSpec(ctx context.Context, req *RollbackSpecRequest) (*spec.SpecFile, error)

	// Reproject writes the current head of a spec file into the workspace again
	Reproject(ctx context.Context, projectID, fileType string) (*spec.SpecFile, error)

	GetWorkspace(ctx context.Context, projectID string) (*workspace.Workspace, error)
	ReadFile(ctx context.Context, projectID, path string) (string, error)
	WriteFile(ctx context.Context, projectID, path, content string) (*workspace.Workspace, error)
	CreatePath(ctx context.Context, projectID, path string, kind workspace.Kind, content string) (*workspace.Workspace, error)
	DeletePath(ctx context.Context, projectID, path string) (*workspace.Workspace, error)

	// ApplyGenerated writes an AI generation result as one workspace mutation
	ApplyGenerated(ctx context.Context, projectID string, files []FileWrite) (*workspace.Workspace, error)
}
