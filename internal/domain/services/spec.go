package services

import (
	"context"

	"specforge/internal/domain/models/spec"
)

// SpecService manages versioned specification documents
type SpecService interface {
	// GetLatest returns the current head or domain.ErrNotFound
	GetLatest(ctx context.Context, projectID, fileType string) (*spec.SpecFile, error)

	// Update snapshots the current head and replaces its content, bumping the
	// version by one. Lost races return a *domain.ConflictError.
	Update(ctx context.Context, req *UpdateSpecRequest) (*spec.SpecFile, error)

	// ListVersions returns snapshots newest first. A missing or never-edited
	// spec file yields an empty slice.
	ListVersions(ctx context.Context, projectID, fileType string) ([]spec.SpecVersion, error)

	// Rollback restores the content of an earlier snapshot as a new version
	Rollback(ctx context.Context, req *RollbackSpecRequest) (*spec.SpecFile, error)

	// Provision creates the head at version 1
	Provision(ctx context.Context, req *ProvisionSpecRequest) (*spec.SpecFile, error)
}

// UpdateSpecRequest represents a spec edit
type UpdateSpecRequest struct {
	ProjectID   string `json:"-"`
	FileType    string `json:"-"`
	Actor       string `json:"-"` // Set by handler from auth context
	Content     string `json:"content"`
	BaseVersion *int   `json:"base_version,omitempty"` // Version the client edited; nil skips the check
}

// RollbackSpecRequest restores a snapshot
type RollbackSpecRequest struct {
	ProjectID string `json:"-"`
	FileType  string `json:"-"`
	Actor     string `json:"-"`
	VersionID string `json:"version_id"`
}

// ProvisionSpecRequest creates a spec file for a new project
type ProvisionSpecRequest struct {
	ProjectID string `json:"project_id"`
	FileType  string `json:"file_type"`
	Content   string `json:"content"`
}
