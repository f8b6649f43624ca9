package repositories

import (
	"context"

	"specforge/internal/domain/models/spec"
)

// SpecFileRepository defines data access for spec file heads
type SpecFileRepository interface {
	// GetByProjectAndType returns the head for (projectID, fileType) or domain.ErrNotFound
	GetByProjectAndType(ctx context.Context, projectID, fileType string) (*spec.SpecFile, error)

	// Create inserts a new head. Returns domain.ErrAlreadyExists if the pair is taken.
	Create(ctx context.Context, file *spec.SpecFile) error

	// UpdateContent writes file.Content, file.Version and file.UpdatedAt only if
	// the stored version still equals expectedVersion. Otherwise it returns a
	// *domain.ConflictError.
	UpdateContent(ctx context.Context, file *spec.SpecFile, expectedVersion int) error

	// ListByProject returns every head of a project ordered by file type
	ListByProject(ctx context.Context, projectID string) ([]spec.SpecFile, error)
}

// SpecVersionRepository defines data access for the append-only snapshot history
type SpecVersionRepository interface {
	// Create appends a snapshot. A second snapshot with the same
	// (spec_file_id, version) returns a *domain.ConflictError.
	Create(ctx context.Context, version *spec.SpecVersion) error

	// GetByID returns a snapshot or domain.ErrNotFound
	GetByID(ctx context.Context, id string) (*spec.SpecVersion, error)

	// ListBySpecFile returns all snapshots of a spec file, newest first
	ListBySpecFile(ctx context.Context, specFileID string) ([]spec.SpecVersion, error)
}
