package services

import (
	"context"

	"specforge/internal/domain/models/workspace"
)

// MutateFn edits a loaded tree in place. It may run more than once when a
// save loses a race, so it must not have side effects outside the tree.
type MutateFn func(root *workspace.Directory) error

// WorkspaceService reads and mutates per-project trees
type WorkspaceService interface {
	// GetTree returns the project's workspace, creating an empty one if absent
	GetTree(ctx context.Context, projectID string) (*workspace.Workspace, error)

	// ReadFile returns a file's content. A project without a workspace reads as empty.
	ReadFile(ctx context.Context, projectID, path string) (string, error)

	// WriteFile creates or overwrites a file, creating missing parents
	WriteFile(ctx context.Context, projectID, path, content string) (*workspace.Workspace, error)

	// WriteFiles writes several files as one mutation, in order
	WriteFiles(ctx context.Context, projectID string, files []FileWrite) (*workspace.Workspace, error)

	// Create adds a new file or directory; domain.ErrAlreadyExists if taken
	Create(ctx context.Context, projectID, path string, kind workspace.Kind, content string) (*workspace.Workspace, error)

	// Delete removes a file or a whole subtree
	Delete(ctx context.Context, projectID, path string) (*workspace.Workspace, error)

	// Mutate runs fn against the latest tree and persists the result
	Mutate(ctx context.Context, projectID string, fn MutateFn) (*workspace.Workspace, error)
}

// FileWrite is one entry of a batch write
type FileWrite struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}
