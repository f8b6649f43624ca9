// Package projection mirrors committed spec documents into the project
// workspace according to a static table.
package projection

import (
	"context"
	"fmt"
	"log/slog"

	"specforge/internal/domain"
	"specforge/internal/domain/models/spec"
	"specforge/internal/domain/models/workspace"
	"specforge/internal/domain/services"
)

// Mutator is the part of the workspace service the engine needs
type Mutator interface {
	Mutate(ctx context.Context, projectID string, fn services.MutateFn) (*workspace.Workspace, error)
}

// HeadReader returns the current head of a spec document
type HeadReader interface {
	GetLatest(ctx context.Context, projectID, fileType string) (*spec.SpecFile, error)
}

// Engine applies the projection table
type Engine struct {
	table     *Table
	heads     HeadReader
	workspace Mutator
	logger    *slog.Logger
}

// NewEngine creates a projection engine
func NewEngine(table *Table, heads HeadReader, ws Mutator, logger *slog.Logger) *Engine {
	return &Engine{table: table, heads: heads, workspace: ws, logger: logger}
}

// Table returns the engine's table
func (e *Engine) Table() *Table {
	return e.table
}

// Project writes the current head of file's document to every mapped path
// in one workspace mutation. The head is read inside the mutation, so a
// projection that lost a race to a newer edit writes the newer content
// rather than file's. Unmapped types are a no-op. Running it twice leaves
// the tree unchanged.
func (e *Engine) Project(ctx context.Context, file *spec.SpecFile) error {
	paths := e.table.Paths(file.FileType)
	if len(paths) == 0 {
		return nil
	}

	failed := paths[0]
	projected := file
	_, err := e.workspace.Mutate(ctx, file.ProjectID, func(root *workspace.Directory) error {
		head, err := e.heads.GetLatest(ctx, file.ProjectID, file.FileType)
		if err != nil {
			return fmt.Errorf("read head: %w", err)
		}
		projected = head

		for _, p := range paths {
			if err := root.Write(p, head.Content); err != nil {
				failed = p
				return err
			}
		}
		return nil
	})
	if err != nil {
		e.logger.Error("projection failed",
			"project_id", file.ProjectID,
			"file_type", file.FileType,
			"version", projected.Version,
			"path", failed,
			"error", err,
		)
		return &domain.ProjectionError{
			ProjectID: file.ProjectID,
			FileType:  file.FileType,
			Path:      failed,
			Err:       fmt.Errorf("write projected content: %w", err),
		}
	}

	e.logger.Debug("spec projected",
		"project_id", file.ProjectID,
		"file_type", file.FileType,
		"version", projected.Version,
		"paths", paths,
	)
	return nil
}
