// Package workspace implements the per-project virtual file tree service:
// load (or create) the tree, apply an edit, persist with a revision check.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"specforge/internal/config"
	"specforge/internal/domain"
	models "specforge/internal/domain/models/workspace"
	"specforge/internal/domain/repositories"
	"specforge/internal/domain/services"
)

// workspaceService implements the WorkspaceService interface
type workspaceService struct {
	repo        repositories.WorkspaceRepository
	logger      *slog.Logger
	maxAttempts int
}

// NewService creates a new workspace service
func NewService(repo repositories.WorkspaceRepository, logger *slog.Logger) services.WorkspaceService {
	return &workspaceService{
		repo:        repo,
		logger:      logger,
		maxAttempts: config.MaxWorkspaceMutationAttempts,
	}
}

// GetTree loads the workspace, creating an empty one on first access
func (s *workspaceService) GetTree(ctx context.Context, projectID string) (*models.Workspace, error) {
	if err := validateProjectID(projectID); err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		ws, err := s.repo.Get(ctx, projectID)
		if err == nil {
			return ws, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}

		ws = models.New(projectID)
		err = s.repo.Create(ctx, ws)
		if err == nil {
			s.logger.Info("workspace created", "project_id", projectID)
			return ws, nil
		}
		// Lost a first-creation race; the winner's tree is there now.
		if !errors.Is(err, domain.ErrAlreadyExists) || attempt >= s.maxAttempts {
			return nil, err
		}
	}
}

// ReadFile reads one file. A project without a workspace is an empty tree,
// so every read misses instead of creating the workspace.
func (s *workspaceService) ReadFile(ctx context.Context, projectID, path string) (string, error) {
	if err := validateProjectID(projectID); err != nil {
		return "", err
	}

	ws, err := s.repo.Get(ctx, projectID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return "", err
		}
		ws = models.New(projectID)
	}
	return ws.Root.Read(path)
}

func (s *workspaceService) WriteFile(ctx context.Context, projectID, path, content string) (*models.Workspace, error) {
	if err := validateContent(content); err != nil {
		return nil, err
	}
	return s.Mutate(ctx, projectID, func(root *models.Directory) error {
		return root.Write(path, content)
	})
}

// WriteFiles applies a batch of writes in order. If any write fails nothing
// is persisted.
func (s *workspaceService) WriteFiles(ctx context.Context, projectID string, files []services.FileWrite) (*models.Workspace, error) {
	if len(files) > config.MaxBatchFiles {
		return nil, fmt.Errorf("%w: batch exceeds %d files", domain.ErrValidation, config.MaxBatchFiles)
	}
	for _, f := range files {
		if err := validateContent(f.Content); err != nil {
			return nil, fmt.Errorf("%s: %w", f.Path, err)
		}
	}
	return s.Mutate(ctx, projectID, func(root *models.Directory) error {
		for _, f := range files {
			if err := root.Write(f.Path, f.Content); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *workspaceService) Create(ctx context.Context, projectID, path string, kind models.Kind, content string) (*models.Workspace, error) {
	if err := validateContent(content); err != nil {
		return nil, err
	}
	return s.Mutate(ctx, projectID, func(root *models.Directory) error {
		return root.Create(path, kind, content)
	})
}

func (s *workspaceService) Delete(ctx context.Context, projectID, path string) (*models.Workspace, error) {
	return s.Mutate(ctx, projectID, func(root *models.Directory) error {
		return root.Delete(path)
	})
}

// Mutate loads the latest tree, applies fn and saves it guarded by the
// revision that was read. On a lost race the whole cycle is repeated
// against the fresh tree, up to maxAttempts times. Errors from fn are
// returned as-is and nothing is saved.
func (s *workspaceService) Mutate(ctx context.Context, projectID string, fn services.MutateFn) (*models.Workspace, error) {
	if err := validateProjectID(projectID); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ws, isNew, err := s.load(ctx, projectID)
		if err != nil {
			return nil, err
		}

		if err := fn(ws.Root); err != nil {
			return nil, err
		}
		ws.UpdatedAt = time.Now()

		if isNew {
			err = s.repo.Create(ctx, ws)
		} else {
			err = s.repo.Save(ctx, ws, ws.Revision)
		}
		if err == nil {
			return ws, nil
		}
		if !errors.Is(err, domain.ErrConflict) && !errors.Is(err, domain.ErrAlreadyExists) {
			return nil, err
		}

		s.logger.Debug("workspace save lost race, retrying",
			"project_id", projectID,
			"attempt", attempt,
			"error", err,
		)
		lastErr = err
	}

	var conflict *domain.ConflictError
	if errors.As(lastErr, &conflict) {
		return nil, conflict
	}
	return nil, &domain.ConflictError{ResourceType: "workspace", ResourceID: projectID}
}

// load returns the stored workspace or a fresh one that still has to be created
func (s *workspaceService) load(ctx context.Context, projectID string) (*models.Workspace, bool, error) {
	ws, err := s.repo.Get(ctx, projectID)
	if err == nil {
		return ws, false, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return models.New(projectID), true, nil
	}
	return nil, false, err
}

func validateProjectID(projectID string) error {
	if err := validation.Validate(projectID, validation.Required); err != nil {
		return fmt.Errorf("%w: project_id: %v", domain.ErrValidation, err)
	}
	return nil
}

func validateContent(content string) error {
	if err := validation.Validate(content, validation.Length(0, config.MaxFileContentBytes)); err != nil {
		return fmt.Errorf("%w: content: %v", domain.ErrValidation, err)
	}
	return nil
}
