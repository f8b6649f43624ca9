// Package spec implements the versioned specification document store.
package spec

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"specforge/internal/config"
	"specforge/internal/domain"
	models "specforge/internal/domain/models/spec"
	"specforge/internal/domain/repositories"
	"specforge/internal/domain/services"
)

var fileTypePattern = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// specService implements the SpecService interface
type specService struct {
	fileRepo    repositories.SpecFileRepository
	versionRepo repositories.SpecVersionRepository
	txManager   repositories.TransactionManager
	logger      *slog.Logger
}

// NewService creates a new spec service
func NewService(
	fileRepo repositories.SpecFileRepository,
	versionRepo repositories.SpecVersionRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) services.SpecService {
	return &specService{
		fileRepo:    fileRepo,
		versionRepo: versionRepo,
		txManager:   txManager,
		logger:      logger,
	}
}

// GetLatest returns the current head of a document type
func (s *specService) GetLatest(ctx context.Context, projectID, fileType string) (*models.SpecFile, error) {
	if err := validateKey(projectID, fileType); err != nil {
		return nil, err
	}
	return s.fileRepo.GetByProjectAndType(ctx, projectID, fileType)
}

// Update snapshots the current content and writes the new content as the
// next version. Snapshot and head update share one transaction; the head
// update is predicated on the version read at the start of it.
func (s *specService) Update(ctx context.Context, req *services.UpdateSpecRequest) (*models.SpecFile, error) {
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, err
	}

	var updated *models.SpecFile
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		current, err := s.fileRepo.GetByProjectAndType(txCtx, req.ProjectID, req.FileType)
		if err != nil {
			return err
		}

		if req.BaseVersion != nil && *req.BaseVersion != current.Version {
			return &domain.ConflictError{
				ResourceType: "spec_file",
				ResourceID:   current.ID,
				Expected:     int64(*req.BaseVersion),
				Current:      int64(current.Version),
			}
		}

		updated, err = s.advance(txCtx, current, req.Content, models.SummaryEdited, req.Actor)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("spec updated",
		"project_id", updated.ProjectID,
		"file_type", updated.FileType,
		"version", updated.Version,
		"actor", req.Actor,
	)
	return updated, nil
}

// ListVersions returns the snapshot history, newest first
func (s *specService) ListVersions(ctx context.Context, projectID, fileType string) ([]models.SpecVersion, error) {
	if err := validateKey(projectID, fileType); err != nil {
		return nil, err
	}

	file, err := s.fileRepo.GetByProjectAndType(ctx, projectID, fileType)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return []models.SpecVersion{}, nil
		}
		return nil, err
	}
	return s.versionRepo.ListBySpecFile(ctx, file.ID)
}

// Rollback restores an earlier snapshot's content as a new version. The
// content being replaced is snapshotted first, so nothing is lost.
func (s *specService) Rollback(ctx context.Context, req *services.RollbackSpecRequest) (*models.SpecFile, error) {
	if err := validateKey(req.ProjectID, req.FileType); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(req.VersionID); err != nil {
		return nil, fmt.Errorf("%w: version_id %q is not a valid id", domain.ErrInvalidArgument, req.VersionID)
	}

	var restored *models.SpecFile
	var target *models.SpecVersion
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		current, err := s.fileRepo.GetByProjectAndType(txCtx, req.ProjectID, req.FileType)
		if err != nil {
			return err
		}

		target, err = s.versionRepo.GetByID(txCtx, req.VersionID)
		if err != nil {
			return err
		}
		if target.SpecFileID != current.ID {
			return fmt.Errorf("%w: version %s belongs to a different spec file", domain.ErrInvalidArgument, req.VersionID)
		}

		restored, err = s.advance(txCtx, current, target.Content, models.RollbackSummary(target.Version), req.Actor)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("spec rolled back",
		"project_id", restored.ProjectID,
		"file_type", restored.FileType,
		"restored_version", target.Version,
		"version", restored.Version,
		"actor", req.Actor,
	)
	return restored, nil
}

// Provision creates a document type for a project at version 1
func (s *specService) Provision(ctx context.Context, req *services.ProvisionSpecRequest) (*models.SpecFile, error) {
	if err := validateKey(req.ProjectID, req.FileType); err != nil {
		return nil, err
	}
	if err := validateContent(req.Content); err != nil {
		return nil, err
	}

	now := time.Now()
	file := &models.SpecFile{
		ID:        uuid.NewString(),
		ProjectID: req.ProjectID,
		FileType:  req.FileType,
		Content:   req.Content,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.fileRepo.Create(ctx, file); err != nil {
		return nil, err
	}

	s.logger.Info("spec provisioned", "project_id", file.ProjectID, "file_type", file.FileType)
	return file, nil
}

// advance records current as a snapshot and moves the head to content at
// current.Version+1. Must run inside a transaction.
func (s *specService) advance(ctx context.Context, current *models.SpecFile, content, summary, actor string) (*models.SpecFile, error) {
	now := time.Now()

	snapshot := &models.SpecVersion{
		ID:             uuid.NewString(),
		SpecFileID:     current.ID,
		Version:        current.Version,
		Content:        current.Content,
		ChangesSummary: summary,
		CreatedBy:      actor,
		CreatedAt:      now,
	}
	if err := s.versionRepo.Create(ctx, snapshot); err != nil {
		return nil, err
	}

	next := *current
	next.Content = content
	next.Version = current.Version + 1
	next.UpdatedAt = now
	if err := s.fileRepo.UpdateContent(ctx, &next, current.Version); err != nil {
		return nil, err
	}
	return &next, nil
}

func (s *specService) validateUpdateRequest(req *services.UpdateSpecRequest) error {
	if err := validateKey(req.ProjectID, req.FileType); err != nil {
		return err
	}
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Content, validation.Length(0, config.MaxSpecContentBytes)),
		validation.Field(&req.BaseVersion, validation.Min(1)),
	); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}

func validateKey(projectID, fileType string) error {
	err := validation.Errors{
		"project_id": validation.Validate(projectID, validation.Required),
		"file_type": validation.Validate(fileType,
			validation.Required,
			validation.Length(1, config.MaxFileTypeLength),
			validation.Match(fileTypePattern),
		),
	}.Filter()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}

func validateContent(content string) error {
	if err := validation.Validate(content, validation.Length(0, config.MaxSpecContentBytes)); err != nil {
		return fmt.Errorf("%w: content: %v", domain.ErrValidation, err)
	}
	return nil
}
