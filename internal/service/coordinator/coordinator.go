// Package coordinator is the façade that sequences spec and workspace
// operations so the two stores stay consistent.
package coordinator

import (
	"context"
	"log/slog"

	"specforge/internal/domain/models/spec"
	"specforge/internal/domain/models/workspace"
	"specforge/internal/domain/services"
	"specforge/internal/metrics"
	"specforge/internal/projection"
)

// coordinator implements services.Coordinator
type coordinator struct {
	specs     services.SpecService
	workspace services.WorkspaceService
	projector *projection.Engine
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// New creates a coordinator
func New(
	specs services.SpecService,
	ws services.WorkspaceService,
	projector *projection.Engine,
	m *metrics.Metrics,
	logger *slog.Logger,
) services.Coordinator {
	return &coordinator{
		specs:     specs,
		workspace: ws,
		projector: projector,
		metrics:   m,
		logger:    logger,
	}
}

func (c *coordinator) GetLatestSpec(ctx context.Context, projectID, fileType string) (*spec.SpecFile, error) {
	return c.specs.GetLatest(ctx, projectID, fileType)
}

// UpdateSpec commits the edit and then projects it. A projection failure is
// returned alongside the committed file.
func (c *coordinator) UpdateSpec(ctx context.Context, req *services.UpdateSpecRequest) (*spec.SpecFile, error) {
	file, err := c.specs.Update(ctx, req)
	c.metrics.RecordSpecMutation("update", err)
	if err != nil {
		return nil, err
	}
	return file, c.project(ctx, file)
}

func (c *coordinator) ListSpecVersions(ctx context.Context, projectID, fileType string) ([]spec.SpecVersion, error) {
	return c.specs.ListVersions(ctx, projectID, fileType)
}

// RollbackSpec commits the rollback and then projects the restored content
func (c *coordinator) RollbackSpec(ctx context.Context, req *services.RollbackSpecRequest) (*spec.SpecFile, error) {
	file, err := c.specs.Rollback(ctx, req)
	c.metrics.RecordSpecMutation("rollback", err)
	if err != nil {
		return nil, err
	}
	return file, c.project(ctx, file)
}

// Reproject repairs the workspace after a failed projection
func (c *coordinator) Reproject(ctx context.Context, projectID, fileType string) (*spec.SpecFile, error) {
	file, err := c.specs.GetLatest(ctx, projectID, fileType)
	if err != nil {
		return nil, err
	}
	return file, c.project(ctx, file)
}

func (c *coordinator) project(ctx context.Context, file *spec.SpecFile) error {
	err := c.projector.Project(ctx, file)
	if c.projector.Table().Paths(file.FileType) != nil {
		c.metrics.RecordProjection(file.FileType, err)
	}
	return err
}

func (c *coordinator) GetWorkspace(ctx context.Context, projectID string) (*workspace.Workspace, error) {
	return c.workspace.GetTree(ctx, projectID)
}

func (c *coordinator) ReadFile(ctx context.Context, projectID, path string) (string, error) {
	return c.workspace.ReadFile(ctx, projectID, path)
}

func (c *coordinator) WriteFile(ctx context.Context, projectID, path, content string) (*workspace.Workspace, error) {
	return c.workspace.WriteFile(ctx, projectID, path, content)
}

func (c *coordinator) CreatePath(ctx context.Context, projectID, path string, kind workspace.Kind, content string) (*workspace.Workspace, error) {
	return c.workspace.Create(ctx, projectID, path, kind, content)
}

func (c *coordinator) DeletePath(ctx context.Context, projectID, path string) (*workspace.Workspace, error) {
	return c.workspace.Delete(ctx, projectID, path)
}

// ApplyGenerated writes a generation result. All files land in one revision
// or none do.
func (c *coordinator) ApplyGenerated(ctx context.Context, projectID string, files []services.FileWrite) (*workspace.Workspace, error) {
	ws, err := c.workspace.WriteFiles(ctx, projectID, files)
	if err != nil {
		return nil, err
	}
	c.metrics.RecordGenerated(len(files))
	c.logger.Info("generated files applied",
		"project_id", projectID,
		"files", len(files),
		"revision", ws.Revision,
	)
	return ws, nil
}
