package projection

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"specforge/internal/domain"
	"specforge/internal/domain/models/spec"
	"specforge/internal/domain/services"
	"specforge/internal/repository/sqlite"
	wssvc "specforge/internal/service/workspace"
)

func TestDefaultTable(t *testing.T) {
	table, err := DefaultTable()
	require.NoError(t, err)

	tests := []struct {
		fileType string
		want     []string
	}{
		{"design", []string{"specs/design.md"}},
		{"requirements", []string{"specs/requirements.md"}},
		{"tasks", []string{"specs/tasks.md"}},
		{"app", []string{"App.js"}},
		{"login", []string{"screens/LoginScreen.js"}},
		{"button", []string{"components/Button.js"}},
		{"unknown", nil},
	}
	for _, tt := range tests {
		t.Run(tt.fileType, func(t *testing.T) {
			assert.Equal(t, tt.want, table.Paths(tt.fileType))
		})
	}
	assert.Equal(t, []string{"design", "requirements", "tasks", "app", "login", "button"}, table.FileTypes())
}

func TestParseRejectsBadTables(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"traversal", "projections:\n  - file_type: x\n    paths: [../etc/passwd]\n"},
		{"root", "projections:\n  - file_type: x\n    paths: [/]\n"},
		{"empty segment", "projections:\n  - file_type: x\n    paths: [a//b]\n"},
		{"missing type", "projections:\n  - paths: [a]\n"},
		{"duplicate type", "projections:\n  - file_type: x\n    paths: [a]\n  - file_type: x\n    paths: [b]\n"},
		{"unknown field", "projections:\n  - file_type: x\n    path: a\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadFileOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "projections.yaml")
	require.NoError(t, os.WriteFile(path, []byte("projections:\n  - file_type: design\n    paths: [/docs/design.md, README.md]\n"), 0o644))

	table, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"docs/design.md", "README.md"}, table.Paths("design"))
	assert.Nil(t, table.Paths("tasks"))

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

// headStore is an in-memory HeadReader keyed by project and file type
type headStore map[string]*spec.SpecFile

func (h headStore) put(file *spec.SpecFile) *spec.SpecFile {
	h[file.ProjectID+"/"+file.FileType] = file
	return file
}

func (h headStore) GetLatest(_ context.Context, projectID, fileType string) (*spec.SpecFile, error) {
	file, ok := h[projectID+"/"+fileType]
	if !ok {
		return nil, fmt.Errorf("spec file %s/%s: %w", projectID, fileType, domain.ErrNotFound)
	}
	return file, nil
}

func newEngine(t *testing.T) (*Engine, services.WorkspaceService, headStore) {
	t.Helper()
	store, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "p.db"), "", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	table, err := DefaultTable()
	require.NoError(t, err)
	ws := wssvc.NewService(store.Workspaces, logger)
	heads := headStore{}
	return NewEngine(table, heads, ws, logger), ws, heads
}

func TestProjectWritesMappedPath(t *testing.T) {
	ctx := context.Background()
	engine, ws, heads := newEngine(t)

	file := heads.put(&spec.SpecFile{ProjectID: "p1", FileType: spec.FileTypeDesign, Content: "# Design v2", Version: 2})
	require.NoError(t, engine.Project(ctx, file))

	content, err := ws.ReadFile(ctx, "p1", "specs/design.md")
	require.NoError(t, err)
	assert.Equal(t, "# Design v2", content)

	// Idempotent: projecting the same content again leaves the same tree.
	require.NoError(t, engine.Project(ctx, file))
	tree, err := ws.GetTree(ctx, "p1")
	require.NoError(t, err)
	files, dirs := tree.Root.Counts()
	assert.Equal(t, 1, files)
	assert.Equal(t, 1, dirs)
}

func TestProjectUnmappedTypeIsNoop(t *testing.T) {
	ctx := context.Background()
	engine, ws, _ := newEngine(t)

	require.NoError(t, engine.Project(ctx, &spec.SpecFile{ProjectID: "p1", FileType: "notes", Content: "x"}))

	tree, err := ws.GetTree(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 0, tree.Root.Len())
}

func TestProjectFailureNamesPath(t *testing.T) {
	ctx := context.Background()
	engine, ws, heads := newEngine(t)

	// A file where the specs directory should be blocks the projection.
	_, err := ws.WriteFile(ctx, "p1", "specs", "not a directory")
	require.NoError(t, err)

	file := heads.put(&spec.SpecFile{ProjectID: "p1", FileType: spec.FileTypeTasks, Content: "- [ ] task", Version: 1})
	err = engine.Project(ctx, file)
	require.ErrorIs(t, err, domain.ErrProjectionFailed)
	require.ErrorIs(t, err, domain.ErrNotADirectory)

	var perr *domain.ProjectionError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "specs/tasks.md", perr.Path)
	assert.Equal(t, spec.FileTypeTasks, perr.FileType)
}

func TestProjectWritesCurrentHeadNotStaleSnapshot(t *testing.T) {
	ctx := context.Background()
	engine, ws, heads := newEngine(t)

	stale := &spec.SpecFile{ProjectID: "p1", FileType: spec.FileTypeDesign, Content: "edit A", Version: 2}
	heads.put(&spec.SpecFile{ProjectID: "p1", FileType: spec.FileTypeDesign, Content: "edit B", Version: 3})

	require.NoError(t, engine.Project(ctx, stale))

	content, err := ws.ReadFile(ctx, "p1", "specs/design.md")
	require.NoError(t, err)
	assert.Equal(t, "edit B", content)
}

func TestProjectMissingHeadFails(t *testing.T) {
	ctx := context.Background()
	engine, ws, _ := newEngine(t)

	err := engine.Project(ctx, &spec.SpecFile{ProjectID: "p1", FileType: spec.FileTypeDesign, Content: "x", Version: 1})
	require.ErrorIs(t, err, domain.ErrProjectionFailed)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = ws.ReadFile(ctx, "p1", "specs/design.md")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
