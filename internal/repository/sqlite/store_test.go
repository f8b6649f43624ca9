package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"specforge/internal/domain"
	"specforge/internal/domain/models/spec"
	"specforge/internal/domain/models/workspace"
	"specforge/internal/domain/repositories"
)

func openTestStore(t *testing.T) *repositories.Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"), "", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newSpecFile(projectID, fileType, content string) *spec.SpecFile {
	now := time.Now()
	return &spec.SpecFile{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		FileType:  fileType,
		Content:   content,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestSpecFileCreateAndGet(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	f := newSpecFile("p1", spec.FileTypeDesign, "# Design")
	require.NoError(t, store.SpecFiles.Create(ctx, f))

	got, err := store.SpecFiles.GetByProjectAndType(ctx, "p1", spec.FileTypeDesign)
	require.NoError(t, err)
	assert.Equal(t, f.ID, got.ID)
	assert.Equal(t, "# Design", got.Content)
	assert.Equal(t, 1, got.Version)
	assert.WithinDuration(t, f.CreatedAt, got.CreatedAt, time.Millisecond)

	err = store.SpecFiles.Create(ctx, newSpecFile("p1", spec.FileTypeDesign, ""))
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	_, err = store.SpecFiles.GetByProjectAndType(ctx, "p1", spec.FileTypeTasks)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSpecFileUpdateContentIsConditional(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	f := newSpecFile("p1", spec.FileTypeTasks, "v1")
	require.NoError(t, store.SpecFiles.Create(ctx, f))

	f.Content, f.Version = "v2", 2
	require.NoError(t, store.SpecFiles.UpdateContent(ctx, f, 1))

	stale := *f
	stale.Content, stale.Version = "lost", 2
	err := store.SpecFiles.UpdateContent(ctx, &stale, 1)

	var conflict *domain.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.EqualValues(t, 1, conflict.Expected)
	assert.EqualValues(t, 2, conflict.Current)

	got, err := store.SpecFiles.GetByProjectAndType(ctx, "p1", spec.FileTypeTasks)
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Content)

	missing := newSpecFile("p1", "other", "")
	assert.ErrorIs(t, store.SpecFiles.UpdateContent(ctx, missing, 1), domain.ErrNotFound)
}

func TestSpecVersionsNewestFirstAndUnique(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	f := newSpecFile("p1", spec.FileTypeRequirements, "")
	require.NoError(t, store.SpecFiles.Create(ctx, f))

	for v := 1; v <= 3; v++ {
		require.NoError(t, store.SpecVersions.Create(ctx, &spec.SpecVersion{
			ID:             uuid.NewString(),
			SpecFileID:     f.ID,
			Version:        v,
			Content:        "c",
			ChangesSummary: spec.SummaryEdited,
			CreatedAt:      time.Now(),
		}))
	}

	versions, err := store.SpecVersions.ListBySpecFile(ctx, f.ID)
	require.NoError(t, err)
	require.Len(t, versions, 3)
	assert.Equal(t, []int{3, 2, 1}, []int{versions[0].Version, versions[1].Version, versions[2].Version})

	err = store.SpecVersions.Create(ctx, &spec.SpecVersion{ID: uuid.NewString(), SpecFileID: f.ID, Version: 2, CreatedAt: time.Now()})
	assert.ErrorIs(t, err, domain.ErrConflict)

	err = store.SpecVersions.Create(ctx, &spec.SpecVersion{ID: uuid.NewString(), SpecFileID: uuid.NewString(), Version: 1, CreatedAt: time.Now()})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := store.SpecVersions.GetByID(ctx, versions[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Version)

	_, err = store.SpecVersions.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	empty, err := store.SpecVersions.ListBySpecFile(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.NotNil(t, empty)
}

func TestWorkspaceSaveKeepsOrderAndChecksRevision(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	_, err := store.Workspaces.Get(ctx, "p1")
	require.ErrorIs(t, err, domain.ErrNotFound)

	ws := workspace.New("p1")
	require.NoError(t, store.Workspaces.Create(ctx, ws))
	assert.EqualValues(t, 1, ws.Revision)
	assert.ErrorIs(t, store.Workspaces.Create(ctx, workspace.New("p1")), domain.ErrAlreadyExists)

	for _, p := range []string{"zeta.md", "alpha/b.js", "mid.txt"} {
		require.NoError(t, ws.Root.Write(p, p))
	}
	require.NoError(t, store.Workspaces.Save(ctx, ws, 1))
	assert.EqualValues(t, 2, ws.Revision)

	loaded, err := store.Workspaces.Get(ctx, "p1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, loaded.Revision)
	assert.Equal(t, []string{"zeta.md", "alpha", "mid.txt"}, loaded.Root.Names())
	content, err := loaded.Root.Read("alpha/b.js")
	require.NoError(t, err)
	assert.Equal(t, "alpha/b.js", content)

	err = store.Workspaces.Save(ctx, ws, 1)
	assert.ErrorIs(t, err, domain.ErrConflict)

	assert.ErrorIs(t, store.Workspaces.Save(ctx, workspace.New("nope"), 1), domain.ErrNotFound)
}

func TestExecTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	boom := errors.New("boom")
	err := store.TxManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := store.SpecFiles.Create(ctx, newSpecFile("p1", spec.FileTypeDesign, "x")); err != nil {
			return err
		}
		// Nested calls join the outer transaction.
		return store.TxManager.ExecTx(ctx, func(ctx context.Context) error {
			if _, err := store.SpecFiles.GetByProjectAndType(ctx, "p1", spec.FileTypeDesign); err != nil {
				return err
			}
			return boom
		})
	})
	require.ErrorIs(t, err, boom)

	_, err = store.SpecFiles.GetByProjectAndType(ctx, "p1", spec.FileTypeDesign)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTablePrefix(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, MemoryPath, "test_", nil)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.SpecFiles.Create(ctx, newSpecFile("p1", spec.FileTypeDesign, "")))
	files, err := store.SpecFiles.ListByProject(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, files, 1)
}
