package spec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"specforge/internal/domain"
	models "specforge/internal/domain/models/spec"
	"specforge/internal/domain/repositories"
	"specforge/internal/domain/services"
	"specforge/internal/repository/sqlite"
)

func newTestService(t *testing.T) services.SpecService {
	t.Helper()
	store, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "spec.db"), "", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(store.SpecFiles, store.SpecVersions, store.TxManager, logger)
}

func provision(t *testing.T, svc services.SpecService, fileType, content string) *models.SpecFile {
	t.Helper()
	f, err := svc.Provision(context.Background(), &services.ProvisionSpecRequest{ProjectID: "P", FileType: fileType, Content: content})
	require.NoError(t, err)
	return f
}

func update(t *testing.T, svc services.SpecService, fileType, content string) *models.SpecFile {
	t.Helper()
	f, err := svc.Update(context.Background(), &services.UpdateSpecRequest{ProjectID: "P", FileType: fileType, Content: content, Actor: "user-1"})
	require.NoError(t, err)
	return f
}

func TestProvisionAndGetLatest(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.GetLatest(ctx, "P", models.FileTypeDesign)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	f := provision(t, svc, models.FileTypeDesign, "# v1")
	assert.Equal(t, 1, f.Version)

	got, err := svc.GetLatest(ctx, "P", models.FileTypeDesign)
	require.NoError(t, err)
	assert.Equal(t, "# v1", got.Content)

	_, err = svc.Provision(ctx, &services.ProvisionSpecRequest{ProjectID: "P", FileType: models.FileTypeDesign})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	tests := []struct {
		name string
		run  func() error
	}{
		{"missing project", func() error { _, err := svc.GetLatest(ctx, "", "design"); return err }},
		{"bad file type", func() error { _, err := svc.GetLatest(ctx, "P", "../design"); return err }},
		{"zero base version", func() error {
			zero := 0
			_, err := svc.Update(ctx, &services.UpdateSpecRequest{ProjectID: "P", FileType: "design", BaseVersion: &zero})
			return err
		}},
		{"malformed version id", func() error {
			_, err := svc.Rollback(ctx, &services.RollbackSpecRequest{ProjectID: "P", FileType: "design", VersionID: "v1"})
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.run(), domain.ErrInvalidArgument)
		})
	}
}

func TestUpdateMissingSpecFile(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Update(context.Background(), &services.UpdateSpecRequest{ProjectID: "P", FileType: "tasks", Content: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNUpdatesProduceGaplessHistory(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	const n = 5
	provision(t, svc, models.FileTypeRequirements, "c0")
	for i := 1; i <= n; i++ {
		f := update(t, svc, models.FileTypeRequirements, fmt.Sprintf("c%d", i))
		assert.Equal(t, 1+i, f.Version)
	}

	latest, err := svc.GetLatest(ctx, "P", models.FileTypeRequirements)
	require.NoError(t, err)
	assert.Equal(t, 1+n, latest.Version)
	assert.Equal(t, fmt.Sprintf("c%d", n), latest.Content)

	versions, err := svc.ListVersions(ctx, "P", models.FileTypeRequirements)
	require.NoError(t, err)
	require.Len(t, versions, n)
	for i, v := range versions {
		// Newest first: n, n-1, ..., 1, each holding the content it replaced.
		assert.Equal(t, n-i, v.Version)
		assert.Equal(t, fmt.Sprintf("c%d", n-i-1), v.Content)
		assert.Equal(t, models.SummaryEdited, v.ChangesSummary)
		assert.Equal(t, "user-1", v.CreatedBy)
	}
}

func TestListVersionsEmpty(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	versions, err := svc.ListVersions(ctx, "P", models.FileTypeTasks)
	require.NoError(t, err)
	assert.NotNil(t, versions)
	assert.Empty(t, versions)

	provision(t, svc, models.FileTypeTasks, "")
	versions, err = svc.ListVersions(ctx, "P", models.FileTypeTasks)
	require.NoError(t, err)
	assert.Empty(t, versions)
}

func TestRollbackFromVersionThree(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	provision(t, svc, models.FileTypeDesign, "design v1")
	update(t, svc, models.FileTypeDesign, "design v2")
	update(t, svc, models.FileTypeDesign, "design v3")

	versions, err := svc.ListVersions(ctx, "P", models.FileTypeDesign)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	v1 := versions[1]
	require.Equal(t, 1, v1.Version)

	f, err := svc.Rollback(ctx, &services.RollbackSpecRequest{ProjectID: "P", FileType: models.FileTypeDesign, VersionID: v1.ID, Actor: "user-2"})
	require.NoError(t, err)
	assert.Equal(t, 4, f.Version)
	assert.Equal(t, "design v1", f.Content)

	versions, err = svc.ListVersions(ctx, "P", models.FileTypeDesign)
	require.NoError(t, err)
	require.Len(t, versions, 3)
	assert.Equal(t, 3, versions[0].Version)
	assert.Equal(t, "design v3", versions[0].Content)
	assert.Equal(t, "pre-rollback to version 1", versions[0].ChangesSummary)
	assert.Equal(t, "user-2", versions[0].CreatedBy)
}

func TestDoubleRollbackIsNonDestructive(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	provision(t, svc, models.FileTypeDesign, "A")
	update(t, svc, models.FileTypeDesign, "B")
	update(t, svc, models.FileTypeDesign, "C")

	versions, err := svc.ListVersions(ctx, "P", models.FileTypeDesign)
	require.NoError(t, err)
	first := versions[len(versions)-1]

	_, err = svc.Rollback(ctx, &services.RollbackSpecRequest{ProjectID: "P", FileType: models.FileTypeDesign, VersionID: first.ID})
	require.NoError(t, err)

	// The snapshot written just before the first rollback holds "C".
	versions, err = svc.ListVersions(ctx, "P", models.FileTypeDesign)
	require.NoError(t, err)
	preRollback := versions[0]
	require.Equal(t, "C", preRollback.Content)

	f, err := svc.Rollback(ctx, &services.RollbackSpecRequest{ProjectID: "P", FileType: models.FileTypeDesign, VersionID: preRollback.ID})
	require.NoError(t, err)
	assert.Equal(t, "C", f.Content)
	assert.Equal(t, 5, f.Version)

	versions, err = svc.ListVersions(ctx, "P", models.FileTypeDesign)
	require.NoError(t, err)
	require.Len(t, versions, 4)
	assert.Equal(t, []string{"A", "C", "B", "A"}, []string{versions[0].Content, versions[1].Content, versions[2].Content, versions[3].Content})
}

func TestRollbackErrors(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	provision(t, svc, models.FileTypeDesign, "d1")
	update(t, svc, models.FileTypeDesign, "d2")
	provision(t, svc, models.FileTypeTasks, "t1")
	update(t, svc, models.FileTypeTasks, "t2")

	taskVersions, err := svc.ListVersions(ctx, "P", models.FileTypeTasks)
	require.NoError(t, err)

	_, err = svc.Rollback(ctx, &services.RollbackSpecRequest{ProjectID: "P", FileType: models.FileTypeDesign, VersionID: taskVersions[0].ID})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = svc.Rollback(ctx, &services.RollbackSpecRequest{ProjectID: "P", FileType: models.FileTypeDesign, VersionID: uuid.NewString()})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Rollback(ctx, &services.RollbackSpecRequest{ProjectID: "P", FileType: "requirements", VersionID: uuid.NewString()})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Failed rollbacks leave the head and history alone.
	latest, err := svc.GetLatest(ctx, "P", models.FileTypeDesign)
	require.NoError(t, err)
	assert.Equal(t, 2, latest.Version)
	versions, err := svc.ListVersions(ctx, "P", models.FileTypeDesign)
	require.NoError(t, err)
	assert.Len(t, versions, 1)
}

func TestConcurrentUpdatesFromSameBase(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	base := provision(t, svc, models.FileTypeDesign, "base").Version

	results := make([]error, 2)
	var g errgroup.Group
	for i := range results {
		g.Go(func() error {
			_, results[i] = svc.Update(ctx, &services.UpdateSpecRequest{
				ProjectID:   "P",
				FileType:    models.FileTypeDesign,
				Content:     fmt.Sprintf("writer %d", i),
				BaseVersion: &base,
			})
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var ok, conflicts int
	for _, err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, conflicts)

	latest, err := svc.GetLatest(ctx, "P", models.FileTypeDesign)
	require.NoError(t, err)
	assert.Equal(t, 2, latest.Version)

	versions, err := svc.ListVersions(ctx, "P", models.FileTypeDesign)
	require.NoError(t, err)
	assert.Len(t, versions, 1)
}

// racingFileRepo lets another writer advance the head between Update's read
// and its conditional write
type racingFileRepo struct {
	repositories.SpecFileRepository
	t *testing.T
}

func (r *racingFileRepo) UpdateContent(ctx context.Context, file *models.SpecFile, expectedVersion int) error {
	other := *file
	other.Content = "other writer"
	require.NoError(r.t, r.SpecFileRepository.UpdateContent(ctx, &other, expectedVersion))
	return r.SpecFileRepository.UpdateContent(ctx, file, expectedVersion)
}

// racingVersionRepo lets another writer record the same snapshot first
type racingVersionRepo struct {
	repositories.SpecVersionRepository
	t *testing.T
}

func (r *racingVersionRepo) Create(ctx context.Context, v *models.SpecVersion) error {
	other := *v
	other.ID = uuid.NewString()
	require.NoError(r.t, r.SpecVersionRepository.Create(ctx, &other))
	return r.SpecVersionRepository.Create(ctx, v)
}

func TestUpdateLosesRaceWithoutBaseVersion(t *testing.T) {
	tests := []struct {
		name         string
		wrapFiles    func(repositories.SpecFileRepository) repositories.SpecFileRepository
		wrapVersions func(repositories.SpecVersionRepository) repositories.SpecVersionRepository
	}{
		{
			name: "head advanced before conditional update",
			wrapFiles: func(r repositories.SpecFileRepository) repositories.SpecFileRepository {
				return &racingFileRepo{SpecFileRepository: r, t: t}
			},
		},
		{
			name: "snapshot already recorded",
			wrapVersions: func(r repositories.SpecVersionRepository) repositories.SpecVersionRepository {
				return &racingVersionRepo{SpecVersionRepository: r, t: t}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "race.db"), "", nil)
			require.NoError(t, err)
			t.Cleanup(func() { _ = store.Close() })
			logger := slog.New(slog.NewTextHandler(io.Discard, nil))

			plain := NewService(store.SpecFiles, store.SpecVersions, store.TxManager, logger)
			provision(t, plain, models.FileTypeDesign, "base")

			var files repositories.SpecFileRepository = store.SpecFiles
			if tt.wrapFiles != nil {
				files = tt.wrapFiles(files)
			}
			var versions repositories.SpecVersionRepository = store.SpecVersions
			if tt.wrapVersions != nil {
				versions = tt.wrapVersions(versions)
			}
			racing := NewService(files, versions, store.TxManager, logger)

			_, err = racing.Update(ctx, &services.UpdateSpecRequest{ProjectID: "P", FileType: models.FileTypeDesign, Content: "mine"})
			require.ErrorIs(t, err, domain.ErrConflict)
			var conflict *domain.ConflictError
			require.ErrorAs(t, err, &conflict)
			assert.Equal(t, int64(1), conflict.Expected)
			assert.Equal(t, int64(2), conflict.Current)

			// The transaction rolled back both writers' rows.
			latest, err := plain.GetLatest(ctx, "P", models.FileTypeDesign)
			require.NoError(t, err)
			assert.Equal(t, 1, latest.Version)
			assert.Equal(t, "base", latest.Content)
			history, err := plain.ListVersions(ctx, "P", models.FileTypeDesign)
			require.NoError(t, err)
			assert.Empty(t, history)

			// A retry after reload succeeds.
			assert.Equal(t, 2, update(t, plain, models.FileTypeDesign, "retry").Version)
		})
	}
}
