package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sanctum/internal/domain"
	models "sanctum/internal/domain/models/library"
)

func setupInMemoryStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func strPtr(s string) *string { return &s }

func insert(t *testing.T, repo interface {
	Create(context.Context, *models.Node) error
}, id string, parent *string, kind models.Kind, name string) {
	t.Helper()
	err := repo.Create(context.Background(), &models.Node{
		ID:         id,
		ParentID:   parent,
		Name:       name,
		Kind:       kind,
		ModifiedAt: time.UnixMilli(1_700_000_000_000),
	})
	require.NoError(t, err)
}

func TestOpen_FileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "library.db")
	store, err := Open(path)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, path, store.Path())
	require.NoError(t, NewNodeRepository(store).EnsureSchema(context.Background()))

	var version int
	require.NoError(t, store.DB().QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)
}

func TestOpen_MigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.db")
	first, err := Open(path)
	require.NoError(t, err)
	insert(t, NewNodeRepository(first), models.RootID, nil, models.KindFolder, "My Library")
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	defer second.Close()

	nodes, err := NewNodeRepository(second).ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, nodes, 1)
}

func TestNodeRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewNodeRepository(setupInMemoryStore(t))

	insert(t, repo, models.RootID, nil, models.KindFolder, "My Library")
	err := repo.Create(ctx, &models.Node{
		ID:         "doc",
		ParentID:   strPtr(models.RootID),
		Name:       "Notes",
		Kind:       models.KindMarkdown,
		Content:    strPtr("# Notes"),
		ModifiedAt: time.UnixMilli(1_700_000_000_123),
		Version:    3,
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, "Notes", got.Name)
	assert.Equal(t, models.KindMarkdown, got.Kind)
	require.NotNil(t, got.Content)
	assert.Equal(t, "# Notes", *got.Content)
	assert.Nil(t, got.ExternalRef)
	assert.Equal(t, int64(3), got.Version)
	assert.Equal(t, int64(1_700_000_000_123), got.ModifiedAt.UnixMilli())

	root, err := repo.GetByID(ctx, models.RootID)
	require.NoError(t, err)
	assert.Nil(t, root.ParentID)
}

func TestNodeRepository_CreateDuplicate(t *testing.T) {
	repo := NewNodeRepository(setupInMemoryStore(t))
	insert(t, repo, models.RootID, nil, models.KindFolder, "My Library")

	err := repo.Create(context.Background(), &models.Node{ID: models.RootID, Name: "again", Kind: models.KindFolder})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestNodeRepository_GetMissing(t *testing.T) {
	repo := NewNodeRepository(setupInMemoryStore(t))
	_, err := repo.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNodeRepository_ListAllKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewNodeRepository(setupInMemoryStore(t))
	root := strPtr(models.RootID)

	insert(t, repo, models.RootID, nil, models.KindFolder, "My Library")
	insert(t, repo, "b", root, models.KindMarkdown, "B")
	insert(t, repo, "a", root, models.KindMarkdown, "A")
	insert(t, repo, "f", root, models.KindFolder, "F")

	// Reparenting moves a node to the end of the sequence
	require.NoError(t, repo.Update(ctx, "b", &models.NodePatch{ParentID: strPtr("f")}, time.Now()))

	nodes, err := repo.ListAll(ctx)
	require.NoError(t, err)
	var ids []string
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{models.RootID, "a", "f", "b"}, ids)
}

func TestNodeRepository_Update(t *testing.T) {
	root := strPtr(models.RootID)

	tests := []struct {
		name        string
		patch       *models.NodePatch
		wantErr     error
		wantName    string
		wantVersion int64
	}{
		{
			name:        "unversioned rename bumps version",
			patch:       &models.NodePatch{Name: strPtr("Renamed")},
			wantName:    "Renamed",
			wantVersion: 3,
		},
		{
			name:        "newer version wins",
			patch:       &models.NodePatch{Name: strPtr("Newer"), Version: 5},
			wantName:    "Newer",
			wantVersion: 5,
		},
		{
			name:        "equal version is stale",
			patch:       &models.NodePatch{Name: strPtr("Equal"), Version: 2},
			wantErr:     domain.ErrStale,
			wantName:    "Doc",
			wantVersion: 2,
		},
		{
			name:        "older version is stale",
			patch:       &models.NodePatch{Name: strPtr("Older"), Version: 1},
			wantErr:     domain.ErrStale,
			wantName:    "Doc",
			wantVersion: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			repo := NewNodeRepository(setupInMemoryStore(t))
			insert(t, repo, models.RootID, nil, models.KindFolder, "My Library")
			require.NoError(t, repo.Create(ctx, &models.Node{
				ID: "doc", ParentID: root, Name: "Doc", Kind: models.KindMarkdown, Version: 2,
			}))

			err := repo.Update(ctx, "doc", tt.patch, time.UnixMilli(1_800_000_000_000))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				var stale *domain.StaleWriteError
				require.True(t, errors.As(err, &stale))
				assert.Equal(t, int64(2), stale.StoredVersion)
			} else {
				require.NoError(t, err)
			}

			got, err := repo.GetByID(ctx, "doc")
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, got.Name)
			assert.Equal(t, tt.wantVersion, got.Version)
		})
	}
}

func TestNodeRepository_KindChangeClearsPayload(t *testing.T) {
	ctx := context.Background()
	repo := NewNodeRepository(setupInMemoryStore(t))
	insert(t, repo, models.RootID, nil, models.KindFolder, "My Library")
	require.NoError(t, repo.Create(ctx, &models.Node{
		ID:       "doc",
		ParentID: strPtr(models.RootID),
		Name:     "outline.md",
		Kind:     models.KindMarkdown,
		Content:  strPtr("# draft"),
		Version:  1,
	}))

	kind := models.KindGoogleDoc
	require.NoError(t, repo.Update(ctx, "doc", &models.NodePatch{
		Kind:        &kind,
		ExternalRef: strPtr("https://docs.google.com/document/d/1"),
		Version:     2,
	}, time.Now()))

	got, err := repo.GetByID(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, models.KindGoogleDoc, got.Kind)
	assert.Nil(t, got.Content)
	require.NotNil(t, got.ExternalRef)
	assert.Equal(t, "https://docs.google.com/document/d/1", *got.ExternalRef)
}

func TestNodeRepository_UpdateMissing(t *testing.T) {
	repo := NewNodeRepository(setupInMemoryStore(t))
	err := repo.Update(context.Background(), "ghost", &models.NodePatch{Name: strPtr("x")}, time.Now())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNodeRepository_DeleteSubtree(t *testing.T) {
	ctx := context.Background()
	repo := NewNodeRepository(setupInMemoryStore(t))
	root := strPtr(models.RootID)

	insert(t, repo, models.RootID, nil, models.KindFolder, "My Library")
	insert(t, repo, "f", root, models.KindFolder, "F")
	insert(t, repo, "g", strPtr("f"), models.KindFolder, "G")
	insert(t, repo, "x", strPtr("g"), models.KindMarkdown, "X")
	insert(t, repo, "keep", root, models.KindMarkdown, "Keep")

	n, err := repo.DeleteSubtree(ctx, "f")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	nodes, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, nodes, 2)

	_, err = repo.DeleteSubtree(ctx, "f")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTransactionManager_RollsBack(t *testing.T) {
	ctx := context.Background()
	store := setupInMemoryStore(t)
	repo := NewNodeRepository(store)
	tm := NewTransactionManager(store)

	boom := errors.New("boom")
	err := tm.ExecTx(ctx, func(ctx context.Context) error {
		if err := repo.Create(ctx, &models.Node{ID: "in-tx", Name: "x", Kind: models.KindMarkdown}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	nodes, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, nodes)
}
