package badger

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/labelmap/core"
	"github.com/poiesic/labelmap/storage"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "db")
	backend, err := OpenBackendWithLogger(dir, false, slog.Default())
	require.NoError(t, err)
	require.NotNil(t, backend)

	repo, err := NewCatalogRepository(backend)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, repo.AddEntries(ctx, &core.CatalogEntry{Code: "R51", Description: "Headache"}))
	require.NoError(t, backend.Close())

	// reopen and read back
	backend, err = OpenBackend(dir, false)
	require.NoError(t, err)
	defer backend.Close()

	repo, err = NewCatalogRepository(backend)
	require.NoError(t, err)
	entry, err := repo.GetEntry(ctx, "R51")
	require.NoError(t, err)
	assert.Equal(t, "Headache", entry.Description)
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)

	assert.False(t, backend.IsClosed())

	err = backend.Close()
	require.NoError(t, err)

	assert.True(t, backend.IsClosed())

	repo, err := NewCatalogRepository(backend)
	require.NoError(t, err)
	_, err = repo.Count(context.Background())
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	assert.ErrorIs(t, repo.Clear(context.Background()), storage.ErrStorageClosed)
}

func TestWithTransaction(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	t.Run("successful transaction", func(t *testing.T) {
		err := backend.WithTransaction(ctx, func(ctx context.Context) error {
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("failed transaction", func(t *testing.T) {
		testErr := assert.AnError
		err := backend.WithTransaction(ctx, func(ctx context.Context) error {
			return testErr
		})
		assert.Equal(t, testErr, err)
	})
}
