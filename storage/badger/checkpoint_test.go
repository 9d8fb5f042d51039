package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/labelmap/core"
)

func TestCheckpoint_SaveAndLoad(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	repo := NewCheckpointRepository(backend)
	ctx := context.Background()

	missing, err := repo.LoadCheckpoint(ctx, "catalog")
	require.NoError(t, err)
	assert.Nil(t, missing)

	checkpoint := &core.Checkpoint{Name: "catalog", Source: "icd10.csv", Count: 42}
	require.NoError(t, repo.SaveCheckpoint(ctx, checkpoint))
	assert.False(t, checkpoint.UpdatedAt.IsZero())

	loaded, err := repo.LoadCheckpoint(ctx, "catalog")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "icd10.csv", loaded.Source)
	assert.Equal(t, 42, loaded.Count)
	assert.True(t, loaded.UpdatedAt.Equal(checkpoint.UpdatedAt.Truncate(time.Microsecond)))
}
