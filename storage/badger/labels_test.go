package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/labelmap/core"
	"github.com/poiesic/labelmap/storage"
)

func newTestLabelRepo(t *testing.T, ttl time.Duration) storage.LabelRepository {
	t.Helper()
	catalogRepo, labelRepo, backend, err := NewMemoryRepositories(ttl)
	require.NoError(t, err)
	t.Cleanup(func() {
		labelRepo.Close()
		catalogRepo.Close()
		backend.Close()
	})
	return labelRepo
}

func TestLabels_SaveAndGet(t *testing.T) {
	repo := newTestLabelRepo(t, DefaultLabelTTL)
	ctx := context.Background()

	label := &core.LabelMapping{
		Drug:        "Claritin",
		SetID:       "set-1",
		Indications: core.ExtractedText{"hay fever"},
		Mapping: &core.IndicationMapping{
			OriginalText: "hay fever",
			Matches:      []core.MatchResult{{Code: "J30.1", Description: "Allergic rhinitis due to pollen", Score: 0.71}},
		},
	}
	require.NoError(t, repo.SaveLabel(ctx, label))
	assert.Equal(t, core.LabelID("Claritin"), label.Id)
	assert.False(t, label.CreatedAt.IsZero())
	assert.Equal(t, label.CreatedAt, label.UpdatedAt)

	got, err := repo.GetLabel(ctx, "  CLARITIN ")
	require.NoError(t, err)
	assert.Equal(t, label.Id, got.Id)
	assert.Equal(t, "set-1", got.SetID)
	require.NotNil(t, got.Mapping)
	assert.Equal(t, "J30.1", got.Mapping.Matches[0].Code)
}

func TestLabels_SaveKeepsCreatedAt(t *testing.T) {
	repo := newTestLabelRepo(t, DefaultLabelTTL)
	ctx := context.Background()

	first := &core.LabelMapping{Drug: "Advil"}
	require.NoError(t, repo.SaveLabel(ctx, first))

	time.Sleep(2 * time.Millisecond)
	second := &core.LabelMapping{Drug: "advil", Title: "ADVIL"}
	require.NoError(t, repo.SaveLabel(ctx, second))

	got, err := repo.GetLabel(ctx, "Advil")
	require.NoError(t, err)
	assert.Equal(t, "ADVIL", got.Title)
	assert.True(t, got.CreatedAt.Equal(first.CreatedAt.Truncate(time.Microsecond)))
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))
}

func TestLabels_SaveRejectsInvalid(t *testing.T) {
	repo := newTestLabelRepo(t, DefaultLabelTTL)
	err := repo.SaveLabel(context.Background(), &core.LabelMapping{Drug: "  "})
	assert.ErrorIs(t, err, core.ErrInvalidLabelMapping)
}

func TestLabels_GetMissing(t *testing.T) {
	repo := newTestLabelRepo(t, DefaultLabelTTL)
	_, err := repo.GetLabel(context.Background(), "nothing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestLabels_Expire(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for TTL expiry")
	}
	repo := newTestLabelRepo(t, time.Second)
	ctx := context.Background()

	require.NoError(t, repo.SaveLabel(ctx, &core.LabelMapping{Drug: "Tylenol"}))
	_, err := repo.GetLabel(ctx, "Tylenol")
	require.NoError(t, err)

	time.Sleep(2100 * time.Millisecond)

	_, err = repo.GetLabel(ctx, "Tylenol")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	labels, err := repo.ListLabels(ctx, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, labels)
}

func TestLabels_List(t *testing.T) {
	repo := newTestLabelRepo(t, 0)
	ctx := context.Background()

	for _, drug := range []string{"Zyrtec", "Advil", "Motrin", "Claritin"} {
		require.NoError(t, repo.SaveLabel(ctx, &core.LabelMapping{Drug: drug}))
	}

	tests := []struct {
		name   string
		offset int
		limit  int
		want   []string
	}{
		{"first page", 0, 2, []string{"Advil", "Claritin"}},
		{"second page", 2, 2, []string{"Motrin", "Zyrtec"}},
		{"past end", 10, 2, []string{}},
		{"large limit", 1, 100, []string{"Claritin", "Motrin", "Zyrtec"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			labels, err := repo.ListLabels(ctx, tt.offset, tt.limit)
			require.NoError(t, err)
			got := make([]string, 0, len(labels))
			for _, l := range labels {
				got = append(got, l.Drug)
			}
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := repo.ListLabels(ctx, -1, 10)
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
	_, err = repo.ListLabels(ctx, 0, 0)
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
}

func TestLabels_Delete(t *testing.T) {
	repo := newTestLabelRepo(t, DefaultLabelTTL)
	ctx := context.Background()

	require.NoError(t, repo.SaveLabel(ctx, &core.LabelMapping{Drug: "Advil"}))
	require.NoError(t, repo.DeleteLabel(ctx, "ADVIL"))

	_, err := repo.GetLabel(ctx, "Advil")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, repo.DeleteLabel(ctx, "Advil"), storage.ErrNotFound)
}
