package ai_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/labelmap/ai"
	"github.com/poiesic/labelmap/ai/mock"
)

func fixedEmbedder() *mock.MockEmbedder {
	vectors := map[string][]float32{
		"fever":    {1, 0, 0},
		"pyrexia":  {0.9, 0.1, 0},
		"headache": {0, 1, 0},
		"opposite": {-1, 0, 0},
	}
	e := mock.NewMockEmbedder()
	e.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		if v, ok := vectors[text]; ok {
			return v, nil
		}
		return nil, errors.New("unknown text")
	}
	e.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i, t := range texts {
			out[i] = vectors[t]
		}
		return out, nil
	}
	return e
}

func TestNewEmbeddingSimilarity_RequiresEmbedder(t *testing.T) {
	_, err := ai.NewEmbeddingSimilarity(nil, 8)
	assert.ErrorIs(t, err, ai.ErrEmbedderRequired)
}

func TestEmbeddingSimilarity(t *testing.T) {
	ctx := context.Background()
	embedder := fixedEmbedder()
	sim, err := ai.NewEmbeddingSimilarity(embedder, 8)
	require.NoError(t, err)

	score, err := sim.Similarity(ctx, "Fever", "pyrexia")
	require.NoError(t, err)
	assert.Greater(t, score, float32(0.9))

	score, err = sim.Similarity(ctx, "fever", "headache")
	require.NoError(t, err)
	assert.InDelta(t, 0.0, score, 1e-6)

	score, err = sim.Similarity(ctx, "fever", "opposite")
	require.NoError(t, err)
	assert.Equal(t, float32(0), score, "negative cosine clamps to zero")

	_, err = sim.Similarity(ctx, "fever", "unknown")
	assert.Error(t, err)
}

func TestEmbeddingSimilarity_CachesVectors(t *testing.T) {
	ctx := context.Background()
	embedder := fixedEmbedder()
	sim, err := ai.NewEmbeddingSimilarity(embedder, 8)
	require.NoError(t, err)

	require.NoError(t, sim.Warm(ctx, []string{"fever", "headache"}))
	assert.Equal(t, 1, embedder.CallCount(), "warm embeds in one batch")

	_, err = sim.Similarity(ctx, "fever", "headache")
	require.NoError(t, err)
	assert.Equal(t, 1, embedder.CallCount(), "warmed keys are served from cache")

	_, err = sim.Similarity(ctx, "pyrexia", "fever")
	require.NoError(t, err)
	assert.Equal(t, 2, embedder.CallCount())

	require.NoError(t, sim.Warm(ctx, []string{"fever"}))
	assert.Equal(t, 2, embedder.CallCount(), "nothing left to warm")
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, ai.CosineSimilarity([]float32{1, 2}, []float32{2, 4}), 1e-6)
	assert.Equal(t, float32(0), ai.CosineSimilarity([]float32{1}, []float32{1, 2}))
	assert.Equal(t, float32(0), ai.CosineSimilarity([]float32{0, 0}, []float32{1, 2}))
}
