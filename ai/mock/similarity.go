package mock

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
)

// MockSimilarity is a test double for ai.Similarity.
// Scores come from SimilarityFunc, then the Scores table, then exact
// case-insensitive equality (1) or nothing (0).
type MockSimilarity struct {
	// SimilarityFunc is called by Similarity if set.
	SimilarityFunc func(ctx context.Context, a, b string) (float32, error)

	mu        sync.RWMutex
	scores    map[[2]string]float32
	callCount atomic.Int64
}

// NewMockSimilarity creates a mock similarity with the default behavior.
func NewMockSimilarity() *MockSimilarity {
	return &MockSimilarity{scores: make(map[[2]string]float32)}
}

// WithScore fixes the score returned for the pair (a, b).
func (m *MockSimilarity) WithScore(a, b string, score float32) *MockSimilarity {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores[[2]string{strings.ToLower(a), strings.ToLower(b)}] = score
	return m
}

// Similarity implements ai.Similarity.
func (m *MockSimilarity) Similarity(ctx context.Context, a, b string) (float32, error) {
	m.callCount.Add(1)

	if m.SimilarityFunc != nil {
		return m.SimilarityFunc(ctx, a, b)
	}

	la, lb := strings.ToLower(a), strings.ToLower(b)
	m.mu.RLock()
	score, ok := m.scores[[2]string{la, lb}]
	m.mu.RUnlock()
	if ok {
		return score, nil
	}
	if la == lb {
		return 1, nil
	}
	return 0, nil
}

// CallCount returns the number of Similarity calls.
func (m *MockSimilarity) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count, fixed scores and custom function.
func (m *MockSimilarity) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount.Store(0)
	m.scores = make(map[[2]string]float32)
	m.SimilarityFunc = nil
}
