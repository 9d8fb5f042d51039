package vectorize

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    Vector
		expected []float64
	}{
		{
			name:     "unit vector remains unchanged",
			input:    Vector{Indices: []int{0}, Values: []float64{1}},
			expected: []float64{1},
		},
		{
			name:     "scale non-unit vector",
			input:    Vector{Indices: []int{1, 4}, Values: []float64{3, 4}},
			expected: []float64{0.6, 0.8},
		},
		{
			name:     "negative values",
			input:    Vector{Indices: []int{0, 1}, Values: []float64{-1, 1}},
			expected: []float64{-1 / math.Sqrt(2), 1 / math.Sqrt(2)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Normalize(tt.input)
			require.Equal(t, tt.input.Indices, result.Indices)
			require.Len(t, result.Values, len(tt.expected))
			for i := range result.Values {
				assert.InDelta(t, tt.expected[i], result.Values[i], 1e-9, "element %d", i)
			}
			assert.InDelta(t, 1.0, result.Norm(), 1e-9, "magnitude should be 1.0")
		})
	}
}

func TestNormalize_ZeroVector(t *testing.T) {
	result := Normalize(Vector{Indices: []int{2}, Values: []float64{0}})
	assert.True(t, result.IsZero())
	assert.True(t, Vector{}.IsZero())
}

func TestCosine(t *testing.T) {
	a := Vector{Indices: []int{0, 2}, Values: []float64{1, 1}}
	b := Vector{Indices: []int{2, 5}, Values: []float64{1, 1}}

	assert.InDelta(t, 0.5, Cosine(a, b), 1e-9)
	assert.InDelta(t, 1.0, Cosine(a, a), 1e-9)
	assert.Equal(t, 0.0, Cosine(a, Vector{}))
	assert.InDelta(t, 1.0, Dot(a, b), 1e-9)
}
