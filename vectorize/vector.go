package vectorize

import "math"

// Vector is a sparse vector in a fitted term space. Indices are sorted
// ascending and Values holds the weight at each index.
type Vector struct {
	Indices []int
	Values  []float64
}

// IsZero reports whether the vector has no non-zero weights.
func (v Vector) IsZero() bool {
	for _, val := range v.Values {
		if val != 0 {
			return false
		}
	}
	return true
}

// Norm returns the Euclidean length of the vector.
func (v Vector) Norm() float64 {
	var sum float64
	for _, val := range v.Values {
		sum += val * val
	}
	return math.Sqrt(sum)
}

// Normalize scales a vector to unit length.
// Returns a new vector. If the input is a zero vector, returns a zero vector.
func Normalize(v Vector) Vector {
	result := Vector{
		Indices: append([]int(nil), v.Indices...),
		Values:  make([]float64, len(v.Values)),
	}

	magnitude := v.Norm()
	if magnitude == 0 {
		return result
	}

	for i, val := range v.Values {
		result.Values[i] = val / magnitude
	}
	return result
}

// Dot returns the inner product of two sparse vectors.
func Dot(a, b Vector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] == b.Indices[j]:
			sum += a.Values[i] * b.Values[j]
			i++
			j++
		case a.Indices[i] < b.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// Cosine returns the cosine similarity of two vectors, or 0 if either is a
// zero vector.
func Cosine(a, b Vector) float64 {
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}
	score := Dot(a, b) / (na * nb)
	// clamp rounding drift
	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score
}
