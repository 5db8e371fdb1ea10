package embedding

import "math"

// normEpsilon guards against division by zero for zero-norm vectors.
const normEpsilon = 1e-10

// Cosine computes cosine similarity on L2-normalized vectors, clamped to
// [0, 1]. Negative raw similarity maps to 0: the matching thresholds
// (0.75/0.85) are calibrated against this clamp, and it is the single
// canonical policy module-wide. Mismatched dimensions or zero-norm
// inputs yield 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	sim := dot / ((math.Sqrt(normA) + normEpsilon) * (math.Sqrt(normB) + normEpsilon))
	return math.Max(0, math.Min(1, sim))
}

// ZeroVector returns an all-zero vector of the given dimension. Used as
// the fallback when the provider fails, so matching degenerates to
// "no match" instead of failing the batch.
func ZeroVector(dim int) []float32 {
	return make([]float32, dim)
}
