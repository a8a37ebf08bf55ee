package scoring

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

func L1Normalize(arr []float64) []float64 {
	result := make([]float64, len(arr))
	copy(result, arr)

	sum := floats.Sum(result)
	if sum > 0 {
		floats.Scale(1.0/sum, result)
	}

	return result
}

// ClampNonNegative replaces negative and NaN entries with zero.
func ClampNonNegative(arr []float64) []float64 {
	result := make([]float64, len(arr))
	for i, v := range arr {
		if v > 0 && !math.IsInf(v, 1) {
			result[i] = v
		}
	}
	return result
}
