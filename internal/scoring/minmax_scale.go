package scoring

import (
	"gonum.org/v1/gonum/floats"
)

// MinMaxScale maps scores onto [0, 1]; a constant vector maps to zeros.
func MinMaxScale(scores []float64) []float64 {
	result := make([]float64, len(scores))
	copy(result, scores)
	if len(result) == 0 {
		return result
	}

	lo := floats.Min(result)
	hi := floats.Max(result)

	if hi != lo {
		floats.AddConst(-lo, result)
		floats.Scale(1.0/(hi-lo), result)
	} else {
		floats.Scale(0, result)
	}

	return result
}
