package scoring

import (
	"fmt"
	"math"

	"github.com/tensorplex-labs/prompting/internal/utils/logger"
)

const U16MAX = 65535

type WeightPipeline struct {
	// MinMax rescales scores onto [0, 1] before normalizing.
	MinMax bool
}

type WeightPipelineOption func(*WeightPipeline)

func WithMinMax(enabled bool) WeightPipelineOption {
	return func(p *WeightPipeline) {
		p.MinMax = enabled
	}
}

func NewWeightPipeline(opts ...WeightPipelineOption) *WeightPipeline {
	p := &WeightPipeline{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Normalize turns raw moving average scores into weights summing to one
// (or all zero when nothing scored).
func (p *WeightPipeline) Normalize(scores []float64) []float64 {
	weights := ClampNonNegative(scores)
	if p.MinMax {
		weights = MinMaxScale(weights)
	}
	return L1Normalize(weights)
}

// Process normalizes scores and converts them to the u16 form the chain
// expects, indexed by uid.
func (p *WeightPipeline) Process(scores []float64) (uids []int, weights []int, err error) {
	normalized := p.Normalize(scores)
	allUIDs := make([]int64, len(normalized))
	for i := range allUIDs {
		allUIDs[i] = int64(i)
	}

	uids, weights, err = ConvertWeightsAndUidsForEmit(allUIDs, normalized)
	if err != nil {
		return nil, nil, err
	}
	logger.Sugar().Infow("Processed weights", "minMax", p.MinMax, "nonZero", len(uids), "total", len(scores))
	return uids, weights, nil
}

// ConvertWeightsAndUidsForEmit scales weights so the largest becomes U16MAX and
// drops entries that round to zero.
func ConvertWeightsAndUidsForEmit(uids []int64, weights []float64) ([]int, []int, error) {
	if len(uids) != len(weights) {
		return nil, nil, fmt.Errorf("uids and weights must have the same length, got %d and %d", len(uids), len(weights))
	}
	if len(uids) == 0 {
		return []int{}, []int{}, nil
	}

	maxWeight := 0.0
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) {
			return nil, nil, fmt.Errorf("weights cannot be negative: %v", weights)
		}
		if uids[i] < 0 {
			return nil, nil, fmt.Errorf("uids cannot be negative: %v", uids)
		}
		maxWeight = max(maxWeight, w)
	}

	if maxWeight == 0 {
		return []int{}, []int{}, nil
	}

	weightUids := make([]int, 0, len(uids))
	weightVals := make([]int, 0, len(weights))
	for i, w := range weights {
		if u16 := int(math.Round((w / maxWeight) * U16MAX)); u16 > 0 {
			weightUids = append(weightUids, int(uids[i]))
			weightVals = append(weightVals, u16)
		}
	}
	return weightUids, weightVals, nil
}
