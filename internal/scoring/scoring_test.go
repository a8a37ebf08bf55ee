package scoring

import (
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func TestMovingAverageUpdate(t *testing.T) {
	m := NewMovingAverage(4, 0.5)
	require.NoError(t, m.Update([]int64{1, 3}, []float64{1, 0.5}))
	assert.Equal(t, []float64{0, 0.5, 0, 0.25}, m.Scores())

	require.NoError(t, m.Update([]int64{1}, []float64{1}))
	assert.Equal(t, []float64{0, 0.75, 0, 0.125}, m.Scores())
}

func TestMovingAverageUpdateErrors(t *testing.T) {
	m := NewMovingAverage(2, 0.1)
	assert.Error(t, m.Update([]int64{0}, nil))
	assert.Error(t, m.Update([]int64{2}, []float64{1}))
	assert.Error(t, m.Update([]int64{-1}, []float64{1}))
	assert.Equal(t, []float64{0, 0}, m.Scores(), "failed updates leave scores untouched")
}

func TestMovingAverageDefaultsAlpha(t *testing.T) {
	assert.Equal(t, DefaultAlpha, NewMovingAverage(1, 0).Alpha)
	assert.Equal(t, DefaultAlpha, NewMovingAverage(1, 2).Alpha)
	assert.Equal(t, 0.3, NewMovingAverage(1, 0.3).Alpha)
}

func TestMovingAverageResize(t *testing.T) {
	m := NewMovingAverage(3, 1)
	require.NoError(t, m.Update([]int64{0, 1, 2}, []float64{1, 2, 3}))

	m.Resize(5, []int{1, 9})
	assert.Equal(t, []float64{1, 0, 3, 0, 0}, m.Scores())
	assert.Equal(t, 5, m.Len())

	m.Resize(2, nil)
	assert.Equal(t, []float64{1, 0}, m.Scores())
}

func TestMovingAverageSet(t *testing.T) {
	m := NewMovingAverage(1, 1)
	src := []float64{0.1, 0.2}
	m.Set(src)
	src[0] = 9
	assert.Equal(t, []float64{0.1, 0.2}, m.Scores())

	m.Set(nil)
	assert.Equal(t, 0, m.Len())
}

func TestScoresReturnsCopy(t *testing.T) {
	m := NewMovingAverage(2, 1)
	s := m.Scores()
	s[0] = 42
	assert.Equal(t, 0.0, m.Scores()[0])
}

func TestScatter(t *testing.T) {
	assert.Equal(t, []float64{0, 7, 0, 9}, Scatter(4, []int64{1, 3, 8}, []float64{7, 9, 1}))
	assert.Equal(t, []float64{}, Scatter(0, nil, nil))
}

func TestMinMaxScale(t *testing.T) {
	assert.Equal(t, []float64{0, 0.5, 1}, MinMaxScale([]float64{2, 4, 6}))
	assert.Equal(t, []float64{0, 0}, MinMaxScale([]float64{3, 3}))
	assert.Empty(t, MinMaxScale(nil))
}

func TestClampAndNormalize(t *testing.T) {
	clamped := ClampNonNegative([]float64{-1, 2, math.NaN(), math.Inf(1), 2})
	assert.Equal(t, []float64{0, 2, 0, 0, 2}, clamped)
	assert.Equal(t, []float64{0, 0.5, 0, 0, 0.5}, L1Normalize(clamped))
	assert.Equal(t, []float64{0, 0}, L1Normalize([]float64{0, 0}))
}

func TestWeightPipelineProcess(t *testing.T) {
	uids, weights, err := NewWeightPipeline().Process([]float64{-0.5, 0.2, 0.4, 0})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, uids)
	assert.Equal(t, []int{32768, U16MAX}, weights)

	normalized := NewWeightPipeline().Normalize([]float64{1, 3})
	assert.InDelta(t, 1, floats.Sum(normalized), 1e-12)

	uids, weights, err = NewWeightPipeline(WithMinMax(true)).Process([]float64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, uids)
	assert.Equal(t, []int{32768, U16MAX}, weights)

	uids, weights, err = NewWeightPipeline().Process([]float64{0, -1})
	require.NoError(t, err)
	assert.Empty(t, uids)
	assert.Empty(t, weights)
}

func TestConvertWeightsAndUidsForEmit(t *testing.T) {
	_, _, err := ConvertWeightsAndUidsForEmit([]int64{0}, nil)
	assert.Error(t, err)
	_, _, err = ConvertWeightsAndUidsForEmit([]int64{0}, []float64{-1})
	assert.Error(t, err)
	_, _, err = ConvertWeightsAndUidsForEmit([]int64{-1}, []float64{1})
	assert.Error(t, err)

	uids, vals, err := ConvertWeightsAndUidsForEmit([]int64{4, 5, 6}, []float64{1, 0.5, 1e-9})
	require.NoError(t, err)
	assert.Equal(t, []int{4, 5}, uids)
	assert.Equal(t, []int{U16MAX, 32768}, vals)
}

func BenchmarkMovingAverageUpdate(b *testing.B) {
	for _, n := range []int{256, 1024} {
		b.Run(fmt.Sprintf("UIDs%d", n), func(b *testing.B) {
			m := NewMovingAverage(n, DefaultAlpha)
			uids := make([]int64, 50)
			rewards := make([]float64, 50)
			for i := range uids {
				uids[i] = int64(rand.IntN(n))
				rewards[i] = rand.Float64()
			}
			b.ResetTimer()
			for b.Loop() {
				_ = m.Update(uids, rewards)
			}
		})
	}
}
