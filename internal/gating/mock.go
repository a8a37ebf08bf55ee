package gating

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/tensorplex-labs/prompting/internal/kami"
)

var _ GatingModel = (*MockGatingModel)(nil)

// MockGatingModel returns standard normal noise and never learns.
type MockGatingModel struct {
	NumUIDs int
	// Src drives the draws; nil uses the global source.
	Src rand.Source
}

func NewMockGatingModel(numUIDs int) *MockGatingModel {
	return &MockGatingModel{NumUIDs: numUIDs}
}

func (m *MockGatingModel) Forward(string) []float64 {
	n := max(m.NumUIDs, 0)
	dist := distuv.Normal{Mu: 0, Sigma: 1, Src: m.Src}
	scores := make([]float64, n)
	for i := range scores {
		scores[i] = dist.Rand()
	}
	return scores
}

func (m *MockGatingModel) Backward(scores, rewards []float64) float64 {
	return 0
}

func (m *MockGatingModel) Resync(previous, current *kami.SubnetMetagraph) {}
