package reward

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// RunningStats tracks the mean and variance of every reward seen so far.
type RunningStats struct {
	mu    sync.Mutex
	count int
	mean  float64
	vari  float64
}

func (s *RunningStats) Snapshot() (count int, mean, variance float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count, s.mean, s.vari
}

func (s *RunningStats) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count, s.mean, s.vari = 0, 0, 0
}

// Normalize folds rewards into the running statistics, standardizes them
// against the updated statistics and maps the result through the normal CDF
// into [0, 1].
func (s *RunningStats) Normalize(rewards []float64) []float64 {
	out := make([]float64, len(rewards))
	if len(rewards) == 0 {
		return out
	}
	copy(out, rewards)

	s.mu.Lock()
	newCount := len(rewards)
	newMean := stat.Mean(rewards, nil)
	newVar := stat.PopVariance(rewards, nil)

	total := float64(s.count + newCount)
	newWeight := float64(newCount) / total
	oldWeight := float64(s.count) / total
	diff := newMean - s.mean

	s.vari = oldWeight*s.vari + newWeight*newVar + newWeight*oldWeight*diff*diff
	s.mean = newWeight*newMean + oldWeight*s.mean
	s.count += newCount
	mean, variance := s.mean, s.vari
	s.mu.Unlock()

	floats.AddConst(-mean, out)
	if variance > 0 {
		floats.Scale(1/math.Sqrt(variance), out)
	}
	for i, z := range out {
		out[i] = 0.5 * (1 + math.Erf(z/math.Sqrt2))
	}
	return out
}
