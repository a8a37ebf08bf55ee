// Package scoring keeps per-uid moving average scores and turns them into
// chain weights.
package scoring

import (
	"fmt"
	"slices"
	"sync"

	"gonum.org/v1/gonum/floats"
)

const DefaultAlpha = 0.05

// MovingAverage holds one exponentially averaged score per uid.
type MovingAverage struct {
	Alpha float64

	mu     sync.RWMutex
	scores []float64
}

func NewMovingAverage(numUIDs int, alpha float64) *MovingAverage {
	if alpha <= 0 || alpha > 1 {
		alpha = DefaultAlpha
	}
	return &MovingAverage{Alpha: alpha, scores: make([]float64, max(numUIDs, 0))}
}

// Update scatters rewards onto uids and blends the result in:
// s = alpha*scattered + (1-alpha)*s. Uids not in the batch decay toward zero.
func (m *MovingAverage) Update(uids []int64, rewards []float64) error {
	if len(uids) != len(rewards) {
		return fmt.Errorf("uids and rewards must have the same length, got %d and %d", len(uids), len(rewards))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, uid := range uids {
		if uid < 0 || int(uid) >= len(m.scores) {
			return fmt.Errorf("uid %d out of range [0, %d)", uid, len(m.scores))
		}
	}
	scattered := Scatter(len(m.scores), uids, rewards)

	floats.Scale(1-m.Alpha, m.scores)
	floats.AddScaled(m.scores, m.Alpha, scattered)
	return nil
}

// Resize grows or shrinks the score vector and zeroes the given uids, used
// when the metagraph changes.
func (m *MovingAverage) Resize(numUIDs int, reset []int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	numUIDs = max(numUIDs, 0)
	if numUIDs != len(m.scores) {
		next := make([]float64, numUIDs)
		copy(next, m.scores)
		m.scores = next
	}
	for _, uid := range reset {
		if uid >= 0 && uid < len(m.scores) {
			m.scores[uid] = 0
		}
	}
}

// Set replaces the score vector, e.g. with a restored snapshot.
func (m *MovingAverage) Set(scores []float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores = slices.Clone(scores)
	if m.scores == nil {
		m.scores = []float64{}
	}
}

func (m *MovingAverage) Scores() []float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.scores)
}

func (m *MovingAverage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.scores)
}

// Scatter places values at uids in a zero vector of length n.
func Scatter(n int, uids []int64, values []float64) []float64 {
	out := make([]float64, n)
	for i, uid := range uids {
		if i < len(values) && uid >= 0 && int(uid) < n {
			out[uid] = values[i]
		}
	}
	return out
}
