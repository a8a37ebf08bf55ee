package gating

import (
	"hash/fnv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/tensorplex-labs/prompting/internal/kami"
)

const (
	FeatureDim          = 256
	DefaultLearningRate = 0.01
)

var (
	_ GatingModel = (*LinearGatingModel)(nil)
	_ UIDLearner  = (*LinearGatingModel)(nil)
)

// LinearGatingModel scores uids with one weight row per uid over a hashed
// bag-of-words encoding of the message.
type LinearGatingModel struct {
	LearningRate float64

	mu       sync.Mutex
	numUIDs  int
	weights  *mat.Dense // numUIDs x FeatureDim, nil while numUIDs == 0
	features *mat.VecDense
}

func NewLinearGatingModel(numUIDs int, learningRate float64) *LinearGatingModel {
	if learningRate <= 0 {
		learningRate = DefaultLearningRate
	}
	m := &LinearGatingModel{LearningRate: learningRate}
	m.resize(numUIDs)
	return m
}

// Featurize hashes lower-cased words into a unit-length vector.
func Featurize(message string) *mat.VecDense {
	data := make([]float64, FeatureDim)
	for _, word := range strings.Fields(strings.ToLower(message)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(word))
		data[h.Sum32()%FeatureDim]++
	}
	if norm := floats.Norm(data, 2); norm > 0 {
		floats.Scale(1/norm, data)
	}
	return mat.NewVecDense(FeatureDim, data)
}

func (m *LinearGatingModel) NumUIDs() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.numUIDs
}

func (m *LinearGatingModel) Forward(message string) []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.features = Featurize(message)
	if m.numUIDs == 0 {
		return []float64{}
	}
	out := mat.NewVecDense(m.numUIDs, nil)
	out.MulVec(m.weights, m.features)
	return out.RawVector().Data
}

// Backward applies a full-vector update when scores cover every uid;
// otherwise the rows are unknown and only the loss is reported.
func (m *LinearGatingModel) Backward(scores, rewards []float64) float64 {
	if len(scores) == m.NumUIDs() {
		uids := make([]int64, len(scores))
		for i := range uids {
			uids[i] = int64(i)
		}
		return m.BackwardUIDs(uids, scores, rewards)
	}
	return mse(scores, rewards)
}

// BackwardUIDs takes one SGD step on the mean squared error between scores
// and rewards, where scores[i] was produced by row uids[i] on the last
// Forward message.
func (m *LinearGatingModel) BackwardUIDs(uids []int64, scores, rewards []float64) float64 {
	n := min(len(uids), len(scores), len(rewards))
	loss := mse(scores[:n], rewards[:n])

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.features == nil || n == 0 {
		return loss
	}

	x := m.features.RawVector().Data
	row := make([]float64, FeatureDim)
	for i := range n {
		uid := int(uids[i])
		if uid < 0 || uid >= m.numUIDs {
			continue
		}
		// d/dw of (s - r)^2 / n is 2(s - r)x / n
		grad := 2 * (scores[i] - rewards[i]) / float64(n)
		mat.Row(row, uid, m.weights)
		floats.AddScaled(row, -m.LearningRate*grad, x)
		m.weights.SetRow(uid, row)
	}
	return loss
}

// Resync clears the rows of uids whose hotkey changed and resizes the model
// to the current uid count.
func (m *LinearGatingModel) Resync(previous, current *kami.SubnetMetagraph) {
	if current == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if previous != nil {
		zero := make([]float64, FeatureDim)
		limit := min(len(previous.Hotkeys), len(current.Hotkeys), m.numUIDs)
		for uid := range limit {
			if previous.Hotkeys[uid] != current.Hotkeys[uid] {
				log.Debug().Int("uid", uid).Msg("hotkey replaced, resetting gating weights")
				m.weights.SetRow(uid, zero)
			}
		}
	}
	if n := len(current.Hotkeys); n != m.numUIDs {
		log.Info().Int("from", m.numUIDs).Int("to", n).Msg("resizing gating model")
		m.resize(n)
	}
}

// resize keeps the rows of surviving uids. Caller holds mu or owns m.
func (m *LinearGatingModel) resize(n int) {
	n = max(n, 0)
	if n == 0 {
		m.numUIDs, m.weights = 0, nil
		return
	}
	next := mat.NewDense(n, FeatureDim, nil)
	if m.weights != nil {
		keep := min(n, m.numUIDs)
		next.Slice(0, keep, 0, FeatureDim).(*mat.Dense).Copy(m.weights.Slice(0, keep, 0, FeatureDim))
	}
	m.numUIDs, m.weights = n, next
}

// Weights returns a copy of the weight row for uid.
func (m *LinearGatingModel) Weights(uid int) []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if uid < 0 || uid >= m.numUIDs {
		return nil
	}
	return mat.Row(nil, uid, m.weights)
}

func mse(scores, rewards []float64) float64 {
	n := min(len(scores), len(rewards))
	if n == 0 {
		return 0
	}
	diff := make([]float64, n)
	floats.SubTo(diff, scores[:n], rewards[:n])
	return floats.Dot(diff, diff) / float64(n)
}
