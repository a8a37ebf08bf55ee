// Package gating scores how relevant each uid is likely to be for a message.
package gating

import (
	"github.com/tensorplex-labs/prompting/internal/kami"
)

type GatingModel interface {
	// Forward returns one score per uid for message.
	Forward(message string) []float64
	// Backward learns from the rewards observed for the given scores and
	// returns the loss.
	Backward(scores, rewards []float64) float64
	// Resync adapts the model after the metagraph changed.
	Resync(previous, current *kami.SubnetMetagraph)
}

// UIDLearner is implemented by models whose parameters are per uid and so
// need to know which uids produced the scores passed to Backward.
type UIDLearner interface {
	BackwardUIDs(uids []int64, scores, rewards []float64) float64
}

// Learn runs a backward pass, routing through BackwardUIDs when the model
// supports it.
func Learn(model GatingModel, uids []int64, scores, rewards []float64) float64 {
	if l, ok := model.(UIDLearner); ok {
		return l.BackwardUIDs(uids, scores, rewards)
	}
	return model.Backward(scores, rewards)
}
