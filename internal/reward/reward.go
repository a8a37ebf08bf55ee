// Package reward scores miner completions.
package reward

import "context"

const (
	DefaultShift = 3
)

type RewardModel interface {
	Name() string
	// Apply rewards completions for prompt and returns the raw rewards
	// together with their normalized form.
	Apply(ctx context.Context, prompt string, completions []string, name string) (raw, normalized []float64, err error)
	// Reward scores completions produced with the prompt against completions
	// produced without it.
	Reward(ctx context.Context, withPrompt, withoutPrompt []string, opts ...RewardOption) ([]float64, error)
	Reset() RewardModel
	QuestionBlacklist() []string
	AnswerBlacklist() []string
}

type rewardOptions struct {
	difference bool
	shift      int
}

type RewardOption func(*rewardOptions)

func WithDifference(difference bool) RewardOption {
	return func(o *rewardOptions) { o.difference = difference }
}

func WithShift(shift int) RewardOption {
	return func(o *rewardOptions) { o.shift = shift }
}

func applyOptions(opts []RewardOption) rewardOptions {
	o := rewardOptions{shift: DefaultShift}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
