package reward

import (
	"context"
	"slices"
)

const DefaultMockName = "MockReward"

var _ RewardModel = (*MockRewardModel)(nil)

// MockRewardModel gives every completion a reward of one.
type MockRewardModel struct {
	name              string
	questionBlacklist []string
	answerBlacklist   []string
}

// NewMockRewardModel returns a mock named name, or DefaultMockName when name
// is empty.
func NewMockRewardModel(name string) *MockRewardModel {
	if name == "" {
		name = DefaultMockName
	}
	return &MockRewardModel{
		name:              name,
		questionBlacklist: []string{},
		answerBlacklist:   []string{},
	}
}

func (m *MockRewardModel) Name() string { return m.name }

func (m *MockRewardModel) Apply(_ context.Context, _ string, completions []string, _ string) ([]float64, []float64, error) {
	raw := make([]float64, len(completions))
	for i := range raw {
		raw[i] = 1
	}
	return raw, slices.Clone(raw), nil
}

func (m *MockRewardModel) Reward(_ context.Context, withPrompt, _ []string, opts ...RewardOption) ([]float64, error) {
	_ = applyOptions(opts)
	return make([]float64, len(withPrompt)), nil
}

func (m *MockRewardModel) Reset() RewardModel { return m }

func (m *MockRewardModel) QuestionBlacklist() []string { return m.questionBlacklist }

func (m *MockRewardModel) AnswerBlacklist() []string { return m.answerBlacklist }
