package reward

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/prompting/internal/config"
)

const (
	applyPath  = "/reward"
	rewardPath = "/reward/relative"
)

var _ RewardModel = (*APIRewardModel)(nil)

// APIRewardModel delegates scoring to a remote reward service and
// normalizes what it returns with running statistics.
type APIRewardModel struct {
	name              string
	client            *resty.Client
	stats             *RunningStats
	questionBlacklist []string
	answerBlacklist   []string
}

type applyRequest struct {
	Name        string   `json:"name"`
	Prompt      string   `json:"prompt"`
	Completions []string `json:"completions"`
}

type relativeRequest struct {
	WithPrompt    []string `json:"with_prompt"`
	WithoutPrompt []string `json:"without_prompt"`
	Difference    bool     `json:"difference"`
	Shift         int      `json:"shift"`
}

type rewardsResponse struct {
	Rewards []float64 `json:"rewards"`
}

func NewAPIRewardModel(name string, cfg *config.RewardAPIEnvConfig) (*APIRewardModel, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if cfg.RewardAPIURL == "" {
		return nil, fmt.Errorf("reward api url is empty")
	}
	if name == "" {
		name = "RewardAPI"
	}

	client := resty.New().
		SetBaseURL(cfg.RewardAPIURL).
		SetTimeout(cfg.RewardAPITimeout).
		SetRetryCount(cfg.RewardAPIRetries).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)

	return &APIRewardModel{
		name:              name,
		client:            client,
		stats:             &RunningStats{},
		questionBlacklist: []string{},
		answerBlacklist:   []string{},
	}, nil
}

func (m *APIRewardModel) Name() string { return m.name }

func (m *APIRewardModel) post(ctx context.Context, path string, body any, want int) ([]float64, error) {
	var result rewardsResponse
	resp, err := m.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		Post(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("reward request failed")
		return nil, fmt.Errorf("post %s: %w", path, err)
	}
	if resp.IsError() {
		log.Error().Int("status", resp.StatusCode()).Str("body", resp.String()).Msg("reward api non-2xx")
		return nil, fmt.Errorf("reward api returned status %d: %s", resp.StatusCode(), resp.String())
	}
	if len(result.Rewards) != want {
		return nil, fmt.Errorf("reward api returned %d rewards for %d completions", len(result.Rewards), want)
	}
	return result.Rewards, nil
}

func (m *APIRewardModel) Apply(ctx context.Context, prompt string, completions []string, name string) ([]float64, []float64, error) {
	if len(completions) == 0 {
		return []float64{}, []float64{}, nil
	}

	raw, err := m.post(ctx, applyPath, applyRequest{Name: name, Prompt: prompt, Completions: completions}, len(completions))
	if err != nil {
		return nil, nil, fmt.Errorf("apply %s: %w", m.name, err)
	}
	return raw, m.stats.Normalize(raw), nil
}

func (m *APIRewardModel) Reward(ctx context.Context, withPrompt, withoutPrompt []string, opts ...RewardOption) ([]float64, error) {
	if len(withPrompt) == 0 {
		return []float64{}, nil
	}
	o := applyOptions(opts)
	req := relativeRequest{
		WithPrompt:    withPrompt,
		WithoutPrompt: withoutPrompt,
		Difference:    o.difference,
		Shift:         o.shift,
	}
	rewards, err := m.post(ctx, rewardPath, req, len(withPrompt))
	if err != nil {
		return nil, fmt.Errorf("reward %s: %w", m.name, err)
	}
	return rewards, nil
}

// Reset clears the running normalization statistics.
func (m *APIRewardModel) Reset() RewardModel {
	m.stats.Reset()
	return m
}

func (m *APIRewardModel) Stats() *RunningStats { return m.stats }

func (m *APIRewardModel) QuestionBlacklist() []string { return m.questionBlacklist }

func (m *APIRewardModel) AnswerBlacklist() []string { return m.answerBlacklist }
