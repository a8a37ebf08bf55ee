package validator

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/prompting/internal/dendrite"
	"github.com/tensorplex-labs/prompting/internal/gating"
	"github.com/tensorplex-labs/prompting/internal/kami"
	"github.com/tensorplex-labs/prompting/internal/tasks"
)

const backwardTimeout = 30 * time.Second

// RunStep sends task to k sampled miners, rewards their completions and
// folds the rewards into the moving average scores.
func (v *Validator) RunStep(ctx context.Context, task *tasks.Task, k int, timeout time.Duration, exclude []int64) (*StepEvent, error) {
	start := time.Now()

	prompt, err := task.ComposePrompt()
	if err != nil {
		return nil, fmt.Errorf("run step %s: %w", task.TaskName, err)
	}

	mg := v.Metagraph()
	if mg == nil {
		return nil, fmt.Errorf("run step %s: metagraph not synced", task.TaskName)
	}
	uids := v.sampleUIDs(mg, k, exclude)
	if len(uids) == 0 {
		return nil, fmt.Errorf("run step %s: %w", task.TaskName, ErrNoAvailableUIDs)
	}

	scores := v.Gating.Forward(prompt)

	synapse := dendrite.PromptingSynapse{Roles: []string{userRole}, Messages: []string{prompt}}
	responses, err := v.Dendrite.Query(ctx, synapse, kami.AxonsForUIDs(mg, uids), timeout)
	if err != nil {
		return nil, fmt.Errorf("query miners: %w", err)
	}
	if len(responses) != len(uids) {
		return nil, fmt.Errorf("query miners: got %d responses for %d uids", len(responses), len(uids))
	}
	completions := dendrite.Completions(responses)

	_, rewards, err := v.Reward.Apply(ctx, task.BaseText, completions, task.TaskName)
	if err != nil {
		return nil, fmt.Errorf("apply %s: %w", v.Reward.Name(), err)
	}
	statusCodes := make([]string, len(responses))
	for i, r := range responses {
		statusCodes[i] = r.StatusCode
		if !r.IsSuccess {
			rewards[i] = 0
		}
	}

	loss := gating.Learn(v.Gating, uids, gather(scores, uids), rewards)

	if v.Scores.Len() < len(mg.Hotkeys) {
		v.Scores.Resize(len(mg.Hotkeys), nil)
	}
	if err := v.Scores.Update(uids, rewards); err != nil {
		return nil, fmt.Errorf("update scores: %w", err)
	}
	v.step.Add(1)

	v.backward(uids, prompt, completions, rewards)

	v.mu.RLock()
	block := v.latestBlock
	v.mu.RUnlock()

	event := &StepEvent{
		Block:       block,
		Timestamp:   start,
		TaskName:    task.TaskName,
		TaskType:    task.TaskType(),
		Prompt:      prompt,
		UIDs:        uids,
		Completions: completions,
		StatusCodes: statusCodes,
		Rewards:     rewards,
		Best:        best(completions, rewards),
		GatingLoss:  loss,
		StepLength:  time.Since(start).Seconds(),
	}
	v.record(ctx, event)
	return event, nil
}

// Forward runs one full conversation: a summary of a sampled passage followed
// by question and answer rounds built on it.
func (v *Validator) Forward(ctx context.Context) ([]*StepEvent, error) {
	cfg := v.NeuronConfig
	passage := v.Dataset.Context()
	log.Info().Str("title", passage.Title).Msg("starting forward")

	events := make([]*StepEvent, 0, 1+2*max(cfg.NumFollowupSteps, 0))

	summary, err := v.RunStep(ctx, tasks.NewSummarizationTask(v.rng, passage.Text), cfg.FollowupSampleSize, cfg.FollowupTimeout, nil)
	if err != nil {
		return events, err
	}
	events = append(events, summary)

	summaryContext := summary.Best
	exclude := append([]int64{}, summary.UIDs...)

	for k := range max(cfg.NumFollowupSteps, 0) {
		followup, err := v.RunStep(ctx, tasks.NewQuestionGenerationTask(v.rng, summaryContext, k), cfg.FollowupSampleSize, cfg.FollowupTimeout, exclude)
		if err != nil {
			return events, err
		}
		events = append(events, followup)
		exclude = append(exclude, followup.UIDs...)

		answer, err := v.RunStep(ctx, tasks.NewQuestionAnswerTask(v.rng, AnswerContext(summaryContext, followup.Best), k), cfg.AnswerSampleSize, cfg.AnswerTimeout, exclude)
		if err != nil {
			return events, err
		}
		events = append(events, answer)
		exclude = append(exclude, answer.UIDs...)

		summaryContext += "\n\nQuestion:" + followup.Best + "\n\nAnswer:" + answer.Best
	}
	return events, nil
}

// AnswerContext is the base text of a question-answer task.
func AnswerContext(summary, question string) string {
	return "### SUMMARY CONTEXT:\n" + summary + "\n### QUESTION:\n" + question
}

func (v *Validator) record(ctx context.Context, event *StepEvent) {
	log.Info().
		Str("task", event.TaskName).
		Int("uids", len(event.UIDs)).
		Float64("gatingLoss", event.GatingLoss).
		Float64("stepLength", event.StepLength).
		Msg("step complete")

	if v.Events == nil {
		return
	}
	if err := v.Events.Append(ctx, event); err != nil {
		log.Error().Err(err).Str("task", event.TaskName).Msg("failed to store step event")
	}
}

// backward reports rewards to the miners without blocking the step.
func (v *Validator) backward(uids []int64, prompt string, completions []string, rewards []float64) {
	roles := []string{userRole}
	messages := []string{prompt}

	v.backwards.Add(1)
	go func() {
		defer v.backwards.Done()
		ctx, cancel := context.WithTimeout(v.Ctx, backwardTimeout)
		defer cancel()
		if _, err := v.Dendrite.AsyncBackward(ctx, uids, roles, messages, completions, rewards); err != nil {
			log.Warn().Err(err).Msg("backward failed")
		}
	}()
}
