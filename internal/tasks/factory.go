package tasks

import (
	"fmt"
	"math/rand/v2"

	"github.com/tensorplex-labs/prompting/internal/criteria"
)

const defaultPenalty = 0.1

type lengthRange struct {
	min, max int
	unit     criteria.TextLengthUnit
}

var (
	summaryRanges = []lengthRange{
		{50, 200, criteria.Words},
		{4, 8, criteria.Sentences},
	}
	questionGenerationRanges = []lengthRange{
		{25, 50, criteria.Words},
		{125, 250, criteria.Characters},
	}
	questionAnswerRanges = []lengthRange{
		{50, 200, criteria.Words},
		{4, 8, criteria.Sentences},
	}
)

// randIntInclusive draws from [lo, hi]. A nil rng uses the unseeded global source.
func randIntInclusive(rng *rand.Rand, lo, hi int) int {
	if rng == nil {
		return lo + rand.IntN(hi-lo+1)
	}
	return lo + rng.IntN(hi-lo+1)
}

func lengthCriteria(rng *rand.Rand, ranges []lengthRange) []criteria.TaskCriterion {
	out := make([]criteria.TaskCriterion, 0, len(ranges))
	for _, r := range ranges {
		out = append(out, criteria.MatchLengthCriteria{
			Penalty:      defaultPenalty,
			TargetLength: randIntInclusive(rng, r.min, r.max),
			Unit:         r.unit,
		})
	}
	return out
}

// NewSummarizationTask asks for a summary of baseText.
func NewSummarizationTask(rng *rand.Rand, baseText string) *Task {
	return &Task{
		BaseText: baseText,
		TaskName: "augment",
		Kind:     Summary,
		Criteria: lengthCriteria(rng, summaryRanges),
	}
}

// NewQuestionGenerationTask asks for a single follow-up question about baseText.
func NewQuestionGenerationTask(rng *rand.Rand, baseText string, index int) *Task {
	return &Task{
		BaseText: baseText,
		TaskName: fmt.Sprintf("followup%d", index),
		Kind:     QuestionGeneration,
		Criteria: lengthCriteria(rng, questionGenerationRanges),
	}
}

// NewQuestionAnswerTask asks for a step by step answer given baseText.
func NewQuestionAnswerTask(rng *rand.Rand, baseText string, index int) *Task {
	return &Task{
		BaseText: baseText,
		TaskName: fmt.Sprintf("answer%d", index),
		Kind:     QuestionAnswer,
		Criteria: lengthCriteria(rng, questionAnswerRanges),
	}
}

// New dispatches to the factory for kind. index is ignored for summaries.
func New(kind Kind, rng *rand.Rand, baseText string, index int) (*Task, error) {
	switch kind {
	case Summary:
		return NewSummarizationTask(rng, baseText), nil
	case QuestionGeneration:
		return NewQuestionGenerationTask(rng, baseText, index), nil
	case QuestionAnswer:
		return NewQuestionAnswerTask(rng, baseText, index), nil
	}
	return nil, fmt.Errorf("new task: %w", ErrUnknownKind)
}
