// Package tasks composes the natural-language prompts a validator sends to
// peers: summaries, follow-up questions and answers, each decorated with
// length criteria.
package tasks

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tensorplex-labs/prompting/internal/criteria"
)

// ErrUnknownKind is returned for a Kind outside the closed set.
var ErrUnknownKind = errors.New("unknown task kind")

// Kind is the closed set of task variants.
type Kind int

const (
	Summary Kind = iota
	QuestionGeneration
	QuestionAnswer
)

// TaskType returns the wire name of the kind.
func (k Kind) TaskType() string {
	switch k {
	case Summary:
		return "summarization"
	case QuestionGeneration:
		return "question-generation"
	case QuestionAnswer:
		return "question-answer"
	}
	return ""
}

func (k Kind) String() string {
	if t := k.TaskType(); t != "" {
		return t
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps a task type name back to its Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "summarization", "summary":
		return Summary, nil
	case "question-generation", "qg":
		return QuestionGeneration, nil
	case "question-answer", "qa":
		return QuestionAnswer, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Task is an immutable prompt request built by one of the factories.
type Task struct {
	BaseText string
	TaskName string
	Kind     Kind
	Criteria []criteria.TaskCriterion
}

// TaskType returns the wire name of the task kind.
func (t *Task) TaskType() string {
	return t.Kind.TaskType()
}

type promptData struct {
	BaseText string
	Criteria string
}

// ComposePrompt renders the task into the prompt string sent to peers.
// The result depends only on BaseText and Criteria.
func (t *Task) ComposePrompt() (string, error) {
	tmpl, ok := promptTemplates[t.Kind]
	if !ok {
		return "", fmt.Errorf("compose prompt for %s: %w", t.Kind, ErrUnknownKind)
	}

	bullets := make([]string, 0, len(t.Criteria))
	for _, c := range t.Criteria {
		bullets = append(bullets, "- "+c.ComposeText())
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, promptData{
		BaseText: t.BaseText,
		Criteria: strings.Join(bullets, "\n"),
	}); err != nil {
		return "", fmt.Errorf("compose prompt for %s: %w", t.Kind, err)
	}
	return b.String(), nil
}

// ComposeCriteria returns the rendered criteria lines without bullets.
func (t *Task) ComposeCriteria() []string {
	out := make([]string, 0, len(t.Criteria))
	for _, c := range t.Criteria {
		out = append(out, c.ComposeText())
	}
	return out
}
