// Package criteria describes the length constraints attached to validator tasks.
package criteria

import "fmt"

// TextLengthUnit is the unit a length target is counted in.
type TextLengthUnit string

const (
	Words      TextLengthUnit = "words"
	Sentences  TextLengthUnit = "sentences"
	Characters TextLengthUnit = "characters"
)

// TaskCriterion renders itself as a single instruction line.
type TaskCriterion interface {
	ComposeText() string
}

// MatchLengthCriteria asks for a completion of a given length in a given unit.
// Penalty is the weight applied by the grader when the target is missed.
type MatchLengthCriteria struct {
	Penalty      float64        `json:"penalty"`
	TargetLength int            `json:"target_length"`
	Unit         TextLengthUnit `json:"unit"`
}

// ComposeText renders "Your response should have <n> <unit>.".
func (c MatchLengthCriteria) ComposeText() string {
	return fmt.Sprintf("Your response should have %d %s.", c.TargetLength, c.Unit)
}
