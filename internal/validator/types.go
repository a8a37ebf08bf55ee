// Package validator runs the prompting validator: it builds tasks from
// dataset passages, queries miners, rewards their completions and turns the
// running scores into chain weights.
package validator

import (
	"errors"
	"time"
)

const (
	scoresCacheKey = "validator:scores"
	userRole       = "user"
)

var ErrNoAvailableUIDs = errors.New("no serving uids available")

// StepEvent records the outcome of one task sent to a batch of miners.
type StepEvent struct {
	Block       int64     `json:"block"`
	Timestamp   time.Time `json:"timestamp"`
	TaskName    string    `json:"task_name"`
	TaskType    string    `json:"task_type"`
	Prompt      string    `json:"prompt"`
	UIDs        []int64   `json:"uids"`
	Completions []string  `json:"completions"`
	StatusCodes []string  `json:"status_codes"`
	Rewards     []float64 `json:"rewards"`
	Best        string    `json:"best"`
	GatingLoss  float64   `json:"gating_loss"`
	// StepLength is the wall time of the step in seconds.
	StepLength float64 `json:"step_length"`
}

// ScoresData is the moving average snapshot persisted between restarts.
type ScoresData struct {
	Step   int64     `json:"step"`
	Scores []float64 `json:"scores"`
}
