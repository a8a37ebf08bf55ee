// Package dendrite queries miner axons with prompting synapses.
package dendrite

import (
	"context"
	"time"

	"github.com/tensorplex-labs/prompting/internal/kami"
)

const (
	StatusSuccess = "1"
	StatusTimeout = "408"
	StatusFailed  = "500"

	StatusMessageSuccess = "Success"
)

// PromptingSynapse carries a conversation to a miner; the miner fills in
// Completion.
type PromptingSynapse struct {
	Roles      []string `json:"roles"`
	Messages   []string `json:"messages"`
	Completion string   `json:"completion"`
}

// BackwardSynapse reports to a miner the reward its completion earned.
type BackwardSynapse struct {
	Roles      []string  `json:"roles"`
	Messages   []string  `json:"messages"`
	Completion string    `json:"completion"`
	Rewards    []float64 `json:"rewards"`
}

type Response struct {
	Completion         string
	StatusCode         string
	StatusMessage      string
	ElapsedTime        time.Duration
	IsSuccess          bool
	DendriteStatusCode int
	// Hotkey of the axon that answered, when known.
	Hotkey string
}

func (r Response) String() string {
	return "Response(" + r.Completion + ")"
}

type Dendrite interface {
	// Query sends synapse to every axon and returns one response per axon,
	// in axon order.
	Query(ctx context.Context, synapse PromptingSynapse, axons []kami.AxonInfo, timeout time.Duration) ([]Response, error)
	Resync(metagraph *kami.SubnetMetagraph)
	AsyncBackward(ctx context.Context, uids []int64, roles, messages, completions []string, rewards []float64) ([]Response, error)
}

// Completions extracts the completion text of each response.
func Completions(responses []Response) []string {
	out := make([]string, len(responses))
	for i, r := range responses {
		out[i] = r.Completion
	}
	return out
}

func firstMessage(messages []string) string {
	if len(messages) == 0 {
		return ""
	}
	return messages[0]
}
