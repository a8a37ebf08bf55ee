package dendrite

import (
	"context"
	"time"

	"github.com/tensorplex-labs/prompting/internal/kami"
	"github.com/tensorplex-labs/prompting/internal/prompts"
)

const (
	DefaultMockDelay = 10 * time.Millisecond

	DefaultMockCompletion = "The capital of Texas is Austin."
)

var (
	_ Dendrite = (*MockDendrite)(nil)

	// checked in order, first match wins
	mockPrompts = []*prompts.Template{
		prompts.NewFirewallPrompt(),
		prompts.NewFollowupPrompt(),
		prompts.NewAnswerPrompt(),
	}
)

// MockCompletion is the canned completion a mock miner returns for message.
func MockCompletion(message string) string {
	for _, p := range mockPrompts {
		if p.MatchesTemplate(message) {
			return p.MockResponse()
		}
	}
	return DefaultMockCompletion
}

// NewMockResponse builds the successful response a mock miner gives to message.
func NewMockResponse(message string) Response {
	return Response{
		Completion:         MockCompletion(message),
		StatusCode:         StatusSuccess,
		StatusMessage:      StatusMessageSuccess,
		ElapsedTime:        0,
		IsSuccess:          true,
		DendriteStatusCode: 200,
	}
}

// MockDendrite answers every query locally after a short delay. Timeouts are
// accepted but never enforced.
type MockDendrite struct {
	Delay time.Duration
}

func NewMockDendrite() *MockDendrite {
	return &MockDendrite{Delay: DefaultMockDelay}
}

func (d *MockDendrite) wait(ctx context.Context) error {
	if d.Delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func respondAll(message string, n int) []Response {
	out := make([]Response, n)
	for i := range out {
		out[i] = NewMockResponse(message)
	}
	return out
}

func (d *MockDendrite) Query(ctx context.Context, synapse PromptingSynapse, axons []kami.AxonInfo, _ time.Duration) ([]Response, error) {
	if err := d.wait(ctx); err != nil {
		return nil, err
	}
	responses := respondAll(firstMessage(synapse.Messages), len(axons))
	for i := range responses {
		responses[i].Hotkey = axons[i].Hotkey
	}
	return responses, nil
}

func (d *MockDendrite) Resync(*kami.SubnetMetagraph) {}

func (d *MockDendrite) AsyncBackward(ctx context.Context, uids []int64, _, messages, _ []string, _ []float64) ([]Response, error) {
	if err := d.wait(ctx); err != nil {
		return nil, err
	}
	return respondAll(firstMessage(messages), len(uids)), nil
}
