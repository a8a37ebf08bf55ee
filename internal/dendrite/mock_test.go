package dendrite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/tensorplex-labs/prompting/internal/kami"
	"github.com/tensorplex-labs/prompting/internal/prompts"
)

// verifyNoLeaks fails the test if it leaves goroutines behind.
func verifyNoLeaks(t *testing.T) {
	t.Helper()
	opt := goleak.IgnoreCurrent()
	t.Cleanup(func() { goleak.VerifyNone(t, opt) })
}

func axons(n int) []kami.AxonInfo {
	mg := kami.MockMetagraph(1, n, "127.0.0.1", 1)
	return mg.Axons
}

func TestMockCompletionPolicy(t *testing.T) {
	firewall := prompts.NewFirewallPrompt()
	followup := prompts.NewFollowupPrompt()
	answer := prompts.NewAnswerPrompt()

	assert.Equal(t, firewall.MockResponse(), MockCompletion(firewall.Text("anything\nmultiline")))
	assert.Equal(t, followup.MockResponse(), MockCompletion(followup.Text("c", "q")))
	assert.Equal(t, answer.MockResponse(), MockCompletion(answer.Text("c", "q", "a")))
	assert.Equal(t, DefaultMockCompletion, MockCompletion(""))
	assert.Equal(t, DefaultMockCompletion, MockCompletion("Summarize this text."))
}

func TestNewMockResponseDefaults(t *testing.T) {
	r := NewMockResponse("hi")
	assert.Equal(t, Response{
		Completion:         DefaultMockCompletion,
		StatusCode:         "1",
		StatusMessage:      "Success",
		ElapsedTime:        0,
		IsSuccess:          true,
		DendriteStatusCode: 200,
	}, r)
	assert.Equal(t, "Response(The capital of Texas is Austin.)", r.String())
}

func TestMockDendriteQuery(t *testing.T) {
	verifyNoLeaks(t)
	d := NewMockDendrite()
	followup := prompts.NewFollowupPrompt()
	syn := PromptingSynapse{Roles: []string{"user"}, Messages: []string{followup.Text("ctx", "why?"), "ignored"}}

	start := time.Now()
	responses, err := d.Query(context.Background(), syn, axons(3), time.Nanosecond)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), DefaultMockDelay)

	require.Len(t, responses, 3)
	for i, r := range responses {
		assert.Equal(t, "7</Score>", r.Completion)
		assert.True(t, r.IsSuccess)
		assert.Equal(t, axons(3)[i].Hotkey, r.Hotkey)
	}
	assert.Equal(t, []string{"7</Score>", "7</Score>", "7</Score>"}, Completions(responses))
}

func TestMockDendriteEmptyInputs(t *testing.T) {
	d := &MockDendrite{}

	responses, err := d.Query(context.Background(), PromptingSynapse{}, axons(2), 0)
	require.NoError(t, err)
	require.Len(t, responses, 2)
	assert.Equal(t, DefaultMockCompletion, responses[0].Completion)

	responses, err = d.Query(context.Background(), PromptingSynapse{Messages: []string{"x"}}, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, responses)
}

func TestMockDendriteAsyncBackward(t *testing.T) {
	verifyNoLeaks(t)
	d := NewMockDendrite()
	answer := prompts.NewAnswerPrompt()

	responses, err := d.AsyncBackward(context.Background(),
		[]int64{4, 2}, []string{"user"}, []string{answer.Text("c", "q", "a")},
		[]string{"x", "y"}, []float64{1, 0})
	require.NoError(t, err)
	require.Len(t, responses, 2)
	assert.Equal(t, "8</Score>", responses[1].Completion)

	responses, err = d.AsyncBackward(context.Background(), []int64{1}, nil, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultMockCompletion, responses[0].Completion)
}

func TestMockDendriteHonoursCancellation(t *testing.T) {
	verifyNoLeaks(t)
	d := &MockDendrite{Delay: time.Hour}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := d.Query(ctx, PromptingSynapse{}, axons(1), 0)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	_, err = d.AsyncBackward(ctx, []int64{0}, nil, nil, nil, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMockDendriteResyncIsNoop(t *testing.T) {
	mg := kami.MockMetagraph(1, 2, "127.0.0.1", 1)
	assert.NotPanics(t, func() { NewMockDendrite().Resync(&mg) })
	assert.NotPanics(t, func() { NewMockDendrite().Resync(nil) })
}
