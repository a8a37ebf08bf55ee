package dendrite

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/tensorplex-labs/prompting/internal/kami"
	"github.com/tensorplex-labs/prompting/pkg/transport"
)

const DefaultConcurrency = 64

var _ Dendrite = (*Client)(nil)

// Client queries axons over the signed transport. A failing peer yields an
// unsuccessful Response rather than failing the batch.
type Client struct {
	transport   *transport.Client
	concurrency int

	mu        sync.RWMutex
	metagraph *kami.SubnetMetagraph
}

func NewClient(t *transport.Client, concurrency int) *Client {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Client{transport: t, concurrency: concurrency}
}

func (c *Client) Resync(metagraph *kami.SubnetMetagraph) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metagraph = metagraph
}

func (c *Client) Query(ctx context.Context, synapse PromptingSynapse, axons []kami.AxonInfo, timeout time.Duration) ([]Response, error) {
	responses := make([]Response, len(axons))

	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i, axon := range axons {
		g.Go(func() error {
			start := time.Now()
			out, err := transport.Send[PromptingSynapse, PromptingSynapse](ctx, c.transport, kami.AxonURL(axon), synapse, timeout)
			responses[i] = toResponse(out.Completion, err, time.Since(start))
			responses[i].Hotkey = axon.Hotkey
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logBatch("query", responses)
	return responses, nil
}

func (c *Client) AsyncBackward(ctx context.Context, uids []int64, roles, messages, completions []string, rewards []float64) ([]Response, error) {
	if len(completions) != len(uids) || len(rewards) != len(uids) {
		return nil, fmt.Errorf("backward: %d uids, %d completions, %d rewards", len(uids), len(completions), len(rewards))
	}

	c.mu.RLock()
	metagraph := c.metagraph
	c.mu.RUnlock()
	if metagraph == nil {
		return nil, fmt.Errorf("backward: dendrite has no metagraph, call Resync first")
	}

	responses := make([]Response, len(uids))
	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i, uid := range uids {
		if uid < 0 || int(uid) >= len(metagraph.Axons) {
			responses[i] = toResponse("", fmt.Errorf("uid %d not in metagraph", uid), 0)
			continue
		}
		axon := metagraph.Axons[uid]
		synapse := BackwardSynapse{
			Roles:      roles,
			Messages:   messages,
			Completion: completions[i],
			Rewards:    []float64{rewards[i]},
		}
		g.Go(func() error {
			start := time.Now()
			out, err := transport.Send[BackwardSynapse, BackwardSynapse](ctx, c.transport, kami.AxonURL(axon), synapse, 0)
			responses[i] = toResponse(out.Completion, err, time.Since(start))
			responses[i].Hotkey = axon.Hotkey
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logBatch("backward", responses)
	return responses, nil
}

func toResponse(completion string, err error, elapsed time.Duration) Response {
	if err == nil {
		return Response{
			Completion:         completion,
			StatusCode:         StatusSuccess,
			StatusMessage:      StatusMessageSuccess,
			ElapsedTime:        elapsed,
			IsSuccess:          true,
			DendriteStatusCode: http.StatusOK,
		}
	}

	resp := Response{
		StatusMessage: err.Error(),
		ElapsedTime:   elapsed,
	}
	var statusErr *transport.StatusError
	switch {
	case transport.IsTimeout(err):
		resp.StatusCode = StatusTimeout
		resp.DendriteStatusCode = http.StatusRequestTimeout
	case errors.As(err, &statusErr):
		resp.StatusCode = StatusFailed
		resp.DendriteStatusCode = statusErr.Code
	default:
		resp.StatusCode = StatusFailed
		resp.DendriteStatusCode = http.StatusInternalServerError
	}
	return resp
}

func logBatch(op string, responses []Response) {
	counts := map[string]int{}
	for _, r := range responses {
		counts[r.StatusCode]++
	}
	ev := log.Debug().Str("op", op).Int("total", len(responses))
	for code, n := range counts {
		ev = ev.Int("status_"+code, n)
	}
	ev.Msg("dendrite batch complete")
}
