// Package axon is a mock miner that answers prompting synapses with the same
// canned completions as the mock dendrite.
package axon

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/prompting/internal/config"
	"github.com/tensorplex-labs/prompting/internal/dendrite"
	"github.com/tensorplex-labs/prompting/pkg/signature"
	"github.com/tensorplex-labs/prompting/pkg/transport"
)

type Axon struct {
	server *transport.Server
	// Delay is slept before answering a forward synapse.
	Delay time.Duration

	mu       sync.Mutex
	forwards int
	rewards  []float64
}

func New(cfg *config.AxonEnvConfig, verifier signature.Verifier) *Axon {
	serverCfg := &transport.ServerConfig{}
	if cfg != nil {
		serverCfg.Host = cfg.AxonHost
		serverCfg.Port = cfg.AxonPort
		serverCfg.BodyLimit = cfg.BodyLimit
	}

	a := &Axon{server: transport.NewServer(serverCfg, verifier)}
	transport.ServeRoute(a.server, a.forward)
	transport.ServeRoute(a.server, a.backward)
	return a
}

func (a *Axon) forward(c *fiber.Ctx, syn dendrite.PromptingSynapse) (dendrite.PromptingSynapse, error) {
	if a.Delay > 0 {
		select {
		case <-time.After(a.Delay):
		case <-c.Context().Done():
		}
	}

	message := ""
	if len(syn.Messages) > 0 {
		message = syn.Messages[0]
	}
	syn.Completion = dendrite.MockCompletion(message)

	a.mu.Lock()
	a.forwards++
	a.mu.Unlock()

	log.Debug().
		Str("caller", transport.GetRequestContext(c).Auth.Hotkey).
		Int("messages", len(syn.Messages)).
		Msg("answered prompting synapse")
	return syn, nil
}

func (a *Axon) backward(c *fiber.Ctx, syn dendrite.BackwardSynapse) (dendrite.BackwardSynapse, error) {
	a.mu.Lock()
	a.rewards = append(a.rewards, syn.Rewards...)
	a.mu.Unlock()

	log.Debug().
		Str("caller", transport.GetRequestContext(c).Auth.Hotkey).
		Floats64("rewards", syn.Rewards).
		Msg("received backward synapse")
	return syn, nil
}

func (a *Axon) App() *fiber.App { return a.server.App }

func (a *Axon) Addr() string { return a.server.Addr() }

// Start blocks serving until Shutdown.
func (a *Axon) Start() error { return a.server.Start() }

func (a *Axon) Shutdown(ctx context.Context) error { return a.server.Shutdown(ctx) }

// Forwards is the number of prompting synapses answered.
func (a *Axon) Forwards() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.forwards
}

// Rewards returns every reward received through backward synapses.
func (a *Axon) Rewards() []float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]float64(nil), a.rewards...)
}
