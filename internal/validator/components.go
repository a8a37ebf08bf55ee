package validator

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/prompting/internal/config"
	"github.com/tensorplex-labs/prompting/internal/dendrite"
	"github.com/tensorplex-labs/prompting/internal/gating"
	"github.com/tensorplex-labs/prompting/internal/kami"
	"github.com/tensorplex-labs/prompting/internal/reward"
	"github.com/tensorplex-labs/prompting/internal/utils/redis"
	"github.com/tensorplex-labs/prompting/pkg/signature"
	"github.com/tensorplex-labs/prompting/pkg/transport"
)

const mockAxonIP = "127.0.0.1"

// Components are the collaborators a Validator drives.
type Components struct {
	Kami     kami.KamiInterface
	Gating   gating.GatingModel
	Reward   reward.RewardModel
	Dendrite dendrite.Dendrite
	// Events is nil when the event log is disabled.
	Events EventStore
	// Redis backs Events and the scores snapshot; nil when disabled.
	Redis redis.RedisInterface
}

// NewComponents picks real or mock collaborators according to cfg.
// signer is only needed for the real dendrite.
func NewComponents(cfg *config.AppConfig, signer signature.Signer) (*Components, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	c := &Components{}

	if cfg.MockMetagraph {
		c.Kami = kami.NewMockKami(cfg.MockNumUIDs, mockAxonIP, cfg.AxonPort)
	} else {
		k, err := kami.NewKami(&cfg.KamiEnvConfig)
		if err != nil {
			return nil, fmt.Errorf("create kami client: %w", err)
		}
		c.Kami = k
	}

	if cfg.MockGating {
		c.Gating = gating.NewMockGatingModel(cfg.MockNumUIDs)
	} else {
		c.Gating = gating.NewLinearGatingModel(0, gating.DefaultLearningRate)
	}

	if cfg.MockReward {
		c.Reward = reward.NewMockRewardModel("")
	} else {
		r, err := reward.NewAPIRewardModel("", &cfg.RewardAPIEnvConfig)
		if err != nil {
			return nil, fmt.Errorf("create reward model: %w", err)
		}
		c.Reward = r
	}

	if cfg.MockDendrite {
		c.Dendrite = dendrite.NewMockDendrite()
	} else {
		if signer == nil {
			return nil, fmt.Errorf("a signer is required for the network dendrite")
		}
		client := transport.NewClient(&transport.ClientConfig{Timeout: cfg.ClientTimeout}, signer)
		c.Dendrite = dendrite.NewClient(client, dendrite.DefaultConcurrency)
	}

	if cfg.RedisEnabled {
		r, err := redis.NewRedis(&cfg.RedisEnvConfig)
		if err != nil {
			return nil, fmt.Errorf("create redis client: %w", err)
		}
		c.Redis = r
		c.Events = NewRedisEventStore(r, cfg.EventLogKey, cfg.EventLogMaxLen)
	}

	log.Info().
		Bool("mockMetagraph", cfg.MockMetagraph).
		Bool("mockGating", cfg.MockGating).
		Bool("mockReward", cfg.MockReward).
		Bool("mockDendrite", cfg.MockDendrite).
		Bool("redis", cfg.RedisEnabled).
		Msg("validator components ready")
	return c, nil
}
