package validator

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/prompting/internal/config"
	"github.com/tensorplex-labs/prompting/internal/dataset"
	"github.com/tensorplex-labs/prompting/internal/dendrite"
	"github.com/tensorplex-labs/prompting/internal/gating"
	"github.com/tensorplex-labs/prompting/internal/kami"
	"github.com/tensorplex-labs/prompting/internal/reward"
	"github.com/tensorplex-labs/prompting/internal/scoring"
	"github.com/tensorplex-labs/prompting/internal/utils/redis"
)

// Validator coordinates forward steps, metagraph sync and weight setting for
// a subnet.
type Validator struct {
	Kami     kami.KamiInterface
	Gating   gating.GatingModel
	Reward   reward.RewardModel
	Dendrite dendrite.Dendrite
	Events   EventStore
	Redis    redis.RedisInterface
	Dataset  *dataset.Dataset

	Scores  *scoring.MovingAverage
	Weights *scoring.WeightPipeline

	Netuid        int
	MockMetagraph bool
	Hotkey        string

	IntervalConfig *config.IntervalConfig
	NeuronConfig   *config.NeuronEnvConfig

	Ctx    context.Context
	Cancel context.CancelFunc
	Wg     sync.WaitGroup

	rng       *rand.Rand
	backwards sync.WaitGroup

	mu          sync.RWMutex
	metagraph   *kami.SubnetMetagraph
	latestBlock int64
	step        atomic.Int64

	forwardRunning atomic.Bool
}

type Option func(*Validator)

// WithRand seeds uid sampling, passage choice and task criteria.
func WithRand(rng *rand.Rand) Option {
	return func(v *Validator) {
		v.rng = rng
	}
}

func WithIntervalConfig(ic *config.IntervalConfig) Option {
	return func(v *Validator) {
		v.IntervalConfig = ic
	}
}

// NewValidator wires the components together and restores the last scores
// snapshot when Redis is available.
func NewValidator(cfg *config.AppConfig, c *Components, opts ...Option) (*Validator, error) {
	if cfg == nil || c == nil {
		return nil, fmt.Errorf("configuration and components are required")
	}

	keyring, err := c.Kami.GetKeyringPair()
	if err != nil {
		return nil, fmt.Errorf("get validator hotkey: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	v := &Validator{
		Kami:     c.Kami,
		Gating:   c.Gating,
		Reward:   c.Reward,
		Dendrite: c.Dendrite,
		Events:   c.Events,
		Redis:    c.Redis,

		Scores:  scoring.NewMovingAverage(0, cfg.MovingAverageAlpha),
		Weights: scoring.NewWeightPipeline(),

		Netuid:        cfg.Netuid,
		MockMetagraph: cfg.MockMetagraph,
		Hotkey:        keyring.Data.KeyringPair.Address,

		IntervalConfig: config.NewIntervalConfig(cfg.Environment),
		NeuronConfig:   &cfg.NeuronEnvConfig,

		Ctx:    ctx,
		Cancel: cancel,
	}
	for _, opt := range opts {
		opt(v)
	}

	v.Dataset, err = dataset.New(v.rng)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("load dataset: %w", err)
	}

	if err := v.loadScores(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to restore scores, starting from zero")
	}

	log.Info().Msgf("Validator hotkey %s loaded!", v.Hotkey)
	return v, nil
}

// runTicker runs fn every d until ctx is canceled. Each fn runs in its own
// goroutine tracked by Wg, so Stop waits for in-flight work.
func (v *Validator) runTicker(ctx context.Context, d time.Duration, fn func()) {
	defer v.Wg.Done()
	t := time.NewTicker(d)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			v.Wg.Add(1)
			go func() {
				defer v.Wg.Done()
				fn()
			}()
		}
	}
}

// Start syncs the metagraph once and kicks off the periodic routines.
func (v *Validator) Start() {
	v.syncMetagraph()

	v.Wg.Add(1)
	go v.runTicker(v.Ctx, v.IntervalConfig.StepInterval, v.forwardOnce)

	v.Wg.Add(1)
	go v.runTicker(v.Ctx, v.IntervalConfig.MetagraphInterval, func() {
		v.syncBlock()
		v.syncMetagraph()
	})

	v.Wg.Add(1)
	go v.runTicker(v.Ctx, v.IntervalConfig.WeightSettingInterval, func() {
		v.setWeights()
		v.saveScores(v.Ctx)
	})
}

// Stop cancels background routines, waits for them to finish and saves a
// final scores snapshot.
func (v *Validator) Stop() {
	if v.Cancel != nil {
		v.Cancel()
	}
	v.Wg.Wait()
	v.backwards.Wait()
	v.saveScores(context.Background())
}

// WaitBackward blocks until every pending backward call has returned.
func (v *Validator) WaitBackward() {
	v.backwards.Wait()
}

func (v *Validator) forwardOnce() {
	if !v.forwardRunning.CompareAndSwap(false, true) {
		log.Debug().Msg("forward already running, skipping tick")
		return
	}
	defer v.forwardRunning.Store(false)

	if _, err := v.Forward(v.Ctx); err != nil {
		log.Error().Err(err).Msg("forward failed")
	}
}

// Metagraph returns the last synced metagraph, or nil before the first sync.
func (v *Validator) Metagraph() *kami.SubnetMetagraph {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.metagraph
}

func (v *Validator) Step() int64 {
	return v.step.Load()
}

func (v *Validator) loadScores(ctx context.Context) error {
	if v.Redis == nil {
		return nil
	}
	raw, err := v.Redis.Get(ctx, scoresCacheKey)
	if err != nil {
		return fmt.Errorf("get scores: %w", err)
	}
	if raw == "" {
		log.Info().Msg("no scores snapshot found, initializing with default scores")
		return nil
	}

	var data ScoresData
	if err := sonic.UnmarshalString(raw, &data); err != nil {
		return fmt.Errorf("decode scores: %w", err)
	}
	v.Scores.Set(data.Scores)
	v.step.Store(data.Step)
	log.Info().Msgf("Loaded latest scores: step %d, %d uids", data.Step, len(data.Scores))
	return nil
}

func (v *Validator) saveScores(ctx context.Context) {
	if v.Redis == nil {
		return
	}
	data, err := sonic.MarshalString(ScoresData{Step: v.Step(), Scores: v.Scores.Scores()})
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal scores")
		return
	}
	if err := v.Redis.Set(ctx, scoresCacheKey, data, 0); err != nil {
		log.Error().Err(err).Msg("failed to save scores")
		return
	}
	log.Debug().Int64("step", v.Step()).Msg("scores saved")
}
