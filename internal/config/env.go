// Package config defines environment configuration structs and loaders.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type AppConfig struct {
	ChainEnvConfig
	WalletEnvConfig
	KamiEnvConfig
	RedisEnvConfig
	RewardAPIEnvConfig
	AxonEnvConfig
	ClientEnvConfig
	MockEnvConfig
	NeuronEnvConfig
}

// LoadConfig reads the full application configuration from the process environment.
func LoadConfig(ctx context.Context) (*AppConfig, error) {
	return LoadConfigWith(ctx, envconfig.OsLookuper())
}

// LoadConfigWith reads the application configuration from the given lookuper.
func LoadConfigWith(ctx context.Context, lookuper envconfig.Lookuper) (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	return cfg, nil
}

// ChainEnvConfig holds chain-specific environment values.
type ChainEnvConfig struct {
	Netuid int `env:"NETUID, default=1"`
}

// WalletEnvConfig holds wallet key configuration.
type WalletEnvConfig struct {
	WalletHotkey  string `env:"WALLET_HOTKEY"`
	WalletColdkey string `env:"WALLET_COLDKEY, default=default"`
	BittensorDir  string `env:"BITTENSOR_DIR, default=~/.bittensor"`
}

// KamiEnvConfig contains Kami service target.
type KamiEnvConfig struct {
	SubtensorNetwork string `env:"SUBTENSOR_NETWORK, default=finney"`
	KamiHost         string `env:"KAMI_HOST, default=127.0.0.1"`
	KamiPort         string `env:"KAMI_PORT, default=3000"`
}

// RedisEnvConfig configures the Redis event log.
type RedisEnvConfig struct {
	RedisEnabled  bool   `env:"REDIS_ENABLED, default=false"`
	RedisHost     string `env:"REDIS_HOST, default=127.0.0.1"`
	RedisPort     int    `env:"REDIS_PORT, default=6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB, default=0"`
	EventLogKey   string `env:"EVENT_LOG_KEY, default=validator:events"`

	// EventLogMaxLen caps the event list; zero keeps everything.
	EventLogMaxLen int64 `env:"EVENT_LOG_MAX_LEN, default=10000"`
}

// RewardAPIEnvConfig configures the remote reward model.
type RewardAPIEnvConfig struct {
	RewardAPIURL     string        `env:"REWARD_API_URL, default=http://localhost:5005"`
	RewardAPITimeout time.Duration `env:"REWARD_API_TIMEOUT, default=30s"`
	RewardAPIRetries int           `env:"REWARD_API_RETRIES, default=3"`
}

// AxonEnvConfig configures the axon server.
type AxonEnvConfig struct {
	AxonHost  string `env:"AXON_HOST, default=0.0.0.0"`
	AxonPort  int    `env:"AXON_PORT, default=8091"`
	BodyLimit int    `env:"SERVER_BODY_LIMIT, default=4194304"`
}

// ClientEnvConfig configures outbound dendrite requests.
type ClientEnvConfig struct {
	ClientTimeout time.Duration `env:"CLIENT_TIMEOUT, default=12s"`
}

// MockEnvConfig selects mock stand-ins for the validator components.
type MockEnvConfig struct {
	MockGating    bool `env:"MOCK_GATING, default=false"`
	MockReward    bool `env:"MOCK_REWARD, default=false"`
	MockDendrite  bool `env:"MOCK_DENDRITE, default=false"`
	MockMetagraph bool `env:"MOCK_METAGRAPH, default=false"`
	MockNumUIDs   int  `env:"MOCK_NUM_UIDS, default=16"`
}

// NeuronEnvConfig configures the validator forward loop.
type NeuronEnvConfig struct {
	Environment        string        `env:"ENVIRONMENT, default=dev"`
	FollowupSampleSize int           `env:"FOLLOWUP_SAMPLE_SIZE, default=50"`
	AnswerSampleSize   int           `env:"ANSWER_SAMPLE_SIZE, default=50"`
	NumFollowupSteps   int           `env:"NUM_FOLLOWUP_STEPS, default=4"`
	FollowupTimeout    time.Duration `env:"FOLLOWUP_TIMEOUT, default=10s"`
	AnswerTimeout      time.Duration `env:"ANSWER_TIMEOUT, default=10s"`
	MovingAverageAlpha float64       `env:"MOVING_AVERAGE_ALPHA, default=0.05"`
	VpermitTaoLimit    float64       `env:"VPERMIT_TAO_LIMIT, default=4096"`
}

type IntervalConfig struct {
	StepInterval          time.Duration
	MetagraphInterval     time.Duration
	WeightSettingInterval time.Duration
}

var (
	DevIntervalConfig = &IntervalConfig{
		StepInterval:          5 * time.Second,
		MetagraphInterval:     30 * time.Second,
		WeightSettingInterval: 1 * time.Minute,
	}
	TestIntervalConfig = &IntervalConfig{
		StepInterval:          15 * time.Second,
		MetagraphInterval:     1 * time.Minute,
		WeightSettingInterval: 20 * time.Minute,
	}

	ProdIntervalConfig = &IntervalConfig{
		StepInterval:          15 * time.Second,
		MetagraphInterval:     1 * time.Minute,
		WeightSettingInterval: 20 * time.Minute,
	}
)

func NewIntervalConfig(environment string) *IntervalConfig {
	switch strings.ToLower(environment) {
	case "dev":
		return DevIntervalConfig
	case "test":
		return TestIntervalConfig
	case "prod":
		return ProdIntervalConfig
	}

	return DevIntervalConfig
}
