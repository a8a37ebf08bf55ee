package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigWith_Defaults(t *testing.T) {
	cfg, err := LoadConfigWith(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.Netuid)
	assert.Equal(t, "~/.bittensor", cfg.BittensorDir)
	assert.Equal(t, "3000", cfg.KamiPort)
	assert.Equal(t, 12*time.Second, cfg.ClientTimeout)
	assert.Equal(t, 50, cfg.FollowupSampleSize)
	assert.Equal(t, 4, cfg.NumFollowupSteps)
	assert.InDelta(t, 0.05, cfg.MovingAverageAlpha, 1e-12)
	assert.False(t, cfg.MockDendrite)
	assert.Equal(t, 16, cfg.MockNumUIDs)
	assert.False(t, cfg.RedisEnabled)
	assert.Equal(t, "validator:events", cfg.EventLogKey)
	assert.Equal(t, int64(10000), cfg.EventLogMaxLen)
}

func TestLoadConfigWith_Overrides(t *testing.T) {
	cfg, err := LoadConfigWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"NETUID":           "98",
		"MOCK_GATING":      "true",
		"MOCK_REWARD":      "true",
		"MOCK_DENDRITE":    "true",
		"MOCK_NUM_UIDS":    "3",
		"FOLLOWUP_TIMEOUT": "2s",
		"ENVIRONMENT":      "prod",
	}))
	require.NoError(t, err)

	assert.Equal(t, 98, cfg.Netuid)
	assert.True(t, cfg.MockGating)
	assert.True(t, cfg.MockReward)
	assert.True(t, cfg.MockDendrite)
	assert.Equal(t, 3, cfg.MockNumUIDs)
	assert.Equal(t, 2*time.Second, cfg.FollowupTimeout)
	assert.Equal(t, "prod", cfg.Environment)
}

func TestLoadConfigWith_InvalidValue(t *testing.T) {
	_, err := LoadConfigWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"NETUID": "not-a-number",
	}))
	assert.Error(t, err)
}

func TestNewIntervalConfig(t *testing.T) {
	assert.Same(t, DevIntervalConfig, NewIntervalConfig("dev"))
	assert.Same(t, TestIntervalConfig, NewIntervalConfig("TEST"))
	assert.Same(t, ProdIntervalConfig, NewIntervalConfig("prod"))
	assert.Same(t, DevIntervalConfig, NewIntervalConfig("unknown"))
}
