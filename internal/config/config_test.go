package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("VECTOR_UPLIFT_AUTH_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 14, cfg.Engine.BaselineWindowDays)
	assert.Equal(t, 7, cfg.Engine.PostWindowDays)
	assert.Equal(t, 60, cfg.Engine.LookbackCeilingDays)
	assert.Nil(t, cfg.Engine.ChannelWindowOverrides)
	assert.Equal(t, 6*time.Hour, cfg.Redis.ReportTTL)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadChannelWindowOverrides(t *testing.T) {
	t.Setenv("VECTOR_UPLIFT_AUTH_ENABLED", "false")
	t.Setenv("VECTOR_UPLIFT_CHANNEL_WINDOWS", "newsletter:5, youtube:14, broken, bad:x")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"newsletter": 5, "youtube": 14}, cfg.Engine.ChannelWindowOverrides)
}

func TestAuthRequiresMasterKey(t *testing.T) {
	t.Setenv("VECTOR_UPLIFT_AUTH_ENABLED", "true")
	t.Setenv("VECTOR_UPLIFT_API_KEY_MASTER", "")

	_, err := Load()
	require.Error(t, err)
}

func TestValidateRejectsBadEngineConfig(t *testing.T) {
	t.Setenv("VECTOR_UPLIFT_AUTH_ENABLED", "false")
	t.Setenv("VECTOR_UPLIFT_BASELINE_WINDOW_DAYS", "0")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("VECTOR_UPLIFT_BASELINE_WINDOW_DAYS", "14")
	t.Setenv("VECTOR_UPLIFT_LOOKBACK_CEILING_DAYS", "7")

	_, err = Load()
	require.Error(t, err)
}
