package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "./data/advisor.db", cfg.DBPath)
	assert.Equal(t, "static", cfg.FollowupMode)
	assert.True(t, cfg.LLM.Enabled)
	assert.Equal(t, "http://localhost:11434", cfg.LLM.Endpoint)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 20, cfg.RateLimit.RequestsPerWindow)
	assert.True(t, cfg.TranscriptLog.Enabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("FOLLOWUP_MODE", "dynamic")
	t.Setenv("LLM_ENABLED", "false")
	t.Setenv("LLM_TIMEOUT", "5s")
	t.Setenv("RATE_LIMIT_REQUESTS", "3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "dynamic", cfg.FollowupMode)
	assert.False(t, cfg.LLM.Enabled)
	assert.Equal(t, 5*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 3, cfg.RateLimit.RequestsPerWindow)
}

func TestLoadRejectsBadFollowupMode(t *testing.T) {
	t.Setenv("FOLLOWUP_MODE", "freestyle")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FOLLOWUP_MODE")
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load()
		require.NoError(t, err)
		return cfg
	}

	cfg := base()
	cfg.Port = ""
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.DBPath = ""
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.LLM.Endpoint = ""
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.LLM.Enabled = false
	cfg.LLM.Endpoint = ""
	assert.NoError(t, cfg.Validate())

	cfg = base()
	cfg.RateLimit.RequestsPerWindow = 0
	assert.Error(t, cfg.Validate())
}

func TestIsDevelopment(t *testing.T) {
	cfg := &Config{FrontendURL: ""}
	assert.True(t, cfg.IsDevelopment())

	cfg.FrontendURL = "http://localhost:3000"
	assert.True(t, cfg.IsDevelopment())

	cfg.FrontendURL = "https://advisor.example.org"
	assert.False(t, cfg.IsDevelopment())
}

func TestEnvParsingFallbacks(t *testing.T) {
	t.Setenv("LLM_MAX_RETRIES", "not-a-number")
	t.Setenv("LLM_TIMEOUT", "eventually")
	t.Setenv("TRANSCRIPT_LOG_ENABLED", "definitely")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.LLM.MaxRetries)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.True(t, cfg.TranscriptLog.Enabled)
}
