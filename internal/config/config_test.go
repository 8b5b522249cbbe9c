package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfigIsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "jobagent", cfg.Logger.ServiceName)
	assert.Equal(t, 25, cfg.Agent.MaxSteps)
	assert.False(t, cfg.Agent.ConfirmSubmit)
	assert.Equal(t, 45*time.Second, cfg.Browser.NavigationTimeout)
	assert.Contains(t, cfg.Agent.LLM.Models, cfg.Agent.LLM.DefaultFastModel)
	assert.Contains(t, cfg.Agent.LLM.Models, cfg.Agent.LLM.DefaultPowerfulModel)
}

func TestNewConfigFromViperOverrides(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("agent.max_steps", 5)
	v.Set("browser.remote_url", "ws://127.0.0.1:9222")

	cfg, err := NewConfigFromViper(v)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Agent.MaxSteps)
	assert.Equal(t, "ws://127.0.0.1:9222", cfg.Browser.RemoteURL)
}

func TestAPIKeyFromEnv(t *testing.T) {
	t.Setenv("JOBAGENT_GEMINI_API_KEY", "test-key-123")

	v := viper.New()
	SetDefaults(v)
	cfg, err := NewConfigFromViper(v)
	require.NoError(t, err)

	for name, m := range cfg.Agent.LLM.Models {
		assert.Equalf(t, "test-key-123", m.APIKey, "model %s", name)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero max steps", func(c *Config) { c.Agent.MaxSteps = 0 }},
		{"zero window width", func(c *Config) { c.Browser.WindowWidth = 0 }},
		{"zero rate limit", func(c *Config) { c.Agent.LLM.RequestsPerMinute = 0 }},
		{"no models", func(c *Config) { c.Agent.LLM.Models = nil }},
		{"unknown fast model", func(c *Config) { c.Agent.LLM.DefaultFastModel = "nope" }},
		{"unknown powerful model", func(c *Config) { c.Agent.LLM.DefaultPowerfulModel = "nope" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestExpandPaths(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Profile.Path = "~/jobagent/profile.yaml"
	require.NoError(t, cfg.expandPaths())
	assert.NotContains(t, cfg.Profile.Path, "~")
}
