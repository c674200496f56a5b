package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCreatesTemplatesAndDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)

	// First run writes the templates.
	_, err = os.Stat(filepath.Join(dir, "config.toml"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "credentials.toml"))
	assert.NoError(t, err)

	assert.Equal(t, "default", cfg.Journal.UserID)
	assert.Equal(t, 10000.0, cfg.Journal.DefaultCapital)
	assert.Equal(t, 0.02, cfg.Metrics.RiskFreeRate)
	assert.Equal(t, 5, cfg.Metrics.CacheTTLMinutes)
	assert.Equal(t, "gpt-4o-mini", cfg.Insight.Model)
	assert.Equal(t, 10, cfg.Insight.RecentTrades)
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[journal]
user_id = "alex"
default_capital = 50000.0

[metrics]
risk_free_rate = 0.01
cache_ttl_minutes = 15
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "alex", cfg.Journal.UserID)
	assert.Equal(t, 50000.0, cfg.Journal.DefaultCapital)
	assert.Equal(t, 0.01, cfg.Metrics.RiskFreeRate)
	assert.Equal(t, 15*time.Minute, cfg.CacheTTL())
	// Unset sections keep their defaults.
	assert.Equal(t, "gpt-4o-mini", cfg.Insight.Model)
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("TRADE_JOURNAL_USER", "env-user")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.Credentials.OpenAI.APIKey)
	assert.Equal(t, "env-user", cfg.Journal.UserID)
}

func TestValidate(t *testing.T) {
	valid := &Config{
		Journal: JournalConfig{UserID: "u1", DefaultCapital: 10000},
		Metrics: MetricsConfig{RiskFreeRate: 0.02, CacheTTLMinutes: 5},
		Insight: InsightConfig{RecentTrades: 10},
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty user id", func(c *Config) { c.Journal.UserID = "" }},
		{"non-positive capital", func(c *Config) { c.Journal.DefaultCapital = 0 }},
		{"risk-free rate out of range", func(c *Config) { c.Metrics.RiskFreeRate = 1.5 }},
		{"negative cache ttl", func(c *Config) { c.Metrics.CacheTTLMinutes = -1 }},
		{"negative recent trades", func(c *Config) { c.Insight.RecentTrades = -2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := *valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
