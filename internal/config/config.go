// Package config provides configuration management for the journal application.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Journal     JournalConfig `mapstructure:"journal"`
	Metrics     MetricsConfig `mapstructure:"metrics"`
	Insight     InsightConfig `mapstructure:"insight"`
	UI          UIConfig      `mapstructure:"ui"`
	Credentials Credentials   `mapstructure:"-"` // Loaded separately
}

// JournalConfig holds journal-wide settings.
type JournalConfig struct {
	UserID         string  `mapstructure:"user_id"`
	DatabasePath   string  `mapstructure:"database_path"`
	DefaultCapital float64 `mapstructure:"default_capital"`
}

// MetricsConfig tunes the performance-metrics calculator.
type MetricsConfig struct {
	RiskFreeRate    float64 `mapstructure:"risk_free_rate"`
	CacheTTLMinutes int     `mapstructure:"cache_ttl_minutes"`
}

// InsightConfig holds AI commentary configuration.
type InsightConfig struct {
	Model                string `mapstructure:"model"`
	CommentaryTTLMinutes int    `mapstructure:"commentary_ttl_minutes"`
	RecentTrades         int    `mapstructure:"recent_trades"`
}

// UIConfig holds output-related configuration.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled"`
	DateFormat   string `mapstructure:"date_format"`
	TimeFormat   string `mapstructure:"time_format"`
}

// Credentials holds API credentials.
type Credentials struct {
	OpenAI OpenAICredentials `mapstructure:"openai"`
}

// OpenAICredentials holds OpenAI API credentials.
type OpenAICredentials struct {
	APIKey string `mapstructure:"api_key"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/trade-journal"
	}
	return filepath.Join(home, ".config", "trade-journal")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{}

	if err := loadConfigFile(configDir, cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	if err := loadCredentials(configDir, &cfg.Credentials); err != nil {
		return nil, fmt.Errorf("loading credentials.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir string, target *Config) error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	v.SetDefault("journal.user_id", "default")
	v.SetDefault("journal.database_path", filepath.Join(configDir, "journal.db"))
	v.SetDefault("journal.default_capital", 10000.0)
	v.SetDefault("metrics.risk_free_rate", 0.02)
	v.SetDefault("metrics.cache_ttl_minutes", 5)
	v.SetDefault("insight.model", "gpt-4o-mini")
	v.SetDefault("insight.commentary_ttl_minutes", 30)
	v.SetDefault("insight.recent_trades", 10)
	v.SetDefault("ui.color_enabled", true)
	v.SetDefault("ui.date_format", "2006-01-02")
	v.SetDefault("ui.time_format", "15:04:05")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
		// Config file not found: write the template, then proceed on defaults.
		if err := createTemplateConfig(configDir); err != nil {
			return err
		}
	}

	return v.Unmarshal(target)
}

func loadCredentials(configDir string, creds *Credentials) error {
	v := viper.New()
	v.SetConfigName("credentials")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return createTemplateCredentials(configDir)
		}
		return err
	}

	return v.Unmarshal(creds)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Credentials.OpenAI.APIKey = v
	}
	if v := os.Getenv("TRADE_JOURNAL_USER"); v != "" {
		cfg.Journal.UserID = v
	}
	if v := os.Getenv("TRADE_JOURNAL_DB"); v != "" {
		cfg.Journal.DatabasePath = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Journal.UserID == "" {
		return fmt.Errorf("journal.user_id must not be empty")
	}
	if c.Journal.DefaultCapital <= 0 {
		return fmt.Errorf("journal.default_capital must be positive")
	}
	if c.Metrics.RiskFreeRate < 0 || c.Metrics.RiskFreeRate >= 1 {
		return fmt.Errorf("metrics.risk_free_rate must be in [0, 1)")
	}
	if c.Metrics.CacheTTLMinutes < 0 {
		return fmt.Errorf("metrics.cache_ttl_minutes must be non-negative")
	}
	if c.Insight.RecentTrades < 0 {
		return fmt.Errorf("insight.recent_trades must be non-negative")
	}
	return nil
}

// CacheTTL returns the metrics memo TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Metrics.CacheTTLMinutes) * time.Minute
}

// CommentaryTTL returns the insight memo TTL as a duration.
func (c *Config) CommentaryTTL() time.Duration {
	return time.Duration(c.Insight.CommentaryTTLMinutes) * time.Minute
}

const configTemplate = `# trade-journal configuration

[journal]
# user_id = "default"
# database_path = "~/.config/trade-journal/journal.db"
# default_capital = 10000.0

[metrics]
# risk_free_rate = 0.02
# cache_ttl_minutes = 5

[insight]
# model = "gpt-4o-mini"
# commentary_ttl_minutes = 30
# recent_trades = 10

[ui]
# color_enabled = true
# date_format = "2006-01-02"
# time_format = "15:04:05"
`

const credentialsTemplate = `# trade-journal credentials
# The OPENAI_API_KEY environment variable overrides this file.

[openai]
# api_key = ""
`

func createTemplateConfig(configDir string) error {
	return writeTemplate(configDir, "config.toml", configTemplate)
}

func createTemplateCredentials(configDir string) error {
	return writeTemplate(configDir, "credentials.toml", credentialsTemplate)
}

func writeTemplate(configDir, name, content string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}
	path := filepath.Join(configDir, name)
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return os.WriteFile(path, []byte(content), 0600)
}
