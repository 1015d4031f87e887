// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	// DefaultConfigDir is the directory name for compliance configuration.
	DefaultConfigDir = ".compliance"
	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "config.yaml"
	// DefaultTenantsFile is the default tenants file name.
	DefaultTenantsFile = "tenants.yaml"
	// DefaultDatabaseFile is the per-tenant SQLite file name.
	DefaultDatabaseFile = "compliance.db"
)

// Insight providers.
const (
	ProviderNone      = "none"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config holds static infrastructure configuration (read-only after init).
// Environment variables override YAML values.
type Config struct {
	Insights InsightsConfig `yaml:"insights"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Logging  LoggingConfig  `yaml:"logging"`
	HTTP     HTTPConfig     `yaml:"http"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Monitor  MonitorConfig  `yaml:"monitor"`
	Engine   EngineConfig   `yaml:"engine"`
}

// InsightsConfig holds configuration for the remote insight provider.
type InsightsConfig struct {
	Provider string        `yaml:"provider" env:"COMPLIANCE_INSIGHTS_PROVIDER" env-default:"none"`
	Model    string        `yaml:"model" env:"COMPLIANCE_INSIGHTS_MODEL"`
	BaseURL  string        `yaml:"base_url,omitempty" env:"COMPLIANCE_INSIGHTS_BASE_URL"`
	Timeout  time.Duration `yaml:"timeout" env:"COMPLIANCE_INSIGHTS_TIMEOUT" env-default:"30s"`

	// Keys may be set in YAML but usually come from the environment.
	OpenAIAPIKey    string `yaml:"openai_api_key,omitempty" env:"OPENAI_API_KEY"`
	AnthropicAPIKey string `yaml:"anthropic_api_key,omitempty" env:"ANTHROPIC_API_KEY"`
}

// APIKey returns the key for the configured provider.
func (c *InsightsConfig) APIKey() string {
	switch c.Provider {
	case ProviderOpenAI:
		return c.OpenAIAPIKey
	case ProviderAnthropic:
		return c.AnthropicAPIKey
	default:
		return ""
	}
}

// SQLiteConfig holds configuration for the SQLite store.
type SQLiteConfig struct {
	// Path overrides the database location. When empty the path is
	// computed per tenant using SQLitePathForTenant.
	Path string `yaml:"path,omitempty" env:"COMPLIANCE_SQLITE_PATH"`
}

// LoggingConfig holds zap logger settings.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"COMPLIANCE_LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"COMPLIANCE_LOG_FORMAT" env-default:"console"` // console or json
}

// HTTPConfig holds the presentation API listener settings.
type HTTPConfig struct {
	Addr string `yaml:"addr" env:"COMPLIANCE_HTTP_ADDR" env-default:"127.0.0.1:8080"`
}

// MetricsConfig holds the Prometheus exposition settings for the monitor.
type MetricsConfig struct {
	// Addr is where the monitor serves /metrics. Empty disables the listener;
	// the HTTP API always serves /metrics on its own address.
	Addr string `yaml:"addr,omitempty" env:"COMPLIANCE_METRICS_ADDR"`
}

// MonitorConfig holds the scheduled re-evaluation settings.
type MonitorConfig struct {
	Schedule string `yaml:"schedule" env:"COMPLIANCE_MONITOR_SCHEDULE" env-default:"*/15 * * * *"`
}

// EngineConfig holds aggregation tunables.
type EngineConfig struct {
	CheckLimit         int `yaml:"check_limit" env:"COMPLIANCE_CHECK_LIMIT" env-default:"100"`
	MaxDocumentActions int `yaml:"max_document_actions" env:"COMPLIANCE_MAX_DOCUMENT_ACTIONS" env-default:"3"`
	MaxCaseActions     int `yaml:"max_case_actions" env:"COMPLIANCE_MAX_CASE_ACTIONS" env-default:"3"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Insights: InsightsConfig{
			Provider: ProviderNone,
			Timeout:  30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		HTTP: HTTPConfig{
			Addr: "127.0.0.1:8080",
		},
		Monitor: MonitorConfig{
			Schedule: "*/15 * * * *",
		},
		Engine: EngineConfig{
			CheckLimit:         100,
			MaxDocumentActions: 3,
			MaxCaseActions:     3,
		},
	}
}

// Load loads configuration from the .compliance directory in the given path,
// applying environment variable overrides.
func Load(basePath string) (*Config, error) {
	configFile := ConfigFilePath(basePath)

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s (run 'compliance init' first)", configFile)
	}

	cfg := &Config{}
	if err := cleanenv.ReadConfig(configFile, cfg); err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks values that cleanenv cannot.
func (c *Config) Validate() error {
	switch c.Insights.Provider {
	case ProviderNone, ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("insights.provider %q (valid: none, openai, anthropic)", c.Insights.Provider)
	}
	if c.Engine.CheckLimit <= 0 {
		return fmt.Errorf("engine.check_limit must be positive, got %d", c.Engine.CheckLimit)
	}
	if c.Engine.MaxDocumentActions < 0 || c.Engine.MaxCaseActions < 0 {
		return fmt.Errorf("engine action caps must not be negative")
	}
	return nil
}

// ConfigDir returns the path to the .compliance config directory.
func ConfigDir(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir)
}

// ConfigFilePath returns the path to the config file.
func ConfigFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)
}

// TenantsFilePath returns the path to the tenants file.
func TenantsFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultTenantsFile)
}

// Exists checks if a compliance config exists in the given path.
func Exists(basePath string) bool {
	_, err := os.Stat(ConfigFilePath(basePath))
	return err == nil
}
