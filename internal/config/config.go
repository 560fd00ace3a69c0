package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/survey-scoring-server/internal/domain"
)

// Manager loads and holds the application configuration using Viper
type Manager struct {
	config *domain.Config
}

// NewManager creates a new configuration manager
func NewManager() (*Manager, error) {
	m := &Manager{}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from file, environment, and defaults
func (m *Manager) loadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/survey-scoring-server/")

	viper.SetEnvPrefix("SURVEY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	m.setDefaults()

	// Config file is optional; defaults and env vars cover everything.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

// setDefaults sets default configuration values
func (m *Manager) setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	// Database defaults
	viper.SetDefault("database.path", "survey_results.db")

	// An empty criteria path selects the embedded default table.
	viper.SetDefault("criteria.path", "")

	// Demographics cache defaults
	viper.SetDefault("cache.size", 1024)
	viper.SetDefault("cache.ttl", "1h")

	// Report generation defaults
	viper.SetDefault("report.enabled", false)
	viper.SetDefault("report.base_url", "https://api.openai.com/v1")
	viper.SetDefault("report.api_key", "")
	viper.SetDefault("report.model", "gpt-4o-mini")
	viper.SetDefault("report.timeout", "60s")
	viper.SetDefault("report.rate_limit", 2)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetServerConfig returns server configuration
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// GetReportConfig returns report generation configuration
func (m *Manager) GetReportConfig() *domain.ReportConfig {
	return &m.config.Report
}

// Reload reloads the configuration
func (m *Manager) Reload() error {
	return m.loadConfig()
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	config := m.config

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}

	if config.Cache.Size <= 0 {
		return fmt.Errorf("cache size must be positive: %d", config.Cache.Size)
	}
	if config.Cache.TTL <= 0 {
		return fmt.Errorf("cache ttl must be positive: %s", config.Cache.TTL)
	}

	if config.Report.Enabled {
		if config.Report.BaseURL == "" {
			return fmt.Errorf("report base URL is required when report generation is enabled")
		}
		if config.Report.Model == "" {
			return fmt.Errorf("report model is required when report generation is enabled")
		}
		if config.Report.RateLimit <= 0 {
			return fmt.Errorf("report rate limit must be positive: %d", config.Report.RateLimit)
		}
	}

	switch config.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %s", config.Logging.Level)
	}

	return nil
}
