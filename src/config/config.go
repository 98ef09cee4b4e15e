package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"market-dashboard/src/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// Defaults applied before validation when a key is left out of the YAML file.
const (
	DefaultBenchmark        = "^GSPC"
	DefaultBandLookback     = 10
	DefaultBandStdDev       = 2.0
	DefaultForecastWeeksMax = 52
	DefaultRetentionDays    = 30
	DefaultProviderBaseURL  = "https://query1.finance.yahoo.com"
	DefaultFallbackBaseURL  = "https://query2.finance.yahoo.com"
	DefaultSummaryBaseURL   = "https://query2.finance.yahoo.com"
	DefaultLogoBaseURL      = "https://logo.clearbit.com"
)

// -----------------------------------------------------------------------------

// NewConfig creates a Config instance from a YAML file, then applies .env / environment overrides.
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	return Parse(data)
}

// -----------------------------------------------------------------------------

// Parse builds a Config from raw YAML.
func Parse(data []byte) (*Config, error) {
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.applyDefaults()

	// .env is optional; a missing file is not an error
	_ = godotenv.Load()
	if err := config.applyEnv(); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
	if c.Storage.DBType == "" {
		c.Storage.DBType = "none"
	}
	if c.Storage.RetentionDays == 0 {
		c.Storage.RetentionDays = DefaultRetentionDays
	}
	if c.Network.ConcurrentRequests == 0 {
		c.Network.ConcurrentRequests = 4
	}
	if c.Network.RetryDelayMs == 0 {
		c.Network.RetryDelayMs = 500
	}
	if c.Provider.BaseURL == "" {
		c.Provider.BaseURL = DefaultProviderBaseURL
	}
	if c.Provider.FallbackBaseURLs == nil {
		c.Provider.FallbackBaseURLs = []string{DefaultFallbackBaseURL}
	}
	if c.Provider.SummaryBaseURL == "" {
		c.Provider.SummaryBaseURL = DefaultSummaryBaseURL
	}
	if c.Provider.LogoBaseURL == "" {
		c.Provider.LogoBaseURL = DefaultLogoBaseURL
	}
	d := &c.Dashboard
	if d.DefaultTicker == "" {
		d.DefaultTicker = "MSFT"
	}
	if d.DefaultPeriod == "" {
		d.DefaultPeriod = models.PeriodSixMonths
	}
	if d.Benchmark == "" {
		d.Benchmark = DefaultBenchmark
	}
	if d.BandLookback == 0 {
		d.BandLookback = DefaultBandLookback
	}
	if d.BandStdDev == 0 {
		d.BandStdDev = DefaultBandStdDev
	}
	if d.ForecastWeeksMax == 0 {
		d.ForecastWeeksMax = DefaultForecastWeeksMax
	}
}

// -----------------------------------------------------------------------------

// applyEnv lets deployment secrets stay out of the YAML file.
func (c *Config) applyEnv() error {
	if v := os.Getenv("DASHBOARD_DB_CONNECTION_STRING"); v != "" {
		c.Storage.DBConnectionString = v
	}
	if v := os.Getenv("DASHBOARD_DB_TYPE"); v != "" {
		c.Storage.DBType = v
	}
	if v := os.Getenv("DASHBOARD_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("DASHBOARD_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid DASHBOARD_PORT %q: %w", v, err)
		}
		c.Port = port
	}
	return nil
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARNING", "ERROR":
	default:
		return fmt.Errorf("unknown log level: %s", c.LogLevel)
	}

	// Server
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}
	if c.GrpcPort != 0 && (c.GrpcPort <= 1024 || c.GrpcPort > 65535) {
		return fmt.Errorf("invalid grpc port number: %d", c.GrpcPort)
	}

	// Storage
	switch c.Storage.DBType {
	case "none":
	case "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return fmt.Errorf("database connection string cannot be empty for postgres")
		}
	default:
		return fmt.Errorf("unknown database type: %s", c.Storage.DBType)
	}
	if c.Storage.RetentionDays <= 0 {
		return fmt.Errorf("retention days must be greater than 0")
	}

	// Network
	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.Network.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if c.Network.RetryDelayMs < 0 {
		return fmt.Errorf("retry delay cannot be negative")
	}
	if c.Network.ConcurrentRequests <= 0 {
		return fmt.Errorf("concurrent requests must be greater than 0")
	}

	// Dashboard
	d := c.Dashboard
	if !isPeriodToken(d.DefaultPeriod) || d.DefaultPeriod == models.PeriodCustom {
		return fmt.Errorf("invalid default period: %q", d.DefaultPeriod)
	}
	if d.BandLookback < 1 {
		return fmt.Errorf("band lookback must be at least 1")
	}
	if d.BandStdDev < 0 {
		return fmt.Errorf("band std dev cannot be negative")
	}
	if d.ForecastWeeksMax < 1 {
		return fmt.Errorf("forecast weeks max must be at least 1")
	}
	for _, o := range d.Overlays {
		switch o {
		case "sma", "ema", "rsi":
		default:
			return fmt.Errorf("unknown overlay: %s", o)
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

func isPeriodToken(token string) bool {
	for _, t := range models.PeriodTokens {
		if t == token {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
