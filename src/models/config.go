package models

// MConfig Structure
type MConfig struct {
	Name      string           `yaml:"name"`
	Host      string           `yaml:"host"`
	Port      int              `yaml:"port"`
	LogLevel  string           `yaml:"log_level"`
	GrpcHost  string           `yaml:"grpc_host"`
	GrpcPort  int              `yaml:"grpc_port"`
	Storage   MStorageConfig   `yaml:"storage"`
	Network   MNetworkConfig   `yaml:"network"`
	Provider  MProviderConfig  `yaml:"provider"`
	Dashboard MDashboardConfig `yaml:"dashboard"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"` // none, sqlite, postgres
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
	RetentionDays      int    `yaml:"retention_days"`
}

type MNetworkConfig struct {
	Enabled            bool     `yaml:"enabled"`
	Proxies            []string `yaml:"proxies"`
	RequestTimeout     int      `yaml:"timeout"`
	MaxRetries         int      `yaml:"retries"`
	RetryDelayMs       int      `yaml:"retry_delay_ms"`
	ConcurrentRequests int      `yaml:"concurrent_requests"`
	UserAgent          string   `yaml:"user_agent"`
}

type MProviderConfig struct {
	BaseURL          string   `yaml:"base_url"`
	FallbackBaseURLs []string `yaml:"fallback_base_urls"` // tried in order when base_url fails
	SummaryBaseURL   string   `yaml:"summary_base_url"`
	LogoBaseURL      string   `yaml:"logo_base_url"`
}

type MDashboardConfig struct {
	DefaultTicker    string   `yaml:"default_ticker"`
	DefaultPeriod    string   `yaml:"default_period"`
	Benchmark        string   `yaml:"benchmark"`
	BandLookback     int      `yaml:"band_lookback"`
	BandStdDev       float64  `yaml:"band_std_dev"`
	ForecastWeeksMax int      `yaml:"forecast_weeks_max"`
	Overlays         []string `yaml:"overlays"`
}
