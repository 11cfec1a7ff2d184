package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the screener.
// All environment variables are read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database (optional; enables the Postgres universe source)
	Database DatabaseConfig

	// Redis (optional; enables market data caching)
	Redis RedisConfig

	// Market data provider
	Provider ProviderConfig

	// Scan behavior
	Scan ScanConfig

	// Paths
	UniverseDir  string // directory of <NAME>.csv universe files
	StrategyFile string // YAML strategy configuration

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
	MetricsPort    string
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	URL string

	// Connection pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Enabled reports whether a database URL was configured.
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool

	// TTL for cached price series and fundamentals
	CacheTTL time.Duration
}

// ProviderConfig holds market data provider configuration.
type ProviderConfig struct {
	ChartBaseURL string
	QuoteBaseURL string
	Timeout      time.Duration

	// Rate limit applied to all provider requests
	RequestsPerSec float64
	Burst          int

	// Suffix appended to symbols before lookup (e.g. ".NS" for NSE)
	SymbolSuffix string
}

// ScanConfig holds default scan parameters.
type ScanConfig struct {
	Workers    int // concurrent fetch workers
	BatchLimit int // max tickers per scan; 0 = no limit

	// Scheduled scans (serve mode). Empty ScheduleCron disables them.
	ScheduleCron     string // cron expression with seconds field
	ScheduleUniverse string // universe scanned on the schedule
}

// Load reads configuration from environment variables.
// This is the only function that calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8090"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			CacheTTL: getEnvAsDuration("REDIS_CACHE_TTL", "15m"),
		},

		Provider: ProviderConfig{
			ChartBaseURL:   getEnv("PROVIDER_CHART_URL", "https://query1.finance.yahoo.com/v8/finance/chart"),
			QuoteBaseURL:   getEnv("PROVIDER_QUOTE_URL", "https://finance.yahoo.com/quote"),
			Timeout:        getEnvAsDuration("PROVIDER_TIMEOUT", "15s"),
			RequestsPerSec: getEnvAsFloat("PROVIDER_RPS", 4.0),
			Burst:          getEnvAsInt("PROVIDER_BURST", 4),
			SymbolSuffix:   getEnv("PROVIDER_SYMBOL_SUFFIX", ".NS"),
		},

		Scan: ScanConfig{
			Workers:          getEnvAsInt("SCAN_WORKERS", 8),
			BatchLimit:       getEnvAsInt("SCAN_BATCH_LIMIT", 0),
			ScheduleCron:     getEnv("SCAN_SCHEDULE", ""),
			ScheduleUniverse: getEnv("SCAN_SCHEDULE_UNIVERSE", "NIFTY50"),
		},

		UniverseDir:  getEnv("UNIVERSE_DIR", "config/universes"),
		StrategyFile: getEnv("STRATEGY_FILE", "config/strategy/default.yaml"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", false),
		MetricsPort:    getEnv("METRICS_PORT", "9090"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set.
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Scan.Workers < 1 {
		return fmt.Errorf("SCAN_WORKERS must be at least 1")
	}

	if c.Provider.RequestsPerSec <= 0 {
		return fmt.Errorf("PROVIDER_RPS must be positive")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations.
func loadEnvFile() {
	paths := []string{
		".env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
