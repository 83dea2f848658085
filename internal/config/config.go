package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the Vector-Uplift application.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	ClickHouse ClickHouseConfig
	Auth       AuthConfig
	RateLimit  RateLimitConfig
	Log        LogConfig
	Metrics    MetricsConfig
	Engine     EngineConfig
}

type ServerConfig struct {
	Addr            string
	Env             string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	MinConns int
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// ReportTTL bounds how long computed reports stay cached.
	ReportTTL time.Duration
}

// ClickHouseConfig configures the daily-metric warehouse connection.
type ClickHouseConfig struct {
	Enabled  bool
	Addr     string
	Database string
	User     string
	Password string
}

type AuthConfig struct {
	Enabled   bool
	MasterKey string
	SkipPaths []string
}

type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
}

type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// EngineConfig holds the attribution engine knobs. They are copied
// into an immutable uplift.Config at startup; the engine never reads
// the environment itself.
type EngineConfig struct {
	BaselineWindowDays  int
	PostWindowDays      int
	LookbackCeilingDays int
	// ChannelWindowOverrides comes from a "channel:days,channel:days"
	// env value, e.g. "newsletter:5,youtube:14".
	ChannelWindowOverrides map[string]int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Addr:            getEnv("VECTOR_UPLIFT_HTTP_ADDR", ":8080"),
			Env:             getEnv("VECTOR_UPLIFT_ENV", "development"),
			ShutdownTimeout: getDurationEnv("VECTOR_UPLIFT_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("VECTOR_UPLIFT_DB_HOST", "localhost"),
			Port:     getIntEnv("VECTOR_UPLIFT_DB_PORT", 5432),
			User:     getEnv("VECTOR_UPLIFT_DB_USER", "uplift"),
			Password: getEnv("VECTOR_UPLIFT_DB_PASSWORD", "uplift_secret"),
			DBName:   getEnv("VECTOR_UPLIFT_DB_NAME", "uplift"),
			SSLMode:  getEnv("VECTOR_UPLIFT_DB_SSLMODE", "disable"),
			MaxConns: getIntEnv("VECTOR_UPLIFT_DB_MAX_CONNS", 25),
			MinConns: getIntEnv("VECTOR_UPLIFT_DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Addr:      getEnv("VECTOR_UPLIFT_REDIS_ADDR", "localhost:6379"),
			Password:  getEnv("VECTOR_UPLIFT_REDIS_PASSWORD", ""),
			DB:        getIntEnv("VECTOR_UPLIFT_REDIS_DB", 0),
			ReportTTL: getDurationEnv("VECTOR_UPLIFT_REPORT_TTL", 6*time.Hour),
		},
		ClickHouse: ClickHouseConfig{
			Enabled:  getBoolEnv("VECTOR_UPLIFT_CLICKHOUSE_ENABLED", false),
			Addr:     getEnv("VECTOR_UPLIFT_CLICKHOUSE_ADDR", "localhost:9000"),
			Database: getEnv("VECTOR_UPLIFT_CLICKHOUSE_DB", "uplift"),
			User:     getEnv("VECTOR_UPLIFT_CLICKHOUSE_USER", "default"),
			Password: getEnv("VECTOR_UPLIFT_CLICKHOUSE_PASSWORD", ""),
		},
		Auth: AuthConfig{
			Enabled:   getBoolEnv("VECTOR_UPLIFT_AUTH_ENABLED", true),
			MasterKey: getEnv("VECTOR_UPLIFT_API_KEY_MASTER", ""),
			SkipPaths: getSliceEnv("VECTOR_UPLIFT_AUTH_SKIP_PATHS", []string{"/health", "/metrics"}),
		},
		RateLimit: RateLimitConfig{
			Enabled: getBoolEnv("VECTOR_UPLIFT_RATE_LIMIT_ENABLED", true),
			RPS:     getFloatEnv("VECTOR_UPLIFT_RATE_LIMIT_RPS", 100),
			Burst:   getIntEnv("VECTOR_UPLIFT_RATE_LIMIT_BURST", 20),
		},
		Log: LogConfig{
			Level:  getEnv("VECTOR_UPLIFT_LOG_LEVEL", "info"),
			Format: getEnv("VECTOR_UPLIFT_LOG_FORMAT", "json"),
		},
		Metrics: MetricsConfig{
			Enabled: getBoolEnv("VECTOR_UPLIFT_METRICS_ENABLED", true),
			Path:    getEnv("VECTOR_UPLIFT_METRICS_PATH", "/metrics"),
		},
		Engine: EngineConfig{
			BaselineWindowDays:     getIntEnv("VECTOR_UPLIFT_BASELINE_WINDOW_DAYS", 14),
			PostWindowDays:         getIntEnv("VECTOR_UPLIFT_POST_WINDOW_DAYS", 7),
			LookbackCeilingDays:    getIntEnv("VECTOR_UPLIFT_LOOKBACK_CEILING_DAYS", 60),
			ChannelWindowOverrides: getWindowMapEnv("VECTOR_UPLIFT_CHANNEL_WINDOWS"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration is present and the
// engine knobs are usable; the engine itself assumes a valid config.
func (c *Config) Validate() error {
	if c.Auth.Enabled && c.Auth.MasterKey == "" {
		return fmt.Errorf("VECTOR_UPLIFT_API_KEY_MASTER is required when auth is enabled")
	}
	if c.Engine.BaselineWindowDays <= 0 {
		return fmt.Errorf("baseline window days must be positive")
	}
	if c.Engine.PostWindowDays <= 0 {
		return fmt.Errorf("post window days must be positive")
	}
	if c.Engine.LookbackCeilingDays < c.Engine.BaselineWindowDays {
		return fmt.Errorf("lookback ceiling must be at least the baseline window")
	}
	for ch, days := range c.Engine.ChannelWindowOverrides {
		if days <= 0 {
			return fmt.Errorf("window override for channel %q must be positive", ch)
		}
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Helper functions for reading environment variables

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getFloatEnv(key string, def float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getSliceEnv(key string, def []string) []string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				result = append(result, p)
			}
		}
		return result
	}
	return def
}

// getWindowMapEnv parses "channel:days,channel:days" pairs. Malformed
// pairs are skipped.
func getWindowMapEnv(key string) map[string]int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	out := make(map[string]int)
	for _, pair := range strings.Split(v, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), ":", 2)
		if len(parts) != 2 {
			continue
		}
		days, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			continue
		}
		ch := strings.TrimSpace(parts[0])
		if ch != "" {
			out[ch] = days
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
