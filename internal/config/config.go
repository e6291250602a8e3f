package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Port           string
	Environment    string // "development" or "production"
	AllowedOrigins string
	RedisURL       string // optional second cache layer; empty disables Redis

	SourcesFile     string // lane data source registry (YAML), hot reloaded
	UpstreamTimeout time.Duration
	FanOutTimeout   time.Duration // per-turn budget when the caller waits for all sources
	CacheTTL        time.Duration
	CacheCleanup    time.Duration
	HistoryDays     int // trailing window for historical data lookups

	ProbeEnabled  bool
	ProbeSchedule string // cron expression for source health probes
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "3001"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173"),
		RedisURL:       getEnv("REDIS_URL", ""),

		SourcesFile:     getEnv("SOURCES_FILE", "sources.yaml"),
		UpstreamTimeout: getDurationEnv("UPSTREAM_TIMEOUT", 30*time.Second),
		FanOutTimeout:   getDurationEnv("FANOUT_TIMEOUT", 45*time.Second),
		CacheTTL:        getDurationEnv("QUOTE_CACHE_TTL", 30*time.Minute),
		CacheCleanup:    getDurationEnv("QUOTE_CACHE_CLEANUP", 10*time.Minute),
		HistoryDays:     getIntEnv("HISTORY_DAYS", 30),

		ProbeEnabled:  getBoolEnv("PROBE_ENABLED", true),
		ProbeSchedule: getEnv("PROBE_SCHEDULE", "*/5 * * * *"),
	}
}

// IsProduction returns true when the server runs with production settings
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
