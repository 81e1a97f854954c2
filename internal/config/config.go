// Package config provides configuration loading and management for the application.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds all application configuration
type Config struct {
	// HTTP server port
	Port string

	// JSON-RPC endpoint of the chain node
	NodeRPCURL string

	// Redis connection URL. Empty selects the in-memory store.
	RedisURL string

	// Average seconds per block, used for historical block estimation
	BlockInterval float64

	// Timeout applied to individual chain queries
	ChainTimeout time.Duration

	// Background job cadence
	SweepInterval        time.Duration
	MetadataSyncInterval time.Duration

	// Sweep worker pool size
	SweepWorkers int

	// Read cache TTL for the validators listing
	CacheTTL time.Duration

	// OpenTelemetry endpoint for observability
	OtelEndpoint string

	// API rate limiting
	RateLimitRPS   float64
	RateLimitBurst int

	// Shared key guarding the admin endpoints. Empty disables them.
	AdminKey string

	// Circuit breaker tuning
	BreakerFailureThreshold int
	BreakerResetDelay       time.Duration
}

// Load creates a new Config from environment variables. A .env file in
// the working directory is merged in first when present.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		logrus.Debug("Loaded environment from .env file")
	}

	return Config{
		Port:                    GetEnvOrDefault("PORT", "8080"),
		NodeRPCURL:              GetEnvOrDefault("NODE_RPC_URL", "http://localhost:9933"),
		RedisURL:                GetEnvOrDefault("REDIS_URL", ""),
		BlockInterval:           GetEnvAsFloat("BLOCK_INTERVAL", 12.0),
		ChainTimeout:            GetEnvAsDuration("CHAIN_TIMEOUT", 30*time.Second),
		SweepInterval:           GetEnvAsDuration("APY_SWEEP_INTERVAL", 30*time.Minute),
		MetadataSyncInterval:    GetEnvAsDuration("METADATA_SYNC_INTERVAL", time.Hour),
		SweepWorkers:            GetEnvAsInt("SWEEP_WORKERS", 8),
		CacheTTL:                GetEnvAsDuration("CACHE_TTL", 5*time.Minute),
		OtelEndpoint:            GetEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		RateLimitRPS:            GetEnvAsFloat("RATE_LIMIT_RPS", 10.0),
		RateLimitBurst:          GetEnvAsInt("RATE_LIMIT_BURST", 20),
		AdminKey:                GetEnvOrDefault("ADMIN_KEY", ""),
		BreakerFailureThreshold: GetEnvAsInt("BREAKER_FAILURE_THRESHOLD", 5),
		BreakerResetDelay:       GetEnvAsDuration("BREAKER_RESET_DELAY", 5*time.Minute),
	}
}

// GetEnv retrieves an environment variable and whether it exists
func GetEnv(key string) (string, bool) {
	value, exists := os.LookupEnv(key)
	return value, exists
}

// GetEnvOrDefault retrieves an environment variable or returns the default value if not set
func GetEnvOrDefault(key, defaultValue string) string {
	if value, exists := GetEnv(key); exists {
		return value
	}
	return defaultValue
}

// GetEnvAsInt retrieves an environment variable as an integer with a default value
func GetEnvAsInt(key string, defaultValue int) int {
	if value, exists := GetEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// GetEnvAsFloat retrieves an environment variable as a float with a default value
func GetEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := GetEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// GetEnvAsDuration retrieves an environment variable as a duration with a default value
func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := GetEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
