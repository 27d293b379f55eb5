// Package config provides environment-driven configuration for
// TelemetryFlow.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds the complete application configuration.
type Config struct {
	Engine    EngineConfig
	Ingestion IngestionConfig
	Analysis  AnalysisCacheConfig
	Logging   LoggingConfig
}

// EngineConfig configures a pkg/engine.Engine instance.
type EngineConfig struct {
	StepTimeout         time.Duration `validate:"required,gt=0"`
	MaxSteps            int           `validate:"required,gte=10000"`
	ActionCacheCapacity int           `validate:"required,gt=0"`
}

// IngestionConfig configures the pkg/telemetry.Pipeline.
type IngestionConfig struct {
	MaxClockSkew  time.Duration `validate:"required,gt=0"`
	RollingWindow time.Duration `validate:"required,gt=0"`
	BatchSize     int           `validate:"required,gt=0"`
}

// AnalysisCacheConfig selects and configures pkg/telemetry's analysis
// result cache.
type AnalysisCacheConfig struct {
	Backend string        `validate:"required,oneof=memory redis"`
	TTL     time.Duration `validate:"required,gt=0,lte=30s"`
	RedisURL string       `validate:"required_if=Backend redis"`
}

// LoggingConfig configures internal/logger.
type LoggingConfig struct {
	Level  string `validate:"required,oneof=debug info warn error"`
	Format string `validate:"required,oneof=json text"`
}

var validate = validator.New()

// Load reads configuration from environment variables (via godotenv,
// falling back to process env and defaults) and validates it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Engine: EngineConfig{
			StepTimeout:         getEnvAsDuration("TELEMETRYFLOW_ENGINE_STEP_TIMEOUT", 5*time.Second),
			MaxSteps:            getEnvAsInt("TELEMETRYFLOW_ENGINE_MAX_STEPS", 10_000),
			ActionCacheCapacity: getEnvAsInt("TELEMETRYFLOW_ENGINE_ACTION_CACHE_CAPACITY", 100),
		},
		Ingestion: IngestionConfig{
			MaxClockSkew:  getEnvAsDuration("TELEMETRYFLOW_INGESTION_MAX_CLOCK_SKEW", 60*time.Second),
			RollingWindow: getEnvAsDuration("TELEMETRYFLOW_INGESTION_ROLLING_WINDOW", 60*time.Second),
			BatchSize:     getEnvAsInt("TELEMETRYFLOW_INGESTION_BATCH_SIZE", 100),
		},
		Analysis: AnalysisCacheConfig{
			Backend:  getEnv("TELEMETRYFLOW_ANALYSIS_CACHE_BACKEND", "memory"),
			TTL:      getEnvAsDuration("TELEMETRYFLOW_ANALYSIS_CACHE_TTL", 30*time.Second),
			RedisURL: getEnv("TELEMETRYFLOW_ANALYSIS_CACHE_REDIS_URL", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnv("TELEMETRYFLOW_LOG_LEVEL", "info"),
			Format: getEnv("TELEMETRYFLOW_LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate runs struct-tag validation over every sub-config.
func (c *Config) Validate() error {
	if err := validate.Struct(c.Engine); err != nil {
		return fmt.Errorf("engine config: %w", err)
	}
	if err := validate.Struct(c.Ingestion); err != nil {
		return fmt.Errorf("ingestion config: %w", err)
	}
	if err := validate.Struct(c.Analysis); err != nil {
		return fmt.Errorf("analysis cache config: %w", err)
	}
	if err := validate.Struct(c.Logging); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	return nil
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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
