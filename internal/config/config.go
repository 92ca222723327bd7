// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port          string
	FrontendURL   string
	DBPath        string
	CatalogPath   string
	FollowupMode  string // "static" = fixed knowledge checks, "dynamic" = generated follow-ups
	LLM           LLMConfig
	RateLimit     RateLimitConfig
	TranscriptLog TranscriptLogConfig
}

// LLMConfig controls the generative backend connection.
type LLMConfig struct {
	Enabled       bool
	Endpoint      string
	Model         string
	FallbackModel string
	Timeout       time.Duration
	MaxRetries    int
}

// RateLimitConfig throttles chat requests per learner.
type RateLimitConfig struct {
	RequestsPerWindow int
	WindowDuration    time.Duration
}

// TranscriptLogConfig controls NDJSON transcript event logging.
type TranscriptLogConfig struct {
	Enabled   bool
	Dir       string
	QueueSize int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	queueSize := getEnvInt("TRANSCRIPT_LOG_QUEUE_SIZE", 1000)
	if queueSize <= 0 {
		queueSize = 1000
	}

	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		FrontendURL:  getEnv("FRONTEND_URL", ""),
		DBPath:       getEnv("DB_PATH", "./data/advisor.db"),
		CatalogPath:  getEnv("CATALOG_PATH", ""),
		FollowupMode: getEnv("FOLLOWUP_MODE", "static"),
		LLM: LLMConfig{
			Enabled:       getEnvBool("LLM_ENABLED", true),
			Endpoint:      getEnv("LLM_ENDPOINT", "http://localhost:11434"),
			Model:         getEnv("LLM_MODEL", "llama3.2"),
			FallbackModel: getEnv("LLM_FALLBACK_MODEL", ""),
			Timeout:       getEnvDuration("LLM_TIMEOUT", 30*time.Second),
			MaxRetries:    getEnvInt("LLM_MAX_RETRIES", 1),
		},
		RateLimit: RateLimitConfig{
			RequestsPerWindow: getEnvInt("RATE_LIMIT_REQUESTS", 20),
			WindowDuration:    getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		TranscriptLog: TranscriptLogConfig{
			Enabled:   getEnvBool("TRANSCRIPT_LOG_ENABLED", true),
			Dir:       getEnv("TRANSCRIPT_LOG_DIR", "./data/logs/transcripts"),
			QueueSize: queueSize,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.FollowupMode != "static" && c.FollowupMode != "dynamic" {
		return fmt.Errorf("FOLLOWUP_MODE must be \"static\" or \"dynamic\", got %q", c.FollowupMode)
	}
	if c.LLM.Enabled && c.LLM.Endpoint == "" {
		return fmt.Errorf("LLM_ENDPOINT cannot be empty when LLM_ENABLED is true")
	}
	if c.RateLimit.RequestsPerWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be > 0")
	}
	if c.TranscriptLog.Enabled && c.TranscriptLog.Dir == "" {
		return fmt.Errorf("TRANSCRIPT_LOG_DIR cannot be empty when logging is enabled")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
