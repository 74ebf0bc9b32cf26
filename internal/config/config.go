// Package config reads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	DatabaseURL      string
	ServerPort       string
	BaseURL          string
	FrontendURL      string
	OpenAIKey        string
	AIModel          string
	AIBaseURL        string
	EnableHSTS       bool
	OIDCProvider     string
	RedisURL         string
	RabbitMQURL      string
	RabbitMQPrefetch int
	WorkerDebugMode  bool
	ServerDebugMode  bool
	OTELEnabled      bool
	OTELEndpoint     string

	// Background sweeps
	ReminderSchedule            string
	NotificationCleanupSchedule string
	AnalyticsDebounce           time.Duration
	InactivityPauseDays         int

	// Dead-letter housekeeping
	DLQRetention  time.Duration
	DLQGCInterval time.Duration
}

// LookupFunc reports the value of a configuration key and whether it is set
type LookupFunc func(key string) (string, bool)

// Load reads configuration from environment variables
func Load() (*Config, error) {
	return LoadFrom(os.LookupEnv)
}

// LoadFrom reads configuration through lookup. Malformed values are errors, not silent defaults.
func LoadFrom(lookup LookupFunc) (*Config, error) {
	env := &envReader{lookup: lookup}

	cfg := &Config{
		DatabaseURL:      env.str("DATABASE_URL", ""),
		ServerPort:       env.str("SERVER_PORT", "8080"),
		BaseURL:          env.str("BASE_URL", "http://localhost:8080"),
		FrontendURL:      env.str("FRONTEND_URL", "http://localhost:3000"),
		OpenAIKey:        env.str("OPENAI_API_KEY", ""),
		AIModel:          env.str("AI_MODEL", ""),
		AIBaseURL:        env.str("AI_BASE_URL", ""),
		EnableHSTS:       env.boolean("ENABLE_HSTS", false),
		OIDCProvider:     env.str("OIDC_PROVIDER", "cognito"),
		RedisURL:         env.str("REDIS_URL", "redis://localhost:6379/0"),
		RabbitMQURL:      env.str("RABBITMQ_URL", ""),
		RabbitMQPrefetch: env.integer("RABBITMQ_PREFETCH", 1),
		WorkerDebugMode:  env.boolean("WORKER_DEBUG_MODE", false),
		ServerDebugMode:  env.boolean("SERVER_DEBUG_MODE", false),
		OTELEnabled:      env.boolean("OTEL_ENABLED", false),
		OTELEndpoint:     env.str("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		ReminderSchedule:            env.str("REMINDER_SCHEDULE", "0 9 * * *"),
		NotificationCleanupSchedule: env.str("NOTIFICATION_CLEANUP_SCHEDULE", "@hourly"),
		AnalyticsDebounce:           env.duration("ANALYTICS_DEBOUNCE", 5*time.Second),
		InactivityPauseDays:         env.integer("INACTIVITY_PAUSE_DAYS", 14),

		DLQRetention:  env.duration("DLQ_RETENTION", 24*time.Hour),
		DLQGCInterval: env.duration("DLQ_GC_INTERVAL", time.Hour),
	}

	errs := env.errs
	if cfg.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if cfg.RabbitMQURL == "" {
		errs = append(errs, errors.New("RABBITMQ_URL is required for analytics refresh and reminder jobs"))
	}
	if cfg.InactivityPauseDays <= 0 {
		errs = append(errs, fmt.Errorf("INACTIVITY_PAUSE_DAYS must be positive, got %d", cfg.InactivityPauseDays))
	}
	if cfg.RabbitMQPrefetch <= 0 {
		errs = append(errs, fmt.Errorf("RABBITMQ_PREFETCH must be positive, got %d", cfg.RabbitMQPrefetch))
	}
	if cfg.DLQGCInterval <= 0 {
		errs = append(errs, fmt.Errorf("DLQ_GC_INTERVAL must be positive, got %s", cfg.DLQGCInterval))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// envReader applies defaults for unset keys and collects parse failures
type envReader struct {
	lookup LookupFunc
	errs   []error
}

func (e *envReader) get(key string) (string, bool) {
	v, ok := e.lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (e *envReader) str(key, def string) string {
	if v, ok := e.get(key); ok {
		return v
	}
	return def
}

func (e *envReader) boolean(key string, def bool) bool {
	v, ok := e.get(key)
	if !ok {
		return def
	}
	switch strings.ToLower(v) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	}
	e.errs = append(e.errs, fmt.Errorf("%s: invalid boolean %q", key, v))
	return def
}

func (e *envReader) integer(key string, def int) int {
	v, ok := e.get(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: invalid integer %q", key, v))
		return def
	}
	return n
}

func (e *envReader) duration(key string, def time.Duration) time.Duration {
	v, ok := e.get(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: invalid duration %q", key, v))
		return def
	}
	return d
}
