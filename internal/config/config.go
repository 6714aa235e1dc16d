// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/ingest.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Sink and pacing selectors
// --------------------------------------------------------------------------

const (
	SinkPostgREST = "postgrest"
	SinkPostgres  = "postgres"
	SinkMemory    = "memory"
)

const (
	PacingFixed       = "fixed"
	PacingTokenBucket = "token-bucket"
	PacingNone        = "none"
)

// --------------------------------------------------------------------------
// Config is populated from environment variables.
// --------------------------------------------------------------------------

type Config struct {
	// Sink selection
	Sink string

	// PostgREST (Supabase)
	SupabaseURL string // REST root, always ending in /rest/v1
	SupabaseKey string

	// Database (SINK=postgres and /health/db)
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// Source requests
	HTTPTimeout time.Duration
	UserAgent   string
	Pacing      string
	PacingDelay time.Duration // overrides the per-sport default when > 0

	// Final-game stream
	RedisURL string

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool
	LogLevel    string

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// Error reports an invalid or incomplete configuration.
type Error struct {
	Key     string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config %s: %s", e.Key, e.Message)
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Sink: strings.ToLower(envOr("SINK", SinkPostgREST)),

		SupabaseURL: restURL(envOr("SUPABASE_URL", "")),
		SupabaseKey: envOr("SUPABASE_SERVICE_KEY", envOr("SUPABASE_KEY", "")),

		DatabaseURL:    envOr("DATABASE_URL", ""),
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 1),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 4),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		HTTPTimeout: time.Duration(envInt("HTTP_TIMEOUT_SECONDS", 20)) * time.Second,
		UserAgent:   envOr("USER_AGENT", "scoracle-ingest/1.0"),
		Pacing:      strings.ToLower(envOr("PACING", PacingFixed)),
		PacingDelay: time.Duration(envInt("PACING_DELAY_MS", 0)) * time.Millisecond,

		RedisURL: envOr("REDIS_URL", ""),

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),
		LogLevel:    strings.ToLower(envOr("LOG_LEVEL", "info")),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected sink and pacing have what they need.
func (c *Config) Validate() error {
	switch c.Sink {
	case SinkPostgREST:
		if c.SupabaseURL == "" {
			return &Error{Key: "SUPABASE_URL", Message: "must be set when SINK=postgrest"}
		}
		if c.SupabaseKey == "" {
			return &Error{Key: "SUPABASE_SERVICE_KEY", Message: "SUPABASE_SERVICE_KEY or SUPABASE_KEY must be set when SINK=postgrest"}
		}
	case SinkPostgres:
		if c.DatabaseURL == "" {
			return &Error{Key: "DATABASE_URL", Message: "must be set when SINK=postgres"}
		}
	case SinkMemory:
	default:
		return &Error{Key: "SINK", Message: fmt.Sprintf("unknown sink %q (postgrest, postgres, memory)", c.Sink)}
	}

	switch c.Pacing {
	case PacingFixed, PacingTokenBucket, PacingNone:
	default:
		return &Error{Key: "PACING", Message: fmt.Sprintf("unknown pacing %q (fixed, token-bucket, none)", c.Pacing)}
	}
	if c.PacingDelay < 0 {
		return &Error{Key: "PACING_DELAY_MS", Message: "must not be negative"}
	}
	return nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// ParseLogLevel maps LOG_LEVEL to a slog level; unknown values mean info.
func ParseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// restURL normalizes a Supabase project URL to its PostgREST root.
func restURL(raw string) string {
	u := strings.TrimRight(strings.TrimSpace(raw), "/")
	if u == "" || strings.HasSuffix(u, "/rest/v1") {
		return u
	}
	return u + "/rest/v1"
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
