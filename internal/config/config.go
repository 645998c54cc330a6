// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// DefaultDatasetURL is the version-pinned location of the TY2023 non-filer CSV.
const DefaultDatasetURL = "https://raw.githubusercontent.com/mzeeshanaltaf/streamlit-pk-nonfiler-eda/d733aa076081f5313b5ca6def0388e838d51e63b/non_filer_pk.csv"

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Dataset  DatasetConfig
	Session  SessionConfig
	Load     LoadConfig
	Summary  SummaryConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading the request (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing the response.
	// Zero because a dataset load can outlast any fixed budget.
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// DatasetConfig describes where the non-filer CSV lives and how it is fetched.
type DatasetConfig struct {
	// URL is the CSV location. Supports both DATASET_URL and CSV_URL.
	URL string `env:"DATASET_URL" envAlt:"CSV_URL" default:"https://raw.githubusercontent.com/mzeeshanaltaf/streamlit-pk-nonfiler-eda/d733aa076081f5313b5ca6def0388e838d51e63b/non_filer_pk.csv"`

	// FetchTimeout bounds the download; 0 means no timeout (default: 0s)
	FetchTimeout time.Duration `env:"DATASET_FETCH_TIMEOUT" default:"0s"`

	// MaxBytes caps the response body size in bytes (default: 512MB)
	MaxBytes int64 `env:"DATASET_MAX_BYTES" default:"536870912"`
}

// SessionConfig holds per-visitor session settings.
type SessionConfig struct {
	// TTL is how long an idle session keeps its table (default: 30m)
	TTL time.Duration `env:"SESSION_TTL" default:"30m"`

	// MaxSessions caps concurrently held sessions (default: 100)
	MaxSessions int `env:"SESSION_MAX" default:"100"`

	// SweepInterval is how often expired sessions are purged (default: 1m)
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" default:"1m"`

	// CookieName is the session cookie name (default: nonfiler_session)
	CookieName string `env:"SESSION_COOKIE_NAME" default:"nonfiler_session"`

	// SecureCookie sets the Secure attribute on the session cookie (default: false)
	SecureCookie bool `env:"SESSION_SECURE_COOKIE" default:"false"`
}

// LoadConfig bounds concurrent dataset downloads across sessions.
type LoadConfig struct {
	// MaxConcurrent is the maximum number of parallel loads (default: 2)
	MaxConcurrent int `env:"LOAD_MAX_CONCURRENT" default:"2"`

	// MaxWaitTime is how long to wait for a load slot (default: 30s)
	MaxWaitTime time.Duration `env:"LOAD_MAX_WAIT_TIME" default:"30s"`
}

// SummaryConfig controls aggregation behavior.
type SummaryConfig struct {
	// GenderPolicy is "tolerate" or "strict" for values outside M/F (default: tolerate)
	GenderPolicy string `env:"SUMMARY_GENDER_POLICY" default:"tolerate"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// MetricsKeys is a comma-separated list of keys accepted on /metrics.
	// Empty leaves the endpoint open.
	MetricsKeys []string `env:"METRICS_API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
