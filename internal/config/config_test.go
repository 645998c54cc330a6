package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server:  ServerConfig{Port: 8080, ShutdownTimeout: time.Second},
		Dataset: DatasetConfig{URL: DefaultDatasetURL, MaxBytes: 1024},
		Session: SessionConfig{TTL: time.Minute, MaxSessions: 10, SweepInterval: time.Minute, CookieName: "sid"},
		Load:    LoadConfig{MaxConcurrent: 1, MaxWaitTime: time.Second},
		Summary: SummaryConfig{GenderPolicy: "tolerate"},
		Rate:    RateLimitConfig{Enabled: true, RequestsPerMinute: 100},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, DefaultDatasetURL, cfg.Dataset.URL)
	assert.Zero(t, cfg.Dataset.FetchTimeout, "no fetch timeout by default")
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, 100, cfg.Session.MaxSessions)
	assert.Equal(t, "nonfiler_session", cfg.Session.CookieName)
	assert.Equal(t, 2, cfg.Load.MaxConcurrent)
	assert.Equal(t, "tolerate", cfg.Summary.GenderPolicy)
	assert.Equal(t, 100, cfg.Rate.RequestsPerMinute)
}

func TestLoad_OverrideDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOAD_MAX_CONCURRENT", "4")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SUMMARY_GENDER_POLICY", "strict")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 4, cfg.Load.MaxConcurrent)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "strict", cfg.Summary.GenderPolicy)
}

func TestLoad_AltEnvVar(t *testing.T) {
	t.Setenv("CSV_URL", "https://example.com/data.csv")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/data.csv", cfg.Dataset.URL)
}

func TestLoad_PrimaryEnvVarWins(t *testing.T) {
	t.Setenv("DATASET_URL", "https://example.com/primary.csv")
	t.Setenv("CSV_URL", "https://example.com/alt.csv")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/primary.csv", cfg.Dataset.URL)
}

func TestLoad_Duration(t *testing.T) {
	t.Setenv("SERVER_READ_TIMEOUT", "45s")
	t.Setenv("SESSION_TTL", "1h30m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 45*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 90*time.Minute, cfg.Session.TTL)
}

func TestLoad_InvalidInteger(t *testing.T) {
	t.Setenv("SERVER_PORT", "eighty")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SERVER_PORT")
}

func TestLoad_CommaSeparatedSlice(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 172.16.0.0/12 , 192.168.0.0/16")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"}, cfg.Security.TrustedProxies)
}

func TestLoad_MetricsKeys(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.Security.MetricsKeys)

	t.Setenv("METRICS_API_KEYS", "alpha,,beta ")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, cfg.Security.MetricsKeys)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"invalid port", func(c *Config) { c.Server.Port = 99999 }, "SERVER_PORT"},
		{"relative dataset url", func(c *Config) { c.Dataset.URL = "non_filer_pk.csv" }, "DATASET_URL"},
		{"ftp dataset url", func(c *Config) { c.Dataset.URL = "ftp://example.com/x.csv" }, "DATASET_URL"},
		{"empty dataset url", func(c *Config) { c.Dataset.URL = "" }, "DATASET_URL is required"},
		{"negative fetch timeout", func(c *Config) { c.Dataset.FetchTimeout = -time.Second }, "DATASET_FETCH_TIMEOUT"},
		{"zero session ttl", func(c *Config) { c.Session.TTL = 0 }, "SESSION_TTL"},
		{"zero max sessions", func(c *Config) { c.Session.MaxSessions = 0 }, "SESSION_MAX"},
		{"zero load slots", func(c *Config) { c.Load.MaxConcurrent = 0 }, "LOAD_MAX_CONCURRENT"},
		{"unknown gender policy", func(c *Config) { c.Summary.GenderPolicy = "reject" }, "SUMMARY_GENDER_POLICY"},
		{"invalid log level", func(c *Config) { c.Logging.Level = "verbose" }, "LOG_LEVEL"},
		{"invalid log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
		{"rate limit without budget", func(c *Config) { c.Rate.RequestsPerMinute = 0 }, "RATE_LIMIT_REQUESTS_PER_MINUTE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_ReportsAllFailures(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	cfg.Logging.Level = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SERVER_PORT")
	assert.Contains(t, err.Error(), "LOG_LEVEL")
}

func TestServerAddr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"", 8080, ":8080"},
		{"0.0.0.0", 8080, "0.0.0.0:8080"},
		{"127.0.0.1", 3000, "127.0.0.1:3000"},
	}

	for _, tt := range tests {
		cfg := &ServerConfig{Host: tt.host, Port: tt.port}
		assert.Equal(t, tt.want, cfg.Addr(), "host=%q port=%d", tt.host, tt.port)
	}
}

func TestConfigString(t *testing.T) {
	str := validConfig().String()
	assert.Contains(t, str, "non_filer_pk.csv")
	assert.Contains(t, str, `GenderPolicy: "tolerate"`)
}
