package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "lead-ingest.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 50, cfg.Pipeline.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.Pipeline.BatchDelay())
	assert.Equal(t, time.Hour, cfg.Pipeline.RunTimeout())
	assert.Equal(t, "apollo", cfg.Pipeline.SourceType)
	assert.Equal(t, 50, cfg.Notify.BatchSize)
	assert.Equal(t, 10, cfg.Notify.TimeoutSecs)
	assert.Empty(t, cfg.Notify.WebhookURL)
	assert.Equal(t, 60, cfg.Validation.WebsiteMinScore)
	assert.Equal(t, 15, cfg.Validation.WebsiteTimeoutSecs)
	assert.Equal(t, 24, cfg.Validation.CacheTTLHours)
	assert.Equal(t, 3, cfg.Fetch.MaxRetries)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, "leadingest:", cfg.Redis.Prefix)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.InDelta(t, 0.10, cfg.Monitoring.FailureRateThreshold, 0.001)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/leads
log:
  level: debug
  format: console
pipeline:
  batch_size: 25
notify:
  webhook_url: https://hooks.example.com/leads
  client_id: client-42
server:
  port: 9090
  cors_origins:
    - https://app.example.com
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/leads", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 25, cfg.Pipeline.BatchSize)
	assert.Equal(t, "https://hooks.example.com/leads", cfg.Notify.WebhookURL)
	assert.Equal(t, "client-42", cfg.Notify.ClientID)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.Server.CORSOrigins)
	// Defaults still apply for unset values
	assert.Equal(t, 500, cfg.Pipeline.BatchDelayMs)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("LEADINGEST_STORE_DRIVER", "postgres")
	t.Setenv("LEADINGEST_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("LEADINGEST_SERVER_PORT", "3000")
	t.Setenv("LEADINGEST_NOTIFY_WEBHOOK_URL", "https://hooks.example.com/x")
	t.Setenv("LEADINGEST_VALIDATION_WEBSITE_MIN_SCORE", "45")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "https://hooks.example.com/x", cfg.Notify.WebhookURL)
	assert.Equal(t, 45, cfg.Validation.WebsiteMinScore)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("store: [unclosed"), 0644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Store.Driver = "sqlite"
	cfg.Store.DatabaseURL = "leads.db"
	cfg.Pipeline.BatchSize = 50
	cfg.Pipeline.BatchDelayMs = 500
	cfg.Notify.BatchSize = 50
	cfg.Validation.WebsiteMinScore = 60
	cfg.Monitoring.FailureRateThreshold = 0.1
	cfg.Server.Port = 8080
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mode    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "ingest ok", mode: "ingest"},
		{name: "serve ok", mode: "serve"},
		{name: "migrate ok", mode: "migrate"},
		{name: "check-website ok", mode: "check-website", mutate: func(c *Config) { c.Store.DatabaseURL = "" }},
		{name: "unknown mode", mode: "bogus", wantErr: "unknown mode"},
		{name: "bad driver", mode: "ingest", mutate: func(c *Config) { c.Store.Driver = "mysql" }, wantErr: "store.driver"},
		{name: "missing db", mode: "migrate", mutate: func(c *Config) { c.Store.DatabaseURL = "" }, wantErr: "database_url"},
		{name: "zero batch", mode: "ingest", mutate: func(c *Config) { c.Pipeline.BatchSize = 0 }, wantErr: "pipeline.batch_size"},
		{name: "negative delay", mode: "ingest", mutate: func(c *Config) { c.Pipeline.BatchDelayMs = -1 }, wantErr: "batch_delay_ms"},
		{name: "zero notify batch", mode: "serve", mutate: func(c *Config) { c.Notify.BatchSize = 0 }, wantErr: "notify.batch_size"},
		{name: "bad port", mode: "serve", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: "server.port"},
		{name: "port ignored for ingest", mode: "ingest", mutate: func(c *Config) { c.Server.Port = 0 }},
		{name: "bad threshold", mode: "check-website", mutate: func(c *Config) { c.Validation.WebsiteMinScore = -5 }, wantErr: "website_min_score"},
		{name: "bad failure rate", mode: "ingest", mutate: func(c *Config) { c.Monitoring.FailureRateThreshold = 1.5 }, wantErr: "failure_rate_threshold"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validDefaults()
			if tt.mutate != nil {
				tt.mutate(cfg)
			}
			err := cfg.Validate(tt.mode)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
