package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("CONFIG_FILE", "")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "localhost:5001", cfg.Server.Addr)
		assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
		assert.Equal(t, 45*time.Second, cfg.Server.RequestTimeout)
		assert.Equal(t, 60*time.Second, cfg.Server.WriteTimeout)
		assert.Equal(t, "./data/snapcharts.db", cfg.Database.Path)
		assert.Equal(t, []string{"http://localhost:3000", "http://localhost"}, cfg.CORS.AllowedOrigins)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "https://query1.finance.yahoo.com", cfg.Yahoo.BaseURL)
		assert.Equal(t, 30*time.Second, cfg.Yahoo.Timeout)
		assert.Equal(t, 20, cfg.Search.ResultLimit)
		assert.Equal(t, 500*time.Millisecond, cfg.Search.Debounce)
		assert.True(t, cfg.Refresh.Enabled)
		assert.Equal(t, "@every 15m", cfg.Refresh.Cron)
		assert.Equal(t, 4, cfg.Refresh.Workers)
		assert.True(t, cfg.Metrics.Enabled)
		assert.Equal(t, "/metrics", cfg.Metrics.Path)
	})

	t.Run("yaml file then env overrides", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)
		path := filepath.Join(dir, "snapcharts.yaml")
		yamlDoc := `
server:
  port: "8080"
  host: 0.0.0.0
search:
  result_limit: 10
  debounce: 250ms
refresh:
  cron: "*/5 * * * *"
  workers: 2
`
		require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o600))
		t.Setenv("CONFIG_FILE", path)
		t.Setenv("SERVER_PORT", "9090")
		t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
		t.Setenv("SEARCH_DEBOUNCE", "1s")
		t.Setenv("METRICS_ENABLED", "false")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr)
		assert.Equal(t, 10, cfg.Search.ResultLimit)
		assert.Equal(t, time.Second, cfg.Search.Debounce)
		assert.Equal(t, "*/5 * * * *", cfg.Refresh.Cron)
		assert.Equal(t, 2, cfg.Refresh.Workers)
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
		assert.False(t, cfg.Metrics.Enabled)
	})

	t.Run("malformed env value", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("CONFIG_FILE", "")
		t.Setenv("SEARCH_RESULT_LIMIT", "lots")

		_, err := Load()
		assert.ErrorContains(t, err, "SEARCH_RESULT_LIMIT")
	})

	t.Run("missing config file", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("CONFIG_FILE", "does-not-exist.yaml")

		_, err := Load()
		assert.ErrorContains(t, err, "read config")
	})

	// WHY: a handler still waiting on the provider when the write deadline
	// passes loses its connection instead of sending the 502/504 body.
	t.Run("provider timeout above request timeout fails validation", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("CONFIG_FILE", "")
		t.Setenv("YAHOO_TIMEOUT", "90s")

		_, err := Load()
		assert.ErrorContains(t, err, "must exceed yahoo timeout")
	})

	t.Run("invalid cron spec fails validation", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("CONFIG_FILE", "")
		t.Setenv("PRICE_REFRESH_CRON", "every now and then")

		_, err := Load()
		assert.ErrorContains(t, err, "invalid refresh cron")
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: "5001", RequestTimeout: 2 * time.Second, WriteTimeout: 3 * time.Second},
			Database: DatabaseConfig{Path: ":memory:"},
			Yahoo:    YahooConfig{BaseURL: "http://x", Timeout: time.Second},
			Search:   SearchConfig{ResultLimit: 20},
			Refresh:  RefreshConfig{Enabled: true, Cron: "@hourly", Workers: 1},
			Metrics:  MetricsConfig{Enabled: true, Path: "/metrics"},
		}
	}

	require.NoError(t, valid().Validate())

	tests := map[string]func(*Config){
		"empty port":        func(c *Config) { c.Server.Port = "" },
		"zero limit":        func(c *Config) { c.Search.ResultLimit = 0 },
		"negative debounce": func(c *Config) { c.Search.Debounce = -time.Second },
		"zero workers":      func(c *Config) { c.Refresh.Workers = 0 },
		"bad metrics path":  func(c *Config) { c.Metrics.Path = "metrics" },
		"zero timeout":      func(c *Config) { c.Yahoo.Timeout = 0 },

		"request timeout not above provider timeout": func(c *Config) { c.Server.RequestTimeout = c.Yahoo.Timeout },
		"write timeout not above request timeout":    func(c *Config) { c.Server.WriteTimeout = c.Server.RequestTimeout },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := valid()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}

	t.Run("refresh settings ignored when disabled", func(t *testing.T) {
		c := valid()
		c.Refresh = RefreshConfig{Enabled: false}
		assert.NoError(t, c.Validate())
	})
}
