package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/ndewijer/SnapCharts-Backend/internal/logger"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	CORS     CORSConfig     `yaml:"cors"`
	Log      logger.Config  `yaml:"log"`
	Yahoo    YahooConfig    `yaml:"yahoo"`
	Search   SearchConfig   `yaml:"search"`
	Refresh  RefreshConfig  `yaml:"refresh"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port            string        `yaml:"port" default:"5001"`
	Host            string        `yaml:"host" default:"localhost"`
	Addr            string        `yaml:"-"` // Combined host:port for convenience
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" default:"45s"` // deadline for non-streaming handlers
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"30s"`
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string `yaml:"path" default:"./data/snapcharts.db"`
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" default:"[\"http://localhost:3000\",\"http://localhost\"]"`
}

// YahooConfig configures the quote provider client.
type YahooConfig struct {
	BaseURL   string        `yaml:"base_url" default:"https://query1.finance.yahoo.com"`
	UserAgent string        `yaml:"user_agent"` // empty keeps the client's browser default
	Timeout   time.Duration `yaml:"timeout" default:"30s"`
}

// SearchConfig configures symbol search and the live search socket.
type SearchConfig struct {
	ResultLimit int           `yaml:"result_limit" default:"20"`
	Debounce    time.Duration `yaml:"debounce" default:"500ms"`
}

// RefreshConfig configures the scheduled favorite price refresh.
type RefreshConfig struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	Cron    string `yaml:"cron" default:"@every 15m"`
	Workers int    `yaml:"workers" default:"4"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	Path    string `yaml:"path" default:"/metrics"`
}

// Load reads configuration from defaults, an optional YAML file named by
// CONFIG_FILE, environment variables and a .env file, in increasing priority.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{}
	if err := defaults.Set(config); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, config); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(config); err != nil {
		return nil, err
	}

	// Combine host and port
	config.Server.Addr = net.JoinHostPort(config.Server.Host, config.Server.Port)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return config, nil
}

func loadFile(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func applyEnv(c *Config) error {
	c.Server.Port = getEnv("SERVER_PORT", c.Server.Port)
	c.Server.Host = getEnv("SERVER_HOST", c.Server.Host)
	c.Database.Path = getEnv("DB_PATH", c.Database.Path)
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.CORS.AllowedOrigins = splitList(v)
	}

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
	c.Log.Output = getEnv("LOG_OUTPUT", c.Log.Output)

	c.Yahoo.BaseURL = getEnv("YAHOO_BASE_URL", c.Yahoo.BaseURL)
	c.Yahoo.UserAgent = getEnv("YAHOO_USER_AGENT", c.Yahoo.UserAgent)
	c.Refresh.Cron = getEnv("PRICE_REFRESH_CRON", c.Refresh.Cron)
	c.Metrics.Path = getEnv("METRICS_PATH", c.Metrics.Path)

	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}
	collect(getEnvDuration("SERVER_REQUEST_TIMEOUT", &c.Server.RequestTimeout))
	collect(getEnvDuration("SERVER_WRITE_TIMEOUT", &c.Server.WriteTimeout))
	collect(getEnvDuration("YAHOO_TIMEOUT", &c.Yahoo.Timeout))
	collect(getEnvDuration("SEARCH_DEBOUNCE", &c.Search.Debounce))
	collect(getEnvInt("SEARCH_RESULT_LIMIT", &c.Search.ResultLimit))
	collect(getEnvInt("PRICE_REFRESH_WORKERS", &c.Refresh.Workers))
	collect(getEnvBool("PRICE_REFRESH_ENABLED", &c.Refresh.Enabled))
	collect(getEnvBool("METRICS_ENABLED", &c.Metrics.Enabled))
	return errors.Join(errs...)
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if c.Yahoo.BaseURL == "" {
		return fmt.Errorf("yahoo base url is required")
	}
	if c.Yahoo.Timeout <= 0 {
		return fmt.Errorf("yahoo timeout must be positive")
	}
	// Provider failures must reach the client as a response body, so each
	// layer's deadline has to expire before the one outside it.
	if c.Server.RequestTimeout <= c.Yahoo.Timeout {
		return fmt.Errorf("server request timeout (%s) must exceed yahoo timeout (%s)", c.Server.RequestTimeout, c.Yahoo.Timeout)
	}
	if c.Server.WriteTimeout <= c.Server.RequestTimeout {
		return fmt.Errorf("server write timeout (%s) must exceed request timeout (%s)", c.Server.WriteTimeout, c.Server.RequestTimeout)
	}
	if c.Search.ResultLimit <= 0 {
		return fmt.Errorf("search result limit must be positive")
	}
	if c.Search.Debounce < 0 {
		return fmt.Errorf("search debounce cannot be negative")
	}
	if c.Refresh.Enabled {
		if c.Refresh.Workers <= 0 {
			return fmt.Errorf("refresh workers must be positive")
		}
		if _, err := cron.ParseStandard(c.Refresh.Cron); err != nil {
			return fmt.Errorf("invalid refresh cron %q: %w", c.Refresh.Cron, err)
		}
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics path must start with '/'")
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func getEnvBool(key string, dst *bool) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

func getEnvDuration(key string, dst *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
