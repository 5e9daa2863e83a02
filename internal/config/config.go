// Package config loads and validates splunkmcp configuration.
//
// Sources, in increasing precedence: built-in defaults, an optional
// YAML config file, a local .env file, and process environment
// variables. Splunk connection settings use the SPLUNK_* names the
// platform's own tooling uses; everything else is namespaced under
// SPLUNKMCP_*.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration.
type Config struct {
	Splunk  SplunkConfig  `mapstructure:"splunk"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	Search  SearchConfig  `mapstructure:"search"`
}

// SplunkConfig holds the connection profile for the remote instance.
type SplunkConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Scheme    string `mapstructure:"scheme"`
	Token     string `mapstructure:"token"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	VerifySSL bool   `mapstructure:"verify_ssl"`

	// Timeout bounds each individual HTTP request.
	Timeout time.Duration `mapstructure:"timeout"`
}

// ServerConfig configures the optional health HTTP server in serve
// mode.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	HealthEnabled   bool          `mapstructure:"health_enabled"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig configures the process loggers.
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Profile string `mapstructure:"profile"` // cli | structured
}

// SearchConfig tunes the search job poll loop. All values are explicit
// configuration rather than hidden module state so tests and operators
// can adjust them.
type SearchConfig struct {
	PollInitialInterval time.Duration `mapstructure:"poll_initial_interval"`
	PollMaxInterval     time.Duration `mapstructure:"poll_max_interval"`
	PollMultiplier      float64       `mapstructure:"poll_multiplier"`
	MaxRetries          int           `mapstructure:"max_retries"`
	PageSize            int           `mapstructure:"page_size"`

	// MaxRequestsPerSecond rate-limits outgoing Splunk calls. Zero
	// disables limiting.
	MaxRequestsPerSecond float64 `mapstructure:"max_requests_per_second"`
}

// Validate checks the loaded configuration for operator mistakes that
// are better caught at startup than mid-search.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Splunk.Host) == "" {
		return fmt.Errorf("splunk.host is required (set SPLUNK_HOST)")
	}
	if c.Splunk.Port < 1 || c.Splunk.Port > 65535 {
		return fmt.Errorf("splunk.port must be 1-65535, got %d", c.Splunk.Port)
	}
	if c.Splunk.Scheme != "http" && c.Splunk.Scheme != "https" {
		return fmt.Errorf("splunk.scheme must be http or https, got %q", c.Splunk.Scheme)
	}
	if c.Splunk.Token == "" && (c.Splunk.Username == "" || c.Splunk.Password == "") {
		return fmt.Errorf("either SPLUNK_TOKEN or both SPLUNK_USERNAME and SPLUNK_PASSWORD are required")
	}
	if c.Logging.Profile != "cli" && c.Logging.Profile != "structured" {
		return fmt.Errorf("logging.profile must be cli or structured, got %q", c.Logging.Profile)
	}
	if c.Search.PollInitialInterval <= 0 || c.Search.PollMaxInterval < c.Search.PollInitialInterval {
		return fmt.Errorf("search poll intervals are inconsistent: initial=%s max=%s",
			c.Search.PollInitialInterval, c.Search.PollMaxInterval)
	}
	return nil
}

// Redacted returns a copy safe for logging: credentials are masked.
func (c Config) Redacted() Config {
	out := c
	if out.Splunk.Token != "" {
		out.Splunk.Token = "***"
	}
	if out.Splunk.Password != "" {
		out.Splunk.Password = "***"
	}
	return out
}
