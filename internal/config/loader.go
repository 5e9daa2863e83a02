package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load builds the configuration from defaults, an optional YAML file,
// a local .env file, and the environment. path may be empty, in which
// case only defaults and environment apply.
func Load(path string) (*Config, error) {
	// A .env beside the binary is the common deployment shape for MCP
	// servers launched by an assistant host. Absence is not an error.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		// godotenv reports a bare PathError for a missing file; any
		// other failure means a malformed .env worth surfacing.
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	v := viper.New()
	setDefaults(v)
	bindEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	var cfg Config
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, decodeHook); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every key so viper can bind and decode it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("splunk.host", "")
	v.SetDefault("splunk.port", 8089)
	v.SetDefault("splunk.scheme", "https")
	v.SetDefault("splunk.token", "")
	v.SetDefault("splunk.username", "")
	v.SetDefault("splunk.password", "")
	v.SetDefault("splunk.verify_ssl", true)
	v.SetDefault("splunk.timeout", "30s")

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.health_enabled", true)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.profile", "cli")

	v.SetDefault("search.poll_initial_interval", "250ms")
	v.SetDefault("search.poll_max_interval", "3s")
	v.SetDefault("search.poll_multiplier", 2.0)
	v.SetDefault("search.max_retries", 3)
	v.SetDefault("search.page_size", 1000)
	v.SetDefault("search.max_requests_per_second", 0.0)
}

// bindEnv wires environment variables. Splunk connection settings keep
// the SPLUNK_* names used by the platform's own tooling; the rest use
// a SPLUNKMCP_ prefix.
func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("splunk.host", "SPLUNK_HOST")
	_ = v.BindEnv("splunk.port", "SPLUNK_PORT")
	_ = v.BindEnv("splunk.scheme", "SPLUNK_SCHEME")
	_ = v.BindEnv("splunk.token", "SPLUNK_TOKEN")
	_ = v.BindEnv("splunk.username", "SPLUNK_USERNAME")
	_ = v.BindEnv("splunk.password", "SPLUNK_PASSWORD")
	_ = v.BindEnv("splunk.verify_ssl", "SPLUNK_VERIFY_SSL")
	_ = v.BindEnv("splunk.timeout", "SPLUNK_TIMEOUT")

	_ = v.BindEnv("server.host", "SPLUNKMCP_SERVER_HOST")
	_ = v.BindEnv("server.port", "SPLUNKMCP_SERVER_PORT")
	_ = v.BindEnv("server.health_enabled", "SPLUNKMCP_HEALTH_ENABLED")

	_ = v.BindEnv("logging.level", "SPLUNKMCP_LOG_LEVEL")
	_ = v.BindEnv("logging.profile", "SPLUNKMCP_LOG_PROFILE")

	_ = v.BindEnv("search.poll_initial_interval", "SPLUNKMCP_POLL_INITIAL_INTERVAL")
	_ = v.BindEnv("search.poll_max_interval", "SPLUNKMCP_POLL_MAX_INTERVAL")
	_ = v.BindEnv("search.max_retries", "SPLUNKMCP_MAX_RETRIES")
	_ = v.BindEnv("search.max_requests_per_second", "SPLUNKMCP_MAX_RPS")
}
