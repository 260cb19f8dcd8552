package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the main configuration struct combining all sub-configs
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	API      APIConfig      `mapstructure:"api"`
	Behavior BehaviorConfig `mapstructure:"behavior"`
	Daemon   DaemonConfig   `mapstructure:"daemon"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ErrMissingToken is returned by RequireToken when no agent token is configured
var ErrMissingToken = errors.New("no API token configured: set API_TOKEN or api.token")

// LoadConfig loads configuration from multiple sources with priority:
// 1. Environment variables (highest priority)
// 2. Config file (config.yaml)
// 3. Defaults (lowest priority)
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (doesn't error if missing)
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/spacetraders")
	}

	v.SetEnvPrefix("ST") // ST_ prefix for SpaceTraders
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Unprefixed overrides for the two secrets people usually export by hand
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		v.Set("database.url", dbURL)
		if v.GetString("database.type") == "" {
			v.Set("database.type", "postgres")
		}
	}
	if token := os.Getenv("API_TOKEN"); token != "" && os.Getenv("ST_API_TOKEN") == "" {
		v.Set("api.token", token)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	SetDefaults(&cfg)

	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// AutomaticEnv only resolves keys viper already knows about, so every leaf
// that has no config file entry must be bound explicitly.
func bindEnvKeys(v *viper.Viper) {
	for _, key := range []string{
		"database.type", "database.url", "database.path",
		"database.host", "database.port", "database.user", "database.password", "database.name", "database.sslmode",
		"api.base_url", "api.token", "api.timeout",
		"api.rate_limit.requests", "api.rate_limit.period", "api.rate_limit.burst",
		"api.retry.max_attempts", "api.retry.backoff_base",
		"behavior.arrival_buffer", "behavior.random_export_candidates",
		"behavior.route_length_slack", "behavior.max_route_depth", "behavior.sync_concurrency",
		"daemon.socket_path", "daemon.pid_file", "daemon.metrics_addr", "daemon.metrics_enabled",
		"daemon.sweep_interval", "daemon.shutdown_timeout",
		"logging.level", "logging.format", "logging.output", "logging.file_path",
	} {
		_ = v.BindEnv(key)
	}
}

// RequireToken returns the API token or ErrMissingToken
func (c *Config) RequireToken() (string, error) {
	if c.API.Token == "" {
		return "", ErrMissingToken
	}
	return c.API.Token, nil
}

// LoadConfigOrDefault loads configuration or returns a default config on error
func LoadConfigOrDefault(configPath string) *Config {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		defaultCfg := &Config{}
		SetDefaults(defaultCfg)
		return defaultCfg
	}
	return cfg
}

// MustLoadConfig loads configuration and panics on error (for use in main.go)
func MustLoadConfig(configPath string) *Config {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}
