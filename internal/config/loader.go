// Package config provides configuration management for the prop evaluator.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPrefix         = "PROP_EVALUATOR"
	defaultConfigPath = "config/config.yaml"
)

// Load reads and parses the configuration from file and environment variables.
// It expands environment variable placeholders in the YAML file (${VAR_NAME}).
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return unmarshal(v)
}

// LoadWithDefaults loads configuration with defaults for every key, so the
// binary runs without a config file. A .env file in the working directory is
// loaded first when present.
func LoadWithDefaults(configPath string) (*Config, error) {
	_ = godotenv.Load()

	if configPath == "" {
		configPath = defaultConfigPath
	}

	v := newViper()
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "prop-evaluator")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("provider.base_url", "https://api.sportsdata.io/v3")
	v.SetDefault("provider.api_key", "")
	v.SetDefault("provider.timeout_seconds", 10)
	v.SetDefault("provider.max_retries", 1)
	v.SetDefault("provider.rate_limit", 5.0)
	v.SetDefault("provider.circuit_breaker_max", 5)
	v.SetDefault("provider.circuit_cooldown_seconds", 30)
	v.SetDefault("provider.stats_ttl_minutes", 360)
	v.SetDefault("provider.season_ttl_minutes", 720)
	v.SetDefault("provider.odds_ttl_minutes", 5)

	v.SetDefault("fallback_odds.enabled", false)
	v.SetDefault("fallback_odds.base_url", "https://api.the-odds-api.com")
	v.SetDefault("fallback_odds.api_key", "")
	v.SetDefault("fallback_odds.regions", "us")
	v.SetDefault("fallback_odds.timeout_seconds", 10)

	v.SetDefault("cache.default_ttl_minutes", 60)
	v.SetDefault("cache.max_items", 5000)
	v.SetDefault("cache.secondary", "none")
	v.SetDefault("cache.sqlite_path", "data/cache.db")
	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.sweep_schedule", "@every 10m")

	v.SetDefault("collector.target_sample", 10)
	v.SetDefault("collector.min_sample", 5)
	v.SetDefault("collector.lookback_days", map[string]int{"nba": 21, "wnba": 21, "mlb": 45})
	v.SetDefault("collector.nfl_lookback_weeks", 8)
	v.SetDefault("collector.min_innings_for_rate", 3.0)
	v.SetDefault("collector.recent_weight", 0.7)
	v.SetDefault("collector.concurrency", 1)

	v.SetDefault("model.weight_model", 0.40)
	v.SetDefault("model.weight_market", 0.45)
	v.SetDefault("model.weight_sharp", 0.15)
	v.SetDefault("model.calibration", 1.0)
	v.SetDefault("model.identity_threshold", 0.7)
	v.SetDefault("model.ambiguity_margin", 0.05)
	v.SetDefault("model.clv_neutral_band", 0.005)
	v.SetDefault("model.max_bias", 0.25)

	v.SetDefault("decision.lock", 70.0)
	v.SetDefault("decision.strong_lean", 67.5)
	v.SetDefault("decision.lean", 65.0)
	v.SetDefault("decision.low_confidence", 55.0)
	v.SetDefault("decision.gate_cap", 49.9)
	v.SetDefault("decision.min_stake", 1.0)
	v.SetDefault("decision.max_stake", 5.0)
	v.SetDefault("decision.max_stake_confidence", 75.0)
	v.SetDefault("decision.bias_penalty_threshold", 0.10)

	v.SetDefault("analytics.enabled", false)
	v.SetDefault("analytics.url", "")
	v.SetDefault("analytics.token", "")
	v.SetDefault("analytics.timeout_seconds", 5)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "prop_evaluator")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 5)

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.quota_per_minute", map[string]int{"default": 30, "free": 10, "pro": 120})
	v.SetDefault("server.read_timeout_seconds", 10)
	v.SetDefault("server.write_timeout_seconds", 60)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.sampling_rate", 0.05)
	v.SetDefault("tracing.daemon_addr", "127.0.0.1:2000")

	v.SetDefault("secrets.enabled", false)
	v.SetDefault("secrets.region", "us-east-1")
	v.SetDefault("secrets.secret_name", "")
}
