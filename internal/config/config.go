// Package config provides configuration management for the prop evaluator.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App          AppConfig          `mapstructure:"app" validate:"required"`
	Provider     ProviderConfig     `mapstructure:"provider" validate:"required"`
	FallbackOdds FallbackOddsConfig `mapstructure:"fallback_odds"`
	Cache        CacheConfig        `mapstructure:"cache" validate:"required"`
	Collector    CollectorConfig    `mapstructure:"collector" validate:"required"`
	Model        ModelConfig        `mapstructure:"model" validate:"required"`
	Decision     DecisionConfig     `mapstructure:"decision" validate:"required"`
	Analytics    AnalyticsConfig    `mapstructure:"analytics"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Server       ServerConfig       `mapstructure:"server" validate:"required"`
	Metrics      MetricsConfig      `mapstructure:"metrics"`
	Tracing      TracingConfig      `mapstructure:"tracing"`
	Secrets      SecretsConfig      `mapstructure:"secrets"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// ProviderConfig configures the stat provider gateway
type ProviderConfig struct {
	BaseURL                string  `mapstructure:"base_url" validate:"required,url"`
	APIKey                 string  `mapstructure:"api_key"`
	TimeoutSeconds         int     `mapstructure:"timeout_seconds" validate:"required,min=5,max=15"`
	MaxRetries             int     `mapstructure:"max_retries" validate:"gte=0,lte=3"`
	RateLimit              float64 `mapstructure:"rate_limit" validate:"required,gt=0"`
	CircuitBreakerMax      int     `mapstructure:"circuit_breaker_max" validate:"required,gt=0"`
	CircuitCooldownSeconds int     `mapstructure:"circuit_cooldown_seconds" validate:"required,gt=0"`
	StatsTTLMinutes        int     `mapstructure:"stats_ttl_minutes" validate:"required,gte=60,lte=1440"`
	SeasonTTLMinutes       int     `mapstructure:"season_ttl_minutes" validate:"required,gte=60,lte=1440"`
	OddsTTLMinutes         int     `mapstructure:"odds_ttl_minutes" validate:"required,gt=0"`
}

// FallbackOddsConfig configures the secondary odds feed
type FallbackOddsConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BaseURL        string `mapstructure:"base_url" validate:"required_if=Enabled true,omitempty,url"`
	APIKey         string `mapstructure:"api_key"`
	Regions        string `mapstructure:"regions"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"gte=0"`
}

// CacheConfig configures the response cache tiers
type CacheConfig struct {
	DefaultTTLMinutes int    `mapstructure:"default_ttl_minutes" validate:"required,gt=0"`
	MaxItems          int    `mapstructure:"max_items" validate:"required,gt=0"`
	Secondary         string `mapstructure:"secondary" validate:"secondary_cache"`
	SQLitePath        string `mapstructure:"sqlite_path" validate:"required_if=Secondary sqlite"`
	RedisAddr         string `mapstructure:"redis_addr" validate:"required_if=Secondary redis"`
	RedisPassword     string `mapstructure:"redis_password"`
	RedisDB           int    `mapstructure:"redis_db" validate:"gte=0"`
	SweepSchedule     string `mapstructure:"sweep_schedule"`
}

// CollectorConfig configures how much history is gathered per evaluation
type CollectorConfig struct {
	TargetSample      int            `mapstructure:"target_sample" validate:"required,min=1,max=50"`
	MinSample         int            `mapstructure:"min_sample" validate:"required,min=1"`
	LookbackDays      map[string]int `mapstructure:"lookback_days" validate:"required"`
	NFLLookbackWeeks  int            `mapstructure:"nfl_lookback_weeks" validate:"required,gt=0"`
	MinInningsForRate float64        `mapstructure:"min_innings_for_rate" validate:"required,gt=0"`
	RecentWeight      float64        `mapstructure:"recent_weight" validate:"gte=0,lte=1"`
	Concurrency       int            `mapstructure:"concurrency" validate:"required,min=1,max=8"`
}

// ModelConfig configures fusion and identity matching
type ModelConfig struct {
	WeightModel       float64                       `mapstructure:"weight_model" validate:"gte=0,lte=1"`
	WeightMarket      float64                       `mapstructure:"weight_market" validate:"gte=0,lte=1"`
	WeightSharp       float64                       `mapstructure:"weight_sharp" validate:"gte=0,lte=1"`
	Calibration       float64                       `mapstructure:"calibration" validate:"required,gt=0"`
	IdentityThreshold float64                       `mapstructure:"identity_threshold" validate:"required,gt=0,lt=1"`
	AmbiguityMargin   float64                       `mapstructure:"ambiguity_margin" validate:"gte=0,lt=1"`
	CLVNeutralBand    float64                       `mapstructure:"clv_neutral_band" validate:"gte=0"`
	MaxBias           float64                       `mapstructure:"max_bias" validate:"gte=0,lt=1"`
	Baselines         map[string]map[string]float64 `mapstructure:"baselines"`
}

// DecisionConfig configures confidence tiers and staking
type DecisionConfig struct {
	Lock                 float64 `mapstructure:"lock" validate:"required,gt=0,lte=100"`
	StrongLean           float64 `mapstructure:"strong_lean" validate:"required,gt=0,lte=100"`
	Lean                 float64 `mapstructure:"lean" validate:"required,gt=0,lte=100"`
	LowConfidence        float64 `mapstructure:"low_confidence" validate:"required,gt=0,lte=100"`
	GateCap              float64 `mapstructure:"gate_cap" validate:"required,gt=0,lt=50"`
	MinStake             float64 `mapstructure:"min_stake" validate:"required,gt=0"`
	MaxStake             float64 `mapstructure:"max_stake" validate:"required,gtefield=MinStake"`
	MaxStakeConfidence   float64 `mapstructure:"max_stake_confidence" validate:"required,gtefield=Lean"`
	BiasPenaltyThreshold float64 `mapstructure:"bias_penalty_threshold" validate:"gte=0"`
}

// AnalyticsConfig configures the fire-and-forget analytics sink
type AnalyticsConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	URL            string `mapstructure:"url" validate:"required_if=Enabled true,omitempty,url"`
	Token          string `mapstructure:"token"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"gte=0"`
}

// DatabaseConfig represents the history sink database connection
type DatabaseConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Host           string `mapstructure:"host" validate:"required_if=Enabled true"`
	Port           int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name           string `mapstructure:"name" validate:"required_if=Enabled true"`
	User           string `mapstructure:"user" validate:"required_if=Enabled true"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"gte=0"`
}

// ServerConfig configures the HTTP entry point
type ServerConfig struct {
	Port                int            `mapstructure:"port" validate:"required,min=1,max=65535"`
	AllowedOrigins      []string       `mapstructure:"allowed_origins"`
	QuotaPerMinute      map[string]int `mapstructure:"quota_per_minute"`
	ReadTimeoutSeconds  int            `mapstructure:"read_timeout_seconds" validate:"required,gt=0"`
	WriteTimeoutSeconds int            `mapstructure:"write_timeout_seconds" validate:"required,gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required_if=Enabled true"`
}

// TracingConfig configures optional AWS X-Ray tracing of inbound requests
type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	SamplingRate float64 `mapstructure:"sampling_rate" validate:"gte=0,lte=1"`
	DaemonAddr   string  `mapstructure:"daemon_addr" validate:"required_if=Enabled true"`
}

// SecretsConfig points at an optional AWS Secrets Manager overlay
type SecretsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Region     string `mapstructure:"region" validate:"required_if=Enabled true"`
	SecretName string `mapstructure:"secret_name" validate:"required_if=Enabled true"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// ProviderTimeout returns the per-call provider timeout
func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(c.Provider.TimeoutSeconds) * time.Second
}

// LookbackDaysFor returns the date lookback window for a sport
func (c *CollectorConfig) LookbackDaysFor(sport string) int {
	if d, ok := c.LookbackDays[strings.ToLower(sport)]; ok && d > 0 {
		return d
	}
	return 21
}

// Baseline returns an operator-configured baseline mean, if any
func (c *ModelConfig) Baseline(sport, statistic string) (float64, bool) {
	stats, ok := c.Baselines[strings.ToLower(sport)]
	if !ok {
		return 0, false
	}
	v, ok := stats[strings.ToLower(statistic)]
	return v, ok
}

// QuotaFor returns the per-minute request allowance for a subject tier
func (c *ServerConfig) QuotaFor(tier string) int {
	if q, ok := c.QuotaPerMinute[strings.ToLower(tier)]; ok {
		return q
	}
	return c.QuotaPerMinute["default"]
}
