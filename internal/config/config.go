package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig    `mapstructure:"server"`
	Redis      RedisConfig     `mapstructure:"redis"`
	Scheduler  SchedulerConfig `mapstructure:"scheduler"`
	Bank       BankConfig      `mapstructure:"bank"`
	AI         AIConfig        `mapstructure:"ai"`
	Log        LogConfig       `mapstructure:"log"`
	Security   SecurityConfig  `mapstructure:"security"`
	RateLimit  RateLimitConfig `mapstructure:"rate_limit"`
	Monitoring Monitoring      `mapstructure:"monitoring"`

	Secrets Secrets `mapstructure:"-"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

type SchedulerConfig struct {
	// Enabled controls the in-process tick trigger; the HTTP tick endpoint
	// works regardless, so a cloud scheduler can be the only trigger.
	Enabled      bool          `mapstructure:"enabled"`
	TickInterval time.Duration `mapstructure:"tick_interval"`
}

type BankConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
	SyncDays int           `mapstructure:"sync_days"`
}

type AIConfig struct {
	Model      string        `mapstructure:"model"`
	Timeout    time.Duration `mapstructure:"timeout"`
	RegionCode string        `mapstructure:"region_code"`
	MaxTrends  int           `mapstructure:"max_trends"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type SecurityConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type Monitoring struct {
	PrometheusEnabled bool   `mapstructure:"prometheus_enabled"`
	MetricsPath       string `mapstructure:"metrics_path"`
}

// Secrets are read from the environment, never from the config file.
type Secrets struct {
	VAPIDPublicKey  string `envconfig:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `envconfig:"VAPID_PRIVATE_KEY"`
	VAPIDSubject    string `envconfig:"VAPID_SUBJECT" default:"mailto:admin@example.com"`
	PushCronSecret  string `envconfig:"PUSH_CRON_SECRET"`
	KBClientID      string `envconfig:"KB_CLIENT_ID"`
	KBClientSecret  string `envconfig:"KB_CLIENT_SECRET"`
	OpenAIKey       string `envconfig:"OPENAI_API_KEY"`
	YouTubeKey      string `envconfig:"YOUTUBE_API_KEY"`
	N8NWebhookURL   string `envconfig:"N8N_WEBHOOK_URL"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/app")
	viper.AddConfigPath("/app/config")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.shutdown_timeout", 5*time.Second)
	viper.SetDefault("redis.url", "redis://localhost:6379/0")
	viper.SetDefault("redis.max_retries", 3)
	viper.SetDefault("redis.retry_backoff", 100*time.Millisecond)
	viper.SetDefault("redis.pool_size", 10)
	viper.SetDefault("redis.min_idle_conns", 2)
	viper.SetDefault("scheduler.enabled", true)
	viper.SetDefault("scheduler.tick_interval", 30*time.Second)
	viper.SetDefault("bank.base_url", "https://openapi.kbstar.com")
	viper.SetDefault("bank.timeout", 15*time.Second)
	viper.SetDefault("bank.token_ttl", 50*time.Minute)
	viper.SetDefault("bank.sync_days", 90)
	viper.SetDefault("ai.model", "gpt-4o-mini")
	viper.SetDefault("ai.timeout", 60*time.Second)
	viper.SetDefault("ai.region_code", "KR")
	viper.SetDefault("ai.max_trends", 12)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("monitoring.prometheus_enabled", true)
	viper.SetDefault("monitoring.metrics_path", "/metrics")
	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.requests_per_second", 50.0)
	viper.SetDefault("rate_limit.burst", 100)

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// A missing file is fine, the defaults above are a working local setup.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process("", &cfg.Secrets); err != nil {
		return nil, fmt.Errorf("failed to read secrets from environment: %w", err)
	}

	return &cfg, nil
}
