package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type IdentityConfig struct {
	BaseURL    string `yaml:"base_url"`    // hosted auth service URL
	ServiceKey string `yaml:"service_key"` // admin API key for metadata updates
	JWTSecret  string `yaml:"jwt_secret"`  // HMAC secret the provider signs access tokens with
}

type RedemptionConfig struct {
	// HeuristicPlanFallback enables the character-bucket plan resolution for
	// codes missing from the lookup table. Migration shim; off by default.
	HeuristicPlanFallback bool `yaml:"heuristic_plan_fallback"`
	// IdempotencyTTL bounds how long a finished redemption result is replayed
	// for retried requests with the same code and user.
	IdempotencyTTL time.Duration `yaml:"idempotency_ttl"`
	// RateLimit caps validation/redemption attempts per user per window.
	RateLimitAttempts int           `yaml:"rate_limit_attempts"`
	RateLimitWindow   time.Duration `yaml:"rate_limit_window"`
	// RetryMaxAttempts bounds handler-side retries of transient store errors.
	RetryMaxAttempts uint64 `yaml:"retry_max_attempts"`
}

type StatsConfig struct {
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Identity   IdentityConfig   `yaml:"identity"`
	Redemption RedemptionConfig `yaml:"redemption"`
	Stats      StatsConfig      `yaml:"stats"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads and validates the YAML config at path.
func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = time.Hour
	}
	if cfg.Redemption.IdempotencyTTL <= 0 {
		cfg.Redemption.IdempotencyTTL = 24 * time.Hour
	}
	if cfg.Redemption.RateLimitAttempts <= 0 {
		cfg.Redemption.RateLimitAttempts = 10
	}
	if cfg.Redemption.RateLimitWindow <= 0 {
		cfg.Redemption.RateLimitWindow = time.Minute
	}
	if cfg.Redemption.RetryMaxAttempts == 0 {
		cfg.Redemption.RetryMaxAttempts = 3
	}
	if cfg.Stats.RefreshInterval <= 0 {
		cfg.Stats.RefreshInterval = 5 * time.Minute
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Identity.JWTSecret == "" {
		return nil, errors.New("identity.jwt_secret is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
