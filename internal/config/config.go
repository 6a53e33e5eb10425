package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all application configuration
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	JWT         JWTConfig         `yaml:"jwt"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	Redis       RedisConfig       `yaml:"redis"`
	Idempotency IdempotencyConfig `yaml:"idempotency"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port           string        `env:"PORT" env-default:"3000" yaml:"port"`
	Env            string        `env:"SERVER_ENV" env-default:"development" yaml:"env"`
	LogLevel       string        `env:"LOG_LEVEL" env-default:"info" yaml:"log_level"`
	ReadTimeout    time.Duration `env:"SERVER_READ_TIMEOUT" env-default:"15s" yaml:"read_timeout"`
	WriteTimeout   time.Duration `env:"SERVER_WRITE_TIMEOUT" env-default:"15s" yaml:"write_timeout"`
	IdleTimeout    time.Duration `env:"SERVER_IDLE_TIMEOUT" env-default:"60s" yaml:"idle_timeout"`
	TrustProxy     bool          `env:"TRUST_PROXY" env-default:"true" yaml:"trust_proxy"`
	AllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" env-default:"*" env-separator:"," yaml:"allowed_origins"`
}

// DatabaseConfig holds SurrealDB connection settings
type DatabaseConfig struct {
	Host      string `env:"DB_HOST" env-default:"localhost" yaml:"host"`
	Port      string `env:"DB_PORT" env-default:"8000" yaml:"port"`
	Namespace string `env:"DB_NAMESPACE" env-default:"jobs" yaml:"namespace"`
	Database  string `env:"DB_DATABASE" env-default:"jobs" yaml:"database"`
	User      string `env:"DB_USER" env-default:"root" yaml:"user"`
	Password  string `env:"DB_PASSWORD" env-default:"root" yaml:"password"`
}

// JWTConfig holds token signing settings
type JWTConfig struct {
	Secret   string        `env:"JWT_SECRET" yaml:"secret"`
	Lifetime time.Duration `env:"JWT_LIFETIME" env-default:"720h" yaml:"lifetime"`
	Issuer   string        `env:"JWT_ISSUER" env-default:"jobs-api" yaml:"issuer"`
}

// RateLimitConfig caps requests per client address
type RateLimitConfig struct {
	Max    int           `env:"RATE_LIMIT_MAX" env-default:"100" yaml:"max"`
	Window time.Duration `env:"RATE_LIMIT_WINDOW" env-default:"15m" yaml:"window"`
}

// RedisConfig is optional. When URL is empty rate limit counters stay in process.
type RedisConfig struct {
	URL string `env:"REDIS_URL" yaml:"url"`
}

// IdempotencyConfig controls how long Idempotency-Key responses are replayed
type IdempotencyConfig struct {
	TTL time.Duration `env:"IDEMPOTENCY_TTL" env-default:"24h" yaml:"ttl"`
}

// minProductionSecret is the shortest HS256 key accepted in production.
const minProductionSecret = 32

// Load reads configuration from environment variables. When path is not
// empty the file is read first and environment variables override it.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		return &cfg, nil
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	return &cfg, nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// SlogLevel maps LOG_LEVEL to a slog level. Unknown values fall back to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Server.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate checks that all required configuration values are present and valid.
// It returns an error describing all validation failures, or nil if valid.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	if c.Server.Env != "development" && c.Server.Env != "production" && c.Server.Env != "test" {
		errs = append(errs, fmt.Errorf("SERVER_ENV must be 'development', 'production', or 'test', got '%s'", c.Server.Env))
	}
	if len(c.Server.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("CORS_ALLOWED_ORIGINS must have at least one origin"))
	}

	if c.Database.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.Database.Port == "" {
		errs = append(errs, errors.New("DB_PORT is required"))
	}
	if c.Database.Namespace == "" {
		errs = append(errs, errors.New("DB_NAMESPACE is required"))
	}
	if c.Database.Database == "" {
		errs = append(errs, errors.New("DB_DATABASE is required"))
	}

	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	} else if c.IsProduction() && len(c.JWT.Secret) < minProductionSecret {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes in production", minProductionSecret))
	}
	if c.JWT.Lifetime <= 0 {
		errs = append(errs, errors.New("JWT_LIFETIME must be positive"))
	}

	if c.RateLimit.Max <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_MAX must be positive"))
	}
	if c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_WINDOW must be positive"))
	}

	if c.Redis.URL != "" && !strings.HasPrefix(c.Redis.URL, "redis://") && !strings.HasPrefix(c.Redis.URL, "rediss://") {
		errs = append(errs, errors.New("REDIS_URL must use the redis:// or rediss:// scheme"))
	}

	if c.Idempotency.TTL <= 0 {
		errs = append(errs, errors.New("IDEMPOTENCY_TTL must be positive"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
