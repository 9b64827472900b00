package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port        string `mapstructure:"port"`
	Environment string `mapstructure:"environment"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r RedisConfig) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

type AuthConfig struct {
	JWTSecret      string `mapstructure:"jwt_secret"`
	JWTExpiryHours int    `mapstructure:"jwt_expiry_hours"`
}

// RateLimitConfig configures the per-IP fixed window limiter.
// Period is in seconds.
type RateLimitConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Limit    int    `mapstructure:"limit"`
	Period   int    `mapstructure:"period"`
	Store    string `mapstructure:"store"` // "redis" or "memory"
	FailOpen bool   `mapstructure:"fail_open"`
}

func (r RateLimitConfig) PeriodDuration() time.Duration {
	return time.Duration(r.Period) * time.Second
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.environment", "development")
	v.SetDefault("database.dsn", "host=localhost user=postgres password=postgres dbname=car_rental port=5432 sslmode=disable")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.jwt_expiry_hours", 1)
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.limit", 100)
	v.SetDefault("rate_limit.period", 60)
	v.SetDefault("rate_limit.store", "redis")
	v.SetDefault("rate_limit.fail_open", false)
	v.SetDefault("log.level", "info")
}

// Load reads the optional config file at path, then applies environment
// overrides prefixed with CARRENTAL_ (e.g. CARRENTAL_RATE_LIMIT_LIMIT).
// A .env file in the working directory is loaded first if present.
func Load(path string) (*Config, error) {
	// Load env if it exists
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("CARRENTAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required (CARRENTAL_AUTH_JWT_SECRET)")
	}
	if c.Auth.JWTExpiryHours <= 0 {
		return errors.New("auth.jwt_expiry_hours must be positive")
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.Limit <= 0 {
			return errors.New("rate_limit.limit must be positive")
		}
		if c.RateLimit.Period <= 0 {
			return errors.New("rate_limit.period must be positive")
		}
		switch c.RateLimit.Store {
		case "redis", "memory":
		default:
			return fmt.Errorf("rate_limit.store must be redis or memory, got %q", c.RateLimit.Store)
		}
	}
	return nil
}
