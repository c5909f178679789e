package config

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=3000"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// CORSAllowedOrigins is a comma separated list; "*" allows any origin.
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS, default=*"`
	ActivityWorkers    int    `env:"ACTIVITY_WORKERS,     default=4"`

	Auth  AuthConfig
	Mongo MongoConfig
	Redis RedisConfig
}

// AuthConfig holds the token signing settings. It is built once at startup
// and handed to the token manager by value.
type AuthConfig struct {
	Secret string `env:"JWT_SECRET, required"`
	// Expire accepts a Go duration ("90m", "24h"), a day or week count
	// ("1d", "2w") or a bare number of seconds ("3600").
	Expire string `env:"JWT_EXPIRE, default=24h"`

	// TokenTTL is Expire parsed by Load.
	TokenTTL time.Duration
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=task_tracker"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

// IsDevelopment reports whether the service runs with ENV=development.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// AllowedOrigins splits CORSAllowedOrigins into its trimmed entries.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// Load reads a .env file when one exists, then configuration from the
// environment using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	ttl, err := parseLifetime(cfg.Auth.Expire)
	if err != nil {
		return nil, fmt.Errorf("config: JWT_EXPIRE: %w", err)
	}
	if ttl <= 0 {
		return nil, errors.New("config: JWT_EXPIRE must be positive")
	}
	cfg.Auth.TokenTTL = ttl
	return &cfg, nil
}

func parseLifetime(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(n) * time.Second, nil
	}

	unit := map[byte]time.Duration{'d': 24 * time.Hour, 'w': 7 * 24 * time.Hour}
	if len(s) > 1 {
		if u, ok := unit[s[len(s)-1]]; ok {
			if n, err := strconv.ParseFloat(s[:len(s)-1], 64); err == nil {
				return time.Duration(n * float64(u)), nil
			}
		}
	}
	return 0, fmt.Errorf("invalid lifetime %q", s)
}
