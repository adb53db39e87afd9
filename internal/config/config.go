// Package config loads server settings from the environment.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Session backends.
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// EnvProduction is the GYM_ENV value that turns on strict key handling and secure cookies.
const EnvProduction = "production"

// Config holds every setting the server reads at startup.
type Config struct {
	Env  string `env:"GYM_ENV" env-default:"development"`
	Addr string `env:"GYM_ADDR" env-default:":8080"`
	// MetricsAddr serves /metrics unauthenticated for scrapers; empty disables the listener.
	MetricsAddr string `env:"GYM_METRICS_ADDR"`
	DBPath      string `env:"GYM_DB_PATH" env-default:"gym.db"`

	Admin Admin
	Keys  Keys

	AuthLifetime       time.Duration `env:"GYM_AUTH_LIFETIME" env-default:"8h"`
	SessionBackend     string        `env:"GYM_SESSION_BACKEND" env-default:"memory"`
	SessionIdleTimeout time.Duration `env:"GYM_SESSION_IDLE_TIMEOUT" env-default:"8h"`
	Redis              Redis

	Email Email

	RateLimitPerSecond float64  `env:"GYM_RATE_LIMIT_PER_SECOND" env-default:"10"`
	RateLimitBurst     int      `env:"GYM_RATE_LIMIT_BURST" env-default:"20"`
	SlowRequestMs      int      `env:"GYM_SLOW_REQUEST_MS" env-default:"200"`
	SlowQueryMs        int      `env:"GYM_SLOW_QUERY_MS" env-default:"50"`
	TrustedOrigins     []string `env:"GYM_TRUSTED_ORIGINS" env-separator:"," env-default:"localhost:8080,127.0.0.1:8080"`
}

// Admin configures the single bootstrap admin seeded at startup.
type Admin struct {
	Email    string `env:"GYM_ADMIN_EMAIL" env-default:"admin@gym.local"`
	Name     string `env:"GYM_ADMIN_NAME" env-default:"Administrator"`
	Password string `env:"GYM_ADMIN_PASSWORD"`
}

// Keys holds the hex-encoded secrets as read from the environment.
type Keys struct {
	CookieHashHex  string `env:"GYM_COOKIE_HASH_KEY"`
	CookieBlockHex string `env:"GYM_COOKIE_BLOCK_KEY"`
	CSRFHex        string `env:"GYM_CSRF_KEY"`
}

// Redis configures the shared session backend.
type Redis struct {
	Addr     string `env:"GYM_REDIS_ADDR" env-default:"localhost:6379"`
	Password string `env:"GYM_REDIS_PASSWORD"`
	DB       int    `env:"GYM_REDIS_DB" env-default:"0"`
}

// Email configures outbound mail. An empty ResendKey selects the noop sender.
type Email struct {
	ResendKey string `env:"GYM_RESEND_KEY"`
	From      string `env:"GYM_RESEND_FROM" env-default:"Gym <noreply@gym.local>"`
}

// Secrets are the decoded keys used by the HTTP layer.
type Secrets struct {
	CookieHash  []byte
	CookieBlock []byte
	CSRF        []byte
}

// Load reads an optional .env file and then the process environment.
// POST: Returns a validated Config or an error naming the bad setting
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read .env: %w", err)
	}
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Validate checks settings that cleanenv cannot.
func (c *Config) Validate() error {
	switch c.SessionBackend {
	case SessionBackendMemory, SessionBackendRedis:
	default:
		return fmt.Errorf("GYM_SESSION_BACKEND must be %q or %q, got %q", SessionBackendMemory, SessionBackendRedis, c.SessionBackend)
	}
	if c.AuthLifetime <= 0 {
		return errors.New("GYM_AUTH_LIFETIME must be positive")
	}
	if c.SessionIdleTimeout <= 0 {
		return errors.New("GYM_SESSION_IDLE_TIMEOUT must be positive")
	}
	if c.RateLimitPerSecond <= 0 || c.RateLimitBurst <= 0 {
		return errors.New("GYM_RATE_LIMIT_PER_SECOND and GYM_RATE_LIMIT_BURST must be positive")
	}
	if c.Admin.Email == "" {
		return errors.New("GYM_ADMIN_EMAIL is required")
	}
	return nil
}

// Secrets decodes the configured keys. In production every key must be set;
// elsewhere a missing key is replaced by a random one for this process.
// POST: CookieHash is 32 bytes, CookieBlock is 32 bytes, CSRF is 32 bytes
func (c *Config) Secrets() (Secrets, error) {
	hash, err := loadKey("GYM_COOKIE_HASH_KEY", c.Keys.CookieHashHex, c.IsProduction())
	if err != nil {
		return Secrets{}, err
	}
	block, err := loadKey("GYM_COOKIE_BLOCK_KEY", c.Keys.CookieBlockHex, c.IsProduction())
	if err != nil {
		return Secrets{}, err
	}
	csrfKey, err := loadKey("GYM_CSRF_KEY", c.Keys.CSRFHex, c.IsProduction())
	if err != nil {
		return Secrets{}, err
	}
	return Secrets{CookieHash: hash, CookieBlock: block, CSRF: csrfKey}, nil
}

// loadKey decodes a 32-byte hex key.
func loadKey(name, keyHex string, production bool) ([]byte, error) {
	if keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			return nil, fmt.Errorf("%s must be 64 hex characters (32 bytes)", name)
		}
		return key, nil
	}
	if production {
		return nil, fmt.Errorf("%s is required in production", name)
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate %s: %w", name, err)
	}
	slog.Warn("random_key_generated", "key", name, "note", "sign-ins will not survive a restart")
	return key, nil
}
