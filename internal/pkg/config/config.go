package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Session store backends.
const (
	StoreMongo = "mongo"
	StoreRedis = "redis"
)

type Config struct {
	Port         string `env:"PORT,          default=8080"`
	Env          string `env:"ENV,           default=development"`
	LogLevel     string `env:"LOG_LEVEL,     default=info"`
	InviteSecret string `env:"INVITE_SECRET"`
	AuditWorkers int    `env:"AUDIT_WORKERS, default=4"`

	Mongo   MongoConfig
	Redis   RedisConfig
	Session SessionConfig
	Cookie  CookieConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=cbt"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type SessionConfig struct {
	Store       string        `env:"SESSION_STORE,        default=mongo"`
	TTL         time.Duration `env:"SESSION_TTL,          default=168h"`
	RememberTTL time.Duration `env:"SESSION_REMEMBER_TTL, default=720h"`
	// CacheTTL of zero disables the in-process session cache.
	CacheTTL   time.Duration `env:"SESSION_CACHE_TTL,   default=60s"`
	CacheSweep time.Duration `env:"SESSION_CACHE_SWEEP, default=5m"`
}

type CookieConfig struct {
	Secure   bool   `env:"SESSION_COOKIE_SECURE,   default=false"`
	SameSite string `env:"SESSION_COOKIE_SAMESITE, default=lax"`
	Domain   string `env:"SESSION_COOKIE_DOMAIN"`
}

// IsDevelopment reports whether the service runs locally.
func (c *Config) IsDevelopment() bool { return c.Env == "development" }

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	switch c.Session.Store {
	case StoreMongo, StoreRedis:
	default:
		return fmt.Errorf("SESSION_STORE must be %q or %q, got %q", StoreMongo, StoreRedis, c.Session.Store)
	}
	if c.Session.TTL <= 0 || c.Session.RememberTTL <= 0 {
		return fmt.Errorf("SESSION_TTL and SESSION_REMEMBER_TTL must be positive")
	}
	if c.InviteSecret == "" && !c.IsDevelopment() {
		return fmt.Errorf("INVITE_SECRET is required outside development")
	}
	return nil
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return &cfg
}
