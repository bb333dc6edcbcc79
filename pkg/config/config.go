package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	apiURLVar      = "ESCOLA_API_URL"
	sessionVar     = "ESCOLA_SESSION"
	redisAddrVar   = "ESCOLA_REDIS_ADDR"
	redisPrefixVar = "ESCOLA_REDIS_PREFIX"
	timeoutVar     = "ESCOLA_HTTP_TIMEOUT"
)

// Session backends.
const (
	SessionSQLite = "sqlite"
	SessionRedis  = "redis"
	SessionMemory = "memory"
)

const (
	DefaultAPIURL      = "http://localhost:8000/api/v1"
	DefaultRedisAddr   = "localhost:6379"
	DefaultRedisPrefix = "escola"
	DefaultTimeout     = 30 * time.Second
)

// Config holds the runtime settings of the CLI.
type Config struct {
	APIURL      string
	Session     string
	RedisAddr   string
	RedisPrefix string
	HTTPTimeout time.Duration
}

// Load reads the configuration from the environment, falling back to the defaults.
func Load() (Config, error) {
	cfg := Config{
		APIURL:      GetEnv(apiURLVar, DefaultAPIURL),
		Session:     strings.ToLower(GetEnv(sessionVar, SessionSQLite)),
		RedisAddr:   GetEnv(redisAddrVar, DefaultRedisAddr),
		RedisPrefix: GetEnv(redisPrefixVar, DefaultRedisPrefix),
		HTTPTimeout: DefaultTimeout,
	}
	if raw := os.Getenv(timeoutVar); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s %q: %w", timeoutVar, raw, err)
		}
		cfg.HTTPTimeout = d
	}
	return cfg, cfg.Validate()
}

// Validate checks the values that cannot be caught later with a clear message.
func (c Config) Validate() error {
	if err := ValidateSession(c.Session); err != nil {
		return err
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be positive, got %s", c.HTTPTimeout)
	}
	return nil
}

func ValidateSession(kind string) error {
	switch kind {
	case SessionSQLite, SessionRedis, SessionMemory:
		return nil
	default:
		return fmt.Errorf("invalid session backend: %s (must be one of: sqlite, redis, memory)", kind)
	}
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
