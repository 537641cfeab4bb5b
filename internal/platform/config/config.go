package config

import (
	"os"
	"strconv"
	"time"
)

// Config captures server-level configuration.
type Config struct {
	Addr          string
	Env           string
	DatabaseURL   string
	JWTSigningKey string
	Redis         RedisConfig

	// ChatPollInterval bounds staleness for clients refreshing an open
	// conversation. Multi-client convergence is pull-based; see chat/sync.
	ChatPollInterval time.Duration
}

// RedisConfig holds connection tuning for the optional Redis instance used
// for cross-instance locking.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	addr := os.Getenv("PEDULIKUCING_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	env := os.Getenv("PEDULIKUCING_ENV")
	if env == "" {
		env = "development"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development fallback; must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Config{
		Addr:             addr,
		Env:              env,
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		JWTSigningKey:    jwtSigningKey,
		ChatPollInterval: durationEnv("CHAT_POLL_INTERVAL", 5*time.Second),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     intEnv("REDIS_POOL_SIZE", 10),
			MinIdleConns: intEnv("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  durationEnv("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  durationEnv("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: durationEnv("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
	}
}

func intEnv(key string, fallback int) int {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if raw := os.Getenv(key); raw != "" {
		if v, err := time.ParseDuration(raw); err == nil {
			return v
		}
	}
	return fallback
}
