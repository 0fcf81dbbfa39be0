// Package config collects the gateway's environment-driven settings in one
// place so cmd/server stays a wiring file.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds every runtime knob for the gateway.
type Config struct {
	Port      string
	JWTSecret string

	// History store. When DatabaseURL is empty the gateway falls back to a
	// local sqlite file, which is what development and tests use.
	DatabaseURL string
	SQLitePath  string

	// Hot-state cache.
	RedisAddr     string
	RedisPassword string

	// Authoritative trading engine. An empty address selects the local-only
	// order strategy (degraded/offline mode).
	EngineAddr        string
	EngineCallTimeout time.Duration
	EnginePoolSize    int

	// Live feed.
	MarketDataChannel string

	// Inbound request deadline.
	RequestTimeout time.Duration
}

// Load reads the configuration from the environment, applying defaults for
// anything unset.
func Load() *Config {
	return &Config{
		Port:              getenv("PORT", "8080"),
		JWTSecret:         getenv("JWT_SECRET", "gateway-secret-key"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		SQLitePath:        getenv("SQLITE_PATH", "gateway.db"),
		RedisAddr:         getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		EngineAddr:        os.Getenv("ENGINE_ADDR"),
		EngineCallTimeout: getduration("ENGINE_CALL_TIMEOUT", 3*time.Second),
		EnginePoolSize:    getint("ENGINE_POOL_SIZE", 16),
		MarketDataChannel: getenv("MARKET_DATA_CHANNEL", "market_data"),
		RequestTimeout:    getduration("REQUEST_TIMEOUT", 10*time.Second),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getduration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
