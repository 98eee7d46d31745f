// Package config loads the service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the service configuration. It is read once at startup.
type Config struct {
	DatabaseURL string
	RedisAddr   string
	HTTPAddr    string

	// ReadOnly suspends all writes.
	ReadOnly bool
	// PerPage is the default feed page size.
	PerPage int

	PostRatePerMinute int
	PostBurst         int

	NetworkCacheTTL time.Duration
	CookieSecure    bool
	LogLevel        slog.Level
	ShutdownTimeout time.Duration
}

// Load reads an optional .env file from the working directory and then the
// environment. Variables already set in the environment win over .env.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables alone.
func FromEnv() (*Config, error) {
	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
	}

	var missing []string
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if cfg.RedisAddr == "" {
		missing = append(missing, "REDIS_ADDR")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	cfg.HTTPAddr = getEnvString("HTTP_ADDR", ":8080")
	cfg.ReadOnly = getEnvBool("READ_ONLY", false)
	cfg.PerPage = getEnvInt("PER_PAGE", 25)
	cfg.PostRatePerMinute = getEnvInt("POST_RATE_PER_MINUTE", 10)
	cfg.PostBurst = getEnvInt("POST_BURST", 5)
	cfg.NetworkCacheTTL = getEnvDuration("NETWORK_CACHE_TTL", 10*time.Minute)
	cfg.CookieSecure = getEnvBool("COOKIE_SECURE", false)
	cfg.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second)

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnvString("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if cfg.PerPage <= 0 {
		return nil, fmt.Errorf("PER_PAGE must be positive, got %d", cfg.PerPage)
	}

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvBool(key string, defaultVal bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
