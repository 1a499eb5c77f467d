package app

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

type Config struct {
	SigningSecret string // Required: symmetric secret for access token signing

	AccessTokenTTL       time.Duration // Optional: access token lifetime (default: 15m)
	RefreshTokenTTL      time.Duration // Optional: refresh token lifetime (default: 168h)
	DatabaseFile         string        // Optional: path to SQLite database file (default: ./outlay.db)
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	return Config{
		SigningSecret:        os.Getenv("OUTLAY_SIGNING_SECRET"),
		AccessTokenTTL:       getEnvDurationOrDefault("OUTLAY_ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL:      getEnvDurationOrDefault("OUTLAY_REFRESH_TOKEN_TTL", 7*24*time.Hour),
		DatabaseFile:         getEnvOrDefault("OUTLAY_DATABASE_FILE", "outlay.db"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		slog.Warn("ignoring unparseable duration", "key", key, "value", value, "default", defaultValue)
		return defaultValue
	}
	return duration
}
