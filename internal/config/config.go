package config

import (
	"os"
	"time"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Orchestrator
	SettleDelay      time.Duration
	FeedPollInterval time.Duration

	// Duplicate detection
	DuplicateWindow time.Duration

	// Moderation policy
	PolicyPath string
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "marketplace_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		SettleDelay:      parseDuration(getEnv("SETTLE_DELAY", "2s"), 2*time.Second),
		FeedPollInterval: parseDuration(getEnv("FEED_POLL_INTERVAL", "1s"), time.Second),

		DuplicateWindow: parseDuration(getEnv("DUPLICATE_WINDOW", "24h"), 24*time.Hour),

		PolicyPath: getEnv("POLICY_PATH", ""),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
