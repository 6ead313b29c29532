package app

import (
	"errors"
	"os"
	"strconv"
	"time"
)

type Config struct {
	AdminJWTSecret string // Required: HS256 secret shared with the identity provider
	CronSecret     string // Optional: enables POST /v1/internal/process-outbox when set

	DatabaseFile string // Optional: path to SQLite database file (default: ./portal.db)

	SMTPHost string // SMTP relay for reporter emails (default: localhost)
	SMTPPort int    // (default: 587)
	SMTPUser string // Optional: empty disables SMTP auth
	SMTPPass string
	MailFrom string // From address on reporter emails

	NotifyEndpoint string // Optional: admin notification gateway URL; empty disables fan-out delivery

	OutboxInterval       time.Duration // In-process worker tick (default: 30s, 0 disables the ticker)
	OutboxBatchSize      int           // Jobs per batch (default: 20)
	HousekeepingInterval time.Duration // Sweep interval (default: 1h)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

// ErrMissingJWTSecret means PORTAL_ADMIN_JWT_SECRET is unset. The admin
// surface cannot run without it.
var ErrMissingJWTSecret = errors.New("PORTAL_ADMIN_JWT_SECRET is required")

func LoadConfig() (Config, error) {
	cfg := Config{
		AdminJWTSecret: os.Getenv("PORTAL_ADMIN_JWT_SECRET"),
		CronSecret:     os.Getenv("PORTAL_CRON_SECRET"),

		DatabaseFile: getEnvOrDefault("PORTAL_DATABASE_FILE", "portal.db"),

		SMTPHost: getEnvOrDefault("PORTAL_SMTP_HOST", "localhost"),
		SMTPPort: getEnvIntOrDefault("PORTAL_SMTP_PORT", 587),
		SMTPUser: os.Getenv("PORTAL_SMTP_USER"),
		SMTPPass: os.Getenv("PORTAL_SMTP_PASS"),
		MailFrom: getEnvOrDefault("PORTAL_MAIL_FROM", "no-reply@localhost"),

		NotifyEndpoint: os.Getenv("PORTAL_NOTIFY_ENDPOINT"),

		OutboxInterval:       getEnvDurationOrDefault("PORTAL_OUTBOX_INTERVAL", 30*time.Second),
		OutboxBatchSize:      getEnvIntOrDefault("PORTAL_OUTBOX_BATCH_SIZE", 20),
		HousekeepingInterval: getEnvDurationOrDefault("PORTAL_HOUSEKEEPING_INTERVAL", 1*time.Hour),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	if cfg.AdminJWTSecret == "" {
		return Config{}, ErrMissingJWTSecret
	}

	return cfg, nil
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

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Integer seconds accepted too.
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
