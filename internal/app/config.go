package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	JWTSecret string // Required: HS256 signing secret for access and refresh tokens
	Issuer    string // Optional: issuer claim for tokens (default: tasklight)

	AccessTokenTTL  time.Duration // Optional: access token lifetime (default: 15m)
	RefreshTokenTTL time.Duration // Optional: refresh token lifetime (default: 168h)
	ResetTokenTTL   time.Duration // Optional: password reset token lifetime (default: 1h)
	BcryptCost      int           // Optional: bcrypt cost factor (default: 12)

	DatabaseFile string // Optional: path to SQLite database file (default: ./tasklight.db)
	BaseURL      string // Optional: public base URL used in verification/reset links

	SMTPAddr string // Optional: host:port of the SMTP relay; empty logs mail instead
	SMTPFrom string // Optional: From address for outbound mail

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Expired reset token sweep interval (default: 15m)
	AuditBuffer          int           // Audit recorder channel capacity (default: 256)
}

func LoadConfig() Config {
	cfg := Config{
		JWTSecret: os.Getenv("TASKLIGHT_JWT_SECRET"),
		Issuer:    getEnvOrDefault("TASKLIGHT_ISSUER", "tasklight"),

		AccessTokenTTL:  getEnvDurationOrDefault("TASKLIGHT_ACCESS_TTL", 15*time.Minute),
		RefreshTokenTTL: getEnvDurationOrDefault("TASKLIGHT_REFRESH_TTL", 7*24*time.Hour),
		ResetTokenTTL:   getEnvDurationOrDefault("TASKLIGHT_RESET_TTL", time.Hour),
		BcryptCost:      getEnvIntOrDefault("TASKLIGHT_BCRYPT_COST", 12),

		DatabaseFile: getEnvOrDefault("TASKLIGHT_DATABASE_FILE", "tasklight.db"),
		BaseURL:      getEnvOrDefault("TASKLIGHT_BASE_URL", "http://localhost:8080"),

		SMTPAddr: os.Getenv("TASKLIGHT_SMTP_ADDR"),
		SMTPFrom: getEnvOrDefault("TASKLIGHT_SMTP_FROM", "no-reply@tasklight.local"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 15*time.Minute),
		AuditBuffer:          getEnvIntOrDefault("TASKLIGHT_AUDIT_BUFFER", 256),
	}

	return cfg
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

	return defaultValue
}
