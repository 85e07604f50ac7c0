package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration.
type Config struct {
	Env      string
	HTTPAddr string
	BaseURL  string

	DBDSN      string
	DBMaxConns int
	JWTSecret  string

	LogLevel string

	SessionHours        int
	SubmitRateLimitRPM  int
	MaxBodyBytes        int64
	InviteRetentionDays int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Env = strings.TrimSpace(os.Getenv("FK_ENV"))
	if cfg.Env == "" {
		return nil, fmt.Errorf("FK_ENV is required")
	}
	if cfg.Env != "dev" && cfg.Env != "prod" {
		return nil, fmt.Errorf("FK_ENV must be one of: dev, prod (got: %s)", cfg.Env)
	}

	cfg.HTTPAddr = getEnvOrDefault("FK_HTTP_ADDR", ":8080")

	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(os.Getenv("FK_BASE_URL")), "/")
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("FK_BASE_URL is required")
	}

	cfg.DBDSN = strings.TrimSpace(os.Getenv("FK_DB_DSN"))
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("FK_DB_DSN is required")
	}

	cfg.JWTSecret = os.Getenv("FK_JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("FK_JWT_SECRET is required")
	}
	if cfg.Env == "prod" && len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("FK_JWT_SECRET must be at least 32 characters (currently %d)", len(cfg.JWTSecret))
	}

	cfg.LogLevel = getEnvOrDefault("FK_LOG_LEVEL", "info")
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("FK_LOG_LEVEL must be one of: debug, info, warn, error (got: %s)", cfg.LogLevel)
	}

	var err error
	cfg.DBMaxConns, err = getEnvIntOrDefault("FK_DB_MAX_CONNS", 25)
	if err != nil {
		return nil, err
	}
	if cfg.DBMaxConns <= 0 || cfg.DBMaxConns > 1000 {
		return nil, fmt.Errorf("FK_DB_MAX_CONNS must be between 1 and 1000 (got: %d)", cfg.DBMaxConns)
	}

	cfg.SessionHours, err = getEnvIntOrDefault("FK_SESSION_HOURS", 24)
	if err != nil {
		return nil, err
	}
	if cfg.SessionHours < 1 || cfg.SessionHours > 720 {
		return nil, fmt.Errorf("FK_SESSION_HOURS must be between 1 and 720 (got: %d)", cfg.SessionHours)
	}

	cfg.SubmitRateLimitRPM, err = getEnvIntOrDefault("FK_SUBMIT_RATE_LIMIT_RPM", 30)
	if err != nil {
		return nil, err
	}
	if cfg.SubmitRateLimitRPM <= 0 {
		return nil, fmt.Errorf("FK_SUBMIT_RATE_LIMIT_RPM must be positive (got: %d)", cfg.SubmitRateLimitRPM)
	}

	cfg.MaxBodyBytes, err = getEnvInt64OrDefault("FK_MAX_BODY_BYTES", 1024*1024)
	if err != nil {
		return nil, err
	}
	if cfg.MaxBodyBytes <= 0 {
		return nil, fmt.Errorf("FK_MAX_BODY_BYTES must be positive (got: %d)", cfg.MaxBodyBytes)
	}

	cfg.InviteRetentionDays, err = getEnvIntOrDefault("FK_INVITE_RETENTION_DAYS", 30)
	if err != nil {
		return nil, err
	}
	if cfg.InviteRetentionDays <= 0 {
		return nil, fmt.Errorf("FK_INVITE_RETENTION_DAYS must be positive (got: %d)", cfg.InviteRetentionDays)
	}

	return cfg, nil
}

// IsDev returns true if running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "dev"
}

// RedactedValues returns a map of config values with secrets redacted.
func (c *Config) RedactedValues() map[string]string {
	return map[string]string{
		"FK_ENV":                   c.Env,
		"FK_HTTP_ADDR":             c.HTTPAddr,
		"FK_BASE_URL":              c.BaseURL,
		"FK_DB_DSN":                RedactDSN(c.DBDSN),
		"FK_DB_MAX_CONNS":          strconv.Itoa(c.DBMaxConns),
		"FK_JWT_SECRET":            "[REDACTED]",
		"FK_LOG_LEVEL":             c.LogLevel,
		"FK_SESSION_HOURS":         strconv.Itoa(c.SessionHours),
		"FK_SUBMIT_RATE_LIMIT_RPM": strconv.Itoa(c.SubmitRateLimitRPM),
		"FK_MAX_BODY_BYTES":        strconv.FormatInt(c.MaxBodyBytes, 10),
		"FK_INVITE_RETENTION_DAYS": strconv.Itoa(c.InviteRetentionDays),
	}
}

// RedactDSN hides the credentials part of a postgres:// DSN.
func RedactDSN(dsn string) string {
	if start := strings.Index(dsn, "://"); start != -1 {
		if end := strings.Index(dsn[start+3:], "@"); end != -1 {
			return dsn[:start+3] + "[REDACTED]" + dsn[start+3+end:]
		}
	}
	return dsn
}

func getEnvOrDefault(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer (got: %q)", key, value)
	}
	return parsed, nil
}

func getEnvInt64OrDefault(key string, defaultValue int64) (int64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer (got: %q)", key, value)
	}
	return parsed, nil
}
