// Package config loads engine configuration from the environment. A .env
// file is honored when present; real environment variables win.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port     int    `validate:"min=1,max=65535"`
	LogLevel string `validate:"oneof=DEBUG INFO WARN ERROR"`
	LogDir   string `validate:"required"`

	// APIKey guards the operator API. Empty disables the HTTP surface
	// entirely rather than running it open.
	APIKey         string
	TrustedProxies []string

	DBUser     string `validate:"required"`
	DBPassword string `validate:"required"`
	DBHost     string `validate:"required"`
	DBPort     string `validate:"required"`
	DBName     string `validate:"required"`
	DBMaxConns int    `validate:"min=1"`

	// Game loop cadence.
	DrawIntervalSeconds  int `validate:"min=5"`
	SettleTimeoutSeconds int `validate:"min=1"`
	MaxDrawsPerDay       int `validate:"min=1,max=999"`

	// Settlement and compensation.
	SettleWorkers           int `validate:"min=1"`
	CompensationScanSeconds int `validate:"min=5"`
	MaxSettleRetries        int `validate:"min=1"`
	RetryBackoffSeconds     int `validate:"min=1"`
	StaleRunMinutes         int `validate:"min=1"`

	// Draw control. AutoDetectThresholdCents is the first-two-position
	// exposure above which the generator starts steering; zero disables it.
	AutoDetectThresholdCents int64 `validate:"min=0"`

	// Market ceilings enforced against directory data at settlement time.
	MaxRebateCapBps   int64 `validate:"min=0,max=10000"`
	MaxOddsThousandth int64 `validate:"min=1000"`

	// Background infrastructure.
	WorkerPoolSize     int    `validate:"min=1"`
	WorkerQueueSize    int    `validate:"min=1"`
	DeadLetterPath     string `validate:"required"`
	AuditRetentionDays int    `validate:"min=1"`
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:   getEnv("LOG_LEVEL", "INFO"),
		LogDir:     getEnv("LOG_DIR", "logs"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBName:     getEnv("DB_NAME", "draw10"),

		DeadLetterPath: getEnv("DEAD_LETTER_PATH", "logs/dead_letter_events.jsonl"),

		APIKey: getEnv("API_KEY", ""),
	}

	if proxies := getEnv("TRUSTED_PROXIES", ""); proxies != "" {
		cfg.TrustedProxies = strings.Split(proxies, ",")
	}

	intFields := []struct {
		dst          *int
		key          string
		defaultValue int
	}{
		{&cfg.Port, "PORT", DefaultPort},
		{&cfg.DBMaxConns, "DB_MAX_CONNS", DefaultDBMaxConns},
		{&cfg.DrawIntervalSeconds, "DRAW_INTERVAL_SECONDS", DefaultDrawIntervalSeconds},
		{&cfg.SettleTimeoutSeconds, "SETTLE_TIMEOUT_SECONDS", DefaultSettleTimeoutSeconds},
		{&cfg.MaxDrawsPerDay, "MAX_DRAWS_PER_DAY", DefaultMaxDrawsPerDay},
		{&cfg.SettleWorkers, "SETTLE_WORKERS", DefaultSettleWorkers},
		{&cfg.CompensationScanSeconds, "COMPENSATION_SCAN_SECONDS", DefaultCompensationScanSeconds},
		{&cfg.MaxSettleRetries, "MAX_SETTLE_RETRIES", DefaultMaxSettleRetries},
		{&cfg.RetryBackoffSeconds, "RETRY_BACKOFF_SECONDS", DefaultRetryBackoffSeconds},
		{&cfg.StaleRunMinutes, "STALE_RUN_MINUTES", DefaultStaleRunMinutes},
		{&cfg.WorkerPoolSize, "WORKER_POOL_SIZE", DefaultWorkerPoolSize},
		{&cfg.WorkerQueueSize, "WORKER_QUEUE_SIZE", DefaultWorkerQueueSize},
		{&cfg.AuditRetentionDays, "AUDIT_RETENTION_DAYS", DefaultAuditRetentionDays},
	}
	for _, f := range intFields {
		v, err := getEnvInt(f.key, f.defaultValue)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}

	var err error
	if cfg.AutoDetectThresholdCents, err = getEnvInt64("AUTO_DETECT_THRESHOLD_CENTS", DefaultAutoDetectThresholdCents); err != nil {
		return nil, err
	}
	if cfg.MaxRebateCapBps, err = getEnvInt64("MAX_REBATE_CAP_BPS", DefaultMaxRebateCapBps); err != nil {
		return nil, err
	}
	if cfg.MaxOddsThousandth, err = getEnvInt64("MAX_ODDS_THOUSANDTHS", DefaultMaxOddsThousandths); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return v, nil
}

func getEnvInt64(key string, defaultValue int64) (int64, error) {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return v, nil
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}

// DrawInterval returns the period cadence as a duration.
func (c *Config) DrawInterval() time.Duration {
	return time.Duration(c.DrawIntervalSeconds) * time.Second
}

// SettleTimeout returns how long one cycle waits on settlement.
func (c *Config) SettleTimeout() time.Duration {
	return time.Duration(c.SettleTimeoutSeconds) * time.Second
}

// CompensationScan returns the supervisor's scan interval.
func (c *Config) CompensationScan() time.Duration {
	return time.Duration(c.CompensationScanSeconds) * time.Second
}

// RetryBackoff returns the base delay between settlement retries.
func (c *Config) RetryBackoff() time.Duration {
	return time.Duration(c.RetryBackoffSeconds) * time.Second
}

// StaleRunAge returns the age past which an exclusivity marker is presumed
// abandoned by a crashed settler.
func (c *Config) StaleRunAge() time.Duration {
	return time.Duration(c.StaleRunMinutes) * time.Minute
}
