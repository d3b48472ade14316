package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap/zapcore"
)

type Config struct {
	HTTPPort           string
	GRPCPort           string
	RedisAddr          string
	IdempotencyTTL     time.Duration
	MySQLDSN           string
	ArchiveWorkers     int
	ArchiveQueueSize   int
	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	MaxRequestBodySize int64
	LogLevel           zapcore.Level
}

// Load reads the configuration from the environment. Redis and MySQL stay
// disabled unless their address is set.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPPort:  getEnv("HTTP_PORT", "8080"),
		GRPCPort:  getEnv("GRPC_PORT", "50051"),
		RedisAddr: os.Getenv("REDIS_ADDR"),
		MySQLDSN:  os.Getenv("MYSQL_DSN"),
	}

	var err error
	if cfg.IdempotencyTTL, err = getDuration("IDEMPOTENCY_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ArchiveWorkers, err = getInt("ARCHIVE_WORKERS", 4); err != nil {
		return nil, err
	}
	if cfg.ArchiveQueueSize, err = getInt("ARCHIVE_QUEUE_SIZE", 1000); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	maxBody, err := getInt("MAX_REQUEST_BODY_BYTES", 1<<20)
	if err != nil {
		return nil, err
	}
	cfg.MaxRequestBodySize = int64(maxBody)

	if cfg.LogLevel, err = zapcore.ParseLevel(getEnv("LOG_LEVEL", "info")); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	return cfg, nil
}

// ArchiveEnabled reports whether order snapshots should be written to MySQL.
func (c *Config) ArchiveEnabled() bool {
	return c.MySQLDSN != "" && c.ArchiveWorkers > 0 && c.ArchiveQueueSize > 0
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s: invalid non-negative integer %q", key, value)
	}
	return n, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
