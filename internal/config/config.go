// Package config reads runtime settings from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/abhisek/tutor/internal/store"
)

// Store backends.
const (
	StoreSQLite   = "sqlite"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// DefaultReminderInterval is how often the watcher checks for due cards.
const DefaultReminderInterval = 30 * time.Minute

// Config holds runtime settings.
type Config struct {
	// Store selects the persistence backend.
	// Values: "sqlite", "redis", "postgres", "memory"
	Store string

	// DBPath is the SQLite file. Empty means store.DefaultDBPath.
	DBPath string

	RedisURL    string
	RedisPrefix string
	PostgresURL string

	// StoreAttempts is how many times the Redis and Postgres backends try
	// each read or write. 1, the default, means no retries.
	StoreAttempts int

	ReminderInterval time.Duration

	// Optional reminder sinks, used by the watcher in addition to stdout.
	WebhookURL   string
	AMQPURL      string
	AMQPExchange string

	// MetricsAddr, when set, serves Prometheus metrics while watching.
	MetricsAddr string
}

// Load reads envFiles (default ".env") if present, then builds a Config
// from TUTOR_* variables. Variables already set in the process win over
// the file.
func Load(envFiles ...string) (*Config, error) {
	// A missing .env is normal.
	_ = godotenv.Load(envFiles...)

	cfg := &Config{
		Store:            strings.ToLower(getEnvOrDefault("TUTOR_STORE", StoreSQLite)),
		DBPath:           os.Getenv("TUTOR_DB"),
		RedisURL:         getEnvOrDefault("TUTOR_REDIS_URL", "redis://localhost:6379/0"),
		RedisPrefix:      getEnvOrDefault("TUTOR_REDIS_PREFIX", "tutor:"),
		PostgresURL:      os.Getenv("TUTOR_POSTGRES_URL"),
		StoreAttempts:    1,
		ReminderInterval: DefaultReminderInterval,
		WebhookURL:       os.Getenv("TUTOR_REMINDER_WEBHOOK"),
		AMQPURL:          os.Getenv("TUTOR_AMQP_URL"),
		AMQPExchange:     getEnvOrDefault("TUTOR_AMQP_EXCHANGE", "tutor.reminders"),
		MetricsAddr:      os.Getenv("TUTOR_METRICS_ADDR"),
	}

	if v := os.Getenv("TUTOR_REMINDER_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parse TUTOR_REMINDER_INTERVAL: %w", err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("TUTOR_REMINDER_INTERVAL must be positive, got %s", v)
		}
		cfg.ReminderInterval = d
	}

	if v := os.Getenv("TUTOR_STORE_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parse TUTOR_STORE_ATTEMPTS: %w", err)
		}
		if n < 1 {
			return nil, fmt.Errorf("TUTOR_STORE_ATTEMPTS must be at least 1, got %d", n)
		}
		cfg.StoreAttempts = n
	}

	switch cfg.Store {
	case StoreSQLite, StoreRedis, StoreMemory:
	case StorePostgres:
		if cfg.PostgresURL == "" {
			return nil, fmt.Errorf("TUTOR_POSTGRES_URL is required when TUTOR_STORE=postgres")
		}
	default:
		return nil, fmt.Errorf("unknown TUTOR_STORE %q", cfg.Store)
	}

	return cfg, nil
}

// OpenKV opens the configured backend. The returned closer releases it.
// Network backends retry only when StoreAttempts asks for it.
func OpenKV(cfg *Config) (store.KV, io.Closer, error) {
	switch cfg.Store {
	case StoreMemory:
		return store.NewMemoryKV(), nopCloser{}, nil
	case StoreRedis:
		kv, err := store.OpenRedis(cfg.RedisURL, cfg.RedisPrefix)
		if err != nil {
			return nil, nil, err
		}
		return withRetry(kv, cfg), kv, nil
	case StorePostgres:
		kv, err := store.OpenPostgres(cfg.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		return withRetry(kv, cfg), kv, nil
	default:
		path := cfg.DBPath
		if path == "" {
			p, err := store.DefaultDBPath()
			if err != nil {
				return nil, nil, fmt.Errorf("resolve database path: %w", err)
			}
			path = p
		} else if err := store.EnsureDir(path); err != nil {
			return nil, nil, err
		}
		st, err := store.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open store: %w", err)
		}
		return st, st, nil
	}
}

func withRetry(kv store.KV, cfg *Config) store.KV {
	if cfg.StoreAttempts <= 1 {
		return kv
	}
	rc := store.DefaultRetryConfig()
	rc.MaxAttempts = cfg.StoreAttempts
	return store.WithRetry(kv, rc)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
