package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// DB stores Postgres connection settings.
type DB struct {
	Host string
	Port string
	User string
	Pass string
	Name string
}

// DSN builds a Postgres connection string.
func (d DB) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		d.User, d.Pass, d.Host, d.Port, d.Name)
}

// Redis stores change-event bus settings.
type Redis struct {
	Addr string
	Pass string
	DB   int
}

// Kafka stores push-event transport settings. Empty brokers disable the
// producer and the worker.
type Kafka struct {
	Brokers   []string
	PushTopic string
	GroupID   string
}

// Feed stores change-feed listener settings.
type Feed struct {
	PollInterval   time.Duration
	ReconnectDelay time.Duration
}

// Presence stores typing-indicator settings.
type Presence struct {
	TypingTimeout time.Duration
	Staleness     time.Duration
}

// Retry stores the backoff policy shared by best-effort write paths.
type Retry struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Config stores dispatch coordinator settings.
type Config struct {
	Port     int
	DB       DB
	Redis    Redis
	Kafka    Kafka
	Feed     Feed
	Presence Presence
	Retry    Retry
}

// Load reads configuration in order: .env (if present) → environment → flags.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: .env not loaded: %v", err)
	}

	cfg := &Config{
		Port:     DefaultPort(),
		DB:       DefaultDB(),
		Redis:    DefaultRedis(),
		Kafka:    DefaultKafka(),
		Feed:     DefaultFeed(),
		Presence: DefaultPresence(),
		Retry:    DefaultRetry(),
	}

	cfg.Port = envInt("PORT", cfg.Port)

	cfg.DB.Host = envStr("POSTGRES_HOST", cfg.DB.Host)
	cfg.DB.Port = envStr("POSTGRES_PORT", cfg.DB.Port)
	cfg.DB.User = envStr("POSTGRES_USER", cfg.DB.User)
	cfg.DB.Pass = envStr("POSTGRES_PASSWORD", cfg.DB.Pass)
	cfg.DB.Name = envStr("POSTGRES_DB", cfg.DB.Name)

	cfg.Redis.Addr = envStr("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Pass = envStr("REDIS_PASSWORD", cfg.Redis.Pass)
	cfg.Redis.DB = envInt("REDIS_DB", cfg.Redis.DB)

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = splitCSV(v)
	}
	cfg.Kafka.PushTopic = envStr("KAFKA_PUSH_TOPIC", cfg.Kafka.PushTopic)
	cfg.Kafka.GroupID = envStr("KAFKA_GROUP_ID", cfg.Kafka.GroupID)

	cfg.Feed.PollInterval = envDuration("FEED_POLL_INTERVAL", cfg.Feed.PollInterval)
	cfg.Feed.ReconnectDelay = envDuration("FEED_RECONNECT_DELAY", cfg.Feed.ReconnectDelay)

	cfg.Presence.TypingTimeout = envDuration("TYPING_TIMEOUT", cfg.Presence.TypingTimeout)
	cfg.Presence.Staleness = envDuration("TYPING_STALENESS", cfg.Presence.Staleness)

	cfg.Retry.MaxAttempts = envInt("RETRY_MAX_ATTEMPTS", cfg.Retry.MaxAttempts)
	cfg.Retry.BaseDelay = envDuration("RETRY_BASE_DELAY", cfg.Retry.BaseDelay)
	cfg.Retry.MaxDelay = envDuration("RETRY_MAX_DELAY", cfg.Retry.MaxDelay)

	pflag.IntVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on")
	if err := pflag.CommandLine.Parse(os.Args[1:]); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if _, err := strconv.Atoi(c.DB.Port); err != nil {
		return fmt.Errorf("invalid postgres port: %q", c.DB.Port)
	}
	if c.Feed.PollInterval <= 0 {
		return fmt.Errorf("invalid feed poll interval: %s", c.Feed.PollInterval)
	}
	if c.Feed.ReconnectDelay <= 0 {
		return fmt.Errorf("invalid feed reconnect delay: %s", c.Feed.ReconnectDelay)
	}
	if c.Presence.TypingTimeout <= 0 || c.Presence.Staleness < c.Presence.TypingTimeout {
		return fmt.Errorf("invalid typing timeouts: timeout=%s staleness=%s",
			c.Presence.TypingTimeout, c.Presence.Staleness)
	}
	if c.Retry.MaxAttempts <= 0 || c.Retry.BaseDelay <= 0 {
		return fmt.Errorf("invalid retry policy: attempts=%d base=%s",
			c.Retry.MaxAttempts, c.Retry.BaseDelay)
	}
	return nil
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
