package config

import "time"

const defaultPort = 8080

var defaultDB = DB{
	Host: "127.0.0.1",
	Port: "5432",
	User: "dispatch",
	Pass: "dispatch",
	Name: "dispatch_db",
}

var defaultRedis = Redis{
	Addr: "127.0.0.1:6379",
}

var defaultKafka = Kafka{
	PushTopic: "push-events",
	GroupID:   "push-worker",
}

var defaultFeed = Feed{
	PollInterval:   30 * time.Second,
	ReconnectDelay: 2 * time.Second,
}

var defaultPresence = Presence{
	TypingTimeout: 2 * time.Second,
	Staleness:     5 * time.Second,
}

var defaultRetry = Retry{
	MaxAttempts: 3,
	BaseDelay:   time.Second,
	MaxDelay:    8 * time.Second,
}

// DefaultPort returns the default port.
func DefaultPort() int {
	return defaultPort
}

// DefaultDB returns the default database settings.
func DefaultDB() DB {
	return defaultDB
}

// DefaultRedis returns the default change-event bus settings.
func DefaultRedis() Redis {
	return defaultRedis
}

// DefaultKafka returns the default push-event transport settings.
func DefaultKafka() Kafka {
	return defaultKafka
}

// DefaultFeed returns the default change-feed listener settings.
func DefaultFeed() Feed {
	return defaultFeed
}

// DefaultPresence returns the default typing-indicator settings.
func DefaultPresence() Presence {
	return defaultPresence
}

// DefaultRetry returns the default backoff policy.
func DefaultRetry() Retry {
	return defaultRetry
}
