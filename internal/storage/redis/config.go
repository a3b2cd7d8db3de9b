package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// TTL settings; zero means keys never expire
	UserTTL    time.Duration
	ReceiptTTL time.Duration

	// MaxUpdateRetries bounds optimistic retries in UpdateUser
	MaxUpdateRetries int
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:              "redis://localhost:6379",
		PoolSize:         10,
		MinIdleConns:     2,
		UserTTL:          0,
		ReceiptTTL:       90 * 24 * time.Hour,
		MaxUpdateRetries: 10,
	}
}
