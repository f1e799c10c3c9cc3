package redis

import "time"

// DefaultURL is the connection URL used when none is configured.
// It points at an unauthenticated local server and is unsuitable for production.
const DefaultURL = "redis://localhost:6379/0"

// Config holds Redis connection settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379/0)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// DialTimeout bounds the initial connectivity check
	DialTimeout time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          DefaultURL,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
	}
}
