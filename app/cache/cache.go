package cache

import (
	"context"
	"time"
)

// Cache stores short-lived resolution results keyed by string.
type Cache interface {
	// Get retrieves a value, returning ErrCacheMiss when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL. A zero TTL disables caching
	// for the entry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Close releases any resources held by the cache.
	Close() error
}
