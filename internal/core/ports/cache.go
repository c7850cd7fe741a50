package ports

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned when a key is absent or expired. Correctness must
// never depend on cache presence; callers fall back to the store of record.
var ErrCacheMiss = errors.New("cache miss")

// CacheService defines the interface for a TTL key/value cache.
type CacheService interface {
	// Get retrieves a value from the cache.
	// The implementation unmarshals the data into the 'dest' pointer.
	Get(ctx context.Context, key string, dest interface{}) error

	// Set stores a value in the cache with a TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes a value from the cache.
	Delete(ctx context.Context, key string) error
}
