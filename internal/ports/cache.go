package ports

import (
	"context"
	"time"
)

// Cache defines the contract for caching operations.
// Cache outages are not storage outages: callers log cache errors and fall
// back to the repository.
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns domain.ErrNotFound if the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache. A ttl of 0 means no expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache.
	// Does not return an error if the key does not exist.
	Delete(ctx context.Context, key string) error
}
