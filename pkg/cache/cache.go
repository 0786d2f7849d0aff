// Package cache provides the durable, time-bounded result cache used by the
// aggregation layer, together with the key-value stores it can sit on.
package cache

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by a Store when a key has no stored value.
var ErrNotFound = errors.New("cache: key not found")

// Store is a durable key-value store holding opaque, already-serialized entries.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the stored bytes for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	io.Closer
}

// Observer receives hit and miss notifications from a TTLCache.
type Observer interface {
	CacheHit(resource string)
	CacheMiss(resource string)
}
