package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// envelope is the stored shape of every cache entry.
type envelope[V any] struct {
	Timestamp int64 `json:"timestamp"`
	Payload   V     `json:"data"`
}

type ttlOptions struct {
	now      func() time.Time
	observer Observer
}

// Option customises a TTLCache.
type Option func(*ttlOptions)

// WithClock replaces the wall clock used to stamp and age entries.
func WithClock(now func() time.Time) Option {
	return func(o *ttlOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// WithObserver registers an Observer for hit/miss accounting.
func WithObserver(observer Observer) Option {
	return func(o *ttlOptions) {
		o.observer = observer
	}
}

// TTLCache stores timestamped payloads of type V in a Store. An entry is valid
// while now - timestamp < ttl. Stale entries are not evicted; they read as a
// miss and are overwritten by the next Write.
//
// TTLCache never returns an error: store failures and corrupt entries read as
// misses, and failed writes are logged and dropped.
type TTLCache[V any] struct {
	store    Store
	resource string
	ttl      time.Duration
	now      func() time.Time
	observer Observer
	logger   zerolog.Logger
}

// NewTTLCache creates a TTLCache for one resource type. The resource name is
// used for logging and metrics only; callers own the key namespace.
func NewTTLCache[V any](
	store Store,
	resource string,
	ttl time.Duration,
	logger zerolog.Logger,
	opts ...Option,
) (*TTLCache[V], error) {
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("ttl must be greater than 0")
	}
	o := ttlOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &TTLCache[V]{
		store:    store,
		resource: resource,
		ttl:      ttl,
		now:      o.now,
		observer: o.observer,
		logger:   logger.With().Str("component", "TTLCache").Str("resource", resource).Logger(),
	}, nil
}

// Fetch returns the payload stored under key if it is present and fresh.
func (c *TTLCache[V]) Fetch(ctx context.Context, key string) (V, bool) {
	var zero V

	raw, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			c.logger.Warn().Err(err).Str("key", key).Msg("Cache store read failed, treating as miss.")
		}
		c.recordMiss()
		return zero, false
	}

	var env envelope[V]
	if err := json.Unmarshal(raw, &env); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Corrupt cache entry, treating as miss.")
		c.recordMiss()
		return zero, false
	}

	age := c.now().Sub(time.UnixMilli(env.Timestamp))
	if age >= c.ttl {
		c.logger.Debug().Str("key", key).Dur("age", age).Msg("Cache entry expired.")
		c.recordMiss()
		return zero, false
	}

	c.logger.Debug().Str("key", key).Msg("Cache hit.")
	c.recordHit()
	return env.Payload, true
}

// Write stores value under key stamped with the current time.
func (c *TTLCache[V]) Write(ctx context.Context, key string, value V) {
	data, err := json.Marshal(envelope[V]{Timestamp: c.now().UnixMilli(), Payload: value})
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Failed to marshal cache entry.")
		return
	}
	if err := c.store.Set(ctx, key, data); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Failed to write cache entry, continuing without it.")
		return
	}
	c.logger.Debug().Str("key", key).Msg("Stored cache entry.")
}

// Invalidate removes key from the underlying store.
func (c *TTLCache[V]) Invalidate(ctx context.Context, key string) error {
	if err := c.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to invalidate %s: %w", key, err)
	}
	return nil
}

func (c *TTLCache[V]) recordHit() {
	if c.observer != nil {
		c.observer.CacheHit(c.resource)
	}
}

func (c *TTLCache[V]) recordMiss() {
	if c.observer != nil {
		c.observer.CacheMiss(c.resource)
	}
}
