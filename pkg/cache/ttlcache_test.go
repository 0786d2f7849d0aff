package cache_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/illmade-knight/go-destinations/pkg/cache"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockStore is a test double for the cache.Store interface.
type mockStore struct {
	GetFunc    func(ctx context.Context, key string) ([]byte, error)
	SetFunc    func(ctx context.Context, key string, value []byte) error
	DeleteFunc func(ctx context.Context, key string) error
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	return nil, cache.ErrNotFound
}

func (m *mockStore) Set(ctx context.Context, key string, value []byte) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value)
	}
	return nil
}

func (m *mockStore) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	return nil
}

func (m *mockStore) Close() error { return nil }

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// countingObserver records hit and miss notifications.
type countingObserver struct {
	mu     sync.Mutex
	hits   int
	misses int
}

func (o *countingObserver) CacheHit(string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.hits++
}

func (o *countingObserver) CacheMiss(string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.misses++
}

type cityPayload struct {
	Name       string   `json:"name"`
	Population int      `json:"population"`
	Lat        *float64 `json:"lat,omitempty"`
}

func newTestStore(t *testing.T) *cache.InMemoryStore {
	t.Helper()
	store, err := cache.NewInMemoryStore(100)
	require.NoError(t, err)
	return store
}

func TestNewTTLCache_Validation(t *testing.T) {
	_, err := cache.NewTTLCache[string](nil, "cities", time.Hour, zerolog.Nop())
	require.Error(t, err)

	_, err = cache.NewTTLCache[string](newTestStore(t), "cities", 0, zerolog.Nop())
	require.Error(t, err)
}

func TestTTLCache_FetchAndWrite(t *testing.T) {
	ctx := context.Background()
	observer := &countingObserver{}
	c, err := cache.NewTTLCache[[]cityPayload](newTestStore(t), "cities", 24*time.Hour, zerolog.Nop(),
		cache.WithObserver(observer))
	require.NoError(t, err)

	t.Run("Miss on empty store", func(t *testing.T) {
		// Act
		_, ok := c.Fetch(ctx, "cities_v2_IN_10")

		// Assert
		assert.False(t, ok)
	})

	t.Run("Hit after write", func(t *testing.T) {
		// Arrange
		lat := 19.07
		payload := []cityPayload{{Name: "Mumbai", Population: 12442373, Lat: &lat}}

		// Act
		c.Write(ctx, "cities_v2_IN_10", payload)
		got, ok := c.Fetch(ctx, "cities_v2_IN_10")

		// Assert
		require.True(t, ok)
		assert.Equal(t, payload, got)
	})

	t.Run("Fresh write overwrites rather than merges", func(t *testing.T) {
		// Act
		c.Write(ctx, "cities_v2_IN_10", []cityPayload{{Name: "Pune"}})
		got, ok := c.Fetch(ctx, "cities_v2_IN_10")

		// Assert
		require.True(t, ok)
		require.Len(t, got, 1)
		assert.Equal(t, "Pune", got[0].Name)
	})

	assert.Equal(t, 2, observer.hits)
	assert.Equal(t, 1, observer.misses)
}

func TestTTLCache_Expiry(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	ttl := 24 * time.Hour
	c, err := cache.NewTTLCache[string](newTestStore(t), "geocode", ttl, zerolog.Nop(), cache.WithClock(clock.Now))
	require.NoError(t, err)

	c.Write(ctx, "geocode_paris", "48.85,2.35")

	t.Run("Valid just before TTL", func(t *testing.T) {
		clock.Advance(ttl - time.Millisecond)
		_, ok := c.Fetch(ctx, "geocode_paris")
		assert.True(t, ok)
	})

	t.Run("Miss after TTL", func(t *testing.T) {
		clock.Advance(2 * time.Millisecond)
		_, ok := c.Fetch(ctx, "geocode_paris")
		assert.False(t, ok, "an entry older than the TTL must read as a miss")
	})

	t.Run("Rewrite refreshes the entry", func(t *testing.T) {
		c.Write(ctx, "geocode_paris", "48.86,2.35")
		got, ok := c.Fetch(ctx, "geocode_paris")
		require.True(t, ok)
		assert.Equal(t, "48.86,2.35", got)
	})
}

func TestTTLCache_Degradation(t *testing.T) {
	ctx := context.Background()

	t.Run("Corrupt entry reads as miss", func(t *testing.T) {
		// Arrange
		store := newTestStore(t)
		require.NoError(t, store.Set(ctx, "all_countries_cache", []byte("{not json")))
		c, err := cache.NewTTLCache[[]string](store, "countries", time.Hour, zerolog.Nop())
		require.NoError(t, err)

		// Act
		_, ok := c.Fetch(ctx, "all_countries_cache")

		// Assert
		assert.False(t, ok)
	})

	t.Run("Entry with wrong payload shape reads as miss", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.Set(ctx, "k", []byte(`{"timestamp": 1, "data": {"unexpected": true}}`)))
		c, err := cache.NewTTLCache[[]string](store, "countries", time.Hour, zerolog.Nop())
		require.NoError(t, err)

		_, ok := c.Fetch(ctx, "k")
		assert.False(t, ok)
	})

	t.Run("Store read failure reads as miss", func(t *testing.T) {
		store := &mockStore{
			GetFunc: func(context.Context, string) ([]byte, error) {
				return nil, errors.New("disk unavailable")
			},
		}
		c, err := cache.NewTTLCache[string](store, "cities", time.Hour, zerolog.Nop())
		require.NoError(t, err)

		_, ok := c.Fetch(ctx, "any")
		assert.False(t, ok)
	})

	t.Run("Store write failure is swallowed", func(t *testing.T) {
		var setCalls int
		store := &mockStore{
			SetFunc: func(context.Context, string, []byte) error {
				setCalls++
				return errors.New("quota exceeded")
			},
		}
		c, err := cache.NewTTLCache[string](store, "cities", time.Hour, zerolog.Nop())
		require.NoError(t, err)

		assert.NotPanics(t, func() { c.Write(ctx, "k", "v") })
		assert.Equal(t, 1, setCalls)
	})
}

func TestTTLCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewTTLCache[string](newTestStore(t), "places", time.Hour, zerolog.Nop())
	require.NoError(t, err)

	c.Write(ctx, "places_paris", "cached")
	require.NoError(t, c.Invalidate(ctx, "places_paris"))

	_, ok := c.Fetch(ctx, "places_paris")
	assert.False(t, ok)
}
