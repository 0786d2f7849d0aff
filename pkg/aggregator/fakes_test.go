package aggregator_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/illmade-knight/go-destinations/pkg/aggregator"
	"github.com/illmade-knight/go-destinations/pkg/cache"
	"github.com/illmade-knight/go-destinations/pkg/providers/geodb"
	"github.com/illmade-knight/go-destinations/pkg/providers/nominatim"
	"github.com/illmade-knight/go-destinations/pkg/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var errProvider = errors.New("provider unavailable")

type fakeCities struct {
	byCountryCalls atomic.Int32
	findCalls      atomic.Int32
	nearbyCalls    atomic.Int32

	CitiesByCountryFunc func(ctx context.Context, code string, limit, minPopulation int) ([]geodb.City, error)
	FindCitiesFunc      func(ctx context.Context, prefix string, limit int) ([]geodb.City, error)
	NearbyCitiesFunc    func(ctx context.Context, id int64, radiusKm, limit, minPopulation int) ([]geodb.City, error)
}

func (f *fakeCities) CitiesByCountry(ctx context.Context, code string, limit, minPopulation int) ([]geodb.City, error) {
	f.byCountryCalls.Add(1)
	if f.CitiesByCountryFunc == nil {
		return nil, errProvider
	}
	return f.CitiesByCountryFunc(ctx, code, limit, minPopulation)
}

func (f *fakeCities) FindCities(ctx context.Context, prefix string, limit int) ([]geodb.City, error) {
	f.findCalls.Add(1)
	if f.FindCitiesFunc == nil {
		return nil, errProvider
	}
	return f.FindCitiesFunc(ctx, prefix, limit)
}

func (f *fakeCities) NearbyCities(ctx context.Context, id int64, radiusKm, limit, minPopulation int) ([]geodb.City, error) {
	f.nearbyCalls.Add(1)
	if f.NearbyCitiesFunc == nil {
		return nil, errProvider
	}
	return f.NearbyCitiesFunc(ctx, id, radiusKm, limit, minPopulation)
}

type fakeCountries struct {
	byNameCalls atomic.Int32
	allCalls    atomic.Int32

	ByNameFunc func(ctx context.Context, name string) ([]types.Country, error)
	AllFunc    func(ctx context.Context) ([]types.Country, error)
}

func (f *fakeCountries) ByName(ctx context.Context, name string) ([]types.Country, error) {
	f.byNameCalls.Add(1)
	if f.ByNameFunc == nil {
		return nil, errProvider
	}
	return f.ByNameFunc(ctx, name)
}

func (f *fakeCountries) All(ctx context.Context) ([]types.Country, error) {
	f.allCalls.Add(1)
	if f.AllFunc == nil {
		return nil, errProvider
	}
	return f.AllFunc(ctx)
}

type fakePlaces struct {
	mu      sync.Mutex
	queries []string

	SearchFunc func(ctx context.Context, query string, opts nominatim.SearchOptions) ([]nominatim.Place, error)
}

func (f *fakePlaces) Search(ctx context.Context, query string, opts nominatim.SearchOptions) ([]nominatim.Place, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	if f.SearchFunc == nil {
		return nil, errProvider
	}
	return f.SearchFunc(ctx, query, opts)
}

func (f *fakePlaces) Queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

// fakeImages resolves every query to a recognisable URL.
type fakeImages struct{}

func (fakeImages) ResolveOrPlaceholder(_ context.Context, query string) string {
	return "img:" + query
}

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

type countingJoins struct {
	count atomic.Int32
}

func (c *countingJoins) DedupJoined(string) { c.count.Add(1) }

type failingCloser struct{ err error }

func (f failingCloser) Close() error { return f.err }

type testHarness struct {
	service   *aggregator.Service
	store     *cache.InMemoryStore
	cities    *fakeCities
	countries *fakeCountries
	places    *fakePlaces
	clock     *fakeClock
	joins     *countingJoins
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()
	store, err := cache.NewInMemoryStore(100)
	require.NoError(t, err)

	h := &testHarness{
		store:     store,
		cities:    &fakeCities{},
		countries: &fakeCountries{},
		places:    &fakePlaces{},
		clock:     &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		joins:     &countingJoins{},
	}
	return h
}

// start builds the service once the fakes have been configured.
func (h *testHarness) start(t *testing.T) *aggregator.Service {
	t.Helper()
	cfg := aggregator.DefaultConfig()
	cfg.DedupTimeout = 5 * time.Second
	svc, err := aggregator.NewService(cfg, aggregator.Dependencies{
		Store:        h.store,
		Cities:       h.cities,
		Countries:    h.countries,
		Places:       h.places,
		Images:       fakeImages{},
		JoinObserver: h.joins,
		Clock:        h.clock.Now,
	}, zerolog.Nop())
	require.NoError(t, err)
	h.service = svc
	return svc
}

func ptr(v float64) *float64 { return &v }
