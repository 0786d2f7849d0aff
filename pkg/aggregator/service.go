// Package aggregator is the read side of the destinations layer. Every
// operation checks the TTL cache, then joins or starts a de-duplicated
// computation that runs a provider fallback chain, enriches the result and
// writes it back through the cache.
//
// Apart from Country, no operation returns a provider error: failures degrade
// to empty results.
package aggregator

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/illmade-knight/go-destinations/pkg/cache"
	"github.com/illmade-knight/go-destinations/pkg/dedup"
	"github.com/illmade-knight/go-destinations/pkg/enrichment"
	"github.com/illmade-knight/go-destinations/pkg/providers/geodb"
	"github.com/illmade-knight/go-destinations/pkg/providers/nominatim"
	"github.com/illmade-knight/go-destinations/pkg/types"
	"github.com/rs/zerolog"
)

// CityProvider lists and looks up cities.
type CityProvider interface {
	CitiesByCountry(ctx context.Context, countryCode string, limit, minPopulation int) ([]geodb.City, error)
	FindCities(ctx context.Context, namePrefix string, limit int) ([]geodb.City, error)
	NearbyCities(ctx context.Context, cityID int64, radiusKm, limit, minPopulation int) ([]geodb.City, error)
}

// CountryRegistry looks up countries.
type CountryRegistry interface {
	ByName(ctx context.Context, name string) ([]types.Country, error)
	All(ctx context.Context) ([]types.Country, error)
}

// PlaceSearcher runs free-text geographic searches.
type PlaceSearcher interface {
	Search(ctx context.Context, query string, opts nominatim.SearchOptions) ([]nominatim.Place, error)
}

// Config holds Service settings. Zero fields take the DefaultConfig value.
type Config struct {
	CacheTTL              time.Duration
	DedupTimeout          time.Duration
	EnrichmentConcurrency int
	MinPopulation         int
	NearbyRadiusKm        int
	DefaultCityLimit      int
	DefaultNearbyLimit    int
	SearchLimit           int
	PlacesLimit           int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		CacheTTL:              24 * time.Hour,
		DedupTimeout:          30 * time.Second,
		EnrichmentConcurrency: 4,
		MinPopulation:         50000,
		NearbyRadiusKm:        300,
		DefaultCityLimit:      10,
		DefaultNearbyLimit:    5,
		SearchLimit:           5,
		PlacesLimit:           6,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.CacheTTL <= 0 {
		c.CacheTTL = d.CacheTTL
	}
	if c.DedupTimeout <= 0 {
		c.DedupTimeout = d.DedupTimeout
	}
	if c.EnrichmentConcurrency <= 0 {
		c.EnrichmentConcurrency = d.EnrichmentConcurrency
	}
	if c.MinPopulation <= 0 {
		c.MinPopulation = d.MinPopulation
	}
	if c.NearbyRadiusKm <= 0 {
		c.NearbyRadiusKm = d.NearbyRadiusKm
	}
	if c.DefaultCityLimit <= 0 {
		c.DefaultCityLimit = d.DefaultCityLimit
	}
	if c.DefaultNearbyLimit <= 0 {
		c.DefaultNearbyLimit = d.DefaultNearbyLimit
	}
	if c.SearchLimit <= 0 {
		c.SearchLimit = d.SearchLimit
	}
	if c.PlacesLimit <= 0 {
		c.PlacesLimit = d.PlacesLimit
	}
	return c
}

// Dependencies are the collaborators a Service reads from.
type Dependencies struct {
	Store     cache.Store
	Cities    CityProvider
	Countries CountryRegistry
	Places    PlaceSearcher
	Images    enrichment.ImageResolver

	// Optional.
	CacheObserver cache.Observer
	JoinObserver  dedup.JoinObserver
	Clock         func() time.Time
	// Closers are closed by Service.Close after the store.
	Closers []io.Closer
}

// Service aggregates destination data. Thread-safe; one Service owns its
// de-duplication groups and caches.
type Service struct {
	cfg       Config
	store     cache.Store
	cities    CityProvider
	countries CountryRegistry
	places    PlaceSearcher
	images    enrichment.ImageResolver
	enricher  *enrichment.Enricher
	closers   []io.Closer

	cityCache    *cache.TTLCache[[]types.Record]
	nearbyCache  *cache.TTLCache[[]types.Record]
	placesCache  *cache.TTLCache[[]types.Record]
	countryCache *cache.TTLCache[[]types.Country]
	geocodeCache *cache.TTLCache[*types.Coordinates]

	recordGroup  *dedup.Group[[]types.Record]
	countryGroup *dedup.Group[[]types.Country]
	geocodeGroup *dedup.Group[*types.Coordinates]
	searchGroup  *dedup.Group[types.SearchResults]

	logger zerolog.Logger
}

// NewService creates a Service.
func NewService(cfg Config, deps Dependencies, logger zerolog.Logger) (*Service, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("cache store cannot be nil")
	}
	if deps.Cities == nil || deps.Countries == nil || deps.Places == nil || deps.Images == nil {
		return nil, fmt.Errorf("cities, countries, places and images providers cannot be nil")
	}
	cfg = cfg.withDefaults()

	enricher, err := enrichment.NewEnricher(enrichment.Config{Concurrency: cfg.EnrichmentConcurrency}, deps.Images, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create enricher: %w", err)
	}

	s := &Service{
		cfg:       cfg,
		store:     deps.Store,
		cities:    deps.Cities,
		countries: deps.Countries,
		places:    deps.Places,
		images:    deps.Images,
		enricher:  enricher,
		closers:   deps.Closers,
		logger:    logger.With().Str("component", "DestinationService").Logger(),
	}

	var opts []cache.Option
	if deps.Clock != nil {
		opts = append(opts, cache.WithClock(deps.Clock))
	}
	if deps.CacheObserver != nil {
		opts = append(opts, cache.WithObserver(deps.CacheObserver))
	}
	if s.cityCache, err = cache.NewTTLCache[[]types.Record](deps.Store, "cities", cfg.CacheTTL, logger, opts...); err != nil {
		return nil, err
	}
	if s.nearbyCache, err = cache.NewTTLCache[[]types.Record](deps.Store, "nearby", cfg.CacheTTL, logger, opts...); err != nil {
		return nil, err
	}
	if s.placesCache, err = cache.NewTTLCache[[]types.Record](deps.Store, "places", cfg.CacheTTL, logger, opts...); err != nil {
		return nil, err
	}
	if s.countryCache, err = cache.NewTTLCache[[]types.Country](deps.Store, "countries", cfg.CacheTTL, logger, opts...); err != nil {
		return nil, err
	}
	if s.geocodeCache, err = cache.NewTTLCache[*types.Coordinates](deps.Store, "geocode", cfg.CacheTTL, logger, opts...); err != nil {
		return nil, err
	}

	s.recordGroup = dedup.NewGroup[[]types.Record](cfg.DedupTimeout, logger)
	s.countryGroup = dedup.NewGroup[[]types.Country](cfg.DedupTimeout, logger)
	s.geocodeGroup = dedup.NewGroup[*types.Coordinates](cfg.DedupTimeout, logger)
	s.searchGroup = dedup.NewGroup[types.SearchResults](cfg.DedupTimeout, logger)
	if deps.JoinObserver != nil {
		s.recordGroup.SetObserver(deps.JoinObserver)
		s.countryGroup.SetObserver(deps.JoinObserver)
		s.geocodeGroup.SetObserver(deps.JoinObserver)
		s.searchGroup.SetObserver(deps.JoinObserver)
	}
	return s, nil
}

// Invalidate deletes the given cache keys. Every key is attempted.
func (s *Service) Invalidate(ctx context.Context, keys ...string) error {
	var result error
	for _, key := range keys {
		if err := s.store.Delete(ctx, key); err != nil {
			result = multierror.Append(result, fmt.Errorf("failed to delete %s: %w", key, err))
			continue
		}
		s.logger.Info().Str("key", key).Msg("Cache entry invalidated.")
	}
	return result
}

// Close releases the store and any additional closers.
func (s *Service) Close() error {
	var result error
	if err := s.store.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("failed to close cache store: %w", err))
	}
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if result != nil {
		s.logger.Error().Err(result).Msg("Errors while closing destination service.")
	}
	return result
}

// readThrough serves key from c when fresh. Otherwise it joins or starts the
// computation for requestKey; load's result is written back to the cache when
// keep reports true. On a failed wait the zero value is returned.
func readThrough[V any](
	ctx context.Context,
	logger zerolog.Logger,
	c *cache.TTLCache[V],
	g *dedup.Group[V],
	cacheKey, requestKey string,
	load func(ctx context.Context) V,
	keep func(V) bool,
) V {
	if v, ok := c.Fetch(ctx, cacheKey); ok {
		return v
	}

	v, shared, err := g.Do(ctx, requestKey, func(ctx context.Context) (V, error) {
		v := load(ctx)
		if keep(v) {
			c.Write(ctx, cacheKey, v)
		}
		return v, nil
	})
	if err != nil {
		logger.Warn().Err(err).Str("request", requestKey).Msg("Gave up waiting for request.")
		var zero V
		return zero
	}
	if shared {
		logger.Debug().Str("request", requestKey).Msg("Result shared with concurrent callers.")
	}
	return v
}

func nonEmpty[T any](v []T) bool { return len(v) > 0 }

func orEmpty[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
