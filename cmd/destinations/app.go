package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/illmade-knight/go-destinations/pkg/aggregator"
	"github.com/illmade-knight/go-destinations/pkg/cache"
	"github.com/illmade-knight/go-destinations/pkg/config"
	"github.com/illmade-knight/go-destinations/pkg/imagery"
	"github.com/illmade-knight/go-destinations/pkg/metrics"
	"github.com/illmade-knight/go-destinations/pkg/providers"
	"github.com/illmade-knight/go-destinations/pkg/providers/geodb"
	"github.com/illmade-knight/go-destinations/pkg/providers/nominatim"
	"github.com/illmade-knight/go-destinations/pkg/providers/restcountries"
	"github.com/illmade-knight/go-destinations/pkg/providers/unsplash"
	"github.com/illmade-knight/go-destinations/pkg/wishlist"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// app is everything one CLI invocation needs, wired from config.
type app struct {
	cfg      *config.Config
	logger   zerolog.Logger
	registry *prometheus.Registry
	service  *aggregator.Service
	images   *imagery.Resolver
	wishlist *wishlist.Wishlist
}

// newLogger builds the console logger. Every line carries the run id so the
// output of concurrent invocations can be told apart.
func newLogger(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
		Level(lvl).
		With().
		Timestamp().
		Str("run_id", uuid.NewString()).
		Logger()
}

func openStore(ctx context.Context, cfg config.CacheConfig, logger zerolog.Logger) (cache.Store, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return cache.NewInMemoryStore(cfg.MaxEntries)
	case config.BackendSQLite:
		return cache.NewSQLiteStore(&cache.SQLiteConfig{Path: cfg.SQLitePath, MaxEntries: cfg.MaxEntries}, logger)
	case config.BackendRedis:
		return cache.NewRedisStore(ctx, &cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			MaxAge:   cfg.Redis.MaxAge,
		}, logger)
	}
	return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
}

func newApp(ctx context.Context, cfg *config.Config, httpClient *http.Client, logger zerolog.Logger) (*app, error) {
	registry := prometheus.NewRegistry()
	m, err := metrics.New(registry)
	if err != nil {
		return nil, err
	}

	store, err := openStore(ctx, cfg.Cache, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s cache store: %w", cfg.Cache.Backend, err)
	}

	a, err := wire(cfg, store, httpClient, m, logger)
	if err != nil {
		if closeErr := store.Close(); closeErr != nil {
			logger.Warn().Err(closeErr).Msg("Failed to close cache store after setup error.")
		}
		return nil, err
	}
	a.registry = registry
	return a, nil
}

func wire(cfg *config.Config, store cache.Store, httpClient *http.Client, m *metrics.Metrics, logger zerolog.Logger) (*app, error) {
	shared := providers.NewClient(providers.ClientConfig{Timeout: cfg.HTTP.Timeout, UserAgent: cfg.HTTP.UserAgent}, httpClient, logger)
	shared.SetObserver(m)

	cities, err := geodb.NewClient(geodb.Config{
		BaseURL:           cfg.GeoDB.BaseURL,
		APIKey:            cfg.GeoDB.APIKey,
		Host:              cfg.GeoDB.Host,
		RequestsPerSecond: cfg.GeoDB.RequestsPerSecond,
	}, shared, logger)
	if err != nil {
		return nil, err
	}
	countries, err := restcountries.NewClient(restcountries.Config{BaseURL: cfg.RestCountries.BaseURL}, shared, logger)
	if err != nil {
		return nil, err
	}
	places, err := nominatim.NewClient(nominatim.Config{BaseURL: cfg.Nominatim.BaseURL}, shared, logger)
	if err != nil {
		return nil, err
	}
	photos, err := unsplash.NewClient(unsplash.Config{BaseURL: cfg.Unsplash.BaseURL, AccessKey: cfg.Unsplash.AccessKey}, shared, logger)
	if err != nil {
		return nil, err
	}
	if cfg.Unsplash.AccessKey == "" {
		logger.Warn().Msg("Unsplash access key is missing, placeholder images will be used.")
	}

	images, err := imagery.NewResolver(imagery.Config{
		PlaceholderBaseURL: cfg.Images.PlaceholderBaseURL,
		PlaceholderWidth:   cfg.Images.PlaceholderWidth,
		PlaceholderHeight:  cfg.Images.PlaceholderHeight,
		MemoTTL:            cfg.Images.MemoTTL,
	}, photos, logger)
	if err != nil {
		return nil, err
	}
	images.SetObserver(m)

	service, err := aggregator.NewService(aggregator.Config{
		CacheTTL:              cfg.Cache.TTL,
		DedupTimeout:          cfg.Dedup.Timeout,
		EnrichmentConcurrency: cfg.Enrichment.Concurrency,
	}, aggregator.Dependencies{
		Store:         store,
		Cities:        cities,
		Countries:     countries,
		Places:        places,
		Images:        images,
		CacheObserver: m,
		JoinObserver:  m,
	}, logger)
	if err != nil {
		return nil, err
	}

	saved, err := wishlist.New(store, logger)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		service:  service,
		images:   images,
		wishlist: saved,
	}, nil
}

// close releases the store and exports metrics when configured.
func (a *app) close() error {
	var result error
	if err := a.service.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	if path := a.cfg.Metrics.TextfilePath; path != "" {
		if err := prometheus.WriteToTextfile(path, a.registry); err != nil {
			result = multierror.Append(result, fmt.Errorf("failed to write metrics to %s: %w", path, err))
		} else {
			a.logger.Debug().Str("path", path).Msg("Metrics written.")
		}
	}
	return result
}
