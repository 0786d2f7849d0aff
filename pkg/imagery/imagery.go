// Package imagery turns a free-text query into a display image URL.
//
// Resolve asks the photo provider and reports absence rather than errors.
// Placeholder synthesizes a stable unauthenticated URL for any query, so a
// caller can always render something.
package imagery

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/illmade-knight/go-destinations/pkg/providers"
	"github.com/illmade-knight/go-destinations/pkg/providers/unsplash"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
)

const (
	defaultPlaceholderBase = "https://loremflickr.com"
	defaultWidth           = 800
	defaultHeight          = 600
	lockModulus            = 10000
)

// PhotoSearcher is the photo provider surface the Resolver needs.
type PhotoSearcher interface {
	SearchPhotos(ctx context.Context, query, orientation string, perPage int) ([]unsplash.Photo, error)
}

// FallbackObserver is notified whenever a placeholder stands in for a real photo.
type FallbackObserver interface {
	PlaceholderUsed()
}

// Config holds Resolver settings.
type Config struct {
	// PlaceholderBaseURL is the placeholder service root, without a trailing slash.
	PlaceholderBaseURL string
	PlaceholderWidth   int
	PlaceholderHeight  int
	// MemoTTL keeps successful resolutions in process. Zero disables memoization.
	MemoTTL time.Duration
}

// Resolver resolves image URLs. Thread-safe.
type Resolver struct {
	photos   PhotoSearcher
	cfg      Config
	memo     *cache.Cache
	observer FallbackObserver
	logger   zerolog.Logger
}

// NewResolver creates a Resolver.
func NewResolver(cfg Config, photos PhotoSearcher, logger zerolog.Logger) (*Resolver, error) {
	if photos == nil {
		return nil, fmt.Errorf("photo searcher cannot be nil")
	}
	if cfg.PlaceholderBaseURL == "" {
		cfg.PlaceholderBaseURL = defaultPlaceholderBase
	}
	cfg.PlaceholderBaseURL = strings.TrimRight(cfg.PlaceholderBaseURL, "/")
	if cfg.PlaceholderWidth <= 0 {
		cfg.PlaceholderWidth = defaultWidth
	}
	if cfg.PlaceholderHeight <= 0 {
		cfg.PlaceholderHeight = defaultHeight
	}

	r := &Resolver{
		photos: photos,
		cfg:    cfg,
		logger: logger.With().Str("component", "ImageResolver").Logger(),
	}
	if cfg.MemoTTL > 0 {
		r.memo = cache.New(cfg.MemoTTL, 2*cfg.MemoTTL)
	}
	return r, nil
}

// SetObserver registers an observer for placeholder fallbacks.
func (r *Resolver) SetObserver(observer FallbackObserver) {
	r.observer = observer
}

// Resolve returns the best photo URL for query. It reports false when no
// credential is configured, the call fails or is throttled, or nothing matches.
// An empty orientation means landscape.
func (r *Resolver) Resolve(ctx context.Context, query, orientation string) (string, bool) {
	if orientation == "" {
		orientation = unsplash.OrientationLandscape
	}
	memoKey := orientation + "|" + query
	if r.memo != nil {
		if v, ok := r.memo.Get(memoKey); ok {
			return v.(string), true
		}
	}

	urls := r.search(ctx, query, orientation, 1)
	if len(urls) == 0 {
		return "", false
	}
	if r.memo != nil {
		r.memo.SetDefault(memoKey, urls[0])
	}
	return urls[0], true
}

// ResolveMany returns up to count photo URLs for query, or an empty slice.
func (r *Resolver) ResolveMany(ctx context.Context, query string, count int) []string {
	if count <= 0 {
		return []string{}
	}
	return r.search(ctx, query, unsplash.OrientationLandscape, count)
}

// ResolveOrPlaceholder returns a real photo when one resolves and the
// placeholder for query otherwise. It never returns an empty string.
func (r *Resolver) ResolveOrPlaceholder(ctx context.Context, query string) string {
	if u, ok := r.Resolve(ctx, query, ""); ok {
		return u
	}
	if r.observer != nil {
		r.observer.PlaceholderUsed()
	}
	return r.Placeholder(query)
}

// Placeholder returns the placeholder URL for query. It is a pure function of
// query: the same query always yields the same URL.
func (r *Resolver) Placeholder(query string) string {
	return fmt.Sprintf("%s/%d/%d/%s?lock=%d",
		r.cfg.PlaceholderBaseURL, r.cfg.PlaceholderWidth, r.cfg.PlaceholderHeight,
		placeholderTags(query), placeholderLock(query))
}

func (r *Resolver) search(ctx context.Context, query, orientation string, count int) []string {
	photos, err := r.photos.SearchPhotos(ctx, query, orientation, count)
	if err != nil {
		r.logFailure(query, err)
		return []string{}
	}

	urls := make([]string, 0, len(photos))
	for _, p := range photos {
		if p.URL != "" {
			urls = append(urls, p.URL)
		}
	}
	if len(urls) == 0 {
		r.logger.Debug().Str("query", query).Msg("No photos matched query.")
	}
	return urls
}

func (r *Resolver) logFailure(query string, err error) {
	var statusErr *providers.StatusError
	switch {
	case errors.Is(err, providers.ErrMissingCredentials):
		r.logger.Debug().Str("query", query).Msg("Photo provider key not configured, skipping.")
	case providers.IsRateLimited(err),
		errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusForbidden:
		// Unsplash answers 403 once the hourly quota is spent.
		r.logger.Warn().Str("query", query).Err(err).Msg("Photo provider rate limit reached.")
	default:
		r.logger.Warn().Str("query", query).Err(err).Msg("Photo lookup failed.")
	}
}

// placeholderTags lowercases query and joins its words with commas.
func placeholderTags(query string) string {
	words := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) == 0 {
		return "travel"
	}
	for i, w := range words {
		words[i] = url.PathEscape(w)
	}
	return strings.Join(words, ",")
}

func placeholderLock(query string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(query))
	return h.Sum32() % lockModulus
}
