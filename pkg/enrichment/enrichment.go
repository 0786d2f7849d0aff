// Package enrichment decorates raw provider candidates with an image and a
// description, producing display-ready records.
package enrichment

import (
	"context"
	"fmt"
	"math"

	"github.com/illmade-knight/go-destinations/pkg/types"
	"github.com/rs/zerolog"
)

// ImageResolver yields an image URL for a query. It must never return an
// empty string.
type ImageResolver interface {
	ResolveOrPlaceholder(ctx context.Context, query string) string
}

// QueryBuilder derives the image search query for a candidate.
type QueryBuilder func(c types.Candidate) string

// Describer derives the description for the candidate at position index.
type Describer func(c types.Candidate, index int) string

// Config holds Enricher settings.
type Config struct {
	// Concurrency bounds simultaneous image lookups. Zero means unbounded.
	Concurrency int
}

// Enricher turns candidates into records.
type Enricher struct {
	images      ImageResolver
	concurrency int
	logger      zerolog.Logger
}

// NewEnricher creates an Enricher.
func NewEnricher(cfg Config, images ImageResolver, logger zerolog.Logger) (*Enricher, error) {
	if images == nil {
		return nil, fmt.Errorf("image resolver cannot be nil")
	}
	return &Enricher{
		images:      images,
		concurrency: cfg.Concurrency,
		logger:      logger.With().Str("component", "Enricher").Logger(),
	}, nil
}

// Enrich resolves an image and a description for every candidate concurrently
// and returns once all are done. Record i always corresponds to candidate i.
// A nil describe leaves descriptions to the candidate's own Descriptor.
func (e *Enricher) Enrich(ctx context.Context, candidates []types.Candidate, query QueryBuilder, describe Describer) []types.Record {
	if len(candidates) == 0 {
		return []types.Record{}
	}

	records, err := FanOut(ctx, candidates, e.concurrency, func(ctx context.Context, i int, c types.Candidate) (types.Record, error) {
		description := c.Descriptor
		if describe != nil {
			description = describe(c, i)
		}
		return types.Record{
			Name:        c.Name,
			Image:       e.images.ResolveOrPlaceholder(ctx, query(c)),
			Description: description,
			Latitude:    c.Latitude,
			Longitude:   c.Longitude,
		}, nil
	})
	if err != nil {
		// Unreachable: the per-candidate step has no failure path.
		e.logger.Error().Err(err).Msg("Enrichment failed unexpectedly.")
		return []types.Record{}
	}

	e.logger.Debug().Int("count", len(records)).Msg("Enriched candidates.")
	return records
}

// DistanceLabel formats a distance in kilometres for display, or "Nearby"
// when the distance is unknown.
func DistanceLabel(km *float64) string {
	if km == nil {
		return "Nearby"
	}
	return fmt.Sprintf("%d km", int64(math.Round(*km)))
}
