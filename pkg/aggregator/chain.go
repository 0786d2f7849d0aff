package aggregator

import (
	"context"

	"github.com/illmade-knight/go-destinations/pkg/providers"
	"github.com/rs/zerolog"
)

// Strategy is one way of producing a result list. A strategy that returns an
// error is abandoned whole; its partial output is never used.
type Strategy[T any] struct {
	Name string
	Run  func(ctx context.Context) ([]T, error)
}

// FirstNonEmpty runs strategies in order and returns the output of the first
// one that yields at least one element. It never returns an error: when every
// strategy fails or comes back empty the result is an empty, non-nil slice.
func FirstNonEmpty[T any](ctx context.Context, logger zerolog.Logger, strategies ...Strategy[T]) []T {
	for _, s := range strategies {
		if ctx.Err() != nil {
			logger.Debug().Str("strategy", s.Name).Msg("Context done, skipping remaining strategies.")
			break
		}
		out, err := s.Run(ctx)
		switch {
		case err != nil && providers.IsRateLimited(err):
			logger.Warn().Str("strategy", s.Name).Err(err).Msg("Provider rate limited, abandoning strategy.")
		case err != nil:
			logger.Warn().Str("strategy", s.Name).Err(err).Msg("Strategy failed, trying next.")
		case len(out) > 0:
			return out
		default:
			logger.Debug().Str("strategy", s.Name).Msg("Strategy returned no results.")
		}
	}
	return []T{}
}
