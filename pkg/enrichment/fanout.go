package enrichment

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// FanOut runs fn over items concurrently, at most limit at a time (limit <= 0
// means no bound), and returns the results in input order: out[i] is always
// the result for items[i]. The first error cancels the context handed to the
// remaining calls and is returned alone.
func FanOut[In, Out any](
	ctx context.Context,
	items []In,
	limit int,
	fn func(ctx context.Context, index int, item In) (Out, error),
) ([]Out, error) {
	out := make([]Out, len(items))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, item := range items {
		g.Go(func() error {
			v, err := fn(gctx, i, item)
			if err != nil {
				return err
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
