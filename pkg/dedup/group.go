// Package dedup shares one in-flight computation among concurrent callers
// asking for the same key.
//
// A Group has no memory across settled calls: once a computation finishes,
// successfully or not, its key is released and the next caller starts fresh.
// Result caching belongs to the cache package.
package dedup

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Factory produces the value for a key. It receives a context detached from
// any single caller and bounded by the Group's timeout.
type Factory[T any] func(ctx context.Context) (T, error)

// JoinObserver is notified whenever a caller joins an existing computation.
type JoinObserver interface {
	DedupJoined(key string)
}

// Group de-duplicates concurrent calls by key. The zero value is not usable;
// construct with NewGroup.
type Group[T any] struct {
	sf       singleflight.Group
	timeout  time.Duration
	observer JoinObserver
	logger   zerolog.Logger

	mu      sync.Mutex
	waiters map[string]int
}

// NewGroup creates a Group. A positive timeout bounds every shared
// computation; zero leaves it unbounded.
func NewGroup[T any](timeout time.Duration, logger zerolog.Logger) *Group[T] {
	return &Group[T]{
		timeout: timeout,
		logger:  logger.With().Str("component", "DedupGroup").Logger(),
		waiters: make(map[string]int),
	}
}

// SetObserver registers an observer for join events.
func (g *Group[T]) SetObserver(observer JoinObserver) {
	g.observer = observer
}

// Do returns the result of factory for key, invoking factory only if no
// computation for key is already pending. shared reports whether the result
// was delivered to more than one caller.
//
// A caller whose ctx ends stops waiting and gets ctx.Err(); the shared
// computation keeps running for the remaining callers.
func (g *Group[T]) Do(ctx context.Context, key string, factory Factory[T]) (value T, shared bool, err error) {
	var zero T

	ch := g.sf.DoChan(key, func() (result any, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("dedup: computation for %q panicked: %v", key, r)
			}
		}()
		runCtx := context.WithoutCancel(ctx)
		if g.timeout > 0 {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithTimeout(runCtx, g.timeout)
			defer cancel()
		}
		return factory(runCtx)
	})

	// DoChan has registered this caller by the time it returns.
	if joined := g.attach(key); joined {
		g.logger.Debug().Str("key", key).Msg("Joined in-flight request.")
		if g.observer != nil {
			g.observer.DedupJoined(key)
		}
	}
	defer g.detach(key)

	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Shared, res.Err
		}
		v, ok := res.Val.(T)
		if !ok && res.Val != nil {
			return zero, res.Shared, fmt.Errorf("dedup: unexpected result type %T for %q", res.Val, key)
		}
		return v, res.Shared, nil
	case <-ctx.Done():
		return zero, false, ctx.Err()
	}
}

// Waiters reports how many callers are currently waiting on key.
func (g *Group[T]) Waiters(key string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.waiters[key]
}

// attach counts a waiter and reports whether others were already waiting.
func (g *Group[T]) attach(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.waiters[key]++
	return g.waiters[key] > 1
}

func (g *Group[T]) detach(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.waiters[key]--
	if g.waiters[key] <= 0 {
		delete(g.waiters, key)
	}
}
