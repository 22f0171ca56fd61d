// Package fetch composes a bounded cache with a call coalescer: a read that
// misses the cache runs its fetch at most once per key at a time and stores
// the result on success.
package fetch

import (
	"context"
	"log/slog"

	"github.com/IvanBrykalov/fetchcache/cache"
	"github.com/IvanBrykalov/fetchcache/coalesce"
	"golang.org/x/sync/errgroup"
)

// Op performs the expensive lookup for one key (an upstream HTTP call,
// a model completion, ...). It should honour ctx.
type Op[V any] func(ctx context.Context) (V, error)

// Fetcher is safe for concurrent use. It does not own its cache;
// whoever built the cache closes it.
type Fetcher[V any] struct {
	cache cache.Cache[string, V]
	group *coalesce.Group[string, V]
	log   *slog.Logger
}

// New returns a Fetcher over c and g. A nil g gets a fresh Group;
// a nil log discards.
func New[V any](c cache.Cache[string, V], g *coalesce.Group[string, V], log *slog.Logger) *Fetcher[V] {
	if g == nil {
		g = &coalesce.Group[string, V]{}
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Fetcher[V]{cache: c, group: g, log: log}
}

// Get returns the cached value for key, or runs op once for all concurrent
// callers of key and caches its result. An error from op is returned
// unchanged to every waiter and nothing is cached.
//
// Keys are used as given; normalise them (case, whitespace, parameter
// order) before calling.
func (f *Fetcher[V]) Get(ctx context.Context, key string, op Op[V]) (V, error) {
	if v, ok := f.cache.Get(key); ok {
		return v, nil
	}
	return f.group.Do(ctx, key, func() (V, error) {
		// double-check: a flight that just settled may have filled it.
		// Peek so the miss above is not counted twice.
		if v, ok := f.cache.Peek(key); ok {
			return v, nil
		}
		v, err := op(ctx)
		if err != nil {
			f.log.DebugContext(ctx, "fetch: operation failed",
				slog.String("key", key), slog.Any("error", err))
			return v, err
		}
		f.cache.Set(key, v)
		return v, nil
	})
}

// Prefetch warms the cache for keys, running at most limit fetches at once
// (limit <= 0 means no limit). It stops at the first error and returns it.
func (f *Fetcher[V]) Prefetch(ctx context.Context, keys []string, limit int, op func(ctx context.Context, key string) (V, error)) error {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, key := range keys {
		g.Go(func() error {
			_, err := f.Get(ctx, key, func(ctx context.Context) (V, error) {
				return op(ctx, key)
			})
			return err
		})
	}
	return g.Wait()
}

// Invalidate drops key from the cache. A fetch already in flight for key
// still completes and stores its result.
func (f *Fetcher[V]) Invalidate(key string) bool { return f.cache.Remove(key) }

// Reset clears the cache and forgets in-flight registrations without
// cancelling them.
func (f *Fetcher[V]) Reset() {
	f.cache.Clear()
	f.group.Clear()
}

// Stats reports the underlying cache counters.
func (f *Fetcher[V]) Stats() cache.Stats { return f.cache.Stats() }
