package lang

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"

	cmap "github.com/orcaman/concurrent-map/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/ardnew/hypereval/log"
)

// Status is the load state of a [LazyRegistry] entry.
type Status int

const (
	StatusUndefined Status = iota // undefined
	StatusUnloaded                // unloaded
	StatusLoading                 // loading
	StatusLoaded                  // loaded
	StatusFailed                  // failed
)

func (s Status) String() string {
	switch s {
	case StatusUnloaded:
		return "unloaded"
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusFailed:
		return "failed"
	default:
		return "undefined"
	}
}

// LoadFunc produces the value of a lazy entry.
type LoadFunc[T any] func(ctx context.Context) (T, error)

type definition[T any] struct {
	category string
	load     LoadFunc[T]
	gen      uint64 // distinguishes redefinitions of one key
}

// LoaderStats counts loader activity since construction.
type LoaderStats struct {
	Hits     int64 // requests answered from the cache
	Loads    int64 // loads started
	Shared   int64 // requests that received a result shared with another
	Failures int64 // loads that returned an error
}

// LazyRegistry is a memoized, key-addressed provider of values that are
// loaded on first request.
//
// At most one load per key is in flight at any time; every concurrent
// requester for that key receives the same result. Successful loads are
// cached indefinitely. Failures are not cached: the next request retries.
type LazyRegistry[T any] struct {
	defs   cmap.ConcurrentMap[string, definition[T]]
	cache  cmap.ConcurrentMap[string, T]
	status cmap.ConcurrentMap[string, Status]
	flight singleflight.Group

	// mu orders Define against storing a finished load, so a load of a
	// replaced definition is never cached.
	mu  sync.Mutex
	gen atomic.Uint64

	hits, loads, shared, failures atomic.Int64

	logger log.Logger
}

// NewLazyRegistry returns an empty registry. Load lifecycle events are
// traced to logger.
func NewLazyRegistry[T any](logger log.Logger) *LazyRegistry[T] {
	return &LazyRegistry[T]{
		defs:   cmap.New[definition[T]](),
		cache:  cmap.New[T](),
		status: cmap.New[Status](),
		logger: logger,
	}
}

// Define declares key with its loader. Redefining a key discards any value
// cached for it, and a load of the previous definition still in flight
// completes for its own requesters without being cached.
func (l *LazyRegistry[T]) Define(key, category string, load LoadFunc[T]) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.defs.Set(key, definition[T]{category: category, load: load, gen: l.gen.Add(1)})
	l.cache.Remove(key)
	l.status.Set(key, StatusUnloaded)
	l.flight.Forget(key)
}

// Has reports whether key is defined, without loading it.
func (l *LazyRegistry[T]) Has(key string) bool {
	return l.defs.Has(key)
}

// IsValid reports whether key is defined and its most recent load, if any,
// did not fail. It never triggers a load.
func (l *LazyRegistry[T]) IsValid(key string) bool {
	if !l.defs.Has(key) {
		return false
	}

	return l.Status(key) != StatusFailed
}

// Status returns the load state of key.
func (l *LazyRegistry[T]) Status(key string) Status {
	s, ok := l.status.Get(key)
	if !ok {
		return StatusUndefined
	}

	return s
}

// Get returns the value for key, loading it if necessary.
func (l *LazyRegistry[T]) Get(ctx context.Context, key string) (T, error) {
	return l.GetEntry(ctx, key)
}

// GetEntry returns the cached value for key or joins (or starts) the single
// in-flight load for it. The load itself is detached from ctx so that one
// caller giving up does not fail the others; ctx only bounds this caller's
// wait.
func (l *LazyRegistry[T]) GetEntry(ctx context.Context, key string) (T, error) {
	var zero T

	if v, ok := l.cache.Get(key); ok {
		l.hits.Add(1)

		return v, nil
	}

	def, ok := l.defs.Get(key)
	if !ok {
		return zero, ErrUnknownEntry.With(attrKey(key))
	}

	ch := l.flight.DoChan(key, func() (any, error) {
		// A flight that finished between the cache check above and this
		// call already stored the value.
		if v, ok := l.cache.Get(key); ok {
			return v, nil
		}

		return l.load(ctx, key, def)
	})

	select {
	case r := <-ch:
		if r.Shared {
			l.shared.Add(1)
			l.logger.TraceContext(ctx, "lazy join",
				attrKey(key), slog.Bool("failed", r.Err != nil))
		}

		if r.Err != nil {
			return zero, r.Err
		}

		v, _ := r.Val.(T)

		return v, nil

	case <-ctx.Done():
		return zero, context.Cause(ctx)
	}
}

func (l *LazyRegistry[T]) load(
	ctx context.Context,
	key string,
	def definition[T],
) (any, error) {
	l.loads.Add(1)
	l.status.Set(key, StatusLoading)
	l.logger.TraceContext(ctx, "lazy load",
		attrKey(key), slog.String("category", def.category))

	v, err := def.load(context.WithoutCancel(ctx))

	l.mu.Lock()
	defer l.mu.Unlock()

	current, ok := l.defs.Get(key)
	stale := !ok || current.gen != def.gen

	if err != nil {
		l.failures.Add(1)

		if !stale {
			l.status.Set(key, StatusFailed)
		}

		l.logger.DebugContext(ctx, "lazy load failed",
			attrKey(key), slog.Any("error", err))

		return nil, ErrLoad.Wrap(err).With(attrKey(key))
	}

	if stale {
		l.logger.TraceContext(ctx, "lazy load superseded", attrKey(key))

		return v, nil
	}

	// The value must be cached before the flight completes so a request
	// arriving after the flight is forgotten finds it.
	l.cache.Set(key, v)
	l.status.Set(key, StatusLoaded)
	l.logger.TraceContext(ctx, "lazy loaded", attrKey(key))

	return v, nil
}

// WarmUp loads every key concurrently and waits for all of them. The first
// error encountered is returned; the remaining loads still complete.
func (l *LazyRegistry[T]) WarmUp(ctx context.Context, keys ...string) error {
	var g errgroup.Group

	for _, key := range keys {
		g.Go(func() error {
			_, err := l.GetEntry(ctx, key)

			return err
		})
	}

	return g.Wait()
}

// WarmUpCategory loads every key defined under category.
func (l *LazyRegistry[T]) WarmUpCategory(ctx context.Context, category string) error {
	return l.WarmUp(ctx, l.KeysIn(category)...)
}

// Keys returns every defined key in lexical order.
func (l *LazyRegistry[T]) Keys() []string {
	keys := l.defs.Keys()
	sort.Strings(keys)

	return keys
}

// KeysIn returns the keys defined under category in lexical order.
func (l *LazyRegistry[T]) KeysIn(category string) []string {
	var keys []string

	for item := range l.defs.IterBuffered() {
		if item.Val.category == category {
			keys = append(keys, item.Key)
		}
	}

	sort.Strings(keys)

	return keys
}

// Category returns the category key was defined under.
func (l *LazyRegistry[T]) Category(key string) (string, bool) {
	def, ok := l.defs.Get(key)

	return def.category, ok
}

// Categories returns every category with at least one key, in lexical
// order.
func (l *LazyRegistry[T]) Categories() []string {
	seen := map[string]bool{}

	for item := range l.defs.IterBuffered() {
		seen[item.Val.category] = true
	}

	return sortedKeys(seen)
}

// Stats returns a snapshot of the loader counters.
func (l *LazyRegistry[T]) Stats() LoaderStats {
	return LoaderStats{
		Hits:     l.hits.Load(),
		Loads:    l.loads.Load(),
		Shared:   l.shared.Load(),
		Failures: l.failures.Load(),
	}
}

// Forget discards the cached value for key so the next request reloads it.
func (l *LazyRegistry[T]) Forget(key string) {
	l.cache.Remove(key)

	if l.defs.Has(key) {
		l.status.Set(key, StatusUnloaded)
	}
}
