package repositorycache

import (
	"context"
	"encoding/json"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-property-listing/cache"
)

// Cache is the read-through / write-invalidate orchestrator shared by the
// cached repositories. Every cache failure is logged and absorbed here; only
// store errors reach the caller.
type Cache struct {
	client   cache.Client
	helper   *cache.Helper
	keys     cache.Keys
	group    singleflight.Group
	gen      atomic.Uint64
	logger   zerolog.Logger
	stats    *Stats
	coalesce bool

	defaultTTL         time.Duration
	searchTTL          time.Duration
	recommendationsTTL time.Duration
}

// Option customises a Cache.
type Option func(*Cache)

// WithLogger sets the logger cache failures are reported on.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Cache) { c.logger = logger }
}

// WithStats records hits, misses and errors on s.
func WithStats(s *Stats) Option {
	return func(c *Cache) { c.stats = s }
}

// WithKeys overrides the key builder.
func WithKeys(keys cache.Keys) Option {
	return func(c *Cache) { c.keys = keys }
}

// NewCache builds the orchestrator on top of client. Expirations, key
// encoding and miss coalescing are taken from cfg.
func NewCache(client cache.Client, cfg cache.Config, opts ...Option) *Cache {
	c := &Cache{
		client:             client,
		keys:               cache.NewKeys(cache.NewKeySerializer(cfg.KeyEncoding)),
		logger:             zerolog.Nop(),
		coalesce:           cfg.CoalesceMisses,
		defaultTTL:         orDefault(cfg.DefaultTTL, cache.DefaultTTL),
		searchTTL:          orDefault(cfg.SearchTTL, cache.SearchTTL),
		recommendationsTTL: orDefault(cfg.RecommendationsTTL, cache.RecommendationsTTL),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.helper = cache.NewHelper(client, c.logger, c.defaultTTL)
	return c
}

// Keys returns the key builder in use.
func (c *Cache) Keys() cache.Keys { return c.keys }

// Helper returns the logging helper over the client.
func (c *Cache) Helper() *cache.Helper { return c.helper }

// GetOrFetch returns the value cached under key, or loads it with fetch and
// caches it for ttl. The boolean reports a cache hit.
//
// A cache error or a payload that does not decode into T counts as a miss.
// A fetch error is returned as is and nothing is cached. Concurrent misses on
// the same key share one fetch when coalescing is enabled; the shared fetch
// is detached from any single caller's cancellation and each caller stops
// waiting when its own ctx is done. A fetch that overlaps an invalidation is
// returned to its callers but not cached, and later misses start a new one.
func GetOrFetch[T any](ctx context.Context, c *Cache, resource, key string, ttl time.Duration, fetch cache.FetchFn[T]) (T, bool, error) {
	var zero T
	gen := c.gen.Load()

	if value, ok := lookup[T](ctx, c, resource, key); ok {
		return value, true, nil
	}

	if !c.coalesce {
		value, err := load(ctx, c, key, ttl, gen, fetch)
		return value, false, err
	}

	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key+"#"+strconv.FormatUint(gen, 10), func() (any, error) {
		return load(shared, c, key, ttl, gen, fetch)
	})

	select {
	case <-ctx.Done():
		return zero, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, false, res.Err
		}
		return res.Val.(T), false, nil
	}
}

func lookup[T any](ctx context.Context, c *Cache, resource, key string) (T, bool) {
	var value T

	raw, found, err := c.client.Get(ctx, key)
	if err != nil {
		c.stats.record(resource, resultError)
		c.logger.Warn().Err(err).Str("key", key).Msg("cache read failed, using store")
		return value, false
	}
	if !found {
		c.stats.record(resource, resultMiss)
		return value, false
	}

	if s, ok := any(&value).(*string); ok {
		*s = raw
		c.stats.record(resource, resultHit)
		return value, true
	}

	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		c.stats.record(resource, resultError)
		c.logger.Warn().Err(err).Str("key", key).Msg("cached payload not decodable, using store")
		return value, false
	}

	c.stats.record(resource, resultHit)
	return value, true
}

// load runs fetch and caches the result unless an invalidation happened
// after gen was read. The second check drops an entry written while an
// invalidation was running.
func load[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, gen uint64, fetch cache.FetchFn[T]) (T, error) {
	value, err := fetch(ctx)
	if err != nil {
		return value, err
	}
	if c.gen.Load() != gen {
		c.logger.Debug().Str("key", key).Msg("store read overlapped a write, not caching")
		return value, nil
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	c.helper.SetKey(ctx, key, value, ttl)
	if c.gen.Load() != gen {
		c.helper.DeleteKey(ctx, key)
	}
	return value, nil
}

// Target is a cache entry, or a family of entries, to drop after a write.
type Target struct {
	key     string
	pattern bool
}

// Key targets one exact key.
func Key(key string) Target { return Target{key: key} }

// Pattern targets every key matching a '*' glob.
func Pattern(pattern string) Target { return Target{key: pattern, pattern: true} }

// Invalidate drops every target. Failures are logged, never returned: the
// write that triggered the invalidation has already succeeded.
//
// Fetches already in flight are not cached and are no longer shared with
// new misses.
func (c *Cache) Invalidate(ctx context.Context, targets ...Target) {
	c.gen.Add(1)
	for _, t := range targets {
		if t.pattern {
			n := c.helper.DeleteKeysByPattern(ctx, t.key)
			c.logger.Debug().Str("pattern", t.key).Int64("deleted", n).Msg("cache pattern invalidated")
			continue
		}
		c.helper.DeleteKey(ctx, t.key)
	}
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}

const (
	resultHit   = "hit"
	resultMiss  = "miss"
	resultError = "error"
)

// Stats counts cache lookups per resource and outcome.
type Stats struct {
	requests *prometheus.CounterVec
}

// NewStats creates the collectors and registers them on reg when it is not
// nil.
func NewStats(reg prometheus.Registerer) *Stats {
	s := &Stats{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "listing_cache_requests_total",
			Help: "Cache lookups by resource and result (hit, miss, error).",
		}, []string{"resource", "result"}),
	}
	if reg != nil {
		reg.MustRegister(s.requests)
	}
	return s
}

func (s *Stats) record(resource, result string) {
	if s == nil {
		return
	}
	s.requests.WithLabelValues(resource, result).Inc()
}
