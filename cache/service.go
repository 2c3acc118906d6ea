package cache

import (
	"context"
	"time"
)

// KeySerializer builds a cache key from a resource kind plus arbitrary args.
// It is responsible for producing stable keys across calls and processes.
type KeySerializer interface {
	SerializeKey(kind string, args ...any) string
}

// FetchFn is the function signature read-through helpers expect when loading
// from the source of truth.
type FetchFn[T any] func(ctx context.Context) (T, error)

// Client is the minimal key/value surface the listing service needs from a
// cache backend. Values are opaque strings; callers own the encoding.
//
// Every error returned by a Client is a *Error so that callers can tell cache
// trouble apart from store trouble and continue without the cache.
type Client interface {
	// Get returns the stored value. A miss is reported as found=false with a
	// nil error.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	// Set stores value under key. A ttl <= 0 stores without expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Delete removes key and reports whether it existed.
	Delete(ctx context.Context, key string) (bool, error)
	// Keys lists keys matching a glob pattern where '*' matches any run of
	// characters.
	Keys(ctx context.Context, pattern string) ([]string, error)
	// DeleteKeys removes the given keys and returns how many existed.
	DeleteKeys(ctx context.Context, keys ...string) (int64, error)
	Exists(ctx context.Context, key string) (bool, error)
	// Expire resets the time to live of an existing key.
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Close() error
}

// Default expirations used by the cached repositories.
const (
	DefaultTTL         = 1800 * time.Second
	SearchTTL          = 600 * time.Second
	RecommendationsTTL = 900 * time.Second
)
