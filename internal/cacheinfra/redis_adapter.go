package cacheinfra

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/goliatone/go-property-listing/cache"
)

const (
	backendRedis  = "redis"
	scanBatchSize = 100
)

// RedisClient implements cache.Client over a Redis server.
//
// The connection is opened lazily on first use and reused afterwards. If the
// initial ping fails the handle is discarded so that the next call retries.
// When the breaker is enabled, repeated failures short-circuit further calls
// until the open timeout elapses.
type RedisClient struct {
	redisOpts *redis.Options
	breaker   *gobreaker.CircuitBreaker[any]
	logger    zerolog.Logger
	metrics   *Metrics

	mu     sync.Mutex
	rdb    *redis.Client
	closed bool
}

var _ cache.Client = (*RedisClient)(nil)

// NewRedisClient builds a client from cfg. No connection is made until the
// first operation.
func NewRedisClient(cfg cache.Config, opts ...Option) *RedisClient {
	o := buildOptions(opts)

	c := &RedisClient{
		redisOpts: &redis.Options{
			Addr:         cfg.Addr,
			Username:     cfg.Username,
			Password:     cfg.Password,
			DB:           cfg.DB,
			DialTimeout:  cfg.DialTimeout,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		logger:  o.logger,
		metrics: o.metrics,
	}

	if cfg.Breaker.Enabled {
		c.breaker = newBreaker(cfg.Breaker, o.logger)
	}

	return c
}

func newBreaker(cfg cache.BreakerConfig, logger zerolog.Logger) *gobreaker.CircuitBreaker[any] {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}

	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "cache-redis",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("cache breaker state changed")
		},
		IsExcluded: func(err error) bool {
			return errors.Is(err, context.Canceled)
		},
	})
}

// handle returns the live connection, opening it if needed. The dial runs
// without the lock held; when two callers race, the first connection stored
// wins and the other is closed.
func (c *RedisClient) handle(ctx context.Context) (*redis.Client, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, cache.ErrClosed
	}
	if c.rdb != nil {
		rdb := c.rdb
		c.mu.Unlock()
		return rdb, nil
	}
	c.mu.Unlock()

	rdb := redis.NewClient(c.redisOpts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		_ = rdb.Close()
		return nil, cache.ErrClosed
	}
	if c.rdb != nil {
		_ = rdb.Close()
		return c.rdb, nil
	}

	c.logger.Info().Str("addr", c.redisOpts.Addr).Msg("redis connected")
	c.rdb = rdb
	return rdb, nil
}

func execute[T any](ctx context.Context, c *RedisClient, op, key string, fn func(*redis.Client) (T, error)) (T, error) {
	run := func() (any, error) {
		rdb, err := c.handle(ctx)
		if err != nil {
			return nil, err
		}
		value, err := fn(rdb)
		return value, err
	}

	var (
		res any
		err error
	)
	if c.breaker != nil {
		res, err = c.breaker.Execute(run)
	} else {
		res, err = run()
	}

	c.metrics.observe(backendRedis, op, err)

	if err != nil {
		var zero T
		return zero, cache.NewError(op, key, err)
	}
	value, _ := res.(T)
	return value, nil
}

type getResult struct {
	value string
	found bool
}

// Get implements cache.Client.
func (c *RedisClient) Get(ctx context.Context, key string) (string, bool, error) {
	res, err := execute(ctx, c, "get", key, func(rdb *redis.Client) (getResult, error) {
		value, err := rdb.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return getResult{}, nil
		}
		if err != nil {
			return getResult{}, err
		}
		return getResult{value: value, found: true}, nil
	})
	return res.value, res.found, err
}

// Set implements cache.Client.
func (c *RedisClient) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	_, err := execute(ctx, c, "set", key, func(rdb *redis.Client) (struct{}, error) {
		return struct{}{}, rdb.Set(ctx, key, value, ttl).Err()
	})
	return err
}

// Delete implements cache.Client.
func (c *RedisClient) Delete(ctx context.Context, key string) (bool, error) {
	return execute(ctx, c, "delete", key, func(rdb *redis.Client) (bool, error) {
		n, err := rdb.Del(ctx, key).Result()
		return n > 0, err
	})
}

// Keys implements cache.Client using SCAN so the server is never blocked by
// a full keyspace walk.
func (c *RedisClient) Keys(ctx context.Context, pattern string) ([]string, error) {
	return execute(ctx, c, "keys", pattern, func(rdb *redis.Client) ([]string, error) {
		var (
			keys   []string
			cursor uint64
		)
		for {
			batch, next, err := rdb.Scan(ctx, cursor, pattern, scanBatchSize).Result()
			if err != nil {
				return nil, err
			}
			keys = append(keys, batch...)
			cursor = next
			if cursor == 0 {
				return keys, nil
			}
		}
	})
}

// DeleteKeys implements cache.Client.
func (c *RedisClient) DeleteKeys(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	return execute(ctx, c, "delete_keys", "", func(rdb *redis.Client) (int64, error) {
		return rdb.Del(ctx, keys...).Result()
	})
}

// Exists implements cache.Client.
func (c *RedisClient) Exists(ctx context.Context, key string) (bool, error) {
	return execute(ctx, c, "exists", key, func(rdb *redis.Client) (bool, error) {
		n, err := rdb.Exists(ctx, key).Result()
		return n > 0, err
	})
}

// Expire implements cache.Client.
func (c *RedisClient) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return execute(ctx, c, "expire", key, func(rdb *redis.Client) (bool, error) {
		return rdb.Expire(ctx, key, ttl).Result()
	})
}

// Ping checks connectivity, opening the connection if needed.
func (c *RedisClient) Ping(ctx context.Context) error {
	_, err := execute(ctx, c, "ping", "", func(rdb *redis.Client) (string, error) {
		return rdb.Ping(ctx).Result()
	})
	return err
}

// Close releases the connection. Further calls fail with cache.ErrClosed.
func (c *RedisClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.rdb == nil {
		return nil
	}
	err := c.rdb.Close()
	c.rdb = nil
	if err != nil {
		return cache.NewError("close", "", err)
	}
	return nil
}
