package cacheinfra

import (
	"context"
	"time"

	"github.com/viccon/sturdyc"

	"github.com/goliatone/go-property-listing/cache"
)

const backendMemory = "memory"

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

// memoryEntry is what the sturdyc shards hold. sturdyc applies one ttl to
// the whole client, so per key expiry is tracked alongside the value.
type memoryEntry struct {
	value     string
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryClient implements cache.Client in process on top of sturdyc. It is
// meant for single instance deployments and tests.
type MemoryClient struct {
	client  *sturdyc.Client[memoryEntry]
	maxTTL  time.Duration
	now     func() time.Time
	metrics *Metrics
}

var _ cache.Client = (*MemoryClient)(nil)

// NewMemoryClient validates cfg.Memory and builds the sturdyc client.
func NewMemoryClient(cfg cache.MemoryConfig, opts ...Option) (*MemoryClient, error) {
	if err := validateMemory(cfg); err != nil {
		return nil, err
	}
	o := buildOptions(opts)

	var sturdyOpts []sturdyc.Option
	if cfg.EvictionInterval > 0 {
		sturdyOpts = append(sturdyOpts, sturdyc.WithEvictionInterval(cfg.EvictionInterval))
	}

	client := sturdyc.New[memoryEntry](
		cfg.Capacity,
		cfg.NumShards,
		cfg.MaxTTL,
		cfg.EvictionPercentage,
		sturdyOpts...,
	)

	return &MemoryClient{
		client:  client,
		maxTTL:  cfg.MaxTTL,
		now:     o.now,
		metrics: o.metrics,
	}, nil
}

func validateMemory(cfg cache.MemoryConfig) error {
	if cfg.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}
	if cfg.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}
	if cfg.MaxTTL <= 0 {
		return &ConfigError{Field: "MaxTTL", Message: "must be greater than 0"}
	}
	if cfg.EvictionPercentage < 1 || cfg.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}
	return nil
}

// load returns the live entry for key, dropping it if it has expired.
func (m *MemoryClient) load(key string) (memoryEntry, bool) {
	entry, ok := m.client.Get(key)
	if !ok {
		return memoryEntry{}, false
	}
	if entry.expired(m.now()) {
		m.client.Delete(key)
		return memoryEntry{}, false
	}
	return entry, true
}

func (m *MemoryClient) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 || ttl > m.maxTTL {
		ttl = m.maxTTL
	}
	return m.now().Add(ttl)
}

// Get implements cache.Client.
func (m *MemoryClient) Get(_ context.Context, key string) (string, bool, error) {
	entry, ok := m.load(key)
	m.metrics.observe(backendMemory, "get", nil)
	return entry.value, ok, nil
}

// Set implements cache.Client. Entries never outlive the configured MaxTTL.
func (m *MemoryClient) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.client.Set(key, memoryEntry{value: value, expiresAt: m.expiry(ttl)})
	m.metrics.observe(backendMemory, "set", nil)
	return nil
}

// Delete implements cache.Client.
func (m *MemoryClient) Delete(_ context.Context, key string) (bool, error) {
	_, ok := m.load(key)
	if ok {
		m.client.Delete(key)
	}
	m.metrics.observe(backendMemory, "delete", nil)
	return ok, nil
}

// Keys implements cache.Client.
func (m *MemoryClient) Keys(_ context.Context, pattern string) ([]string, error) {
	var keys []string
	for _, key := range m.client.ScanKeys() {
		if !matchPattern(pattern, key) {
			continue
		}
		if _, ok := m.load(key); ok {
			keys = append(keys, key)
		}
	}
	m.metrics.observe(backendMemory, "keys", nil)
	return keys, nil
}

// DeleteKeys implements cache.Client.
func (m *MemoryClient) DeleteKeys(_ context.Context, keys ...string) (int64, error) {
	var n int64
	for _, key := range keys {
		if _, ok := m.load(key); ok {
			m.client.Delete(key)
			n++
		}
	}
	m.metrics.observe(backendMemory, "delete_keys", nil)
	return n, nil
}

// Exists implements cache.Client.
func (m *MemoryClient) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.load(key)
	m.metrics.observe(backendMemory, "exists", nil)
	return ok, nil
}

// Expire implements cache.Client.
func (m *MemoryClient) Expire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	entry, ok := m.load(key)
	if ok {
		entry.expiresAt = m.expiry(ttl)
		m.client.Set(key, entry)
	}
	m.metrics.observe(backendMemory, "expire", nil)
	return ok, nil
}

// Close implements cache.Client. The memory backend holds no external
// resources.
func (m *MemoryClient) Close() error {
	return nil
}
