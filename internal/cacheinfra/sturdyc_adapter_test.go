package cacheinfra

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-property-listing/cache"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestMemoryClient(t *testing.T, clock *fakeClock) *MemoryClient {
	t.Helper()
	client, err := NewMemoryClient(cache.DefaultConfig().Memory, WithClock(clock.Now))
	if err != nil {
		t.Fatalf("NewMemoryClient() error = %v", err)
	}
	return client
}

func TestNewMemoryClient_Validation(t *testing.T) {
	valid := cache.DefaultConfig().Memory

	tests := []struct {
		name    string
		mutate  func(*cache.MemoryConfig)
		wantErr string
	}{
		{name: "valid default config"},
		{
			name:    "zero capacity",
			mutate:  func(c *cache.MemoryConfig) { c.Capacity = 0 },
			wantErr: "Capacity",
		},
		{
			name:    "zero shards",
			mutate:  func(c *cache.MemoryConfig) { c.NumShards = 0 },
			wantErr: "NumShards",
		},
		{
			name:    "zero max ttl",
			mutate:  func(c *cache.MemoryConfig) { c.MaxTTL = 0 },
			wantErr: "MaxTTL",
		},
		{
			name:    "eviction over 100",
			mutate:  func(c *cache.MemoryConfig) { c.EvictionPercentage = 101 },
			wantErr: "EvictionPercentage",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			if tt.mutate != nil {
				tt.mutate(&cfg)
			}

			_, err := NewMemoryClient(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigError, got %v", err)
			}
			if cfgErr.Field != tt.wantErr {
				t.Errorf("field = %v, want %v", cfgErr.Field, tt.wantErr)
			}
		})
	}
}

func TestMemoryClient_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	client := newTestMemoryClient(t, newFakeClock())

	if err := client.Set(ctx, "property:1", `{"id":"1"}`, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	value, found, err := client.Get(ctx, "property:1")
	if err != nil || !found {
		t.Fatalf("Get() = %q, %v, %v", value, found, err)
	}
	if value != `{"id":"1"}` {
		t.Errorf("Get() value = %v, want %v", value, `{"id":"1"}`)
	}

	deleted, err := client.Delete(ctx, "property:1")
	if err != nil || !deleted {
		t.Fatalf("Delete() = %v, %v, want true", deleted, err)
	}

	deleted, err = client.Delete(ctx, "property:1")
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if deleted {
		t.Error("second Delete() reported an existing key")
	}

	if _, found, _ := client.Get(ctx, "property:1"); found {
		t.Error("Get() found a deleted key")
	}
}

func TestMemoryClient_Expiry(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	client := newTestMemoryClient(t, clock)

	_ = client.Set(ctx, "short", "v", 10*time.Second)
	_ = client.Set(ctx, "long", "v", time.Hour)

	clock.Advance(11 * time.Second)

	if ok, _ := client.Exists(ctx, "short"); ok {
		t.Error("expired key still exists")
	}
	if ok, _ := client.Exists(ctx, "long"); !ok {
		t.Error("live key reported missing")
	}

	ok, err := client.Expire(ctx, "long", 5*time.Second)
	if err != nil || !ok {
		t.Fatalf("Expire() = %v, %v", ok, err)
	}
	clock.Advance(6 * time.Second)
	if _, found, _ := client.Get(ctx, "long"); found {
		t.Error("key outlived its new expiry")
	}

	if ok, _ := client.Expire(ctx, "missing", time.Minute); ok {
		t.Error("Expire() on a missing key returned true")
	}
}

func TestMemoryClient_KeysAndDeleteKeys(t *testing.T) {
	ctx := context.Background()
	client := newTestMemoryClient(t, newFakeClock())

	for _, key := range []string{
		"properties:filtered:Y2l0eTpQdW5l",
		"properties:filtered:dHlwZTpWaWxsYQ==",
		"properties:filtered:YS9i",
		"property:1",
		"favourites:user:u1",
	} {
		_ = client.Set(ctx, key, "x", time.Minute)
	}

	keys, err := client.Keys(ctx, "properties:filtered:*")
	if err != nil {
		t.Fatalf("Keys() error = %v", err)
	}
	sort.Strings(keys)
	if len(keys) != 3 {
		t.Fatalf("Keys() = %v, want 3 filtered keys", keys)
	}

	n, err := client.DeleteKeys(ctx, append(keys, "never-set")...)
	if err != nil {
		t.Fatalf("DeleteKeys() error = %v", err)
	}
	if n != 3 {
		t.Errorf("DeleteKeys() = %d, want 3", n)
	}

	if ok, _ := client.Exists(ctx, "property:1"); !ok {
		t.Error("unrelated key was removed")
	}
}

func TestNew_SelectsBackend(t *testing.T) {
	cfg := cache.DefaultConfig()

	cfg.Backend = cache.BackendMemory
	client, err := New(cfg)
	if err != nil {
		t.Fatalf("New(memory) error = %v", err)
	}
	if _, ok := client.(*MemoryClient); !ok {
		t.Errorf("New(memory) = %T, want *MemoryClient", client)
	}

	cfg.Backend = cache.BackendRedis
	client, err = New(cfg)
	if err != nil {
		t.Fatalf("New(redis) error = %v", err)
	}
	if _, ok := client.(*RedisClient); !ok {
		t.Errorf("New(redis) = %T, want *RedisClient", client)
	}
	_ = client.Close()

	cfg.Backend = "memcached"
	if _, err := New(cfg); err == nil {
		t.Error("New(memcached) expected error")
	}
}
