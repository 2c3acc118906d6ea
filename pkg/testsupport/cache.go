package testsupport

import (
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/goliatone/go-property-listing/cache"
	"github.com/goliatone/go-property-listing/internal/cacheinfra"
)

// NewRedis starts an in-process Redis server and returns it with a client
// connected to it. Both are closed when the test ends.
func NewRedis(t *testing.T) (*miniredis.Miniredis, cache.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	cfg := cache.DefaultConfig()
	cfg.Addr = mr.Addr()

	client := cacheinfra.NewRedisClient(cfg)
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

// NewMemoryCache returns an empty in-process cache client.
func NewMemoryCache(t *testing.T) cache.Client {
	t.Helper()

	client, err := cacheinfra.NewMemoryClient(cache.DefaultConfig().Memory)
	if err != nil {
		t.Fatalf("failed to create memory cache: %v", err)
	}
	return client
}
