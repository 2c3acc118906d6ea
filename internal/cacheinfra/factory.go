package cacheinfra

import (
	"fmt"

	"github.com/goliatone/go-property-listing/cache"
)

// New builds the cache.Client selected by cfg.Backend.
func New(cfg cache.Config, opts ...Option) (cache.Client, error) {
	switch cfg.Backend {
	case cache.BackendRedis, "":
		return NewRedisClient(cfg, opts...), nil
	case cache.BackendMemory:
		return NewMemoryClient(cfg.Memory, opts...)
	default:
		return nil, &ConfigError{Field: "Backend", Message: fmt.Sprintf("unknown backend %q", cfg.Backend)}
	}
}
