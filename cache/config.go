package cache

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Backend names a cache implementation.
type Backend string

const (
	BackendRedis  Backend = "redis"
	BackendMemory Backend = "memory"
)

// Config describes how the cache client is built and how long entries live.
type Config struct {
	Backend      Backend       `koanf:"backend"`
	Addr         string        `koanf:"addr"`
	Username     string        `koanf:"username"`
	Password     string        `koanf:"password"`
	DB           int           `koanf:"db"`
	DialTimeout  time.Duration `koanf:"dial_timeout"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`

	DefaultTTL         time.Duration `koanf:"default_ttl"`
	SearchTTL          time.Duration `koanf:"search_ttl"`
	RecommendationsTTL time.Duration `koanf:"recommendations_ttl"`
	KeyEncoding        Encoding      `koanf:"key_encoding"`
	// CoalesceMisses collapses concurrent misses on the same key into a
	// single store read.
	CoalesceMisses bool `koanf:"coalesce_misses"`

	Memory  MemoryConfig  `koanf:"memory"`
	Breaker BreakerConfig `koanf:"breaker"`
}

// MemoryConfig sizes the in-process backend.
type MemoryConfig struct {
	Capacity           int           `koanf:"capacity"`
	NumShards          int           `koanf:"num_shards"`
	EvictionPercentage int           `koanf:"eviction_percentage"`
	EvictionInterval   time.Duration `koanf:"eviction_interval"`
	// MaxTTL bounds every entry regardless of the ttl it was written with.
	MaxTTL time.Duration `koanf:"max_ttl"`
}

// BreakerConfig controls the circuit breaker around the remote backend.
type BreakerConfig struct {
	Enabled     bool          `koanf:"enabled"`
	MaxFailures uint32        `koanf:"max_failures"`
	OpenTimeout time.Duration `koanf:"open_timeout"`
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Backend:            BackendRedis,
		Addr:               "localhost:6379",
		DialTimeout:        5 * time.Second,
		ReadTimeout:        3 * time.Second,
		WriteTimeout:       3 * time.Second,
		DefaultTTL:         DefaultTTL,
		SearchTTL:          SearchTTL,
		RecommendationsTTL: RecommendationsTTL,
		KeyEncoding:        EncodingBase64,
		CoalesceMisses:     true,
		Memory: MemoryConfig{
			Capacity:           10000,
			NumShards:          10,
			EvictionPercentage: 10,
			EvictionInterval:   time.Minute,
			MaxTTL:             24 * time.Hour,
		},
		Breaker: BreakerConfig{
			Enabled:     true,
			MaxFailures: 5,
			OpenTimeout: 30 * time.Second,
		},
	}
}

// Validate checks whether the configuration values are usable.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Backend, validation.Required, validation.In(BackendRedis, BackendMemory)),
		validation.Field(&c.Addr, validation.When(c.Backend == BackendRedis, validation.Required)),
		validation.Field(&c.DB, validation.Min(0)),
		validation.Field(&c.DefaultTTL, validation.Required),
		validation.Field(&c.SearchTTL, validation.Required),
		validation.Field(&c.RecommendationsTTL, validation.Required),
		validation.Field(&c.KeyEncoding, validation.In(EncodingBase64, EncodingXXHash)),
		validation.Field(&c.Memory, validation.When(c.Backend == BackendMemory, validation.By(func(any) error {
			return c.Memory.validate()
		}))),
	)
}

func (m MemoryConfig) validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Capacity, validation.Required, validation.Min(1)),
		validation.Field(&m.NumShards, validation.Required, validation.Min(1)),
		validation.Field(&m.EvictionPercentage, validation.Required, validation.Min(1), validation.Max(100)),
		validation.Field(&m.MaxTTL, validation.Required),
	)
}
