// Package config loads the service configuration.
//
// Values are layered: built in defaults, then an optional YAML file, then
// environment variables. A .env file in the working directory is read into
// the environment first.
package config

import (
	"net"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-property-listing/cache"
	"github.com/goliatone/go-property-listing/internal/auth"
	"github.com/goliatone/go-property-listing/internal/logging"
	"github.com/goliatone/go-property-listing/internal/storeinfra"
)

// Store backends.
const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// Config is the complete service configuration.
type Config struct {
	Server  ServerConfig   `koanf:"server"`
	Store   StoreConfig    `koanf:"store"`
	Cache   cache.Config   `koanf:"cache"`
	Auth    auth.Config    `koanf:"auth"`
	Logging logging.Config `koanf:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	BodyLimit       string        `koanf:"body_limit"`

	// RateLimit is the sustained requests per second allowed per client IP.
	// Zero disables limiting.
	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`

	CORSOrigins []string `koanf:"cors_origins"`
}

// StoreConfig selects and configures the document store.
type StoreConfig struct {
	Backend string                 `koanf:"backend"`
	Mongo   storeinfra.MongoConfig `koanf:"mongo"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            5000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			BodyLimit:       "1M",
			RateLimit:       20,
			RateBurst:       40,
			CORSOrigins:     []string{"*"},
		},
		Store: StoreConfig{
			Backend: StoreMongo,
			Mongo:   storeinfra.DefaultMongoConfig(),
		},
		Cache:   cache.DefaultConfig(),
		Auth:    auth.DefaultConfig(),
		Logging: logging.DefaultConfig(),
	}
}

// Validate implements validation.Validatable.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Server),
		validation.Field(&c.Store),
		validation.Field(&c.Cache),
		validation.Field(&c.Auth),
	)
}

// Validate implements validation.Validatable.
func (s ServerConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&s.RateLimit, validation.Min(0.0)),
		validation.Field(&s.RateBurst, validation.When(s.RateLimit > 0, validation.Required, validation.Min(1))),
	)
}

// Validate implements validation.Validatable. The Mongo section is only
// checked when it is the selected backend.
func (s StoreConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Backend, validation.Required, validation.In(StoreMongo, StoreMemory)),
		validation.Field(&s.Mongo, validation.Skip.When(s.Backend != StoreMongo)),
	)
}

// Addr is the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
