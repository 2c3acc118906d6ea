package di

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-property-listing/cache"
	"github.com/goliatone/go-property-listing/internal/auth"
	"github.com/goliatone/go-property-listing/internal/cacheinfra"
	"github.com/goliatone/go-property-listing/internal/config"
	"github.com/goliatone/go-property-listing/internal/httpapi"
	"github.com/goliatone/go-property-listing/internal/logging"
	"github.com/goliatone/go-property-listing/internal/storeinfra"
	"github.com/goliatone/go-property-listing/repositorycache"
	"github.com/goliatone/go-property-listing/service"
	"github.com/goliatone/go-property-listing/store"
)

// Stores groups the persistence backends the services are built on.
type Stores struct {
	Properties      store.PropertyStore
	Favourites      store.FavouriteStore
	Recommendations store.RecommendationStore
	Users           store.UserStore
}

// Option configures a Container.
type Option func(*Container)

// WithStores replaces the configured store backend. The container does not
// own stores supplied this way.
func WithStores(s Stores) Option {
	return func(c *Container) { c.stores = &s }
}

// WithCacheClient replaces the configured cache backend. The container still
// closes the client.
func WithCacheClient(client cache.Client) Option {
	return func(c *Container) { c.cacheClient = client }
}

// WithLogger replaces the logger built from the logging configuration.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Container) {
		c.logger = logger
		c.customLogger = true
	}
}

// Container builds and owns the process wide singletons: the cache client,
// the stores, the services and the HTTP server wired on top of them.
type Container struct {
	config       config.Config
	logger       zerolog.Logger
	customLogger bool
	registry     *prometheus.Registry

	cacheClient cache.Client
	cache       *repositorycache.Cache
	mongo       *storeinfra.Mongo
	stores      *Stores
	tokens      *auth.Tokens
	services    httpapi.Services
	server      *httpapi.Server
}

// NewContainer wires every component from cfg. Connecting to the document
// store honours ctx; on failure anything already opened is released.
func NewContainer(ctx context.Context, cfg config.Config, opts ...Option) (*Container, error) {
	c := &Container{config: cfg}
	for _, opt := range opts {
		opt(c)
	}

	if !c.customLogger {
		c.logger = logging.Init(cfg.Logging)
	}

	c.registry = prometheus.NewRegistry()
	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if err := c.initCache(); err != nil {
		return nil, err
	}
	if err := c.initStores(ctx); err != nil {
		_ = c.Close(context.Background())
		return nil, err
	}

	tokens, err := auth.NewTokens(cfg.Auth)
	if err != nil {
		_ = c.Close(context.Background())
		return nil, fmt.Errorf("auth: %w", err)
	}
	c.tokens = tokens

	c.initServices()
	c.server = httpapi.New(cfg.Server, c.services,
		httpapi.WithLogger(c.component("http")),
		httpapi.WithRegistry(c.registry),
	)

	return c, nil
}

func (c *Container) component(name string) zerolog.Logger {
	return c.logger.With().Str("component", name).Logger()
}

func (c *Container) initCache() error {
	if c.cacheClient == nil {
		client, err := cacheinfra.New(c.config.Cache,
			cacheinfra.WithLogger(c.component("cache")),
			cacheinfra.WithMetrics(cacheinfra.NewMetrics(c.registry)),
		)
		if err != nil {
			return fmt.Errorf("cache: %w", err)
		}
		c.cacheClient = client
	}

	c.cache = repositorycache.NewCache(c.cacheClient, c.config.Cache,
		repositorycache.WithLogger(c.component("repositorycache")),
		repositorycache.WithStats(repositorycache.NewStats(c.registry)),
	)
	return nil
}

func (c *Container) initStores(ctx context.Context) error {
	if c.stores != nil {
		return nil
	}

	switch c.config.Store.Backend {
	case config.StoreMemory:
		m := storeinfra.NewMemory()
		c.stores = &Stores{
			Properties:      m.Properties(),
			Favourites:      m.Favourites(),
			Recommendations: m.Recommendations(),
			Users:           m.Users(),
		}
	case config.StoreMongo:
		m, err := storeinfra.Connect(ctx, c.config.Store.Mongo, c.component("store"))
		if err != nil {
			return err
		}
		c.mongo = m
		if c.config.Store.Mongo.EnsureIndexes {
			if err := m.EnsureIndexes(ctx); err != nil {
				return fmt.Errorf("mongo indexes: %w", err)
			}
		}
		c.stores = &Stores{
			Properties:      m.Properties(),
			Favourites:      m.Favourites(),
			Recommendations: m.Recommendations(),
			Users:           m.Users(),
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.config.Store.Backend)
	}
	return nil
}

func (c *Container) initServices() {
	opts := []service.Option{service.WithLogger(c.component("service"))}
	users := repositorycache.NewCachedUserDirectory(c.stores.Users, c.cache)

	c.services = httpapi.Services{
		Auth: service.NewAuth(users, c.tokens, opts...),
		Properties: service.NewProperties(
			repositorycache.NewCachedPropertyRepository(c.stores.Properties, c.cache), opts...),
		Favourites: service.NewFavourites(
			repositorycache.NewCachedFavouriteRepository(c.stores.Favourites, c.cache), opts...),
		Recommendations: service.NewRecommendations(
			repositorycache.NewCachedRecommendationRepository(c.stores.Recommendations, c.stores.Users, c.cache),
			users, opts...),
	}
}

// Config returns the configuration the container was built from.
func (c *Container) Config() config.Config { return c.config }

// Logger returns the root logger.
func (c *Container) Logger() zerolog.Logger { return c.logger }

// Registry returns the metrics registry served on /metrics.
func (c *Container) Registry() *prometheus.Registry { return c.registry }

// CacheClient returns the singleton cache backend.
func (c *Container) CacheClient() cache.Client { return c.cacheClient }

// Cache returns the read-through cache shared by the cached repositories.
func (c *Container) Cache() *repositorycache.Cache { return c.cache }

// Stores returns the uncached stores.
func (c *Container) Stores() Stores { return *c.stores }

// Services returns the application services.
func (c *Container) Services() httpapi.Services { return c.services }

// Server returns the HTTP server.
func (c *Container) Server() *httpapi.Server { return c.server }

// Close releases the cache client and the document store connection.
func (c *Container) Close(ctx context.Context) error {
	var errs []error
	if c.cacheClient != nil {
		if err := c.cacheClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close cache: %w", err))
		}
	}
	if c.mongo != nil {
		if err := c.mongo.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close mongo: %w", err))
		}
	}
	return errors.Join(errs...)
}
