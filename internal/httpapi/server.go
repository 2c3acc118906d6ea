// Package httpapi exposes the listing services over HTTP with echo.
package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-property-listing/internal/config"
	"github.com/goliatone/go-property-listing/service"
)

// Services are the handlers' dependencies.
type Services struct {
	Auth            *service.Auth
	Properties      *service.Properties
	Favourites      *service.Favourites
	Recommendations *service.Recommendations
}

type options struct {
	logger   zerolog.Logger
	registry *prometheus.Registry
}

// Option customises the server.
type Option func(*options)

// WithLogger sets the request and error logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithRegistry sets the registry HTTP metrics are recorded on and /metrics
// serves. Without one neither is installed.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *options) { o.registry = reg }
}

// Server is the HTTP front end.
type Server struct {
	echo   *echo.Echo
	cfg    config.ServerConfig
	logger zerolog.Logger
}

// New builds the server and registers every route.
func New(cfg config.ServerConfig, svc Services, opts ...Option) *Server {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(o.logger)
	e.Server.ReadTimeout = cfg.ReadTimeout
	e.Server.WriteTimeout = cfg.WriteTimeout

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: newRequestID}))
	e.Use(requestLogger(o.logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  cfg.CORSOrigins,
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		ExposeHeaders: []string{HeaderCache, echo.HeaderXRequestID},
	}))
	if cfg.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.BodyLimit))
	}
	if cfg.RateLimit > 0 {
		e.Use(rateLimit(newRateStore(cfg.RateLimit, cfg.RateBurst, rateStoreTTL)))
	}
	if o.registry != nil {
		e.Use(newHTTPMetrics(o.registry).middleware)
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(o.registry, promhttp.HandlerOpts{})))
	}

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, "deployed successfully")
	})
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	requireAuth := authenticate(svc.Auth)

	ah := &authHandler{auth: svc.Auth}
	g := e.Group("/api/auth")
	g.POST("/signup", ah.signup)
	g.POST("/login", ah.login)
	g.POST("/refresh-token", ah.refresh)

	ph := &propertyHandler{properties: svc.Properties}
	g = e.Group("/api/properties")
	g.GET("/Get-properties", ph.search, requireAuth)
	g.POST("/add-property", ph.create, requireAuth)
	g.GET("/get-property/:id", ph.get)
	g.PUT("/update-property/:id", ph.update, requireAuth)
	g.DELETE("/delete-property/:id", ph.delete, requireAuth)

	fh := &favouriteHandler{favourites: svc.Favourites}
	g = e.Group("/api/favourites", requireAuth)
	g.POST("/add-favourite/:propertyId", fh.add)
	g.GET("", fh.list)
	g.GET("/", fh.list)
	g.GET("/get-favourite/:id", fh.get)
	g.PUT("/update-favourite/:id", fh.update)
	g.DELETE("/delete-favourite/:id", fh.remove)

	rh := &recommendationHandler{recommendations: svc.Recommendations}
	g = e.Group("/api/recommendations", requireAuth)
	g.GET("/search-users", rh.searchUsers)
	g.POST("/recommend-property", rh.recommend)
	g.GET("", rh.list)
	g.GET("/", rh.list)

	return &Server{echo: e, cfg: cfg, logger: o.logger}
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.echo }

// Start listens on the configured address until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.cfg.Addr()).Msg("http server listening")
	if err := s.echo.Start(s.cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
