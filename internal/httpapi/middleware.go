package httpapi

import (
	"strconv"
	"strings"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/goliatone/go-property-listing/internal/auth"
	"github.com/goliatone/go-property-listing/service"
)

const (
	principalKey = "principal"
	rateStoreTTL = 10 * time.Minute
)

func newRequestID() string { return uuid.NewString() }

// authenticate requires a bearer access token and stores the caller in the
// context.
func authenticate(a *service.Auth) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearer(c)
			if !ok {
				return goerrors.New("Access token required", goerrors.CategoryAuth).
					WithCode(goerrors.CodeUnauthorized).
					WithTextCode("TOKEN_MISSING")
			}

			p, err := a.Authenticate(token)
			if err != nil {
				return err
			}
			c.Set(principalKey, p)
			return next(c)
		}
	}
}

func bearer(c echo.Context) (string, bool) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func principal(c echo.Context) auth.Principal {
	p, _ := c.Get(principalKey).(auth.Principal)
	return p
}

func requestLogger(logger zerolog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			ev := logger.Info()
			if v.Status >= 500 {
				ev = logger.Error()
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

// rateStore keeps one token bucket per client. Buckets idle for longer
// than ttl are dropped on the next sweep.
type rateStore struct {
	visitors *xsync.MapOf[string, *visitor]
	limit    rate.Limit
	burst    int
	ttl      time.Duration
	now      func() time.Time

	mu    sync.Mutex
	swept time.Time
}

type visitor struct {
	limiter *rate.Limiter
	seen    time.Time
}

func newRateStore(perSecond float64, burst int, ttl time.Duration) *rateStore {
	return &rateStore{
		visitors: xsync.NewMapOf[string, *visitor](),
		limit:    rate.Limit(perSecond),
		burst:    burst,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Allow implements middleware.RateLimiterStore.
func (s *rateStore) Allow(identifier string) (bool, error) {
	now := s.now()
	v, _ := s.visitors.Compute(identifier, func(old *visitor, loaded bool) (*visitor, bool) {
		if !loaded {
			old = &visitor{limiter: rate.NewLimiter(s.limit, s.burst)}
		}
		old.seen = now
		return old, false
	})
	allowed := v.limiter.AllowN(now, 1)
	s.sweep(now)
	return allowed, nil
}

func (s *rateStore) sweep(now time.Time) {
	s.mu.Lock()
	due := now.Sub(s.swept) >= s.ttl
	if due {
		s.swept = now
	}
	s.mu.Unlock()
	if !due {
		return
	}

	s.visitors.Range(func(key string, _ *visitor) bool {
		s.visitors.Compute(key, func(old *visitor, loaded bool) (*visitor, bool) {
			return old, !loaded || now.Sub(old.seen) > s.ttl
		})
		return true
	})
}

func rateLimit(store middleware.RateLimiterStore) echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(echo.Context, string, error) error {
			return goerrors.New("Too many requests", goerrors.CategoryRateLimit).
				WithCode(goerrors.CodeTooManyRequests).
				WithTextCode("RATE_LIMITED")
		},
	})
}

type httpMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newHTTPMetrics(reg prometheus.Registerer) *httpMetrics {
	m := &httpMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "listing_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "listing_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

func (m *httpMetrics) middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)

		status := c.Response().Status
		if err != nil {
			var e *goerrors.Error
			if goerrors.As(err, &e) && e.Code != 0 {
				status = e.Code
			} else {
				var he *echo.HTTPError
				if goerrors.As(err, &he) {
					status = he.Code
				} else {
					status = 500
				}
			}
		}

		route := c.Path()
		m.requests.WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).Inc()
		m.duration.WithLabelValues(c.Request().Method, route).Observe(time.Since(start).Seconds())
		return err
	}
}
