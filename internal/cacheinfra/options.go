package cacheinfra

import (
	"time"

	"github.com/rs/zerolog"
)

type options struct {
	logger  zerolog.Logger
	metrics *Metrics
	now     func() time.Time
}

// Option customises a cache client.
type Option func(*options)

// WithLogger sets the logger used for breaker transitions and connection
// events.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics records every operation on m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithClock overrides the clock used for expiry in the memory backend.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		logger: zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
