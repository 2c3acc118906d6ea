package cacheinfra

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts cache backend operations by outcome.
type Metrics struct {
	operations *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg when it is not
// nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_operations_total",
			Help: "Cache backend operations by backend, operation and result.",
		}, []string{"backend", "op", "result"}),
	}
	if reg != nil {
		reg.MustRegister(m.operations)
	}
	return m
}

func (m *Metrics) observe(backend, op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.operations.WithLabelValues(backend, op, result).Inc()
}
