package transport

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/uniempresarial/bienestar-client/internal/core/ports"
)

type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the transport collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bienestar",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Backend requests by operation, method and outcome.",
		}, []string{"operation", "method", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bienestar",
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Backend request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "method"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

func (m *Metrics) observe(req *ports.Request, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(req.Operation, req.Method, outcome).Inc()
	m.duration.WithLabelValues(req.Operation, req.Method).Observe(elapsed.Seconds())
}
