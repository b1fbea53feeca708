package http

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker/v2"
)

type requestMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	rejects  *prometheus.CounterVec
	breaker  prometheus.Gauge
}

func newRequestMetrics(registerer prometheus.Registerer) *requestMetrics {
	factory := promauto.With(registerer)
	return &requestMetrics{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pugvideo_client_requests_total",
				Help: "Total number of API requests by method and response status",
			},
			[]string{"method", "status"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pugvideo_client_request_duration_seconds",
				Help:    "API request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		rejects: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pugvideo_client_breaker_rejections_total",
				Help: "Requests rejected while the circuit breaker was open",
			},
			[]string{"method"},
		),
		breaker: factory.NewGauge(prometheus.GaugeOpts{
			Name: "pugvideo_client_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		}),
	}
}

// The methods below accept a nil receiver so call sites do not need to check
// whether metrics were configured.

func (m *requestMetrics) observe(method string, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, status).Inc()
	m.duration.WithLabelValues(method).Observe(elapsed.Seconds())
}

func (m *requestMetrics) rejected(method string) {
	if m == nil {
		return
	}
	m.rejects.WithLabelValues(method).Inc()
}

func (m *requestMetrics) breakerState(state gobreaker.State) {
	if m == nil {
		return
	}
	switch state {
	case gobreaker.StateClosed:
		m.breaker.Set(0)
	case gobreaker.StateHalfOpen:
		m.breaker.Set(1)
	case gobreaker.StateOpen:
		m.breaker.Set(2)
	}
}
