package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks outbound calls to the identity provider API.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New creates the client metrics and registers them with reg. A nil reg
// creates unregistered collectors.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "idp_client_requests_total",
			Help: "Total number of requests sent to the identity provider, by operation and response code",
		}, []string{"operation", "method", "code"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "idp_client_request_duration_seconds",
			Help:    "Duration of identity provider requests, including body decoding",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"operation"}),
	}
}

// ObserveRequest records one finished request. Pass status 0 when no response
// arrived. Call with time.Now() taken before the request was sent.
func (m *Metrics) ObserveRequest(operation, method string, status int, start time.Time) {
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	m.RequestsTotal.WithLabelValues(operation, method, code).Inc()
	m.RequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
