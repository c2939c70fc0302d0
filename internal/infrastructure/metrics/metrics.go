package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Chat-API metrics
var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chefgpt",
			Subsystem: "chat_api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "chefgpt",
			Subsystem: "chat_api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "endpoint"},
	)

	GatewayCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chefgpt",
			Subsystem: "chat_api",
			Name:      "gateway_calls_total",
			Help:      "Model gateway calls by provider and outcome",
		},
		[]string{"provider", "status"},
	)

	GatewayDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "chefgpt",
			Subsystem: "chat_api",
			Name:      "gateway_duration_seconds",
			Help:      "Model gateway latency in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
		},
		[]string{"provider"},
	)

	IdentityResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chefgpt",
			Subsystem: "chat_api",
			Name:      "identity_resolutions_total",
			Help:      "Credential resolutions by outcome (anonymous, owner, rejected, cached)",
		},
		[]string{"outcome"},
	)
)

// RecordRequest records one HTTP request.
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordGatewayCall records one model call.
func RecordGatewayCall(provider, status string, durationSec float64) {
	GatewayCallsTotal.WithLabelValues(provider, status).Inc()
	GatewayDuration.WithLabelValues(provider).Observe(durationSec)
}

// RecordIdentity records how a credential was resolved.
func RecordIdentity(outcome string) {
	IdentityResolutionsTotal.WithLabelValues(outcome).Inc()
}
