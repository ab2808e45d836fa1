// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// SessionsActive tracks live conversation sessions.
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "booking_sessions_active",
			Help: "Number of active conversation sessions",
		},
	)

	// TurnsTotal tracks processed conversation turns by outcome.
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_turns_total",
			Help: "Total conversation turns processed",
		},
		[]string{"agent_id", "outcome"},
	)

	// FallbackRepliesTotal tracks replies produced by the rule-based responder.
	FallbackRepliesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_fallback_replies_total",
			Help: "Total replies produced by the fallback responder",
		},
		[]string{"agent_id", "reason"},
	)

	// BookingsReadyTotal tracks turns that reached the checkout marker.
	BookingsReadyTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_checkout_ready_total",
			Help: "Total turns that produced the checkout-ready signal",
		},
		[]string{"agent_id"},
	)

	// LLMRequestDuration tracks model gateway request duration.
	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_request_duration_seconds",
			Help:    "Model gateway request duration",
			Buckets: []float64{.25, .5, 1, 2, 5, 10, 20, 30},
		},
		[]string{"model", "status"},
	)

	// LLMTokensTotal tracks total LLM tokens processed.
	LLMTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_tokens_total",
			Help: "Total LLM tokens processed",
		},
		[]string{"model"},
	)

	// PersistenceErrorsTotal tracks swallowed persistence failures.
	PersistenceErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "persistence_errors_total",
			Help: "Total persistence failures (logged, never fatal to a turn)",
		},
		[]string{"kind"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordLLMRequest records metrics for a model gateway call.
func RecordLLMRequest(model, status string, duration float64, tokens int) {
	LLMRequestDuration.WithLabelValues(model, status).Observe(duration)
	if tokens > 0 {
		LLMTokensTotal.WithLabelValues(model).Add(float64(tokens))
	}
}
