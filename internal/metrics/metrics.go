// Package metrics provides the centralized Prometheus registry for the evaluator.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "prop_evaluator"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	EvaluationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "evaluations_total",
		Help:      "Total number of evaluations by sport and decision",
	}, []string{"sport", "decision"})
	ProviderRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provider_requests_total",
		Help:      "Total number of stat provider requests by endpoint and status",
	}, []string{"endpoint", "status"})
	CacheLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Total number of cache lookups by tier and result",
	}, []string{"tier", "result"})
	SinkFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sink_failures_total",
		Help:      "Total number of failed analytics or history writes",
	}, []string{"sink"})
	FallbackSourcesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fallback_sources_total",
		Help:      "Which source won each fallback chain",
	}, []string{"chain", "source"})
	CircuitBreakerTripsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "circuit_breaker_trips_total",
		Help:      "Total number of provider circuit breaker trips",
	})
	QuotaDenialsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quota_denials_total",
		Help:      "Total number of requests denied by the usage collaborator",
	})
)

// Gauge metrics
var (
	CacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "cache_hit_ratio",
		Help:      "Response cache hit ratio",
	})
	StreamClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "stream_clients",
		Help:      "Number of connected live feed clients",
	})
)

// Histogram metrics
var (
	EvaluationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "evaluation_duration_seconds",
		Help:      "Duration of evaluations in seconds",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})
	EvaluationConfidence = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "evaluation_confidence",
		Help:      "Distribution of reported confidence",
		Buckets:   []float64{10, 20, 30, 40, 50, 55, 60, 65, 67.5, 70, 80, 90, 100},
	}, []string{"sport"})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(EvaluationsTotal)
		registry.MustRegister(ProviderRequestsTotal)
		registry.MustRegister(CacheLookupsTotal)
		registry.MustRegister(SinkFailuresTotal)
		registry.MustRegister(FallbackSourcesTotal)
		registry.MustRegister(CircuitBreakerTripsTotal)
		registry.MustRegister(QuotaDenialsTotal)

		registry.MustRegister(CacheHitRatio)
		registry.MustRegister(StreamClients)

		registry.MustRegister(EvaluationDuration)
		registry.MustRegister(EvaluationConfidence)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordEvaluation records a completed evaluation.
func RecordEvaluation(sport, decision string, confidence, durationSeconds float64) {
	EvaluationsTotal.WithLabelValues(sport, decision).Inc()
	EvaluationConfidence.WithLabelValues(sport).Observe(confidence)
	EvaluationDuration.Observe(durationSeconds)
}

// RecordProviderRequest records a provider call outcome.
func RecordProviderRequest(endpoint, status string) {
	ProviderRequestsTotal.WithLabelValues(endpoint, status).Inc()
}

// RecordCacheLookup records a cache hit or miss.
func RecordCacheLookup(tier string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookupsTotal.WithLabelValues(tier, result).Inc()
}

// UpdateCacheHitRatio updates the cache hit ratio gauge.
func UpdateCacheHitRatio(ratio float64) {
	CacheHitRatio.Set(ratio)
}

// RecordSinkFailure records a failed sink write.
func RecordSinkFailure(sink string) {
	SinkFailuresTotal.WithLabelValues(sink).Inc()
}

// RecordFallbackSource records which source won a fallback chain.
func RecordFallbackSource(chain, source string) {
	FallbackSourcesTotal.WithLabelValues(chain, source).Inc()
}

// RecordCircuitBreakerTrip records a circuit breaker trip event.
func RecordCircuitBreakerTrip() {
	CircuitBreakerTripsTotal.Inc()
}

// RecordQuotaDenial records a denied request.
func RecordQuotaDenial() {
	QuotaDenialsTotal.Inc()
}

// UpdateStreamClients sets the live feed client gauge.
func UpdateStreamClients(n int) {
	StreamClients.Set(float64(n))
}
