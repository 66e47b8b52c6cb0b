// CraftStream Recommender - Related-Content Recommendations for Maker Media
// Copyright 2026 CraftStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/craftstream/recommender

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus Metrics Integration for Production Observability
// This package provides instrumentation for:
// - Embedding cache efficiency (hits, misses, evictions, size)
// - Embedding provider latency, timeouts, and circuit breaker state
// - Recommendation requests by strategy
// - Precompute sweep outcomes
// - API endpoint latency and throughput

var (
	// Embedding Cache Metrics
	EmbeddingCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "embedding_cache_hits_total",
			Help: "Total number of embedding cache hits",
		},
	)

	EmbeddingCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "embedding_cache_misses_total",
			Help: "Total number of embedding cache misses (absent or expired)",
		},
	)

	EmbeddingCacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "embedding_cache_evictions_total",
			Help: "Total number of capacity evictions (oldest entry removed)",
		},
	)

	EmbeddingCacheExpirations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "embedding_cache_expirations_total",
			Help: "Total number of entries removed by TTL expiry",
		},
	)

	EmbeddingCacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "embedding_cache_entries",
			Help: "Current number of cached embeddings",
		},
	)

	// Embedding Provider Metrics
	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "embedding_provider_requests_total",
			Help: "Total number of embedding provider calls",
		},
		[]string{"provider", "result"}, // result: "success", "error", "timeout"
	)

	ProviderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "embedding_provider_duration_seconds",
			Help:    "Duration of embedding provider calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Recommendation Metrics
	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_requests_total",
			Help: "Total number of recommendation requests by winning strategy",
		},
		[]string{"strategy"}, // "content_based", "history_based", "popularity_fallback"
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_duration_seconds",
			Help:    "Duration of recommendation requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	RecommendationDegradations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_degradations_total",
			Help: "Total number of content-based requests degraded to popularity fallback",
		},
	)

	// Precompute Metrics
	PrecomputeSweeps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "precompute_sweeps_total",
			Help: "Total number of precompute sweeps",
		},
		[]string{"trigger", "result"}, // trigger: "startup", "scheduled", "manual"; result: "completed", "canceled", "skipped"
	)

	PrecomputeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "precompute_sweep_duration_seconds",
			Help:    "Duration of precompute sweeps in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
		},
	)

	PrecomputeItemFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "precompute_item_failures_total",
			Help: "Total number of catalog items skipped during precompute due to provider errors",
		},
	)

	PrecomputeLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "precompute_last_success_timestamp",
			Help: "Unix timestamp of the last completed precompute sweep",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordProviderCall records an embedding provider call outcome
func RecordProviderCall(provider, result string, duration time.Duration) {
	ProviderRequests.WithLabelValues(provider, result).Inc()
	ProviderDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordRecommendation records a served recommendation and its winning strategy
func RecordRecommendation(strategy string, duration time.Duration) {
	RecommendationRequests.WithLabelValues(strategy).Inc()
	RecommendationDuration.Observe(duration.Seconds())
}

// RecordPrecomputeSweep records a precompute sweep outcome
func RecordPrecomputeSweep(trigger, result string, duration time.Duration) {
	PrecomputeSweeps.WithLabelValues(trigger, result).Inc()
	if result == "completed" {
		PrecomputeDuration.Observe(duration.Seconds())
		PrecomputeLastSuccess.Set(float64(time.Now().Unix()))
	}
}

// UpdateCacheGauges pushes cache counter deltas and the current size.
// Counters are monotonically increasing snapshots from the cache, so the
// caller passes deltas since the previous update.
func UpdateCacheGauges(hitsDelta, missesDelta, evictionsDelta, expirationsDelta int64, size int) {
	if hitsDelta > 0 {
		EmbeddingCacheHits.Add(float64(hitsDelta))
	}
	if missesDelta > 0 {
		EmbeddingCacheMisses.Add(float64(missesDelta))
	}
	if evictionsDelta > 0 {
		EmbeddingCacheEvictions.Add(float64(evictionsDelta))
	}
	if expirationsDelta > 0 {
		EmbeddingCacheExpirations.Add(float64(expirationsDelta))
	}
	EmbeddingCacheSize.Set(float64(size))
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
