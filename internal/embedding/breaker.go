// CraftStream Recommender - Related-Content Recommendations for Maker Media
// Copyright 2026 CraftStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/craftstream/recommender

package embedding

import (
	"context"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/craftstream/recommender/internal/config"
	"github.com/craftstream/recommender/internal/logging"
	"github.com/craftstream/recommender/internal/metrics"
)

// BreakerProvider wraps a Provider with a circuit breaker. When the
// provider fails persistently the breaker opens and calls fail fast,
// which the recommendation path absorbs by degrading to the popularity
// tier instead of stacking up slow timeouts.
//
// The breaker uses real time for its interval and timeout calculations.
// Tests exercise the wrapped provider directly.
type BreakerProvider struct {
	provider Provider
	cb       *gobreaker.CircuitBreaker[[]float64]
	name     string
}

// NewBreakerProvider wraps provider with a circuit breaker.
// The breaker opens after a 60% failure rate over at least 10 requests.
func NewBreakerProvider(provider Provider, cfg config.ProviderConfig) *BreakerProvider {
	cbName := "embedding-" + provider.Name()

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[[]float64](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,

		// Opens when failure rate >= 60% with minimum 10 requests
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6

			if shouldTrip {
				logging.Warn().
					Str("breaker", cbName).
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("opening embedding provider circuit")
			}

			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().
				Str("breaker", name).
				Str("from", fromStr).
				Str("to", toStr).
				Msg("embedding provider circuit state transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &BreakerProvider{
		provider: provider,
		cb:       cb,
		name:     cbName,
	}
}

// GenerateEmbedding calls the wrapped provider through the breaker and
// records call metrics.
func (b *BreakerProvider) GenerateEmbedding(ctx context.Context, text string) ([]float64, error) {
	start := time.Now()

	vector, err := b.cb.Execute(func() ([]float64, error) {
		return b.provider.GenerateEmbedding(ctx, text)
	})

	duration := time.Since(start)
	switch {
	case err == nil:
		metrics.RecordProviderCall(b.provider.Name(), "success", duration)
	case ctx.Err() != nil:
		metrics.RecordProviderCall(b.provider.Name(), "timeout", duration)
	default:
		metrics.RecordProviderCall(b.provider.Name(), "error", duration)
	}

	return vector, err
}

// Dimension returns the wrapped provider's dimension.
func (b *BreakerProvider) Dimension() int {
	return b.provider.Dimension()
}

// Name identifies the wrapped provider.
func (b *BreakerProvider) Name() string {
	return b.provider.Name()
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
