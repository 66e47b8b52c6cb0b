// CraftStream Recommender - Related-Content Recommendations for Maker Media
// Copyright 2026 CraftStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/craftstream/recommender

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Precomputer defines the sweep operations the scheduler drives. Satisfied
// by *embedding.Precomputer; the interface keeps this package free of
// import cycles and mockable in tests.
type Precomputer interface {
	// Sweep runs a full catalog sweep; false means one was already running.
	Sweep(ctx context.Context, trigger string) bool
}

// PrecomputeServiceConfig holds configuration for the precompute scheduler.
type PrecomputeServiceConfig struct {
	// WarmOnStartup triggers a sweep when the service starts.
	WarmOnStartup bool

	// Interval is how often to refresh embeddings.
	Interval time.Duration
}

// PrecomputeService drives the embedding precomputer under supervision:
// an optional startup warm followed by scheduled refreshes. Sweeps run in
// the service goroutine, so a panicking sweep restarts cleanly through
// suture without touching the API layer.
type PrecomputeService struct {
	precomputer Precomputer
	config      PrecomputeServiceConfig
	logger      zerolog.Logger
	name        string
}

// NewPrecomputeService creates a new precompute scheduler service.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewPrecomputeService(p Precomputer, cfg PrecomputeServiceConfig, logger zerolog.Logger) *PrecomputeService {
	return &PrecomputeService{
		precomputer: p,
		config:      cfg,
		logger:      logger.With().Str("service", "precompute").Logger(),
		name:        "precompute-scheduler",
	}
}

// Serve implements the suture.Service interface.
func (s *PrecomputeService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("warm_on_startup", s.config.WarmOnStartup).
		Dur("interval", s.config.Interval).
		Msg("precompute scheduler starting")

	if s.config.WarmOnStartup {
		s.precomputer.Sweep(ctx, "startup")
	}

	interval := s.config.Interval
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("precompute scheduler shutting down")
			return ctx.Err()

		case <-ticker.C:
			s.logger.Debug().Msg("scheduled embedding refresh triggered")
			s.precomputer.Sweep(ctx, "scheduled")
		}
	}
}

// String returns the service name for logging.
func (s *PrecomputeService) String() string {
	return s.name
}
