// CraftStream Recommender - Related-Content Recommendations for Maker Media
// Copyright 2026 CraftStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/craftstream/recommender

package embedding

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/craftstream/recommender/internal/catalog"
	"github.com/craftstream/recommender/internal/config"
	"github.com/craftstream/recommender/internal/metrics"
)

// SweepStatus reports the precomputer's most recent activity for the
// status endpoint.
type SweepStatus struct {
	Running      bool      `json:"running"`
	LastTrigger  string    `json:"last_trigger,omitempty"`
	LastResult   string    `json:"last_result,omitempty"`
	LastStarted  time.Time `json:"last_started,omitempty"`
	LastFinished time.Time `json:"last_finished,omitempty"`
	ItemsWarmed  int       `json:"items_warmed"`
	ItemsFailed  int       `json:"items_failed"`
}

// Precomputer walks the catalog and warms the embedding cache, generating
// only the items missing from it. Sweeps run
// at startup, on a schedule, and on demand; at most one sweep runs at a
// time and a trigger arriving mid-sweep is a no-op. Per-item provider
// failures are logged and skipped so one bad item never aborts a sweep.
type Precomputer struct {
	catalog  catalog.Catalog
	cache    *Cache
	provider Provider
	timeout  time.Duration
	logger   zerolog.Logger

	// running is the single-sweep guard. CompareAndSwap makes the
	// "concurrent trigger is a no-op" rule race-free.
	running atomic.Bool

	statusMu sync.RWMutex
	status   SweepStatus
}

// NewPrecomputer creates a precomputer over the given collaborators.
// timeout bounds each individual provider call, not the whole sweep.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewPrecomputer(cat catalog.Catalog, c *Cache, provider Provider, cfg config.ProviderConfig, logger zerolog.Logger) *Precomputer {
	return &Precomputer{
		catalog:  cat,
		cache:    c,
		provider: provider,
		timeout:  cfg.Timeout,
		logger:   logger.With().Str("component", "precompute").Logger(),
	}
}

// Refresh triggers an on-demand sweep in the background and reports
// whether a new sweep actually started. A refresh during a running sweep
// is a no-op returning false.
func (p *Precomputer) Refresh(ctx context.Context) bool {
	if !p.running.CompareAndSwap(false, true) {
		metrics.RecordPrecomputeSweep("manual", "skipped", 0)
		p.logger.Debug().Msg("refresh requested while sweep in progress, skipping")
		return false
	}
	go p.sweepLocked(ctx, "manual")
	return true
}

// Sweep runs a full catalog sweep synchronously. Returns false without
// doing any work when another sweep is already running.
func (p *Precomputer) Sweep(ctx context.Context, trigger string) bool {
	if !p.running.CompareAndSwap(false, true) {
		metrics.RecordPrecomputeSweep(trigger, "skipped", 0)
		p.logger.Debug().Str("trigger", trigger).Msg("sweep already in progress, skipping")
		return false
	}
	p.sweepLocked(ctx, trigger)
	return true
}

// sweepLocked performs the sweep. The caller must have won the running
// flag; sweepLocked releases it.
func (p *Precomputer) sweepLocked(ctx context.Context, trigger string) {
	defer p.running.Store(false)

	start := time.Now()
	items := p.catalog.ListAll()

	p.statusMu.Lock()
	p.status.Running = true
	p.status.LastTrigger = trigger
	p.status.LastStarted = start
	p.status.ItemsWarmed = 0
	p.status.ItemsFailed = 0
	p.statusMu.Unlock()

	p.logger.Info().
		Str("trigger", trigger).
		Int("catalog_size", len(items)).
		Msg("starting embedding sweep")

	warmed, failed := 0, 0
	result := "completed"

	for _, item := range items {
		if ctx.Err() != nil {
			result = "canceled"
			break
		}

		// Only items missing from the cache are generated; a sweep over
		// a warm cache costs no provider calls and never resets the age
		// of a live entry.
		if _, ok := p.cache.Get(item.ID); ok {
			continue
		}

		if err := p.warmItem(ctx, item); err != nil {
			if ctx.Err() != nil {
				result = "canceled"
				break
			}
			failed++
			metrics.PrecomputeItemFailures.Inc()
			p.logger.Warn().
				Err(err).
				Str("content_id", string(item.ID)).
				Msg("skipping item, embedding generation failed")
			continue
		}
		warmed++
	}

	duration := time.Since(start)
	metrics.RecordPrecomputeSweep(trigger, result, duration)

	p.statusMu.Lock()
	p.status.Running = false
	p.status.LastResult = result
	p.status.LastFinished = time.Now()
	p.status.ItemsWarmed = warmed
	p.status.ItemsFailed = failed
	p.statusMu.Unlock()

	p.logger.Info().
		Str("trigger", trigger).
		Str("result", result).
		Int("warmed", warmed).
		Int("failed", failed).
		Dur("duration", duration).
		Msg("embedding sweep finished")
}

// warmItem generates and caches the embedding for one catalog item.
func (p *Precomputer) warmItem(ctx context.Context, item *catalog.ContentDescriptor) error {
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	vector, err := p.provider.GenerateEmbedding(callCtx, DescriptionText(item))
	if err != nil {
		return err
	}

	p.cache.Put(&Embedding{
		ID:        item.ID,
		Kind:      item.Kind,
		Vector:    vector,
		CreatedAt: time.Now(),
	})
	return nil
}

// Status returns a snapshot of the precomputer's state.
func (p *Precomputer) Status() SweepStatus {
	p.statusMu.RLock()
	defer p.statusMu.RUnlock()

	status := p.status
	status.Running = p.running.Load()
	return status
}
