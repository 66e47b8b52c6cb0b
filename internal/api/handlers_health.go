// CraftStream Recommender - Related-Content Recommendations for Maker Media
// Copyright 2026 CraftStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/craftstream/recommender

package api

import (
	"net/http"
	"time"
)

// Health handles GET /api/v1/health with a component summary.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	start := time.Now()

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"status":        "healthy",
		"catalog_items": len(h.catalog.ListAll()),
		"cache_entries": h.cache.Size(),
		"precompute":    h.precomputer.Status(),
	}, start)
}

// HealthLive handles GET /api/v1/health/live. Always 200 while the process
// serves requests.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"status": "alive",
	}, time.Now())
}

// HealthReady handles GET /api/v1/health/ready. Readiness does not wait for
// the embedding warm: the engine degrades gracefully on a cold cache.
func (h *Handler) HealthReady(w http.ResponseWriter, _ *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"status": "ready",
	}, time.Now())
}
