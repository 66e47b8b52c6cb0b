// CraftStream Recommender - Related-Content Recommendations for Maker Media
// Copyright 2026 CraftStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/craftstream/recommender

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/craftstream/recommender/internal/catalog"
	"github.com/craftstream/recommender/internal/recommend"
)

// Recommendations handles GET /api/v1/recommendations.
//
// Query parameters:
//   - kind: "video" or "diy" (required)
//   - current_id: item the user is viewing (optional)
//   - user_id: requesting user (optional)
//   - limit: result count, clamped server-side (optional)
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	kind, err := catalog.ParseKind(r.URL.Query().Get("kind"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	limit, err := getIntParam(r, "limit", 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	req := recommend.Request{
		Kind:      kind,
		CurrentID: catalog.ContentID(r.URL.Query().Get("current_id")),
		UserID:    r.URL.Query().Get("user_id"),
		Limit:     limit,
	}

	h.serveRecommendation(w, r, req, start)
}

// CatalogRelated handles GET /api/v1/catalog/{kind}/{id}/related, the path
// form of the recommendation endpoint.
func (h *Handler) CatalogRelated(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	kind, err := catalog.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	limit, err := getIntParam(r, "limit", 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	id := catalog.MakeID(kind, chi.URLParam(r, "id"))
	if _, ok := h.catalog.GetByID(id); !ok {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "content not found", nil)
		return
	}

	req := recommend.Request{
		Kind:      kind,
		CurrentID: id,
		UserID:    r.URL.Query().Get("user_id"),
		Limit:     limit,
	}

	h.serveRecommendation(w, r, req, start)
}

// serveRecommendation runs the engine and writes the envelope. A dimension
// mismatch is the one engine error that surfaces; it indicates mixed
// provider output, not bad input.
func (h *Handler) serveRecommendation(w http.ResponseWriter, r *http.Request, req recommend.Request, start time.Time) {
	resp, err := h.engine.Recommend(r.Context(), req)
	if err != nil {
		if errors.Is(err, recommend.ErrDimensionMismatch) {
			respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "embedding dimension mismatch", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "recommendation failed", err)
		return
	}

	respondSuccess(w, http.StatusOK, resp, start)
}

// RecommendationsRefresh handles POST /api/v1/recommendations/refresh.
// Triggers an asynchronous embedding sweep; 202 either way, with the body
// reporting whether a new sweep actually started.
func (h *Handler) RecommendationsRefresh(w http.ResponseWriter, _ *http.Request) {
	start := time.Now()

	started := h.precomputer.Refresh(h.baseCtx)

	h.logger.Info().Bool("started", started).Msg("manual embedding refresh requested")
	respondSuccess(w, http.StatusAccepted, map[string]interface{}{
		"refresh_started": started,
	}, start)
}

// RecommendationsStatus handles GET /api/v1/recommendations/status.
func (h *Handler) RecommendationsStatus(w http.ResponseWriter, _ *http.Request) {
	start := time.Now()

	stats := h.cache.Stats()
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"cache": map[string]interface{}{
			"entries":     stats.TotalKeys,
			"hits":        stats.Hits,
			"misses":      stats.Misses,
			"evictions":   stats.Evictions,
			"expirations": stats.Expirations,
			"last_sweep":  stats.LastSweep,
		},
		"precompute": h.precomputer.Status(),
	}, start)
}
