// CraftStream Recommender - Related-Content Recommendations for Maker Media
// Copyright 2026 CraftStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/craftstream/recommender

package api

import (
	"net/http"
	"time"

	"github.com/craftstream/recommender/internal/catalog"
	"github.com/craftstream/recommender/internal/models"
)

// ActivityWatch handles POST /api/v1/activity/watch.
func (h *Handler) ActivityWatch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.WatchRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	id, ok := h.resolveContentID(w, req.ContentID)
	if !ok {
		return
	}

	h.activity.RecordWatch(req.UserID, id, req.Completed)
	respondSuccess(w, http.StatusAccepted, map[string]interface{}{
		"recorded": true,
	}, start)
}

// ActivityLike handles POST /api/v1/activity/like.
func (h *Handler) ActivityLike(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.LikeRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	id, ok := h.resolveContentID(w, req.ContentID)
	if !ok {
		return
	}

	h.activity.RecordLike(req.UserID, id)
	respondSuccess(w, http.StatusAccepted, map[string]interface{}{
		"recorded": true,
	}, start)
}

// resolveContentID validates a prefixed content ID against the catalog,
// writing the error response itself on failure.
func (h *Handler) resolveContentID(w http.ResponseWriter, raw string) (catalog.ContentID, bool) {
	id := catalog.ContentID(raw)
	if _, err := id.Kind(); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return "", false
	}
	if _, ok := h.catalog.GetByID(id); !ok {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "content not found", nil)
		return "", false
	}
	return id, true
}

// ActivityTrending handles GET /api/v1/activity/trending.
func (h *Handler) ActivityTrending(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	limit, err := getIntParam(r, "limit", defaultPageSize)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	if limit < 1 {
		limit = 1
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	items := []*catalog.ContentDescriptor{}
	for _, id := range h.activity.TrendingIDs(limit) {
		if item, ok := h.catalog.GetByID(id); ok {
			items = append(items, item)
		}
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"items": items,
	}, start)
}
