// CraftStream Recommender - Related-Content Recommendations for Maker Media
// Copyright 2026 CraftStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/craftstream/recommender

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/craftstream/recommender/internal/catalog"
	"github.com/craftstream/recommender/internal/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// CatalogList handles GET /api/v1/catalog/{kind} with offset pagination.
// Items come back in the catalog's declared order.
func (h *Handler) CatalogList(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	kind, err := catalog.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	limit, err := getIntParam(r, "limit", defaultPageSize)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	offset, err := getIntParam(r, "offset", 0)
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
	if offset < 0 {
		offset = 0
	}

	var all []*catalog.ContentDescriptor
	for _, item := range h.catalog.ListAll() {
		if item.Kind == kind {
			all = append(all, item)
		}
	}

	total := len(all)
	page := []*catalog.ContentDescriptor{}
	if offset < total {
		end := offset + limit
		if end > total {
			end = total
		}
		page = all[offset:end]
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"items": page,
		"pagination": models.PaginationInfo{
			Limit:      limit,
			Offset:     offset,
			HasMore:    offset+len(page) < total,
			TotalCount: total,
		},
	}, start)
}

// CatalogGet handles GET /api/v1/catalog/{kind}/{id}.
func (h *Handler) CatalogGet(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	kind, err := catalog.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	id := catalog.MakeID(kind, chi.URLParam(r, "id"))
	item, ok := h.catalog.GetByID(id)
	if !ok {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "content not found", nil)
		return
	}

	respondSuccess(w, http.StatusOK, item, start)
}
