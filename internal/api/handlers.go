// CraftStream Recommender - Related-Content Recommendations for Maker Media
// Copyright 2026 CraftStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/craftstream/recommender

package api

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/craftstream/recommender/internal/activity"
	"github.com/craftstream/recommender/internal/catalog"
	"github.com/craftstream/recommender/internal/embedding"
	"github.com/craftstream/recommender/internal/recommend"
)

// ActivityStore is the combined read/write activity interface the handlers
// need.
type ActivityStore interface {
	activity.UserActivity
	activity.Recorder
}

// Handler holds the HTTP handlers and their collaborators.
type Handler struct {
	engine      *recommend.Engine
	catalog     catalog.Catalog
	activity    ActivityStore
	cache       *embedding.Cache
	precomputer *embedding.Precomputer
	logger      zerolog.Logger

	// baseCtx scopes background work started from requests (manual
	// refresh sweeps) to the process lifetime, not the request.
	baseCtx context.Context
}

// NewHandler creates the handler set.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewHandler(
	baseCtx context.Context,
	engine *recommend.Engine,
	cat catalog.Catalog,
	act ActivityStore,
	cache *embedding.Cache,
	precomputer *embedding.Precomputer,
	logger zerolog.Logger,
) *Handler {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	return &Handler{
		engine:      engine,
		catalog:     cat,
		activity:    act,
		cache:       cache,
		precomputer: precomputer,
		logger:      logger.With().Str("component", "api").Logger(),
		baseCtx:     baseCtx,
	}
}
