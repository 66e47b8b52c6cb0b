// CraftStream Recommender - Related-Content Recommendations for Maker Media
// Copyright 2026 CraftStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/craftstream/recommender

// Package embedding turns catalog content into fixed-dimension vectors and
// keeps them warm in a bounded TTL cache. The provider is pluggable; the
// built-in hash provider is deterministic and dependency-free, standing in
// for a real model service behind the same interface.
package embedding

import (
	"context"
	"strings"
	"time"

	"github.com/craftstream/recommender/internal/catalog"
)

// Embedding is a cached content vector. Vector always has exactly the
// provider's dimension. CreatedAt orders capacity evictions.
type Embedding struct {
	ID        catalog.ContentID
	Kind      catalog.Kind
	Vector    []float64
	CreatedAt time.Time
}

// Provider generates embeddings for content text. Implementations must be
// deterministic: the same text always yields the same vector. Providers are
// treated as remote and blocking; callers bound each call with a context
// deadline and must not hold locks across calls.
type Provider interface {
	// GenerateEmbedding returns a vector of exactly Dimension() components.
	GenerateEmbedding(ctx context.Context, text string) ([]float64, error)

	// Dimension returns the fixed vector dimension.
	Dimension() int

	// Name identifies the provider in logs and metrics.
	Name() string
}

// DescriptionText builds the canonical embedding input for a catalog item:
// title, description, and comma-joined tags, in that order, with empty
// segments dropped. Changing this composition invalidates every cached
// vector, so it lives in one place.
func DescriptionText(item *catalog.ContentDescriptor) string {
	segments := make([]string, 0, 3)
	if item.Title != "" {
		segments = append(segments, item.Title)
	}
	if item.Description != "" {
		segments = append(segments, item.Description)
	}
	if len(item.Tags) > 0 {
		segments = append(segments, strings.Join(item.Tags, ", "))
	}
	return strings.Join(segments, " ")
}
