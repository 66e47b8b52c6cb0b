// CraftStream Recommender - Related-Content Recommendations for Maker Media
// Copyright 2026 CraftStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/craftstream/recommender

// Package recommend implements the related-content recommendation engine:
// cosine similarity ranking over cached embeddings, with history and
// popularity tiers behind it. Strategy selection is strict priority:
// content-based when the current item resolves, history-based when the user
// has history, popularity otherwise.
package recommend

import (
	"github.com/craftstream/recommender/internal/catalog"
)

// Strategy identifies which tier produced a recommendation set.
type Strategy string

const (
	// StrategyContentBased ranks by embedding similarity to the current item.
	StrategyContentBased Strategy = "content_based"

	// StrategyHistoryBased ranks by the user's category preferences.
	StrategyHistoryBased Strategy = "history_based"

	// StrategyPopularityFallback ranks by interaction or view counts.
	StrategyPopularityFallback Strategy = "popularity_fallback"
)

// Nominal scores for the non-similarity tiers. The asymmetry with the
// cosine path is deliberate: scores are comparable within one response,
// not across strategies.
const (
	historyNominalScore    = 0.5
	popularityNominalScore = 0.25
)

// Request asks for related content. CurrentID and UserID are optional;
// their presence drives strategy selection. Limit outside [MinLimit,
// MaxLimit] is clamped, zero means the configured default.
type Request struct {
	Kind      catalog.Kind
	CurrentID catalog.ContentID
	UserID    string
	Limit     int

	// Exclude lists additional IDs to keep out of the results.
	// CurrentID is always excluded regardless.
	Exclude []catalog.ContentID
}

// RankedItem is one scored recommendation. Score is in [0, 1].
type RankedItem struct {
	Descriptor *catalog.ContentDescriptor `json:"descriptor"`
	Score      float64                    `json:"score"`
}

// Response is an ordered recommendation set, descending by score with
// catalog declared order breaking ties.
type Response struct {
	RequestID string       `json:"request_id"`
	Strategy  Strategy     `json:"strategy"`
	Items     []RankedItem `json:"items"`

	// Degraded is set when the content-based tier was selected but the
	// provider failed or timed out and the popularity tier answered.
	Degraded bool `json:"degraded,omitempty"`
}
