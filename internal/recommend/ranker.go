// CraftStream Recommender - Related-Content Recommendations for Maker Media
// Copyright 2026 CraftStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/craftstream/recommender

package recommend

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrDimensionMismatch reports vectors of different dimensions in one
// comparison. This is a deployment bug (mixed provider output), so it
// surfaces loudly instead of being scored around.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// CosineSimilarity computes the cosine similarity of two vectors, clamped
// to [0, 1]. A zero-norm vector scores 0 against everything; NaN never
// escapes. Vectors of different dimensions return ErrDimensionMismatch.
func CosineSimilarity(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	score := dot / (math.Sqrt(normA) * math.Sqrt(normB))

	// Negative similarity carries no ranking value for related-content
	// results; clamp into the documented [0, 1] score range.
	if score < 0 {
		return 0, nil
	}
	if score > 1 {
		return 1, nil
	}
	return score, nil
}

// RankAll sorts items by score descending and truncates to limit. The sort
// is stable: items entering with equal scores keep their input order, which
// callers arrange to be the catalog's declared order.
func RankAll(items []RankedItem, limit int) []RankedItem {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
