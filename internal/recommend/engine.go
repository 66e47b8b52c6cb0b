// CraftStream Recommender - Related-Content Recommendations for Maker Media
// Copyright 2026 CraftStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/craftstream/recommender

package recommend

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/craftstream/recommender/internal/activity"
	"github.com/craftstream/recommender/internal/catalog"
	"github.com/craftstream/recommender/internal/config"
	"github.com/craftstream/recommender/internal/embedding"
	"github.com/craftstream/recommender/internal/metrics"
)

// Engine answers related-content requests with a strict three-tier
// strategy: content-based similarity when the current item resolves,
// history-based category affinity when the user has history, popularity
// otherwise. Selection happens once per request; tiers never mix.
type Engine struct {
	catalog  catalog.Catalog
	activity activity.UserActivity
	cache    *embedding.Cache
	provider embedding.Provider

	limits          config.LimitsConfig
	providerTimeout time.Duration
	logger          zerolog.Logger

	// sf collapses concurrent on-demand embedding computations for the
	// same content ID into a single provider call.
	sf singleflight.Group
}

// NewEngine wires the engine over its collaborators.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewEngine(
	cat catalog.Catalog,
	act activity.UserActivity,
	cache *embedding.Cache,
	provider embedding.Provider,
	limits config.LimitsConfig,
	providerCfg config.ProviderConfig,
	logger zerolog.Logger,
) *Engine {
	return &Engine{
		catalog:         cat,
		activity:        act,
		cache:           cache,
		provider:        provider,
		limits:          limits,
		providerTimeout: providerCfg.Timeout,
		logger:          logger.With().Str("component", "recommend").Logger(),
	}
}

// Recommend returns up to Limit related items for the request. The result
// is always a valid (possibly empty) ranked list; the only error surfaced
// to callers is a dimension mismatch, which indicates a misconfigured
// provider rather than bad input.
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	limit := e.clampLimit(req.Limit)
	excluded := e.exclusionSet(req)

	resp := &Response{
		RequestID: uuid.NewString(),
	}

	// Tier 1: content-based, when the current item resolves. An unknown
	// CurrentID is strategy input, not a caller error.
	if req.CurrentID != "" {
		if current, ok := e.catalog.GetByID(req.CurrentID); ok {
			items, err := e.contentBased(ctx, current, req.Kind, excluded, limit)
			switch {
			case err == nil:
				resp.Strategy = StrategyContentBased
				resp.Items = items
			case errors.Is(err, ErrDimensionMismatch):
				return nil, err
			default:
				// Provider timeout or failure: degrade to the
				// popularity tier instead of failing the request.
				metrics.RecommendationDegradations.Inc()
				e.logger.Warn().
					Err(err).
					Str("request_id", resp.RequestID).
					Str("current_id", string(req.CurrentID)).
					Msg("content tier unavailable, degrading to popularity")
				resp.Strategy = StrategyPopularityFallback
				resp.Degraded = true
				resp.Items = e.popularity(req.Kind, excluded, limit)
			}
			e.finish(resp, start)
			return resp, nil
		}
	}

	// Tier 2: history-based, when the user has any history.
	if req.UserID != "" {
		if items, ok := e.historyBased(req.UserID, req.Kind, excluded, limit); ok {
			resp.Strategy = StrategyHistoryBased
			resp.Items = items
			e.finish(resp, start)
			return resp, nil
		}
	}

	// Tier 3: popularity fallback.
	resp.Strategy = StrategyPopularityFallback
	resp.Items = e.popularity(req.Kind, excluded, limit)
	e.finish(resp, start)
	return resp, nil
}

func (e *Engine) finish(resp *Response, start time.Time) {
	if resp.Items == nil {
		resp.Items = []RankedItem{}
	}
	metrics.RecordRecommendation(string(resp.Strategy), time.Since(start))
}

// clampLimit applies the configured default and bounds.
func (e *Engine) clampLimit(limit int) int {
	if limit == 0 {
		return e.limits.Default
	}
	if limit < e.limits.Min {
		return e.limits.Min
	}
	if limit > e.limits.Max {
		return e.limits.Max
	}
	return limit
}

// exclusionSet builds the set of IDs kept out of results. The current item
// is always excluded from its own recommendations.
func (e *Engine) exclusionSet(req Request) map[catalog.ContentID]struct{} {
	excluded := make(map[catalog.ContentID]struct{}, len(req.Exclude)+1)
	if req.CurrentID != "" {
		excluded[req.CurrentID] = struct{}{}
	}
	for _, id := range req.Exclude {
		excluded[id] = struct{}{}
	}
	return excluded
}

// candidates returns catalog items of the requested kind in declared
// order, minus exclusions. An empty kind means all kinds.
func (e *Engine) candidates(kind catalog.Kind, excluded map[catalog.ContentID]struct{}) []*catalog.ContentDescriptor {
	var out []*catalog.ContentDescriptor
	for _, item := range e.catalog.ListAll() {
		if kind != "" && item.Kind != kind {
			continue
		}
		if _, skip := excluded[item.ID]; skip {
			continue
		}
		out = append(out, item)
	}
	return out
}

// contentBased scores candidates by cosine similarity to the current item.
// Embeddings are served from the cache and computed on demand on a miss
// (deduplicated via singleflight), so a cold cache still yields full
// results; the precomputer exists to make misses rare, not to gate the
// tier. A provider failure mid-scan fails the tier, which the caller
// degrades to popularity.
func (e *Engine) contentBased(ctx context.Context, current *catalog.ContentDescriptor, kind catalog.Kind, excluded map[catalog.ContentID]struct{}, limit int) ([]RankedItem, error) {
	currentEmb, err := e.embeddingFor(ctx, current)
	if err != nil {
		return nil, err
	}

	var items []RankedItem
	for _, candidate := range e.candidates(kind, excluded) {
		candidateEmb, err := e.embeddingFor(ctx, candidate)
		if err != nil {
			return nil, err
		}

		score, err := CosineSimilarity(currentEmb.Vector, candidateEmb.Vector)
		if err != nil {
			return nil, err
		}

		items = append(items, RankedItem{Descriptor: candidate, Score: score})
	}

	return RankAll(items, limit), nil
}

// embeddingFor returns the embedding for an item, from cache or computed
// through the provider under the configured timeout.
func (e *Engine) embeddingFor(ctx context.Context, item *catalog.ContentDescriptor) (*embedding.Embedding, error) {
	if emb, ok := e.cache.Get(item.ID); ok {
		return emb, nil
	}

	result, err, _ := e.sf.Do(string(item.ID), func() (interface{}, error) {
		// Another goroutine may have populated the cache while this
		// one waited on the singleflight slot.
		if emb, ok := e.cache.Get(item.ID); ok {
			return emb, nil
		}

		callCtx, cancel := context.WithTimeout(ctx, e.providerTimeout)
		defer cancel()

		vector, genErr := e.provider.GenerateEmbedding(callCtx, embedding.DescriptionText(item))
		if genErr != nil {
			return nil, genErr
		}

		emb := &embedding.Embedding{
			ID:        item.ID,
			Kind:      item.Kind,
			Vector:    vector,
			CreatedAt: time.Now(),
		}
		e.cache.Put(emb)
		return emb, nil
	})
	if err != nil {
		return nil, err
	}

	emb, ok := result.(*embedding.Embedding)
	if !ok {
		return nil, errors.New("unexpected singleflight result type")
	}
	return emb, nil
}

// historyBased ranks candidates by the user's category preferences. Each
// category's items score the history nominal scaled by how often the
// category appears in the user's history relative to their top category.
// Items the user already interacted with are never recommended back.
func (e *Engine) historyBased(userID string, kind catalog.Kind, excluded map[catalog.ContentID]struct{}, limit int) ([]RankedItem, bool) {
	history := e.activity.HistoryFor(userID)
	if len(history) == 0 {
		return nil, false
	}

	freq := make(map[string]int)
	firstSeen := make(map[string]int)
	watched := make(map[catalog.ContentID]struct{}, len(history))
	var maxFreq int
	for idx, rec := range history {
		watched[rec.ContentID] = struct{}{}
		item, ok := e.catalog.GetByID(rec.ContentID)
		if !ok {
			continue
		}
		if _, seen := freq[item.Category]; !seen {
			firstSeen[item.Category] = idx
		}
		freq[item.Category]++
		if freq[item.Category] > maxFreq {
			maxFreq = freq[item.Category]
		}
	}
	if maxFreq == 0 {
		// History references only items no longer in the catalog.
		return nil, false
	}

	categories := make([]string, 0, len(freq))
	for cat := range freq {
		categories = append(categories, cat)
	}
	sort.SliceStable(categories, func(i, j int) bool {
		if freq[categories[i]] != freq[categories[j]] {
			return freq[categories[i]] > freq[categories[j]]
		}
		return firstSeen[categories[i]] < firstSeen[categories[j]]
	})

	var items []RankedItem
	for _, cat := range categories {
		score := historyNominalScore * float64(freq[cat]) / float64(maxFreq)
		for _, item := range e.catalog.ListByCategory(cat) {
			if kind != "" && item.Kind != kind {
				continue
			}
			if _, skip := excluded[item.ID]; skip {
				continue
			}
			if _, seen := watched[item.ID]; seen {
				continue
			}
			items = append(items, RankedItem{Descriptor: item, Score: score})
		}
	}

	return RankAll(items, limit), true
}

// popularity ranks by live interaction counts, topping up from the
// catalog's raw view and like counts when fewer trending items exist than
// the limit asks for. Every item gets the same nominal score; ordering
// carries the signal.
func (e *Engine) popularity(kind catalog.Kind, excluded map[catalog.ContentID]struct{}, limit int) []RankedItem {
	var items []RankedItem
	added := make(map[catalog.ContentID]struct{})

	trending := e.activity.TrendingIDs(len(e.catalog.ListAll()))
	for _, id := range trending {
		item, ok := e.catalog.GetByID(id)
		if !ok {
			continue
		}
		if kind != "" && item.Kind != kind {
			continue
		}
		if _, skip := excluded[id]; skip {
			continue
		}
		items = append(items, RankedItem{Descriptor: item, Score: popularityNominalScore})
		added[id] = struct{}{}
		if len(items) == limit {
			return items
		}
	}

	// Trending alone did not fill the limit: top up with the remaining
	// candidates ordered by snapshot view and like counts.
	var rest []*catalog.ContentDescriptor
	for _, item := range e.candidates(kind, excluded) {
		if _, seen := added[item.ID]; seen {
			continue
		}
		rest = append(rest, item)
	}
	sort.SliceStable(rest, func(i, j int) bool {
		return rest[i].ViewCount+rest[i].LikeCount > rest[j].ViewCount+rest[j].LikeCount
	})
	for _, item := range rest {
		items = append(items, RankedItem{Descriptor: item, Score: popularityNominalScore})
		if len(items) == limit {
			break
		}
	}
	return items
}
