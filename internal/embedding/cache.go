// CraftStream Recommender - Related-Content Recommendations for Maker Media
// Copyright 2026 CraftStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/craftstream/recommender

package embedding

import (
	"sync"

	"github.com/craftstream/recommender/internal/cache"
	"github.com/craftstream/recommender/internal/catalog"
	"github.com/craftstream/recommender/internal/config"
	"github.com/craftstream/recommender/internal/metrics"
)

// Cache is the typed embedding cache: a bounded TTL store keyed by content
// ID. It wraps the generic cache and bridges its counters into Prometheus.
// All operations are concurrency-safe and never fail.
type Cache struct {
	store *cache.Cache

	// metricsMu guards the published-stats watermark used to turn the
	// store's monotonic counters into Prometheus counter increments.
	metricsMu sync.Mutex
	published cache.StatsSnapshot
}

// NewCache creates an embedding cache with the configured TTL and capacity.
// Call Close to stop its background sweep.
func NewCache(cfg config.CacheConfig) *Cache {
	return &Cache{
		store: cache.New(cfg.TTL, cfg.MaxEntries),
	}
}

// Get returns the cached embedding for an ID, treating expired entries as
// absent.
func (c *Cache) Get(id catalog.ContentID) (*Embedding, bool) {
	data, ok := c.store.Get(string(id))
	c.publishMetrics()
	if !ok {
		return nil, false
	}

	emb, ok := data.(*Embedding)
	return emb, ok
}

// Put stores an embedding, evicting the oldest entry if at capacity.
func (c *Cache) Put(emb *Embedding) {
	c.store.Put(string(emb.ID), emb)
	c.publishMetrics()
}

// Size returns the current number of cached embeddings.
func (c *Cache) Size() int {
	return c.store.Size()
}

// Clear removes all cached embeddings.
func (c *Cache) Clear() {
	c.store.Clear()
	c.publishMetrics()
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() cache.StatsSnapshot {
	return c.store.GetStats()
}

// Close stops the cache's background sweep goroutine.
func (c *Cache) Close() {
	c.store.Close()
}

// publishMetrics pushes counter deltas since the last publish into
// Prometheus along with the current size.
func (c *Cache) publishMetrics() {
	current := c.store.GetStats()

	c.metricsMu.Lock()
	prev := c.published
	c.published = current
	c.metricsMu.Unlock()

	metrics.UpdateCacheGauges(
		current.Hits-prev.Hits,
		current.Misses-prev.Misses,
		current.Evictions-prev.Evictions,
		current.Expirations-prev.Expirations,
		c.store.Size(),
	)
}
