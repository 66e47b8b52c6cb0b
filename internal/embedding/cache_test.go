// CraftStream Recommender - Related-Content Recommendations for Maker Media
// Copyright 2026 CraftStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/craftstream/recommender

package embedding

import (
	"testing"
	"time"

	"github.com/craftstream/recommender/internal/catalog"
	"github.com/craftstream/recommender/internal/config"
)

func testCache(t *testing.T, ttl time.Duration, maxEntries int) *Cache {
	t.Helper()
	c := NewCache(config.CacheConfig{TTL: ttl, MaxEntries: maxEntries})
	t.Cleanup(c.Close)
	return c
}

func testEmbedding(id string) *Embedding {
	return &Embedding{
		ID:        catalog.ContentID(id),
		Kind:      catalog.KindVideo,
		Vector:    []float64{0.6, 0.8},
		CreatedAt: time.Now(),
	}
}

func TestEmbeddingCachePutGet(t *testing.T) {
	c := testCache(t, time.Minute, 100)

	emb := testEmbedding("video:v-1")
	c.Put(emb)

	got, ok := c.Get("video:v-1")
	if !ok {
		t.Fatal("Expected cached embedding")
	}
	if got.ID != emb.ID {
		t.Errorf("Expected ID %s, got %s", emb.ID, got.ID)
	}
	if len(got.Vector) != 2 {
		t.Errorf("Expected 2 components, got %d", len(got.Vector))
	}

	if _, ok := c.Get("video:v-missing"); ok {
		t.Error("Expected miss for absent ID")
	}
}

func TestEmbeddingCacheExpiry(t *testing.T) {
	c := testCache(t, 50*time.Millisecond, 100)

	c.Put(testEmbedding("video:v-1"))
	time.Sleep(100 * time.Millisecond)

	if _, ok := c.Get("video:v-1"); ok {
		t.Error("Expected embedding to expire")
	}
}

func TestEmbeddingCacheCapacity(t *testing.T) {
	c := testCache(t, time.Minute, 2)

	c.Put(testEmbedding("video:v-1"))
	time.Sleep(2 * time.Millisecond)
	c.Put(testEmbedding("video:v-2"))
	time.Sleep(2 * time.Millisecond)
	c.Put(testEmbedding("video:v-3"))

	if c.Size() != 2 {
		t.Errorf("Expected size 2, got %d", c.Size())
	}
	if _, ok := c.Get("video:v-1"); ok {
		t.Error("Expected oldest embedding to be evicted")
	}
	if _, ok := c.Get("video:v-3"); !ok {
		t.Error("Expected newest embedding to be cached")
	}
}

func TestEmbeddingCacheClear(t *testing.T) {
	c := testCache(t, time.Minute, 100)

	c.Put(testEmbedding("video:v-1"))
	c.Put(testEmbedding("diy:d-1"))
	c.Clear()

	if c.Size() != 0 {
		t.Errorf("Expected empty cache after clear, got %d", c.Size())
	}
}

func TestEmbeddingCacheStats(t *testing.T) {
	c := testCache(t, time.Minute, 100)

	c.Put(testEmbedding("video:v-1"))
	c.Get("video:v-1")
	c.Get("video:v-2")

	stats := c.Stats()
	if stats.Hits != 1 {
		t.Errorf("Expected 1 hit, got %d", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("Expected 1 miss, got %d", stats.Misses)
	}
}
