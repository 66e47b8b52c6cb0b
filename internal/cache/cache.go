// CraftStream Recommender - Related-Content Recommendations for Maker Media
// Copyright 2026 CraftStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/craftstream/recommender

// Package cache provides a thread-safe, bounded, in-memory store with TTL
// expiration. It is the mechanism under the embedding cache: entries expire
// lazily on read and eagerly via a background sweep, and when the store is
// full the entry with the oldest creation time is evicted to make room.
//
// Eviction is FIFO by creation time, not LRU: reading an entry never
// extends its life, so a full sweep of the catalog refreshes everything on
// a predictable cadence regardless of access patterns.
package cache

import (
	"sync"
	"time"
)

// Entry represents a cached item with its creation and expiration times.
type Entry struct {
	Data      interface{}
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Cache provides a bounded thread-safe in-memory cache with TTL support.
//
// Invariants:
//   - Size never exceeds maxSize, including under concurrent inserts.
//   - Get never returns an expired entry; expired entries are removed on touch.
//   - Put on a full cache evicts exactly one entry, the oldest by CreatedAt.
//
// Operations never fail; the zero result of Get (nil, false) covers both
// missing and expired keys.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
	ttl     time.Duration
	maxSize int
	stats   Stats
	stopCh  chan struct{}
	stopOne sync.Once
}

// Stats tracks cache performance counters.
type Stats struct {
	mu          sync.RWMutex
	Hits        int64
	Misses      int64
	Evictions   int64
	Expirations int64
	TotalKeys   int64
	LastSweep   time.Time
}

// StatsSnapshot is a copy of the counters, safe to read without locks.
type StatsSnapshot struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	Expirations int64
	TotalKeys   int64
	LastSweep   time.Time
}

// New creates a bounded cache with the given TTL and capacity, and starts a
// background sweep goroutine that removes expired entries once per TTL.
// Call Close to stop the sweep goroutine.
//
// Example:
//
//	c := cache.New(15*time.Minute, 10000)
//	defer c.Close()
//	c.Put("video:v-1", embedding)
//	if data, ok := c.Get("video:v-1"); ok {
//	    // use cached data
//	}
func New(ttl time.Duration, maxSize int) *Cache {
	c := &Cache{
		entries: make(map[string]Entry),
		ttl:     ttl,
		maxSize: maxSize,
		stats: Stats{
			LastSweep: time.Now(),
		},
		stopCh: make(chan struct{}),
	}

	go c.sweepLoop()

	return c
}

// Get retrieves a value by key, treating expired entries as absent.
//
// Behavior:
//   - Returns (nil, false) if the key doesn't exist.
//   - Returns (nil, false) if the entry has expired; the entry is deleted.
//   - Returns (data, true) if the entry is valid.
//
// An expired-entry removal counts as an expiration, not an eviction;
// evictions are capacity-driven only.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		c.recordMiss()
		return nil, false
	}

	if time.Now().After(entry.ExpiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; another goroutine may have
		// replaced the entry since the read lock was released.
		if current, ok := c.entries[key]; ok && current.ExpiresAt.Equal(entry.ExpiresAt) {
			delete(c.entries, key)
			c.syncTotalKeysLocked()
		}
		c.mu.Unlock()
		c.recordMiss()
		c.recordExpiration()
		return nil, false
	}

	c.recordHit()
	return entry.Data, true
}

// Put stores a value with the cache's TTL. If the key is new and the cache
// is at capacity, the entry with the oldest CreatedAt is evicted first.
// Storing an existing key overwrites it in place with a fresh CreatedAt and
// never triggers eviction.
func (c *Cache) Put(key string, value interface{}) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictOldestLocked()
	}

	c.entries[key] = Entry{
		Data:      value,
		CreatedAt: now,
		ExpiresAt: now.Add(c.ttl),
	}
	c.syncTotalKeysLocked()
}

// evictOldestLocked removes the entry with the oldest CreatedAt.
// Must be called with the write lock held.
func (c *Cache) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	first := true

	for key, entry := range c.entries {
		if first || entry.CreatedAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = entry.CreatedAt
			first = false
		}
	}

	if !first {
		delete(c.entries, oldestKey)
		c.recordEviction()
	}
}

// Delete removes a specific entry by key. No-op for absent keys.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	_, existed := c.entries[key]
	delete(c.entries, key)
	c.syncTotalKeysLocked()
	c.mu.Unlock()

	if existed {
		c.recordEviction()
	}
}

// Clear removes all entries in a single operation.
func (c *Cache) Clear() {
	c.mu.Lock()
	evicted := int64(len(c.entries))
	c.entries = make(map[string]Entry)
	c.mu.Unlock()

	c.stats.mu.Lock()
	c.stats.Evictions += evicted
	c.stats.TotalKeys = 0
	c.stats.mu.Unlock()
}

// Size returns the current number of entries, expired-but-unswept included.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// GetStats returns a snapshot of the performance counters.
func (c *Cache) GetStats() StatsSnapshot {
	c.stats.mu.RLock()
	defer c.stats.mu.RUnlock()

	return StatsSnapshot{
		Hits:        c.stats.Hits,
		Misses:      c.stats.Misses,
		Evictions:   c.stats.Evictions,
		Expirations: c.stats.Expirations,
		TotalKeys:   c.stats.TotalKeys,
		LastSweep:   c.stats.LastSweep,
	}
}

// Close stops the background sweep goroutine. Safe to call more than once.
func (c *Cache) Close() {
	c.stopOne.Do(func() {
		close(c.stopCh)
	})
}

// sweepLoop removes expired entries once per TTL until Close is called.
func (c *Cache) sweepLoop() {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stopCh:
			return
		}
	}
}

// sweep removes all expired entries.
func (c *Cache) sweep() {
	now := time.Now()
	var expired int64

	c.mu.Lock()
	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
			expired++
		}
	}
	c.syncTotalKeysLocked()
	c.mu.Unlock()

	c.stats.mu.Lock()
	c.stats.Expirations += expired
	c.stats.LastSweep = now
	c.stats.mu.Unlock()
}

// syncTotalKeysLocked updates the TotalKeys counter.
// Must be called with the cache write lock held.
func (c *Cache) syncTotalKeysLocked() {
	c.stats.mu.Lock()
	c.stats.TotalKeys = int64(len(c.entries))
	c.stats.mu.Unlock()
}

func (c *Cache) recordHit() {
	c.stats.mu.Lock()
	c.stats.Hits++
	c.stats.mu.Unlock()
}

func (c *Cache) recordMiss() {
	c.stats.mu.Lock()
	c.stats.Misses++
	c.stats.mu.Unlock()
}

func (c *Cache) recordEviction() {
	c.stats.mu.Lock()
	c.stats.Evictions++
	c.stats.mu.Unlock()
}

func (c *Cache) recordExpiration() {
	c.stats.mu.Lock()
	c.stats.Expirations++
	c.stats.mu.Unlock()
}
