// CraftStream Recommender - Related-Content Recommendations for Maker Media
// Copyright 2026 CraftStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/craftstream/recommender

// Package activity tracks user interactions (watches and likes) and exposes
// the two views the recommendation engine consumes: per-user history and
// catalog-wide trending.
package activity

import (
	"sort"
	"sync"
	"time"

	"github.com/craftstream/recommender/internal/catalog"
)

// WatchRecord is one entry in a user's history. Timestamp is the most
// recent interaction with the item; Completed stays true once any watch
// of the item completed.
type WatchRecord struct {
	ContentID catalog.ContentID `json:"content_id"`
	Timestamp time.Time         `json:"timestamp"`
	Completed bool              `json:"completed"`
}

// UserActivity is the read interface the recommendation engine depends on.
type UserActivity interface {
	// HistoryFor returns the items a user has interacted with, most
	// recent first. Unknown users get an empty history.
	HistoryFor(userID string) []WatchRecord

	// TrendingIDs returns up to limit content IDs ordered by total
	// interaction count descending. Empty when no interactions exist.
	TrendingIDs(limit int) []catalog.ContentID
}

// Recorder is the write side used by the HTTP activity endpoints.
type Recorder interface {
	RecordWatch(userID string, id catalog.ContentID, completed bool)
	RecordLike(userID string, id catalog.ContentID)
}

// MemoryStore is an in-memory activity store. Interaction counts never
// decay; trending reflects all-time totals.
type MemoryStore struct {
	mu sync.RWMutex

	// history holds per-user watch records, most recent first,
	// deduplicated so a rewatch moves the item to the front.
	history map[string][]WatchRecord

	// counts holds total interactions per content item.
	counts map[catalog.ContentID]int64

	// firstSeen breaks trending ties: lower means interacted with
	// earlier, keeping the ordering stable across calls.
	firstSeen map[catalog.ContentID]int64
	seenSeq   int64
}

// NewMemoryStore creates an empty in-memory activity store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		history:   make(map[string][]WatchRecord),
		counts:    make(map[catalog.ContentID]int64),
		firstSeen: make(map[catalog.ContentID]int64),
	}
}

// RecordWatch records a watch event. Completed watches count the same as
// partial ones for trending; the flag is carried in the history record.
func (s *MemoryStore) RecordWatch(userID string, id catalog.ContentID, completed bool) {
	s.record(userID, id, completed)
}

// RecordLike records a like event.
func (s *MemoryStore) RecordLike(userID string, id catalog.ContentID) {
	s.record(userID, id, false)
}

func (s *MemoryStore) record(userID string, id catalog.ContentID, completed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, seen := s.firstSeen[id]; !seen {
		s.firstSeen[id] = s.seenSeq
		s.seenSeq++
	}
	s.counts[id]++

	if userID == "" {
		return
	}

	// Move the item to the front of the user's history. A later partial
	// rewatch or like never clears an earlier completed watch.
	existing := s.history[userID]
	updated := make([]WatchRecord, 0, len(existing)+1)
	updated = append(updated, WatchRecord{ContentID: id, Timestamp: time.Now(), Completed: completed})
	for _, prev := range existing {
		if prev.ContentID != id {
			updated = append(updated, prev)
		} else if prev.Completed {
			updated[0].Completed = true
		}
	}
	s.history[userID] = updated
}

// HistoryFor returns a copy of the user's interaction history, most recent
// first.
func (s *MemoryStore) HistoryFor(userID string) []WatchRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	existing := s.history[userID]
	if len(existing) == 0 {
		return nil
	}
	out := make([]WatchRecord, len(existing))
	copy(out, existing)
	return out
}

// TrendingIDs returns up to limit content IDs by interaction count
// descending, ties broken by earliest first interaction.
func (s *MemoryStore) TrendingIDs(limit int) []catalog.ContentID {
	if limit < 1 {
		return nil
	}

	s.mu.RLock()
	ids := make([]catalog.ContentID, 0, len(s.counts))
	for id := range s.counts {
		ids = append(ids, id)
	}
	counts := make(map[catalog.ContentID]int64, len(s.counts))
	for id, n := range s.counts {
		counts[id] = n
	}
	firstSeen := make(map[catalog.ContentID]int64, len(s.firstSeen))
	for id, seq := range s.firstSeen {
		firstSeen[id] = seq
	}
	s.mu.RUnlock()

	sort.SliceStable(ids, func(i, j int) bool {
		if counts[ids[i]] != counts[ids[j]] {
			return counts[ids[i]] > counts[ids[j]]
		}
		return firstSeen[ids[i]] < firstSeen[ids[j]]
	})

	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids
}

// InteractionCount returns the total interactions recorded for an item.
func (s *MemoryStore) InteractionCount(id catalog.ContentID) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counts[id]
}
