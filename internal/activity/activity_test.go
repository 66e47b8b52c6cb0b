// CraftStream Recommender - Related-Content Recommendations for Maker Media
// Copyright 2026 CraftStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/craftstream/recommender

package activity

import (
	"fmt"
	"testing"

	"github.com/craftstream/recommender/internal/catalog"
)

func TestMemoryStoreHistoryOrder(t *testing.T) {
	s := NewMemoryStore()

	s.RecordWatch("alice", "video:v-1", true)
	s.RecordWatch("alice", "video:v-2", false)
	s.RecordLike("alice", "diy:d-1")

	history := s.HistoryFor("alice")
	expected := []catalog.ContentID{"diy:d-1", "video:v-2", "video:v-1"}
	if len(history) != len(expected) {
		t.Fatalf("Expected %d history entries, got %d", len(expected), len(history))
	}
	for i, id := range expected {
		if history[i].ContentID != id {
			t.Errorf("Position %d: expected %s, got %s", i, id, history[i].ContentID)
		}
		if history[i].Timestamp.IsZero() {
			t.Errorf("Position %d: expected a timestamp", i)
		}
	}
}

// History records carry the completed flag, and a later partial rewatch or
// like never clears a completed watch.
func TestMemoryStoreHistoryCompletedFlag(t *testing.T) {
	s := NewMemoryStore()

	s.RecordWatch("alice", "video:v-1", false)
	if history := s.HistoryFor("alice"); history[0].Completed {
		t.Error("Expected partial watch to be recorded as incomplete")
	}

	s.RecordWatch("alice", "video:v-1", true)
	if history := s.HistoryFor("alice"); !history[0].Completed {
		t.Error("Expected completed watch to set the flag")
	}

	s.RecordWatch("alice", "video:v-1", false)
	s.RecordLike("alice", "video:v-1")
	if history := s.HistoryFor("alice"); !history[0].Completed {
		t.Error("Expected completed flag to survive later interactions")
	}
}

// Re-interacting with an item moves it to the front instead of duplicating it.
func TestMemoryStoreHistoryDedup(t *testing.T) {
	s := NewMemoryStore()

	s.RecordWatch("alice", "video:v-1", true)
	s.RecordWatch("alice", "video:v-2", true)
	s.RecordWatch("alice", "video:v-1", true)

	history := s.HistoryFor("alice")
	if len(history) != 2 {
		t.Fatalf("Expected 2 unique history entries, got %d", len(history))
	}
	if history[0].ContentID != "video:v-1" {
		t.Errorf("Expected rewatched item at front, got %s", history[0].ContentID)
	}
	if history[1].ContentID != "video:v-2" {
		t.Errorf("Expected video:v-2 second, got %s", history[1].ContentID)
	}
}

func TestMemoryStoreUnknownUser(t *testing.T) {
	s := NewMemoryStore()

	if history := s.HistoryFor("nobody"); len(history) != 0 {
		t.Errorf("Expected empty history for unknown user, got %d entries", len(history))
	}
}

// Anonymous interactions count toward trending but produce no history.
func TestMemoryStoreAnonymousInteraction(t *testing.T) {
	s := NewMemoryStore()

	s.RecordWatch("", "video:v-1", true)

	if s.InteractionCount("video:v-1") != 1 {
		t.Error("Expected anonymous watch to count toward trending")
	}
	if len(s.HistoryFor("")) != 0 {
		t.Error("Expected no history for empty user ID")
	}
}

func TestMemoryStoreTrendingOrder(t *testing.T) {
	s := NewMemoryStore()

	// v-2 gets 3 interactions, d-1 gets 2, v-1 gets 1.
	s.RecordWatch("alice", "video:v-2", true)
	s.RecordWatch("bob", "video:v-2", true)
	s.RecordLike("carol", "video:v-2")
	s.RecordWatch("alice", "diy:d-1", true)
	s.RecordLike("bob", "diy:d-1")
	s.RecordWatch("carol", "video:v-1", false)

	trending := s.TrendingIDs(10)
	expected := []catalog.ContentID{"video:v-2", "diy:d-1", "video:v-1"}
	if len(trending) != len(expected) {
		t.Fatalf("Expected %d trending items, got %d", len(expected), len(trending))
	}
	for i, id := range expected {
		if trending[i] != id {
			t.Errorf("Position %d: expected %s, got %s", i, id, trending[i])
		}
	}
}

// Equal counts are ordered by earliest first interaction, so trending is
// stable across calls.
func TestMemoryStoreTrendingTieBreak(t *testing.T) {
	s := NewMemoryStore()

	s.RecordWatch("alice", "video:v-1", true)
	s.RecordWatch("bob", "video:v-2", true)
	s.RecordWatch("carol", "video:v-3", true)

	for i := 0; i < 5; i++ {
		trending := s.TrendingIDs(10)
		if trending[0] != "video:v-1" || trending[1] != "video:v-2" || trending[2] != "video:v-3" {
			t.Fatalf("Iteration %d: expected stable first-seen order, got %v", i, trending)
		}
	}
}

func TestMemoryStoreTrendingLimit(t *testing.T) {
	s := NewMemoryStore()

	for i := 0; i < 5; i++ {
		s.RecordWatch("alice", catalog.ContentID(fmt.Sprintf("video:v-%d", i)), true)
	}

	if got := s.TrendingIDs(3); len(got) != 3 {
		t.Errorf("Expected 3 trending items, got %d", len(got))
	}
	if got := s.TrendingIDs(0); got != nil {
		t.Errorf("Expected nil for non-positive limit, got %v", got)
	}
}

func TestMemoryStoreTrendingEmpty(t *testing.T) {
	s := NewMemoryStore()

	if got := s.TrendingIDs(10); len(got) != 0 {
		t.Errorf("Expected empty trending with no interactions, got %d", len(got))
	}
}

func TestMemoryStoreConcurrency(t *testing.T) {
	s := NewMemoryStore()

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(id int) {
			user := fmt.Sprintf("user-%d", id%3)
			for j := 0; j < 100; j++ {
				contentID := catalog.ContentID(fmt.Sprintf("video:v-%d", j%10))
				s.RecordWatch(user, contentID, true)
				s.HistoryFor(user)
				s.TrendingIDs(5)
			}
			done <- true
		}(i)
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	if len(s.TrendingIDs(20)) != 10 {
		t.Errorf("Expected 10 distinct trending items, got %d", len(s.TrendingIDs(20)))
	}
}
