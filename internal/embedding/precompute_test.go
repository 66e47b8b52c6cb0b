// CraftStream Recommender - Related-Content Recommendations for Maker Media
// Copyright 2026 CraftStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/craftstream/recommender

package embedding

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/craftstream/recommender/internal/catalog"
	"github.com/craftstream/recommender/internal/config"
)

// mockProvider is a controllable Provider for sweep tests. Texts containing
// failOn produce errors; a non-nil block channel stalls every call until
// closed.
type mockProvider struct {
	dimension int
	failOn    string
	block     chan struct{}

	mu    sync.Mutex
	calls int
}

func (m *mockProvider) GenerateEmbedding(ctx context.Context, text string) ([]float64, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if m.failOn != "" && strings.Contains(text, m.failOn) {
		return nil, errors.New("provider unavailable")
	}

	vector := make([]float64, m.dimension)
	for i := range vector {
		vector[i] = 1.0
	}
	return vector, nil
}

func (m *mockProvider) Dimension() int { return m.dimension }
func (m *mockProvider) Name() string   { return "mock" }

func (m *mockProvider) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func testCatalog(t *testing.T) *catalog.MemoryCatalog {
	t.Helper()
	cat := catalog.NewMemoryCatalog()
	items := []*catalog.ContentDescriptor{
		{ID: "video:v-1", Kind: catalog.KindVideo, Category: "woodworking", Title: "Dovetail Joints"},
		{ID: "video:v-2", Kind: catalog.KindVideo, Category: "electronics", Title: "Soldering Basics"},
		{ID: "diy:d-1", Kind: catalog.KindDIY, Category: "woodworking", Title: "Workbench Build"},
	}
	for _, item := range items {
		if err := cat.Add(item); err != nil {
			t.Fatalf("catalog Add failed: %v", err)
		}
	}
	return cat
}

func testPrecomputer(t *testing.T, cat catalog.Catalog, provider Provider) (*Precomputer, *Cache) {
	t.Helper()
	c := NewCache(config.CacheConfig{TTL: time.Minute, MaxEntries: 100})
	t.Cleanup(c.Close)
	p := NewPrecomputer(cat, c, provider, config.ProviderConfig{Timeout: time.Second}, zerolog.Nop())
	return p, c
}

func TestPrecomputerSweepWarmsAllItems(t *testing.T) {
	cat := testCatalog(t)
	provider := &mockProvider{dimension: 4}
	p, c := testPrecomputer(t, cat, provider)

	if !p.Sweep(context.Background(), "startup") {
		t.Fatal("Expected sweep to run")
	}

	if c.Size() != cat.Len() {
		t.Errorf("Expected %d cached embeddings, got %d", cat.Len(), c.Size())
	}
	for _, item := range cat.ListAll() {
		if _, ok := c.Get(item.ID); !ok {
			t.Errorf("Expected embedding for %s to be cached", item.ID)
		}
	}

	status := p.Status()
	if status.Running {
		t.Error("Expected sweep to be finished")
	}
	if status.LastResult != "completed" {
		t.Errorf("Expected completed result, got %s", status.LastResult)
	}
	if status.ItemsWarmed != cat.Len() {
		t.Errorf("Expected %d warmed items, got %d", cat.Len(), status.ItemsWarmed)
	}
}

// A failing item is logged and skipped; the rest of the sweep proceeds.
func TestPrecomputerSkipsFailedItems(t *testing.T) {
	cat := testCatalog(t)
	provider := &mockProvider{dimension: 4, failOn: "Soldering"}
	p, c := testPrecomputer(t, cat, provider)

	p.Sweep(context.Background(), "manual")

	if _, ok := c.Get("video:v-2"); ok {
		t.Error("Expected failed item to be absent from cache")
	}
	if _, ok := c.Get("video:v-1"); !ok {
		t.Error("Expected healthy items to be warmed despite a failure")
	}

	status := p.Status()
	if status.ItemsFailed != 1 {
		t.Errorf("Expected 1 failed item, got %d", status.ItemsFailed)
	}
	if status.ItemsWarmed != 2 {
		t.Errorf("Expected 2 warmed items, got %d", status.ItemsWarmed)
	}
	if status.LastResult != "completed" {
		t.Errorf("Expected completed result with partial failures, got %s", status.LastResult)
	}
}

// At most one sweep runs at a time; a trigger arriving mid-sweep is a no-op.
func TestPrecomputerSingleSweepGuard(t *testing.T) {
	cat := testCatalog(t)
	block := make(chan struct{})
	provider := &mockProvider{dimension: 4, block: block}
	p, _ := testPrecomputer(t, cat, provider)

	firstDone := make(chan bool)
	go func() {
		firstDone <- p.Sweep(context.Background(), "startup")
	}()

	// Wait for the first sweep to reach the provider.
	for provider.callCount() == 0 {
		time.Sleep(time.Millisecond)
	}

	if p.Sweep(context.Background(), "manual") {
		t.Error("Expected concurrent sweep to be a no-op")
	}
	if p.Refresh(context.Background()) {
		t.Error("Expected concurrent refresh to be a no-op")
	}

	close(block)
	if !<-firstDone {
		t.Error("Expected first sweep to run to completion")
	}
}

func TestPrecomputerRefreshRunsAsync(t *testing.T) {
	cat := testCatalog(t)
	provider := &mockProvider{dimension: 4}
	p, c := testPrecomputer(t, cat, provider)

	if !p.Refresh(context.Background()) {
		t.Fatal("Expected refresh to start a sweep")
	}

	// Refresh returns immediately; poll for completion.
	deadline := time.After(2 * time.Second)
	for c.Size() < cat.Len() {
		select {
		case <-deadline:
			t.Fatalf("Refresh sweep did not finish, %d of %d cached", c.Size(), cat.Len())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestPrecomputerCanceledContext(t *testing.T) {
	cat := testCatalog(t)
	provider := &mockProvider{dimension: 4}
	p, _ := testPrecomputer(t, cat, provider)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p.Sweep(ctx, "startup")

	status := p.Status()
	if status.LastResult != "canceled" {
		t.Errorf("Expected canceled result, got %s", status.LastResult)
	}
	if status.ItemsWarmed != 0 {
		t.Errorf("Expected no warmed items on canceled sweep, got %d", status.ItemsWarmed)
	}
}

// A sweep only generates items missing from the cache, so sweeping a warm
// cache costs no provider calls and leaves entry ages untouched.
func TestPrecomputerSweepSkipsWarmEntries(t *testing.T) {
	cat := testCatalog(t)
	provider := &mockProvider{dimension: 4}
	p, c := testPrecomputer(t, cat, provider)

	p.Sweep(context.Background(), "startup")
	if provider.callCount() != cat.Len() {
		t.Fatalf("Expected %d provider calls on a cold cache, got %d", cat.Len(), provider.callCount())
	}

	before, _ := c.Get("video:v-1")

	p.Sweep(context.Background(), "scheduled")
	if provider.callCount() != cat.Len() {
		t.Errorf("Expected no provider calls on a warm cache, got %d extra", provider.callCount()-cat.Len())
	}

	status := p.Status()
	if status.ItemsWarmed != 0 {
		t.Errorf("Expected 0 newly warmed items, got %d", status.ItemsWarmed)
	}
	if status.LastResult != "completed" {
		t.Errorf("Expected completed result, got %s", status.LastResult)
	}

	after, ok := c.Get("video:v-1")
	if !ok {
		t.Fatal("Expected entry to survive the second sweep")
	}
	if !after.CreatedAt.Equal(before.CreatedAt) {
		t.Error("Expected the second sweep to leave the entry's age untouched")
	}
}

// Items that failed in an earlier sweep are still missing from the cache
// and get retried by the next one.
func TestPrecomputerSweepRetriesFailedItems(t *testing.T) {
	cat := testCatalog(t)
	provider := &mockProvider{dimension: 4, failOn: "Soldering"}
	p, c := testPrecomputer(t, cat, provider)

	p.Sweep(context.Background(), "startup")
	if _, ok := c.Get("video:v-2"); ok {
		t.Fatal("Expected failing item to be absent after the first sweep")
	}

	provider.mu.Lock()
	provider.failOn = ""
	provider.mu.Unlock()

	p.Sweep(context.Background(), "scheduled")
	if _, ok := c.Get("video:v-2"); !ok {
		t.Error("Expected recovered item to be warmed by the next sweep")
	}

	status := p.Status()
	if status.ItemsWarmed != 1 {
		t.Errorf("Expected exactly the recovered item warmed, got %d", status.ItemsWarmed)
	}
}
