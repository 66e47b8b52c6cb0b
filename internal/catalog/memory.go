// CraftStream Recommender - Related-Content Recommendations for Maker Media
// Copyright 2026 CraftStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/craftstream/recommender

package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"github.com/goccy/go-json"
)

//go:embed seed.json
var embeddedSeed []byte

// MemoryCatalog is an in-memory Catalog implementation. Items keep their
// load order, which ListAll and ListByCategory expose unchanged.
type MemoryCatalog struct {
	mu    sync.RWMutex
	byID  map[ContentID]*ContentDescriptor
	order []ContentID
}

// NewMemoryCatalog creates an empty in-memory catalog.
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		byID: make(map[ContentID]*ContentDescriptor),
	}
}

// NewMemoryCatalogFromSeed loads a catalog from the JSON file at path, or
// from the embedded sample catalog when path is empty.
func NewMemoryCatalogFromSeed(path string) (*MemoryCatalog, error) {
	data := embeddedSeed
	if path != "" {
		fileData, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog seed %s: %w", path, err)
		}
		data = fileData
	}

	var items []*ContentDescriptor
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse catalog seed: %w", err)
	}

	c := NewMemoryCatalog()
	for _, item := range items {
		if err := c.Add(item); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Add appends an item to the catalog. The item's ID must carry a valid kind
// prefix matching its Kind field, and must not already be present.
func (c *MemoryCatalog) Add(item *ContentDescriptor) error {
	if item == nil {
		return fmt.Errorf("nil content descriptor")
	}
	idKind, err := item.ID.Kind()
	if err != nil {
		return fmt.Errorf("catalog item %q: %w", item.ID, err)
	}
	if idKind != item.Kind {
		return fmt.Errorf("catalog item %q: id prefix %q does not match kind %q", item.ID, idKind, item.Kind)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.byID[item.ID]; exists {
		return fmt.Errorf("duplicate catalog item %q", item.ID)
	}
	c.byID[item.ID] = item
	c.order = append(c.order, item.ID)
	return nil
}

// GetByID returns the descriptor for an ID, or ok=false when absent.
func (c *MemoryCatalog) GetByID(id ContentID) (*ContentDescriptor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.byID[id]
	return item, ok
}

// ListByCategory returns all items of the category in declared order.
func (c *MemoryCatalog) ListByCategory(category string) []*ContentDescriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var items []*ContentDescriptor
	for _, id := range c.order {
		if item := c.byID[id]; item.Category == category {
			items = append(items, item)
		}
	}
	return items
}

// ListAll returns every item in declared order.
func (c *MemoryCatalog) ListAll() []*ContentDescriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()

	items := make([]*ContentDescriptor, 0, len(c.order))
	for _, id := range c.order {
		items = append(items, c.byID[id])
	}
	return items
}

// Len returns the number of items in the catalog.
func (c *MemoryCatalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}
