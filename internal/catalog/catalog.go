// CraftStream Recommender - Related-Content Recommendations for Maker Media
// Copyright 2026 CraftStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/craftstream/recommender

// Package catalog defines the content model for the maker-media catalog and
// the read interface the recommendation pipeline consumes. Descriptors are
// immutable snapshots; nothing downstream mutates them.
package catalog

import (
	"fmt"
	"strings"
)

// Kind identifies the content type of a catalog item.
type Kind string

const (
	// KindVideo is a short-form video.
	KindVideo Kind = "video"

	// KindDIY is a DIY article.
	KindDIY Kind = "diy"
)

// ParseKind validates a kind string from an external boundary.
// Unknown kinds are a caller error, not a fallback.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(s)) {
	case KindVideo:
		return KindVideo, nil
	case KindDIY:
		return KindDIY, nil
	default:
		return "", fmt.Errorf("unknown content kind %q", s)
	}
}

// ContentID is an opaque identifier prefixed with the content kind,
// e.g. "video:v-1042" or "diy:d-77". The prefix keeps the two catalogs
// from colliding in shared keyspaces (cache keys, activity records).
type ContentID string

// MakeID builds a ContentID from a kind and a raw identifier.
func MakeID(kind Kind, raw string) ContentID {
	return ContentID(string(kind) + ":" + raw)
}

// Kind returns the kind prefix of the ID, or an error if the ID has no
// recognizable prefix.
func (id ContentID) Kind() (Kind, error) {
	prefix, _, found := strings.Cut(string(id), ":")
	if !found {
		return "", fmt.Errorf("content id %q has no kind prefix", id)
	}
	return ParseKind(prefix)
}

// ContentDescriptor is an immutable snapshot of a catalog item. View and
// like counts reflect the snapshot at load time; live interaction data comes
// from the activity store.
type ContentDescriptor struct {
	ID          ContentID `json:"id"`
	Kind        Kind      `json:"kind"`
	Category    string    `json:"category"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	ViewCount   int64     `json:"view_count"`
	LikeCount   int64     `json:"like_count"`
}

// Catalog is the read interface the recommendation pipeline depends on.
// List methods return items in the catalog's declared order; that order is
// the tie-break for equal recommendation scores.
type Catalog interface {
	// GetByID returns the descriptor for an ID, or ok=false when absent.
	GetByID(id ContentID) (*ContentDescriptor, bool)

	// ListByCategory returns all items of the category in declared order.
	ListByCategory(category string) []*ContentDescriptor

	// ListAll returns every item in declared order.
	ListAll() []*ContentDescriptor
}
