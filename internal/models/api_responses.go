// CraftStream Recommender - Related-Content Recommendations for Maker Media
// Copyright 2026 CraftStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/craftstream/recommender

package models

import (
	"time"
)

// APIResponse represents a standardized API response wrapper used by all HTTP endpoints.
// It provides consistent structure for both successful and error responses, with metadata
// for observability and caching information.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"strategy": "content_based", "items": [...]},
//	  "metadata": {
//	    "timestamp": "2026-08-30T12:00:00Z",
//	    "query_time_ms": 4,
//	    "cached": true
//	  }
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {
//	    "code": "VALIDATION_ERROR",
//	    "message": "unknown content kind",
//	    "details": {"field": "kind"}
//	  },
//	  "metadata": {"timestamp": "2026-08-30T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability and performance tracking.
//
// Fields:
//   - Timestamp: Server time when response was generated (RFC3339 format)
//   - QueryTimeMS: Handler execution time in milliseconds
//   - Cached: Whether all embeddings used were served from cache (omitted if false)
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError represents an error response with structured error details.
//
// Common error codes:
//   - VALIDATION_ERROR: Invalid input parameters (unknown kind, bad limit)
//   - NOT_FOUND: Catalog item doesn't exist
//   - INTERNAL_ERROR: Embedding dimension mismatch or other server fault
//   - RATE_LIMIT_EXCEEDED: Too many requests
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// PaginationInfo contains offset-based pagination metadata for catalog listings.
// The catalog is small and fully in memory, so offset pagination is adequate
// and keeps the ordering contract (declared catalog order) obvious.
type PaginationInfo struct {
	Limit      int  `json:"limit"`
	Offset     int  `json:"offset"`
	HasMore    bool `json:"has_more"`
	TotalCount int  `json:"total_count"`
}

// WatchRequest records a watch event against a catalog item.
//
// Fields:
//   - UserID: Identifier of the viewing user
//   - ContentID: Prefixed catalog identifier ("video:..." or "diy:...")
//   - Completed: Whether the user watched/read to the end
type WatchRequest struct {
	UserID    string `json:"user_id" validate:"required,min=1,max=128"`
	ContentID string `json:"content_id" validate:"required,min=1,max=256"`
	Completed bool   `json:"completed"`
}

// LikeRequest records a like event against a catalog item.
type LikeRequest struct {
	UserID    string `json:"user_id" validate:"required,min=1,max=128"`
	ContentID string `json:"content_id" validate:"required,min=1,max=256"`
}
