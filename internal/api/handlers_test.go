// CraftStream Recommender - Related-Content Recommendations for Maker Media
// Copyright 2026 CraftStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/craftstream/recommender

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/craftstream/recommender/internal/activity"
	"github.com/craftstream/recommender/internal/catalog"
	"github.com/craftstream/recommender/internal/config"
	"github.com/craftstream/recommender/internal/embedding"
	"github.com/craftstream/recommender/internal/recommend"
)

// testEnvelope mirrors the API response wrapper for decoding in tests.
type testEnvelope struct {
	Status string                 `json:"status"`
	Data   map[string]interface{} `json:"data"`
	Error  *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type testStack struct {
	handler  http.Handler
	catalog  *catalog.MemoryCatalog
	activity *activity.MemoryStore
	cache    *embedding.Cache
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()

	cat := catalog.NewMemoryCatalog()
	items := []*catalog.ContentDescriptor{
		{ID: "video:v-1", Kind: catalog.KindVideo, Category: "woodworking", Title: "Dovetail Joints", ViewCount: 120},
		{ID: "video:v-2", Kind: catalog.KindVideo, Category: "woodworking", Title: "Mortise and Tenon", ViewCount: 80},
		{ID: "video:v-3", Kind: catalog.KindVideo, Category: "electronics", Title: "Soldering Basics", ViewCount: 300},
		{ID: "diy:d-1", Kind: catalog.KindDIY, Category: "woodworking", Title: "Workbench Build", ViewCount: 50},
		{ID: "diy:d-2", Kind: catalog.KindDIY, Category: "textiles", Title: "Hand Sewing", ViewCount: 10},
	}
	for _, item := range items {
		if err := cat.Add(item); err != nil {
			t.Fatalf("catalog Add failed: %v", err)
		}
	}

	act := activity.NewMemoryStore()

	provider, err := embedding.NewHashProvider(8, 0)
	if err != nil {
		t.Fatalf("NewHashProvider failed: %v", err)
	}

	embCache := embedding.NewCache(config.CacheConfig{TTL: time.Minute, MaxEntries: 100})
	t.Cleanup(embCache.Close)

	providerCfg := config.ProviderConfig{Timeout: time.Second}
	precomputer := embedding.NewPrecomputer(cat, embCache, provider, providerCfg, zerolog.Nop())

	engine := recommend.NewEngine(
		cat, act, embCache, provider,
		config.LimitsConfig{Default: 10, Min: 1, Max: 50},
		providerCfg,
		zerolog.Nop(),
	)

	handler := NewHandler(context.Background(), engine, cat, act, embCache, precomputer, zerolog.Nop())
	mw := NewChiMiddleware(NewChiMiddlewareConfig(config.APIConfig{
		RateLimitReqs:     100,
		RateLimitWindow:   time.Minute,
		RateLimitDisabled: true,
		CORSOrigins:       []string{"*"},
	}))

	return &testStack{
		handler:  NewRouter(handler, mw).Setup(),
		catalog:  cat,
		activity: act,
		cache:    embCache,
	}
}

func (s *testStack) do(t *testing.T, method, path string, body []byte) (*httptest.ResponseRecorder, *testEnvelope) {
	t.Helper()

	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	env := &testEnvelope{}
	if rec.Header().Get("Content-Type") == "application/json" {
		if err := json.Unmarshal(rec.Body.Bytes(), env); err != nil {
			t.Fatalf("Failed to decode envelope from %s %s: %v", method, path, err)
		}
	}
	return rec, env
}

func TestRecommendationsRequiresKind(t *testing.T) {
	s := newTestStack(t)

	rec, env := s.do(t, http.MethodGet, "/api/v1/recommendations", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
	if env.Status != "error" || env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("Expected VALIDATION_ERROR envelope, got %+v", env)
	}
}

func TestRecommendationsRejectsUnknownKind(t *testing.T) {
	s := newTestStack(t)

	rec, _ := s.do(t, http.MethodGet, "/api/v1/recommendations?kind=podcast", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown kind, got %d", rec.Code)
	}
}

func TestRecommendationsRejectsMalformedLimit(t *testing.T) {
	s := newTestStack(t)

	rec, env := s.do(t, http.MethodGet, "/api/v1/recommendations?kind=video&limit=abc", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for malformed limit, got %d", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("Expected VALIDATION_ERROR, got %+v", env.Error)
	}
}

func TestRecommendationsContentBased(t *testing.T) {
	s := newTestStack(t)

	// Warm embeddings so the engine ranks from cache.
	now := time.Now()
	vectors := map[catalog.ContentID][]float64{
		"video:v-1": {1, 0},
		"video:v-2": {0.95, 0.31},
		"video:v-3": {0, 1},
	}
	for id, v := range vectors {
		s.cache.Put(&embedding.Embedding{ID: id, Kind: catalog.KindVideo, Vector: v, CreatedAt: now})
	}

	rec, env := s.do(t, http.MethodGet, "/api/v1/recommendations?kind=video&current_id=video:v-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if env.Status != "success" {
		t.Fatalf("Expected success envelope, got %s", env.Status)
	}
	if env.Data["strategy"] != "content_based" {
		t.Errorf("Expected content_based strategy, got %v", env.Data["strategy"])
	}

	items, ok := env.Data["items"].([]interface{})
	if !ok || len(items) == 0 {
		t.Fatalf("Expected ranked items, got %v", env.Data["items"])
	}
	for _, raw := range items {
		item := raw.(map[string]interface{})
		desc := item["descriptor"].(map[string]interface{})
		if desc["id"] == "video:v-1" {
			t.Error("Expected current item to be excluded from its own recommendations")
		}
	}
}

func TestCatalogRelated(t *testing.T) {
	s := newTestStack(t)

	rec, env := s.do(t, http.MethodGet, "/api/v1/catalog/video/v-1/related", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if env.Data["strategy"] == nil {
		t.Error("Expected a strategy in the response")
	}
}

func TestCatalogRelatedUnknownID(t *testing.T) {
	s := newTestStack(t)

	rec, env := s.do(t, http.MethodGet, "/api/v1/catalog/video/v-999/related", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "NOT_FOUND" {
		t.Errorf("Expected NOT_FOUND, got %+v", env.Error)
	}
}

func TestCatalogListPagination(t *testing.T) {
	s := newTestStack(t)

	rec, env := s.do(t, http.MethodGet, "/api/v1/catalog/video?limit=2&offset=0", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	items := env.Data["items"].([]interface{})
	if len(items) != 2 {
		t.Errorf("Expected 2 items, got %d", len(items))
	}

	pagination := env.Data["pagination"].(map[string]interface{})
	if pagination["total_count"].(float64) != 3 {
		t.Errorf("Expected 3 total videos, got %v", pagination["total_count"])
	}
	if pagination["has_more"] != true {
		t.Error("Expected has_more for first page")
	}

	// Second page.
	_, env = s.do(t, http.MethodGet, "/api/v1/catalog/video?limit=2&offset=2", nil)
	items = env.Data["items"].([]interface{})
	if len(items) != 1 {
		t.Errorf("Expected 1 item on second page, got %d", len(items))
	}
	pagination = env.Data["pagination"].(map[string]interface{})
	if pagination["has_more"] != false {
		t.Error("Expected no more pages")
	}
}

func TestCatalogListUnknownKind(t *testing.T) {
	s := newTestStack(t)

	rec, _ := s.do(t, http.MethodGet, "/api/v1/catalog/podcast", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown kind, got %d", rec.Code)
	}
}

func TestCatalogGet(t *testing.T) {
	s := newTestStack(t)

	rec, env := s.do(t, http.MethodGet, "/api/v1/catalog/diy/d-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if env.Data["title"] != "Workbench Build" {
		t.Errorf("Expected Workbench Build, got %v", env.Data["title"])
	}

	rec, _ = s.do(t, http.MethodGet, "/api/v1/catalog/diy/d-999", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown item, got %d", rec.Code)
	}
}

func TestActivityWatch(t *testing.T) {
	s := newTestStack(t)

	body := []byte(`{"user_id":"alice","content_id":"video:v-1","completed":true}`)
	rec, env := s.do(t, http.MethodPost, "/api/v1/activity/watch", body)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	if env.Data["recorded"] != true {
		t.Errorf("Expected recorded flag, got %v", env.Data)
	}

	history := s.activity.HistoryFor("alice")
	if len(history) != 1 || history[0].ContentID != "video:v-1" {
		t.Errorf("Expected watch in history, got %v", history)
	}
	if !history[0].Completed {
		t.Error("Expected completed flag to be recorded")
	}
}

func TestActivityWatchValidation(t *testing.T) {
	s := newTestStack(t)

	tests := []struct {
		name     string
		body     string
		expected int
	}{
		{"missing user_id", `{"content_id":"video:v-1"}`, http.StatusBadRequest},
		{"missing content_id", `{"user_id":"alice"}`, http.StatusBadRequest},
		{"unknown field", `{"user_id":"alice","content_id":"video:v-1","extra":1}`, http.StatusBadRequest},
		{"malformed json", `{"user_id":`, http.StatusBadRequest},
		{"unprefixed content id", `{"user_id":"alice","content_id":"v-1"}`, http.StatusBadRequest},
		{"unknown content", `{"user_id":"alice","content_id":"video:v-999"}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := s.do(t, http.MethodPost, "/api/v1/activity/watch", []byte(tt.body))
			if rec.Code != tt.expected {
				t.Errorf("Expected %d, got %d: %s", tt.expected, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestActivityLike(t *testing.T) {
	s := newTestStack(t)

	body := []byte(`{"user_id":"bob","content_id":"diy:d-1"}`)
	rec, _ := s.do(t, http.MethodPost, "/api/v1/activity/like", body)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d", rec.Code)
	}
	if s.activity.InteractionCount("diy:d-1") != 1 {
		t.Error("Expected like to be counted")
	}
}

func TestActivityTrending(t *testing.T) {
	s := newTestStack(t)

	s.activity.RecordWatch("alice", "video:v-3", true)
	s.activity.RecordWatch("bob", "video:v-3", true)
	s.activity.RecordWatch("alice", "diy:d-1", true)

	rec, env := s.do(t, http.MethodGet, "/api/v1/activity/trending", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	items := env.Data["items"].([]interface{})
	if len(items) != 2 {
		t.Fatalf("Expected 2 trending items, got %d", len(items))
	}
	first := items[0].(map[string]interface{})
	if first["id"] != "video:v-3" {
		t.Errorf("Expected most-watched first, got %v", first["id"])
	}
}

func TestRecommendationsRefresh(t *testing.T) {
	s := newTestStack(t)

	rec, env := s.do(t, http.MethodPost, "/api/v1/recommendations/refresh", nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d", rec.Code)
	}
	if env.Data["refresh_started"] != true {
		t.Errorf("Expected refresh_started, got %v", env.Data)
	}

	// The sweep runs in the background; poll until the cache is warm.
	deadline := time.After(2 * time.Second)
	for s.cache.Size() < s.catalog.Len() {
		select {
		case <-deadline:
			t.Fatalf("Refresh sweep did not warm the cache, %d of %d", s.cache.Size(), s.catalog.Len())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestRecommendationsStatus(t *testing.T) {
	s := newTestStack(t)

	rec, env := s.do(t, http.MethodGet, "/api/v1/recommendations/status", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if env.Data["cache"] == nil || env.Data["precompute"] == nil {
		t.Errorf("Expected cache and precompute sections, got %v", env.Data)
	}
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestStack(t)

	for _, path := range []string{"/api/v1/health", "/api/v1/health/live", "/api/v1/health/ready"} {
		rec, env := s.do(t, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}
		if env.Status != "success" {
			t.Errorf("%s: expected success envelope, got %s", path, env.Status)
		}
	}
}

func TestResponseHeaders(t *testing.T) {
	s := newTestStack(t)

	rec, _ := s.do(t, http.MethodGet, "/api/v1/catalog/video", nil)

	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Expected JSON content type, got %q", got)
	}
	if rec.Header().Get("ETag") == "" {
		t.Error("Expected ETag header")
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("Expected no-store cache control, got %q", got)
	}
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("Expected nosniff header, got %q", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestStack(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 from metrics endpoint, got %d", rec.Code)
	}
}

func TestSanitizeLogValue(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"normal-value", "normal-value"},
		{"line\nbreak", "line\\x0abreak"},
		{"tab\there", "tab\\x09here"},
	}
	for _, tt := range tests {
		if got := sanitizeLogValue(tt.input); got != tt.expected {
			t.Errorf("sanitizeLogValue(%q): expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}

func TestGetIntParam(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?limit=5", nil)
	if v, err := getIntParam(r, "limit", 10); err != nil || v != 5 {
		t.Errorf("Expected 5, got %d (%v)", v, err)
	}
	if v, err := getIntParam(r, "offset", 10); err != nil || v != 10 {
		t.Errorf("Expected default 10, got %d (%v)", v, err)
	}

	r = httptest.NewRequest(http.MethodGet, "/?limit=abc", nil)
	if _, err := getIntParam(r, "limit", 10); err == nil {
		t.Error("Expected error for malformed integer")
	}
}
