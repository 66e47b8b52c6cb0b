// CraftStream Recommender - Related-Content Recommendations for Maker Media
// Copyright 2026 CraftStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/craftstream/recommender

// Package config defines the service configuration and its layered loading
// (built-in defaults, optional YAML file, environment variables).
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the recommender service.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Embedding  EmbeddingConfig  `koanf:"embedding"`
	Cache      CacheConfig      `koanf:"cache"`
	Provider   ProviderConfig   `koanf:"provider"`
	Limits     LimitsConfig     `koanf:"limits"`
	Precompute PrecomputeConfig `koanf:"precompute"`
	Catalog    CatalogConfig    `koanf:"catalog"`
	API        APIConfig        `koanf:"api"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`
}

// EmbeddingConfig controls the embedding provider and vector shape.
type EmbeddingConfig struct {
	// Provider selects the implementation: "hash" is the only built-in.
	Provider string `koanf:"provider"`

	// Dimension is the fixed vector dimension D for this deployment.
	// All embeddings and comparisons use exactly D components.
	Dimension int `koanf:"dimension"`

	// Seed perturbs the hash provider so distinct deployments can
	// produce distinct (still deterministic) vector spaces.
	Seed int64 `koanf:"seed"`
}

// CacheConfig bounds the in-process embedding cache.
type CacheConfig struct {
	TTL        time.Duration `koanf:"ttl"`
	MaxEntries int           `koanf:"max_entries"`
}

// ProviderConfig bounds calls to the embedding provider.
type ProviderConfig struct {
	// Timeout caps a single GenerateEmbedding call. On expiry the
	// recommendation path degrades to the popularity tier.
	Timeout time.Duration `koanf:"timeout"`

	// Circuit breaker settings for the provider decorator.
	BreakerMaxRequests uint32        `koanf:"breaker_max_requests"`
	BreakerInterval    time.Duration `koanf:"breaker_interval"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout"`
}

// LimitsConfig clamps recommendation result sizes.
type LimitsConfig struct {
	Default int `koanf:"default"`
	Min     int `koanf:"min"`
	Max     int `koanf:"max"`
}

// PrecomputeConfig controls the background embedding warm.
type PrecomputeConfig struct {
	OnStartup bool          `koanf:"on_startup"`
	Interval  time.Duration `koanf:"interval"`
}

// CatalogConfig points at the catalog seed data.
type CatalogConfig struct {
	// SeedPath is an optional JSON file of content descriptors loaded at
	// startup. Empty means the embedded sample catalog is used.
	SeedPath string `koanf:"seed_path"`
}

// APIConfig holds rate limiting and CORS settings for the HTTP layer.
type APIConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks configuration invariants that would otherwise surface as
// confusing runtime behavior. Called after all layers are merged.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.Embedding.Dimension < 1 {
		return fmt.Errorf("embedding.dimension must be positive, got %d", c.Embedding.Dimension)
	}
	if c.Embedding.Provider == "" {
		return fmt.Errorf("embedding.provider must not be empty")
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive, got %s", c.Cache.TTL)
	}
	if c.Cache.MaxEntries < 1 {
		return fmt.Errorf("cache.max_entries must be positive, got %d", c.Cache.MaxEntries)
	}
	if c.Provider.Timeout <= 0 {
		return fmt.Errorf("provider.timeout must be positive, got %s", c.Provider.Timeout)
	}
	if c.Limits.Min < 1 || c.Limits.Max < c.Limits.Min {
		return fmt.Errorf("limits.min/max invalid: min=%d max=%d", c.Limits.Min, c.Limits.Max)
	}
	if c.Limits.Default < c.Limits.Min || c.Limits.Default > c.Limits.Max {
		return fmt.Errorf("limits.default %d outside [%d, %d]", c.Limits.Default, c.Limits.Min, c.Limits.Max)
	}
	if c.Precompute.Interval <= 0 {
		return fmt.Errorf("precompute.interval must be positive, got %s", c.Precompute.Interval)
	}
	return nil
}
