// CraftStream Recommender - Related-Content Recommendations for Maker Media
// Copyright 2026 CraftStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/craftstream/recommender

// Package main is the entry point for the CraftStream recommender server.
//
// The recommender serves related-content suggestions for a maker-media
// catalog of short videos and DIY articles. Content descriptions are turned
// into deterministic embedding vectors, cached with a TTL, and ranked by
// cosine similarity; when the content signal is unavailable the engine falls
// back to user history and then to popularity.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Load settings from environment variables and config files (Koanf v2)
//  2. Catalog: Load content descriptors from the seed file or embedded sample data
//  3. Embedding: Provider (wrapped in a circuit breaker), TTL cache, precomputer
//  4. Engine: Three-tier recommendation strategy over the catalog and activity store
//  5. HTTP Server: REST API under /api/v1 plus Prometheus metrics
//
// Long-running components (the HTTP server and the precompute scheduler) run
// under a suture/v4 supervision tree so a crashing sweep loop restarts
// without taking down the API.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables (see envTransformFunc in internal/config)
//   - Config file (config.yaml, or CONFIG_PATH)
//   - Built-in defaults
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (10s timeout)
//   - Stops the precompute scheduler and closes the embedding cache
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/craftstream/recommender/internal/activity"
	"github.com/craftstream/recommender/internal/api"
	"github.com/craftstream/recommender/internal/catalog"
	"github.com/craftstream/recommender/internal/config"
	"github.com/craftstream/recommender/internal/embedding"
	"github.com/craftstream/recommender/internal/logging"
	"github.com/craftstream/recommender/internal/recommend"
	"github.com/craftstream/recommender/internal/supervisor"
	"github.com/craftstream/recommender/internal/supervisor/services"
)

func main() {
	// Optional .env file for local development; missing file is fine.
	_ = godotenv.Load()

	cfg, err := config.LoadWithKoanf()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("provider", cfg.Embedding.Provider).
		Int("dimension", cfg.Embedding.Dimension).
		Dur("cache_ttl", cfg.Cache.TTL).
		Msg("Starting CraftStream recommender")

	// Catalog: seed file when configured, embedded sample data otherwise.
	cat, err := catalog.NewMemoryCatalogFromSeed(cfg.Catalog.SeedPath)
	if err != nil {
		logging.Fatal().Err(err).Str("seed_path", cfg.Catalog.SeedPath).Msg("Failed to load catalog")
	}
	logging.Info().Int("items", cat.Len()).Msg("Catalog loaded")

	activityStore := activity.NewMemoryStore()

	// Embedding provider wrapped in a circuit breaker so a misbehaving
	// provider degrades requests to the popularity tier instead of
	// stalling them.
	baseProvider, err := embedding.NewProvider(cfg.Embedding)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create embedding provider")
	}
	provider := embedding.NewBreakerProvider(baseProvider, cfg.Provider)

	embCache := embedding.NewCache(cfg.Cache)
	defer embCache.Close()

	precomputer := embedding.NewPrecomputer(cat, embCache, provider, cfg.Provider, logging.Logger())

	engine := recommend.NewEngine(
		cat,
		activityStore,
		embCache,
		provider,
		cfg.Limits,
		cfg.Provider,
		logging.Logger(),
	)

	// Context for graceful shutdown, canceled on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := api.NewHandler(ctx, engine, cat, activityStore, embCache, precomputer, logging.Logger())
	middleware := api.NewChiMiddleware(api.NewChiMiddlewareConfig(cfg.API))
	router := api.NewRouter(handler, middleware)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// Supervisor tree; sutureslog bridges events to zerolog via slog.
	tree, err := supervisor.NewSupervisorTree(logging.Slog(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddJobService(services.NewPrecomputeService(precomputer, services.PrecomputeServiceConfig{
		WarmOnStartup: cfg.Precompute.OnStartup,
		Interval:      cfg.Precompute.Interval,
	}, logging.Logger()))
	logging.Info().
		Bool("warm_on_startup", cfg.Precompute.OnStartup).
		Dur("interval", cfg.Precompute.Interval).
		Msg("Precompute scheduler added to supervisor tree")

	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Recommender stopped gracefully")
}
