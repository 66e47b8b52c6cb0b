// CraftStream Recommender - Related-Content Recommendations for Maker Media
// Copyright 2026 CraftStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/craftstream/recommender

package embedding

import (
	"fmt"

	"github.com/craftstream/recommender/internal/config"
)

// NewProvider creates the embedding provider selected by configuration.
// Selection happens once at startup; everything downstream sees only the
// Provider interface.
func NewProvider(cfg config.EmbeddingConfig) (Provider, error) {
	switch cfg.Provider {
	case "hash":
		return NewHashProvider(cfg.Dimension, cfg.Seed)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}
