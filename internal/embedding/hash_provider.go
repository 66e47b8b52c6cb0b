// CraftStream Recommender - Related-Content Recommendations for Maker Media
// Copyright 2026 CraftStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/craftstream/recommender

package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
)

// Frequency constants for the hash provider's vector synthesis. c1 spreads
// components across the sine period; c2 maps the text hash into phase space.
const (
	hashFreqComponent = 0.6180339887 // conjugate golden ratio, avoids periodicity across indices
	hashFreqSeed      = 1.0e-4
)

// HashProvider is a deterministic, dependency-free embedding provider. It
// hashes the input text with SHA-256 and synthesizes a unit-norm vector of
// sine values from the hash. Similar texts do NOT get similar vectors; the
// provider exists so the full pipeline (cache, precompute, ranking) runs
// without a model service, and so tests are exactly reproducible.
type HashProvider struct {
	dimension int
	seed      int64
}

// NewHashProvider creates a hash provider with the given dimension. The
// seed perturbs the vector space so separate deployments can diverge while
// each stays internally deterministic.
func NewHashProvider(dimension int, seed int64) (*HashProvider, error) {
	if dimension < 1 {
		return nil, fmt.Errorf("embedding dimension must be positive, got %d", dimension)
	}
	return &HashProvider{dimension: dimension, seed: seed}, nil
}

// GenerateEmbedding returns the deterministic vector for text.
func (p *HashProvider) GenerateEmbedding(ctx context.Context, text string) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sum := sha256.Sum256([]byte(text))
	hash := binary.BigEndian.Uint64(sum[:8]) ^ uint64(p.seed)

	// Reduce the hash to a bounded phase so float64 precision holds.
	phase := float64(hash%1_000_000_007) * hashFreqSeed

	vector := make([]float64, p.dimension)
	var norm float64
	for i := range vector {
		vector[i] = math.Sin(float64(i)*hashFreqComponent + phase)
		norm += vector[i] * vector[i]
	}

	// Normalize to unit length; cosine scoring then reduces to a dot
	// product and scores stay in a predictable range.
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vector {
			vector[i] /= norm
		}
	}

	return vector, nil
}

// Dimension returns the fixed vector dimension.
func (p *HashProvider) Dimension() int {
	return p.dimension
}

// Name identifies the provider in logs and metrics.
func (p *HashProvider) Name() string {
	return "hash"
}
