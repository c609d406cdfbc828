// Package reel turns the symbol catalog into random grids: a weighted
// sampler draws single symbols and the generator fills a 3x3 window with
// independent draws.
package reel

import (
	"math/rand/v2"

	"github.com/evetabi/slot/internal/domain"
)

// UniformSource returns a uniformly distributed value in [0, 1).
// It must be safe for concurrent use when the sampler is shared.
type UniformSource func() float64

// Sampler draws symbols with probability weight / total weight.
type Sampler struct {
	catalog *domain.Catalog
	uniform UniformSource
}

// NewSampler creates a Sampler over catalog. A nil uniform uses the
// goroutine-safe global source of math/rand/v2.
func NewSampler(catalog *domain.Catalog, uniform UniformSource) *Sampler {
	if uniform == nil {
		uniform = rand.Float64
	}
	return &Sampler{catalog: catalog, uniform: uniform}
}

// Draw returns one symbol.
//
// A value in [0, total) is drawn and each weight, in catalog order, is
// subtracted from it; the first symbol that brings the remainder to ≤ 0 wins.
// If rounding leaves the remainder positive after the final weight, the last
// catalog entry is returned.
func (s *Sampler) Draw() domain.Symbol {
	remaining := s.uniform() * s.catalog.TotalWeight()
	for i := 0; i < s.catalog.Len(); i++ {
		sym := s.catalog.At(i)
		remaining -= sym.Weight
		if remaining <= 0 {
			return sym
		}
	}
	return s.catalog.Last()
}
