// Package hashscheme derives the k bit positions a token sets in a filter,
// given the token's digest stream (spec §4.2). Four schemes are supported;
// all arithmetic is carried out in unsigned 64-bit and reduced modulo the
// filter size, as required for bit-exact reproducibility across hosts.
package hashscheme

import (
	"fmt"

	"github.com/ul-mds/pprl/digest"
	"github.com/ul-mds/pprl/rng"
)

// Strategy names one of the four supported hash schemes.
type Strategy string

const (
	DoubleHash         Strategy = "double_hash"
	EnhancedDoubleHash Strategy = "enhanced_double_hash"
	TripleHash         Strategy = "triple_hash"
	RandomHash         Strategy = "random_hash"
)

// Scheme configures position derivation: which strategy, and how many
// positions (k) to derive per token.
type Scheme struct {
	Strategy Strategy
	K        int
}

// Validate checks the scheme is well-formed. Called once, before masking.
func (s Scheme) Validate() error {
	if s.K <= 0 {
		return fmt.Errorf("hashscheme: k must be > 0, got %d", s.K)
	}
	switch s.Strategy {
	case DoubleHash, EnhancedDoubleHash, TripleHash, RandomHash:
		return nil
	default:
		return fmt.Errorf("hashscheme: unsupported strategy %q", s.Strategy)
	}
}

// seedsNeeded returns how many u32 seeds must be extracted from the digest
// stream for this strategy.
func (s Scheme) seedsNeeded() int {
	switch s.Strategy {
	case DoubleHash, EnhancedDoubleHash:
		return 2
	case TripleHash:
		return 3
	case RandomHash:
		return 1
	default:
		return 0
	}
}

// Positions derives k bit positions in [0, filterSize) for a token, given
// its digest stream (spec §4.2). The same stream, scheme, and filterSize
// always yield the same positions, on any host.
func (s Scheme) Positions(stream []byte, filterSize int) ([]int, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if filterSize <= 0 {
		return nil, fmt.Errorf("hashscheme: filterSize must be > 0, got %d", filterSize)
	}

	seeds, err := digest.ExtractU32LE(stream, s.seedsNeeded())
	if err != nil {
		return nil, fmt.Errorf("hashscheme: %w", err)
	}

	m := uint64(filterSize)
	positions := make([]int, s.K)

	switch s.Strategy {
	case DoubleHash:
		h0, h1 := uint64(seeds[0]), uint64(seeds[1])
		for j := 0; j < s.K; j++ {
			positions[j] = int((h0 + uint64(j)*h1) % m)
		}
	case EnhancedDoubleHash:
		h0, h1 := uint64(seeds[0]), uint64(seeds[1])
		for j := 0; j < s.K; j++ {
			jc := cubicTerm(j)
			positions[j] = int((h0 + uint64(j)*h1 + jc) % m)
		}
	case TripleHash:
		h0, h1, h2 := uint64(seeds[0]), uint64(seeds[1]), uint64(seeds[2])
		for j := 0; j < s.K; j++ {
			jc := cubicTerm(j)
			positions[j] = int((h0 + uint64(j)*h1 + jc*h2) % m)
		}
	case RandomHash:
		seed := uint64(seeds[0])
		r := rng.New(seed)
		for j := 0; j < s.K; j++ {
			positions[j] = r.IntN(filterSize)
		}
	}

	return positions, nil
}

// cubicTerm computes (j^3 - j) / 6, which is always an exact integer for
// non-negative j (j^3 - j is divisible by 6 for all integers j).
func cubicTerm(j int) uint64 {
	jj := uint64(j)
	return (jj*jj*jj - jj) / 6
}
