// Package hardener implements the ordered post-processing chain applied to
// a masked bit vector (spec §4.4): balance, xor_fold, permute, randomized
// response, rule-90, and rehash. Each hardener is a pure function
// BitVector → BitVector; Chain applies them in declared order, the way
// internal/query/filter.go's Condition dispatch runs a closed operator set
// in one place.
package hardener

import (
	"encoding/binary"
	"math/bits"

	"github.com/ul-mds/pprl/bitvec"
	"github.com/ul-mds/pprl/pprlerr"
	"github.com/ul-mds/pprl/rng"
)

// Kind names one of the six supported hardeners.
type Kind string

const (
	KindBalance            Kind = "balance"
	KindXORFold            Kind = "xor_fold"
	KindPermute            Kind = "permute"
	KindRandomizedResponse Kind = "randomized_response"
	KindRule90             Kind = "rule_90"
	KindRehash             Kind = "rehash"
)

// Step is one tagged-union hardener descriptor. Exactly the fields
// relevant to Kind are consulted.
type Step struct {
	Kind Kind

	// permute and randomized_response draw from a generator rooted at
	// Seed. rehash ignores Seed: it seeds each window from that window's bits.
	Seed uint64

	// randomized_response
	Probability float64

	// rehash
	WindowSize int
	WindowStep int
	Samples    int
}

// Validate checks a single step's parameters are well-formed.
func (s Step) Validate() error {
	switch s.Kind {
	case KindBalance, KindXORFold, KindRule90:
		return nil
	case KindPermute:
		return nil
	case KindRandomizedResponse:
		if s.Probability < 0 || s.Probability > 1 {
			return pprlerr.NewConfigError("randomized_response: probability must be in [0,1], got %v", s.Probability)
		}
		return nil
	case KindRehash:
		if s.WindowSize <= 0 {
			return pprlerr.NewConfigError("rehash: window_size must be > 0")
		}
		if s.WindowStep <= 0 {
			return pprlerr.NewConfigError("rehash: window_step must be > 0")
		}
		if s.Samples <= 0 {
			return pprlerr.NewConfigError("rehash: samples must be > 0")
		}
		return nil
	default:
		return pprlerr.NewConfigError("hardener: unsupported kind %q", s.Kind)
	}
}

// Apply runs one hardener step on v, returning a new vector.
func (s Step) Apply(v *bitvec.BitVector) (*bitvec.BitVector, error) {
	switch s.Kind {
	case KindBalance:
		return Balance(v), nil
	case KindXORFold:
		return XORFold(v)
	case KindPermute:
		return Permute(v, s.Seed), nil
	case KindRandomizedResponse:
		return RandomizedResponse(v, s.Seed, s.Probability), nil
	case KindRule90:
		return Rule90(v), nil
	case KindRehash:
		return Rehash(v, s.WindowSize, s.WindowStep, s.Samples)
	default:
		return nil, pprlerr.NewConfigError("hardener: unsupported kind %q", s.Kind)
	}
}

// Chain is an ordered sequence of hardener steps, applied in declared order.
type Chain []Step

// Validate checks every step once, before any entity is processed.
func (c Chain) Validate() error {
	for i, s := range c {
		if err := s.Validate(); err != nil {
			return pprlerr.WrapConfigError(err, "hardener step %d", i)
		}
	}
	return nil
}

// Apply runs the chain on v in order.
func (c Chain) Apply(v *bitvec.BitVector) (*bitvec.BitVector, error) {
	out := v
	for _, s := range c {
		next, err := s.Apply(out)
		if err != nil {
			return nil, err
		}
		out = next
	}
	return out, nil
}

// Balance doubles the vector's length: output is v concatenated with its
// bitwise complement. Exactly half the output bits are set, regardless of
// v's density.
func Balance(v *bitvec.BitVector) *bitvec.BitVector {
	return v.Concat(v.Not())
}

// XORFold halves the vector's length: out[i] = in[i] XOR in[i+n/2]. v's
// length must be even.
func XORFold(v *bitvec.BitVector) (*bitvec.BitVector, error) {
	if v.Len()%2 != 0 {
		return nil, pprlerr.NewConfigError("xor_fold: length must be even, got %d", v.Len())
	}
	left, right := v.Halves()
	return left.Xor(right), nil
}

// Permute shuffles bit positions using a Fisher-Yates permutation seeded
// deterministically from seed. Applying Inverse(perm) to the output
// recovers the input (spec §8 invariant 6).
func Permute(v *bitvec.BitVector, seed uint64) *bitvec.BitVector {
	r := rng.New(seed)
	perm := rng.Permutation(r, v.Len())
	out := bitvec.New(v.Len())
	for i, p := range perm {
		out.SetTo(p, v.Test(i))
	}
	return out
}

// RandomizedResponse independently replaces each bit with a fresh uniform
// random bit with probability p, otherwise keeps it. p=0 is a no-op; p=1
// yields a vector independent of the input.
func RandomizedResponse(v *bitvec.BitVector, seed uint64, p float64) *bitvec.BitVector {
	r := rng.New(seed)
	out := bitvec.New(v.Len())
	for i := 0; i < v.Len(); i++ {
		if r.Float64() < p {
			out.SetTo(i, r.IntN(2) == 1)
		} else {
			out.SetTo(i, v.Test(i))
		}
	}
	return out
}

// Rule90 applies elementary cellular automaton rule 90 once:
// out[i] = in[i-1] XOR in[i+1], treating positions beyond the vector's
// boundaries as zero (spec §9's open question on boundary handling is
// resolved as zero-padding, the simpler and more common convention, rather
// than wrap-around, absent a pinned reference implementation).
func Rule90(v *bitvec.BitVector) *bitvec.BitVector {
	out := bitvec.New(v.Len())
	for i := 0; i < v.Len(); i++ {
		var left, right bool
		if i > 0 {
			left = v.Test(i - 1)
		}
		if i+1 < v.Len() {
			right = v.Test(i + 1)
		}
		out.SetTo(i, left != right)
	}
	return out
}

// Rehash slides a window of WindowSize bits across v with stride
// WindowStep; for each window, seeds a fresh generator from the window's
// bits (interpreted as a big-endian integer) and draws Samples bit indices
// in [0, len(v)), setting each in an accumulator. The result is v OR the
// accumulator. Windows that would extend past the end of v are dropped.
//
// Spec §9 leaves open whether the RNG persists across windows; this
// implementation reseeds fresh per window from that window's own bits, so
// the result depends only on v and the hardener's parameters, not on
// window processing order — a property a persisted, carried-over generator
// would not have.
func Rehash(v *bitvec.BitVector, windowSize, windowStep, samples int) (*bitvec.BitVector, error) {
	if windowSize <= 0 || windowStep <= 0 || samples <= 0 {
		return nil, pprlerr.NewConfigError("rehash: window_size, window_step, and samples must all be > 0")
	}

	acc := bitvec.New(v.Len())
	for start := 0; start+windowSize <= v.Len(); start += windowStep {
		seed := windowSeed(v, start, windowSize)
		r := rng.New(seed)
		for _, pos := range rng.SamplePositions(r, v.Len(), samples) {
			acc.Set(pos)
		}
	}
	return v.Or(acc), nil
}

// windowSeed packs a window's bits into a 64-bit big-endian integer seed.
// Windows longer than 64 bits are folded by XOR-ing successive 64-bit
// chunks, so every bit in the window contributes to the seed.
func windowSeed(v *bitvec.BitVector, start, size int) uint64 {
	var buf [8]byte
	var seed uint64
	bitIdx := 0
	for bitIdx < size {
		chunk := size - bitIdx
		if chunk > 64 {
			chunk = 64
		}
		for i := range buf {
			buf[i] = 0
		}
		for b := 0; b < chunk; b++ {
			if v.Test(start + bitIdx + b) {
				byteIdx := b / 8
				buf[byteIdx] |= 0x80 >> uint(b%8)
			}
		}
		// Right-align the chunk so a window shorter than 64 bits yields its
		// own big-endian integer value rather than that value shifted left.
		word := binary.BigEndian.Uint64(buf[:]) >> uint(64-chunk)
		seed ^= bits.RotateLeft64(word, bitIdx%64)
		bitIdx += chunk
	}
	return seed
}
