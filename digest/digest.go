// Package digest computes the keyed or unkeyed digest stream a token is
// hashed into before hash-scheme position derivation (spec §4.2). An ordered
// list of digest algorithms is concatenated into one byte stream; additional
// algorithms extend the stream. The schemes in package hashscheme read at
// most its first 12 bytes (three 32-bit seeds); the random-hash scheme
// seeds its generator from the first 4 bytes only.
package digest

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
)

// Algorithm names one of the supported digest functions.
type Algorithm string

const (
	MD5    Algorithm = "md5"
	SHA1   Algorithm = "sha1"
	SHA256 Algorithm = "sha256"
	SHA512 Algorithm = "sha512"
)

// newHash returns an unkeyed hash.Hash for the given algorithm.
func newHash(a Algorithm) (func() hash.Hash, error) {
	switch a {
	case MD5:
		return md5.New, nil
	case SHA1:
		return sha1.New, nil
	case SHA256:
		return sha256.New, nil
	case SHA512:
		return sha512.New, nil
	default:
		return nil, fmt.Errorf("digest: unsupported algorithm %q", a)
	}
}

// Config describes how a token is digested: an ordered list of algorithms
// and an optional shared key. When Key is non-nil, every algorithm in the
// list is used in HMAC mode with that key; otherwise each runs unkeyed.
type Config struct {
	Algorithms []Algorithm
	Key        []byte
}

// Validate checks that the configuration names at least one supported
// algorithm. Validation runs once, before any entity is processed.
func (c Config) Validate() error {
	if len(c.Algorithms) == 0 {
		return fmt.Errorf("digest: at least one algorithm is required")
	}
	for _, a := range c.Algorithms {
		if _, err := newHash(a); err != nil {
			return err
		}
	}
	return nil
}

// Stream digests data with every configured algorithm in order and returns
// the concatenation of their outputs. Reordering Algorithms changes the
// result: this concatenation order is part of the wire contract (spec §4.2).
func (c Config) Stream(data []byte) ([]byte, error) {
	out := make([]byte, 0, 64*len(c.Algorithms))
	for _, alg := range c.Algorithms {
		newFn, err := newHash(alg)
		if err != nil {
			return nil, err
		}

		var h hash.Hash
		if c.Key != nil {
			h = hmac.New(newFn, c.Key)
		} else {
			h = newFn()
		}
		h.Write(data)
		out = h.Sum(out)
	}
	return out, nil
}

// ExtractU32LE reads 32-bit little-endian integers from the start of a
// digest stream. n values are returned; the stream must contain at least
// 4*n bytes (callers size Algorithms to guarantee this for the scheme and
// k they configured).
func ExtractU32LE(stream []byte, n int) ([]uint32, error) {
	if len(stream) < 4*n {
		return nil, fmt.Errorf("digest: stream has %d bytes, need %d for %d u32 seeds", len(stream), 4*n, n)
	}
	out := make([]uint32, n)
	for i := 0; i < n; i++ {
		b := stream[i*4 : i*4+4]
		out[i] = uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	}
	return out, nil
}
