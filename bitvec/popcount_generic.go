//go:build !amd64

package bitvec

// init keeps the portable table-lookup path on non-amd64 platforms, the way
// internal/simd/simd_generic.go keeps scanSeparatorsGeneric as scanImpl
// where no CPU-feature-gated fast path exists.
func init() {
	popcountImpl = popcountTableLookup
}
