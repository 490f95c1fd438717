//go:build amd64

package bitvec

import (
	"math/bits"

	"golang.org/x/sys/cpu"
)

// init selects the native-instruction popcount path when the CPU advertises
// POPCNT support, the way internal/simd/simd_amd64.go selects scanImpl based
// on cpu.X86.HasAVX512F/HasAVX2 — falling back to the portable table lookup
// otherwise.
func init() {
	if cpu.X86.HasPOPCNT {
		popcountImpl = popcountNative
	}
}

// popcountNative counts set bits 8 bytes at a time via math/bits.OnesCount64,
// which the Go compiler lowers to a single POPCNT instruction on amd64 when
// the CPU supports it, with a byte-wise tail for the remainder.
func popcountNative(b []byte) int {
	n := 0
	i := 0
	for ; i+8 <= len(b); i += 8 {
		n += bits.OnesCount64(
			uint64(b[i]) | uint64(b[i+1])<<8 | uint64(b[i+2])<<16 | uint64(b[i+3])<<24 |
				uint64(b[i+4])<<32 | uint64(b[i+5])<<40 | uint64(b[i+6])<<48 | uint64(b[i+7])<<56,
		)
	}
	for ; i < len(b); i++ {
		n += bits.OnesCount8(b[i])
	}
	return n
}
