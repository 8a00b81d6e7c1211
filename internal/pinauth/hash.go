package pinauth

import (
	"fmt"
	"hash/fnv"
)

// FNV-1a 32-bit parameters.
const (
	// HashOffsetBasis is the initial accumulator value, and the digest of
	// an empty input.
	HashOffsetBasis uint32 = 0x811C9DC5

	// HashPrime is multiplied into the accumulator after each byte.
	HashPrime uint32 = 0x01000193
)

// Hash returns the 32-bit FNV-1a digest of b.
// Multiplication wraps at 32 bits.
func Hash(b []byte) uint32 {
	h := fnv.New32a()
	h.Write(b) //nolint:errcheck // hash.Hash never returns an error
	return h.Sum32()
}

// FormatDigest renders a digest the way the serial log prints it: 0x plus
// eight upper-case hex digits.
func FormatDigest(digest uint32) string {
	return fmt.Sprintf("0x%08X", digest)
}
