// Package hashing provides the deterministic hash underlying every
// fingerprint and cache key in the planning engine.
package hashing

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"sort"
	"strings"
)

const (
	// maxComponents bounds the number of hashed components so pathological
	// callers cannot turn a fingerprint into an unbounded sort+hash.
	maxComponents = 4096

	// maxComponentBytes bounds each individual component.
	maxComponentBytes = 24576

	// separator is the ASCII unit separator, chosen because it never occurs
	// in slugs, model keys, or library names.
	separator = "\x1f"
)

// Result is the output of Compute.
type Result struct {
	// Seed is a non-negative 31-bit value derived from the digest, suitable
	// for seeding math/rand.
	Seed int32

	// HashPrefix is the first 8 hex characters of FullHash.
	HashPrefix string

	// FullHash is the full SHA-256 digest in lowercase hex.
	FullHash string

	// Count is the number of components actually hashed after the guards.
	Count int
}

// Compute hashes an unordered set of string components into a stable result.
// Components are sorted in ordinal byte order before hashing, so callers get
// the same result regardless of the order they supply components in. That
// property is load-bearing: fingerprints must not depend on map or library
// iteration order.
func Compute(components []string) Result {
	kept := make([]string, 0, len(components))
	for _, c := range components {
		if len(kept) == maxComponents {
			break
		}
		if len(c) > maxComponentBytes {
			c = c[:maxComponentBytes]
		}
		kept = append(kept, c)
	}
	sort.Strings(kept)

	digest := sha256.Sum256([]byte(strings.Join(kept, separator)))
	full := hex.EncodeToString(digest[:])

	seed := int32(binary.BigEndian.Uint32(digest[:4]) & 0x7fffffff)

	return Result{
		Seed:       seed,
		HashPrefix: full[:8],
		FullHash:   full,
		Count:      len(kept),
	}
}
