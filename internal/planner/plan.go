// Package planner sequences style selection, sampling, signature
// composition, and the plan cache into a final immutable Plan.
package planner

import (
	"fmt"
	"time"

	"github.com/RicherTunes/brainarr/internal/sampling"
	"github.com/RicherTunes/brainarr/internal/styles"
)

// CompressionState is the shrinkable set of display caps the renderer uses
// to fit a plan into its token budget. The planner seeds it; a downstream
// trim loop may shrink it, which is why cached and live copies never alias.
type CompressionState struct {
	MaxArtists        int
	MaxAlbumGroups    int
	MaxAlbumsPerGroup int

	Compressed bool
	Trimmed    bool
}

// Clone copies the state.
func (c *CompressionState) Clone() *CompressionState {
	if c == nil {
		return nil
	}
	out := *c
	return &out
}

// Identity returns the stable string used in fingerprints and cache keys.
func (c *CompressionState) Identity() string {
	return fmt.Sprintf("a%d-g%d-pg%d", c.MaxArtists, c.MaxAlbumGroups, c.MaxAlbumsPerGroup)
}

// DefaultCompression sizes the caps from the prompt token budget. Roughly
// one artist line per 50 tokens and one album group per 80, inside fixed
// floors and ceilings.
func DefaultCompression(targetTokens int) *CompressionState {
	return &CompressionState{
		MaxArtists:        clampInt(targetTokens/50, 8, 50),
		MaxAlbumGroups:    clampInt(targetTokens/80, 6, 30),
		MaxAlbumsPerGroup: 6,
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Plan is the final product of a planning pass. It is never mutated after
// construction; reuse goes through Clone.
type Plan struct {
	ID string

	Sample *sampling.LibrarySample

	// StylesUsed are the display entries for the strict selection.
	StylesUsed      []styles.Entry
	AdjacentStyles  []styles.Entry
	SelectedSlugs   []string
	ExpandedSlugs   []string
	Coverage        map[string]int
	MatchedCounts   map[string]int
	Compression     *CompressionState

	// SampleFingerprint hashes only the sampled content (names and titles),
	// distinct from the request fingerprint, for downstream drift detection.
	SampleFingerprint  string
	Seed               int64
	LibraryFingerprint string
	CacheKey           string

	GeneratedAt time.Time
	FromCache   bool

	Sparse             bool
	Relaxed            bool
	TrimmedStyles      []string
	InferredStyleSlugs []string

	// Reordered records whether the deterministic ordering pass actually
	// changed anything.
	Reordered bool
}

// Clone deep-copies the plan so cached and returned copies never alias
// mutable state.
func (p *Plan) Clone() *Plan {
	if p == nil {
		return nil
	}
	out := *p
	out.Sample = p.Sample.Clone()
	out.Compression = p.Compression.Clone()
	out.StylesUsed = append([]styles.Entry(nil), p.StylesUsed...)
	out.AdjacentStyles = append([]styles.Entry(nil), p.AdjacentStyles...)
	out.SelectedSlugs = append([]string(nil), p.SelectedSlugs...)
	out.ExpandedSlugs = append([]string(nil), p.ExpandedSlugs...)
	out.TrimmedStyles = append([]string(nil), p.TrimmedStyles...)
	out.InferredStyleSlugs = append([]string(nil), p.InferredStyleSlugs...)
	out.Coverage = copyCounts(p.Coverage)
	out.MatchedCounts = copyCounts(p.MatchedCounts)
	return &out
}

func copyCounts(in map[string]int) map[string]int {
	if in == nil {
		return nil
	}
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
