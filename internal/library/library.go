// Package library defines the read-only inputs the planning engine consumes:
// the user's artists and albums, aggregate profile data produced by the
// library analyzer, and the per-item style context with its inverted index.
package library

import (
	"sort"
	"time"
)

// Artist is one artist in the user's library.
type Artist struct {
	ID         int64
	Name       string
	Added      time.Time
	AlbumCount int
	Styles     []string // canonical style slugs from the analyzer
}

// Album is one album in the user's library.
type Album struct {
	ID         int64
	ArtistID   int64
	ArtistName string
	Title      string
	Year       int
	Added      time.Time
	Styles     []string
}

// Profile carries aggregate counts and analyzer hints about the library.
type Profile struct {
	TotalArtists int
	TotalAlbums  int
	TotalTracks  int

	// DominantStyles is the analyzer's ranked guess at the library's
	// strongest styles, used as a selection fallback in Similar mode.
	DominantStyles []string
}

// StyleContext holds per-item style slugs, aggregate coverage per slug, and
// an inverted slug-to-ids index. It is built once by the analyzer (or by
// BuildStyleContext for snapshots and tests) and never mutated by the engine.
type StyleContext struct {
	ArtistStyles map[int64][]string
	AlbumStyles  map[int64][]string

	// Coverage counts how many artists carry each slug.
	Coverage map[string]int

	ArtistIndex map[string][]int64
	AlbumIndex  map[string][]int64
}

// ArtistIDsFor returns the union of artist ids indexed under any of slugs.
func (c *StyleContext) ArtistIDsFor(slugs []string) map[int64]struct{} {
	return union(c.ArtistIndex, slugs)
}

// AlbumIDsFor returns the union of album ids indexed under any of slugs.
func (c *StyleContext) AlbumIDsFor(slugs []string) map[int64]struct{} {
	return union(c.AlbumIndex, slugs)
}

func union(index map[string][]int64, slugs []string) map[int64]struct{} {
	ids := make(map[int64]struct{})
	for _, slug := range slugs {
		for _, id := range index[slug] {
			ids[id] = struct{}{}
		}
	}
	return ids
}

// BuildStyleContext derives a StyleContext from artist and album style tags.
// Production code receives the analyzer's context directly; this constructor
// serves snapshot loading and tests.
func BuildStyleContext(artists []Artist, albums []Album) *StyleContext {
	ctx := &StyleContext{
		ArtistStyles: make(map[int64][]string, len(artists)),
		AlbumStyles:  make(map[int64][]string, len(albums)),
		Coverage:     make(map[string]int),
		ArtistIndex:  make(map[string][]int64),
		AlbumIndex:   make(map[string][]int64),
	}

	for _, a := range artists {
		ctx.ArtistStyles[a.ID] = a.Styles
		for _, slug := range dedupe(a.Styles) {
			ctx.Coverage[slug]++
			ctx.ArtistIndex[slug] = append(ctx.ArtistIndex[slug], a.ID)
		}
	}
	for _, al := range albums {
		ctx.AlbumStyles[al.ID] = al.Styles
		for _, slug := range dedupe(al.Styles) {
			ctx.AlbumIndex[slug] = append(ctx.AlbumIndex[slug], al.ID)
		}
	}

	for slug := range ctx.ArtistIndex {
		sortIDs(ctx.ArtistIndex[slug])
	}
	for slug := range ctx.AlbumIndex {
		sortIDs(ctx.AlbumIndex[slug])
	}

	return ctx
}

func dedupe(slugs []string) []string {
	seen := make(map[string]struct{}, len(slugs))
	out := slugs[:0:0]
	for _, s := range slugs {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func sortIDs(ids []int64) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
