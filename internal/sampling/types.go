// Package sampling filters the library against a style selection and draws a
// bounded, stratified, seed-deterministic sample for the prompt renderer.
package sampling

import (
	"time"
)

// SampledArtist is one artist chosen for the prompt.
type SampledArtist struct {
	ID            int64
	Name          string
	MatchedStyles []string
	MatchScore    float64
	Added         time.Time
	Weight        float64

	// Synthesized marks minimal wrappers created only so a sampled album has
	// an artist to group under.
	Synthesized bool

	Albums []SampledAlbum
}

// SampledAlbum is one album chosen for the prompt.
type SampledAlbum struct {
	ID            int64
	ArtistID      int64
	ArtistName    string
	Title         string
	MatchedStyles []string
	MatchScore    float64
	Added         time.Time
	Year          int
}

// LibrarySample is the sampler's output.
//
// Invariant: every album's ArtistID has a corresponding entry in Artists;
// the sampler synthesizes a wrapper when the album's own artist was not
// sampled.
type LibrarySample struct {
	Artists []SampledArtist
	Albums  []SampledAlbum
}

// Clone deep-copies the sample.
func (s *LibrarySample) Clone() *LibrarySample {
	if s == nil {
		return nil
	}
	out := &LibrarySample{
		Artists: make([]SampledArtist, len(s.Artists)),
		Albums:  append([]SampledAlbum(nil), s.Albums...),
	}
	for i, a := range s.Artists {
		a.MatchedStyles = append([]string(nil), a.MatchedStyles...)
		a.Albums = append([]SampledAlbum(nil), a.Albums...)
		out.Artists[i] = a
	}
	for i := range out.Albums {
		out.Albums[i].MatchedStyles = append([]string(nil), out.Albums[i].MatchedStyles...)
	}
	return out
}
