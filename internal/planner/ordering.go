package planner

import (
	"sort"

	"github.com/RicherTunes/brainarr/internal/sampling"
)

// orderSample applies the deterministic ordering pass over a fresh sample so
// plans render identically regardless of how tiers interleaved during
// sampling. It reports whether anything actually moved.
func orderSample(s *sampling.LibrarySample) bool {
	if s == nil {
		return false
	}

	before := orderWitness(s)

	sort.SliceStable(s.Artists, func(i, j int) bool {
		a, b := s.Artists[i], s.Artists[j]
		if a.MatchScore != b.MatchScore {
			return a.MatchScore > b.MatchScore
		}
		if len(a.Albums) != len(b.Albums) {
			return len(a.Albums) > len(b.Albums)
		}
		if !a.Added.Equal(b.Added) {
			return a.Added.After(b.Added)
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})

	for i := range s.Artists {
		albums := s.Artists[i].Albums
		sort.SliceStable(albums, func(x, y int) bool {
			a, b := albums[x], albums[y]
			if !a.Added.Equal(b.Added) {
				return a.Added.After(b.Added)
			}
			if a.Title != b.Title {
				return a.Title < b.Title
			}
			return a.ID < b.ID
		})
	}

	sort.SliceStable(s.Albums, func(i, j int) bool {
		a, b := s.Albums[i], s.Albums[j]
		if a.MatchScore != b.MatchScore {
			return a.MatchScore > b.MatchScore
		}
		if !a.Added.Equal(b.Added) {
			return a.Added.After(b.Added)
		}
		if a.Year != b.Year {
			return a.Year > b.Year
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return a.ID < b.ID
	})

	return orderWitness(s) != before
}

// orderWitness flattens the sample's id ordering into a comparable string.
func orderWitness(s *sampling.LibrarySample) string {
	ids := make([]byte, 0, 16*(len(s.Artists)+len(s.Albums)))
	push := func(id int64) {
		for shift := 0; shift < 64; shift += 8 {
			ids = append(ids, byte(id>>shift))
		}
	}
	for _, a := range s.Artists {
		push(a.ID)
		for _, al := range a.Albums {
			push(al.ID)
		}
	}
	for _, al := range s.Albums {
		push(al.ID)
	}
	return string(ids)
}
