package sampling

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/RicherTunes/brainarr/internal/config"
	"github.com/RicherTunes/brainarr/internal/library"
	"github.com/RicherTunes/brainarr/internal/styles"
)

const (
	// maxRelaxedInflation caps how much larger the relaxed candidate pool may
	// be before the sampler falls back to the strict pool.
	maxRelaxedInflation = 3.0

	// synthesizedArtistWeight is the weight of artist wrappers created only
	// for album grouping.
	synthesizedArtistWeight = 0.25

	// recencyWindow is how far back an addition still counts as recent for
	// the weight formula.
	recencyWindow = 180 * 24 * time.Hour

	// randomPoolFactor bounds the random tier's draw pool relative to its
	// slot count.
	randomPoolFactor = 2
)

// Input carries everything one sampling pass needs. The planner resolves the
// effective shape and target sizes before calling the sampler.
type Input struct {
	Artists      []library.Artist
	Albums       []library.Album
	StyleContext *library.StyleContext
	Selection    *styles.Selection
	Settings     *config.Settings

	Shape         config.Shape
	TargetArtists int
	TargetAlbums  int

	Seed int64
	Now  time.Time
}

// Sampler draws stratified library samples.
type Sampler struct {
	log *zap.SugaredLogger
}

// NewSampler creates a Sampler.
func NewSampler(log *zap.SugaredLogger) *Sampler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Sampler{log: log}
}

// Sample filters and stratified-samples artists and albums. Cancellation is
// checked once at entry; the bounded tier quotas keep the rest of the pass
// cheap even for very large libraries. The returned MatchStats accumulator
// tallies every matching candidate, sampled or not.
func (s *Sampler) Sample(ctx context.Context, in Input) (*LibrarySample, *styles.MatchStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	matcher := styles.NewMatcher(in.Selection)
	stats := styles.NewMatchStats()
	rng := rand.New(rand.NewSource(in.Seed))

	artistCands := s.artistCandidates(in, matcher, stats)
	chosenArtists := stratify(artistCands, in.Shape, in.TargetArtists, rng)

	albumCands := s.albumCandidates(in, matcher, stats)
	chosenAlbums := stratify(albumCands, in.Shape, in.TargetAlbums, rng)

	sample := s.assemble(in, chosenArtists, chosenAlbums)

	s.log.Debugw("library sampled",
		"artist_candidates", len(artistCands),
		"album_candidates", len(albumCands),
		"artists", len(sample.Artists),
		"albums", len(sample.Albums),
		"matched_total", stats.Total())

	return sample, stats, nil
}

// candidate is the category-neutral view stratify works on. idx points back
// into the input slice the candidate came from.
type candidate struct {
	idx          int
	id           int64
	name         string
	added        time.Time
	score        float64
	matched      []string
	productivity int // library album count for artists, zero for albums
}

func (s *Sampler) artistCandidates(in Input, matcher styles.Matcher, stats *styles.MatchStats) []candidate {
	filtering := in.Selection.HasStyles()
	pool := s.narrowArtists(in)

	var cands []candidate
	for i, artist := range in.Artists {
		if pool != nil {
			if _, ok := pool[artist.ID]; !ok {
				continue
			}
		}
		var matched []string
		var score float64
		if filtering {
			itemSlugs := artist.Styles
			if in.StyleContext != nil {
				if slugs, ok := in.StyleContext.ArtistStyles[artist.ID]; ok {
					itemSlugs = slugs
				}
			}
			matched, score = matcher.Match(itemSlugs, in.Selection)
			if len(matched) == 0 {
				continue
			}
			stats.Add(matched)
		}
		cands = append(cands, candidate{
			idx:          i,
			id:           artist.ID,
			name:         artist.Name,
			added:        artist.Added,
			score:        score,
			matched:      matched,
			productivity: artist.AlbumCount,
		})
	}
	return cands
}

func (s *Sampler) albumCandidates(in Input, matcher styles.Matcher, stats *styles.MatchStats) []candidate {
	filtering := in.Selection.HasStyles()
	pool := s.narrowAlbums(in)

	var cands []candidate
	for i, album := range in.Albums {
		if pool != nil {
			if _, ok := pool[album.ID]; !ok {
				continue
			}
		}
		var matched []string
		var score float64
		if filtering {
			itemSlugs := album.Styles
			if in.StyleContext != nil {
				if slugs, ok := in.StyleContext.AlbumStyles[album.ID]; ok {
					itemSlugs = slugs
				}
			}
			matched, score = matcher.Match(itemSlugs, in.Selection)
			if len(matched) == 0 {
				continue
			}
			stats.Add(matched)
		}
		cands = append(cands, candidate{
			idx:     i,
			id:      album.ID,
			name:    album.Title,
			added:   album.Added,
			score:   score,
			matched: matched,
		})
	}
	return cands
}

// narrowArtists returns the candidate id pool from the inverted style index,
// or nil when style filtering is inactive or no index is available.
func (s *Sampler) narrowArtists(in Input) map[int64]struct{} {
	if !in.Selection.HasStyles() || in.StyleContext == nil {
		return nil
	}
	strict := in.StyleContext.ArtistIDsFor(in.Selection.SelectedSlugs)
	if !in.Selection.Relaxed {
		return strict
	}
	relaxed := in.StyleContext.ArtistIDsFor(in.Selection.ExpandedSlugs)
	return preferRelaxed(strict, relaxed)
}

func (s *Sampler) narrowAlbums(in Input) map[int64]struct{} {
	if !in.Selection.HasStyles() || in.StyleContext == nil {
		return nil
	}
	strict := in.StyleContext.AlbumIDsFor(in.Selection.SelectedSlugs)
	if !in.Selection.Relaxed {
		return strict
	}
	relaxed := in.StyleContext.AlbumIDsFor(in.Selection.ExpandedSlugs)
	return preferRelaxed(strict, relaxed)
}

// preferRelaxed picks the relaxed pool when it is genuinely larger but has
// not inflated beyond the strict pool by more than maxRelaxedInflation.
// An empty strict pool always yields to the relaxed one.
func preferRelaxed(strict, relaxed map[int64]struct{}) map[int64]struct{} {
	if len(relaxed) <= len(strict) {
		return strict
	}
	if len(strict) > 0 && float64(len(relaxed)) > float64(len(strict))*maxRelaxedInflation {
		return strict
	}
	return relaxed
}

// stratify fills the target quota from three tiers: top (by score), recent
// (by added date), and random (seeded draw from a bounded pool).
func stratify(cands []candidate, shape config.Shape, target int, rng *rand.Rand) []candidate {
	if target <= 0 || len(cands) == 0 {
		return nil
	}

	ordered := append([]candidate(nil), cands...)
	sortByScore(ordered)

	if len(ordered) <= target {
		return ordered
	}

	chosen := make([]candidate, 0, target)
	taken := make(map[int64]struct{}, target)
	take := func(c candidate) {
		chosen = append(chosen, c)
		taken[c.id] = struct{}{}
	}

	topN := target * shape.Top / 100
	if topN < 1 {
		topN = 1
	}
	for _, c := range ordered {
		if len(chosen) == topN {
			break
		}
		take(c)
	}

	// Recent tier fills its quota, or everything left if the random tier is
	// disabled.
	recentQuota := target * shape.Recent / 100
	if shape.Random == 0 {
		recentQuota = target - len(chosen)
	}
	if recentQuota > target-len(chosen) {
		recentQuota = target - len(chosen)
	}
	if recentQuota > 0 {
		byRecency := append([]candidate(nil), ordered...)
		sortByRecency(byRecency)
		for _, c := range byRecency {
			if recentQuota == 0 {
				break
			}
			if _, ok := taken[c.id]; ok {
				continue
			}
			take(c)
			recentQuota--
		}
	}

	slots := target - len(chosen)
	if slots > 0 && shape.Random > 0 {
		var pool []candidate
		for _, c := range ordered {
			if len(pool) == slots*randomPoolFactor {
				break
			}
			if _, ok := taken[c.id]; ok {
				continue
			}
			pool = append(pool, c)
		}
		for slots > 0 && len(pool) > 0 {
			i := rng.Intn(len(pool))
			take(pool[i])
			pool = append(pool[:i], pool[i+1:]...)
			slots--
		}
	}

	return chosen
}

// sortByScore is the top-tier ordering: score, then productivity and
// recency, then name and id for full determinism.
func sortByScore(cands []candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.productivity != b.productivity {
			return a.productivity > b.productivity
		}
		if !a.added.Equal(b.added) {
			return a.added.After(b.added)
		}
		if a.name != b.name {
			return a.name < b.name
		}
		return a.id < b.id
	})
}

// sortByRecency is the recent-tier ordering.
func sortByRecency(cands []candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if !a.added.Equal(b.added) {
			return a.added.After(b.added)
		}
		if a.score != b.score {
			return a.score > b.score
		}
		if a.name != b.name {
			return a.name < b.name
		}
		return a.id < b.id
	})
}

// assemble builds the final sample: sampled artists with weights, sampled
// albums grouped under their artists, and synthesized wrappers for albums
// whose artist was not itself sampled.
func (s *Sampler) assemble(in Input, artists, albums []candidate) *LibrarySample {
	sample := &LibrarySample{}
	byID := make(map[int64]int, len(artists))

	for _, c := range artists {
		artist := in.Artists[c.idx]
		byID[artist.ID] = len(sample.Artists)
		sample.Artists = append(sample.Artists, SampledArtist{
			ID:            artist.ID,
			Name:          artist.Name,
			MatchedStyles: c.matched,
			MatchScore:    c.score,
			Added:         artist.Added,
			Weight:        artistWeight(c.score, artist.Added, artist.AlbumCount, in.Now),
		})
	}

	for _, c := range albums {
		album := in.Albums[c.idx]
		sampled := SampledAlbum{
			ID:            album.ID,
			ArtistID:      album.ArtistID,
			ArtistName:    album.ArtistName,
			Title:         album.Title,
			MatchedStyles: c.matched,
			MatchScore:    c.score,
			Added:         album.Added,
			Year:          album.Year,
		}
		sample.Albums = append(sample.Albums, sampled)

		pos, ok := byID[album.ArtistID]
		if !ok {
			pos = len(sample.Artists)
			byID[album.ArtistID] = pos
			sample.Artists = append(sample.Artists, SampledArtist{
				ID:          album.ArtistID,
				Name:        album.ArtistName,
				Weight:      synthesizedArtistWeight,
				Synthesized: true,
			})
		}
		sample.Artists[pos].Albums = append(sample.Artists[pos].Albums, sampled)
	}

	return sample
}

// artistWeight blends match quality, recency, and productivity into [0, 1].
func artistWeight(score float64, added time.Time, albumCount int, now time.Time) float64 {
	recent := 0.0
	if !added.IsZero() && now.Sub(added) <= recencyWindow {
		recent = 1.0
	}
	productivity := float64(albumCount) / 5.0
	if productivity > 1 {
		productivity = 1
	}
	if productivity < 0 {
		productivity = 0
	}
	w := 0.5*score + 0.3*recent + 0.2*productivity
	if w < 0 {
		return 0
	}
	if w > 1 {
		return 1
	}
	return w
}
