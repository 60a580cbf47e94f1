package sampling

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RicherTunes/brainarr/internal/config"
	"github.com/RicherTunes/brainarr/internal/library"
	"github.com/RicherTunes/brainarr/internal/styles"
)

var testNow = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func testCatalog() styles.Catalog {
	return styles.NewStaticCatalog(
		[]styles.Entry{
			{Name: "Rock", Slug: "rock"},
			{Name: "Jazz", Slug: "jazz"},
			{Name: "Hard Rock", Slug: "hard-rock"},
		},
		map[string][]styles.ScoredSlug{
			"rock": {{Slug: "hard-rock", Similarity: 0.85}},
		},
	)
}

func selectionFor(t *testing.T, set *config.Settings, styleCtx *library.StyleContext) *styles.Selection {
	t.Helper()
	return styles.NewSelector(testCatalog(), nil).Build(nil, set, styleCtx)
}

func mkArtist(id int64, name string, daysAgo int, albums int, slugs ...string) library.Artist {
	return library.Artist{
		ID:         id,
		Name:       name,
		Added:      testNow.AddDate(0, 0, -daysAgo),
		AlbumCount: albums,
		Styles:     slugs,
	}
}

func mkAlbum(id, artistID int64, artist, title string, daysAgo, year int, slugs ...string) library.Album {
	return library.Album{
		ID:         id,
		ArtistID:   artistID,
		ArtistName: artist,
		Title:      title,
		Year:       year,
		Added:      testNow.AddDate(0, 0, -daysAgo),
		Styles:     slugs,
	}
}

func baseInput(t *testing.T, set *config.Settings, artists []library.Artist, albums []library.Album) Input {
	t.Helper()
	styleCtx := library.BuildStyleContext(artists, albums)
	return Input{
		Artists:       artists,
		Albums:        albums,
		StyleContext:  styleCtx,
		Selection:     selectionFor(t, set, styleCtx),
		Settings:      set,
		Shape:         config.Shape{Top: 50, Recent: 30, Random: 20},
		TargetArtists: 10,
		TargetAlbums:  10,
		Seed:          42,
		Now:           testNow,
	}
}

func TestSample_StyleFilterExcludesNonMatching(t *testing.T) {
	set := config.Defaults()
	set.StyleFilters = []string{"rock"}

	artists := []library.Artist{
		mkArtist(1, "Asteroid Drive", 10, 3, "rock"),
		mkArtist(2, "Basalt Choir", 400, 1, "rock"),
		mkArtist(3, "Cool Quartet", 5, 6, "jazz"),
	}
	in := baseInput(t, set, artists, nil)

	sample, stats, err := NewSampler(nil).Sample(context.Background(), in)
	require.NoError(t, err)

	ids := artistIDs(sample)
	assert.ElementsMatch(t, []int64{1, 2}, ids)
	assert.Equal(t, map[string]int{"rock": 2}, stats.Counts())
	assert.True(t, stats.Sparse())
}

func TestSample_NoFilterTakesEverything(t *testing.T) {
	set := config.Defaults()
	set.DiscoveryMode = config.ModeAdjacent // no filters, no coverage inference path

	artists := []library.Artist{
		mkArtist(1, "Asteroid Drive", 10, 3, "rock"),
		mkArtist(2, "Cool Quartet", 5, 6, "jazz"),
	}
	styleCtx := &library.StyleContext{} // empty coverage: nothing to infer
	in := Input{
		Artists:       artists,
		StyleContext:  styleCtx,
		Selection:     selectionFor(t, set, styleCtx),
		Settings:      set,
		Shape:         config.ShapeFor(config.ModeAdjacent),
		TargetArtists: 10,
		TargetAlbums:  10,
		Seed:          1,
		Now:           testNow,
	}

	sample, stats, err := NewSampler(nil).Sample(context.Background(), in)
	require.NoError(t, err)
	assert.Len(t, sample.Artists, 2)
	assert.Zero(t, stats.Total())
}

func TestSample_DeterministicForSeed(t *testing.T) {
	set := config.Defaults()
	set.StyleFilters = []string{"rock"}

	artists := make([]library.Artist, 0, 40)
	for i := int64(1); i <= 40; i++ {
		artists = append(artists, mkArtist(i, fmt.Sprintf("Artist %02d", i), int(i)*3, int(i%7), "rock"))
	}
	in := baseInput(t, set, artists, nil)
	in.TargetArtists = 8

	first, _, err := NewSampler(nil).Sample(context.Background(), in)
	require.NoError(t, err)
	second, _, err := NewSampler(nil).Sample(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, artistIDs(first), artistIDs(second))
	assert.Len(t, first.Artists, 8)
}

func TestSample_OrderIndependentMembership(t *testing.T) {
	set := config.Defaults()
	set.StyleFilters = []string{"rock"}

	var forward, backward []library.Artist
	for i := int64(1); i <= 30; i++ {
		forward = append(forward, mkArtist(i, fmt.Sprintf("Artist %02d", i), int(i)*2, int(i%5), "rock"))
	}
	for i := len(forward) - 1; i >= 0; i-- {
		backward = append(backward, forward[i])
	}

	inFwd := baseInput(t, set, forward, nil)
	inFwd.TargetArtists = 6
	inBwd := baseInput(t, set, backward, nil)
	inBwd.TargetArtists = 6

	a, _, err := NewSampler(nil).Sample(context.Background(), inFwd)
	require.NoError(t, err)
	b, _, err := NewSampler(nil).Sample(context.Background(), inBwd)
	require.NoError(t, err)

	assert.ElementsMatch(t, artistIDs(a), artistIDs(b))
}

func TestSample_SynthesizesArtistForOrphanAlbum(t *testing.T) {
	set := config.Defaults()
	set.StyleFilters = []string{"rock"}

	// Artist 9 plays jazz and is filtered out, but its rock album matches.
	artists := []library.Artist{
		mkArtist(1, "Asteroid Drive", 10, 3, "rock"),
		mkArtist(9, "Crossover Nine", 10, 2, "jazz"),
	}
	albums := []library.Album{
		mkAlbum(100, 9, "Crossover Nine", "Voltage", 20, 2021, "rock"),
	}
	in := baseInput(t, set, artists, albums)

	sample, _, err := NewSampler(nil).Sample(context.Background(), in)
	require.NoError(t, err)

	require.Len(t, sample.Albums, 1)
	var wrapper *SampledArtist
	for i := range sample.Artists {
		if sample.Artists[i].ID == 9 {
			wrapper = &sample.Artists[i]
		}
	}
	require.NotNil(t, wrapper, "expected synthesized wrapper for artist 9")
	assert.True(t, wrapper.Synthesized)
	assert.InDelta(t, 0.25, wrapper.Weight, 1e-9)
	require.Len(t, wrapper.Albums, 1)
	assert.Equal(t, int64(100), wrapper.Albums[0].ID)
}

func TestSample_AlbumsGroupUnderSampledArtist(t *testing.T) {
	set := config.Defaults()
	set.StyleFilters = []string{"rock"}

	artists := []library.Artist{mkArtist(1, "Asteroid Drive", 10, 3, "rock")}
	albums := []library.Album{
		mkAlbum(100, 1, "Asteroid Drive", "First Light", 30, 2020, "rock"),
		mkAlbum(101, 1, "Asteroid Drive", "Afterburn", 10, 2023, "rock"),
	}
	in := baseInput(t, set, artists, albums)

	sample, _, err := NewSampler(nil).Sample(context.Background(), in)
	require.NoError(t, err)

	require.Len(t, sample.Artists, 1)
	assert.False(t, sample.Artists[0].Synthesized)
	assert.Len(t, sample.Artists[0].Albums, 2)
}

func TestSample_RelaxedPoolPreferredWhenBounded(t *testing.T) {
	set := config.Defaults()
	set.StyleFilters = []string{"rock"}
	set.RelaxStyleMatching = true

	artists := []library.Artist{
		mkArtist(1, "Asteroid Drive", 10, 3, "rock"),
		mkArtist(2, "Hammer Veil", 15, 2, "hard-rock"),
	}
	in := baseInput(t, set, artists, nil)

	sample, _, err := NewSampler(nil).Sample(context.Background(), in)
	require.NoError(t, err)

	assert.ElementsMatch(t, []int64{1, 2}, artistIDs(sample))
}

func TestSample_RelaxedPoolRejectedWhenInflated(t *testing.T) {
	set := config.Defaults()
	set.StyleFilters = []string{"rock"}
	set.RelaxStyleMatching = true

	// One strict rock artist, five adjacent ones: 6 > 1 x maxRelaxedInflation,
	// so the sampler falls back to the strict pool.
	artists := []library.Artist{mkArtist(1, "Asteroid Drive", 10, 3, "rock")}
	for i := int64(2); i <= 6; i++ {
		artists = append(artists, mkArtist(i, fmt.Sprintf("Adjacent %d", i), 20, 1, "hard-rock"))
	}
	in := baseInput(t, set, artists, nil)

	sample, _, err := NewSampler(nil).Sample(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, []int64{1}, artistIDs(sample))
}

func TestSample_EmptyCandidatePool(t *testing.T) {
	set := config.Defaults()
	set.StyleFilters = []string{"rock"}

	artists := []library.Artist{mkArtist(3, "Cool Quartet", 5, 6, "jazz")}
	in := baseInput(t, set, artists, nil)

	sample, stats, err := NewSampler(nil).Sample(context.Background(), in)
	require.NoError(t, err)
	assert.Empty(t, sample.Artists)
	assert.Empty(t, sample.Albums)
	assert.Zero(t, stats.Total())
}

func TestSample_Cancellation(t *testing.T) {
	set := config.Defaults()
	in := baseInput(t, set, []library.Artist{mkArtist(1, "Asteroid Drive", 10, 3, "rock")}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewSampler(nil).Sample(ctx, in)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStratify_RespectsTarget(t *testing.T) {
	cands := make([]candidate, 0, 50)
	for i := int64(1); i <= 50; i++ {
		cands = append(cands, candidate{
			id:    i,
			name:  fmt.Sprintf("c%02d", i),
			added: testNow.AddDate(0, 0, -int(i)),
			score: float64(i%10) / 10,
		})
	}

	chosen := stratify(cands, config.Shape{Top: 50, Recent: 30, Random: 20}, 10, newTestRand())
	assert.Len(t, chosen, 10)

	seen := map[int64]bool{}
	for _, c := range chosen {
		assert.False(t, seen[c.id], "duplicate candidate %d", c.id)
		seen[c.id] = true
	}
}

func TestStratify_SmallPoolReturnsAll(t *testing.T) {
	cands := []candidate{{id: 1, name: "a"}, {id: 2, name: "b"}}
	chosen := stratify(cands, config.Shape{Top: 50, Recent: 30, Random: 20}, 10, newTestRand())
	assert.Len(t, chosen, 2)
}

func TestArtistWeight(t *testing.T) {
	tests := []struct {
		name   string
		score  float64
		added  time.Time
		albums int
		want   float64
	}{
		{"full everything", 1.0, testNow.AddDate(0, 0, -10), 5, 1.0},
		{"score only", 1.0, testNow.AddDate(-2, 0, 0), 0, 0.5},
		{"old unproductive non-match", 0, testNow.AddDate(-2, 0, 0), 0, 0},
		{"productivity clamped", 0, testNow.AddDate(-2, 0, 0), 50, 0.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, artistWeight(tt.score, tt.added, tt.albums, testNow), 1e-9)
		})
	}
}

func newTestRand() *rand.Rand {
	return rand.New(rand.NewSource(7))
}

func artistIDs(s *LibrarySample) []int64 {
	ids := make([]int64, 0, len(s.Artists))
	for _, a := range s.Artists {
		ids = append(ids, a.ID)
	}
	return ids
}
