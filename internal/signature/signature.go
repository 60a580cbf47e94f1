// Package signature composes the deterministic (seed, fingerprint, cache key)
// triple from all planning inputs.
//
// The fingerprint identifies "this library + this selection" and groups cache
// entries for bulk invalidation when the library changes. The cache key is a
// richer string that additionally discriminates by request parameters (model,
// token budget, mode), so one library state can hold many independently
// cached plans.
package signature

import (
	"fmt"
	"sort"
	"strings"

	"github.com/RicherTunes/brainarr/internal/config"
	"github.com/RicherTunes/brainarr/internal/hashing"
	"github.com/RicherTunes/brainarr/internal/library"
	"github.com/RicherTunes/brainarr/internal/styles"
)

// schemaVersion invalidates every fingerprint when the fact layout changes.
const schemaVersion = "plan-v2"

// idSampleLimit bounds how many artist/album ids enter the fingerprint.
// A deliberate bound, not a full snapshot: enough to detect library churn
// without hashing a hundred-thousand-item library.
const idSampleLimit = 24

// Signature is the composed triple.
type Signature struct {
	Seed        int64
	Fingerprint string
	CacheKey    string
}

// Input carries everything that discriminates a plan.
type Input struct {
	Profile   *library.Profile
	Artists   []library.Artist
	Albums    []library.Album
	Selection *styles.Selection
	Settings  *config.Settings

	// EffectiveMode is the discovery mode after the planner's empty-selection
	// fallback; it can differ from Settings.DiscoveryMode.
	EffectiveMode config.DiscoveryMode

	ShapeIdentity       string
	CompressionIdentity string
}

// Composer builds signatures. Stateless; safe for concurrent use.
type Composer struct{}

// NewComposer creates a Composer.
func NewComposer() *Composer { return &Composer{} }

// Compose builds the (seed, fingerprint, cache key) triple. The fact list is
// fed through the stable hash, which sorts internally, so callers need not
// worry about ordering here.
func (c *Composer) Compose(in Input) Signature {
	facts := c.facts(in)
	res := hashing.Compute(facts)

	sortedSlugs := append([]string(nil), in.Selection.SelectedSlugs...)
	sort.Strings(sortedSlugs)

	matchMode := "strict"
	if in.Selection.Relaxed {
		matchMode = "relaxed"
	}
	density := "dense"
	if in.Selection.SelectedCoverage() < styles.SparseCoverageMin {
		density = "sparse"
	}
	target := "albums"
	if in.Settings.RecommendArtists {
		target = "artists"
	}

	key := strings.Join([]string{
		res.FullHash,
		in.Settings.ModelKey,
		fmt.Sprintf("cw%d", in.Settings.ContextWindow),
		fmt.Sprintf("tt%d", in.Settings.TargetTokens),
		string(in.EffectiveMode),
		string(in.Settings.SamplingStrategy),
		fmt.Sprintf("recs%d", in.Settings.MaxRecommendations),
		matchMode,
		fmt.Sprintf("cap%d", in.Settings.MaxSelectedStyles),
		fmt.Sprintf("thr%.2f", in.Selection.Threshold),
		in.CompressionIdentity,
		in.ShapeIdentity,
		target,
		density,
		fmt.Sprintf("seed%d", res.Seed),
		strings.Join(sortedSlugs, ","),
	}, "#")

	return Signature{
		Seed:        int64(res.Seed),
		Fingerprint: res.FullHash,
		CacheKey:    key,
	}
}

// facts assembles the fingerprint fact list.
func (c *Composer) facts(in Input) []string {
	facts := []string{
		"schema=" + schemaVersion,
		fmt.Sprintf("total_artists=%d", in.Profile.TotalArtists),
		fmt.Sprintf("total_albums=%d", in.Profile.TotalAlbums),
		fmt.Sprintf("total_tracks=%d", in.Profile.TotalTracks),
		"mode=" + string(in.EffectiveMode),
		"strategy=" + string(in.Settings.SamplingStrategy),
		fmt.Sprintf("relaxed=%t", in.Settings.RelaxStyleMatching),
		fmt.Sprintf("max_recs=%d", in.Settings.MaxRecommendations),
		"shape=" + in.ShapeIdentity,
		fmt.Sprintf("style_cap=%d", in.Settings.MaxSelectedStyles),
		fmt.Sprintf("threshold=%.2f", in.Selection.Threshold),
		"compression=" + in.CompressionIdentity,
	}

	for _, slug := range in.Selection.SelectedSlugs {
		facts = append(facts, "style="+slug)
	}

	for _, id := range lowestArtistIDs(in.Artists) {
		facts = append(facts, fmt.Sprintf("artist=%d", id))
	}
	for _, id := range lowestAlbumIDs(in.Albums) {
		facts = append(facts, fmt.Sprintf("album=%d", id))
	}

	return facts
}

func lowestArtistIDs(artists []library.Artist) []int64 {
	ids := make([]int64, 0, len(artists))
	for _, a := range artists {
		ids = append(ids, a.ID)
	}
	return lowest(ids)
}

func lowestAlbumIDs(albums []library.Album) []int64 {
	ids := make([]int64, 0, len(albums))
	for _, a := range albums {
		ids = append(ids, a.ID)
	}
	return lowest(ids)
}

func lowest(ids []int64) []int64 {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if len(ids) > idSampleLimit {
		ids = ids[:idSampleLimit]
	}
	return ids
}
