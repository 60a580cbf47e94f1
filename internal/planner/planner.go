package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/RicherTunes/brainarr/internal/config"
	"github.com/RicherTunes/brainarr/internal/hashing"
	"github.com/RicherTunes/brainarr/internal/library"
	"github.com/RicherTunes/brainarr/internal/plancache"
	"github.com/RicherTunes/brainarr/internal/sampling"
	"github.com/RicherTunes/brainarr/internal/signature"
	"github.com/RicherTunes/brainarr/internal/styles"
)

var (
	// ErrNilProfile indicates a caller bug, not a recoverable condition.
	ErrNilProfile = errors.New("planner: nil library profile")

	// ErrNilRequest indicates a caller bug, not a recoverable condition.
	ErrNilRequest = errors.New("planner: nil request or settings")
)

// Request bundles the per-call planning inputs.
type Request struct {
	Settings     *config.Settings
	StyleContext *library.StyleContext
	Artists      []library.Artist
	Albums       []library.Album
}

// Options configures a Planner.
type Options struct {
	// Catalog is the style knowledge base. Required.
	Catalog styles.Catalog

	Logger  *zap.SugaredLogger
	Metrics *plancache.Metrics

	// Clock overrides time.Now, for tests.
	Clock func() time.Time
}

// Planner is the orchestrator: a synchronous, CPU-bound pipeline whose only
// shared mutable state is the plan cache. Safe for concurrent use.
type Planner struct {
	selector *styles.Selector
	sampler  *sampling.Sampler
	composer *signature.Composer
	cache    *plancache.Cache[*Plan]
	group    singleflight.Group
	log      *zap.SugaredLogger
	now      func() time.Time
}

// New creates a Planner.
func New(opts Options) (*Planner, error) {
	if opts.Catalog == nil {
		return nil, errors.New("planner: catalog is required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	return &Planner{
		selector: styles.NewSelector(opts.Catalog, opts.Logger.Named("styles")),
		sampler:  sampling.NewSampler(opts.Logger.Named("sampling")),
		composer: signature.NewComposer(),
		cache: plancache.New[*Plan](plancache.Config{
			Capacity: config.Defaults().CacheCapacity,
			Clock:    opts.Clock,
			Metrics:  opts.Metrics,
			Logger:   opts.Logger.Named("plancache"),
		}),
		log: opts.Logger.Named("planner"),
		now: opts.Clock,
	}, nil
}

// Plan runs one planning pass: resolve the style selection, compose the
// signature, and either return a cached clone or sample and assemble a fresh
// plan. Concurrent identical misses are coalesced; the computation is a pure
// function of its inputs, so coalescing changes cost, not semantics.
func (p *Planner) Plan(ctx context.Context, profile *library.Profile, req *Request) (*Plan, error) {
	if profile == nil {
		return nil, ErrNilProfile
	}
	if req == nil || req.Settings == nil {
		return nil, ErrNilRequest
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	set := req.Settings
	if set.CacheCapacity > 0 {
		p.cache.Resize(set.CacheCapacity)
	}

	selection := p.selector.Build(profile, set, req.StyleContext)

	// With no style anchor, sample and sign as Similar so recommendations
	// stay grounded in the library. The user's configured mode is untouched.
	effectiveMode := set.DiscoveryMode
	if !selection.HasStyles() {
		effectiveMode = config.ModeSimilar
	}

	shape := set.EffectiveShape(effectiveMode)
	compression := DefaultCompression(set.TargetTokens)

	sig := p.composer.Compose(signature.Input{
		Profile:             profile,
		Artists:             req.Artists,
		Albums:              req.Albums,
		Selection:           selection,
		Settings:            set,
		EffectiveMode:       effectiveMode,
		ShapeIdentity:       shape.Identity(),
		CompressionIdentity: compression.Identity(),
	})

	if cached, ok := p.cache.TryGet(sig.CacheKey); ok {
		p.log.Debugw("plan cache hit", "key_prefix", keyPrefix(sig.CacheKey))
		return fromCache(cached), nil
	}

	v, err, shared := p.group.Do(sig.CacheKey, func() (interface{}, error) {
		// A racing caller may have stored the plan between our lookup and
		// the singleflight admission.
		if cached, ok := p.cache.TryGet(sig.CacheKey); ok {
			return fromCache(cached), nil
		}
		return p.compute(ctx, profile, req, selection, effectiveMode, shape, compression, sig)
	})
	if err != nil {
		return nil, err
	}

	plan := v.(*Plan)
	if shared && !plan.FromCache {
		// Followers of a coalesced miss get their own clone, marked as a
		// cache hit, so no two callers share mutable state.
		return fromCache(plan), nil
	}
	return plan, nil
}

// compute assembles a fresh plan and stores a clone in the cache.
func (p *Planner) compute(
	ctx context.Context,
	profile *library.Profile,
	req *Request,
	selection *styles.Selection,
	effectiveMode config.DiscoveryMode,
	shape config.Shape,
	compression *CompressionState,
	sig signature.Signature,
) (*Plan, error) {
	set := req.Settings
	targetArtists, targetAlbums := targetsFor(set, compression)

	sample, stats, err := p.sampler.Sample(ctx, sampling.Input{
		Artists:       req.Artists,
		Albums:        req.Albums,
		StyleContext:  req.StyleContext,
		Selection:     selection,
		Settings:      set,
		Shape:         shape,
		TargetArtists: targetArtists,
		TargetAlbums:  targetAlbums,
		Seed:          sig.Seed,
		Now:           p.now(),
	})
	if err != nil {
		return nil, err
	}

	reordered := orderSample(sample)

	plan := &Plan{
		ID:                 uuid.NewString(),
		Sample:             sample,
		StylesUsed:         selection.Entries,
		AdjacentStyles:     selection.AdjacentEntries,
		SelectedSlugs:      selection.SelectedSlugs,
		ExpandedSlugs:      selection.ExpandedSlugs,
		Coverage:           selection.Coverage,
		MatchedCounts:      stats.Counts(),
		Compression:        compression,
		SampleFingerprint:  sampleFingerprint(sample),
		Seed:               sig.Seed,
		LibraryFingerprint: sig.Fingerprint,
		CacheKey:           sig.CacheKey,
		GeneratedAt:        p.now(),
		Sparse:             selection.HasStyles() && stats.Sparse(),
		Relaxed:            selection.Relaxed,
		TrimmedStyles:      selection.TrimmedSlugs,
		InferredStyleSlugs: selection.InferredSlugs,
		Reordered:          reordered,
	}

	ttl := time.Duration(set.CacheTTL)
	if ttl <= 0 {
		ttl = time.Duration(config.Defaults().CacheTTL)
	}
	p.cache.Set(sig.CacheKey, plan.Clone(), sig.Fingerprint, ttl)

	p.log.Infow("plan assembled",
		"key_prefix", keyPrefix(sig.CacheKey),
		"mode", effectiveMode,
		"artists", len(sample.Artists),
		"albums", len(sample.Albums),
		"sparse", plan.Sparse,
		"reordered", reordered)

	return plan, nil
}

// InvalidateLibrary drops every cached plan built on the given library
// fingerprint. Call on library-change events.
func (p *Planner) InvalidateLibrary(fingerprint string) int {
	return p.cache.InvalidateByFingerprint(fingerprint)
}

// CacheLen reports how many plans are currently cached.
func (p *Planner) CacheLen() int { return p.cache.Len() }

// targetsFor scales the compression caps into sampler quotas by strategy.
// Comprehensive oversamples so the downstream trim loop has material to cut.
func targetsFor(set *config.Settings, compression *CompressionState) (int, int) {
	artists := compression.MaxArtists
	albums := compression.MaxAlbumGroups * compression.MaxAlbumsPerGroup
	switch set.SamplingStrategy {
	case config.StrategyMinimal:
		return maxInt(1, artists/2), maxInt(1, albums/2)
	case config.StrategyComprehensive:
		return artists * 3 / 2, albums * 3 / 2
	default:
		return artists, albums
	}
}

// sampleFingerprint hashes only sampled names and titles. Drift between this
// and a cached plan tells downstream consumers the sample content changed
// even when the request signature did not.
func sampleFingerprint(sample *sampling.LibrarySample) string {
	parts := make([]string, 0, len(sample.Artists)+len(sample.Albums))
	for _, a := range sample.Artists {
		parts = append(parts, "artist:"+a.Name)
	}
	for _, al := range sample.Albums {
		parts = append(parts, fmt.Sprintf("album:%s:%s", al.ArtistName, al.Title))
	}
	return hashing.Compute(parts).FullHash
}

// fromCache clones a plan for return to a caller, marking it cache-served.
func fromCache(p *Plan) *Plan {
	out := p.Clone()
	out.FromCache = true
	return out
}

func keyPrefix(key string) string {
	if len(key) > 12 {
		return key[:12]
	}
	return key
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
