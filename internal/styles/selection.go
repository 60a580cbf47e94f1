package styles

import (
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/RicherTunes/brainarr/internal/config"
	"github.com/RicherTunes/brainarr/internal/library"
)

const (
	// RelaxedSimilarityFloor is the minimum catalog similarity for an
	// adjacent slug to join a relaxed selection.
	RelaxedSimilarityFloor = 0.70

	// SparseCoverageMin is the matched-coverage threshold below which a
	// selection is flagged sparse.
	SparseCoverageMin = 5

	// adjacentInflationFactor scales how many adjacent slugs a relaxed
	// selection may add relative to its selected count.
	adjacentInflationFactor = 1.5

	// maxAdjacentSlugs is the absolute ceiling on relaxed expansion.
	maxAdjacentSlugs = 12
)

// Selection is the resolved style selection for one planning pass. It is
// built once by the Selector and treated as read-only afterwards; match
// tallies live in a separate MatchStats accumulator, not on the selection.
//
// Invariant: every slug in SelectedSlugs is also in ExpandedSlugs.
type Selection struct {
	// SelectedSlugs is the canonical selection, in selection order
	// (user order, or coverage-descending when inferred).
	SelectedSlugs []string

	// ExpandedSlugs is SelectedSlugs plus any relaxed adjacent slugs,
	// sorted lexicographically.
	ExpandedSlugs []string

	Entries         []Entry
	AdjacentEntries []Entry

	// Coverage snapshots library coverage counts for every expanded slug.
	Coverage map[string]int

	Relaxed   bool
	Threshold float64

	// TrimmedSlugs lists slugs dropped by the MaxSelectedStyles cap.
	TrimmedSlugs []string

	// InferredSlugs lists slugs that were inferred rather than user-picked.
	InferredSlugs []string

	selected  map[string]struct{}
	expanded  map[string]struct{}
	adjacency map[string]float64 // adjacent slug -> similarity to selection
}

// HasStyles reports whether any style is selected.
func (s *Selection) HasStyles() bool { return len(s.SelectedSlugs) > 0 }

// IsSelected reports whether slug is in the strict selection.
func (s *Selection) IsSelected(slug string) bool {
	_, ok := s.selected[slug]
	return ok
}

// IsExpanded reports whether slug is in the relaxed selection.
func (s *Selection) IsExpanded(slug string) bool {
	_, ok := s.expanded[slug]
	return ok
}

// Adjacency returns the similarity of an adjacent slug to the selection.
func (s *Selection) Adjacency(slug string) (float64, bool) {
	sim, ok := s.adjacency[slug]
	return sim, ok
}

// SelectedCoverage sums library coverage over the strict selection.
func (s *Selection) SelectedCoverage() int {
	total := 0
	for _, slug := range s.SelectedSlugs {
		total += s.Coverage[slug]
	}
	return total
}

// Selector resolves settings and library context into a Selection.
type Selector struct {
	catalog Catalog
	log     *zap.SugaredLogger
}

// NewSelector creates a Selector backed by the given catalog.
func NewSelector(catalog Catalog, log *zap.SugaredLogger) *Selector {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Selector{catalog: catalog, log: log}
}

// Build resolves the style selection for one planning pass. Unknown style
// strings degrade to pass-through entries; nothing here fails.
func (sel *Selector) Build(profile *library.Profile, set *config.Settings, styleCtx *library.StyleContext) *Selection {
	entries := sel.resolveUserFilters(set.StyleFilters)
	var inferred []string

	if len(entries) == 0 && styleCtx != nil && len(styleCtx.Coverage) > 0 {
		entries = topByCoverage(styleCtx.Coverage, set.MaxSelectedStyles, sel.catalog)
		inferred = slugsOf(entries)
	}

	if len(entries) == 0 && set.DiscoveryMode == config.ModeSimilar && profile != nil {
		entries = sel.resolveDominant(profile.DominantStyles, set.MaxSelectedStyles)
		inferred = slugsOf(entries)
	}

	var trimmed []string
	if len(entries) > set.MaxSelectedStyles {
		entries, trimmed = capByCoverage(entries, set.MaxSelectedStyles, styleCtx)
		sel.log.Debugw("style selection trimmed to cap",
			"cap", set.MaxSelectedStyles, "trimmed", len(trimmed))
	}

	s := &Selection{
		SelectedSlugs: slugsOf(entries),
		Entries:       entries,
		Relaxed:       set.RelaxStyleMatching,
		Threshold:     1.0,
		TrimmedSlugs:  trimmed,
		InferredSlugs: inferred,
		Coverage:      make(map[string]int),
		selected:      make(map[string]struct{}, len(entries)),
		expanded:      make(map[string]struct{}, len(entries)),
		adjacency:     make(map[string]float64),
	}
	for _, slug := range s.SelectedSlugs {
		s.selected[slug] = struct{}{}
		s.expanded[slug] = struct{}{}
	}

	if set.RelaxStyleMatching && len(s.SelectedSlugs) > 0 {
		s.Threshold = RelaxedSimilarityFloor
		sel.expandRelaxed(s)
	}

	s.ExpandedSlugs = make([]string, 0, len(s.expanded))
	for slug := range s.expanded {
		s.ExpandedSlugs = append(s.ExpandedSlugs, slug)
	}
	sort.Strings(s.ExpandedSlugs)

	if styleCtx != nil {
		for _, slug := range s.ExpandedSlugs {
			s.Coverage[slug] = styleCtx.Coverage[slug]
		}
	}

	return s
}

// resolveUserFilters normalizes raw filter strings, deduplicating by slug.
// Unresolvable strings become pass-through entries so a typo narrows the
// match to nothing instead of failing the whole plan.
func (sel *Selector) resolveUserFilters(filters []string) []Entry {
	var entries []Entry
	seen := make(map[string]struct{}, len(filters))
	for _, raw := range filters {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		entry, ok := sel.catalog.Normalize(raw)
		if !ok {
			entry = Entry{Name: raw, Slug: raw}
			sel.log.Debugw("unknown style filter, using pass-through", "filter", raw)
		}
		if _, dup := seen[entry.Slug]; dup {
			continue
		}
		seen[entry.Slug] = struct{}{}
		entries = append(entries, entry)
	}
	return entries
}

// resolveDominant maps the analyzer's dominant-style hint through the catalog.
func (sel *Selector) resolveDominant(dominant []string, cap int) []Entry {
	var entries []Entry
	seen := make(map[string]struct{}, len(dominant))
	for _, raw := range dominant {
		if len(entries) == cap {
			break
		}
		slug, ok := sel.catalog.ResolveSlug(raw)
		if !ok {
			slug = raw
		}
		if _, dup := seen[slug]; dup {
			continue
		}
		seen[slug] = struct{}{}
		entries = append(entries, sel.entryFor(slug))
	}
	return entries
}

// expandRelaxed folds sufficiently similar adjacent slugs into the selection,
// bounded by the inflation allowance.
func (sel *Selector) expandRelaxed(s *Selection) {
	adjacency := make(map[string]float64)
	for _, slug := range s.SelectedSlugs {
		for _, scored := range sel.catalog.SimilarSlugs(slug) {
			if scored.Similarity < RelaxedSimilarityFloor {
				continue
			}
			if _, isSelected := s.selected[scored.Slug]; isSelected {
				continue
			}
			if sim, ok := adjacency[scored.Slug]; !ok || scored.Similarity > sim {
				adjacency[scored.Slug] = scored.Similarity
			}
		}
	}

	n := len(s.SelectedSlugs)
	allowed := int(math.Ceil(float64(n) * adjacentInflationFactor))
	if allowed < n {
		allowed = n
	}
	if allowed > maxAdjacentSlugs {
		allowed = maxAdjacentSlugs
	}

	kept := make([]string, 0, len(adjacency))
	for slug := range adjacency {
		kept = append(kept, slug)
	}
	sort.Strings(kept)
	if len(kept) > allowed {
		sel.log.Debugw("relaxed expansion truncated",
			"raw", len(kept), "allowed", allowed)
		kept = kept[:allowed]
	}

	for _, slug := range kept {
		s.expanded[slug] = struct{}{}
		s.adjacency[slug] = adjacency[slug]
		s.AdjacentEntries = append(s.AdjacentEntries, sel.entryFor(slug))
	}
}

func (sel *Selector) entryFor(slug string) Entry {
	if entry, ok := sel.catalog.GetBySlug(slug); ok {
		return entry
	}
	return Entry{Name: slug, Slug: slug}
}

// topByCoverage picks the highest-coverage slugs as a default selection when
// the user supplied no filters.
func topByCoverage(coverage map[string]int, cap int, catalog Catalog) []Entry {
	slugs := make([]string, 0, len(coverage))
	for slug := range coverage {
		slugs = append(slugs, slug)
	}
	sort.Slice(slugs, func(i, j int) bool {
		if coverage[slugs[i]] != coverage[slugs[j]] {
			return coverage[slugs[i]] > coverage[slugs[j]]
		}
		return slugs[i] < slugs[j]
	})
	if len(slugs) > cap {
		slugs = slugs[:cap]
	}
	entries := make([]Entry, 0, len(slugs))
	for _, slug := range slugs {
		if entry, ok := catalog.GetBySlug(slug); ok {
			entries = append(entries, entry)
			continue
		}
		entries = append(entries, Entry{Name: slug, Slug: slug})
	}
	return entries
}

// capByCoverage keeps the highest-coverage entries up to the cap and returns
// the trimmed remainder's slugs.
func capByCoverage(entries []Entry, cap int, styleCtx *library.StyleContext) ([]Entry, []string) {
	coverageOf := func(slug string) int {
		if styleCtx == nil {
			return 0
		}
		return styleCtx.Coverage[slug]
	}
	ordered := append([]Entry(nil), entries...)
	sort.SliceStable(ordered, func(i, j int) bool {
		ci, cj := coverageOf(ordered[i].Slug), coverageOf(ordered[j].Slug)
		if ci != cj {
			return ci > cj
		}
		return ordered[i].Name < ordered[j].Name
	})
	kept := ordered[:cap]
	trimmed := make([]string, 0, len(ordered)-cap)
	for _, e := range ordered[cap:] {
		trimmed = append(trimmed, e.Slug)
	}
	return kept, trimmed
}

func slugsOf(entries []Entry) []string {
	slugs := make([]string, 0, len(entries))
	for _, e := range entries {
		slugs = append(slugs, e.Slug)
	}
	return slugs
}
