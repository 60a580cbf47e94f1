// Package styles resolves user style filters into a canonical, capped,
// optionally relaxed selection, and provides the matching strategies the
// sampler scores items with.
package styles

import (
	"sort"
	"strings"
)

// Entry is the display form of a style: a human name plus canonical slug.
type Entry struct {
	Name string
	Slug string
}

// ScoredSlug is a slug with a similarity score relative to some anchor slug.
type ScoredSlug struct {
	Slug       string
	Similarity float64
}

// Catalog is the style knowledge base. It is an external collaborator; the
// engine only consumes it.
type Catalog interface {
	// Normalize resolves a raw user string to a catalog entry.
	Normalize(raw string) (Entry, bool)

	// GetBySlug looks up the entry for a canonical slug.
	GetBySlug(slug string) (Entry, bool)

	// SimilarSlugs returns slugs similar to the given one, ranked by
	// descending similarity.
	SimilarSlugs(slug string) []ScoredSlug

	// ResolveSlug maps a raw string straight to a canonical slug.
	ResolveSlug(raw string) (string, bool)
}

// Slugify converts a display name to slug form: lowercased, with runs of
// non-alphanumeric characters collapsed to single dashes.
func Slugify(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// StaticCatalog is an in-memory Catalog used by the CLI and tests.
type StaticCatalog struct {
	entries map[string]Entry        // slug -> entry
	similar map[string][]ScoredSlug // slug -> ranked similars
}

// NewStaticCatalog builds a catalog from entries and an optional similarity
// table. Similar lists are re-sorted by descending similarity.
func NewStaticCatalog(entries []Entry, similar map[string][]ScoredSlug) *StaticCatalog {
	c := &StaticCatalog{
		entries: make(map[string]Entry, len(entries)),
		similar: make(map[string][]ScoredSlug, len(similar)),
	}
	for _, e := range entries {
		if e.Slug == "" {
			e.Slug = Slugify(e.Name)
		}
		if e.Name == "" {
			e.Name = e.Slug
		}
		c.entries[e.Slug] = e
	}
	for slug, scored := range similar {
		ranked := append([]ScoredSlug(nil), scored...)
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].Similarity > ranked[j].Similarity
		})
		c.similar[slug] = ranked
	}
	return c
}

// CatalogFromSlugs builds an identity catalog covering the given slugs.
func CatalogFromSlugs(slugs []string) *StaticCatalog {
	entries := make([]Entry, 0, len(slugs))
	for _, s := range slugs {
		entries = append(entries, Entry{Name: s, Slug: s})
	}
	return NewStaticCatalog(entries, nil)
}

// Normalize implements Catalog.
func (c *StaticCatalog) Normalize(raw string) (Entry, bool) {
	slug := Slugify(raw)
	e, ok := c.entries[slug]
	return e, ok
}

// GetBySlug implements Catalog.
func (c *StaticCatalog) GetBySlug(slug string) (Entry, bool) {
	e, ok := c.entries[slug]
	return e, ok
}

// SimilarSlugs implements Catalog.
func (c *StaticCatalog) SimilarSlugs(slug string) []ScoredSlug {
	return c.similar[slug]
}

// ResolveSlug implements Catalog.
func (c *StaticCatalog) ResolveSlug(raw string) (string, bool) {
	if e, ok := c.Normalize(raw); ok {
		return e.Slug, true
	}
	return "", false
}
