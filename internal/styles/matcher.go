package styles

// Matcher scores a library item's style slugs against a selection.
// Implementations return the matched slugs and the best match score; an
// empty matched slice means the item does not match at all.
type Matcher interface {
	Match(itemSlugs []string, sel *Selection) (matched []string, score float64)
}

// NewMatcher returns the matching strategy appropriate for the selection:
// relaxed when the selection was built with relaxed matching, strict
// otherwise.
func NewMatcher(sel *Selection) Matcher {
	if sel.Relaxed {
		return relaxedMatcher{}
	}
	return strictMatcher{}
}

// strictMatcher accepts only exact selected slugs, always at score 1.0.
type strictMatcher struct{}

func (strictMatcher) Match(itemSlugs []string, sel *Selection) ([]string, float64) {
	var matched []string
	for _, slug := range itemSlugs {
		if sel.IsSelected(slug) {
			matched = append(matched, slug)
		}
	}
	if len(matched) == 0 {
		return nil, 0
	}
	return matched, 1.0
}

// relaxedMatcher additionally accepts adjacent slugs at their catalog
// similarity; the item's score is its best match.
type relaxedMatcher struct{}

func (relaxedMatcher) Match(itemSlugs []string, sel *Selection) ([]string, float64) {
	var matched []string
	best := 0.0
	for _, slug := range itemSlugs {
		switch {
		case sel.IsSelected(slug):
			matched = append(matched, slug)
			best = 1.0
		default:
			if sim, ok := sel.Adjacency(slug); ok && sim >= sel.Threshold {
				matched = append(matched, slug)
				if sim > best {
					best = sim
				}
			}
		}
	}
	if len(matched) == 0 {
		return nil, 0
	}
	return matched, best
}
