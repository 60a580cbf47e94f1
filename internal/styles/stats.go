package styles

// MatchStats tallies slug matches observed while sampling. It replaces the
// older pattern of mutating tallies directly on the selection: the sampler
// owns and returns one accumulator, and the planner merges it into the plan.
type MatchStats struct {
	counts map[string]int
}

// NewMatchStats creates an empty accumulator.
func NewMatchStats() *MatchStats {
	return &MatchStats{counts: make(map[string]int)}
}

// Add records one matched item's slugs.
func (m *MatchStats) Add(matched []string) {
	for _, slug := range matched {
		m.counts[slug]++
	}
}

// Merge folds another accumulator into this one.
func (m *MatchStats) Merge(other *MatchStats) {
	if other == nil {
		return
	}
	for slug, n := range other.counts {
		m.counts[slug] += n
	}
}

// Counts returns a copy of the per-slug tallies.
func (m *MatchStats) Counts() map[string]int {
	out := make(map[string]int, len(m.counts))
	for slug, n := range m.counts {
		out[slug] = n
	}
	return out
}

// Total returns the sum of all tallies.
func (m *MatchStats) Total() int {
	total := 0
	for _, n := range m.counts {
		total += n
	}
	return total
}

// Sparse reports whether matched coverage fell below the sparse threshold.
func (m *MatchStats) Sparse() bool {
	return m.Total() < SparseCoverageMin
}
