// Package plancache is a bounded in-memory LRU with per-entry TTL and a
// secondary fingerprint index for bulk invalidation. One library fingerprint
// can map to many cache keys; a library-change event removes them all in a
// single call.
//
// All operations share one coarse mutex held only for map and list mutation.
// That trades some throughput for invariants that are easy to believe.
package plancache

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"go.uber.org/zap"
)

// MinCapacity is the enforced capacity floor. Misconfigured tiny caches
// thrash; below this the configuration is ignored.
const MinCapacity = 16

type entry[V any] struct {
	value       V
	fingerprint string
	expiresAt   time.Time
}

// Config configures a Cache. Zero values get sensible defaults.
type Config struct {
	Capacity int
	Clock    func() time.Time
	Metrics  *Metrics
	Logger   *zap.SugaredLogger
}

// Cache is a bounded LRU+TTL cache keyed by cache key and indexed by library
// fingerprint.
type Cache[V any] struct {
	mu            sync.Mutex
	lru           *simplelru.LRU[string, *entry[V]]
	byFingerprint map[string]map[string]struct{}
	clock         func() time.Time
	metrics       *Metrics
	log           *zap.SugaredLogger
}

// New creates a Cache. Capacity below MinCapacity is raised to the floor.
func New[V any](cfg Config) *Cache[V] {
	if cfg.Capacity < MinCapacity {
		cfg.Capacity = MinCapacity
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop().Sugar()
	}

	c := &Cache[V]{
		byFingerprint: make(map[string]map[string]struct{}),
		clock:         cfg.Clock,
		metrics:       cfg.Metrics,
		log:           cfg.Logger,
	}
	// Error is impossible: capacity is floored above zero.
	lru, _ := simplelru.NewLRU[string, *entry[V]](cfg.Capacity, c.onEvict)
	c.lru = lru
	return c
}

// onEvict keeps the fingerprint index consistent with the LRU list. Runs
// under the cache mutex, via the LRU's removal paths.
func (c *Cache[V]) onEvict(key string, e *entry[V]) {
	keys, ok := c.byFingerprint[e.fingerprint]
	if !ok {
		return
	}
	delete(keys, key)
	if len(keys) == 0 {
		delete(c.byFingerprint, e.fingerprint)
	}
}

// TryGet returns the cached value for key, promoting it to most recently
// used. Entries past their TTL are removed on access and count as misses.
func (c *Cache[V]) TryGet(key string) (V, bool) {
	var zero V

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lru.Get(key)
	if !ok {
		c.metrics.miss()
		return zero, false
	}
	if c.clock().After(e.expiresAt) {
		c.lru.Remove(key)
		c.metrics.expired()
		c.metrics.miss()
		c.metrics.setSize(c.lru.Len())
		return zero, false
	}

	c.metrics.hit()
	return e.value, true
}

// Set inserts or replaces the entry for key. Inserting past capacity evicts
// the least recently used entry.
func (c *Cache[V]) Set(key string, value V, fingerprint string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Replacing a key bypasses the eviction callback, so clean up any stale
	// fingerprint mapping by hand.
	if old, ok := c.lru.Peek(key); ok && old.fingerprint != fingerprint {
		c.onEvict(key, old)
	}

	if evicted := c.lru.Add(key, &entry[V]{
		value:       value,
		fingerprint: fingerprint,
		expiresAt:   c.clock().Add(ttl),
	}); evicted {
		c.metrics.evicted(1)
	}

	keys, ok := c.byFingerprint[fingerprint]
	if !ok {
		keys = make(map[string]struct{})
		c.byFingerprint[fingerprint] = keys
	}
	keys[key] = struct{}{}

	c.metrics.setSize(c.lru.Len())
}

// InvalidateByFingerprint removes every entry stored under fingerprint and
// returns how many were removed.
func (c *Cache[V]) InvalidateByFingerprint(fingerprint string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys, ok := c.byFingerprint[fingerprint]
	if !ok {
		return 0
	}

	removed := 0
	for key := range keys {
		if c.lru.Remove(key) {
			removed++
		}
	}
	// Removal empties the key set via onEvict; drop any leftover shell.
	delete(c.byFingerprint, fingerprint)

	c.metrics.evicted(removed)
	c.metrics.setSize(c.lru.Len())
	c.log.Debugw("cache invalidated by fingerprint",
		"fingerprint", shortFingerprint(fingerprint), "removed", removed)
	return removed
}

// Resize changes the cache capacity, evicting oldest entries if shrinking.
// The MinCapacity floor still applies.
func (c *Cache[V]) Resize(capacity int) {
	if capacity < MinCapacity {
		capacity = MinCapacity
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := c.lru.Resize(capacity)
	c.metrics.evicted(evicted)
	c.metrics.setSize(c.lru.Len())
}

// Len returns the number of entries currently held, expired or not.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Purge drops everything.
func (c *Cache[V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
	c.byFingerprint = make(map[string]map[string]struct{})
	c.metrics.setSize(0)
}

func shortFingerprint(fp string) string {
	if len(fp) > 8 {
		return fp[:8]
	}
	return fp
}
