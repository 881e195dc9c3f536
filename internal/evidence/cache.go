package evidence

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/warroom/scoring-service/internal/model"
)

type cacheEntry struct {
	snippets []model.EvidenceSnippet
	storedAt time.Time
}

// Cache memoizes extraction results per (url, terms) pair. Entries expire
// after the configured TTL; expired entries are evicted lazily on lookup.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewCache creates a cache with the given TTL. A non-positive TTL disables
// expiry.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached snippets for the key, if present and fresh.
func (c *Cache) Get(url string, terms []string) ([]model.EvidenceSnippet, bool) {
	key := cacheKey(url, terms)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && c.now().Sub(entry.storedAt) > c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return entry.snippets, true
}

// Put stores snippets under the key, stamped with the current time.
func (c *Cache) Put(url string, terms []string, snippets []model.EvidenceSnippet) {
	key := cacheKey(url, terms)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{snippets: snippets, storedAt: c.now()}
}

// Len reports the number of live entries, evicting stale ones first.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ttl > 0 {
		cutoff := c.now().Add(-c.ttl)
		for key, entry := range c.entries {
			if entry.storedAt.Before(cutoff) {
				delete(c.entries, key)
			}
		}
	}
	return len(c.entries)
}

// cacheKey is stable under term reordering.
func cacheKey(url string, terms []string) string {
	sorted := make([]string, len(terms))
	copy(sorted, terms)
	sort.Strings(sorted)
	return url + "|" + strings.Join(sorted, "|")
}
