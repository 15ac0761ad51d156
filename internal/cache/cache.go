// Package cache memoizes classification results keyed by normalized
// locator plus MIME hint, so repeated validations of the same resource
// skip the strategy chain and its network probe.
package cache

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/rotisserie/eris"

	"github.com/sells-group/imagegate/internal/model"
)

// MinCacheableConfidence gates insertion: anything below this is noise a
// retry might resolve more usefully, so it is never stored.
const MinCacheableConfidence = 0.6

// DefaultMaxEntries bounds the cache when no limit is configured.
const DefaultMaxEntries = 1000

type entry struct {
	key        string
	result     model.ClassificationResult
	insertedAt time.Time
}

// Stats is a point-in-time view of cache effectiveness.
type Stats struct {
	Hits                int64   `json:"hits"`
	Misses              int64   `json:"misses"`
	Size                int     `json:"size"`
	Evictions           int64   `json:"evictions"`
	KeyGenerationErrors int64   `json:"key_generation_errors"`
	HitRate             float64 `json:"hit_rate"`
}

// Cache is the result cache. Read/write on every validation, guarded by a
// single RWMutex; entries evict oldest-first once the bound is reached.
type Cache struct {
	mu         sync.RWMutex
	entries    map[string]entry
	order      []string
	maxEntries int

	hits      int64
	misses    int64
	evictions int64
	keyErrors int64
	now       func() time.Time
}

// New creates a cache bounded at maxEntries (DefaultMaxEntries when <= 0).
func New(maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Cache{
		entries:    make(map[string]entry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get looks up a previously stored result for the locator/hint pair. A key
// derivation failure counts as an error and degrades to a miss.
func (c *Cache) Get(locator, mimeHint string) (model.ClassificationResult, bool) {
	key, err := Key(locator, mimeHint)
	if err != nil {
		c.mu.Lock()
		c.keyErrors++
		c.misses++
		c.mu.Unlock()
		return model.ClassificationResult{}, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		c.misses++
		return model.ClassificationResult{}, false
	}
	c.hits++
	return e.result, true
}

// Put stores a result if it is cache-eligible: it must not stem from a
// transport fault, and must either be a positive verdict or carry at least
// MinCacheableConfidence. Ineligible results are dropped silently so a
// later retry can attempt detection again.
func (c *Cache) Put(locator, mimeHint string, result model.ClassificationResult, hadFault bool) {
	if hadFault {
		return
	}
	if !result.IsValid && result.Confidence < MinCacheableConfidence {
		return
	}

	key, err := Key(locator, mimeHint)
	if err != nil {
		c.mu.Lock()
		c.keyErrors++
		c.mu.Unlock()
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists {
		for len(c.entries) >= c.maxEntries && len(c.order) > 0 {
			oldest := c.order[0]
			c.order = c.order[1:]
			if _, ok := c.entries[oldest]; ok {
				delete(c.entries, oldest)
				c.evictions++
			}
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = entry{key: key, result: result, insertedAt: c.now()}
}

// Clear drops all entries and resets counters.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
	c.order = nil
	c.hits, c.misses, c.evictions, c.keyErrors = 0, 0, 0, 0
}

// Stats returns current counters.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := Stats{
		Hits:                c.hits,
		Misses:              c.misses,
		Size:                len(c.entries),
		Evictions:           c.evictions,
		KeyGenerationErrors: c.keyErrors,
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}

// Key derives the cache key: the locator minus query string and fragment,
// folded together with the MIME hint so equivalent requests collapse to one
// entry while differently-hinted requests stay apart. The composed string
// is digested so keys have uniform size.
func Key(locator, mimeHint string) (string, error) {
	locator = strings.TrimSpace(locator)
	if locator == "" {
		return "", eris.New("cache: empty locator")
	}
	u, err := url.Parse(locator)
	if err != nil {
		return "", eris.Wrap(err, "cache: parse locator")
	}
	u.RawQuery = ""
	u.Fragment = ""
	u.RawFragment = ""

	composed := u.String()
	if hint := strings.ToLower(strings.TrimSpace(mimeHint)); hint != "" {
		composed += "|" + hint
	}
	return fmt.Sprintf("%016x", xxhash.Sum64String(composed)), nil
}
