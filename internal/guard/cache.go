package guard

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"adri/domain/assessment"
)

// resultCache memoizes assessment results by data fingerprint and
// standard identity. Entries expire after a TTL; a zero TTL disables
// caching entirely. Concurrent misses for the same key collapse into a
// single assessment via singleflight.
type resultCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
	group   singleflight.Group
	now     func() time.Time
}

type cacheEntry struct {
	result  *assessment.AssessmentResult
	expires time.Time
}

func newResultCache(ttl time.Duration) *resultCache {
	return &resultCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

func (c *resultCache) enabled() bool { return c.ttl > 0 }

func (c *resultCache) get(key string) (*assessment.AssessmentResult, bool) {
	if !c.enabled() {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expires) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.result, true
}

// cacheOutcome pairs a computed or retrieved result with whether it came
// from the entries map. Singleflight's shared flag cannot stand in for a
// hit: a collapsed caller shares a computation, not a cached entry.
type cacheOutcome struct {
	result *assessment.AssessmentResult
	hit    bool
}

// do runs compute once per key across concurrent callers and caches the
// outcome. The second return reports a cache hit.
func (c *resultCache) do(key string, compute func() (*assessment.AssessmentResult, error)) (*assessment.AssessmentResult, bool, error) {
	if !c.enabled() {
		result, err := compute()
		return result, false, err
	}
	if result, ok := c.get(key); ok {
		return result, true, nil
	}
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		if result, ok := c.get(key); ok {
			return cacheOutcome{result: result, hit: true}, nil
		}
		result, err := compute()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = cacheEntry{result: result, expires: c.now().Add(c.ttl)}
		c.mu.Unlock()
		return cacheOutcome{result: result}, nil
	})
	if err != nil {
		return nil, false, err
	}
	out := v.(cacheOutcome)
	return out.result, out.hit, nil
}

func (c *resultCache) purge() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}
