package api

import (
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/rubiojr/diplomatarium/pkg/search"
)

const (
	defaultResultCache = 256
	defaultResultTTL   = 15 * time.Minute
)

// resultCache keeps recent result sets under random handles so clients can
// page through them without searching again. The least recently used set is
// evicted first, and a set that has not been read for ttl expires.
type resultCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries *lru.Cache[string, *cachedResult]
	now     func() time.Time
}

type cachedResult struct {
	result  *search.Result
	expires time.Time
}

func newResultCache(size int, ttl time.Duration) *resultCache {
	if size <= 0 {
		size = defaultResultCache
	}
	if ttl <= 0 {
		ttl = defaultResultTTL
	}
	// New only fails for a non-positive size.
	entries, _ := lru.New[string, *cachedResult](size)
	return &resultCache{
		ttl:     ttl,
		entries: entries,
		now:     time.Now,
	}
}

func (c *resultCache) put(r *search.Result) string {
	id := uuid.NewString()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Add(id, &cachedResult{result: r, expires: c.now().Add(c.ttl)})
	return id
}

func (c *resultCache) get(id string) (*search.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries.Get(id)
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expires) {
		c.entries.Remove(id)
		return nil, false
	}
	entry.expires = c.now().Add(c.ttl)
	return entry.result, true
}

func (c *resultCache) len() int {
	return c.entries.Len()
}
