package api

import (
	"testing"
	"time"

	"github.com/rubiojr/diplomatarium/pkg/search"
)

func TestResultCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := newResultCache(2, time.Minute)
	a := c.put(&search.Result{Query: "a"})
	b := c.put(&search.Result{Query: "b"})

	if _, ok := c.get(a); !ok {
		t.Fatal("a should be cached")
	}
	c.put(&search.Result{Query: "c"})

	if _, ok := c.get(b); ok {
		t.Error("b was least recently used and should be evicted")
	}
	if r, ok := c.get(a); !ok || r.Query != "a" {
		t.Error("a should survive eviction")
	}
	if c.len() != 2 {
		t.Errorf("len = %d, want 2", c.len())
	}
}

func TestResultCacheExpires(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := newResultCache(10, time.Minute)
	c.now = func() time.Time { return now }

	id := c.put(&search.Result{Query: "a"})
	now = now.Add(30 * time.Second)
	if _, ok := c.get(id); !ok {
		t.Fatal("entry should still be valid")
	}
	now = now.Add(61 * time.Second)
	if _, ok := c.get(id); ok {
		t.Error("entry should have expired")
	}
	if c.len() != 0 {
		t.Errorf("expired entry should be removed, len = %d", c.len())
	}
}

func TestResultCacheBounded(t *testing.T) {
	c := newResultCache(3, time.Minute)
	var ids []string
	for i := 0; i < 10; i++ {
		ids = append(ids, c.put(&search.Result{}))
	}
	if c.len() != 3 {
		t.Errorf("len = %d, want 3", c.len())
	}
	for _, id := range ids[:7] {
		if _, ok := c.get(id); ok {
			t.Errorf("old handle %s should have been evicted", id)
		}
	}
	for _, id := range ids[7:] {
		if _, ok := c.get(id); !ok {
			t.Errorf("recent handle %s missing", id)
		}
	}
}
