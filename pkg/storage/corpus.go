// Package storage holds the in-memory corpus: every loaded document, the
// id lookup table and the text index built over them.
//
// The corpus only grows. Shards are added whole and documents are never
// updated or removed, so anything a reader has been handed stays valid for the
// rest of the session.
package storage

import (
	"sort"
	"sync"

	"github.com/rubiojr/diplomatarium/pkg/core"
	"github.com/rubiojr/diplomatarium/pkg/textindex"
)

// Corpus is the document store. It is safe for concurrent use: one loader
// may add shards while any number of readers search.
type Corpus struct {
	mu sync.RWMutex

	docs  []*core.Document
	byID  map[string]*core.Document
	index *textindex.Index

	loaded      map[int]int
	failed      map[int]string
	totalShards int
	located     int
}

// Stats summarizes what the corpus holds.
type Stats struct {
	Documents       int   `json:"documents"`
	WithCoordinates int   `json:"with_coordinates"`
	Terms           int   `json:"terms"`
	ShardsTotal     int   `json:"shards_total"`
	ShardsLoaded    int   `json:"shards_loaded"`
	ShardsFailed    int   `json:"shards_failed"`
	FailedShards    []int `json:"failed_shards,omitempty"`
}

// NewCorpus creates an empty corpus whose text index uses opts.
func NewCorpus(opts textindex.Options) *Corpus {
	fields := make([]string, 0, 4)
	for _, f := range core.TextFields() {
		fields = append(fields, f.String())
	}
	return &Corpus{
		byID:   make(map[string]*core.Document),
		index:  textindex.New(fields, opts),
		loaded: make(map[int]int),
		failed: make(map[int]string),
	}
}

// AddShard normalizes and indexes the records of one shard and returns the
// number of documents added. A shard that was already added is ignored, so
// reloading is harmless.
func (c *Corpus) AddShard(shard int, records []core.RawRecord) int {
	docs := make([]*core.Document, 0, len(records))
	for row, raw := range records {
		docs = append(docs, core.Normalize(raw, shard, row))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, done := c.loaded[shard]; done {
		return 0
	}

	entries := make([]textindex.Entry, 0, len(docs))
	added := 0
	for _, d := range docs {
		if _, dup := c.byID[d.ID]; dup {
			continue
		}
		c.docs = append(c.docs, d)
		c.byID[d.ID] = d
		if d.HasCoordinates {
			c.located++
		}
		entries = append(entries, textindex.Entry{ID: d.ID, Fields: d.IndexFields()})
		added++
	}
	c.index.AddAll(entries)

	c.loaded[shard] = added
	delete(c.failed, shard)
	return added
}

// MarkShardFailed records that a shard could not be loaded.
func (c *Corpus) MarkShardFailed(shard int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, done := c.loaded[shard]; done {
		return
	}
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.failed[shard] = msg
}

// SetTotalShards records how many shards the source describes.
func (c *Corpus) SetTotalShards(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totalShards = n
}

// HasShard reports whether shard has been added.
func (c *Corpus) HasShard(shard int) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.loaded[shard]
	return ok
}

// Document returns the document with the given id.
func (c *Corpus) Document(id string) (*core.Document, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.byID[id]
	return d, ok
}

// Documents returns every document in load order. The slice is a copy; the
// documents are shared.
func (c *Corpus) Documents() []*core.Document {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*core.Document(nil), c.docs...)
}

// Len returns the number of documents.
func (c *Corpus) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs)
}

// Lookup runs a text index search for text over fields. Fields that are not
// held in the text index are ignored; if none remain the lookup matches
// nothing.
func (c *Corpus) Lookup(text string, fields []core.Field) []textindex.Hit {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		if !f.Exact() {
			names = append(names, f.String())
		}
	}
	if len(names) == 0 {
		return nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.index.Search(text, names)
}

// Stats returns a snapshot of the corpus counters.
func (c *Corpus) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Stats{
		Documents:       len(c.docs),
		WithCoordinates: c.located,
		Terms:           c.index.Terms(),
		ShardsTotal:     c.totalShards,
		ShardsLoaded:    len(c.loaded),
		ShardsFailed:    len(c.failed),
	}
	for shard := range c.failed {
		s.FailedShards = append(s.FailedShards, shard)
	}
	sort.Ints(s.FailedShards)
	return s
}
