// Package textindex is an in-memory, field-aware inverted index with BM25
// scoring and optional prefix and fuzzy term expansion.
//
// Queries are tokenized the same way documents are. Every query term is
// expanded against the vocabulary (exact, then prefix, then fuzzy matches),
// scored per field with the field's boost, and the per-term candidate sets
// are AND-combined: a document must match every query term in at least one
// of the requested fields.
//
// Searches only read the index and may run concurrently with each other, but
// not with Add. Callers that add documents while searching must provide their
// own locking.
package textindex

import (
	"math"
	"sort"
)

const (
	bm25K = 1.2
	bm25B = 0.7
	bm25D = 0.5
)

// Options configures term expansion and field weighting.
type Options struct {
	// Fuzzy is the allowed edit distance, as a fraction of the query term
	// length when below 1, or as an absolute distance otherwise. 0 disables
	// fuzzy matching.
	Fuzzy float64
	// Prefix enables matching index terms that start with a query term.
	Prefix bool
	// Boost multiplies the score of matches in the named field. Fields
	// without an entry have a boost of 1.
	Boost map[string]float64
}

// Entry is one document to index: an external id and its text per field.
type Entry struct {
	ID     string
	Fields map[string]string
}

// Hit is a document matched by a search.
type Hit struct {
	ID    string
	Score float64
}

// Index is an inverted index over a fixed set of fields.
type Index struct {
	opts   Options
	fields []string
	slot   map[string]int

	ids      []string
	lengths  [][]int // per field, per document
	totals   []int   // per field, sum of lengths
	postings map[string][]map[int]int
	vocab    vocabulary
}

// New creates an index over fields.
func New(fields []string, opts Options) *Index {
	ix := &Index{
		opts:     opts,
		fields:   append([]string(nil), fields...),
		slot:     make(map[string]int, len(fields)),
		lengths:  make([][]int, len(fields)),
		totals:   make([]int, len(fields)),
		postings: make(map[string][]map[int]int),
	}
	for i, f := range fields {
		ix.slot[f] = i
	}
	return ix
}

// Fields returns the indexed field names in declaration order.
func (ix *Index) Fields() []string {
	return append([]string(nil), ix.fields...)
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int {
	return len(ix.ids)
}

// Terms returns the number of distinct indexed terms.
func (ix *Index) Terms() int {
	return len(ix.vocab.terms)
}

// Add indexes a single entry.
func (ix *Index) Add(e Entry) {
	ix.AddAll([]Entry{e})
}

// AddAll indexes a batch of entries. Fields not declared at construction are
// ignored. Adding the same id twice indexes it twice; deduplication is the
// caller's job.
func (ix *Index) AddAll(entries []Entry) {
	var added []string
	for _, e := range entries {
		doc := len(ix.ids)
		ix.ids = append(ix.ids, e.ID)
		for i, field := range ix.fields {
			terms := Tokenize(e.Fields[field])
			ix.lengths[i] = append(ix.lengths[i], len(terms))
			ix.totals[i] += len(terms)
			for _, term := range terms {
				per, ok := ix.postings[term]
				if !ok {
					per = make([]map[int]int, len(ix.fields))
					ix.postings[term] = per
					added = append(added, term)
				}
				if per[i] == nil {
					per[i] = make(map[int]int)
				}
				per[i][doc]++
			}
		}
	}
	ix.vocab.merge(added)
}

// Search returns the documents matching every term of query in at least one
// of fields, best first. Ties keep insertion order. An empty field list
// searches every field. A query without indexable terms matches nothing.
func (ix *Index) Search(query string, fields []string) []Hit {
	terms := Tokenize(query)
	if len(terms) == 0 || len(ix.ids) == 0 {
		return nil
	}
	slots := ix.resolve(fields)
	if len(slots) == 0 {
		return nil
	}

	var acc map[int]float64
	for _, term := range terms {
		scores := ix.termScores(term, slots)
		if acc == nil {
			acc = scores
		} else {
			for doc, s := range acc {
				if other, ok := scores[doc]; ok {
					acc[doc] = s + other
				} else {
					delete(acc, doc)
				}
			}
		}
		if len(acc) == 0 {
			return nil
		}
	}

	docs := make([]int, 0, len(acc))
	for doc := range acc {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(a, b int) bool {
		sa, sb := acc[docs[a]], acc[docs[b]]
		if sa != sb {
			return sa > sb
		}
		return docs[a] < docs[b]
	})

	hits := make([]Hit, len(docs))
	for i, doc := range docs {
		hits[i] = Hit{ID: ix.ids[doc], Score: acc[doc]}
	}
	return hits
}

func (ix *Index) resolve(fields []string) []int {
	if len(fields) == 0 {
		slots := make([]int, len(ix.fields))
		for i := range ix.fields {
			slots[i] = i
		}
		return slots
	}
	var slots []int
	for _, f := range fields {
		if i, ok := ix.slot[f]; ok {
			slots = append(slots, i)
		}
	}
	return slots
}

// termScores scores every document containing an expansion of term.
func (ix *Index) termScores(term string, slots []int) map[int]float64 {
	out := make(map[int]float64)
	n := float64(len(ix.ids))
	for _, m := range ix.vocab.expand(term, ix.opts.Prefix, ix.opts.Fuzzy) {
		per := ix.postings[m.term]
		for _, slot := range slots {
			docs := per[slot]
			if len(docs) == 0 {
				continue
			}
			boost := 1.0
			if b, ok := ix.opts.Boost[ix.fields[slot]]; ok {
				boost = b
			}
			avg := float64(ix.totals[slot]) / n
			idf := math.Log(1 + (n-float64(len(docs))+0.5)/(float64(len(docs))+0.5))
			for doc, tf := range docs {
				out[doc] += m.weight * boost * bm25(float64(tf), idf, float64(ix.lengths[slot][doc]), avg)
			}
		}
	}
	return out
}

func bm25(tf, idf, length, avg float64) float64 {
	if avg == 0 {
		avg = 1
	}
	return idf * (bm25D + tf*(bm25K+1)/(tf+bm25K*(1-bm25B+bm25B*length/avg)))
}
