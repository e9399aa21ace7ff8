package search

import (
	"sort"

	"github.com/rubiojr/diplomatarium/pkg/core"
)

// Hit is a ranked document.
type Hit struct {
	Document *core.Document `json:"document"`
	Score    float64        `json:"score"`
}

// Result is the ranked outcome of one search.
type Result struct {
	Query string
	Hits  []Hit
}

// Len returns the number of hits.
func (r *Result) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Hits)
}

// Rank orders s by descending score, keeping first-produced order for ties,
// and hydrates every id from c. Ids that c no longer resolves are skipped.
func Rank(c Corpus, s *Scores) []Hit {
	ids := s.IDs()
	sort.SliceStable(ids, func(a, b int) bool {
		return s.score[ids[a]] > s.score[ids[b]]
	})

	hits := make([]Hit, 0, len(ids))
	for _, id := range ids {
		d, ok := c.Document(id)
		if !ok {
			continue
		}
		hits = append(hits, Hit{Document: d, Score: s.score[id]})
	}
	return hits
}
