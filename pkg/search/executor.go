package search

import (
	"strings"

	"github.com/rubiojr/diplomatarium/pkg/core"
	"github.com/rubiojr/diplomatarium/pkg/dates"
	"github.com/rubiojr/diplomatarium/pkg/querylang"
	"github.com/rubiojr/diplomatarium/pkg/textindex"
)

const (
	// ExactScore is the score of a reference code match.
	ExactScore = 100.0
	// PhraseBonus is added to a phrase match on top of its word scores.
	PhraseBonus = 5.0
	// NeutralScore seeds groups that have no required terms.
	NeutralScore = 1.0
)

// Corpus is the read side of the document store used by searches.
type Corpus interface {
	Lookup(text string, fields []core.Field) []textindex.Hit
	Document(id string) (*core.Document, bool)
	Documents() []*core.Document
}

// Scores maps document ids to scores and remembers the order in which ids
// were first produced, which is the tie-break order for ranking.
type Scores struct {
	ids   []string
	score map[string]float64
}

func newScores() *Scores {
	return &Scores{score: make(map[string]float64)}
}

// Len returns the number of scored ids.
func (s *Scores) Len() int {
	return len(s.ids)
}

// IDs returns the ids in first-produced order.
func (s *Scores) IDs() []string {
	return append([]string(nil), s.ids...)
}

// Score returns the score of id.
func (s *Scores) Score(id string) (float64, bool) {
	v, ok := s.score[id]
	return v, ok
}

func (s *Scores) has(id string) bool {
	_, ok := s.score[id]
	return ok
}

func (s *Scores) set(id string, v float64) {
	if _, ok := s.score[id]; !ok {
		s.ids = append(s.ids, id)
	}
	s.score[id] = v
}

// max keeps the larger of v and the current score.
func (s *Scores) max(id string, v float64) {
	if cur, ok := s.score[id]; !ok || v > cur {
		s.set(id, v)
	}
}

// intersect keeps the ids present in both sets, summing their scores, in
// the order of s.
func (s *Scores) intersect(o *Scores) *Scores {
	out := newScores()
	for _, id := range s.ids {
		if v, ok := o.score[id]; ok {
			out.set(id, s.score[id]+v)
		}
	}
	return out
}

func (s *Scores) filter(keep func(id string) bool) *Scores {
	out := newScores()
	for _, id := range s.ids {
		if keep(id) {
			out.set(id, s.score[id])
		}
	}
	return out
}

// Evaluate runs q against c. fields is the field selection for unscoped
// terms; when empty every text field is searched. global is the date range
// chosen outside the query text and applies to every group.
//
// Groups are evaluated independently and unioned; an id matched by several
// groups keeps its best score. Groups with nothing to search for and no
// date range are skipped, so an unusable query yields an empty set.
func Evaluate(c Corpus, q querylang.Query, fields []core.Field, global dates.Window) *Scores {
	if len(fields) == 0 {
		fields = core.TextFields()
	}
	out := newScores()
	for _, g := range q {
		g.Not = searchableTerms(g.Not)
		if !g.Usable() && !global.Bounded() {
			continue
		}
		gs := evaluateGroup(c, g, fields, global)
		for _, id := range gs.ids {
			out.max(id, gs.score[id])
		}
	}
	return out
}

func evaluateGroup(c Corpus, g querylang.Group, fields []core.Field, global dates.Window) *Scores {
	var acc *Scores
	for _, t := range g.Must {
		if !searchable(t) {
			return newScores()
		}
		m := resolve(c, t, fields)
		if acc == nil {
			acc = m
		} else {
			acc = acc.intersect(m)
		}
		if acc.Len() == 0 {
			return acc
		}
	}
	if acc == nil {
		acc = newScores()
		for _, d := range c.Documents() {
			acc.set(d.ID, NeutralScore)
		}
	}

	for _, t := range g.Not {
		excluded := resolve(c, t, fields)
		if excluded.Len() == 0 {
			continue
		}
		acc = acc.filter(func(id string) bool { return !excluded.has(id) })
	}

	w := g.Dates.Intersect(global)
	if w.Bounded() {
		acc = acc.filter(func(id string) bool {
			d, ok := c.Document(id)
			return ok && d.Dates.Overlaps(w)
		})
	}
	return acc
}

// searchable reports whether t can match anything: reference terms need
// text and text terms need at least one indexable token. A required term
// that cannot match empties its group.
func searchable(t querylang.Term) bool {
	if t.Field.Exact() {
		return strings.TrimSpace(t.Text) != ""
	}
	return len(textindex.Tokenize(t.Text)) > 0
}

func searchableTerms(terms []querylang.Term) []querylang.Term {
	var out []querylang.Term
	for _, t := range terms {
		if searchable(t) {
			out = append(out, t)
		}
	}
	return out
}

// resolve returns the scored candidates of a single term.
func resolve(c Corpus, t querylang.Term, fields []core.Field) *Scores {
	scope := fields
	if t.Field != "" {
		scope = []core.Field{t.Field}
	}
	switch {
	case t.Field.Exact():
		return exactMatches(c, t.Field, t.Text)
	case t.Phrase:
		return phraseMatches(c, t.Text, scope)
	}
	return fromHits(c.Lookup(t.Text, scope))
}

func exactMatches(c Corpus, f core.Field, text string) *Scores {
	out := newScores()
	needle := textindex.Fold(strings.TrimSpace(text))
	for _, d := range c.Documents() {
		if v := textindex.Fold(d.Value(f)); v != "" && v == needle {
			out.set(d.ID, ExactScore)
		}
	}
	return out
}

// phraseMatches narrows the candidates with one lookup per word and then
// checks that the phrase appears contiguously in one of the fields.
func phraseMatches(c Corpus, phrase string, fields []core.Field) *Scores {
	var cand *Scores
	for _, w := range strings.Fields(phrase) {
		m := fromHits(c.Lookup(w, fields))
		if cand == nil {
			cand = m
		} else {
			cand = cand.intersect(m)
		}
		if cand.Len() == 0 {
			return cand
		}
	}
	if cand == nil {
		return newScores()
	}

	needle := textindex.FoldPhrase(phrase)
	return cand.filterScore(func(id string, score float64) (float64, bool) {
		d, ok := c.Document(id)
		if !ok {
			return 0, false
		}
		for _, f := range fields {
			if strings.Contains(textindex.FoldPhrase(d.Value(f)), needle) {
				return score + PhraseBonus, true
			}
		}
		return 0, false
	})
}

func (s *Scores) filterScore(fn func(id string, score float64) (float64, bool)) *Scores {
	out := newScores()
	for _, id := range s.ids {
		if v, ok := fn(id, s.score[id]); ok {
			out.set(id, v)
		}
	}
	return out
}

func fromHits(hits []textindex.Hit) *Scores {
	out := newScores()
	for _, h := range hits {
		score := h.Score
		if score <= 0 {
			score = NeutralScore
		}
		out.max(h.ID, score)
	}
	return out
}
