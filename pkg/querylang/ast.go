// Package querylang parses search box queries into groups of terms.
//
// A query is a list of groups joined by OR. Each group holds terms that must
// all match, terms that must not match, and an optional date window:
//
//	skatt AND place:Oslo
//	"kongens brev" -jord year:1340..1360
//	sdn:SDN123 OR dn:DN00100001
//
// Parsing never fails. Unknown field tags are read as plain text and
// malformed date tokens are dropped. This package only builds the query; it
// does not know about the corpus or the index.
package querylang

import (
	"strconv"
	"strings"

	"github.com/rubiojr/diplomatarium/pkg/core"
	"github.com/rubiojr/diplomatarium/pkg/dates"
)

// Query is the parsed form of a query string. A parsed Query always has at
// least one group.
type Query []Group

// Group is one OR alternative.
type Group struct {
	Must  []Term
	Not   []Term
	Dates dates.Window
}

// Term is a piece of text to look for, optionally scoped to one field.
// Field is empty for unscoped terms.
type Term struct {
	Field  core.Field
	Text   string
	Phrase bool
}

// Usable reports whether the group can select anything on its own: it has a
// term to look for or a date window.
func (g Group) Usable() bool {
	return len(g.Must) > 0 || len(g.Not) > 0 || g.Dates.Bounded()
}

func (t Term) String() string {
	text := t.Text
	if t.Phrase {
		text = strconv.Quote(text)
	}
	if t.Field != "" {
		return t.Field.String() + ":" + text
	}
	return text
}

func (g Group) String() string {
	var parts []string
	for _, t := range g.Must {
		parts = append(parts, t.String())
	}
	for _, t := range g.Not {
		parts = append(parts, "-"+t.String())
	}
	if g.Dates.HasFrom {
		parts = append(parts, "after:"+ordinalString(g.Dates.From))
	}
	if g.Dates.HasTo {
		parts = append(parts, "before:"+ordinalString(g.Dates.To))
	}
	return strings.Join(parts, " ")
}

func (q Query) String() string {
	parts := make([]string, len(q))
	for i, g := range q {
		parts[i] = g.String()
	}
	return strings.Join(parts, " OR ")
}

func ordinalString(ord int) string {
	y, m, d := dates.Split(ord)
	return strconv.Itoa(y) + "-" + pad2(m) + "-" + pad2(d)
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
