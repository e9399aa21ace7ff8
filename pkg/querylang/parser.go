package querylang

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/rubiojr/diplomatarium/pkg/core"
	"github.com/rubiojr/diplomatarium/pkg/dates"
)

var (
	dateToken  = regexp.MustCompile(`(?i)^(year|before|after|on|date):(.+)$`)
	fieldToken = regexp.MustCompile(`^([A-Za-z_]+):(.*)$`)
	notPrefix  = regexp.MustCompile(`(?i)^NOT\s+`)
	yearShape  = regexp.MustCompile(`^\d{3,4}$`)
)

// Parse parses s into a Query. Blank input yields a single empty group.
func Parse(s string) Query {
	var q Query
	for _, part := range splitOr(s) {
		q = append(q, parseGroup(part))
	}
	if len(q) == 0 {
		q = Query{Group{}}
	}
	return q
}

func parseGroup(s string) Group {
	var g Group
	negateNext := false
	for _, tok := range tokenize(s) {
		switch strings.ToUpper(tok) {
		case "AND":
			continue
		case "NOT":
			negateNext = true
			continue
		}

		if m := dateToken.FindStringSubmatch(tok); m != nil {
			// A date token consumes a pending NOT; negated dates are not
			// supported.
			negateNext = false
			applyDate(&g.Dates, strings.ToLower(m[1]), m[2])
			continue
		}

		t, neg, ok := parseTerm(tok)
		neg = neg || negateNext
		negateNext = false
		if !ok {
			continue
		}
		if neg {
			g.Not = append(g.Not, t)
		} else {
			g.Must = append(g.Must, t)
		}
	}
	return g
}

// parseTerm reads a single non-date token. Required terms are kept even when
// nothing is left to search for, e.g. "dn:" or an empty phrase, so that they
// empty their group. ok is false only for a negated term without text, such
// as a lone "-", which excludes nothing.
func parseTerm(tok string) (t Term, neg bool, ok bool) {
	text := tok
	if strings.HasPrefix(text, "-") {
		neg = true
		text = text[1:]
	}

	if m := fieldToken.FindStringSubmatch(text); m != nil {
		if f, known := core.ParseField(m[1]); known {
			t.Field = f
			text = m[2]
		}
	}

	if loc := notPrefix.FindStringIndex(text); loc != nil {
		neg = true
		text = text[loc[1]:]
	}
	if strings.HasPrefix(text, "-") && len(text) > 1 {
		neg = true
		text = text[1:]
	}

	if len(text) >= 2 && strings.HasPrefix(text, `"`) && strings.HasSuffix(text, `"`) {
		t.Phrase = true
		text = text[1 : len(text)-1]
	}
	t.Text = strings.TrimSpace(text)
	return t, neg, !neg || t.Text != ""
}

func applyDate(w *dates.Window, kind, value string) {
	switch kind {
	case "year":
		lo, hi, isRange := strings.Cut(value, "..")
		if !isRange {
			hi = lo
		}
		if !yearShape.MatchString(lo) || !yearShape.MatchString(hi) {
			return
		}
		setRange(w, lo, hi)
	case "before":
		if to, ok := dates.ToOrdinal(value, true); ok {
			*w = w.WithTo(to)
		}
	case "after":
		if from, ok := dates.ToOrdinal(value, false); ok {
			*w = w.WithFrom(from)
		}
	case "on":
		setRange(w, value, value)
	case "date":
		lo, hi, isRange := strings.Cut(value, "..")
		if !isRange {
			hi = lo
		}
		setRange(w, lo, hi)
	}
}

// setRange sets both bounds, or neither when either side is malformed.
func setRange(w *dates.Window, lo, hi string) {
	from, okFrom := dates.ToOrdinal(lo, false)
	to, okTo := dates.ToOrdinal(hi, true)
	if !okFrom || !okTo {
		return
	}
	*w = w.WithFrom(from).WithTo(to)
}

// splitOr splits s on the keyword OR (any case) when it stands between
// whitespace outside a quoted span. Empty alternatives are dropped.
func splitOr(s string) []string {
	var (
		out     []string
		start   int
		inQuote bool
	)
	rs := []rune(s)
	for i := 0; i < len(rs); i++ {
		switch {
		case rs[i] == '"':
			inQuote = !inQuote
		case !inQuote && i+1 < len(rs) && unicode.ToUpper(rs[i]) == 'O' && unicode.ToUpper(rs[i+1]) == 'R' &&
			spaceAt(rs, i-1) && spaceAt(rs, i+2):
			if part := strings.TrimSpace(string(rs[start:i])); part != "" {
				out = append(out, part)
			}
			start = i + 2
			i++
		}
	}
	if part := strings.TrimSpace(string(rs[start:])); part != "" {
		out = append(out, part)
	}
	return out
}

// spaceAt treats positions outside the string as whitespace, so a leading or
// trailing OR still splits.
func spaceAt(rs []rune, i int) bool {
	if i < 0 || i >= len(rs) {
		return true
	}
	return unicode.IsSpace(rs[i])
}

// tokenize splits s on whitespace, keeping double-quoted spans (quotes
// included) inside a single token.
func tokenize(s string) []string {
	var (
		out     []string
		buf     strings.Builder
		inQuote bool
	)
	flush := func() {
		if tok := strings.TrimSpace(buf.String()); tok != "" {
			out = append(out, tok)
		}
		buf.Reset()
	}
	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
			buf.WriteRune(r)
		case !inQuote && unicode.IsSpace(r):
			flush()
		default:
			buf.WriteRune(r)
		}
	}
	flush()
	return out
}
