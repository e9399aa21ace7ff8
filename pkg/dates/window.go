package dates

import "strings"

// Window is a date filter with optional bounds. An absent bound is unbounded
// on that side.
type Window struct {
	From    int
	To      int
	HasFrom bool
	HasTo   bool
}

// Bounded reports whether at least one side of the window is finite.
func (w Window) Bounded() bool {
	return w.HasFrom || w.HasTo
}

// WithFrom returns a copy of w with the lower bound set.
func (w Window) WithFrom(ord int) Window {
	w.From, w.HasFrom = ord, true
	return w
}

// WithTo returns a copy of w with the upper bound set.
func (w Window) WithTo(ord int) Window {
	w.To, w.HasTo = ord, true
	return w
}

// Intersect narrows w by o: the effective lower bound is the larger of the
// two, the effective upper bound the smaller.
func (w Window) Intersect(o Window) Window {
	out := w
	if o.HasFrom && (!out.HasFrom || o.From > out.From) {
		out.From, out.HasFrom = o.From, true
	}
	if o.HasTo && (!out.HasTo || o.To < out.To) {
		out.To, out.HasTo = o.To, true
	}
	return out
}

// Period returns the window covering the whole period named by s, e.g. all of
// 1350 for "1350" or all of May 1350 for "1350-05".
func Period(s string) (Window, bool) {
	from, ok := ToOrdinal(s, false)
	if !ok {
		return Window{}, false
	}
	to, _ := ToOrdinal(s, true)
	return Window{From: from, To: to, HasFrom: true, HasTo: true}, true
}

// RangeFromInput builds the window for a free-form from/to pair as typed into
// a search form. With exact set only from is consulted and the window spans
// exactly the period it names. Unparseable inputs leave their side unbounded.
func RangeFromInput(from, to string, exact bool) Window {
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	if exact {
		w, _ := Period(from)
		return w
	}
	var w Window
	if ord, ok := ToOrdinal(from, false); ok {
		w = w.WithFrom(ord)
	}
	if ord, ok := ToOrdinal(to, true); ok {
		w = w.WithTo(ord)
	}
	return w
}

// Interval is the dated span of a record. A missing start is treated as
// unbounded in the past and a missing end as unbounded in the future.
type Interval struct {
	Start    int
	End      int
	HasStart bool
	HasEnd   bool
}

// NewInterval derives an interval from raw start and end strings. The end
// defaults to the start when absent. A record with only an end date keeps
// an open start, so it overlaps every window that begins before its end.
// If both are explicit and the end precedes the start the bounds are
// swapped, so End >= Start holds for every interval built from explicit
// values.
func NewInterval(start, end string) Interval {
	var iv Interval
	iv.Start, iv.HasStart = ToOrdinal(start, false)
	iv.End, iv.HasEnd = ToOrdinal(end, true)

	switch {
	case iv.HasStart && !iv.HasEnd:
		iv.End, iv.HasEnd = iv.Start, true
	case iv.HasStart && iv.HasEnd && iv.End < iv.Start:
		iv.Start, _ = ToOrdinal(end, false)
		iv.End, _ = ToOrdinal(start, true)
	}
	return iv
}

// Dated reports whether the interval carries any date information.
func (iv Interval) Dated() bool {
	return iv.HasStart || iv.HasEnd
}

// Overlaps reports whether the interval intersects w, using
// start <= w.To && end >= w.From with absent values as infinities.
func (iv Interval) Overlaps(w Window) bool {
	if w.HasTo && iv.HasStart && iv.Start > w.To {
		return false
	}
	if w.HasFrom && iv.HasEnd && iv.End < w.From {
		return false
	}
	return true
}
