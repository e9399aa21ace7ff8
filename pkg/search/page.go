package search

// DefaultPageSize is the number of hits per page when none is given.
const DefaultPageSize = 50

// Page is a contiguous slice of a Result.
type Page struct {
	Hits       []Hit `json:"hits"`
	Number     int   `json:"page"`
	Size       int   `json:"page_size"`
	Total      int   `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// Page returns page n of the result. n is clamped into [1, TotalPages] and
// an empty result has a single empty page. A size of zero or less uses
// DefaultPageSize.
func (r *Result) Page(n, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := r.Len()
	pages := (total + size - 1) / size
	if pages < 1 {
		pages = 1
	}
	if n < 1 {
		n = 1
	}
	if n > pages {
		n = pages
	}

	start := (n - 1) * size
	end := start + size
	if end > total {
		end = total
	}

	p := Page{Number: n, Size: size, Total: total, TotalPages: pages}
	if start < end {
		p.Hits = r.Hits[start:end]
	}
	return p
}

// First returns the 1-based position of the first hit on the page, or 0 for
// an empty page.
func (p Page) First() int {
	if len(p.Hits) == 0 {
		return 0
	}
	return (p.Number-1)*p.Size + 1
}

// Last returns the 1-based position of the last hit on the page.
func (p Page) Last() int {
	if len(p.Hits) == 0 {
		return 0
	}
	return p.First() + len(p.Hits) - 1
}

// HasNext reports whether a later page exists.
func (p Page) HasNext() bool {
	return p.Number < p.TotalPages
}
