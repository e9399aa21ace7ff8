package search

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/rubiojr/diplomatarium/pkg/core"
	"github.com/rubiojr/diplomatarium/pkg/dates"
	"github.com/rubiojr/diplomatarium/pkg/log"
	"github.com/rubiojr/diplomatarium/pkg/querylang"
)

// DefaultMinQueryLength is the shortest query text that is searched.
const DefaultMinQueryLength = 2

// ErrUnknownField is returned by ParseSearchParams for a field name that is
// not a text field.
var ErrUnknownField = errors.New("unknown search field")

// SearchParams represents all parameters for a search operation.
// It provides a unified structure for search configuration that works
// across both the API and the command line.
type SearchParams struct {
	// Query is the query text. Shorter than the minimum query length it is
	// ignored, which turns the search into a date-only search when a date
	// range is given and into an empty result otherwise.
	Query string

	// Fields limits unscoped terms to these text fields. If empty, every
	// text field is searched. Reference fields are ignored here; they are
	// only reachable through dn:, rn: and sdn: terms.
	Fields []core.Field

	// From and To bound the documents' dates. Both accept YYYY, YYYY-MM and
	// YYYY-MM-DD with - or . separators. Unparseable values are ignored.
	From string
	To   string

	// Exact restricts the range to exactly the period named by From; To is
	// ignored.
	Exact bool

	// Page is the page number for pagination (1-based).
	// Defaults to 1 if not specified.
	Page int

	// Limit is the maximum number of hits per page.
	// Defaults to DefaultPageSize if not specified.
	Limit int
}

// Window returns the date range selected by the parameters.
func (p SearchParams) Window() dates.Window {
	return dates.RangeFromInput(p.From, p.To, p.Exact)
}

// Options configures a SearchService.
type Options struct {
	// MinQueryLength is the shortest query, in characters, that is parsed.
	// Zero uses DefaultMinQueryLength.
	MinQueryLength int
}

// SearchService provides search over a corpus.
// It encapsulates the corpus and applies the search form conventions before
// handing the query to Evaluate.
type SearchService struct {
	corpus   Corpus
	minQuery int
	logger   *log.Logger
}

// NewSearchService creates a new search service over corpus.
//
// Parameters:
//   - corpus: The document store searches run against. It may keep growing
//     while the service is in use.
//   - opts: Query length policy
//
// Returns:
//   - *SearchService: A new search service instance ready to execute searches
func NewSearchService(corpus Corpus, opts Options) *SearchService {
	minQuery := opts.MinQueryLength
	if minQuery <= 0 {
		minQuery = DefaultMinQueryLength
	}
	return &SearchService{
		corpus:   corpus,
		minQuery: minQuery,
		logger:   log.ForService("search"),
	}
}

// Search executes a search operation with the provided parameters and
// returns every hit, ranked. Use Result.Page to paginate. Search never
// fails; queries that select nothing produce an empty Result.
//
// The search operation:
// 1. Resolves the field selection and the date range
// 2. Parses the query text, or falls back to a date-only search
// 3. Evaluates every OR group and unions the groups
// 4. Ranks and hydrates the hits
//
// Example:
//
//	result := searchService.Search(SearchParams{
//		Query:  "skatt OR jord",
//		From:   "1340",
//		To:     "1360",
//	})
//	page := result.Page(1, DefaultPageSize)
func (s *SearchService) Search(params SearchParams) *Result {
	text := strings.TrimSpace(params.Query)
	global := params.Window()
	fields := textFields(params.Fields)

	var q querylang.Query
	switch {
	case utf8.RuneCountInString(text) >= s.minQuery:
		q = querylang.Parse(text)
	case global.Bounded():
		q = querylang.Query{querylang.Group{}}
	default:
		return &Result{Query: text}
	}

	scores := Evaluate(s.corpus, q, fields, global)
	hits := Rank(s.corpus, scores)
	s.logger.Debugf("query %q (%d groups): %d hits", text, len(q), len(hits))
	return &Result{Query: text, Hits: hits}
}

// textFields drops reference fields and duplicates. An empty selection
// means every text field.
func textFields(fields []core.Field) []core.Field {
	var out []core.Field
	seen := make(map[core.Field]bool)
	for _, f := range fields {
		if f.Exact() || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	if len(out) == 0 {
		return core.TextFields()
	}
	return out
}

// ParseSearchParams parses HTTP query parameters into a SearchParams struct.
// It handles parameter validation, type conversion, and provides sensible defaults
// for missing or invalid parameters.
//
// Supported parameters:
//   - q: Query text
//   - field: Text field to search (can be specified multiple times, or comma separated)
//   - from, to: Date range bounds
//   - exact: "true", "1" or "on" to search exactly the period named by from
//   - page: Page number (positive integer, defaults to 1)
//   - limit: Hits per page (positive integer, defaults to DefaultPageSize)
//
// Returns:
//   - SearchParams: Parsed search parameters
//   - error: ErrUnknownField if a field name is not a text field
func ParseSearchParams(queryParams map[string][]string) (SearchParams, error) {
	params := SearchParams{
		Page:  1,
		Limit: DefaultPageSize,
	}

	if q := queryParams["q"]; len(q) > 0 {
		params.Query = q[0]
	}

	for _, raw := range queryParams["field"] {
		for _, name := range strings.Split(raw, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			f, ok := core.ParseField(name)
			if !ok || f.Exact() {
				return params, fmt.Errorf("%w: %q", ErrUnknownField, name)
			}
			params.Fields = append(params.Fields, f)
		}
	}

	if from := queryParams["from"]; len(from) > 0 {
		params.From = from[0]
	}
	if to := queryParams["to"]; len(to) > 0 {
		params.To = to[0]
	}
	if exact := queryParams["exact"]; len(exact) > 0 {
		switch strings.ToLower(exact[0]) {
		case "1", "true", "on", "yes":
			params.Exact = true
		}
	}

	if limitStr := queryParams["limit"]; len(limitStr) > 0 && limitStr[0] != "" {
		if parsed, err := strconv.Atoi(limitStr[0]); err == nil && parsed > 0 {
			params.Limit = parsed
		}
	}

	if pageStr := queryParams["page"]; len(pageStr) > 0 && pageStr[0] != "" {
		if parsed, err := strconv.Atoi(pageStr[0]); err == nil && parsed > 0 {
			params.Page = parsed
		}
	}

	return params, nil
}
