// Package search evaluates parsed queries against the corpus and turns the
// matches into ranked, paginated results.
//
// # Overview
//
// A search runs in three steps:
//
//   - Evaluate resolves every OR group of a querylang.Query into a scored set
//     of document ids and unions the groups, keeping the best score per id
//   - Rank orders the ids by score and hydrates them into documents
//   - Result.Page slices the ranked hits into fixed-size pages
//
// SearchService wraps the three steps behind a single call that also applies
// the search form conventions: the minimum query length, the default field
// selection and the from/to/exact date range.
//
// # Usage Examples
//
// Basic search over every text field:
//
//	service := search.NewSearchService(corpus, search.Options{})
//	result := service.Search(search.SearchParams{Query: "skatt AND place:Oslo"})
//	page := result.Page(1, search.DefaultPageSize)
//
// Restricting the fields and dates:
//
//	result := service.Search(search.SearchParams{
//		Query:  `"kongens brev"`,
//		Fields: []core.Field{core.FieldSummary, core.FieldFullText},
//		From:   "1340",
//		To:     "1360-06",
//	})
//
// Date-only search, no text needed:
//
//	result := service.Search(search.SearchParams{From: "1350", Exact: true})
//
// Parsing HTTP parameters:
//
//	params, err := search.ParseSearchParams(r.URL.Query())
//	if err != nil {
//		// unknown field name
//		return
//	}
//	result := searchService.Search(params)
//
// # Search Behavior
//
//   - Terms inside a group must all match; groups are alternatives
//   - Reference code terms (dn:, rn:, sdn:) match by folded equality and
//     score a fixed 100
//   - Phrases must appear contiguously in one field and earn a bonus of 5
//     over the sum of their word scores
//   - Documents without dates are never excluded by a date filter
//   - A query that selects nothing on its own returns an empty result
//
// # Consistency
//
// The corpus may grow while a search runs. A search sees whatever was loaded
// at the moment each of its lookups ran; re-running the search picks up the
// rest.
package search
