package search

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"testing"

	"github.com/rubiojr/diplomatarium/pkg/core"
	"github.com/rubiojr/diplomatarium/pkg/dates"
	"github.com/rubiojr/diplomatarium/pkg/querylang"
	"github.com/rubiojr/diplomatarium/pkg/storage"
	"github.com/rubiojr/diplomatarium/pkg/textindex"
)

func indexOptions() textindex.Options {
	return textindex.Options{
		Fuzzy:  0.2,
		Prefix: true,
		Boost:  map[string]float64{"sted": 4, "sammendrag": 3, "brevtekst": 2},
	}
}

func newCorpus(records ...core.RawRecord) *storage.Corpus {
	c := storage.NewCorpus(indexOptions())
	c.AddShard(0, records)
	return c
}

// fixture is the three letter corpus: A and C from 1350, B from 1420.
func fixture() *storage.Corpus {
	return newCorpus(
		core.RawRecord{"DN_ref": "A", "date_start": "1350", "DN_sted": "Bergen", "sammendrag": "om skatt"},
		core.RawRecord{"DN_ref": "B", "date_start": "1420", "DN_sted": "Oslo", "sammendrag": "om skatt og jord"},
		core.RawRecord{"DN_ref": "C", "date_start": "1350", "DN_sted": "Oslo", "sammendrag": "om jord"},
	)
}

func refs(r *Result) []string {
	var out []string
	for _, h := range r.Hits {
		out = append(out, h.Document.DNRef)
	}
	sort.Strings(out)
	return out
}

func TestSearchScenario(t *testing.T) {
	svc := NewSearchService(fixture(), Options{})

	tests := []struct {
		name   string
		params SearchParams
		want   []string
	}{
		{"AND with place scope", SearchParams{Query: "skatt AND place:Oslo"}, []string{"B"}},
		{"OR with date range", SearchParams{Query: "skatt OR jord", From: "1340", To: "1360"}, []string{"A", "C"}},
		{"negation", SearchParams{Query: "-jord skatt"}, []string{"A"}},
		{"OR without dates", SearchParams{Query: "skatt OR jord"}, []string{"A", "B", "C"}},
		{"date token in group", SearchParams{Query: "jord year:1340..1360"}, []string{"C"}},
		{"NOT keyword", SearchParams{Query: "skatt NOT place:Bergen"}, []string{"B"}},
		{"no match", SearchParams{Query: "kirke"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := refs(svc.Search(tt.params)); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Search(%+v) = %v, want %v", tt.params, got, tt.want)
			}
		})
	}
}

func TestSearchUnusableQueries(t *testing.T) {
	svc := NewSearchService(fixture(), Options{})
	for _, q := range []string{"", " ", "s", "AND", "OR", `""`, "- --"} {
		if r := svc.Search(SearchParams{Query: q}); r.Len() != 0 {
			t.Errorf("Search(%q) = %v, want empty", q, refs(r))
		}
	}
}

func TestUnmatchableRequiredTermEmptiesGroup(t *testing.T) {
	svc := NewSearchService(fixture(), Options{})

	tests := []struct {
		name   string
		params SearchParams
		want   []string
	}{
		{"symbols only", SearchParams{Query: "++ year:1340..1360"}, nil},
		{"empty reference", SearchParams{Query: "dn: year:1340..1360"}, nil},
		{"empty phrase", SearchParams{Query: `"" skatt`}, nil},
		{"other group still matches", SearchParams{Query: "skatt OR ++", From: "1340", To: "1360"}, []string{"A"}},
		{"unmatchable exclusion ignored", SearchParams{Query: "skatt -++"}, []string{"A", "B"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := refs(svc.Search(tt.params)); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Search(%+v) = %v, want %v", tt.params, got, tt.want)
			}
		})
	}
}

func TestSearchDateOnly(t *testing.T) {
	c := fixture()
	c.AddShard(1, []core.RawRecord{{"DN_ref": "U", "sammendrag": "udatert"}})
	svc := NewSearchService(c, Options{})

	got := refs(svc.Search(SearchParams{Query: "s", From: "1350", Exact: true}))
	want := []string{"A", "C", "U"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("date-only search = %v, want %v (undated letters pass date filters)", got, want)
	}

	got = refs(svc.Search(SearchParams{From: "1400"}))
	want = []string{"B", "U"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("open-ended range = %v, want %v", got, want)
	}
}

func TestSearchFieldSelection(t *testing.T) {
	svc := NewSearchService(fixture(), Options{})

	if r := svc.Search(SearchParams{Query: "oslo", Fields: []core.Field{core.FieldSummary}}); r.Len() != 0 {
		t.Errorf("summary-only search matched place text: %v", refs(r))
	}
	if got := refs(svc.Search(SearchParams{Query: "oslo", Fields: []core.Field{core.FieldDN}})); len(got) != 2 {
		t.Errorf("reference-only selection should fall back to all text fields, got %v", got)
	}
	if got := refs(svc.Search(SearchParams{Query: "place:oslo", Fields: []core.Field{core.FieldSummary}})); len(got) != 2 {
		t.Errorf("scoped terms ignore the selection, got %v", got)
	}
}

func TestExactReference(t *testing.T) {
	c := newCorpus(
		core.RawRecord{"DN_ref": "DN00100001", "SDN_ID": "SDN7", "sammendrag": "brev"},
		core.RawRecord{"DN_ref": "DN00100002", "sammendrag": "brev"},
	)
	svc := NewSearchService(c, Options{})

	r := svc.Search(SearchParams{Query: "dn:dn00100001"})
	if r.Len() != 1 || r.Hits[0].Document.DNRef != "DN00100001" || r.Hits[0].Score != ExactScore {
		t.Fatalf("dn search = %+v", r.Hits)
	}
	if r := svc.Search(SearchParams{Query: "sdn:SDN7"}); r.Len() != 1 {
		t.Errorf("sdn search = %v", refs(r))
	}
	if r := svc.Search(SearchParams{Query: "dn:DN001"}); r.Len() != 0 {
		t.Errorf("reference match must be exact, got %v", refs(r))
	}
	if r := svc.Search(SearchParams{Query: "brev -dn:DN00100002"}); r.Len() != 1 {
		t.Errorf("negated reference = %v", refs(r))
	}
}

func TestPhrase(t *testing.T) {
	c := newCorpus(
		core.RawRecord{"DN_ref": "gap", "brevtekst": "kongens gode brev"},
		core.RawRecord{"DN_ref": "hit", "brevtekst": "Kongens  brev er sendt"},
	)
	svc := NewSearchService(c, Options{})

	r := svc.Search(SearchParams{Query: `"kongens brev"`})
	if got := refs(r); !reflect.DeepEqual(got, []string{"hit"}) {
		t.Fatalf(`"kongens brev" = %v, want [hit]`, got)
	}

	words := svc.Search(SearchParams{Query: "kongens brev"})
	var plain float64
	for _, h := range words.Hits {
		if h.Document.DNRef == "hit" {
			plain = h.Score
		}
	}
	if r.Hits[0].Score != plain+PhraseBonus {
		t.Errorf("phrase score = %v, want word score %v + %v", r.Hits[0].Score, plain, PhraseBonus)
	}
}

func TestAfterBeforeEqualsYearRange(t *testing.T) {
	c := newCorpus(
		core.RawRecord{"DN_ref": "1250", "date_start": "1250", "sammendrag": "brev"},
		core.RawRecord{"DN_ref": "1305", "date_start": "1305", "sammendrag": "brev"},
		core.RawRecord{"DN_ref": "1400", "date_start": "1400", "sammendrag": "brev"},
	)
	svc := NewSearchService(c, Options{})

	a := refs(svc.Search(SearchParams{Query: "after:1300 before:1310"}))
	b := refs(svc.Search(SearchParams{Query: "year:1300..1310"}))
	if !reflect.DeepEqual(a, b) || !reflect.DeepEqual(a, []string{"1305"}) {
		t.Errorf("after+before = %v, year range = %v, want [1305]", a, b)
	}
}

func TestSingleTermMatchesIndexCandidates(t *testing.T) {
	c := fixture()
	c.AddShard(1, []core.RawRecord{
		{"DN_ref": "D", "date_start": "1200", "sammendrag": "skatteliste"},
		{"DN_ref": "E", "brevtekst": "skat"},
	})

	for _, term := range []string{"skatt", "oslo", "jord"} {
		var want []string
		for _, h := range c.Lookup(term, core.TextFields()) {
			want = append(want, h.ID)
		}
		scores := Evaluate(c, querylang.Parse(term), nil, dates.Window{})
		if got := scores.IDs(); !reflect.DeepEqual(got, want) {
			t.Errorf("Evaluate(%q) = %v, index candidates %v", term, got, want)
		}
	}
}

func TestUnionKeepsBestScore(t *testing.T) {
	c := fixture()
	single := Evaluate(c, querylang.Parse("skatt"), nil, dates.Window{})
	double := Evaluate(c, querylang.Parse("skatt OR skatt"), nil, dates.Window{})
	for _, id := range single.IDs() {
		a, _ := single.Score(id)
		b, _ := double.Score(id)
		if a != b {
			t.Errorf("%s: score %v after OR with itself, want %v", id, b, a)
		}
	}
}

func TestRankIsStable(t *testing.T) {
	c := newCorpus(
		core.RawRecord{"DN_ref": "1"},
		core.RawRecord{"DN_ref": "2"},
		core.RawRecord{"DN_ref": "3"},
	)
	s := newScores()
	s.set("2#0:1", 1)
	s.set("3#0:2", 5)
	s.set("1#0:0", 1)
	s.set("missing", 9)

	var got []string
	for _, h := range Rank(c, s) {
		got = append(got, h.Document.ID)
	}
	want := []string{"3#0:2", "2#0:1", "1#0:0"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Rank = %v, want %v", got, want)
	}
}

func TestPagination(t *testing.T) {
	var records []core.RawRecord
	for i := 0; i < 120; i++ {
		records = append(records, core.RawRecord{"DN_ref": fmt.Sprintf("DN%03d", i), "sammendrag": "brev"})
	}
	r := NewSearchService(newCorpus(records...), Options{}).Search(SearchParams{Query: "brev"})
	if r.Len() != 120 {
		t.Fatalf("Len = %d", r.Len())
	}

	var joined []Hit
	for n := 1; n <= 3; n++ {
		p := r.Page(n, 50)
		if p.Total != 120 || p.TotalPages != 3 || p.Number != n {
			t.Errorf("page %d = %+v", n, p)
		}
		joined = append(joined, p.Hits...)
	}
	if !reflect.DeepEqual(joined, r.Hits) {
		t.Error("concatenated pages differ from the result")
	}

	if p := r.Page(0, 50); p.Number != 1 {
		t.Errorf("page 0 clamped to %d", p.Number)
	}
	if p := r.Page(99, 50); p.Number != 3 || len(p.Hits) != 20 || p.HasNext() {
		t.Errorf("page 99 = number %d, %d hits", p.Number, len(p.Hits))
	}
	if p := r.Page(2, 50); p.First() != 51 || p.Last() != 100 {
		t.Errorf("page 2 spans %d..%d", p.First(), p.Last())
	}
	if p := r.Page(1, 0); p.Size != DefaultPageSize {
		t.Errorf("default size = %d", p.Size)
	}

	empty := (&Result{}).Page(5, 50)
	if empty.Number != 1 || empty.TotalPages != 1 || len(empty.Hits) != 0 {
		t.Errorf("empty page = %+v", empty)
	}
}

func TestParseSearchParams(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected SearchParams
		hasError bool
	}{
		{
			name:     "defaults when no params",
			query:    "",
			expected: SearchParams{Page: 1, Limit: DefaultPageSize},
		},
		{
			name:  "basic query",
			query: "q=skatt&page=2&limit=20",
			expected: SearchParams{
				Query: "skatt",
				Page:  2,
				Limit: 20,
			},
		},
		{
			name:  "fields and dates",
			query: "q=skatt&field=summary&field=sted,kilde&from=1340&to=1360&exact=on",
			expected: SearchParams{
				Query:  "skatt",
				Fields: []core.Field{core.FieldSummary, core.FieldPlace, core.FieldSource},
				From:   "1340",
				To:     "1360",
				Exact:  true,
				Page:   1,
				Limit:  DefaultPageSize,
			},
		},
		{
			name:     "invalid page and limit fall back",
			query:    "q=x&page=-1&limit=lots",
			expected: SearchParams{Query: "x", Page: 1, Limit: DefaultPageSize},
		},
		{
			name:     "unknown field",
			query:    "field=author",
			hasError: true,
		},
		{
			name:     "reference field",
			query:    "field=dn",
			hasError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("Failed to parse query: %v", err)
			}

			params, err := ParseSearchParams(values)
			if tt.hasError {
				if err == nil {
					t.Error("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !reflect.DeepEqual(params, tt.expected) {
				t.Errorf("ParseSearchParams = %+v, want %+v", params, tt.expected)
			}
		})
	}
}
