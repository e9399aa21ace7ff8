package core

import "strings"

// Field identifies a searchable part of a Document. Text fields are served by
// the text index; reference fields are matched exactly.
type Field string

const (
	FieldSummary  Field = "sammendrag"
	FieldFullText Field = "brevtekst"
	FieldPlace    Field = "sted"
	FieldSource   Field = "kilde"
	FieldDN       Field = "dn"
	FieldRN       Field = "rn"
	FieldSDN      Field = "sdn"
)

// fieldNames maps every accepted tag spelling to its field. The Norwegian
// names are canonical; the English ones are aliases.
var fieldNames = map[string]Field{
	"sammendrag": FieldSummary,
	"summary":    FieldSummary,
	"regest":     FieldSummary,
	"brevtekst":  FieldFullText,
	"fulltext":   FieldFullText,
	"text":       FieldFullText,
	"sted":       FieldPlace,
	"place":      FieldPlace,
	"kilde":      FieldSource,
	"source":     FieldSource,
	"dn":         FieldDN,
	"rn":         FieldRN,
	"sdn":        FieldSDN,
}

// ParseField resolves a tag case-insensitively.
func ParseField(tag string) (Field, bool) {
	f, ok := fieldNames[strings.ToLower(strings.TrimSpace(tag))]
	return f, ok
}

// TextFields returns the fields held in the text index, in index order.
func TextFields() []Field {
	return []Field{FieldSummary, FieldFullText, FieldPlace, FieldSource}
}

// Exact reports whether the field is a reference code matched by equality
// instead of through the text index.
func (f Field) Exact() bool {
	switch f {
	case FieldDN, FieldRN, FieldSDN:
		return true
	}
	return false
}

func (f Field) String() string {
	return string(f)
}

// Value returns the text of field f in d. For the place field that is the
// combined place of all variants.
func (d *Document) Value(f Field) string {
	switch f {
	case FieldSummary:
		return d.Summary
	case FieldFullText:
		return d.FullText
	case FieldPlace:
		return d.PlaceAll
	case FieldSource:
		return d.Source
	case FieldDN:
		return d.DNRef
	case FieldRN:
		return d.RNRef
	case FieldSDN:
		return d.SDNID
	}
	return ""
}

// IndexFields returns the document's text per text-index field.
func (d *Document) IndexFields() map[string]string {
	out := make(map[string]string, 4)
	for _, f := range TextFields() {
		out[string(f)] = d.Value(f)
	}
	return out
}
