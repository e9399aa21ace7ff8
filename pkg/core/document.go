// Package core holds the document model of the corpus and the normalizer that
// turns raw shard records into documents.
package core

import "github.com/rubiojr/diplomatarium/pkg/dates"

// RawRecord is one flat record as decoded from a shard.
type RawRecord map[string]any

// Document is a normalized letter. Documents are immutable once created;
// every field is a plain value so a Document can be shared between readers
// without locking.
type Document struct {
	ID string `json:"id"`

	DNRef string `json:"dn_ref,omitempty"`
	RNRef string `json:"rn_ref,omitempty"`
	SDNID string `json:"sdn_id,omitempty"`

	Summary   string `json:"summary,omitempty"`
	FullText  string `json:"full_text,omitempty"`
	Footnotes string `json:"footnotes,omitempty"`
	Addenda   string `json:"addenda,omitempty"`
	Source    string `json:"source,omitempty"`

	PlaceDN         string `json:"place_dn,omitempty"`
	PlaceRN         string `json:"place_rn,omitempty"`
	NormalizedPlace string `json:"normalized_place,omitempty"`
	PlaceAll        string `json:"-"`

	DateText  string         `json:"date_text,omitempty"`
	DateStart string         `json:"date_start,omitempty"`
	DateEnd   string         `json:"date_end,omitempty"`
	Dates     dates.Interval `json:"-"`

	Lat               float64 `json:"lat,omitempty"`
	Lon               float64 `json:"lon,omitempty"`
	HasCoordinates    bool    `json:"has_coordinates"`
	UncertainLocation bool    `json:"uncertain_location,omitempty"`

	Raw RawRecord `json:"raw,omitempty"`
}
