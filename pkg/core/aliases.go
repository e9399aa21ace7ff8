package core

// Canonical record keys. Each one is filled from the first present alias in
// Aliases.
const (
	KeySDNID           = "sdn_id"
	KeyDNRef           = "dn_ref"
	KeyRNRef           = "rn_ref"
	KeySummary         = "sammendrag"
	KeyRegest          = "regest"
	KeyFullText        = "brevtekst"
	KeySource          = "kilde"
	KeySourceDN        = "dn_source"
	KeySourceRN        = "rn_source"
	KeyFootnotes       = "fotnoter"
	KeyFootnotesDN     = "fotnoter_dn"
	KeyFootnotesN      = "fotnoter_n"
	KeyAddenda         = "tillegg"
	KeyPlaceDN         = "dn_sted"
	KeyPlaceRN         = "rn_sted"
	KeyNormalizedPlace = "normalized_name"
	KeyDateText        = "dato"
	KeyDateStart       = "date_start"
	KeyDateEnd         = "date_end"
	KeyLat             = "lat"
	KeyLon             = "lon"
	KeyUncertainLoc    = "uncertain_loc"
)

const bom = "\ufeff"

// Aliases lists, per canonical key, the record keys it may be read from in
// order of precedence. Exports produced by different generations of the
// source spreadsheet disagree on casing, and the first column of a CSV saved
// with a byte order mark carries the mark in its name. New spellings are
// added here, not in code.
//
// Where one generation has a combined column and another has separate ones
// (source citation, footnotes) the combined column is a separate canonical
// key that Normalize consults first.
var Aliases = map[string][]string{
	KeySDNID:           {"SDN_ID", "SDNID", bom + "SDNID", bom + "SDN_ID"},
	KeyDNRef:           {"DN_ref", "DN_REF", "DNREF", bom + "DN_REF"},
	KeyRNRef:           {"RN_ref", "RN_REF", "RNREF", "RN"},
	KeySummary:         {"sammendrag", "Sammendrag"},
	KeyRegest:          {"regest", "Regest"},
	KeyFullText:        {"brevtekst", "Brevtekst"},
	KeySource:          {"kilde", "Kilde"},
	KeySourceDN:        {"DN_source", "DN_Source", "DN_kilde"},
	KeySourceRN:        {"RN_source", "RN_Source", "RN_kilde"},
	KeyFootnotes:       {"fotnoter", "Fotnoter"},
	KeyFootnotesDN:     {"fotnoter_DN", "Fotnoter_DN"},
	KeyFootnotesN:      {"fotnoter_N", "Fotnoter_N"},
	KeyAddenda:         {"Tillegg", "tillegg"},
	KeyPlaceDN:         {"DN_sted", "DN_Sted"},
	KeyPlaceRN:         {"RN_sted", "RN_Sted"},
	KeyNormalizedPlace: {"Normalized_name", "normalized_name"},
	KeyDateText:        {"DN_dato", "RN_dato", "dato"},
	KeyDateStart:       {"date_start", "Date_start"},
	KeyDateEnd:         {"date_end", "Date_end"},
	KeyLat:             {"LAT", "lat", "latitude", "Lat"},
	KeyLon:             {"LON", "lon", "lng", "longitude", "Lon"},
	KeyUncertainLoc:    {"uncertain_loc", "Uncertain_loc"},
}

// Separators used when several source columns fold into one field.
const (
	PlaceSeparator    = " | "
	SummarySeparator  = " | "
	SourceSeparator   = " | "
	FootnoteSeparator = "\n"
)
