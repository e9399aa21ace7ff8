package core

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rubiojr/diplomatarium/pkg/dates"
)

// Normalize maps a raw shard record onto a Document. shard and row locate the
// record in the load sequence and make the id unique even when reference
// codes repeat. Normalize never fails: missing or unusable values leave the
// corresponding field empty.
func Normalize(raw RawRecord, shard, row int) *Document {
	d := &Document{
		DNRef:           lookup(raw, KeyDNRef),
		RNRef:           lookup(raw, KeyRNRef),
		SDNID:           lookup(raw, KeySDNID),
		FullText:        lookup(raw, KeyFullText),
		Addenda:         lookup(raw, KeyAddenda),
		PlaceDN:         lookup(raw, KeyPlaceDN),
		PlaceRN:         lookup(raw, KeyPlaceRN),
		NormalizedPlace: lookup(raw, KeyNormalizedPlace),
		DateText:        lookup(raw, KeyDateText),
		DateStart:       lookup(raw, KeyDateStart),
		DateEnd:         lookup(raw, KeyDateEnd),
		Raw:             raw,
	}

	d.Summary = join(SummarySeparator, lookup(raw, KeySummary), lookup(raw, KeyRegest))
	d.Source = lookup(raw, KeySource)
	if d.Source == "" {
		d.Source = join(SourceSeparator, lookup(raw, KeySourceDN), lookup(raw, KeySourceRN))
	}
	d.Footnotes = lookup(raw, KeyFootnotes)
	if d.Footnotes == "" {
		d.Footnotes = join(FootnoteSeparator, lookup(raw, KeyFootnotesDN), lookup(raw, KeyFootnotesN))
	}
	d.PlaceAll = join(PlaceSeparator, d.PlaceDN, d.PlaceRN, d.NormalizedPlace)

	d.Dates = dates.NewInterval(d.DateStart, d.DateEnd)

	lat, latOK := coordinate(lookup(raw, KeyLat))
	lon, lonOK := coordinate(lookup(raw, KeyLon))
	if latOK && lonOK && math.Abs(lat) <= 90 && math.Abs(lon) <= 180 {
		d.Lat, d.Lon, d.HasCoordinates = lat, lon, true
	}
	d.UncertainLocation = truthy(lookup(raw, KeyUncertainLoc))

	ref := firstNonEmpty(d.DNRef, d.SDNID, d.RNRef, "doc")
	d.ID = fmt.Sprintf("%s#%d:%d", ref, shard, row)
	return d
}

// lookup returns the first non-empty value stored under one of key's aliases.
func lookup(raw RawRecord, key string) string {
	for _, name := range Aliases[key] {
		if s := stringify(raw[name]); s != "" {
			return s
		}
	}
	return ""
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

func coordinate(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func truthy(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "ja", "x":
		return true
	}
	return false
}

func join(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
