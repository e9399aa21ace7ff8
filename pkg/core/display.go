package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	UnknownDate  = "Ukjent"
	UnknownPlace = "Ukjent sted"
	NoReference  = "Uten referanse"
)

var (
	dnCode    = regexp.MustCompile(`(?i)^DN(\d{3})(\d{5})$`)
	yearStart = regexp.MustCompile(`^(\d{4})`)
)

// DisplayDate returns the human readable date of the letter: the date text
// when present, otherwise the year span of the machine dates.
func (d *Document) DisplayDate() string {
	if d.DateText != "" {
		return d.DateText
	}
	start, okStart := leadingYear(d.DateStart)
	end, okEnd := leadingYear(d.DateEnd)
	if !okEnd {
		end, okEnd = start, okStart
	}
	switch {
	case okStart && start != end:
		return fmt.Sprintf("%d–%d", start, end)
	case okStart:
		return strconv.Itoa(start)
	case okEnd:
		return strconv.Itoa(end)
	}
	return UnknownDate
}

// BestPlace prefers the normalized place name over the raw variants.
func (d *Document) BestPlace() string {
	if p := firstNonEmpty(d.NormalizedPlace, d.PlaceDN, d.PlaceRN); p != "" {
		return p
	}
	return UnknownPlace
}

// Reference returns the primary reference code of the letter.
func (d *Document) Reference() string {
	if r := firstNonEmpty(d.DNRef, d.RNRef); r != "" {
		return r
	}
	return NoReference
}

// ArchaicRef renders a DN code such as DN00400123 as its printed citation,
// "Diplomatarium Norvegicum IV, 123". Other codes render as "".
func (d *Document) ArchaicRef() string {
	m := dnCode.FindStringSubmatch(d.DNRef)
	if m == nil {
		return ""
	}
	vol, _ := strconv.Atoi(m[1])
	num, _ := strconv.Atoi(m[2])
	if vol <= 0 {
		return ""
	}
	return fmt.Sprintf("Diplomatarium Norvegicum %s, %d", Roman(vol), num)
}

var romanTable = []struct {
	value  int
	symbol string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

// Roman returns n in Roman numerals, or "" for n <= 0.
func Roman(n int) string {
	var b strings.Builder
	for _, r := range romanTable {
		for n >= r.value {
			b.WriteString(r.symbol)
			n -= r.value
		}
	}
	return b.String()
}

func leadingYear(s string) (int, bool) {
	m := yearStart.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	y, err := strconv.Atoi(m[1])
	return y, err == nil && y != 0
}
