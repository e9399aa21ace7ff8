// Package dates converts partial calendar dates ("1350", "1350-05",
// "1350.05.01") into integer ordinals that sort chronologically, and provides
// the window and interval types used for date-range filtering.
//
// An ordinal is year*10000 + month*100 + day. Missing components are filled
// according to which side of a range the date bounds: a start bound gets the
// first day of the period, an end bound gets the last.
package dates

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	minYear = 1
	maxYear = 9999
)

var (
	dayShape   = regexp.MustCompile(`^(\d{3,4})-(\d{1,2})-(\d{1,2})$`)
	monthShape = regexp.MustCompile(`^(\d{3,4})-(\d{1,2})$`)
	yearShape  = regexp.MustCompile(`^(\d{3,4})$`)
)

// ToOrdinal converts s into an ordinal. end selects how missing month and day
// components are filled. Components out of range are clamped, not rejected.
// The second return value is false when s has none of the accepted shapes.
func ToOrdinal(s string, end bool) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if ord, ok := parse(s, end); ok {
		return ord, true
	}
	if alt := strings.ReplaceAll(s, ".", "-"); alt != s {
		return parse(alt, end)
	}
	return 0, false
}

func parse(s string, end bool) (int, bool) {
	if m := dayShape.FindStringSubmatch(s); m != nil {
		y := clampYear(atoi(m[1]))
		mo := clampMonth(atoi(m[2]))
		d := clampDay(y, mo, atoi(m[3]))
		return Ordinal(y, mo, d), true
	}
	if m := monthShape.FindStringSubmatch(s); m != nil {
		y := clampYear(atoi(m[1]))
		mo := clampMonth(atoi(m[2]))
		d := 1
		if end {
			d = DaysInMonth(y, mo)
		}
		return Ordinal(y, mo, d), true
	}
	if m := yearShape.FindStringSubmatch(s); m != nil {
		y := clampYear(atoi(m[1]))
		if end {
			return Ordinal(y, 12, 31), true
		}
		return Ordinal(y, 1, 1), true
	}
	return 0, false
}

// Ordinal packs a calendar date into its comparable integer form.
func Ordinal(year, month, day int) int {
	return year*10000 + month*100 + day
}

// Split unpacks an ordinal into its components.
func Split(ord int) (year, month, day int) {
	return ord / 10000, ord / 100 % 100, ord % 100
}

// IsLeap reports whether year is a leap year under the Gregorian rule.
func IsLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInMonth returns the number of days in month of year.
func DaysInMonth(year, month int) int {
	switch month {
	case 2:
		if IsLeap(year) {
			return 29
		}
		return 28
	case 4, 6, 9, 11:
		return 30
	}
	return 31
}

func clampYear(y int) int {
	return min(max(y, minYear), maxYear)
}

func clampMonth(m int) int {
	return min(max(m, 1), 12)
}

func clampDay(y, m, d int) int {
	return min(max(d, 1), DaysInMonth(y, m))
}

// atoi is only called on regexp-validated digit runs.
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
