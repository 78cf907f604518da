// Package compliance implements the pure training-lifecycle computations:
// tolerant date parsing, expiry arithmetic and status derivation. Nothing in
// this package performs I/O or reads ambient state; "today" is always an
// explicit argument so results are reproducible.
package compliance

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	isoPattern   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	brPattern    = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})`)
	genericLayouts = []string{
		"2006-01-02T15:04:05Z07:00",
		"2006-01-02 15:04:05",
		"02-01-2006",
		"Jan 2, 2006",
		"January 2, 2006",
		"2 Jan 2006",
	}
)

// ParseFlexibleDate converts a loosely typed cell value into a calendar date.
// Empty values and the sentinels "-" and "N/A" (any case) are treated as
// absent. Strings starting with YYYY-MM-DD parse as ISO; D/M/YYYY parses
// day-first per the spreadsheet locale. A time.Time passes through untouched.
// The second return is false when no valid date could be produced; the
// function never panics on malformed input.
func ParseFlexibleDate(raw interface{}) (time.Time, bool) {
	if raw == nil {
		return time.Time{}, false
	}
	if t, ok := raw.(time.Time); ok {
		if t.IsZero() {
			return time.Time{}, false
		}
		return t, true
	}
	if t, ok := raw.(*time.Time); ok {
		if t == nil || t.IsZero() {
			return time.Time{}, false
		}
		return *t, true
	}

	var str string
	switch v := raw.(type) {
	case string:
		str = v
	case float64:
		// Encoding/json decodes spreadsheet numerics as float64. A bare
		// number is never a usable calendar date here.
		return time.Time{}, false
	default:
		return time.Time{}, false
	}

	str = strings.TrimSpace(str)
	if str == "" || str == "-" || strings.EqualFold(str, "n/a") {
		return time.Time{}, false
	}

	if isoPattern.MatchString(str) {
		if t, err := time.Parse("2006-01-02", str[:10]); err == nil {
			return t, true
		}
		return time.Time{}, false
	}

	if m := brPattern.FindStringSubmatch(str); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if month < 1 || month > 12 || day < 1 || day > daysIn(year, time.Month(month)) {
			return time.Time{}, false
		}
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
	}

	for _, layout := range genericLayouts {
		if t, err := time.Parse(layout, str); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Midnight truncates t to 00:00 UTC, keeping only the calendar day.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
