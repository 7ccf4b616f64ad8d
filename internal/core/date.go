package core

import (
	"strings"
	"time"
)

// DateLayout is the canonical stored form of a transaction date.
const DateLayout = "2006-01-02"

// Single-digit layout elements also accept zero-padded input, so "1/2/2006"
// matches both 1/5/2024 and 01/05/2024.
var (
	isoLayouts = []string{
		"2006-1-2",
		"2006/1/2",
		"2006.1.2",
	}
	monthFirstLayouts = []string{"1/2/2006", "1-2-2006"}
	dayFirstLayouts   = []string{"2/1/2006", "2-1-2006"}
	tailLayouts       = []string{
		// Dotted numeric dates are always day-first.
		"2.1.2006",
		"2006-1-2 15:04:05",
		"2006-1-2T15:04:05",
		time.RFC3339,
		"Jan 2, 2006",
		"January 2, 2006",
		"2 Jan 2006",
		"2 January 2006",
		"20060102",
	}
)

var (
	monthFirstOrder = joinLayouts(isoLayouts, monthFirstLayouts, dayFirstLayouts, tailLayouts)
	dayFirstOrder   = joinLayouts(isoLayouts, dayFirstLayouts, monthFirstLayouts, tailLayouts)
)

func joinLayouts(groups ...[]string) []string {
	var out []string
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// NormalizeDate parses s with any of the supported layouts and renders it
// as YYYY-MM-DD. An ambiguous numeric date like 01/02/2024 is read
// month-first; a first field above 12 falls through to day-first. The time
// of day and zone, if any, are discarded.
func NormalizeDate(s string) (string, error) {
	return normalizeDate(s, monthFirstOrder)
}

// NormalizeDateDayFirst is NormalizeDate reading ambiguous numeric dates
// day-first, as most European bank exports write them.
func NormalizeDateDayFirst(s string) (string, error) {
	return normalizeDate(s, dayFirstOrder)
}

func normalizeDate(s string, layouts []string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyDate
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateLayout), nil
		}
	}
	return "", ErrUnparseableDate
}

// MonthOf returns the YYYY-MM bucket of a stored date. It reports false
// when the date is not a calendar date (raw text kept by an import).
func MonthOf(date string) (string, bool) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(date))
	if err != nil {
		return "", false
	}
	return t.Format("2006-01"), true
}
