package normalize

import (
	"strconv"
	"strings"
	"time"
)

// sourceZone is the fixed offset applied to timestamps written without an
// explicit zone. The source region does not observe daylight saving.
var sourceZone = time.FixedZone("-03", -3*60*60)

// parseDecimalComma parses a number that may use a comma as the decimal
// separator. Returns ok=false for the missing-value sentinels ("" and "-").
func parseDecimalComma(s string) (float64, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

// ptMonths maps pt-BR month abbreviations (with or without the trailing
// period) to month numbers.
var ptMonths = map[string]time.Month{
	"jan": time.January, "fev": time.February, "mar": time.March,
	"abr": time.April, "mai": time.May, "jun": time.June,
	"jul": time.July, "ago": time.August, "set": time.September,
	"out": time.October, "nov": time.November, "dez": time.December,
}

func parsePTMonth(s string) (time.Month, bool) {
	s = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), ".")
	m, ok := ptMonths[s]
	return m, ok
}

// timestampLayouts are tried in order for the long layouts. Layouts without
// a zone are interpreted in sourceZone.
var timestampLayouts = []struct {
	layout  string
	hasZone bool
}{
	{time.RFC3339, true},
	{"2006-01-02 15:04:05", false},
	{"2006-01-02 15:04", false},
	{"2006-01-02", false},
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, l := range timestampLayouts {
		var t time.Time
		var err error
		if l.hasZone {
			t, err = time.Parse(l.layout, s)
		} else {
			t, err = time.ParseInLocation(l.layout, s, sourceZone)
		}
		if err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// timeMonth widens an integer month without range checking; validDate's
// round trip rejects out-of-range values.
func timeMonth(m int) time.Month { return time.Month(m) }

// validDate reports whether (year, month, day) names a real calendar day.
// time.Date normalizes overflow (Feb 31 becomes Mar 2 or 3), so the check is
// a round trip.
func validDate(year int, month time.Month, day int) (time.Time, bool) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// toMeters converts a tide height to meters. Empty unit means meters.
func toMeters(v float64, unit string) (float64, bool) {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "", "m":
		return v, true
	case "cm":
		return v / 100, true
	default:
		return 0, false
	}
}

// toMillimeters converts a rainfall amount to millimeters. Empty unit means
// millimeters.
func toMillimeters(v float64, unit string) (float64, bool) {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "", "mm":
		return v, true
	case "in":
		return v * 25.4, true
	default:
		return 0, false
	}
}
