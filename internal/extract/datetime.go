package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Month names and abbreviations seen on the supported sources (English and
// Italian pages).
var monthNames = map[string]time.Month{
	"jan": time.January, "gen": time.January, "january": time.January, "gennaio": time.January,
	"feb": time.February, "february": time.February, "febbraio": time.February,
	"mar": time.March, "march": time.March, "marzo": time.March,
	"apr": time.April, "april": time.April, "aprile": time.April,
	"may": time.May, "mag": time.May, "maggio": time.May,
	"jun": time.June, "giu": time.June, "june": time.June, "giugno": time.June,
	"jul": time.July, "lug": time.July, "july": time.July, "luglio": time.July,
	"aug": time.August, "ago": time.August, "august": time.August, "agosto": time.August,
	"sep": time.September, "set": time.September, "september": time.September, "settembre": time.September,
	"oct": time.October, "ott": time.October, "october": time.October, "ottobre": time.October,
	"nov": time.November, "november": time.November, "novembre": time.November,
	"dec": time.December, "dic": time.December, "december": time.December, "dicembre": time.December,
}

var (
	dayMonthPattern = regexp.MustCompile(`(?i)\b(\d{1,2})\s+([a-zà-ù]+)\.?\s*(\d{4})?`)
	monthDayPattern = regexp.MustCompile(`(?i)\b([a-zà-ù]+)\.?\s+(\d{1,2})(?:st|nd|rd|th)?\b\s*,?\s*(\d{4})?`)
	clockPattern    = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
)

// isoLayouts are tried first for machine-readable datetime attributes.
var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseISOTime parses a machine-readable datetime attribute value.
func ParseISOTime(value string, loc *time.Location) *time.Time {
	v := strings.TrimSpace(value)
	if v == "" {
		return nil
	}
	for _, layout := range isoLayouts {
		if layout == time.RFC3339 {
			if t, err := time.Parse(layout, v); err == nil {
				return &t
			}
			continue
		}
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return &t
		}
	}
	return nil
}

// ParseEventTime resolves free-form date text in the city's timezone. A bare
// day/month with no year is projected onto the next future occurrence of
// that date: vendor listings only advertise upcoming events, so a resolved
// date earlier than now minus one day belongs to next year.
func ParseEventTime(text string, loc *time.Location, now time.Time) *time.Time {
	t := strings.TrimSpace(text)
	if t == "" {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}

	if iso := ParseISOTime(t, loc); iso != nil {
		return iso
	}

	day, month, year, ok := findCalendarDate(t)
	if !ok {
		return nil
	}

	hour, minute := 0, 0
	if m := clockPattern.FindStringSubmatch(t); m != nil {
		hour, _ = strconv.Atoi(m[1])
		minute, _ = strconv.Atoi(m[2])
	}

	hadYear := year != 0
	if !hadYear {
		year = now.In(loc).Year()
	}

	resolved := time.Date(year, month, day, hour, minute, 0, 0, loc)
	if !hadYear && resolved.Before(now.Add(-24*time.Hour)) {
		resolved = resolved.AddDate(1, 0, 0)
	}
	return &resolved
}

func findCalendarDate(text string) (day int, month time.Month, year int, ok bool) {
	if m := dayMonthPattern.FindStringSubmatch(text); m != nil {
		if mon, found := monthNames[strings.ToLower(m[2])]; found {
			day, _ = strconv.Atoi(m[1])
			if m[3] != "" {
				year, _ = strconv.Atoi(m[3])
			}
			return day, mon, year, day >= 1 && day <= 31
		}
	}
	if m := monthDayPattern.FindStringSubmatch(text); m != nil {
		if mon, found := monthNames[strings.ToLower(m[1])]; found {
			day, _ = strconv.Atoi(m[2])
			if m[3] != "" {
				year, _ = strconv.Atoi(m[3])
			}
			return day, mon, year, day >= 1 && day <= 31
		}
	}
	return 0, 0, 0, false
}
