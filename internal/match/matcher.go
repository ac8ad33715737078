// Package match implements the venue-to-place heuristic used when an event
// submission is promoted: scraped venue text rarely matches a place name
// byte-for-byte, so matching normalizes both sides and accepts substring
// containment in either direction. Exact normalized equality always wins
// over a containment match.
package match

import (
	"regexp"
	"strings"

	"github.com/cityfeed/cityfeed/internal/model"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9 ]`)

// Normalize lowercases text and strips punctuation and extra whitespace.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = nonAlnum.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// Place finds the best matching place for a venue name. Returns nil when no
// place matches. Precedence: exact normalized equality, then bidirectional
// substring containment (first hit in slice order).
func Place(venueName string, places []model.Place) *model.Place {
	venue := Normalize(venueName)
	if venue == "" {
		return nil
	}

	for i := range places {
		if Normalize(places[i].Name) == venue {
			return &places[i]
		}
	}

	for i := range places {
		name := Normalize(places[i].Name)
		if name == "" {
			continue
		}
		if strings.Contains(name, venue) || strings.Contains(venue, name) {
			return &places[i]
		}
	}
	return nil
}
