package extract

import (
	"regexp"
	"strconv"
	"strings"
)

var priceToken = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

// Free-entry markers seen across sources. Matched case-insensitively against
// the whole trimmed price text.
var freeMarkers = map[string]struct{}{
	"gratis":     {},
	"gratuito":   {},
	"free":       {},
	"free entry": {},
	"ingresso gratuito": {},
}

// ParsePriceRange extracts a currency-less numeric range from vendor price
// text. "Gratis" and friends map to an explicit 0–0 range; text with no
// numeric tokens yields nil bounds, never an error.
func ParsePriceRange(text string) (*float64, *float64) {
	t := strings.TrimSpace(text)
	if t == "" {
		return nil, nil
	}

	if _, ok := freeMarkers[strings.ToLower(t)]; ok {
		zero := 0.0
		zero2 := 0.0
		return &zero, &zero2
	}

	tokens := priceToken.FindAllString(t, -1)
	if len(tokens) == 0 {
		return nil, nil
	}

	lo, hi := 0.0, 0.0
	first := true
	for _, tok := range tokens {
		v, err := strconv.ParseFloat(strings.ReplaceAll(tok, ",", "."), 64)
		if err != nil {
			continue
		}
		if first {
			lo, hi = v, v
			first = false
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if first {
		return nil, nil
	}
	return &lo, &hi
}
