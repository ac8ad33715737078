package util

import (
	"regexp"
	"strings"
)

var (
	nonSlugChars = regexp.MustCompile(`[^\w\s-]`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// Slugify lowercases text, strips punctuation and collapses whitespace into
// hyphens.
func Slugify(text string) string {
	text = strings.ToLower(text)
	text = nonSlugChars.ReplaceAllString(text, "")
	text = whitespace.ReplaceAllString(text, "-")
	return strings.Trim(text, "-")
}
