package helpers

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	htmlTagRegex    = regexp.MustCompile(`<[^>]*>`)
	multiSpaceRegex = regexp.MustCompile(`\s+`)

	// Block-level closing tags separate words in scraped table cells.
	blockEndRegex = regexp.MustCompile(`(?i)<br\s*/?>|</(?:p|div|li|td|th|tr|h[1-6])>`)

	strictPolicy = bluemonday.StrictPolicy()
)

// StripHTML removes HTML markup from a scraped cell and decodes entities.
func StripHTML(s string) string {
	if s == "" {
		return ""
	}

	s = blockEndRegex.ReplaceAllString(s, " ")
	s = strictPolicy.Sanitize(s)

	// bluemonday escapes what it keeps; "&amp;" becomes "&"
	s = html.UnescapeString(s)

	return NormalizeWhitespace(s)
}

// IsHTML checks if a string appears to contain HTML markup.
func IsHTML(s string) bool {
	return htmlTagRegex.MatchString(s)
}

// NormalizeWhitespace normalizes all whitespace to single spaces and trims.
// Non-breaking spaces from scraped pages count as whitespace.
func NormalizeWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = multiSpaceRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
