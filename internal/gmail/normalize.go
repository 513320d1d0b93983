package gmail

import (
	"html"
	"regexp"
	"strings"
)

// MaxBodyChars caps normalized bodies before classification. The dashboard
// re-truncates to MaxDisplayChars independently; both limits apply in
// sequence.
const (
	MaxBodyChars    = 10000
	MaxDisplayChars = 1000
)

// TruncationMarker is appended whenever a truncation shortens the text.
const TruncationMarker = "..."

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeText decodes HTML entities, collapses all whitespace runs
// (including newlines) to single spaces, and hard-truncates to MaxBodyChars.
func NormalizeText(s string) string {
	s = html.UnescapeString(s)
	s = whitespaceRun.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	return Truncate(s, MaxBodyChars)
}

// Truncate hard-caps s at max characters, appending the truncation marker
// only when something was cut.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + TruncationMarker
}
