package util

import (
	"strings"
	"unicode"
)

// Slugify converts a title into a URL-safe slug: lowercase ASCII letters,
// digits and single hyphens.
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := true // Suppress a leading hyphen.
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case unicode.IsLetter(r) && r < unicode.MaxASCII, unicode.IsDigit(r) && r < unicode.MaxASCII:
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// EstimateReadTime estimates reading time in minutes from word count,
// assuming roughly 200 words per minute. Always at least one minute for
// non-empty content.
func EstimateReadTime(content string) int {
	words := len(strings.Fields(content))
	if words == 0 {
		return 0
	}
	minutes := (words + 199) / 200
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
