// Package normalize canonicalizes text produced by the format extractors.
package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	newlineRun = regexp.MustCompile(`\n{3,}`)
	blankRun   = regexp.MustCompile(`[ \t]{2,}`)
)

// Text decodes entities, normalizes line endings, collapses blank runs and trims.
// It is total and idempotent.
func Text(raw string) string {
	if raw == "" {
		return ""
	}

	text := decode(raw)
	text = newlineRun.ReplaceAllString(text, "\n\n")
	text = blankRun.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// decode unescapes entities and drops carriage returns until the text is stable.
func decode(text string) string {
	for {
		next := strings.ReplaceAll(html.UnescapeString(text), "\r", "")
		if next == text {
			return text
		}
		text = next
	}
}

// Len counts characters, not bytes.
func Len(text string) int {
	return len([]rune(text))
}
