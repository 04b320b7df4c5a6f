// Package sanitizer normalizes free-text input before validation and storage.
package sanitizer

import (
	"strings"
	"unicode"
)

// TrimAndNormalize trims surrounding whitespace and collapses internal
// whitespace runs into a single space.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

// NormalizeExamName cleans up an admin-supplied exam label.
func NormalizeExamName(name string) string {
	return TrimAndNormalize(name)
}

// NormalizeExamID lowercases an exam grouping key so that duplicate-booking
// checks are case-insensitive.
func NormalizeExamID(id string) string {
	return strings.ToLower(TrimAndNormalize(id))
}
