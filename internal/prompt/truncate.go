package prompt

import (
	"strings"
	"unicode/utf8"
)

// Soft truncation accepts a boundary only past these fractions of the limit.
const (
	newlineBoundary  = 0.6
	sentenceBoundary = 0.5
)

// SoftTruncate shortens text to at most limit characters, preferring to cut at
// the last newline and then at the last sentence end. It reports whether text changed.
func SoftTruncate(text string, limit int) (string, bool) {
	if utf8.RuneCountInString(text) <= limit {
		return text, false
	}
	if limit <= 0 {
		return "", true
	}

	cut := []rune(text)[:limit]

	if idx := lastIndexOf(cut, func(r rune) bool { return r == '\n' }); idx >= 0 && float64(idx) > newlineBoundary*float64(limit) {
		return strings.TrimRight(string(cut[:idx]), " \t\r"), true
	}
	if idx := lastIndexOf(cut, isSentenceEnd); idx >= 0 && float64(idx) > sentenceBoundary*float64(limit) {
		return string(cut[:idx+1]), true
	}

	return string(cut), true
}

// HardTruncate cuts text to at most limit characters.
func HardTruncate(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	return string([]rune(text)[:limit])
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func lastIndexOf(runes []rune, match func(rune) bool) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if match(runes[i]) {
			return i
		}
	}
	return -1
}
