// Package caseconv converts free text into the named case styles used for filenames.
package caseconv

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Style names a text casing transform.
type Style string

// Supported case styles.
const (
	Camel       Style = "camelCase"
	Pascal      Style = "pascalCase"
	Kebab       Style = "kebabCase"
	Snake       Style = "snakeCase"
	Constant    Style = "constantCase"
	Dot         Style = "dotCase"
	Capital     Style = "capitalCase"
	Sentence    Style = "sentenceCase"
	NoCase      Style = "noCase"
	Train       Style = "trainCase"
	PascalSnake Style = "pascalSnakeCase"
)

// Default is used when no style is configured.
const Default = Kebab

// Styles lists every supported style in display order.
func Styles() []Style {
	return []Style{Camel, Pascal, Kebab, Snake, Constant, Dot, Capital, Sentence, NoCase, Train, PascalSnake}
}

// Parse resolves a style name. Both "kebabCase" and the short form "kebab" are accepted.
func Parse(name string) (Style, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return Default, true
	}
	for _, s := range Styles() {
		full := strings.ToLower(string(s))
		if n == full || n == strings.TrimSuffix(full, "case") {
			return s, true
		}
	}
	return "", false
}

// Separator returns the string placed between words for style.
func Separator(style Style) string {
	switch style {
	case Kebab, Train:
		return "-"
	case Snake, Constant, PascalSnake:
		return "_"
	case Dot:
		return "."
	case Capital, Sentence, NoCase:
		return " "
	default:
		return ""
	}
}

// Convert renders text in the given style. Unknown styles fall back to kebab case.
func Convert(text string, style Style) string {
	parts := Words(text)
	if len(parts) == 0 {
		return ""
	}

	// Casers keep state and are created per call.
	lower := cases.Lower(language.Und)
	upper := cases.Upper(language.Und)
	title := cases.Title(language.Und)

	out := make([]string, len(parts))
	for i, w := range parts {
		switch style {
		case Camel:
			if i == 0 {
				out[i] = lower.String(w)
			} else {
				out[i] = title.String(w)
			}
		case Pascal, Capital, Train, PascalSnake:
			out[i] = title.String(w)
		case Constant:
			out[i] = upper.String(w)
		case Sentence:
			if i == 0 {
				out[i] = title.String(w)
			} else {
				out[i] = lower.String(w)
			}
		case Snake, Dot, NoCase, Kebab:
			out[i] = lower.String(w)
		default:
			style = Kebab
			out[i] = lower.String(w)
		}
	}

	return strings.Join(out, Separator(style))
}

// Words splits text into words on non-alphanumeric runs and camel-case boundaries.
// Combining marks stay with their base letter, so Devanagari and decomposed
// Latin words survive intact.
// Digits stay attached to the letters before them, so "Q3" is one word.
func Words(text string) []string {
	var words []string
	var current []rune

	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
	}

	runes := []rune(text)
	for i, r := range runes {
		// Combining marks belong to the letter they follow.
		if unicode.IsMark(r) {
			if len(current) > 0 {
				current = append(current, r)
			}
			continue
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if len(current) > 0 && unicode.IsUpper(r) {
			prev := current[len(current)-1]
			switch {
			case unicode.IsLower(prev) || unicode.IsDigit(prev):
				// budgetReview, q3Report
				flush()
			case unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
				// HTMLParser splits before the P
				flush()
			}
		}
		current = append(current, r)
	}
	flush()

	return words
}
