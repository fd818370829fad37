// Package classification scores extracted document text for pitch-deck signals.
package classification

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/Veraticus/retitle/internal/model"
)

// DefaultScanLimit is the number of characters scanned when no limit is given.
const DefaultScanLimit = 20000

// Weights are the empirical scoring constants of the classifier.
// They are kept as tunables rather than derived values.
type Weights struct {
	Strong         float64 // added once when any strong phrase matches
	Funding        float64 // per funding match, up to FundingCap
	Investor       float64 // per investor match, up to InvestorCap
	Section        float64 // per section match, up to SectionCap
	SectionBonus   float64 // added when sections reach SectionBonusAt
	Threshold      float64 // score at which the verdict flips
	FundingCap     int
	InvestorCap    int
	SectionCap     int
	SectionBonusAt int
}

// DefaultWeights returns the standard scoring constants.
func DefaultWeights() Weights {
	return Weights{
		Strong:         4,
		Funding:        1.5,
		Investor:       0.75,
		Section:        0.5,
		SectionBonus:   2,
		Threshold:      3.5,
		FundingCap:     2,
		InvestorCap:    3,
		SectionCap:     6,
		SectionBonusAt: 4,
	}
}

// Confidence bucket floors.
const (
	highConfidenceScore   = 6
	mediumConfidenceScore = 4
	lowConfidenceScore    = 2
)

// Company-name heuristics.
const (
	maxCompanyLineLength = 120
	minCompanyLineWords  = 2
	maxCompanyLineWords  = 8
	minUppercaseRatio    = 0.6
)

// Go regular expressions carry no match state between calls, so sharing them is safe.
var (
	corporateNamePattern = regexp.MustCompile(
		`\b((?:[A-Z][A-Za-z0-9&'-]*\s+){0,4}[A-Z][A-Za-z0-9&'-]*),?\s+(Inc|LLC|Ltd|Corp|Corporation|Co|GmbH|Limited|PLC|AG|SA|BV|Labs|Technologies)\b\.?`)
	representativePattern = regexp.MustCompile(`(?i)deck|presentation|investor|fund`)
)

// Classifier scores text with a fixed keyword set and weights.
type Classifier struct {
	keywords Keywords
	weights  Weights
}

// NewClassifier creates a classifier with the given keywords and weights.
func NewClassifier(keywords Keywords, weights Weights) *Classifier {
	return &Classifier{keywords: keywords, weights: weights}
}

// DefaultClassifier returns a classifier using the built-in keywords and weights.
func DefaultClassifier() *Classifier {
	return NewClassifier(DefaultKeywords(), DefaultWeights())
}

// ClassifyPitchDeck scores text with the default classifier.
func ClassifyPitchDeck(text string, maxChars int) model.DeckClassification {
	return DefaultClassifier().Classify(text, maxChars)
}

// Classify scores up to maxChars characters of text. It performs no I/O.
func (c *Classifier) Classify(text string, maxChars int) model.DeckClassification {
	if maxChars <= 0 {
		maxChars = DefaultScanLimit
	}
	scanned := truncateRunes(text, maxChars)
	lower := strings.ToLower(scanned)

	result := model.DeckClassification{
		StrongMatches:   matchAll(lower, c.keywords.Strong),
		FundingMatches:  matchAll(lower, c.keywords.Funding),
		InvestorMatches: matchAll(lower, c.keywords.Investor),
		SectionMatches:  matchAll(lower, c.keywords.Sections),
	}

	result.Score = c.score(result)
	result.IsPitchDeck = result.Score >= c.weights.Threshold ||
		len(result.StrongMatches) > 0 ||
		len(result.SectionMatches) >= c.weights.SectionBonusAt
	result.Confidence = confidenceFor(result.Score)
	result.CompanyCandidates = companyCandidates(scanned)
	result.RepresentativeLine = representativeLine(scanned)
	result.Summary = summarize(result)

	return result
}

func (c *Classifier) score(r model.DeckClassification) float64 {
	w := c.weights
	var s float64
	if len(r.StrongMatches) > 0 {
		s += w.Strong
	}
	s += w.Funding * float64(min(len(r.FundingMatches), w.FundingCap))
	s += w.Investor * float64(min(len(r.InvestorMatches), w.InvestorCap))
	s += w.Section * float64(min(len(r.SectionMatches), w.SectionCap))
	if len(r.SectionMatches) >= w.SectionBonusAt {
		s += w.SectionBonus
	}
	return s
}

func confidenceFor(score float64) model.Confidence {
	switch {
	case score >= highConfidenceScore:
		return model.ConfidenceHigh
	case score >= mediumConfidenceScore:
		return model.ConfidenceMedium
	case score >= lowConfidenceScore:
		return model.ConfidenceLow
	default:
		return model.ConfidenceNone
	}
}

// matchAll returns the phrases contained in text, in list order, without duplicates.
func matchAll(text string, phrases []string) []string {
	matches := []string{}
	seen := make(map[string]bool, len(phrases))
	for _, p := range phrases {
		if p == "" || seen[p] {
			continue
		}
		if strings.Contains(text, p) {
			seen[p] = true
			matches = append(matches, p)
		}
	}
	return matches
}

func companyCandidates(text string) []string {
	lines := strings.Split(text, "\n")
	var found []string

	for _, line := range lines {
		for _, m := range corporateNamePattern.FindAllStringSubmatch(line, -1) {
			found = append(found, strings.TrimSpace(m[1])+" "+m[2])
		}
	}

	if len(found) == 0 {
		for _, line := range lines {
			if isUppercaseHeading(line) {
				found = append(found, strings.TrimSpace(line))
			}
		}
	}

	return dedupeFold(found)
}

// isUppercaseHeading reports whether line looks like a short all-caps name line.
func isUppercaseHeading(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || len([]rune(line)) > maxCompanyLineLength {
		return false
	}
	words := strings.Fields(line)
	if len(words) < minCompanyLineWords || len(words) > maxCompanyLineWords {
		return false
	}

	upper := 0
	for _, w := range words {
		if hasLetter(w) && w == strings.ToUpper(w) {
			upper++
		}
	}
	return float64(upper)/float64(len(words)) >= minUppercaseRatio
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func representativeLine(text string) string {
	first := ""
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if representativePattern.MatchString(line) {
			return line
		}
		if first == "" {
			first = line
		}
	}
	return first
}

func summarize(r model.DeckClassification) string {
	var parts []string
	if len(r.StrongMatches) > 0 {
		parts = append(parts, "strong indicators: "+strings.Join(r.StrongMatches, ", "))
	}
	if len(r.FundingMatches) > 0 {
		parts = append(parts, "funding language: "+strings.Join(r.FundingMatches, ", "))
	}
	if len(r.SectionMatches) >= 3 {
		parts = append(parts, "deck sections: "+strings.Join(r.SectionMatches, ", "))
	}
	if len(r.InvestorMatches) > 0 {
		parts = append(parts, "investor language: "+strings.Join(r.InvestorMatches, ", "))
	}
	if len(parts) == 0 {
		return "no pitch deck signals"
	}
	return strings.Join(parts, "; ")
}

func dedupeFold(items []string) []string {
	out := []string{}
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		key := strings.ToLower(item)
		if item == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
