// Package resolver turns free-form model replies into sanitized, length-bounded filenames.
//
// Resolution never fails. A reply that yields nothing usable degrades to
// FallbackName, converted to the requested case style.
package resolver

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Veraticus/retitle/internal/caseconv"
	"github.com/Veraticus/retitle/internal/model"
)

// FallbackName is used when nothing survives extraction.
const FallbackName = "renamed file"

// Candidate ceiling parameters.
const (
	defaultCeiling   = 120
	ceilingAllowance = 0.25
)

// Strategy names the extraction path that produced a name.
type Strategy string

// Extraction strategies in the order they are tried.
const (
	StrategyLabel    Strategy = "label"
	StrategyLine     Strategy = "line"
	StrategySegment  Strategy = "segment"
	StrategyFullText Strategy = "full-text"
	StrategyFallback Strategy = "fallback"
	StrategySkip     Strategy = "skip"
)

var (
	labeledValuePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?im)\bfile\s*name\s*(?:is\s*[:=]?|[:=])\s*(.+)$`),
		regexp.MustCompile(`(?im)\b(?:suggested|proposed|recommended)\s+(?:file\s*name|name)\s*(?:is\s*[:=]?|[:=])?\s*(.+)$`),
		regexp.MustCompile(`(?im)^\s*name\s*[:=]\s*(.+)$`),
	}
	leadingLabelPattern = regexp.MustCompile(
		`(?i)^\s*(?:(?:suggested|proposed|recommended|new)\s+)?(?:file\s*name|name|title)\s*(?:is\s*[:=]?|[:=])\s*`)
	segmentSeparator = regexp.MustCompile(`[,;]`)
	disallowedChars  = regexp.MustCompile(`[^\p{L}\p{M}\p{N}\s_-]+`)
	skipPattern      = regexp.MustCompile(`(?i)^skip\b`)
	yearPattern      = regexp.MustCompile(`(?:^|[^0-9])(?:19|20)[0-9]{2}(?:[^0-9]|$)`)
	quoteReplacer    = strings.NewReplacer(`"`, "", "'", "", "`", "", "“", "", "”", "", "‘", "", "’", "")
	newlineReplacer  = strings.NewReplacer("\r\n", "\n", "\r", "\n", "\x00", "")
)

// Options controls resolution of a single reply.
type Options struct {
	Metadata     *model.FileMetadata
	CaseStyle    caseconv.Style
	Tags         []string
	CharLimit    int
	PitchDeck    bool
	DateFallback bool
}

// Resolution describes the chosen name and how it was reached.
type Resolution struct {
	Name         string
	Candidate    string
	Strategy     Strategy
	AppendedDate string
	AppendedTags []string
	UsedFallback bool
	Truncated    bool
	Skipped      bool
}

// Resolve reduces reply to a filename (without extension).
func Resolve(reply string, opts Options) Resolution {
	normalized := strings.TrimSpace(newlineReplacer.Replace(reply))

	if opts.PitchDeck {
		collapsed := strings.Join(strings.Fields(normalized), " ")
		if collapsed == "" || skipPattern.MatchString(collapsed) {
			return Resolution{Strategy: StrategySkip, Skipped: true}
		}
	}

	ceiling := CandidateCeiling(opts.CharLimit)
	candidate, strategy := ExtractCandidate(normalized, ceiling)

	res := Resolution{Candidate: candidate, Strategy: strategy}

	base := candidate
	if tags := sanitizeTags(opts.Tags); len(tags) > 0 {
		parts := append([]string{}, tags...)
		if base != "" {
			parts = append([]string{base}, tags...)
		}
		base = strings.Join(parts, " - ")
		res.AppendedTags = tags
	}

	if opts.DateFallback && base != "" && !yearPattern.MatchString(base) {
		if date, ok := opts.Metadata.FallbackDate(); ok {
			suffix := " " + date
			room := ceiling - utf8.RuneCountInString(suffix)
			if utf8.RuneCountInString(base) > room {
				base = ShortenAtWord(base, room)
			}
			base = strings.TrimSpace(base + suffix)
			res.AppendedDate = date
		}
	}

	name := caseconv.Convert(base, opts.CaseStyle)
	if enforced := EnforceLength(name, opts.CharLimit); enforced != name {
		name = enforced
		res.Truncated = true
	}

	if name == "" {
		name = EnforceLength(caseconv.Convert(FallbackName, opts.CaseStyle), opts.CharLimit)
		res.UsedFallback = true
		res.Strategy = StrategyFallback
	}

	res.Name = name
	return res
}

// CandidateCeiling is the length allowed for an extracted candidate:
// the character limit plus a 25% allowance, or 120 when the limit is unset.
func CandidateCeiling(charLimit int) int {
	if charLimit <= 0 {
		return defaultCeiling
	}
	return charLimit + int(math.Ceil(float64(charLimit)*ceilingAllowance))
}

// ExtractCandidate returns the first usable candidate in normalized text.
func ExtractCandidate(normalized string, ceiling int) (string, Strategy) {
	type segment struct {
		text     string
		strategy Strategy
	}

	var segments []segment
	for _, re := range labeledValuePatterns {
		if m := re.FindStringSubmatch(normalized); m != nil {
			segments = append(segments, segment{m[1], StrategyLabel})
		}
	}
	for _, line := range strings.Split(normalized, "\n") {
		segments = append(segments, segment{line, StrategyLine})
	}
	for _, part := range segmentSeparator.Split(normalized, -1) {
		segments = append(segments, segment{part, StrategySegment})
	}

	seen := make(map[string]bool, len(segments))
	for _, seg := range segments {
		// A bare label such as "Here is a name:" introduces a value and is not
		// one. A reply whose only line ends in ':' still reaches the full-text pass.
		if strings.HasSuffix(strings.TrimSpace(seg.text), ":") {
			continue
		}
		clean := cleanSegment(seg.text)
		key := strings.ToLower(clean)
		if clean == "" || seen[key] {
			continue
		}
		seen[key] = true
		return ShortenAtWord(clean, ceiling), seg.strategy
	}

	return ShortenAtWord(Sanitize(normalized), ceiling), StrategyFullText
}

func cleanSegment(s string) string {
	s = quoteReplacer.Replace(s)
	s = leadingLabelPattern.ReplaceAllString(s, "")
	return Sanitize(s)
}

// Sanitize keeps letters, combining marks, digits, whitespace, hyphens and underscores,
// replaces everything else with spaces and collapses runs of whitespace.
func Sanitize(s string) string {
	s = disallowedChars.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// ShortenAtWord trims s to at most limit characters without splitting a word,
// unless the first word alone is longer than limit.
func ShortenAtWord(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit <= 0 {
		return ""
	}

	cut := runes[:limit]
	if runes[limit] == ' ' {
		return strings.TrimSpace(string(cut))
	}
	for i := len(cut) - 1; i > 0; i-- {
		if cut[i] == ' ' {
			return strings.TrimSpace(string(cut[:i]))
		}
	}
	return string(cut)
}

// EnforceLength cuts name to limit characters, preferring the last hyphen and
// then the last underscore as the cut point. A separator right after the
// limit counts, so a whole word that fits is kept. Trailing separators are
// removed. A limit of zero or less disables enforcement.
func EnforceLength(name string, limit int) string {
	runes := []rune(name)
	if limit <= 0 || len(runes) <= limit {
		return name
	}

	window := runes[:limit+1]
	cut := runes[:limit]
	if i := lastIndex(window, '-'); i > 0 {
		cut = runes[:i]
	} else if i := lastIndex(window, '_'); i > 0 {
		cut = runes[:i]
	}

	return strings.TrimRight(string(cut), "-_. ")
}

func lastIndex(runes []rune, r rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == r {
			return i
		}
	}
	return -1
}

func sanitizeTags(tags []string) []string {
	var out []string
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		clean := Sanitize(tag)
		key := strings.ToLower(clean)
		if clean == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, clean)
	}
	return out
}
