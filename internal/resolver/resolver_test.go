package resolver

import (
	"math/rand"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/retitle/internal/caseconv"
	"github.com/Veraticus/retitle/internal/model"
)

func TestResolve_LabeledReply(t *testing.T) {
	res := Resolve("Filename: Q3 Budget Review", Options{CaseStyle: caseconv.Kebab, CharLimit: 30})

	assert.Equal(t, "Q3 Budget Review", res.Candidate)
	assert.Equal(t, "q3-budget-review", res.Name)
	assert.Equal(t, StrategyLabel, res.Strategy)
	assert.False(t, res.UsedFallback)
	assert.False(t, res.Truncated)
	assert.False(t, res.Skipped)
}

func TestResolve_Strategies(t *testing.T) {
	tests := []struct {
		name      string
		reply     string
		candidate string
		strategy  Strategy
	}{
		{
			name:      "suggested filename label",
			reply:     "After reading the document, my suggested filename is \"Acme Lease Agreement\"",
			candidate: "Acme Lease Agreement",
			strategy:  StrategyLabel,
		},
		{
			name:      "name label on its own line",
			reply:     "Sure.\nname: Team Offsite Photos",
			candidate: "Team Offsite Photos",
			strategy:  StrategyLabel,
		},
		{
			name:      "plain first line",
			reply:     "Invoice March 2024\nThis is an invoice.",
			candidate: "Invoice March 2024",
			strategy:  StrategyLine,
		},
		{
			name:      "introductory line is skipped",
			reply:     "Here is a good option:\n\n`Hiking Trip Alps`",
			candidate: "Hiking Trip Alps",
			strategy:  StrategyLine,
		},
		{
			name:      "punctuation is stripped",
			reply:     "Résumé (final) v2!",
			candidate: "Résumé final v2",
			strategy:  StrategyLine,
		},
		{
			name:      "title label is stripped from line",
			reply:     "Title: Garden Plan",
			candidate: "Garden Plan",
			strategy:  StrategyLine,
		},
		{
			name:      "symbols only falls through to fallback",
			reply:     "!!! ??? ...",
			candidate: "",
			strategy:  StrategyFallback,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Resolve(tt.reply, Options{CaseStyle: caseconv.Kebab, CharLimit: 40})
			assert.Equal(t, tt.candidate, res.Candidate)
			assert.Equal(t, tt.strategy, res.Strategy)
		})
	}
}

func TestResolve_FallbackPhrase(t *testing.T) {
	for _, reply := range []string{"", "   ", "\x00\x00", "***"} {
		res := Resolve(reply, Options{CaseStyle: caseconv.Snake, CharLimit: 30})
		assert.Equal(t, "renamed_file", res.Name, "reply %q", reply)
		assert.True(t, res.UsedFallback)
		assert.Equal(t, StrategyFallback, res.Strategy)
	}
}

func TestResolve_FallbackPhraseRespectsLimit(t *testing.T) {
	res := Resolve("", Options{CaseStyle: caseconv.Kebab, CharLimit: 8})
	assert.Equal(t, "renamed", res.Name)
	assert.True(t, res.UsedFallback)
}

func TestResolve_PitchDeckSkip(t *testing.T) {
	tests := []struct {
		reply string
		skip  bool
	}{
		{"SKIP", true},
		{"  skip\n", true},
		{"Skip - not a deck", true},
		{"", true},
		{"Skipper Labs Seed Deck", false},
		{"Acme Seed Deck", false},
	}

	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			res := Resolve(tt.reply, Options{CaseStyle: caseconv.Kebab, CharLimit: 40, PitchDeck: true})
			assert.Equal(t, tt.skip, res.Skipped)
			if tt.skip {
				assert.Empty(t, res.Name)
				assert.Equal(t, StrategySkip, res.Strategy)
			} else {
				assert.NotEmpty(t, res.Name)
			}
		})
	}

	// Outside pitch-deck mode SKIP is an ordinary word.
	res := Resolve("SKIP", Options{CaseStyle: caseconv.Kebab, CharLimit: 40})
	assert.False(t, res.Skipped)
	assert.Equal(t, "skip", res.Name)
}

func TestResolve_TagsAndDate(t *testing.T) {
	created := time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC)
	meta := &model.FileMetadata{CreatedAt: &created}

	t.Run("tags appended and deduplicated", func(t *testing.T) {
		res := Resolve("Beach Photos", Options{
			CaseStyle: caseconv.Kebab,
			CharLimit: 60,
			Tags:      []string{"Red", "red", "Family!"},
		})
		assert.Equal(t, "beach-photos-red-family", res.Name)
		assert.Equal(t, []string{"Red", "Family"}, res.AppendedTags)
	})

	t.Run("date appended when no year present", func(t *testing.T) {
		res := Resolve("Beach Photos", Options{
			CaseStyle:    caseconv.Kebab,
			CharLimit:    60,
			Metadata:     meta,
			DateFallback: true,
		})
		assert.Equal(t, "beach-photos-2022-06-01", res.Name)
		assert.Equal(t, "2022-06-01", res.AppendedDate)
	})

	t.Run("existing year suppresses date", func(t *testing.T) {
		res := Resolve("Tax Return 2019", Options{
			CaseStyle:    caseconv.Kebab,
			CharLimit:    60,
			Metadata:     meta,
			DateFallback: true,
		})
		assert.Equal(t, "tax-return-2019", res.Name)
		assert.Empty(t, res.AppendedDate)
	})

	t.Run("longer digit runs are not years", func(t *testing.T) {
		res := Resolve("Order 120199", Options{
			CaseStyle:    caseconv.Kebab,
			CharLimit:    60,
			Metadata:     meta,
			DateFallback: true,
		})
		assert.Equal(t, "2022-06-01", res.AppendedDate)
	})

	t.Run("base shrinks to keep the date", func(t *testing.T) {
		res := Resolve("Extremely Detailed Quarterly Planning Notes", Options{
			CaseStyle:    caseconv.NoCase,
			CharLimit:    20,
			Metadata:     meta,
			DateFallback: true,
		})
		assert.Equal(t, "2022-06-01", res.AppendedDate)
		assert.LessOrEqual(t, utf8.RuneCountInString(res.Name), 20)
	})

	t.Run("no metadata means no date", func(t *testing.T) {
		res := Resolve("Beach Photos", Options{CaseStyle: caseconv.Kebab, CharLimit: 60, DateFallback: true})
		assert.Empty(t, res.AppendedDate)
		assert.Equal(t, "beach-photos", res.Name)
	})
}

func TestResolve_Truncation(t *testing.T) {
	res := Resolve("Annual Shareholder Meeting Minutes Draft", Options{CaseStyle: caseconv.Kebab, CharLimit: 25})

	assert.True(t, res.Truncated)
	assert.Equal(t, "annual-shareholder", res.Name)
}

func TestResolve_CombiningMarks(t *testing.T) {
	tests := []struct {
		reply string
		want  string
	}{
		{reply: "हिन्दी रिपोर्ट", want: "हिन्दी-रिपोर्ट"},
		{reply: "Filename: রিপোর্ট ২০২৪", want: "রিপোর্ট-২০২৪"},
		{reply: "\"รายงานการประชุม\"", want: "รายงานการประชุม"},
		{reply: "cafe\u0301 menu", want: "cafe\u0301-menu"},
	}

	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			res := Resolve(tt.reply, Options{CaseStyle: caseconv.Kebab, CharLimit: 30})
			assert.Equal(t, tt.want, res.Name)
			assert.False(t, res.UsedFallback)
			assert.False(t, res.Truncated)
		})
	}
}

func TestCandidateCeiling(t *testing.T) {
	assert.Equal(t, 120, CandidateCeiling(0))
	assert.Equal(t, 120, CandidateCeiling(-5))
	assert.Equal(t, 38, CandidateCeiling(30))
	assert.Equal(t, 2, CandidateCeiling(1))
	assert.Equal(t, 125, CandidateCeiling(100))
}

func TestShortenAtWord(t *testing.T) {
	assert.Equal(t, "alpha beta", ShortenAtWord("alpha beta gamma", 12))
	assert.Equal(t, "alpha beta", ShortenAtWord("alpha beta gamma", 10))
	assert.Equal(t, "alpha", ShortenAtWord("alpha beta gamma", 9))
	assert.Equal(t, "alphabe", ShortenAtWord("alphabetical", 7))
	assert.Equal(t, "short", ShortenAtWord("short", 7))
}

func TestEnforceLength(t *testing.T) {
	tests := []struct {
		in    string
		want  string
		limit int
	}{
		{"q3-budget-review", "q3-budget-review", 30},
		{"q3-budget-review", "q3-budget", 12},
		{"q3_budget_review", "q3_budget", 12},
		{"q3budgetreview", "q3budgetrev", 11},
		{"a-b_c-d", "a-b_c", 6},
		{"q3-budget-review-2024", "q3-budget-review", 16},
		{"q3_budget_review_2024", "q3_budget_review", 16},
		{"anything", "anything", 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, EnforceLength(tt.in, tt.limit))
		})
	}
}

func TestEnforceLength_NeverExceedsLimit(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	alphabet := []rune("abcXYZ019-_ .é")

	for i := 0; i < 2000; i++ {
		n := rng.Intn(80)
		runes := make([]rune, n)
		for j := range runes {
			runes[j] = alphabet[rng.Intn(len(alphabet))]
		}
		s := string(runes)
		limit := 1 + rng.Intn(40)

		got := EnforceLength(s, limit)
		require.LessOrEqual(t, utf8.RuneCountInString(got), limit, "input %q limit %d", s, limit)

		if utf8.RuneCountInString(s) > limit {
			window := string(runes[:limit+1])
			if i := strings.LastIndex(window, "-"); i > 0 {
				require.True(t, strings.HasPrefix(s, got), "input %q got %q", s, got)
				require.Equal(t, strings.TrimRight(window[:i], "-_. "), got, "expected cut at hyphen for %q", s)
			}
		}
	}
}

func TestSanitize_IdempotentOnCleanInput(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	alphabet := []rune("abcdefXYZ0123456789- _")

	for i := 0; i < 1000; i++ {
		runes := make([]rune, rng.Intn(60))
		for j := range runes {
			runes[j] = alphabet[rng.Intn(len(alphabet))]
		}
		s := string(runes)
		collapsed := strings.Join(strings.Fields(s), " ")

		require.Equal(t, collapsed, Sanitize(s))
		require.Equal(t, Sanitize(s), Sanitize(Sanitize(s)))
	}
}
