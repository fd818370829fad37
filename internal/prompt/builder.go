// Package prompt assembles naming prompts that fit a fixed character budget.
package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
	"time"
	"unicode/utf8"

	"github.com/Veraticus/retitle/internal/model"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Default budget ceilings.
const (
	DefaultContentLimit = 8000
	DefaultPromptLimit  = 12000
)

// safetyMargin is removed from the content on top of the overflow when the
// assembled prompt is still too long.
const safetyMargin = 200

// Mode selects the instruction template.
type Mode string

// Prompt modes.
const (
	ModeGeneric   Mode = "generic"
	ModePitchDeck Mode = "pitchdeck"
)

// Budget holds the two independent character ceilings.
type Budget struct {
	ContentLimit int
	PromptLimit  int
}

// DefaultBudget returns the standard ceilings.
func DefaultBudget() Budget {
	return Budget{ContentLimit: DefaultContentLimit, PromptLimit: DefaultPromptLimit}
}

func (b Budget) withDefaults() Budget {
	if b.ContentLimit <= 0 {
		b.ContentLimit = DefaultContentLimit
	}
	if b.PromptLimit <= 0 {
		b.PromptLimit = DefaultPromptLimit
	}
	return b
}

// Request carries everything that may appear in a prompt. Empty fields are omitted.
type Request struct {
	Metadata           *model.FileMetadata
	Deck               *model.DeckClassification
	CaseStyle          string
	Language           string
	VideoSummary       string
	Content            string
	FilenameHint       string
	CustomInstructions string
	Focus              string
	Budget             Budget
	CharLimit          int
	DateFallback       bool
	PitchDeck          bool
}

// Result is an assembled prompt and a report of how it was shortened.
type Result struct {
	Prompt                string
	Mode                  Mode
	FallbackDate          string
	OriginalContentLength int
	ContentLength         int
	ContentTruncated      bool
	PromptTrimmed         bool
}

// Builder renders prompts from the embedded templates.
type Builder struct {
	templates *template.Template
}

// NewBuilder parses the embedded templates.
func NewBuilder() (*Builder, error) {
	funcMap := template.FuncMap{
		"join":        strings.Join,
		"formatScore": func(f float64) string { return fmt.Sprintf("%.2f", f) },
	}

	tmpl, err := template.New("prompt").Funcs(funcMap).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse prompt templates: %w", err)
	}

	return &Builder{templates: tmpl}, nil
}

type templateData struct {
	Deck               *model.DeckClassification
	CaseStyle          string
	Language           string
	FilenameHint       string
	FallbackDate       string
	VideoSummary       string
	Content            string
	CustomInstructions string
	Focus              string
	MetadataLines      []string
	CharLimit          int
}

// Build assembles the prompt for req. The content snippet is shortened first
// and the whole prompt is cut only when the rest of the prompt alone overflows.
func (b *Builder) Build(req Request) (Result, error) {
	budget := req.Budget.withDefaults()

	mode := ModeGeneric
	if req.PitchDeck {
		mode = ModePitchDeck
	}

	data := templateData{
		CaseStyle:          req.CaseStyle,
		CharLimit:          req.CharLimit,
		Language:           req.Language,
		FilenameHint:       req.FilenameHint,
		VideoSummary:       strings.TrimSpace(req.VideoSummary),
		CustomInstructions: strings.TrimSpace(req.CustomInstructions),
	}
	if mode == ModePitchDeck {
		data.Deck = req.Deck
		data.Focus = req.Focus
	}
	data.MetadataLines = metadataLines(req.Metadata)
	if req.DateFallback {
		data.FallbackDate, _ = req.Metadata.FallbackDate()
	}

	result := Result{
		Mode:                  mode,
		FallbackDate:          data.FallbackDate,
		OriginalContentLength: utf8.RuneCountInString(req.Content),
	}

	snippet, truncated := SoftTruncate(req.Content, budget.ContentLimit)
	result.ContentTruncated = truncated

	data.Content = snippet
	prompt, err := b.render(mode, data)
	if err != nil {
		return Result{}, err
	}

	if overflow := utf8.RuneCountInString(prompt) - budget.PromptLimit; overflow > 0 && snippet != "" {
		limit := max(utf8.RuneCountInString(snippet)-overflow-safetyMargin, 0)
		snippet, _ = SoftTruncate(snippet, limit)
		result.ContentTruncated = true

		data.Content = snippet
		if prompt, err = b.render(mode, data); err != nil {
			return Result{}, err
		}
	}

	if utf8.RuneCountInString(prompt) > budget.PromptLimit {
		prompt = HardTruncate(prompt, budget.PromptLimit)
		result.PromptTrimmed = true
	}

	result.Prompt = prompt
	result.ContentLength = utf8.RuneCountInString(snippet)

	return result, nil
}

func (b *Builder) render(mode Mode, data templateData) (string, error) {
	name := string(mode) + ".tmpl"

	var buf bytes.Buffer
	if err := b.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to execute %s template: %w", name, err)
	}

	return strings.TrimSpace(buf.String()), nil
}

func metadataLines(meta *model.FileMetadata) []string {
	if meta == nil {
		return nil
	}

	var lines []string
	if meta.SizeLabel != "" {
		lines = append(lines, "size: "+meta.SizeLabel)
	}
	if meta.CreatedAt != nil {
		lines = append(lines, "created: "+meta.CreatedAt.Format(time.RFC3339))
	}
	if meta.ModifiedAt != nil {
		lines = append(lines, "modified: "+meta.ModifiedAt.Format(time.RFC3339))
	}
	if len(meta.Tags) > 0 {
		lines = append(lines, "tags: "+strings.Join(meta.Tags, ", "))
	}
	return lines
}
