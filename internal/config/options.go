package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"github.com/Veraticus/retitle/internal/caseconv"
	"github.com/Veraticus/retitle/internal/common"
)

// DefaultDatabasePath is where the rename log lives when none is configured.
const DefaultDatabasePath = "$HOME/.local/share/retitle/retitle.db"

// Option defaults.
const (
	DefaultChars               = 20
	DefaultLanguage            = "English"
	DefaultFrames              = 3
	DefaultContentLimit        = 8000
	DefaultPromptLimit         = 12000
	DefaultClassifierScanLimit = 20000
)

// Viper keys for rename options.
const (
	KeyCase                  = "rename.case"
	KeyChars                 = "rename.chars"
	KeyLanguage              = "rename.language"
	KeyFrames                = "rename.frames"
	KeyCustomPrompt          = "rename.custom_prompt"
	KeyIncludeSubdirectories = "rename.include_subdirectories"
	KeyForce                 = "rename.force"
	KeyDryRun                = "rename.dry_run"
	KeyFilenameHint          = "rename.filename_hint"
	KeyMetadata              = "rename.metadata"
	KeyDateFallback          = "rename.date_fallback"
	KeyTags                  = "rename.tags"
	KeyPitchDeck             = "rename.pitch_deck"
	KeyPitchDeckFocus        = "rename.pitch_deck_focus"
	KeyContentLimit          = "rename.content_limit"
	KeyPromptLimit           = "rename.prompt_limit"
	KeyClassifierScanLimit   = "rename.classifier_scan_limit"
	KeyConcurrency           = "rename.concurrency"
	KeyDatabasePath          = "database.path"
)

// Options is the validated configuration for a rename run.
type Options struct {
	Case                  caseconv.Style
	Language              string
	CustomPrompt          string
	PitchDeckFocus        string
	DatabasePath          string
	Chars                 int
	Frames                int
	ContentLimit          int
	PromptLimit           int
	ClassifierScanLimit   int
	Concurrency           int
	IncludeSubdirectories bool
	Force                 bool
	DryRun                bool
	UseFilenameHint       bool
	UseMetadata           bool
	DateFallback          bool
	AppendTags            bool
	PitchDeck             bool
}

// Default returns the options used when nothing is configured.
func Default() Options {
	return Options{
		Case:                caseconv.Default,
		Language:            DefaultLanguage,
		DatabasePath:        ExpandPath(DefaultDatabasePath),
		Chars:               DefaultChars,
		Frames:              DefaultFrames,
		ContentLimit:        DefaultContentLimit,
		PromptLimit:         DefaultPromptLimit,
		ClassifierScanLimit: DefaultClassifierScanLimit,
		Concurrency:         DefaultConcurrency(),
		UseMetadata:         true,
	}
}

// DefaultConcurrency bounds parallel model calls by the CPU count.
func DefaultConcurrency() int {
	return min(runtime.NumCPU(), 4)
}

// SetDefaults registers option defaults on v.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault(KeyCase, string(d.Case))
	v.SetDefault(KeyChars, d.Chars)
	v.SetDefault(KeyLanguage, d.Language)
	v.SetDefault(KeyFrames, d.Frames)
	v.SetDefault(KeyMetadata, d.UseMetadata)
	v.SetDefault(KeyContentLimit, d.ContentLimit)
	v.SetDefault(KeyPromptLimit, d.PromptLimit)
	v.SetDefault(KeyClassifierScanLimit, d.ClassifierScanLimit)
	v.SetDefault(KeyConcurrency, d.Concurrency)
	v.SetDefault(KeyDatabasePath, DefaultDatabasePath)
}

// LoadOptions reads rename options from v and validates them.
func LoadOptions(v *viper.Viper) (Options, error) {
	SetDefaults(v)

	style, ok := caseconv.Parse(v.GetString(KeyCase))
	if !ok {
		return Options{}, fmt.Errorf("%w: unknown case style %q (want one of %s)",
			common.ErrInvalidConfig, v.GetString(KeyCase), styleList())
	}

	opts := Options{
		Case:                  style,
		Language:              strings.TrimSpace(v.GetString(KeyLanguage)),
		CustomPrompt:          strings.TrimSpace(v.GetString(KeyCustomPrompt)),
		PitchDeckFocus:        strings.TrimSpace(v.GetString(KeyPitchDeckFocus)),
		DatabasePath:          ExpandPath(v.GetString(KeyDatabasePath)),
		Chars:                 v.GetInt(KeyChars),
		Frames:                v.GetInt(KeyFrames),
		ContentLimit:          v.GetInt(KeyContentLimit),
		PromptLimit:           v.GetInt(KeyPromptLimit),
		ClassifierScanLimit:   v.GetInt(KeyClassifierScanLimit),
		Concurrency:           v.GetInt(KeyConcurrency),
		IncludeSubdirectories: v.GetBool(KeyIncludeSubdirectories),
		Force:                 v.GetBool(KeyForce),
		DryRun:                v.GetBool(KeyDryRun),
		UseFilenameHint:       v.GetBool(KeyFilenameHint),
		UseMetadata:           v.GetBool(KeyMetadata),
		DateFallback:          v.GetBool(KeyDateFallback),
		AppendTags:            v.GetBool(KeyTags),
		PitchDeck:             v.GetBool(KeyPitchDeck),
	}

	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// Validate checks that every option is usable.
func (o Options) Validate() error {
	if _, ok := caseconv.Parse(string(o.Case)); !ok {
		return fmt.Errorf("%w: unknown case style %q", common.ErrInvalidConfig, o.Case)
	}

	positive := []struct {
		name  string
		value int
	}{
		{"chars", o.Chars},
		{"frames", o.Frames},
		{"content limit", o.ContentLimit},
		{"prompt limit", o.PromptLimit},
		{"classifier scan limit", o.ClassifierScanLimit},
		{"concurrency", o.Concurrency},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", common.ErrInvalidConfig, p.name, p.value)
		}
	}

	if o.ContentLimit > o.PromptLimit {
		return fmt.Errorf("%w: content limit %d exceeds prompt limit %d",
			common.ErrInvalidConfig, o.ContentLimit, o.PromptLimit)
	}
	if o.Language == "" {
		return fmt.Errorf("%w: language is required", common.ErrInvalidConfig)
	}
	if o.PitchDeckFocus != "" && !o.PitchDeck {
		return fmt.Errorf("%w: pitch deck focus requires pitch deck mode", common.ErrInvalidConfig)
	}
	if strings.TrimSpace(o.DatabasePath) == "" {
		return fmt.Errorf("%w: database path", common.ErrMissingConfig)
	}
	return nil
}

func styleList() string {
	names := make([]string, 0, len(caseconv.Styles()))
	for _, s := range caseconv.Styles() {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}
