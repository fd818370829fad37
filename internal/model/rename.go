package model

import (
	"strings"
	"time"
)

// ConfirmationSource records how a rename was approved.
type ConfirmationSource string

// Confirmation source constants.
const (
	ConfirmedByForce ConfirmationSource = "force-change"
	ConfirmedByUser  ConfirmationSource = "user confirmed"
)

// Preview lengths stored in a NameContext.
const (
	ResponsePreviewLength = 200
	PromptPreviewLength   = 400
)

// NameContext is the audit record of a single naming attempt.
type NameContext struct {
	CaseStyle          string     `json:"caseStyle"`
	Language           string     `json:"language,omitempty"`
	FinalName          string     `json:"finalName,omitempty"`
	Strategy           string     `json:"strategy,omitempty"`
	ResponsePreview    string     `json:"responsePreview,omitempty"`
	PromptPreview      string     `json:"promptPreview,omitempty"`
	FallbackDate       string     `json:"fallbackDate,omitempty"`
	PitchDeckFocus     string     `json:"pitchDeckFocus,omitempty"`
	DeckConfidence     Confidence `json:"deckConfidence,omitempty"`
	AppendedTags       []string   `json:"appendedTags,omitempty"`
	DeckScore          float64    `json:"deckScore,omitempty"`
	CharLimit          int        `json:"charLimit"`
	PromptLength       int        `json:"promptLength"`
	UsedFallback       bool       `json:"usedFallback"`
	Truncated          bool       `json:"truncated"`
	ContentTruncated   bool       `json:"contentTruncated"`
	PromptTrimmed      bool       `json:"promptTrimmed"`
	UsedFallbackDate   bool       `json:"usedFallbackDate"`
	UsedTags           bool       `json:"usedTags"`
	CustomInstructions bool       `json:"customInstructions"`
	FilenameHint       bool       `json:"filenameHint"`
	PitchDeckMode      bool       `json:"pitchDeckMode"`
	PitchDeckSkip      bool       `json:"pitchDeckSkip"`
	DeckDetected       bool       `json:"deckDetected"`
}

// Preview shortens s to at most n runes for storage in a NameContext.
func Preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// RenameLogEntry is the append-only record of one applied rename.
type RenameLogEntry struct {
	AcceptedAt            time.Time          `json:"acceptedAt"`
	Metadata              *FileMetadata      `json:"metadata"`
	OriginalPath          string             `json:"originalPath"`
	NewPath               string             `json:"newPath"`
	OriginalRelativePath  string             `json:"originalRelativePath"`
	NewRelativePath       string             `json:"newRelativePath"`
	OriginalName          string             `json:"originalName"`
	NewName               string             `json:"newName"`
	Confirmation          ConfirmationSource `json:"confirmation"`
	RevertCommand         string             `json:"revertCommand"`
	RevertCommandRelative string             `json:"revertCommandRelative"`
	Tags                  []string           `json:"tags,omitempty"`
	Context               NameContext        `json:"context"`
	ID                    int64              `json:"id"`
}

// RevertRecord journals the execution of a revert for a log entry.
type RevertRecord struct {
	RevertedAt time.Time `json:"revertedAt"`
	Command    string    `json:"command"`
	ID         int64     `json:"id"`
	EntryID    int64     `json:"entryId"`
}

var shellQuoteReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "`", "\\`")

// ShellQuote wraps p in double quotes, escaping backslash, double quote and backtick.
func ShellQuote(p string) string {
	return `"` + shellQuoteReplacer.Replace(p) + `"`
}

// RevertCommand builds the shell command that moves newPath back to originalPath.
func RevertCommand(newPath, originalPath string) string {
	return "mv " + ShellQuote(newPath) + " " + ShellQuote(originalPath)
}
