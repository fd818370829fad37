// Package model defines the core domain models used throughout the application.
package model

// Confidence is the coarse bucket derived from a classifier score.
type Confidence string

// Confidence bucket constants.
const (
	ConfidenceNone   Confidence = "none"
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// DeckClassification is the result of scoring a document for pitch-deck signals.
type DeckClassification struct {
	Confidence         Confidence `json:"confidence"`
	Summary            string     `json:"summary"`
	RepresentativeLine string     `json:"representativeLine,omitempty"`
	StrongMatches      []string   `json:"strongMatches"`
	FundingMatches     []string   `json:"fundingMatches"`
	InvestorMatches    []string   `json:"investorMatches"`
	SectionMatches     []string   `json:"sectionMatches"`
	CompanyCandidates  []string   `json:"companyCandidates"`
	Score              float64    `json:"score"`
	IsPitchDeck        bool       `json:"isPitchDeck"`
}

// HasSignals reports whether any keyword category matched.
func (c DeckClassification) HasSignals() bool {
	return len(c.StrongMatches)+len(c.FundingMatches)+len(c.InvestorMatches)+len(c.SectionMatches) > 0
}
