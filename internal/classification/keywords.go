package classification

// Keywords holds the phrase lists scanned by the pitch-deck classifier.
// Matching is plain substring containment against lowercased text.
type Keywords struct {
	Strong   []string
	Funding  []string
	Investor []string
	Sections []string
}

// DefaultKeywords returns the built-in pitch-deck phrase lists.
func DefaultKeywords() Keywords {
	return Keywords{
		Strong: []string{
			"pitch deck",
			"investor deck",
			"investor presentation",
			"seed deck",
			"fundraising deck",
			"startup pitch",
			"investor update",
		},
		Funding: []string{
			"pre-seed",
			"seed round",
			"series a",
			"series b",
			"series c",
			"funding round",
			"we are raising",
			"use of funds",
			"the ask",
			"valuation",
			"convertible note",
			"safe note",
		},
		Investor: []string{
			"investors",
			"venture capital",
			"angel",
			"cap table",
			"term sheet",
			"exit strategy",
			"return on investment",
			"lead investor",
		},
		Sections: []string{
			"the problem",
			"our solution",
			"market opportunity",
			"market size",
			"business model",
			"traction",
			"competitive landscape",
			"competition",
			"go-to-market",
			"our team",
			"financial projections",
			"product roadmap",
			"why now",
			"milestones",
		},
	}
}
