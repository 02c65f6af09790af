package transform

func strPtr(s string) *string { return &s }

// typography maps curly quotes and dashes to ASCII.
var typography = ReplaceMap{
	{From: "‘", To: "'"},
	{From: "’", To: "'"},
	{From: "“", To: `"`},
	{From: "”", To: `"`},
	{From: "—", To: "-"},
	{From: "–", To: "-"},
	{From: "\u00a0", To: " "},
}

// DefaultCanonicalProfile strips dataset markup and flattens typography.
func DefaultCanonicalProfile() *Profile {
	return &Profile{
		Name:        "default",
		Scope:       ScopeCanonical,
		Description: "Strip markup and paragraph markers, flatten typography, collapse whitespace",
		Steps: []Step{
			{Order: 10, Type: StepStripMarkupTags, Enabled: true, Severity: SeverityCosmetic,
				Description: "Remove inline markup", Params: StripMarkupTagsParams{TagNames: []string{"i", "b", "em", "strong", "span", "sup", "small", "note"}}},
			{Order: 20, Type: StepStripParagraphMarkers, Enabled: true, Severity: SeverityCosmetic,
				Description: "Remove pilcrows", Params: StripParagraphMarkersParams{Markers: []string{"¶"}}},
			{Order: 30, Type: StepReplaceMap, Enabled: true, Severity: SeverityMinor,
				Description: "Curly quotes and dashes to ASCII", Params: ReplaceMapParams{Map: typography}},
			{Order: 40, Type: StepCollapseWhitespace, Enabled: true, Severity: SeverityCosmetic, Params: NoParams{}},
			{Order: 50, Type: StepTrim, Enabled: true, Severity: SeverityCosmetic, Params: NoParams{}},
		},
	}
}

// DefaultModelOutputProfile cleans raw model output before verse parsing.
// Line breaks are kept because the line parser depends on them.
func DefaultModelOutputProfile() *Profile {
	return &Profile{
		Name:        "default",
		Scope:       ScopeModelOutput,
		Description: "Drop markdown emphasis and headings, flatten typography, keep line breaks",
		Steps: []Step{
			{Order: 10, Type: StepStripHeadings, Enabled: true, Severity: SeverityMinor,
				Description: "Remove markdown headings", Params: PatternParams{Patterns: []string{`(?m)^[ \t]*#{1,6}[ \t][^\n]*$`}}},
			{Order: 20, Type: StepRegexReplace, Enabled: true, Severity: SeverityCosmetic,
				Description: "Remove markdown emphasis", Params: RegexReplaceParams{Pattern: strPtr(`\*\*|__`), Replacement: ""}},
			{Order: 30, Type: StepStripMarkupTags, Enabled: true, Severity: SeverityCosmetic,
				Description: "Remove inline markup", Params: StripMarkupTagsParams{TagNames: []string{"i", "b", "em", "strong", "span", "sup"}}},
			{Order: 40, Type: StepReplaceMap, Enabled: true, Severity: SeverityMinor,
				Description: "Curly quotes and dashes to ASCII", Params: ReplaceMapParams{Map: typography}},
			{Order: 50, Type: StepRegexReplace, Enabled: true, Severity: SeverityCosmetic,
				Description: "Collapse spaces and tabs", Params: RegexReplaceParams{Pattern: strPtr(`[ \t]+`), Replacement: " "}},
			{Order: 60, Type: StepTrim, Enabled: true, Severity: SeverityCosmetic, Params: NoParams{}},
		},
	}
}
