package verses

import (
	"fmt"
	"sort"
)

// CanonicalVerseRef is the slice of a canonical verse the mapper needs.
type CanonicalVerseRef struct {
	VerseID       int    `json:"verseId"`
	VerseNumber   int    `json:"verseNumber"`
	TextProcessed string `json:"textProcessed"`
	HashProcessed string `json:"hashProcessed"`
}

// MappedVerse pairs a canonical verse with the parsed verse of the same number.
type MappedVerse struct {
	VerseID       int    `json:"verseId"`
	VerseNumber   int    `json:"verseNumber"`
	Matched       bool   `json:"matched"`
	ExtractedText string `json:"extractedText"`
	CanonicalText string `json:"canonicalText"`
	HashProcessed string `json:"hashProcessed"`
}

// MappingResult is the reconciliation of one chapter's parsed output.
type MappingResult struct {
	Mapped        []MappedVerse `json:"mapped"`
	MissingVerses []int         `json:"missingVerses"`
	ExtraVerses   []int         `json:"extraVerses"`
	Warnings      []string      `json:"warnings"`
}

// MapToCanonicalVerses matches parsed verses to canonical ones by verse
// number. Mapped follows canonical order. Parsed numbers with no canonical
// verse are reported in ExtraVerses, ascending, each with a warning.
func MapToCanonicalVerses(parsed []ParsedVerse, canonical []CanonicalVerseRef) MappingResult {
	res := MappingResult{
		Mapped:        make([]MappedVerse, 0, len(canonical)),
		MissingVerses: []int{},
		ExtraVerses:   []int{},
		Warnings:      []string{},
	}

	byNum := make(map[int]ParsedVerse, len(parsed))
	for _, p := range parsed {
		byNum[p.VerseNumber] = p
	}

	known := make(map[int]bool, len(canonical))
	for _, c := range canonical {
		known[c.VerseNumber] = true
		mv := MappedVerse{
			VerseID:       c.VerseID,
			VerseNumber:   c.VerseNumber,
			CanonicalText: c.TextProcessed,
			HashProcessed: c.HashProcessed,
		}
		if p, ok := byNum[c.VerseNumber]; ok {
			mv.Matched = true
			mv.ExtractedText = p.Text
		} else {
			res.MissingVerses = append(res.MissingVerses, c.VerseNumber)
		}
		res.Mapped = append(res.Mapped, mv)
	}

	for num := range byNum {
		if !known[num] {
			res.ExtraVerses = append(res.ExtraVerses, num)
		}
	}
	sort.Ints(res.ExtraVerses)
	for _, num := range res.ExtraVerses {
		res.Warnings = append(res.Warnings, fmt.Sprintf("verse %d is not in the canonical chapter", num))
	}

	return res
}
