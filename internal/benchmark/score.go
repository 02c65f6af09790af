package benchmark

import (
	"strings"

	"github.com/versebench/versebench/internal/eval/dataset"
	"github.com/versebench/versebench/internal/eval/metrics"
	"github.com/versebench/versebench/internal/models"
	"github.com/versebench/versebench/internal/transform"
	"github.com/versebench/versebench/internal/utils"
	"github.com/versebench/versebench/internal/verses"
)

// Scorer turns one raw chapter response into a scored ChapterResult.
type Scorer struct {
	Canonical  *transform.Pipeline
	Output     *transform.Pipeline
	Strategy   verses.Strategy
	Thresholds metrics.Thresholds
}

// NewScorer builds a Scorer from a canonical and a model-output profile
func NewScorer(canonical, output *transform.Profile, t metrics.Thresholds) *Scorer {
	return &Scorer{
		Canonical:  canonical.Pipeline(),
		Output:     output.Pipeline(),
		Strategy:   verses.AutoStrategy{},
		Thresholds: t,
	}
}

// ScoreChapter cleans the response with the model-output pipeline, parses
// it, maps it onto refs and scores every verse plus the chapter as a whole.
// The result carries no book or chapter identity; callers fill it in.
func (s *Scorer) ScoreChapter(response string, refs []verses.CanonicalVerseRef) models.ChapterResult {
	parsed := s.Strategy.Parse(s.Output.Apply(response))
	mapping := verses.MapToCanonicalVerses(parsed.Verses, refs)

	ch := models.ChapterResult{
		Response:      response,
		Strategy:      parsed.Strategy,
		Verses:        make([]models.VerseResult, 0, len(mapping.Mapped)),
		MissingVerses: mapping.MissingVerses,
		ExtraVerses:   mapping.ExtraVerses,
		Unmatched:     parsed.UnmatchedText,
		Warnings:      append(append([]string{}, parsed.Warnings...), mapping.Warnings...),
	}

	for _, m := range mapping.Mapped {
		ch.Verses = append(ch.Verses, s.scoreVerse(m))
	}

	// The whole chapter is compared as one text so verse boundary mistakes
	// do not hide otherwise faithful recitations.
	candidate := make([]string, 0, len(parsed.Verses))
	for _, p := range parsed.Verses {
		if t := s.Canonical.Normalize(p.Text); t != "" {
			candidate = append(candidate, t)
		}
	}
	candidateText := strings.Join(candidate, " ")
	canonicalText := dataset.ChapterText(refs)

	cmp := metrics.CompareText(canonicalText, candidateText)
	ch.HashMatch = utils.SHA256Hex(candidateText) == utils.SHA256Hex(canonicalText)
	ch.FidelityScore = cmp.FidelityScore
	ch.Diff = cmp.Diff
	ch.Verdict = metrics.Classify(ch.FidelityScore, ch.HashMatch, s.Thresholds)
	ch.Summary = metrics.Summarize(ch.Verses)
	return ch
}

func (s *Scorer) scoreVerse(m verses.MappedVerse) models.VerseResult {
	v := models.VerseResult{
		VerseID:       m.VerseID,
		VerseNumber:   m.VerseNumber,
		Matched:       m.Matched,
		ExtractedText: m.ExtractedText,
		CanonicalText: m.CanonicalText,
	}

	v.NormalizedText = s.Canonical.Normalize(m.ExtractedText)
	v.HashMatch = m.Matched && utils.SHA256Hex(v.NormalizedText) == m.HashProcessed

	cmp := metrics.CompareText(m.CanonicalText, v.NormalizedText)
	v.FidelityScore = cmp.FidelityScore
	v.Diff = cmp.Diff
	v.Verdict = metrics.Classify(v.FidelityScore, v.HashMatch, s.Thresholds)
	return v
}

// TextScore is the score of one free-standing candidate text
type TextScore struct {
	metrics.ScoredText
	CanonicalText string          `json:"canonicalText"`
	HashMatch     bool            `json:"hashMatch"`
	Verdict       metrics.Verdict `json:"verdict"`
	Warnings      []string        `json:"warnings,omitempty"`
}

// ScoreText normalizes canonical with the canonical profile and candidate
// with steps, then compares them. No verse parsing is involved.
func ScoreText(candidate, canonical string, canonicalProfile *transform.Profile, steps []transform.Step, t metrics.Thresholds) TextScore {
	canonicalText := canonicalProfile.Pipeline().Normalize(canonical)
	scored := metrics.ApplyTransformsAndScore(candidate, canonicalText, steps)

	final := strings.TrimSpace(transform.CollapseWhitespace(scored.NormalizedText))
	hashMatch := utils.SHA256Hex(final) == utils.SHA256Hex(canonicalText)

	return TextScore{
		ScoredText:    scored,
		CanonicalText: canonicalText,
		HashMatch:     hashMatch,
		Verdict:       metrics.Classify(scored.FidelityScore, hashMatch, t),
		Warnings:      transform.Compile(steps).Warnings(),
	}
}
