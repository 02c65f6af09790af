package metrics

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// HunkKind classifies a run of the word diff.
type HunkKind string

const (
	HunkEqual        HunkKind = "equal"
	HunkSubstitution HunkKind = "substitution"
	HunkOmission     HunkKind = "omission"
	HunkAddition     HunkKind = "addition"
)

// DiffCounts are edit counts measured in characters of the affected words.
type DiffCounts struct {
	Substitutions int `json:"substitutions" yaml:"substitutions"`
	Omissions     int `json:"omissions" yaml:"omissions"`
	Additions     int `json:"additions" yaml:"additions"`
}

// Add returns the element-wise sum of d and o.
func (d DiffCounts) Add(o DiffCounts) DiffCounts {
	return DiffCounts{
		Substitutions: d.Substitutions + o.Substitutions,
		Omissions:     d.Omissions + o.Omissions,
		Additions:     d.Additions + o.Additions,
	}
}

// Total is the number of edited characters.
func (d DiffCounts) Total() int {
	return d.Substitutions + d.Omissions + d.Additions
}

// Hunk is one maximal run of the word diff. Canonical and Candidate hold the
// words on each side joined by single spaces.
type Hunk struct {
	Kind      HunkKind `json:"kind" yaml:"kind"`
	Canonical string   `json:"canonical,omitempty" yaml:"canonical,omitempty"`
	Candidate string   `json:"candidate,omitempty" yaml:"candidate,omitempty"`
}

// DiffResult is the outcome of CompareText.
type DiffResult struct {
	FidelityScore float64    `json:"fidelityScore" yaml:"fidelityscore"`
	Diff          DiffCounts `json:"diff" yaml:"diff"`
	Hunks         []Hunk     `json:"hunks,omitempty" yaml:"hunks,omitempty"`
}

var differ = newDiffer()

func newDiffer() *diffmatchpatch.DiffMatchPatch {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0
	return dmp
}

// CompareText diffs canonical against candidate word by word and scores the
// candidate from 0 to 100.
//
// Words are whitespace-separated tokens. Every run of removed and added words
// between two unchanged words forms one hunk. A hunk with words on both sides
// is a substitution; the shorter side's character count is counted as
// substituted and the remainder as omitted or added. The score is the share
// of characters in unchanged words, taken against the longer of the two texts.
func CompareText(canonical, candidate string) DiffResult {
	canonWords := strings.Fields(canonical)
	candWords := strings.Fields(candidate)

	canonRunes := runeCount(canonWords)
	candRunes := runeCount(candWords)
	if canonRunes == 0 && candRunes == 0 {
		return DiffResult{FidelityScore: 100}
	}

	var vocab wordTable
	diffs := differ.DiffMainRunes(vocab.encode(canonWords), vocab.encode(candWords), false)

	var res DiffResult
	var removed, added []string
	preserved := 0

	flush := func() {
		if len(removed) == 0 && len(added) == 0 {
			return
		}
		del, ins := runeCount(removed), runeCount(added)
		h := Hunk{Canonical: strings.Join(removed, " "), Candidate: strings.Join(added, " ")}
		switch {
		case del > 0 && ins > 0:
			sub := min(del, ins)
			res.Diff.Substitutions += sub
			res.Diff.Omissions += del - sub
			res.Diff.Additions += ins - sub
			h.Kind = HunkSubstitution
		case del > 0:
			res.Diff.Omissions += del
			h.Kind = HunkOmission
		default:
			res.Diff.Additions += ins
			h.Kind = HunkAddition
		}
		res.Hunks = append(res.Hunks, h)
		removed, added = nil, nil
	}

	for _, d := range diffs {
		words := vocab.decode(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			removed = append(removed, words...)
		case diffmatchpatch.DiffInsert:
			added = append(added, words...)
		case diffmatchpatch.DiffEqual:
			flush()
			preserved += runeCount(words)
			res.Hunks = append(res.Hunks, Hunk{Kind: HunkEqual, Canonical: strings.Join(words, " "), Candidate: strings.Join(words, " ")})
		}
	}
	flush()

	res.FidelityScore = round(100*float64(preserved)/float64(max(canonRunes, candRunes)), 2)
	return res
}

// wordBase is the first rune handed out by wordTable. Everything from here to
// utf8.MaxRune is a valid scalar value, so encoded words survive the diff's
// string conversions.
const wordBase = 0xE000

// wordTable maps each distinct word to one rune so the diff treats words as
// atomic symbols.
type wordTable struct {
	ids   map[string]rune
	words []string
}

func (t *wordTable) encode(words []string) []rune {
	if t.ids == nil {
		t.ids = make(map[string]rune)
	}
	out := make([]rune, len(words))
	for i, w := range words {
		r, ok := t.ids[w]
		if !ok {
			r = wordBase + rune(len(t.words))
			t.ids[w] = r
			t.words = append(t.words, w)
		}
		out[i] = r
	}
	return out
}

func (t *wordTable) decode(s string) []string {
	var out []string
	for _, r := range s {
		out = append(out, t.words[r-wordBase])
	}
	return out
}

func runeCount(words []string) int {
	n := 0
	for _, w := range words {
		n += utf8.RuneCountInString(w)
	}
	return n
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
