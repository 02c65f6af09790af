package verses

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func verseNumbers(vs []ParsedVerse) []int {
	out := make([]int, len(vs))
	for i, v := range vs {
		out[i] = v.VerseNumber
	}
	return out
}

func TestParseLines_Basic(t *testing.T) {
	res := ParseModelVerses("1 In the beginning...\n2 And the earth...")
	require.Len(t, res.Verses, 2)
	assert.Equal(t, []int{1, 2}, verseNumbers(res.Verses))
	assert.Equal(t, "In the beginning...", res.Verses[0].Text)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, "line", res.Strategy)
}

func TestParseLines_ReverseOrderSorted(t *testing.T) {
	res := ParseModelVerses("2 And the earth...\n1 In the beginning...")
	assert.Equal(t, []int{1, 2}, verseNumbers(res.Verses))
}

func TestParseLines_MarkerFormats(t *testing.T) {
	tests := []struct {
		name string
		line string
		num  int
		text string
	}{
		{"plain", "3 And God said", 3, "And God said"},
		{"dot", "4.And God saw", 4, "And God saw"},
		{"dot space", "4. And God saw", 4, "And God saw"},
		{"colon", "5: And God called", 5, "And God called"},
		{"bracket", "[6] And God said", 6, "And God said"},
		{"verse word", "Verse 7: And God made", 7, "And God made"},
		{"verse word lower", "verse 7:And God made", 7, "And God made"},
		{"v prefix", "V8: And God called", 8, "And God called"},
		{"indented", "   9   And   God said  ", 9, "And God said"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ParseModelVerses(tt.line)
			require.Len(t, res.Verses, 1)
			assert.Equal(t, tt.num, res.Verses[0].VerseNumber)
			assert.Equal(t, tt.text, res.Verses[0].Text)
		})
	}
}

func TestParseLines_DuplicateLastWins(t *testing.T) {
	res := ParseModelVerses("1 first text\n2 second\n1 replacement text")
	require.Len(t, res.Verses, 2)
	assert.Equal(t, "replacement text", res.Verses[0].Text)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "duplicate verse 1")
}

func TestParseLines_ContinuationAndUnmatched(t *testing.T) {
	input := "Genesis 1\n\n1 In the beginning\nGod created\n\n2 And the earth"
	res := ParseModelVerses(input)

	assert.Equal(t, []string{"Genesis 1"}, res.UnmatchedText)
	require.Len(t, res.Verses, 2)
	assert.Equal(t, "In the beginning God created", res.Verses[0].Text)
}

func TestParseLines_ZeroIsNotAMarker(t *testing.T) {
	res := ParseModelVerses("1 a\n0 b")
	require.Len(t, res.Verses, 1)
	assert.Equal(t, "a 0 b", res.Verses[0].Text)
}

func TestParseLines_Offsets(t *testing.T) {
	input := "intro\n  1 In the beginning\n2 And"
	res := ParseModelVerses(input)
	require.Len(t, res.Verses, 2)

	v1 := res.Verses[0]
	assert.Equal(t, "1 In the beginning", input[v1.StartOffset:v1.EndOffset])
	v2 := res.Verses[1]
	assert.Equal(t, "2 And", input[v2.StartOffset:v2.EndOffset])
}

func TestParseLines_NothingRecognized(t *testing.T) {
	res := ParseModelVerses("I cannot help with that.")
	assert.Empty(t, res.Verses)
	assert.Equal(t, []string{"I cannot help with that."}, res.UnmatchedText)

	res = ParseModelVerses("")
	assert.Empty(t, res.Verses)
	assert.Empty(t, res.UnmatchedText)
}

func TestParseInline(t *testing.T) {
	input := "Genesis 1: 1 In the beginning God created 2 And the earth was without form 3 And God said"
	res := ParseModelVersesInline(input)

	want := []ParsedVerse{
		{VerseNumber: 1, Text: "In the beginning God created"},
		{VerseNumber: 2, Text: "And the earth was without form"},
		{VerseNumber: 3, Text: "And God said"},
	}
	ignoreOffsets := cmpopts.IgnoreFields(ParsedVerse{}, "StartOffset", "EndOffset")
	if diff := cmp.Diff(want, res.Verses, ignoreOffsets); diff != "" {
		t.Errorf("ParseModelVersesInline mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"Genesis 1:"}, res.UnmatchedText)
	assert.Equal(t, "1 In the beginning God created", input[res.Verses[0].StartOffset:res.Verses[0].EndOffset])
}

func TestParseInline_SkipsCountsInsideVerse(t *testing.T) {
	res := ParseModelVersesInline("1 it rained 40 days 2 and the flood 3 prevailed")
	assert.Equal(t, []int{1, 2, 3}, verseNumbers(res.Verses))
	assert.Equal(t, "it rained 40 days", res.Verses[0].Text)
}

func TestParseInline_PrefersNextExpectedNumber(t *testing.T) {
	res := ParseModelVersesInline("1 one 3 three 2 two")
	assert.Equal(t, []int{1, 2}, verseNumbers(res.Verses))
	assert.Equal(t, "one 3 three", res.Verses[0].Text)
	assert.Equal(t, "two", res.Verses[1].Text)
}

func TestParseInline_NonIncreasingIgnored(t *testing.T) {
	res := ParseModelVersesInline("1 one 2 two 1 again")
	assert.Equal(t, []int{1, 2}, verseNumbers(res.Verses))
	assert.Equal(t, "two 1 again", res.Verses[1].Text)
}

func TestParseInline_BackToBackMarkers(t *testing.T) {
	res := ParseModelVersesInline("1 Let there be light 2 And God saw the light 3 4 And God called the light Day")
	assert.Equal(t, []int{1, 2, 3, 4}, verseNumbers(res.Verses))
	assert.Equal(t, "", res.Verses[2].Text)
	assert.Equal(t, "And God called the light Day", res.Verses[3].Text)
}

func TestParseInline_DigitsInsideWordsAreText(t *testing.T) {
	res := ParseModelVersesInline("1 see note a12 here 2 two")
	assert.Equal(t, []int{1, 2}, verseNumbers(res.Verses))
	assert.Equal(t, "see note a12 here", res.Verses[0].Text)
}

func TestParseAuto(t *testing.T) {
	res := ParseModelVersesAuto("1 In the beginning\n2 And the earth")
	assert.Equal(t, "line", res.Strategy)
	assert.Len(t, res.Verses, 2)

	// line parser finds nothing, inline takes over
	res = ParseModelVersesAuto("Here you go: 1 In the beginning 2 And the earth")
	assert.Equal(t, "inline", res.Strategy)
	assert.Equal(t, []int{1, 2}, verseNumbers(res.Verses))

	res = ParseModelVersesAuto("no verses here")
	assert.Equal(t, "line", res.Strategy)
	assert.Empty(t, res.Verses)
	assert.Equal(t, []string{"no verses here"}, res.UnmatchedText)
}

func TestStrategyByName(t *testing.T) {
	for _, name := range []string{"", "auto", "line", "inline"} {
		s, err := StrategyByName(name)
		require.NoError(t, err)
		assert.NotEmpty(t, s.Name())
	}
	_, err := StrategyByName("xml")
	assert.Error(t, err)
}
