package verses

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ParsedVerse is one numbered verse recovered from model output. Offsets are
// byte offsets into the original input; EndOffset is exclusive.
type ParsedVerse struct {
	VerseNumber int    `json:"verseNumber"`
	Text        string `json:"text"`
	StartOffset int    `json:"startOffset"`
	EndOffset   int    `json:"endOffset"`
}

// ParseResult is the outcome of a parse. It never represents a failure:
// text that could not be attributed to a verse lands in UnmatchedText.
type ParseResult struct {
	Verses        []ParsedVerse `json:"verses"`
	UnmatchedText []string      `json:"unmatchedText"`
	Warnings      []string      `json:"warnings"`
	Strategy      string        `json:"strategy"`
}

// Strategy is one way of finding verse markers in text.
type Strategy interface {
	Name() string
	Parse(text string) ParseResult
}

// DefaultStrategies is the fallback order used by ParseModelVersesAuto.
var DefaultStrategies = []Strategy{LineStrategy{}, InlineStrategy{}}

// ParseModelVersesAuto tries the line parser, then the inline parser.
func ParseModelVersesAuto(text string) ParseResult {
	return ParseWith(text, DefaultStrategies...)
}

// ParseWith returns the first strategy result with at least one verse. When
// every strategy comes back empty the first strategy's result is returned.
func ParseWith(text string, strategies ...Strategy) ParseResult {
	var first *ParseResult
	for _, s := range strategies {
		res := s.Parse(text)
		if len(res.Verses) > 0 {
			return res
		}
		if first == nil {
			first = &res
		}
	}
	if first == nil {
		return newResult("none")
	}
	return *first
}

// StrategyByName resolves "line", "inline" or "auto".
func StrategyByName(name string) (Strategy, error) {
	switch name {
	case "", "auto":
		return AutoStrategy{}, nil
	case "line":
		return LineStrategy{}, nil
	case "inline":
		return InlineStrategy{}, nil
	}
	return nil, fmt.Errorf("unknown parse strategy %q", name)
}

// AutoStrategy wraps ParseModelVersesAuto.
type AutoStrategy struct{}

func (AutoStrategy) Name() string                  { return "auto" }
func (AutoStrategy) Parse(text string) ParseResult { return ParseModelVersesAuto(text) }

func newResult(strategy string) ParseResult {
	return ParseResult{
		Verses:        []ParsedVerse{},
		UnmatchedText: []string{},
		Warnings:      []string{},
		Strategy:      strategy,
	}
}

// lineMarkers are tried in order against each trimmed line.
var lineMarkers = []*regexp.Regexp{
	regexp.MustCompile(`^(\d+)\s+(.*)$`),
	regexp.MustCompile(`^(\d+)\.\s*(.*)$`),
	regexp.MustCompile(`^(\d+):\s*(.*)$`),
	regexp.MustCompile(`^\[(\d+)\]\s*(.*)$`),
	regexp.MustCompile(`(?i)^verse\s+(\d+):\s*(.*)$`),
	regexp.MustCompile(`(?i)^v(\d+):\s*(.*)$`),
}

// LineStrategy expects one verse marker at the start of a line. Lines
// without a marker continue the open verse.
type LineStrategy struct{}

func (LineStrategy) Name() string { return "line" }

func (LineStrategy) Parse(text string) ParseResult {
	return ParseModelVerses(text)
}

// ParseModelVerses is the line-oriented parser.
func ParseModelVerses(text string) ParseResult {
	res := newResult("line")
	acc := newAccumulator(&res)

	pos := 0
	for pos <= len(text) {
		end := strings.IndexByte(text[pos:], '\n')
		if end < 0 {
			end = len(text)
		} else {
			end += pos
		}
		line := text[pos:end]
		lineStart := pos
		pos = end + 1

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		start := lineStart + strings.Index(line, trimmed)
		stop := start + len(trimmed)

		if num, body, ok := matchLineMarker(trimmed); ok {
			acc.open(num, body, start, stop)
			continue
		}
		if !acc.appendToOpen(trimmed, stop) {
			res.UnmatchedText = append(res.UnmatchedText, collapse(trimmed))
		}
	}

	acc.finish()
	return res
}

func matchLineMarker(line string) (int, string, bool) {
	for _, re := range lineMarkers {
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			return 0, "", false
		}
		return n, m[2], true
	}
	return 0, "", false
}

// inlineMarker matches "N ". Callers check that N starts a word.
var inlineMarker = regexp.MustCompile(`(\d+)\s+`)

// InlineStrategy finds verse numbers embedded in running prose.
type InlineStrategy struct{}

func (InlineStrategy) Name() string { return "inline" }

func (InlineStrategy) Parse(text string) ParseResult {
	return ParseModelVersesInline(text)
}

type inlineCandidate struct {
	num       int
	numStart  int
	bodyStart int
}

// ParseModelVersesInline scans the whole text for "N " markers. A number is taken as a
// marker only when it is larger than the previous marker; a jump past the
// next expected number is rejected if that number appears later, so counts
// like "40 days" inside a verse are kept as text.
func ParseModelVersesInline(text string) ParseResult {
	res := newResult("inline")

	var cands []inlineCandidate
	for _, m := range inlineMarker.FindAllStringSubmatchIndex(text, -1) {
		if m[2] > 0 {
			if r, _ := utf8.DecodeLastRuneInString(text[:m[2]]); !unicode.IsSpace(r) {
				continue
			}
		}
		n, err := strconv.Atoi(text[m[2]:m[3]])
		if err != nil || n <= 0 {
			continue
		}
		cands = append(cands, inlineCandidate{num: n, numStart: m[2], bodyStart: m[1]})
	}

	var accepted []inlineCandidate
	last := 0
	for i, c := range cands {
		if c.num <= last {
			continue
		}
		if c.num != last+1 && laterHas(cands[i+1:], last+1) {
			continue
		}
		accepted = append(accepted, c)
		last = c.num
	}

	if len(accepted) == 0 {
		if s := collapse(text); s != "" {
			res.UnmatchedText = append(res.UnmatchedText, s)
		}
		return res
	}

	if s := collapse(text[:accepted[0].numStart]); s != "" {
		res.UnmatchedText = append(res.UnmatchedText, s)
	}

	acc := newAccumulator(&res)
	for i, c := range accepted {
		bodyEnd := len(text)
		if i+1 < len(accepted) {
			bodyEnd = accepted[i+1].numStart
		}
		body := text[c.bodyStart:bodyEnd]
		stop := c.bodyStart + len(strings.TrimRight(body, " \t\r\n"))
		acc.open(c.num, body, c.numStart, stop)
	}
	acc.finish()
	return res
}

func laterHas(cands []inlineCandidate, n int) bool {
	for _, c := range cands {
		if c.num == n {
			return true
		}
	}
	return false
}

// accumulator collects verses with last-write-wins on duplicate numbers.
type accumulator struct {
	res     *ParseResult
	byNum   map[int]*ParsedVerse
	current *ParsedVerse
}

func newAccumulator(res *ParseResult) *accumulator {
	return &accumulator{res: res, byNum: make(map[int]*ParsedVerse)}
}

func (a *accumulator) open(num int, body string, start, end int) {
	v := &ParsedVerse{VerseNumber: num, Text: collapse(body), StartOffset: start, EndOffset: end}
	if _, dup := a.byNum[num]; dup {
		a.res.Warnings = append(a.res.Warnings,
			fmt.Sprintf("duplicate verse %d at offset %d replaces earlier text", num, start))
	}
	a.byNum[num] = v
	a.current = v
}

func (a *accumulator) appendToOpen(text string, end int) bool {
	if a.current == nil {
		return false
	}
	if a.current.Text == "" {
		a.current.Text = collapse(text)
	} else {
		a.current.Text += " " + collapse(text)
	}
	a.current.EndOffset = end
	return true
}

func (a *accumulator) finish() {
	for _, v := range a.byNum {
		a.res.Verses = append(a.res.Verses, *v)
	}
	sort.Slice(a.res.Verses, func(i, j int) bool {
		return a.res.Verses[i].VerseNumber < a.res.Verses[j].VerseNumber
	})
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
