package transform

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

type rule func(string) string

func identity(s string) string { return s }

// compileStep turns a decoded step into a rule. An error means the step
// should be skipped.
func compileStep(s Step) (rule, error) {
	if s.decodeErr != nil {
		return nil, s.decodeErr
	}
	if s.Params == nil && (s.Type == StepCollapseWhitespace || s.Type == StepTrim) {
		s.Params = NoParams{}
	}

	switch p := s.Params.(type) {
	case StripMarkupTagsParams:
		return stripMarkupTags(p.TagNames), nil
	case StripParagraphMarkersParams:
		return stripLiterals(p.Markers), nil
	case PatternParams:
		return stripPatterns(p.Patterns)
	case RegexReplaceParams:
		return regexReplace(p)
	case ReplaceMapParams:
		return replaceMap(p.Map), nil
	case NoParams:
		switch s.Type {
		case StepCollapseWhitespace:
			return CollapseWhitespace, nil
		case StepTrim:
			return strings.TrimSpace, nil
		}
	case nil:
		return nil, errors.New("missing params")
	}
	return nil, fmt.Errorf("params %T do not fit step type %q", s.Params, s.Type)
}

func stripMarkupTags(names []string) rule {
	quoted := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n != "" {
			quoted = append(quoted, regexp.QuoteMeta(n))
		}
	}
	if len(quoted) == 0 {
		return identity
	}

	// <name>, </name>, <name/>, <name attr="x">
	re := regexp.MustCompile(`(?i)<\s*/?\s*(?:` + strings.Join(quoted, "|") + `)(?:\s[^>]*)?/?\s*>`)
	return func(s string) string {
		return re.ReplaceAllString(s, "")
	}
}

func stripLiterals(markers []string) rule {
	return func(s string) string {
		for _, m := range markers {
			if m != "" {
				s = strings.ReplaceAll(s, m, "")
			}
		}
		return s
	}
}

func stripPatterns(patterns []string) (rule, error) {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		if p == "" {
			continue
		}
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
		res = append(res, re)
	}
	return func(s string) string {
		for _, re := range res {
			s = re.ReplaceAllString(s, "")
		}
		return s
	}, nil
}

func regexReplace(p RegexReplaceParams) (rule, error) {
	if p.Pattern == nil || *p.Pattern == "" {
		return identity, nil
	}
	re, err := regexp.Compile(*p.Pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", *p.Pattern, err)
	}
	repl := expandTemplate(p.Replacement)
	return func(s string) string {
		return re.ReplaceAllString(s, repl)
	}, nil
}

// expandTemplate rewrites $1, $12, $& and $<name> references into
// regexp.Expand syntax. Any other $ is kept literally.
func expandTemplate(r string) string {
	if !strings.Contains(r, "$") {
		return r
	}

	var b strings.Builder
	for i := 0; i < len(r); i++ {
		c := r[i]
		if c != '$' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(r) {
			b.WriteString("$$")
			continue
		}
		next := r[i+1]
		switch {
		case next == '$':
			b.WriteString("$$")
			i++
		case next == '&':
			b.WriteString("${0}")
			i++
		case next >= '0' && next <= '9':
			j := i + 1
			for j < len(r) && j < i+3 && r[j] >= '0' && r[j] <= '9' {
				j++
			}
			b.WriteString("${" + r[i+1:j] + "}")
			i = j - 1
		case next == '<':
			k := strings.IndexByte(r[i+2:], '>')
			if k <= 0 || !isGroupName(r[i+2:i+2+k]) {
				b.WriteString("$$")
				continue
			}
			b.WriteString("${" + r[i+2:i+2+k] + "}")
			i += 2 + k
		default:
			b.WriteString("$$")
		}
	}
	return b.String()
}

func isGroupName(name string) bool {
	for _, c := range name {
		if c != '_' && !unicode.IsLetter(c) && !unicode.IsDigit(c) {
			return false
		}
	}
	return true
}

func replaceMap(m ReplaceMap) rule {
	return func(s string) string {
		for _, r := range m {
			if r.From != "" {
				s = strings.ReplaceAll(s, r.From, r.To)
			}
		}
		return s
	}
}

// CollapseWhitespace replaces every run of Unicode whitespace with a single
// ASCII space. Leading and trailing runs are collapsed, not removed.
func CollapseWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte(' ')
				inSpace = true
			}
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}
