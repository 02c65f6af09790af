// Package transform applies ordered, user-editable text rewrite rules to
// canonical scripture text and raw model output.
//
// Steps are decoded into one typed parameter struct per step type when a
// profile is loaded. A step whose parameters cannot be decoded is kept but
// marked invalid, and the engine treats it as a no-op.
package transform

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// StepType names a rewrite rule.
type StepType string

const (
	StepStripMarkupTags       StepType = "stripMarkupTags"
	StepStripParagraphMarkers StepType = "stripParagraphMarkers"
	StepStripVerseNumbers     StepType = "stripVerseNumbers"
	StepStripHeadings         StepType = "stripHeadings"
	StepRegexReplace          StepType = "regexReplace"
	StepReplaceMap            StepType = "replaceMap"
	StepCollapseWhitespace    StepType = "collapseWhitespace"
	StepTrim                  StepType = "trim"
)

// Severity classifies how much a step changes text. UI only, never used in scoring.
type Severity string

const (
	SeverityCosmetic    Severity = "cosmetic"
	SeverityMinor       Severity = "minor"
	SeveritySignificant Severity = "significant"
	SeverityCritical    Severity = "critical"
)

// IsValid reports whether s is empty or one of the known severities.
func (s Severity) IsValid() bool {
	switch s {
	case "", SeverityCosmetic, SeverityMinor, SeveritySignificant, SeverityCritical:
		return true
	}
	return false
}

// Params is the typed parameter set of a step. Each step type has its own
// implementation.
type Params interface {
	isParams()
}

// StripMarkupTagsParams removes open, close and self-closing tags by name.
type StripMarkupTagsParams struct {
	TagNames []string `json:"tagNames" yaml:"tagNames"`
}

// StripParagraphMarkersParams removes literal marker substrings.
type StripParagraphMarkersParams struct {
	Markers []string `json:"markers" yaml:"markers"`
}

// PatternParams removes every match of each pattern. Used by
// stripVerseNumbers and stripHeadings.
type PatternParams struct {
	Patterns []string `json:"patterns" yaml:"patterns"`
}

// RegexReplaceParams is a global regex substitution. A nil Pattern is a no-op.
// Replacement uses $1 / $& references.
type RegexReplaceParams struct {
	Pattern     *string `json:"pattern" yaml:"pattern"`
	Replacement string  `json:"replacement" yaml:"replacement"`
}

// ReplaceMapParams applies literal replacements in map order.
type ReplaceMapParams struct {
	Map ReplaceMap `json:"map" yaml:"map"`
}

// NoParams is used by collapseWhitespace and trim.
type NoParams struct{}

func (StripMarkupTagsParams) isParams()       {}
func (StripParagraphMarkersParams) isParams() {}
func (PatternParams) isParams()               {}
func (RegexReplaceParams) isParams()          {}
func (ReplaceMapParams) isParams()            {}
func (NoParams) isParams()                    {}

// Replacement is one literal rewrite.
type Replacement struct {
	From string
	To   string
}

// ReplaceMap is an insertion-ordered literal replacement table. It decodes
// from a JSON/YAML object (keys kept in document order) or from a list of
// [from, to] pairs.
type ReplaceMap []Replacement

// UnmarshalJSON keeps object key order.
func (m *ReplaceMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*m = nil
		return nil
	}

	switch tok {
	case json.Delim('{'):
		var out ReplaceMap
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return err
			}
			key, _ := keyTok.(string)
			var value string
			if err := dec.Decode(&value); err != nil {
				return fmt.Errorf("replaceMap value for %q: %w", key, err)
			}
			out = append(out, Replacement{From: key, To: value})
		}
		*m = out
		return nil
	case json.Delim('['):
		var pairs [][]string
		if err := json.Unmarshal(data, &pairs); err != nil {
			return fmt.Errorf("replaceMap pairs: %w", err)
		}
		out, err := pairsToMap(pairs)
		if err != nil {
			return err
		}
		*m = out
		return nil
	default:
		return fmt.Errorf("replaceMap must be an object, got %v", tok)
	}
}

// MarshalJSON writes an object in table order.
func (m ReplaceMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, r := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(r.From)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(r.To)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalYAML keeps mapping key order.
func (m *ReplaceMap) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.MappingNode:
		out := make(ReplaceMap, 0, len(value.Content)/2)
		for i := 0; i+1 < len(value.Content); i += 2 {
			k, v := value.Content[i], value.Content[i+1]
			if k.Kind != yaml.ScalarNode || v.Kind != yaml.ScalarNode {
				return fmt.Errorf("replaceMap line %d: keys and values must be strings", k.Line)
			}
			out = append(out, Replacement{From: k.Value, To: v.Value})
		}
		*m = out
		return nil
	case yaml.SequenceNode:
		var pairs [][]string
		if err := value.Decode(&pairs); err != nil {
			return fmt.Errorf("replaceMap pairs: %w", err)
		}
		out, err := pairsToMap(pairs)
		if err != nil {
			return err
		}
		*m = out
		return nil
	default:
		if value.Tag == "!!null" {
			*m = nil
			return nil
		}
		return fmt.Errorf("replaceMap line %d: must be a mapping", value.Line)
	}
}

// MarshalYAML writes a mapping in table order.
func (m ReplaceMap) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, r := range m {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: r.From},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: r.To},
		)
	}
	return node, nil
}

func pairsToMap(pairs [][]string) (ReplaceMap, error) {
	out := make(ReplaceMap, 0, len(pairs))
	for i, p := range pairs {
		if len(p) != 2 {
			return nil, fmt.Errorf("replaceMap pair %d: want [from, to], got %d items", i, len(p))
		}
		out = append(out, Replacement{From: p[0], To: p[1]})
	}
	return out, nil
}

// Step is one rewrite rule in a profile.
type Step struct {
	Order       int      `json:"order" yaml:"order"`
	Type        StepType `json:"type" yaml:"type"`
	Enabled     bool     `json:"enabled" yaml:"enabled"`
	Severity    Severity `json:"severity,omitempty" yaml:"severity,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Params      Params   `json:"params,omitempty" yaml:"params,omitempty"`

	// decodeErr is set when params could not be decoded for Type
	decodeErr error
}

// Err returns the load-time problem that turned this step into a no-op, if any.
func (s Step) Err() error {
	return s.decodeErr
}

// stepHeader holds the fields shared by the JSON and YAML decoders.
// Enabled is a pointer so an omitted flag defaults to true.
type stepHeader struct {
	Order       int      `json:"order" yaml:"order"`
	Type        StepType `json:"type" yaml:"type"`
	Enabled     *bool    `json:"enabled" yaml:"enabled"`
	Severity    Severity `json:"severity" yaml:"severity"`
	Description string   `json:"description" yaml:"description"`
}

func (s *Step) applyHeader(h stepHeader) {
	s.Order = h.Order
	s.Type = h.Type
	s.Enabled = h.Enabled == nil || *h.Enabled
	s.Severity = h.Severity
	s.Description = h.Description
}

// UnmarshalJSON decodes params into the struct matching the step type.
func (s *Step) UnmarshalJSON(data []byte) error {
	var raw struct {
		stepHeader
		Params json.RawMessage `json:"params"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.applyHeader(raw.stepHeader)

	hasParams := len(raw.Params) > 0 && string(raw.Params) != "null"
	s.Params, s.decodeErr = decodeParams(s.Type, hasParams, func(v any) error {
		return json.Unmarshal(raw.Params, v)
	})
	return nil
}

// UnmarshalYAML decodes params into the struct matching the step type.
func (s *Step) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		stepHeader `yaml:",inline"`
		Params     yaml.Node `yaml:"params"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	s.applyHeader(raw.stepHeader)

	hasParams := raw.Params.Kind != 0 && raw.Params.Tag != "!!null"
	s.Params, s.decodeErr = decodeParams(s.Type, hasParams, raw.Params.Decode)
	return nil
}

func decodeParams(t StepType, hasParams bool, decode func(any) error) (Params, error) {
	var p Params
	switch t {
	case StepStripMarkupTags:
		var v StripMarkupTagsParams
		if hasParams {
			if err := decode(&v); err != nil {
				return nil, fmt.Errorf("invalid %s params: %w", t, err)
			}
		}
		p = v
	case StepStripParagraphMarkers:
		var v StripParagraphMarkersParams
		if hasParams {
			if err := decode(&v); err != nil {
				return nil, fmt.Errorf("invalid %s params: %w", t, err)
			}
		}
		p = v
	case StepStripVerseNumbers, StepStripHeadings:
		var v PatternParams
		if hasParams {
			if err := decode(&v); err != nil {
				return nil, fmt.Errorf("invalid %s params: %w", t, err)
			}
		}
		p = v
	case StepRegexReplace:
		var v RegexReplaceParams
		if hasParams {
			if err := decode(&v); err != nil {
				return nil, fmt.Errorf("invalid %s params: %w", t, err)
			}
		}
		p = v
	case StepReplaceMap:
		var v ReplaceMapParams
		if hasParams {
			if err := decode(&v); err != nil {
				return nil, fmt.Errorf("invalid %s params: %w", t, err)
			}
		}
		p = v
	case StepCollapseWhitespace, StepTrim:
		p = NoParams{}
	default:
		return nil, fmt.Errorf("unknown step type %q", t)
	}
	return p, nil
}
