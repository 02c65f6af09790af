package transform

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scope says which side of a comparison a profile normalizes.
type Scope string

const (
	ScopeCanonical   Scope = "canonical"
	ScopeModelOutput Scope = "model_output"
)

// ErrProfileNotFound is returned when a named profile does not exist in a scope.
var ErrProfileNotFound = errors.New("profile not found")

// Profile is a named, ordered list of steps.
type Profile struct {
	Name        string `json:"name" yaml:"name"`
	Scope       Scope  `json:"scope" yaml:"scope"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Steps       []Step `json:"steps" yaml:"steps"`
}

// Validate checks the profile shape. Step params are not checked here; bad
// params degrade to no-op steps and surface through Warnings.
func (p *Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("profile name is required")
	}
	if p.Scope != ScopeCanonical && p.Scope != ScopeModelOutput {
		return fmt.Errorf("profile %q: invalid scope %q", p.Name, p.Scope)
	}

	seen := make(map[int]bool, len(p.Steps))
	for _, s := range p.Steps {
		if seen[s.Order] {
			return fmt.Errorf("profile %q: duplicate step order %d", p.Name, s.Order)
		}
		seen[s.Order] = true
	}
	return nil
}

// Pipeline compiles the profile's steps.
func (p *Profile) Pipeline() *Pipeline {
	return Compile(p.Steps)
}

// Warnings reports load-time problems that leave steps as no-ops.
func (p *Profile) Warnings() []string {
	var out []string
	for _, s := range p.Steps {
		if !s.Severity.IsValid() {
			out = append(out, fmt.Sprintf("step %d (%s): unknown severity %q", s.Order, s.Type, s.Severity))
		}
	}
	return append(out, p.Pipeline().Warnings()...)
}

// ProfileSet holds the loaded profiles for both scopes.
type ProfileSet struct {
	profiles []*Profile
}

// NewProfileSet validates profiles and rejects duplicate names within a scope.
func NewProfileSet(profiles ...*Profile) (*ProfileSet, error) {
	seen := make(map[string]bool)
	for _, p := range profiles {
		if p == nil {
			continue
		}
		if err := p.Validate(); err != nil {
			return nil, err
		}
		key := string(p.Scope) + "/" + p.Name
		if seen[key] {
			return nil, fmt.Errorf("duplicate profile %q in scope %s", p.Name, p.Scope)
		}
		seen[key] = true
	}

	set := &ProfileSet{}
	for _, p := range profiles {
		if p != nil {
			set.profiles = append(set.profiles, p)
		}
	}
	return set, nil
}

// DefaultProfileSet returns the built-in canonical and model output profiles.
func DefaultProfileSet() *ProfileSet {
	return &ProfileSet{profiles: []*Profile{DefaultCanonicalProfile(), DefaultModelOutputProfile()}}
}

// All returns every profile in load order.
func (s *ProfileSet) All() []*Profile {
	if s == nil {
		return nil
	}
	out := make([]*Profile, len(s.profiles))
	copy(out, s.profiles)
	return out
}

// Get returns the named profile in scope. An empty name selects the scope's default.
func (s *ProfileSet) Get(scope Scope, name string) (*Profile, error) {
	if name == "" {
		return s.Default(scope), nil
	}
	if s != nil {
		for _, p := range s.profiles {
			if p.Scope == scope && p.Name == name {
				return p, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %s/%s", ErrProfileNotFound, scope, name)
}

// Default returns the first profile loaded for scope, or the built-in one.
func (s *ProfileSet) Default(scope Scope) *Profile {
	if s != nil {
		for _, p := range s.profiles {
			if p.Scope == scope {
				return p
			}
		}
	}
	if scope == ScopeModelOutput {
		return DefaultModelOutputProfile()
	}
	return DefaultCanonicalProfile()
}

type profileDocument struct {
	Profiles []*Profile `json:"profiles" yaml:"profiles"`
}

// LoadProfiles reads a YAML or JSON profile file. The file holds either a
// single profile or a top-level "profiles" list.
func LoadProfiles(path string) (*ProfileSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles: %w", err)
	}

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	set, err := ParseProfiles(data, format)
	if err != nil {
		return nil, fmt.Errorf("failed to parse profiles %s: %w", path, err)
	}
	return set, nil
}

// ParseProfiles decodes profiles from data. Format is "yaml", "yml" or "json".
func ParseProfiles(data []byte, format string) (*ProfileSet, error) {
	var doc profileDocument
	var single Profile

	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		if len(doc.Profiles) == 0 {
			if err := yaml.Unmarshal(data, &single); err != nil {
				return nil, err
			}
		}
	case "json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		if len(doc.Profiles) == 0 {
			if err := json.Unmarshal(data, &single); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("unsupported profile format %q", format)
	}

	if len(doc.Profiles) == 0 {
		if single.Name == "" {
			return nil, errors.New("no profiles found")
		}
		doc.Profiles = []*Profile{&single}
	}
	return NewProfileSet(doc.Profiles...)
}

// MarshalProfiles encodes profiles in the same document shape ParseProfiles reads.
func MarshalProfiles(profiles []*Profile, format string) ([]byte, error) {
	doc := profileDocument{Profiles: profiles}
	switch format {
	case "yaml", "yml":
		return yaml.Marshal(doc)
	case "json":
		return json.MarshalIndent(doc, "", "  ")
	}
	return nil, fmt.Errorf("unsupported profile format %q", format)
}
