package transform

import (
	"fmt"
	"sort"
	"strings"
)

type compiledStep struct {
	step  Step
	apply rule
}

// Pipeline is a compiled, order-sorted list of enabled steps.
type Pipeline struct {
	steps    []compiledStep
	warnings []string
}

// Compile sorts steps by Order (stable), drops disabled steps and compiles
// the rest. Steps that fail to compile become no-ops and are reported by
// Warnings. The input slice is not modified.
func Compile(steps []Step) *Pipeline {
	sorted := make([]Step, len(steps))
	copy(sorted, steps)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})

	p := &Pipeline{}
	for _, s := range sorted {
		if !s.Enabled {
			continue
		}
		fn, err := compileStep(s)
		if err != nil {
			p.warnings = append(p.warnings, fmt.Sprintf("step %d (%s) skipped: %v", s.Order, s.Type, err))
			continue
		}
		p.steps = append(p.steps, compiledStep{step: s, apply: fn})
	}
	return p
}

// Apply runs every compiled step over input in order.
func (p *Pipeline) Apply(input string) string {
	if p == nil {
		return input
	}
	out := input
	for _, s := range p.steps {
		out = s.apply(out)
	}
	return out
}

// Trace runs the pipeline and returns the text after each step, keyed by
// position in the compiled order.
func (p *Pipeline) Trace(input string) []TraceEntry {
	if p == nil {
		return nil
	}
	entries := make([]TraceEntry, 0, len(p.steps))
	out := input
	for _, s := range p.steps {
		out = s.apply(out)
		entries = append(entries, TraceEntry{Order: s.step.Order, Type: s.step.Type, Output: out})
	}
	return entries
}

// TraceEntry is the intermediate text after one step.
type TraceEntry struct {
	Order  int      `json:"order"`
	Type   StepType `json:"type"`
	Output string   `json:"output"`
}

// Warnings lists steps that were skipped because they could not be compiled.
func (p *Pipeline) Warnings() []string {
	if p == nil {
		return nil
	}
	return p.warnings
}

// Len returns the number of active steps.
func (p *Pipeline) Len() int {
	if p == nil {
		return 0
	}
	return len(p.steps)
}

// ApplySteps compiles steps and applies them to input.
func ApplySteps(input string, steps []Step) string {
	return Compile(steps).Apply(input)
}

// ApplyProfile applies a profile's steps to input. A nil profile returns input unchanged.
func ApplyProfile(input string, p *Profile) string {
	if p == nil {
		return input
	}
	return p.Pipeline().Apply(input)
}

// NormalizeVerseText applies steps and then always collapses whitespace and trims,
// so per-verse comparison never depends on profile whitespace handling.
func NormalizeVerseText(text string, steps []Step) string {
	return normalize(Compile(steps), text)
}

// Normalize is NormalizeVerseText for an already compiled pipeline.
func (p *Pipeline) Normalize(text string) string {
	return normalize(p, text)
}

func normalize(p *Pipeline, text string) string {
	return strings.TrimSpace(CollapseWhitespace(p.Apply(text)))
}
