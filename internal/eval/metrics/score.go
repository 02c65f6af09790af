package metrics

import (
	"fmt"

	"github.com/versebench/versebench/internal/transform"
)

// ScoredText is a candidate normalized with a profile and compared to canonical text.
type ScoredText struct {
	NormalizedText string     `json:"normalizedText"`
	FidelityScore  float64    `json:"fidelityScore"`
	Diff           DiffCounts `json:"diff"`
	Hunks          []Hunk     `json:"hunks,omitempty"`
}

// ApplyTransformsAndScore normalizes candidateRaw with steps and compares it
// with canonicalText, which is expected to be normalized already. Used to
// rescore stored output under a different profile without calling the model.
func ApplyTransformsAndScore(candidateRaw, canonicalText string, steps []transform.Step) ScoredText {
	normalized := transform.ApplySteps(candidateRaw, steps)
	cmp := CompareText(canonicalText, normalized)
	return ScoredText{
		NormalizedText: normalized,
		FidelityScore:  cmp.FidelityScore,
		Diff:           cmp.Diff,
		Hunks:          cmp.Hunks,
	}
}

// Verdict is the pass/warn/fail label shown for a result.
type Verdict string

const (
	VerdictPass Verdict = "pass"
	VerdictWarn Verdict = "warn"
	VerdictFail Verdict = "fail"
)

// Thresholds are the minimum fidelity scores for pass and warn.
type Thresholds struct {
	Pass float64 `json:"pass" yaml:"pass"`
	Warn float64 `json:"warn" yaml:"warn"`
}

// DefaultThresholds pass at 95 and warn at 80.
var DefaultThresholds = Thresholds{Pass: 95, Warn: 80}

// Validate checks that 0 <= Warn <= Pass <= 100.
func (t Thresholds) Validate() error {
	if t.Warn < 0 || t.Pass > 100 || t.Warn > t.Pass {
		return fmt.Errorf("invalid thresholds: pass=%.2f warn=%.2f", t.Pass, t.Warn)
	}
	return nil
}

// Classify labels a result. An exact hash match always passes.
func Classify(score float64, hashMatch bool, t Thresholds) Verdict {
	switch {
	case hashMatch || score >= t.Pass:
		return VerdictPass
	case score >= t.Warn:
		return VerdictWarn
	default:
		return VerdictFail
	}
}
