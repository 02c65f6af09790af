package metrics

import (
	"sort"
)

// Scored is anything that carries an exact-match flag and a fidelity score.
// Chapter and verse results both satisfy it, so one summarizer serves both tiers.
type Scored interface {
	IsHashMatch() bool
	Fidelity() float64
}

// ScoredEntry is the minimal Scored value.
type ScoredEntry struct {
	HashMatch     bool    `json:"hashMatch"`
	FidelityScore float64 `json:"fidelityScore"`
}

func (e ScoredEntry) IsHashMatch() bool  { return e.HashMatch }
func (e ScoredEntry) Fidelity() float64 { return e.FidelityScore }

// ResultSummary is the roll-up of a set of scored results
type ResultSummary struct {
	Total       int     `json:"total" yaml:"total"`
	Matches     int     `json:"matches" yaml:"matches"`
	PerfectRate float64 `json:"perfectRate" yaml:"perfectrate"`
	AvgFidelity float64 `json:"avgFidelity" yaml:"avgfidelity"`
}

// Summarize reduces entries to a ResultSummary. PerfectRate is rounded to 4
// decimals and AvgFidelity to 2. An empty input gives the zero summary.
func Summarize[E Scored](entries []E) ResultSummary {
	if len(entries) == 0 {
		return ResultSummary{}
	}

	s := ResultSummary{Total: len(entries)}
	scores := make([]float64, 0, len(entries))
	for _, e := range entries {
		if e.IsHashMatch() {
			s.Matches++
		}
		scores = append(scores, e.Fidelity())
	}

	s.PerfectRate = round(float64(s.Matches)/float64(s.Total), 4)
	s.AvgFidelity = round(calculateAverage(scores), 2)
	return s
}

// SummarizeResults is Summarize over plain entries.
func SummarizeResults(entries []ScoredEntry) ResultSummary {
	return Summarize(entries)
}

// FidelityStats describes the spread of fidelity scores.
type FidelityStats struct {
	Mean   float64 `json:"mean" yaml:"mean"`
	Median float64 `json:"median" yaml:"median"`
	Min    float64 `json:"min" yaml:"min"`
	Max    float64 `json:"max" yaml:"max"`
}

// CalculateStats returns mean, median, min and max of the entries' scores.
func CalculateStats[E Scored](entries []E) FidelityStats {
	if len(entries) == 0 {
		return FidelityStats{}
	}

	scores := make([]float64, len(entries))
	for i, e := range entries {
		scores[i] = e.Fidelity()
	}
	sort.Float64s(scores)

	var median float64
	mid := len(scores) / 2
	if len(scores)%2 == 0 {
		median = (scores[mid-1] + scores[mid]) / 2
	} else {
		median = scores[mid]
	}

	return FidelityStats{
		Mean:   round(calculateAverage(scores), 2),
		Median: round(median, 2),
		Min:    scores[0],
		Max:    scores[len(scores)-1],
	}
}

// VerdictCounts tallies verdicts.
type VerdictCounts struct {
	Pass int `json:"pass" yaml:"pass"`
	Warn int `json:"warn" yaml:"warn"`
	Fail int `json:"fail" yaml:"fail"`
}

// Add records one verdict.
func (c *VerdictCounts) Add(v Verdict) {
	switch v {
	case VerdictPass:
		c.Pass++
	case VerdictWarn:
		c.Warn++
	case VerdictFail:
		c.Fail++
	}
}

// calculateAverage calculates the average of a slice of scores
func calculateAverage(scores []float64) float64 {
	if len(scores) == 0 {
		return 0.0
	}

	sum := 0.0
	for _, score := range scores {
		sum += score
	}

	return sum / float64(len(scores))
}
