package metrics

import (
	"testing"
)

func TestSummarizeResults(t *testing.T) {
	tests := []struct {
		name     string
		entries  []ScoredEntry
		expected ResultSummary
	}{
		{
			name:     "empty",
			entries:  nil,
			expected: ResultSummary{},
		},
		{
			name: "one match one miss",
			entries: []ScoredEntry{
				{HashMatch: true, FidelityScore: 100},
				{HashMatch: false, FidelityScore: 90},
			},
			expected: ResultSummary{Total: 2, Matches: 1, PerfectRate: 0.5, AvgFidelity: 95},
		},
		{
			name: "rounding",
			entries: []ScoredEntry{
				{HashMatch: true, FidelityScore: 100},
				{HashMatch: false, FidelityScore: 50},
				{HashMatch: false, FidelityScore: 33.333},
			},
			expected: ResultSummary{Total: 3, Matches: 1, PerfectRate: 0.3333, AvgFidelity: 61.11},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SummarizeResults(tt.entries)
			if result != tt.expected {
				t.Errorf("Expected %+v, got %+v", tt.expected, result)
			}
		})
	}
}

type chapterScore struct {
	exact bool
	score float64
}

func (c chapterScore) IsHashMatch() bool  { return c.exact }
func (c chapterScore) Fidelity() float64 { return c.score }

func TestSummarize_AnyScored(t *testing.T) {
	result := Summarize([]chapterScore{{true, 100}, {true, 100}, {false, 70}, {false, 80}})

	if result.Total != 4 {
		t.Errorf("Expected total 4, got %d", result.Total)
	}
	if result.PerfectRate != 0.5 {
		t.Errorf("Expected perfect rate 0.5, got %f", result.PerfectRate)
	}
	if result.AvgFidelity != 87.5 {
		t.Errorf("Expected avg fidelity 87.5, got %f", result.AvgFidelity)
	}
}

func TestCalculateStats(t *testing.T) {
	stats := CalculateStats([]ScoredEntry{
		{FidelityScore: 70},
		{FidelityScore: 100},
		{FidelityScore: 80},
		{FidelityScore: 90},
	})

	expected := FidelityStats{Mean: 85, Median: 85, Min: 70, Max: 100}
	if stats != expected {
		t.Errorf("Expected %+v, got %+v", expected, stats)
	}

	if empty := CalculateStats([]ScoredEntry{}); empty != (FidelityStats{}) {
		t.Errorf("Expected zero stats, got %+v", empty)
	}
}

func TestVerdictCounts(t *testing.T) {
	var counts VerdictCounts
	for _, v := range []Verdict{VerdictPass, VerdictPass, VerdictWarn, VerdictFail, "unknown"} {
		counts.Add(v)
	}

	expected := VerdictCounts{Pass: 2, Warn: 1, Fail: 1}
	if counts != expected {
		t.Errorf("Expected %+v, got %+v", expected, counts)
	}
}

func TestCalculateAverage(t *testing.T) {
	if avg := calculateAverage(nil); avg != 0 {
		t.Errorf("Expected 0 for empty scores, got %f", avg)
	}
	if avg := calculateAverage([]float64{1, 2, 3}); avg != 2 {
		t.Errorf("Expected 2, got %f", avg)
	}
}
