package results

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/versebench/versebench/internal/eval/metrics"
	"github.com/versebench/versebench/internal/models"
)

func sampleRun() *models.Run {
	return &models.Run{
		ID:               "run-1",
		Provider:         "ollama",
		Model:            "llama3.1:8b",
		CanonicalProfile: "default",
		OutputProfile:    "default",
		Status:           models.RunStatusCompleted,
		StartedAt:        time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC),
		Summary:          metrics.ResultSummary{Total: 2, Matches: 1, PerfectRate: 0.5, AvgFidelity: 50},
		VerseSummary:     metrics.ResultSummary{Total: 2, Matches: 1, PerfectRate: 0.5, AvgFidelity: 70},
		Verdicts:         metrics.VerdictCounts{Pass: 1, Fail: 1},
		Chapters: []models.ChapterResult{
			{
				Book: "Gen", BookIndex: 1, Chapter: 1,
				Response:      "1 In the beginning",
				FidelityScore: 70,
				Verdict:       metrics.VerdictFail,
				Diff:          metrics.DiffCounts{Omissions: 12},
				Summary:       metrics.ResultSummary{Total: 2, Matches: 1, PerfectRate: 0.5, AvgFidelity: 70},
				MissingVerses: []int{2},
				Verses: []models.VerseResult{
					{VerseID: 1001001, VerseNumber: 1, Matched: true, HashMatch: true, FidelityScore: 100, Verdict: metrics.VerdictPass},
					{VerseID: 1001002, VerseNumber: 2, CanonicalText: "And the earth was without form", FidelityScore: 40, Verdict: metrics.VerdictFail},
				},
			},
			{Book: "Ps", BookIndex: 19, Chapter: 117, Verdict: metrics.VerdictFail, Error: "model unavailable"},
		},
	}
}

func TestSaveToYAML(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "evals")

	path, err := SaveToYAML(dir, sampleRun())
	if err != nil {
		t.Fatalf("SaveToYAML failed: %v", err)
	}
	if filepath.Base(path) != "llama3.1-8b-2025-03-04_05-06-07.yaml" {
		t.Errorf("Unexpected file name %s", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var spec EvalSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		t.Fatalf("Exported YAML does not parse: %v", err)
	}
	if spec.Config.Model != "llama3.1:8b" {
		t.Errorf("Expected model llama3.1:8b, got %s", spec.Config.Model)
	}
	if len(spec.Results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(spec.Results))
	}
	if spec.Results[0].Chapter != "Gen 1" || spec.Results[0].Omissions != 12 || spec.Results[0].TotalVerses != 2 {
		t.Errorf("Unexpected first result %+v", spec.Results[0])
	}
	if spec.Results[1].Error != "model unavailable" {
		t.Errorf("Expected chapter error to be exported, got %q", spec.Results[1].Error)
	}
	if spec.Summary.PerfectRate != 0.5 {
		t.Errorf("Expected perfect rate 0.5, got %v", spec.Summary.PerfectRate)
	}
}

func TestSaveAndLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "run.json")
	run := sampleRun()

	if err := SaveToJSON(path, run); err != nil {
		t.Fatalf("SaveToJSON failed: %v", err)
	}
	loaded, err := LoadFromJSON(path)
	if err != nil {
		t.Fatalf("LoadFromJSON failed: %v", err)
	}

	if loaded.ID != run.ID || !loaded.StartedAt.Equal(run.StartedAt) {
		t.Errorf("Expected run %s, got %s", run.ID, loaded.ID)
	}
	if len(loaded.Chapters[0].Verses) != 2 {
		t.Errorf("Expected verse results to survive, got %d", len(loaded.Chapters[0].Verses))
	}

	if _, err := LoadFromJSON(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestWriteTextReport(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTextReport(&buf, sampleRun(), true); err != nil {
		t.Fatalf("WriteTextReport failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Benchmark Summary",
		"llama3.1:8b",
		"Perfect Chapters: 1 (50.00%)",
		"[1] Gen 1",
		"Missing:       [2]",
		"Error: model unavailable",
		"Canonical: And the earth was without form",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected report to contain %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "v1 ") {
		t.Error("Expected exact verses to be omitted from verbose output")
	}
}

func TestWriteCSVReport(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSVReport(&buf, sampleRun()); err != nil {
		t.Fatalf("WriteCSVReport failed: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("CSV does not parse: %v", err)
	}
	// header + 2 verses + 1 failed chapter
	if len(rows) != 4 {
		t.Fatalf("Expected 4 rows, got %d", len(rows))
	}
	if rows[1][3] != "1001001" || rows[1][5] != "true" {
		t.Errorf("Unexpected first verse row %v", rows[1])
	}
	if rows[3][11] != "model unavailable" {
		t.Errorf("Expected error row, got %v", rows[3])
	}
}

func TestWriteReport_Formats(t *testing.T) {
	for _, format := range Formats() {
		var buf bytes.Buffer
		if err := WriteReport(&buf, sampleRun(), format, false); err != nil {
			t.Errorf("format %s failed: %v", format, err)
		}
		if buf.Len() == 0 {
			t.Errorf("format %s wrote nothing", format)
		}
	}

	if err := WriteReport(&bytes.Buffer{}, sampleRun(), "xml", false); err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("Expected unchanged, got %q", got)
	}
	if got := truncate("abcdefghijkl", 8); got != "abcde..." {
		t.Errorf("Expected abcde..., got %q", got)
	}
}
