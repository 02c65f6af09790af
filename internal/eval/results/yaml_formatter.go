package results

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/versebench/versebench/internal/eval/metrics"
	"github.com/versebench/versebench/internal/models"
)

// EvalConfig represents the configuration section of the eval YAML
type EvalConfig struct {
	RunID            string `yaml:"runid"`
	Provider         string `yaml:"provider"`
	Model            string `yaml:"model"`
	Translation      string `yaml:"translation,omitempty"`
	CanonicalProfile string `yaml:"canonicalprofile"`
	OutputProfile    string `yaml:"outputprofile"`
	Status           string `yaml:"status"`
	Timestamp        string `yaml:"timestamp"`
}

// EvalResult represents the result for one chapter
type EvalResult struct {
	Chapter          string          `yaml:"chapter"`
	ProviderResponse string          `yaml:"providerresponse"`
	HashMatch        bool            `yaml:"hashmatch"`
	FidelityScore    float64         `yaml:"fidelityscore"`
	Verdict          metrics.Verdict `yaml:"verdict"`
	Substitutions    int             `yaml:"substitutions"`
	Omissions        int             `yaml:"omissions"`
	Additions        int             `yaml:"additions"`
	PerfectVerses    int             `yaml:"perfectverses"`
	TotalVerses      int             `yaml:"totalverses"`
	MissingVerses    []int           `yaml:"missingverses,omitempty"`
	ExtraVerses      []int           `yaml:"extraverses,omitempty"`
	Error            string          `yaml:"error,omitempty"`
}

// EvalSpec represents the complete exported run
type EvalSpec struct {
	Config       EvalConfig            `yaml:"config"`
	Summary      metrics.ResultSummary `yaml:"summary"`
	VerseSummary metrics.ResultSummary `yaml:"versesummary"`
	Results      []EvalResult          `yaml:"results"`
}

// NewEvalSpec flattens a run into its YAML export form
func NewEvalSpec(run *models.Run) EvalSpec {
	spec := EvalSpec{
		Config: EvalConfig{
			RunID:            run.ID,
			Provider:         run.Provider,
			Model:            run.Model,
			Translation:      run.Translation,
			CanonicalProfile: run.CanonicalProfile,
			OutputProfile:    run.OutputProfile,
			Status:           string(run.Status),
			Timestamp:        run.StartedAt.Format(time.RFC3339),
		},
		Summary:      run.Summary,
		VerseSummary: run.VerseSummary,
		Results:      make([]EvalResult, 0, len(run.Chapters)),
	}

	for _, ch := range run.Chapters {
		spec.Results = append(spec.Results, EvalResult{
			Chapter:          fmt.Sprintf("%s %d", ch.Book, ch.Chapter),
			ProviderResponse: ch.Response,
			HashMatch:        ch.HashMatch,
			FidelityScore:    ch.FidelityScore,
			Verdict:          ch.Verdict,
			Substitutions:    ch.Diff.Substitutions,
			Omissions:        ch.Diff.Omissions,
			Additions:        ch.Diff.Additions,
			PerfectVerses:    ch.Summary.Matches,
			TotalVerses:      len(ch.Verses),
			MissingVerses:    ch.MissingVerses,
			ExtraVerses:      ch.ExtraVerses,
			Error:            ch.Error,
		})
	}
	return spec
}

// SaveToYAML writes the run to <dir>/<model>-<timestamp>.yaml and returns the path
func SaveToYAML(dir string, run *models.Run) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create evals directory: %w", err)
	}

	timestamp := run.StartedAt.Format("2006-01-02_15-04-05")
	filename := filepath.Join(dir, fmt.Sprintf("%s-%s.yaml", fileSafe(run.Model), timestamp))

	spec := NewEvalSpec(run)
	data, err := yaml.Marshal(&spec)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}

	return filename, nil
}

// fileSafe replaces characters model names commonly carry (llama3.1:8b,
// org/model) that are awkward in file names.
func fileSafe(s string) string {
	if s == "" {
		return "run"
	}
	return strings.NewReplacer("/", "-", ":", "-", "\\", "-", " ", "_").Replace(s)
}
