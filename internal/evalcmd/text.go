package evalcmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/versebench/versebench/internal/benchmark"
	"github.com/versebench/versebench/internal/config"
	"github.com/versebench/versebench/internal/eval/metrics"
	"github.com/versebench/versebench/internal/eval/results"
	"github.com/versebench/versebench/internal/transform"
	"github.com/versebench/versebench/internal/utils"
	"github.com/versebench/versebench/internal/verses"
)

type scoreOptions struct {
	ProfilesPath     string
	CanonicalProfile string
	OutputProfile    string
	JSON             bool
	Hunks            bool
}

func executeScore(w io.Writer, cfg config.Config, canonical, candidate string, opts scoreOptions) error {
	if opts.ProfilesPath == "" {
		opts.ProfilesPath = cfg.ProfilesPath
	}
	registry, err := loadRegistry(opts.ProfilesPath)
	if err != nil {
		return err
	}
	canonicalProfile, err := registry.Get(transform.ScopeCanonical, opts.CanonicalProfile)
	if err != nil {
		return err
	}
	outputProfile, err := registry.Get(transform.ScopeModelOutput, opts.OutputProfile)
	if err != nil {
		return err
	}

	score := benchmark.ScoreText(candidate, canonical, canonicalProfile, outputProfile.Steps, cfg.Thresholds)

	if opts.JSON {
		if !opts.Hunks {
			score.Hunks = nil
		}
		return writeJSON(w, score)
	}

	fmt.Fprintf(w, "Verdict:        %s\n", results.VerdictLabel(score.Verdict))
	fmt.Fprintf(w, "Hash Match:     %t\n", score.HashMatch)
	fmt.Fprintf(w, "Fidelity:       %.2f\n", score.FidelityScore)
	fmt.Fprintf(w, "Substitutions:  %d\n", score.Diff.Substitutions)
	fmt.Fprintf(w, "Omissions:      %d\n", score.Diff.Omissions)
	fmt.Fprintf(w, "Additions:      %d\n", score.Diff.Additions)
	for _, warning := range score.Warnings {
		fmt.Fprintf(w, "Warning:        %s\n", warning)
	}

	if opts.Hunks {
		fmt.Fprintln(w, "\nDifferences:")
		for _, h := range score.Hunks {
			if h.Kind == metrics.HunkEqual {
				continue
			}
			fmt.Fprintf(w, "  %-13s canonical=%q candidate=%q\n", h.Kind, h.Canonical, h.Candidate)
		}
	}
	return nil
}

type parseOptions struct {
	Strategy      string
	ProfilesPath  string
	OutputProfile string
	JSON          bool
}

func executeParse(w io.Writer, cfg config.Config, text string, opts parseOptions) error {
	strategy, err := verses.StrategyByName(opts.Strategy)
	if err != nil {
		return err
	}

	if opts.OutputProfile != "none" {
		if opts.ProfilesPath == "" {
			opts.ProfilesPath = cfg.ProfilesPath
		}
		registry, err := loadRegistry(opts.ProfilesPath)
		if err != nil {
			return err
		}
		profile, err := registry.Get(transform.ScopeModelOutput, opts.OutputProfile)
		if err != nil {
			return err
		}
		text = profile.Pipeline().Apply(text)
	}

	res := strategy.Parse(text)
	if opts.JSON {
		return writeJSON(w, res)
	}

	fmt.Fprintf(w, "Strategy: %s  Verses: %d\n", res.Strategy, len(res.Verses))
	for _, v := range res.Verses {
		fmt.Fprintf(w, "%4d  %s\n", v.VerseNumber, v.Text)
	}
	for _, u := range res.UnmatchedText {
		fmt.Fprintf(w, "   ?  %s\n", u)
	}
	for _, warning := range res.Warnings {
		fmt.Fprintf(w, "Warning: %s\n", warning)
	}
	return nil
}

func executeHash(w io.Writer, text string) error {
	_, err := fmt.Fprintln(w, utils.SHA256Hex(text))
	return err
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
