package evalcmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/versebench/versebench/internal/benchmark"
	"github.com/versebench/versebench/internal/config"
	"github.com/versebench/versebench/internal/eval/dataset"
	"github.com/versebench/versebench/internal/eval/results"
	"github.com/versebench/versebench/internal/models"
	"github.com/versebench/versebench/internal/storage"
)

type runOptions struct {
	Corpus      string
	Chapters    []string
	Limit       int
	Provider    string
	Model       string
	Responses   string
	Translation string
	Temperature float64
	Concurrency int

	ProfilesPath     string
	CanonicalProfile string
	OutputProfile    string

	OutputDir  string
	OutputJSON string
}

// withDefaults fills unset options from configuration
func (o runOptions) withDefaults(cfg config.Config) runOptions {
	if o.Corpus == "" {
		o.Corpus = cfg.CorpusPath
	}
	if o.ProfilesPath == "" {
		o.ProfilesPath = cfg.ProfilesPath
	}
	if o.Provider == "" {
		o.Provider = cfg.Provider
	}
	if o.Model == "" {
		if o.Provider == cfg.Provider {
			o.Model = cfg.Model
		} else {
			o.Model = config.DefaultModel(o.Provider)
		}
	}
	if o.Model == "" {
		o.Model = o.Provider
	}
	return o
}

func executeRun(ctx context.Context, w io.Writer, cfg config.Config, opts runOptions) (*models.Run, error) {
	opts = opts.withDefaults(cfg)
	if opts.Corpus == "" {
		return nil, errors.New("no corpus given: pass --corpus or set VERSEBENCH_CORPUS")
	}

	slog.Info("Starting benchmark", "corpus", opts.Corpus, "provider", opts.Provider, "model", opts.Model)

	records, err := loadCorpus(ctx, cfg, opts.Corpus, 0)
	if err != nil {
		return nil, err
	}
	slog.Info("Corpus loaded", "verses", len(records))

	keys, err := selectChapters(records, opts.Chapters, opts.Limit)
	if err != nil {
		return nil, err
	}

	provider, err := benchmark.NewProvider(opts.Provider, cfg, opts.Responses)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}

	registry, err := loadRegistry(opts.ProfilesPath)
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open run store: %w", err)
	}
	defer store.Close()

	runner := benchmark.NewRunner(provider, store,
		benchmark.WithProfiles(registry),
		benchmark.WithThresholds(cfg.Thresholds),
		benchmark.WithLogger(slog.Default()),
	)

	run, err := runner.Run(ctx, benchmark.Request{
		Provider:         opts.Provider,
		Model:            opts.Model,
		Translation:      opts.Translation,
		Temperature:      opts.Temperature,
		Records:          records,
		Chapters:         keys,
		CanonicalProfile: opts.CanonicalProfile,
		OutputProfile:    opts.OutputProfile,
		Concurrency:      opts.Concurrency,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to run benchmark: %w", err)
	}

	yamlPath, err := results.SaveToYAML(opts.OutputDir, run)
	if err != nil {
		return run, err
	}
	slog.Info("Results saved", "output", yamlPath)

	if opts.OutputJSON != "" {
		if err := results.SaveToJSON(opts.OutputJSON, run); err != nil {
			return run, err
		}
		slog.Info("Results saved", "output", opts.OutputJSON)
	}

	fmt.Fprintln(w)
	results.PrintSummary(w, run)
	fmt.Fprintf(w, "\nResults saved to: %s\n", yamlPath)
	if opts.OutputJSON != "" {
		fmt.Fprintf(w, "\nGenerate a detailed report with:\n")
		fmt.Fprintf(w, "  versebench bench report %s --details\n", opts.OutputJSON)
	} else if cfg.DBPath != "" {
		fmt.Fprintf(w, "\nGenerate a detailed report with:\n")
		fmt.Fprintf(w, "  versebench bench report %s --details\n", run.ID)
	}

	return run, nil
}

// selectChapters resolves chapter names against the corpus. With no names the
// first limit chapters are used, or all of them when limit is not positive.
func selectChapters(records []dataset.CanonicalVerseRecord, names []string, limit int) ([]dataset.ChapterKey, error) {
	if len(names) == 0 {
		keys := dataset.Chapters(records)
		if limit > 0 && limit < len(keys) {
			keys = keys[:limit]
		}
		return keys, nil
	}

	keys := make([]dataset.ChapterKey, 0, len(names))
	for _, name := range names {
		key, err := dataset.ParseChapterKey(name)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}
