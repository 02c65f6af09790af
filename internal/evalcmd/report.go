package evalcmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/versebench/versebench/internal/config"
	"github.com/versebench/versebench/internal/eval/results"
	"github.com/versebench/versebench/internal/models"
	"github.com/versebench/versebench/internal/storage"
)

func executeReport(ctx context.Context, w io.Writer, cfg config.Config, source, format string, details bool) error {
	run, err := loadRun(ctx, cfg, source)
	if err != nil {
		return err
	}
	return results.WriteReport(w, run, format, details)
}

// loadRun reads source as a JSON results file when it exists on disk and
// otherwise looks it up as a run id in the configured store.
func loadRun(ctx context.Context, cfg config.Config, source string) (*models.Run, error) {
	if _, err := os.Stat(source); err == nil {
		run, err := results.LoadFromJSON(source)
		if err != nil {
			return nil, fmt.Errorf("failed to load results: %w", err)
		}
		return run, nil
	}

	if cfg.DBPath == "" {
		return nil, fmt.Errorf("results file not found: %s (set VERSEBENCH_DB to look up run ids)", source)
	}

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open run store: %w", err)
	}
	defer store.Close()

	run, err := store.GetRun(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", source, err)
	}
	return run, nil
}
