// Package evalcmd holds the bodies of the bench subcommands.
package evalcmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/versebench/versebench/internal/config"
	"github.com/versebench/versebench/internal/eval/dataset"
	"github.com/versebench/versebench/internal/transform"
)

// loadRegistry loads the profile file at path, or the built-in profiles when
// path is empty.
func loadRegistry(path string) (*transform.Registry, error) {
	if path == "" {
		return transform.NewRegistry(nil), nil
	}
	set, err := transform.LoadProfiles(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}
	return transform.NewRegistry(set), nil
}

// loadCorpus opens a local or remote corpus and reads up to limit records
// (all when limit is not positive).
func loadCorpus(ctx context.Context, cfg config.Config, location string, limit int) ([]dataset.CanonicalVerseRecord, error) {
	loader, err := dataset.Open(ctx, location, dataset.DownloadConfig{
		CacheDir: cfg.CacheDir,
		Token:    cfg.CorpusToken,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus: %w", err)
	}

	var records []dataset.CanonicalVerseRecord
	if limit > 0 {
		records, err = loader.LoadSample(limit)
	} else {
		records, err = loader.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}
	return records, nil
}

// readInput reads a whole file, or stdin when path is "-".
func readInput(path string, stdin io.Reader) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}
