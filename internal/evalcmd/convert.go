package evalcmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/versebench/versebench/internal/config"
	"github.com/versebench/versebench/internal/eval/dataset"
)

// executeConvert reads a corpus from any supported location and writes it
// back out as Parquet.
func executeConvert(ctx context.Context, w io.Writer, cfg config.Config, location, outPath string) error {
	if !strings.EqualFold(filepath.Ext(outPath), ".parquet") {
		return fmt.Errorf("output %s must have a .parquet extension", outPath)
	}

	records, err := loadCorpus(ctx, cfg, location, 0)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("corpus %s has no verses", location)
	}

	slog.Info("Writing Parquet corpus", "source", location, "output", outPath, "verses", len(records))
	if err := dataset.WriteParquet(outPath, records); err != nil {
		return err
	}
	fmt.Fprintf(w, "Wrote %d verses to %s\n", len(records), outPath)
	return nil
}
