package dataset

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// errStop ends a scan early without reporting an error
var errStop = errors.New("stop")

// Loader handles loading of the canonical verse corpus
type Loader struct {
	datasetPath string
}

// NewLoader creates a new dataset loader
func NewLoader(datasetPath string) *Loader {
	return &Loader{
		datasetPath: datasetPath,
	}
}

// Path returns the corpus file path
func (l *Loader) Path() string {
	return l.datasetPath
}

// Load loads records from a dataset file (JSONL or Parquet)
func (l *Loader) Load() ([]CanonicalVerseRecord, error) {
	return l.LoadWithFilter(nil)
}

// LoadSample loads a limited number of records (useful for testing)
func (l *Loader) LoadSample(limit int) ([]CanonicalVerseRecord, error) {
	if limit < 0 {
		return l.Load()
	}

	records := make([]CanonicalVerseRecord, 0, limit)
	err := l.scan(func(r *CanonicalVerseRecord) error {
		if len(records) >= limit {
			return errStop
		}
		records = append(records, *r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// LoadChapter loads the verses of one chapter. Book may be an OSIS id or a name.
func (l *Loader) LoadChapter(book string, chapter int) ([]CanonicalVerseRecord, error) {
	probe := CanonicalVerseRecord{Book: book}
	if err := probe.resolveBook(); err != nil {
		return nil, err
	}

	records, err := l.LoadWithFilter(func(r *CanonicalVerseRecord) bool {
		return r.BookIndex == probe.BookIndex && r.Chapter == chapter
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("chapter %s %d not found in %s", probe.Book, chapter, l.datasetPath)
	}
	return records, nil
}

// LoadWithFilter loads records matching a filter function. A nil filter keeps everything.
func (l *Loader) LoadWithFilter(filterFn func(*CanonicalVerseRecord) bool) ([]CanonicalVerseRecord, error) {
	var records []CanonicalVerseRecord
	err := l.scan(func(r *CanonicalVerseRecord) error {
		if filterFn == nil || filterFn(r) {
			records = append(records, *r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// scan streams every record to fn after resolving its book
func (l *Loader) scan(fn func(*CanonicalVerseRecord) error) error {
	// Detect file format
	ext := strings.ToLower(filepath.Ext(l.datasetPath))

	var err error
	switch ext {
	case ".parquet":
		err = l.scanParquet(fn)
	case ".jsonl", ".json":
		err = l.scanJSONL(fn)
	default:
		return fmt.Errorf("unsupported file format: %s (supported: .parquet, .jsonl)", ext)
	}
	if errors.Is(err, errStop) {
		return nil
	}
	return err
}

// scanJSONL reads records from a JSONL file
func (l *Loader) scanJSONL(fn func(*CanonicalVerseRecord) error) error {
	slog.Debug("Opening JSONL file", "path", l.datasetPath)

	file, err := os.Open(l.datasetPath)
	if err != nil {
		return fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)

	// Increase buffer size for long verse lines
	const maxCapacity = 1024 * 1024
	buf := make([]byte, 64*1024)
	scanner.Buffer(buf, maxCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()

		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		var record CanonicalVerseRecord
		if err := json.Unmarshal(line, &record); err != nil {
			return fmt.Errorf("failed to parse JSON at line %d: %w", lineNum, err)
		}
		if err := record.resolveBook(); err != nil {
			return fmt.Errorf("invalid record at line %d: %w", lineNum, err)
		}

		if lineNum == 1 {
			slog.Debug("First record sample",
				"translation", record.Translation,
				"book", record.Book,
				"chapter", record.Chapter,
				"verse", record.Verse)
		}

		if err := fn(&record); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading dataset: %w", err)
	}

	slog.Debug("Finished reading JSONL file", "total_lines", lineNum)
	return nil
}

// scanParquet reads records from a Parquet file in batches
func (l *Loader) scanParquet(fn func(*CanonicalVerseRecord) error) error {
	slog.Debug("Opening Parquet file", "path", l.datasetPath)

	file, err := os.Open(l.datasetPath)
	if err != nil {
		return fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	// Get file info for size
	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return fmt.Errorf("failed to open parquet: %w", err)
	}

	slog.Debug("Parquet file opened successfully", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[CanonicalVerseRecord](pf)
	defer reader.Close()

	rows := make([]CanonicalVerseRecord, 256) // Read in batches
	batchNum := 0
	totalRead := 0

	for {
		n, err := reader.Read(rows)
		if n > 0 {
			batchNum++
			totalRead += n
			slog.Debug("Read batch from Parquet", "batch", batchNum, "rows_in_batch", n, "total_rows_read", totalRead)

			for i := 0; i < n; i++ {
				record := rows[i]
				if rerr := record.resolveBook(); rerr != nil {
					return fmt.Errorf("invalid record at row %d: %w", totalRead-n+i, rerr)
				}
				if ferr := fn(&record); ferr != nil {
					return ferr
				}
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	slog.Debug("Finished reading Parquet file", "total_records", totalRead, "total_batches", batchNum)
	return nil
}

// WriteParquet writes records to a Parquet file, e.g. to convert a JSONL corpus.
func WriteParquet(path string, records []CanonicalVerseRecord) error {
	if err := parquet.WriteFile(path, records); err != nil {
		return fmt.Errorf("failed to write parquet file: %w", err)
	}
	return nil
}
