package evalcmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/versebench/versebench/internal/config"
	"github.com/versebench/versebench/internal/eval/dataset"
	"github.com/versebench/versebench/internal/transform"
)

type inspectOptions struct {
	Corpus           string
	Chapter          string
	Limit            int
	Interactive      bool
	ProfilesPath     string
	CanonicalProfile string
}

func executeInspect(ctx context.Context, w io.Writer, in io.Reader, cfg config.Config, opts inspectOptions) error {
	if opts.Corpus == "" {
		opts.Corpus = cfg.CorpusPath
	}
	if opts.Corpus == "" {
		return errors.New("no corpus given: pass --corpus or set VERSEBENCH_CORPUS")
	}
	if opts.ProfilesPath == "" {
		opts.ProfilesPath = cfg.ProfilesPath
	}

	registry, err := loadRegistry(opts.ProfilesPath)
	if err != nil {
		return err
	}
	profile, err := registry.Get(transform.ScopeCanonical, opts.CanonicalProfile)
	if err != nil {
		return err
	}

	var records []dataset.CanonicalVerseRecord
	if opts.Chapter != "" {
		key, err := dataset.ParseChapterKey(opts.Chapter)
		if err != nil {
			return err
		}
		all, err := loadCorpus(ctx, cfg, opts.Corpus, 0)
		if err != nil {
			return err
		}
		records = dataset.GroupByChapter(all)[key]
		if len(records) == 0 {
			return fmt.Errorf("chapter %s not found in corpus", key)
		}
	} else {
		records, err = loadCorpus(ctx, cfg, opts.Corpus, opts.Limit)
		if err != nil {
			return err
		}
	}

	refs := dataset.Prepare(records, profile.Pipeline())

	fmt.Fprintf(w, "Loaded %d verses from %s (canonical profile %q)\n", len(records), opts.Corpus, profile.Name)
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintln(w)

	reader := bufio.NewReader(in)

	for i, rec := range records {
		select {
		case <-ctx.Done():
			fmt.Fprintln(w, "\nInspection interrupted.")
			return nil
		default:
		}

		ref := refs[i]
		fmt.Fprintf(w, "VERSE %d/%d  %s %d:%d\n", i+1, len(records), rec.Book, rec.Chapter, rec.Verse)
		fmt.Fprintln(w, strings.Repeat("-", 80))
		fmt.Fprintf(w, "Verse ID:       %d\n", ref.VerseID)
		fmt.Fprintf(w, "Translation:    %s\n", rec.Translation)
		fmt.Fprintf(w, "Raw:            %s\n", rec.Text)
		fmt.Fprintf(w, "Processed:      %s\n", ref.TextProcessed)
		fmt.Fprintf(w, "Hash:           %s\n", ref.HashProcessed)
		if ref.TextProcessed != rec.Text {
			fmt.Fprintf(w, "Length:         %d -> %d characters\n", len([]rune(rec.Text)), len([]rune(ref.TextProcessed)))
		}
		fmt.Fprintln(w)

		if !opts.Interactive {
			continue
		}

		fmt.Fprint(w, "Press Enter to continue to next verse (or Ctrl+C to quit)...")

		inputCh := make(chan error, 1)
		go func() {
			_, err := reader.ReadString('\n')
			inputCh <- err
		}()

		select {
		case <-ctx.Done():
			fmt.Fprintln(w, "\nInspection interrupted.")
			return nil
		case err := <-inputCh:
			if err != nil {
				// stdin closed; nothing more to wait for
				fmt.Fprintln(w)
				return nil
			}
			fmt.Fprintln(w)
		}
	}

	return nil
}
