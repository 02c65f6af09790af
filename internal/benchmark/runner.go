// Package benchmark runs a model over canonical chapters and scores the output.
package benchmark

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/versebench/versebench/internal/eval/dataset"
	"github.com/versebench/versebench/internal/eval/metrics"
	"github.com/versebench/versebench/internal/models"
	"github.com/versebench/versebench/internal/providers"
	"github.com/versebench/versebench/internal/storage"
	"github.com/versebench/versebench/internal/transform"
)

const defaultConcurrency = 4

// Request describes one benchmark run
type Request struct {
	Provider    string
	Model       string
	Translation string
	Temperature float64

	// Records is the canonical corpus; Chapters optionally narrows it.
	Records  []dataset.CanonicalVerseRecord
	Chapters []dataset.ChapterKey

	CanonicalProfile string
	OutputProfile    string
	Concurrency      int
}

// Result is delivered once a started run reaches a final state
type Result struct {
	Run *models.Run
	Err error
}

// Runner executes benchmark runs and tracks the ones in flight so they can
// be cancelled by id.
type Runner struct {
	provider   providers.Provider
	store      storage.Store
	profiles   *transform.Registry
	thresholds metrics.Thresholds
	logger     *slog.Logger
	now        func() time.Time

	mu     sync.Mutex
	active map[string]context.CancelFunc
}

// Option configures a Runner
type Option func(*Runner)

// WithProfiles sets the profile registry; the built-in profiles are used otherwise
func WithProfiles(r *transform.Registry) Option {
	return func(rn *Runner) { rn.profiles = r }
}

// WithThresholds sets the pass/warn thresholds
func WithThresholds(t metrics.Thresholds) Option {
	return func(rn *Runner) { rn.thresholds = t }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(rn *Runner) { rn.logger = l }
}

// NewRunner creates a runner that prompts provider and persists into store
func NewRunner(provider providers.Provider, store storage.Store, opts ...Option) *Runner {
	r := &Runner{
		provider:   provider,
		store:      store,
		thresholds: metrics.DefaultThresholds,
		logger:     slog.Default(),
		now:        time.Now,
		active:     make(map[string]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.profiles == nil {
		r.profiles = transform.NewRegistry(nil)
	}
	return r
}

// Run executes req and blocks until it finishes. Provider failures are
// recorded on their chapters; the returned error is reserved for invalid
// requests and storage failures. A cancelled run is returned with status
// cancelled and the chapters completed so far.
func (r *Runner) Run(ctx context.Context, req Request) (*models.Run, error) {
	_, done, err := r.Start(ctx, req)
	if err != nil {
		return nil, err
	}
	res := <-done
	return res.Run, res.Err
}

// Start validates req, persists the new run and executes it in the
// background. The channel receives exactly one Result.
func (r *Runner) Start(ctx context.Context, req Request) (string, <-chan Result, error) {
	p, err := r.plan(req)
	if err != nil {
		return "", nil, err
	}

	run := &models.Run{
		ID:               uuid.NewString(),
		Provider:         req.Provider,
		Model:            req.Model,
		Translation:      req.Translation,
		CanonicalProfile: p.canonical.Name,
		OutputProfile:    p.output.Name,
		Status:           models.RunStatusRunning,
		Chapters:         []models.ChapterResult{},
		StartedAt:        r.now(),
	}
	if err := r.store.SaveRun(ctx, run); err != nil {
		return "", nil, fmt.Errorf("failed to save run: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.active[run.ID] = cancel
	r.mu.Unlock()

	done := make(chan Result, 1)
	go func() {
		err := r.execute(runCtx, run, p, req)

		r.mu.Lock()
		delete(r.active, run.ID)
		r.mu.Unlock()
		cancel()

		done <- Result{Run: run, Err: err}
		close(done)
	}()

	return run.ID, done, nil
}

// Cancel stops a run started by this runner. It reports whether the run was active.
func (r *Runner) Cancel(runID string) bool {
	r.mu.Lock()
	cancel, ok := r.active[runID]
	r.mu.Unlock()
	if ok {
		cancel()
	}
	return ok
}

// Active returns the ids of runs still executing
func (r *Runner) Active() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.active))
	for id := range r.active {
		ids = append(ids, id)
	}
	return ids
}

type plan struct {
	canonical *transform.Profile
	output    *transform.Profile
	keys      []dataset.ChapterKey
	groups    map[dataset.ChapterKey][]dataset.CanonicalVerseRecord
}

func (r *Runner) plan(req Request) (*plan, error) {
	canonical, err := r.profiles.Get(transform.ScopeCanonical, req.CanonicalProfile)
	if err != nil {
		return nil, err
	}
	output, err := r.profiles.Get(transform.ScopeModelOutput, req.OutputProfile)
	if err != nil {
		return nil, err
	}

	groups := dataset.GroupByChapter(req.Records)
	keys := req.Chapters
	if len(keys) == 0 {
		keys = dataset.Chapters(req.Records)
	}
	for _, k := range keys {
		if _, ok := groups[k]; !ok {
			return nil, fmt.Errorf("chapter %s not found in corpus", k)
		}
	}
	if len(keys) == 0 {
		return nil, errors.New("no chapters to run")
	}

	return &plan{canonical: canonical, output: output, keys: keys, groups: groups}, nil
}

func (r *Runner) execute(ctx context.Context, run *models.Run, p *plan, req Request) error {
	logger := r.logger.With("run_id", run.ID, "model", run.Model)
	logger.Info("Starting benchmark run", "chapters", len(p.keys), "provider", run.Provider)

	scorer := NewScorer(p.canonical, p.output, r.thresholds)
	results := make([]*models.ChapterResult, len(p.keys))

	concurrency := req.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	g := new(errgroup.Group)
	g.SetLimit(concurrency)
	for i, key := range p.keys {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			logger.Info("Processing chapter", "chapter", key.String(), "progress", fmt.Sprintf("%d/%d", i+1, len(p.keys)))
			results[i] = r.runChapter(ctx, scorer, key, p.groups[key], req)
			return nil
		})
	}
	_ = g.Wait()

	for _, ch := range results {
		if ch != nil {
			run.Chapters = append(run.Chapters, *ch)
		}
	}
	r.finish(run, ctx.Err())

	logger.Info("Benchmark run finished",
		"status", run.Status,
		"chapters", len(run.Chapters),
		"perfect_rate", run.Summary.PerfectRate,
		"avg_fidelity", run.Summary.AvgFidelity)

	// The run context may be cancelled; the final state is still persisted.
	if err := r.store.SaveRun(context.WithoutCancel(ctx), run); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// runChapter prompts the provider for one chapter and scores the answer.
// It returns nil when the chapter was interrupted by cancellation.
func (r *Runner) runChapter(ctx context.Context, scorer *Scorer, key dataset.ChapterKey, records []dataset.CanonicalVerseRecord, req Request) *models.ChapterResult {
	start := r.now()
	refs := dataset.Prepare(records, scorer.Canonical)

	response, err := r.provider.Generate(ctx, providers.Config{
		Model:       req.Model,
		Temperature: req.Temperature,
		System:      providers.DefaultSystemPrompt,
		Prompt:      providers.BuildChapterPrompt(key.Name(), key.Chapter, req.Translation),
		Book:        key.Book,
		Chapter:     key.Chapter,
	})
	if err != nil && ctx.Err() != nil {
		return nil
	}

	var ch models.ChapterResult
	if err != nil {
		r.logger.Error("Failed to generate chapter", "chapter", key.String(), "err", err)
		ch = models.ChapterResult{
			Verdict:       metrics.VerdictFail,
			Error:         err.Error(),
			Verses:        []models.VerseResult{},
			MissingVerses: verseNumbers(records),
		}
	} else {
		ch = scorer.ScoreChapter(response, refs)
	}

	ch.Book = key.Book
	ch.BookIndex = key.BookIndex
	ch.Chapter = key.Chapter
	ch.Duration = r.now().Sub(start)
	return &ch
}

// finish computes the roll-ups and the final status
func (r *Runner) finish(run *models.Run, ctxErr error) {
	run.Summary = metrics.Summarize(run.Chapters)
	allVerses := run.AllVerses()
	run.VerseSummary = metrics.Summarize(allVerses)
	run.Verdicts = metrics.VerdictCounts{}
	for _, v := range allVerses {
		run.Verdicts.Add(v.Verdict)
	}

	failed := 0
	for _, ch := range run.Chapters {
		if ch.Error != "" {
			failed++
		}
	}

	switch {
	case ctxErr != nil:
		run.Status = models.RunStatusCancelled
		run.Error = ctxErr.Error()
	case len(run.Chapters) > 0 && failed == len(run.Chapters):
		run.Status = models.RunStatusFailed
		run.Error = "every chapter failed"
	default:
		run.Status = models.RunStatusCompleted
	}

	completed := r.now()
	run.CompletedAt = &completed
}

func verseNumbers(records []dataset.CanonicalVerseRecord) []int {
	nums := make([]int, 0, len(records))
	for _, rec := range records {
		nums = append(nums, rec.Verse)
	}
	return nums
}
