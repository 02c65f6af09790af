package storage

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/versebench/versebench/internal/models"
)

// ErrRunNotFound is returned when a run id is unknown
var ErrRunNotFound = errors.New("run not found")

// ListOptions filters ListRuns
type ListOptions struct {
	Model string
	// LatestOnly keeps only the newest run per model
	LatestOnly bool
}

// Store persists benchmark runs
type Store interface {
	SaveRun(ctx context.Context, run *models.Run) error
	GetRun(ctx context.Context, id string) (*models.Run, error)
	ListRuns(ctx context.Context, opts ListOptions) ([]*models.Run, error)
	DeleteRun(ctx context.Context, id string) error
	Close() error
}

// MemoryStore keeps runs in a map. Runs are copied on the way in and out so
// callers never share mutable state with the store.
type MemoryStore struct {
	runs map[string]*models.Run
	mu   sync.RWMutex
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs: make(map[string]*models.Run),
	}
}

func (s *MemoryStore) GetRun(ctx context.Context, id string) (*models.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, exists := s.runs[id]
	if !exists {
		return nil, ErrRunNotFound
	}
	return cloneRun(run), nil
}

func (s *MemoryStore) SaveRun(ctx context.Context, run *models.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = cloneRun(run)
	return nil
}

func (s *MemoryStore) ListRuns(ctx context.Context, opts ListOptions) ([]*models.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Run, 0, len(s.runs))
	for _, run := range s.runs {
		if opts.Model != "" && run.Model != opts.Model {
			continue
		}
		result = append(result, cloneRun(run))
	}
	sortNewestFirst(result)
	if opts.LatestOnly {
		result = latestPerModel(result)
	}
	return result, nil
}

func (s *MemoryStore) DeleteRun(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.runs[id]; !exists {
		return ErrRunNotFound
	}
	delete(s.runs, id)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

func cloneRun(run *models.Run) *models.Run {
	c := *run
	c.Chapters = append([]models.ChapterResult(nil), run.Chapters...)
	if run.CompletedAt != nil {
		t := *run.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

func sortNewestFirst(runs []*models.Run) {
	sort.SliceStable(runs, func(i, j int) bool {
		if runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
}

// latestPerModel keeps the first run of each model from a newest-first list
func latestPerModel(runs []*models.Run) []*models.Run {
	seen := make(map[string]bool)
	out := runs[:0]
	for _, r := range runs {
		key := r.Provider + "/" + r.Model
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}
