package transform

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Registry holds the active profile set and allows it to be swapped while
// benchmarks and handlers read from it.
type Registry struct {
	mu  sync.RWMutex
	set *ProfileSet
}

// NewRegistry creates a registry. A nil set falls back to the built-in profiles.
func NewRegistry(set *ProfileSet) *Registry {
	if set == nil {
		set = DefaultProfileSet()
	}
	return &Registry{set: set}
}

// Set returns the current profile set.
func (r *Registry) Set() *ProfileSet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.set
}

// Replace swaps in a new profile set.
func (r *Registry) Replace(set *ProfileSet) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.set = set
}

// Get resolves a profile from the current set.
func (r *Registry) Get(scope Scope, name string) (*Profile, error) {
	return r.Set().Get(scope, name)
}

const defaultDebounce = 250 * time.Millisecond

// Watcher reloads a profile file into a Registry when it changes on disk.
// A file that fails to parse is logged and the previous set stays active.
type Watcher struct {
	path     string
	registry *Registry
	logger   *slog.Logger
	debounce time.Duration
	watcher  *fsnotify.Watcher
}

// NewWatcher watches the directory containing path, since editors often
// replace files rather than write them in place.
func NewWatcher(path string, registry *Registry, logger *slog.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve profile path: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		path:     abs,
		registry: registry,
		logger:   logger,
		debounce: defaultDebounce,
		watcher:  fw,
	}, nil
}

// Run processes file events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Profile watcher error", "error", err)
		case <-fire:
			fire = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	set, err := LoadProfiles(w.path)
	if err != nil {
		w.logger.Warn("Keeping previous profiles", "path", w.path, "error", err)
		return
	}
	w.registry.Replace(set)
	w.logger.Info("Reloaded transform profiles", "path", w.path, "count", len(set.All()))
	for _, p := range set.All() {
		for _, warning := range p.Warnings() {
			w.logger.Warn("Profile step disabled", "profile", p.Name, "scope", p.Scope, "warning", warning)
		}
	}
}
