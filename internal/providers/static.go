package providers

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Static replays fixed responses keyed by chapter ("Gen 1"). It lets a run be
// repeated offline or under a different profile without calling a model.
type Static struct {
	mu        sync.RWMutex
	responses map[string]string
}

// NewStatic returns a Static provider over responses
func NewStatic(responses map[string]string) *Static {
	s := &Static{responses: make(map[string]string, len(responses))}
	for k, v := range responses {
		s.responses[normalizeKey(k)] = v
	}
	return s
}

// LoadStatic reads a YAML mapping of chapter key to response text
func LoadStatic(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read responses file: %w", err)
	}

	var responses map[string]string
	if err := yaml.Unmarshal(data, &responses); err != nil {
		return nil, fmt.Errorf("failed to parse responses file: %w", err)
	}
	return NewStatic(responses), nil
}

// ChapterKey is the lookup key used by Static
func ChapterKey(book string, chapter int) string {
	return fmt.Sprintf("%s %d", book, chapter)
}

// Set stores the response for a chapter
func (s *Static) Set(book string, chapter int, response string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[normalizeKey(ChapterKey(book, chapter))] = response
}

// Generate returns the stored response for the configured chapter
func (s *Static) Generate(ctx context.Context, config Config) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	resp, ok := s.responses[normalizeKey(ChapterKey(config.Book, config.Chapter))]
	if !ok {
		return "", fmt.Errorf("no stored response for %s", ChapterKey(config.Book, config.Chapter))
	}
	return resp, nil
}

func normalizeKey(k string) string {
	return strings.ToLower(strings.Join(strings.Fields(k), " "))
}
