package results

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/versebench/versebench/internal/models"
)

// SaveToJSON writes the full run, verse results included, to path
func SaveToJSON(path string, run *models.Run) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	return nil
}

// LoadFromJSON reads a run written by SaveToJSON
func LoadFromJSON(path string) (*models.Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read results: %w", err)
	}

	var run models.Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to parse results: %w", err)
	}
	return &run, nil
}
