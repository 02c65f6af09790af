package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"VERSEBENCH_PROVIDER", "VERSEBENCH_MODEL", "OLLAMA_MODEL", "VERSEBENCH_PASS_THRESHOLD", "VERSEBENCH_WARN_THRESHOLD", "VERSEBENCH_LATEST_ONLY", "VERSEBENCH_PORT", "VERSEBENCH_LOG_LEVEL"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	if cfg.Provider != "ollama" {
		t.Errorf("Expected provider ollama, got %s", cfg.Provider)
	}
	if cfg.Model != "llama3.1:8b" {
		t.Errorf("Expected default ollama model, got %s", cfg.Model)
	}
	if cfg.Thresholds.Pass != 95 || cfg.Thresholds.Warn != 80 {
		t.Errorf("Expected default thresholds, got %+v", cfg.Thresholds)
	}
	if cfg.LatestOnly {
		t.Error("Expected LatestOnly to default to false")
	}
	if cfg.Port != "8888" {
		t.Errorf("Expected port 8888, got %s", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("Expected info level, got %v", cfg.LogLevel)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("VERSEBENCH_PROVIDER", "openai")
	t.Setenv("VERSEBENCH_MODEL", "")
	t.Setenv("OPENAI_MODEL", "gpt-4o-mini")
	t.Setenv("VERSEBENCH_PASS_THRESHOLD", "90")
	t.Setenv("VERSEBENCH_WARN_THRESHOLD", "not-a-number")
	t.Setenv("VERSEBENCH_LATEST_ONLY", "true")
	t.Setenv("VERSEBENCH_LOG_LEVEL", "debug")

	cfg := Load()
	if cfg.Model != "gpt-4o-mini" {
		t.Errorf("Expected gpt-4o-mini, got %s", cfg.Model)
	}
	if cfg.Thresholds.Pass != 90 {
		t.Errorf("Expected pass threshold 90, got %v", cfg.Thresholds.Pass)
	}
	if cfg.Thresholds.Warn != 80 {
		t.Errorf("Expected invalid warn threshold to fall back to 80, got %v", cfg.Thresholds.Warn)
	}
	if !cfg.LatestOnly {
		t.Error("Expected LatestOnly true")
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("Expected debug level, got %v", cfg.LogLevel)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"Warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLogLevel(tt.input); got != tt.expected {
			t.Errorf("parseLogLevel(%q): expected %v, got %v", tt.input, tt.expected, got)
		}
	}
}

func TestSetupLoggerWithWriters(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelInfo)

	logger.Debug("Hidden")
	logger.Info("Run completed", "run_id", "abc")

	if !strings.Contains(stderr.String(), "Run completed") || strings.Contains(stderr.String(), "Hidden") {
		t.Errorf("Unexpected stderr output: %q", stderr.String())
	}

	var entry map[string]any
	if err := json.Unmarshal(file.Bytes(), &entry); err != nil {
		t.Fatalf("Expected one JSON line in file output: %v", err)
	}
	if entry["run_id"] != "abc" {
		t.Errorf("Expected run_id attr, got %v", entry)
	}
}

func TestSetupLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "versebench.log")
	logger, cleanup := SetupLogger(path, slog.LevelInfo)
	logger.Info("Written to file")
	if err := cleanup(); err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Written to file") {
		t.Errorf("Expected log line in file, got %q", data)
	}

	// unwritable path falls back to stderr only
	_, cleanup = SetupLogger(filepath.Join(t.TempDir(), "missing", "dir", "x.log"), slog.LevelInfo)
	if err := cleanup(); err != nil {
		t.Errorf("Expected no-op cleanup, got %v", err)
	}
}
