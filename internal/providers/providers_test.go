package providers

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStatic_Generate(t *testing.T) {
	s := NewStatic(map[string]string{"Gen  1": "1 In the beginning"})

	got, err := s.Generate(context.Background(), Config{Book: "gen", Chapter: 1})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got != "1 In the beginning" {
		t.Errorf("Expected stored response, got %q", got)
	}

	if _, err := s.Generate(context.Background(), Config{Book: "Gen", Chapter: 2}); err == nil {
		t.Error("Expected error for missing chapter")
	}

	s.Set("Gen", 2, "1 Thus the heavens")
	if got, _ := s.Generate(context.Background(), Config{Book: "Gen", Chapter: 2}); got != "1 Thus the heavens" {
		t.Errorf("Expected response after Set, got %q", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Generate(ctx, Config{Book: "Gen", Chapter: 1}); err == nil {
		t.Error("Expected error for cancelled context")
	}
}

func TestLoadStatic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "responses.yaml")
	content := "Ps 117: |\n  1 O praise the LORD, all ye nations\n  2 For his merciful kindness\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadStatic(path)
	if err != nil {
		t.Fatalf("LoadStatic failed: %v", err)
	}
	got, err := s.Generate(context.Background(), Config{Book: "Ps", Chapter: 117})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.HasPrefix(got, "1 O praise") {
		t.Errorf("Unexpected response %q", got)
	}

	if _, err := LoadStatic(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestBuildChapterPrompt(t *testing.T) {
	tests := []struct {
		name        string
		translation string
		contains    string
	}{
		{"with translation", "KJV", "Recite Genesis chapter 1 from the KJV in full"},
		{"without translation", "  ", "Recite Genesis chapter 1 in full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildChapterPrompt("Genesis", 1, tt.translation)
			if !strings.Contains(got, tt.contains) {
				t.Errorf("Expected prompt to contain %q, got %q", tt.contains, got)
			}
		})
	}
}

func TestProviderFunc(t *testing.T) {
	var p Provider = ProviderFunc(func(ctx context.Context, c Config) (string, error) {
		return c.Prompt, nil
	})
	got, _ := p.Generate(context.Background(), Config{Prompt: "echo"})
	if got != "echo" {
		t.Errorf("Expected echo, got %q", got)
	}
}
