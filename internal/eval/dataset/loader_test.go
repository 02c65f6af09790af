package dataset

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/versebench/versebench/internal/transform"
	"github.com/versebench/versebench/internal/utils"
)

const samplePath = "testdata/kjv_sample.jsonl"

func TestNewLoader(t *testing.T) {
	path := "./test.parquet"
	loader := NewLoader(path)

	if loader.datasetPath != path {
		t.Errorf("Expected path %s, got %s", path, loader.datasetPath)
	}
}

func TestLoad_JSONL(t *testing.T) {
	records, err := NewLoader(samplePath).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(records) != 7 {
		t.Fatalf("Expected 7 records, got %d", len(records))
	}

	// Psalms rows omit book_index and get it resolved from the name
	last := records[6]
	if last.Book != "Ps" || last.BookIndex != 19 {
		t.Errorf("Expected Ps/19, got %s/%d", last.Book, last.BookIndex)
	}
	if last.VerseID() != 19117002 {
		t.Errorf("Expected verse id 19117002, got %d", last.VerseID())
	}
}

func TestLoadSample(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		expected int
	}{
		{"limit below size", 3, 3},
		{"limit above size", 100, 7},
		{"zero", 0, 0},
		{"negative loads all", -1, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := NewLoader(samplePath).LoadSample(tt.limit)
			if err != nil {
				t.Fatalf("LoadSample failed: %v", err)
			}
			if len(records) != tt.expected {
				t.Errorf("Expected %d records, got %d", tt.expected, len(records))
			}
		})
	}
}

func TestLoadChapter(t *testing.T) {
	loader := NewLoader(samplePath)

	records, err := loader.LoadChapter("Genesis", 1)
	if err != nil {
		t.Fatalf("LoadChapter failed: %v", err)
	}
	if len(records) != 5 {
		t.Errorf("Expected 5 verses, got %d", len(records))
	}

	if _, err := loader.LoadChapter("Gen", 2); err == nil {
		t.Error("Expected error for missing chapter")
	}
	if _, err := loader.LoadChapter("Nowhere", 1); err == nil {
		t.Error("Expected error for unknown book")
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	unsupported := filepath.Join(dir, "corpus.csv")
	if err := os.WriteFile(unsupported, []byte("a,b"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewLoader(unsupported).Load(); err == nil {
		t.Error("Expected error for unsupported format")
	}

	malformed := filepath.Join(dir, "bad.jsonl")
	if err := os.WriteFile(malformed, []byte("{not json}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewLoader(malformed).Load(); err == nil {
		t.Error("Expected error for malformed JSON")
	}

	unknownBook := filepath.Join(dir, "book.jsonl")
	if err := os.WriteFile(unknownBook, []byte(`{"book":"Tobit","chapter":1,"verse":1,"text":"x"}`+"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewLoader(unknownBook).Load(); err == nil {
		t.Error("Expected error for unknown book")
	}

	if _, err := NewLoader(filepath.Join(dir, "missing.jsonl")).Load(); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestParquetRoundTrip(t *testing.T) {
	records, err := NewLoader(samplePath).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "kjv.parquet")
	if err := WriteParquet(path, records); err != nil {
		t.Fatalf("WriteParquet failed: %v", err)
	}

	loaded, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Load parquet failed: %v", err)
	}
	if len(loaded) != len(records) {
		t.Fatalf("Expected %d records, got %d", len(records), len(loaded))
	}
	for i := range records {
		if loaded[i] != records[i] {
			t.Errorf("Record %d mismatch: expected %+v, got %+v", i, records[i], loaded[i])
		}
	}

	sample, err := NewLoader(path).LoadSample(2)
	if err != nil {
		t.Fatalf("LoadSample parquet failed: %v", err)
	}
	if len(sample) != 2 {
		t.Errorf("Expected 2 records, got %d", len(sample))
	}
}

func TestChaptersAndPrepare(t *testing.T) {
	records, err := NewLoader(samplePath).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	keys := Chapters(records)
	if len(keys) != 2 {
		t.Fatalf("Expected 2 chapters, got %d", len(keys))
	}
	if keys[0].String() != "Gen 1" || keys[1].String() != "Ps 117" {
		t.Errorf("Unexpected chapter order: %v", keys)
	}
	if keys[1].Name() != "Psalms" {
		t.Errorf("Expected Psalms, got %s", keys[1].Name())
	}

	groups := GroupByChapter(records)
	refs := Prepare(groups[keys[0]], transform.DefaultCanonicalProfile().Pipeline())
	if len(refs) != 5 {
		t.Fatalf("Expected 5 refs, got %d", len(refs))
	}

	v2 := refs[1]
	if v2.VerseID != 1001002 {
		t.Errorf("Expected verse id 1001002, got %d", v2.VerseID)
	}
	if strings.Contains(v2.TextProcessed, "<i>") {
		t.Errorf("Expected markup stripped, got %q", v2.TextProcessed)
	}
	if v2.HashProcessed != utils.SHA256Hex(v2.TextProcessed) {
		t.Error("Expected hash of processed text")
	}

	text := ChapterText(refs)
	if !strings.HasPrefix(text, "In the beginning God created the heaven and the earth. And the earth") {
		t.Errorf("Unexpected chapter text: %q", text)
	}
}

func TestDownloader(t *testing.T) {
	body, err := os.ReadFile(samplePath)
	if err != nil {
		t.Fatal(err)
	}

	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	cfg := DownloadConfig{CacheDir: t.TempDir(), Token: "secret"}
	loader, err := Open(context.Background(), srv.URL+"/corpora/kjv.jsonl", cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if filepath.Ext(loader.Path()) != ".jsonl" {
		t.Errorf("Expected cached file to keep extension, got %s", loader.Path())
	}

	records, err := loader.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(records) != 7 {
		t.Errorf("Expected 7 records, got %d", len(records))
	}

	// second open is served from cache
	if _, err := Open(context.Background(), srv.URL+"/corpora/kjv.jsonl", cfg); err != nil {
		t.Fatalf("Open from cache failed: %v", err)
	}
	if hits != 1 {
		t.Errorf("Expected 1 request, got %d", hits)
	}

	cfg.Token = ""
	cfg.ForceDownload = true
	if _, err := Open(context.Background(), srv.URL+"/corpora/kjv.jsonl", cfg); err == nil {
		t.Error("Expected error for unauthorized download")
	}

	local, err := Open(context.Background(), samplePath, cfg)
	if err != nil || local.Path() != samplePath {
		t.Errorf("Expected local path passthrough, got %v %v", local, err)
	}
}

func TestParseChapterKey(t *testing.T) {
	tests := []struct {
		input    string
		expected ChapterKey
		wantErr  bool
	}{
		{"Gen 1", ChapterKey{Book: "Gen", BookIndex: 1, Chapter: 1}, false},
		{"  Psalms 117 ", ChapterKey{Book: "Ps", BookIndex: 19, Chapter: 117}, false},
		{"1 Kings 3", ChapterKey{Book: "1Kgs", BookIndex: 11, Chapter: 3}, false},
		{"Gen", ChapterKey{}, true},
		{"Gen x", ChapterKey{}, true},
		{"Gen 0", ChapterKey{}, true},
		{"Gen 51", ChapterKey{}, true},
		{"Tobit 1", ChapterKey{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseChapterKey(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseChapterKey failed: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %+v, got %+v", tt.expected, got)
			}
		})
	}
}
