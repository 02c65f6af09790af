package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ollama/ollama/api"
	"github.com/versebench/versebench/internal/providers"
)

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Expected /api/generate, got %s", r.URL.Path)
		}

		var req api.GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.Model != "llama3" || req.Prompt != "Recite" || req.System != "sys" {
			t.Errorf("Unexpected request %+v", req)
		}
		if req.Stream == nil || *req.Stream {
			t.Error("Expected streaming disabled")
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.GenerateResponse{Model: "llama3", Response: "1 In the beginning", Done: true})
	}))
	defer srv.Close()

	o, err := New(srv.URL)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	got, err := o.Generate(context.Background(), providers.Config{Model: "llama3", System: "sys", Prompt: "Recite"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got != "1 In the beginning" {
		t.Errorf("Expected response text, got %q", got)
	}
}

func TestGenerate_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model not found"}`))
	}))
	defer srv.Close()

	o, err := New(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := o.Generate(context.Background(), providers.Config{Model: "missing"}); err == nil {
		t.Error("Expected error for missing model")
	}
}

func TestNew_HostWithoutScheme(t *testing.T) {
	if _, err := New("localhost:11434"); err != nil {
		t.Errorf("Expected host without scheme to be accepted, got %v", err)
	}
}
