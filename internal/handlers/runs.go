package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/versebench/versebench/internal/benchmark"
	"github.com/versebench/versebench/internal/eval/dataset"
	"github.com/versebench/versebench/internal/eval/metrics"
	"github.com/versebench/versebench/internal/models"
	"github.com/versebench/versebench/internal/storage"
	"github.com/versebench/versebench/internal/transform"
)

// StartRunRequest is the body of POST /api/runs
type StartRunRequest struct {
	Chapters         []string `json:"chapters"`
	Model            string   `json:"model,omitempty"`
	Translation      string   `json:"translation,omitempty"`
	Temperature      float64  `json:"temperature,omitempty"`
	CanonicalProfile string   `json:"canonicalProfile,omitempty"`
	OutputProfile    string   `json:"outputProfile,omitempty"`
	Concurrency      int      `json:"concurrency,omitempty"`
}

// RunSummary is the roll-up view of a run
type RunSummary struct {
	ID           string                `json:"id"`
	Provider     string                `json:"provider"`
	Model        string                `json:"model"`
	Status       models.RunStatus      `json:"status"`
	Chapters     metrics.ResultSummary `json:"chapters"`
	Verses       metrics.ResultSummary `json:"verses"`
	Verdicts     metrics.VerdictCounts `json:"verdicts"`
	FidelityStat metrics.FidelityStats `json:"fidelityStats"`
}

func (h *Handler) HandleRuns(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		opts := storage.ListOptions{
			Model:      r.URL.Query().Get("model"),
			LatestOnly: h.latestOnly,
		}
		if v := r.URL.Query().Get("latest"); v != "" {
			opts.LatestOnly = v == "true" || v == "1"
		}

		runs, err := h.store.ListRuns(r.Context(), opts)
		if err != nil {
			h.writeError(w, "Failed to list runs: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if runs == nil {
			runs = []*models.Run{}
		}
		h.writeJSON(w, runs)
	case "POST":
		h.startRun(w, r)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) startRun(w http.ResponseWriter, r *http.Request) {
	if h.runner == nil || len(h.corpus) == 0 {
		h.writeError(w, "Runs are not enabled on this server", http.StatusServiceUnavailable)
		return
	}

	var req StartRunRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	keys := make([]dataset.ChapterKey, 0, len(req.Chapters))
	for _, c := range req.Chapters {
		k, err := dataset.ParseChapterKey(c)
		if err != nil {
			h.writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		h.writeError(w, "At least one chapter is required", http.StatusBadRequest)
		return
	}

	model := req.Model
	if model == "" {
		model = h.model
	}

	runID, _, err := h.runner.Start(h.baseCtx, benchmark.Request{
		Provider:         h.provider,
		Model:            model,
		Translation:      req.Translation,
		Temperature:      req.Temperature,
		Records:          h.corpus,
		Chapters:         keys,
		CanonicalProfile: req.CanonicalProfile,
		OutputProfile:    req.OutputProfile,
		Concurrency:      req.Concurrency,
	})
	if errors.Is(err, transform.ErrProfileNotFound) {
		h.writeProfileError(w, err)
		return
	}
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.writeJSONStatus(w, http.StatusAccepted, map[string]string{"id": runID, "status": string(models.RunStatusRunning)})
}

func (h *Handler) HandleRunDetail(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/runs/"), "/")
	runID, action, _ := strings.Cut(path, "/")
	if runID == "" {
		h.writeError(w, "Run id required", http.StatusBadRequest)
		return
	}

	switch action {
	case "":
		h.handleRun(w, r, runID)
	case "summary":
		h.handleRunSummary(w, r, runID)
	case "cancel":
		h.handleRunCancel(w, r, runID)
	default:
		h.writeError(w, "Not found", http.StatusNotFound)
	}
}

func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request, runID string) {
	switch r.Method {
	case "GET":
		run, ok := h.getRunOrError(w, r, runID)
		if !ok {
			return
		}
		h.writeJSON(w, run)
	case "DELETE":
		if h.runner != nil {
			h.runner.Cancel(runID)
		}
		err := h.store.DeleteRun(r.Context(), runID)
		if errors.Is(err, storage.ErrRunNotFound) {
			h.writeError(w, "Run not found", http.StatusNotFound)
			return
		}
		if err != nil {
			h.writeError(w, "Failed to delete run: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleRunSummary(w http.ResponseWriter, r *http.Request, runID string) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	run, ok := h.getRunOrError(w, r, runID)
	if !ok {
		return
	}

	h.writeJSON(w, RunSummary{
		ID:           run.ID,
		Provider:     run.Provider,
		Model:        run.Model,
		Status:       run.Status,
		Chapters:     run.Summary,
		Verses:       run.VerseSummary,
		Verdicts:     run.Verdicts,
		FidelityStat: metrics.CalculateStats(run.AllVerses()),
	})
}

func (h *Handler) handleRunCancel(w http.ResponseWriter, r *http.Request, runID string) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.runner == nil || !h.runner.Cancel(runID) {
		h.writeError(w, "Run is not active", http.StatusConflict)
		return
	}
	h.writeJSONStatus(w, http.StatusAccepted, map[string]string{"id": runID, "status": "cancelling"})
}
