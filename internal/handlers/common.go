package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/versebench/versebench/internal/benchmark"
	"github.com/versebench/versebench/internal/eval/dataset"
	"github.com/versebench/versebench/internal/eval/metrics"
	"github.com/versebench/versebench/internal/models"
	"github.com/versebench/versebench/internal/storage"
	"github.com/versebench/versebench/internal/transform"
)

// maxBodyBytes bounds JSON request bodies; a chapter response is well below it
const maxBodyBytes = 4 << 20

// Options wires the handler to the rest of the service
type Options struct {
	Store      storage.Store
	Profiles   *transform.Registry
	Thresholds metrics.Thresholds
	LatestOnly bool

	// Runner and Corpus enable POST /api/runs. BaseContext bounds runs
	// started over HTTP; it is usually the server's lifetime.
	Runner      *benchmark.Runner
	Corpus      []dataset.CanonicalVerseRecord
	Provider    string
	Model       string
	BaseContext context.Context
}

type Handler struct {
	store      storage.Store
	profiles   *transform.Registry
	thresholds metrics.Thresholds
	latestOnly bool

	runner   *benchmark.Runner
	corpus   []dataset.CanonicalVerseRecord
	provider string
	model    string
	baseCtx  context.Context
}

func New(opts Options) *Handler {
	h := &Handler{
		store:      opts.Store,
		profiles:   opts.Profiles,
		thresholds: opts.Thresholds,
		latestOnly: opts.LatestOnly,
		runner:     opts.Runner,
		corpus:     opts.Corpus,
		provider:   opts.Provider,
		model:      opts.Model,
		baseCtx:    opts.BaseContext,
	}
	if h.store == nil {
		h.store = storage.NewMemoryStore()
	}
	if h.profiles == nil {
		h.profiles = transform.NewRegistry(nil)
	}
	if h.thresholds == (metrics.Thresholds{}) {
		h.thresholds = metrics.DefaultThresholds
	}
	if h.baseCtx == nil {
		h.baseCtx = context.Background()
	}
	return h
}

// Routes registers every endpoint on mux
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/api/score", h.HandleScore)
	mux.HandleFunc("/api/parse", h.HandleParse)
	mux.HandleFunc("/api/hash", h.HandleHash)
	mux.HandleFunc("/api/profiles", h.HandleProfiles)
	mux.HandleFunc("/api/runs", h.HandleRuns)
	mux.HandleFunc("/api/runs/", h.HandleRunDetail)
	mux.HandleFunc("/healthcheck", h.HandleHealthcheck)
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	h.writeJSONStatus(w, http.StatusOK, data)
}

func (h *Handler) writeJSONStatus(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	if code >= http.StatusInternalServerError {
		slog.Error(message)
	} else {
		slog.Debug(message, "code", code)
	}
	http.Error(w, message, code)
}

// decodeJSON reads a bounded JSON body into v, writing a 400 on failure
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// Run helpers
func (h *Handler) getRunOrError(w http.ResponseWriter, r *http.Request, runID string) (*models.Run, bool) {
	run, err := h.store.GetRun(r.Context(), runID)
	if errors.Is(err, storage.ErrRunNotFound) {
		h.writeError(w, "Run not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		h.writeError(w, "Failed to load run: "+err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return run, true
}

func (h *Handler) HandleHealthcheck(w http.ResponseWriter, r *http.Request) {
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Unable to write healthcheck", "err", err)
	}
}
