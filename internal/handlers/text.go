package handlers

import (
	"errors"
	"net/http"

	"github.com/versebench/versebench/internal/benchmark"
	"github.com/versebench/versebench/internal/transform"
	"github.com/versebench/versebench/internal/utils"
	"github.com/versebench/versebench/internal/verses"
)

// ScoreRequest rescores a stored candidate against canonical text. Steps,
// when present, take precedence over the named model-output profile.
type ScoreRequest struct {
	Candidate        string           `json:"candidate"`
	Canonical        string           `json:"canonical"`
	Profile          string           `json:"profile,omitempty"`
	CanonicalProfile string           `json:"canonicalProfile,omitempty"`
	Steps            []transform.Step `json:"steps,omitempty"`
}

// ScoreResponse is the body returned by POST /api/score
type ScoreResponse = benchmark.TextScore

func (h *Handler) HandleScore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ScoreRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	canonicalProfile, err := h.profiles.Get(transform.ScopeCanonical, req.CanonicalProfile)
	if err != nil {
		h.writeProfileError(w, err)
		return
	}

	steps := req.Steps
	if steps == nil {
		profile, err := h.profiles.Get(transform.ScopeModelOutput, req.Profile)
		if err != nil {
			h.writeProfileError(w, err)
			return
		}
		steps = profile.Steps
	}

	h.writeJSON(w, benchmark.ScoreText(req.Candidate, req.Canonical, canonicalProfile, steps, h.thresholds))
}

// ParseRequest is the body of POST /api/parse
type ParseRequest struct {
	Text     string `json:"text"`
	Strategy string `json:"strategy,omitempty"`
	// Profile names a model-output profile applied before parsing; "none" skips it.
	Profile string `json:"profile,omitempty"`
}

func (h *Handler) HandleParse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ParseRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	strategy, err := verses.StrategyByName(req.Strategy)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	text := req.Text
	if req.Profile != "none" {
		profile, err := h.profiles.Get(transform.ScopeModelOutput, req.Profile)
		if err != nil {
			h.writeProfileError(w, err)
			return
		}
		text = profile.Pipeline().Apply(text)
	}

	h.writeJSON(w, strategy.Parse(text))
}

// HashRequest is the body of POST /api/hash
type HashRequest struct {
	Text string `json:"text"`
}

func (h *Handler) HandleHash(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req HashRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	h.writeJSON(w, map[string]string{"hash": utils.SHA256Hex(req.Text)})
}

func (h *Handler) HandleProfiles(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		set := h.profiles.Set()
		profiles := set.All()

		var warnings []string
		for _, p := range profiles {
			for _, warning := range p.Warnings() {
				warnings = append(warnings, p.Name+": "+warning)
			}
		}
		h.writeJSON(w, map[string]interface{}{
			"profiles": profiles,
			"warnings": warnings,
		})
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) writeProfileError(w http.ResponseWriter, err error) {
	if errors.Is(err, transform.ErrProfileNotFound) {
		h.writeError(w, err.Error(), http.StatusNotFound)
		return
	}
	h.writeError(w, err.Error(), http.StatusBadRequest)
}
