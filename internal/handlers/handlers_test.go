package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/versebench/versebench/internal/benchmark"
	"github.com/versebench/versebench/internal/eval/dataset"
	"github.com/versebench/versebench/internal/eval/metrics"
	"github.com/versebench/versebench/internal/models"
	"github.com/versebench/versebench/internal/providers"
	"github.com/versebench/versebench/internal/storage"
	"github.com/versebench/versebench/internal/verses"
)

func newServer(t *testing.T, h *Handler) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	h.Routes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHandleHash(t *testing.T) {
	srv := newServer(t, New(Options{}))

	resp := do(t, "POST", srv.URL+"/api/hash", `{"text":""}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[map[string]string](t, resp)
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", got["hash"])

	resp = do(t, "GET", srv.URL+"/api/hash", "")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp = do(t, "POST", srv.URL+"/api/hash", `{not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleParse(t *testing.T) {
	srv := newServer(t, New(Options{}))

	resp := do(t, "POST", srv.URL+"/api/parse", `{"text":"Genesis 1\n1 In the beginning\n2 And the earth"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	res := decode[verses.ParseResult](t, resp)
	assert.Equal(t, "line", res.Strategy)
	require.Len(t, res.Verses, 2)
	assert.Equal(t, "In the beginning", res.Verses[0].Text)
	assert.Equal(t, []string{"Genesis 1"}, res.UnmatchedText)

	resp = do(t, "POST", srv.URL+"/api/parse", `{"text":"1 a 2 b","strategy":"inline","profile":"none"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	res = decode[verses.ParseResult](t, resp)
	assert.Equal(t, "inline", res.Strategy)
	assert.Len(t, res.Verses, 2)

	resp = do(t, "POST", srv.URL+"/api/parse", `{"text":"x","strategy":"columns"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleScore(t *testing.T) {
	srv := newServer(t, New(Options{}))

	resp := do(t, "POST", srv.URL+"/api/score", `{"candidate":"**“In the beginning”**","canonical":"\"In the <i>beginning</i>\""}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[ScoreResponse](t, resp)
	assert.Equal(t, `"In the beginning"`, got.NormalizedText)
	assert.Equal(t, `"In the beginning"`, got.CanonicalText)
	assert.True(t, got.HashMatch)
	assert.Equal(t, 100.0, got.FidelityScore)
	assert.Equal(t, metrics.VerdictPass, got.Verdict)

	// explicit steps replace the profile; a bad regex becomes a warned no-op
	body := `{"candidate":"In the end","canonical":"In the beginning","steps":[{"order":1,"type":"regexReplace","params":{"pattern":"(","replacement":""}}]}`
	resp = do(t, "POST", srv.URL+"/api/score", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got = decode[ScoreResponse](t, resp)
	assert.False(t, got.HashMatch)
	assert.Less(t, got.FidelityScore, 100.0)
	assert.Greater(t, got.Diff.Total(), 0)
	assert.NotEmpty(t, got.Warnings)

	resp = do(t, "POST", srv.URL+"/api/score", `{"candidate":"a","canonical":"a","profile":"missing"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandleProfiles(t *testing.T) {
	srv := newServer(t, New(Options{}))

	resp := do(t, "GET", srv.URL+"/api/profiles", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[struct {
		Profiles []struct {
			Name  string `json:"name"`
			Scope string `json:"scope"`
		} `json:"profiles"`
	}](t, resp)
	require.Len(t, got.Profiles, 2)
	assert.Equal(t, "canonical", got.Profiles[0].Scope)
}

func seedRun(t *testing.T, store storage.Store, id, model string, started time.Time) {
	t.Helper()
	require.NoError(t, store.SaveRun(context.Background(), &models.Run{
		ID:        id,
		Provider:  "static",
		Model:     model,
		Status:    models.RunStatusCompleted,
		StartedAt: started,
		Chapters: []models.ChapterResult{{
			Book: "Gen", Chapter: 1, HashMatch: true, FidelityScore: 100,
			Verses: []models.VerseResult{{VerseNumber: 1, HashMatch: true, FidelityScore: 100, Verdict: metrics.VerdictPass}},
		}},
		Summary:      metrics.ResultSummary{Total: 1, Matches: 1, PerfectRate: 1, AvgFidelity: 100},
		VerseSummary: metrics.ResultSummary{Total: 1, Matches: 1, PerfectRate: 1, AvgFidelity: 100},
	}))
}

func TestHandleRuns(t *testing.T) {
	store := storage.NewMemoryStore()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	seedRun(t, store, "old", "llama3", base)
	seedRun(t, store, "new", "llama3", base.Add(time.Hour))
	seedRun(t, store, "other", "gpt-4o", base.Add(time.Minute))

	srv := newServer(t, New(Options{Store: store, LatestOnly: true}))

	resp := do(t, "GET", srv.URL+"/api/runs", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]models.Run](t, resp), 2, "latest only from configuration")

	resp = do(t, "GET", srv.URL+"/api/runs?latest=false&model=llama3", "")
	runs := decode[[]models.Run](t, resp)
	require.Len(t, runs, 2)
	assert.Equal(t, "new", runs[0].ID)

	resp = do(t, "GET", srv.URL+"/api/runs/new", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "llama3", decode[models.Run](t, resp).Model)

	resp = do(t, "GET", srv.URL+"/api/runs/new/summary", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	summary := decode[RunSummary](t, resp)
	assert.Equal(t, 1.0, summary.Verses.PerfectRate)
	assert.Equal(t, 100.0, summary.FidelityStat.Median)

	resp = do(t, "DELETE", srv.URL+"/api/runs/new", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = do(t, "GET", srv.URL+"/api/runs/new", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = do(t, "DELETE", srv.URL+"/api/runs/new", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, "GET", srv.URL+"/api/runs/old/bogus", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, "POST", srv.URL+"/api/runs/old/cancel", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = do(t, "POST", srv.URL+"/api/runs", `{"chapters":["Gen 1"]}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestHandleRuns_Start(t *testing.T) {
	store := storage.NewMemoryStore()
	provider := providers.NewStatic(map[string]string{"Gen 1": "1 In the beginning God created the heaven and the earth."})
	corpus := []dataset.CanonicalVerseRecord{
		{Book: "Gen", BookIndex: 1, Chapter: 1, Verse: 1, Text: "In the beginning God created the heaven and the earth."},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := New(Options{
		Store:       store,
		Runner:      benchmark.NewRunner(provider, store),
		Corpus:      corpus,
		Provider:    "static",
		Model:       "replay",
		BaseContext: ctx,
	})
	srv := newServer(t, h)

	resp := do(t, "POST", srv.URL+"/api/runs", `{"chapters":["Genesis 1"]}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	id := decode[map[string]string](t, resp)["id"]
	require.NotEmpty(t, id)

	require.Eventually(t, func() bool {
		run, err := store.GetRun(context.Background(), id)
		return err == nil && run.Status == models.RunStatusCompleted
	}, 5*time.Second, 10*time.Millisecond)

	run, err := store.GetRun(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "replay", run.Model)
	assert.Equal(t, 1.0, run.Summary.PerfectRate)

	resp = do(t, "POST", srv.URL+"/api/runs", `{"chapters":["Gen 2"]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "chapter not in corpus")

	resp = do(t, "POST", srv.URL+"/api/runs", `{"chapters":["Nowhere 1"]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, "POST", srv.URL+"/api/runs", `{"chapters":[]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthcheck(t *testing.T) {
	srv := newServer(t, New(Options{}))
	resp := do(t, "GET", srv.URL+"/healthcheck", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
