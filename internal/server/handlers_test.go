package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/corpus"
	"github.com/hyperjump/kotae/internal/dataset"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/runstore"
)

type mockPipeline struct {
	report       *models.MetricsReport
	err          error
	gotOverrides EvalOverrides
}

func (m *mockPipeline) Evaluate(_ context.Context, overrides EvalOverrides) (*models.MetricsReport, error) {
	m.gotOverrides = overrides
	if m.err != nil {
		return nil, m.err
	}
	return m.report, nil
}

type mockIndexCounter struct {
	n   uint64
	err error
}

func (m *mockIndexCounter) DocCount() (uint64, error) { return m.n, m.err }

func apiReport(runID string) *models.MetricsReport {
	return &models.MetricsReport{
		RunID:       runID,
		CreatedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Engine:      "bleve",
		Reader:      "lexical",
		TopK:        5,
		Questions:   10,
		Scored:      10,
		LongAnswer:  models.TaskMetrics{Precision: 0.5, Recall: 0.5, F1: 0.5, Correct: 5, Predicted: 10, Gold: 10},
		ShortAnswer: models.TaskMetrics{Precision: 0.2, Recall: 0.2, F1: 0.2, Correct: 2, Predicted: 10, Gold: 10},
		ElapsedMS:   42,
	}
}

func newTestServer(t *testing.T, pipeline Pipeline) (*Server, *runstore.Store) {
	t.Helper()
	dir := t.TempDir()

	store := corpus.NewStore([]*models.Document{
		{ID: "doc:1", Title: "One", Tokens: []string{"a", "b"}},
		{ID: "doc:2", Title: "Two", Tokens: []string{"c", "d"}},
	})

	goldPath := filepath.Join(dir, "gold.jsonl")
	questions := []models.Question{{ID: "q1", Text: "what is a"}}
	annotations := map[string][]models.Annotation{
		"q1": {{QuestionID: "q1", NoAnswer: true}},
	}
	if err := dataset.WriteGold(goldPath, questions, annotations); err != nil {
		t.Fatalf("WriteGold: %v", err)
	}
	gold, err := dataset.OpenGoldStore(goldPath, zap.NewNop())
	if err != nil {
		t.Fatalf("OpenGoldStore: %v", err)
	}

	runs, err := runstore.Open(filepath.Join(dir, "runs.db"))
	if err != nil {
		t.Fatalf("runstore.Open: %v", err)
	}
	t.Cleanup(func() { _ = runs.Close() })

	cfg := &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 8080},
		Storage: config.StorageConfig{
			DatabasePath:   filepath.Join(dir, "runs.db"),
			BleveIndexPath: filepath.Join(dir, "bleve"),
		},
		Retrieval: config.RetrievalConfig{Engine: "bleve", TopK: 5},
		Extractor: config.ExtractorConfig{Reader: "lexical"},
	}

	srv := NewServer(pipeline, store, gold, &mockIndexCounter{n: 2}, runs, cfg, zap.NewNop())
	return srv, runs
}

func TestHandleEvaluate(t *testing.T) {
	pipeline := &mockPipeline{report: apiReport("run-1")}
	srv, runs := newTestServer(t, pipeline)

	body, _ := json.Marshal(EvalOverrides{Name: "api", TopK: 3})
	r := httptest.NewRequest(http.MethodPost, "/api/v1/evaluate", bytes.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.handleEvaluate(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body: %s", w.Code, w.Body.String())
	}
	var got models.MetricsReport
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.RunID != "run-1" {
		t.Errorf("run_id: got %s", got.RunID)
	}
	if pipeline.gotOverrides.Name != "api" || pipeline.gotOverrides.TopK != 3 {
		t.Errorf("overrides passed to pipeline: %+v", pipeline.gotOverrides)
	}

	// Successful runs are persisted with the config snapshot.
	n, err := runs.Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("persisted runs: got %d, want 1", n)
	}
	saved, err := runs.Get(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("Get saved run: %v", err)
	}
	if saved.Config == "" {
		t.Error("saved run has no config snapshot")
	}
}

func TestHandleEvaluate_EmptyBody(t *testing.T) {
	pipeline := &mockPipeline{report: apiReport("run-1")}
	srv, _ := newTestServer(t, pipeline)

	r := httptest.NewRequest(http.MethodPost, "/api/v1/evaluate", nil)
	w := httptest.NewRecorder()
	srv.handleEvaluate(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("status: got %d, body: %s", w.Code, w.Body.String())
	}
	if pipeline.gotOverrides != (EvalOverrides{}) {
		t.Errorf("empty body produced overrides: %+v", pipeline.gotOverrides)
	}
}

func TestHandleEvaluate_InvalidBody(t *testing.T) {
	srv, _ := newTestServer(t, &mockPipeline{report: apiReport("run-1")})

	r := httptest.NewRequest(http.MethodPost, "/api/v1/evaluate", bytes.NewReader([]byte("{")))
	w := httptest.NewRecorder()
	srv.handleEvaluate(w, r)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", w.Code)
	}
}

func TestHandleEvaluate_PipelineError(t *testing.T) {
	srv, runs := newTestServer(t, &mockPipeline{err: errors.New("gold dataset empty")})

	r := httptest.NewRequest(http.MethodPost, "/api/v1/evaluate", nil)
	w := httptest.NewRecorder()
	srv.handleEvaluate(w, r)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want 500", w.Code)
	}
	if n, _ := runs.Count(context.Background()); n != 0 {
		t.Errorf("failed run was persisted: %d runs", n)
	}
}

func TestHandleListRuns(t *testing.T) {
	srv, runs := newTestServer(t, &mockPipeline{})
	ctx := context.Background()

	for i, id := range []string{"run-a", "run-b"} {
		report := apiReport(id)
		report.CreatedAt = report.CreatedAt.Add(time.Duration(i) * time.Hour)
		if err := runs.Save(ctx, report, ""); err != nil {
			t.Fatal(err)
		}
	}

	r := httptest.NewRequest(http.MethodGet, "/api/v1/runs?limit=1", nil)
	w := httptest.NewRecorder()
	srv.handleListRuns(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body: %s", w.Code, w.Body.String())
	}
	var out struct {
		Runs []runstore.RunSummary `json:"runs"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out.Runs) != 1 || out.Runs[0].RunID != "run-b" {
		t.Errorf("runs: got %+v, want newest first with limit 1", out.Runs)
	}
}

func TestHandleGetRun(t *testing.T) {
	srv, runs := newTestServer(t, &mockPipeline{})
	if err := runs.Save(context.Background(), apiReport("run-1"), "engine: bleve\n"); err != nil {
		t.Fatal(err)
	}

	r := httptest.NewRequest(http.MethodGet, "/api/v1/runs/run-1", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "run-1")
	r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()
	srv.handleGetRun(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body: %s", w.Code, w.Body.String())
	}
	var out runstore.Run
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Report == nil || out.Report.RunID != "run-1" {
		t.Errorf("run: got %+v", out)
	}
	if out.Config != "engine: bleve\n" {
		t.Errorf("config: got %q", out.Config)
	}
}

func TestHandleGetRun_NotFound(t *testing.T) {
	srv, _ := newTestServer(t, &mockPipeline{})

	r := httptest.NewRequest(http.MethodGet, "/api/v1/runs/nope", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "nope")
	r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()
	srv.handleGetRun(w, r)

	if w.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", w.Code)
	}
}

func TestHandleStatus(t *testing.T) {
	srv, _ := newTestServer(t, &mockPipeline{})

	r := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	w := httptest.NewRecorder()
	srv.handleStatus(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body: %s", w.Code, w.Body.String())
	}
	var out struct {
		CorpusDocuments int    `json:"corpus_documents"`
		IndexDocuments  uint64 `json:"index_documents"`
		GoldQuestions   int    `json:"gold_questions"`
		Runs            *int64 `json:"runs"`
		Engine          string `json:"engine"`
		Reader          string `json:"reader"`
		DiskUsageBytes  *int64 `json:"disk_usage_bytes"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.CorpusDocuments != 2 {
		t.Errorf("corpus_documents: got %d, want 2", out.CorpusDocuments)
	}
	if out.IndexDocuments != 2 {
		t.Errorf("index_documents: got %d, want 2", out.IndexDocuments)
	}
	if out.GoldQuestions != 1 {
		t.Errorf("gold_questions: got %d, want 1", out.GoldQuestions)
	}
	if out.Runs == nil || *out.Runs != 0 {
		t.Errorf("runs: got %v, want 0", out.Runs)
	}
	if out.Engine != "bleve" || out.Reader != "lexical" {
		t.Errorf("engine/reader: got %s/%s", out.Engine, out.Reader)
	}
	if out.DiskUsageBytes == nil || *out.DiskUsageBytes < 1 {
		t.Errorf("disk_usage_bytes: got %v, want >= 1", out.DiskUsageBytes)
	}
}

func TestHandleHealth(t *testing.T) {
	srv, _ := newTestServer(t, &mockPipeline{})

	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.handleHealth(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("status: got %d", w.Code)
	}
	var out map[string]string
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out["status"] != "ok" {
		t.Errorf("body: got %v", out)
	}
}
