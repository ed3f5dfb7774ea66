package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/runstore"
)

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var overrides EvalOverrides
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&overrides); err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	s.logger.Info("evaluate request",
		zap.String("name", overrides.Name),
		zap.Int("top_k", overrides.TopK),
		zap.Int("concurrency", overrides.Concurrency),
		zap.Int("max_questions", overrides.MaxQuestions))

	report, err := s.pipeline.Evaluate(r.Context(), overrides)
	if err != nil {
		s.logger.Error("evaluation failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Persist with a fresh context: the run is done even if the client has
	// gone away, and a partial report is still worth keeping.
	if s.runs != nil {
		saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.runs.Save(saveCtx, report, s.configYAML); err != nil {
			s.logger.Error("failed to persist run", zap.String("run_id", report.RunID), zap.Error(err))
		}
	}

	s.respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		s.respondError(w, http.StatusNotImplemented, "run store not configured")
		return
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	summaries, err := s.runs.List(r.Context(), offset, limit)
	if err != nil {
		s.logger.Error("list runs failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"runs": summaries})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		s.respondError(w, http.StatusNotImplemented, "run store not configured")
		return
	}
	id := chi.URLParam(r, "id")
	run, err := s.runs.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, runstore.ErrRunNotFound) {
			s.respondError(w, http.StatusNotFound, "run not found")
			return
		}
		s.logger.Error("get run failed", zap.String("run_id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, run)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"corpus_documents": s.corpus.Len(),
		"gold_questions":   s.gold.Len(),
		"engine":           s.config.Retrieval.Engine,
		"reader":           s.config.Extractor.Reader,
		"top_k":            s.config.Retrieval.TopK,
	}
	if s.index != nil {
		if n, err := s.index.DocCount(); err == nil {
			resp["index_documents"] = n
		} else {
			s.logger.Warn("status: index count failed", zap.Error(err))
		}
	}
	if s.runs != nil {
		if n, err := s.runs.Count(r.Context()); err == nil {
			resp["runs"] = n
		} else {
			s.logger.Warn("status: run count failed", zap.Error(err))
		}
	}
	diskBytes, err := runstore.DiskUsageBytes(
		s.config.Storage.DatabasePath,
		s.config.Storage.BleveIndexPath,
	)
	if err == nil {
		resp["disk_usage_bytes"] = diskBytes
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
