package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/tally/internal/ingest"
	"github.com/MikeSquared-Agency/tally/internal/metrics"
	"github.com/MikeSquared-Agency/tally/internal/store"
)

// analysisResponse is the envelope returned for a fresh analysis. The
// metrics body itself uses the snapshot's stable camelCase contract.
type analysisResponse struct {
	RunID   string              `json:"runId"`
	Files   []ingest.FileResult `json:"files"`
	Metrics *metrics.Snapshot   `json:"metrics"`
}

// createAnalysis handles POST /api/v1/analyses. It accepts a multipart form
// with one or more "files" parts (txt, log, json or zip) and returns the
// per-file ingestion results together with the computed snapshot.
func (s *Server) createAnalysis(w http.ResponseWriter, r *http.Request) {
	maxBytes := int64(s.maxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart upload: "+err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	parts := r.MultipartForm.File["files"]
	if len(parts) == 0 {
		respondError(w, http.StatusBadRequest, "no files uploaded: use multipart field \"files\"")
		return
	}

	var files []ingest.File
	for _, part := range parts {
		pf, err := part.Open()
		if err != nil {
			respondError(w, http.StatusBadRequest, "cannot open uploaded file "+part.Filename)
			return
		}
		content, err := io.ReadAll(pf)
		pf.Close()
		if err != nil {
			respondError(w, http.StatusBadRequest, "cannot read uploaded file "+part.Filename)
			return
		}
		files = append(files, ingest.File{Name: part.Filename, Content: content})
	}

	run, err := s.proc.Analyze(r.Context(), files, "upload")
	if err != nil {
		respondError(w, http.StatusInternalServerError, "analysis failed: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, analysisResponse{
		RunID:   run.ID.String(),
		Files:   run.Files,
		Metrics: run.Snapshot,
	})
}

// getAnalysis handles GET /api/v1/analyses/{id}.
func (s *Server) getAnalysis(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid run id")
		return
	}

	if s.store == nil {
		respondError(w, http.StatusNotImplemented, "persistence is not configured")
		return
	}

	run, err := s.store.GetRun(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "analysis run not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load run: "+err.Error())
		return
	}
	respondJSON(w, http.StatusOK, run)
}

// listAnalyses handles GET /api/v1/analyses?limit=N.
func (s *Server) listAnalyses(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 200 {
			respondError(w, http.StatusBadRequest, "limit must be an integer between 1 and 200")
			return
		}
		limit = n
	}

	if s.store == nil {
		respondError(w, http.StatusNotImplemented, "persistence is not configured")
		return
	}

	runs, err := s.store.ListRuns(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list runs: "+err.Error())
		return
	}
	if runs == nil {
		runs = []store.RunSummary{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"runs": runs})
}
