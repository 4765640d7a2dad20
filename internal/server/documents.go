package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/joseph-ayodele/purchase-orders/internal/async"
	"github.com/joseph-ayodele/purchase-orders/internal/extract"
)

// maxDocumentBytes bounds an inline document request body.
const maxDocumentBytes = 32 << 20

type PageDTO struct {
	Source string `json:"source"`
	Text   string `json:"text"`
}

type ProcessDocumentRequest struct {
	Name    string    `json:"name"`
	Pages   []PageDTO `json:"pages"`
	Persist bool      `json:"persist"`
}

type EnqueueJobRequest struct {
	Dir     string `json:"dir"`
	Persist bool   `json:"persist"`
}

type EnqueueJobResponse struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// ProcessDocument handles POST /api/v1/documents. Pages are processed in the order given.
func (s *Server) ProcessDocument(w http.ResponseWriter, r *http.Request) {
	if s.deps.Processor == nil {
		s.writeError(w, r, fmt.Errorf("document processing not configured"))
		return
	}
	var req ProcessDocumentRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDocumentBytes)).Decode(&req); err != nil {
		s.writeError(w, r, badRequest("invalid request body: "+err.Error()))
		return
	}
	if len(req.Pages) == 0 {
		s.writeError(w, r, badRequest("pages is required"))
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = "document"
	}

	pages := make([]extract.Page, len(req.Pages))
	for i, p := range req.Pages {
		pages[i] = extract.Page{Index: i + 1, Source: p.Source, Text: p.Text}
	}

	s.logger.Info("documents.process", "name", name, "pages", len(pages), "persist", req.Persist)
	res, err := s.deps.Processor.ProcessPages(r.Context(), name, pages, req.Persist)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// EnqueueJob handles POST /api/v1/jobs.
func (s *Server) EnqueueJob(w http.ResponseWriter, r *http.Request) {
	if s.deps.Queue == nil {
		s.writeError(w, r, fmt.Errorf("job queue not configured"))
		return
	}
	var req EnqueueJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, badRequest("invalid request body: "+err.Error()))
		return
	}
	dir, err := s.jobDir(req.Dir)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	job := async.Job{Dir: dir, Persist: req.Persist, SubmittedAt: time.Now()}
	id, err := s.deps.Queue.Enqueue(r.Context(), job)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, EnqueueJobResponse{ID: id, Status: "QUEUED", SubmittedAt: job.SubmittedAt})
}

// GetJob handles GET /api/v1/jobs/{id}.
func (s *Server) GetJob(w http.ResponseWriter, r *http.Request) {
	if s.deps.Queue == nil {
		s.writeError(w, r, fmt.Errorf("job queue not configured"))
		return
	}
	st, err := s.deps.Queue.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// jobDir resolves dir against JobRoot. Without a root, dir is used as given.
func (s *Server) jobDir(dir string) (string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return "", badRequest("dir is required")
	}
	if s.deps.JobRoot == "" {
		return dir, nil
	}
	rel := filepath.Clean(dir)
	if filepath.IsAbs(rel) {
		var err error
		if rel, err = filepath.Rel(s.deps.JobRoot, rel); err != nil {
			return "", badRequest("dir must be inside the job root")
		}
	}
	if !filepath.IsLocal(rel) {
		return "", badRequest("dir must be inside the job root")
	}
	return filepath.Join(s.deps.JobRoot, rel), nil
}
