package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"

	"github.com/dgallion1/docrank/internal/doctree"
	"github.com/dgallion1/docrank/internal/outline"
	"github.com/dgallion1/docrank/internal/pipeline"
	"github.com/dgallion1/docrank/internal/rank"
	"github.com/go-chi/chi/v5"
)

// maxRankFiles caps how many documents one ranking request may carry.
const maxRankFiles = 50

func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*1024*1024)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	q := rank.Query{Persona: r.FormValue("persona"), Task: r.FormValue("job_to_be_done")}
	if q.Persona == "" || q.Task == "" {
		jsonError(w, "persona and job_to_be_done are required", http.StatusBadRequest)
		return
	}

	topK := 0
	if v := r.FormValue("top_k"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			jsonError(w, "top_k must be a positive integer", http.StatusBadRequest)
			return
		}
		topK = n
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}
	if len(files) > maxRankFiles {
		jsonError(w, "too many files", http.StatusBadRequest)
		return
	}

	run := pipeline.NewRun()
	s.runs.Put(run)
	log := s.log.With("run_id", run.ID)

	// Uploads are processed in name order, like a directory run.
	sort.SliceStable(files, func(i, j int) bool {
		return sanitizeFilename(files[i].Filename) < sanitizeFilename(files[j].Filename)
	})

	seen := make(map[string]bool, len(files))
	var docs []doctree.SectionedDocument
	for _, fh := range files {
		doc, _, err := s.parseUpload(fh)
		if err != nil {
			log.Warn("document skipped", "document", fh.Filename, "error", err)
			run.AddSkipped(pipeline.Skipped{Document: sanitizeFilename(fh.Filename), Reason: err.Error()})
			continue
		}
		if seen[doc.ID] {
			run.AddSkipped(pipeline.Skipped{Document: doc.ID, Reason: "duplicate file name"})
			continue
		}
		seen[doc.ID] = true
		docs = append(docs, pipeline.Sectioned(doc, outline.Extract(doc)))
	}

	res, err := s.pipeline.RankDocuments(r.Context(), run, q, docs, topK)
	w.Header().Set("X-Run-ID", run.ID)
	if err != nil {
		var ie *rank.InferenceError
		switch {
		case errors.Is(err, pipeline.ErrNoDocuments):
			jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		case errors.As(err, &ie):
			jsonError(w, err.Error(), http.StatusBadGateway)
		default:
			jsonError(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	run.SetStatus(pipeline.StatusCompleted, pipeline.PhaseDone)

	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	enc.Encode(res.Report)
}

func (s *Server) handleRunStatus(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	run := s.runs.Get(runID)
	if run == nil {
		jsonError(w, "run not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(run.Snapshot())
}
