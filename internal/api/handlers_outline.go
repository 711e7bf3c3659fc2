package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docrank/internal/doctree"
	"github.com/dgallion1/docrank/internal/outline"
	"github.com/dgallion1/docrank/internal/parser"
)

func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	_, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}

	doc, status, err := s.parseUpload(header)
	if err != nil {
		jsonError(w, err.Error(), status)
		return
	}

	o := outline.Extract(doc)
	s.log.Info("outline extracted", "document", doc.ID, "headings", len(o.Headings))

	w.Header().Set("Content-Type", "application/json")
	outline.Encode(w, o)
}

// parseUpload reads and collects one uploaded document. The returned status
// is the HTTP code to use when err is non-nil.
func (s *Server) parseUpload(fh *multipart.FileHeader) (*doctree.Document, int, error) {
	filename := sanitizeFilename(fh.Filename)
	if !parser.IsSupportedExtension(filename) {
		return nil, http.StatusBadRequest, fmt.Errorf("unsupported file type: %s", filepath.Ext(filename))
	}

	f, err := fh.Open()
	if err != nil {
		return nil, http.StatusInternalServerError, fmt.Errorf("failed to open file")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, http.StatusInternalServerError, fmt.Errorf("failed to read file")
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)
	}

	doc, err := s.pipeline.Parse(bytes.NewReader(data), filename)
	if err != nil {
		return nil, http.StatusUnprocessableEntity, err
	}
	return doc, http.StatusOK, nil
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
