package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/inkwell-ai/inkwell/extract"
	"github.com/inkwell-ai/inkwell/ingest"
)

// ingestResponse is the success payload shared by every ingestion endpoint.
type ingestResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	Name           string `json:"name"`
	CollectionName string `json:"collectionName"`
	Summary        string `json:"summary"`
	DocumentsCount int    `json:"documentsCount"`
	SourceUrl      string `json:"sourceUrl,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleIngestPDF(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing file upload"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "could not read upload"})
		return
	}

	if !looksLikePDF(header.Header.Get("Content-Type"), data) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "file must be a PDF document"})
		return
	}

	result, err := s.pipeline.IngestPDF(r.Context(), data, header.Filename)
	if err != nil {
		s.writeIngestError(w, err)
		return
	}
	s.writeIngestResult(w, result)
}

func (s *Server) handleIngestText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text  string `json:"text"`
		Title string `json:"title"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "title is required"})
		return
	}

	result, err := s.pipeline.IngestText(r.Context(), req.Text, req.Title)
	if err != nil {
		s.writeIngestError(w, err)
		return
	}
	s.writeIngestResult(w, result)
}

func (s *Server) handleIngestWebsite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Website string `json:"website"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}

	result, err := s.pipeline.IngestWebsite(r.Context(), req.Website)
	if err != nil {
		s.writeIngestError(w, err)
		return
	}
	s.writeIngestResult(w, result)
}

func (s *Server) writeIngestResult(w http.ResponseWriter, result *ingest.Result) {
	writeJSON(w, http.StatusOK, ingestResponse{
		Success:        true,
		Message:        fmt.Sprintf("Ingested %q into collection %s", result.Title, result.CollectionId),
		Name:           result.Title,
		CollectionName: result.CollectionId,
		Summary:        result.Summary,
		DocumentsCount: result.DocumentsCount,
		SourceUrl:      result.Provenance["sourceUrl"],
	})
}

// writeIngestError maps pipeline failures onto HTTP statuses: input
// problems are client errors, everything past admission is a server error.
func (s *Server) writeIngestError(w http.ResponseWriter, err error) {
	var verr *ingest.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Message})
		return
	}
	if errors.Is(err, extract.ErrInvalidURL) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "website must be an absolute http(s) url"})
		return
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "request body too large"})
		return
	}

	s.logger.Error("ingestion failed", "err", err)

	var eerr *extract.Error
	if errors.As(err, &eerr) {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: eerr.Kind.String()})
		return
	}
	var ierr *ingest.IndexingError
	if errors.As(err, &ierr) {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "indexing failed"})
		return
	}

	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// looksLikePDF accepts either a declared PDF media type or the %PDF magic
// prefix. Browsers are inconsistent about the former.
func looksLikePDF(contentType string, data []byte) bool {
	if strings.HasPrefix(contentType, "application/pdf") {
		return true
	}
	return bytes.HasPrefix(data, []byte("%PDF"))
}
