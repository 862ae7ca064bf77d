package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"docqa-ai/internal/contextutil"
	"docqa-ai/internal/indexer"
	"docqa-ai/internal/service"
)

// maxUploadBytes bounds the multipart form kept in memory per request.
const maxUploadBytes = 64 << 20

// UploadHandler accepts PDF uploads and runs them through the ingestion
// pipeline.
type UploadHandler struct {
	pipeline *indexer.Pipeline
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(pipeline *indexer.Pipeline) *UploadHandler {
	return &UploadHandler{pipeline: pipeline}
}

// UploadResponse is the ingest report returned to the caller.
type UploadResponse struct {
	DocumentsIndexed int                       `json:"documents_indexed"`
	ChunksIndexed    int                       `json:"chunks_indexed"`
	Failures         []indexer.DocumentFailure `json:"failures"`
}

// ServeHTTP handles POST /api/v1/documents. The request is a multipart form
// with one or more parts under "files". Non-PDF parts are rejected per file
// and reported as failures without blocking sibling documents.
func (h *UploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		logger.WarnContext(ctx, "invalid multipart form", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	parts := r.MultipartForm.File["files"]
	if len(parts) == 0 {
		writeError(w, http.StatusBadRequest, "No files provided")
		return
	}

	var (
		docs     []indexer.Document
		rejected []indexer.DocumentFailure
	)
	for _, part := range parts {
		if !strings.EqualFold(filepath.Ext(part.Filename), ".pdf") {
			logger.WarnContext(ctx, "rejected non-PDF upload", "filename", part.Filename)
			rejected = append(rejected, indexer.DocumentFailure{
				Filename: part.Filename,
				Reason:   "only PDF files are accepted",
			})
			continue
		}

		f, err := part.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to read %s", part.Filename))
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to read %s", part.Filename))
			return
		}

		docs = append(docs, indexer.Document{Filename: part.Filename, Data: data})
	}

	report, err := h.pipeline.Ingest(ctx, docs)
	if err != nil {
		logger.ErrorContext(ctx, "ingestion failed", "error", err)

		var ingestErr *service.IngestError
		if errors.As(err, &ingestErr) {
			writeError(w, http.StatusBadGateway,
				fmt.Sprintf("Ingestion failed after %d chunks: %v", ingestErr.ChunksIndexed, ingestErr.Unwrap()))
			return
		}
		writeError(w, statusForError(err), "Ingestion failed")
		return
	}

	failures := make([]indexer.DocumentFailure, 0, len(rejected)+len(report.Failures))
	failures = append(failures, rejected...)
	failures = append(failures, report.Failures...)

	writeJSON(w, http.StatusOK, UploadResponse{
		DocumentsIndexed: report.DocumentsIndexed,
		ChunksIndexed:    report.ChunksIndexed,
		Failures:         failures,
	})
}
