package handlers

import (
	"net/http"
	"time"

	"docqa-ai/internal/contextutil"
	"docqa-ai/internal/storage"
)

// DocumentsHandler lists the ingest ledger.
type DocumentsHandler struct {
	ledger storage.DocumentStore
}

// NewDocumentsHandler creates a new DocumentsHandler.
func NewDocumentsHandler(ledger storage.DocumentStore) *DocumentsHandler {
	return &DocumentsHandler{ledger: ledger}
}

// DocumentResponse is one ingest ledger row.
type DocumentResponse struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Pages     int       `json:"pages"`
	Chunks    int       `json:"chunks"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ServeHTTP handles GET /api/v1/documents, newest first.
func (h *DocumentsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	records, err := h.ledger.List(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list documents", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list documents")
		return
	}

	docs := make([]DocumentResponse, len(records))
	for i, rec := range records {
		docs[i] = DocumentResponse{
			ID:        rec.ID,
			Filename:  rec.Filename,
			Pages:     rec.Pages,
			Chunks:    rec.Chunks,
			Status:    rec.Status,
			Error:     rec.Error,
			CreatedAt: rec.CreatedAt,
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}
