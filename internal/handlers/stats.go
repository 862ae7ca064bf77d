package handlers

import (
	"errors"
	"net/http"

	"docqa-ai/internal/contextutil"
	"docqa-ai/internal/service"
	"docqa-ai/internal/vectorstore"
)

// StatsHandler reports the entry count of the active index.
type StatsHandler struct {
	store vectorstore.VectorStore
	index string
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(store vectorstore.VectorStore, index string) *StatsHandler {
	return &StatsHandler{store: store, index: index}
}

// StatsResponse describes the active index.
type StatsResponse struct {
	Index   string `json:"index"`
	Entries int    `json:"entries"`
}

// ServeHTTP handles GET /api/v1/index/stats. An index that does not exist
// yet reports zero entries rather than an error.
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	count, err := h.store.Count(ctx, h.index)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			writeJSON(w, http.StatusOK, StatsResponse{Index: h.index, Entries: 0})
			return
		}
		logger.ErrorContext(ctx, "failed to count index entries", "error", err)
		writeError(w, statusForError(err), "Failed to read index stats")
		return
	}

	writeJSON(w, http.StatusOK, StatsResponse{Index: h.index, Entries: count})
}
