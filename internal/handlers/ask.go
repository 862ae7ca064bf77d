package handlers

import (
	"encoding/json"
	"net/http"

	"docqa-ai/internal/contextutil"
	"docqa-ai/internal/rag"
)

// AskHandler handles question answering over the indexed documents.
type AskHandler struct {
	engine rag.Engine
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(engine rag.Engine) *AskHandler {
	return &AskHandler{engine: engine}
}

// AskRequest is the HTTP request payload. It mirrors rag.AskRequest but is
// defined here for HTTP layer separation.
type AskRequest struct {
	Question string `json:"question"`
	K        int    `json:"k,omitempty"`
}

// SourceResponse is one grounding passage in the HTTP response.
type SourceResponse struct {
	Source string  `json:"source"`
	Page   int     `json:"page"`
	Text   string  `json:"text"`
	Score  float32 `json:"score"`
	Rank   int     `json:"rank"`
}

// AskResponse is the HTTP response payload: the generated answer plus the
// passages it was grounded on, in retrieval order.
type AskResponse struct {
	Answer  string           `json:"answer"`
	Sources []SourceResponse `json:"sources"`
}

// ServeHTTP handles POST /api/v1/ask.
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Question == "" {
		logger.WarnContext(ctx, "empty question in request")
		writeError(w, http.StatusBadRequest, "Question is required")
		return
	}
	if req.K < 0 {
		req.K = 0
	}

	answer, err := h.engine.Ask(ctx, rag.AskRequest{Question: req.Question, K: req.K})
	if err != nil {
		logger.ErrorContext(ctx, "failed to answer question", "error", err)
		writeError(w, statusForError(err), "Failed to answer question")
		return
	}

	sources := make([]SourceResponse, len(answer.Sources))
	for i, p := range answer.Sources {
		sources[i] = SourceResponse{
			Source: p.Source,
			Page:   p.Page,
			Text:   p.Text,
			Score:  p.Score,
			Rank:   p.Rank,
		}
	}

	writeJSON(w, http.StatusOK, AskResponse{
		Answer:  answer.Text,
		Sources: sources,
	})
}
