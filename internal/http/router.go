package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"docqa-ai/internal/handlers"
	"docqa-ai/internal/indexer"
	"docqa-ai/internal/rag"
	"docqa-ai/internal/storage"
	"docqa-ai/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Pipeline *indexer.Pipeline
	Engine   rag.Engine
	Ledger   storage.DocumentStore
	Store    vectorstore.VectorStore
	Index    string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(CORS)
	r.Use(LoggerMiddleware)

	uploadHandler := handlers.NewUploadHandler(deps.Pipeline)
	askHandler := handlers.NewAskHandler(deps.Engine)
	documentsHandler := handlers.NewDocumentsHandler(deps.Ledger)
	statsHandler := handlers.NewStatsHandler(deps.Store, deps.Index)
	healthHandler := handlers.NewHealthHandler()

	r.Route("/api/v1", func(r chi.Router) {
		r.Method(http.MethodPost, "/documents", uploadHandler)
		r.Method(http.MethodGet, "/documents", documentsHandler)
		r.Method(http.MethodPost, "/ask", askHandler)
		r.Method(http.MethodGet, "/index/stats", statsHandler)
		r.Method(http.MethodGet, "/health", healthHandler)
	})

	return r
}
