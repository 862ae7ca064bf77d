package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"docqa-ai/internal/config"
	"docqa-ai/internal/extractor"
	"docqa-ai/internal/http"
	"docqa-ai/internal/indexer"
	"docqa-ai/internal/llm"
	"docqa-ai/internal/rag"
	"docqa-ai/internal/storage"
	"docqa-ai/internal/vectorstore"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize the ingest ledger database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	documentRepo := storage.NewDocumentRepo(db)

	ctx := context.Background()

	index, err := vectorstore.IndexName(cfg.IndexPrefix, cfg.IndexName)
	if err != nil {
		log.Fatalf("Failed to compose index name: %v", err)
	}

	// Connect to the search cluster and fail fast if it is unreachable
	if cfg.SearchCAPath == "" {
		slog.Warn("SEARCH_CA_PATH not set, skipping server certificate verification")
	}
	store, err := vectorstore.NewOpenSearchStore(cfg.SearchHosts, cfg.SearchUser, cfg.SearchPassword, cfg.SearchCAPath)
	if err != nil {
		log.Fatalf("Failed to create search client: %v", err)
	}
	if err := store.Ping(ctx); err != nil {
		log.Fatalf("Failed to reach search cluster: %v", err)
	}
	if err := store.EnsureIndex(ctx, index, cfg.VectorSize); err != nil {
		log.Fatalf("Failed to ensure index: %v", err)
	}
	slog.Info("Search index ready", "index", index, "vector_size", cfg.VectorSize)

	embedder := llm.NewEmbeddingsClient(llm.DefaultBaseURL, cfg.FolderID, cfg.APIKey,
		cfg.VectorSize, cfg.RateLimit, cfg.HTTPTimeout)

	generator := llm.NewClient(llm.DefaultBaseURL, cfg.APIKey,
		llm.ModelURIForTier(cfg.FolderID, cfg.ModelTier),
		cfg.Temperature, cfg.MaxTokens, cfg.RateLimit, cfg.HTTPTimeout)

	pipeline := indexer.NewPipeline(
		extractor.NewPDFExtractor(),
		embedder,
		store,
		documentRepo,
		indexer.Config{
			IndexName:      index,
			ChunkSize:      cfg.ChunkSize,
			ChunkOverlap:   cfg.ChunkOverlap,
			BatchSize:      cfg.EmbedBatchSize,
			FolderID:       cfg.FolderID,
			APIKey:         cfg.APIKey,
			SearchHosts:    cfg.SearchHosts,
			SearchPassword: cfg.SearchPassword,
		},
	)

	template, err := rag.NewPromptTemplate(cfg.PromptTemplate)
	if err != nil {
		log.Fatalf("Invalid prompt template: %v", err)
	}

	retriever := rag.NewRetriever(embedder, store, index, cfg.RetrievalK)
	engine := rag.NewEngine(retriever, template, generator)
	slog.Info("Answering engine initialized", "model_tier", cfg.ModelTier, "k", cfg.RetrievalK)

	router := http.NewRouter(&http.Deps{
		Pipeline: pipeline,
		Engine:   engine,
		Ledger:   documentRepo,
		Store:    store,
		Index:    index,
	})

	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
