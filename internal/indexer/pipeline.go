package indexer

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"docqa-ai/internal/contextutil"
	"docqa-ai/internal/extractor"
	"docqa-ai/internal/llm"
	"docqa-ai/internal/service"
	"docqa-ai/internal/storage"
	"docqa-ai/internal/vectorstore"
)

// Config carries the ingestion settings checked before any work starts.
type Config struct {
	IndexName      string
	ChunkSize      int
	ChunkOverlap   int
	BatchSize      int
	FolderID       string
	APIKey         string
	SearchHosts    []string
	SearchPassword string
}

func (c Config) validate() error {
	switch {
	case c.FolderID == "" || c.APIKey == "":
		return fmt.Errorf("%w: embedding credentials are not set", service.ErrConfig)
	case len(c.SearchHosts) == 0 || c.SearchPassword == "":
		return fmt.Errorf("%w: search cluster credentials are not set", service.ErrConfig)
	case c.IndexName == "":
		return fmt.Errorf("%w: index name is not set", service.ErrConfig)
	case c.ChunkSize <= 0 || c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize:
		return fmt.Errorf("%w: invalid chunk window (size=%d, overlap=%d)", service.ErrConfig, c.ChunkSize, c.ChunkOverlap)
	case c.BatchSize <= 0:
		return fmt.Errorf("%w: batch size must be positive", service.ErrConfig)
	}
	return nil
}

// Pipeline orchestrates the ingestion of PDF documents into the vector index
// and the document ledger.
type Pipeline struct {
	extractor extractor.Extractor
	embedder  llm.Embedder
	store     vectorstore.VectorStore
	ledger    storage.DocumentStore
	cfg       Config
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	ext extractor.Extractor,
	embedder llm.Embedder,
	store vectorstore.VectorStore,
	ledger storage.DocumentStore,
	cfg Config,
) *Pipeline {
	return &Pipeline{
		extractor: ext,
		embedder:  embedder,
		store:     store,
		ledger:    ledger,
		cfg:       cfg,
	}
}

// docState tracks a document through extraction and chunking until its
// ledger row is written.
type docState struct {
	filename string
	pages    int
	chunks   int
	recorded bool
}

// Ingest extracts, chunks, embeds and indexes the given documents.
//
// Extraction failures are collected per document and do not stop the run.
// Embedding and indexing failures abort the run and are reported as an
// IngestError carrying the number of chunks already indexed.
func (p *Pipeline) Ingest(ctx context.Context, docs []Document) (*IngestReport, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if err := p.cfg.validate(); err != nil {
		return nil, err
	}

	report := &IngestReport{}
	var (
		allChunks []Chunk
		states    []*docState
	)

	for _, doc := range docs {
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		default:
		}

		pages, err := p.extractor.ExtractPages(ctx, doc.Data)
		if err != nil {
			logger.ErrorContext(ctx, "failed to extract document", "filename", doc.Filename, "error", err)
			report.Failures = append(report.Failures, DocumentFailure{
				Filename: doc.Filename,
				Reason:   err.Error(),
			})
			p.record(ctx, &docState{filename: doc.Filename}, storage.StatusFailed, err.Error())
			continue
		}

		chunks, err := ChunkPages(pages, doc.Filename, p.cfg.ChunkSize, p.cfg.ChunkOverlap)
		if err != nil {
			return report, err
		}

		if len(chunks) == 0 {
			logger.WarnContext(ctx, "document produced no chunks", "filename", doc.Filename)
		}

		allChunks = append(allChunks, chunks...)
		states = append(states, &docState{
			filename: doc.Filename,
			pages:    len(pages),
			chunks:   len(chunks),
		})
	}

	indexed, err := p.indexChunks(ctx, allChunks)
	if err != nil {
		reason := err.Error()
		for _, st := range states {
			p.record(ctx, st, storage.StatusFailed, reason)
		}
		report.ChunksIndexed = indexed
		return report, &service.IngestError{ChunksIndexed: indexed, Err: err}
	}

	for _, st := range states {
		p.record(ctx, st, storage.StatusIndexed, "")
		report.DocumentsIndexed++
	}
	report.ChunksIndexed = indexed

	logger.InfoContext(ctx, "ingestion completed",
		"documents", report.DocumentsIndexed,
		"chunks", report.ChunksIndexed,
		"failures", len(report.Failures))

	return report, nil
}

// indexChunks embeds and upserts chunks in batches, returning the number of
// chunks that made it into the index.
func (p *Pipeline) indexChunks(ctx context.Context, chunks []Chunk) (int, error) {
	indexed := 0
	for start := 0; start < len(chunks); start += p.cfg.BatchSize {
		end := start + p.cfg.BatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}

		vectors, err := p.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return indexed, fmt.Errorf("failed to embed batch: %w", err)
		}
		if len(vectors) != len(batch) {
			return indexed, fmt.Errorf("embedding count mismatch: expected %d, got %d", len(batch), len(vectors))
		}

		entries := make([]vectorstore.Entry, len(batch))
		for i, c := range batch {
			entries[i] = vectorstore.Entry{
				ID:     uuid.New().String(),
				Text:   c.Text,
				Vector: vectors[i],
				Source: c.Source,
				Page:   c.Page,
			}
		}

		if err := p.store.Upsert(ctx, p.cfg.IndexName, entries); err != nil {
			return indexed, fmt.Errorf("failed to upsert batch: %w", err)
		}
		indexed += len(batch)
	}
	return indexed, nil
}

// record writes a ledger row for a document; ledger failures are logged but
// do not fail the ingestion.
func (p *Pipeline) record(ctx context.Context, st *docState, status, reason string) {
	if st.recorded {
		return
	}
	st.recorded = true

	rec := &storage.DocumentRecord{
		Filename: st.filename,
		Pages:    st.pages,
		Chunks:   st.chunks,
		Status:   status,
		Error:    strings.TrimSpace(reason),
	}
	if err := p.ledger.Insert(ctx, rec); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to record document",
			"filename", st.filename, "status", status, "error", err)
	}
}
