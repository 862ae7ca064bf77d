package rag

import (
	"context"
	"errors"
	"fmt"

	"docqa-ai/internal/contextutil"
	"docqa-ai/internal/llm"
	"docqa-ai/internal/service"
	"docqa-ai/internal/vectorstore"
)

// maxK caps how many passages a single question may request.
const maxK = 20

// Retriever embeds a question and fetches the nearest indexed passages.
type Retriever struct {
	embedder llm.Embedder
	store    vectorstore.VectorStore
	index    string
	defaultK int
}

// NewRetriever creates a retriever over the given index. defaultK is used
// when a request does not specify its own k.
func NewRetriever(embedder llm.Embedder, store vectorstore.VectorStore, index string, defaultK int) *Retriever {
	return &Retriever{
		embedder: embedder,
		store:    store,
		index:    index,
		defaultK: defaultK,
	}
}

// Retrieve returns up to k passages ordered by descending similarity, rank 0
// first. A missing index means nothing was ingested yet and yields an empty
// result, not an error.
func (r *Retriever) Retrieve(ctx context.Context, question string, k int) ([]Passage, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if k <= 0 {
		k = r.defaultK
	}
	if k > maxK {
		k = maxK
	}

	vector, err := r.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	results, err := r.store.Search(ctx, r.index, vector, k)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			logger.InfoContext(ctx, "index does not exist yet, returning no passages", "index", r.index)
			return []Passage{}, nil
		}
		return nil, fmt.Errorf("failed to search index: %w", err)
	}

	passages := make([]Passage, len(results))
	for i, res := range results {
		passages[i] = Passage{
			Text:   res.Entry.Text,
			Source: res.Entry.Source,
			Page:   res.Entry.Page,
			Score:  res.Score,
			Rank:   i,
		}
	}

	logger.DebugContext(ctx, "retrieved passages", "count", len(passages), "k", k)
	return passages, nil
}
