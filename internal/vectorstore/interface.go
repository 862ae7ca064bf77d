package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks docqa-ai/internal/vectorstore VectorStore

import (
	"context"
	"fmt"

	"docqa-ai/internal/service"
)

// Entry is the unit of indexing: one chunk's text, its embedding vector, and
// provenance metadata. Once upserted the entry is owned by the cluster.
type Entry struct {
	ID     string
	Text   string
	Vector []float32
	Source string // source document filename
	Page   int    // 1-based page number within the source document
}

// SearchResult is one k-NN hit with its similarity score.
type SearchResult struct {
	Entry Entry
	Score float32
}

// VectorStore defines the interface to the search cluster.
type VectorStore interface {
	// Ping verifies the cluster is reachable. Called once at startup so a
	// misconfigured deployment fails fast rather than on first ingest.
	Ping(ctx context.Context) error

	// EnsureIndex creates the index with a knn_vector mapping of the given
	// dimension when it does not exist yet.
	EnsureIndex(ctx context.Context, index string, dims int) error

	// Upsert inserts entries by ID. Idempotent per entry; re-ingesting the
	// same document under fresh IDs creates duplicate entries, which is the
	// caller's documented responsibility.
	Upsert(ctx context.Context, index string, entries []Entry) error

	// Search returns the k nearest entries ordered by descending similarity.
	Search(ctx context.Context, index string, vector []float32, k int) ([]SearchResult, error)

	// Count returns the number of entries in the index.
	Count(ctx context.Context, index string) (int, error)
}

// IndexName composes the active index identifier from the deployment-level
// prefix and the caller-chosen suffix, so multiple logical datasets can share
// one cluster without collision.
func IndexName(prefix, suffix string) (string, error) {
	if prefix == "" || suffix == "" {
		return "", fmt.Errorf("%w: index prefix and name must both be set", service.ErrConfig)
	}
	return prefix + "-" + suffix, nil
}
