package llm

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_llm.go -package=mocks docqa-ai/internal/llm Embedder,Generator

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"docqa-ai/internal/service"
)

// DefaultBaseURL is the Yandex Foundation Models endpoint.
const DefaultBaseURL = "https://llm.api.cloud.yandex.net"

// Embedder maps text to fixed-length vectors via the remote embedding service.
type Embedder interface {
	// EmbedDocuments embeds passage texts, preserving input order.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	// EmbedQuery embeds a search query. Query and document embeddings use
	// different model URIs tuned for asymmetric retrieval.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Generator maps a prompt to a text completion via the remote generation service.
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// translateStatus maps a non-OK HTTP response onto the error taxonomy.
func translateStatus(statusCode int, body io.Reader) error {
	raw, _ := io.ReadAll(io.LimitReader(body, 4096))
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d: %s", service.ErrAuth, statusCode, raw)
	case statusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d: %s", service.ErrQuota, statusCode, raw)
	case statusCode >= 500:
		return fmt.Errorf("%w: status %d: %s", service.ErrTransient, statusCode, raw)
	default:
		return fmt.Errorf("bad status %d: %s", statusCode, raw)
	}
}

// translateSendError maps transport failures (timeouts, refused connections)
// onto the retryable transient error.
func translateSendError(err error) error {
	return fmt.Errorf("%w: %v", service.ErrTransient, err)
}
