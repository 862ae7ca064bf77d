package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// EmbeddingsClient is a client for the Yandex Foundation Models text
// embedding API. The endpoint accepts one text per request, so batch calls
// loop under a client-side rate limiter.
type EmbeddingsClient struct {
	BaseURL      string
	APIKey       string
	ExpectedSize int // expected vector size, validated on every response
	docModelURI  string
	queryModeURI string
	limiter      *rate.Limiter
	client       *http.Client
}

// NewEmbeddingsClient creates a new embeddings client. expectedSize is the
// vector dimension the index is mapped with (VECTOR_SIZE). rps bounds the
// request rate against the service quota.
func NewEmbeddingsClient(baseURL, folderID, apiKey string, expectedSize int, rps float64, timeout time.Duration) *EmbeddingsClient {
	return &EmbeddingsClient{
		BaseURL:      baseURL,
		APIKey:       apiKey,
		ExpectedSize: expectedSize,
		docModelURI:  fmt.Sprintf("emb://%s/text-search-doc/latest", folderID),
		queryModeURI: fmt.Sprintf("emb://%s/text-search-query/latest", folderID),
		limiter:      rate.NewLimiter(rate.Limit(rps), 1),
		client:       &http.Client{Timeout: timeout},
	}
}

// embeddingRequest is the request payload for the text embedding API.
type embeddingRequest struct {
	ModelURI string `json:"modelUri"`
	Text     string `json:"text"`
}

// embeddingResponse is the response from the text embedding API.
type embeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

// EmbedDocuments generates embeddings for passage texts. The returned slice
// has the same length and order as the input.
func (c *EmbeddingsClient) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("empty input array")
	}

	result := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := c.embedOne(ctx, c.docModelURI, text)
		if err != nil {
			return nil, fmt.Errorf("embedding %d of %d: %w", i+1, len(texts), err)
		}
		result[i] = vec
	}
	return result, nil
}

// EmbedQuery generates an embedding for a search query.
func (c *EmbeddingsClient) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return c.embedOne(ctx, c.queryModeURI, text)
}

func (c *EmbeddingsClient) embedOne(ctx context.Context, modelURI, text string) ([]float32, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	url := fmt.Sprintf("%s/foundationModels/v1/textEmbedding", c.BaseURL)

	body, err := json.Marshal(embeddingRequest{ModelURI: modelURI, Text: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Api-Key %s", c.APIKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, translateSendError(err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, translateStatus(resp.StatusCode, resp.Body)
	}

	var embResp embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&embResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(embResp.Embedding) != c.ExpectedSize {
		return nil, fmt.Errorf("embedding has size %d, expected %d", len(embResp.Embedding), c.ExpectedSize)
	}

	vec := make([]float32, len(embResp.Embedding))
	for i, v := range embResp.Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}
