package vectorstore

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"docqa-ai/internal/contextutil"
	"docqa-ai/internal/service"
)

// OpenSearchStore implements VectorStore against an OpenSearch cluster with
// basic-auth over TLS. The client is created once and reused across calls.
type OpenSearchStore struct {
	client *opensearch.Client
}

// NewOpenSearchStore creates the cluster client. caPath, when non-empty,
// points at a PEM CA certificate used as the exclusive trust anchor; when
// empty, server certificate verification is skipped (managed clusters with
// self-signed certs), which the caller should log loudly.
func NewOpenSearchStore(hosts []string, username, password, caPath string) (*OpenSearchStore, error) {
	if len(hosts) == 0 {
		return nil, fmt.Errorf("%w: no search hosts configured", service.ErrConfig)
	}

	tlsConfig := &tls.Config{}
	if caPath != "" {
		pem, err := os.ReadFile(caPath)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read CA certificate %s: %v", service.ErrConnection, caPath, err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("%w: no certificates parsed from %s", service.ErrConnection, caPath)
		}
		tlsConfig.RootCAs = pool
	} else {
		tlsConfig.InsecureSkipVerify = true
	}

	client, err := opensearch.NewClient(opensearch.Config{
		Addresses: hosts,
		Username:  username,
		Password:  password,
		Transport: &http.Transport{
			TLSClientConfig: tlsConfig,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create search client: %v", service.ErrConnection, err)
	}

	return &OpenSearchStore{client: client}, nil
}

// Ping verifies the cluster is reachable with the configured credentials.
func (s *OpenSearchStore) Ping(ctx context.Context) error {
	res, err := opensearchapi.PingRequest{}.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("%w: %v", service.ErrConnection, err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.IsError() {
		return fmt.Errorf("%w: ping status %d", service.ErrConnection, res.StatusCode)
	}
	return nil
}

// EnsureIndex creates the index with a knn_vector mapping when absent.
func (s *OpenSearchStore) EnsureIndex(ctx context.Context, index string, dims int) error {
	logger := contextutil.LoggerFromContext(ctx)

	res, err := opensearchapi.IndicesExistsRequest{Index: []string{index}}.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("%w: %v", service.ErrConnection, err)
	}
	_ = res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("unexpected exists status %d for index %s", res.StatusCode, index)
	}

	mapping := map[string]any{
		"settings": map[string]any{
			"index": map[string]any{"knn": true},
		},
		"mappings": map[string]any{
			"properties": map[string]any{
				"text": map[string]any{"type": "text"},
				"vector": map[string]any{
					"type":      "knn_vector",
					"dimension": dims,
				},
				"metadata": map[string]any{
					"properties": map[string]any{
						"source": map[string]any{"type": "keyword"},
						"page":   map[string]any{"type": "integer"},
					},
				},
			},
		},
	}

	body, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("failed to marshal index mapping: %w", err)
	}

	createRes, err := opensearchapi.IndicesCreateRequest{
		Index: index,
		Body:  bytes.NewReader(body),
	}.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("%w: %v", service.ErrConnection, err)
	}
	defer func() {
		_ = createRes.Body.Close()
	}()

	if createRes.IsError() {
		return fmt.Errorf("failed to create index %s: status %d", index, createRes.StatusCode)
	}

	logger.InfoContext(ctx, "created index", "index", index, "dimensions", dims)
	return nil
}

// indexedDocument is the stored document shape.
type indexedDocument struct {
	Text     string    `json:"text"`
	Vector   []float32 `json:"vector"`
	Metadata struct {
		Source string `json:"source"`
		Page   int    `json:"page"`
	} `json:"metadata"`
}

// Upsert bulk-indexes entries by ID.
func (s *OpenSearchStore) Upsert(ctx context.Context, index string, entries []Entry) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(entries) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for _, entry := range entries {
		action := map[string]any{
			"index": map[string]any{"_index": index, "_id": entry.ID},
		}
		actionLine, err := json.Marshal(action)
		if err != nil {
			return fmt.Errorf("failed to marshal bulk action: %w", err)
		}

		var doc indexedDocument
		doc.Text = entry.Text
		doc.Vector = entry.Vector
		doc.Metadata.Source = entry.Source
		doc.Metadata.Page = entry.Page
		docLine, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to marshal document: %w", err)
		}

		buf.Write(actionLine)
		buf.WriteByte('\n')
		buf.Write(docLine)
		buf.WriteByte('\n')
	}

	res, err := opensearchapi.BulkRequest{
		Body:    &buf,
		Refresh: "true",
	}.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("%w: %v", service.ErrConnection, err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.IsError() {
		return fmt.Errorf("bulk upsert failed: status %d", res.StatusCode)
	}

	var bulkResp struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			Status int    `json:"status"`
			Error  any    `json:"error"`
			ID     string `json:"_id"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&bulkResp); err != nil {
		return fmt.Errorf("failed to decode bulk response: %w", err)
	}
	if bulkResp.Errors {
		failed := 0
		for _, item := range bulkResp.Items {
			for _, op := range item {
				if op.Status >= 400 {
					failed++
				}
			}
		}
		return fmt.Errorf("bulk upsert failed for %d of %d entries", failed, len(entries))
	}

	logger.InfoContext(ctx, "upserted entries", "index", index, "count", len(entries))
	return nil
}

// Search performs a k-NN query, returning hits ordered by descending score.
func (s *OpenSearchStore) Search(ctx context.Context, index string, vector []float32, k int) ([]SearchResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}

	query := map[string]any{
		"size": k,
		"query": map[string]any{
			"knn": map[string]any{
				"vector": map[string]any{
					"vector": vector,
					"k":      k,
				},
			},
		},
	}
	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	res, err := opensearchapi.SearchRequest{
		Index: []string{index},
		Body:  bytes.NewReader(body),
	}.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrConnection, err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: index %s", service.ErrNotFound, index)
	}
	if res.IsError() {
		return nil, fmt.Errorf("search failed: status %d", res.StatusCode)
	}

	var searchResp struct {
		Hits struct {
			Hits []struct {
				ID     string          `json:"_id"`
				Score  float32         `json:"_score"`
				Source indexedDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	results := make([]SearchResult, 0, len(searchResp.Hits.Hits))
	for _, hit := range searchResp.Hits.Hits {
		results = append(results, SearchResult{
			Entry: Entry{
				ID:     hit.ID,
				Text:   hit.Source.Text,
				Source: hit.Source.Metadata.Source,
				Page:   hit.Source.Metadata.Page,
			},
			Score: hit.Score,
		})
	}

	logger.InfoContext(ctx, "search completed", "index", index, "k", k, "results", len(results))
	return results, nil
}

// Count returns the number of entries in the index.
func (s *OpenSearchStore) Count(ctx context.Context, index string) (int, error) {
	res, err := opensearchapi.CountRequest{Index: []string{index}}.Do(ctx, s.client)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", service.ErrConnection, err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.StatusCode == http.StatusNotFound {
		return 0, fmt.Errorf("%w: index %s", service.ErrNotFound, index)
	}
	if res.IsError() {
		return 0, fmt.Errorf("count failed: status %d", res.StatusCode)
	}

	var countResp struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&countResp); err != nil {
		return 0, fmt.Errorf("failed to decode count response: %w", err)
	}
	return countResp.Count, nil
}
