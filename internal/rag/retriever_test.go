package rag

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	llmmocks "docqa-ai/internal/llm/mocks"
	"docqa-ai/internal/service"
	"docqa-ai/internal/vectorstore"
	vectorstoremocks "docqa-ai/internal/vectorstore/mocks"
)

func newTestRetriever(t *testing.T) (*Retriever, *llmmocks.MockEmbedder, *vectorstoremocks.MockVectorStore) {
	t.Helper()
	ctrl := gomock.NewController(t)
	embedder := llmmocks.NewMockEmbedder(ctrl)
	store := vectorstoremocks.NewMockVectorStore(ctrl)
	return NewRetriever(embedder, store, "docqa-documents", 5), embedder, store
}

func TestRetrieveRanksAndProvenance(t *testing.T) {
	r, embedder, store := newTestRetriever(t)
	ctx := context.Background()

	vector := []float32{0.1, 0.2, 0.3}
	embedder.EXPECT().EmbedQuery(ctx, "what is the refund policy?").Return(vector, nil)
	store.EXPECT().Search(ctx, "docqa-documents", vector, 2).Return([]vectorstore.SearchResult{
		{Entry: vectorstore.Entry{Text: "refunds within 30 days", Source: "policy.pdf", Page: 4}, Score: 0.93},
		{Entry: vectorstore.Entry{Text: "contact support first", Source: "faq.pdf", Page: 1}, Score: 0.71},
	}, nil)

	passages, err := r.Retrieve(ctx, "what is the refund policy?", 2)
	if err != nil {
		t.Fatalf("Retrieve() error: %v", err)
	}
	if len(passages) != 2 {
		t.Fatalf("got %d passages, want 2", len(passages))
	}
	if passages[0].Rank != 0 || passages[1].Rank != 1 {
		t.Errorf("ranks = %d, %d, want 0, 1", passages[0].Rank, passages[1].Rank)
	}
	if passages[0].Score < passages[1].Score {
		t.Errorf("passages not in descending score order: %+v", passages)
	}
	if passages[0].Source != "policy.pdf" || passages[0].Page != 4 {
		t.Errorf("top passage lost provenance: %+v", passages[0])
	}
}

func TestRetrieveMissingIndexMeansNoPassages(t *testing.T) {
	r, embedder, store := newTestRetriever(t)
	ctx := context.Background()

	embedder.EXPECT().EmbedQuery(ctx, gomock.Any()).Return([]float32{0.5}, nil)
	store.EXPECT().Search(ctx, "docqa-documents", gomock.Any(), 5).Return(nil, service.ErrNotFound)

	passages, err := r.Retrieve(ctx, "anything yet?", 0)
	if err != nil {
		t.Fatalf("Retrieve() error: %v", err)
	}
	if len(passages) != 0 {
		t.Errorf("got %d passages, want 0", len(passages))
	}
}

func TestRetrieveKDefaults(t *testing.T) {
	tests := []struct {
		name  string
		k     int
		wantK int
	}{
		{"zero falls back to default", 0, 5},
		{"negative falls back to default", -3, 5},
		{"explicit k passes through", 7, 7},
		{"excessive k is capped", 100, maxK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, embedder, store := newTestRetriever(t)
			ctx := context.Background()

			embedder.EXPECT().EmbedQuery(ctx, gomock.Any()).Return([]float32{0.5}, nil)
			store.EXPECT().Search(ctx, "docqa-documents", gomock.Any(), tt.wantK).Return(nil, nil)

			if _, err := r.Retrieve(ctx, "q", tt.k); err != nil {
				t.Fatalf("Retrieve() error: %v", err)
			}
		})
	}
}

func TestRetrieveEmbedFailure(t *testing.T) {
	r, embedder, _ := newTestRetriever(t)
	ctx := context.Background()

	embedder.EXPECT().EmbedQuery(ctx, gomock.Any()).Return(nil, service.ErrQuota)

	_, err := r.Retrieve(ctx, "q", 3)
	if !errors.Is(err, service.ErrQuota) {
		t.Errorf("got %v, want ErrQuota", err)
	}
}

func TestRetrieveSearchFailure(t *testing.T) {
	r, embedder, store := newTestRetriever(t)
	ctx := context.Background()

	embedder.EXPECT().EmbedQuery(ctx, gomock.Any()).Return([]float32{0.5}, nil)
	store.EXPECT().Search(ctx, "docqa-documents", gomock.Any(), 5).Return(nil, service.ErrConnection)

	_, err := r.Retrieve(ctx, "q", 0)
	if !errors.Is(err, service.ErrConnection) {
		t.Errorf("got %v, want ErrConnection", err)
	}
}
