package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"docqa-ai/internal/service"
)

func TestModelURIForTier(t *testing.T) {
	if got := ModelURIForTier("b1gtest", "lite"); got != "gpt://b1gtest/yandexgpt-lite/latest" {
		t.Errorf("lite tier URI = %q", got)
	}
	if got := ModelURIForTier("b1gtest", "pro"); got != "gpt://b1gtest/yandexgpt/latest" {
		t.Errorf("pro tier URI = %q", got)
	}
}

func TestCompleteSendsConfiguredOptions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Api-Key test-key" {
			t.Errorf("Authorization = %q", got)
		}

		var req completionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.ModelURI != "gpt://b1gtest/yandexgpt/latest" {
			t.Errorf("modelUri = %q", req.ModelURI)
		}
		if req.CompletionOptions.Temperature != 0.1 {
			t.Errorf("temperature = %v", req.CompletionOptions.Temperature)
		}
		if req.CompletionOptions.MaxTokens != "8000" {
			t.Errorf("maxTokens = %q", req.CompletionOptions.MaxTokens)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}

		_, _ = w.Write([]byte(`{"result":{"alternatives":[{"message":{"role":"assistant","text":"the answer"},"status":"ALTERNATIVE_STATUS_FINAL"}]}}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "test-key", "gpt://b1gtest/yandexgpt/latest", 0.1, 8000, 1000, 5*time.Second)
	answer, err := c.Complete(context.Background(), "question with context")
	if err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if answer != "the answer" {
		t.Errorf("answer = %q", answer)
	}
}

func TestCompleteErrorTranslation(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, service.ErrAuth},
		{"rate limited", http.StatusTooManyRequests, service.ErrQuota},
		{"bad gateway", http.StatusBadGateway, service.ErrTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			c := NewClient(server.URL, "k", "gpt://f/yandexgpt/latest", 0.1, 100, 1000, 5*time.Second)
			_, err := c.Complete(context.Background(), "q")
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCompleteNoAlternatives(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":{"alternatives":[]}}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "k", "gpt://f/yandexgpt/latest", 0.1, 100, 1000, 5*time.Second)
	if _, err := c.Complete(context.Background(), "q"); err == nil {
		t.Fatal("expected an error for empty alternatives")
	}
}
