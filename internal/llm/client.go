package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// Client is a client for the Yandex Foundation Models completion API.
type Client struct {
	BaseURL     string
	APIKey      string
	ModelURI    string
	Temperature float32
	MaxTokens   int
	limiter     *rate.Limiter
	client      *http.Client
}

// ModelURIForTier composes the completion model URI for a tier.
// "lite" selects the lightweight model, anything else the full one.
func ModelURIForTier(folderID, tier string) string {
	model := "yandexgpt"
	if tier == "lite" {
		model = "yandexgpt-lite"
	}
	return fmt.Sprintf("gpt://%s/%s/latest", folderID, model)
}

// NewClient creates a new completion client with fixed generation parameters.
func NewClient(baseURL, apiKey, modelURI string, temperature float32, maxTokens int, rps float64, timeout time.Duration) *Client {
	return &Client{
		BaseURL:     baseURL,
		APIKey:      apiKey,
		ModelURI:    modelURI,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		limiter:     rate.NewLimiter(rate.Limit(rps), 1),
		client:      &http.Client{Timeout: timeout},
	}
}

// completionMessage is a single message in a completion request.
type completionMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// completionOptions holds generation parameters.
// MaxTokens is a string per the API schema.
type completionOptions struct {
	Stream      bool    `json:"stream"`
	Temperature float32 `json:"temperature"`
	MaxTokens   string  `json:"maxTokens"`
}

// completionRequest is the request payload for the completion API.
type completionRequest struct {
	ModelURI          string              `json:"modelUri"`
	CompletionOptions completionOptions   `json:"completionOptions"`
	Messages          []completionMessage `json:"messages"`
}

// completionResponse is the response from the completion API.
type completionResponse struct {
	Result struct {
		Alternatives []struct {
			Message struct {
				Role string `json:"role"`
				Text string `json:"text"`
			} `json:"message"`
			Status string `json:"status"`
		} `json:"alternatives"`
	} `json:"result"`
}

// Complete sends a single-turn completion request and returns the generated text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	url := fmt.Sprintf("%s/foundationModels/v1/completion", c.BaseURL)

	payload := completionRequest{
		ModelURI: c.ModelURI,
		CompletionOptions: completionOptions{
			Stream:      false,
			Temperature: c.Temperature,
			MaxTokens:   strconv.Itoa(c.MaxTokens),
		},
		Messages: []completionMessage{
			{Role: "user", Text: prompt},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Api-Key %s", c.APIKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", translateSendError(err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", translateStatus(resp.StatusCode, resp.Body)
	}

	var compResp completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&compResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(compResp.Result.Alternatives) == 0 {
		return "", fmt.Errorf("no alternatives returned")
	}

	return compResp.Result.Alternatives[0].Message.Text, nil
}
