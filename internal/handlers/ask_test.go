package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"docqa-ai/internal/rag"
	ragmocks "docqa-ai/internal/rag/mocks"
	"docqa-ai/internal/service"
)

func doAsk(t *testing.T, engine rag.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ask", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	NewAskHandler(engine).ServeHTTP(rr, req)
	return rr
}

func TestAskSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	engine := ragmocks.NewMockEngine(ctrl)

	engine.EXPECT().Ask(gomock.Any(), rag.AskRequest{Question: "what is covered?", K: 3}).Return(rag.Answer{
		Text: "Water damage is covered.",
		Sources: []rag.Passage{
			{Text: "water damage clause", Source: "policy.pdf", Page: 12, Score: 0.9, Rank: 0},
			{Text: "exclusions", Source: "policy.pdf", Page: 14, Score: 0.7, Rank: 1},
		},
	}, nil)

	rr := doAsk(t, engine, `{"question":"what is covered?","k":3}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}

	var resp AskResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Answer != "Water damage is covered." {
		t.Errorf("answer = %q", resp.Answer)
	}
	if len(resp.Sources) != 2 {
		t.Fatalf("got %d sources, want 2", len(resp.Sources))
	}
	if resp.Sources[0].Rank != 0 || resp.Sources[0].Source != "policy.pdf" || resp.Sources[0].Page != 12 {
		t.Errorf("first source = %+v", resp.Sources[0])
	}
}

func TestAskBadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty question", `{"question":""}`},
		{"missing question", `{}`},
		{"malformed json", `{question`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			engine := ragmocks.NewMockEngine(ctrl)
			// No Ask expectation: invalid input never reaches the engine.

			rr := doAsk(t, engine, tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rr.Code)
			}
		})
	}
}

func TestAskErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"quota exhausted", service.ErrQuota, http.StatusTooManyRequests},
		{"auth rejected", service.ErrAuth, http.StatusBadGateway},
		{"transient upstream", service.ErrTransient, http.StatusBadGateway},
		{"cluster unreachable", service.ErrConnection, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			engine := ragmocks.NewMockEngine(ctrl)
			engine.EXPECT().Ask(gomock.Any(), gomock.Any()).Return(rag.Answer{}, tt.err)

			rr := doAsk(t, engine, `{"question":"q"}`)
			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}

			var resp ErrorResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid error body: %v", err)
			}
			if resp.Error == "" {
				t.Error("error body has no message")
			}
		})
	}
}

func TestAskNegativeKNormalized(t *testing.T) {
	ctrl := gomock.NewController(t)
	engine := ragmocks.NewMockEngine(ctrl)

	engine.EXPECT().Ask(gomock.Any(), rag.AskRequest{Question: "q", K: 0}).Return(rag.Answer{Text: "a"}, nil)

	rr := doAsk(t, engine, `{"question":"q","k":-4}`)
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}
