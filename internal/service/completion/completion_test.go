package completion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAIProviderComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization header: %s", got)
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if req.Model != "test-model" {
			t.Errorf("unexpected model: %s", req.Model)
		}
		if req.Temperature != 0.2 {
			t.Errorf("unexpected temperature: %f", req.Temperature)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}

		if err := json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": `{"decision": "ESCALATE"}`}},
			},
		}); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
	defer server.Close()

	p := NewOpenAIProvider(server.URL, "test-key", "test-model")
	out, err := p.Complete(context.Background(), "system prompt", "user prompt", 0.2)
	if err != nil {
		t.Fatal(err)
	}
	if out != `{"decision": "ESCALATE"}` {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestOpenAIProviderCompleteAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "rate limit exceeded", "type": "rate_limit_error"}}`))
	}))
	defer server.Close()

	p := NewOpenAIProvider(server.URL, "key", "test-model")
	_, err := p.Complete(context.Background(), "s", "u", 0.2)
	if err == nil {
		t.Fatal("expected error for rate limit response")
	}
}

func TestOpenAIProviderCompleteEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	p := NewOpenAIProvider(server.URL, "key", "test-model")
	_, err := p.Complete(context.Background(), "s", "u", 0.2)
	if err == nil {
		t.Fatal("expected error for empty choices")
	}
}
