// Package completion provides chat-completion text generation.
//
// The Provider contract makes no promise that the returned text is
// well-formed JSON; callers that expect structured output must parse
// defensively.
package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Provider generates a completion from a system prompt and a user prompt.
type Provider interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error)
}

// OpenAIProvider generates completions using the OpenAI chat API.
type OpenAIProvider struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewOpenAIProvider creates a new OpenAI completion provider. An empty
// baseURL defaults to the public API endpoint.
func NewOpenAIProvider(baseURL, apiKey, model string) *OpenAIProvider {
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	return &OpenAIProvider{
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete sends a two-message chat request and returns the raw model text.
func (p *OpenAIProvider) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error) {
	reqBody, err := json.Marshal(chatRequest{
		Model:       p.model,
		Temperature: temperature,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("completion: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("completion: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion: send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("completion: read response: %w", err)
	}

	var result chatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("completion: unmarshal response: %w", err)
	}

	if result.Error != nil {
		return "", fmt.Errorf("completion: openai error: %s: %s", result.Error.Type, result.Error.Message)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("completion: empty choices in response")
	}

	return result.Choices[0].Message.Content, nil
}
