package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultCohereURL = "https://api.cohere.ai/v1/generate"

// CohereAdapter calls the Cohere generate API.
type CohereAdapter struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewCohereAdapter creates an adapter for the Cohere API.
func NewCohereAdapter(apiKey string) *CohereAdapter {
	return &CohereAdapter{
		apiKey:     apiKey,
		baseURL:    defaultCohereURL,
		httpClient: &http.Client{},
	}
}

// NewCohereAdapterWithBaseURL creates an adapter pointed at a custom endpoint.
func NewCohereAdapterWithBaseURL(apiKey, baseURL string) *CohereAdapter {
	a := NewCohereAdapter(apiKey)
	a.baseURL = baseURL
	return a
}

// Provider returns ProviderCohere.
func (a *CohereAdapter) Provider() Provider { return ProviderCohere }

type cohereRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float32 `json:"temperature"`
}

type cohereResponse struct {
	Generations []struct {
		Text string `json:"text"`
	} `json:"generations"`
	Message string `json:"message"`
}

// Invoke sends the prompt and extracts the first generation's text.
func (a *CohereAdapter) Invoke(ctx context.Context, model, prompt string, maxTokens int, temperature float32) (string, error) {
	body, err := json.Marshal(cohereRequest{
		Model:       model,
		Prompt:      prompt,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var parsed cohereResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("malformed response envelope: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Message != "" {
			return "", fmt.Errorf("vendor error (status %d): %s", resp.StatusCode, parsed.Message)
		}
		return "", fmt.Errorf("vendor error (status %d)", resp.StatusCode)
	}
	if len(parsed.Generations) == 0 {
		return "", fmt.Errorf("no generations in response")
	}

	return parsed.Generations[0].Text, nil
}

// Close is a no-op; the adapter holds no persistent connection state.
func (a *CohereAdapter) Close() error { return nil }
