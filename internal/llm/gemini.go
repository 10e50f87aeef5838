package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiAdapter calls the Google Gemini API through the official SDK.
type GeminiAdapter struct {
	client *genai.Client
}

// NewGeminiAdapter creates an adapter backed by a shared Gemini client.
func NewGeminiAdapter(ctx context.Context, apiKey string) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiAdapter{client: client}, nil
}

// Provider returns ProviderGoogle.
func (a *GeminiAdapter) Provider() Provider { return ProviderGoogle }

// Invoke generates content with the given model and extracts the text parts
// from the candidate response.
func (a *GeminiAdapter) Invoke(ctx context.Context, model, prompt string, maxTokens int, temperature float32) (string, error) {
	m := a.client.GenerativeModel(model)
	m.SetTemperature(temperature)
	m.SetMaxOutputTokens(int32(maxTokens))

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return extractGeminiText(resp)
}

// Close releases resources held by the underlying client.
func (a *GeminiAdapter) Close() error {
	if a.client != nil {
		return a.client.Close()
	}
	return nil
}

// extractGeminiText extracts text from a Gemini API response envelope.
func extractGeminiText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}
