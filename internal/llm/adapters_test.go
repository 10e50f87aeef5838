package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIAdapterExtractsMessageContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"choices":[{"message":{"content":"hello from gpt"}}]}`)
	}))
	defer srv.Close()

	a := NewOpenAIAdapterWithBaseURL("test-key", srv.URL)
	text, err := a.Invoke(context.Background(), "gpt-4", "prompt", 2000, 0.7)
	require.NoError(t, err)
	assert.Equal(t, "hello from gpt", text)
}

func TestOpenAIAdapterVendorError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"invalid api key","type":"auth_error"}}`)
	}))
	defer srv.Close()

	a := NewOpenAIAdapterWithBaseURL("bad-key", srv.URL)
	_, err := a.Invoke(context.Background(), "gpt-4", "prompt", 2000, 0.7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestOpenAIAdapterEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	}))
	defer srv.Close()

	a := NewOpenAIAdapterWithBaseURL("test-key", srv.URL)
	_, err := a.Invoke(context.Background(), "gpt-4", "prompt", 2000, 0.7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestAnthropicAdapterJoinsTextBlocks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersionHeader, r.Header.Get("anthropic-version"))
		fmt.Fprint(w, `{"content":[{"type":"text","text":"part one "},{"type":"text","text":"part two"}]}`)
	}))
	defer srv.Close()

	a := NewAnthropicAdapterWithBaseURL("test-key", srv.URL)
	text, err := a.Invoke(context.Background(), "claude-3-sonnet-20240229", "prompt", 2000, 0.7)
	require.NoError(t, err)
	assert.Equal(t, "part one part two", text)
}

func TestAnthropicAdapterNoTextContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"content":[]}`)
	}))
	defer srv.Close()

	a := NewAnthropicAdapterWithBaseURL("test-key", srv.URL)
	_, err := a.Invoke(context.Background(), "claude-3-sonnet-20240229", "prompt", 2000, 0.7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no text content")
}

func TestCohereAdapterExtractsGeneration(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"generations":[{"text":"command says hi"}]}`)
	}))
	defer srv.Close()

	a := NewCohereAdapterWithBaseURL("test-key", srv.URL)
	text, err := a.Invoke(context.Background(), "command", "prompt", 2000, 0.7)
	require.NoError(t, err)
	assert.Equal(t, "command says hi", text)
}

func TestCohereAdapterVendorError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"message":"trial key exhausted"}`)
	}))
	defer srv.Close()

	a := NewCohereAdapterWithBaseURL("test-key", srv.URL)
	_, err := a.Invoke(context.Background(), "command", "prompt", 2000, 0.7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trial key exhausted")
}

func TestAdapterContextCancellation(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := NewOpenAIAdapterWithBaseURL("test-key", srv.URL)
	_, err := a.Invoke(ctx, "gpt-4", "prompt", 2000, 0.7)
	require.Error(t, err)
}
