package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/profile-optimizer/internal/invoker"
	"github.com/jonathan/profile-optimizer/internal/llm"
	"github.com/jonathan/profile-optimizer/internal/parsing"
	"github.com/jonathan/profile-optimizer/internal/pipeline"
	"github.com/jonathan/profile-optimizer/internal/ratelimit"
	"github.com/jonathan/profile-optimizer/internal/selection"
	"github.com/jonathan/profile-optimizer/internal/session"
	"github.com/jonathan/profile-optimizer/internal/store"
	"github.com/jonathan/profile-optimizer/internal/types"
)

const optimizationJSON = `{
	"improvements": [
		{"section": "headline", "current": "a", "optimized": "b", "reasoning": "r", "impact": "high"},
		{"section": "summary", "current": "c", "optimized": "d", "reasoning": "r", "impact": "medium"},
		{"section": "skills", "current": "e", "optimized": "f", "reasoning": "r", "impact": "low"}
	]
}`

type fakeAdapter struct {
	provider llm.Provider
	response string
	err      error
}

func (f *fakeAdapter) Provider() llm.Provider { return f.provider }

func (f *fakeAdapter) Invoke(context.Context, string, string, int, float32) (string, error) {
	return f.response, f.err
}

func (f *fakeAdapter) Close() error { return nil }

func newTestServer(t *testing.T, capacity int, adapters ...llm.Adapter) *Server {
	t.Helper()
	reg := llm.NewRegistry(adapters...)
	limiter := ratelimit.NewLimiter(capacity, time.Minute)
	inv := invoker.New(reg, limiter, time.Second, zap.NewNop())
	svc := pipeline.NewService(reg, inv, parsing.NewParser(zap.NewNop()), session.NewRegistry(session.DefaultTTL), store.Nop{}, zap.NewNop())
	svc.SetStepDelay(0)
	return New(Config{Port: 3002}, svc, reg, zap.NewNop())
}

func doRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	req.RemoteAddr = "203.0.113.10:51000"
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthReportsConfiguredProviders(t *testing.T) {
	s := newTestServer(t, 100,
		&fakeAdapter{provider: llm.ProviderOpenAI},
		&fakeAdapter{provider: llm.ProviderGoogle},
	)

	rec := doRequest(s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status string   `json:"status"`
		Models []string `json:"models"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, []string{"openai", "google"}, body.Models)
}

func TestModelsEndpoint(t *testing.T) {
	s := newTestServer(t, 100, &fakeAdapter{provider: llm.ProviderOpenAI})

	rec := doRequest(s, http.MethodGet, "/api/mcp/models", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body ModelsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Models, 1)
	assert.Equal(t, "gpt-4", body.Models[0].ID)
	assert.Equal(t, "GPT-4", body.Models[0].Name)
}

func TestAnalyzeEndpoint(t *testing.T) {
	raw := `{"overallScore": 82, "sectionScores": {"headline": 90}}`
	s := newTestServer(t, 100, &fakeAdapter{provider: llm.ProviderOpenAI, response: raw})

	rec := doRequest(s, http.MethodPost, "/api/mcp/analyze",
		`{"profileData": {"id": "p1", "headline": "Engineer"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result types.AnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 82, result.OverallScore)
	assert.Equal(t, "p1", result.ProfileID)
}

func TestAnalyzeRejectsMalformedBody(t *testing.T) {
	s := newTestServer(t, 100, &fakeAdapter{provider: llm.ProviderOpenAI})

	rec := doRequest(s, http.MethodPost, "/api/mcp/analyze", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOptimizeEndpointRecomputesScore(t *testing.T) {
	s := newTestServer(t, 100, &fakeAdapter{provider: llm.ProviderOpenAI, response: optimizationJSON})

	rec := doRequest(s, http.MethodPost, "/api/mcp/optimize",
		`{"profileData": {"id": "p1", "headline": "Engineer"}, "mode": "auto"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result types.OptimizationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Len(t, result.Improvements, 3)
	assert.Equal(t, types.ScoreImprovement{Before: 75, After: 84, Increase: 9}, result.ScoreImprovement)
}

func TestOptimizeRejectsBadMode(t *testing.T) {
	s := newTestServer(t, 100, &fakeAdapter{provider: llm.ProviderOpenAI})

	rec := doRequest(s, http.MethodPost, "/api/mcp/optimize",
		`{"profileData": {"id": "p1"}, "mode": "aggressive"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRateLimitedRequestsGet429(t *testing.T) {
	raw := `{"overallScore": 80, "sectionScores": {}}`
	s := newTestServer(t, 1, &fakeAdapter{provider: llm.ProviderOpenAI, response: raw})

	first := doRequest(s, http.MethodPost, "/api/mcp/analyze", `{"profileData": {"id": "p1"}}`)
	require.Equal(t, http.StatusOK, first.Code)

	second := doRequest(s, http.MethodPost, "/api/mcp/analyze", `{"profileData": {"id": "p1"}}`)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestNoProviderConfiguredGets503(t *testing.T) {
	s := newTestServer(t, 100)

	rec := doRequest(s, http.MethodPost, "/api/mcp/analyze", `{"profileData": {"id": "p1"}}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStatusUnknownSessionGets404(t *testing.T) {
	s := newTestServer(t, 100, &fakeAdapter{provider: llm.ProviderOpenAI})

	rec := doRequest(s, http.MethodGet, "/api/mcp/status/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOptimizeStreamEmitsSSE(t *testing.T) {
	s := newTestServer(t, 100, &fakeAdapter{provider: llm.ProviderOpenAI, response: optimizationJSON})

	rec := doRequest(s, http.MethodPost, "/api/mcp/optimize/stream",
		`{"sessionId": "s1", "profileData": {"id": "p1", "headline": "Engineer"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "event: optimization-progress")
	assert.Contains(t, body, `"progress":0`)
	assert.Contains(t, body, `"progress":100`)
	assert.Contains(t, body, "Analyzing profile structure")
	assert.Contains(t, body, "event: optimization-complete")
	assert.Contains(t, body, `"status":"completed"`)
}

func TestOptimizeStreamDuplicateSessionGets409(t *testing.T) {
	s := newTestServer(t, 100, &fakeAdapter{provider: llm.ProviderOpenAI, response: optimizationJSON})

	first := doRequest(s, http.MethodPost, "/api/mcp/optimize/stream",
		`{"sessionId": "s1", "profileData": {"id": "p1"}}`)
	require.Equal(t, http.StatusOK, first.Code)

	second := doRequest(s, http.MethodPost, "/api/mcp/optimize/stream",
		`{"sessionId": "s1", "profileData": {"id": "p1"}}`)
	assert.Equal(t, http.StatusConflict, second.Code)
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"rate limited", &ratelimit.ErrRateLimited{Identity: "a"}, http.StatusTooManyRequests},
		{"provider unavailable", &selection.ErrProviderUnavailable{Provider: llm.ProviderGoogle}, http.StatusServiceUnavailable},
		{"no provider", &selection.ErrNoProviderConfigured{}, http.StatusServiceUnavailable},
		{"prompt too large", &invoker.ErrPromptTooLarge{Model: "gpt-4"}, http.StatusRequestEntityTooLarge},
		{"provider error", &llm.ErrProvider{Provider: llm.ProviderOpenAI, Cause: errors.New("boom")}, http.StatusBadGateway},
		{"session busy", &session.ErrSessionBusy{ID: "s"}, http.StatusConflict},
		{"duplicate session", &session.ErrDuplicateSession{ID: "s"}, http.StatusConflict},
		{"not found", &session.ErrNotFound{ID: "s"}, http.StatusNotFound},
		{"unknown", errors.New("anything"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
