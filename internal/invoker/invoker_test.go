package invoker

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/profile-optimizer/internal/llm"
	"github.com/jonathan/profile-optimizer/internal/ratelimit"
	"github.com/jonathan/profile-optimizer/internal/selection"
)

// fakeAdapter is a controllable llm.Adapter for invoker tests.
type fakeAdapter struct {
	provider llm.Provider
	response string
	err      error
	delay    time.Duration
	calls    int
}

func (f *fakeAdapter) Provider() llm.Provider { return f.provider }

func (f *fakeAdapter) Invoke(ctx context.Context, _, _ string, _ int, _ float32) (string, error) {
	f.calls++
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.response, f.err
}

func (f *fakeAdapter) Close() error { return nil }

func openAISelection() selection.Selection {
	return selection.Selection{Provider: llm.ProviderOpenAI, Model: "gpt-4"}
}

func newTestInvoker(adapter llm.Adapter, timeout time.Duration) *Invoker {
	reg := llm.NewRegistry(adapter)
	limiter := ratelimit.NewLimiter(ratelimit.DefaultCapacity, ratelimit.DefaultWindow)
	return New(reg, limiter, timeout, zap.NewNop())
}

func TestInvokeReturnsAdapterText(t *testing.T) {
	adapter := &fakeAdapter{provider: llm.ProviderOpenAI, response: `{"ok":true}`}
	iv := newTestInvoker(adapter, time.Second)

	text, err := iv.Invoke(context.Background(), openAISelection(), "prompt", "client")
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, text)
	assert.Equal(t, 1, adapter.calls)
}

func TestInvokeRejectsOversizedPromptWithoutCallingVendor(t *testing.T) {
	adapter := &fakeAdapter{provider: llm.ProviderOpenAI, response: "unused"}
	iv := newTestInvoker(adapter, time.Second)

	prompt := strings.Repeat("x", selection.PromptCeiling("gpt-4")+1)
	_, err := iv.Invoke(context.Background(), openAISelection(), prompt, "client")

	var tooLarge *ErrPromptTooLarge
	require.ErrorAs(t, err, &tooLarge)
	assert.Equal(t, "gpt-4", tooLarge.Model)
	assert.Zero(t, adapter.calls, "vendor must never be contacted for an oversized prompt")
}

func TestInvokePropagatesRateLimit(t *testing.T) {
	adapter := &fakeAdapter{provider: llm.ProviderOpenAI, response: "ok"}
	reg := llm.NewRegistry(adapter)
	limiter := ratelimit.NewLimiter(1, time.Minute)
	iv := New(reg, limiter, time.Second, zap.NewNop())

	_, err := iv.Invoke(context.Background(), openAISelection(), "p", "client")
	require.NoError(t, err)

	_, err = iv.Invoke(context.Background(), openAISelection(), "p", "client")
	var limited *ratelimit.ErrRateLimited
	require.ErrorAs(t, err, &limited)
	assert.Equal(t, 1, adapter.calls)
}

func TestInvokeWrapsAdapterFailure(t *testing.T) {
	adapter := &fakeAdapter{provider: llm.ProviderOpenAI, err: errors.New("connection refused")}
	iv := newTestInvoker(adapter, time.Second)

	_, err := iv.Invoke(context.Background(), openAISelection(), "p", "client")
	var provErr *llm.ErrProvider
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, llm.ProviderOpenAI, provErr.Provider)
	assert.Contains(t, provErr.Error(), "connection refused")
}

func TestInvokeTimesOutSlowAdapter(t *testing.T) {
	adapter := &fakeAdapter{provider: llm.ProviderOpenAI, response: "late", delay: 500 * time.Millisecond}
	iv := newTestInvoker(adapter, 20*time.Millisecond)

	start := time.Now()
	_, err := iv.Invoke(context.Background(), openAISelection(), "p", "client")
	elapsed := time.Since(start)

	var provErr *llm.ErrProvider
	require.ErrorAs(t, err, &provErr)
	assert.Contains(t, provErr.Error(), "timeout")
	assert.Less(t, elapsed, 400*time.Millisecond, "caller must not wait for the slow call")
}

func TestInvokeUnregisteredProvider(t *testing.T) {
	adapter := &fakeAdapter{provider: llm.ProviderCohere}
	iv := newTestInvoker(adapter, time.Second)

	_, err := iv.Invoke(context.Background(), openAISelection(), "p", "client")
	var provErr *llm.ErrProvider
	require.ErrorAs(t, err, &provErr)
	assert.Contains(t, provErr.Error(), "no adapter registered")
}

func TestInvokeCancelledCallerContext(t *testing.T) {
	adapter := &fakeAdapter{provider: llm.ProviderOpenAI, response: "late", delay: time.Second}
	iv := newTestInvoker(adapter, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := iv.Invoke(ctx, openAISelection(), "p", "client")
	require.ErrorIs(t, err, context.Canceled)
}
