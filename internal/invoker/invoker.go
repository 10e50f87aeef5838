// Package invoker calls a selected provider adapter under rate limiting and
// a hard timeout, returning raw response text or a typed failure.
package invoker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/profile-optimizer/internal/llm"
	"github.com/jonathan/profile-optimizer/internal/ratelimit"
	"github.com/jonathan/profile-optimizer/internal/selection"
)

// Generation parameters applied to every provider call.
const (
	MaxTokens   = 2000
	Temperature = 0.7
)

// DefaultTimeout bounds the wall-clock time of a single provider call.
const DefaultTimeout = 45 * time.Second

// ErrPromptTooLarge indicates the prompt exceeds the selected model's fixed
// context ceiling. The vendor is never contacted in this case.
type ErrPromptTooLarge struct {
	Model string
	Size  int
	Limit int
}

func (e *ErrPromptTooLarge) Error() string {
	return fmt.Sprintf("prompt of %d chars exceeds %s ceiling of %d", e.Size, e.Model, e.Limit)
}

// Invoker dispatches prompts to provider adapters.
type Invoker struct {
	registry *llm.Registry
	limiter  *ratelimit.Limiter
	timeout  time.Duration
	logger   *zap.Logger
}

// New creates an invoker over the given registry and limiter. A
// non-positive timeout falls back to DefaultTimeout.
func New(registry *llm.Registry, limiter *ratelimit.Limiter, timeout time.Duration, logger *zap.Logger) *Invoker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Invoker{
		registry: registry,
		limiter:  limiter,
		timeout:  timeout,
		logger:   logger.Named("invoker"),
	}
}

type invokeResult struct {
	text string
	err  error
}

// Invoke sends the prompt to the selected provider on behalf of the caller
// identity. It fails with ErrPromptTooLarge before contacting any vendor,
// propagates rate limiting unchanged, and maps every adapter-level failure
// (including timeout) to llm.ErrProvider. Retry policy belongs to the
// caller; none is applied here.
func (iv *Invoker) Invoke(ctx context.Context, sel selection.Selection, prompt, identity string) (string, error) {
	if limit := selection.PromptCeiling(sel.Model); limit > 0 && len(prompt) > limit {
		return "", &ErrPromptTooLarge{Model: sel.Model, Size: len(prompt), Limit: limit}
	}

	if err := iv.limiter.TryConsume(identity); err != nil {
		return "", err
	}

	adapter, ok := iv.registry.Get(sel.Provider)
	if !ok {
		return "", &llm.ErrProvider{Provider: sel.Provider, Cause: fmt.Errorf("no adapter registered")}
	}

	callCtx, cancel := context.WithTimeout(ctx, iv.timeout)
	defer cancel()

	resultCh := make(chan invokeResult, 1)
	go func() {
		text, err := adapter.Invoke(callCtx, sel.Model, prompt, MaxTokens, Temperature)
		resultCh <- invokeResult{text: text, err: err}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil {
			if callCtx.Err() == context.DeadlineExceeded {
				return "", &llm.ErrProvider{Provider: sel.Provider, Cause: fmt.Errorf("timeout after %s", iv.timeout)}
			}
			return "", &llm.ErrProvider{Provider: sel.Provider, Cause: res.err}
		}
		return res.text, nil
	case <-callCtx.Done():
		// The underlying call may still complete; observe and discard it so
		// a late response never reaches session state.
		go func() {
			res := <-resultCh
			iv.logger.Debug("discarded late provider response",
				zap.String("provider", string(sel.Provider)),
				zap.String("model", sel.Model),
				zap.Bool("succeeded", res.err == nil))
		}()
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &llm.ErrProvider{Provider: sel.Provider, Cause: fmt.Errorf("timeout after %s", iv.timeout)}
	}
}
