package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/profile-optimizer/internal/invoker"
	"github.com/jonathan/profile-optimizer/internal/llm"
	"github.com/jonathan/profile-optimizer/internal/ratelimit"
	"github.com/jonathan/profile-optimizer/internal/selection"
	"github.com/jonathan/profile-optimizer/internal/session"
)

// HTTPStatus returns the appropriate HTTP status code for a pipeline error.
func HTTPStatus(err error) int {
	var (
		rateLimited   *ratelimit.ErrRateLimited
		unavailable   *selection.ErrProviderUnavailable
		noProvider    *selection.ErrNoProviderConfigured
		promptTooBig  *invoker.ErrPromptTooLarge
		providerError *llm.ErrProvider
		busy          *session.ErrSessionBusy
		duplicate     *session.ErrDuplicateSession
		notFound      *session.ErrNotFound
	)

	switch {
	case errors.As(err, &rateLimited):
		return http.StatusTooManyRequests
	case errors.As(err, &unavailable), errors.As(err, &noProvider):
		return http.StatusServiceUnavailable
	case errors.As(err, &promptTooBig):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &providerError):
		return http.StatusBadGateway
	case errors.As(err, &busy), errors.As(err, &duplicate):
		return http.StatusConflict
	case errors.As(err, &notFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
