package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"github.com/anthropics/anthropic-sdk-go"
)

// StatusError is a non-200 reply from an OpenAI-compatible endpoint.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: http %d: %s", e.Provider, e.StatusCode, e.Body)
}

// Temporary reports rate limiting, request timeouts and server errors.
func (e *StatusError) Temporary() bool {
	return temporaryStatus(e.StatusCode)
}

func temporaryStatus(code int) bool {
	return code == http.StatusTooManyRequests || code == http.StatusRequestTimeout || code >= 500
}

// IsRetryable reports whether a generation error is worth another attempt:
// rate limits, server errors, timeouts and broken connections. Bad keys,
// bad requests and cancellation are not.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return temporaryStatus(apiErr.StatusCode)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
