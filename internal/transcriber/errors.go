package transcriber

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

// FailureKind classifies how a transcription call failed.
type FailureKind string

const (
	// FailureTimeout: the per-call deadline elapsed.
	FailureTimeout FailureKind = "timeout"
	// FailureRateLimited: the backend returned 429.
	FailureRateLimited FailureKind = "rate_limited"
	// FailureRetryable: a transient fault (5xx, network error) worth retrying.
	FailureRetryable FailureKind = "retryable"
	// FailureNonRetryable: the call can never succeed as issued (4xx, bad audio).
	FailureNonRetryable FailureKind = "non_retryable"
	// FailureCancelled: the caller gave up before the call completed.
	FailureCancelled FailureKind = "cancelled"
)

// CallError is the single error type the adapter layer surfaces: the
// underlying fault plus its classification.
type CallError struct {
	Kind FailureKind
	Err  error
}

func (e *CallError) Error() string {
	if e == nil || e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *CallError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// KindOf extracts the failure kind from an adapter error, classifying raw
// errors that were not wrapped yet.
func KindOf(err error) FailureKind {
	var callErr *CallError
	if errors.As(err, &callErr) {
		return callErr.Kind
	}
	return classify(err)
}

// httpStatusError preserves the HTTP response of a failed API call for
// classification. The body is sanitized before it gets here.
type httpStatusError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *httpStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http status %d", e.StatusCode)
	}
	return fmt.Sprintf("http status %d: %s", e.StatusCode, e.Body)
}

func classify(err error) FailureKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled):
		return FailureCancelled
	case errors.Is(err, context.DeadlineExceeded):
		return FailureTimeout
	}

	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return classifyStatus(statusErr.StatusCode)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.HTTPStatusCode)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return FailureTimeout
		}
		return FailureRetryable
	}

	return FailureNonRetryable
}

func classifyStatus(code int) FailureKind {
	switch {
	case code == http.StatusTooManyRequests:
		return FailureRateLimited
	case code == http.StatusRequestTimeout:
		return FailureTimeout
	case code >= 500:
		return FailureRetryable
	default:
		return FailureNonRetryable
	}
}

func kindRetryable(kind FailureKind) bool {
	switch kind {
	case FailureTimeout, FailureRateLimited, FailureRetryable:
		return true
	}
	return false
}
