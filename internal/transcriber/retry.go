package transcriber

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"chunkscribe/internal/audio"
)

const (
	defaultRetryAttempts  = 3
	defaultRetryBaseDelay = time.Second
	defaultCallTimeout    = 2 * time.Minute
	maxRetryDelay         = 10 * time.Second
)

// sleeper abstracts backoff waits so tests can observe delays without waiting.
type sleeper func(ctx context.Context, d time.Duration) error

// retryAdapter wraps a backend adapter with a per-call timeout and bounded
// exponential backoff. Timeouts, 429s, and transient faults are retried;
// everything else fails immediately. Every returned error is a *CallError.
type retryAdapter struct {
	inner       Adapter
	attempts    int
	baseDelay   time.Duration
	callTimeout time.Duration
	sleep       sleeper
}

func newRetryAdapter(inner Adapter, config Config) *retryAdapter {
	r := &retryAdapter{
		inner:       inner,
		attempts:    config.RetryAttempts,
		baseDelay:   config.RetryBaseDelay,
		callTimeout: config.CallTimeout,
		sleep:       sleepContext,
	}
	if r.attempts <= 0 {
		r.attempts = defaultRetryAttempts
	}
	if r.baseDelay <= 0 {
		r.baseDelay = defaultRetryBaseDelay
	}
	if r.callTimeout <= 0 {
		r.callTimeout = defaultCallTimeout
	}
	return r
}

func (r *retryAdapter) Transcribe(ctx context.Context, chunk audio.Chunk, reqCtx Context, modelID string) (Transcription, error) {
	var lastErr error
	var lastKind FailureKind

	delay := r.baseDelay
	for attempt := 1; attempt <= r.attempts; attempt++ {
		if attempt > 1 {
			log.Printf("transcriber: chunk %d attempt %d/%d after %v (%v)", chunk.Index, attempt, r.attempts, delay, lastErr)
			if err := r.sleep(ctx, delay); err != nil {
				return Transcription{}, &CallError{Kind: FailureCancelled, Err: err}
			}
			delay *= 2
			if delay > maxRetryDelay {
				delay = maxRetryDelay
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
		out, err := r.inner.Transcribe(callCtx, chunk, reqCtx, modelID)
		cancel()
		if err == nil {
			return out, nil
		}

		kind := classify(err)
		if kind == FailureTimeout && ctx.Err() == context.Canceled {
			// the per-call deadline fired because the caller went away
			kind = FailureCancelled
		}
		lastErr, lastKind = err, kind

		if !kindRetryable(kind) {
			return Transcription{}, &CallError{Kind: kind, Err: err}
		}
		if ctx.Err() != nil {
			return Transcription{}, &CallError{Kind: FailureCancelled, Err: ctx.Err()}
		}

		// a server-requested wait wins over the computed backoff, even past
		// the cap
		if ra := retryAfterHint(err); ra > delay {
			delay = ra
		}
	}

	return Transcription{}, &CallError{
		Kind: lastKind,
		Err:  fmt.Errorf("failed after %d attempts: %w", r.attempts, lastErr),
	}
}

// retryAfterHint extracts the Retry-After wait carried by a rate-limit
// response, or 0 when the error has none.
func retryAfterHint(err error) time.Duration {
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return statusErr.RetryAfter
	}
	return 0
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
