package transcriber

import (
	"context"
	"errors"
	"testing"
	"time"

	"chunkscribe/internal/audio"
)

// instantSleeper records requested delays instead of waiting.
func instantSleeper(delays *[]time.Duration) sleeper {
	return func(ctx context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return ctx.Err()
	}
}

func newTestRetryAdapter(inner Adapter, attempts int) (*retryAdapter, *[]time.Duration) {
	delays := &[]time.Duration{}
	r := newRetryAdapter(inner, Config{
		RetryAttempts:  attempts,
		RetryBaseDelay: time.Second,
		CallTimeout:    time.Minute,
	})
	r.sleep = instantSleeper(delays)
	return r, delays
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	inner := &mockAdapter{
		TranscribeFunc: func(ctx context.Context, chunk audio.Chunk, reqCtx Context, modelID string) (Transcription, error) {
			calls++
			if calls < 3 {
				return Transcription{}, &httpStatusError{StatusCode: 503, Body: "overloaded"}
			}
			return Transcription{Text: "done"}, nil
		},
	}

	r, delays := newTestRetryAdapter(inner, 3)
	out, err := r.Transcribe(context.Background(), testChunk(), Context{}, "m")
	if err != nil {
		t.Fatalf("Transcribe() error: %v", err)
	}
	if out.Text != "done" {
		t.Errorf("text = %q, want done", out.Text)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	// backoff doubles: 1s then 2s
	want := []time.Duration{time.Second, 2 * time.Second}
	if len(*delays) != len(want) {
		t.Fatalf("delays = %v, want %v", *delays, want)
	}
	for i, d := range want {
		if (*delays)[i] != d {
			t.Errorf("delay %d = %v, want %v", i, (*delays)[i], d)
		}
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	inner := &mockAdapter{
		TranscribeFunc: func(ctx context.Context, chunk audio.Chunk, reqCtx Context, modelID string) (Transcription, error) {
			calls++
			return Transcription{}, &httpStatusError{StatusCode: 429}
		},
	}

	r, _ := newTestRetryAdapter(inner, 3)
	_, err := r.Transcribe(context.Background(), testChunk(), Context{}, "m")
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if KindOf(err) != FailureRateLimited {
		t.Errorf("kind = %q, want rate_limited", KindOf(err))
	}
}

func TestRetryStopsOnNonRetryable(t *testing.T) {
	calls := 0
	inner := &mockAdapter{
		TranscribeFunc: func(ctx context.Context, chunk audio.Chunk, reqCtx Context, modelID string) (Transcription, error) {
			calls++
			return Transcription{}, &httpStatusError{StatusCode: 400, Body: "bad audio"}
		},
	}

	r, _ := newTestRetryAdapter(inner, 3)
	_, err := r.Transcribe(context.Background(), testChunk(), Context{}, "m")
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retries on non-retryable)", calls)
	}
	if KindOf(err) != FailureNonRetryable {
		t.Errorf("kind = %q, want non_retryable", KindOf(err))
	}
}

func TestRetryStopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	inner := &mockAdapter{
		TranscribeFunc: func(ctx context.Context, chunk audio.Chunk, reqCtx Context, modelID string) (Transcription, error) {
			cancel()
			return Transcription{}, &httpStatusError{StatusCode: 503}
		},
	}

	r, _ := newTestRetryAdapter(inner, 5)
	_, err := r.Transcribe(ctx, testChunk(), Context{}, "m")
	if err == nil {
		t.Fatal("expected error")
	}
	if KindOf(err) != FailureCancelled {
		t.Errorf("kind = %q, want cancelled", KindOf(err))
	}

	var callErr *CallError
	if !errors.As(err, &callErr) {
		t.Error("error should be a *CallError")
	}
}

func TestRetryHonorsRetryAfter(t *testing.T) {
	calls := 0
	inner := &mockAdapter{
		TranscribeFunc: func(ctx context.Context, chunk audio.Chunk, reqCtx Context, modelID string) (Transcription, error) {
			calls++
			if calls == 1 {
				return Transcription{}, &httpStatusError{StatusCode: 429, RetryAfter: 5 * time.Second}
			}
			return Transcription{Text: "done"}, nil
		},
	}

	r, delays := newTestRetryAdapter(inner, 3)
	if _, err := r.Transcribe(context.Background(), testChunk(), Context{}, "m"); err != nil {
		t.Fatalf("Transcribe() error: %v", err)
	}
	// server asked for 5s, overriding the 1s computed backoff
	if len(*delays) != 1 || (*delays)[0] != 5*time.Second {
		t.Errorf("delays = %v, want [5s]", *delays)
	}
}

func TestRetryIgnoresShortRetryAfter(t *testing.T) {
	calls := 0
	inner := &mockAdapter{
		TranscribeFunc: func(ctx context.Context, chunk audio.Chunk, reqCtx Context, modelID string) (Transcription, error) {
			calls++
			if calls == 1 {
				return Transcription{}, &httpStatusError{StatusCode: 429, RetryAfter: 100 * time.Millisecond}
			}
			return Transcription{}, nil
		},
	}

	r, delays := newTestRetryAdapter(inner, 3)
	if _, err := r.Transcribe(context.Background(), testChunk(), Context{}, "m"); err != nil {
		t.Fatalf("Transcribe() error: %v", err)
	}
	// a hint shorter than the computed backoff does not shrink the wait
	if len(*delays) != 1 || (*delays)[0] != time.Second {
		t.Errorf("delays = %v, want [1s]", *delays)
	}
}

func TestRetryDelayCapped(t *testing.T) {
	inner := &mockAdapter{
		TranscribeFunc: func(ctx context.Context, chunk audio.Chunk, reqCtx Context, modelID string) (Transcription, error) {
			return Transcription{}, &httpStatusError{StatusCode: 503}
		},
	}

	r, delays := newTestRetryAdapter(inner, 7)
	_, _ = r.Transcribe(context.Background(), testChunk(), Context{}, "m")

	for _, d := range *delays {
		if d > maxRetryDelay {
			t.Errorf("delay %v exceeds cap %v", d, maxRetryDelay)
		}
	}
	if last := (*delays)[len(*delays)-1]; last != maxRetryDelay {
		t.Errorf("last delay = %v, want cap %v", last, maxRetryDelay)
	}
}

func TestRetryDefaults(t *testing.T) {
	r := newRetryAdapter(&mockAdapter{}, Config{})
	if r.attempts != defaultRetryAttempts {
		t.Errorf("attempts = %d, want %d", r.attempts, defaultRetryAttempts)
	}
	if r.baseDelay != defaultRetryBaseDelay {
		t.Errorf("base delay = %v, want %v", r.baseDelay, defaultRetryBaseDelay)
	}
	if r.callTimeout != defaultCallTimeout {
		t.Errorf("call timeout = %v, want %v", r.callTimeout, defaultCallTimeout)
	}
}
