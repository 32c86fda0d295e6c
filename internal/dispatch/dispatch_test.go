package dispatch

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"chunkscribe/internal/audio"
	"chunkscribe/internal/transcriber"
)

// mockAdapter implements transcriber.Adapter for testing
type mockAdapter struct {
	TranscribeFunc func(ctx context.Context, chunk audio.Chunk, reqCtx transcriber.Context, modelID string) (transcriber.Transcription, error)
}

func (m *mockAdapter) Transcribe(ctx context.Context, chunk audio.Chunk, reqCtx transcriber.Context, modelID string) (transcriber.Transcription, error) {
	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, chunk, reqCtx, modelID)
	}
	return transcriber.Transcription{Text: fmt.Sprintf("chunk %d", chunk.Index)}, nil
}

func makeChunks(n int, each time.Duration) []audio.Chunk {
	chunks := make([]audio.Chunk, n)
	for i := range chunks {
		chunks[i] = audio.Chunk{
			Index:       i,
			StartOffset: time.Duration(i) * each,
			EndOffset:   time.Duration(i+1) * each,
			Data:        []byte{byte(i)},
		}
	}
	return chunks
}

func TestDispatchPreservesOrder(t *testing.T) {
	// later chunks finish first: results must still come back in input order
	adapter := &mockAdapter{
		TranscribeFunc: func(ctx context.Context, chunk audio.Chunk, reqCtx transcriber.Context, modelID string) (transcriber.Transcription, error) {
			time.Sleep(time.Duration(10-chunk.Index) * time.Millisecond)
			return transcriber.Transcription{Text: fmt.Sprintf("chunk %d", chunk.Index)}, nil
		},
	}

	c := NewCoordinator(adapter, 4)
	chunks := makeChunks(8, time.Minute)
	results := c.Dispatch(context.Background(), chunks, transcriber.Context{}, "m")

	if len(results) != len(chunks) {
		t.Fatalf("got %d results, want %d", len(results), len(chunks))
	}
	for i, r := range results {
		if r.Index != i {
			t.Errorf("result %d has index %d", i, r.Index)
		}
		if want := fmt.Sprintf("chunk %d", i); r.Transcription.Text != want {
			t.Errorf("result %d text = %q, want %q", i, r.Transcription.Text, want)
		}
		if r.StartOffset != chunks[i].StartOffset || r.EndOffset != chunks[i].EndOffset {
			t.Errorf("result %d offsets [%v,%v], want [%v,%v]", i, r.StartOffset, r.EndOffset, chunks[i].StartOffset, chunks[i].EndOffset)
		}
	}
}

func TestDispatchBoundsConcurrency(t *testing.T) {
	var current, peak int64
	adapter := &mockAdapter{
		TranscribeFunc: func(ctx context.Context, chunk audio.Chunk, reqCtx transcriber.Context, modelID string) (transcriber.Transcription, error) {
			n := atomic.AddInt64(&current, 1)
			for {
				p := atomic.LoadInt64(&peak)
				if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt64(&current, -1)
			return transcriber.Transcription{}, nil
		},
	}

	c := NewCoordinator(adapter, 3)
	c.Dispatch(context.Background(), makeChunks(12, time.Minute), transcriber.Context{}, "m")

	if got := atomic.LoadInt64(&peak); got > 3 {
		t.Errorf("peak concurrency = %d, want at most 3", got)
	}
}

func TestDispatchPartialFailure(t *testing.T) {
	adapter := &mockAdapter{
		TranscribeFunc: func(ctx context.Context, chunk audio.Chunk, reqCtx transcriber.Context, modelID string) (transcriber.Transcription, error) {
			if chunk.Index == 1 {
				return transcriber.Transcription{}, &transcriber.CallError{Kind: transcriber.FailureRateLimited, Err: fmt.Errorf("quota")}
			}
			return transcriber.Transcription{Text: "ok"}, nil
		},
	}

	c := NewCoordinator(adapter, 2)
	results := c.Dispatch(context.Background(), makeChunks(3, time.Minute), transcriber.Context{}, "m")

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3 (batch must complete)", len(results))
	}
	if results[0].Failed() || results[2].Failed() {
		t.Error("healthy chunks should succeed")
	}
	if !results[1].Failed() {
		t.Fatal("chunk 1 should have failed")
	}
	if results[1].FailureKind() != transcriber.FailureRateLimited {
		t.Errorf("failure kind = %q, want rate_limited", results[1].FailureKind())
	}
}

func TestDispatchAllFailuresStillComplete(t *testing.T) {
	adapter := &mockAdapter{
		TranscribeFunc: func(ctx context.Context, chunk audio.Chunk, reqCtx transcriber.Context, modelID string) (transcriber.Transcription, error) {
			return transcriber.Transcription{}, fmt.Errorf("backend down")
		},
	}

	c := NewCoordinator(adapter, 2)
	results := c.Dispatch(context.Background(), makeChunks(4, time.Minute), transcriber.Context{}, "m")

	for i, r := range results {
		if !r.Failed() {
			t.Errorf("result %d should have failed", i)
		}
	}
}

func TestDispatchCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	started := make(chan struct{})
	var once sync.Once
	adapter := &mockAdapter{
		TranscribeFunc: func(callCtx context.Context, chunk audio.Chunk, reqCtx transcriber.Context, modelID string) (transcriber.Transcription, error) {
			once.Do(func() {
				close(started)
				cancel()
			})
			// in-flight call finishes despite the cancelled batch
			time.Sleep(10 * time.Millisecond)
			return transcriber.Transcription{Text: "finished"}, nil
		},
	}

	c := NewCoordinator(adapter, 1)
	chunks := makeChunks(5, time.Minute)
	results := c.Dispatch(ctx, chunks, transcriber.Context{}, "m")
	<-started

	if len(results) != len(chunks) {
		t.Fatalf("got %d results, want %d", len(results), len(chunks))
	}
	if results[0].Failed() {
		t.Errorf("in-flight chunk should have finished, got %v", results[0].Err)
	}

	cancelledCount := 0
	for _, r := range results[1:] {
		if r.Failed() && r.FailureKind() == transcriber.FailureCancelled {
			cancelledCount++
		}
	}
	if cancelledCount == 0 {
		t.Error("expected unstarted chunks to report cancelled results")
	}
}

func TestDispatchCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls int64
	adapter := &mockAdapter{
		TranscribeFunc: func(ctx context.Context, chunk audio.Chunk, reqCtx transcriber.Context, modelID string) (transcriber.Transcription, error) {
			atomic.AddInt64(&calls, 1)
			return transcriber.Transcription{Text: "should not run"}, nil
		},
	}

	c := NewCoordinator(adapter, 5)
	chunks := makeChunks(50, time.Minute)
	results := c.Dispatch(ctx, chunks, transcriber.Context{}, "m")

	if got := atomic.LoadInt64(&calls); got != 0 {
		t.Errorf("adapter called %d times with a cancelled context, want 0", got)
	}
	if len(results) != len(chunks) {
		t.Fatalf("got %d results, want %d", len(results), len(chunks))
	}
	for i, r := range results {
		if r.FailureKind() != transcriber.FailureCancelled {
			t.Errorf("result %d kind = %q, want cancelled", i, r.FailureKind())
		}
	}
}

func TestDispatchEmptyBatch(t *testing.T) {
	c := NewCoordinator(&mockAdapter{}, 2)
	results := c.Dispatch(context.Background(), nil, transcriber.Context{}, "m")
	if len(results) != 0 {
		t.Errorf("got %d results for empty batch, want 0", len(results))
	}
}

func TestNewCoordinatorDefaultWorkers(t *testing.T) {
	c := NewCoordinator(&mockAdapter{}, 0)
	if c.workers != defaultWorkers {
		t.Errorf("workers = %d, want %d", c.workers, defaultWorkers)
	}
}
