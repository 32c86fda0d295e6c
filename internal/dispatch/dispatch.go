package dispatch

import (
	"context"
	"log"
	"sync"
	"time"

	"chunkscribe/internal/audio"
	"chunkscribe/internal/transcriber"
)

const defaultWorkers = 5

// Result is the outcome of one chunk's transcription call. Err is nil on
// success; failed chunks still carry their index and timeline offsets so the
// merge layer can account for them.
type Result struct {
	Index         int
	StartOffset   time.Duration
	EndOffset     time.Duration
	Transcription transcriber.Transcription
	Err           error
}

// Failed reports whether this chunk's call failed.
func (r Result) Failed() bool {
	return r.Err != nil
}

// FailureKind returns the classification of a failed result, or "" on success.
func (r Result) FailureKind() transcriber.FailureKind {
	if r.Err == nil {
		return ""
	}
	return transcriber.KindOf(r.Err)
}

// Coordinator fans a batch of chunks out to the adapter with bounded
// concurrency. A batch always runs to completion: per-chunk failures land in
// the result slots instead of aborting the batch.
type Coordinator struct {
	adapter transcriber.Adapter
	workers int
}

func NewCoordinator(adapter transcriber.Adapter, workers int) *Coordinator {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Coordinator{adapter: adapter, workers: workers}
}

// Dispatch transcribes all chunks and returns one result per chunk, in input
// order. Cancellation is checked before each submission: chunks not yet
// started fail with a cancelled result, while in-flight calls are left to
// finish under the adapter's own per-call timeout.
func (c *Coordinator) Dispatch(ctx context.Context, chunks []audio.Chunk, reqCtx transcriber.Context, modelID string) []Result {
	results := make([]Result, len(chunks))

	sem := make(chan struct{}, c.workers)
	var wg sync.WaitGroup

	// detached from the parent so started calls finish after cancellation
	callCtx := context.WithoutCancel(ctx)

	start := time.Now()
	for i, chunk := range chunks {
		results[i] = Result{Index: chunk.Index, StartOffset: chunk.StartOffset, EndOffset: chunk.EndOffset}

		// checked before acquiring the semaphore: a blocking select alone
		// could still pick the semaphore case after cancellation
		if ctx.Err() != nil {
			results[i].Err = &transcriber.CallError{Kind: transcriber.FailureCancelled, Err: ctx.Err()}
			continue
		}

		select {
		case <-ctx.Done():
			results[i].Err = &transcriber.CallError{Kind: transcriber.FailureCancelled, Err: ctx.Err()}
			continue
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(slot int, chunk audio.Chunk) {
			defer wg.Done()
			defer func() { <-sem }()

			out, err := c.adapter.Transcribe(callCtx, chunk, reqCtx, modelID)
			if err != nil {
				log.Printf("dispatch: chunk %d failed: %v", chunk.Index, err)
				results[slot].Err = err
				return
			}
			results[slot].Transcription = out
		}(i, chunk)
	}
	wg.Wait()

	succeeded := 0
	for _, r := range results {
		if !r.Failed() {
			succeeded++
		}
	}
	log.Printf("dispatch: batch complete: %d/%d chunks succeeded in %v", succeeded, len(chunks), time.Since(start).Round(time.Millisecond))

	return results
}
