package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"chunkscribe/internal/audio"
	"chunkscribe/internal/config"
	"chunkscribe/internal/dispatch"
	"chunkscribe/internal/provider"
	"chunkscribe/internal/transcriber"
	"chunkscribe/internal/transcript"
)

// Pipeline runs the full transcription flow: validate input, segment,
// dispatch chunks, merge results.
type Pipeline struct {
	segmenter   audio.Segmenter
	coordinator *dispatch.Coordinator
	modelID     string

	maxChunkBytes    int64
	maxChunkDuration time.Duration
	maxInputBytes    int64
	minSuccessRatio  float64
}

// AdapterFactory creates the transcription adapter for a pipeline. Tests swap
// in mock adapters through it.
type AdapterFactory func(cfg transcriber.Config) (transcriber.Adapter, error)

// New builds a pipeline from configuration. The effective chunk bounds are
// the configured bounds tightened to the selected model's own request limits.
func New(cfg *config.Config) (*Pipeline, error) {
	return NewWithAdapterFactory(cfg, transcriber.NewAdapter)
}

func NewWithAdapterFactory(cfg *config.Config, factory AdapterFactory) (*Pipeline, error) {
	tcfg := cfg.ToTranscriberConfig()
	adapter, err := factory(tcfg)
	if err != nil {
		return nil, fmt.Errorf("create adapter: %w", err)
	}

	modelID := tcfg.Model
	if modelID == "" {
		p := provider.GetProvider(tcfg.Provider)
		if p == nil {
			return nil, fmt.Errorf("unsupported provider: %s", tcfg.Provider)
		}
		modelID = p.DefaultModel()
	}
	model, _, err := provider.FindModelByID(modelID)
	if err != nil {
		return nil, err
	}

	maxChunkBytes := cfg.Chunking.MaxChunkBytes
	if model.MaxAudioBytes > 0 && model.MaxAudioBytes < maxChunkBytes {
		maxChunkBytes = model.MaxAudioBytes
	}
	maxChunkDuration := cfg.Chunking.MaxChunkDuration
	if model.MaxAudioDuration > 0 && model.MaxAudioDuration < maxChunkDuration {
		maxChunkDuration = model.MaxAudioDuration
	}

	return &Pipeline{
		segmenter:        audio.NewSegmenter(),
		coordinator:      dispatch.NewCoordinator(adapter, cfg.Dispatch.Workers),
		modelID:          modelID,
		maxChunkBytes:    maxChunkBytes,
		maxChunkDuration: maxChunkDuration,
		maxInputBytes:    cfg.Limits.MaxInputBytes,
		minSuccessRatio:  cfg.Limits.MinSuccessRatio,
	}, nil
}

// Transcribe processes one audio file end to end. A transcript with failed
// chunks is still returned; only unusable outcomes (invalid input, merge
// inconsistency, zero successful chunks) are errors.
func (p *Pipeline) Transcribe(ctx context.Context, filename string, data []byte, reqCtx transcriber.Context) (*transcript.Transcript, error) {
	if p.maxInputBytes > 0 && int64(len(data)) > p.maxInputBytes {
		return nil, fmt.Errorf("input too large: %d bytes (limit %d)", len(data), p.maxInputBytes)
	}

	stream, err := audio.NewStream(data, filename)
	if err != nil {
		return nil, err
	}

	chunks, err := p.segmenter.Segment(ctx, stream, p.maxChunkBytes, p.maxChunkDuration)
	if err != nil {
		return nil, fmt.Errorf("segment audio: %w", err)
	}

	log.Printf("pipeline: transcribing %s: %d chunks with model %s", filename, len(chunks), p.modelID)
	results := p.coordinator.Dispatch(ctx, chunks, reqCtx, p.modelID)

	t, err := transcript.Merge(results)
	if err != nil {
		return nil, err
	}

	if t.SourceChunkCount > 0 && t.SucceededChunkCount() == 0 {
		first := firstFailure(results)
		return nil, fmt.Errorf("all %d chunks failed: %w", t.SourceChunkCount, first)
	}
	if ratio := float64(t.SucceededChunkCount()) / float64(t.SourceChunkCount); ratio < p.minSuccessRatio {
		log.Printf("pipeline: %s: only %d/%d chunks succeeded (below %.0f%% threshold), transcript has gaps at chunks %v",
			filename, t.SucceededChunkCount(), t.SourceChunkCount, p.minSuccessRatio*100, t.FailedChunkIndices)
	}

	return t, nil
}

func firstFailure(results []dispatch.Result) error {
	for _, r := range results {
		if r.Failed() {
			return r.Err
		}
	}
	return nil
}
