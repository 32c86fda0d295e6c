package transcriber

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"chunkscribe/internal/audio"
)

// OpenAIAdapter implements Adapter for the OpenAI transcription API
type OpenAIAdapter struct {
	client *openai.Client
}

func NewOpenAIAdapter(apiKey string) *OpenAIAdapter {
	return &OpenAIAdapter{client: openai.NewClient(apiKey)}
}

func (a *OpenAIAdapter) Transcribe(ctx context.Context, chunk audio.Chunk, reqCtx Context, modelID string) (Transcription, error) {
	if len(chunk.Data) == 0 {
		return Transcription{}, nil
	}

	// verbose_json gives per-segment timings
	req := openai.AudioRequest{
		Model:    modelID,
		Reader:   bytes.NewReader(chunk.Data),
		FilePath: "chunk.wav",
		Language: reqCtx.Language,
		Prompt:   whisperHint(reqCtx),
		Format:   openai.AudioResponseFormatVerboseJSON,
	}

	start := time.Now()
	resp, err := a.client.CreateTranscription(ctx, req)
	elapsed := time.Since(start)

	if err != nil {
		log.Printf("openai-adapter: chunk %d failed after %v: %v", chunk.Index, elapsed, sanitizeErrorString(err.Error()))
		return Transcription{}, fmt.Errorf("openai transcription: %w", err)
	}

	out := Transcription{Text: strings.TrimSpace(resp.Text)}
	for _, seg := range resp.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		out.Segments = append(out.Segments, Segment{
			Start: floatSeconds(seg.Start),
			End:   floatSeconds(seg.End),
			Text:  text,
		})
	}
	if len(out.Segments) == 0 && out.Text != "" {
		out.Segments = []Segment{{Start: 0, End: chunk.Duration(), Text: out.Text}}
	}

	log.Printf("openai-adapter: transcribed chunk %d (%d bytes) in %v: %d segments", chunk.Index, len(chunk.Data), elapsed, len(out.Segments))
	return out, nil
}

func floatSeconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
