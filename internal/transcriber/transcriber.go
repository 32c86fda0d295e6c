package transcriber

import (
	"context"
	"fmt"
	"time"

	"chunkscribe/internal/audio"
	"chunkscribe/internal/provider"
)

// Adapter is the boundary to an external speech-to-text backend. One call
// transcribes one chunk.
type Adapter interface {
	Transcribe(ctx context.Context, chunk audio.Chunk, reqCtx Context, modelID string) (Transcription, error)
}

// Context carries optional request metadata that improves transcription
// quality. All fields may be empty.
type Context struct {
	AudioType   string // e.g. "podcast episode", "meeting recording"
	Topic       string
	Description string
	Language    string // ISO-639-1 code, empty for auto-detect
	Speakers    int    // expected number of distinct speakers, 0 for unknown
}

// Segment is a timed piece of transcribed speech. Times are relative to the
// start of the chunk that produced it.
type Segment struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

// Transcription is the normalized result of one chunk call. Backends that
// return per-utterance timings fill Segments; plain-text backends get a single
// synthesized segment spanning the whole chunk.
type Transcription struct {
	Text     string
	Segments []Segment
}

// Configuration for the transcriber
type Config struct {
	Provider       string
	APIKey         string
	Model          string
	Language       string
	CallTimeout    time.Duration
	RetryAttempts  int
	RetryBaseDelay time.Duration
}

func DefaultConfig() Config {
	return Config{
		Provider:       "gemini",
		Model:          "gemini-2.0-flash",
		CallTimeout:    2 * time.Minute,
		RetryAttempts:  defaultRetryAttempts,
		RetryBaseDelay: defaultRetryBaseDelay,
	}
}

// NewAdapter creates the adapter for the configured provider/model, wrapped
// with per-call timeout and retry handling. Every error it returns is a
// *CallError carrying a failure kind.
func NewAdapter(config Config) (Adapter, error) {
	p := provider.GetProvider(config.Provider)
	if p == nil {
		return nil, fmt.Errorf("unsupported provider: %s", config.Provider)
	}
	if p.RequiresAPIKey() && config.APIKey == "" {
		return nil, fmt.Errorf("%s API key required", config.Provider)
	}

	model, err := lookupModel(p, config.Model)
	if err != nil {
		return nil, err
	}

	var inner Adapter
	switch model.AdapterType {
	case "gemini":
		inner = NewGeminiAdapter(model.Endpoint, config.APIKey)
	case "openai":
		inner = NewOpenAIAdapter(config.APIKey)
	default:
		return nil, fmt.Errorf("no adapter for type: %s", model.AdapterType)
	}

	return newRetryAdapter(inner, config), nil
}

func lookupModel(p provider.Provider, id string) (provider.Model, error) {
	if id == "" {
		id = p.DefaultModel()
	}
	for _, m := range p.Models() {
		if m.ID == id {
			return m, nil
		}
	}
	return provider.Model{}, fmt.Errorf("provider %s has no model %q", p.Name(), id)
}
