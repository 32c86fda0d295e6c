package provider

import "time"

// Model represents a transcription model with full metadata
type Model struct {
	ID          string          // unique identifier (e.g., "gemini-2.0-flash", "whisper-1")
	Name        string          // display name
	Description string          // short description
	AdapterType string          // which adapter to use (e.g., "gemini", "openai")
	Endpoint    *EndpointConfig // nil for adapters with built-in endpoints

	// Per-request capability limits of the backing API. The segmenter must
	// keep every chunk within these bounds. Zero means unbounded.
	MaxAudioBytes    int64
	MaxAudioDuration time.Duration
}

// EndpointConfig holds HTTP endpoint configuration
type EndpointConfig struct {
	BaseURL string // e.g., "https://generativelanguage.googleapis.com"
	Path    string // e.g., "/v1beta/models"
}
