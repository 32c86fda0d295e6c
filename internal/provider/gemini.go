package provider

import (
	"strings"
	"time"
)

// GeminiProvider implements Provider for Google's Gemini multimodal API
type GeminiProvider struct{}

func (p *GeminiProvider) Name() string {
	return "gemini"
}

func (p *GeminiProvider) RequiresAPIKey() bool {
	return true
}

func (p *GeminiProvider) ValidateAPIKey(key string) bool {
	return strings.HasPrefix(key, "AIza") && len(key) >= 30
}

func (p *GeminiProvider) Models() []Model {
	// generateContent takes audio inline as base64, capped at 20MB per request
	endpoint := &EndpointConfig{BaseURL: "https://generativelanguage.googleapis.com", Path: "/v1beta/models"}

	return []Model{
		{
			ID:               "gemini-2.0-flash",
			Name:             "Gemini 2.0 Flash",
			Description:      "Fast multimodal model, good default for chunked transcription",
			AdapterType:      "gemini",
			Endpoint:         endpoint,
			MaxAudioBytes:    20 << 20,
			MaxAudioDuration: 30 * time.Minute,
		},
		{
			ID:               "gemini-2.5-flash-preview-04-17",
			Name:             "Gemini 2.5 Flash Preview",
			Description:      "Preview model with stronger diarization",
			AdapterType:      "gemini",
			Endpoint:         endpoint,
			MaxAudioBytes:    20 << 20,
			MaxAudioDuration: 30 * time.Minute,
		},
	}
}

func (p *GeminiProvider) DefaultModel() string {
	return "gemini-2.0-flash"
}
