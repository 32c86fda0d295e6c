package provider

import "strings"

// OpenAIProvider implements Provider for OpenAI's transcription API
type OpenAIProvider struct{}

func (p *OpenAIProvider) Name() string {
	return "openai"
}

func (p *OpenAIProvider) RequiresAPIKey() bool {
	return true
}

func (p *OpenAIProvider) ValidateAPIKey(key string) bool {
	return strings.HasPrefix(key, "sk-")
}

func (p *OpenAIProvider) Models() []Model {
	// the upload endpoint rejects files over 25MB
	return []Model{
		{
			ID:               "whisper-1",
			Name:             "Whisper 1",
			Description:      "OpenAI's production speech-to-text model with segment timings",
			AdapterType:      "openai",
			Endpoint:         &EndpointConfig{BaseURL: "https://api.openai.com", Path: "/v1/audio/transcriptions"},
			MaxAudioBytes:    25 << 20,
			MaxAudioDuration: 0,
		},
	}
}

func (p *OpenAIProvider) DefaultModel() string {
	return "whisper-1"
}
