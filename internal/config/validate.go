package config

import (
	"fmt"

	"chunkscribe/internal/provider"
)

func (c *Config) Validate() error {
	// Transcription
	if c.Transcription.Provider == "" {
		return fmt.Errorf("invalid transcription.provider: empty")
	}
	p := provider.GetProvider(c.Transcription.Provider)
	if p == nil {
		return fmt.Errorf("invalid transcription.provider: %s (known: %v)", c.Transcription.Provider, provider.ListProviders())
	}
	if c.Transcription.Model != "" {
		found := false
		for _, m := range p.Models() {
			if m.ID == c.Transcription.Model {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("invalid transcription.model: %s (provider %s does not offer it)", c.Transcription.Model, p.Name())
		}
	}
	if p.RequiresAPIKey() && c.APIKeyFor(p.Name()) == "" {
		return fmt.Errorf("%s API key required: not found in config (providers.%s.api_key) or environment", p.Name(), p.Name())
	}
	if c.Transcription.Language != "" && !IsValidLanguageCode(c.Transcription.Language) {
		return fmt.Errorf("invalid transcription.language: %s (use empty string for auto-detect or ISO-639-1 codes like 'en', 'es', 'fr')", c.Transcription.Language)
	}

	// Chunking
	if c.Chunking.MaxChunkBytes <= 1024 {
		return fmt.Errorf("invalid chunking.max_chunk_bytes: %d", c.Chunking.MaxChunkBytes)
	}
	if c.Chunking.MaxChunkDuration <= 0 {
		return fmt.Errorf("invalid chunking.max_chunk_duration: %v", c.Chunking.MaxChunkDuration)
	}

	// Dispatch
	if c.Dispatch.Workers <= 0 {
		return fmt.Errorf("invalid dispatch.workers: %d", c.Dispatch.Workers)
	}
	if c.Dispatch.CallTimeout <= 0 {
		return fmt.Errorf("invalid dispatch.call_timeout: %v", c.Dispatch.CallTimeout)
	}
	if c.Dispatch.RetryAttempts <= 0 {
		return fmt.Errorf("invalid dispatch.retry_attempts: %d", c.Dispatch.RetryAttempts)
	}
	if c.Dispatch.RetryBaseDelay <= 0 {
		return fmt.Errorf("invalid dispatch.retry_base_delay: %v", c.Dispatch.RetryBaseDelay)
	}

	// Limits
	if c.Limits.MaxInputBytes <= 0 {
		return fmt.Errorf("invalid limits.max_input_bytes: %d", c.Limits.MaxInputBytes)
	}
	if c.Limits.MinSuccessRatio <= 0 || c.Limits.MinSuccessRatio > 1 {
		return fmt.Errorf("invalid limits.min_success_ratio: %v (must be in (0, 1])", c.Limits.MinSuccessRatio)
	}

	// Server
	if c.Server.Addr == "" {
		return fmt.Errorf("invalid server.addr: empty")
	}

	return nil
}

// IsValidLanguageCode reports whether code is a recognized ISO-639-1 code.
func IsValidLanguageCode(code string) bool {
	validCodes := map[string]bool{
		"en": true, "es": true, "fr": true, "de": true, "it": true, "pt": true,
		"ru": true, "ja": true, "ko": true, "zh": true, "ar": true, "hi": true,
		"nl": true, "sv": true, "da": true, "no": true, "fi": true, "pl": true,
		"tr": true, "he": true, "th": true, "vi": true, "id": true, "ms": true,
		"uk": true, "cs": true, "hu": true, "ro": true, "bg": true, "hr": true,
		"sk": true, "sl": true, "et": true, "lv": true, "lt": true, "mt": true,
		"cy": true, "ga": true, "eu": true, "ca": true, "gl": true, "is": true,
		"mk": true, "sq": true, "az": true, "be": true, "ka": true, "hy": true,
		"kk": true, "ky": true, "tg": true, "uz": true, "mn": true, "ne": true,
		"si": true, "km": true, "lo": true, "my": true, "fa": true, "ps": true,
		"ur": true, "bn": true, "ta": true, "te": true, "ml": true, "kn": true,
		"gu": true, "pa": true, "or": true, "as": true, "mr": true, "sa": true,
		"sw": true, "yo": true, "ig": true, "ha": true, "zu": true, "xh": true,
		"af": true, "am": true, "mg": true, "so": true, "sn": true, "rw": true,
	}
	return validCodes[code]
}
