package config

import (
	"os"
	"strings"
	"time"

	"chunkscribe/internal/transcriber"
)

type Config struct {
	Transcription TranscriptionConfig       `toml:"transcription"`
	Chunking      ChunkingConfig            `toml:"chunking"`
	Dispatch      DispatchConfig            `toml:"dispatch"`
	Limits        LimitsConfig              `toml:"limits"`
	Server        ServerConfig              `toml:"server"`
	Providers     map[string]ProviderConfig `toml:"providers"`
}

type TranscriptionConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	Language string `toml:"language"` // empty for auto-detect
}

type ChunkingConfig struct {
	MaxChunkBytes    int64         `toml:"max_chunk_bytes"`
	MaxChunkDuration time.Duration `toml:"max_chunk_duration"`
}

type DispatchConfig struct {
	Workers        int           `toml:"workers"`
	CallTimeout    time.Duration `toml:"call_timeout"`
	RetryAttempts  int           `toml:"retry_attempts"`
	RetryBaseDelay time.Duration `toml:"retry_base_delay"`
}

type LimitsConfig struct {
	MaxInputBytes   int64   `toml:"max_input_bytes"`
	MinSuccessRatio float64 `toml:"min_success_ratio"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

// ProviderConfig holds API key for a provider
type ProviderConfig struct {
	APIKey string `toml:"api_key"`
}

// APIKeyFor resolves the API key for a provider: config file first, then the
// provider's environment variable (GEMINI_API_KEY, OPENAI_API_KEY, ...).
func (c *Config) APIKeyFor(provider string) string {
	if pc, ok := c.Providers[provider]; ok && pc.APIKey != "" {
		return pc.APIKey
	}
	return os.Getenv(strings.ToUpper(provider) + "_API_KEY")
}

func (c *Config) ToTranscriberConfig() transcriber.Config {
	return transcriber.Config{
		Provider:       c.Transcription.Provider,
		APIKey:         c.APIKeyFor(c.Transcription.Provider),
		Model:          c.Transcription.Model,
		Language:       c.Transcription.Language,
		CallTimeout:    c.Dispatch.CallTimeout,
		RetryAttempts:  c.Dispatch.RetryAttempts,
		RetryBaseDelay: c.Dispatch.RetryBaseDelay,
	}
}
