package config

import "time"

// Chunking and dispatch defaults. 20MB/2min chunks keep every chunk well
// inside provider request limits, five workers keeps a long file moving
// without tripping rate limits.
const (
	DefaultMaxChunkBytes    = int64(20 << 20)
	DefaultMaxChunkDuration = 2 * time.Minute
	DefaultWorkers          = 5
	DefaultCallTimeout      = 2 * time.Minute
	DefaultRetryAttempts    = 3
	DefaultRetryBaseDelay   = time.Second
	DefaultMaxInputBytes    = int64(500 << 20)
	DefaultMinSuccessRatio  = 0.8
	DefaultServerAddr       = ":8080"
)

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() *Config {
	return &Config{
		Transcription: TranscriptionConfig{
			Provider: "gemini",
			Model:    "gemini-2.0-flash",
			Language: "",
		},
		Chunking: ChunkingConfig{
			MaxChunkBytes:    DefaultMaxChunkBytes,
			MaxChunkDuration: DefaultMaxChunkDuration,
		},
		Dispatch: DispatchConfig{
			Workers:        DefaultWorkers,
			CallTimeout:    DefaultCallTimeout,
			RetryAttempts:  DefaultRetryAttempts,
			RetryBaseDelay: DefaultRetryBaseDelay,
		},
		Limits: LimitsConfig{
			MaxInputBytes:   DefaultMaxInputBytes,
			MinSuccessRatio: DefaultMinSuccessRatio,
		},
		Server: ServerConfig{
			Addr: DefaultServerAddr,
		},
		Providers: make(map[string]ProviderConfig),
	}
}

// applyDefaults fills zero-valued fields so a sparse config file still works.
func (c *Config) applyDefaults() {
	if c.Transcription.Provider == "" {
		c.Transcription.Provider = "gemini"
	}
	if c.Chunking.MaxChunkBytes == 0 {
		c.Chunking.MaxChunkBytes = DefaultMaxChunkBytes
	}
	if c.Chunking.MaxChunkDuration == 0 {
		c.Chunking.MaxChunkDuration = DefaultMaxChunkDuration
	}
	if c.Dispatch.Workers == 0 {
		c.Dispatch.Workers = DefaultWorkers
	}
	if c.Dispatch.CallTimeout == 0 {
		c.Dispatch.CallTimeout = DefaultCallTimeout
	}
	if c.Dispatch.RetryAttempts == 0 {
		c.Dispatch.RetryAttempts = DefaultRetryAttempts
	}
	if c.Dispatch.RetryBaseDelay == 0 {
		c.Dispatch.RetryBaseDelay = DefaultRetryBaseDelay
	}
	if c.Limits.MaxInputBytes == 0 {
		c.Limits.MaxInputBytes = DefaultMaxInputBytes
	}
	if c.Limits.MinSuccessRatio == 0 {
		c.Limits.MinSuccessRatio = DefaultMinSuccessRatio
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
	if c.Providers == nil {
		c.Providers = make(map[string]ProviderConfig)
	}
}
