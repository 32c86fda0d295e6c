package testutil

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"chunkscribe/internal/audio"
	"chunkscribe/internal/config"
	"chunkscribe/internal/transcriber"
)

// TestConfig returns a valid configuration for testing
func TestConfig() *config.Config {
	return &config.Config{
		Transcription: config.TranscriptionConfig{
			Provider: "gemini",
			Model:    "gemini-2.0-flash",
			Language: "",
		},
		Chunking: config.ChunkingConfig{
			MaxChunkBytes:    20 << 20,
			MaxChunkDuration: 2 * time.Minute,
		},
		Dispatch: config.DispatchConfig{
			Workers:        2,
			CallTimeout:    5 * time.Second,
			RetryAttempts:  1,
			RetryBaseDelay: time.Millisecond,
		},
		Limits: config.LimitsConfig{
			MaxInputBytes:   500 << 20,
			MinSuccessRatio: 0.8,
		},
		Server: config.ServerConfig{
			Addr: ":0",
		},
		Providers: map[string]config.ProviderConfig{
			"gemini": {APIKey: "AIzaSyA-test-key-0123456789abcdefghijk"},
		},
	}
}

// CreateTempConfigFile creates a temporary config file for testing
func CreateTempConfigFile(t *testing.T, configContent string) string {
	t.Helper()

	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.toml")

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to create temp config file: %v", err)
	}

	return configPath
}

// MakeWAV builds a 16kHz mono s16 WAV of the given duration for tests
func MakeWAV(t *testing.T, duration time.Duration) []byte {
	t.Helper()

	const sampleRate = 16000
	const blockAlign = 2 // mono, 16-bit
	const byteRate = sampleRate * blockAlign

	samples := int(int64(sampleRate) * int64(duration) / int64(time.Second))
	pcm := make([]byte, samples*blockAlign)
	for i := range pcm {
		pcm[i] = byte(i % 251)
	}

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)

	return buf.Bytes()
}

// MockAdapter implements transcriber.Adapter for testing
type MockAdapter struct {
	TranscribeFunc func(ctx context.Context, chunk audio.Chunk, reqCtx transcriber.Context, modelID string) (transcriber.Transcription, error)
}

func (m *MockAdapter) Transcribe(ctx context.Context, chunk audio.Chunk, reqCtx transcriber.Context, modelID string) (transcriber.Transcription, error) {
	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, chunk, reqCtx, modelID)
	}
	return transcriber.Transcription{
		Text:     "mock transcription",
		Segments: []transcriber.Segment{{Start: 0, End: chunk.Duration(), Text: "mock transcription"}},
	}, nil
}

// NewMockAdapter creates a mock transcription adapter
func NewMockAdapter() *MockAdapter {
	return &MockAdapter{}
}

// MockAdapterFactory returns a factory that always yields the given mock
func MockAdapterFactory(mock *MockAdapter) func(cfg transcriber.Config) (transcriber.Adapter, error) {
	return func(cfg transcriber.Config) (transcriber.Adapter, error) {
		return mock, nil
	}
}

// TestContext returns a context with timeout for testing
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// WaitForCondition waits for a condition to be true or times out
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			t.Fatalf("Condition not met within %v", timeout)
		default:
			if condition() {
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
	}
}
