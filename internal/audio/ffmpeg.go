package audio

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// Target layout for decoded audio: 16kHz mono s16, the standard layout for
// speech-to-text APIs.
const (
	decodeSampleRate = 16000
	decodeChannels   = 1
)

// decodeToWAV shells out to ffmpeg to convert a compressed stream to PCM WAV
// so it can be sliced in memory.
func decodeToWAV(ctx context.Context, stream *Stream) (*Stream, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, fmt.Errorf("ffmpeg not found in PATH (required for %s input): %w", stream.Format, err)
	}

	tmpDir, err := os.MkdirTemp("", "chunkscribe-decode-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	inPath := filepath.Join(tmpDir, "input."+string(stream.Format))
	outPath := filepath.Join(tmpDir, "decoded.wav")
	if err := os.WriteFile(inPath, stream.Data, 0o600); err != nil {
		return nil, fmt.Errorf("write temp input: %w", err)
	}

	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-y",
		"-i", inPath,
		"-ac", fmt.Sprintf("%d", decodeChannels),
		"-ar", fmt.Sprintf("%d", decodeSampleRate),
		"-f", "wav",
		outPath,
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg decode failed: %w: %s", err, stderr.String())
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("read decoded wav: %w", err)
	}

	info, err := parseWAV(data)
	if err != nil {
		return nil, fmt.Errorf("parse decoded wav: %w", err)
	}

	log.Printf("segmenter: decoded %s input (%d bytes) to wav (%d bytes) in %v", stream.Format, len(stream.Data), len(data), time.Since(start).Round(time.Millisecond))
	return &Stream{Data: data, Format: FormatWAV, Duration: info.duration()}, nil
}
