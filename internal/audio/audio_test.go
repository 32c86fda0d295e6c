package audio

import (
	"errors"
	"testing"
	"time"
)

// makeTestWAV builds a 16kHz mono s16 WAV of the given duration.
func makeTestWAV(t *testing.T, duration time.Duration) []byte {
	t.Helper()

	info := wavInfo{sampleRate: 16000, channels: 1, bitsPerSample: 16}
	samples := int(int64(info.sampleRate) * int64(duration) / int64(time.Second))
	pcm := make([]byte, samples*info.blockAlign())
	for i := range pcm {
		pcm[i] = byte(i % 251)
	}
	return writeWAV(info, pcm)
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		filename string
		want     Format
	}{
		{
			name:     "wav magic",
			data:     append([]byte("RIFF\x00\x00\x00\x00WAVE"), make([]byte, 8)...),
			filename: "whatever.bin",
			want:     FormatWAV,
		},
		{
			name:     "flac magic",
			data:     []byte("fLaC\x00\x00\x00\x22"),
			filename: "a.flac",
			want:     FormatFLAC,
		},
		{
			name:     "ogg magic",
			data:     []byte("OggS\x00\x02\x00\x00"),
			filename: "a.ogg",
			want:     FormatOGG,
		},
		{
			name:     "m4a ftyp box",
			data:     []byte("\x00\x00\x00\x20ftypM4A \x00\x00\x00\x00"),
			filename: "a.m4a",
			want:     FormatM4A,
		},
		{
			name:     "mp3 id3 tag",
			data:     []byte("ID3\x04\x00\x00\x00\x00\x00\x00"),
			filename: "a.mp3",
			want:     FormatMP3,
		},
		{
			name:     "mp3 frame sync",
			data:     []byte{0xFF, 0xFB, 0x90, 0x00},
			filename: "a.bin",
			want:     FormatMP3,
		},
		{
			name:     "extension fallback",
			data:     []byte("not a real header"),
			filename: "recording.MP3",
			want:     FormatMP3,
		},
		{
			name:     "unknown",
			data:     []byte("not a real header"),
			filename: "notes.txt",
			want:     FormatUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFormat(tt.data, tt.filename); got != tt.want {
				t.Errorf("DetectFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewStream(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		_, err := NewStream(nil, "a.wav")
		if !errors.Is(err, ErrEmptyInput) {
			t.Errorf("expected ErrEmptyInput, got %v", err)
		}
	})

	t.Run("unsupported format", func(t *testing.T) {
		_, err := NewStream([]byte("garbage bytes"), "notes.txt")
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("expected ErrUnsupportedFormat, got %v", err)
		}
	})

	t.Run("wav duration", func(t *testing.T) {
		data := makeTestWAV(t, 3*time.Second)
		s, err := NewStream(data, "a.wav")
		if err != nil {
			t.Fatalf("NewStream() error: %v", err)
		}
		if s.Format != FormatWAV {
			t.Errorf("format = %q, want wav", s.Format)
		}
		if s.Duration != 3*time.Second {
			t.Errorf("duration = %v, want 3s", s.Duration)
		}
	})
}

func TestParseWAV(t *testing.T) {
	data := makeTestWAV(t, 2*time.Second)

	info, err := parseWAV(data)
	if err != nil {
		t.Fatalf("parseWAV() error: %v", err)
	}
	if info.sampleRate != 16000 || info.channels != 1 || info.bitsPerSample != 16 {
		t.Errorf("unexpected layout: %+v", info)
	}
	if info.byteRate() != 32000 {
		t.Errorf("byteRate = %d, want 32000", info.byteRate())
	}
	if got := info.duration(); got != 2*time.Second {
		t.Errorf("duration = %v, want 2s", got)
	}
}

func TestParseWAVErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"not riff", []byte("this is definitely not audio data")},
		{"truncated header", []byte("RIFF\x00\x00")},
		{"no chunks", []byte("RIFF\x04\x00\x00\x00WAVE")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseWAV(tt.data); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
