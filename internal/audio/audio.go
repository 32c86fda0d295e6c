package audio

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

var (
	// ErrUnsupportedFormat is returned when the input is not a recognized audio container.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	// ErrEmptyInput is returned when the input holds no audio data at all.
	ErrEmptyInput = errors.New("empty audio input")
)

// Format identifies an audio container format.
type Format string

const (
	FormatWAV     Format = "wav"
	FormatMP3     Format = "mp3"
	FormatM4A     Format = "m4a"
	FormatFLAC    Format = "flac"
	FormatOGG     Format = "ogg"
	FormatUnknown Format = ""
)

// MIMEType returns the MIME type used when sending audio of this format to an API.
func (f Format) MIMEType() string {
	switch f {
	case FormatWAV:
		return "audio/wav"
	case FormatMP3:
		return "audio/mpeg"
	case FormatM4A:
		return "audio/mp4"
	case FormatFLAC:
		return "audio/flac"
	case FormatOGG:
		return "audio/ogg"
	}
	return "application/octet-stream"
}

// Stream is a fully buffered audio input together with what we know about it.
// Duration and the PCM parameters are only populated for WAV streams; other
// formats are decoded before segmentation.
type Stream struct {
	Data     []byte
	Format   Format
	Duration time.Duration
}

// NewStream wraps raw audio bytes, sniffing the container format from the
// content (falling back to the filename extension for headerless MP3 files).
func NewStream(data []byte, filename string) (*Stream, error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}

	format := DetectFormat(data, filename)
	if format == FormatUnknown {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(filename))
	}

	s := &Stream{Data: data, Format: format}
	if format == FormatWAV {
		info, err := parseWAV(data)
		if err != nil {
			return nil, fmt.Errorf("parse wav: %w", err)
		}
		s.Duration = info.duration()
	}
	return s, nil
}

// Size returns the encoded size in bytes.
func (s *Stream) Size() int64 {
	return int64(len(s.Data))
}

// DetectFormat sniffs the container format from magic bytes, falling back to
// the filename extension.
func DetectFormat(data []byte, filename string) Format {
	switch {
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return FormatWAV
	case len(data) >= 4 && bytes.Equal(data[:4], []byte("fLaC")):
		return FormatFLAC
	case len(data) >= 4 && bytes.Equal(data[:4], []byte("OggS")):
		return FormatOGG
	case len(data) >= 12 && bytes.Equal(data[4:8], []byte("ftyp")):
		return FormatM4A
	case len(data) >= 3 && bytes.Equal(data[:3], []byte("ID3")):
		return FormatMP3
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		// raw MPEG frame sync, no ID3 tag
		return FormatMP3
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".wav":
		return FormatWAV
	case ".mp3":
		return FormatMP3
	case ".m4a", ".mp4":
		return FormatM4A
	case ".flac":
		return FormatFLAC
	case ".ogg", ".oga":
		return FormatOGG
	}
	return FormatUnknown
}
