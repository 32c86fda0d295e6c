package audio

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Chunk is an independently transcribable slice of the input stream. Data is a
// standalone audio file (WAV once segmentation kicked in), and the offsets
// place the chunk on the original stream's timeline.
type Chunk struct {
	Index       int
	StartOffset time.Duration
	EndOffset   time.Duration
	Data        []byte
}

// Duration returns the span this chunk covers on the source timeline.
func (c Chunk) Duration() time.Duration {
	return c.EndOffset - c.StartOffset
}

// Segmenter splits an audio stream into chunks bounded by size and duration.
//
// Chunks cover [0, stream duration] contiguously with no gaps and no overlap:
// chunk i ends exactly where chunk i+1 starts. A stream already within both
// bounds is passed through unmodified as a single chunk.
type Segmenter interface {
	Segment(ctx context.Context, stream *Stream, maxChunkBytes int64, maxChunkDuration time.Duration) ([]Chunk, error)
}

type segmenter struct {
	// decode converts a non-WAV stream to PCM WAV. Swappable for tests.
	decode func(ctx context.Context, stream *Stream) (*Stream, error)
}

// NewSegmenter returns a Segmenter that slices WAV input in memory and decodes
// other formats through ffmpeg first.
func NewSegmenter() Segmenter {
	return &segmenter{decode: decodeToWAV}
}

func (s *segmenter) Segment(ctx context.Context, stream *Stream, maxChunkBytes int64, maxChunkDuration time.Duration) ([]Chunk, error) {
	if stream == nil || len(stream.Data) == 0 {
		return nil, ErrEmptyInput
	}
	if stream.Format == FormatUnknown {
		return nil, ErrUnsupportedFormat
	}
	if maxChunkBytes <= wavHeaderSize {
		return nil, fmt.Errorf("max chunk size %d too small", maxChunkBytes)
	}
	if maxChunkDuration <= 0 {
		return nil, fmt.Errorf("max chunk duration %v too small", maxChunkDuration)
	}

	// Fast path: a stream already within both bounds goes out as-is, in its
	// original encoding.
	if stream.Format != FormatWAV || stream.Duration == 0 {
		if probed, ok := s.tryPassthrough(ctx, stream, maxChunkBytes, maxChunkDuration); ok {
			return probed, nil
		}
		decoded, err := s.decode(ctx, stream)
		if err != nil {
			return nil, err
		}
		stream = decoded
	}

	info, err := parseWAV(stream.Data)
	if err != nil {
		return nil, fmt.Errorf("parse wav: %w", err)
	}
	if info.dataSize == 0 {
		return nil, ErrEmptyInput
	}

	if stream.Size() <= maxChunkBytes && info.duration() <= maxChunkDuration {
		return []Chunk{{Index: 0, StartOffset: 0, EndOffset: info.duration(), Data: stream.Data}}, nil
	}

	chunks, err := sliceWAV(stream.Data, info, maxChunkBytes, maxChunkDuration)
	if err != nil {
		return nil, err
	}

	log.Printf("segmenter: split %v of audio (%d bytes) into %d chunks", info.duration().Round(time.Millisecond), stream.Size(), len(chunks))
	return chunks, nil
}

// tryPassthrough emits a small non-WAV stream as a single chunk without
// decoding. Needs a known duration, so it only applies when the caller probed
// one; otherwise we decode and measure.
func (s *segmenter) tryPassthrough(_ context.Context, stream *Stream, maxChunkBytes int64, maxChunkDuration time.Duration) ([]Chunk, bool) {
	if stream.Duration == 0 || stream.Size() > maxChunkBytes || stream.Duration > maxChunkDuration {
		return nil, false
	}
	return []Chunk{{Index: 0, StartOffset: 0, EndOffset: stream.Duration, Data: stream.Data}}, true
}

// sliceWAV cuts the PCM payload into equal-duration chunks, each rewrapped as
// a standalone WAV file. Cuts land on frame boundaries so every chunk stays a
// valid stream, and byte offsets are converted back to durations so adjacent
// chunks meet exactly.
func sliceWAV(data []byte, info wavInfo, maxChunkBytes int64, maxChunkDuration time.Duration) ([]Chunk, error) {
	byteRate := int64(info.byteRate())
	blockAlign := int64(info.blockAlign())

	// single expression keeps sub-second bounds exact
	nominalBytes := byteRate * int64(maxChunkDuration) / int64(time.Second)
	if budget := maxChunkBytes - wavHeaderSize; nominalBytes > budget {
		nominalBytes = budget
	}
	nominalBytes -= nominalBytes % blockAlign
	if nominalBytes < blockAlign {
		return nil, fmt.Errorf("chunk bounds too small for %d Hz %d-channel audio", info.sampleRate, info.channels)
	}

	pcm := data[info.dataOffset : info.dataOffset+info.dataSize]
	total := int64(len(pcm))

	var chunks []Chunk
	for start := int64(0); start < total; start += nominalBytes {
		end := start + nominalBytes
		if end > total {
			end = total
		}
		chunks = append(chunks, Chunk{
			Index:       len(chunks),
			StartOffset: time.Duration(start) * time.Second / time.Duration(byteRate),
			EndOffset:   time.Duration(end) * time.Second / time.Duration(byteRate),
			Data:        writeWAV(info, pcm[start:end]),
		})
	}
	return chunks, nil
}
