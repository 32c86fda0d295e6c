package audio

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestSegmentSingleChunkPassthrough(t *testing.T) {
	data := makeTestWAV(t, 30*time.Second)
	stream, err := NewStream(data, "short.wav")
	if err != nil {
		t.Fatalf("NewStream() error: %v", err)
	}

	s := NewSegmenter()
	chunks, err := s.Segment(context.Background(), stream, 20<<20, 2*time.Minute)
	if err != nil {
		t.Fatalf("Segment() error: %v", err)
	}

	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	c := chunks[0]
	if c.Index != 0 || c.StartOffset != 0 || c.EndOffset != 30*time.Second {
		t.Errorf("unexpected chunk bounds: %+v", c)
	}
	if len(c.Data) != len(data) {
		t.Errorf("passthrough chunk should keep original bytes, got %d want %d", len(c.Data), len(data))
	}
}

func TestSegmentSplitsByDuration(t *testing.T) {
	// 3 minutes at 16kHz mono s16 is ~5.8MB, under the byte bound, so the
	// 2-minute duration bound drives the split.
	data := makeTestWAV(t, 3*time.Minute)
	stream, err := NewStream(data, "long.wav")
	if err != nil {
		t.Fatalf("NewStream() error: %v", err)
	}

	s := NewSegmenter()
	chunks, err := s.Segment(context.Background(), stream, 20<<20, 2*time.Minute)
	if err != nil {
		t.Fatalf("Segment() error: %v", err)
	}

	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if chunks[0].Duration() != 2*time.Minute {
		t.Errorf("first chunk duration = %v, want 2m", chunks[0].Duration())
	}
	if chunks[1].Duration() != time.Minute {
		t.Errorf("last chunk duration = %v, want 1m", chunks[1].Duration())
	}
	assertContiguous(t, chunks, 3*time.Minute)

	for _, c := range chunks {
		info, err := parseWAV(c.Data)
		if err != nil {
			t.Errorf("chunk %d is not a valid wav: %v", c.Index, err)
			continue
		}
		if got := info.duration(); got != c.Duration() {
			t.Errorf("chunk %d payload duration = %v, offsets say %v", c.Index, got, c.Duration())
		}
	}
}

func TestSegmentSubSecondDurationBound(t *testing.T) {
	// a 1.5s bound must yield 1.5s chunks, not truncate to whole seconds
	data := makeTestWAV(t, 3*time.Second)
	stream, err := NewStream(data, "short.wav")
	if err != nil {
		t.Fatalf("NewStream() error: %v", err)
	}

	s := NewSegmenter()
	chunks, err := s.Segment(context.Background(), stream, 20<<20, 1500*time.Millisecond)
	if err != nil {
		t.Fatalf("Segment() error: %v", err)
	}

	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	for i, c := range chunks {
		if c.Duration() != 1500*time.Millisecond {
			t.Errorf("chunk %d duration = %v, want 1.5s", i, c.Duration())
		}
	}
	assertContiguous(t, chunks, 3*time.Second)
}

func TestSegmentSplitsBySize(t *testing.T) {
	data := makeTestWAV(t, time.Minute)
	stream, err := NewStream(data, "sized.wav")
	if err != nil {
		t.Fatalf("NewStream() error: %v", err)
	}

	// 1MB bound on ~1.9MB of audio forces a size-driven split even though the
	// duration bound alone would not.
	maxBytes := int64(1 << 20)
	s := NewSegmenter()
	chunks, err := s.Segment(context.Background(), stream, maxBytes, 2*time.Minute)
	if err != nil {
		t.Fatalf("Segment() error: %v", err)
	}

	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want at least 2", len(chunks))
	}
	for _, c := range chunks {
		if int64(len(c.Data)) > maxBytes {
			t.Errorf("chunk %d is %d bytes, exceeds bound %d", c.Index, len(c.Data), maxBytes)
		}
	}
	assertContiguous(t, chunks, time.Minute)

	// all chunks except the last share the nominal duration
	for i := 0; i < len(chunks)-1; i++ {
		if chunks[i].Duration() != chunks[0].Duration() {
			t.Errorf("chunk %d duration = %v, want %v", i, chunks[i].Duration(), chunks[0].Duration())
		}
	}
}

func TestSegmentErrors(t *testing.T) {
	s := NewSegmenter()
	ctx := context.Background()

	tests := []struct {
		name    string
		stream  *Stream
		wantErr error
	}{
		{"nil stream", nil, ErrEmptyInput},
		{"empty data", &Stream{}, ErrEmptyInput},
		{"unknown format", &Stream{Data: []byte("junk"), Format: FormatUnknown}, ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Segment(ctx, tt.stream, 20<<20, 2*time.Minute)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Segment() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("bad bounds", func(t *testing.T) {
		stream, _ := NewStream(makeTestWAV(t, time.Second), "a.wav")
		if _, err := s.Segment(ctx, stream, 10, 2*time.Minute); err == nil {
			t.Error("expected error for tiny byte bound")
		}
		if _, err := s.Segment(ctx, stream, 20<<20, 0); err == nil {
			t.Error("expected error for zero duration bound")
		}
	})
}

func TestSegmentDecodesNonWAV(t *testing.T) {
	// stand-in decoder so the test does not depend on ffmpeg
	decoded := makeTestWAV(t, 3*time.Minute)
	s := &segmenter{
		decode: func(ctx context.Context, stream *Stream) (*Stream, error) {
			return &Stream{Data: decoded, Format: FormatWAV, Duration: 3 * time.Minute}, nil
		},
	}

	stream := &Stream{Data: []byte("ID3fake-mp3-payload"), Format: FormatMP3}
	chunks, err := s.Segment(context.Background(), stream, 20<<20, 2*time.Minute)
	if err != nil {
		t.Fatalf("Segment() error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	assertContiguous(t, chunks, 3*time.Minute)
}

func TestSegmentDecodeFailure(t *testing.T) {
	s := &segmenter{
		decode: func(ctx context.Context, stream *Stream) (*Stream, error) {
			return nil, fmt.Errorf("ffmpeg decode failed")
		},
	}

	stream := &Stream{Data: []byte("ID3fake-mp3-payload"), Format: FormatMP3}
	if _, err := s.Segment(context.Background(), stream, 20<<20, 2*time.Minute); err == nil {
		t.Error("expected decode error to propagate")
	}
}

func assertContiguous(t *testing.T, chunks []Chunk, total time.Duration) {
	t.Helper()

	if len(chunks) == 0 {
		t.Fatal("no chunks")
	}
	if chunks[0].StartOffset != 0 {
		t.Errorf("first chunk starts at %v, want 0", chunks[0].StartOffset)
	}
	for i := 1; i < len(chunks); i++ {
		if chunks[i].Index != i {
			t.Errorf("chunk %d has index %d", i, chunks[i].Index)
		}
		if chunks[i].StartOffset != chunks[i-1].EndOffset {
			t.Errorf("gap between chunk %d (ends %v) and chunk %d (starts %v)", i-1, chunks[i-1].EndOffset, i, chunks[i].StartOffset)
		}
	}
	if got := chunks[len(chunks)-1].EndOffset; got != total {
		t.Errorf("last chunk ends at %v, want %v", got, total)
	}
}
