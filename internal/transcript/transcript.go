package transcript

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"chunkscribe/internal/dispatch"
)

// ErrInternalConsistency flags a merge result that violates the timeline
// invariants. It means a bug upstream, not bad input.
var ErrInternalConsistency = errors.New("inconsistent merge result")

// Segment is a timed piece of the final transcript. Times are on the global
// timeline of the original stream.
type Segment struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

// Transcript is the reconciled output of a chunk batch. Segments are ordered
// by start time; FailedChunkIndices lists chunks whose audio is missing from
// the transcript, in ascending order.
type Transcript struct {
	FullText           string
	Segments           []Segment
	SourceChunkCount   int
	FailedChunkIndices []int
}

// Merge reconciles per-chunk results onto the global timeline. Results may
// arrive in any order; the transcript depends only on chunk indices. Failed
// chunks leave a gap in the timeline and their index in FailedChunkIndices.
func Merge(results []dispatch.Result) (*Transcript, error) {
	ordered := make([]dispatch.Result, len(results))
	copy(ordered, results)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })

	for i := 1; i < len(ordered); i++ {
		if ordered[i].Index == ordered[i-1].Index {
			return nil, fmt.Errorf("%w: duplicate chunk index %d", ErrInternalConsistency, ordered[i].Index)
		}
	}

	t := &Transcript{
		SourceChunkCount:   len(ordered),
		Segments:           make([]Segment, 0),
		FailedChunkIndices: make([]int, 0),
	}

	var texts []string
	for _, r := range ordered {
		if r.Failed() {
			t.FailedChunkIndices = append(t.FailedChunkIndices, r.Index)
			continue
		}

		for _, seg := range r.Transcription.Segments {
			global := Segment{
				Start: r.StartOffset + seg.Start,
				End:   r.StartOffset + seg.End,
				Text:  seg.Text,
			}
			if global.End < global.Start {
				global.End = global.Start
			}
			if n := len(t.Segments); n > 0 && global.Start < t.Segments[n-1].Start {
				return nil, fmt.Errorf("%w: chunk %d segment starts at %v, before previous segment at %v",
					ErrInternalConsistency, r.Index, global.Start, t.Segments[n-1].Start)
			}
			t.Segments = append(t.Segments, global)
		}

		if text := strings.TrimSpace(r.Transcription.Text); text != "" {
			texts = append(texts, text)
		}
	}

	t.FullText = strings.Join(texts, "\n")
	return t, nil
}

// SucceededChunkCount returns how many chunks contributed to the transcript.
func (t *Transcript) SucceededChunkCount() int {
	return t.SourceChunkCount - len(t.FailedChunkIndices)
}

// Duration returns the end time of the last segment.
func (t *Transcript) Duration() time.Duration {
	if len(t.Segments) == 0 {
		return 0
	}
	return t.Segments[len(t.Segments)-1].End
}
