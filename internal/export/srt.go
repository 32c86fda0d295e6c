package export

import (
	"fmt"
	"strings"
	"time"

	"chunkscribe/internal/transcript"
)

// Cues shorter than this are widened so players keep them readable.
const minCueDuration = time.Second

// renderSRT writes the transcript as SubRip cues: 1-based cue number,
// "HH:MM:SS,mmm --> HH:MM:SS,mmm" time line, text, blank separator.
func renderSRT(t *transcript.Transcript) []byte {
	var b strings.Builder

	for i, seg := range t.Segments {
		end := seg.End
		if end < seg.Start+minCueDuration {
			end = seg.Start + minCueDuration
		}

		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n", formatSRTTime(seg.Start), formatSRTTime(end))
		b.WriteString(seg.Text)
		b.WriteString("\n\n")
	}

	return []byte(b.String())
}

func formatSRTTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	ms := (d % time.Second) / time.Millisecond
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}
