package transcriber

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// endMarker terminates a model response that followed the prompt contract.
const endMarker = "[END]"

// fallbackSpan is the display span given to the last line of a chunk when the
// chunk duration is unknown.
const fallbackSpan = 3 * time.Second

// timedLine matches "[MM:SS] text" and "[HH:MM:SS] text".
var timedLine = regexp.MustCompile(`^\[(\d{1,2}):(\d{2})(?::(\d{2}))?\]\s*(.*)$`)

// ParseTimedLines converts a timestamped transcript in the prompt's output
// format into segments. Each segment ends where the next begins; the final
// one ends at span (or a short fixed window when span is zero). Lines without
// a timestamp continue the previous segment. Returns nil when no line carries
// a timestamp, so the caller can fall back to a single untimed segment.
func ParseTimedLines(text string, span time.Duration) []Segment {
	var segments []Segment

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == endMarker {
			continue
		}

		m := timedLine.FindStringSubmatch(line)
		if m == nil {
			if len(segments) > 0 {
				segments[len(segments)-1].Text += " " + line
			}
			continue
		}

		start := parseTimestamp(m[1], m[2], m[3])
		body := strings.TrimSpace(strings.TrimSuffix(m[4], endMarker))
		if body == "" {
			continue
		}
		segments = append(segments, Segment{Start: start, Text: body})
	}

	for i := range segments {
		if i+1 < len(segments) && segments[i+1].Start > segments[i].Start {
			segments[i].End = segments[i+1].Start
			continue
		}
		end := segments[i].Start + fallbackSpan
		if span > segments[i].Start {
			end = span
		}
		segments[i].End = end
	}

	return segments
}

// parseTimestamp interprets the two- or three-field timestamp: [MM:SS] when
// the third field is absent, [HH:MM:SS] otherwise.
func parseTimestamp(a, b, c string) time.Duration {
	first, _ := strconv.Atoi(a)
	second, _ := strconv.Atoi(b)
	if c == "" {
		return time.Duration(first)*time.Minute + time.Duration(second)*time.Second
	}
	third, _ := strconv.Atoi(c)
	return time.Duration(first)*time.Hour + time.Duration(second)*time.Minute + time.Duration(third)*time.Second
}
