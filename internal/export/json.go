package export

import (
	"encoding/json"
	"math"
	"time"

	"chunkscribe/internal/transcript"
)

// Field names are a stable contract for downstream consumers; renames are
// breaking changes.
type document struct {
	Segments           []documentSegment `json:"segments"`
	SourceChunkCount   int               `json:"sourceChunkCount"`
	FailedChunkIndices []int             `json:"failedChunkIndices"`
}

type documentSegment struct {
	Index     int     `json:"index"`
	StartTime float64 `json:"startTime"` // seconds, millisecond precision
	EndTime   float64 `json:"endTime"`
	Text      string  `json:"text"`
}

func renderJSON(t *transcript.Transcript) ([]byte, error) {
	doc := document{
		Segments:           make([]documentSegment, 0, len(t.Segments)),
		SourceChunkCount:   t.SourceChunkCount,
		FailedChunkIndices: t.FailedChunkIndices,
	}
	if doc.FailedChunkIndices == nil {
		doc.FailedChunkIndices = make([]int, 0)
	}

	for i, seg := range t.Segments {
		doc.Segments = append(doc.Segments, documentSegment{
			Index:     i,
			StartTime: roundSeconds(seg.Start),
			EndTime:   roundSeconds(seg.End),
			Text:      seg.Text,
		})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func roundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*1000) / 1000
}
