package export

import (
	"fmt"
	"strings"

	"chunkscribe/internal/transcript"
)

// Format identifies an export format.
type Format string

const (
	Plain      Format = "txt"
	Subtitle   Format = "srt"
	Structured Format = "json"
)

// ParseFormat normalizes a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "txt", "text", "plain", "":
		return Plain, nil
	case "srt", "subtitle", "subtitles":
		return Subtitle, nil
	case "json", "structured":
		return Structured, nil
	}
	return "", fmt.Errorf("unknown export format: %s", s)
}

// Extension returns the file extension for the format, without the dot.
func (f Format) Extension() string {
	return string(f)
}

// MIMEType returns the content type served for downloads of this format.
func (f Format) MIMEType() string {
	switch f {
	case Plain:
		return "text/plain; charset=utf-8"
	case Subtitle:
		return "application/x-subrip"
	case Structured:
		return "application/json"
	}
	return "application/octet-stream"
}

// Artifact is a rendered export ready to be written to disk or served for
// download.
type Artifact struct {
	Format   Format
	Filename string
	MIMEType string
	Data     []byte
}

// Render formats a transcript. Pure: the same transcript and format always
// produce identical bytes, and every transcript (including an empty one)
// renders without error.
func Render(t *transcript.Transcript, format Format, baseName string) (Artifact, error) {
	var data []byte
	var err error

	switch format {
	case Plain:
		data = renderPlain(t)
	case Subtitle:
		data = renderSRT(t)
	case Structured:
		data, err = renderJSON(t)
	default:
		return Artifact{}, fmt.Errorf("unknown export format: %s", format)
	}
	if err != nil {
		return Artifact{}, err
	}

	if baseName == "" {
		baseName = "transcript"
	}
	return Artifact{
		Format:   format,
		Filename: baseName + "." + format.Extension(),
		MIMEType: format.MIMEType(),
		Data:     data,
	}, nil
}

func renderPlain(t *transcript.Transcript) []byte {
	if t.FullText == "" {
		return []byte{}
	}
	return []byte(t.FullText + "\n")
}
