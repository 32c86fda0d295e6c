package transcriber

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"chunkscribe/internal/audio"
	"chunkscribe/internal/provider"
)

// GeminiAdapter implements Adapter for Google's generateContent API. Audio
// goes inline as base64; the prompt forces timestamped output that
// ParseTimedLines converts back into segments.
type GeminiAdapter struct {
	endpoint   *provider.EndpointConfig
	apiKey     string
	httpClient *http.Client
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiGenerationConfig struct {
	Temperature float64 `json:"temperature"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

func NewGeminiAdapter(endpoint *provider.EndpointConfig, apiKey string) *GeminiAdapter {
	return &GeminiAdapter{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: http.DefaultClient,
	}
}

func (a *GeminiAdapter) Transcribe(ctx context.Context, chunk audio.Chunk, reqCtx Context, modelID string) (Transcription, error) {
	if len(chunk.Data) == 0 {
		return Transcription{}, nil
	}

	prompt, err := RenderPrompt(reqCtx)
	if err != nil {
		return Transcription{}, fmt.Errorf("render prompt: %w", err)
	}

	mimeType := audio.DetectFormat(chunk.Data, "chunk").MIMEType()
	payload := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{
				{Text: prompt},
				{InlineData: &geminiInlineData{
					MIMEType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(chunk.Data),
				}},
			},
		}},
		GenerationConfig: &geminiGenerationConfig{Temperature: 0},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Transcription{}, fmt.Errorf("marshal request: %w", err)
	}

	apiURL := a.endpoint.BaseURL + a.endpoint.Path + "/" + modelID + ":generateContent"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return Transcription{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// header keeps the key out of URLs and logs
	req.Header.Set("x-goog-api-key", a.apiKey)

	start := time.Now()
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return Transcription{}, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Transcription{}, fmt.Errorf("read response: %w", err)
	}
	elapsed := time.Since(start)

	if resp.StatusCode != http.StatusOK {
		log.Printf("gemini-adapter: chunk %d got status %d after %v", chunk.Index, resp.StatusCode, elapsed)
		return Transcription{}, &httpStatusError{
			StatusCode: resp.StatusCode,
			Body:       sanitizeErrorString(string(respBody)),
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	var result geminiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return Transcription{}, fmt.Errorf("parse response: %w", err)
	}
	if result.PromptFeedback != nil && result.PromptFeedback.BlockReason != "" {
		return Transcription{}, fmt.Errorf("gemini blocked request: %s", result.PromptFeedback.BlockReason)
	}
	if len(result.Candidates) == 0 {
		return Transcription{}, fmt.Errorf("gemini returned no candidates")
	}

	var text strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}

	out := normalizeTimedText(text.String(), chunk.Duration())
	log.Printf("gemini-adapter: transcribed chunk %d (%d bytes) in %v: %d segments", chunk.Index, len(chunk.Data), elapsed, len(out.Segments))
	return out, nil
}

// normalizeTimedText turns the model's timestamped output into a
// Transcription, synthesizing a single full-span segment when the model
// ignored the timestamp contract.
func normalizeTimedText(raw string, span time.Duration) Transcription {
	segments := ParseTimedLines(raw, span)
	if len(segments) == 0 {
		text := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), endMarker))
		if text == "" {
			return Transcription{}
		}
		return Transcription{
			Text:     text,
			Segments: []Segment{{Start: 0, End: span, Text: text}},
		}
	}

	parts := make([]string, len(segments))
	for i, seg := range segments {
		parts[i] = seg.Text
	}
	return Transcription{Text: strings.Join(parts, "\n"), Segments: segments}
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if secs, err := strconv.Atoi(header); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}
