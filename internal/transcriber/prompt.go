package transcriber

import (
	"strings"
	"text/template"
)

// The prompt pins down the exact output format so ParseTimedLines can recover
// per-utterance timings from a text-only model.
var promptTemplate = template.Must(template.New("transcription").Parse(`TASK: Perform accurate transcription and speaker diarization for the provided {{if .AudioType}}{{.AudioType}}{{else}}audio file{{end}}.

CONTEXT:
{{- if .Description}}
- Description: {{.Description}}
{{- end}}
{{- if .Topic}}
- Topic: {{.Topic}}
{{- end}}
{{- if .Language}}
- Language: {{.Language}}
{{- end}}
- Number of distinct speakers: {{.SpeakerCount}}

INSTRUCTIONS:
1. Transcribe the audio accurately.
2. Perform speaker diarization: identify the {{.SpeakerCount}} distinct speakers present in the audio.
3. Consistently label each speaker throughout the entire transcript using the format "Speaker 1:", "Speaker 2:", ..., "Speaker {{.SpeakerCount}}:". Ensure that each label always refers to the same individual.
4. Include precise timestamps in [HH:MM:SS] format at the beginning of each speaker's utterance or segment.

OUTPUT FORMAT:
The output MUST strictly follow this format for each line:
[HH:MM:SS] Speaker X: Dialogue text...

EXAMPLE:
[00:00:05] Speaker 1: Hello, welcome to the meeting.
[00:00:08] Speaker 2: Thanks for having me.
[00:00:10] Speaker 1: Let's get started.

If there is music or a short jingle playing, signify like so:
[00:01:02] [MUSIC] or [00:01:02] [JINGLE]

If there is some other sound playing try to identify the sound, eg:
[00:01:02] [Bell ringing]

Each individual caption should be quite short, a few short sentences at most.

Signify the end of the audio with [END].

Don't use any markdown formatting, like bolding or italics.

It is important that you use the correct words and spell everything correctly. Use the context to help.`))

type promptData struct {
	Context
	SpeakerCount int
}

// RenderPrompt builds the transcription prompt from the request metadata.
func RenderPrompt(reqCtx Context) (string, error) {
	data := promptData{Context: reqCtx, SpeakerCount: reqCtx.Speakers}
	if data.SpeakerCount <= 0 {
		data.SpeakerCount = 1
	}

	var b strings.Builder
	if err := promptTemplate.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

// whisperHint condenses the metadata into the short free-text prompt the
// Whisper API accepts for vocabulary steering.
func whisperHint(reqCtx Context) string {
	var parts []string
	for _, s := range []string{reqCtx.Topic, reqCtx.Description} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ". ")
}
