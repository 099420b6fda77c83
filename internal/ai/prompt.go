package ai

import (
	"fmt"
	"strings"
)

const systemPrompt = `You split recorded talks and meetings into chapters for Microsoft Stream.

You will receive a transcript, usually WebVTT or a plain text export with timestamps.

Output a JSON array of chapters. Each chapter has:
- "time": where the chapter starts, as MM:SS or HH:MM:SS. Minutes and seconds are below 60. Use HH:MM:SS once the video passes one hour.
- "title": a short title, at most 60 characters, no numbering

Guidelines:
- The first chapter starts at 00:00
- Chapters are in ascending time order, at least one minute apart
- Only use timestamps that appear in the transcript
- Prefer topic changes over speaker changes

Example output:
[
  {"time": "00:00", "title": "Introduction"},
  {"time": "04:12", "title": "Quarterly results"},
  {"time": "1:02:30", "title": "Q&A"}
]

Respond ONLY with the JSON array, no explanation or markdown.`

func buildUserPrompt(transcript string, opts DraftOptions) string {
	var b strings.Builder
	if opts.Language != "" {
		fmt.Fprintf(&b, "Write the titles in %s.\n", opts.Language)
	}
	if opts.MaxChapters > 0 {
		fmt.Fprintf(&b, "Use at most %d chapters.\n", opts.MaxChapters)
	}
	b.WriteString("\nTranscript:\n")
	b.WriteString(transcript)
	return b.String()
}
