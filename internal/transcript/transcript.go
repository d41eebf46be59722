// Package transcript holds the timed text segment shared by caption parsing,
// local speech transcription, and transcript reconciliation.
package transcript

import (
	"fmt"
	"strings"
)

// Segment is one timed run of transcript text. Start and End are seconds.
// Speaker is empty unless diarization labelled it.
type Segment struct {
	Text    string  `json:"text"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker,omitempty"`
}

// PlainText joins segment text with single spaces, dropping empty segments.
func PlainText(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// SpeakerText renders segments with speaker labels, starting a new paragraph
// whenever the speaker changes. Without any labels it matches PlainText.
func SpeakerText(segments []Segment) string {
	var b strings.Builder
	current := ""
	labelled := false
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		speaker := strings.TrimSpace(seg.Speaker)
		switch {
		case speaker != "" && speaker != current:
			if b.Len() > 0 {
				b.WriteString("\n\n")
			}
			fmt.Fprintf(&b, "%s: ", speaker)
			current = speaker
			labelled = true
		case b.Len() > 0:
			b.WriteByte(' ')
		}
		b.WriteString(text)
	}
	if !labelled {
		return PlainText(segments)
	}
	return b.String()
}

// Duration returns the end time of the last segment.
func Duration(segments []Segment) float64 {
	var end float64
	for _, seg := range segments {
		end = max(end, seg.End)
	}
	return end
}

// FormatTimestamp renders seconds as HH:MM:SS.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
