// Package report renders reconciliation and analysis results as Markdown.
package report

import (
	"errors"
	"fmt"
	"strings"

	"ytanalyzer/internal/analysis"
	"ytanalyzer/internal/transcript"
)

const noneProvided = "None provided"

// FormatTranscript renders the corrected transcript document. Each "# "
// section of the model output becomes a "## " section.
func FormatTranscript(rec *analysis.Reconciliation) (string, error) {
	if rec == nil {
		return "", errors.New("format transcript: reconciliation required")
	}
	var b strings.Builder
	b.WriteString("# Transcript Analysis\n\n")
	b.WriteString("## Processing Information\n")
	switch {
	case rec.PrimaryUsed && rec.SecondaryUsed:
		fmt.Fprintf(&b, "This transcript was processed using both YouTube's auto-generated transcript and %s transcription.\n", sourceName(rec.SecondarySource))
	case rec.SecondaryUsed:
		fmt.Fprintf(&b, "This transcript was processed using %s transcription only; no YouTube transcript was available.\n", sourceName(rec.SecondarySource))
	default:
		b.WriteString("This transcript was processed using YouTube's auto-generated transcript only.\n")
	}
	if rec.Duration > 0 {
		fmt.Fprintf(&b, "Duration: %s\n", transcript.FormatTimestamp(rec.Duration))
	}
	if rec.Model != "" {
		fmt.Fprintf(&b, "Model: %s\n", rec.Model)
	}

	for _, section := range splitSections(rec.Text) {
		b.WriteString("\n## ")
		b.WriteString(section)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// splitSections cuts text at level-one headings. Text before the first
// heading is kept as its own section.
func splitSections(text string) []string {
	var (
		sections []string
		current  []string
	)
	flush := func() {
		section := strings.TrimSpace(strings.Join(current, "\n"))
		if section != "" {
			sections = append(sections, section)
		}
		current = current[:0]
	}
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.HasPrefix(line, "# ") {
			flush()
			line = strings.TrimPrefix(line, "# ")
		}
		current = append(current, line)
	}
	flush()
	return sections
}

func sourceName(source string) string {
	switch source {
	case "whisperx":
		return "WhisperX"
	default:
		return "Whisper AI"
	}
}

// FormatAnalysis renders the content analysis document.
func FormatAnalysis(result *analysis.Result) (string, error) {
	if result == nil {
		return "", errors.New("format analysis: result required")
	}
	bias := strings.TrimSpace(result.Bias)
	if bias == "" {
		bias = noneProvided
	}
	var b strings.Builder
	b.WriteString("# Video Analysis\n\n")
	b.WriteString("## Salient Points\n")
	b.WriteString(formatList(result.SalientPoints))
	b.WriteString("\n\n## Counterfactual Viewpoints\n")
	b.WriteString(formatList(result.Counterfactuals))
	b.WriteString("\n\n## Bias Assessment\n")
	b.WriteString(bias)
	b.WriteString("\n\n## Claims to Review\n")
	b.WriteString(formatList(result.ClaimsToReview))
	b.WriteString("\n\n## Scores\n")
	fmt.Fprintf(&b, "- Information Quality: %d/10\n", result.InfoQuality)
	fmt.Fprintf(&b, "- Viewer Interest: %d/10\n", result.ViewerInterest)
	return b.String(), nil
}

func formatList(items []string) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			lines = append(lines, "- "+item)
		}
	}
	if len(lines) == 0 {
		return noneProvided
	}
	return strings.Join(lines, "\n")
}
