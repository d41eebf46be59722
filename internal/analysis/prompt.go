package analysis

import (
	"fmt"
	"strings"

	"ytanalyzer/internal/extractor"
)

// ReconciliationSystemPrompt instructs the model to return the corrected
// transcript and the change report under two level-one headings.
const ReconciliationSystemPrompt = `You are a transcript editor. Your task is to:
1. Create an accurate, corrected version of the transcript
2. Provide a detailed report of changes made
3. Format your response as follows:
# Corrected Transcript
[Your corrected transcript here]

# Changes Made
[Your detailed report here]`

// analysisSystemPromptTemplate takes the viewer profile.
const analysisSystemPromptTemplate = `You are analyzing video content for %s.
Respond with JSON only, using exactly this structure:
{
  "salient_points": [list of key points],
  "counterfactuals": [list of alternative viewpoints],
  "bias": "assessment of bias",
  "claims_to_review": [list of claims],
  "info_quality": score (integer 1-10),
  "viewer_interest": score (integer 1-10)
}`

func reconciliationPrompt(primary, secondary, secondaryLabel string) string {
	var b strings.Builder
	if secondary == "" {
		b.WriteString("Review and correct this transcript:\n\n")
		b.WriteString(primary)
		b.WriteString("\n\nIn your report, include:\n")
		b.WriteString("1. Major corrections made\n")
		b.WriteString("2. Common transcription errors fixed\n")
		b.WriteString("3. Confidence assessment of the final version")
		return b.String()
	}
	if primary == "" {
		fmt.Fprintf(&b, "Review and correct this %s transcript (no auto-generated transcript was available):\n\n", secondaryLabel)
		b.WriteString(secondary)
		b.WriteString("\n\nIn your report, include:\n")
		b.WriteString("1. Major corrections made\n")
		b.WriteString("2. Common speech recognition errors fixed\n")
		b.WriteString("3. Confidence assessment of the final version")
		return b.String()
	}
	b.WriteString("Compare and correct these two transcripts:\n\n")
	b.WriteString("Auto-generated transcript:\n")
	b.WriteString(primary)
	fmt.Fprintf(&b, "\n\n%s transcript:\n", secondaryLabel)
	b.WriteString(secondary)
	b.WriteString("\n\nIn your report, include:\n")
	b.WriteString("1. Major corrections made\n")
	fmt.Fprintf(&b, "2. How the %s transcript helped improve accuracy\n", secondaryLabel)
	b.WriteString("3. Any significant discrepancies between the versions\n")
	b.WriteString("4. Confidence assessment of the final version")
	return b.String()
}

func analysisSystemPrompt(viewerProfile string) string {
	return fmt.Sprintf(analysisSystemPromptTemplate, viewerProfile)
}

func analysisUserPrompt(meta *extractor.Metadata, transcriptText string) string {
	var b strings.Builder
	b.WriteString("Analyze this video content:\n\n")
	fmt.Fprintf(&b, "Title: %s\n", meta.Title)
	if meta.Channel != "" {
		fmt.Fprintf(&b, "Channel: %s\n", meta.Channel)
	}
	fmt.Fprintf(&b, "Description: %s\n", meta.Description)
	if len(meta.Comments) > 0 {
		b.WriteString("Top comments:\n")
		for _, c := range meta.Comments {
			fmt.Fprintf(&b, "- (%d likes) %s\n", c.Likes, strings.Join(strings.Fields(c.Text), " "))
		}
	}
	fmt.Fprintf(&b, "Transcript: %s", transcriptText)
	return b.String()
}
