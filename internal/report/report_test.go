package report_test

import (
	"strings"
	"testing"

	"ytanalyzer/internal/analysis"
	"ytanalyzer/internal/report"
)

func TestFormatTranscriptRelevelsSections(t *testing.T) {
	rec := &analysis.Reconciliation{
		Text: "# Corrected Transcript\nhello world\n\n# Changes Made\n- fixed wrold\n",
	}
	got, err := report.FormatTranscript(rec)
	if err != nil {
		t.Fatalf("FormatTranscript: %v", err)
	}
	want := "# Transcript Analysis\n\n" +
		"## Processing Information\n" +
		"This transcript was processed using YouTube's auto-generated transcript only.\n" +
		"\n## Corrected Transcript\nhello world\n" +
		"\n## Changes Made\n- fixed wrold\n"
	if got != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatTranscriptWithWhisper(t *testing.T) {
	got, err := report.FormatTranscript(&analysis.Reconciliation{
		Text:            "preamble\n# Corrected Transcript\nx",
		PrimaryUsed:     true,
		SecondaryUsed:   true,
		SecondarySource: "whisper",
		Model:           "gpt-test",
	})
	if err != nil {
		t.Fatalf("FormatTranscript: %v", err)
	}
	for _, want := range []string{"and Whisper AI transcription", "Model: gpt-test", "## preamble", "## Corrected Transcript\nx"} {
		if !strings.Contains(got, want) {
			t.Fatalf("missing %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, "\n# Corrected") {
		t.Fatal("expected level-one headings to be re-leveled")
	}
}

func TestFormatTranscriptLocalOnly(t *testing.T) {
	got, err := report.FormatTranscript(&analysis.Reconciliation{
		Text:            "# Corrected Transcript\nx",
		SecondaryUsed:   true,
		SecondarySource: "whisperx",
		Duration:        3725.4,
	})
	if err != nil {
		t.Fatalf("FormatTranscript: %v", err)
	}
	for _, want := range []string{"using WhisperX transcription only; no YouTube transcript was available.", "Duration: 01:02:05\n"} {
		if !strings.Contains(got, want) {
			t.Fatalf("missing %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, "YouTube's auto-generated transcript") {
		t.Fatalf("local-only run must not credit platform captions:\n%s", got)
	}
}

func TestFormatAnalysis(t *testing.T) {
	got, err := report.FormatAnalysis(&analysis.Result{
		SalientPoints:  []string{"one", "two"},
		Bias:           "mild",
		ClaimsToReview: []string{" "},
		InfoQuality:    7,
		ViewerInterest: 6,
	})
	if err != nil {
		t.Fatalf("FormatAnalysis: %v", err)
	}
	want := `# Video Analysis

## Salient Points
- one
- two

## Counterfactual Viewpoints
None provided

## Bias Assessment
mild

## Claims to Review
None provided

## Scores
- Information Quality: 7/10
- Viewer Interest: 6/10
`
	if got != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", got, want)
	}
}

func TestNilInputsFail(t *testing.T) {
	if _, err := report.FormatTranscript(nil); err == nil {
		t.Fatal("expected error for nil reconciliation")
	}
	if _, err := report.FormatAnalysis(nil); err == nil {
		t.Fatal("expected error for nil result")
	}
}
