package whisperx

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ytanalyzer/internal/transcript"
)

type segmentPayload struct {
	Text    string  `json:"text"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
}

type resultPayload struct {
	Text     string           `json:"text"`
	Segments []segmentPayload `json:"segments"`
}

// LoadSegments reads a whisper or whisperx JSON result. Segments with no
// text are dropped.
func LoadSegments(jsonPath string) ([]transcript.Segment, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, err
	}
	var payload resultPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse transcription json: %w", err)
	}
	segments := make([]transcript.Segment, 0, len(payload.Segments))
	for _, seg := range payload.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		segments = append(segments, transcript.Segment{
			Text:    text,
			Start:   seg.Start,
			End:     seg.End,
			Speaker: seg.Speaker,
		})
	}
	if len(segments) == 0 {
		if text := strings.TrimSpace(payload.Text); text != "" {
			segments = append(segments, transcript.Segment{Text: text})
		}
	}
	return segments, nil
}

// resultPath is where both CLIs write "<basename>.json" for an input file.
func resultPath(audioPath, outputDir string) string {
	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	return filepath.Join(outputDir, base+".json")
}
