package whisperx

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"ytanalyzer/internal/services"
)

// ProbeDuration returns the media duration in seconds using ffprobe.
func ProbeDuration(ctx context.Context, exec services.Executor, ffprobe, path string) (float64, error) {
	out, err := exec.Output(ctx, orDefault(ffprobe, FFprobeCommand), []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	})
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w", err)
	}
	value := strings.TrimSpace(string(out))
	duration, err := strconv.ParseFloat(value, 64)
	if err != nil || duration <= 0 {
		return 0, fmt.Errorf("ffprobe duration: unexpected output %q", value)
	}
	return duration, nil
}
