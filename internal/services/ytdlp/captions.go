package ytdlp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ytanalyzer/internal/services"
	"ytanalyzer/internal/transcript"
)

// ErrNoCaptions reports that the video has no captions in any requested language.
var ErrNoCaptions = errors.New("no captions available")

const captionFormat = "json3"

// captionPasses run manual subtitles before auto-generated ones. yt-dlp names
// both kinds <id>.<lang>.json3, so each pass writes into its own directory.
var captionPasses = []struct{ dir, flag string }{
	{dir: "manual", flag: "--write-subs"},
	{dir: "auto", flag: "--write-auto-subs"},
}

// DownloadCaptions writes json3 captions for url under destDir and returns the
// path of the best match. Any manual track in a requested language wins over
// auto-generated ones, and earlier entries in langs win over later ones.
func (c *Client) DownloadCaptions(ctx context.Context, url, destDir string, langs []string) (string, error) {
	if destDir == "" {
		return "", errors.New("captions: destination directory required")
	}
	if len(langs) == 0 {
		langs = []string{"en"}
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	for _, pass := range captionPasses {
		dir := filepath.Join(destDir, pass.dir)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("captions: create %s: %w", dir, err)
		}
		args := []string{
			"--skip-download",
			pass.flag,
			"--sub-langs", strings.Join(subLangPatterns(langs), ","),
			"--sub-format", captionFormat,
			"--no-playlist",
			"--no-warnings",
			"-o", filepath.Join(dir, "%(id)s.%(ext)s"),
			url,
		}
		if err := c.exec.Run(ctx, c.binary, args, nil); err != nil {
			return "", classify("download captions", err)
		}

		path, err := pickCaptionFile(dir, langs)
		if errors.Is(err, ErrNoCaptions) {
			continue
		}
		return path, err
	}
	return "", ErrNoCaptions
}

// subLangPatterns expands each language to also match regional and "-orig"
// variants yt-dlp reports (en-US, en-orig).
func subLangPatterns(langs []string) []string {
	patterns := make([]string, 0, len(langs)*2)
	for _, lang := range langs {
		lang = strings.TrimSpace(lang)
		if lang == "" {
			continue
		}
		patterns = append(patterns, lang, lang+"-.*")
	}
	return patterns
}

func pickCaptionFile(dir string, langs []string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*."+captionFormat))
	if err != nil {
		return "", fmt.Errorf("captions: glob: %w", err)
	}
	if len(matches) == 0 {
		return "", ErrNoCaptions
	}
	for _, lang := range langs {
		var regional string
		for _, path := range matches {
			code := captionLanguage(path)
			if code == lang {
				return path, nil
			}
			if regional == "" && strings.HasPrefix(code, lang+"-") {
				regional = path
			}
		}
		if regional != "" {
			return regional, nil
		}
	}
	return matches[0], nil
}

// captionLanguage extracts "en" from "<id>.en.json3".
func captionLanguage(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), "."+captionFormat)
	if idx := strings.LastIndexByte(base, '.'); idx >= 0 {
		return base[idx+1:]
	}
	return ""
}

type json3Payload struct {
	Events []struct {
		StartMs    int64 `json:"tStartMs"`
		DurationMs int64 `json:"dDurationMs"`
		Segs       []struct {
			UTF8 string `json:"utf8"`
		} `json:"segs"`
	} `json:"events"`
}

// LoadCaptions reads a json3 caption file into ordered segments.
func LoadCaptions(path string) ([]transcript.Segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("captions: read %s: %w", path, err)
	}
	return ParseJSON3(data)
}

// ParseJSON3 decodes YouTube json3 captions. Events without text (window
// definitions and bare line breaks) are dropped.
func ParseJSON3(data []byte) ([]transcript.Segment, error) {
	var payload json3Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, services.Wrap(services.ErrValidation, "captions", "parse json3", "invalid caption json", err)
	}
	segments := make([]transcript.Segment, 0, len(payload.Events))
	for _, event := range payload.Events {
		if len(event.Segs) == 0 {
			continue
		}
		var b strings.Builder
		for _, seg := range event.Segs {
			b.WriteString(seg.UTF8)
		}
		text := strings.Join(strings.Fields(b.String()), " ")
		if text == "" {
			continue
		}
		segments = append(segments, transcript.Segment{
			Text:  text,
			Start: float64(event.StartMs) / 1000,
			End:   float64(event.StartMs+event.DurationMs) / 1000,
		})
	}
	return segments, nil
}
