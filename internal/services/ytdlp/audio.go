package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	progressPrefix = "[ytanalyzer-progress]"
	audioBaseName  = "audio"
	audioFormat    = "mp3"
)

// DownloadProgress reports bytes transferred for the current download.
// Total is zero when yt-dlp does not know the size yet.
type DownloadProgress struct {
	Downloaded int64
	Total      int64
}

// Percent returns completion in the 0-100 range, or -1 when unknown.
func (p DownloadProgress) Percent() float64 {
	if p.Total <= 0 {
		return -1
	}
	return min(100, float64(p.Downloaded)/float64(p.Total)*100)
}

// DownloadAudio fetches the best audio stream for url and converts it to mp3
// inside destDir. progress may return an error to abort the download.
func (c *Client) DownloadAudio(ctx context.Context, url, destDir string, progress func(DownloadProgress) error) (string, error) {
	if destDir == "" {
		return "", errors.New("download audio: destination directory required")
	}
	args := []string{
		"-f", "bestaudio/best",
		"-x",
		"--audio-format", audioFormat,
		"--audio-quality", "192K",
		"--no-playlist",
		"--no-warnings",
		"--newline",
		"--progress-template", "download:" + progressPrefix + " %(progress.downloaded_bytes)s %(progress.total_bytes)s %(progress.total_bytes_estimate)s",
		"-o", filepath.Join(destDir, audioBaseName+".%(ext)s"),
		url,
	}

	onLine := func(line string) error {
		update, ok := ParseProgressLine(line)
		if !ok || progress == nil {
			return nil
		}
		return progress(update)
	}
	if err := c.exec.Run(ctx, c.binary, args, onLine); err != nil {
		return "", classify("download audio", err)
	}

	path := filepath.Join(destDir, audioBaseName+"."+audioFormat)
	matches, _ := filepath.Glob(filepath.Join(destDir, audioBaseName+".*"))
	for _, match := range matches {
		if match == path {
			return path, nil
		}
	}
	if len(matches) > 0 {
		return matches[0], nil
	}
	return "", fmt.Errorf("download audio: no output file in %s", destDir)
}

// ParseProgressLine decodes a line emitted by the download progress template.
func ParseProgressLine(line string) (DownloadProgress, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, progressPrefix) {
		return DownloadProgress{}, false
	}
	fields := strings.Fields(strings.TrimPrefix(line, progressPrefix))
	if len(fields) == 0 {
		return DownloadProgress{}, false
	}
	downloaded, ok := parseBytes(fields[0])
	if !ok {
		return DownloadProgress{}, false
	}
	update := DownloadProgress{Downloaded: downloaded}
	for _, field := range fields[1:] {
		if total, ok := parseBytes(field); ok && total > 0 {
			update.Total = total
			break
		}
	}
	return update, true
}

func parseBytes(field string) (int64, bool) {
	if field == "" || field == "NA" || field == "None" {
		return 0, false
	}
	value, err := strconv.ParseFloat(field, 64)
	if err != nil || value < 0 {
		return 0, false
	}
	return int64(value), true
}
