package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// CaptionLine is one timed caption used to build json3 fixtures.
type CaptionLine struct {
	StartMs    int64
	DurationMs int64
	Text       string
}

// WriteJSON3 writes a YouTube json3 caption file with one event per line.
func WriteJSON3(t testing.TB, path string, lines ...CaptionLine) {
	t.Helper()

	type seg struct {
		UTF8 string `json:"utf8"`
	}
	type event struct {
		TStartMs    int64 `json:"tStartMs"`
		DDurationMs int64 `json:"dDurationMs"`
		Segs        []seg `json:"segs"`
	}
	payload := struct {
		Events []event `json:"events"`
	}{}
	for _, line := range lines {
		payload.Events = append(payload.Events, event{
			TStartMs:    line.StartMs,
			DDurationMs: line.DurationMs,
			Segs:        []seg{{UTF8: line.Text}},
		})
	}
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal json3: %v", err)
	}
	WriteFile(t, path, string(data))
}

// DirEntries returns the names inside dir, or nil when it does not exist.
func DirEntries(t testing.TB, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		t.Fatalf("read dir %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}
