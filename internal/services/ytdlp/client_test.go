package ytdlp_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"ytanalyzer/internal/services"
	"ytanalyzer/internal/services/ytdlp"
)

type stubExecutor struct {
	output []byte
	lines  []string
	err    error
	// onRun lets a test create the files yt-dlp would write.
	onRun func(args []string)

	calls [][]string
}

func (s *stubExecutor) Run(_ context.Context, _ string, args []string, onLine func(string) error) error {
	s.calls = append(s.calls, append([]string(nil), args...))
	if s.onRun != nil {
		s.onRun(args)
	}
	for _, line := range s.lines {
		if onLine == nil {
			continue
		}
		if err := onLine(line); err != nil {
			return err
		}
	}
	return s.err
}

func (s *stubExecutor) Output(_ context.Context, _ string, args []string) ([]byte, error) {
	s.calls = append(s.calls, append([]string(nil), args...))
	return s.output, s.err
}

func newClient(t *testing.T, exec *stubExecutor) *ytdlp.Client {
	t.Helper()
	client, err := ytdlp.New("yt-dlp", 30, ytdlp.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return client
}

func argValue(args []string, flag string) string {
	if idx := slices.Index(args, flag); idx >= 0 && idx+1 < len(args) {
		return args[idx+1]
	}
	return ""
}

func TestNewRequiresBinary(t *testing.T) {
	if _, err := ytdlp.New("  ", 0); err == nil {
		t.Fatal("expected error for blank binary")
	}
}

func TestVideoID(t *testing.T) {
	exec := &stubExecutor{output: []byte("dQw4w9WgXcQ\n")}
	id, err := newClient(t, exec).VideoID(context.Background(), "https://example.com/v")
	if err != nil {
		t.Fatalf("VideoID returned error: %v", err)
	}
	if id != "dQw4w9WgXcQ" {
		t.Fatalf("unexpected id %q", id)
	}
	if argValue(exec.calls[0], "--print") != "id" {
		t.Fatalf("expected --print id, got %v", exec.calls[0])
	}
}

func TestInfoParsesCommentsAndRanksByLikes(t *testing.T) {
	exec := &stubExecutor{output: []byte(`{
		"id": "abc123",
		"title": "Title",
		"description": "Desc",
		"channel": "Chan",
		"duration": 61.5,
		"comments": [
			{"id": "1", "text": "meh", "author": "a", "like_count": 2, "parent": "root"},
			{"id": "2", "text": "great", "author": "b", "like_count": 50, "parent": "root"},
			{"id": "3", "text": "reply", "author": "c", "like_count": 999, "parent": "2"},
			{"id": "4", "text": "ok", "author": "d", "like_count": 10, "parent": "root"},
			{"id": "5", "text": "   ", "author": "e", "like_count": 500, "parent": "root"},
			{"id": "6", "text": "nice", "author": "f", "like_count": 10, "parent": "root"}
		]
	}`)}
	info, err := newClient(t, exec).Info(context.Background(), "https://youtu.be/abc123", 100)
	if err != nil {
		t.Fatalf("Info returned error: %v", err)
	}
	if info.ID != "abc123" || info.Title != "Title" || info.Duration != 61.5 {
		t.Fatalf("unexpected info %+v", info)
	}
	if !strings.Contains(argValue(exec.calls[0], "--extractor-args"), "max_comments=100,all,0,0") {
		t.Fatalf("expected max_comments extractor arg, got %v", exec.calls[0])
	}

	top := info.TopComments(3)
	var ids []string
	for _, comment := range top {
		ids = append(ids, comment.ID)
	}
	if got := strings.Join(ids, ","); got != "2,4,6" {
		t.Fatalf("unexpected top comments %q", got)
	}
	if got := info.TopComments(0); got != nil {
		t.Fatalf("expected nil for n=0, got %v", got)
	}
}

func TestInfoWithoutCommentsSkipsCommentFlags(t *testing.T) {
	exec := &stubExecutor{output: []byte(`{"id":"abc123"}`)}
	if _, err := newClient(t, exec).Info(context.Background(), "u", 0); err != nil {
		t.Fatalf("Info returned error: %v", err)
	}
	if slices.Contains(exec.calls[0], "--write-comments") {
		t.Fatalf("did not expect --write-comments, got %v", exec.calls[0])
	}
}

func TestInfoErrors(t *testing.T) {
	bad := &stubExecutor{output: []byte("not json")}
	if _, err := newClient(t, bad).Info(context.Background(), "u", 0); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	unavailable := &stubExecutor{err: &services.CommandError{Binary: "yt-dlp", Err: errors.New("exit status 1"), Stderr: "ERROR: [youtube] x: Video unavailable"}}
	if _, err := newClient(t, unavailable).Info(context.Background(), "u", 0); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}

	failing := &stubExecutor{err: &services.CommandError{Binary: "yt-dlp", Err: errors.New("exit status 2"), Stderr: "network down"}}
	if _, err := newClient(t, failing).Info(context.Background(), "u", 0); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

// writeCaptions returns an onRun hook that writes the named files into the
// output directory of the pass selected by flag.
func writeCaptions(flag string, names ...string) func([]string) {
	return func(args []string) {
		if !slices.Contains(args, flag) {
			return
		}
		dir := filepath.Dir(argValue(args, "-o"))
		for _, name := range names {
			_ = os.WriteFile(filepath.Join(dir, name), []byte(`{"events":[]}`), 0o644)
		}
	}
}

func TestDownloadCaptionsPrefersRequestedLanguageOrder(t *testing.T) {
	exec := &stubExecutor{onRun: writeCaptions("--write-subs", "abc123.de.json3", "abc123.en-US.json3", "abc123.en.json3")}
	path, err := newClient(t, exec).DownloadCaptions(context.Background(), "u", t.TempDir(), []string{"en", "de"})
	if err != nil {
		t.Fatalf("DownloadCaptions returned error: %v", err)
	}
	if filepath.Base(path) != "abc123.en.json3" {
		t.Fatalf("unexpected caption file %q", path)
	}
	if len(exec.calls) != 1 {
		t.Fatalf("expected auto captions to be skipped, got %d calls", len(exec.calls))
	}
	args := exec.calls[0]
	if argValue(args, "--sub-format") != "json3" || argValue(args, "--sub-langs") != "en,en-.*,de,de-.*" {
		t.Fatalf("unexpected args %v", args)
	}
	if !slices.Contains(args, "--write-subs") || slices.Contains(args, "--write-auto-subs") {
		t.Fatalf("expected manual subs only on first pass, got %v", args)
	}
}

func TestDownloadCaptionsFallsBackToRegional(t *testing.T) {
	exec := &stubExecutor{onRun: writeCaptions("--write-subs", "abc123.en-GB.json3")}
	path, err := newClient(t, exec).DownloadCaptions(context.Background(), "u", t.TempDir(), []string{"en"})
	if err != nil {
		t.Fatalf("DownloadCaptions returned error: %v", err)
	}
	if filepath.Base(path) != "abc123.en-GB.json3" {
		t.Fatalf("unexpected caption file %q", path)
	}
}

func TestDownloadCaptionsManualRegionalBeatsAutoExact(t *testing.T) {
	exec := &stubExecutor{onRun: func(args []string) {
		writeCaptions("--write-subs", "abc123.en-US.json3")(args)
		writeCaptions("--write-auto-subs", "abc123.en.json3")(args)
	}}
	path, err := newClient(t, exec).DownloadCaptions(context.Background(), "u", t.TempDir(), []string{"en"})
	if err != nil {
		t.Fatalf("DownloadCaptions returned error: %v", err)
	}
	if filepath.Base(path) != "abc123.en-US.json3" || filepath.Base(filepath.Dir(path)) != "manual" {
		t.Fatalf("expected manual en-US track, got %q", path)
	}
}

func TestDownloadCaptionsUsesAutoWhenNoManual(t *testing.T) {
	exec := &stubExecutor{onRun: writeCaptions("--write-auto-subs", "abc123.en.json3")}
	path, err := newClient(t, exec).DownloadCaptions(context.Background(), "u", t.TempDir(), []string{"en"})
	if err != nil {
		t.Fatalf("DownloadCaptions returned error: %v", err)
	}
	if filepath.Base(filepath.Dir(path)) != "auto" {
		t.Fatalf("expected auto caption track, got %q", path)
	}
	if len(exec.calls) != 2 || !slices.Contains(exec.calls[1], "--write-auto-subs") {
		t.Fatalf("expected a second auto-caption pass, got %v", exec.calls)
	}
}

func TestDownloadCaptionsNoFiles(t *testing.T) {
	_, err := newClient(t, &stubExecutor{}).DownloadCaptions(context.Background(), "u", t.TempDir(), nil)
	if !errors.Is(err, ytdlp.ErrNoCaptions) {
		t.Fatalf("expected ErrNoCaptions, got %v", err)
	}
}

func TestParseJSON3(t *testing.T) {
	data := []byte(`{
		"wireMagic": "pb3",
		"events": [
			{"tStartMs": 0, "dDurationMs": 120000, "id": 1, "wpWinPosId": 1},
			{"tStartMs": 1200, "dDurationMs": 2500, "segs": [{"utf8": "hello"}, {"utf8": " world", "tOffsetMs": 400}]},
			{"tStartMs": 3700, "dDurationMs": 10, "aAppend": 1, "segs": [{"utf8": "\n"}]},
			{"tStartMs": 3710, "dDurationMs": 2000, "segs": [{"utf8": "second\nline"}]}
		]
	}`)
	segments, err := ytdlp.ParseJSON3(data)
	if err != nil {
		t.Fatalf("ParseJSON3 returned error: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d: %+v", len(segments), segments)
	}
	if segments[0].Text != "hello world" || segments[0].Start != 1.2 || segments[0].End != 3.7 {
		t.Fatalf("unexpected first segment %+v", segments[0])
	}
	if segments[1].Text != "second line" {
		t.Fatalf("unexpected second segment %+v", segments[1])
	}

	if _, err := ytdlp.ParseJSON3([]byte("{")); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDownloadAudioReportsProgress(t *testing.T) {
	dir := t.TempDir()
	exec := &stubExecutor{
		lines: []string{
			"[youtube] abc123: Downloading webpage",
			"[ytanalyzer-progress] 1024 NA 4096",
			"[ytanalyzer-progress] 4096 4096 NA",
			"[ExtractAudio] Destination: audio.mp3",
		},
		onRun: func([]string) {
			_ = os.WriteFile(filepath.Join(dir, "audio.mp3"), []byte("id3"), 0o644)
		},
	}
	var updates []ytdlp.DownloadProgress
	path, err := newClient(t, exec).DownloadAudio(context.Background(), "u", dir, func(p ytdlp.DownloadProgress) error {
		updates = append(updates, p)
		return nil
	})
	if err != nil {
		t.Fatalf("DownloadAudio returned error: %v", err)
	}
	if path != filepath.Join(dir, "audio.mp3") {
		t.Fatalf("unexpected path %q", path)
	}
	if len(updates) != 2 || updates[0] != (ytdlp.DownloadProgress{Downloaded: 1024, Total: 4096}) || updates[1].Percent() != 100 {
		t.Fatalf("unexpected progress updates %+v", updates)
	}
	if argValue(exec.calls[0], "--audio-format") != "mp3" || argValue(exec.calls[0], "-f") != "bestaudio/best" {
		t.Fatalf("unexpected args %v", exec.calls[0])
	}
}

func TestDownloadAudioAbortsWhenProgressFails(t *testing.T) {
	exec := &stubExecutor{lines: []string{"[ytanalyzer-progress] 10 100 NA"}}
	_, err := newClient(t, exec).DownloadAudio(context.Background(), "u", t.TempDir(), func(ytdlp.DownloadProgress) error {
		return context.Canceled
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}

func TestParseProgressLine(t *testing.T) {
	cases := []struct {
		line string
		ok   bool
		want ytdlp.DownloadProgress
	}{
		{"[ytanalyzer-progress] 512 NA NA", true, ytdlp.DownloadProgress{Downloaded: 512}},
		{"[ytanalyzer-progress] 512.0 2048 NA", true, ytdlp.DownloadProgress{Downloaded: 512, Total: 2048}},
		{"[ytanalyzer-progress] NA NA NA", false, ytdlp.DownloadProgress{}},
		{"[download] 10% of 3MiB", false, ytdlp.DownloadProgress{}},
	}
	for _, tc := range cases {
		got, ok := ytdlp.ParseProgressLine(tc.line)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ParseProgressLine(%q) = %+v,%v want %+v,%v", tc.line, got, ok, tc.want, tc.ok)
		}
	}
	if pct := (ytdlp.DownloadProgress{Downloaded: 5}).Percent(); pct != -1 {
		t.Fatalf("expected unknown percent, got %v", pct)
	}
}
