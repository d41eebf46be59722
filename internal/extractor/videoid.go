package extractor

import (
	"net/url"
	"regexp"
	"strings"
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ParseVideoID extracts the 11-character video id from common YouTube URL
// shapes (watch, youtu.be, shorts, embed, live, v) or a bare id. It reports
// false when the input is not recognised; callers fall back to yt-dlp.
func ParseVideoID(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if videoIDPattern.MatchString(raw) {
		return raw, true
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	host := strings.ToLower(parsed.Hostname())
	for _, prefix := range []string{"www.", "m.", "music."} {
		host = strings.TrimPrefix(host, prefix)
	}
	segments := strings.FieldsFunc(parsed.Path, func(r rune) bool { return r == '/' })

	var candidate string
	switch host {
	case "youtu.be":
		if len(segments) > 0 {
			candidate = segments[0]
		}
	case "youtube.com", "youtube-nocookie.com":
		switch {
		case len(segments) == 1 && segments[0] == "watch":
			candidate = parsed.Query().Get("v")
		case len(segments) >= 2:
			switch segments[0] {
			case "shorts", "embed", "live", "v":
				candidate = segments[1]
			}
		}
	}
	if videoIDPattern.MatchString(candidate) {
		return candidate, true
	}
	return "", false
}
