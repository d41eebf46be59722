package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// consoleHandler writes one line per record:
//
//	2026-01-02T15:04:05Z INFO pipeline[dQw4w9WgXcQ]: stage complete stage=analysis elapsed=1.2s
//
// The component and video_id attributes move into the line prefix; every
// other attribute follows the message as key=value, group keys joined by dots.
type consoleHandler struct {
	mu        *sync.Mutex
	out       io.Writer
	level     *slog.LevelVar
	preset    []field
	groups    []string
	addSource bool
}

type field struct {
	key   string
	value slog.Value
}

func newConsoleHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return &consoleHandler{mu: &sync.Mutex{}, out: w, level: lvl, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	fields := append([]field(nil), h.preset...)
	record.Attrs(func(a slog.Attr) bool {
		fields = appendFlattened(fields, h.groups, a)
		return true
	})

	var component, videoID string
	rest := fields[:0]
	for _, f := range fields {
		switch {
		case f.key == FieldComponent && component == "":
			component = plainString(f.value)
		case f.key == FieldVideoID && videoID == "":
			videoID = plainString(f.value)
		case f.key == FieldComponent, f.key == FieldVideoID:
		default:
			rest = append(rest, f)
		}
	}

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	line := make([]byte, 0, 160)
	line = ts.UTC().AppendFormat(line, time.RFC3339)
	line = append(line, ' ')
	line = append(line, levelName(record.Level)...)
	line = append(line, ' ')
	if component != "" || videoID != "" {
		line = append(line, component...)
		if videoID != "" {
			line = append(line, '[')
			line = append(line, videoID...)
			line = append(line, ']')
		}
		line = append(line, ": "...)
	}
	if msg := strings.TrimSpace(record.Message); msg != "" {
		line = append(line, msg...)
	} else {
		line = append(line, "(no message)"...)
	}
	if h.addSource {
		if src := record.Source(); src != nil && src.File != "" {
			line = append(line, " ("...)
			line = append(line, filepath.Base(src.File)...)
			line = append(line, ':')
			line = strconv.AppendInt(line, int64(src.Line), 10)
			line = append(line, ')')
		}
	}
	for _, f := range rest {
		line = append(line, ' ')
		line = append(line, f.key...)
		line = append(line, '=')
		line = appendValue(line, f.value)
	}
	line = append(line, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(line)
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.preset = append([]field(nil), h.preset...)
	for _, a := range attrs {
		next.preset = appendFlattened(next.preset, h.groups, a)
	}
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.groups = append(append([]string(nil), h.groups...), name)
	return &next
}

func appendFlattened(dst []field, groups []string, a slog.Attr) []field {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return dst
	}
	if a.Value.Kind() == slog.KindGroup {
		inner := groups
		if a.Key != "" {
			inner = append(append([]string(nil), groups...), a.Key)
		}
		for _, member := range a.Value.Group() {
			dst = appendFlattened(dst, inner, member)
		}
		return dst
	}
	key := a.Key
	if len(groups) > 0 {
		key = strings.Join(append(append([]string(nil), groups...), key), ".")
	}
	return append(dst, field{key: key, value: a.Value})
}

func plainString(v slog.Value) string {
	if v.Kind() == slog.KindString {
		return v.String()
	}
	return fmt.Sprint(v.Any())
}

func appendValue(dst []byte, v slog.Value) []byte {
	switch v.Kind() {
	case slog.KindBool:
		return strconv.AppendBool(dst, v.Bool())
	case slog.KindInt64:
		return strconv.AppendInt(dst, v.Int64(), 10)
	case slog.KindUint64:
		return strconv.AppendUint(dst, v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.AppendFloat(dst, v.Float64(), 'f', -1, 64)
	case slog.KindDuration:
		return append(dst, v.Duration().String()...)
	case slog.KindTime:
		return v.Time().UTC().AppendFormat(dst, time.RFC3339)
	}
	var s string
	if err, ok := v.Any().(error); ok {
		s = err.Error()
	} else if v.Kind() == slog.KindString {
		s = v.String()
	} else {
		s = fmt.Sprint(v.Any())
	}
	if s == "" || strings.ContainsAny(s, " =\"\t\n\r") {
		return strconv.AppendQuote(dst, s)
	}
	return append(dst, s...)
}

func levelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	}
	return "DEBUG"
}
