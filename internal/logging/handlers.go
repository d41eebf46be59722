package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
)

// FieldRunID tags every record written by one CLI invocation.
const FieldRunID = "run_id"

func newJSONHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       lvl,
		AddSource:   addSource,
		ReplaceAttr: compactJSONAttr,
	})
}

// compactJSONAttr shortens the built-in keys and renders times and sources
// in a grep-friendly form.
func compactJSONAttr(_ []string, attr slog.Attr) slog.Attr {
	switch attr.Key {
	case slog.TimeKey:
		if attr.Value.Kind() == slog.KindTime {
			return slog.String("ts", attr.Value.Time().UTC().Format(time.RFC3339))
		}
		attr.Key = "ts"
	case slog.LevelKey:
		return slog.String("level", strings.ToLower(attr.Value.String()))
	case slog.SourceKey:
		src, ok := attr.Value.Any().(*slog.Source)
		if ok && src != nil {
			return slog.String("source", fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
		}
	}
	return attr
}

// runHandler stamps run_id onto each record before delegating.
type runHandler struct {
	next  slog.Handler
	runID string
}

func withRunID(next slog.Handler, runID string) slog.Handler {
	runID = strings.TrimSpace(runID)
	if next == nil || runID == "" {
		return next
	}
	return runHandler{next: next, runID: runID}
}

func (h runHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h runHandler) Handle(ctx context.Context, record slog.Record) error {
	record.AddAttrs(slog.String(FieldRunID, h.runID))
	return h.next.Handle(ctx, record)
}

func (h runHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return runHandler{next: h.next.WithAttrs(attrs), runID: h.runID}
}

func (h runHandler) WithGroup(name string) slog.Handler {
	return runHandler{next: h.next.WithGroup(name), runID: h.runID}
}

// noopHandler discards all log output.
type noopHandler struct{}

func (noopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (noopHandler) Handle(context.Context, slog.Record) error { return nil }
func (noopHandler) WithAttrs([]slog.Attr) slog.Handler        { return noopHandler{} }
func (noopHandler) WithGroup(string) slog.Handler             { return noopHandler{} }
