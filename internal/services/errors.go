package services

import (
	"errors"
	"strings"
)

// Markers classify failures so the CLI can suggest a next step. Every error
// produced by Wrap matches exactly one of them with errors.Is.
var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
)

// StageError records where in the pipeline a failure happened.
type StageError struct {
	Marker    error
	Stage     string
	Operation string
	Message   string
	Err       error
}

func (e *StageError) Error() string {
	var b strings.Builder
	b.WriteString(e.Marker.Error())
	b.WriteString(": ")
	wrote := false
	for _, part := range []string{e.Stage, e.Operation, e.Message} {
		if part == "" {
			continue
		}
		if wrote {
			b.WriteString(": ")
		}
		b.WriteString(part)
		wrote = true
	}
	if !wrote {
		b.WriteString("service failure")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the marker and the cause to errors.Is and errors.As.
func (e *StageError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Marker}
	}
	return []error{e.Marker, e.Err}
}

// Wrap tags err with marker and the stage/operation it came from. A nil
// marker means ErrTransient; err may be nil.
func Wrap(marker error, stage, operation, message string, err error) error {
	if marker == nil {
		marker = ErrTransient
	}
	return &StageError{
		Marker:    marker,
		Stage:     strings.TrimSpace(stage),
		Operation: strings.TrimSpace(operation),
		Message:   strings.TrimSpace(message),
		Err:       err,
	}
}

var hints = []struct {
	marker error
	hint   string
}{
	{ErrConfiguration, "check the config file and API key environment variables (ytanalyzer config validate)"},
	{ErrExternalTool, "run 'ytanalyzer check' to verify yt-dlp, ffprobe and whisper are installed"},
	{ErrValidation, "the upstream response was malformed; rerun or try a different model"},
	{ErrNotFound, "verify the video URL is public and spelled correctly"},
	{ErrTimeout, "increase the relevant timeout_seconds setting"},
}

// ErrorHint maps a wrapped error to the next step an operator should try.
func ErrorHint(err error) string {
	if err == nil {
		return ""
	}
	for _, h := range hints {
		if errors.Is(err, h.marker) {
			return h.hint
		}
	}
	return "check network connectivity and rerun"
}
