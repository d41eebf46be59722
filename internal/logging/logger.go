package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"ytanalyzer/internal/config"
)

// LogFileName is the file written inside paths.log_dir.
const LogFileName = "ytanalyzer.log"

// Options describes logger construction parameters.
type Options struct {
	// Level is debug, info, warn or error. Unknown values mean info.
	Level string
	// Format is "console" (default) or "json".
	Format string
	// OutputPaths lists "stderr", "stdout" or file paths. Empty means stderr.
	OutputPaths []string
	// RunID, when set, is attached to every record.
	RunID string
}

// New constructs a slog logger using the provided options. Source locations
// are included at debug level.
func New(opts Options) (*slog.Logger, error) {
	level := new(slog.LevelVar)
	level.Set(parseLevel(opts.Level))
	addSource := level.Level() <= slog.LevelDebug

	out, err := openOutputs(opts.OutputPaths)
	if err != nil {
		return nil, err
	}

	var handler slog.Handler
	switch format := strings.ToLower(strings.TrimSpace(opts.Format)); format {
	case "", "console":
		handler = newConsoleHandler(out, level, addSource)
	case "json":
		handler = newJSONHandler(out, level, addSource)
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}
	return slog.New(withRunID(handler, opts.RunID)), nil
}

// NewFromConfig creates the CLI logger. Console output goes to stderr so
// prompts and progress bars on stdout stay readable; every record is also
// appended to LogFileName under paths.log_dir. Log files older than
// logging.retention_days are pruned before the new run starts.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{})
	}

	outputs := []string{"stderr"}
	var logPath string
	if dir := cfg.Paths.LogDir; dir != "" {
		logPath = filepath.Join(dir, LogFileName)
		outputs = append(outputs, logPath)
	}

	logger, err := New(Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: outputs,
		RunID:       uuid.NewString(),
	})
	if err != nil {
		return nil, err
	}
	if logPath != "" {
		pruneLogs(logger, cfg.Paths.LogDir, logPath, cfg.Logging.RetentionDays)
	}
	return logger, nil
}

func parseLevel(value string) slog.Level {
	value = strings.TrimSpace(value)
	if strings.EqualFold(value, "warning") {
		return slog.LevelWarn
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// openOutputs opens every distinct destination and fans writes out to all of
// them. Files are created along with their parent directory and opened for
// append.
func openOutputs(paths []string) (io.Writer, error) {
	seen := make(map[string]bool, len(paths))
	var writers []io.Writer
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true

		switch p {
		case "stderr":
			writers = append(writers, os.Stderr)
		case "stdout":
			writers = append(writers, os.Stdout)
		default:
			if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
				return nil, fmt.Errorf("create log directory: %w", err)
			}
			f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return nil, fmt.Errorf("open log file %s: %w", p, err)
			}
			writers = append(writers, f)
		}
	}
	if len(writers) == 0 {
		return os.Stderr, nil
	}
	if len(writers) == 1 {
		return writers[0], nil
	}
	return io.MultiWriter(writers...), nil
}
