package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// pruneLogs deletes *.log files in dir whose modification time is older than
// retentionDays, leaving keep (the file the current run appends to) alone.
// It returns the number of files removed. retentionDays <= 0 keeps everything.
func pruneLogs(logger *slog.Logger, dir, keep string, retentionDays int) int {
	dir = strings.TrimSpace(dir)
	if retentionDays <= 0 || dir == "" {
		return 0
	}
	matches, err := filepath.Glob(filepath.Join(dir, "*.log"))
	if err != nil {
		return 0
	}
	if logger == nil {
		logger = NewNop()
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	keep = filepath.Clean(keep)

	removed := 0
	for _, path := range matches {
		if filepath.Clean(path) == keep {
			continue
		}
		info, err := os.Stat(path)
		if err != nil || info.IsDir() || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			WarnWithContext(logger, "old log file could not be removed", "log_prune_failed",
				String("path", path),
				Error(err),
				String(FieldErrorHint, "check ownership of paths.log_dir"),
				String(FieldImpact, "stale log stays on disk until the next run"),
			)
			continue
		}
		removed++
	}
	if removed > 0 {
		logger.Debug("old logs pruned",
			Int("removed", removed),
			Int("retention_days", retentionDays),
			String(FieldEventType, "log_pruned"),
		)
	}
	return removed
}
