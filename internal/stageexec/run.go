package stageexec

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"ytanalyzer/internal/logging"
	"ytanalyzer/internal/progress"
	"ytanalyzer/internal/services"
)

// Step is the work performed by one pipeline stage.
type Step func(ctx context.Context, logger *slog.Logger) error

// Options controls stage execution and progress reporting.
type Options struct {
	Logger *slog.Logger
	// Bar is the overall pipeline bar; it is advanced to Index on success.
	Bar   progress.Bar
	Stage string
	Index int
	Total int
	Step  Step
}

// Run executes a stage with stage-scoped logging context and the
// stage_start/stage_complete/stage_failure event sequence.
func Run(ctx context.Context, opts Options) error {
	if opts.Step == nil {
		return fmt.Errorf("stage step unavailable: %s", opts.Stage)
	}

	stageCtx := services.WithStage(ctx, opts.Stage)
	stageLogger := logging.WithContext(stageCtx, opts.Logger)
	label := deriveStageLabel(opts.Stage)

	stageLogger.Info(
		"stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("step", fmt.Sprintf("%d/%d", opts.Index, opts.Total)),
	)
	if opts.Bar != nil {
		opts.Bar.Describe(label)
	}

	started := time.Now()
	if err := opts.Step(stageCtx, stageLogger); err != nil {
		return handleFailure(stageLogger, err)
	}

	if opts.Bar != nil {
		opts.Bar.Set(int64(opts.Index))
	}
	stageLogger.Info(
		"stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}

func handleFailure(logger *slog.Logger, stageErr error) error {
	logger.Error(
		"stage failed",
		logging.String(logging.FieldEventType, "stage_failure"),
		logging.String("error_message", strings.TrimSpace(stageErr.Error())),
		logging.String(logging.FieldErrorHint, services.ErrorHint(stageErr)),
		logging.Error(stageErr),
	)
	return stageErr
}

func deriveStageLabel(stage string) string {
	if stage == "" {
		return ""
	}
	parts := strings.Fields(strings.ReplaceAll(stage, "_", " "))
	for i, part := range parts {
		runes := []rune(strings.ToLower(part))
		runes[0] = unicode.ToUpper(runes[0])
		parts[i] = string(runes)
	}
	return strings.Join(parts, " ")
}
