package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ytanalyzer/internal/config"
	"ytanalyzer/internal/pipeline"
	"ytanalyzer/internal/progress"
)

type analyzeFlags struct {
	url     string
	profile string
	whisper bool
	yes     bool
}

func runAnalyze(cmd *cobra.Command, ctx *commandContext, flags analyzeFlags) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	p := newPrompter(cmd.InOrStdin(), out)

	req, err := buildRequest(cmd, p, cfg, flags)
	if err != nil {
		return err
	}

	pl, err := ctx.newPipeline(cmd.Context(),
		pipeline.WithConfirmer(p.tokenConfirmer(flags.yes)),
		pipeline.WithProgress(progress.NewFactory(cmd.ErrOrStderr())),
	)
	if err != nil {
		return err
	}
	defer pl.Close()

	outcome, err := pl.Run(cmd.Context(), req)
	if err != nil {
		return err
	}
	printOutcome(out, outcome)
	return nil
}

func buildRequest(cmd *cobra.Command, p *prompter, cfg *config.Config, flags analyzeFlags) (pipeline.Request, error) {
	req := pipeline.Request{
		URL:           strings.TrimSpace(flags.url),
		ViewerProfile: strings.TrimSpace(flags.profile),
		UseWhisper:    flags.whisper,
	}
	var err error
	if req.URL == "" {
		if req.URL, err = p.ask("Enter YouTube URL: "); err != nil {
			return req, err
		}
		if req.URL == "" {
			return req, fmt.Errorf("a YouTube URL is required")
		}
	}
	if req.ViewerProfile == "" && !cmd.Flags().Changed("url") {
		question := fmt.Sprintf("Enter viewer profile (press Enter for default: %s): ", cfg.Analysis.DefaultViewerProfile)
		if req.ViewerProfile, err = p.ask(question); err != nil {
			return req, err
		}
	}
	if req.ViewerProfile == "" {
		req.ViewerProfile = cfg.Analysis.DefaultViewerProfile
	}
	if !cmd.Flags().Changed("whisper") && !cmd.Flags().Changed("url") {
		question := "Use Whisper for additional transcription? (y/N): "
		if cfg.Whisper.Enabled {
			question = "Use Whisper for additional transcription? (Y/n): "
		}
		if req.UseWhisper, err = p.confirm(question, cfg.Whisper.Enabled); err != nil {
			return req, err
		}
	} else if !cmd.Flags().Changed("whisper") {
		req.UseWhisper = cfg.Whisper.Enabled
	}
	return req, nil
}

func printOutcome(out io.Writer, outcome *pipeline.Outcome) {
	if outcome.Skipped {
		fmt.Fprintf(out, "Video %s has already been processed. See 'ytanalyzer show %s'.\n", outcome.VideoID, outcome.VideoID)
		return
	}
	fmt.Fprintf(out, "Processed %s", outcome.VideoID)
	if outcome.Title != "" {
		fmt.Fprintf(out, " (%s)", outcome.Title)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  Information quality: %d/10\n", outcome.InfoQualityScore)
	fmt.Fprintf(out, "  Viewer interest:     %d/10\n", outcome.ViewerInterestScore)
	fmt.Fprintf(out, "  Whisper transcript:  %s\n", yesNo(outcome.SecondaryUsed))
	fmt.Fprintf(out, "  Transcript report:   %s\n", outcome.TranscriptPath)
	fmt.Fprintf(out, "  Analysis report:     %s\n", outcome.AnalysisPath)
	fmt.Fprintf(out, "  Tokens used:         %d (prompt %d, completion %d)\n",
		outcome.Usage.TotalTokens, outcome.Usage.PromptTokens, outcome.Usage.CompletionTokens)
	fmt.Fprintf(out, "  Elapsed:             %s\n", outcome.Elapsed.Round(100*time.Millisecond))
}
