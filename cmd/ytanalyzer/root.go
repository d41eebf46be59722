package main

import (
	"github.com/spf13/cobra"

	"ytanalyzer/internal/pipeline"
)

func newRootCommand(opts ...pipeline.Option) *cobra.Command {
	var configFlag string
	var runFlags analyzeFlags

	ctx := newCommandContext(&configFlag)
	ctx.pipelineOptions = opts

	rootCmd := &cobra.Command{
		Use:           "ytanalyzer",
		Short:         "Analyse YouTube videos with transcripts and an LLM",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, ctx, runFlags)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.Flags().StringVar(&runFlags.url, "url", "", "YouTube video URL (prompted when omitted)")
	rootCmd.Flags().StringVar(&runFlags.profile, "profile", "", "Viewer profile for the analysis (prompted when omitted)")
	rootCmd.Flags().BoolVar(&runFlags.whisper, "whisper", false, "Also transcribe the audio locally with Whisper")
	rootCmd.Flags().BoolVarP(&runFlags.yes, "yes", "y", false, "Approve large LLM requests without asking")

	rootCmd.AddCommand(newListCommand(ctx))
	rootCmd.AddCommand(newShowCommand(ctx))
	rootCmd.AddCommand(newCheckCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
