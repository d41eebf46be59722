package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ytanalyzer/internal/store"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <video-id>",
		Short: "Show one processed video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			return ctx.withStore(func(s *store.Store) error {
				video, err := s.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				if video == nil {
					return fmt.Errorf("video %s has not been processed (see 'ytanalyzer list')", id)
				}
				renderVideo(cmd, video)
				return nil
			})
		},
	}
}

func renderVideo(cmd *cobra.Command, v *store.Video) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:                  %s\n", v.ID)
	fmt.Fprintf(out, "URL:                 %s\n", v.URL)
	fmt.Fprintf(out, "Title:               %s\n", v.Title)
	fmt.Fprintf(out, "Processed:           %s\n", v.ProcessedAt.Local().Format(time.DateTime))
	fmt.Fprintf(out, "Information quality: %s\n", scoreLabel(v.InfoQualityScore))
	fmt.Fprintf(out, "Viewer interest:     %s\n", scoreLabel(v.ViewerInterestScore))
	fmt.Fprintf(out, "Transcript report:   %s\n", v.TranscriptFile)
	fmt.Fprintf(out, "Analysis report:     %s\n", v.AnalysisFile)
	if desc := strings.TrimSpace(v.Description); desc != "" {
		fmt.Fprintf(out, "\nDescription:\n%s\n", desc)
	}
	if len(v.TopComments) > 0 {
		fmt.Fprintln(out, "\nTop comments:")
		for i, c := range v.TopComments {
			fmt.Fprintf(out, "%d. %s (%d likes): %s\n", i+1, c.Author, c.Likes, c.Text)
		}
	}
}
