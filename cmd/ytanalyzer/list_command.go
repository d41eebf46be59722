package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"ytanalyzer/internal/store"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List processed videos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(s *store.Store) error {
				videos, err := s.List(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(videos) == 0 {
					fmt.Fprintln(out, "No videos processed yet")
					return nil
				}
				rows := make([][]string, 0, len(videos))
				for _, v := range videos {
					rows = append(rows, []string{
						v.ID,
						truncate(v.Title, 50),
						scoreLabel(v.InfoQualityScore),
						scoreLabel(v.ViewerInterestScore),
						v.ProcessedAt.Local().Format(time.DateTime),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Title", "Quality", "Interest", "Processed"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
}

func scoreLabel(score int) string {
	if score <= 0 {
		return "-"
	}
	return strconv.Itoa(score) + "/10"
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-1]) + "…"
}
