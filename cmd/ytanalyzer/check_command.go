package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"ytanalyzer/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var online bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify directories, tools and API keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg, preflight.Options{Online: online})

			rows := make([][]string, 0, len(results))
			for _, r := range results {
				rows = append(rows, []string{r.Name, checkStatus(r), r.Detail})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Check", "Status", "Detail"}, rows, nil))

			if preflight.Failed(results) {
				return errors.New("one or more required checks failed")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All required checks passed")
			return nil
		},
	}
	cmd.Flags().BoolVar(&online, "online", false, "Also send a health request to the LLM API")
	return cmd
}

func checkStatus(r preflight.Result) string {
	switch {
	case r.Passed:
		return "ok"
	case r.Optional:
		return "warn"
	default:
		return "FAIL"
	}
}
